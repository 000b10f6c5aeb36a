package transfer

import (
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeTransferOrder = "TransferOrder"

// Event type constants
const (
	EventTypeTransferOrderCreated    = "TransferOrderCreated"
	EventTypeTransferOrderDispatched = "TransferOrderDispatched"
	EventTypeTransferOrderCompleted  = "TransferOrderCompleted"
)

// TransferOrderCreatedEvent is raised when a transfer order is created
type TransferOrderCreatedEvent struct {
	shared.BaseDomainEvent
	TransferID     string          `json:"transfer_id"`
	ProductSKU     string          `json:"product_sku"`
	Quantity       decimal.Decimal `json:"quantity"`
	FromLocationID string          `json:"from_location_id"`
	ToLocationID   string          `json:"to_location_id"`
}

// NewTransferOrderCreatedEvent creates a new TransferOrderCreatedEvent
func NewTransferOrderCreatedEvent(order *TransferOrder) *TransferOrderCreatedEvent {
	return &TransferOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferOrderCreated, AggregateTypeTransferOrder, order.ID),
		TransferID:      order.TransferID,
		ProductSKU:      order.ProductSKU,
		Quantity:        order.Quantity,
		FromLocationID:  order.FromLocationID,
		ToLocationID:    order.ToLocationID,
	}
}

// EventType returns the event type name
func (e *TransferOrderCreatedEvent) EventType() string {
	return EventTypeTransferOrderCreated
}

// TransferOrderDispatchedEvent is raised when a transfer order leaves the source
type TransferOrderDispatchedEvent struct {
	shared.BaseDomainEvent
	TransferID     string          `json:"transfer_id"`
	ProductSKU     string          `json:"product_sku"`
	Quantity       decimal.Decimal `json:"quantity"`
	FromLocationID string          `json:"from_location_id"`
	ToLocationID   string          `json:"to_location_id"`
	Carrier        string          `json:"carrier"`
}

// NewTransferOrderDispatchedEvent creates a new TransferOrderDispatchedEvent
func NewTransferOrderDispatchedEvent(order *TransferOrder) *TransferOrderDispatchedEvent {
	return &TransferOrderDispatchedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferOrderDispatched, AggregateTypeTransferOrder, order.ID),
		TransferID:      order.TransferID,
		ProductSKU:      order.ProductSKU,
		Quantity:        order.Quantity,
		FromLocationID:  order.FromLocationID,
		ToLocationID:    order.ToLocationID,
		Carrier:         order.Carrier,
	}
}

// EventType returns the event type name
func (e *TransferOrderDispatchedEvent) EventType() string {
	return EventTypeTransferOrderDispatched
}

// TransferOrderCompletedEvent is raised when goods arrive at the destination
type TransferOrderCompletedEvent struct {
	shared.BaseDomainEvent
	TransferID   string          `json:"transfer_id"`
	ProductSKU   string          `json:"product_sku"`
	Quantity     decimal.Decimal `json:"quantity"`
	ToLocationID string          `json:"to_location_id"`
	RequestID    string          `json:"request_id,omitempty"`
}

// NewTransferOrderCompletedEvent creates a new TransferOrderCompletedEvent
func NewTransferOrderCompletedEvent(order *TransferOrder) *TransferOrderCompletedEvent {
	return &TransferOrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferOrderCompleted, AggregateTypeTransferOrder, order.ID),
		TransferID:      order.TransferID,
		ProductSKU:      order.ProductSKU,
		Quantity:        order.Quantity,
		ToLocationID:    order.ToLocationID,
		RequestID:       order.RequestID,
	}
}

// EventType returns the event type name
func (e *TransferOrderCompletedEvent) EventType() string {
	return EventTypeTransferOrderCompleted
}
