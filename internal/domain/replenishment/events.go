package replenishment

import (
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeRequest = "ReplenishmentRequest"

// Event type constants
const (
	EventTypeRequestCreated = "ReplenishmentRequestCreated"
	EventTypeRequestDecided = "ReplenishmentRequestDecided"
)

// RequestCreatedEvent is raised when a replenishment request is opened
type RequestCreatedEvent struct {
	shared.BaseDomainEvent
	RequestID   string          `json:"request_id"`
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Reason      string          `json:"reason"`
}

// NewRequestCreatedEvent creates a new RequestCreatedEvent
func NewRequestCreatedEvent(req *Request) *RequestCreatedEvent {
	return &RequestCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRequestCreated, AggregateTypeRequest, req.ID),
		RequestID:       req.RequestID,
		ProductID:       req.ProductID,
		WarehouseID:     req.WarehouseID,
		Quantity:        req.Quantity,
		Reason:          req.Reason,
	}
}

// EventType returns the event type name
func (e *RequestCreatedEvent) EventType() string {
	return EventTypeRequestCreated
}

// RequestDecidedEvent is raised when a manager approves or rejects a request
type RequestDecidedEvent struct {
	shared.BaseDomainEvent
	RequestID   string        `json:"request_id"`
	ProductID   string        `json:"product_id"`
	WarehouseID string        `json:"warehouse_id"`
	Status      RequestStatus `json:"status"`
	Remark      string        `json:"remark"`
}

// NewRequestDecidedEvent creates a new RequestDecidedEvent
func NewRequestDecidedEvent(req *Request, remark string) *RequestDecidedEvent {
	return &RequestDecidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRequestDecided, AggregateTypeRequest, req.ID),
		RequestID:       req.RequestID,
		ProductID:       req.ProductID,
		WarehouseID:     req.WarehouseID,
		Status:          req.Status,
		Remark:          remark,
	}
}

// EventType returns the event type name
func (e *RequestDecidedEvent) EventType() string {
	return EventTypeRequestDecided
}
