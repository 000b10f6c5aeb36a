package transfer

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TransferOrderStatus represents the status of a transfer order
type TransferOrderStatus string

const (
	TransferOrderStatusPending   TransferOrderStatus = "PENDING"
	TransferOrderStatusInTransit TransferOrderStatus = "IN_TRANSIT"
	TransferOrderStatusCompleted TransferOrderStatus = "COMPLETED"
	TransferOrderStatusCancelled TransferOrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid TransferOrderStatus
func (s TransferOrderStatus) IsValid() bool {
	switch s {
	case TransferOrderStatusPending, TransferOrderStatusInTransit,
		TransferOrderStatusCompleted, TransferOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of TransferOrderStatus
func (s TransferOrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s TransferOrderStatus) CanTransitionTo(target TransferOrderStatus) bool {
	switch s {
	case TransferOrderStatusPending:
		return target == TransferOrderStatusInTransit || target == TransferOrderStatusCancelled
	case TransferOrderStatusInTransit:
		return target == TransferOrderStatusCompleted
	case TransferOrderStatusCompleted, TransferOrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// IsTerminal returns true for statuses that never change again
func (s TransferOrderStatus) IsTerminal() bool {
	return s == TransferOrderStatusCompleted || s == TransferOrderStatusCancelled
}

// TransferHistoryEntry is one append-only entry of a transfer order's history
type TransferHistoryEntry struct {
	ID              uuid.UUID           `gorm:"type:uuid;primary_key"`
	TransferOrderID uuid.UUID           `gorm:"type:uuid;not null;index"`
	Status          TransferOrderStatus `gorm:"size:20;not null"`
	Note            string              `gorm:"size:500"`
	Timestamp       time.Time           `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TransferHistoryEntry) TableName() string {
	return "transfer_history_entries"
}

// TransferOrder moves stock between two locations.
// It is the aggregate root for the transfer workflow; stock itself only
// moves through the ledger, at dispatch (source decrement) and at
// completion (destination increment).
type TransferOrder struct {
	shared.BaseAggregateRoot
	TransferID       string              `gorm:"size:32;not null;uniqueIndex"`
	ProductSKU       string              `gorm:"size:64;not null;index:idx_transfer_route,priority:1"`
	ProductName      string              `gorm:"size:255"`
	Quantity         decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	FromLocationID   string              `gorm:"size:64;not null;index:idx_transfer_route,priority:2"`
	FromLocationName string              `gorm:"size:255"`
	ToLocationID     string              `gorm:"size:64;not null;index:idx_transfer_route,priority:3"`
	ToLocationName   string              `gorm:"size:255"`
	Status           TransferOrderStatus `gorm:"size:20;not null;index"`
	Carrier          string              `gorm:"size:100"`
	Dock             string              `gorm:"size:50"`
	DepartureAt      *time.Time
	Remark           string `gorm:"size:500"`
	InventoryUpdated bool   `gorm:"not null;default:false"`
	RequestID        string `gorm:"size:32;index"` // Back-reference to a replenishment request, when one authorized this transfer

	History []TransferHistoryEntry `gorm:"foreignKey:TransferOrderID;references:ID"`
}

// TableName returns the table name for GORM
func (TransferOrder) TableName() string {
	return "transfer_orders"
}

// NewTransferOrder creates a transfer order in PENDING status
func NewTransferOrder(transferID, productSKU, productName string, quantity decimal.Decimal, fromID, fromName, toID, toName, note string) (*TransferOrder, error) {
	if transferID == "" {
		return nil, shared.NewDomainError("INVALID_TRANSFER_ID", "Transfer ID cannot be empty")
	}
	if productSKU == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product SKU cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}
	if fromID == "" || toID == "" {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Source and destination locations are required")
	}
	if fromID == toID {
		return nil, shared.ErrSameLocation
	}

	order := &TransferOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TransferID:        transferID,
		ProductSKU:        productSKU,
		ProductName:       productName,
		Quantity:          quantity,
		FromLocationID:    fromID,
		FromLocationName:  fromName,
		ToLocationID:      toID,
		ToLocationName:    toName,
		Status:            TransferOrderStatusPending,
		History:           make([]TransferHistoryEntry, 0, 1),
	}
	order.appendHistory(TransferOrderStatusPending, note)
	order.AddDomainEvent(NewTransferOrderCreatedEvent(order))

	return order, nil
}

// LinkRequest records the replenishment request that authorized this transfer
func (o *TransferOrder) LinkRequest(requestID string) {
	o.RequestID = requestID
}

// IncreaseQuantity bumps a PENDING order's quantity to the larger of the
// current and proposed quantities, appending a history entry. Used by the
// trigger engine instead of creating a duplicate order for the same route.
func (o *TransferOrder) IncreaseQuantity(proposed decimal.Decimal, note string) error {
	if o.Status != TransferOrderStatusPending {
		return shared.ErrInvalidState
	}
	if proposed.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidQuantity
	}
	if proposed.LessThanOrEqual(o.Quantity) {
		return nil
	}

	o.Quantity = proposed
	o.appendHistory(TransferOrderStatusPending, note)
	o.touch()

	return nil
}

// Dispatch moves the order to IN_TRANSIT and records shipping metadata.
// The caller decrements the source location through the ledger in the same
// transaction scope.
func (o *TransferOrder) Dispatch(carrier, dock string, departureAt time.Time, remark string) error {
	if !o.Status.CanTransitionTo(TransferOrderStatusInTransit) {
		return shared.ErrInvalidState
	}

	o.Status = TransferOrderStatusInTransit
	o.Carrier = carrier
	o.Dock = dock
	o.DepartureAt = &departureAt
	o.Remark = remark
	o.appendHistory(TransferOrderStatusInTransit, "Dispatched via "+carrier)
	o.touch()

	o.AddDomainEvent(NewTransferOrderDispatchedEvent(o))

	return nil
}

// Complete moves the order to COMPLETED and marks the destination increment
// as applied. The caller increments the destination through the ledger in
// the same transaction scope.
func (o *TransferOrder) Complete(note string) error {
	if !o.Status.CanTransitionTo(TransferOrderStatusCompleted) {
		return shared.ErrInvalidState
	}

	o.Status = TransferOrderStatusCompleted
	o.InventoryUpdated = true
	o.appendHistory(TransferOrderStatusCompleted, note)
	o.touch()

	o.AddDomainEvent(NewTransferOrderCompletedEvent(o))

	return nil
}

// Cancel cancels a PENDING order
func (o *TransferOrder) Cancel(note string) error {
	if !o.Status.CanTransitionTo(TransferOrderStatusCancelled) {
		return shared.ErrInvalidState
	}

	o.Status = TransferOrderStatusCancelled
	o.appendHistory(TransferOrderStatusCancelled, note)
	o.touch()

	return nil
}

func (o *TransferOrder) appendHistory(status TransferOrderStatus, note string) {
	o.History = append(o.History, TransferHistoryEntry{
		ID:              uuid.New(),
		TransferOrderID: o.ID,
		Status:          status,
		Note:            note,
		Timestamp:       time.Now(),
	})
}

func (o *TransferOrder) touch() {
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}
