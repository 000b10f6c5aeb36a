package replenishment

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RequestStatus represents the status of a replenishment request
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "PENDING"
	RequestStatusProcessing RequestStatus = "PROCESSING"
	RequestStatusApproved   RequestStatus = "APPROVED"
	RequestStatusInTransit  RequestStatus = "IN_TRANSIT"
	RequestStatusArrived    RequestStatus = "ARRIVED"
	RequestStatusRejected   RequestStatus = "REJECTED"
	RequestStatusCompleted  RequestStatus = "COMPLETED"
)

// OpenStatuses are the non-terminal statuses that block creation of a
// duplicate request for the same (product, warehouse) pair
var OpenStatuses = []RequestStatus{RequestStatusPending, RequestStatusProcessing, RequestStatusApproved}

// IsValid checks if the status is a valid RequestStatus
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestStatusPending, RequestStatusProcessing, RequestStatusApproved,
		RequestStatusInTransit, RequestStatusArrived, RequestStatusRejected, RequestStatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of RequestStatus
func (s RequestStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s RequestStatus) CanTransitionTo(target RequestStatus) bool {
	switch s {
	case RequestStatusPending:
		return target == RequestStatusProcessing || target == RequestStatusApproved || target == RequestStatusRejected
	case RequestStatusProcessing:
		return target == RequestStatusApproved || target == RequestStatusRejected
	case RequestStatusApproved:
		return target == RequestStatusInTransit
	case RequestStatusInTransit:
		return target == RequestStatusArrived || target == RequestStatusCompleted
	case RequestStatusArrived:
		return target == RequestStatusCompleted
	case RequestStatusRejected, RequestStatusCompleted:
		return false // Terminal states
	}
	return false
}

// IsTerminal returns true for statuses that never change again
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusRejected || s == RequestStatusCompleted
}

// IsOpen returns true for statuses that block a duplicate request
func (s RequestStatus) IsOpen() bool {
	return s == RequestStatusPending || s == RequestStatusProcessing || s == RequestStatusApproved
}

// Progress step states mirror the request lifecycle on a coarser scale
const (
	ProgressStatePending    = "pending"
	ProgressStateProcessing = "processing"
	ProgressStateCompleted  = "completed"
)

// ProgressEntry is one append-only step in a request's progress log
type ProgressEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	RequestID uuid.UUID `gorm:"type:uuid;not null;index"`
	Title     string    `gorm:"size:100;not null"`
	Desc      string    `gorm:"size:500"`
	Status    string    `gorm:"size:20;not null"`
	Timestamp time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProgressEntry) TableName() string {
	return "replenishment_progress_entries"
}

// Request asks a warehouse to be restocked from upstream.
// It is the aggregate root for the replenishment request workflow.
type Request struct {
	shared.BaseAggregateRoot
	RequestID     string          `gorm:"size:32;not null;uniqueIndex"`
	ProductID     string          `gorm:"size:64;not null;index:idx_request_product_warehouse,priority:1"`
	ProductName   string          `gorm:"size:255"`
	Vendor        string          `gorm:"size:255"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DeliveryDate  time.Time       `gorm:"not null"`
	WarehouseID   string          `gorm:"size:64;not null;index:idx_request_product_warehouse,priority:2"`
	WarehouseName string          `gorm:"size:255"`
	Reason        string          `gorm:"size:500"`
	Status        RequestStatus   `gorm:"size:20;not null;index"`

	Progress []ProgressEntry `gorm:"foreignKey:RequestID;references:ID"`
}

// TableName returns the table name for GORM
func (Request) TableName() string {
	return "replenishment_requests"
}

// NewRequest creates a replenishment request in PENDING status
func NewRequest(requestID, productID, productName, vendor string, quantity decimal.Decimal, deliveryDate time.Time, warehouseID, warehouseName, reason string) (*Request, error) {
	if requestID == "" {
		return nil, shared.NewDomainError("INVALID_REQUEST_ID", "Request ID cannot be empty")
	}
	if productID == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if warehouseID == "" {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}

	req := &Request{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		RequestID:         requestID,
		ProductID:         productID,
		ProductName:       productName,
		Vendor:            vendor,
		Quantity:          quantity,
		DeliveryDate:      deliveryDate,
		WarehouseID:       warehouseID,
		WarehouseName:     warehouseName,
		Reason:            reason,
		Status:            RequestStatusPending,
		Progress:          make([]ProgressEntry, 0, 1),
	}
	req.appendProgress("Request created", reason, ProgressStateCompleted)
	req.AddDomainEvent(NewRequestCreatedEvent(req))

	return req, nil
}

// MarkProcessing moves the request to PROCESSING
func (r *Request) MarkProcessing() error {
	if !r.Status.CanTransitionTo(RequestStatusProcessing) {
		return shared.ErrInvalidState
	}

	r.Status = RequestStatusProcessing
	r.appendProgress("Under review", "Request is being reviewed by the warehouse manager", ProgressStateProcessing)
	r.touch()

	return nil
}

// Approve approves the request with a remark. Approval does not move stock;
// it authorizes creation of a transfer order that links back to this request.
func (r *Request) Approve(remark string) error {
	if !r.Status.CanTransitionTo(RequestStatusApproved) {
		return shared.ErrInvalidState
	}

	r.Status = RequestStatusApproved
	r.appendProgress("Approved", remark, ProgressStateCompleted)
	r.touch()

	r.AddDomainEvent(NewRequestDecidedEvent(r, remark))

	return nil
}

// Reject rejects the request with a remark. Rejection is terminal; a later
// low-stock event opens a fresh request.
func (r *Request) Reject(remark string) error {
	if !r.Status.CanTransitionTo(RequestStatusRejected) {
		return shared.ErrInvalidState
	}

	r.Status = RequestStatusRejected
	r.appendProgress("Rejected", remark, ProgressStateCompleted)
	r.touch()

	r.AddDomainEvent(NewRequestDecidedEvent(r, remark))

	return nil
}

// MarkInTransit records that the authorized transfer order has been dispatched
func (r *Request) MarkInTransit(transferID string) error {
	if !r.Status.CanTransitionTo(RequestStatusInTransit) {
		return shared.ErrInvalidState
	}

	r.Status = RequestStatusInTransit
	r.appendProgress("In transit", "Transfer order "+transferID+" dispatched", ProgressStateProcessing)
	r.touch()

	return nil
}

// MarkArrived records that goods reached the warehouse dock
func (r *Request) MarkArrived() error {
	if !r.Status.CanTransitionTo(RequestStatusArrived) {
		return shared.ErrInvalidState
	}

	r.Status = RequestStatusArrived
	r.appendProgress("Arrived", "Goods arrived at the warehouse", ProgressStateProcessing)
	r.touch()

	return nil
}

// Complete closes the request after the goods are received and the ledger
// is incremented
func (r *Request) Complete(note string) error {
	if !r.Status.CanTransitionTo(RequestStatusCompleted) {
		return shared.ErrInvalidState
	}

	r.Status = RequestStatusCompleted
	r.appendProgress("Completed", note, ProgressStateCompleted)
	r.touch()

	return nil
}

func (r *Request) appendProgress(title, desc, state string) {
	r.Progress = append(r.Progress, ProgressEntry{
		ID:        uuid.New(),
		RequestID: r.ID,
		Title:     title,
		Desc:      desc,
		Status:    state,
		Timestamp: time.Now(),
	})
}

func (r *Request) touch() {
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}
