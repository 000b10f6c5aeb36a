package receiving

import (
	"time"

	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ScheduleStatus represents the status of a receiving schedule
type ScheduleStatus string

const (
	ScheduleStatusPending   ScheduleStatus = "PENDING"
	ScheduleStatusInTransit ScheduleStatus = "IN_TRANSIT"
	ScheduleStatusArrived   ScheduleStatus = "ARRIVED"
)

// IsValid checks if the status is a valid ScheduleStatus
func (s ScheduleStatus) IsValid() bool {
	switch s {
	case ScheduleStatusPending, ScheduleStatusInTransit, ScheduleStatusArrived:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s ScheduleStatus) CanTransitionTo(target ScheduleStatus) bool {
	switch s {
	case ScheduleStatusPending:
		return target == ScheduleStatusInTransit || target == ScheduleStatusArrived
	case ScheduleStatusInTransit:
		return target == ScheduleStatusArrived
	case ScheduleStatusArrived:
		return false // Terminal
	}
	return false
}

// Schedule is the dock-side receiving plan for an inbound movement.
// PlanNo matches the transfer order's TransferID so that confirming a
// receipt can cascade onto the transfer and its linked request.
type Schedule struct {
	shared.BaseAggregateRoot
	PlanNo            string          `gorm:"size:32;not null;uniqueIndex"`
	Supplier          string          `gorm:"size:255;not null"`
	ETA               time.Time       `gorm:"not null"`
	Dock              string          `gorm:"size:50"`
	ProductSKU        string          `gorm:"size:64;not null"`
	ProductName       string          `gorm:"size:255"`
	Quantity          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	StorageLocationID string          `gorm:"size:64;index"`
	Status            ScheduleStatus  `gorm:"size:20;not null;index"`
}

// TableName returns the table name for GORM
func (Schedule) TableName() string {
	return "receiving_schedules"
}

// NewSchedule creates a receiving schedule in PENDING status
func NewSchedule(planNo, supplier string, eta time.Time, dock, productSKU, productName string, quantity decimal.Decimal, storageLocationID string) (*Schedule, error) {
	if planNo == "" {
		return nil, shared.NewDomainError("INVALID_PLAN_NO", "Plan number cannot be empty")
	}
	if supplier == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier cannot be empty")
	}
	if productSKU == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product SKU cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}

	return &Schedule{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PlanNo:            planNo,
		Supplier:          supplier,
		ETA:               eta,
		Dock:              dock,
		ProductSKU:        productSKU,
		ProductName:       productName,
		Quantity:          quantity,
		StorageLocationID: storageLocationID,
		Status:            ScheduleStatusPending,
	}, nil
}

// RaiseQuantity lifts a still-pending schedule to the given quantity so it
// stays in step with a bumped transfer order. A smaller or equal quantity is
// a no-op.
func (s *Schedule) RaiseQuantity(quantity decimal.Decimal) error {
	if s.Status != ScheduleStatusPending {
		return shared.ErrInvalidState
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidQuantity
	}
	if quantity.LessThanOrEqual(s.Quantity) {
		return nil
	}

	s.Quantity = quantity
	s.touch()

	return nil
}

// MarkInTransit marks the inbound goods as underway
func (s *Schedule) MarkInTransit() error {
	if !s.Status.CanTransitionTo(ScheduleStatusInTransit) {
		return shared.ErrInvalidState
	}

	s.Status = ScheduleStatusInTransit
	s.touch()

	return nil
}

// MarkArrived records the confirmed arrival at a storage location
func (s *Schedule) MarkArrived(storageLocationID string) error {
	if !s.Status.CanTransitionTo(ScheduleStatusArrived) {
		return shared.ErrInvalidState
	}
	if storageLocationID == "" {
		return shared.NewDomainError("INVALID_LOCATION", "Storage location is required")
	}

	s.Status = ScheduleStatusArrived
	s.StorageLocationID = storageLocationID
	s.touch()

	return nil
}

func (s *Schedule) touch() {
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}
