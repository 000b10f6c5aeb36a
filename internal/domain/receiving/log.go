package receiving

import (
	"time"

	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Log outcome values
const (
	LogStatusSuccess = "success"
	LogStatusWarning = "warning"
)

// Log is one append-only record of a confirmed receipt
type Log struct {
	shared.BaseEntity
	PlanNo            string          `gorm:"size:32;not null;index:idx_receiving_log_plan"`
	Supplier          string          `gorm:"size:255;not null"`
	ProductSKU        string          `gorm:"size:64;not null"`
	Received          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Qualified         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	StorageLocationID string          `gorm:"size:64;not null"`
	Issue             string          `gorm:"size:500"`
	Remark            string          `gorm:"size:500"`
	Status            string          `gorm:"size:20;not null;default:success"`
	Timestamp         time.Time       `gorm:"not null;index:idx_receiving_log_plan,priority:2"`
}

// TableName returns the table name for GORM
func (Log) TableName() string {
	return "receiving_logs"
}

// NewLog creates a receipt log entry. Received quantity doubles as the
// qualified quantity; quality grading is not tracked separately.
func NewLog(planNo, supplier, productSKU string, received decimal.Decimal, storageLocationID, remark string) (*Log, error) {
	if planNo == "" {
		return nil, shared.NewDomainError("INVALID_PLAN_NO", "Plan number cannot be empty")
	}
	if received.IsNegative() {
		return nil, shared.ErrInvalidQuantity
	}
	if storageLocationID == "" {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Storage location is required")
	}

	return &Log{
		BaseEntity:        shared.NewBaseEntity(),
		PlanNo:            planNo,
		Supplier:          supplier,
		ProductSKU:        productSKU,
		Received:          received,
		Qualified:         received,
		StorageLocationID: storageLocationID,
		Remark:            remark,
		Status:            LogStatusSuccess,
		Timestamp:         time.Now(),
	}, nil
}
