package replenishment

import (
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AlertLevel grades the severity of a stock shortfall
type AlertLevel string

const (
	AlertLevelWarning AlertLevel = "warning"
	AlertLevelDanger  AlertLevel = "danger"
)

// IsValid checks if the alert level is a known value
func (l AlertLevel) IsValid() bool {
	return l == AlertLevelWarning || l == AlertLevelDanger
}

// Alert is an advisory record describing a warehouse stock shortfall.
// At most one live alert exists per (product, warehouse) pair; it is
// upserted while stock is below threshold and deleted on recovery.
// Alerts never mutate stock.
type Alert struct {
	shared.BaseEntity
	AlertID       string          `gorm:"size:40;not null;uniqueIndex"`
	ProductID     string          `gorm:"size:64;not null;uniqueIndex:idx_alert_product_warehouse,priority:1"`
	ProductName   string          `gorm:"size:255"`
	WarehouseID   string          `gorm:"size:64;not null;uniqueIndex:idx_alert_product_warehouse,priority:2"`
	WarehouseName string          `gorm:"size:255"`
	Stock         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Suggested     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Trigger       string          `gorm:"size:500"`
	Level         AlertLevel      `gorm:"size:10;not null"`
	Threshold     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ShortageQty   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (Alert) TableName() string {
	return "replenishment_alerts"
}

// NewAlert creates an alert describing a shortfall
func NewAlert(alertID, productID, productName, warehouseID, warehouseName string, stock, suggested, threshold decimal.Decimal, trigger string, level AlertLevel) (*Alert, error) {
	if alertID == "" {
		return nil, shared.NewDomainError("INVALID_ALERT_ID", "Alert ID cannot be empty")
	}
	if productID == "" || warehouseID == "" {
		return nil, shared.NewDomainError("INVALID_ALERT_KEY", "Product and warehouse IDs are required")
	}
	if !level.IsValid() {
		return nil, shared.NewDomainError("INVALID_ALERT_LEVEL", "Alert level must be warning or danger")
	}

	shortage := threshold.Sub(stock)
	if shortage.IsNegative() {
		shortage = decimal.Zero
	}

	return &Alert{
		BaseEntity:    shared.NewBaseEntity(),
		AlertID:       alertID,
		ProductID:     productID,
		ProductName:   productName,
		WarehouseID:   warehouseID,
		WarehouseName: warehouseName,
		Stock:         stock,
		Suggested:     suggested,
		Trigger:       trigger,
		Level:         level,
		Threshold:     threshold,
		ShortageQty:   shortage,
	}, nil
}
