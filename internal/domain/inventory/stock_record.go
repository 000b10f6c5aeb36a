package inventory

import (
	"time"

	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StockRecord tracks the stock position of one product at one location.
// It is the aggregate root for ledger operations.
// The composite identifier is ProductID + LocationID.
type StockRecord struct {
	shared.BaseAggregateRoot
	ProductID    string          `gorm:"size:64;not null;uniqueIndex:idx_stock_record_product_location,priority:1"`
	LocationID   string          `gorm:"size:64;not null;uniqueIndex:idx_stock_record_product_location,priority:2"`
	ProductName  string          `gorm:"size:255"`
	LocationName string          `gorm:"size:255"`
	Region       string          `gorm:"size:32"`
	TotalStock   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Capacity ceiling
	Available    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Bounds [0, TotalStock]
	MinThreshold decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MaxThreshold decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LastUpdated  time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockRecord) TableName() string {
	return "stock_records"
}

// NewStockRecord creates a stock record for a product-location combination.
// Available starts at zero; capacity comes from the location's class default
// unless overridden by topology configuration.
func NewStockRecord(productID, locationID, productName, locationName, region string, capacity decimal.Decimal) (*StockRecord, error) {
	if productID == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if locationID == "" {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Location ID cannot be empty")
	}
	if capacity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_CAPACITY", "Capacity cannot be negative")
	}

	return &StockRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		LocationID:        locationID,
		ProductName:       productName,
		LocationName:      locationName,
		Region:            region,
		TotalStock:        capacity,
		Available:         decimal.Zero,
		MinThreshold:      decimal.Zero,
		MaxThreshold:      capacity,
		LastUpdated:       time.Now(),
	}, nil
}

// Apply moves Available by delta, enforcing the [0, TotalStock] bounds.
// On failure the record is left unchanged.
func (r *StockRecord) Apply(delta decimal.Decimal) error {
	if delta.IsZero() {
		return shared.ErrInvalidQuantity
	}

	next := r.Available.Add(delta)
	if next.IsNegative() {
		return shared.ErrOutOfStock
	}
	if next.GreaterThan(r.TotalStock) {
		return shared.ErrCapacityExceeded
	}

	r.Available = next
	r.LastUpdated = time.Now()
	r.UpdatedAt = r.LastUpdated
	r.IncrementVersion()

	r.AddDomainEvent(NewStockLevelChangedEvent(r, delta))

	return nil
}

// SeedFull sets Available to the full capacity. Used by bulk seeding only.
func (r *StockRecord) SeedFull() {
	r.Available = r.TotalStock
	r.LastUpdated = time.Now()
	r.UpdatedAt = r.LastUpdated
}

// FillRatio returns Available / TotalStock, or zero when capacity is zero.
func (r *StockRecord) FillRatio() decimal.Decimal {
	if r.TotalStock.IsZero() {
		return decimal.Zero
	}
	return r.Available.Div(r.TotalStock)
}

// ShortageTo returns the quantity needed to bring Available up to
// targetRatio of TotalStock. Zero when already at or above the target.
func (r *StockRecord) ShortageTo(targetRatio decimal.Decimal) decimal.Decimal {
	target := r.TotalStock.Mul(targetRatio)
	shortage := target.Sub(r.Available)
	if shortage.IsNegative() {
		return decimal.Zero
	}
	return shortage.Round(0)
}

// CanFulfill returns true if Available covers the requested quantity
func (r *StockRecord) CanFulfill(quantity decimal.Decimal) bool {
	return r.Available.GreaterThanOrEqual(quantity)
}
