package inventory

import (
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeStockRecord = "StockRecord"

// Event type constants
const (
	EventTypeStockLevelChanged = "StockLevelChanged"
)

// StockLevelChangedEvent is raised after every successful ledger adjustment.
// The replenishment trigger engine subscribes to it.
type StockLevelChangedEvent struct {
	shared.BaseDomainEvent
	ProductID    string          `json:"product_id"`
	LocationID   string          `json:"location_id"`
	ProductName  string          `json:"product_name"`
	LocationName string          `json:"location_name"`
	Region       string          `json:"region"`
	Delta        decimal.Decimal `json:"delta"`
	Available    decimal.Decimal `json:"available"`
	TotalStock   decimal.Decimal `json:"total_stock"`
}

// NewStockLevelChangedEvent creates a new StockLevelChangedEvent from
// the post-mutation record
func NewStockLevelChangedEvent(record *StockRecord, delta decimal.Decimal) *StockLevelChangedEvent {
	return &StockLevelChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockLevelChanged, AggregateTypeStockRecord, record.ID),
		ProductID:       record.ProductID,
		LocationID:      record.LocationID,
		ProductName:     record.ProductName,
		LocationName:    record.LocationName,
		Region:          record.Region,
		Delta:           delta,
		Available:       record.Available,
		TotalStock:      record.TotalStock,
	}
}

// EventType returns the event type name
func (e *StockLevelChangedEvent) EventType() string {
	return EventTypeStockLevelChanged
}
