package inventory

import (
	"time"

	"github.com/retailops/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// StockRecordResponse represents a stock record in API responses
type StockRecordResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	LocationID   string          `json:"location_id"`
	LocationName string          `json:"location_name"`
	Region       string          `json:"region"`
	TotalStock   decimal.Decimal `json:"total_stock"`
	Available    decimal.Decimal `json:"available"`
	MinThreshold decimal.Decimal `json:"min_threshold"`
	MaxThreshold decimal.Decimal `json:"max_threshold"`
	LastUpdated  time.Time       `json:"last_updated"`
	Version      int             `json:"version"`
}

// ToStockRecordResponse converts a domain record to a response DTO
func ToStockRecordResponse(record *inventory.StockRecord) StockRecordResponse {
	return StockRecordResponse{
		ID:           record.ID.String(),
		ProductID:    record.ProductID,
		ProductName:  record.ProductName,
		LocationID:   record.LocationID,
		LocationName: record.LocationName,
		Region:       record.Region,
		TotalStock:   record.TotalStock,
		Available:    record.Available,
		MinThreshold: record.MinThreshold,
		MaxThreshold: record.MaxThreshold,
		LastUpdated:  record.LastUpdated,
		Version:      record.Version,
	}
}

// AdjustStockRequest represents a ledger adjustment
type AdjustStockRequest struct {
	ProductID    string          `json:"product_id" binding:"required"`
	LocationID   string          `json:"location_id" binding:"required"`
	Delta        decimal.Decimal `json:"delta" binding:"required"`
	ProductName  string          `json:"product_name"`
	LocationName string          `json:"location_name"`
}

// TransferStockRequest represents a composite two-location adjustment
type TransferStockRequest struct {
	ProductID      string          `json:"product_id" binding:"required"`
	FromLocationID string          `json:"from_location_id" binding:"required"`
	ToLocationID   string          `json:"to_location_id" binding:"required"`
	Quantity       decimal.Decimal `json:"quantity" binding:"required"`
	ProductName    string          `json:"product_name"`
}

// TransferStockResponse returns both post-mutation records
type TransferStockResponse struct {
	From StockRecordResponse `json:"from"`
	To   StockRecordResponse `json:"to"`
}

// StockListFilter represents filter options for stock record listings
type StockListFilter struct {
	LocationID string `form:"location_id"`
	ProductID  string `form:"product_id"`
	Region     string `form:"region"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductSeed names one catalog product for bulk seeding
type ProductSeed struct {
	SKU  string `json:"sku" binding:"required"`
	Name string `json:"name"`
}

// InitializeRequest seeds a location with the product catalog
type InitializeRequest struct {
	LocationID string        `json:"location_id" binding:"required"`
	Products   []ProductSeed `json:"products"`
}

// InitializeResponse reports the seeding outcome
type InitializeResponse struct {
	Created       int  `json:"created"`
	AlreadyExists bool `json:"already_exists"`
}
