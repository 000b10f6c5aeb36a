package transfer

import (
	"time"

	"github.com/retailops/backend/internal/domain/receiving"
	"github.com/retailops/backend/internal/domain/transfer"
	"github.com/shopspring/decimal"
)

// HistoryEntryResponse represents one history entry in API responses
type HistoryEntryResponse struct {
	Status    string    `json:"status"`
	Note      string    `json:"note"`
	Timestamp time.Time `json:"timestamp"`
}

// TransferOrderResponse represents a transfer order in API responses
type TransferOrderResponse struct {
	TransferID       string                 `json:"transfer_id"`
	ProductSKU       string                 `json:"product_sku"`
	ProductName      string                 `json:"product_name"`
	Quantity         decimal.Decimal        `json:"quantity"`
	FromLocationID   string                 `json:"from_location_id"`
	FromLocationName string                 `json:"from_location_name"`
	ToLocationID     string                 `json:"to_location_id"`
	ToLocationName   string                 `json:"to_location_name"`
	Status           string                 `json:"status"`
	Carrier          string                 `json:"carrier,omitempty"`
	Dock             string                 `json:"dock,omitempty"`
	DepartureAt      *time.Time             `json:"departure_at,omitempty"`
	Remark           string                 `json:"remark,omitempty"`
	InventoryUpdated bool                   `json:"inventory_updated"`
	RequestID        string                 `json:"request_id,omitempty"`
	History          []HistoryEntryResponse `json:"history"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// ToTransferOrderResponse converts a domain order to a response DTO
func ToTransferOrderResponse(order *transfer.TransferOrder) TransferOrderResponse {
	history := make([]HistoryEntryResponse, len(order.History))
	for i, h := range order.History {
		history[i] = HistoryEntryResponse{
			Status:    h.Status.String(),
			Note:      h.Note,
			Timestamp: h.Timestamp,
		}
	}
	return TransferOrderResponse{
		TransferID:       order.TransferID,
		ProductSKU:       order.ProductSKU,
		ProductName:      order.ProductName,
		Quantity:         order.Quantity,
		FromLocationID:   order.FromLocationID,
		FromLocationName: order.FromLocationName,
		ToLocationID:     order.ToLocationID,
		ToLocationName:   order.ToLocationName,
		Status:           order.Status.String(),
		Carrier:          order.Carrier,
		Dock:             order.Dock,
		DepartureAt:      order.DepartureAt,
		Remark:           order.Remark,
		InventoryUpdated: order.InventoryUpdated,
		RequestID:        order.RequestID,
		History:          history,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
}

// CreateTransferRequest creates a transfer order. Creation never moves
// stock; dispatch decrements the source later.
type CreateTransferRequest struct {
	ProductSKU     string          `json:"product_sku" binding:"required"`
	ProductName    string          `json:"product_name"`
	Quantity       decimal.Decimal `json:"quantity" binding:"required"`
	FromLocationID string          `json:"from_location_id" binding:"required"`
	ToLocationID   string          `json:"to_location_id" binding:"required"`
	RequestID      string          `json:"request_id"`
	Note           string          `json:"note"`
}

// DispatchTransferRequest carries the shipping metadata for dispatch
type DispatchTransferRequest struct {
	Carrier     string     `json:"carrier" binding:"required"`
	Dock        string     `json:"dock"`
	DepartureAt *time.Time `json:"departure_at"`
	Remark      string     `json:"remark"`
}

// TransferListFilter represents filter options for transfer order listings
type TransferListFilter struct {
	Status     string `form:"status"`
	LocationID string `form:"location_id"` // Matches either end of the route
	ProductSKU string `form:"product_sku"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ScheduleResponse represents a receiving schedule in API responses
type ScheduleResponse struct {
	PlanNo            string          `json:"plan_no"`
	Supplier          string          `json:"supplier"`
	ETA               time.Time       `json:"eta"`
	Dock              string          `json:"dock"`
	ProductSKU        string          `json:"product_sku"`
	ProductName       string          `json:"product_name"`
	Quantity          decimal.Decimal `json:"quantity"`
	StorageLocationID string          `json:"storage_location_id"`
	Status            string          `json:"status"`
}

// ToScheduleResponse converts a domain schedule to a response DTO
func ToScheduleResponse(schedule *receiving.Schedule) ScheduleResponse {
	return ScheduleResponse{
		PlanNo:            schedule.PlanNo,
		Supplier:          schedule.Supplier,
		ETA:               schedule.ETA,
		Dock:              schedule.Dock,
		ProductSKU:        schedule.ProductSKU,
		ProductName:       schedule.ProductName,
		Quantity:          schedule.Quantity,
		StorageLocationID: schedule.StorageLocationID,
		Status:            string(schedule.Status),
	}
}

// ReceivingLogResponse represents a receiving log entry in API responses
type ReceivingLogResponse struct {
	PlanNo            string          `json:"plan_no"`
	Supplier          string          `json:"supplier"`
	ProductSKU        string          `json:"product_sku"`
	Received          decimal.Decimal `json:"received"`
	Qualified         decimal.Decimal `json:"qualified"`
	StorageLocationID string          `json:"storage_location_id"`
	Issue             string          `json:"issue,omitempty"`
	Remark            string          `json:"remark,omitempty"`
	Status            string          `json:"status"`
	Timestamp         time.Time       `json:"timestamp"`
}

// ToReceivingLogResponse converts a domain log to a response DTO
func ToReceivingLogResponse(log *receiving.Log) ReceivingLogResponse {
	return ReceivingLogResponse{
		PlanNo:            log.PlanNo,
		Supplier:          log.Supplier,
		ProductSKU:        log.ProductSKU,
		Received:          log.Received,
		Qualified:         log.Qualified,
		StorageLocationID: log.StorageLocationID,
		Issue:             log.Issue,
		Remark:            log.Remark,
		Status:            log.Status,
		Timestamp:         log.Timestamp,
	}
}

// CompleteReceivingRequest confirms a receipt at the dock
type CompleteReceivingRequest struct {
	Received          decimal.Decimal `json:"received" binding:"required"`
	StorageLocationID string          `json:"storage_location_id" binding:"required"`
	Remark            string          `json:"remark"`
}

// CompleteReceivingResponse returns the cascade outcome
type CompleteReceivingResponse struct {
	Schedule ScheduleResponse       `json:"schedule"`
	Log      ReceivingLogResponse   `json:"log"`
	Transfer *TransferOrderResponse `json:"transfer,omitempty"`
}
