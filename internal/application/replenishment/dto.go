package replenishment

import (
	"time"

	"github.com/retailops/backend/internal/domain/replenishment"
	"github.com/shopspring/decimal"
)

// ProgressEntryResponse represents one progress step in API responses
type ProgressEntryResponse struct {
	Title     string    `json:"title"`
	Desc      string    `json:"desc"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// RequestResponse represents a replenishment request in API responses
type RequestResponse struct {
	RequestID     string                  `json:"request_id"`
	ProductID     string                  `json:"product_id"`
	ProductName   string                  `json:"product_name"`
	Vendor        string                  `json:"vendor"`
	Quantity      decimal.Decimal         `json:"quantity"`
	DeliveryDate  time.Time               `json:"delivery_date"`
	WarehouseID   string                  `json:"warehouse_id"`
	WarehouseName string                  `json:"warehouse_name"`
	Reason        string                  `json:"reason"`
	Status        string                  `json:"status"`
	Progress      []ProgressEntryResponse `json:"progress"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// ToRequestResponse converts a domain request to a response DTO
func ToRequestResponse(req *replenishment.Request) RequestResponse {
	progress := make([]ProgressEntryResponse, len(req.Progress))
	for i, p := range req.Progress {
		progress[i] = ProgressEntryResponse{
			Title:     p.Title,
			Desc:      p.Desc,
			Status:    p.Status,
			Timestamp: p.Timestamp,
		}
	}
	return RequestResponse{
		RequestID:     req.RequestID,
		ProductID:     req.ProductID,
		ProductName:   req.ProductName,
		Vendor:        req.Vendor,
		Quantity:      req.Quantity,
		DeliveryDate:  req.DeliveryDate,
		WarehouseID:   req.WarehouseID,
		WarehouseName: req.WarehouseName,
		Reason:        req.Reason,
		Status:        req.Status.String(),
		Progress:      progress,
		CreatedAt:     req.CreatedAt,
		UpdatedAt:     req.UpdatedAt,
	}
}

// AlertResponse represents a replenishment alert in API responses
type AlertResponse struct {
	AlertID       string          `json:"alert_id"`
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	WarehouseID   string          `json:"warehouse_id"`
	WarehouseName string          `json:"warehouse_name"`
	Stock         decimal.Decimal `json:"stock"`
	Suggested     decimal.Decimal `json:"suggested"`
	Trigger       string          `json:"trigger"`
	Level         string          `json:"level"`
	Threshold     decimal.Decimal `json:"threshold"`
	ShortageQty   decimal.Decimal `json:"shortage_qty"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToAlertResponse converts a domain alert to a response DTO
func ToAlertResponse(alert *replenishment.Alert) AlertResponse {
	return AlertResponse{
		AlertID:       alert.AlertID,
		ProductID:     alert.ProductID,
		ProductName:   alert.ProductName,
		WarehouseID:   alert.WarehouseID,
		WarehouseName: alert.WarehouseName,
		Stock:         alert.Stock,
		Suggested:     alert.Suggested,
		Trigger:       alert.Trigger,
		Level:         string(alert.Level),
		Threshold:     alert.Threshold,
		ShortageQty:   alert.ShortageQty,
		UpdatedAt:     alert.UpdatedAt,
	}
}

// SubmitRequestRequest represents a manually submitted replenishment request
type SubmitRequestRequest struct {
	ProductID     string          `json:"product_id" binding:"required"`
	ProductName   string          `json:"product_name"`
	WarehouseID   string          `json:"warehouse_id" binding:"required"`
	WarehouseName string          `json:"warehouse_name"`
	Vendor        string          `json:"vendor"`
	Quantity      decimal.Decimal `json:"quantity" binding:"required"`
	Reason        string          `json:"reason"`
}

// DecideRequestRequest carries a manager decision on a pending request
type DecideRequestRequest struct {
	Decision string `json:"decision" binding:"required,oneof=APPROVED REJECTED"`
	Remark   string `json:"remark"`
}

// RequestListFilter represents filter options for request listings
type RequestListFilter struct {
	Status      string `form:"status"`
	WarehouseID string `form:"warehouse_id"`
	ProductID   string `form:"product_id"`
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ProgressFeedEntry is one step of the flattened recent-progress feed
type ProgressFeedEntry struct {
	RequestID   string    `json:"request_id"`
	ProductName string    `json:"product_name"`
	Title       string    `json:"title"`
	Desc        string    `json:"desc"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
}
