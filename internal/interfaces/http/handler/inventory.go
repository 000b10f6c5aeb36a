package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/retailops/backend/internal/application/inventory"
)

// InventoryHandler handles stock ledger API endpoints
type InventoryHandler struct {
	BaseHandler
	ledgerService *inventoryapp.LedgerService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(ledgerService *inventoryapp.LedgerService) *InventoryHandler {
	return &InventoryHandler{ledgerService: ledgerService}
}

// RegisterRoutes registers inventory routes
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/stock")
	{
		stock.GET("", h.List)
		stock.GET("/:productId/:locationId", h.GetByKey)
		stock.POST("/adjustments", h.Adjust)
		stock.POST("/transfers", h.Transfer)
		stock.POST("/initialize", h.Initialize)
	}
}

// List returns stock records matching the query filters
func (h *InventoryHandler) List(c *gin.Context) {
	var filter inventoryapp.StockListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	result, err := h.ledgerService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetByKey returns the stock record for a product at a location
func (h *InventoryHandler) GetByKey(c *gin.Context) {
	productID := c.Param("productId")
	locationID := c.Param("locationId")

	record, err := h.ledgerService.GetByKey(c.Request.Context(), productID, locationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}

// Adjust applies a bounded delta to a single stock record
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req inventoryapp.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	record, err := h.ledgerService.Adjust(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}

// Transfer atomically moves stock between two locations
func (h *InventoryHandler) Transfer(c *gin.Context) {
	var req inventoryapp.TransferStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.ledgerService.Transfer(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Initialize seeds a location with full-capacity records for the catalog
func (h *InventoryHandler) Initialize(c *gin.Context) {
	var req inventoryapp.InitializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.ledgerService.Initialize(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
