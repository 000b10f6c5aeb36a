package handler

import (
	"github.com/gin-gonic/gin"
	transferapp "github.com/retailops/backend/internal/application/transfer"
)

// TransferHandler handles transfer order and receiving API endpoints
type TransferHandler struct {
	BaseHandler
	transferService *transferapp.TransferService
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(transferService *transferapp.TransferService) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

// RegisterRoutes registers transfer and receiving routes
func (h *TransferHandler) RegisterRoutes(rg *gin.RouterGroup) {
	transfers := rg.Group("/transfers")
	{
		transfers.GET("", h.List)
		transfers.POST("", h.Create)
		transfers.GET("/:transferId", h.Get)
		transfers.POST("/:transferId/dispatch", h.Dispatch)
		transfers.POST("/:transferId/cancel", h.Cancel)
	}

	receiving := rg.Group("/receiving")
	{
		receiving.GET("/schedules", h.ListSchedules)
		receiving.POST("/schedules/:planNo/complete", h.CompleteReceiving)
		receiving.GET("/logs", h.RecentLogs)
	}
}

// Create creates a transfer order and its receiving schedule
func (h *TransferHandler) Create(c *gin.Context) {
	var req transferapp.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	order, err := h.transferService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// Get returns a transfer order by its business identifier
func (h *TransferHandler) Get(c *gin.Context) {
	order, err := h.transferService.Get(c.Request.Context(), c.Param("transferId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// List returns transfer orders matching the query filters
func (h *TransferHandler) List(c *gin.Context) {
	var filter transferapp.TransferListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	result, err := h.transferService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Dispatch ships a pending transfer order and decrements the source ledger
func (h *TransferHandler) Dispatch(c *gin.Context) {
	var req transferapp.DispatchTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	order, err := h.transferService.Dispatch(c.Request.Context(), c.Param("transferId"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// Cancel cancels a pending transfer order
func (h *TransferHandler) Cancel(c *gin.Context) {
	var req struct {
		Note string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	order, err := h.transferService.Cancel(c.Request.Context(), c.Param("transferId"), req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// ListSchedules returns receiving schedules, optionally for one storage location
func (h *TransferHandler) ListSchedules(c *gin.Context) {
	schedules, err := h.transferService.ListSchedules(c.Request.Context(), c.Query("storage_location_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, schedules)
}

// CompleteReceiving confirms a receipt and runs the completion cascade
func (h *TransferHandler) CompleteReceiving(c *gin.Context) {
	var req transferapp.CompleteReceivingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.transferService.CompleteReceiving(c.Request.Context(), c.Param("planNo"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RecentLogs returns the most recent receiving log entries
func (h *TransferHandler) RecentLogs(c *gin.Context) {
	logs, err := h.transferService.RecentLogs(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, logs)
}
