package handler

import (
	"github.com/gin-gonic/gin"
	replenishmentapp "github.com/retailops/backend/internal/application/replenishment"
)

// ReplenishmentHandler handles replenishment request and alert API endpoints
type ReplenishmentHandler struct {
	BaseHandler
	requestService *replenishmentapp.RequestService
}

// NewReplenishmentHandler creates a new ReplenishmentHandler
func NewReplenishmentHandler(requestService *replenishmentapp.RequestService) *ReplenishmentHandler {
	return &ReplenishmentHandler{requestService: requestService}
}

// RegisterRoutes registers replenishment routes
func (h *ReplenishmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	replenishment := rg.Group("/replenishment")
	{
		replenishment.GET("/requests", h.List)
		replenishment.POST("/requests", h.Submit)
		replenishment.GET("/requests/:requestId", h.Get)
		replenishment.POST("/requests/:requestId/decision", h.Decide)
		replenishment.GET("/progress", h.ProgressFeed)
		replenishment.GET("/alerts", h.ListAlerts)
	}
}

// Submit creates a manually raised replenishment request
func (h *ReplenishmentHandler) Submit(c *gin.Context) {
	var req replenishmentapp.SubmitRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	request, err := h.requestService.Submit(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, request)
}

// Get returns a replenishment request by its business identifier
func (h *ReplenishmentHandler) Get(c *gin.Context) {
	request, err := h.requestService.GetByRequestID(c.Request.Context(), c.Param("requestId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, request)
}

// List returns replenishment requests matching the query filters
func (h *ReplenishmentHandler) List(c *gin.Context) {
	var filter replenishmentapp.RequestListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	result, err := h.requestService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Decide approves or rejects a pending request
func (h *ReplenishmentHandler) Decide(c *gin.Context) {
	var req replenishmentapp.DecideRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	request, err := h.requestService.Decide(c.Request.Context(), c.Param("requestId"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, request)
}

// ProgressFeed returns the flattened recent-progress feed
func (h *ReplenishmentHandler) ProgressFeed(c *gin.Context) {
	feed, err := h.requestService.ProgressFeed(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, feed)
}

// ListAlerts returns the live replenishment alerts
func (h *ReplenishmentHandler) ListAlerts(c *gin.Context) {
	alerts, err := h.requestService.ListAlerts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, alerts)
}
