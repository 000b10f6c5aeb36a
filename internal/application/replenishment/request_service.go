package replenishment

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/retailops/backend/internal/domain/replenishment"
	"github.com/retailops/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Feed sizing: the recent-progress feed flattens the latest steps across
// the latest requests
const (
	progressFeedRequests = 10
	progressFeedSteps    = 20
)

// RequestService handles the replenishment request workflow: manual
// submission, manager decisions, and read queries.
type RequestService struct {
	requestRepo replenishment.RequestRepository
	alertRepo   replenishment.AlertRepository
	logger      *zap.Logger
	now         func() time.Time
}

// NewRequestService creates a new RequestService
func NewRequestService(requestRepo replenishment.RequestRepository, alertRepo replenishment.AlertRepository, logger *zap.Logger) *RequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{
		requestRepo: requestRepo,
		alertRepo:   alertRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// Submit opens a manually requested replenishment, guarded by the same
// open-request check the trigger engine uses.
func (s *RequestService) Submit(ctx context.Context, req SubmitRequestRequest) (*RequestResponse, error) {
	existing, err := s.requestRepo.FindOpen(ctx, req.ProductID, req.WarehouseID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.ErrDuplicateRequest
	}

	seq, err := s.requestRepo.Count(ctx, shared.Filter{})
	if err != nil {
		return nil, err
	}

	vendor := req.Vendor
	if vendor == "" {
		vendor = centralVendor
	}
	reason := req.Reason
	if reason == "" {
		reason = "Manual replenishment request"
	}

	var request *replenishment.Request
	for attempt := 0; ; attempt++ {
		request, err = replenishment.NewRequest(
			replenishment.NewRequestID(s.now(), seq+1+int64(attempt)),
			req.ProductID,
			req.ProductName,
			vendor,
			req.Quantity,
			s.now().Add(72*time.Hour),
			req.WarehouseID,
			req.WarehouseName,
			reason,
		)
		if err != nil {
			return nil, err
		}
		err = s.requestRepo.Save(ctx, request)
		if err == nil {
			break
		}
		// The day-scoped suffix wraps and concurrent submitters race on
		// the same count; take the next suffix on a collision.
		if errors.Is(err, shared.ErrAlreadyExists) && attempt < maxIDAttempts-1 {
			continue
		}
		return nil, err
	}

	s.logger.Info("replenishment request submitted",
		zap.String("request_id", request.RequestID),
		zap.String("product_id", req.ProductID),
		zap.String("warehouse_id", req.WarehouseID),
	)

	response := ToRequestResponse(request)
	return &response, nil
}

// Decide applies a manager decision (APPROVED or REJECTED) to a request.
// Approval authorizes a later transfer creation; it does not move stock.
func (s *RequestService) Decide(ctx context.Context, requestID string, decision DecideRequestRequest) (*RequestResponse, error) {
	request, err := s.requestRepo.FindByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	switch replenishment.RequestStatus(decision.Decision) {
	case replenishment.RequestStatusApproved:
		err = request.Approve(decision.Remark)
	case replenishment.RequestStatusRejected:
		err = request.Reject(decision.Remark)
	default:
		err = shared.ErrInvalidInput
	}
	if err != nil {
		return nil, err
	}

	if err := s.requestRepo.SaveWithLock(ctx, request); err != nil {
		return nil, err
	}

	s.logger.Info("replenishment request decided",
		zap.String("request_id", request.RequestID),
		zap.String("status", request.Status.String()),
	)

	response := ToRequestResponse(request)
	return &response, nil
}

// GetByRequestID retrieves one request with its progress log
func (s *RequestService) GetByRequestID(ctx context.Context, requestID string) (*RequestResponse, error) {
	request, err := s.requestRepo.FindByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	response := ToRequestResponse(request)
	return &response, nil
}

// List retrieves requests matching the filter, paginated
func (s *RequestService) List(ctx context.Context, filter RequestListFilter) (*shared.Paginated[RequestResponse], error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.WarehouseID != "" {
		domainFilter.Filters["warehouse_id"] = filter.WarehouseID
	}
	if filter.ProductID != "" {
		domainFilter.Filters["product_id"] = filter.ProductID
	}

	requests, err := s.requestRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.requestRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	items := make([]RequestResponse, len(requests))
	for i := range requests {
		items[i] = ToRequestResponse(&requests[i])
	}

	paginated := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &paginated, nil
}

// ListAlerts retrieves the live advisory alerts
func (s *RequestService) ListAlerts(ctx context.Context) ([]AlertResponse, error) {
	alerts, err := s.alertRepo.FindAll(ctx, shared.DefaultFilter())
	if err != nil {
		return nil, err
	}

	responses := make([]AlertResponse, len(alerts))
	for i := range alerts {
		responses[i] = ToAlertResponse(&alerts[i])
	}
	return responses, nil
}

// ProgressFeed flattens the most recent progress steps across the most
// recent requests into one reverse-chronological feed.
func (s *RequestService) ProgressFeed(ctx context.Context) ([]ProgressFeedEntry, error) {
	requests, err := s.requestRepo.FindRecent(ctx, progressFeedRequests)
	if err != nil {
		return nil, err
	}

	feed := make([]ProgressFeedEntry, 0, progressFeedSteps)
	for i := range requests {
		for _, step := range requests[i].Progress {
			feed = append(feed, ProgressFeedEntry{
				RequestID:   requests[i].RequestID,
				ProductName: requests[i].ProductName,
				Title:       step.Title,
				Desc:        step.Desc,
				Status:      step.Status,
				Timestamp:   step.Timestamp,
			})
		}
	}

	sort.Slice(feed, func(i, j int) bool {
		return feed[i].Timestamp.After(feed[j].Timestamp)
	})
	if len(feed) > progressFeedSteps {
		feed = feed[:progressFeedSteps]
	}
	return feed, nil
}
