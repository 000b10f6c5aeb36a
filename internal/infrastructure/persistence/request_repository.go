package persistence

import (
	"context"
	"errors"

	"github.com/retailops/backend/internal/domain/replenishment"
	"github.com/retailops/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormRequestRepository implements RequestRepository using GORM
type GormRequestRepository struct {
	db *gorm.DB
}

// NewGormRequestRepository creates a new GormRequestRepository
func NewGormRequestRepository(db *gorm.DB) *GormRequestRepository {
	return &GormRequestRepository{db: db}
}

// FindByRequestID finds a request by its business identifier
func (r *GormRequestRepository) FindByRequestID(ctx context.Context, requestID string) (*replenishment.Request, error) {
	var req replenishment.Request
	if err := r.db.WithContext(ctx).
		Preload("Progress").
		Where("request_id = ?", requestID).
		First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// FindOpen finds the non-terminal request for a (product, warehouse) pair
func (r *GormRequestRepository) FindOpen(ctx context.Context, productID, warehouseID string) (*replenishment.Request, error) {
	var req replenishment.Request
	if err := r.db.WithContext(ctx).
		Preload("Progress").
		Where("product_id = ? AND warehouse_id = ? AND status IN ?", productID, warehouseID, replenishment.OpenStatuses).
		Order("created_at DESC").
		First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// FindByStatus finds requests in a given status
func (r *GormRequestRepository) FindByStatus(ctx context.Context, status replenishment.RequestStatus, filter shared.Filter) ([]replenishment.Request, error) {
	var requests []replenishment.Request
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&replenishment.Request{}).
			Where("status = ?", status),
		filter,
	)

	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// FindRecent finds the most recently created requests with their progress
func (r *GormRequestRepository) FindRecent(ctx context.Context, limit int) ([]replenishment.Request, error) {
	var requests []replenishment.Request
	if err := r.db.WithContext(ctx).
		Preload("Progress").
		Order("created_at DESC").
		Limit(limit).
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// FindAll finds requests matching the filter
func (r *GormRequestRepository) FindAll(ctx context.Context, filter shared.Filter) ([]replenishment.Request, error) {
	var requests []replenishment.Request
	query := r.applyFilter(r.db.WithContext(ctx).Model(&replenishment.Request{}), filter)

	if err := query.Preload("Progress").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// Count counts requests matching the filter
func (r *GormRequestRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&replenishment.Request{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a request together with its progress entries.
// A clash on the request_id unique index surfaces as ErrAlreadyExists so
// callers can regenerate the business ID and retry.
func (r *GormRequestRepository) Save(ctx context.Context, req *replenishment.Request) error {
	err := r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(req).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormRequestRepository) SaveWithLock(ctx context.Context, req *replenishment.Request) error {
	result := r.db.WithContext(ctx).Model(&replenishment.Request{}).
		Where("id = ? AND version = ?", req.ID, req.Version-1).
		Updates(map[string]interface{}{
			"status":        req.Status,
			"delivery_date": req.DeliveryDate,
			"reason":        req.Reason,
			"version":       req.Version,
			"updated_at":    req.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "Replenishment request was modified by another process")
	}

	// Progress entries only ever accumulate, so they are written outside the
	// version guard.
	for i := range req.Progress {
		entry := &req.Progress[i]
		if entry.RequestID == req.ID {
			if err := r.db.WithContext(ctx).Save(entry).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// applyFilter applies filter options to the query
func (r *GormRequestRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, RequestSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormRequestRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "warehouse_id":
			query = query.Where("warehouse_id = ?", value)
		case "vendor":
			query = query.Where("vendor = ?", value)
		}
	}

	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("request_id ILIKE ? OR product_name ILIKE ?", search, search)
	}

	return query
}

// Ensure GormRequestRepository implements RequestRepository
var _ replenishment.RequestRepository = (*GormRequestRepository)(nil)
