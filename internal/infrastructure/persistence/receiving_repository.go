package persistence

import (
	"context"
	"errors"

	"github.com/retailops/backend/internal/domain/receiving"
	"github.com/retailops/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormScheduleRepository implements ScheduleRepository using GORM
type GormScheduleRepository struct {
	db *gorm.DB
}

// NewGormScheduleRepository creates a new GormScheduleRepository
func NewGormScheduleRepository(db *gorm.DB) *GormScheduleRepository {
	return &GormScheduleRepository{db: db}
}

// FindByPlanNo finds a schedule by its plan number
func (r *GormScheduleRepository) FindByPlanNo(ctx context.Context, planNo string) (*receiving.Schedule, error) {
	var schedule receiving.Schedule
	if err := r.db.WithContext(ctx).
		Where("plan_no = ?", planNo).
		First(&schedule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &schedule, nil
}

// FindByStorageLocation finds schedules destined for a storage location,
// ordered by ETA
func (r *GormScheduleRepository) FindByStorageLocation(ctx context.Context, storageLocationID string, filter shared.Filter) ([]receiving.Schedule, error) {
	var schedules []receiving.Schedule
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&receiving.Schedule{}).
			Where("storage_location_id = ?", storageLocationID),
		filter,
	)

	if err := query.Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

// FindAll finds schedules matching the filter, ordered by ETA
func (r *GormScheduleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]receiving.Schedule, error) {
	var schedules []receiving.Schedule
	query := r.applyFilter(r.db.WithContext(ctx).Model(&receiving.Schedule{}), filter)

	if err := query.Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

// Save creates or updates a schedule
func (r *GormScheduleRepository) Save(ctx context.Context, schedule *receiving.Schedule) error {
	return r.db.WithContext(ctx).Save(schedule).Error
}

// applyFilter applies filter options to the query
func (r *GormScheduleRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "product_sku":
			query = query.Where("product_sku = ?", value)
		case "supplier":
			query = query.Where("supplier = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ScheduleSortFields, "eta")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// Ensure GormScheduleRepository implements ScheduleRepository
var _ receiving.ScheduleRepository = (*GormScheduleRepository)(nil)

// GormLogRepository implements LogRepository using GORM
type GormLogRepository struct {
	db *gorm.DB
}

// NewGormLogRepository creates a new GormLogRepository
func NewGormLogRepository(db *gorm.DB) *GormLogRepository {
	return &GormLogRepository{db: db}
}

// Append stores a new log entry
func (r *GormLogRepository) Append(ctx context.Context, log *receiving.Log) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// FindRecent finds the most recent log entries
func (r *GormLogRepository) FindRecent(ctx context.Context, limit int) ([]receiving.Log, error) {
	var logs []receiving.Log
	if err := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// Ensure GormLogRepository implements LogRepository
var _ receiving.LogRepository = (*GormLogRepository)(nil)
