package persistence

import (
	"context"
	"errors"

	"github.com/retailops/backend/internal/domain/replenishment"
	"github.com/retailops/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAlertRepository implements AlertRepository using GORM
type GormAlertRepository struct {
	db *gorm.DB
}

// NewGormAlertRepository creates a new GormAlertRepository
func NewGormAlertRepository(db *gorm.DB) *GormAlertRepository {
	return &GormAlertRepository{db: db}
}

// FindByKey finds the live alert for a (product, warehouse) pair
func (r *GormAlertRepository) FindByKey(ctx context.Context, productID, warehouseID string) (*replenishment.Alert, error) {
	var alert replenishment.Alert
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		First(&alert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &alert, nil
}

// FindAll finds alerts matching the filter
func (r *GormAlertRepository) FindAll(ctx context.Context, filter shared.Filter) ([]replenishment.Alert, error) {
	var alerts []replenishment.Alert
	query := r.applyFilter(r.db.WithContext(ctx).Model(&replenishment.Alert{}), filter)

	if err := query.Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

// Upsert inserts or replaces the alert for its (product, warehouse) key.
// Each re-evaluation carries a fresh AlertID, so a replaced row takes over
// the newcomer's identifier as well as its measurements.
func (r *GormAlertRepository) Upsert(ctx context.Context, alert *replenishment.Alert) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "product_id"}, {Name: "warehouse_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"alert_id", "stock", "suggested", "trigger", "level",
				"threshold", "shortage_qty", "updated_at",
			}),
		}).
		Create(alert).Error
}

// DeleteByKey removes the alert for a (product, warehouse) pair.
// Deleting a missing alert is not an error.
func (r *GormAlertRepository) DeleteByKey(ctx context.Context, productID, warehouseID string) error {
	return r.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		Delete(&replenishment.Alert{}).Error
}

// applyFilter applies filter options to the query
func (r *GormAlertRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "warehouse_id":
			query = query.Where("warehouse_id = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "level":
			query = query.Where("level = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, AlertSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// Ensure GormAlertRepository implements AlertRepository
var _ replenishment.AlertRepository = (*GormAlertRepository)(nil)
