package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/retailops/backend/internal/domain/inventory"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockRecordRepository implements StockRecordRepository using GORM
type GormStockRecordRepository struct {
	db *gorm.DB
}

// NewGormStockRecordRepository creates a new GormStockRecordRepository
func NewGormStockRecordRepository(db *gorm.DB) *GormStockRecordRepository {
	return &GormStockRecordRepository{db: db}
}

// FindByKey finds the record for a product-location combination
func (r *GormStockRecordRepository) FindByKey(ctx context.Context, productID, locationID string) (*inventory.StockRecord, error) {
	var record inventory.StockRecord
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND location_id = ?", productID, locationID).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByLocation finds all records at a location
func (r *GormStockRecordRepository) FindByLocation(ctx context.Context, locationID string, filter shared.Filter) ([]inventory.StockRecord, error) {
	var records []inventory.StockRecord
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockRecord{}).
			Where("location_id = ?", locationID),
		filter,
	)

	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindByProduct finds all records for a product (across locations)
func (r *GormStockRecordRepository) FindByProduct(ctx context.Context, productID string, filter shared.Filter) ([]inventory.StockRecord, error) {
	var records []inventory.StockRecord
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockRecord{}).
			Where("product_id = ?", productID),
		filter,
	)

	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindAll finds all records matching the filter
func (r *GormStockRecordRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.StockRecord, error) {
	var records []inventory.StockRecord
	query := r.applyFilter(r.db.WithContext(ctx).Model(&inventory.StockRecord{}), filter)

	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Count counts records matching the filter
func (r *GormStockRecordRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&inventory.StockRecord{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ApplyDelta atomically moves Available by delta for the record keyed by the
// prototype. The bounds check lives in the UPDATE's predicate so concurrent
// writers serialize on the row and the [0, TotalStock] invariant holds even
// under contention. A missing record is created from the prototype first
// (ON CONFLICT DO NOTHING absorbs creation races).
func (r *GormStockRecordRepository) ApplyDelta(ctx context.Context, prototype *inventory.StockRecord, delta decimal.Decimal) (*inventory.StockRecord, error) {
	if delta.IsZero() {
		return nil, shared.ErrInvalidQuantity
	}

	affected, err := r.conditionalUpdate(ctx, prototype.ProductID, prototype.LocationID, delta)
	if err != nil {
		return nil, err
	}

	if affected == 0 {
		if err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "product_id"}, {Name: "location_id"}},
				DoNothing: true,
			}).
			Create(prototype).Error; err != nil {
			return nil, err
		}

		affected, err = r.conditionalUpdate(ctx, prototype.ProductID, prototype.LocationID, delta)
		if err != nil {
			return nil, err
		}
	}

	if affected == 0 {
		return nil, r.classifyRejection(ctx, prototype.ProductID, prototype.LocationID, delta)
	}

	return r.FindByKey(ctx, prototype.ProductID, prototype.LocationID)
}

// conditionalUpdate runs the single bounded UPDATE and reports rows affected
func (r *GormStockRecordRepository) conditionalUpdate(ctx context.Context, productID, locationID string, delta decimal.Decimal) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&inventory.StockRecord{}).
		Where("product_id = ? AND location_id = ?", productID, locationID).
		Where("available + ? >= 0", delta).
		Where("available + ? <= total_stock", delta).
		Updates(map[string]interface{}{
			"available":    gorm.Expr("available + ?", delta),
			"last_updated": now,
			"updated_at":   now,
			"version":      gorm.Expr("version + 1"),
		})
	return result.RowsAffected, result.Error
}

// classifyRejection distinguishes a missing record from a bounds violation.
// The record is reloaded and the domain rule replayed against its current
// state to produce the matching sentinel error.
func (r *GormStockRecordRepository) classifyRejection(ctx context.Context, productID, locationID string, delta decimal.Decimal) error {
	record, err := r.FindByKey(ctx, productID, locationID)
	if err != nil {
		return err
	}
	if err := record.Apply(delta); err != nil {
		return err
	}
	// The in-memory replay succeeded, so a concurrent writer must have moved
	// the record between the UPDATE and the reload. Surface it as a conflict.
	return shared.ErrConcurrencyConflict
}

// Save creates or updates a record. Used by seeding, never for adjustments.
func (r *GormStockRecordRepository) Save(ctx context.Context, record *inventory.StockRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// applyFilter applies filter options to the query
func (r *GormStockRecordRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, StockRecordSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormStockRecordRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "location_id":
			query = query.Where("location_id = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "region":
			query = query.Where("region = ?", value)
		case "below_available":
			query = query.Where("available < ?", value)
		}
	}

	return query
}

// Ensure GormStockRecordRepository implements StockRecordRepository
var _ inventory.StockRecordRepository = (*GormStockRecordRepository)(nil)
