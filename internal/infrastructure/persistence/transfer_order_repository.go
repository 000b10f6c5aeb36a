package persistence

import (
	"context"
	"errors"

	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/domain/transfer"
	"gorm.io/gorm"
)

// GormTransferOrderRepository implements TransferOrderRepository using GORM
type GormTransferOrderRepository struct {
	db *gorm.DB
}

// NewGormTransferOrderRepository creates a new GormTransferOrderRepository
func NewGormTransferOrderRepository(db *gorm.DB) *GormTransferOrderRepository {
	return &GormTransferOrderRepository{db: db}
}

// FindByTransferID finds an order by its business identifier
func (r *GormTransferOrderRepository) FindByTransferID(ctx context.Context, transferID string) (*transfer.TransferOrder, error) {
	var order transfer.TransferOrder
	if err := r.db.WithContext(ctx).
		Preload("History").
		Where("transfer_id = ?", transferID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByRoute finds orders for a (product, from, to) route in the given status
func (r *GormTransferOrderRepository) FindByRoute(ctx context.Context, productSKU, fromLocationID, toLocationID string, status transfer.TransferOrderStatus) ([]transfer.TransferOrder, error) {
	var orders []transfer.TransferOrder
	if err := r.db.WithContext(ctx).
		Where("product_sku = ? AND from_location_id = ? AND to_location_id = ? AND status = ?",
			productSKU, fromLocationID, toLocationID, status).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByRequestID finds orders linked to a replenishment request
func (r *GormTransferOrderRepository) FindByRequestID(ctx context.Context, requestID string) ([]transfer.TransferOrder, error) {
	var orders []transfer.TransferOrder
	if err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindAll finds orders matching the filter
func (r *GormTransferOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]transfer.TransferOrder, error) {
	var orders []transfer.TransferOrder
	query := r.applyFilter(r.db.WithContext(ctx).Model(&transfer.TransferOrder{}), filter)

	if err := query.Preload("History").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Count counts orders matching the filter
func (r *GormTransferOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&transfer.TransferOrder{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an order together with its history entries.
// A clash on the transfer_id unique index surfaces as ErrAlreadyExists so
// callers can regenerate the business ID and retry.
func (r *GormTransferOrderRepository) Save(ctx context.Context, order *transfer.TransferOrder) error {
	err := r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(order).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormTransferOrderRepository) SaveWithLock(ctx context.Context, order *transfer.TransferOrder) error {
	result := r.db.WithContext(ctx).Model(&transfer.TransferOrder{}).
		Where("id = ? AND version = ?", order.ID, order.Version-1).
		Updates(map[string]interface{}{
			"status":            order.Status,
			"carrier":           order.Carrier,
			"dock":              order.Dock,
			"departure_at":      order.DepartureAt,
			"remark":            order.Remark,
			"inventory_updated": order.InventoryUpdated,
			"request_id":        order.RequestID,
			"version":           order.Version,
			"updated_at":        order.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "Transfer order was modified by another process")
	}

	// History entries are append-only, so new ones are inserted alongside the
	// version-guarded update of the order row itself.
	for i := range order.History {
		entry := &order.History[i]
		if entry.TransferOrderID == order.ID {
			if err := r.db.WithContext(ctx).Save(entry).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// applyFilter applies filter options to the query
func (r *GormTransferOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, TransferOrderSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormTransferOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "product_sku":
			query = query.Where("product_sku = ?", value)
		case "location_id":
			query = query.Where("from_location_id = ? OR to_location_id = ?", value, value)
		case "from_location_id":
			query = query.Where("from_location_id = ?", value)
		case "to_location_id":
			query = query.Where("to_location_id = ?", value)
		case "request_id":
			query = query.Where("request_id = ?", value)
		}
	}

	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("transfer_id ILIKE ? OR product_name ILIKE ?", search, search)
	}

	return query
}

// Ensure GormTransferOrderRepository implements TransferOrderRepository
var _ transfer.TransferOrderRepository = (*GormTransferOrderRepository)(nil)
