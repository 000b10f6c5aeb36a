package inventory

import (
	"context"

	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StockRecordRepository defines the interface for stock record persistence.
//
// ApplyDelta is the only mutation path for Available. Implementations must
// perform the bounds check and the update as one atomic operation (a single
// conditional UPDATE, not read-modify-write) so that concurrent adjustments
// to the same record are linearizable and Available never leaves
// [0, TotalStock], even transiently.
type StockRecordRepository interface {
	// FindByKey finds the record for a product-location combination
	FindByKey(ctx context.Context, productID, locationID string) (*StockRecord, error)

	// FindByLocation finds all records at a location
	FindByLocation(ctx context.Context, locationID string, filter shared.Filter) ([]StockRecord, error)

	// FindByProduct finds all records for a product (across locations)
	FindByProduct(ctx context.Context, productID string, filter shared.Filter) ([]StockRecord, error)

	// FindAll finds all records matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]StockRecord, error)

	// Count counts records matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ApplyDelta atomically moves Available by delta for the record keyed by
	// the prototype's (ProductID, LocationID), creating the record from the
	// prototype first if it does not exist. Returns the post-mutation record.
	// Fails with shared.ErrOutOfStock or shared.ErrCapacityExceeded when the
	// bounds predicate rejects the update, leaving the record unchanged.
	ApplyDelta(ctx context.Context, prototype *StockRecord, delta decimal.Decimal) (*StockRecord, error)

	// Save creates or updates a record. Used by seeding, never for adjustments.
	Save(ctx context.Context, record *StockRecord) error
}
