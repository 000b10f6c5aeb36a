package transfer

import (
	"context"

	"github.com/retailops/backend/internal/domain/shared"
)

// TransferOrderRepository defines the interface for transfer order persistence
type TransferOrderRepository interface {
	// FindByTransferID finds an order by its business identifier
	FindByTransferID(ctx context.Context, transferID string) (*TransferOrder, error)

	// FindByRoute finds orders for a (product, from, to) route in the given status
	FindByRoute(ctx context.Context, productSKU, fromLocationID, toLocationID string, status TransferOrderStatus) ([]TransferOrder, error)

	// FindByRequestID finds orders linked to a replenishment request
	FindByRequestID(ctx context.Context, requestID string) ([]TransferOrder, error)

	// FindAll finds orders matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]TransferOrder, error)

	// Count counts orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates an order together with its history entries
	Save(ctx context.Context, order *TransferOrder) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, order *TransferOrder) error
}
