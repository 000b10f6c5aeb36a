package replenishment

import (
	"context"

	"github.com/retailops/backend/internal/domain/shared"
)

// RequestRepository defines the interface for replenishment request persistence
type RequestRepository interface {
	// FindByRequestID finds a request by its business identifier
	FindByRequestID(ctx context.Context, requestID string) (*Request, error)

	// FindOpen finds the non-terminal (PENDING/PROCESSING/APPROVED) request
	// for a (product, warehouse) pair, or shared.ErrNotFound
	FindOpen(ctx context.Context, productID, warehouseID string) (*Request, error)

	// FindByStatus finds requests in a given status
	FindByStatus(ctx context.Context, status RequestStatus, filter shared.Filter) ([]Request, error)

	// FindRecent finds the most recently created requests with their progress
	FindRecent(ctx context.Context, limit int) ([]Request, error)

	// FindAll finds requests matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Request, error)

	// Count counts requests matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates a request together with its progress entries
	Save(ctx context.Context, req *Request) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, req *Request) error
}

// AlertRepository defines the interface for replenishment alert persistence
type AlertRepository interface {
	// FindByKey finds the live alert for a (product, warehouse) pair
	FindByKey(ctx context.Context, productID, warehouseID string) (*Alert, error)

	// FindAll finds alerts matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Alert, error)

	// Upsert inserts or replaces the alert for its (product, warehouse) key.
	// Concurrent upserts are last-write-wins; alerts are advisory.
	Upsert(ctx context.Context, alert *Alert) error

	// DeleteByKey removes the alert for a (product, warehouse) pair.
	// Deleting a missing alert is not an error.
	DeleteByKey(ctx context.Context, productID, warehouseID string) error
}
