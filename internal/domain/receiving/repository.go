package receiving

import (
	"context"

	"github.com/retailops/backend/internal/domain/shared"
)

// ScheduleRepository defines the interface for receiving schedule persistence
type ScheduleRepository interface {
	// FindByPlanNo finds a schedule by its plan number
	FindByPlanNo(ctx context.Context, planNo string) (*Schedule, error)

	// FindByStorageLocation finds schedules destined for a storage location,
	// ordered by ETA
	FindByStorageLocation(ctx context.Context, storageLocationID string, filter shared.Filter) ([]Schedule, error)

	// FindAll finds schedules matching the filter, ordered by ETA
	FindAll(ctx context.Context, filter shared.Filter) ([]Schedule, error)

	// Save creates or updates a schedule
	Save(ctx context.Context, schedule *Schedule) error
}

// LogRepository defines the interface for receiving log persistence
type LogRepository interface {
	// Append stores a new log entry
	Append(ctx context.Context, log *Log) error

	// FindRecent finds the most recent log entries
	FindRecent(ctx context.Context, limit int) ([]Log, error)
}
