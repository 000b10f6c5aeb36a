package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which event IDs have already been handled so a
// redelivered stock event does not open a second replenishment action.
type IdempotencyStore interface {
	// MarkProcessed records the event ID with the given TTL. It reports true
	// when the ID was fresh and false when it had been recorded before.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether the event ID has been recorded.
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	// Close releases the store's resources.
	Close() error
}

// IdempotencyConfig controls deduplication of handled events.
type IdempotencyConfig struct {
	// TTL bounds how long a processed event ID is remembered. Once it
	// expires the same ID would be handled again.
	TTL time.Duration

	// Enabled turns the check off entirely when false; the domain-level
	// guards (open request, pending transfer) then act alone.
	Enabled bool
}

// DefaultIdempotencyConfig remembers event IDs for a day.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
