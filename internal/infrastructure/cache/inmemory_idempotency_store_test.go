package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func markFresh(t *testing.T, store *InMemoryIdempotencyStore, eventID string, ttl time.Duration) {
	t.Helper()
	fresh, err := store.MarkProcessed(context.Background(), eventID, ttl)
	require.NoError(t, err)
	require.True(t, fresh)
}

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("first delivery is fresh", func(t *testing.T) {
		fresh, err := store.MarkProcessed(ctx, "stock-evt-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, fresh)
	})

	t.Run("redelivery within TTL is a duplicate", func(t *testing.T) {
		markFresh(t, store, "stock-evt-2", time.Hour)

		fresh, err := store.MarkProcessed(ctx, "stock-evt-2", time.Hour)
		require.NoError(t, err)
		assert.False(t, fresh)
	})

	t.Run("redelivery after expiry is fresh again", func(t *testing.T) {
		markFresh(t, store, "stock-evt-3", 10*time.Millisecond)

		time.Sleep(20 * time.Millisecond)

		fresh, err := store.MarkProcessed(ctx, "stock-evt-3", 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, fresh)
	})
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("unknown ID is not processed", func(t *testing.T) {
		processed, err := store.IsProcessed(ctx, "never-seen")
		require.NoError(t, err)
		assert.False(t, processed)
	})

	t.Run("marked ID is processed", func(t *testing.T) {
		markFresh(t, store, "seen-once", time.Hour)

		processed, err := store.IsProcessed(ctx, "seen-once")
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("expired ID is not processed", func(t *testing.T) {
		markFresh(t, store, "short-memory", 10*time.Millisecond)

		time.Sleep(20 * time.Millisecond)

		processed, err := store.IsProcessed(ctx, "short-memory")
		require.NoError(t, err)
		assert.False(t, processed)
	})
}

func TestInMemoryIdempotencyStore_Size(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	assert.Equal(t, 0, store.Size())

	markFresh(t, store, "a", time.Hour)
	markFresh(t, store, "b", time.Hour)
	assert.Equal(t, 2, store.Size())

	// re-marking an existing ID does not grow the store
	_, err := store.MarkProcessed(context.Background(), "a", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, store.Size())
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	markFresh(t, store, "expiring-1", 10*time.Millisecond)
	markFresh(t, store, "expiring-2", 10*time.Millisecond)
	markFresh(t, store, "durable", time.Hour)
	require.Equal(t, 3, store.Size())

	time.Sleep(20 * time.Millisecond)
	store.cleanup()

	assert.Equal(t, 1, store.Size())

	processed, err := store.IsProcessed(ctx, "durable")
	require.NoError(t, err)
	assert.True(t, processed)

	processed, err = store.IsProcessed(ctx, "expiring-1")
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestInMemoryIdempotencyStore_ConcurrentMark(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()
	const workers = 100

	results := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		go func() {
			fresh, err := store.MarkProcessed(ctx, "contended-event", time.Hour)
			results <- err == nil && fresh
		}()
	}

	freshCount := 0
	for i := 0; i < workers; i++ {
		if <-results {
			freshCount++
		}
	}

	// exactly one caller may win the mark
	assert.Equal(t, 1, freshCount)
}

func TestInMemoryIdempotencyStore_Close(t *testing.T) {
	store := NewInMemoryIdempotencyStore()

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
