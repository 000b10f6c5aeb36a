package integration

import (
	"context"
	"sync"
	"testing"

	appinventory "github.com/retailops/backend/internal/application/inventory"
	"github.com/retailops/backend/internal/domain/inventory"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedStockRecord persists a record with a fixed starting quantity.
func seedStockRecord(t *testing.T, repo *persistence.GormStockRecordRepository, productID, locationID, locationName string, capacity, available int64) {
	t.Helper()

	record, err := inventory.NewStockRecord(productID, locationID, "Espresso Beans 1kg", locationName, "EAST", decimal.NewFromInt(capacity))
	require.NoError(t, err)
	record.Available = decimal.NewFromInt(available)
	require.NoError(t, repo.Save(context.Background(), record))
}

// ledgerPrototype builds the record prototype ApplyDelta falls back to when
// the row does not exist yet. Each goroutine gets its own copy so the
// creation race is exercised without sharing mutable state. No require here:
// the helper runs inside worker goroutines.
func ledgerPrototype(productID, locationID string, capacity int64) *inventory.StockRecord {
	record, _ := inventory.NewStockRecord(productID, locationID, "Espresso Beans 1kg", "Downtown East", "EAST", decimal.NewFromInt(capacity))
	return record
}

// TestStockRecordRepository_ConcurrentAdjust_Integration hammers ApplyDelta
// with competing goroutines against a real PostgreSQL database and checks
// that the bounded UPDATE keeps the ledger linearizable: no lost updates,
// no overdraw past zero.
func TestStockRecordRepository_ConcurrentAdjust_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	repo := persistence.NewGormStockRecordRepository(testDB.DB)
	ctx := context.Background()

	t.Run("overdraw attempts drain to exactly zero", func(t *testing.T) {
		seedStockRecord(t, repo, "PROD-001", "STORE-EAST-01", "Downtown East", 200, 10)

		const workers = 50
		errs := make(chan error, workers)

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				proto := ledgerPrototype("PROD-001", "STORE-EAST-01", 200)
				_, err := repo.ApplyDelta(ctx, proto, decimal.NewFromInt(-1))
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		var succeeded, rejected int
		for err := range errs {
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, shared.ErrOutOfStock):
				rejected++
			}
		}

		assert.Equal(t, 10, succeeded, "exactly the seeded quantity should be drained")
		assert.Equal(t, workers-10, rejected)

		record, err := repo.FindByKey(ctx, "PROD-001", "STORE-EAST-01")
		require.NoError(t, err)
		assert.True(t, record.Available.IsZero(), "expected zero, got %s", record.Available)
	})

	t.Run("balanced increments and decrements cancel out", func(t *testing.T) {
		seedStockRecord(t, repo, "PROD-002", "STORE-EAST-01", "Downtown East", 1000, 500)

		const pairs = 60
		errs := make(chan error, pairs*2)

		var wg sync.WaitGroup
		for i := 0; i < pairs; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				proto := ledgerPrototype("PROD-002", "STORE-EAST-01", 1000)
				_, err := repo.ApplyDelta(ctx, proto, decimal.NewFromInt(1))
				errs <- err
			}()
			go func() {
				defer wg.Done()
				proto := ledgerPrototype("PROD-002", "STORE-EAST-01", 1000)
				_, err := repo.ApplyDelta(ctx, proto, decimal.NewFromInt(-1))
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}

		record, err := repo.FindByKey(ctx, "PROD-002", "STORE-EAST-01")
		require.NoError(t, err)
		assert.True(t, record.Available.Equal(decimal.NewFromInt(500)), "expected 500, got %s", record.Available)
	})

	t.Run("concurrent creators converge on one row", func(t *testing.T) {
		const workers = 20
		errs := make(chan error, workers)

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				proto := ledgerPrototype("PROD-003", "STORE-EAST-02", 100)
				_, err := repo.ApplyDelta(ctx, proto, decimal.NewFromInt(1))
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}

		var rows int64
		err := testDB.DB.Raw(
			"SELECT COUNT(*) FROM stock_records WHERE product_id = ? AND location_id = ?",
			"PROD-003", "STORE-EAST-02",
		).Scan(&rows).Error
		require.NoError(t, err)
		assert.Equal(t, int64(1), rows, "the creation race must not duplicate the row")

		record, err := repo.FindByKey(ctx, "PROD-003", "STORE-EAST-02")
		require.NoError(t, err)
		assert.True(t, record.Available.Equal(decimal.NewFromInt(workers)), "expected %d, got %s", workers, record.Available)
	})
}

// TestInventoryTransactionScope_TransferVsAdjust_Integration runs transfers
// (two-leg moves inside one database transaction) against a storm of
// single-leg adjustments on the source row. Stock must be conserved across
// both locations and neither leg of a transfer may land without the other.
func TestInventoryTransactionScope_TransferVsAdjust_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	repo := persistence.NewGormStockRecordRepository(testDB.DB)
	scope := persistence.NewGormInventoryTransactionScope(testDB.DB)
	ctx := context.Background()

	seedStockRecord(t, repo, "PROD-001", "WH-EAST", "East Regional", 1000, 500)
	seedStockRecord(t, repo, "PROD-001", "STORE-EAST-01", "Downtown East", 500, 0)

	const (
		transfers   = 20
		transferQty = 5
		adjustPairs = 30
	)

	errs := make(chan error, transfers+adjustPairs*2)
	var wg sync.WaitGroup

	for i := 0; i < transfers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			qty := decimal.NewFromInt(transferQty)
			err := scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
				fromProto := ledgerPrototype("PROD-001", "WH-EAST", 1000)
				if _, err := repos.StockRecords().ApplyDelta(ctx, fromProto, qty.Neg()); err != nil {
					return err
				}
				toProto := ledgerPrototype("PROD-001", "STORE-EAST-01", 500)
				_, err := repos.StockRecords().ApplyDelta(ctx, toProto, qty)
				return err
			})
			errs <- err
		}()
	}

	for i := 0; i < adjustPairs; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			proto := ledgerPrototype("PROD-001", "WH-EAST", 1000)
			_, err := repo.ApplyDelta(ctx, proto, decimal.NewFromInt(1))
			errs <- err
		}()
		go func() {
			defer wg.Done()
			proto := ledgerPrototype("PROD-001", "WH-EAST", 1000)
			_, err := repo.ApplyDelta(ctx, proto, decimal.NewFromInt(-1))
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	warehouse, err := repo.FindByKey(ctx, "PROD-001", "WH-EAST")
	require.NoError(t, err)
	store, err := repo.FindByKey(ctx, "PROD-001", "STORE-EAST-01")
	require.NoError(t, err)

	moved := decimal.NewFromInt(transfers * transferQty)
	assert.True(t, warehouse.Available.Equal(decimal.NewFromInt(500).Sub(moved)),
		"warehouse expected %s, got %s", decimal.NewFromInt(500).Sub(moved), warehouse.Available)
	assert.True(t, store.Available.Equal(moved), "store expected %s, got %s", moved, store.Available)
	assert.True(t, warehouse.Available.Add(store.Available).Equal(decimal.NewFromInt(500)),
		"stock must be conserved across the transfer route")
}
