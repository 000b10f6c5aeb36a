package inventory

import (
	"context"
	"testing"

	"github.com/retailops/backend/internal/domain/inventory"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStockRepo is an in-memory StockRecordRepository for service tests.
// ApplyDelta mirrors the production contract: lazy creation from the
// prototype and no write when the bounds check fails.
type memStockRepo struct {
	records map[string]*inventory.StockRecord
}

func newMemStockRepo() *memStockRepo {
	return &memStockRepo{records: make(map[string]*inventory.StockRecord)}
}

func stockKey(productID, locationID string) string {
	return productID + "|" + locationID
}

func (r *memStockRepo) FindByKey(_ context.Context, productID, locationID string) (*inventory.StockRecord, error) {
	record, ok := r.records[stockKey(productID, locationID)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return record, nil
}

func (r *memStockRepo) FindByLocation(_ context.Context, locationID string, _ shared.Filter) ([]inventory.StockRecord, error) {
	var out []inventory.StockRecord
	for _, record := range r.records {
		if record.LocationID == locationID {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (r *memStockRepo) FindByProduct(_ context.Context, productID string, _ shared.Filter) ([]inventory.StockRecord, error) {
	var out []inventory.StockRecord
	for _, record := range r.records {
		if record.ProductID == productID {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (r *memStockRepo) matches(record *inventory.StockRecord, filter shared.Filter) bool {
	if v, ok := filter.Filters["location_id"]; ok && record.LocationID != v {
		return false
	}
	if v, ok := filter.Filters["product_id"]; ok && record.ProductID != v {
		return false
	}
	if v, ok := filter.Filters["region"]; ok && record.Region != v {
		return false
	}
	return true
}

func (r *memStockRepo) FindAll(_ context.Context, filter shared.Filter) ([]inventory.StockRecord, error) {
	var out []inventory.StockRecord
	for _, record := range r.records {
		if r.matches(record, filter) {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (r *memStockRepo) Count(_ context.Context, filter shared.Filter) (int64, error) {
	var count int64
	for _, record := range r.records {
		if r.matches(record, filter) {
			count++
		}
	}
	return count, nil
}

func (r *memStockRepo) ApplyDelta(_ context.Context, prototype *inventory.StockRecord, delta decimal.Decimal) (*inventory.StockRecord, error) {
	key := stockKey(prototype.ProductID, prototype.LocationID)
	record, ok := r.records[key]
	if !ok {
		record = prototype
	}
	if err := record.Apply(delta); err != nil {
		return nil, err
	}
	r.records[key] = record
	return record, nil
}

func (r *memStockRepo) Save(_ context.Context, record *inventory.StockRecord) error {
	r.records[stockKey(record.ProductID, record.LocationID)] = record
	return nil
}

// capturePublisher records every published event
type capturePublisher struct {
	events []shared.DomainEvent
}

func (p *capturePublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func testTopology(t *testing.T) *inventory.Topology {
	t.Helper()
	topo, err := inventory.NewTopology([]inventory.Location{
		{ID: "CENTRAL", Name: "Central Warehouse", Class: inventory.ClassCentralWarehouse},
		{ID: "WH-EAST", Name: "East Regional", Class: inventory.ClassRegionalWarehouse, Region: "EAST"},
		{ID: "STORE-EAST-01", Name: "Downtown East", Class: inventory.ClassStore, Region: "EAST", ParentWarehouse: "WH-EAST"},
		{ID: "STORE-EAST-02", Name: "Uptown East", Class: inventory.ClassStore, Region: "EAST", ParentWarehouse: "WH-EAST"},
	})
	require.NoError(t, err)
	return topo
}

func newTestLedgerService(t *testing.T) (*LedgerService, *memStockRepo, *capturePublisher) {
	t.Helper()
	repo := newMemStockRepo()
	publisher := &capturePublisher{}
	service := NewLedgerService(repo, NewNoOpTransactionScope(repo), testTopology(t), zap.NewNop())
	service.SetEventPublisher(publisher)
	return service, repo, publisher
}

func TestLedgerService_Adjust(t *testing.T) {
	t.Run("rejects zero delta", func(t *testing.T) {
		service, _, _ := newTestLedgerService(t)

		_, err := service.Adjust(context.Background(), AdjustStockRequest{
			ProductID: "PROD-001", LocationID: "STORE-EAST-01", Delta: decimal.Zero,
		})

		assert.Equal(t, shared.ErrInvalidQuantity, err)
	})

	t.Run("lazily creates the record with the location class capacity", func(t *testing.T) {
		service, _, _ := newTestLedgerService(t)

		resp, err := service.Adjust(context.Background(), AdjustStockRequest{
			ProductID: "PROD-001", LocationID: "STORE-EAST-01", Delta: decimal.NewFromInt(120), ProductName: "Espresso Beans 1kg",
		})

		require.NoError(t, err)
		assert.True(t, resp.Available.Equal(decimal.NewFromInt(120)))
		assert.True(t, resp.TotalStock.Equal(decimal.NewFromInt(200)))
		assert.Equal(t, "Downtown East", resp.LocationName)
		assert.Equal(t, "EAST", resp.Region)
	})

	t.Run("negative delta past zero fails and creates nothing", func(t *testing.T) {
		service, repo, publisher := newTestLedgerService(t)

		_, err := service.Adjust(context.Background(), AdjustStockRequest{
			ProductID: "PROD-001", LocationID: "STORE-EAST-01", Delta: decimal.NewFromInt(-10),
		})

		assert.Equal(t, shared.ErrOutOfStock, err)
		assert.Empty(t, repo.records)
		assert.Empty(t, publisher.events)
	})

	t.Run("delta over capacity fails and leaves the record unchanged", func(t *testing.T) {
		service, _, _ := newTestLedgerService(t)
		_, err := service.Adjust(context.Background(), AdjustStockRequest{
			ProductID: "PROD-001", LocationID: "STORE-EAST-01", Delta: decimal.NewFromInt(150),
		})
		require.NoError(t, err)

		_, err = service.Adjust(context.Background(), AdjustStockRequest{
			ProductID: "PROD-001", LocationID: "STORE-EAST-01", Delta: decimal.NewFromInt(51),
		})

		assert.Equal(t, shared.ErrCapacityExceeded, err)
		resp, err := service.GetByKey(context.Background(), "PROD-001", "STORE-EAST-01")
		require.NoError(t, err)
		assert.True(t, resp.Available.Equal(decimal.NewFromInt(150)))
	})

	t.Run("publishes a stock level changed event after success", func(t *testing.T) {
		service, _, publisher := newTestLedgerService(t)

		_, err := service.Adjust(context.Background(), AdjustStockRequest{
			ProductID: "PROD-001", LocationID: "STORE-EAST-01", Delta: decimal.NewFromInt(30),
		})

		require.NoError(t, err)
		require.Len(t, publisher.events, 1)
		changed, ok := publisher.events[0].(*inventory.StockLevelChangedEvent)
		require.True(t, ok)
		assert.True(t, changed.Delta.Equal(decimal.NewFromInt(30)))
		assert.True(t, changed.Available.Equal(decimal.NewFromInt(30)))
	})

	t.Run("unknown locations get the store default capacity", func(t *testing.T) {
		service, _, _ := newTestLedgerService(t)

		resp, err := service.Adjust(context.Background(), AdjustStockRequest{
			ProductID: "PROD-001", LocationID: "POPUP-01", Delta: decimal.NewFromInt(10),
		})

		require.NoError(t, err)
		assert.True(t, resp.TotalStock.Equal(decimal.NewFromInt(200)))
	})
}

func TestLedgerService_Transfer(t *testing.T) {
	seed := func(t *testing.T, service *LedgerService, locationID string, quantity int64) {
		t.Helper()
		_, err := service.Adjust(context.Background(), AdjustStockRequest{
			ProductID: "PROD-001", LocationID: locationID, Delta: decimal.NewFromInt(quantity),
		})
		require.NoError(t, err)
	}

	t.Run("moves quantity between both records", func(t *testing.T) {
		service, _, publisher := newTestLedgerService(t)
		seed(t, service, "WH-EAST", 500)
		publisher.events = nil

		resp, err := service.Transfer(context.Background(), TransferStockRequest{
			ProductID: "PROD-001", FromLocationID: "WH-EAST", ToLocationID: "STORE-EAST-01",
			Quantity: decimal.NewFromInt(80),
		})

		require.NoError(t, err)
		assert.True(t, resp.From.Available.Equal(decimal.NewFromInt(420)))
		assert.True(t, resp.To.Available.Equal(decimal.NewFromInt(80)))
		assert.Len(t, publisher.events, 2)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		service, _, _ := newTestLedgerService(t)

		_, err := service.Transfer(context.Background(), TransferStockRequest{
			ProductID: "PROD-001", FromLocationID: "WH-EAST", ToLocationID: "STORE-EAST-01",
			Quantity: decimal.Zero,
		})

		assert.Equal(t, shared.ErrInvalidQuantity, err)
	})

	t.Run("rejects identical locations", func(t *testing.T) {
		service, _, _ := newTestLedgerService(t)

		_, err := service.Transfer(context.Background(), TransferStockRequest{
			ProductID: "PROD-001", FromLocationID: "WH-EAST", ToLocationID: "WH-EAST",
			Quantity: decimal.NewFromInt(10),
		})

		assert.Equal(t, shared.ErrSameLocation, err)
	})

	t.Run("rejects locations outside the topology", func(t *testing.T) {
		service, _, _ := newTestLedgerService(t)

		_, err := service.Transfer(context.Background(), TransferStockRequest{
			ProductID: "PROD-001", FromLocationID: "WH-NORTH", ToLocationID: "STORE-EAST-01",
			Quantity: decimal.NewFromInt(10),
		})

		assert.Equal(t, inventory.ErrLocationNotFound, err)
	})

	t.Run("insufficient source stock fails before the destination is touched", func(t *testing.T) {
		service, repo, publisher := newTestLedgerService(t)
		seed(t, service, "WH-EAST", 30)
		publisher.events = nil

		_, err := service.Transfer(context.Background(), TransferStockRequest{
			ProductID: "PROD-001", FromLocationID: "WH-EAST", ToLocationID: "STORE-EAST-01",
			Quantity: decimal.NewFromInt(50),
		})

		assert.Equal(t, shared.ErrOutOfStock, err)
		source := repo.records[stockKey("PROD-001", "WH-EAST")]
		assert.True(t, source.Available.Equal(decimal.NewFromInt(30)))
		_, ok := repo.records[stockKey("PROD-001", "STORE-EAST-01")]
		assert.False(t, ok)
		assert.Empty(t, publisher.events)
	})
}

func TestLedgerService_GetByKey(t *testing.T) {
	service, _, _ := newTestLedgerService(t)

	_, err := service.GetByKey(context.Background(), "PROD-001", "STORE-EAST-01")

	assert.Equal(t, shared.ErrNotFound, err)
}

func TestLedgerService_List(t *testing.T) {
	service, _, _ := newTestLedgerService(t)
	for _, loc := range []string{"WH-EAST", "STORE-EAST-01", "STORE-EAST-02"} {
		_, err := service.Adjust(context.Background(), AdjustStockRequest{
			ProductID: "PROD-001", LocationID: loc, Delta: decimal.NewFromInt(10),
		})
		require.NoError(t, err)
	}

	t.Run("lists everything by default", func(t *testing.T) {
		page, err := service.List(context.Background(), StockListFilter{})

		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		assert.Len(t, page.Items, 3)
		assert.Equal(t, 1, page.Page)
	})

	t.Run("filters by location", func(t *testing.T) {
		page, err := service.List(context.Background(), StockListFilter{LocationID: "WH-EAST"})

		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
	})
}

func TestLedgerService_Initialize(t *testing.T) {
	catalog := []ProductSeed{
		{SKU: "PROD-001", Name: "Espresso Beans 1kg"},
		{SKU: "PROD-002", Name: "Oat Milk 1L"},
	}

	t.Run("seeds the catalog at full capacity", func(t *testing.T) {
		service, repo, _ := newTestLedgerService(t)

		resp, err := service.Initialize(context.Background(), InitializeRequest{
			LocationID: "WH-EAST", Products: catalog,
		})

		require.NoError(t, err)
		assert.Equal(t, 2, resp.Created)
		assert.False(t, resp.AlreadyExists)

		record := repo.records[stockKey("PROD-001", "WH-EAST")]
		require.NotNil(t, record)
		assert.True(t, record.Available.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("reports already seeded locations without writing", func(t *testing.T) {
		service, _, _ := newTestLedgerService(t)
		_, err := service.Initialize(context.Background(), InitializeRequest{LocationID: "WH-EAST", Products: catalog})
		require.NoError(t, err)

		resp, err := service.Initialize(context.Background(), InitializeRequest{LocationID: "WH-EAST", Products: catalog})

		require.NoError(t, err)
		assert.True(t, resp.AlreadyExists)
		assert.Zero(t, resp.Created)
	})

	t.Run("rejects unknown locations", func(t *testing.T) {
		service, _, _ := newTestLedgerService(t)

		_, err := service.Initialize(context.Background(), InitializeRequest{LocationID: "WH-NORTH", Products: catalog})

		assert.Equal(t, inventory.ErrLocationNotFound, err)
	})

	t.Run("falls back to the default catalog", func(t *testing.T) {
		service, _, _ := newTestLedgerService(t)
		service.SetDefaultCatalog(catalog)

		resp, err := service.Initialize(context.Background(), InitializeRequest{LocationID: "STORE-EAST-01"})

		require.NoError(t, err)
		assert.Equal(t, 2, resp.Created)
	})

	t.Run("fails when no catalog is available", func(t *testing.T) {
		service, _, _ := newTestLedgerService(t)

		_, err := service.Initialize(context.Background(), InitializeRequest{LocationID: "STORE-EAST-01"})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EMPTY_CATALOG", domainErr.Code)
	})
}
