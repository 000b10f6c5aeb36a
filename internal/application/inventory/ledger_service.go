package inventory

import (
	"context"

	"github.com/retailops/backend/internal/domain/inventory"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerService is the single mutation path for stock records.
// Adjustments are atomic conditional updates performed by the repository;
// the composite transfer wraps both sides in one transaction scope.
// After every successful mutation it publishes a StockLevelChanged event,
// which drives the replenishment trigger engine. Trigger failures never
// roll back the stock mutation.
type LedgerService struct {
	stockRepo      inventory.StockRecordRepository
	txScope        TransactionScope
	topology       *inventory.Topology
	eventPublisher shared.EventPublisher
	metrics        *telemetry.BusinessMetrics
	logger         *zap.Logger
	catalog        []ProductSeed
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(stockRepo inventory.StockRecordRepository, txScope TransactionScope, topology *inventory.Topology, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		stockRepo: stockRepo,
		txScope:   txScope,
		topology:  topology,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *LedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *LedgerService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.metrics = bm
}

// SetDefaultCatalog sets the product catalog used by Initialize when the
// request does not carry its own product list
func (s *LedgerService) SetDefaultCatalog(catalog []ProductSeed) {
	s.catalog = catalog
}

// Adjust atomically moves a record's available quantity by delta, creating
// the record with a location-class default capacity on first touch.
func (s *LedgerService) Adjust(ctx context.Context, req AdjustStockRequest) (*StockRecordResponse, error) {
	if req.Delta.IsZero() {
		return nil, shared.ErrInvalidQuantity
	}

	prototype, err := s.prototype(req.ProductID, req.LocationID, req.ProductName, req.LocationName)
	if err != nil {
		return nil, err
	}

	record, err := s.stockRepo.ApplyDelta(ctx, prototype, req.Delta)
	if err != nil {
		s.metrics.RecordAdjustment(ctx, req.LocationID, false)
		return nil, err
	}
	s.metrics.RecordAdjustment(ctx, req.LocationID, true)

	s.logger.Debug("stock adjusted",
		zap.String("product_id", record.ProductID),
		zap.String("location_id", record.LocationID),
		zap.String("delta", req.Delta.String()),
		zap.String("available", record.Available.String()),
	)

	s.publishChange(ctx, record, req.Delta)

	response := ToStockRecordResponse(record)
	return &response, nil
}

// Transfer composes a source decrement and a destination increment as one
// atomic unit. Either both apply or neither does.
func (s *LedgerService) Transfer(ctx context.Context, req TransferStockRequest) (*TransferStockResponse, error) {
	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}
	if req.FromLocationID == req.ToLocationID {
		return nil, shared.ErrSameLocation
	}
	if _, ok := s.topology.Lookup(req.FromLocationID); !ok {
		return nil, inventory.ErrLocationNotFound
	}
	if _, ok := s.topology.Lookup(req.ToLocationID); !ok {
		return nil, inventory.ErrLocationNotFound
	}

	fromProto, err := s.prototype(req.ProductID, req.FromLocationID, req.ProductName, "")
	if err != nil {
		return nil, err
	}
	toProto, err := s.prototype(req.ProductID, req.ToLocationID, req.ProductName, "")
	if err != nil {
		return nil, err
	}

	var fromRecord, toRecord *inventory.StockRecord
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var txErr error
		fromRecord, txErr = repos.StockRecords().ApplyDelta(ctx, fromProto, req.Quantity.Neg())
		if txErr != nil {
			return txErr
		}
		toRecord, txErr = repos.StockRecords().ApplyDelta(ctx, toProto, req.Quantity)
		return txErr
	})
	if err != nil {
		s.metrics.RecordTransfer(ctx, false)
		return nil, err
	}
	s.metrics.RecordTransfer(ctx, true)

	// Events are published only after the transaction committed
	s.publishChange(ctx, fromRecord, req.Quantity.Neg())
	s.publishChange(ctx, toRecord, req.Quantity)

	return &TransferStockResponse{
		From: ToStockRecordResponse(fromRecord),
		To:   ToStockRecordResponse(toRecord),
	}, nil
}

// GetByKey retrieves the record for a product-location combination
func (s *LedgerService) GetByKey(ctx context.Context, productID, locationID string) (*StockRecordResponse, error) {
	record, err := s.stockRepo.FindByKey(ctx, productID, locationID)
	if err != nil {
		return nil, err
	}
	response := ToStockRecordResponse(record)
	return &response, nil
}

// List retrieves stock records matching the filter, paginated
func (s *LedgerService) List(ctx context.Context, filter StockListFilter) (*shared.Paginated[StockRecordResponse], error) {
	domainFilter := toDomainFilter(filter)

	records, err := s.stockRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.stockRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	items := make([]StockRecordResponse, len(records))
	for i := range records {
		items[i] = ToStockRecordResponse(&records[i])
	}

	paginated := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &paginated, nil
}

// Initialize bulk-creates the product catalog at a location with full
// default capacity. Reports alreadyExists when the location has records.
func (s *LedgerService) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResponse, error) {
	loc, ok := s.topology.Lookup(req.LocationID)
	if !ok {
		return nil, inventory.ErrLocationNotFound
	}

	existing, err := s.stockRepo.Count(ctx, shared.Filter{
		Filters: map[string]interface{}{"location_id": req.LocationID},
	})
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return &InitializeResponse{Created: 0, AlreadyExists: true}, nil
	}

	products := req.Products
	if len(products) == 0 {
		products = s.catalog
	}
	if len(products) == 0 {
		return nil, shared.NewDomainError("EMPTY_CATALOG", "No products to seed and no default catalog configured")
	}

	created := 0
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		for _, p := range products {
			record, buildErr := inventory.NewStockRecord(p.SKU, loc.ID, p.Name, loc.Name, loc.Region, loc.EffectiveCapacity())
			if buildErr != nil {
				return buildErr
			}
			record.SeedFull()
			if saveErr := repos.StockRecords().Save(ctx, record); saveErr != nil {
				return saveErr
			}
			created++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("location seeded",
		zap.String("location_id", loc.ID),
		zap.Int("products", created),
	)

	return &InitializeResponse{Created: created}, nil
}

func (s *LedgerService) prototype(productID, locationID, productName, locationName string) (*inventory.StockRecord, error) {
	return s.topology.NewRecordFor(productID, productName, locationID, locationName)
}

func (s *LedgerService) publishChange(ctx context.Context, record *inventory.StockRecord, delta decimal.Decimal) {
	if s.eventPublisher == nil || record == nil {
		return
	}
	// Handler errors are logged by the event bus, never propagated
	_ = s.eventPublisher.Publish(ctx, inventory.NewStockLevelChangedEvent(record, delta))
}

func toDomainFilter(filter StockListFilter) shared.Filter {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	if filter.LocationID != "" {
		domainFilter.Filters["location_id"] = filter.LocationID
	}
	if filter.ProductID != "" {
		domainFilter.Filters["product_id"] = filter.ProductID
	}
	if filter.Region != "" {
		domainFilter.Filters["region"] = filter.Region
	}
	return domainFilter
}
