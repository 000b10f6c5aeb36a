package transfer

import (
	"context"
	"errors"
	"time"

	"github.com/retailops/backend/internal/domain/inventory"
	"github.com/retailops/backend/internal/domain/receiving"
	"github.com/retailops/backend/internal/domain/replenishment"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/domain/transfer"
	"github.com/retailops/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// deliveryWindow is how far out a receiving schedule's ETA is set when a
// transfer order is created.
const deliveryWindow = 48 * time.Hour

const recentLogLimit = 20

// maxIDAttempts bounds retries when a generated business ID collides with
// an existing row's unique index.
const maxIDAttempts = 3

// TransferService drives the transfer order lifecycle. Stock only moves at
// two points: the source is decremented at dispatch and the destination is
// incremented when receiving confirms the goods, each inside the same
// transaction as the status transition.
type TransferService struct {
	txScope        TransactionScope
	transferRepo   transfer.TransferOrderRepository
	scheduleRepo   receiving.ScheduleRepository
	logRepo        receiving.LogRepository
	topology       *inventory.Topology
	eventPublisher shared.EventPublisher
	metrics        *telemetry.BusinessMetrics
	logger         *zap.Logger
	now            func() time.Time
}

// NewTransferService creates a new transfer service
func NewTransferService(
	txScope TransactionScope,
	transferRepo transfer.TransferOrderRepository,
	scheduleRepo receiving.ScheduleRepository,
	logRepo receiving.LogRepository,
	topology *inventory.Topology,
	logger *zap.Logger,
) *TransferService {
	return &TransferService{
		txScope:      txScope,
		transferRepo: transferRepo,
		scheduleRepo: scheduleRepo,
		logRepo:      logRepo,
		topology:     topology,
		logger:       logger,
		now:          time.Now,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *TransferService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics recorder
func (s *TransferService) SetBusinessMetrics(metrics *telemetry.BusinessMetrics) {
	s.metrics = metrics
}

// Create opens a PENDING transfer order and its receiving schedule. No
// stock moves here. When RequestID is set the referenced replenishment
// request must already be approved.
func (s *TransferService) Create(ctx context.Context, req CreateTransferRequest) (*TransferOrderResponse, error) {
	from, ok := s.topology.Lookup(req.FromLocationID)
	if !ok {
		return nil, inventory.ErrLocationNotFound
	}
	to, ok := s.topology.Lookup(req.ToLocationID)
	if !ok {
		return nil, inventory.ErrLocationNotFound
	}
	if req.FromLocationID == req.ToLocationID {
		return nil, shared.ErrSameLocation
	}

	var created *transfer.TransferOrder
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var linked *replenishment.Request
		if req.RequestID != "" {
			r, err := repos.Requests().FindByRequestID(ctx, req.RequestID)
			if err != nil {
				return err
			}
			if r.Status != replenishment.RequestStatusApproved {
				return shared.NewDomainError("INVALID_STATE", "Linked replenishment request must be approved")
			}
			linked = r
		}

		seq, err := repos.TransferOrders().Count(ctx, shared.Filter{})
		if err != nil {
			return err
		}
		var order *transfer.TransferOrder
		for attempt := 0; ; attempt++ {
			order, err = transfer.NewTransferOrder(
				transfer.NewTransferID(s.now(), seq+1+int64(attempt)),
				req.ProductSKU, req.ProductName, req.Quantity,
				from.ID, from.Name, to.ID, to.Name, req.Note,
			)
			if err != nil {
				return err
			}
			if linked != nil {
				order.LinkRequest(linked.RequestID)
			}
			err = repos.TransferOrders().Save(ctx, order)
			if err == nil {
				break
			}
			// The day-scoped suffix wraps and concurrent creators race on
			// the same count; take the next suffix on a collision.
			if errors.Is(err, shared.ErrAlreadyExists) && attempt < maxIDAttempts-1 {
				continue
			}
			return err
		}

		schedule, err := receiving.NewSchedule(
			order.TransferID, from.Name, s.now().Add(deliveryWindow), "",
			req.ProductSKU, req.ProductName, req.Quantity, to.ID,
		)
		if err != nil {
			return err
		}
		if err := repos.Schedules().Save(ctx, schedule); err != nil {
			return err
		}
		created = order
		return nil
	})
	if err != nil {
		s.recordTransfer(ctx, false)
		return nil, err
	}
	s.recordTransfer(ctx, true)
	s.publish(ctx, transfer.NewTransferOrderCreatedEvent(created))

	s.logger.Info("transfer order created",
		zap.String("transfer_id", created.TransferID),
		zap.String("product_sku", created.ProductSKU),
		zap.String("from", created.FromLocationID),
		zap.String("to", created.ToLocationID),
		zap.String("quantity", created.Quantity.String()))

	resp := ToTransferOrderResponse(created)
	return &resp, nil
}

// Dispatch moves the order to IN_TRANSIT and decrements the source
// location in the same transaction. The decrement is a bounded ledger
// update, so dispatching more than the source holds fails the whole
// operation and the order stays PENDING.
func (s *TransferService) Dispatch(ctx context.Context, transferID string, req DispatchTransferRequest) (*TransferOrderResponse, error) {
	departureAt := s.now()
	if req.DepartureAt != nil {
		departureAt = *req.DepartureAt
	}

	var (
		dispatched *transfer.TransferOrder
		sourceRec  *inventory.StockRecord
		delta      decimal.Decimal
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.TransferOrders().FindByTransferID(ctx, transferID)
		if err != nil {
			return err
		}
		if err := order.Dispatch(req.Carrier, req.Dock, departureAt, req.Remark); err != nil {
			return err
		}

		proto, err := s.topology.NewRecordFor(order.ProductSKU, order.ProductName, order.FromLocationID, order.FromLocationName)
		if err != nil {
			return err
		}
		delta = order.Quantity.Neg()
		sourceRec, err = repos.StockRecords().ApplyDelta(ctx, proto, delta)
		if err != nil {
			return err
		}

		if err := repos.TransferOrders().SaveWithLock(ctx, order); err != nil {
			return err
		}
		if err := s.markScheduleInTransit(ctx, repos, order.TransferID); err != nil {
			return err
		}
		if order.RequestID != "" {
			if err := s.markRequestInTransit(ctx, repos, order.RequestID, order.TransferID); err != nil {
				return err
			}
		}
		dispatched = order
		return nil
	})
	if err != nil {
		s.recordTransfer(ctx, false)
		return nil, err
	}
	s.recordTransfer(ctx, true)
	s.publish(ctx, transfer.NewTransferOrderDispatchedEvent(dispatched))
	s.publish(ctx, inventory.NewStockLevelChangedEvent(sourceRec, delta))

	s.logger.Info("transfer order dispatched",
		zap.String("transfer_id", dispatched.TransferID),
		zap.String("carrier", dispatched.Carrier),
		zap.String("source_available", sourceRec.Available.String()))

	resp := ToTransferOrderResponse(dispatched)
	return &resp, nil
}

// Cancel cancels a PENDING order. Nothing has shipped yet so no stock
// compensation is needed.
func (s *TransferService) Cancel(ctx context.Context, transferID, note string) (*TransferOrderResponse, error) {
	order, err := s.transferRepo.FindByTransferID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if err := order.Cancel(note); err != nil {
		return nil, err
	}
	if err := s.transferRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("transfer order cancelled", zap.String("transfer_id", order.TransferID))

	resp := ToTransferOrderResponse(order)
	return &resp, nil
}

// CompleteReceiving confirms arrival at the dock and runs the cascade:
// the destination ledger is incremented, the schedule is marked ARRIVED,
// a receiving log is appended, and the matching transfer order and any
// linked replenishment request are completed, all in one transaction.
func (s *TransferService) CompleteReceiving(ctx context.Context, planNo string, req CompleteReceivingRequest) (*CompleteReceivingResponse, error) {
	if req.Received.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}
	storage, ok := s.topology.Lookup(req.StorageLocationID)
	if !ok {
		return nil, inventory.ErrLocationNotFound
	}

	var (
		schedule   *receiving.Schedule
		logEntry   *receiving.Log
		order      *transfer.TransferOrder
		storageRec *inventory.StockRecord
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		schedule, err = repos.Schedules().FindByPlanNo(ctx, planNo)
		if err != nil {
			return err
		}
		if err := schedule.MarkArrived(storage.ID); err != nil {
			return err
		}

		proto, err := s.topology.NewRecordFor(schedule.ProductSKU, schedule.ProductName, storage.ID, storage.Name)
		if err != nil {
			return err
		}
		storageRec, err = repos.StockRecords().ApplyDelta(ctx, proto, req.Received)
		if err != nil {
			return err
		}

		logEntry, err = receiving.NewLog(schedule.PlanNo, schedule.Supplier, schedule.ProductSKU, req.Received, storage.ID, req.Remark)
		if err != nil {
			return err
		}
		if err := repos.Schedules().Save(ctx, schedule); err != nil {
			return err
		}
		if err := repos.ReceivingLogs().Append(ctx, logEntry); err != nil {
			return err
		}
		return s.completeLinkedOrder(ctx, repos, schedule.PlanNo, &order)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, inventory.NewStockLevelChangedEvent(storageRec, req.Received))
	if order != nil {
		s.publish(ctx, transfer.NewTransferOrderCompletedEvent(order))
	}

	s.logger.Info("receiving completed",
		zap.String("plan_no", planNo),
		zap.String("storage_location", storage.ID),
		zap.String("received", req.Received.String()))

	resp := &CompleteReceivingResponse{
		Schedule: ToScheduleResponse(schedule),
		Log:      ToReceivingLogResponse(logEntry),
	}
	if order != nil {
		orderResp := ToTransferOrderResponse(order)
		resp.Transfer = &orderResp
	}
	return resp, nil
}

// completeLinkedOrder finishes the transfer order whose ID matches the
// plan number, plus any replenishment request hanging off it. Schedules
// created outside the transfer workflow have no matching order; that is
// not an error.
func (s *TransferService) completeLinkedOrder(ctx context.Context, repos TransactionalRepositories, planNo string, out **transfer.TransferOrder) error {
	order, err := repos.TransferOrders().FindByTransferID(ctx, planNo)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := order.Complete("Receiving confirmed"); err != nil {
		return err
	}
	if err := repos.TransferOrders().SaveWithLock(ctx, order); err != nil {
		return err
	}
	*out = order

	if order.RequestID == "" {
		return nil
	}
	request, err := repos.Requests().FindByRequestID(ctx, order.RequestID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("transfer order references missing request",
				zap.String("transfer_id", order.TransferID),
				zap.String("request_id", order.RequestID))
			return nil
		}
		return err
	}
	if !request.Status.CanTransitionTo(replenishment.RequestStatusCompleted) {
		s.logger.Warn("linked request not completable",
			zap.String("request_id", request.RequestID),
			zap.String("status", request.Status.String()))
		return nil
	}
	if err := request.Complete("Goods received at " + order.ToLocationName); err != nil {
		return err
	}
	return repos.Requests().SaveWithLock(ctx, request)
}

func (s *TransferService) markScheduleInTransit(ctx context.Context, repos TransactionalRepositories, planNo string) error {
	schedule, err := repos.Schedules().FindByPlanNo(ctx, planNo)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := schedule.MarkInTransit(); err != nil {
		return err
	}
	return repos.Schedules().Save(ctx, schedule)
}

func (s *TransferService) markRequestInTransit(ctx context.Context, repos TransactionalRepositories, requestID, transferID string) error {
	request, err := repos.Requests().FindByRequestID(ctx, requestID)
	if err != nil {
		return err
	}
	if err := request.MarkInTransit(transferID); err != nil {
		return err
	}
	return repos.Requests().SaveWithLock(ctx, request)
}

// Get retrieves a transfer order by business ID
func (s *TransferService) Get(ctx context.Context, transferID string) (*TransferOrderResponse, error) {
	order, err := s.transferRepo.FindByTransferID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	resp := ToTransferOrderResponse(order)
	return &resp, nil
}

// List retrieves transfer orders with filters and pagination
func (s *TransferService) List(ctx context.Context, filter TransferListFilter) (*shared.Paginated[TransferOrderResponse], error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.LocationID != "" {
		domainFilter.Filters["location_id"] = filter.LocationID
	}
	if filter.ProductSKU != "" {
		domainFilter.Filters["product_sku"] = filter.ProductSKU
	}

	orders, err := s.transferRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.transferRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	items := make([]TransferOrderResponse, len(orders))
	for i := range orders {
		items[i] = ToTransferOrderResponse(&orders[i])
	}
	paginated := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &paginated, nil
}

// ListSchedules retrieves receiving schedules, optionally scoped to a
// storage location
func (s *TransferService) ListSchedules(ctx context.Context, storageLocationID string) ([]ScheduleResponse, error) {
	var (
		schedules []receiving.Schedule
		err       error
	)
	if storageLocationID != "" {
		schedules, err = s.scheduleRepo.FindByStorageLocation(ctx, storageLocationID, shared.DefaultFilter())
	} else {
		schedules, err = s.scheduleRepo.FindAll(ctx, shared.DefaultFilter())
	}
	if err != nil {
		return nil, err
	}
	items := make([]ScheduleResponse, len(schedules))
	for i := range schedules {
		items[i] = ToScheduleResponse(&schedules[i])
	}
	return items, nil
}

// RecentLogs retrieves the latest receiving log entries
func (s *TransferService) RecentLogs(ctx context.Context) ([]ReceivingLogResponse, error) {
	logs, err := s.logRepo.FindRecent(ctx, recentLogLimit)
	if err != nil {
		return nil, err
	}
	items := make([]ReceivingLogResponse, len(logs))
	for i := range logs {
		items[i] = ToReceivingLogResponse(&logs[i])
	}
	return items, nil
}

func (s *TransferService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
	}
}

func (s *TransferService) recordTransfer(ctx context.Context, success bool) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordTransfer(ctx, success)
}
