package replenishment

import (
	"context"
	"errors"
	"fmt"
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

// TriggerHandler is the replenishment trigger engine. It subscribes to
// StockLevelChanged events and decides, after every ledger mutation,
// whether automatic replenishment action is needed.
//
// Rules, evaluated by location class:
//   - store below floor: find-or-bump a PENDING transfer order from the
//     store's parent regional warehouse (or open a request, when the
//     policy selects the request path)
//   - regional warehouse below threshold: open a request toward the
//     central warehouse and upsert an advisory alert
//   - regional warehouse back at or above threshold: delete the alert
//
// The handler never writes stock records. Duplicate work is prevented by
// the open-request guard, the alert upsert key, the PENDING-transfer bump,
// and an idempotency store keyed by event ID for redelivered events.
type TriggerHandler struct {
	topology     *inventory.Topology
	transferRepo transfer.TransferOrderRepository
	scheduleRepo receiving.ScheduleRepository
	requestRepo  replenishment.RequestRepository
	alertRepo    replenishment.AlertRepository
	policy       ThresholdPolicy
	logger       *zap.Logger
	metrics      *telemetry.BusinessMetrics

	idempotency    shared.IdempotencyStore
	idempotencyCfg shared.IdempotencyConfig

	now func() time.Time
}

// NewTriggerHandler creates a new trigger engine handler
func NewTriggerHandler(
	topology *inventory.Topology,
	transferRepo transfer.TransferOrderRepository,
	scheduleRepo receiving.ScheduleRepository,
	requestRepo replenishment.RequestRepository,
	alertRepo replenishment.AlertRepository,
	policy ThresholdPolicy,
	logger *zap.Logger,
) *TriggerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TriggerHandler{
		topology:       topology,
		transferRepo:   transferRepo,
		scheduleRepo:   scheduleRepo,
		requestRepo:    requestRepo,
		alertRepo:      alertRepo,
		policy:         policy,
		logger:         logger,
		idempotencyCfg: shared.DefaultIdempotencyConfig(),
		now:            time.Now,
	}
}

// WithIdempotencyStore sets the store used to drop redelivered events
func (h *TriggerHandler) WithIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) *TriggerHandler {
	h.idempotency = store
	h.idempotencyCfg = cfg
	return h
}

// SetBusinessMetrics sets the business metrics collector
func (h *TriggerHandler) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	h.metrics = bm
}

// EventTypes returns the event types this handler is interested in
func (h *TriggerHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockLevelChanged}
}

// Handle processes a StockLevelChangedEvent
func (h *TriggerHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	changed, ok := event.(*inventory.StockLevelChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeStockLevelChanged, event.EventType())
	}

	if h.idempotency != nil && h.idempotencyCfg.Enabled {
		fresh, err := h.idempotency.MarkProcessed(ctx, changed.EventID().String(), h.idempotencyCfg.TTL)
		if err != nil {
			// Fail open: a broken idempotency store must not stop
			// replenishment; the domain guards still dedup.
			h.logger.Warn("idempotency store unavailable, processing anyway",
				zap.String("event_id", changed.EventID().String()),
				zap.Error(err),
			)
		} else if !fresh {
			h.logger.Debug("duplicate event dropped",
				zap.String("event_id", changed.EventID().String()),
			)
			return nil
		}
	}

	class, known := h.topology.ClassOf(changed.LocationID)
	if !known {
		h.logger.Debug("stock change at location outside topology, no trigger",
			zap.String("location_id", changed.LocationID),
		)
		return nil
	}

	switch class {
	case inventory.ClassStore:
		if h.policy.IsStoreLow(changed.Available, changed.TotalStock) {
			return h.handleStoreLow(ctx, changed)
		}
	case inventory.ClassRegionalWarehouse:
		if h.policy.IsWarehouseLow(changed.Available, changed.TotalStock) {
			return h.handleWarehouseLow(ctx, changed)
		}
		return h.handleRecovery(ctx, changed)
	}

	return nil
}

// handleStoreLow runs the store shortfall rule selected by the policy
func (h *TriggerHandler) handleStoreLow(ctx context.Context, changed *inventory.StockLevelChangedEvent) error {
	if h.policy.StoreAction == StoreActionRequest {
		return h.openStoreRequest(ctx, changed)
	}
	return h.upsertStoreTransfer(ctx, changed)
}

// upsertStoreTransfer finds or creates a PENDING transfer order from the
// store's parent regional warehouse, sized to the target fill level. An
// existing PENDING order for the same route is bumped to the larger
// quantity instead of duplicated; IN_TRANSIT orders do not satisfy a
// fresh shortfall.
func (h *TriggerHandler) upsertStoreTransfer(ctx context.Context, changed *inventory.StockLevelChangedEvent) error {
	parent, ok := h.topology.ParentWarehouse(changed.LocationID)
	if !ok {
		h.metrics.RecordTrigger(ctx, telemetry.TriggerRuleStoreTransfer, telemetry.TriggerOutcomeFailed)
		return fmt.Errorf("store %s has no parent warehouse in topology", changed.LocationID)
	}

	proposed := h.policy.TargetQuantity(changed.Available, changed.TotalStock)
	if proposed.IsZero() {
		h.metrics.RecordTrigger(ctx, telemetry.TriggerRuleStoreTransfer, telemetry.TriggerOutcomeSkipped)
		return nil
	}

	pending, err := h.transferRepo.FindByRoute(ctx, changed.ProductID, parent.ID, changed.LocationID, transfer.TransferOrderStatusPending)
	if err != nil {
		h.metrics.RecordTrigger(ctx, telemetry.TriggerRuleStoreTransfer, telemetry.TriggerOutcomeFailed)
		return err
	}

	if len(pending) > 0 {
		order := &pending[0]
		if err := order.IncreaseQuantity(proposed, "Quantity raised by low-stock trigger"); err != nil {
			h.metrics.RecordTrigger(ctx, telemetry.TriggerRuleStoreTransfer, telemetry.TriggerOutcomeFailed)
			return err
		}
		if err := h.transferRepo.Save(ctx, order); err != nil {
			h.metrics.RecordTrigger(ctx, telemetry.TriggerRuleStoreTransfer, telemetry.TriggerOutcomeFailed)
			return err
		}
		if err := h.syncSchedule(ctx, order, parent.Name); err != nil {
			h.metrics.RecordTrigger(ctx, telemetry.TriggerRuleStoreTransfer, telemetry.TriggerOutcomeFailed)
			return err
		}
		h.metrics.RecordTrigger(ctx, telemetry.TriggerRuleStoreTransfer, telemetry.TriggerOutcomeBumped)
		h.logger.Info("pending transfer bumped for low-stock store",
			zap.String("transfer_id", order.TransferID),
			zap.String("store", changed.LocationID),
			zap.String("quantity", order.Quantity.String()),
		)
		return nil
	}

	seq, err := h.transferRepo.Count(ctx, shared.Filter{})
	if err != nil {
		h.metrics.RecordTrigger(ctx, telemetry.TriggerRuleStoreTransfer, telemetry.TriggerOutcomeFailed)
		return err
	}

	var order *transfer.TransferOrder
	for attempt := 0; ; attempt++ {
		order, err = transfer.NewTransferOrder(
			transfer.NewTransferID(h.now(), seq+1+int64(attempt)),
			changed.ProductID,
			changed.ProductName,
			proposed,
			parent.ID,
			parent.Name,
			changed.LocationID,
			changed.LocationName,
			"Auto replenishment for low store stock",
		)
		if err != nil {
			h.metrics.RecordTrigger(ctx, telemetry.TriggerRuleStoreTransfer, telemetry.TriggerOutcomeFailed)
			return err
		}
		err = h.transferRepo.Save(ctx, order)
		if err == nil {
			break
		}
		// Sequence numbers race under concurrent creators and wrap within a
		// day; bump the suffix and retry on a business-ID collision.
		if errors.Is(err, shared.ErrAlreadyExists) && attempt < maxIDAttempts-1 {
			continue
		}
		h.metrics.RecordTrigger(ctx, telemetry.TriggerRuleStoreTransfer, telemetry.TriggerOutcomeFailed)
		return err
	}

	if err := h.syncSchedule(ctx, order, parent.Name); err != nil {
		h.metrics.RecordTrigger(ctx, telemetry.TriggerRuleStoreTransfer, telemetry.TriggerOutcomeFailed)
		return err
	}

	h.metrics.RecordTrigger(ctx, telemetry.TriggerRuleStoreTransfer, telemetry.TriggerOutcomeCreated)
	h.logger.Info("transfer order created for low-stock store",
		zap.String("transfer_id", order.TransferID),
		zap.String("product_id", changed.ProductID),
		zap.String("from", parent.ID),
		zap.String("to", changed.LocationID),
		zap.String("quantity", proposed.String()),
	)
	return nil
}

// openStoreRequest opens a replenishment request toward the store's parent
// regional warehouse, guarded by the open-request check.
func (h *TriggerHandler) openStoreRequest(ctx context.Context, changed *inventory.StockLevelChangedEvent) error {
	parent, ok := h.topology.ParentWarehouse(changed.LocationID)
	if !ok {
		h.metrics.RecordTrigger(ctx, telemetry.TriggerRuleStoreRequest, telemetry.TriggerOutcomeFailed)
		return fmt.Errorf("store %s has no parent warehouse in topology", changed.LocationID)
	}

	quantity := h.policy.TargetQuantity(changed.Available, changed.TotalStock)
	if quantity.IsZero() {
		h.metrics.RecordTrigger(ctx, telemetry.TriggerRuleStoreRequest, telemetry.TriggerOutcomeSkipped)
		return nil
	}

	reason := fmt.Sprintf("Store %s stock below floor: %s available", changed.LocationID, changed.Available)
	created, err := h.openRequest(ctx, changed, changed.LocationID, changed.LocationName, parent.Name, quantity, reason)
	if err != nil {
		h.metrics.RecordTrigger(ctx, telemetry.TriggerRuleStoreRequest, telemetry.TriggerOutcomeFailed)
		return err
	}
	if !created {
		h.metrics.RecordTrigger(ctx, telemetry.TriggerRuleStoreRequest, telemetry.TriggerOutcomeSkipped)
		return nil
	}

	// The request is addressed to the parent warehouse, so the advisory
	// alert lands there too, flagging the demand it is about to absorb.
	alert, err := replenishment.NewAlert(
		replenishment.NewAlertID(h.now(), h.now().UnixNano()%1000),
		changed.ProductID,
		changed.ProductName,
		parent.ID,
		parent.Name,
		changed.Available,
		quantity,
		h.policy.StoreFloor(changed.TotalStock),
		fmt.Sprintf("Store %s inventory below floor", changed.LocationID),
		replenishment.AlertLevelWarning,
	)
	if err != nil {
		h.metrics.RecordTrigger(ctx, telemetry.TriggerRuleStoreRequest, telemetry.TriggerOutcomeFailed)
		return err
	}
	if err := h.alertRepo.Upsert(ctx, alert); err != nil {
		h.metrics.RecordTrigger(ctx, telemetry.TriggerRuleStoreRequest, telemetry.TriggerOutcomeFailed)
		return err
	}

	h.metrics.RecordTrigger(ctx, telemetry.TriggerRuleStoreRequest, telemetry.TriggerOutcomeCreated)
	return nil
}

// handleWarehouseLow upserts the shortfall alert and, when no open request
// exists, opens one toward the central warehouse.
func (h *TriggerHandler) handleWarehouseLow(ctx context.Context, changed *inventory.StockLevelChangedEvent) error {
	threshold := h.policy.WarehouseThreshold(changed.TotalStock)
	suggested := h.policy.TargetQuantity(changed.Available, changed.TotalStock)

	level := replenishment.AlertLevelWarning
	if h.policy.IsDanger(changed.Available, changed.TotalStock) {
		level = replenishment.AlertLevelDanger
	}

	alert, err := replenishment.NewAlert(
		replenishment.NewAlertID(h.now(), h.now().UnixNano()%1000),
		changed.ProductID,
		changed.ProductName,
		changed.LocationID,
		changed.LocationName,
		changed.Available,
		suggested,
		threshold,
		fmt.Sprintf("Available %s below threshold %s at %s", changed.Available, threshold.Round(0), changed.LocationID),
		level,
	)
	if err != nil {
		h.metrics.RecordTrigger(ctx, telemetry.TriggerRuleWarehouseRequest, telemetry.TriggerOutcomeFailed)
		return err
	}
	// Upserted on every low-stock event so the advisory stays current even
	// while the open-request guard blocks a duplicate request
	if err := h.alertRepo.Upsert(ctx, alert); err != nil {
		h.metrics.RecordTrigger(ctx, telemetry.TriggerRuleWarehouseRequest, telemetry.TriggerOutcomeFailed)
		return err
	}

	if suggested.IsZero() {
		h.metrics.RecordTrigger(ctx, telemetry.TriggerRuleWarehouseRequest, telemetry.TriggerOutcomeSkipped)
		return nil
	}

	reason := fmt.Sprintf("Warehouse %s below %s%% of capacity", changed.LocationID, h.policy.WarehouseRatio.Mul(hundred))
	created, err := h.openRequest(ctx, changed, changed.LocationID, changed.LocationName, centralVendor, suggested, reason)
	if err != nil {
		h.metrics.RecordTrigger(ctx, telemetry.TriggerRuleWarehouseRequest, telemetry.TriggerOutcomeFailed)
		return err
	}
	if created {
		h.metrics.RecordTrigger(ctx, telemetry.TriggerRuleWarehouseRequest, telemetry.TriggerOutcomeCreated)
	} else {
		h.metrics.RecordTrigger(ctx, telemetry.TriggerRuleWarehouseRequest, telemetry.TriggerOutcomeSkipped)
	}
	return nil
}

// handleRecovery deletes the alert once a warehouse is back at or above threshold
func (h *TriggerHandler) handleRecovery(ctx context.Context, changed *inventory.StockLevelChangedEvent) error {
	if err := h.alertRepo.DeleteByKey(ctx, changed.ProductID, changed.LocationID); err != nil {
		h.metrics.RecordTrigger(ctx, telemetry.TriggerRuleRecovery, telemetry.TriggerOutcomeFailed)
		return err
	}
	h.metrics.RecordTrigger(ctx, telemetry.TriggerRuleRecovery, telemetry.TriggerOutcomeCreated)
	return nil
}

// openRequest creates a request unless an open one already exists for the
// (product, warehouse) pair. Returns true when a request was created.
func (h *TriggerHandler) openRequest(ctx context.Context, changed *inventory.StockLevelChangedEvent, warehouseID, warehouseName, vendor string, quantity decimal.Decimal, reason string) (bool, error) {
	existing, err := h.requestRepo.FindOpen(ctx, changed.ProductID, warehouseID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return false, err
	}
	if existing != nil {
		h.logger.Debug("open request exists, skipping",
			zap.String("request_id", existing.RequestID),
			zap.String("product_id", changed.ProductID),
			zap.String("warehouse_id", warehouseID),
		)
		return false, nil
	}

	seq, err := h.requestRepo.Count(ctx, shared.Filter{})
	if err != nil {
		return false, err
	}

	var req *replenishment.Request
	for attempt := 0; ; attempt++ {
		req, err = replenishment.NewRequest(
			replenishment.NewRequestID(h.now(), seq+1+int64(attempt)),
			changed.ProductID,
			changed.ProductName,
			vendor,
			quantity,
			h.now().Add(h.policy.DeliveryLead),
			warehouseID,
			warehouseName,
			reason,
		)
		if err != nil {
			return false, err
		}
		err = h.requestRepo.Save(ctx, req)
		if err == nil {
			break
		}
		if errors.Is(err, shared.ErrAlreadyExists) && attempt < maxIDAttempts-1 {
			continue
		}
		return false, err
	}

	h.logger.Info("replenishment request opened",
		zap.String("request_id", req.RequestID),
		zap.String("product_id", changed.ProductID),
		zap.String("warehouse_id", warehouseID),
		zap.String("quantity", quantity.String()),
	)
	return true, nil
}

// syncSchedule keeps the receiving schedule paired with an auto-managed
// transfer order. Completion at the destination starts from the schedule,
// so an order without one could never be received.
func (h *TriggerHandler) syncSchedule(ctx context.Context, order *transfer.TransferOrder, supplier string) error {
	schedule, err := h.scheduleRepo.FindByPlanNo(ctx, order.TransferID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		schedule, err = receiving.NewSchedule(
			order.TransferID,
			supplier,
			h.now().Add(receivingWindow),
			"",
			order.ProductSKU,
			order.ProductName,
			order.Quantity,
			order.ToLocationID,
		)
		if err != nil {
			return err
		}
		return h.scheduleRepo.Save(ctx, schedule)
	}
	if err := schedule.RaiseQuantity(order.Quantity); err != nil {
		return err
	}
	return h.scheduleRepo.Save(ctx, schedule)
}

const (
	centralVendor = "Central Warehouse"

	// receivingWindow mirrors the delivery window quoted on operator-created
	// transfers.
	receivingWindow = 48 * time.Hour

	// maxIDAttempts bounds retries when a generated business ID collides
	// with an existing row's unique index.
	maxIDAttempts = 3
)

var hundred = decimal.NewFromInt(100)

// Ensure TriggerHandler implements shared.EventHandler
var _ shared.EventHandler = (*TriggerHandler)(nil)
