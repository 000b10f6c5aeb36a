package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Trigger rule labels for metrics
const (
	TriggerRuleStoreTransfer    = "store_transfer"
	TriggerRuleStoreRequest     = "store_request"
	TriggerRuleWarehouseRequest = "warehouse_request"
	TriggerRuleRecovery         = "recovery"
)

// Trigger outcome labels for metrics
const (
	TriggerOutcomeCreated = "created"
	TriggerOutcomeBumped  = "bumped"
	TriggerOutcomeSkipped = "skipped"
	TriggerOutcomeFailed  = "failed"
)

// BusinessMetrics tracks ledger mutations and replenishment trigger activity.
type BusinessMetrics struct {
	logger *zap.Logger

	adjustmentTotal *Counter
	transferTotal   *Counter
	triggerTotal    *Counter
	openAlerts      *Gauge
}

// NewBusinessMetrics creates a BusinessMetrics instance on the global meter.
func NewBusinessMetrics(logger *zap.Logger) (*BusinessMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	meter := Meter()
	bm := &BusinessMetrics{logger: logger}

	var err error

	bm.adjustmentTotal, err = NewCounter(
		meter,
		"inventory_ledger_adjustment_total",
		"Total number of ledger adjustments by location and result",
		"{adjustments}",
	)
	if err != nil {
		return nil, err
	}

	bm.transferTotal, err = NewCounter(
		meter,
		"inventory_ledger_transfer_total",
		"Total number of composite stock transfers by result",
		"{transfers}",
	)
	if err != nil {
		return nil, err
	}

	bm.triggerTotal, err = NewCounter(
		meter,
		"replenishment_trigger_total",
		"Replenishment trigger evaluations by rule and outcome",
		"{evaluations}",
	)
	if err != nil {
		return nil, err
	}

	bm.openAlerts, err = NewGauge(
		meter,
		"replenishment_open_alerts",
		"Number of live replenishment alerts",
		"{alerts}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordAdjustment records one ledger adjustment attempt
func (bm *BusinessMetrics) RecordAdjustment(ctx context.Context, locationID string, success bool) {
	if bm == nil {
		return
	}
	bm.adjustmentTotal.Inc(ctx,
		attribute.String("location_id", locationID),
		attribute.Bool("success", success),
	)
}

// RecordTransfer records one composite transfer attempt
func (bm *BusinessMetrics) RecordTransfer(ctx context.Context, success bool) {
	if bm == nil {
		return
	}
	bm.transferTotal.Inc(ctx, attribute.Bool("success", success))
}

// RecordTrigger records one trigger rule evaluation outcome
func (bm *BusinessMetrics) RecordTrigger(ctx context.Context, rule, outcome string) {
	if bm == nil {
		return
	}
	bm.triggerTotal.Inc(ctx,
		attribute.String("rule", rule),
		attribute.String("outcome", outcome),
	)
}

// RecordOpenAlerts records the current number of live alerts
func (bm *BusinessMetrics) RecordOpenAlerts(ctx context.Context, count int64) {
	if bm == nil {
		return
	}
	bm.openAlerts.Record(ctx, count)
}
