package replenishment

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// StoreFloorMode selects how the store low-stock floor is computed
type StoreFloorMode string

const (
	// StoreFloorModeAbsolute compares available against a fixed unit count
	StoreFloorModeAbsolute StoreFloorMode = "absolute"
	// StoreFloorModeRatio compares available against a fraction of capacity
	StoreFloorModeRatio StoreFloorMode = "ratio"
)

// StoreAction selects which rule handles a store shortfall
type StoreAction string

const (
	// StoreActionTransfer opens or bumps a transfer order from the parent warehouse
	StoreActionTransfer StoreAction = "transfer"
	// StoreActionRequest opens a replenishment request toward the parent warehouse
	StoreActionRequest StoreAction = "request"
)

// ThresholdPolicy is the single reconciled threshold function for the
// trigger engine. One mode applies per deployment.
type ThresholdPolicy struct {
	StoreFloorMode  StoreFloorMode
	StoreFloorUnits decimal.Decimal // Floor in units when mode is absolute
	StoreFloorRatio decimal.Decimal // Floor as a fraction of capacity when mode is ratio
	StoreAction     StoreAction
	WarehouseRatio  decimal.Decimal // Regional warehouse low-stock threshold
	DangerRatio     decimal.Decimal // Below this fraction an alert is danger instead of warning
	TargetFillRatio decimal.Decimal // Replenishment sizes toward this fill level
	DeliveryLead    time.Duration   // Estimated delivery time for created requests
}

// DefaultThresholdPolicy returns the defaults: absolute store floor of 60
// units, 30% warehouse threshold, danger below 15%, 90% target fill,
// 72 hour delivery estimate.
func DefaultThresholdPolicy() ThresholdPolicy {
	return ThresholdPolicy{
		StoreFloorMode:  StoreFloorModeAbsolute,
		StoreFloorUnits: decimal.NewFromInt(60),
		StoreFloorRatio: decimal.RequireFromString("0.30"),
		StoreAction:     StoreActionTransfer,
		WarehouseRatio:  decimal.RequireFromString("0.30"),
		DangerRatio:     decimal.RequireFromString("0.15"),
		TargetFillRatio: decimal.RequireFromString("0.90"),
		DeliveryLead:    72 * time.Hour,
	}
}

// Validate checks mode values and that every ratio lies in (0, 1]
func (p ThresholdPolicy) Validate() error {
	switch p.StoreFloorMode {
	case StoreFloorModeAbsolute, StoreFloorModeRatio:
	default:
		return fmt.Errorf("threshold policy: unknown store floor mode %q", p.StoreFloorMode)
	}
	switch p.StoreAction {
	case StoreActionTransfer, StoreActionRequest:
	default:
		return fmt.Errorf("threshold policy: unknown store action %q", p.StoreAction)
	}
	if p.StoreFloorMode == StoreFloorModeAbsolute && p.StoreFloorUnits.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("threshold policy: store floor units must be positive")
	}
	for name, ratio := range map[string]decimal.Decimal{
		"store_floor_ratio": p.StoreFloorRatio,
		"warehouse_ratio":   p.WarehouseRatio,
		"danger_ratio":      p.DangerRatio,
		"target_fill_ratio": p.TargetFillRatio,
	} {
		if ratio.LessThanOrEqual(decimal.Zero) || ratio.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("threshold policy: %s must be in (0, 1], got %s", name, ratio)
		}
	}
	if p.DeliveryLead <= 0 {
		return fmt.Errorf("threshold policy: delivery lead must be positive")
	}
	return nil
}

// StoreFloor returns the store low-stock floor for a given capacity
func (p ThresholdPolicy) StoreFloor(totalStock decimal.Decimal) decimal.Decimal {
	if p.StoreFloorMode == StoreFloorModeRatio {
		return totalStock.Mul(p.StoreFloorRatio)
	}
	return p.StoreFloorUnits
}

// IsStoreLow reports whether a store's available stock is below the floor
func (p ThresholdPolicy) IsStoreLow(available, totalStock decimal.Decimal) bool {
	return available.LessThan(p.StoreFloor(totalStock))
}

// WarehouseThreshold returns the regional warehouse low-stock threshold
func (p ThresholdPolicy) WarehouseThreshold(totalStock decimal.Decimal) decimal.Decimal {
	return totalStock.Mul(p.WarehouseRatio)
}

// IsWarehouseLow reports whether a warehouse's available stock is below threshold
func (p ThresholdPolicy) IsWarehouseLow(available, totalStock decimal.Decimal) bool {
	return available.LessThan(p.WarehouseThreshold(totalStock))
}

// IsDanger reports whether a shortfall is severe enough for a danger alert
func (p ThresholdPolicy) IsDanger(available, totalStock decimal.Decimal) bool {
	return available.LessThan(totalStock.Mul(p.DangerRatio))
}

// TargetQuantity returns the rounded quantity needed to lift available to
// the target fill level. Zero when already at or above it.
func (p ThresholdPolicy) TargetQuantity(available, totalStock decimal.Decimal) decimal.Decimal {
	shortage := totalStock.Mul(p.TargetFillRatio).Sub(available)
	if shortage.IsNegative() {
		return decimal.Zero
	}
	return shortage.Round(0)
}
