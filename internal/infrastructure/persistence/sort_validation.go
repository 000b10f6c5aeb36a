package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// StockRecordSortFields contains allowed sort fields for stock records
var StockRecordSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"product_id":    true,
	"location_id":   true,
	"product_name":  true,
	"location_name": true,
	"region":        true,
	"total_stock":   true,
	"available":     true,
	"last_updated":  true,
}

// TransferOrderSortFields contains allowed sort fields for transfer orders
var TransferOrderSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"transfer_id":      true,
	"product_sku":      true,
	"from_location_id": true,
	"to_location_id":   true,
	"status":           true,
	"quantity":         true,
	"departure_at":     true,
}

// RequestSortFields contains allowed sort fields for replenishment requests
var RequestSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"request_id":    true,
	"product_id":    true,
	"warehouse_id":  true,
	"status":        true,
	"quantity":      true,
	"delivery_date": true,
}

// AlertSortFields contains allowed sort fields for replenishment alerts
var AlertSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"alert_id":     true,
	"product_id":   true,
	"warehouse_id": true,
	"level":        true,
	"shortage_qty": true,
}

// ScheduleSortFields contains allowed sort fields for receiving schedules
var ScheduleSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"plan_no":     true,
	"product_sku": true,
	"status":      true,
	"eta":         true,
}
