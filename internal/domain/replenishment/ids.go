package replenishment

import (
	"fmt"
	"time"
)

// NewRequestID formats a request business identifier: REQ-YYYYMMDD-nnn.
// The sequence is the caller's per-day ordinal; it wraps at 1000.
func NewRequestID(t time.Time, seq int64) string {
	return fmt.Sprintf("REQ-%s-%03d", t.Format("20060102"), seq%1000)
}

// NewAlertID formats an alert business identifier: ALERT-<unix millis>-nnn
func NewAlertID(t time.Time, seq int64) string {
	return fmt.Sprintf("ALERT-%d-%03d", t.UnixMilli(), seq%1000)
}
