package transfer

import (
	"fmt"
	"time"
)

// NewTransferID formats a transfer business identifier: TRF-YYYYMMDD-nnn.
// The sequence is the caller's per-day ordinal; it wraps at 1000.
func NewTransferID(t time.Time, seq int64) string {
	return fmt.Sprintf("TRF-%s-%03d", t.Format("20060102"), seq%1000)
}
