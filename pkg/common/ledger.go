package common

import (
	"time"

	"github.com/solterminal/solterminal/pkg/utility/fixed"
)

// RiskLedger accumulates the estimated trading cost of fills for one
// calendar day. A stored day different from the current one means the
// accumulated value no longer counts.
type RiskLedger struct {
	Day     string      `json:"day"` // UTC calendar date, e.g. "2026-08-28"
	UsedUsd fixed.Point `json:"used_usd"`
}

// DayKey formats t as the ledger's UTC calendar-date key.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// UsedFor returns the spend that counts against the cap on day. A ledger
// carried over from another day contributes nothing. Read-only: the stored
// value is untouched until a fill debits it.
func (l RiskLedger) UsedFor(day string) fixed.Point {
	if l.Day != day {
		return fixed.Zero
	}
	return l.UsedUsd
}

// Debit charges amount against day, resetting first if the stored day
// differs (reset-on-write).
func (l *RiskLedger) Debit(day string, amount fixed.Point) {
	if l.Day != day {
		l.Day = day
		l.UsedUsd = fixed.Zero
	}
	l.UsedUsd = l.UsedUsd.Add(amount)
}
