// Package overtime extracts normalized overtime-claim records from the
// fixed-layout work-hours export.
package overtime

import (
	"github.com/shopspring/decimal"
	"github.com/warp/presence-audit/clock"
)

// =============================================================================
// CLAIM - One contiguous overtime interval
// =============================================================================

// SegmentKind classifies a claim relative to the regular-hours window.
type SegmentKind string

const (
	EarlyArrival  SegmentKind = "early_arrival"
	LateDeparture SegmentKind = "late_departure"
	HolidayWork   SegmentKind = "holiday_work"
)

// Claim is one reconciled overtime interval. A single input row yields
// zero, one, or two claims depending on how its interval relates to the
// regular-hours window.
type Claim struct {
	BusinessDate clock.Date
	Date         clock.Date // original calendar date from the source row
	Start        clock.Clock
	End          clock.Clock
	Kind         SegmentKind
	Employee     string
	Department   string
	// RecordedHours is the author-supplied figure from the source row.
	// Carried for display only, never trusted by the engine.
	RecordedHours *decimal.Decimal
	Description   string
	Holiday       bool
}

// Period renders the claim interval as "HH:MM-HH:MM" for display.
func (c Claim) Period() string {
	return c.Start.String() + "-" + c.End.String()
}

// =============================================================================
// DIAGNOSTICS
// =============================================================================

// MissingTimeRow records a row excluded from claim extraction because one
// or both time fields were absent. Informational output for follow-up.
type MissingTimeRow struct {
	Date          clock.Date
	Employee      string
	Department    string
	MissingFields []string
	Raw           map[string]string
}

// ErrorRow records a row that failed during processing. The batch is never
// aborted for a single malformed row.
type ErrorRow struct {
	Date     clock.Date
	Employee string
	Reason   string
	Raw      map[string]string
}
