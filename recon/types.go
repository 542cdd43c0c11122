// Package recon reconciles overtime claims against the security timeline
// and produces suspicion verdicts.
package recon

import (
	"github.com/warp/presence-audit/clock"
	"github.com/warp/presence-audit/overtime"
	"github.com/warp/presence-audit/security"
)

// MinSuspiciousOverlapHours is the armed-overlap threshold above which a
// claim is flagged. The canonical rule flags on any overlap; a stricter
// grace period (a legacy variant used 0.25) is a one-line change here.
const MinSuspiciousOverlapHours = 0

// Security-status strings carried on verdicts.
const (
	StatusNoRecord = "no record"
	StatusArmed    = "security armed"
)

// ReasonNoRecord is the verdict reason when a business date has no
// security evidence at all. Absence of evidence is suspicious, not clean.
const ReasonNoRecord = "no security record exists for this business date"

// =============================================================================
// VERDICT - The engine's sole output record
// =============================================================================

// Verdict flags one overtime claim as suspicious. Claims judged clean
// produce no verdict. Immutable result object.
type Verdict struct {
	BusinessDate   clock.Date
	Employee       string
	Department     string
	OvertimePeriod string // "HH:MM-HH:MM"
	SecurityStatus string
	Reason         string
	Description    string
	Holiday        bool
}

// =============================================================================
// RESULT - Everything one run produces
// =============================================================================

// Result aggregates a run's verdicts with the three diagnostic lists.
// A fresh Result is built per run; nothing persists between invocations.
type Result struct {
	Verdicts    []Verdict
	MissingTime []overtime.MissingTimeRow
	ErrorRows   []overtime.ErrorRow
	UnclearDays []security.UnclearDay
}
