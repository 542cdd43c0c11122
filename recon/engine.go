/*
engine.go - The suspicion-scoring algorithm

PURPOSE:
  For each overtime claim, derives the armed/disarmed periods of its
  business date from the state-change timeline, intersects the claim
  interval with every armed period, and flags the claim when any armed
  overlap exists.

CONSERVATIVE DEFAULTS (load-bearing, do not relax):
  - No security record for a date        => always flagged, never skipped
  - First state of the day is disarmed   => armed from midnight until then
  - Last state of the day is armed       => armed until next midnight
  - No periods derivable at all          => armed for the whole day
  An unarmed default would never flag anything, which defeats the audit.

SEE ALSO:
  - types.go: Verdict, Result, thresholds
  - analyzer.go: the one-call batch entry point
*/
package recon

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/warp/presence-audit/clock"
	"github.com/warp/presence-audit/overtime"
	"github.com/warp/presence-audit/security"
)

// =============================================================================
// ENGINE
// =============================================================================

type Engine struct {
	log zerolog.Logger
}

func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{log: log.With().Str("component", "recon").Logger()}
}

// securityPeriod is a contiguous interval of one security status. Exists
// only transiently inside the per-claim analysis.
type securityPeriod struct {
	start  time.Time
	end    time.Time
	status security.Status
}

// Reconcile checks every claim against the timeline and returns verdicts
// for the suspicious ones. A failure analyzing one claim is logged and
// skipped; it never aborts the pass.
func (e *Engine) Reconcile(timeline security.Timeline, claims []overtime.Claim) []Verdict {
	var verdicts []Verdict
	for _, claim := range claims {
		verdict := e.analyzeClaim(timeline, claim)
		if verdict != nil {
			verdicts = append(verdicts, *verdict)
		}
	}
	return verdicts
}

func (e *Engine) analyzeClaim(timeline security.Timeline, claim overtime.Claim) (verdict *Verdict) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Str("business_date", claim.BusinessDate.String()).
				Str("employee", claim.Employee).Interface("panic", r).
				Msg("claim analysis failed; no verdict emitted")
			verdict = nil
		}
	}()

	changes := timeline[claim.BusinessDate]
	if len(changes) == 0 {
		e.log.Info().Str("business_date", claim.BusinessDate.String()).
			Str("employee", claim.Employee).Msg("no security record for business date")
		return &Verdict{
			BusinessDate:   claim.BusinessDate,
			Employee:       claim.Employee,
			Department:     claim.Department,
			OvertimePeriod: claim.Period(),
			SecurityStatus: StatusNoRecord,
			Reason:         ReasonNoRecord,
			Description:    claim.Description,
			Holiday:        claim.Holiday,
		}
	}

	sorted := make([]security.StateChange, len(changes))
	copy(sorted, changes)
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].At.Before(sorted[b].At) })

	periods := derivePeriods(claim.BusinessDate, sorted)

	// Claim interval anchored on its business date, rolled past midnight
	// for overnight claims. Anchoring on the business date keeps overnight
	// claims (row dated D, attributed to D-1) on the same axis as the
	// periods derived above, which all live on the business date.
	claimStart := claim.BusinessDate.At(claim.Start)
	claimEnd := claim.BusinessDate.At(claim.End)
	if claim.End.Before(claim.Start) {
		claimEnd = claim.BusinessDate.AddDays(1).At(claim.End)
	}

	overlaps := armedOverlaps(periods, claimStart, claimEnd)
	total := overlapHours(overlaps)
	if !total.GreaterThan(decimal.NewFromFloat(MinSuspiciousOverlapHours)) {
		return nil
	}

	e.log.Info().Str("business_date", claim.BusinessDate.String()).
		Str("employee", claim.Employee).Str("hours", total.StringFixed(2)).
		Msg("armed overlap during claimed overtime")

	return &Verdict{
		BusinessDate:   claim.BusinessDate,
		Employee:       claim.Employee,
		Department:     claim.Department,
		OvertimePeriod: claim.Period(),
		SecurityStatus: armedStatus(sorted, claimStart, claimEnd),
		Reason:         suspiciousReason(total, overlaps, claim.Holiday),
		Description:    claim.Description,
		Holiday:        claim.Holiday,
	}
}

// =============================================================================
// PERIOD DERIVATION
// =============================================================================

// derivePeriods converts a day's sorted state changes into contiguous
// status periods.
func derivePeriods(day clock.Date, changes []security.StateChange) []securityPeriod {
	var periods []securityPeriod
	midnight := day.Time()
	nextMidnight := day.AddDays(1).Time()

	// The building is assumed armed overnight until the first disarm.
	if changes[0].Status == security.StatusDisarmed {
		periods = append(periods, securityPeriod{
			start:  midnight,
			end:    changes[0].At,
			status: security.StatusArmed,
		})
	}

	for i, change := range changes {
		if i == len(changes)-1 {
			// An open-ended trailing armed period persists to midnight.
			if change.Status == security.StatusArmed {
				periods = append(periods, securityPeriod{
					start:  change.At,
					end:    nextMidnight,
					status: security.StatusArmed,
				})
			}
			continue
		}
		periods = append(periods, securityPeriod{
			start:  change.At,
			end:    changes[i+1].At,
			status: change.Status,
		})
	}

	// Defensive fallback: with no derivable periods, assume armed all day.
	if len(periods) == 0 {
		periods = append(periods, securityPeriod{
			start:  midnight,
			end:    nextMidnight,
			status: security.StatusArmed,
		})
	}
	return periods
}

// =============================================================================
// OVERLAP ARITHMETIC
// =============================================================================

type interval struct {
	start time.Time
	end   time.Time
}

// armedOverlaps intersects the claim interval with every armed period. A
// claim may overlap several disjoint armed periods when a day has multiple
// disarm/arm cycles.
func armedOverlaps(periods []securityPeriod, claimStart, claimEnd time.Time) []interval {
	var overlaps []interval
	for _, p := range periods {
		if p.status != security.StatusArmed {
			continue
		}
		start := maxTime(p.start, claimStart)
		end := minTime(p.end, claimEnd)
		if start.Before(end) {
			overlaps = append(overlaps, interval{start: start, end: end})
		}
	}
	return overlaps
}

// overlapHours sums overlap durations exactly (seconds over 3600), so a
// claim fully inside one armed period reports its wall-clock duration
// without floating-point drift.
func overlapHours(overlaps []interval) decimal.Decimal {
	total := decimal.Zero
	for _, o := range overlaps {
		seconds := int64(o.end.Sub(o.start) / time.Second)
		total = total.Add(decimal.NewFromInt(seconds).Div(decimal.NewFromInt(3600)))
	}
	return total
}

// =============================================================================
// VERDICT TEXT
// =============================================================================

func suspiciousReason(total decimal.Decimal, overlaps []interval, holiday bool) string {
	spans := make([]string, len(overlaps))
	for i, o := range overlaps {
		spans[i] = o.start.Format("15:04") + "-" + o.end.Format("15:04")
	}
	reason := fmt.Sprintf("security armed during %s hours of claimed overtime (%s)",
		total.StringFixed(1), strings.Join(spans, ", "))
	if holiday {
		reason += " (holiday work)"
	}
	return reason
}

// armedStatus renders the verdict's security status, listing any arm
// events that fall inside the claim window.
func armedStatus(changes []security.StateChange, claimStart, claimEnd time.Time) string {
	var armTimes []string
	for _, change := range changes {
		if change.Status != security.StatusArmed {
			continue
		}
		if change.At.After(claimStart) && change.At.Before(claimEnd) {
			armTimes = append(armTimes, change.At.Format("15:04:05"))
		}
	}
	if len(armTimes) == 0 {
		return StatusArmed
	}
	return StatusArmed + " (armed at: " + strings.Join(armTimes, ", ") + ")"
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
