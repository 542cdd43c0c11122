package recon_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/presence-audit/clock"
	"github.com/warp/presence-audit/overtime"
	"github.com/warp/presence-audit/recon"
	"github.com/warp/presence-audit/security"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func day(d int) clock.Date { return clock.NewDate(2023, time.May, d) }

func change(d, hour, minute int, status security.Status) security.StateChange {
	return security.StateChange{At: day(d).At(clock.NewClock(hour, minute, 0)), Status: status}
}

func claim(d int, start, end clock.Clock, kind overtime.SegmentKind) overtime.Claim {
	return overtime.Claim{
		BusinessDate: day(d),
		Date:         day(d),
		Start:        start,
		End:          end,
		Kind:         kind,
		Employee:     "Kim",
		Department:   "ops",
	}
}

func newEngine() *recon.Engine { return recon.NewEngine(zerolog.Nop()) }

// =============================================================================
// END-TO-END SCENARIOS
// =============================================================================

func TestReconcile_ClaimFullyInsideArmedPeriod(t *testing.T) {
	// GIVEN: disarm 08:00, arm 18:00; claim 18:30-21:30
	// THEN: one verdict with exactly 3.0 armed hours
	timeline := security.Timeline{
		day(1): {change(1, 8, 0, security.StatusDisarmed), change(1, 18, 0, security.StatusArmed)},
	}
	claims := []overtime.Claim{
		claim(1, clock.NewClock(18, 30, 0), clock.NewClock(21, 30, 0), overtime.LateDeparture),
	}

	verdicts := newEngine().Reconcile(timeline, claims)

	require.Len(t, verdicts, 1)
	v := verdicts[0]
	assert.Equal(t, "security armed during 3.0 hours of claimed overtime (18:30-21:30)", v.Reason)
	assert.Equal(t, "18:30-21:30", v.OvertimePeriod)
	assert.Equal(t, recon.StatusArmed, v.SecurityStatus)
	assert.Equal(t, day(1), v.BusinessDate)
}

func TestReconcile_ClaimPartiallyArmed(t *testing.T) {
	// GIVEN: disarm 08:00, arm 18:00; claim 17:00-19:00
	// THEN: only the 18:00-19:00 portion is armed, 1.0 hour
	timeline := security.Timeline{
		day(2): {change(2, 8, 0, security.StatusDisarmed), change(2, 18, 0, security.StatusArmed)},
	}
	claims := []overtime.Claim{
		claim(2, clock.NewClock(17, 0, 0), clock.NewClock(19, 0, 0), overtime.LateDeparture),
	}

	verdicts := newEngine().Reconcile(timeline, claims)

	require.Len(t, verdicts, 1)
	assert.Equal(t, "security armed during 1.0 hours of claimed overtime (18:00-19:00)",
		verdicts[0].Reason)
	// The 18:00 arm event falls strictly inside the claim window.
	assert.Equal(t, recon.StatusArmed+" (armed at: 18:00:00)", verdicts[0].SecurityStatus)
}

func TestReconcile_NoSecurityRecord_AlwaysFlagged(t *testing.T) {
	// GIVEN: no security rows at all for the claim's business date
	claims := []overtime.Claim{
		claim(3, clock.NewClock(18, 30, 0), clock.NewClock(21, 30, 0), overtime.LateDeparture),
	}

	verdicts := newEngine().Reconcile(security.Timeline{}, claims)

	require.Len(t, verdicts, 1)
	assert.Equal(t, recon.StatusNoRecord, verdicts[0].SecurityStatus)
	assert.Equal(t, recon.ReasonNoRecord, verdicts[0].Reason)
}

func TestReconcile_ClaimInsideDisarmedPeriod_Clean(t *testing.T) {
	// GIVEN: the building stays disarmed until 23:00
	timeline := security.Timeline{
		day(1): {change(1, 8, 0, security.StatusDisarmed), change(1, 23, 0, security.StatusArmed)},
	}
	claims := []overtime.Claim{
		claim(1, clock.NewClock(18, 30, 0), clock.NewClock(21, 30, 0), overtime.LateDeparture),
	}

	verdicts := newEngine().Reconcile(timeline, claims)
	assert.Empty(t, verdicts)
}

// =============================================================================
// PERIOD SYNTHESIS
// =============================================================================

func TestReconcile_LeadingArmedPeriodBeforeFirstDisarm(t *testing.T) {
	// GIVEN: first event is a disarm at 08:00; claim 06:00-07:30
	// THEN: the synthesized midnight-to-08:00 armed period flags it
	timeline := security.Timeline{
		day(1): {change(1, 8, 0, security.StatusDisarmed)},
	}
	claims := []overtime.Claim{
		claim(1, clock.NewClock(6, 0, 0), clock.NewClock(7, 30, 0), overtime.EarlyArrival),
	}

	verdicts := newEngine().Reconcile(timeline, claims)

	require.Len(t, verdicts, 1)
	assert.Equal(t, "security armed during 1.5 hours of claimed overtime (06:00-07:30)",
		verdicts[0].Reason)
}

func TestReconcile_TrailingArmedPeriodPersistsToMidnight(t *testing.T) {
	// GIVEN: last event is an arm at 18:00; claim 22:00-23:30
	timeline := security.Timeline{
		day(1): {change(1, 8, 0, security.StatusDisarmed), change(1, 18, 0, security.StatusArmed)},
	}
	claims := []overtime.Claim{
		claim(1, clock.NewClock(22, 0, 0), clock.NewClock(23, 30, 0), overtime.LateDeparture),
	}

	verdicts := newEngine().Reconcile(timeline, claims)
	require.Len(t, verdicts, 1)
	assert.Contains(t, verdicts[0].Reason, "1.5 hours")
}

func TestReconcile_MultipleArmCycles_DisjointOverlapsSummed(t *testing.T) {
	// GIVEN: armed 12:00-14:00 (midday closure) and armed again from 20:00;
	//        claim 13:00-21:00
	// THEN: overlaps 13:00-14:00 and 20:00-21:00, 2.0 hours total
	timeline := security.Timeline{
		day(1): {
			change(1, 8, 0, security.StatusDisarmed),
			change(1, 12, 0, security.StatusArmed),
			change(1, 14, 0, security.StatusDisarmed),
			change(1, 20, 0, security.StatusArmed),
		},
	}
	claims := []overtime.Claim{
		claim(1, clock.NewClock(13, 0, 0), clock.NewClock(21, 0, 0), overtime.LateDeparture),
	}

	verdicts := newEngine().Reconcile(timeline, claims)

	require.Len(t, verdicts, 1)
	assert.Equal(t,
		"security armed during 2.0 hours of claimed overtime (13:00-14:00, 20:00-21:00)",
		verdicts[0].Reason)
}

func TestReconcile_OvernightClaimRollsPastMidnight(t *testing.T) {
	// GIVEN: armed from 21:00 on May 1; a row dated May 2 claiming
	//        22:00-02:00, attributed to May 1's business day
	timeline := security.Timeline{
		day(1): {change(1, 8, 0, security.StatusDisarmed), change(1, 21, 0, security.StatusArmed)},
	}
	c := claim(1, clock.NewClock(22, 0, 0), clock.NewClock(2, 0, 0), overtime.LateDeparture)
	c.Date = day(2) // calendar date of the source row

	verdicts := newEngine().Reconcile(timeline, []overtime.Claim{c})

	// The claim is anchored on its business date, so its 22:00-24:00
	// portion overlaps the armed period running 21:00 to next midnight.
	require.Len(t, verdicts, 1)
	assert.Contains(t, verdicts[0].Reason, "2.0 hours")
	assert.Equal(t, day(1), verdicts[0].BusinessDate)
}

func TestReconcile_HolidayClaim_ReasonAnnotated(t *testing.T) {
	timeline := security.Timeline{
		day(6): {change(6, 10, 0, security.StatusArmed)},
	}
	c := claim(6, clock.NewClock(10, 0, 0), clock.NewClock(16, 0, 0), overtime.HolidayWork)
	c.Holiday = true

	verdicts := newEngine().Reconcile(timeline, []overtime.Claim{c})

	require.Len(t, verdicts, 1)
	assert.Contains(t, verdicts[0].Reason, "(holiday work)")
	assert.True(t, verdicts[0].Holiday)
}

func TestReconcile_MinuteOverlapStillFlagged(t *testing.T) {
	// The threshold is strictly greater than zero: one minute counts.
	timeline := security.Timeline{
		day(1): {change(1, 8, 0, security.StatusDisarmed), change(1, 20, 59, security.StatusArmed)},
	}
	claims := []overtime.Claim{
		claim(1, clock.NewClock(18, 0, 0), clock.NewClock(21, 0, 0), overtime.LateDeparture),
	}

	verdicts := newEngine().Reconcile(timeline, claims)
	require.Len(t, verdicts, 1)
	assert.Contains(t, verdicts[0].Reason, "(20:59-21:00)")
}

func TestReconcile_ZeroOverlapBoundary_NotFlagged(t *testing.T) {
	// Claim ends exactly when the system arms: empty intersection.
	timeline := security.Timeline{
		day(1): {change(1, 8, 0, security.StatusDisarmed), change(1, 21, 0, security.StatusArmed)},
	}
	claims := []overtime.Claim{
		claim(1, clock.NewClock(18, 0, 0), clock.NewClock(21, 0, 0), overtime.LateDeparture),
	}

	verdicts := newEngine().Reconcile(timeline, claims)
	assert.Empty(t, verdicts)
}
