package overtime_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/presence-audit/clock"
	"github.com/warp/presence-audit/overtime"
	"github.com/warp/presence-audit/tabular"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// claimRow builds a data row in the fixed export layout.
func claimRow(department, name, holiday, date, start, end, recorded, desc string) tabular.Row {
	return tabular.Row{
		tabular.Text(department),     // 0 department
		tabular.Text("staff"),        // 1 rank
		tabular.Text("e-100"),        // 2 employee-id
		tabular.Text(name),           // 3 name
		tabular.Text("active"),       // 4 active
		tabular.Text(holiday),        // 5 holiday flag
		tabular.Text(date),           // 6 claim date
		tabular.Text(start),          // 7 start time
		tabular.Text(end),            // 8 end time
		tabular.Text("10.0.0.1"),     // 9 start IP
		tabular.Text("10.0.0.1"),     // 10 end IP
		tabular.Text(recorded),       // 11 recorded hours
		tabular.Text(""),             // 12 allowance
		tabular.Text(desc),           // 13 description
	}
}

// claimsTable prepends the two metadata rows the export always carries.
func claimsTable(rows ...tabular.Row) tabular.Table {
	t := tabular.Table{Rows: []tabular.Row{
		{tabular.Text("Overtime Report")},
		{tabular.Text("Generated 2023-06-01")},
	}}
	t.Rows = append(t.Rows, rows...)
	return t
}

func extract(t tabular.Table) ([]overtime.Claim, []overtime.MissingTimeRow, []overtime.ErrorRow) {
	return overtime.NewExtractor(zerolog.Nop()).Process(t, clock.Range{})
}

// =============================================================================
// SEGMENT DERIVATION
// =============================================================================

func TestProcess_LateDeparture_WholeIntervalOutside(t *testing.T) {
	// GIVEN: 18:30-21:30, entirely after regular hours
	claims, _, _ := extract(claimsTable(
		claimRow("ops", "Kim", "", "2023-05-01", "18:30", "21:30", "3:00", "month-end close"),
	))

	require.Len(t, claims, 1)
	c := claims[0]
	assert.Equal(t, overtime.LateDeparture, c.Kind)
	assert.Equal(t, clock.NewClock(18, 30, 0), c.Start)
	assert.Equal(t, clock.NewClock(21, 30, 0), c.End)
	assert.Equal(t, clock.NewDate(2023, time.May, 1), c.BusinessDate)
	assert.Equal(t, "Kim", c.Employee)
	assert.Equal(t, "ops", c.Department)
	assert.Equal(t, "month-end close", c.Description)
}

func TestProcess_EarlyArrival_WholeIntervalOutside(t *testing.T) {
	claims, _, _ := extract(claimsTable(
		claimRow("ops", "Kim", "", "2023-05-01", "06:00", "08:30", "", ""),
	))

	require.Len(t, claims, 1)
	assert.Equal(t, overtime.EarlyArrival, claims[0].Kind)
}

func TestProcess_StraddlingInterval_YieldsTwoClaims(t *testing.T) {
	// GIVEN: 07:00-20:00, spilling past both edges of regular hours
	// THEN: two claims, and the 09:00-18:00 portion generates nothing
	claims, _, _ := extract(claimsTable(
		claimRow("ops", "Kim", "", "2023-05-01", "07:00", "20:00", "", ""),
	))

	require.Len(t, claims, 2)
	assert.Equal(t, overtime.EarlyArrival, claims[0].Kind)
	assert.Equal(t, clock.NewClock(7, 0, 0), claims[0].Start)
	assert.Equal(t, clock.NewClock(9, 0, 0), claims[0].End)
	assert.Equal(t, overtime.LateDeparture, claims[1].Kind)
	assert.Equal(t, clock.NewClock(18, 0, 0), claims[1].Start)
	assert.Equal(t, clock.NewClock(20, 0, 0), claims[1].End)
}

func TestProcess_IntervalInsideRegularHours_NoClaim(t *testing.T) {
	claims, missing, errs := extract(claimsTable(
		claimRow("ops", "Kim", "", "2023-05-01", "09:30", "17:00", "", ""),
	))

	assert.Empty(t, claims)
	assert.Empty(t, missing)
	assert.Empty(t, errs)
}

func TestProcess_Holiday_WholeShiftIsOvertime(t *testing.T) {
	claims, _, _ := extract(claimsTable(
		claimRow("ops", "Kim", "Saturday", "2023-05-06", "10:00", "16:00", "", ""),
	))

	require.Len(t, claims, 1)
	c := claims[0]
	assert.Equal(t, overtime.HolidayWork, c.Kind)
	assert.True(t, c.Holiday)
	assert.Equal(t, clock.NewClock(10, 0, 0), c.Start)
	assert.Equal(t, clock.NewClock(16, 0, 0), c.End)
}

func TestProcess_HolidayFlagVariants(t *testing.T) {
	for _, flag := range []string{"Y", "y", "holiday", "Public Holiday", "Sunday"} {
		claims, _, _ := extract(claimsTable(
			claimRow("ops", "Kim", flag, "2023-05-06", "10:00", "11:00", "", ""),
		))
		require.Len(t, claims, 1, "flag %q", flag)
		assert.True(t, claims[0].Holiday, "flag %q", flag)
	}

	// Missing flag defaults to weekday.
	claims, _, _ := extract(claimsTable(
		claimRow("ops", "Kim", "", "2023-05-06", "10:00", "11:00", "", ""),
	))
	assert.Empty(t, claims)
}

func TestProcess_OvernightClaim_BusinessDateRollsBack(t *testing.T) {
	// GIVEN: a claim ending at 02:00, before the 04:00 cutover
	claims, _, _ := extract(claimsTable(
		claimRow("ops", "Kim", "", "2023-05-02", "22:00", "02:00", "", ""),
	))

	require.Len(t, claims, 1)
	assert.Equal(t, overtime.LateDeparture, claims[0].Kind)
	assert.Equal(t, clock.NewDate(2023, time.May, 1), claims[0].BusinessDate)
	assert.Equal(t, clock.NewDate(2023, time.May, 2), claims[0].Date)
}

// =============================================================================
// VALIDITY FILTER AND DIAGNOSTICS
// =============================================================================

func TestProcess_MissingStartTime_ReportedNotFabricated(t *testing.T) {
	// GIVEN: a blank start time and a valid end time
	// THEN: the row lands in the missing-time list and yields no claim
	claims, missing, errs := extract(claimsTable(
		claimRow("ops", "Kim", "", "2023-05-01", "", "22:00", "", ""),
	))

	assert.Empty(t, claims)
	assert.Empty(t, errs)
	require.Len(t, missing, 1)
	m := missing[0]
	assert.Equal(t, clock.NewDate(2023, time.May, 1), m.Date)
	assert.Equal(t, "Kim", m.Employee)
	assert.Equal(t, []string{"start-time"}, m.MissingFields)
	assert.Equal(t, "22:00", m.Raw["end-time"])
}

func TestProcess_BothTimesMissing(t *testing.T) {
	_, missing, _ := extract(claimsTable(
		claimRow("ops", "Kim", "", "2023-05-01", "", "", "", ""),
	))

	require.Len(t, missing, 1)
	assert.Equal(t, []string{"start-time", "end-time"}, missing[0].MissingFields)
}

func TestProcess_UnparseableTime_TreatedAsMissing(t *testing.T) {
	claims, missing, _ := extract(claimsTable(
		claimRow("ops", "Kim", "", "2023-05-01", "late evening", "22:00", "", ""),
	))

	assert.Empty(t, claims)
	require.Len(t, missing, 1)
	assert.Equal(t, []string{"start-time"}, missing[0].MissingFields)
}

func TestProcess_MissingNameOrBadDate_Excluded(t *testing.T) {
	claims, missing, errs := extract(claimsTable(
		claimRow("ops", "", "", "2023-05-01", "18:30", "21:30", "", ""),
		claimRow("ops", "Kim", "", "garbage", "18:30", "21:30", "", ""),
	))

	assert.Empty(t, claims)
	assert.Empty(t, missing)
	assert.Empty(t, errs)
}

func TestProcess_HeaderRowsDiscarded(t *testing.T) {
	// The two metadata rows must not be parsed as data even when the
	// table has nothing else.
	claims, missing, errs := extract(claimsTable())
	assert.Empty(t, claims)
	assert.Empty(t, missing)
	assert.Empty(t, errs)
}

func TestProcess_DateRangeFilter(t *testing.T) {
	table := claimsTable(
		claimRow("ops", "Kim", "", "2023-04-30", "18:30", "21:30", "", ""),
		claimRow("ops", "Kim", "", "2023-05-01", "18:30", "21:30", "", ""),
	)
	filter := clock.Range{
		From: clock.NewDate(2023, time.May, 1),
		To:   clock.NewDate(2023, time.May, 31),
	}

	claims, _, _ := overtime.NewExtractor(zerolog.Nop()).Process(table, filter)
	require.Len(t, claims, 1)
	assert.Equal(t, clock.NewDate(2023, time.May, 1), claims[0].Date)
}

// =============================================================================
// RECORDED HOURS
// =============================================================================

func TestProcess_RecordedHours(t *testing.T) {
	claims, _, _ := extract(claimsTable(
		claimRow("ops", "Kim", "", "2023-05-01", "18:30", "21:30", "1:30", ""),
		claimRow("ops", "Lee", "", "2023-05-01", "18:30", "21:30", "2.5", ""),
		claimRow("ops", "Park", "", "2023-05-01", "18:30", "21:30", "n/a", ""),
	))

	require.Len(t, claims, 3)
	require.NotNil(t, claims[0].RecordedHours)
	assert.True(t, claims[0].RecordedHours.Equal(decimal.NewFromFloat(1.5)),
		"got %s", claims[0].RecordedHours)
	require.NotNil(t, claims[1].RecordedHours)
	assert.True(t, claims[1].RecordedHours.Equal(decimal.NewFromFloat(2.5)))
	assert.Nil(t, claims[2].RecordedHours)
}
