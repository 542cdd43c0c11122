/*
Package clock provides the time primitives for the audit engine.

PURPOSE:
  Everything that touches a wall clock or a calendar goes through this
  package: time-of-day parsing of heterogeneous spreadsheet values, the
  business-day cutover rule, and the date-range filter applied to both
  input logs.

KEY CONCEPTS:
  - Clock: A time of day (hour/minute/second), no date attached
  - Date:  A calendar date, comparable, usable as a map key
  - BusinessDate: The workday an event belongs to. The day does not roll
    over at midnight: activity before 04:00 is a continuation of the
    previous workday (night shifts crossing midnight), so those hours are
    attributed to the previous calendar date. The cutover hour is a fixed
    domain constant, not configuration.

SEE ALSO:
  - tabular: coerces raw cells through this package's parsers
  - security, overtime: group their records by BusinessDate
*/
package clock

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BusinessDayCutoverHour is the hour at which a new business day starts.
// Events between midnight and this hour belong to the previous day.
const BusinessDayCutoverHour = 4

// =============================================================================
// CLOCK - Time of day
// =============================================================================

type Clock struct {
	Hour   int
	Minute int
	Second int
}

func NewClock(hour, minute, second int) Clock {
	return Clock{Hour: hour, Minute: minute, Second: second}
}

func (c Clock) seconds() int { return c.Hour*3600 + c.Minute*60 + c.Second }

func (c Clock) Before(other Clock) bool { return c.seconds() < other.seconds() }
func (c Clock) After(other Clock) bool  { return c.seconds() > other.seconds() }
func (c Clock) Equal(other Clock) bool  { return c.seconds() == other.seconds() }

// String renders the clock as HH:MM, the display format used in verdicts.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ParseClockString parses "H:MM" or "H:MM:SS". Anything else fails.
func ParseClockString(s string) (Clock, bool) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ":") {
		return Clock{}, false
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return Clock{}, false
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Clock{}, false
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Clock{}, false
	}
	second := 0
	if len(parts) > 2 {
		second, err = strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return Clock{}, false
		}
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return Clock{}, false
	}
	return Clock{Hour: hour, Minute: minute, Second: second}, true
}

// ClockOf extracts the time of day from a combined date-time value.
func ClockOf(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

// ClockOfDayFraction converts an Excel-style fraction of a day (0.5 = noon)
// into a time of day. Values outside [0, 1) fail.
func ClockOfDayFraction(f float64) (Clock, bool) {
	if f < 0 || f >= 1 {
		return Clock{}, false
	}
	total := int(f*86400 + 0.5)
	if total >= 86400 {
		total = 86399
	}
	return Clock{Hour: total / 3600, Minute: (total % 3600) / 60, Second: total % 60}, true
}

// =============================================================================
// DATE - Calendar date (comparable; map key for per-day grouping)
// =============================================================================

type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	// Normalize through time.Time so out-of-range components wrap correctly.
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDate parses an ISO calendar date ("2006-01-02"). A trailing time
// component ("2006-01-02 15:04:05") is tolerated and ignored.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " T"); i > 0 {
		s = s[:i]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// At combines the date with a time of day into an absolute timestamp.
func (d Date) At(c Clock) time.Time {
	return time.Date(d.Year, d.Month, d.Day, c.Hour, c.Minute, c.Second, 0, time.UTC)
}

func (d Date) AddDays(n int) Date { return DateOf(d.Time().AddDate(0, 0, n)) }

func (d Date) Before(other Date) bool { return d.Time().Before(other.Time()) }
func (d Date) After(other Date) bool  { return d.Time().After(other.Time()) }
func (d Date) IsZero() bool           { return d == Date{} }

func (d Date) String() string { return d.Time().Format("2006-01-02") }

// =============================================================================
// BUSINESS DATE - 04:00 cutover
// =============================================================================

// BusinessDate returns the workday a record at the given hour belongs to.
// Hours in [0, 4) are attributed to the previous calendar date.
func BusinessDate(calendar Date, hourOfEvent int) Date {
	if hourOfEvent >= 0 && hourOfEvent < BusinessDayCutoverHour {
		return calendar.AddDays(-1)
	}
	return calendar
}

// =============================================================================
// RANGE - Inclusive calendar-date filter
// =============================================================================

// Range is an inclusive calendar-date filter. A zero-valued bound means
// unbounded on that side; the zero Range matches everything.
type Range struct {
	From Date
	To   Date
}

func (r Range) Contains(d Date) bool {
	if !r.From.IsZero() && d.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && d.After(r.To) {
		return false
	}
	return true
}

func (r Range) String() string {
	from, to := "*", "*"
	if !r.From.IsZero() {
		from = r.From.String()
	}
	if !r.To.IsZero() {
		to = r.To.String()
	}
	return "[" + from + ", " + to + "]"
}
