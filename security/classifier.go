/*
classifier.go - Access-log classification and per-day timeline construction

PURPOSE:
  Turns free-text-coded access events into a per-business-day armed/disarmed
  timeline. This is the evidence side of the reconciliation: the overtime
  claims are later checked against the timeline built here.

PIPELINE:
  1. Resolve the date/time/mode columns (header keywords, offset fallback)
  2. Parse and classify every row, attribute it to a business date
  3. Per business day, sort chronologically and resolve ambiguous entries
  4. Emit state changes and unclear-day diagnostics

AMBIGUOUS-ENTRY RULE:
  Only the first event of a business day may be reclassified: if it is a
  generic access event, it is treated as a disarm (the first door event of
  a workday is someone entering to start work). Every later ambiguous event
  that day is discarded as too noisy to use as evidence.

SEE ALSO:
  - types.go: RecordType, StateChange, Timeline
  - recon/engine.go: consumes the Timeline
*/
package security

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/warp/presence-audit/clock"
	"github.com/warp/presence-audit/tabular"
)

// Fallback column offsets when header keywords resolve nothing.
const (
	fallbackDateColumn = 0
	fallbackTimeColumn = 1
	fallbackModeColumn = 8
)

// ClassifyMode maps raw mode text to a record type. Matching is by
// lower-cased substring; explicit disarm/arm wording wins over generic
// door-event wording.
func ClassifyMode(mode string) RecordType {
	lowered := strings.ToLower(mode)
	switch {
	case containsAny(lowered, "clock-in", "disarm"):
		return RecordDisarm
	case containsAny(lowered, "clock-out", "setting", "set"):
		return RecordArm
	case containsAny(lowered, "access", "entry"):
		return RecordAmbiguousEntry
	default:
		return RecordOther
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// =============================================================================
// CLASSIFIER
// =============================================================================

type Classifier struct {
	log zerolog.Logger
}

func NewClassifier(log zerolog.Logger) *Classifier {
	return &Classifier{log: log.With().Str("component", "security").Logger()}
}

type columns struct {
	date int
	time int
	mode int
}

// resolveColumns locates the occurrence-date, occurrence-time and mode
// columns by header keyword, falling back to fixed offsets. Only an
// unresolvable mode column is fatal.
func (c *Classifier) resolveColumns(t tabular.Table) (columns, error) {
	cols := columns{
		date: t.FindColumn("occurrence date", "date"),
		time: t.FindColumn("occurrence time", "time"),
		mode: t.FindColumn("mode", "status", "description"),
	}
	if cols.date < 0 {
		cols.date = fallbackDateColumn
	}
	if cols.time < 0 {
		cols.time = fallbackTimeColumn
	}
	if cols.mode < 0 {
		if width := tableWidth(t); width > fallbackModeColumn {
			cols.mode = fallbackModeColumn
		} else {
			return columns{}, &tabular.MissingColumnError{Column: "mode"}
		}
	}
	return cols, nil
}

// Process classifies the security log and returns the per-business-day
// timeline plus unclear-day diagnostics. It is a pure function of its
// inputs: calling it twice with the same table yields identical results.
func (c *Classifier) Process(t tabular.Table, filter clock.Range) (Timeline, []UnclearDay, error) {
	cols, err := c.resolveColumns(t)
	if err != nil {
		return nil, nil, err
	}

	byDay := make(map[clock.Date][]Event)
	for i, row := range t.Rows {
		date, ok := row.Cell(cols.date).Date()
		if !ok {
			c.log.Debug().Int("row", i).Str("raw", row.Cell(cols.date).Text()).
				Msg("skipping row with unparseable date")
			continue
		}
		if !filter.Contains(date) {
			continue
		}
		at, ok := row.Cell(cols.time).Clock(clock.Clock{})
		if !ok {
			c.log.Warn().Int("row", i).Str("date", date.String()).
				Str("raw", row.Cell(cols.time).Text()).
				Msg("skipping row with unparseable time")
			continue
		}

		mode := row.Cell(cols.mode).Text()
		ev := Event{
			Date:         date,
			Time:         at,
			Mode:         mode,
			BusinessDate: clock.BusinessDate(date, at.Hour),
			Type:         ClassifyMode(mode),
		}
		byDay[ev.BusinessDate] = append(byDay[ev.BusinessDate], ev)
	}

	timeline := make(Timeline, len(byDay))
	var unclear []UnclearDay
	for day, events := range byDay {
		sort.SliceStable(events, func(a, b int) bool {
			return events[a].At().Before(events[b].At())
		})
		resolved := resolveAmbiguous(events)
		if diag, flagged := diagnoseDay(day, events, resolved); flagged {
			c.log.Info().Str("business_date", day.String()).
				Str("reason", diag.Description).Msg("unclear security day")
			unclear = append(unclear, diag)
		}
		timeline[day] = toStateChanges(resolved)
	}

	sort.Slice(unclear, func(a, b int) bool { return unclear[a].Date.Before(unclear[b].Date) })
	return timeline, unclear, nil
}

// resolveAmbiguous applies the first-event-only rule: the first event of
// the day, if ambiguous, becomes a disarm; every later ambiguous event is
// discarded. Returns a new slice; the input events are not mutated.
func resolveAmbiguous(events []Event) []Event {
	resolved := make([]Event, len(events))
	copy(resolved, events)
	for i := range resolved {
		if resolved[i].Type != RecordAmbiguousEntry {
			continue
		}
		if i == 0 {
			resolved[i].Type = RecordDisarm
		} else {
			resolved[i].Type = RecordOther
		}
	}
	return resolved
}

// diagnoseDay flags days whose resolved events carry no trustworthy
// security evidence, or that ended without the system being armed. The
// ambiguous count comes from the raw events: resolution rewrites every
// ambiguous entry, so the resolved slice no longer carries any.
func diagnoseDay(day clock.Date, raw, resolved []Event) (UnclearDay, bool) {
	if len(resolved) == 0 {
		return UnclearDay{}, false
	}
	ambiguous := 0
	for _, ev := range raw {
		if ev.Type == RecordAmbiguousEntry {
			ambiguous++
		}
	}
	hasDisarm, hasArm := false, false
	for _, ev := range resolved {
		switch ev.Type {
		case RecordDisarm:
			hasDisarm = true
		case RecordArm:
			hasArm = true
		}
	}
	diag := UnclearDay{Date: day, Records: len(resolved), Ambiguous: ambiguous}
	if !hasDisarm && !hasArm {
		diag.Description = DescNoClearRecord
		return diag, true
	}
	if last := resolved[len(resolved)-1]; last.Type != RecordArm && last.Type != RecordOther {
		diag.Description = DescMissingClose
		return diag, true
	}
	return UnclearDay{}, false
}

func toStateChanges(resolved []Event) []StateChange {
	var changes []StateChange
	for _, ev := range resolved {
		switch ev.Type {
		case RecordDisarm:
			changes = append(changes, StateChange{At: ev.At(), Status: StatusDisarmed})
		case RecordArm:
			changes = append(changes, StateChange{At: ev.At(), Status: StatusArmed})
		}
	}
	return changes
}

func tableWidth(t tabular.Table) int {
	width := len(t.Header)
	for _, row := range t.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}
