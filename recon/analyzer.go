/*
analyzer.go - One-call batch entry point

PURPOSE:
  Runs one complete audit: classifies the security log, extracts the
  overtime claims, reconciles the two, and returns a single Result. All
  diagnostic accumulators are locals of this call; there is no state
  carried between runs and no I/O anywhere below this point.

SEE ALSO:
  - security/classifier.go, overtime/extractor.go, engine.go
  - api/handlers.go, cmd/audit: the two callers
*/
package recon

import (
	"github.com/rs/zerolog"
	"github.com/warp/presence-audit/clock"
	"github.com/warp/presence-audit/overtime"
	"github.com/warp/presence-audit/security"
	"github.com/warp/presence-audit/tabular"
)

type Analyzer struct {
	log        zerolog.Logger
	classifier *security.Classifier
	extractor  *overtime.Extractor
	engine     *Engine
}

func NewAnalyzer(log zerolog.Logger) *Analyzer {
	return &Analyzer{
		log:        log,
		classifier: security.NewClassifier(log),
		extractor:  overtime.NewExtractor(log),
		engine:     NewEngine(log),
	}
}

// Run processes one security table and one overtime table, both narrowed
// to the inclusive date range, and returns the complete result. The only
// error is structural (an unresolvable required column); everything else
// is reported through the Result's diagnostic lists.
func (a *Analyzer) Run(securityRows, overtimeRows tabular.Table, filter clock.Range) (*Result, error) {
	timeline, unclearDays, err := a.classifier.Process(securityRows, filter)
	if err != nil {
		return nil, err
	}

	claims, missingTime, errorRows := a.extractor.Process(overtimeRows, filter)
	verdicts := a.engine.Reconcile(timeline, claims)

	a.log.Info().
		Int("claims", len(claims)).
		Int("verdicts", len(verdicts)).
		Int("missing_time_rows", len(missingTime)).
		Int("error_rows", len(errorRows)).
		Int("unclear_days", len(unclearDays)).
		Str("range", filter.String()).
		Msg("audit run complete")

	return &Result{
		Verdicts:    verdicts,
		MissingTime: missingTime,
		ErrorRows:   errorRows,
		UnclearDays: unclearDays,
	}, nil
}
