package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/domain"
)

// Aggregator accumulates per-listing outcomes into a single BatchReport,
// maintaining running counts. It is not safe for concurrent use: the
// orchestrator records outcomes in submission order from one goroutine.
type Aggregator struct {
	report domain.BatchReport
}

// NewAggregator creates an aggregator for one batch run
func NewAggregator(directive domain.AdjustmentDirective) *Aggregator {
	return &Aggregator{
		report: domain.BatchReport{
			ID:         uuid.New().String(),
			Direction:  directive.Direction,
			Percentage: directive.Percentage,
			DryRun:     directive.DryRun,
			StartedAt:  time.Now(),
		},
	}
}

// Record appends an outcome to the in-progress report
func (a *Aggregator) Record(outcome domain.ListingOutcome) {
	a.report.Outcomes = append(a.report.Outcomes, outcome)
	a.report.TotalListings++

	switch outcome.Status {
	case domain.OutcomeStatusSuccess:
		a.report.SuccessCount++
	case domain.OutcomeStatusError:
		a.report.ErrorCount++
	case domain.OutcomeStatusSkipped:
		a.report.SkippedCount++
	}
}

// Finalize returns the completed report. The returned value owns its own
// outcome slice, so later Record calls cannot mutate it.
func (a *Aggregator) Finalize() domain.BatchReport {
	a.report.CompletedAt = time.Now()

	final := a.report
	final.Outcomes = make([]domain.ListingOutcome, len(a.report.Outcomes))
	copy(final.Outcomes, a.report.Outcomes)
	return final
}
