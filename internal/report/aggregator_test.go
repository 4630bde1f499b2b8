package report

import (
	"testing"

	"github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/domain"
)

func testDirective() domain.AdjustmentDirective {
	return domain.AdjustmentDirective{Direction: domain.DirectionIncrease, Percentage: 0.05}
}

func TestAggregatorCounts(t *testing.T) {
	agg := NewAggregator(testDirective())
	agg.Record(domain.ListingOutcome{ListingID: "1", Status: domain.OutcomeStatusSuccess, ChangeCount: 3})
	agg.Record(domain.ListingOutcome{ListingID: "2", Status: domain.OutcomeStatusError, ErrorMessage: "boom"})
	agg.Record(domain.ListingOutcome{ListingID: "3", Status: domain.OutcomeStatusSkipped})
	agg.Record(domain.ListingOutcome{ListingID: "4", Status: domain.OutcomeStatusSuccess})

	r := agg.Finalize()
	if r.TotalListings != 4 {
		t.Errorf("TotalListings: got %d, want 4", r.TotalListings)
	}
	if r.SuccessCount != 2 || r.ErrorCount != 1 || r.SkippedCount != 1 {
		t.Errorf("counts: got %d/%d/%d, want 2/1/1", r.SuccessCount, r.ErrorCount, r.SkippedCount)
	}
}

func TestAggregatorPreservesOrder(t *testing.T) {
	agg := NewAggregator(testDirective())
	ids := []string{"c", "a", "b"}
	for _, id := range ids {
		agg.Record(domain.ListingOutcome{ListingID: id, Status: domain.OutcomeStatusSuccess})
	}

	r := agg.Finalize()
	for i, id := range ids {
		if r.Outcomes[i].ListingID != id {
			t.Errorf("outcome %d: got %s, want %s", i, r.Outcomes[i].ListingID, id)
		}
	}
}

func TestFinalizeIsImmutable(t *testing.T) {
	agg := NewAggregator(testDirective())
	agg.Record(domain.ListingOutcome{ListingID: "1", Status: domain.OutcomeStatusSuccess})

	r := agg.Finalize()
	agg.Record(domain.ListingOutcome{ListingID: "2", Status: domain.OutcomeStatusError})

	if len(r.Outcomes) != 1 {
		t.Errorf("finalized report mutated: %d outcomes", len(r.Outcomes))
	}
	if r.ID == "" {
		t.Error("report should carry an ID")
	}
}

func TestAggregatorCarriesDirective(t *testing.T) {
	d := domain.AdjustmentDirective{Direction: domain.DirectionDecrease, Percentage: 0.05, DryRun: true}
	r := NewAggregator(d).Finalize()
	if r.Direction != domain.DirectionDecrease || !r.DryRun || r.Percentage != 0.05 {
		t.Errorf("directive not carried into report: %+v", r)
	}
}
