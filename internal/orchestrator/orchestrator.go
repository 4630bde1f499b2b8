package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/domain"
	apperrors "github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/errors"
	"github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/pricelabs"
	"github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/pricing"
	"github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/report"
)

// sampleChangeLimit is how many per-date changes are kept on each outcome
// for dry-run display
const sampleChangeLimit = 5

// Orchestrator runs batch price adjustments against the pricing service.
// Listings are partitioned into fixed-size chunks with a pacing delay
// between chunks to stay under the remote rate ceiling; per-listing
// failures never abort the batch.
type Orchestrator struct {
	client     pricelabs.Client
	chunkSize  int
	chunkDelay time.Duration
	pause      func(ctx context.Context, d time.Duration) error
}

// New creates an orchestrator with the given chunking configuration
func New(client pricelabs.Client, chunkSize int, chunkDelay time.Duration) *Orchestrator {
	return &Orchestrator{
		client:     client,
		chunkSize:  chunkSize,
		chunkDelay: chunkDelay,
		pause:      pauseWithContext,
	}
}

// Run processes the given listings under the directive and returns the
// consolidated report. Invalid input fails fast before any network call.
// Re-running the same live directive compounds the adjustment; runs are
// deliberately not idempotent.
//
// On cancellation the partial report accumulated so far is returned
// together with the context error. In-flight operations of the current
// chunk are allowed to finish so no remote write is cut off mid-call.
func (o *Orchestrator) Run(ctx context.Context, listingIDs []string, directive domain.AdjustmentDirective) (domain.BatchReport, error) {
	if err := o.validate(listingIDs, directive); err != nil {
		return domain.BatchReport{}, err
	}

	listings, err := o.client.GetListings(ctx)
	if err != nil {
		return domain.BatchReport{}, err
	}
	byID := make(map[string]domain.Listing, len(listings))
	for _, l := range listings {
		byID[l.ID] = l
	}

	agg := report.NewAggregator(directive)
	chunks := chunk(listingIDs, o.chunkSize)

	for i, ids := range chunks {
		// Cancellation is checked at chunk boundaries only.
		if err := ctx.Err(); err != nil {
			return agg.Finalize(), err
		}
		if i > 0 {
			if err := o.pause(ctx, o.chunkDelay); err != nil {
				return agg.Finalize(), err
			}
		}

		fmt.Printf("Processing chunk %d/%d (%d listings)\n", i+1, len(chunks), len(ids))

		// Listings within a chunk run concurrently; outcomes are buffered
		// and recorded in submission order, not completion order.
		outcomes := make([]domain.ListingOutcome, len(ids))
		var wg sync.WaitGroup
		for j, id := range ids {
			wg.Add(1)
			go func(j int, id string) {
				defer wg.Done()
				outcomes[j] = o.processListing(ctx, id, byID, directive)
			}(j, id)
		}
		wg.Wait()

		for _, outcome := range outcomes {
			if outcome.Status == domain.OutcomeStatusError {
				fmt.Printf("Warning: listing %s failed: %s\n", outcome.ListingID, outcome.ErrorMessage)
			}
			agg.Record(outcome)
		}
	}

	return agg.Finalize(), nil
}

// processListing walks one listing through fetch, compute and submit (or
// simulate). Every error is converted into a Failed outcome here so the
// batch keeps going.
func (o *Orchestrator) processListing(ctx context.Context, id string, byID map[string]domain.Listing, directive domain.AdjustmentDirective) domain.ListingOutcome {
	listing, ok := byID[id]
	if !ok {
		return domain.ListingOutcome{
			ListingID:    id,
			Status:       domain.OutcomeStatusError,
			ErrorMessage: apperrors.NewNotFoundError("listing " + id).Error(),
		}
	}

	outcome := domain.ListingOutcome{ListingID: listing.ID, Name: listing.Name}

	if !pricing.IsEligible(listing) {
		outcome.Status = domain.OutcomeStatusSkipped
		return outcome
	}

	calendar, err := o.client.FetchCalendar(ctx, listing.ID, listing.PMS)
	if err != nil {
		outcome.Status = domain.OutcomeStatusError
		outcome.ErrorMessage = err.Error()
		return outcome
	}

	adjusted, changes, err := pricing.Compute(calendar, directive)
	if err != nil {
		outcome.Status = domain.OutcomeStatusError
		outcome.ErrorMessage = err.Error()
		return outcome
	}

	outcome.ChangeCount = len(changes)
	outcome.SampleChanges = changes[:min(len(changes), sampleChangeLimit)]

	if directive.DryRun {
		outcome.Status = domain.OutcomeStatusSuccess
		outcome.Simulated = true
		return outcome
	}

	if len(adjusted) > 0 {
		if err := o.client.SubmitCalendar(ctx, listing.ID, listing.PMS, adjusted); err != nil {
			outcome.Status = domain.OutcomeStatusError
			outcome.ErrorMessage = err.Error()
			return outcome
		}
	}

	outcome.Status = domain.OutcomeStatusSuccess
	return outcome
}

// validate rejects a bad batch before any network activity
func (o *Orchestrator) validate(listingIDs []string, directive domain.AdjustmentDirective) error {
	if len(listingIDs) == 0 {
		return apperrors.NewBadRequestError("no listings selected")
	}
	if directive.Direction != domain.DirectionIncrease && directive.Direction != domain.DirectionDecrease {
		return apperrors.NewBadRequestError(fmt.Sprintf("unknown direction %q", directive.Direction))
	}
	if directive.Percentage <= 0 || directive.Percentage >= 1 {
		return apperrors.NewBadRequestError(fmt.Sprintf("percentage must be in (0, 1), got %v", directive.Percentage))
	}
	if o.chunkSize < 1 {
		return apperrors.NewBadRequestError(fmt.Sprintf("chunk size must be >= 1, got %d", o.chunkSize))
	}
	if o.chunkDelay < 0 {
		return apperrors.NewBadRequestError("chunk delay must be >= 0")
	}
	return nil
}

// chunk partitions ids into fixed-size groups, preserving order
func chunk(ids []string, size int) [][]string {
	var chunks [][]string
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

func pauseWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
