package domain

import "time"

// OutcomeStatus represents the terminal state of one listing in a batch
type OutcomeStatus string

const (
	OutcomeStatusSuccess OutcomeStatus = "success"
	OutcomeStatusError   OutcomeStatus = "error"
	OutcomeStatusSkipped OutcomeStatus = "skipped"
)

// ListingOutcome records what happened to one listing during a batch run.
// Immutable once recorded.
type ListingOutcome struct {
	ListingID     string
	Name          string
	Status        OutcomeStatus
	ChangeCount   int
	SampleChanges []PriceChange // first few changes, for dry-run display
	ErrorMessage  string
	Simulated     bool
}

// BatchReport is the consolidated result of one batch invocation.
// Outcome order matches processing order.
type BatchReport struct {
	ID            string
	Direction     Direction
	Percentage    float64
	DryRun        bool
	TotalListings int
	SuccessCount  int
	ErrorCount    int
	SkippedCount  int
	Outcomes      []ListingOutcome
	StartedAt     time.Time
	CompletedAt   time.Time
}
