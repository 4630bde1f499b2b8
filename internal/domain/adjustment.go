package domain

// Direction represents the direction of a price adjustment
type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
)

// AdjustmentDirective describes one batch run. It is immutable for the
// duration of the run: either entirely simulated or entirely live.
type AdjustmentDirective struct {
	Direction  Direction
	Percentage float64 // fraction, e.g. 0.05 for 5%
	DryRun     bool
}

// PriceChange is a single computed price delta, kept transiently for
// dry-run display or as part of the write payload.
type PriceChange struct {
	Date     string
	OldPrice float64
	NewPrice float64
	Currency string
}
