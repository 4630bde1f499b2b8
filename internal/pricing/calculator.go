package pricing

import (
	"fmt"
	"math"
	"sort"

	"github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/domain"
	apperrors "github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/errors"
)

// Compute applies the directive to every entry of the calendar and returns
// the adjusted calendar together with the per-date changes, ordered by date.
// The input calendar is never mutated, and the result is deterministic for
// identical inputs so that a dry run and a subsequent live run against the
// same calendar compute identical changes.
func Compute(calendar domain.PriceCalendar, directive domain.AdjustmentDirective) (domain.PriceCalendar, []domain.PriceChange, error) {
	factor := 1 + directive.Percentage
	if directive.Direction == domain.DirectionDecrease {
		factor = 1 - directive.Percentage
	}

	sorted := make(domain.PriceCalendar, len(calendar))
	copy(sorted, calendar)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	seen := make(map[string]struct{}, len(sorted))
	adjusted := make(domain.PriceCalendar, 0, len(sorted))
	changes := make([]domain.PriceChange, 0, len(sorted))

	for _, entry := range sorted {
		if entry.Price < 0 {
			return nil, nil, apperrors.NewCalculationError(
				fmt.Sprintf("negative source price %.2f on %s", entry.Price, entry.Date))
		}
		if _, dup := seen[entry.Date]; dup {
			return nil, nil, apperrors.NewCalculationError(
				fmt.Sprintf("duplicate calendar date %s", entry.Date))
		}
		seen[entry.Date] = struct{}{}

		newPrice := RoundHalfUp(entry.Price * factor)
		if newPrice < 0 {
			// Clamped prices are still reported as changes.
			newPrice = 0
		}

		out := entry
		out.Price = newPrice
		adjusted = append(adjusted, out)
		changes = append(changes, domain.PriceChange{
			Date:     entry.Date,
			OldPrice: entry.Price,
			NewPrice: newPrice,
			Currency: entry.Currency,
		})
	}

	return adjusted, changes, nil
}

// RoundHalfUp rounds a price to the currency's minimal unit (two decimal
// places) with ties rounding away from zero toward the larger value.
func RoundHalfUp(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// IsEligible reports whether a listing may receive price adjustments.
// Inactive listings are skipped before any API call is made.
func IsEligible(listing domain.Listing) bool {
	return listing.Status == domain.ListingStatusActive
}
