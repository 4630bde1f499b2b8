package pricelabs

import (
	"context"

	"github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/domain"
)

// Client defines the operations the engine needs from the remote pricing
// service. Each call is a single network round trip; nothing is cached
// client-side because remote state may change between runs.
type Client interface {
	// GetListings retrieves all listings known to the pricing service,
	// including inactive ones.
	GetListings(ctx context.Context) ([]domain.Listing, error)

	// FetchCalendar retrieves the override calendar for one listing.
	FetchCalendar(ctx context.Context, listingID, pms string) (domain.PriceCalendar, error)

	// SubmitCalendar replaces the override calendar for one listing.
	SubmitCalendar(ctx context.Context, listingID, pms string, calendar domain.PriceCalendar) error
}
