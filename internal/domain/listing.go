package domain

// ListingStatus represents whether a listing can receive price pushes
type ListingStatus string

const (
	ListingStatusActive   ListingStatus = "active"
	ListingStatusInactive ListingStatus = "inactive"
)

// Listing represents one rentable unit managed through the pricing service
type Listing struct {
	ID       string
	Name     string
	Status   ListingStatus
	PMS      string // property management system tag, e.g. "hostaway"
	Currency string
	MinStay  int
}
