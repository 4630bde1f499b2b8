package domain

// PriceEntry is one dated override price in a listing's calendar.
// Dates use the YYYY-MM-DD format, so lexical order is date order.
type PriceEntry struct {
	Date     string
	Price    float64
	Currency string
	MinStay  int
}

// PriceCalendar is a listing's override calendar, ordered by date.
// It is fetched fresh per batch run and never cached across runs.
type PriceCalendar []PriceEntry
