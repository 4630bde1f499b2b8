package pricelabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/domain"
	apperrors "github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/errors"
)

// priceTypeFixed is the only override kind the engine adjusts; percent
// overrides are left untouched.
const priceTypeFixed = "fixed"

// httpPricingClient implements Client against the PriceLabs REST API
type httpPricingClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retryDelay time.Duration
}

// NewHTTPClient creates a new client for the remote pricing service.
// Transient and rate-limited failures are retried once after retryDelay;
// every other failure kind is surfaced immediately.
func NewHTTPClient(baseURL, apiKey string, retryDelay time.Duration) Client {
	return &httpPricingClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retryDelay: retryDelay,
	}
}

type listingPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PMS         string `json:"pms"`
	Currency    string `json:"currency"`
	MinStay     int    `json:"min_stay"`
	IsHidden    bool   `json:"isHidden"`
	PushEnabled bool   `json:"push_enabled"`
}

type listingsResponse struct {
	Listings []listingPayload `json:"listings"`
}

type overridePayload struct {
	Date      string `json:"date"`
	Price     string `json:"price"`
	PriceType string `json:"price_type"`
	Currency  string `json:"currency"`
	MinStay   int    `json:"min_stay"`
}

type overridesResponse struct {
	Overrides []overridePayload `json:"overrides"`
}

type submitRequest struct {
	PMS            string            `json:"pms,omitempty"`
	UpdateChildren bool              `json:"update_children"`
	Overrides      []overridePayload `json:"overrides"`
}

type submitResult struct {
	Date     string `json:"date"`
	Accepted bool   `json:"accepted"`
}

type submitResponse struct {
	Results []submitResult `json:"results"`
}

// GetListings retrieves all listings from the pricing service
func (c *httpPricingClient) GetListings(ctx context.Context) ([]domain.Listing, error) {
	var payload listingsResponse
	err := c.withRetry(ctx, func() error {
		return c.get(ctx, "/listings", nil, &payload)
	})
	if err != nil {
		return nil, err
	}

	listings := make([]domain.Listing, 0, len(payload.Listings))
	for _, l := range payload.Listings {
		status := domain.ListingStatusInactive
		if !l.IsHidden && l.PushEnabled {
			status = domain.ListingStatusActive
		}
		listings = append(listings, domain.Listing{
			ID:       l.ID,
			Name:     l.Name,
			Status:   status,
			PMS:      l.PMS,
			Currency: l.Currency,
			MinStay:  l.MinStay,
		})
	}
	return listings, nil
}

// FetchCalendar retrieves the override calendar for one listing
func (c *httpPricingClient) FetchCalendar(ctx context.Context, listingID, pms string) (domain.PriceCalendar, error) {
	params := url.Values{}
	if pms != "" {
		params.Set("pms", pms)
	}

	var payload overridesResponse
	err := c.withRetry(ctx, func() error {
		return c.get(ctx, "/listings/"+listingID+"/overrides", params, &payload)
	})
	if err != nil {
		return nil, err
	}

	calendar := make(domain.PriceCalendar, 0, len(payload.Overrides))
	for _, o := range payload.Overrides {
		if o.PriceType != priceTypeFixed {
			continue
		}
		price, err := strconv.ParseFloat(o.Price, 64)
		if err != nil {
			return nil, apperrors.NewMalformedError(
				fmt.Sprintf("unparseable price %q on %s for listing %s", o.Price, o.Date, listingID), err)
		}
		calendar = append(calendar, domain.PriceEntry{
			Date:     o.Date,
			Price:    price,
			Currency: o.Currency,
			MinStay:  o.MinStay,
		})
	}
	return calendar, nil
}

// SubmitCalendar replaces the override calendar for one listing
func (c *httpPricingClient) SubmitCalendar(ctx context.Context, listingID, pms string, calendar domain.PriceCalendar) error {
	overrides := make([]overridePayload, 0, len(calendar))
	for _, entry := range calendar {
		overrides = append(overrides, overridePayload{
			Date:      entry.Date,
			Price:     strconv.FormatFloat(entry.Price, 'f', 2, 64),
			PriceType: priceTypeFixed,
			Currency:  entry.Currency,
			MinStay:   entry.MinStay,
		})
	}
	req := submitRequest{PMS: pms, Overrides: overrides}

	var payload submitResponse
	if err := c.withRetry(ctx, func() error {
		return c.post(ctx, "/listings/"+listingID+"/overrides", req, &payload)
	}); err != nil {
		return err
	}

	// An empty result set means the remote did not report per-date status;
	// treat the write as fully accepted.
	if len(payload.Results) == 0 {
		return nil
	}

	rejected := 0
	for _, r := range payload.Results {
		if !r.Accepted {
			rejected++
		}
	}
	switch {
	case rejected == 0:
		return nil
	case rejected == len(payload.Results):
		return apperrors.NewTransientError(
			fmt.Sprintf("all %d dates rejected for listing %s", rejected, listingID), nil)
	default:
		return apperrors.NewPartialWriteError(
			fmt.Sprintf("%d of %d dates rejected for listing %s", rejected, len(payload.Results), listingID))
	}
}

// withRetry runs fn and retries it exactly once, after a fixed delay, when
// the failure is transient or rate-limited. All other failures are not
// expected to succeed on retry and are surfaced immediately.
func (c *httpPricingClient) withRetry(ctx context.Context, fn func() error) error {
	err := fn()
	if err == nil || !apperrors.IsRetryable(err) {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.retryDelay):
	}
	return fn()
}

func (c *httpPricingClient) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return apperrors.NewTransientError("failed to build request", err)
	}
	return c.do(req, result)
}

func (c *httpPricingClient) post(ctx context.Context, path string, body interface{}, result interface{}) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return apperrors.NewTransientError("failed to encode request body", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return apperrors.NewTransientError("failed to build request", err)
	}
	return c.do(req, result)
}

func (c *httpPricingClient) do(req *http.Request, result interface{}) error {
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewTransientError("request failed", err)
	}
	defer resp.Body.Close()

	if err := statusError(resp.StatusCode); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return apperrors.NewMalformedError("unparseable response body", err)
	}
	return nil
}

// statusError maps an HTTP status to the typed error taxonomy
func statusError(status int) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusNotFound:
		return apperrors.NewNotFoundError("listing")
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.NewUnauthorizedError("pricing service rejected the API key")
	case status == http.StatusTooManyRequests:
		return apperrors.NewRateLimitedError("pricing service rate limit exceeded")
	default:
		return apperrors.NewTransientError(fmt.Sprintf("unexpected status %d", status), nil)
	}
}
