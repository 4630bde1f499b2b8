package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/domain"
)

// Client is the API client for the price adjustment service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Minute, // batch runs are paced and can be slow
		},
	}
}

// GetListings retrieves all active listings
func (c *Client) GetListings() ([]domain.Listing, error) {
	var response struct {
		Data []domain.Listing `json:"data"`
	}
	if err := c.get("/api/v1/listings", nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// RunAdjustment runs a batch price adjustment and returns the report.
// An empty listingIDs slice adjusts every active listing.
func (c *Client) RunAdjustment(listingIDs []string, direction domain.Direction, dryRun bool) (*domain.BatchReport, error) {
	body := struct {
		ListingIDs []string `json:"listing_ids"`
		Direction  string   `json:"direction"`
		DryRun     bool     `json:"dry_run"`
	}{
		ListingIDs: listingIDs,
		Direction:  string(direction),
		DryRun:     dryRun,
	}

	var response struct {
		Data *domain.BatchReport `json:"data"`
	}
	if err := c.post("/api/v1/adjustments", body, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// ListAdjustments retrieves recent batch report summaries
func (c *Client) ListAdjustments(limit int) ([]*domain.BatchReport, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}

	var response struct {
		Data []*domain.BatchReport `json:"data"`
	}
	if err := c.get("/api/v1/adjustments", params, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetAdjustment retrieves one batch report with its outcomes
func (c *Client) GetAdjustment(id string) (*domain.BatchReport, error) {
	var response struct {
		Data *domain.BatchReport `json:"data"`
	}
	if err := c.get("/api/v1/adjustments/"+id, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// HealthCheck checks if the API is healthy
func (c *Client) HealthCheck() error {
	var response struct {
		Status string `json:"status"`
	}
	if err := c.get("/health", nil, &response); err != nil {
		return err
	}
	if response.Status != "ok" {
		return fmt.Errorf("unhealthy status: %s", response.Status)
	}
	return nil
}

func (c *Client) get(path string, params url.Values, result interface{}) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return err
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	resp, err := c.httpClient.Get(u.String())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: %s - %s", resp.Status, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

func (c *Client) post(path string, body interface{}, result interface{}) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", bytes.NewReader(buf))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: %s - %s", resp.Status, string(respBody))
	}

	return json.NewDecoder(resp.Body).Decode(result)
}
