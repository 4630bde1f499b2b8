package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/domain"
	apperrors "github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/errors"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeRunner struct {
	lastIDs       []string
	lastDirective domain.AdjustmentDirective
	report        domain.BatchReport
	err           error
}

func (f *fakeRunner) Run(ctx context.Context, ids []string, directive domain.AdjustmentDirective) (domain.BatchReport, error) {
	f.lastIDs = ids
	f.lastDirective = directive
	if f.err != nil {
		return domain.BatchReport{}, f.err
	}
	return f.report, nil
}

type fakeClient struct {
	listings []domain.Listing
}

func (f *fakeClient) GetListings(ctx context.Context) ([]domain.Listing, error) {
	return f.listings, nil
}

func (f *fakeClient) FetchCalendar(ctx context.Context, listingID, pms string) (domain.PriceCalendar, error) {
	return nil, nil
}

func (f *fakeClient) SubmitCalendar(ctx context.Context, listingID, pms string, calendar domain.PriceCalendar) error {
	return nil
}

type fakeStore struct {
	saved   []*domain.BatchReport
	reports map[string]*domain.BatchReport
}

func (f *fakeStore) SaveReport(ctx context.Context, report *domain.BatchReport) error {
	f.saved = append(f.saved, report)
	return nil
}

func (f *fakeStore) GetReport(ctx context.Context, id string) (*domain.BatchReport, error) {
	if r, ok := f.reports[id]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("report %s not found", id)
}

func (f *fakeStore) ListReports(ctx context.Context, limit int) ([]*domain.BatchReport, error) {
	return f.saved, nil
}

func (f *fakeStore) Migrate(ctx context.Context) error { return nil }
func (f *fakeStore) Close() error                      { return nil }

func newTestRouter(runner *fakeRunner, client *fakeClient, store *fakeStore) *gin.Engine {
	return SetupRoutes(NewHandler(client, runner, store, 0.05))
}

func TestGetListingsFiltersActive(t *testing.T) {
	client := &fakeClient{listings: []domain.Listing{
		{ID: "1", Name: "Beach House", Status: domain.ListingStatusActive},
		{ID: "2", Name: "Hidden Cabin", Status: domain.ListingStatusInactive},
	}}
	router := newTestRouter(&fakeRunner{}, client, &fakeStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/listings", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Data []domain.Listing `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].ID != "1" {
		t.Errorf("expected only the active listing, got %+v", resp.Data)
	}
}

func TestRunAdjustment(t *testing.T) {
	runner := &fakeRunner{report: domain.BatchReport{
		ID:            "batch-1",
		TotalListings: 1,
		SuccessCount:  1,
	}}
	store := &fakeStore{}
	router := newTestRouter(runner, &fakeClient{}, store)

	body := bytes.NewBufferString(`{"listing_ids":["1"],"direction":"increase","dry_run":true}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/adjustments", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if runner.lastDirective.Direction != domain.DirectionIncrease || !runner.lastDirective.DryRun {
		t.Errorf("directive not passed through: %+v", runner.lastDirective)
	}
	if runner.lastDirective.Percentage != 0.05 {
		t.Errorf("configured percentage not applied: %v", runner.lastDirective.Percentage)
	}
	if len(store.saved) != 1 {
		t.Errorf("report not persisted, saved %d", len(store.saved))
	}
}

func TestRunAdjustmentDefaultsToActiveListings(t *testing.T) {
	runner := &fakeRunner{}
	client := &fakeClient{listings: []domain.Listing{
		{ID: "1", Status: domain.ListingStatusActive},
		{ID: "2", Status: domain.ListingStatusInactive},
		{ID: "3", Status: domain.ListingStatusActive},
	}}
	router := newTestRouter(runner, client, &fakeStore{})

	body := bytes.NewBufferString(`{"direction":"decrease"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/adjustments", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(runner.lastIDs) != 2 || runner.lastIDs[0] != "1" || runner.lastIDs[1] != "3" {
		t.Errorf("expected active listing IDs, got %v", runner.lastIDs)
	}
}

func TestRunAdjustmentBadRequest(t *testing.T) {
	runner := &fakeRunner{err: apperrors.NewBadRequestError("unknown direction")}
	router := newTestRouter(runner, &fakeClient{listings: []domain.Listing{{ID: "1", Status: domain.ListingStatusActive}}}, &fakeStore{})

	body := bytes.NewBufferString(`{"direction":"sideways"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/adjustments", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestGetAdjustmentNotFound(t *testing.T) {
	router := newTestRouter(&fakeRunner{}, &fakeClient{}, &fakeStore{reports: map[string]*domain.BatchReport{}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/adjustments/nope", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
