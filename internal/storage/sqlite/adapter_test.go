package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/domain"
)

func testReport() *domain.BatchReport {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.BatchReport{
		ID:            "batch-1",
		Direction:     domain.DirectionIncrease,
		Percentage:    0.05,
		DryRun:        false,
		TotalListings: 2,
		SuccessCount:  1,
		ErrorCount:    1,
		StartedAt:     now,
		CompletedAt:   now.Add(time.Minute),
		Outcomes: []domain.ListingOutcome{
			{
				ListingID:   "101",
				Name:        "Beach House",
				Status:      domain.OutcomeStatusSuccess,
				ChangeCount: 2,
				SampleChanges: []domain.PriceChange{
					{Date: "2026-09-01", OldPrice: 100, NewPrice: 105, Currency: "USD"},
					{Date: "2026-09-02", OldPrice: 200, NewPrice: 210, Currency: "USD"},
				},
			},
			{
				ListingID:    "102",
				Name:         "City Loft",
				Status:       domain.OutcomeStatusError,
				ErrorMessage: "TRANSIENT: connection reset",
			},
		},
	}
}

func TestSaveAndGetReport(t *testing.T) {
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.SaveReport(ctx, testReport()); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	got, err := store.GetReport(ctx, "batch-1")
	if err != nil {
		t.Fatalf("failed to get report: %v", err)
	}
	if got.SuccessCount != 1 || got.ErrorCount != 1 || got.TotalListings != 2 {
		t.Errorf("counts mismatch: %+v", got)
	}
	if len(got.Outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(got.Outcomes))
	}
	if got.Outcomes[0].ListingID != "101" || got.Outcomes[1].ListingID != "102" {
		t.Errorf("outcome order not preserved: %+v", got.Outcomes)
	}
	if len(got.Outcomes[0].SampleChanges) != 2 {
		t.Errorf("sample changes not round-tripped: %+v", got.Outcomes[0])
	}
	if got.Outcomes[0].SampleChanges[0].NewPrice != 105 {
		t.Errorf("sample change price mismatch: %+v", got.Outcomes[0].SampleChanges[0])
	}
	if got.Outcomes[1].ErrorMessage == "" {
		t.Error("error message not persisted")
	}
}

func TestGetReportNotFound(t *testing.T) {
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	defer store.Close()

	if _, err := store.GetReport(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for missing report")
	}
}

func TestListReports(t *testing.T) {
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	first := testReport()
	second := testReport()
	second.ID = "batch-2"
	second.StartedAt = first.StartedAt.Add(time.Hour)

	if err := store.SaveReport(ctx, first); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}
	if err := store.SaveReport(ctx, second); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	reports, err := store.ListReports(ctx, 10)
	if err != nil {
		t.Fatalf("failed to list reports: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	if reports[0].ID != "batch-2" {
		t.Errorf("expected newest first, got %s", reports[0].ID)
	}
	if reports[0].Outcomes != nil {
		t.Error("summaries must not include outcomes")
	}
}
