package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/domain"
	"github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/storage"
)

// postgresStorage implements the Storage interface for PostgreSQL
type postgresStorage struct {
	db *sql.DB
}

// NewPostgresStorage creates a new PostgreSQL storage instance
func NewPostgresStorage(connURL string) (storage.Storage, error) {
	db, err := sql.Open("postgres", connURL)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	s := &postgresStorage{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		return nil, err
	}

	return s, nil
}

// Migrate runs database migrations
func (s *postgresStorage) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS batch_reports (
		id TEXT PRIMARY KEY,
		direction TEXT NOT NULL,
		percentage DOUBLE PRECISION NOT NULL,
		dry_run BOOLEAN NOT NULL,
		total_listings INTEGER NOT NULL,
		success_count INTEGER NOT NULL,
		error_count INTEGER NOT NULL,
		skipped_count INTEGER NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		completed_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_batch_reports_started_at ON batch_reports(started_at);

	CREATE TABLE IF NOT EXISTS listing_outcomes (
		batch_id TEXT NOT NULL REFERENCES batch_reports(id),
		position INTEGER NOT NULL,
		listing_id TEXT NOT NULL,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		change_count INTEGER NOT NULL,
		simulated BOOLEAN NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		sample_changes JSONB NOT NULL DEFAULT '[]',
		PRIMARY KEY (batch_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_listing_outcomes_listing ON listing_outcomes(listing_id);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveReport persists a completed batch report with its outcomes
func (s *postgresStorage) SaveReport(ctx context.Context, report *domain.BatchReport) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO batch_reports (id, direction, percentage, dry_run, total_listings, success_count, error_count, skipped_count, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, report.ID, string(report.Direction), report.Percentage, report.DryRun,
		report.TotalListings, report.SuccessCount, report.ErrorCount, report.SkippedCount,
		report.StartedAt, report.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	for i, outcome := range report.Outcomes {
		samples, err := json.Marshal(outcome.SampleChanges)
		if err != nil {
			return fmt.Errorf("failed to encode sample changes: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO listing_outcomes (batch_id, position, listing_id, name, status, change_count, simulated, error_message, sample_changes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, report.ID, i, outcome.ListingID, outcome.Name, string(outcome.Status),
			outcome.ChangeCount, outcome.Simulated, outcome.ErrorMessage, string(samples))
		if err != nil {
			return fmt.Errorf("failed to save outcome for listing %s: %w", outcome.ListingID, err)
		}
	}

	return tx.Commit()
}

// GetReport retrieves one report including its outcomes
func (s *postgresStorage) GetReport(ctx context.Context, id string) (*domain.BatchReport, error) {
	report := &domain.BatchReport{}
	var direction string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, direction, percentage, dry_run, total_listings, success_count, error_count, skipped_count, started_at, completed_at
		FROM batch_reports WHERE id = $1
	`, id).Scan(&report.ID, &direction, &report.Percentage, &report.DryRun,
		&report.TotalListings, &report.SuccessCount, &report.ErrorCount, &report.SkippedCount,
		&report.StartedAt, &report.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("report %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	report.Direction = domain.Direction(direction)

	rows, err := s.db.QueryContext(ctx, `
		SELECT listing_id, name, status, change_count, simulated, error_message, sample_changes
		FROM listing_outcomes WHERE batch_id = $1 ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var outcome domain.ListingOutcome
		var status, samples string
		if err := rows.Scan(&outcome.ListingID, &outcome.Name, &status,
			&outcome.ChangeCount, &outcome.Simulated, &outcome.ErrorMessage, &samples); err != nil {
			return nil, err
		}
		outcome.Status = domain.OutcomeStatus(status)
		if err := json.Unmarshal([]byte(samples), &outcome.SampleChanges); err != nil {
			return nil, fmt.Errorf("failed to decode sample changes: %w", err)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	return report, rows.Err()
}

// ListReports retrieves recent report summaries, newest first
func (s *postgresStorage) ListReports(ctx context.Context, limit int) ([]*domain.BatchReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, direction, percentage, dry_run, total_listings, success_count, error_count, skipped_count, started_at, completed_at
		FROM batch_reports ORDER BY started_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*domain.BatchReport
	for rows.Next() {
		report := &domain.BatchReport{}
		var direction string
		if err := rows.Scan(&report.ID, &direction, &report.Percentage, &report.DryRun,
			&report.TotalListings, &report.SuccessCount, &report.ErrorCount, &report.SkippedCount,
			&report.StartedAt, &report.CompletedAt); err != nil {
			return nil, err
		}
		report.Direction = domain.Direction(direction)
		reports = append(reports, report)
	}

	return reports, rows.Err()
}

// Close closes the database connection
func (s *postgresStorage) Close() error {
	return s.db.Close()
}
