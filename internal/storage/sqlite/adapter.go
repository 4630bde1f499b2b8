package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/domain"
	"github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/storage"
)

// sqliteStorage implements the Storage interface for SQLite
type sqliteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (storage.Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	s := &sqliteStorage{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		return nil, err
	}

	return s, nil
}

// Migrate runs database migrations
func (s *sqliteStorage) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS batch_reports (
		id TEXT PRIMARY KEY,
		direction TEXT NOT NULL,
		percentage REAL NOT NULL,
		dry_run INTEGER NOT NULL,
		total_listings INTEGER NOT NULL,
		success_count INTEGER NOT NULL,
		error_count INTEGER NOT NULL,
		skipped_count INTEGER NOT NULL,
		started_at TIMESTAMP NOT NULL,
		completed_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_batch_reports_started_at ON batch_reports(started_at);

	CREATE TABLE IF NOT EXISTS listing_outcomes (
		batch_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		listing_id TEXT NOT NULL,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		change_count INTEGER NOT NULL,
		simulated INTEGER NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		sample_changes TEXT NOT NULL DEFAULT '[]',
		PRIMARY KEY (batch_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_listing_outcomes_listing ON listing_outcomes(listing_id);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveReport persists a completed batch report with its outcomes
func (s *sqliteStorage) SaveReport(ctx context.Context, report *domain.BatchReport) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO batch_reports (id, direction, percentage, dry_run, total_listings, success_count, error_count, skipped_count, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
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
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, report.ID, i, outcome.ListingID, outcome.Name, string(outcome.Status),
			outcome.ChangeCount, outcome.Simulated, outcome.ErrorMessage, string(samples))
		if err != nil {
			return fmt.Errorf("failed to save outcome for listing %s: %w", outcome.ListingID, err)
		}
	}

	return tx.Commit()
}

// GetReport retrieves one report including its outcomes
func (s *sqliteStorage) GetReport(ctx context.Context, id string) (*domain.BatchReport, error) {
	report := &domain.BatchReport{}
	var direction string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, direction, percentage, dry_run, total_listings, success_count, error_count, skipped_count, started_at, completed_at
		FROM batch_reports WHERE id = ?
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
		FROM listing_outcomes WHERE batch_id = ? ORDER BY position
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
func (s *sqliteStorage) ListReports(ctx context.Context, limit int) ([]*domain.BatchReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, direction, percentage, dry_run, total_listings, success_count, error_count, skipped_count, started_at, completed_at
		FROM batch_reports ORDER BY started_at DESC LIMIT ?
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
func (s *sqliteStorage) Close() error {
	return s.db.Close()
}
