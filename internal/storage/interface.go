package storage

import (
	"context"

	"github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/domain"
)

// Storage is the abstract interface for the run-history persistence layer.
// The engine itself never reads history back during a batch; storage exists
// so callers can audit what past runs changed.
type Storage interface {
	// SaveReport persists a completed batch report with its outcomes
	SaveReport(ctx context.Context, report *domain.BatchReport) error

	// GetReport retrieves one report including its outcomes
	GetReport(ctx context.Context, id string) (*domain.BatchReport, error)

	// ListReports retrieves recent report summaries, newest first,
	// without their outcomes
	ListReports(ctx context.Context, limit int) ([]*domain.BatchReport, error)

	// Migration
	Migrate(ctx context.Context) error

	// Connection management
	Close() error
}
