// Package ledger records committed harvest cycles in Postgres for
// operational audit. The harvester works without it; a nil DSN selects the
// no-op implementation.
package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sportsbettor/ingest/internal/harvest"
)

// DB is the subset of pgxpool.Pool the ledger uses, so tests can substitute
// a mock pool.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresLedger implements harvest.Ledger backed by Postgres.
// It assumes a table schema like:
//
//	CREATE TABLE harvest_cycles (
//		run_id UUID PRIMARY KEY,
//		started_at TIMESTAMPTZ NOT NULL,
//		finished_at TIMESTAMPTZ NOT NULL,
//		posts INT NOT NULL,
//		skipped_posts INT NOT NULL,
//		media_assets INT NOT NULL,
//		artifact_uri TEXT NOT NULL,
//		checkpoint TEXT,
//		created_at TIMESTAMPTZ DEFAULT NOW()
//	);
type PostgresLedger struct {
	db DB
}

// NewPostgres connects a pool and pings it to fail fast on startup.
func NewPostgres(ctx context.Context, dsn string) (*PostgresLedger, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresLedger{db: pool}, nil
}

// NewWithDB wraps an existing pool or mock. Used by tests.
func NewWithDB(db DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// RecordCycle inserts one committed cycle. Conflicting run IDs overwrite
// nothing; a retried commit for the same run is idempotent.
func (l *PostgresLedger) RecordCycle(ctx context.Context, summary harvest.CycleSummary) error {
	query := `
		INSERT INTO harvest_cycles
			(run_id, started_at, finished_at, posts, skipped_posts, media_assets, artifact_uri, checkpoint)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (run_id) DO NOTHING;
	`
	_, err := l.db.Exec(ctx, query,
		summary.RunID,
		summary.StartedAt,
		summary.FinishedAt,
		summary.Posts,
		summary.SkippedPosts,
		summary.MediaAssets,
		summary.ArtifactURI,
		nullable(summary.Checkpoint),
	)
	if err != nil {
		return fmt.Errorf("insert harvest cycle: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (l *PostgresLedger) Close() {
	l.db.Close()
}

// Noop is a ledger that records nothing.
type Noop struct{}

// RecordCycle does nothing and always succeeds.
func (Noop) RecordCycle(_ context.Context, _ harvest.CycleSummary) error {
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
