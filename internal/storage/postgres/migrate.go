package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const scanHistorySchema = `
CREATE TABLE IF NOT EXISTS scan_history (
    scan_id             TEXT PRIMARY KEY,
    project_id          TEXT NOT NULL,
    status              TEXT NOT NULL,
    created_at          TIMESTAMPTZ NOT NULL,
    duration_seconds    INTEGER,
    vulnerability_count INTEGER NOT NULL DEFAULT 0,
    risk_score          INTEGER,
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_scan_history_project ON scan_history (project_id, created_at DESC);
`

// Migrate creates the tables the service writes to.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, scanHistorySchema); err != nil {
		return fmt.Errorf("migrate scan_history: %w", err)
	}
	return nil
}
