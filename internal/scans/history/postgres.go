package history

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sentinel-red/sentinel-backend/internal/scans/domain"
)

// PostgresStore persists history in the scan_history table:
//
//	CREATE TABLE scan_history (
//	    scan_id             TEXT PRIMARY KEY,
//	    project_id          TEXT NOT NULL,
//	    status              TEXT NOT NULL,
//	    created_at          TIMESTAMPTZ NOT NULL,
//	    duration_seconds    INTEGER,
//	    vulnerability_count INTEGER NOT NULL DEFAULT 0,
//	    risk_score          INTEGER,
//	    updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgresStore
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Upsert creates or updates the row for item.ScanID
func (s *PostgresStore) Upsert(ctx context.Context, item domain.HistoryItem) error {
	query := `
		INSERT INTO scan_history (
			scan_id, project_id, status, created_at, duration_seconds,
			vulnerability_count, risk_score
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (scan_id) DO UPDATE SET
			status = EXCLUDED.status,
			duration_seconds = EXCLUDED.duration_seconds,
			vulnerability_count = EXCLUDED.vulnerability_count,
			risk_score = EXCLUDED.risk_score,
			updated_at = NOW()
	`

	// Handle nullable fields
	var duration, risk sql.NullInt64
	if item.DurationSeconds > 0 {
		duration = sql.NullInt64{Int64: int64(item.DurationSeconds), Valid: true}
	}
	if item.RiskScore != nil {
		risk = sql.NullInt64{Int64: int64(*item.RiskScore), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		item.ScanID,
		item.ProjectID,
		string(item.Status),
		item.CreatedAt,
		duration,
		item.VulnerabilityCount,
		risk,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert scan history: %w", err)
	}
	return nil
}

// ListByProject returns the project's items, newest first.
func (s *PostgresStore) ListByProject(ctx context.Context, projectID string) ([]domain.HistoryItem, error) {
	query := `
		SELECT scan_id, project_id, status, created_at, duration_seconds,
		       vulnerability_count, risk_score
		FROM scan_history
		WHERE project_id = $1
		ORDER BY created_at DESC, scan_id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scan history: %w", err)
	}
	defer rows.Close()

	out := make([]domain.HistoryItem, 0)
	for rows.Next() {
		var item domain.HistoryItem
		var status string
		var duration, risk sql.NullInt64

		if err := rows.Scan(
			&item.ScanID,
			&item.ProjectID,
			&status,
			&item.CreatedAt,
			&duration,
			&item.VulnerabilityCount,
			&risk,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}

		item.Status = domain.Status(status)
		if duration.Valid {
			item.DurationSeconds = int(duration.Int64)
		}
		if risk.Valid {
			score := int(risk.Int64)
			item.RiskScore = &score
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scan history: %w", err)
	}

	return out, nil
}
