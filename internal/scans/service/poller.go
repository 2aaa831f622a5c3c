package service

import (
	"context"
	"errors"
	"time"

	"github.com/sentinel-red/sentinel-backend/internal/logging"
	"github.com/sentinel-red/sentinel-backend/internal/scans/domain"
)

// CannedLogs is returned for scans the service knows nothing about.
var CannedLogs = []string{
	"Initializing scan engine...",
	"Loading project files...",
	"Target mapped: 15 endpoints discovered",
	"Starting static analysis...",
	"Vulnerability found: SQL Injection in /api/users",
	"Analysis complete.",
}

// Mirrored scans that were still running or paused when the process that
// drove them went away are reported as failed with this line appended.
const (
	LogInterrupted   = "Scan interrupted: the scan engine restarted."
	ErrorInterrupted = "interrupted by restart"
)

// Tracker exposes live scans.
type Tracker interface {
	Snapshot(scanID string) (*domain.ScanState, bool)
}

// Mirror is the persisted fallback consulted for scans that are not
// tracked in memory.
type Mirror interface {
	Get(ctx context.Context, scanID string) (*domain.ScanState, error)
}

// StatusPoller answers status and log queries with point-in-time copies.
type StatusPoller struct {
	tracker Tracker
	mirror  Mirror
	now     func() time.Time
}

// NewStatusPoller creates a poller. mirror may be nil.
func NewStatusPoller(tracker Tracker, mirror Mirror) *StatusPoller {
	return &StatusPoller{tracker: tracker, mirror: mirror, now: time.Now}
}

// GetStatus reports the scan's status. Unknown ids resolve to a completed
// snapshot rather than an error.
func (p *StatusPoller) GetStatus(ctx context.Context, scanID string) (*domain.StatusResponse, error) {
	if state, ok := p.lookup(ctx, scanID); ok {
		return statusOf(state), nil
	}

	now := p.now()
	return &domain.StatusResponse{
		ScanID:      scanID,
		Status:      domain.StatusCompleted,
		Progress:    100,
		CurrentStep: domain.StepAnalysisComplete,
		StartedAt:   now.Add(-time.Hour),
		CompletedAt: &now,
	}, nil
}

// GetLogs returns a copy of the scan's log lines.
func (p *StatusPoller) GetLogs(ctx context.Context, scanID string) ([]string, error) {
	if state, ok := p.lookup(ctx, scanID); ok {
		return state.Logs, nil
	}
	return append([]string(nil), CannedLogs...), nil
}

// Snapshot returns the full state of a tracked or mirrored scan.
func (p *StatusPoller) Snapshot(ctx context.Context, scanID string) (*domain.ScanState, bool) {
	return p.lookup(ctx, scanID)
}

func (p *StatusPoller) lookup(ctx context.Context, scanID string) (*domain.ScanState, bool) {
	if state, ok := p.tracker.Snapshot(scanID); ok {
		return state, true
	}
	if p.mirror == nil {
		return nil, false
	}

	state, err := p.mirror.Get(ctx, scanID)
	if err != nil {
		if !errors.Is(err, domain.ErrScanNotFound) {
			logging.NewLogger(ctx).Warnf("scans.poll", "scan_id=%s mirror lookup: %v", scanID, err)
		}
		return nil, false
	}
	if !state.Status.IsTerminal() {
		markInterrupted(state)
	}
	return state, true
}

// markInterrupted turns an orphaned mirror snapshot into a failed scan. No
// tick loop exists for it any more, so its progress would never move.
func markInterrupted(state *domain.ScanState) {
	ended := state.UpdatedAt
	if ended.IsZero() {
		ended = state.StartedAt
	}
	state.Status = domain.StatusFailed
	state.Error = ErrorInterrupted
	state.CompletedAt = &ended
	state.Logs = append(state.Logs, LogInterrupted)
}

func statusOf(state *domain.ScanState) *domain.StatusResponse {
	return &domain.StatusResponse{
		ScanID:      state.ScanID,
		Status:      state.Status,
		Progress:    state.Progress,
		CurrentStep: domain.CurrentStep(state.Progress),
		StartedAt:   state.StartedAt,
		CompletedAt: state.CompletedAt,
		Error:       state.Error,
	}
}
