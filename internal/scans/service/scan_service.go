package service

import (
	"context"

	"github.com/sentinel-red/sentinel-backend/internal/latency"
	"github.com/sentinel-red/sentinel-backend/internal/logging"
	projectdomain "github.com/sentinel-red/sentinel-backend/internal/projects/domain"
	"github.com/sentinel-red/sentinel-backend/internal/scans/domain"
	"github.com/sentinel-red/sentinel-backend/internal/scans/history"
)

// ProjectLookup resolves the project a scan is started for.
type ProjectLookup interface {
	Get(ctx context.Context, id string) (*projectdomain.Project, error)
}

// Engine runs scans. *simulator.Simulator satisfies it.
type Engine interface {
	Tracker
	Start(ctx context.Context, projectID string) (string, error)
	Pause(ctx context.Context, scanID string) error
	Stop(ctx context.Context, scanID string) error
}

// ScanService handles business logic for scan lifecycle requests
type ScanService struct {
	projects ProjectLookup
	engine   Engine
	poller   *StatusPoller
	history  history.Store
	latency  *latency.Simulator
}

// NewScanService creates a new ScanService. lat may be nil.
func NewScanService(projects ProjectLookup, engine Engine, mirror Mirror, store history.Store, lat *latency.Simulator) *ScanService {
	return &ScanService{
		projects: projects,
		engine:   engine,
		poller:   NewStatusPoller(engine, mirror),
		history:  store,
		latency:  lat,
	}
}

// Poller exposes the status poller used by this service.
func (s *ScanService) Poller() *StatusPoller {
	return s.poller
}

// StartScan starts a scan for an existing project and returns its id.
func (s *ScanService) StartScan(ctx context.Context, projectID string) (string, error) {
	if err := s.latency.Wait(ctx, latency.OpStartScan); err != nil {
		return "", err
	}
	if projectID == "" {
		return "", domain.ErrProjectRequired
	}
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return "", err
	}

	scanID, err := s.engine.Start(ctx, projectID)
	if err != nil {
		return "", err
	}

	logging.NewLogger(ctx).Infof("scans.start", "scan_id=%s project_id=%s", scanID, projectID)
	return scanID, nil
}

// GetStatus polls the scan's status.
func (s *ScanService) GetStatus(ctx context.Context, scanID string) (*domain.StatusResponse, error) {
	if err := s.latency.Wait(ctx, latency.OpScanStatus); err != nil {
		return nil, err
	}
	return s.poller.GetStatus(ctx, scanID)
}

// GetLogs returns a copy of the scan's log lines.
func (s *ScanService) GetLogs(ctx context.Context, scanID string) ([]string, error) {
	return s.poller.GetLogs(ctx, scanID)
}

// PauseScan pauses a running scan.
func (s *ScanService) PauseScan(ctx context.Context, scanID string) error {
	if err := s.engine.Pause(ctx, scanID); err != nil {
		return err
	}
	logging.NewLogger(ctx).Infof("scans.pause", "scan_id=%s", scanID)
	return nil
}

// StopScan fails a running or paused scan.
func (s *ScanService) StopScan(ctx context.Context, scanID string) error {
	if err := s.engine.Stop(ctx, scanID); err != nil {
		return err
	}
	logging.NewLogger(ctx).Infof("scans.stop", "scan_id=%s", scanID)
	return nil
}

// History lists a project's finished scans, newest first.
func (s *ScanService) History(ctx context.Context, projectID string) ([]domain.HistoryItem, error) {
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, err
	}
	return s.history.ListByProject(ctx, projectID)
}

// ProjectOf returns the owning project id of a known scan.
func (s *ScanService) ProjectOf(ctx context.Context, scanID string) (string, bool) {
	state, ok := s.poller.Snapshot(ctx, scanID)
	if !ok {
		return "", false
	}
	return state.ProjectID, true
}
