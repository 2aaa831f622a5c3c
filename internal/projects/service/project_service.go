package service

import (
	"context"

	"github.com/sentinel-red/sentinel-backend/internal/latency"
	"github.com/sentinel-red/sentinel-backend/internal/logging"
	"github.com/sentinel-red/sentinel-backend/internal/projects/domain"
	"github.com/sentinel-red/sentinel-backend/internal/projects/repository"
)

// ProjectService handles project-related business logic
type ProjectService struct {
	repo      *repository.Registry
	endpoints []domain.Endpoint
	latency   *latency.Simulator
}

// NewProjectService creates a new project service. endpoints is the
// inventory reported for every project; lat may be nil.
func NewProjectService(repo *repository.Registry, endpoints []domain.Endpoint, lat *latency.Simulator) *ProjectService {
	return &ProjectService{
		repo:      repo,
		endpoints: endpoints,
		latency:   lat,
	}
}

// List returns all projects, most recent first
func (s *ProjectService) List(ctx context.Context) ([]domain.Project, error) {
	if err := s.latency.Wait(ctx, latency.OpListProjects); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

// Get returns one project
func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	if err := s.latency.Wait(ctx, latency.OpGetProject); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Create registers a new project
func (s *ProjectService) Create(ctx context.Context, name string, typ domain.ProjectType) (*domain.Project, error) {
	if err := s.latency.Wait(ctx, latency.OpUpload); err != nil {
		return nil, err
	}
	p, err := s.repo.Create(ctx, name, typ)
	if err != nil {
		return nil, err
	}
	logging.NewLogger(ctx).Infof("projects.create", "project_id=%s type=%s", p.ID, p.Type)
	return p, nil
}

// Delete removes a project; unknown ids succeed
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if err := s.latency.Wait(ctx, latency.OpDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logging.NewLogger(ctx).Infof("projects.delete", "project_id=%s", id)
	return nil
}

// Endpoints returns the endpoint inventory of an existing project.
func (s *ProjectService) Endpoints(ctx context.Context, id string) ([]domain.Endpoint, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	out := make([]domain.Endpoint, len(s.endpoints))
	for i, ep := range s.endpoints {
		ep.Parameters = append([]domain.EndpointParameter(nil), ep.Parameters...)
		out[i] = ep
	}
	return out, nil
}
