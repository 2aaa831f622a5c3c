package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sentinel-red/sentinel-backend/internal/projects/domain"
	scandomain "github.com/sentinel-red/sentinel-backend/internal/scans/domain"
)

// Registry is the in-memory project collection. Iteration order is
// most-recently-created first. Every method returns copies, so callers
// never observe later mutations through a value they already hold.
type Registry struct {
	mu    sync.RWMutex
	order []string
	items map[string]*domain.Project

	now   func() time.Time
	newID func() (string, error)
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		items: make(map[string]*domain.Project),
		now:   time.Now,
		newID: func() (string, error) { return domain.NewPublicID("proj") },
	}
}

// Seed appends projects in the given order, after anything already present.
// Zero timestamps are set to now.
func (r *Registry) Seed(projects []domain.Project) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for i := range projects {
		p := projects[i].Clone()
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = p.CreatedAt
		}
		if _, exists := r.items[p.ID]; !exists {
			r.order = append(r.order, p.ID)
		}
		r.items[p.ID] = p
	}
}

// List returns all projects, most recent first.
func (r *Registry) List(ctx context.Context) ([]domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Project, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.items[id].Clone())
	}
	return out, nil
}

// Get returns one project or domain.ErrProjectNotFound.
func (r *Registry) Get(ctx context.Context, id string) (*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return p.Clone(), nil
}

// Create inserts a new project at the front of the iteration order.
func (r *Registry) Create(ctx context.Context, name string, typ domain.ProjectType) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if !typ.Valid() {
		return nil, domain.ErrInvalidType
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var id string
	for i := 0; i < 5; i++ {
		candidate, err := r.newID()
		if err != nil {
			return nil, err
		}
		if _, taken := r.items[candidate]; !taken {
			id = candidate
			break
		}
	}
	if id == "" {
		return nil, fmt.Errorf("failed to generate unique project id")
	}

	now := r.now()
	p := &domain.Project{
		ID:                  id,
		Name:                name,
		Type:                typ,
		CreatedAt:           now,
		UpdatedAt:           now,
		VulnerabilityCounts: &scandomain.VulnerabilityCounts{},
	}
	r.items[id] = p
	r.order = append([]string{id}, r.order...)

	return p.Clone(), nil
}

// Delete removes a project. Unknown ids are ignored.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return nil
	}
	delete(r.items, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// RecordScanStart links a freshly started scan to its project.
func (r *Registry) RecordScanStart(ctx context.Context, projectID, scanID string) error {
	return r.update(projectID, func(p *domain.Project) {
		p.LastScanID = scanID
		p.LastScanStatus = scandomain.StatusRunning
	})
}

// RecordScanCompletion stores the terminal summary of the last scan. An
// older scan finishing after a newer one started leaves the project alone.
func (r *Registry) RecordScanCompletion(ctx context.Context, projectID, scanID string, counts scandomain.VulnerabilityCounts) error {
	return r.update(projectID, func(p *domain.Project) {
		if p.LastScanID != scanID {
			return
		}
		p.LastScanStatus = scandomain.StatusCompleted
		p.VulnerabilityCounts = &counts
	})
}

// RecordScanStatus mirrors a non-completion status change of the last scan.
// Changes from scans other than the project's last one are ignored.
func (r *Registry) RecordScanStatus(ctx context.Context, projectID, scanID string, status scandomain.Status) error {
	return r.update(projectID, func(p *domain.Project) {
		if p.LastScanID == scanID {
			p.LastScanStatus = status
		}
	})
}

func (r *Registry) update(projectID string, fn func(p *domain.Project)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[projectID]
	if !ok {
		return domain.ErrProjectNotFound
	}
	fn(p)
	p.UpdatedAt = r.now()
	return nil
}
