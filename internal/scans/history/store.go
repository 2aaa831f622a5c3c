package history

import (
	"context"
	"sort"
	"sync"

	"github.com/sentinel-red/sentinel-backend/internal/scans/domain"
)

// Store keeps one HistoryItem per scan id.
type Store interface {
	Upsert(ctx context.Context, item domain.HistoryItem) error
	ListByProject(ctx context.Context, projectID string) ([]domain.HistoryItem, error)
}

// MemoryStore is the Store used when no database is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]domain.HistoryItem
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]domain.HistoryItem)}
}

func (s *MemoryStore) Upsert(ctx context.Context, item domain.HistoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ScanID] = item
	return nil
}

// ListByProject returns the project's items, newest first.
func (s *MemoryStore) ListByProject(ctx context.Context, projectID string) ([]domain.HistoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.HistoryItem, 0)
	for _, item := range s.items {
		if item.ProjectID == projectID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ScanID < out[j].ScanID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
