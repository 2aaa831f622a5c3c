package retention

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sentinel-red/sentinel-backend/internal/scans/domain"
)

const evictTimeout = 5 * time.Second

// Pruner forgets terminal scans finished before cutoff.
type Pruner interface {
	Prune(cutoff time.Time) []string
}

// Evictor removes a scan from a secondary store such as the redis mirror.
type Evictor interface {
	Delete(ctx context.Context, scanID string) error
}

// Janitor periodically drops finished scans from memory, and from the
// mirror when one is set.
type Janitor struct {
	pruner    Pruner
	evictor   Evictor
	retention time.Duration
	now       func() time.Time
	cron      *cron.Cron
}

func NewJanitor(pruner Pruner, retention time.Duration) *Janitor {
	return &Janitor{
		pruner:    pruner,
		retention: retention,
		now:       time.Now,
		cron:      cron.New(),
	}
}

// SetEvictor makes every sweep also delete the dropped scans from e.
func (j *Janitor) SetEvictor(e Evictor) {
	j.evictor = e
}

// Start schedules the sweep. schedule is a cron spec or descriptor such as
// "@every 10m".
func (j *Janitor) Start(schedule string) error {
	if _, err := j.cron.AddFunc(schedule, func() { j.RunOnce() }); err != nil {
		return fmt.Errorf("invalid janitor schedule %q: %w", schedule, err)
	}

	log.Printf("[info] scan janitor started (schedule=%s retention=%s)", schedule, j.retention)
	j.cron.Start()
	return nil
}

// RunOnce performs one sweep and returns the dropped scan ids.
func (j *Janitor) RunOnce() []string {
	dropped := j.pruner.Prune(j.now().Add(-j.retention))
	if len(dropped) > 0 {
		log.Printf("[info] scan janitor dropped %d finished scans", len(dropped))
	}
	if j.evictor != nil {
		j.evict(dropped)
	}
	return dropped
}

func (j *Janitor) evict(scanIDs []string) {
	ctx, cancel := context.WithTimeout(context.Background(), evictTimeout)
	defer cancel()

	for _, id := range scanIDs {
		err := j.evictor.Delete(ctx, id)
		if err != nil && !errors.Is(err, domain.ErrScanNotFound) {
			log.Printf("[warn] scan janitor could not evict %s: %v", id, err)
		}
	}
}

// Stop halts scheduling and waits for a running sweep, bounded by ctx.
func (j *Janitor) Stop(ctx context.Context) {
	done := j.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
