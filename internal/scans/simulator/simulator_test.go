package simulator

import (
	"context"
	"sync"
	"testing"
	"time"

	projdomain "github.com/sentinel-red/sentinel-backend/internal/projects/domain"
	"github.com/sentinel-red/sentinel-backend/internal/projects/repository"
	"github.com/sentinel-red/sentinel-backend/internal/scans/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProjects struct {
	mu        sync.Mutex
	started   map[string]string
	completed map[string]domain.VulnerabilityCounts
	statuses  map[string]domain.Status
}

func newFakeProjects() *fakeProjects {
	return &fakeProjects{
		started:   make(map[string]string),
		completed: make(map[string]domain.VulnerabilityCounts),
		statuses:  make(map[string]domain.Status),
	}
}

func (f *fakeProjects) RecordScanStart(ctx context.Context, projectID, scanID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started[projectID] = scanID
	return nil
}

func (f *fakeProjects) RecordScanCompletion(ctx context.Context, projectID, scanID string, counts domain.VulnerabilityCounts) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed[projectID] = counts
	return nil
}

func (f *fakeProjects) RecordScanStatus(ctx context.Context, projectID, scanID string, status domain.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[projectID] = status
	return nil
}

func (f *fakeProjects) counts(projectID string) (domain.VulnerabilityCounts, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.completed[projectID]
	return c, ok
}

// steps returns an Increment func that replays the given values and then
// repeats the last one.
func steps(values ...int) func() int {
	i := 0
	return func() int {
		v := values[i]
		if i < len(values)-1 {
			i++
		}
		return v
	}
}

func newManual(t *testing.T, projects ProjectRecorder, inc func() int, observers ...Observer) *Simulator {
	t.Helper()
	sim := New(projects, Options{Increment: inc}, observers...)
	t.Cleanup(sim.Close)
	return sim
}

func TestSimulator_Create(t *testing.T) {
	ctx := context.Background()
	projects := newFakeProjects()
	sim := newManual(t, projects, steps(1))

	require.NoError(t, sim.Create(ctx, "scan-1", "proj-1"))

	snap, ok := sim.Snapshot("scan-1")
	require.True(t, ok)
	assert.Equal(t, domain.StatusRunning, snap.Status)
	assert.Equal(t, 0, snap.Progress)
	assert.Equal(t, []string{LogInitializing, LogLoading}, snap.Logs)
	assert.Equal(t, "proj-1", snap.ProjectID)
	assert.Equal(t, "scan-1", projects.started["proj-1"])

	t.Run("duplicate id is rejected", func(t *testing.T) {
		assert.ErrorIs(t, sim.Create(ctx, "scan-1", "proj-1"), domain.ErrScanExists)
	})

	t.Run("project id is required", func(t *testing.T) {
		assert.ErrorIs(t, sim.Create(ctx, "scan-2", ""), domain.ErrProjectRequired)
	})
}

func TestSimulator_AdvanceMilestones(t *testing.T) {
	ctx := context.Background()
	sim := newManual(t, nil, steps(5))
	require.NoError(t, sim.Create(ctx, "scan-1", "proj-1"))

	// 5,10,...,95 then 100
	for i := 0; i < 19; i++ {
		running, err := sim.Advance(ctx, "scan-1")
		require.NoError(t, err)
		require.True(t, running)
	}

	snap, _ := sim.Snapshot("scan-1")
	assert.Equal(t, 95, snap.Progress)
	assert.Equal(t, []string{
		LogInitializing,
		LogLoading,
		Milestones[10],
		Milestones[30],
		Milestones[50],
		Milestones[70],
		Milestones[90],
	}, snap.Logs)
}

func TestSimulator_SkippedMilestone(t *testing.T) {
	ctx := context.Background()
	// 4, 8, 12: jumps over 10
	sim := newManual(t, nil, steps(4))
	require.NoError(t, sim.Create(ctx, "scan-1", "proj-1"))

	for i := 0; i < 3; i++ {
		_, err := sim.Advance(ctx, "scan-1")
		require.NoError(t, err)
	}

	snap, _ := sim.Snapshot("scan-1")
	assert.Equal(t, 12, snap.Progress)
	assert.NotContains(t, snap.Logs, Milestones[10])
}

func TestSimulator_IncrementIsClamped(t *testing.T) {
	ctx := context.Background()
	sim := newManual(t, nil, steps(0, 50))
	require.NoError(t, sim.Create(ctx, "scan-1", "proj-1"))

	_, _ = sim.Advance(ctx, "scan-1")
	snap, _ := sim.Snapshot("scan-1")
	assert.Equal(t, 1, snap.Progress)

	_, _ = sim.Advance(ctx, "scan-1")
	snap, _ = sim.Snapshot("scan-1")
	assert.Equal(t, 6, snap.Progress)
}

func TestSimulator_Completion(t *testing.T) {
	ctx := context.Background()
	projects := newFakeProjects()

	var mu sync.Mutex
	var events []Event
	recorder := ObserverFunc(func(ctx context.Context, ev Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	})

	sim := newManual(t, projects, steps(3), recorder)
	require.NoError(t, sim.Create(ctx, "scan-1", "proj-1"))

	last := 0
	for {
		running, err := sim.Advance(ctx, "scan-1")
		require.NoError(t, err)

		snap, _ := sim.Snapshot("scan-1")
		assert.GreaterOrEqual(t, snap.Progress, last, "progress must not decrease")
		last = snap.Progress
		if !running {
			break
		}
		assert.Less(t, snap.Progress, 100)
	}

	snap, _ := sim.Snapshot("scan-1")
	assert.Equal(t, domain.StatusCompleted, snap.Status)
	assert.Equal(t, 100, snap.Progress)
	assert.Equal(t, LogCompleted, snap.Logs[len(snap.Logs)-1])
	require.NotNil(t, snap.CompletedAt)

	counts, ok := projects.counts("proj-1")
	require.True(t, ok)
	assert.Equal(t, DefaultSummary, counts)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, EventStarted, events[0].Type)
	final := events[len(events)-1]
	assert.Equal(t, EventCompleted, final.Type)
	require.NotNil(t, final.Summary)
	assert.Equal(t, DefaultSummary, *final.Summary)
}

func TestSimulator_OlderScanCompletionKeepsNewerScanLinked(t *testing.T) {
	ctx := context.Background()
	registry := repository.NewRegistry()
	p, err := registry.Create(ctx, "Payments API", projdomain.TypeAPI)
	require.NoError(t, err)

	sim := newManual(t, registry, steps(5))
	require.NoError(t, sim.Create(ctx, "scan-a", p.ID))
	for i := 0; i < 10; i++ {
		_, err := sim.Advance(ctx, "scan-a")
		require.NoError(t, err)
	}
	require.NoError(t, sim.Create(ctx, "scan-b", p.ID))

	for {
		running, err := sim.Advance(ctx, "scan-a")
		require.NoError(t, err)
		if !running {
			break
		}
	}

	got, err := registry.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "scan-b", got.LastScanID)
	assert.Equal(t, domain.StatusRunning, got.LastScanStatus)
	assert.Equal(t, domain.VulnerabilityCounts{}, *got.VulnerabilityCounts)

	b, _ := sim.Snapshot("scan-b")
	assert.Equal(t, domain.StatusRunning, b.Status)

	for {
		running, err := sim.Advance(ctx, "scan-b")
		require.NoError(t, err)
		if !running {
			break
		}
	}
	got, _ = registry.Get(ctx, p.ID)
	assert.Equal(t, domain.StatusCompleted, got.LastScanStatus)
	assert.Equal(t, DefaultSummary, *got.VulnerabilityCounts)
}

func TestSimulator_TerminalIsFinal(t *testing.T) {
	ctx := context.Background()
	sim := newManual(t, nil, steps(5))
	require.NoError(t, sim.Create(ctx, "scan-1", "proj-1"))

	for {
		running, err := sim.Advance(ctx, "scan-1")
		require.NoError(t, err)
		if !running {
			break
		}
	}
	before, _ := sim.Snapshot("scan-1")

	t.Run("ticks after completion change nothing", func(t *testing.T) {
		running, err := sim.Advance(ctx, "scan-1")
		require.NoError(t, err)
		assert.False(t, running)

		after, _ := sim.Snapshot("scan-1")
		assert.Equal(t, before.Progress, after.Progress)
		assert.Equal(t, before.Logs, after.Logs)
	})

	t.Run("pause and stop leave a completed scan alone", func(t *testing.T) {
		require.NoError(t, sim.Pause(ctx, "scan-1"))
		require.NoError(t, sim.Stop(ctx, "scan-1"))

		after, _ := sim.Snapshot("scan-1")
		assert.Equal(t, domain.StatusCompleted, after.Status)
		assert.Equal(t, before.Logs, after.Logs)
	})
}

func TestSimulator_PauseThenStop(t *testing.T) {
	ctx := context.Background()
	projects := newFakeProjects()
	sim := newManual(t, projects, steps(2))
	require.NoError(t, sim.Create(ctx, "scan-1", "proj-1"))

	_, _ = sim.Advance(ctx, "scan-1")
	_, _ = sim.Advance(ctx, "scan-1")
	require.NoError(t, sim.Pause(ctx, "scan-1"))

	paused, _ := sim.Snapshot("scan-1")
	assert.Equal(t, domain.StatusPaused, paused.Status)
	assert.Equal(t, 4, paused.Progress)

	for i := 0; i < 5; i++ {
		running, err := sim.Advance(ctx, "scan-1")
		require.NoError(t, err)
		assert.False(t, running)
	}
	still, _ := sim.Snapshot("scan-1")
	assert.Equal(t, 4, still.Progress)

	require.NoError(t, sim.Stop(ctx, "scan-1"))
	require.NoError(t, sim.Stop(ctx, "scan-1"))

	stopped, _ := sim.Snapshot("scan-1")
	assert.Equal(t, domain.StatusFailed, stopped.Status)
	assert.Equal(t, 4, stopped.Progress)
	assert.Equal(t, len(paused.Logs)+1, len(stopped.Logs))
	assert.Equal(t, LogStopped, stopped.Logs[len(stopped.Logs)-1])
	assert.Equal(t, domain.StatusFailed, projects.statuses["proj-1"])
}

func TestSimulator_UnknownScan(t *testing.T) {
	ctx := context.Background()
	sim := newManual(t, nil, steps(1))

	_, err := sim.Advance(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrScanNotFound)
	assert.ErrorIs(t, sim.Pause(ctx, "missing"), domain.ErrScanNotFound)
	assert.ErrorIs(t, sim.Stop(ctx, "missing"), domain.ErrScanNotFound)

	_, ok := sim.Snapshot("missing")
	assert.False(t, ok)
}

func TestSimulator_SnapshotIsCopy(t *testing.T) {
	ctx := context.Background()
	sim := newManual(t, nil, steps(1))
	require.NoError(t, sim.Create(ctx, "scan-1", "proj-1"))

	snap, _ := sim.Snapshot("scan-1")
	snap.Logs[0] = "tampered"
	snap.Logs = append(snap.Logs, "extra")
	snap.Progress = 77

	fresh, _ := sim.Snapshot("scan-1")
	assert.Equal(t, LogInitializing, fresh.Logs[0])
	assert.Len(t, fresh.Logs, 2)
	assert.Equal(t, 0, fresh.Progress)
}

func TestSimulator_Prune(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sim := New(nil, Options{Increment: steps(5), Now: func() time.Time { return now }})
	t.Cleanup(sim.Close)

	require.NoError(t, sim.Create(ctx, "done", "proj-1"))
	require.NoError(t, sim.Create(ctx, "live", "proj-1"))
	require.NoError(t, sim.Stop(ctx, "done"))

	assert.Empty(t, sim.Prune(now))

	removed := sim.Prune(now.Add(time.Minute))
	assert.Equal(t, []string{"done"}, removed)
	assert.ElementsMatch(t, []string{"live"}, sim.ScanIDs())
}

func TestSimulator_BackgroundTicksRunToCompletion(t *testing.T) {
	ctx := context.Background()
	projects := newFakeProjects()
	sim := New(projects, Options{TickInterval: time.Millisecond, Increment: steps(5)})
	t.Cleanup(sim.Close)

	scanA, err := sim.Start(ctx, "proj-a")
	require.NoError(t, err)
	scanB, err := sim.Start(ctx, "proj-b")
	require.NoError(t, err)
	assert.NotEqual(t, scanA, scanB)

	snap, ok := sim.Snapshot(scanA)
	require.True(t, ok)
	assert.Contains(t, []domain.Status{domain.StatusPending, domain.StatusRunning, domain.StatusCompleted}, snap.Status)
	assert.GreaterOrEqual(t, snap.Progress, 0)
	assert.LessOrEqual(t, snap.Progress, 100)

	require.Eventually(t, func() bool {
		a, _ := sim.Snapshot(scanA)
		b, _ := sim.Snapshot(scanB)
		return a.Status == domain.StatusCompleted && b.Status == domain.StatusCompleted
	}, 5*time.Second, 5*time.Millisecond)

	countsA, ok := projects.counts("proj-a")
	require.True(t, ok)
	assert.Equal(t, DefaultSummary, countsA)
	_, ok = projects.counts("proj-b")
	assert.True(t, ok)
}

func TestSimulator_PauseStopsBackgroundTicks(t *testing.T) {
	ctx := context.Background()
	sim := New(nil, Options{TickInterval: time.Millisecond, Increment: steps(1)})
	t.Cleanup(sim.Close)

	scanID, err := sim.Start(ctx, "proj-1")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		s, _ := sim.Snapshot(scanID)
		return s.Progress >= 3
	}, 5*time.Second, time.Millisecond)

	require.NoError(t, sim.Pause(ctx, scanID))
	paused, _ := sim.Snapshot(scanID)

	time.Sleep(20 * time.Millisecond)
	later, _ := sim.Snapshot(scanID)
	assert.Equal(t, paused.Progress, later.Progress)
	assert.Equal(t, domain.StatusPaused, later.Status)
}
