package simulator

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sentinel-red/sentinel-backend/internal/logging"
	"github.com/sentinel-red/sentinel-backend/internal/scans/domain"
)

// Log lines emitted over a scan's life.
const (
	LogInitializing = "Initializing scan engine..."
	LogLoading      = "Loading project files..."
	LogCompleted    = "Scan completed successfully."
	LogStopped      = "Scan stopped by user."
)

// Milestones are appended when progress lands exactly on the key after a
// tick. A random increment can jump over a threshold, in which case that
// line is never written.
var Milestones = map[int]string{
	10: "Reconnaissance started...",
	30: "Endpoints mapped successfully.",
	50: "Static analysis in progress...",
	70: "Dynamic testing authorized endpoints...",
	90: "Generating final report...",
}

// DefaultSummary is the terminal finding count reported for every scan.
var DefaultSummary = domain.VulnerabilityCounts{Critical: 2, High: 2, Medium: 1, Low: 4}

const (
	minIncrement = 1
	maxIncrement = 5
)

// Options tunes a Simulator. Zero values fall back to defaults.
type Options struct {
	TickInterval time.Duration
	// Increment returns the progress step for one tick. Values outside
	// [1,5] are clamped.
	Increment func() int
	// Summary returns the finding counts of a completed scan.
	Summary func(scanID string) domain.VulnerabilityCounts
	Now     func() time.Time
	NewID   func() string
}

type entry struct {
	mu    sync.Mutex
	state domain.ScanState
}

// Simulator drives scans forward on a fixed tick. Each scan is addressed
// by id and serialized by its own lock, so concurrent scans never touch
// each other's state.
type Simulator struct {
	mu    sync.RWMutex
	scans map[string]*entry

	obsMu     sync.RWMutex
	observers []Observer

	projects ProjectRecorder
	opts     Options

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Simulator. projects may be nil.
func New(projects ProjectRecorder, opts Options, observers ...Observer) *Simulator {
	if opts.TickInterval <= 0 {
		opts.TickInterval = 500 * time.Millisecond
	}
	if opts.Increment == nil {
		opts.Increment = func() int { return rand.IntN(maxIncrement) + minIncrement }
	}
	if opts.Summary == nil {
		opts.Summary = func(string) domain.VulnerabilityCounts { return DefaultSummary }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return "scan-" + uuid.New().String() }
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Simulator{
		scans:     make(map[string]*entry),
		projects:  projects,
		observers: observers,
		opts:      opts,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// AddObserver registers an observer for future events.
func (s *Simulator) AddObserver(o Observer) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, o)
}

// Start creates a running scan for projectID under a fresh id and starts
// ticking it in the background.
func (s *Simulator) Start(ctx context.Context, projectID string) (string, error) {
	scanID := s.opts.NewID()
	if err := s.StartWithID(ctx, scanID, projectID); err != nil {
		return "", err
	}
	return scanID, nil
}

// StartWithID is Start with a caller-chosen id.
func (s *Simulator) StartWithID(ctx context.Context, scanID, projectID string) error {
	if err := s.create(ctx, scanID, projectID); err != nil {
		return err
	}

	s.wg.Add(1)
	go s.run(scanID)
	return nil
}

// Create registers a running scan without scheduling ticks. Callers drive
// it with Advance.
func (s *Simulator) Create(ctx context.Context, scanID, projectID string) error {
	return s.create(ctx, scanID, projectID)
}

func (s *Simulator) create(ctx context.Context, scanID, projectID string) error {
	if projectID == "" {
		return domain.ErrProjectRequired
	}

	now := s.opts.Now()
	e := &entry{state: domain.ScanState{
		ScanID:    scanID,
		ProjectID: projectID,
		Status:    domain.StatusRunning,
		Progress:  0,
		Logs:      []string{LogInitializing, LogLoading},
		StartedAt: now,
		UpdatedAt: now,
	}}

	s.mu.Lock()
	if _, exists := s.scans[scanID]; exists {
		s.mu.Unlock()
		return domain.ErrScanExists
	}
	s.scans[scanID] = e
	s.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if s.projects != nil {
		if err := s.projects.RecordScanStart(ctx, projectID, scanID); err != nil {
			logging.NewLogger(ctx).Warnf("scans.start", "scan_id=%s project_id=%s record start: %v", scanID, projectID, err)
		}
	}
	s.emit(ctx, Event{Type: EventStarted, Scan: e.state.Clone(), NewLogs: append([]string(nil), e.state.Logs...)})
	return nil
}

func (s *Simulator) run(scanID string) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			running, err := s.Advance(s.ctx, scanID)
			if err != nil || !running {
				return
			}
		}
	}
}

// Advance performs one tick. It reports whether the scan is still running
// afterwards; once it returns false the scan never changes again through
// Advance.
func (s *Simulator) Advance(ctx context.Context, scanID string) (bool, error) {
	e := s.lookup(scanID)
	if e == nil {
		return false, domain.ErrScanNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Status != domain.StatusRunning {
		return false, nil
	}

	progress := e.state.Progress + clamp(s.opts.Increment(), minIncrement, maxIncrement)
	if progress > 100 {
		progress = 100
	}
	e.state.Progress = progress

	var lines []string
	if msg, ok := Milestones[progress]; ok {
		lines = append(lines, msg)
	}

	now := s.opts.Now()
	e.state.UpdatedAt = now

	if progress < 100 {
		e.state.Logs = append(e.state.Logs, lines...)
		s.emit(ctx, Event{Type: EventProgress, Scan: e.state.Clone(), NewLogs: lines})
		return true, nil
	}

	lines = append(lines, LogCompleted)
	e.state.Logs = append(e.state.Logs, lines...)
	e.state.Status = domain.StatusCompleted
	e.state.CompletedAt = &now

	summary := s.opts.Summary(scanID)
	if s.projects != nil {
		if err := s.projects.RecordScanCompletion(ctx, e.state.ProjectID, scanID, summary); err != nil {
			logging.NewLogger(ctx).Warnf("scans.complete", "scan_id=%s project_id=%s record completion: %v", scanID, e.state.ProjectID, err)
		}
	}
	s.emit(ctx, Event{Type: EventCompleted, Scan: e.state.Clone(), NewLogs: lines, Summary: &summary})
	return false, nil
}

// Pause moves a running scan to paused; the tick loop stops on its next
// tick. Paused and terminal scans are left as they are.
func (s *Simulator) Pause(ctx context.Context, scanID string) error {
	e := s.lookup(scanID)
	if e == nil {
		return domain.ErrScanNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Status != domain.StatusRunning {
		return nil
	}
	e.state.Status = domain.StatusPaused
	e.state.UpdatedAt = s.opts.Now()

	if s.projects != nil {
		if err := s.projects.RecordScanStatus(ctx, e.state.ProjectID, scanID, domain.StatusPaused); err != nil {
			logging.NewLogger(ctx).Warnf("scans.pause", "scan_id=%s record status: %v", scanID, err)
		}
	}
	s.emit(ctx, Event{Type: EventPaused, Scan: e.state.Clone()})
	return nil
}

// Stop fails a running or paused scan and appends one stop line. Terminal
// scans are left as they are.
func (s *Simulator) Stop(ctx context.Context, scanID string) error {
	e := s.lookup(scanID)
	if e == nil {
		return domain.ErrScanNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Status.IsTerminal() {
		return nil
	}

	now := s.opts.Now()
	e.state.Status = domain.StatusFailed
	e.state.Logs = append(e.state.Logs, LogStopped)
	e.state.Error = "stopped by user"
	e.state.UpdatedAt = now
	e.state.CompletedAt = &now

	if s.projects != nil {
		if err := s.projects.RecordScanStatus(ctx, e.state.ProjectID, scanID, domain.StatusFailed); err != nil {
			logging.NewLogger(ctx).Warnf("scans.stop", "scan_id=%s record status: %v", scanID, err)
		}
	}
	s.emit(ctx, Event{Type: EventStopped, Scan: e.state.Clone(), NewLogs: []string{LogStopped}})
	return nil
}

// Snapshot returns a copy of the scan's current state.
func (s *Simulator) Snapshot(scanID string) (*domain.ScanState, bool) {
	e := s.lookup(scanID)
	if e == nil {
		return nil, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone(), true
}

// ScanIDs lists the ids currently tracked.
func (s *Simulator) ScanIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.scans))
	for id := range s.scans {
		ids = append(ids, id)
	}
	return ids
}

// Prune forgets terminal scans that finished before cutoff and returns
// their ids.
func (s *Simulator) Prune(cutoff time.Time) []string {
	s.mu.RLock()
	candidates := make(map[string]*entry, len(s.scans))
	for id, e := range s.scans {
		candidates[id] = e
	}
	s.mu.RUnlock()

	var expired []string
	for id, e := range candidates {
		e.mu.Lock()
		done := e.state.Status.IsTerminal() && e.state.CompletedAt != nil && e.state.CompletedAt.Before(cutoff)
		e.mu.Unlock()
		if done {
			expired = append(expired, id)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range expired {
		if s.scans[id] == candidates[id] {
			delete(s.scans, id)
		}
	}
	return expired
}

// Close stops every tick loop and waits for them to exit.
func (s *Simulator) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *Simulator) lookup(scanID string) *entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scans[scanID]
}

func (s *Simulator) emit(ctx context.Context, ev Event) {
	s.obsMu.RLock()
	observers := append([]Observer(nil), s.observers...)
	s.obsMu.RUnlock()

	for _, o := range observers {
		o.HandleScanEvent(ctx, ev)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
