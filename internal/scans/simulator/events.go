package simulator

import (
	"context"

	"github.com/sentinel-red/sentinel-backend/internal/scans/domain"
)

// EventType names what happened to a scan.
type EventType string

const (
	EventStarted   EventType = "started"
	EventProgress  EventType = "progress"
	EventPaused    EventType = "paused"
	EventStopped   EventType = "stopped"
	EventCompleted EventType = "completed"
)

// Event describes one mutation. Scan is a private snapshot taken right
// after the mutation; NewLogs holds only the lines it appended.
type Event struct {
	Type    EventType
	Scan    *domain.ScanState
	NewLogs []string
	Summary *domain.VulnerabilityCounts
}

// Observer is notified of every mutation, in order, per scan. Events for
// one scan are delivered while that scan is locked, so an observer must
// not call back into the Simulator.
type Observer interface {
	HandleScanEvent(ctx context.Context, ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ev Event)

func (f ObserverFunc) HandleScanEvent(ctx context.Context, ev Event) {
	f(ctx, ev)
}

// ProjectRecorder links scan outcomes back to the owning project.
type ProjectRecorder interface {
	RecordScanStart(ctx context.Context, projectID, scanID string) error
	RecordScanCompletion(ctx context.Context, projectID, scanID string, counts domain.VulnerabilityCounts) error
	RecordScanStatus(ctx context.Context, projectID, scanID string, status domain.Status) error
}
