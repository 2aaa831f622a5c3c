package history

import (
	"context"

	"github.com/sentinel-red/sentinel-backend/internal/logging"
	"github.com/sentinel-red/sentinel-backend/internal/scans/domain"
	"github.com/sentinel-red/sentinel-backend/internal/scans/simulator"
)

// Recorder writes a history item whenever a scan becomes terminal.
type Recorder struct {
	store Store
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

func (r *Recorder) HandleScanEvent(ctx context.Context, ev simulator.Event) {
	if !ev.Scan.Status.IsTerminal() {
		return
	}

	item := domain.HistoryItem{
		ScanID:    ev.Scan.ScanID,
		ProjectID: ev.Scan.ProjectID,
		Status:    ev.Scan.Status,
		CreatedAt: ev.Scan.StartedAt,
	}
	if ev.Scan.CompletedAt != nil {
		item.DurationSeconds = int(ev.Scan.CompletedAt.Sub(ev.Scan.StartedAt).Seconds())
	}
	if ev.Summary != nil {
		item.VulnerabilityCount = ev.Summary.Total()
	}

	if err := r.store.Upsert(ctx, item); err != nil {
		logging.NewLogger(ctx).Errorf("scans.history", "scan_id=%s upsert: %v", item.ScanID, err)
	}
}
