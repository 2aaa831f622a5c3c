package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sentinel-red/sentinel-backend/internal/logging"
	"github.com/sentinel-red/sentinel-backend/internal/scans/domain"
	"github.com/sentinel-red/sentinel-backend/internal/scans/simulator"
)

const (
	stateKeyPrefix         = "scan:state:"       // Snapshot JSON without logs: scan:state:{scan_id}
	logsKeyPrefix          = "scan:logs:"        // Ordered log lines: scan:logs:{scan_id}
	scanEventChannelPrefix = "scan:events:"      // Pub/Sub channel for scan events: scan:events:{scan_id}
	stateTTL               = 7 * 24 * time.Hour // TTL for mirrored scan data (7 days)

	// DefaultWriteTimeout bounds one mirror write. Events are delivered
	// while the scan is locked, so a stalled redis must not hold it longer.
	DefaultWriteTimeout = 500 * time.Millisecond
)

// StateRepository mirrors simulator snapshots into Redis so status and logs
// survive a restart and can be read by other replicas.
type StateRepository struct {
	client       *redis.Client
	writeTimeout time.Duration
}

// NewStateRepository creates a new StateRepository. The client should be
// built with ContextTimeoutEnabled so the write timeout reaches the socket.
func NewStateRepository(client *redis.Client) *StateRepository {
	return &StateRepository{client: client, writeTimeout: DefaultWriteTimeout}
}

// ScanEvent is the payload published on a scan's event channel.
type ScanEvent struct {
	Type     simulator.EventType `json:"type"`
	ScanID   string              `json:"scan_id"`
	Status   domain.Status       `json:"status"`
	Progress int                 `json:"progress"`
	NewLogs  []string            `json:"new_logs,omitempty"`
}

// HandleScanEvent writes the snapshot, appends new log lines and publishes
// the event within writeTimeout. Failures are logged; the simulator keeps
// running without the mirror.
func (r *StateRepository) HandleScanEvent(ctx context.Context, ev simulator.Event) {
	ctx, cancel := context.WithTimeout(ctx, r.writeTimeout)
	defer cancel()

	if err := r.Save(ctx, ev.Scan, ev.NewLogs); err != nil {
		logging.NewLogger(ctx).Errorf("scans.mirror", "scan_id=%s save: %v", ev.Scan.ScanID, err)
		return
	}

	payload, err := json.Marshal(ScanEvent{
		Type:     ev.Type,
		ScanID:   ev.Scan.ScanID,
		Status:   ev.Scan.Status,
		Progress: ev.Scan.Progress,
		NewLogs:  ev.NewLogs,
	})
	if err != nil {
		return
	}
	if err := r.client.Publish(ctx, r.scanEventChannel(ev.Scan.ScanID), payload).Err(); err != nil {
		logging.NewLogger(ctx).Warnf("scans.mirror", "scan_id=%s publish: %v", ev.Scan.ScanID, err)
	}
}

// Save stores the snapshot (logs excluded) and appends newLogs.
func (r *StateRepository) Save(ctx context.Context, state *domain.ScanState, newLogs []string) error {
	stored := *state
	stored.Logs = nil

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal scan state: %w", err)
	}

	stateKey := r.stateKey(state.ScanID)
	logsKey := r.logsKey(state.ScanID)

	// Use pipeline for atomic operations
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, stateKey, data, stateTTL)
	if len(newLogs) > 0 {
		args := make([]interface{}, len(newLogs))
		for i, line := range newLogs {
			args[i] = line
		}
		pipe.RPush(ctx, logsKey, args...)
	}
	pipe.Expire(ctx, logsKey, stateTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save scan state: %w", err)
	}
	return nil
}

// Get loads a mirrored snapshot including its logs.
func (r *StateRepository) Get(ctx context.Context, scanID string) (*domain.ScanState, error) {
	data, err := r.client.Get(ctx, r.stateKey(scanID)).Result()
	if err == redis.Nil {
		return nil, domain.ErrScanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan state: %w", err)
	}

	var state domain.ScanState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scan state: %w", err)
	}

	logs, err := r.Logs(ctx, scanID)
	if err != nil {
		return nil, err
	}
	state.Logs = logs

	return &state, nil
}

// Logs returns the mirrored log lines in insertion order.
func (r *StateRepository) Logs(ctx context.Context, scanID string) ([]string, error) {
	logs, err := r.client.LRange(ctx, r.logsKey(scanID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get scan logs: %w", err)
	}
	if logs == nil {
		logs = []string{}
	}
	return logs, nil
}

// Delete removes a mirrored scan. It returns domain.ErrScanNotFound when
// nothing was mirrored under scanID.
func (r *StateRepository) Delete(ctx context.Context, scanID string) error {
	n, err := r.client.Del(ctx, r.stateKey(scanID), r.logsKey(scanID)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete scan state: %w", err)
	}
	if n == 0 {
		return domain.ErrScanNotFound
	}
	return nil
}

// Helper methods for key generation
func (r *StateRepository) stateKey(scanID string) string {
	return fmt.Sprintf("%s%s", stateKeyPrefix, scanID)
}

func (r *StateRepository) logsKey(scanID string) string {
	return fmt.Sprintf("%s%s", logsKeyPrefix, scanID)
}

func (r *StateRepository) scanEventChannel(scanID string) string {
	return fmt.Sprintf("%s%s", scanEventChannelPrefix, scanID)
}
