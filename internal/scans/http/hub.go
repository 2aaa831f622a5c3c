package http

import (
	"context"
	"sync"

	"github.com/sentinel-red/sentinel-backend/internal/scans/domain"
	"github.com/sentinel-red/sentinel-backend/internal/scans/simulator"
)

// LogMessage is pushed to websocket clients for every new log line.
type LogMessage struct {
	ScanID   string        `json:"scan_id"`
	Line     string        `json:"line"`
	Progress int           `json:"progress"`
	Status   domain.Status `json:"status"`
}

const subscriberBuffer = 64

type subscriber struct {
	ch chan LogMessage
}

// Hub fans scan log lines out to websocket subscribers. It is a simulator
// observer, so HandleScanEvent runs under the scan's lock and never blocks:
// a subscriber whose buffer is full is dropped.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

// Subscribe registers interest in scanID. The returned channel is closed
// when the scan reaches a terminal status, the subscriber falls behind, or
// cancel is called.
func (h *Hub) Subscribe(scanID string) (<-chan LogMessage, func()) {
	sub := &subscriber{ch: make(chan LogMessage, subscriberBuffer)}

	h.mu.Lock()
	if h.subs[scanID] == nil {
		h.subs[scanID] = make(map[*subscriber]struct{})
	}
	h.subs[scanID][sub] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.drop(scanID, sub)
	}
	return sub.ch, cancel
}

// Subscribers reports how many clients follow scanID.
func (h *Hub) Subscribers(scanID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[scanID])
}

func (h *Hub) HandleScanEvent(ctx context.Context, ev simulator.Event) {
	if ev.Scan == nil {
		return
	}
	scanID := ev.Scan.ScanID

	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs[scanID] {
	lines:
		for _, line := range ev.NewLogs {
			msg := LogMessage{ScanID: scanID, Line: line, Progress: ev.Scan.Progress, Status: ev.Scan.Status}
			select {
			case sub.ch <- msg:
			default:
				h.drop(scanID, sub)
				break lines
			}
		}
	}

	if ev.Scan.Status.IsTerminal() {
		for sub := range h.subs[scanID] {
			h.drop(scanID, sub)
		}
	}
}

// drop must be called with h.mu held.
func (h *Hub) drop(scanID string, sub *subscriber) {
	subs, ok := h.subs[scanID]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	close(sub.ch)
	if len(subs) == 0 {
		delete(h.subs, scanID)
	}
}
