package http

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	httpapi "github.com/sentinel-red/sentinel-backend/internal/api/http"
	"github.com/sentinel-red/sentinel-backend/internal/logging"
)

// streamEvents streams status and log updates for one scan using
// Server-Sent Events. The stream ends after the "completed" event, which
// is sent for any terminal status.
func (h *Handler) streamEvents(c *gin.Context) {
	scanID := c.Param("id")
	ctx := c.Request.Context()
	poller := h.svc.Poller()

	st, err := poller.GetStatus(ctx, scanID)
	if err != nil {
		httpapi.WriteError(c, "scans.events", err)
		return
	}
	logs, err := poller.GetLogs(ctx, scanID)
	if err != nil {
		httpapi.WriteError(c, "scans.events", err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "streaming unsupported"})
		return
	}

	send := func(event string, payload gin.H) {
		data, _ := json.Marshal(payload)
		fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, string(data))
		flusher.Flush()
	}

	send("initial", gin.H{"status": st, "logs": logs})
	if st.Status.IsTerminal() {
		send("completed", gin.H{"status": st})
		return
	}

	keepAlive := time.NewTicker(h.keepAliveEvery)
	defer keepAlive.Stop()

	pollTicker := time.NewTicker(h.pollEvery)
	defer pollTicker.Stop()

	last := *st
	seen := len(logs)

	for {
		select {
		case <-ctx.Done():
			return

		case <-keepAlive.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case <-pollTicker.C:
			cur, err := poller.GetStatus(ctx, scanID)
			if err != nil {
				continue
			}
			lines, err := poller.GetLogs(ctx, scanID)
			if err != nil {
				continue
			}

			var fresh []string
			if len(lines) > seen {
				fresh = lines[seen:]
			}
			if cur.Progress != last.Progress || cur.Status != last.Status || len(fresh) > 0 {
				send("update", gin.H{"status": cur, "new_logs": fresh})
				last = *cur
				seen = len(lines)
			}

			if cur.Status.IsTerminal() {
				send("completed", gin.H{"status": cur})
				return
			}
		}
	}
}

// streamLogs pushes every new log line of a running scan as a LogMessage.
// The connection is closed normally once the scan is terminal.
func (h *Handler) streamLogs(c *gin.Context) {
	scanID := c.Param("id")
	ctx := c.Request.Context()

	conn, err := websocket.Accept(upgradeWriter(c.Writer), c.Request, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		logging.NewLogger(ctx).Warnf("scans.ws", "scan_id=%s accept: %v", scanID, err)
		return
	}
	defer conn.CloseNow()

	// Subscribe before checking status so no line is lost in between.
	msgs, cancel := h.hub.Subscribe(scanID)
	defer cancel()

	state, ok := h.svc.Poller().Snapshot(ctx, scanID)
	if !ok || state.Status.IsTerminal() {
		conn.Close(websocket.StatusNormalClosure, "scan finished")
		return
	}

	ctx = conn.CloseRead(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, open := <-msgs:
			if !open {
				if st, ok := h.svc.Poller().Snapshot(ctx, scanID); ok && !st.Status.IsTerminal() {
					conn.Close(websocket.StatusTryAgainLater, "subscriber fell behind")
					return
				}
				conn.Close(websocket.StatusNormalClosure, "scan finished")
				return
			}
			if err := wsjson.Write(ctx, conn, msg); err != nil {
				logging.NewLogger(ctx).Warnf("scans.ws", "scan_id=%s write: %v", scanID, err)
				return
			}
		}
	}
}

// hijackWriter hands websocket.Accept the raw response writer for the 101
// handshake and gin's writer for the hijack. gin refuses to hijack once its
// own header has been flushed, which Accept otherwise does first.
type hijackWriter struct {
	http.ResponseWriter
	gw gin.ResponseWriter
}

func (w hijackWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.gw.Hijack()
}

func upgradeWriter(gw gin.ResponseWriter) http.ResponseWriter {
	u, ok := gw.(interface{ Unwrap() http.ResponseWriter })
	if !ok {
		return gw
	}
	return hijackWriter{ResponseWriter: u.Unwrap(), gw: gw}
}
