package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sentinel-red/sentinel-backend/internal/scans/service"
)

// Handler bundles the dependencies for scan HTTP endpoints.
type Handler struct {
	svc *service.ScanService
	hub *Hub

	pollEvery      time.Duration
	keepAliveEvery time.Duration
	originPatterns []string
}

// New builds the handler. originPatterns lists the hosts allowed to open
// the websocket; an empty list only accepts same-origin requests.
func New(svc *service.ScanService, hub *Hub, originPatterns []string) *Handler {
	return &Handler{
		svc:            svc,
		hub:            hub,
		pollEvery:      1 * time.Second,
		keepAliveEvery: 15 * time.Second,
		originPatterns: originPatterns,
	}
}

// Register attaches /scans/:id routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/:id/status", h.status)
	rg.GET("/:id/logs", h.logs)
	rg.POST("/:id/pause", h.pause)
	rg.POST("/:id/stop", h.stop)
	rg.GET("/:id/events", h.streamEvents)
	rg.GET("/:id/ws", h.streamLogs)
}

// RegisterProjectRoutes attaches /projects/:id/scans. startMW runs before
// the start handler only.
func (h *Handler) RegisterProjectRoutes(rg *gin.RouterGroup, startMW ...gin.HandlerFunc) {
	rg.GET("/:id/scans", h.history)
	rg.POST("/:id/scans", append(startMW, h.start)...)
}
