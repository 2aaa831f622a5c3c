package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	httpapi "github.com/sentinel-red/sentinel-backend/internal/api/http"
)

func (h *Handler) start(c *gin.Context) {
	scanID, err := h.svc.StartScan(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpapi.WriteError(c, "scans.start", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"ok": true, "scan_id": scanID})
}

func (h *Handler) history(c *gin.Context) {
	items, err := h.svc.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpapi.WriteError(c, "scans.history", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "scans": items})
}

func (h *Handler) status(c *gin.Context) {
	st, err := h.svc.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpapi.WriteError(c, "scans.status", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "status": st})
}

func (h *Handler) logs(c *gin.Context) {
	lines, err := h.svc.GetLogs(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpapi.WriteError(c, "scans.logs", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "logs": lines})
}

func (h *Handler) pause(c *gin.Context) {
	if err := h.svc.PauseScan(c.Request.Context(), c.Param("id")); err != nil {
		httpapi.WriteError(c, "scans.pause", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) stop(c *gin.Context) {
	if err := h.svc.StopScan(c.Request.Context(), c.Param("id")); err != nil {
		httpapi.WriteError(c, "scans.stop", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
