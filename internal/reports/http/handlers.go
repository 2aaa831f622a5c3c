package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	httpapi "github.com/sentinel-red/sentinel-backend/internal/api/http"
	"github.com/sentinel-red/sentinel-backend/internal/reports"
)

type Handler struct {
	svc *reports.Service
}

func New(svc *reports.Service) *Handler {
	return &Handler{svc: svc}
}

// Register attaches /scans/:id/report routes.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/:id/report", h.report)
	rg.GET("/:id/report/export", h.export)
}

func (h *Handler) report(c *gin.Context) {
	r, err := h.svc.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpapi.WriteError(c, "reports.get", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "report": r})
}

func (h *Handler) export(c *gin.Context) {
	format := strings.ToLower(strings.TrimSpace(c.Query("format")))

	body, contentType, filename, err := h.svc.Export(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		httpapi.WriteError(c, "reports.export", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, body)
}
