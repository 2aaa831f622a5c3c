package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	httpapi "github.com/sentinel-red/sentinel-backend/internal/api/http"
)

// ThemeStore persists the dark-mode preference. *session.Store satisfies it.
type ThemeStore interface {
	DarkMode(ctx context.Context) (bool, error)
	SetDarkMode(ctx context.Context, on bool) error
}

type Handler struct {
	store ThemeStore
}

func New(store ThemeStore) *Handler {
	return &Handler{store: store}
}

// Register attaches /settings routes.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/theme", h.getTheme)
	rg.PUT("/theme", h.putTheme)
}

type themeReq struct {
	DarkMode *bool `json:"dark_mode"`
}

func (h *Handler) getTheme(c *gin.Context) {
	on, err := h.store.DarkMode(c.Request.Context())
	if err != nil {
		httpapi.WriteError(c, "settings.theme", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "dark_mode": on})
}

func (h *Handler) putTheme(c *gin.Context) {
	var req themeReq
	if err := c.ShouldBindJSON(&req); err != nil || req.DarkMode == nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "dark_mode is required"})
		return
	}

	if err := h.store.SetDarkMode(c.Request.Context(), *req.DarkMode); err != nil {
		httpapi.WriteError(c, "settings.theme", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "dark_mode": *req.DarkMode})
}
