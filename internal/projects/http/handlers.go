package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	httpapi "github.com/sentinel-red/sentinel-backend/internal/api/http"
	"github.com/sentinel-red/sentinel-backend/internal/projects/domain"
)

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		httpapi.WriteError(c, "projects.list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpapi.WriteError(c, "projects.get", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	typ := domain.ProjectType(strings.ToLower(strings.TrimSpace(req.Type)))
	p, err := h.svc.Create(c.Request.Context(), req.Name, typ)
	if err != nil {
		httpapi.WriteError(c, "projects.create", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httpapi.WriteError(c, "projects.delete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) endpoints(c *gin.Context) {
	eps, err := h.svc.Endpoints(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpapi.WriteError(c, "projects.endpoints", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "endpoints": eps})
}
