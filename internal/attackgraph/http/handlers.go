package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	httpapi "github.com/sentinel-red/sentinel-backend/internal/api/http"
	"github.com/sentinel-red/sentinel-backend/internal/attackgraph"
)

// Handler serves attack graphs and node details.
type Handler struct {
	svc *attackgraph.Service
}

func New(svc *attackgraph.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterScanRoutes attaches /scans/:id/attack-graph.
func (h *Handler) RegisterScanRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/attack-graph", h.graph)
}

// RegisterNodeRoutes attaches /attack-graph/nodes/:node_id.
func (h *Handler) RegisterNodeRoutes(rg *gin.RouterGroup) {
	rg.GET("/nodes/:node_id", h.nodeDetail)
}

func (h *Handler) graph(c *gin.Context) {
	scanID := c.Param("id")
	format := strings.ToLower(c.DefaultQuery("format", "json"))
	if format != "json" && format != "dot" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "format must be json or dot"})
		return
	}

	g, err := h.svc.GetGraph(c.Request.Context(), scanID)
	if err != nil {
		httpapi.WriteError(c, "attackgraph.get", err)
		return
	}

	if format == "dot" {
		c.Header("Content-Disposition", fmt.Sprintf("inline; filename=attack-graph-%s.dot", scanID))
		c.Data(http.StatusOK, "text/vnd.graphviz; charset=utf-8", []byte(attackgraph.ToDOT(g, "Attack Graph "+scanID)))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "graph": g})
}

func (h *Handler) nodeDetail(c *gin.Context) {
	detail, err := h.svc.GetNodeDetail(c.Request.Context(), c.Param("node_id"))
	if err != nil {
		httpapi.WriteError(c, "attackgraph.node", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "node": detail.Node, "requests": detail.Requests})
}
