package attackgraph

import (
	"context"
	"strings"
	"testing"

	"github.com/sentinel-red/sentinel-backend/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGraph() *Graph {
	return &Graph{
		ScanID: "scan-1",
		Nodes: []Node{
			{ID: "start", Type: NodeStart, Label: "Attacker"},
			{ID: "node-1", Type: NodeAPICall, Label: "Login API", Data: NodeData{Method: "POST", Endpoint: "/api/auth/login"}},
			{ID: "node-2", Type: NodeVulnerability, Label: "SQL Injection", Data: NodeData{VulnerabilityID: "vuln-1"}},
			{ID: "end", Type: NodeEnd, Label: "Data \"Breach\""},
		},
		Edges: []Edge{
			{ID: "e1", Source: "start", Target: "node-1", Label: "Initiates", Type: EdgeDefault},
			{ID: "e2", Source: "node-1", Target: "node-2", Label: "Exploits", Type: EdgeVulnerable},
			{ID: "e3", Source: "node-2", Target: "end", Label: "Leads to", Type: EdgeExploit},
		},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(sampleGraph()))

	t.Run("dangling edge", func(t *testing.T) {
		g := sampleGraph()
		g.Edges = append(g.Edges, Edge{ID: "e9", Source: "node-2", Target: "ghost", Type: EdgeDefault})
		err := Validate(g)
		require.Error(t, err)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		assert.Contains(t, err.Error(), "ghost")
	})

	t.Run("duplicate node", func(t *testing.T) {
		g := sampleGraph()
		g.Nodes = append(g.Nodes, Node{ID: "start", Type: NodeStart})
		assert.Error(t, Validate(g))
	})

	t.Run("unknown types", func(t *testing.T) {
		g := sampleGraph()
		g.Nodes[1].Type = "router"
		assert.Error(t, Validate(g))

		g = sampleGraph()
		g.Edges[0].Type = "weird"
		assert.Error(t, Validate(g))
	})
}

func TestIsAcyclic(t *testing.T) {
	g := sampleGraph()
	assert.True(t, IsAcyclic(g))

	g.Edges = append(g.Edges, Edge{ID: "back", Source: "end", Target: "start", Type: EdgeDefault})
	assert.False(t, IsAcyclic(g))
}

func TestPath(t *testing.T) {
	path, err := Path(sampleGraph())
	require.NoError(t, err)
	assert.Equal(t, []string{"start", "node-1", "node-2", "end"}, path)

	_, err = Path(&Graph{Nodes: []Node{{ID: "a", Type: NodeAPICall}}})
	assert.Error(t, err)
}

func TestToDOT(t *testing.T) {
	out := ToDOT(sampleGraph(), "Attack path")

	assert.True(t, strings.HasPrefix(out, "digraph G {"))
	assert.Contains(t, out, `label="Attack path"`)
	assert.Contains(t, out, `"start" -> "node-1"`)
	assert.Contains(t, out, `Data \"Breach\"`)
	assert.Contains(t, out, `color="#dc3545", style=bold`)
	assert.Equal(t, 3, strings.Count(out, "->"))
}

func TestService(t *testing.T) {
	evidence := map[string][]Exchange{
		"node-2": {{Method: "POST", URL: "/api/auth/login", Response: ExchangeResponse{Status: 200}}},
	}
	fallback := []Exchange{{Method: "GET", URL: "/"}}

	svc, err := NewService(sampleGraph(), evidence, fallback, nil)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("graph is stamped with the scan id and copied", func(t *testing.T) {
		g, err := svc.GetGraph(ctx, "scan-x")
		require.NoError(t, err)
		assert.Equal(t, "scan-x", g.ScanID)
		g.Nodes[0].Label = "mutated"

		again, err := svc.GetGraph(ctx, "scan-y")
		require.NoError(t, err)
		assert.Equal(t, "Attacker", again.Nodes[0].Label)
		for _, e := range again.Edges {
			_, srcOK := again.Node(e.Source)
			_, dstOK := again.Node(e.Target)
			assert.True(t, srcOK && dstOK, e.ID)
		}
	})

	t.Run("node detail with own evidence", func(t *testing.T) {
		d, err := svc.GetNodeDetail(ctx, "node-2")
		require.NoError(t, err)
		assert.Equal(t, "SQL Injection", d.Node.Label)
		require.Len(t, d.Requests, 1)
		assert.Equal(t, 200, d.Requests[0].Response.Status)
	})

	t.Run("node detail falls back", func(t *testing.T) {
		d, err := svc.GetNodeDetail(ctx, "start")
		require.NoError(t, err)
		assert.Equal(t, fallback, d.Requests)
	})

	t.Run("unknown node", func(t *testing.T) {
		_, err := svc.GetNodeDetail(ctx, "node-99")
		assert.ErrorIs(t, err, ErrNodeNotFound)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("invalid graph is rejected", func(t *testing.T) {
		g := sampleGraph()
		g.Edges[0].Target = "ghost"
		_, err := NewService(g, nil, nil, nil)
		assert.Error(t, err)
	})
}
