package attackgraph

import (
	"fmt"

	"github.com/sentinel-red/sentinel-backend/internal/apperr"
)

var validNodeTypes = map[NodeType]bool{
	NodeStart: true, NodeAPICall: true, NodeExploit: true, NodeVulnerability: true, NodeEnd: true,
}

var validEdgeTypes = map[EdgeType]bool{
	EdgeDefault: true, EdgeExploit: true, EdgeVulnerable: true,
}

// Validate checks that ids are unique, types are known and every edge
// references existing nodes. Acyclicity is reported by IsAcyclic and is
// not required.
func Validate(g *Graph) error {
	nodes := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" {
			return apperr.Validation("node with empty id")
		}
		if nodes[n.ID] {
			return apperr.Validation("duplicate node id %q", n.ID)
		}
		if !validNodeTypes[n.Type] {
			return apperr.Validation("node %q has unknown type %q", n.ID, n.Type)
		}
		nodes[n.ID] = true
	}

	edges := make(map[string]bool, len(g.Edges))
	for _, e := range g.Edges {
		if edges[e.ID] {
			return apperr.Validation("duplicate edge id %q", e.ID)
		}
		edges[e.ID] = true

		if !validEdgeTypes[e.Type] {
			return apperr.Validation("edge %q has unknown type %q", e.ID, e.Type)
		}
		if !nodes[e.Source] {
			return apperr.Validation("edge %q: unknown source %q", e.ID, e.Source)
		}
		if !nodes[e.Target] {
			return apperr.Validation("edge %q: unknown target %q", e.ID, e.Target)
		}
	}
	return nil
}

// IsAcyclic reports whether the edges form a DAG.
func IsAcyclic(g *Graph) bool {
	adj := make(map[string][]string, len(g.Nodes))
	for _, e := range g.Edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(g.Nodes))

	var visit func(id string) bool
	visit = func(id string) bool {
		switch state[id] {
		case visiting:
			return false
		case done:
			return true
		}
		state[id] = visiting
		for _, next := range adj[id] {
			if !visit(next) {
				return false
			}
		}
		state[id] = done
		return true
	}

	for _, n := range g.Nodes {
		if !visit(n.ID) {
			return false
		}
	}
	return true
}

// Path follows edges from the first start node and returns the node ids
// in order, stopping at an end node or a dead end.
func Path(g *Graph) ([]string, error) {
	var start string
	for _, n := range g.Nodes {
		if n.Type == NodeStart {
			start = n.ID
			break
		}
	}
	if start == "" {
		return nil, fmt.Errorf("graph has no start node")
	}

	next := make(map[string]string, len(g.Edges))
	for _, e := range g.Edges {
		if _, ok := next[e.Source]; !ok {
			next[e.Source] = e.Target
		}
	}

	path := []string{start}
	seen := map[string]bool{start: true}
	for cur := start; ; {
		to, ok := next[cur]
		if !ok || seen[to] {
			return path, nil
		}
		path = append(path, to)
		seen[to] = true
		cur = to
	}
}
