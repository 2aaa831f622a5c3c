package attackgraph

import (
	"context"

	"github.com/sentinel-red/sentinel-backend/internal/latency"
)

// Service serves the reference graph for any scan id.
type Service struct {
	graph    *Graph
	evidence map[string][]Exchange
	fallback []Exchange
	latency  *latency.Simulator
}

// NewService validates graph and builds a Service. evidence maps node ids
// to their exchanges; nodes without an entry get fallback.
func NewService(graph *Graph, evidence map[string][]Exchange, fallback []Exchange, lat *latency.Simulator) (*Service, error) {
	if err := Validate(graph); err != nil {
		return nil, err
	}
	return &Service{
		graph:    graph.Clone(),
		evidence: evidence,
		fallback: fallback,
		latency:  lat,
	}, nil
}

// GetGraph returns a copy of the reference graph stamped with scanID.
func (s *Service) GetGraph(ctx context.Context, scanID string) (*Graph, error) {
	if err := s.latency.Wait(ctx, latency.OpAttackGraph); err != nil {
		return nil, err
	}
	g := s.graph.Clone()
	g.ScanID = scanID
	return g, nil
}

// GetNodeDetail returns the node and its evidence.
func (s *Service) GetNodeDetail(ctx context.Context, nodeID string) (*NodeDetail, error) {
	if err := s.latency.Wait(ctx, latency.OpNodeDetails); err != nil {
		return nil, err
	}

	node, ok := s.graph.Node(nodeID)
	if !ok {
		return nil, ErrNodeNotFound
	}

	requests, ok := s.evidence[nodeID]
	if !ok {
		requests = s.fallback
	}
	return &NodeDetail{
		Node:     node,
		Requests: append([]Exchange(nil), requests...),
	}, nil
}
