package attackgraph

import "github.com/sentinel-red/sentinel-backend/internal/apperr"

// NodeType is the role a node plays in an exploitation path.
type NodeType string

const (
	NodeStart         NodeType = "start"
	NodeAPICall       NodeType = "api_call"
	NodeExploit       NodeType = "exploit"
	NodeVulnerability NodeType = "vulnerability"
	NodeEnd           NodeType = "end"
)

// EdgeType is the relation between two nodes.
type EdgeType string

const (
	EdgeDefault    EdgeType = "default"
	EdgeExploit    EdgeType = "exploit"
	EdgeVulnerable EdgeType = "vulnerable"
)

var ErrNodeNotFound = apperr.NotFound("node not found")

type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// NodeData is the role-specific payload. Only the fields relevant to the
// node's type are set.
type NodeData struct {
	Description     string `json:"description,omitempty" yaml:"description"`
	Method          string `json:"method,omitempty" yaml:"method"`
	Endpoint        string `json:"endpoint,omitempty" yaml:"endpoint"`
	VulnerabilityID string `json:"vulnerability_id,omitempty" yaml:"vulnerability_id"`
}

type Node struct {
	ID       string   `json:"id" yaml:"id"`
	Type     NodeType `json:"type" yaml:"type"`
	Label    string   `json:"label" yaml:"label"`
	Position Position `json:"position" yaml:"position"`
	Data     NodeData `json:"data" yaml:"data"`
}

type Edge struct {
	ID     string   `json:"id" yaml:"id"`
	Source string   `json:"source" yaml:"source"`
	Target string   `json:"target" yaml:"target"`
	Label  string   `json:"label,omitempty" yaml:"label"`
	Type   EdgeType `json:"type" yaml:"type"`
}

// Graph is the attack path of one scan.
type Graph struct {
	ScanID string `json:"scan_id" yaml:"scan_id"`
	Nodes  []Node `json:"nodes" yaml:"nodes"`
	Edges  []Edge `json:"edges" yaml:"edges"`
}

// Clone returns a deep copy.
func (g *Graph) Clone() *Graph {
	out := &Graph{ScanID: g.ScanID}
	out.Nodes = append([]Node(nil), g.Nodes...)
	out.Edges = append([]Edge(nil), g.Edges...)
	return out
}

// Node returns the node with id.
func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// ExchangeResponse is the captured response of an Exchange.
type ExchangeResponse struct {
	Status  int               `json:"status" yaml:"status"`
	Headers map[string]string `json:"headers" yaml:"headers"`
	Body    interface{}       `json:"body" yaml:"body"`
}

// Exchange is one HTTP request/response pair that reproduces a step.
type Exchange struct {
	Method   string            `json:"method" yaml:"method"`
	URL      string            `json:"url" yaml:"url"`
	Headers  map[string]string `json:"headers" yaml:"headers"`
	Body     interface{}       `json:"body" yaml:"body"`
	Response ExchangeResponse  `json:"response" yaml:"response"`
}

// NodeDetail is a node plus its reproduction evidence.
type NodeDetail struct {
	Node     Node       `json:"node"`
	Requests []Exchange `json:"requests"`
}
