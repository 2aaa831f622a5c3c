// Package fixtures holds the reference dataset the service ships with:
// seed projects, endpoint inventory, scan history, the attack graph and
// the report template.
package fixtures

import (
	"embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sentinel-red/sentinel-backend/internal/attackgraph"
	projectdomain "github.com/sentinel-red/sentinel-backend/internal/projects/domain"
	"github.com/sentinel-red/sentinel-backend/internal/reports"
	scandomain "github.com/sentinel-red/sentinel-backend/internal/scans/domain"
)

//go:embed data/*.yaml
var files embed.FS

func decode(name string, out interface{}) error {
	b, err := files.ReadFile("data/" + name)
	if err != nil {
		return fmt.Errorf("read fixture %s: %w", name, err)
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return fmt.Errorf("parse fixture %s: %w", name, err)
	}
	return nil
}

// ago is a duration relative to the load time, e.g. "24h".
type ago string

func (a ago) before(now time.Time) (time.Time, error) {
	if a == "" {
		return now, nil
	}
	d, err := time.ParseDuration(string(a))
	if err != nil {
		return time.Time{}, err
	}
	return now.Add(-d), nil
}

type projectRow struct {
	projectdomain.Project `yaml:",inline"`
	CreatedAgo            ago `yaml:"created_ago"`
	UpdatedAgo            ago `yaml:"updated_ago"`
}

// Projects returns the seed projects with timestamps relative to now.
func Projects(now time.Time) ([]projectdomain.Project, error) {
	var doc struct {
		Projects []projectRow `yaml:"projects"`
	}
	if err := decode("projects.yaml", &doc); err != nil {
		return nil, err
	}

	out := make([]projectdomain.Project, 0, len(doc.Projects))
	for _, row := range doc.Projects {
		p := row.Project
		var err error
		if p.CreatedAt, err = row.CreatedAgo.before(now); err != nil {
			return nil, fmt.Errorf("project %s: %w", p.ID, err)
		}
		if p.UpdatedAt, err = row.UpdatedAgo.before(now); err != nil {
			return nil, fmt.Errorf("project %s: %w", p.ID, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// Endpoints returns the endpoint inventory.
func Endpoints() ([]projectdomain.Endpoint, error) {
	var doc struct {
		Endpoints []projectdomain.Endpoint `yaml:"endpoints"`
	}
	if err := decode("endpoints.yaml", &doc); err != nil {
		return nil, err
	}
	return doc.Endpoints, nil
}

type historyRow struct {
	ScanID             string            `yaml:"scan_id"`
	ProjectID          string            `yaml:"project_id"`
	Status             scandomain.Status `yaml:"status"`
	CreatedAgo         ago               `yaml:"created_ago"`
	Duration           int               `yaml:"duration"`
	VulnerabilityCount int               `yaml:"vulnerability_count"`
	RiskScore          *int              `yaml:"risk_score"`
}

// History returns past scans of the seed projects.
func History(now time.Time) ([]scandomain.HistoryItem, error) {
	var doc struct {
		History []historyRow `yaml:"history"`
	}
	if err := decode("history.yaml", &doc); err != nil {
		return nil, err
	}

	out := make([]scandomain.HistoryItem, 0, len(doc.History))
	for _, row := range doc.History {
		created, err := row.CreatedAgo.before(now)
		if err != nil {
			return nil, fmt.Errorf("history %s: %w", row.ScanID, err)
		}
		out = append(out, scandomain.HistoryItem{
			ScanID:             row.ScanID,
			ProjectID:          row.ProjectID,
			Status:             row.Status,
			CreatedAt:          created,
			DurationSeconds:    row.Duration,
			VulnerabilityCount: row.VulnerabilityCount,
			RiskScore:          row.RiskScore,
		})
	}
	return out, nil
}

// AttackGraph returns the reference graph.
func AttackGraph() (*attackgraph.Graph, error) {
	var g attackgraph.Graph
	if err := decode("attack_graph.yaml", &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Evidence returns per-node exchanges and the default list.
func Evidence() (map[string][]attackgraph.Exchange, []attackgraph.Exchange, error) {
	var doc struct {
		Default []attackgraph.Exchange            `yaml:"default"`
		Nodes   map[string][]attackgraph.Exchange `yaml:"nodes"`
	}
	if err := decode("evidence.yaml", &doc); err != nil {
		return nil, nil, err
	}
	if doc.Nodes == nil {
		doc.Nodes = map[string][]attackgraph.Exchange{}
	}
	return doc.Nodes, doc.Default, nil
}

// Report returns the report template. ScanID and timestamps are left for
// the caller to fill.
func Report() (*reports.SecurityReport, error) {
	var r reports.SecurityReport
	if err := decode("report.yaml", &r); err != nil {
		return nil, err
	}
	return &r, nil
}
