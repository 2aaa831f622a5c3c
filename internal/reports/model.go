package reports

import "time"

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

type ExecutiveSummary struct {
	TotalVulnerabilities int      `json:"total_vulnerabilities" yaml:"total_vulnerabilities"`
	CriticalCount        int      `json:"critical_count" yaml:"critical_count"`
	HighCount            int      `json:"high_count" yaml:"high_count"`
	MediumCount          int      `json:"medium_count" yaml:"medium_count"`
	LowCount             int      `json:"low_count" yaml:"low_count"`
	OverallRisk          Severity `json:"overall_risk" yaml:"overall_risk"`
	Summary              string   `json:"summary" yaml:"summary"`
}

// Finding is one reported vulnerability.
type Finding struct {
	ID                string    `json:"id" yaml:"id"`
	ScanID            string    `json:"scan_id" yaml:"-"`
	Title             string    `json:"title" yaml:"title"`
	Description       string    `json:"description" yaml:"description"`
	Severity          Severity  `json:"severity" yaml:"severity"`
	Type              string    `json:"type" yaml:"type"`
	DiscoveredAt      time.Time `json:"discovered_at" yaml:"-"`
	Impact            string    `json:"impact" yaml:"impact"`
	ExploitComplexity string    `json:"exploit_complexity" yaml:"exploit_complexity"`
	CVSSScore         float64   `json:"cvss_score" yaml:"cvss_score"`
	AffectedEndpoints []string  `json:"affected_endpoints" yaml:"affected_endpoints"`
	RecommendedFixes  []string  `json:"recommended_fixes" yaml:"recommended_fixes"`
	AttackChain       []string  `json:"attack_chain" yaml:"attack_chain"`
}

type Metadata struct {
	ScanDuration      int `json:"scan_duration" yaml:"scan_duration"`
	EndpointsTested   int `json:"endpoints_tested" yaml:"endpoints_tested"`
	TestCasesExecuted int `json:"test_cases_executed" yaml:"test_cases_executed"`
}

// SecurityReport is the aggregate read-only view of one scan.
type SecurityReport struct {
	ScanID           string           `json:"scan_id" yaml:"-"`
	ProjectName      string           `json:"project_name" yaml:"project_name"`
	GeneratedAt      time.Time        `json:"generated_at" yaml:"-"`
	ExecutiveSummary ExecutiveSummary `json:"executive_summary" yaml:"executive_summary"`
	Findings         []Finding        `json:"findings" yaml:"findings"`
	Recommendations  []string         `json:"recommendations" yaml:"recommendations"`
	Metadata         Metadata         `json:"metadata" yaml:"metadata"`
}

// Clone returns a deep copy.
func (r *SecurityReport) Clone() *SecurityReport {
	out := *r
	out.Findings = make([]Finding, len(r.Findings))
	for i, f := range r.Findings {
		f.AffectedEndpoints = append([]string(nil), f.AffectedEndpoints...)
		f.RecommendedFixes = append([]string(nil), f.RecommendedFixes...)
		f.AttackChain = append([]string{}, f.AttackChain...)
		out.Findings[i] = f
	}
	out.Recommendations = append([]string(nil), r.Recommendations...)
	return &out
}
