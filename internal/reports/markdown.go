package reports

import (
	"fmt"
	"strings"
)

// Markdown renders r as a markdown document.
func Markdown(r *SecurityReport) string {
	var b strings.Builder

	// Title
	b.WriteString(fmt.Sprintf("# Security Report: %s\n\n", r.ProjectName))
	b.WriteString(fmt.Sprintf("**Scan:** `%s`  \n", r.ScanID))
	b.WriteString(fmt.Sprintf("**Generated:** %s  \n", r.GeneratedAt.Format("January 2, 2006 15:04:05 MST")))
	b.WriteString(fmt.Sprintf("**Overall risk:** %s  \n\n", strings.ToUpper(string(r.ExecutiveSummary.OverallRisk))))

	// Executive Summary
	s := r.ExecutiveSummary
	b.WriteString("## Executive Summary\n\n")
	b.WriteString(s.Summary)
	b.WriteString("\n\n")
	b.WriteString("| Severity | Count |\n")
	b.WriteString("|---|---|\n")
	b.WriteString(fmt.Sprintf("| Critical | %d |\n", s.CriticalCount))
	b.WriteString(fmt.Sprintf("| High | %d |\n", s.HighCount))
	b.WriteString(fmt.Sprintf("| Medium | %d |\n", s.MediumCount))
	b.WriteString(fmt.Sprintf("| Low | %d |\n", s.LowCount))
	b.WriteString(fmt.Sprintf("| **Total** | **%d** |\n\n", s.TotalVulnerabilities))

	// Findings
	b.WriteString("## Findings\n\n")
	if len(r.Findings) == 0 {
		b.WriteString("No findings recorded.\n\n")
	}
	for _, f := range r.Findings {
		b.WriteString(fmt.Sprintf("### [%s] %s\n\n", strings.ToUpper(string(f.Severity)), f.Title))
		b.WriteString(fmt.Sprintf("- **ID:** %s\n", f.ID))
		b.WriteString(fmt.Sprintf("- **Type:** %s\n", f.Type))
		b.WriteString(fmt.Sprintf("- **CVSS:** %.1f\n", f.CVSSScore))
		b.WriteString(fmt.Sprintf("- **Impact:** %s\n", f.Impact))
		b.WriteString(fmt.Sprintf("- **Exploit complexity:** %s\n\n", f.ExploitComplexity))
		b.WriteString(f.Description)
		b.WriteString("\n\n")

		if len(f.AffectedEndpoints) > 0 {
			b.WriteString("**Affected endpoints:**\n\n")
			for _, ep := range f.AffectedEndpoints {
				b.WriteString(fmt.Sprintf("- `%s`\n", ep))
			}
			b.WriteString("\n")
		}
		if len(f.RecommendedFixes) > 0 {
			b.WriteString("**Recommended fixes:**\n\n")
			for _, fix := range f.RecommendedFixes {
				b.WriteString(fmt.Sprintf("- %s\n", fix))
			}
			b.WriteString("\n")
		}
	}

	// Recommendations
	if len(r.Recommendations) > 0 {
		b.WriteString("## Recommendations\n\n")
		for i, rec := range r.Recommendations {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, rec))
		}
		b.WriteString("\n")
	}

	// Metadata
	b.WriteString("## Scan Metadata\n\n")
	b.WriteString(fmt.Sprintf("- Duration: %ds\n", r.Metadata.ScanDuration))
	b.WriteString(fmt.Sprintf("- Endpoints tested: %d\n", r.Metadata.EndpointsTested))
	b.WriteString(fmt.Sprintf("- Test cases executed: %d\n", r.Metadata.TestCasesExecuted))

	return b.String()
}
