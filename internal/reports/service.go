package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sentinel-red/sentinel-backend/internal/apperr"
	"github.com/sentinel-red/sentinel-backend/internal/latency"
	"github.com/sentinel-red/sentinel-backend/internal/logging"
	projectdomain "github.com/sentinel-red/sentinel-backend/internal/projects/domain"
)

// Export formats.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatPDF      = "pdf"
)

var ErrFontNotConfigured = apperr.Validation("pdf export requires REPORT_FONT_PATH")

// ScanOwners resolves the project a scan belongs to.
type ScanOwners interface {
	ProjectOf(ctx context.Context, scanID string) (string, bool)
}

// Projects looks up project names.
type Projects interface {
	Get(ctx context.Context, id string) (*projectdomain.Project, error)
}

// Service builds reports from the template.
type Service struct {
	template *SecurityReport
	owners   ScanOwners
	projects Projects
	fontPath string
	latency  *latency.Simulator
	now      func() time.Time
}

// NewService creates a Service. owners and projects may be nil, in which
// case the template's project name is kept.
func NewService(template *SecurityReport, owners ScanOwners, projects Projects, fontPath string, lat *latency.Simulator) *Service {
	return &Service{
		template: template,
		owners:   owners,
		projects: projects,
		fontPath: fontPath,
		latency:  lat,
		now:      time.Now,
	}
}

// GetReport returns the report for scanID.
func (s *Service) GetReport(ctx context.Context, scanID string) (*SecurityReport, error) {
	if err := s.latency.Wait(ctx, latency.OpReport); err != nil {
		return nil, err
	}

	now := s.now()
	r := s.template.Clone()
	r.ScanID = scanID
	r.GeneratedAt = now
	for i := range r.Findings {
		r.Findings[i].ScanID = scanID
		r.Findings[i].DiscoveredAt = now
	}

	if name, ok := s.projectName(ctx, scanID); ok {
		r.ProjectName = name
	}
	return r, nil
}

// Export renders the report. It returns the body, its content type and a
// suggested file name.
func (s *Service) Export(ctx context.Context, scanID, format string) ([]byte, string, string, error) {
	if format == FormatPDF && s.fontPath == "" {
		return nil, "", "", ErrFontNotConfigured
	}
	switch format {
	case "", FormatJSON, FormatMarkdown, FormatPDF:
	default:
		return nil, "", "", apperr.Validation("unsupported export format %q", format)
	}

	r, err := s.GetReport(ctx, scanID)
	if err != nil {
		return nil, "", "", err
	}

	base := fmt.Sprintf("security-report-%s", scanID)
	switch format {
	case FormatMarkdown:
		return []byte(Markdown(r)), "text/markdown; charset=utf-8", base + ".md", nil
	case FormatPDF:
		body, err := PDF(r, s.fontPath)
		if err != nil {
			return nil, "", "", err
		}
		return body, "application/pdf", base + ".pdf", nil
	default:
		body, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, "", "", fmt.Errorf("failed to marshal report: %w", err)
		}
		return body, "application/json", base + ".json", nil
	}
}

func (s *Service) projectName(ctx context.Context, scanID string) (string, bool) {
	if s.owners == nil || s.projects == nil {
		return "", false
	}
	projectID, ok := s.owners.ProjectOf(ctx, scanID)
	if !ok {
		return "", false
	}
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		logging.NewLogger(ctx).Warnf("reports.get", "scan_id=%s project_id=%s: %v", scanID, projectID, err)
		return "", false
	}
	return p.Name, true
}
