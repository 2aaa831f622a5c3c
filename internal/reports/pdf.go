package reports

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/signintech/gopdf"
)

const (
	pdfMargin     = 50.0
	pdfLineHeight = 16.0
	pdfBottom     = 790.0
	pdfFontFamily = "report"
)

type pdfWriter struct {
	pdf   *gopdf.GoPdf
	width float64
}

// PDF renders r as an A4 document using the TTF at fontPath.
func PDF(r *SecurityReport, fontPath string) ([]byte, error) {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	if err := pdf.AddTTFFont(pdfFontFamily, fontPath); err != nil {
		return nil, fmt.Errorf("failed to load report font: %w", err)
	}

	w := &pdfWriter{pdf: pdf, width: gopdf.PageSizeA4.W - 2*pdfMargin}
	pdf.SetY(pdfMargin)

	steps := []func() error{
		func() error { return w.heading(fmt.Sprintf("Security Report: %s", r.ProjectName), 18) },
		func() error { return w.text(fmt.Sprintf("Scan %s, generated %s", r.ScanID, r.GeneratedAt.Format("2006-01-02 15:04 MST")), 10) },
		func() error {
			return w.text(fmt.Sprintf("Overall risk: %s", strings.ToUpper(string(r.ExecutiveSummary.OverallRisk))), 12)
		},
		func() error { return w.heading("Executive Summary", 14) },
		func() error { return w.text(r.ExecutiveSummary.Summary, 11) },
		func() error {
			s := r.ExecutiveSummary
			return w.text(fmt.Sprintf("Critical %d   High %d   Medium %d   Low %d   Total %d",
				s.CriticalCount, s.HighCount, s.MediumCount, s.LowCount, s.TotalVulnerabilities), 11)
		},
		func() error { return w.heading("Findings", 14) },
	}
	for _, f := range r.Findings {
		steps = append(steps,
			func() error {
				return w.heading(fmt.Sprintf("[%s] %s (CVSS %.1f)", strings.ToUpper(string(f.Severity)), f.Title, f.CVSSScore), 12)
			},
			func() error { return w.text(f.Description, 10) },
			func() error { return w.text("Affected: "+strings.Join(f.AffectedEndpoints, ", "), 10) },
			func() error { return w.text("Fix: "+strings.Join(f.RecommendedFixes, " "), 10) },
		)
	}
	steps = append(steps, func() error { return w.heading("Recommendations", 14) })
	for i, rec := range r.Recommendations {
		line := fmt.Sprintf("%d. %s", i+1, rec)
		steps = append(steps, func() error { return w.text(line, 10) })
	}
	steps = append(steps, func() error {
		return w.text(fmt.Sprintf("Duration %ds, %d endpoints tested, %d test cases executed",
			r.Metadata.ScanDuration, r.Metadata.EndpointsTested, r.Metadata.TestCasesExecuted), 9)
	})

	for _, step := range steps {
		if err := step(); err != nil {
			return nil, fmt.Errorf("failed to render report pdf: %w", err)
		}
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write report pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *pdfWriter) heading(s string, size float64) error {
	w.pdf.Br(pdfLineHeight / 2)
	return w.text(s, size)
}

func (w *pdfWriter) text(s string, size float64) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if err := w.pdf.SetFont(pdfFontFamily, "", size); err != nil {
		return err
	}
	lines, err := w.pdf.SplitText(s, w.width)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if w.pdf.GetY() > pdfBottom {
			w.pdf.AddPage()
			w.pdf.SetY(pdfMargin)
		}
		w.pdf.SetX(pdfMargin)
		if err := w.pdf.Cell(nil, line); err != nil {
			return err
		}
		w.pdf.Br(pdfLineHeight)
	}
	return nil
}
