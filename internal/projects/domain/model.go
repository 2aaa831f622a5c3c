package domain

import (
	"time"

	scandomain "github.com/sentinel-red/sentinel-backend/internal/scans/domain"
)

// ProjectType is the kind of target a project scans.
type ProjectType string

const (
	TypeAPI      ProjectType = "api"
	TypeCodebase ProjectType = "codebase"
)

func (t ProjectType) Valid() bool {
	return t == TypeAPI || t == TypeCodebase
}

// Project represents a single registered scan target.
// It is intentionally storage-agnostic and used across repository and HTTP layers.
type Project struct {
	ID                  string                          `json:"id" yaml:"id"`
	Name                string                          `json:"name" yaml:"name"`
	Type                ProjectType                     `json:"type" yaml:"type"`
	CreatedAt           time.Time                       `json:"created_at" yaml:"-"`
	UpdatedAt           time.Time                       `json:"updated_at" yaml:"-"`
	LastScanID          string                          `json:"last_scan_id,omitempty" yaml:"last_scan_id"`
	LastScanStatus      scandomain.Status               `json:"last_scan_status,omitempty" yaml:"last_scan_status"`
	VulnerabilityCounts *scandomain.VulnerabilityCounts `json:"vulnerability_counts,omitempty" yaml:"vulnerability_counts"`
}

// Clone returns a copy that shares no pointers with p.
func (p *Project) Clone() *Project {
	out := *p
	if p.VulnerabilityCounts != nil {
		counts := *p.VulnerabilityCounts
		out.VulnerabilityCounts = &counts
	}
	return &out
}

// EndpointParameter describes one input of an endpoint.
type EndpointParameter struct {
	Name     string `json:"name" yaml:"name"`
	In       string `json:"in" yaml:"in"`
	Type     string `json:"type" yaml:"type"`
	Required bool   `json:"required" yaml:"required"`
}

// Endpoint is one operation discovered on an API project.
type Endpoint struct {
	ID           string              `json:"id" yaml:"id"`
	Method       string              `json:"method" yaml:"method"`
	Path         string              `json:"path" yaml:"path"`
	Description  string              `json:"description,omitempty" yaml:"description"`
	AuthRequired bool                `json:"auth_required" yaml:"auth_required"`
	Parameters   []EndpointParameter `json:"parameters,omitempty" yaml:"parameters"`
}
