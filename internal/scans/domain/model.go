package domain

import "time"

// Status is the lifecycle state of a scan.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// IsTerminal reports whether no further progress can happen.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusPaused, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// VulnerabilityCounts aggregates findings by severity.
type VulnerabilityCounts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// Total is the number of findings across all severities.
func (c VulnerabilityCounts) Total() int {
	return c.Critical + c.High + c.Medium + c.Low
}

// ScanState is a point-in-time copy of one scan.
type ScanState struct {
	ScanID      string     `json:"scan_id"`
	ProjectID   string     `json:"project_id"`
	Status      Status     `json:"status"`
	Progress    int        `json:"progress"`
	Logs        []string   `json:"logs"`
	StartedAt   time.Time  `json:"started_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Clone returns a deep copy so callers never share the log slice.
func (s *ScanState) Clone() *ScanState {
	out := *s
	out.Logs = append([]string(nil), s.Logs...)
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		out.CompletedAt = &t
	}
	return &out
}

// StatusResponse is what pollers hand to the UI.
type StatusResponse struct {
	ScanID      string     `json:"scan_id"`
	Status      Status     `json:"status"`
	Progress    int        `json:"progress"`
	CurrentStep string     `json:"current_step"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// HistoryItem is one past scan of a project.
type HistoryItem struct {
	ScanID             string    `json:"id"`
	ProjectID          string    `json:"project_id"`
	Status             Status    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	DurationSeconds    int       `json:"duration,omitempty"`
	VulnerabilityCount int       `json:"vulnerability_count"`
	RiskScore          *int      `json:"risk_score,omitempty"`
}

// Step names reported while a scan runs.
const (
	StepReconnaissance   = "Reconnaissance"
	StepStaticAnalysis   = "Static Analysis"
	StepDynamicTesting   = "Dynamic Testing"
	StepFinalizing       = "Finalizing"
	StepAnalysisComplete = "Analysis Complete"
)

// CurrentStep maps progress onto the fixed step bands.
func CurrentStep(progress int) string {
	switch {
	case progress < 20:
		return StepReconnaissance
	case progress < 50:
		return StepStaticAnalysis
	case progress < 80:
		return StepDynamicTesting
	default:
		return StepFinalizing
	}
}
