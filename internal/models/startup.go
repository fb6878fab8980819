// internal/models/startup.go
package models

import (
	"encoding/json"
	"time"
)

// StartupHealth is the persisted health snapshot on the startups row.
type StartupHealth struct {
	StartupID       string          `json:"startup_id"`
	HealthScore     *int            `json:"health_score,omitempty"`
	ScoreBreakdown  json.RawMessage `json:"score_breakdown,omitempty"`
	LastHealthCheck *time.Time      `json:"last_health_check,omitempty"`
}

// ValidationRun is a row of validation_runs.
type ValidationRun struct {
	ID        string `json:"id"`
	StartupID string `json:"startup_id"`
	OrgID     string `json:"org_id,omitempty"`
	Status    string `json:"status"`
}

const ValidationRunStatusSuccess = "success"

// ValidatorReport is a row of validator_reports; Score is nil when not numeric.
type ValidatorReport struct {
	ReportType string   `json:"report_type"`
	Score      *float64 `json:"score"`
}
