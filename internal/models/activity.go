// internal/models/activity.go
package models

import "time"

type WorkflowEventType string

const (
	WorkflowEventTaskTriggered        WorkflowEventType = "task_triggered"
	WorkflowEventTaskSkippedDuplicate WorkflowEventType = "task_skipped_duplicate"
)

// WorkflowActivity is one row of workflow_activity_log.
type WorkflowActivity struct {
	ID             string                 `json:"id"`
	StartupID      string                 `json:"startup_id"`
	OrgID          string                 `json:"org_id,omitempty"`
	EventType      WorkflowEventType      `json:"event_type"`
	Source         string                 `json:"source"`
	ScoreValue     float64                `json:"score_value"`
	ThresholdValue float64                `json:"threshold_value"`
	RuleID         string                 `json:"rule_id"`
	TaskID         string                 `json:"task_id,omitempty"`
	Metadata       map[string]interface{} `json:"metadata"`
	CreatedAt      time.Time              `json:"created_at,omitempty"`
}

// ActivitySummary is the UI-facing activities row written after tasks are created.
type ActivitySummary struct {
	StartupID    string
	ActivityType string
	Title        string
	Description  string
	EntityType   string
	Metadata     map[string]interface{}
}
