// internal/models/task.go
package models

const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	TaskStatusCancelled  = "cancelled"

	TaskSourceAIWorkflow = "ai_workflow"
)

// OpenTaskStatuses block a rule from firing again with the same title.
var OpenTaskStatuses = []string{TaskStatusPending, TaskStatusInProgress}
