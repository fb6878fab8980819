// internal/triggers/service.go
package triggers

import (
	"context"
	"fmt"

	apperrors "startup-scoring/internal/common/errors"
	"startup-scoring/internal/common/logger"
	"startup-scoring/internal/common/metrics"
	"startup-scoring/internal/common/observability"
	"startup-scoring/internal/events"
	"startup-scoring/internal/models"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type CreatedTask struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Priority Priority `json:"priority"`
	RuleID   string   `json:"rule_id"`
}

type ProcessResult struct {
	Success      bool          `json:"success"`
	TasksCreated int           `json:"tasks_created"`
	TasksSkipped int           `json:"tasks_skipped"`
	Tasks        []CreatedTask `json:"tasks"`
	Skipped      []SkippedRule `json:"skipped"`
}

// Service evaluates scores, stores the fired tasks and reports what happened.
type Service struct {
	evaluator *Evaluator
	store     Store
	publisher events.Publisher
	logger    logger.Logger
}

func NewService(evaluator *Evaluator, store Store, publisher events.Publisher, log logger.Logger) *Service {
	if evaluator == nil {
		evaluator = NewEvaluator(nil)
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		evaluator: evaluator,
		store:     store,
		publisher: publisher,
		logger:    log.WithFields(map[string]interface{}{"component": "workflow-trigger"}),
	}
}

// ProcessScore evaluates data and inserts the fired tasks as one batch.
func (s *Service) ProcessScore(ctx context.Context, data *ScoreData) (result *ProcessResult, err error) {
	ctx, span := observability.StartSpan(ctx, "triggers.ProcessScore")
	defer func() { observability.EndSpan(span, err) }()

	if err := data.Validate(); err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("startup.id", data.StartupID),
		attribute.String("trigger.source", string(data.Source)),
	)

	eval, err := s.evaluator.Evaluate(ctx, data, s.store)
	if err != nil {
		return nil, err
	}

	for i := range eval.Tasks {
		eval.Tasks[i].ID = uuid.NewString()
	}
	if err := s.store.InsertTasks(ctx, eval.Tasks); err != nil {
		return nil, err
	}

	result = &ProcessResult{
		Success:      true,
		TasksCreated: len(eval.Tasks),
		TasksSkipped: len(eval.Skipped),
		Tasks:        make([]CreatedTask, 0, len(eval.Tasks)),
		Skipped:      eval.Skipped,
	}
	for _, t := range eval.Tasks {
		result.Tasks = append(result.Tasks, CreatedTask{ID: t.ID, Title: t.Title, Priority: t.Priority, RuleID: t.RuleID})
		metrics.TriggerTasksCreated.WithLabelValues(string(data.Source), string(t.Priority)).Inc()
	}
	if len(eval.Skipped) > 0 {
		metrics.TriggerTasksSkipped.WithLabelValues(string(data.Source)).Add(float64(len(eval.Skipped)))
	}

	s.recordActivity(ctx, data, eval)

	if len(eval.Tasks) > 0 {
		s.publish(ctx, events.NewEvent(events.TypeTasksTriggered, data.StartupID, result))
	}

	s.logger.Info("score processed", map[string]interface{}{
		"startupId":    data.StartupID,
		"source":       data.Source,
		"tasksCreated": result.TasksCreated,
		"tasksSkipped": result.TasksSkipped,
	})
	return result, nil
}

// ValidationRun looks up the header of a validation run.
func (s *Service) ValidationRun(ctx context.Context, runID string) (*models.ValidationRun, error) {
	if runID == "" {
		return nil, apperrors.NewValidationError("Missing validation_run_id")
	}
	return s.store.LoadValidationRun(ctx, runID)
}

// ValidationReport loads the scores of run, which must have succeeded.
func (s *Service) ValidationReport(ctx context.Context, run *models.ValidationRun) (*ScoreData, error) {
	if run.Status != models.ValidationRunStatusSuccess {
		return nil, apperrors.NewValidationError("Validation run status is " + run.Status + ", not success")
	}
	return s.store.LoadValidationReport(ctx, run)
}

// ProcessValidationReport loads a finished validation run and processes its scores.
func (s *Service) ProcessValidationReport(ctx context.Context, runID string) (*ProcessResult, error) {
	run, err := s.ValidationRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	data, err := s.ValidationReport(ctx, run)
	if err != nil {
		return nil, err
	}
	return s.ProcessScore(ctx, data)
}

// CheckDuplicates reports whether an open task with that title exists.
func (s *Service) CheckDuplicates(ctx context.Context, startupID, title string) (bool, error) {
	if startupID == "" || title == "" {
		return false, apperrors.NewValidationError("Missing startup_id or title")
	}
	return s.store.ExistsPendingTaskWithTitle(ctx, startupID, title)
}

// Rules lists the rule table, optionally filtered by source.
func (s *Service) Rules(source Source) ([]Rule, error) {
	if source != "" && !source.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown source %q", source))
	}
	return s.evaluator.Rules(source), nil
}

// activity logging never fails the request
func (s *Service) recordActivity(ctx context.Context, data *ScoreData, eval *Evaluation) {
	entries := make([]models.WorkflowActivity, 0, len(eval.Tasks)+len(eval.Skipped))
	for _, t := range eval.Tasks {
		entries = append(entries, models.WorkflowActivity{
			ID:             uuid.NewString(),
			StartupID:      data.StartupID,
			OrgID:          data.OrgID,
			EventType:      models.WorkflowEventTaskTriggered,
			Source:         string(data.Source),
			ScoreValue:     t.TriggerScore,
			ThresholdValue: t.Threshold,
			RuleID:         t.RuleID,
			TaskID:         t.ID,
			Metadata:       map[string]interface{}{"task_title": t.Title, "task_priority": t.Priority},
		})
	}
	for _, sk := range eval.Skipped {
		entries = append(entries, models.WorkflowActivity{
			ID:             uuid.NewString(),
			StartupID:      data.StartupID,
			OrgID:          data.OrgID,
			EventType:      models.WorkflowEventTaskSkippedDuplicate,
			Source:         string(data.Source),
			ScoreValue:     sk.Score,
			ThresholdValue: sk.Threshold,
			RuleID:         sk.RuleID,
			Metadata:       map[string]interface{}{"rule_title": sk.Title},
		})
	}
	if len(entries) > 0 {
		if err := s.store.LogActivity(ctx, entries); err != nil {
			s.logger.Warn("activity log write failed", map[string]interface{}{"startupId": data.StartupID, "error": err})
		}
	}

	if len(eval.Tasks) == 0 {
		return
	}
	titles := make([]string, 0, len(eval.Tasks))
	for _, t := range eval.Tasks {
		titles = append(titles, t.Title)
	}
	summary := models.ActivitySummary{
		StartupID:    data.StartupID,
		ActivityType: "ai_task_suggested",
		Title:        fmt.Sprintf("%d task(s) auto-generated from %s", len(eval.Tasks), data.Source),
		Description:  "AI detected low scores and created corrective action items.",
		EntityType:   "task",
		Metadata: map[string]interface{}{
			"source":        data.Source,
			"tasks_created": len(eval.Tasks),
			"task_titles":   titles,
		},
	}
	if err := s.store.LogSummary(ctx, summary); err != nil {
		s.logger.Warn("activity summary write failed", map[string]interface{}{"startupId": data.StartupID, "error": err})
	}
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", map[string]interface{}{"eventType": event.Type, "error": err})
	}
}
