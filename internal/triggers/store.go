// internal/triggers/store.go
package triggers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"startup-scoring/internal/common/database"
	apperrors "startup-scoring/internal/common/errors"
	"startup-scoring/internal/models"

	"github.com/lib/pq"
)

// Store is the persistence the trigger service needs.
type Store interface {
	DuplicateChecker
	InsertTasks(ctx context.Context, tasks []TaskDescriptor) error
	LogActivity(ctx context.Context, entries []models.WorkflowActivity) error
	LogSummary(ctx context.Context, summary models.ActivitySummary) error
	LoadValidationRun(ctx context.Context, runID string) (*models.ValidationRun, error)
	LoadValidationReport(ctx context.Context, run *models.ValidationRun) (*ScoreData, error)
}

const (
	queryOpenTaskExists = `
		SELECT EXISTS (
			SELECT 1 FROM tasks
			WHERE startup_id = $1 AND title = $2 AND status = ANY($3)
		)`

	queryInsertTask = `
		INSERT INTO tasks (id, startup_id, title, description, priority, status, tags,
			source, ai_generated, trigger_rule_id, trigger_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true, $9, $10)`

	queryInsertActivity = `
		INSERT INTO workflow_activity_log (id, startup_id, org_id, event_type, source,
			score_value, threshold_value, rule_id, task_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	queryInsertSummary = `
		INSERT INTO activities (startup_id, activity_type, title, description, entity_type,
			metadata, is_system_generated)
		VALUES ($1, $2, $3, $4, $5, $6, true)`

	queryValidationRun = `
		SELECT startup_id, COALESCE(org_id::text, ''), status
		FROM validation_runs WHERE id = $1`

	queryValidatorReports = `
		SELECT report_type, score FROM validator_reports WHERE run_id = $1`
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ExistsPendingTaskWithTitle(ctx context.Context, startupID, title string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, queryOpenTaskExists, startupID, title, pq.Array(models.OpenTaskStatuses)).Scan(&exists)
	if err != nil {
		return false, apperrors.NewQueryExecutionFailedError("open_task_exists", err)
	}
	return exists, nil
}

// InsertTasks writes the whole batch in one transaction; either every task is
// stored or none is. Task ids must already be set.
func (s *PostgresStore) InsertTasks(ctx context.Context, tasks []TaskDescriptor) error {
	if len(tasks) == 0 {
		return nil
	}
	err := database.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, queryInsertTask)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, t := range tasks {
			_, err := stmt.ExecContext(ctx,
				t.ID, t.StartupID, t.Title, t.Description, string(t.Priority),
				models.TaskStatusPending, pq.Array(t.Tags), models.TaskSourceAIWorkflow,
				t.RuleID, t.TriggerScore,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

func (s *PostgresStore) LogActivity(ctx context.Context, entries []models.WorkflowActivity) error {
	for _, e := range entries {
		metadata, err := json.Marshal(e.Metadata)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		_, err = s.db.ExecContext(ctx, queryInsertActivity,
			e.ID, e.StartupID, nullString(e.OrgID), string(e.EventType), e.Source,
			e.ScoreValue, e.ThresholdValue, e.RuleID, nullString(e.TaskID), metadata,
		)
		if err != nil {
			return apperrors.NewDatabaseInsertFailedError(err)
		}
	}
	return nil
}

func (s *PostgresStore) LogSummary(ctx context.Context, summary models.ActivitySummary) error {
	metadata, err := json.Marshal(summary.Metadata)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	_, err = s.db.ExecContext(ctx, queryInsertSummary,
		summary.StartupID, summary.ActivityType, summary.Title, summary.Description,
		summary.EntityType, metadata,
	)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

// LoadValidationRun reads the header of a validation run. Scores are not
// touched so callers can authorize against the owning startup first.
func (s *PostgresStore) LoadValidationRun(ctx context.Context, runID string) (*models.ValidationRun, error) {
	run := &models.ValidationRun{ID: runID}
	err := s.db.QueryRowContext(ctx, queryValidationRun, runID).Scan(&run.StartupID, &run.OrgID, &run.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewValidationRunNotFoundError(runID)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("validation_run", err)
	}
	return run, nil
}

// LoadValidationReport turns the reports of run into ScoreData. The
// "overall" report feeds OverallScore; every other report type becomes a
// category score. Reports without a numeric score are ignored.
func (s *PostgresStore) LoadValidationReport(ctx context.Context, run *models.ValidationRun) (*ScoreData, error) {
	rows, err := s.db.QueryContext(ctx, queryValidatorReports, run.ID)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("validator_reports", err)
	}
	defer rows.Close()

	data := &ScoreData{
		StartupID:      run.StartupID,
		OrgID:          run.OrgID,
		Source:         SourceValidationReport,
		CategoryScores: map[string]float64{},
	}
	found := 0
	for rows.Next() {
		var r models.ValidatorReport
		if err := rows.Scan(&r.ReportType, &r.Score); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("validator_reports", err)
		}
		found++
		if r.Score == nil {
			continue
		}
		if r.ReportType == CategoryOverall {
			data.OverallScore = r.Score
		} else {
			data.CategoryScores[r.ReportType] = *r.Score
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("validator_reports", err)
	}
	if found == 0 {
		return nil, apperrors.NewValidationError("No validation reports found for run " + run.ID)
	}
	return data, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
