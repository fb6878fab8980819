package triggers

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	apperrors "startup-scoring/internal/common/errors"
	"startup-scoring/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestPostgresStore_ExistsPendingTaskWithTitle(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewPostgresStore(db)

	mock.ExpectQuery(`SELECT EXISTS .*FROM tasks\s+WHERE startup_id = \$1 AND title = \$2 AND status = ANY\(\$3\)`).
		WithArgs("s-1", "Fix Market", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := store.ExistsPendingTaskWithTitle(context.Background(), "s-1", "Fix Market")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ExistsPendingTaskWithTitle_Error(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery(`SELECT EXISTS`).WillReturnError(errors.New("conn reset"))

	_, err := NewPostgresStore(db).ExistsPendingTaskWithTitle(context.Background(), "s-1", "x")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeQueryExecutionFailed))
}

func sampleTasks() []TaskDescriptor {
	return []TaskDescriptor{
		{ID: "t-1", StartupID: "s-1", Title: "A", Description: "a", Priority: PriorityHigh, Tags: []string{"ai-triggered"}, RuleID: "r1", TriggerScore: 10},
		{ID: "t-2", StartupID: "s-1", Title: "B", Description: "b", Priority: PriorityLow, Tags: []string{"ai-triggered"}, RuleID: "r2", TriggerScore: 20},
	}
}

func TestPostgresStore_InsertTasks_Commits(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO tasks`)
	prep.ExpectExec().
		WithArgs("t-1", "s-1", "A", "a", "high", "pending", sqlmock.AnyArg(), "ai_workflow", "r1", 10.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs("t-2", "s-1", "B", "b", "low", "pending", sqlmock.AnyArg(), "ai_workflow", "r2", 20.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewPostgresStore(db).InsertTasks(context.Background(), sampleTasks()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertTasks_RollsBackWholeBatch(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO tasks`)
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WillReturnError(errors.New("unique violation"))
	mock.ExpectRollback()

	err := NewPostgresStore(db).InsertTasks(context.Background(), sampleTasks())
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDatabaseInsertFailed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertTasks_Empty(t *testing.T) {
	db, mock := setupMockDB(t)
	require.NoError(t, NewPostgresStore(db).InsertTasks(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LogActivity(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectExec(`INSERT INTO workflow_activity_log`).
		WithArgs("a-1", "s-1", sqlmock.AnyArg(), "task_triggered", "health_score", 30.0, 60.0, "r1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewPostgresStore(db).LogActivity(context.Background(), []models.WorkflowActivity{{
		ID: "a-1", StartupID: "s-1", EventType: models.WorkflowEventTaskTriggered, Source: "health_score",
		ScoreValue: 30, ThresholdValue: 60, RuleID: "r1", TaskID: "t-1",
		Metadata: map[string]interface{}{"task_title": "A"},
	}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LogSummary(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectExec(`INSERT INTO activities`).
		WithArgs("s-1", "ai_task_suggested", "1 task(s)", "desc", "task", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewPostgresStore(db).LogSummary(context.Background(), models.ActivitySummary{
		StartupID: "s-1", ActivityType: "ai_task_suggested", Title: "1 task(s)", Description: "desc", EntityType: "task",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadValidationRun(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`FROM validation_runs WHERE id = \$1`).
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows([]string{"startup_id", "org_id", "status"}).AddRow("s-1", "o-1", "running"))

	run, err := NewPostgresStore(db).LoadValidationRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, &models.ValidationRun{ID: "run-1", StartupID: "s-1", OrgID: "o-1", Status: "running"}, run)
	assert.NoError(t, mock.ExpectationsWereMet(), "reports are not read with the header")
}

func TestPostgresStore_LoadValidationRun_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery(`FROM validation_runs`).WillReturnError(sql.ErrNoRows)

	_, err := NewPostgresStore(db).LoadValidationRun(context.Background(), "run-x")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidationRunNotFound))
}

func TestPostgresStore_LoadValidationReport(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT report_type, score FROM validator_reports WHERE run_id = \$1`).
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows([]string{"report_type", "score"}).
			AddRow("market", 55.0).
			AddRow("product", nil).
			AddRow("overall", 48.0))

	run := &models.ValidationRun{ID: "run-1", StartupID: "s-1", OrgID: "o-1", Status: models.ValidationRunStatusSuccess}
	data, err := NewPostgresStore(db).LoadValidationReport(context.Background(), run)
	require.NoError(t, err)
	assert.Equal(t, "s-1", data.StartupID)
	assert.Equal(t, "o-1", data.OrgID)
	assert.Equal(t, SourceValidationReport, data.Source)
	require.NotNil(t, data.OverallScore)
	assert.Equal(t, 48.0, *data.OverallScore)
	assert.Equal(t, map[string]float64{"market": 55}, data.CategoryScores)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadValidationReport_NoReports(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery(`FROM validator_reports`).
		WillReturnRows(sqlmock.NewRows([]string{"report_type", "score"}))

	run := &models.ValidationRun{ID: "run-1", StartupID: "s-1", Status: models.ValidationRunStatusSuccess}
	_, err := NewPostgresStore(db).LoadValidationReport(context.Background(), run)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidationFailed))
}
