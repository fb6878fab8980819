package health

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	apperrors "startup-scoring/internal/common/errors"

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

func expectSignalDetails(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`FROM lean_canvases`).WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"problem", "solution", "uvp", "segments", "channels"}).
			AddRow("cash flow", "invoicing", "", "designers", ""))
	mock.ExpectQuery(`FROM pitch_decks`).WithArgs("s-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`FROM tasks WHERE startup_id = \$1`).WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"total", "completed"}).AddRow(8, 3))
	mock.ExpectQuery(`FROM contacts`).WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"investors", "customers"}).AddRow(2, 7))
	mock.ExpectQuery(`FROM documents`).WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`FROM wizard_sessions`).WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"form_data"}).AddRow([]byte(`{"industry":"fintech","team_size":2}`)))
}

func TestPostgresStore_LoadSignals(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`FROM startups WHERE id = \$1`).WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"problem_statement", "one_liner", "target_market", "has_team", "health_score"}).
			AddRow("late invoices", "Payroll for freelancers", "", true, 61))
	expectSignalDetails(mock)

	sig, err := NewPostgresStore(db).LoadSignals(context.Background(), "s-1")
	require.NoError(t, err)

	assert.Equal(t, "late invoices", sig.ProblemStatement)
	assert.True(t, sig.HasTeamMembers)
	require.NotNil(t, sig.PreviousScore)
	assert.Equal(t, 61, *sig.PreviousScore)
	require.NotNil(t, sig.Canvas)
	assert.Equal(t, "designers", sig.Canvas.CustomerSegments)
	assert.Nil(t, sig.PitchDeck)
	assert.Equal(t, 8, sig.TotalTasks)
	assert.Equal(t, 3, sig.CompletedTasks)
	assert.Equal(t, 2, sig.InvestorContacts)
	assert.Equal(t, 7, sig.CustomerContacts)
	assert.Equal(t, 1, sig.PitchDocuments)
	assert.True(t, sig.Wizard.Has("industry"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadSignals_EmptyTeamMembers(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`COALESCE\(team_members::text, ''\) NOT IN \('', 'null', '""', 'false', '0'\)`).WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"problem_statement", "one_liner", "target_market", "has_team", "health_score"}).
			AddRow("", "", "", false, nil))
	expectSignalDetails(mock)

	sig, err := NewPostgresStore(db).LoadSignals(context.Background(), "s-1")
	require.NoError(t, err)

	assert.False(t, sig.HasTeamMembers)
	assert.Nil(t, sig.PreviousScore)
	assert.Equal(t, 60, teamReadiness(sig), "team size points only")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadSignals_StartupNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery(`FROM startups`).WillReturnError(sql.ErrNoRows)

	_, err := NewPostgresStore(db).LoadSignals(context.Background(), "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeStartupNotFound))
}

func TestPostgresStore_LoadSignals_QueryError(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery(`FROM startups`).
		WillReturnRows(sqlmock.NewRows([]string{"a", "b", "c", "d", "e"}).AddRow("", "", "", false, nil))
	mock.ExpectQuery(`FROM lean_canvases`).WillReturnError(errors.New("relation does not exist"))

	_, err := NewPostgresStore(db).LoadSignals(context.Background(), "s-1")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeQueryExecutionFailed))
}

func TestPostgresStore_SaveScore(t *testing.T) {
	db, mock := setupMockDB(t)
	score := Aggregate(&Signals{}, testNow)

	mock.ExpectExec(`UPDATE startups SET health_score = \$1, score_breakdown = \$2, last_health_check = \$3`).
		WithArgs(26, sqlmock.AnyArg(), testNow, "s-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewPostgresStore(db).SaveScore(context.Background(), "s-1", score))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveScore_Errors(t *testing.T) {
	t.Run("no row updated", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectExec(`UPDATE startups`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewPostgresStore(db).SaveScore(context.Background(), "gone", &Score{})
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeStartupNotFound))
	})

	t.Run("write fails", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectExec(`UPDATE startups`).WillReturnError(errors.New("read-only transaction"))

		err := NewPostgresStore(db).SaveScore(context.Background(), "s-1", &Score{})
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDatabaseInsertFailed))
	})
}

func TestPostgresStore_LoadStored(t *testing.T) {
	db, mock := setupMockDB(t)
	checked := testNow.Add(-10 * time.Minute)

	mock.ExpectQuery(`SELECT health_score, score_breakdown, last_health_check FROM startups`).WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"health_score", "score_breakdown", "last_health_check"}).
			AddRow(72, []byte(`{}`), checked))

	stored, err := NewPostgresStore(db).LoadStored(context.Background(), "s-1")
	require.NoError(t, err)
	require.NotNil(t, stored.HealthScore)
	assert.Equal(t, 72, *stored.HealthScore)
	require.NotNil(t, stored.LastHealthCheck)
	assert.True(t, checked.Equal(*stored.LastHealthCheck))
}

func TestFresh(t *testing.T) {
	recent := testNow.Add(-30 * time.Minute)
	stale := testNow.Add(-2 * time.Hour)

	assert.True(t, fresh(&recent, testNow, time.Hour))
	assert.False(t, fresh(&stale, testNow, time.Hour))
	assert.False(t, fresh(nil, testNow, time.Hour))
}
