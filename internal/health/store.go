// internal/health/store.go
package health

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	apperrors "startup-scoring/internal/common/errors"
	"startup-scoring/internal/models"
)

type Store interface {
	LoadSignals(ctx context.Context, startupID string) (*Signals, error)
	SaveScore(ctx context.Context, startupID string, score *Score) error
	LoadStored(ctx context.Context, startupID string) (*models.StartupHealth, error)
}

const (
	queryStartup = `
		SELECT COALESCE(problem_statement, ''), COALESCE(one_liner, ''), COALESCE(target_market, ''),
			COALESCE(team_members::text, '') NOT IN ('', 'null', '""', 'false', '0'), health_score
		FROM startups WHERE id = $1`

	queryCanvas = `
		SELECT COALESCE(problem::text, ''), COALESCE(solution::text, ''),
			COALESCE(unique_value_proposition::text, ''), COALESCE(customer_segments::text, ''),
			COALESCE(channels::text, '')
		FROM lean_canvases WHERE startup_id = $1
		ORDER BY updated_at DESC LIMIT 1`

	queryPitchDeck = `
		SELECT COALESCE(status, '') FROM pitch_decks WHERE startup_id = $1
		ORDER BY updated_at DESC LIMIT 1`

	queryTaskCounts = `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'completed')
		FROM tasks WHERE startup_id = $1`

	queryContactCounts = `
		SELECT COUNT(*) FILTER (WHERE type = 'investor'),
			COUNT(*) FILTER (WHERE type IN ('customer', 'lead'))
		FROM contacts WHERE startup_id = $1`

	queryPitchDocuments = `
		SELECT COUNT(*) FROM documents WHERE startup_id = $1 AND type IN ('pitch', 'investor')`

	queryWizard = `
		SELECT form_data FROM wizard_sessions WHERE startup_id = $1 AND status = 'completed' LIMIT 1`

	queryUpdateHealth = `
		UPDATE startups SET health_score = $1, score_breakdown = $2, last_health_check = $3
		WHERE id = $4`

	queryStoredHealth = `
		SELECT health_score, score_breakdown, last_health_check FROM startups WHERE id = $1`
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// LoadSignals reads every health signal for a startup.
func (s *PostgresStore) LoadSignals(ctx context.Context, startupID string) (*Signals, error) {
	sig := &Signals{StartupID: startupID}

	var previous sql.NullInt64
	err := s.db.QueryRowContext(ctx, queryStartup, startupID).Scan(
		&sig.ProblemStatement, &sig.OneLiner, &sig.TargetMarket, &sig.HasTeamMembers, &previous)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewStartupNotFoundError(startupID)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("startup", err)
	}
	if previous.Valid {
		p := int(previous.Int64)
		sig.PreviousScore = &p
	}

	var c Canvas
	err = s.db.QueryRowContext(ctx, queryCanvas, startupID).Scan(
		&c.Problem, &c.Solution, &c.UniqueValueProposition, &c.CustomerSegments, &c.Channels)
	switch {
	case err == nil:
		sig.Canvas = &c
	case !errors.Is(err, sql.ErrNoRows):
		return nil, apperrors.NewQueryExecutionFailedError("lean_canvas", err)
	}

	var deck PitchDeck
	err = s.db.QueryRowContext(ctx, queryPitchDeck, startupID).Scan(&deck.Status)
	switch {
	case err == nil:
		sig.PitchDeck = &deck
	case !errors.Is(err, sql.ErrNoRows):
		return nil, apperrors.NewQueryExecutionFailedError("pitch_deck", err)
	}

	if err := s.db.QueryRowContext(ctx, queryTaskCounts, startupID).Scan(&sig.TotalTasks, &sig.CompletedTasks); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("task_counts", err)
	}
	if err := s.db.QueryRowContext(ctx, queryContactCounts, startupID).Scan(&sig.InvestorContacts, &sig.CustomerContacts); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("contact_counts", err)
	}
	if err := s.db.QueryRowContext(ctx, queryPitchDocuments, startupID).Scan(&sig.PitchDocuments); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("pitch_documents", err)
	}

	var formData []byte
	err = s.db.QueryRowContext(ctx, queryWizard, startupID).Scan(&formData)
	switch {
	case err == nil:
		if len(formData) > 0 {
			var answers WizardAnswers
			if jsonErr := json.Unmarshal(formData, &answers); jsonErr == nil {
				sig.Wizard = answers
			}
		}
	case !errors.Is(err, sql.ErrNoRows):
		return nil, apperrors.NewQueryExecutionFailedError("wizard_session", err)
	}

	return sig, nil
}

// SaveScore persists the overall score, breakdown and check time on the startup row.
func (s *PostgresStore) SaveScore(ctx context.Context, startupID string, score *Score) error {
	breakdown, err := json.Marshal(score.Breakdown)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	res, err := s.db.ExecContext(ctx, queryUpdateHealth, score.Overall, breakdown, score.LastCalculated, startupID)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewStartupNotFoundError(startupID)
	}
	return nil
}

// LoadStored returns the persisted health fields of a startup.
func (s *PostgresStore) LoadStored(ctx context.Context, startupID string) (*models.StartupHealth, error) {
	var (
		score     sql.NullInt64
		breakdown []byte
		checked   sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, queryStoredHealth, startupID).Scan(&score, &breakdown, &checked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewStartupNotFoundError(startupID)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("stored_health", err)
	}

	out := &models.StartupHealth{StartupID: startupID, ScoreBreakdown: breakdown}
	if score.Valid {
		v := int(score.Int64)
		out.HealthScore = &v
	}
	if checked.Valid {
		t := checked.Time
		out.LastHealthCheck = &t
	}
	return out, nil
}

// fresh reports whether a stored score checked at checked is still within ttl.
func fresh(checked *time.Time, now time.Time, ttl time.Duration) bool {
	return checked != nil && now.Sub(*checked) <= ttl
}
