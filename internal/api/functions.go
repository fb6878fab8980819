// internal/api/functions.go
package api

import (
	"context"
	"encoding/json"

	"startup-scoring/internal/common/auth"
	apperrors "startup-scoring/internal/common/errors"
	"startup-scoring/internal/health"
	"startup-scoring/internal/scoring"
	"startup-scoring/internal/triggers"
)

const (
	actionCalculate = "calculate"
	actionGetCached = "get_cached"

	actionProcessScore            = "process_score"
	actionProcessValidationReport = "process_validation_report"
	actionGetTriggerRules         = "get_trigger_rules"
	actionCheckDuplicates         = "check_duplicates"
)

type healthRequest struct {
	Action    string `json:"action"`
	StartupID string `json:"startupId"`
}

type workflowRequest struct {
	Action          string              `json:"action"`
	ScoreData       *triggers.ScoreData `json:"score_data"`
	ValidationRunID string              `json:"validation_run_id"`
	StartupID       string              `json:"startup_id"`
	Title           string              `json:"title"`
	Source          triggers.Source     `json:"source"`
}

type rulesResponse struct {
	Success bool            `json:"success"`
	Rules   []triggers.Rule `json:"rules"`
	Count   int             `json:"count"`
}

type duplicatesResponse struct {
	Success     bool `json:"success"`
	IsDuplicate bool `json:"is_duplicate"`
}

func decode(body []byte, v interface{}) error {
	if err := json.Unmarshal(body, v); err != nil {
		return apperrors.NewValidationError("Invalid JSON body")
	}
	return nil
}

func (s *Server) authorize(ctx context.Context, p *auth.Principal, startupID string) error {
	if s.deps.Authorizer == nil {
		return nil
	}
	return s.deps.Authorizer.Authorize(ctx, p, startupID)
}

func (s *Server) computeScore(ctx context.Context, p *auth.Principal, body []byte) (interface{}, error) {
	var req scoring.Request
	if err := decode(body, &req); err != nil {
		return nil, err
	}
	if req.StartupID != "" {
		if err := s.authorize(ctx, p, req.StartupID); err != nil {
			return nil, err
		}
	}
	return s.deps.Scoring.Score(ctx, &req), nil
}

// healthScorer treats a missing action as calculate.
func (s *Server) healthScorer(ctx context.Context, p *auth.Principal, body []byte) (interface{}, error) {
	var req healthRequest
	if err := decode(body, &req); err != nil {
		return nil, err
	}
	if req.StartupID == "" {
		return nil, apperrors.NewValidationError("startupId is required")
	}
	if err := s.authorize(ctx, p, req.StartupID); err != nil {
		return nil, err
	}

	var (
		score *health.Score
		err   error
	)
	switch req.Action {
	case "", actionCalculate:
		score, err = s.deps.Health.Calculate(ctx, req.StartupID)
	case actionGetCached:
		score, err = s.deps.Health.GetCached(ctx, req.StartupID)
	default:
		return nil, apperrors.NewUnknownActionError(req.Action)
	}
	if err != nil {
		return nil, err
	}
	return score, nil
}

func (s *Server) workflowTrigger(ctx context.Context, p *auth.Principal, body []byte) (interface{}, error) {
	var req workflowRequest
	if err := decode(body, &req); err != nil {
		return nil, err
	}

	switch req.Action {
	case actionProcessScore:
		if err := req.ScoreData.Validate(); err != nil {
			return nil, err
		}
		if err := s.authorize(ctx, p, req.ScoreData.StartupID); err != nil {
			return nil, err
		}
		return s.deps.Triggers.ProcessScore(ctx, req.ScoreData)

	case actionProcessValidationReport:
		run, err := s.deps.Triggers.ValidationRun(ctx, req.ValidationRunID)
		if err != nil {
			return nil, err
		}
		if err := s.authorize(ctx, p, run.StartupID); err != nil {
			return nil, err
		}
		data, err := s.deps.Triggers.ValidationReport(ctx, run)
		if err != nil {
			return nil, err
		}
		return s.deps.Triggers.ProcessScore(ctx, data)

	case actionGetTriggerRules:
		rules, err := s.deps.Triggers.Rules(req.Source)
		if err != nil {
			return nil, err
		}
		return rulesResponse{Success: true, Rules: rules, Count: len(rules)}, nil

	case actionCheckDuplicates:
		if req.StartupID == "" || req.Title == "" {
			return nil, apperrors.NewValidationError("Missing startup_id or title")
		}
		if err := s.authorize(ctx, p, req.StartupID); err != nil {
			return nil, err
		}
		dup, err := s.deps.Triggers.CheckDuplicates(ctx, req.StartupID, req.Title)
		if err != nil {
			return nil, err
		}
		return duplicatesResponse{Success: true, IsDuplicate: dup}, nil

	default:
		return nil, apperrors.NewUnknownActionError(req.Action)
	}
}
