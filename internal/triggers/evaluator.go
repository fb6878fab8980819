// internal/triggers/evaluator.go
package triggers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	apperrors "startup-scoring/internal/common/errors"
)

// ScoreData is the envelope a score producer hands to the evaluator.
type ScoreData struct {
	StartupID      string                 `json:"startup_id"`
	OrgID          string                 `json:"org_id,omitempty"`
	Source         Source                 `json:"source"`
	OverallScore   *float64               `json:"overall_score,omitempty"`
	CategoryScores map[string]float64     `json:"category_scores,omitempty"`
	Context        map[string]interface{} `json:"context,omitempty"`
}

// Validate rejects envelopes the rule table cannot be applied to.
func (d *ScoreData) Validate() error {
	if d == nil {
		return apperrors.NewValidationError("score_data is required")
	}
	if d.StartupID == "" || d.Source == "" {
		return apperrors.NewValidationError("Missing startup_id or source")
	}
	if !d.Source.Valid() {
		return apperrors.NewValidationError(fmt.Sprintf("unknown source %q", d.Source))
	}
	return nil
}

// TaskDescriptor is a task produced by a fired rule, ready for persistence.
type TaskDescriptor struct {
	ID           string   `json:"id,omitempty"`
	StartupID    string   `json:"startup_id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Priority     Priority `json:"priority"`
	Tags         []string `json:"tags"`
	SourceType   Source   `json:"source_type"`
	RuleID       string   `json:"trigger_rule_id"`
	TriggerScore float64  `json:"trigger_score"`
	Threshold    float64  `json:"-"`
}

// SkippedRule is a rule that fired but was suppressed as a duplicate.
type SkippedRule struct {
	RuleID    string  `json:"rule_id"`
	Title     string  `json:"title"`
	Score     float64 `json:"-"`
	Threshold float64 `json:"-"`
}

type Evaluation struct {
	Tasks   []TaskDescriptor
	Skipped []SkippedRule
}

// DuplicateChecker reports whether an open task with that exact title exists.
type DuplicateChecker interface {
	ExistsPendingTaskWithTitle(ctx context.Context, startupID, title string) (bool, error)
}

type Evaluator struct {
	rules []Rule
}

// NewEvaluator uses rules, or the default table when none are given.
func NewEvaluator(rules []Rule) *Evaluator {
	if len(rules) == 0 {
		rules = defaultRules
	}
	return &Evaluator{rules: cloneRules(rules)}
}

func (e *Evaluator) Rules(source Source) []Rule {
	return FilterBySource(e.rules, source)
}

// Evaluate applies every rule for data.Source in table order. A rule fires when
// its score is present and strictly below its threshold, unless dup reports an
// open task with the same title.
func (e *Evaluator) Evaluate(ctx context.Context, data *ScoreData, dup DuplicateChecker) (*Evaluation, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}

	result := &Evaluation{Tasks: []TaskDescriptor{}, Skipped: []SkippedRule{}}
	for _, rule := range e.rules {
		if rule.Source != data.Source {
			continue
		}

		score, ok := resolveScore(rule, data)
		if !ok || score >= rule.Threshold {
			continue
		}

		duplicate, err := dup.ExistsPendingTaskWithTitle(ctx, data.StartupID, rule.Template.Title)
		if err != nil {
			return nil, err
		}
		if duplicate {
			result.Skipped = append(result.Skipped, SkippedRule{
				RuleID:    rule.ID,
				Title:     rule.Template.Title,
				Score:     score,
				Threshold: rule.Threshold,
			})
			continue
		}

		result.Tasks = append(result.Tasks, TaskDescriptor{
			StartupID:    data.StartupID,
			Title:        rule.Template.Title,
			Description:  Interpolate(rule.Template.Description, score, rule.Threshold, data.Context),
			Priority:     rule.Priority,
			Tags:         append([]string(nil), rule.Template.Tags...),
			SourceType:   data.Source,
			RuleID:       rule.ID,
			TriggerScore: score,
			Threshold:    rule.Threshold,
		})
	}
	return result, nil
}

// missing data never counts as a zero score
func resolveScore(rule Rule, data *ScoreData) (float64, bool) {
	if rule.Category == CategoryOverall {
		if data.OverallScore == nil {
			return 0, false
		}
		return *data.OverallScore, true
	}
	v, ok := data.CategoryScores[rule.Category]
	return v, ok
}

type placeholder struct {
	name     string
	key      string
	fallback string
}

var contextPlaceholders = []placeholder{
	{"GAP_AREA", "gap_area", "key areas"},
	{"BENCHMARK", "benchmark", "industry-standard metrics"},
	{"TARGET_SEGMENT", "target_segment", "target customers"},
	{"RISK_FACTORS", "risk_factors", "identified risks"},
}

// Interpolate fills {{SCORE}}, {{THRESHOLD}}, {{COMPLETION}} and the context
// placeholders. Context keys may be snake_case or the placeholder name itself.
func Interpolate(template string, score, threshold float64, vars map[string]interface{}) string {
	scoreText := formatNumber(score)
	pairs := []string{
		"{{SCORE}}", scoreText,
		"{{THRESHOLD}}", formatNumber(threshold),
	}
	for _, p := range contextPlaceholders {
		pairs = append(pairs, "{{"+p.name+"}}", lookup(vars, p.key, p.name, p.fallback))
	}
	pairs = append(pairs, "{{COMPLETION}}", lookup(vars, "completion", "COMPLETION", scoreText))

	return strings.NewReplacer(pairs...).Replace(template)
}

func lookup(vars map[string]interface{}, key, upper, fallback string) string {
	for _, k := range []string{key, upper} {
		if v, ok := vars[k]; ok && v != nil {
			return stringify(v)
		}
	}
	return fallback
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return formatNumber(t)
	case float32:
		return formatNumber(float64(t))
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
