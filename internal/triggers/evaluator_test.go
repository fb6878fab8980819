package triggers

import (
	"context"
	"errors"
	"testing"

	apperrors "startup-scoring/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

// fakeOracle treats titles in open as pending tasks.
type fakeOracle struct {
	open  map[string]bool
	err   error
	calls []string
}

func (f *fakeOracle) ExistsPendingTaskWithTitle(_ context.Context, startupID, title string) (bool, error) {
	f.calls = append(f.calls, startupID+"|"+title)
	if f.err != nil {
		return false, f.err
	}
	return f.open[title], nil
}

func float(v float64) *float64 { return &v }

func testRule(category string, threshold float64) Rule {
	return Rule{
		ID: "market_low", Source: SourceValidationReport, Category: category, Threshold: threshold, Priority: PriorityHigh,
		Template: TaskTemplate{Title: "Fix Market", Description: "Score {{SCORE}} under {{THRESHOLD}}", Tags: []string{"ai-triggered"}},
	}
}

// ==========================
// Rule Table
// ==========================

func TestDefaultRules_Table(t *testing.T) {
	rules := DefaultRules()
	require.Len(t, rules, 17)

	counts := map[Source]int{}
	ids := map[string]bool{}
	for _, r := range rules {
		counts[r.Source]++
		assert.False(t, ids[r.ID], "duplicate rule id %s", r.ID)
		ids[r.ID] = true
		assert.Contains(t, r.Template.Tags, "ai-triggered", r.ID)
		assert.True(t, r.Source.Valid(), r.ID)
		assert.Greater(t, r.Threshold, 0.0, r.ID)
	}
	assert.Equal(t, 8, counts[SourceHealthScore])
	assert.Equal(t, 5, counts[SourceValidationReport])
	assert.Equal(t, 2, counts[SourceInvestorScore])
	assert.Equal(t, 2, counts[SourceReadinessScore])
}

func TestDefaultRules_ReturnsCopy(t *testing.T) {
	rules := DefaultRules()
	rules[0].Threshold = 0
	rules[0].Template.Tags[0] = "mutated"

	fresh := DefaultRules()
	assert.Equal(t, 60.0, fresh[0].Threshold)
	assert.Equal(t, "foundation", fresh[0].Template.Tags[0])
}

func TestFilterBySource(t *testing.T) {
	rules := DefaultRules()
	assert.Len(t, FilterBySource(rules, SourceInvestorScore), 2)
	assert.Len(t, FilterBySource(rules, ""), 17)
	assert.Empty(t, FilterBySource(rules, Source("unknown")))
}

// ==========================
// Validation
// ==========================

func TestScoreData_Validate(t *testing.T) {
	tests := []struct {
		name    string
		data    *ScoreData
		wantErr bool
	}{
		{"nil", nil, true},
		{"missing startup", &ScoreData{Source: SourceHealthScore}, true},
		{"missing source", &ScoreData{StartupID: "s-1"}, true},
		{"unknown source", &ScoreData{StartupID: "s-1", Source: "gut_feeling"}, true},
		{"valid", &ScoreData{StartupID: "s-1", Source: SourceHealthScore}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate()
			if tt.wantErr {
				assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidationFailed))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEvaluate_InvalidInputTouchesNoRule(t *testing.T) {
	oracle := &fakeOracle{}
	_, err := NewEvaluator(nil).Evaluate(context.Background(), &ScoreData{Source: SourceHealthScore}, oracle)
	require.Error(t, err)
	assert.Empty(t, oracle.calls)
}

// ==========================
// Firing
// ==========================

func TestEvaluate_StrictThreshold(t *testing.T) {
	e := NewEvaluator([]Rule{testRule("market", 60)})

	tests := []struct {
		score float64
		fires bool
	}{
		{59, true},
		{59.99, true},
		{60, false},
		{61, false},
	}
	for _, tt := range tests {
		data := &ScoreData{StartupID: "s-1", Source: SourceValidationReport, CategoryScores: map[string]float64{"market": tt.score}}
		res, err := e.Evaluate(context.Background(), data, &fakeOracle{})
		require.NoError(t, err)
		if tt.fires {
			assert.Len(t, res.Tasks, 1, "score %v", tt.score)
		} else {
			assert.Empty(t, res.Tasks, "score %v", tt.score)
		}
	}
}

func TestEvaluate_MissingScoreNeverFires(t *testing.T) {
	e := NewEvaluator([]Rule{testRule("market", 60), testRule(CategoryOverall, 50)})
	data := &ScoreData{StartupID: "s-1", Source: SourceValidationReport, CategoryScores: map[string]float64{"product": 0}}

	oracle := &fakeOracle{}
	res, err := e.Evaluate(context.Background(), data, oracle)
	require.NoError(t, err)
	assert.Empty(t, res.Tasks)
	assert.Empty(t, res.Skipped)
	assert.Empty(t, oracle.calls)
}

func TestEvaluate_OverallCategory(t *testing.T) {
	e := NewEvaluator(nil)
	data := &ScoreData{StartupID: "s-1", Source: SourceValidationReport, OverallScore: float(42)}

	res, err := e.Evaluate(context.Background(), data, &fakeOracle{})
	require.NoError(t, err)
	require.Len(t, res.Tasks, 1)
	task := res.Tasks[0]
	assert.Equal(t, "validation_overall_critical", task.RuleID)
	assert.Equal(t, PriorityUrgent, task.Priority)
	assert.Equal(t, "Critical: Review Validation Results", task.Title)
	assert.Equal(t, 42.0, task.TriggerScore)
	assert.Equal(t, SourceValidationReport, task.SourceType)
	assert.Equal(t, "s-1", task.StartupID)
	assert.Contains(t, task.Description, "Overall validation score: 42/100.")
}

func TestEvaluate_OnlyRulesForSource(t *testing.T) {
	data := &ScoreData{
		StartupID: "s-1",
		Source:    SourceReadinessScore,
		CategoryScores: map[string]float64{
			"market":  10,
			"product": 10,
			"team":    10, // investor_score category, ignored here
		},
	}
	res, err := NewEvaluator(nil).Evaluate(context.Background(), data, &fakeOracle{})
	require.NoError(t, err)
	require.Len(t, res.Tasks, 2)
	assert.Equal(t, "market_fit_low", res.Tasks[0].RuleID)
	assert.Equal(t, "product_incomplete", res.Tasks[1].RuleID)
	assert.Equal(t, "Run 10 customer interviews with target customers to validate problem-solution fit.", res.Tasks[0].Description)
}

func TestEvaluate_DuplicateSuppression(t *testing.T) {
	e := NewEvaluator(nil)
	data := &ScoreData{
		StartupID:      "s-1",
		Source:         SourceHealthScore,
		CategoryScores: map[string]float64{"problemClarity": 30, "solutionFit": 30},
	}
	oracle := &fakeOracle{open: map[string]bool{"Clarify Problem Statement": true}}

	res, err := e.Evaluate(context.Background(), data, oracle)
	require.NoError(t, err)

	require.Len(t, res.Tasks, 1)
	assert.Equal(t, "solution_fit_low", res.Tasks[0].RuleID)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "problem_clarity_low", res.Skipped[0].RuleID)
	assert.Equal(t, []string{"s-1|Clarify Problem Statement", "s-1|Define Unique Value Proposition"}, oracle.calls)
}

func TestEvaluate_OracleError(t *testing.T) {
	data := &ScoreData{StartupID: "s-1", Source: SourceHealthScore, CategoryScores: map[string]float64{"pitch": 0}}
	_, err := NewEvaluator(nil).Evaluate(context.Background(), data, &fakeOracle{err: errors.New("db down")})
	assert.EqualError(t, err, "db down")
}

func TestEvaluate_TagsAreCopied(t *testing.T) {
	e := NewEvaluator(nil)
	data := &ScoreData{StartupID: "s-1", Source: SourceHealthScore, CategoryScores: map[string]float64{"pitch": 0}}

	res, err := e.Evaluate(context.Background(), data, &fakeOracle{})
	require.NoError(t, err)
	res.Tasks[0].Tags[0] = "mutated"

	res, err = e.Evaluate(context.Background(), data, &fakeOracle{})
	require.NoError(t, err)
	assert.Equal(t, "pitch", res.Tasks[0].Tags[0])
}

// ==========================
// Interpolation
// ==========================

func TestInterpolate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		score    float64
		vars     map[string]interface{}
		want     string
	}{
		{
			name:     "score and threshold",
			template: "{{SCORE}}/100 (threshold: {{THRESHOLD}})",
			score:    45,
			want:     "45/100 (threshold: 60)",
		},
		{
			name:     "fractional score",
			template: "{{SCORE}}",
			score:    59.5,
			want:     "59.5",
		},
		{
			name:     "fallbacks",
			template: "{{GAP_AREA}}|{{BENCHMARK}}|{{TARGET_SEGMENT}}|{{RISK_FACTORS}}|{{COMPLETION}}",
			score:    12,
			want:     "key areas|industry-standard metrics|target customers|identified risks|12",
		},
		{
			name:     "lowercase context keys",
			template: "{{GAP_AREA}} {{COMPLETION}}%",
			score:    12,
			vars:     map[string]interface{}{"gap_area": "go-to-market", "completion": 35.0},
			want:     "go-to-market 35%",
		},
		{
			name:     "uppercase context keys",
			template: "{{TARGET_SEGMENT}}",
			vars:     map[string]interface{}{"TARGET_SEGMENT": "dentists"},
			want:     "dentists",
		},
		{
			name:     "lowercase wins over uppercase",
			template: "{{BENCHMARK}}",
			vars:     map[string]interface{}{"benchmark": "CAC", "BENCHMARK": "LTV"},
			want:     "CAC",
		},
		{
			name:     "repeated placeholder",
			template: "{{SCORE}} and {{SCORE}}",
			score:    7,
			want:     "7 and 7",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Interpolate(tt.template, tt.score, 60, tt.vars))
		})
	}
}
