package computevalidationscore

import (
	"context"
	"math"
	"testing"

	"startup-scoring/internal/common/config"
	apperrors "startup-scoring/internal/common/errors"
	"startup-scoring/internal/common/logger"
	"startup-scoring/internal/common/validation"
	"startup-scoring/internal/history"
	"startup-scoring/internal/scoring"
	"startup-scoring/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return LoadConfig(configWithTimeout(0))
}

func configWithTimeout(ms int) config.WorkerConfig {
	return config.WorkerConfig{Enabled: true, MaxJobsActive: 5, Timeout: ms, MaxRetries: 3}
}

func newTestValidator(t *testing.T) *validation.Validator {
	reg, err := registry.Default()
	require.NoError(t, err)
	schemas, err := reg.Schemas()
	require.NoError(t, err)
	v, err := validation.NewValidator(schemas)
	require.NoError(t, err)
	return v
}

type recordingRecorder struct {
	snaps []history.Snapshot
}

func (r *recordingRecorder) Record(_ context.Context, s history.Snapshot) error {
	r.snaps = append(r.snaps, s)
	return nil
}

func newTestHandler(t *testing.T, rec history.Recorder) *Handler {
	svc := scoring.NewService(nil, rec, nil, nil, logger.NewTestLogger(t))
	return NewHandler(createTestConfig(), svc, newTestValidator(t), logger.NewTestLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute(t *testing.T) {
	rec := &recordingRecorder{}
	h := newTestHandler(t, rec)

	output, err := h.Execute(context.Background(), &Input{
		StartupID: "s-1",
		Dimensions: scoring.DimensionScores{
			ProblemClarity: 80, SolutionStrength: 70, MarketSize: 75, Competition: 60,
			BusinessModel: 65, TeamFit: 85, Timing: 70,
		},
		MarketFactors: []scoring.FactorInput{
			{Name: "Market growth", Score: 8}, {Name: "Demand", Score: 7}, {Name: "Pricing", Score: 5}, {Name: "Timing", Score: 9},
		},
		ExecutionFactors: []scoring.FactorInput{
			{Name: "Team", Score: 8}, {Name: "Tech", Score: 6}, {Name: "GTM", Score: 5}, {Name: "Capital", Score: 3},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 73, output.Score.OverallScore)
	assert.Equal(t, scoring.VerdictCaution, output.Score.Verdict)
	assert.Equal(t, scoring.FactorStrong, output.Score.MarketFactors[0].Status)
	assert.Equal(t, scoring.FactorWeak, output.Score.ExecutionFactors[3].Status)
	assert.Len(t, rec.snaps, 1)
}

func TestHandler_Execute_Bias(t *testing.T) {
	h := newTestHandler(t, nil)

	output, err := h.Execute(context.Background(), &Input{Dimensions: scoring.Uniform(100), BiasCorrection: 10})
	require.NoError(t, err)
	assert.Equal(t, 100, output.Score.OverallScore)
	assert.Equal(t, scoring.VerdictGo, output.Score.Verdict)
	assert.NotNil(t, output.Score.MarketFactors)
}

// ==========================
// Input Parsing Tests
// ==========================

func TestHandler_ParseInput(t *testing.T) {
	h := newTestHandler(t, nil)

	tests := []struct {
		name      string
		variables string
		wantErr   bool
		validate  func(t *testing.T, in *Input)
	}{
		{
			name:      "camel case process variables",
			variables: `{"startupId":"s-1","dimensions":{"teamFit":85},"marketFactors":[{"name":"Demand","score":7}],"biasCorrection":-5,"unrelated":true}`,
			validate: func(t *testing.T, in *Input) {
				assert.Equal(t, "s-1", in.StartupID)
				assert.Equal(t, 85.0, in.Dimensions.TeamFit)
				assert.Len(t, in.MarketFactors, 1)
				assert.Equal(t, -5, in.BiasCorrection)
			},
		},
		{
			name:      "malformed numbers read as NaN",
			variables: `{"dimensions":{"timing":"soon","teamFit":null},"marketFactors":[{"name":"Demand","score":null,"description":null}],"executionFactors":null}`,
			validate: func(t *testing.T, in *Input) {
				assert.True(t, math.IsNaN(in.Dimensions.Timing))
				assert.True(t, math.IsNaN(in.Dimensions.TeamFit))
				require.Len(t, in.MarketFactors, 1)
				assert.True(t, math.IsNaN(in.MarketFactors[0].Score))
				assert.Empty(t, in.MarketFactors[0].Description)
				assert.Nil(t, in.ExecutionFactors)
			},
		},
		{name: "missing dimensions", variables: `{"startupId":"s-1"}`, wantErr: true},
		{name: "fractional bias", variables: `{"dimensions":{},"biasCorrection":1.5}`, wantErr: true},
		{name: "not json", variables: `{`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := h.parseInput(tt.variables)
			if tt.wantErr {
				assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidationFailed), "got %v", err)
				return
			}
			require.NoError(t, err)
			tt.validate(t, in)
		})
	}
}

func TestHandler_Execute_MalformedScoresClampToFloor(t *testing.T) {
	h := newTestHandler(t, nil)

	in, err := h.parseInput(`{"dimensions":{"problemClarity":null,"solutionStrength":"high","marketSize":100,"competition":100,"businessModel":100,"teamFit":100,"timing":100},"marketFactors":[{"name":"Demand","score":"n/a"}]}`)
	require.NoError(t, err)

	output, err := h.Execute(context.Background(), in)
	require.NoError(t, err)

	clamped := output.Score.Metadata.ClampedDimensions
	assert.Equal(t, 0.0, clamped["problemClarity"])
	assert.Equal(t, 0.0, clamped["solutionStrength"])
	assert.Equal(t, 70, output.Score.OverallScore)
	require.Len(t, output.Score.MarketFactors, 1)
	assert.Equal(t, 1.0, output.Score.MarketFactors[0].Score)
	assert.Equal(t, scoring.FactorWeak, output.Score.MarketFactors[0].Status)
}

func TestLoadConfig(t *testing.T) {
	assert.Equal(t, "10s", createTestConfig().Timeout.String())
	assert.Equal(t, "2.5s", LoadConfig(configWithTimeout(2500)).Timeout.String())
}
