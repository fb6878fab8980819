package scoring

import (
	"context"
	"errors"
	"testing"

	"startup-scoring/internal/common/logger"
	"startup-scoring/internal/common/metrics"
	"startup-scoring/internal/events"
	"startup-scoring/internal/history"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRecorder struct {
	snaps []history.Snapshot
	err   error
}

func (r *recordingRecorder) Record(_ context.Context, s history.Snapshot) error {
	r.snaps = append(r.snaps, s)
	return r.err
}

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return p.err
}

func TestService_Score_RecordsAndPublishes(t *testing.T) {
	rec := &recordingRecorder{}
	pub := &recordingPublisher{}
	svc := NewService(nil, rec, pub, nil, logger.NewTestLogger(t))

	before := testutil.ToFloat64(metrics.ScoresComputed.WithLabelValues("caution"))

	result := svc.Score(context.Background(), &Request{
		StartupID: "s-1",
		Dimensions: DimensionScores{
			ProblemClarity: 80, SolutionStrength: 70, MarketSize: 75, Competition: 60,
			BusinessModel: 65, TeamFit: 85, Timing: 70,
		},
	})

	assert.Equal(t, 73, result.OverallScore)
	assert.Equal(t, VerdictCaution, result.Verdict)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ScoresComputed.WithLabelValues("caution")))

	require.Len(t, rec.snaps, 1)
	assert.Equal(t, history.KindValidationScore, rec.snaps[0].Kind)
	assert.Equal(t, 73, rec.snaps[0].Score)
	assert.Equal(t, "caution", rec.snaps[0].Verdict)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TypeScoreComputed, pub.events[0].Type)
	assert.Equal(t, "s-1", pub.events[0].StartupID)
}

func TestService_Score_WithoutStartupHasNoSideEffects(t *testing.T) {
	rec := &recordingRecorder{}
	pub := &recordingPublisher{}
	svc := NewService(nil, rec, pub, nil, logger.NewNoOpLogger())

	result := svc.Score(context.Background(), &Request{Dimensions: Uniform(100), BiasCorrection: 10})
	assert.Equal(t, 100, result.OverallScore)
	assert.Equal(t, VerdictGo, result.Verdict)
	assert.Empty(t, rec.snaps)
	assert.Empty(t, pub.events)
}

func TestService_Score_SideEffectFailuresAreIgnored(t *testing.T) {
	svc := NewService(
		NewCalculator(WithVerdictThresholds(80, 60)),
		&recordingRecorder{err: errors.New("es down")},
		&recordingPublisher{err: errors.New("sns down")},
		nil,
		logger.NewTestLogger(t),
	)

	result := svc.Score(context.Background(), &Request{StartupID: "s-1", Dimensions: Uniform(75)})
	assert.Equal(t, 75, result.OverallScore)
	assert.Equal(t, VerdictCaution, result.Verdict)
}
