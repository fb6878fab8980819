// internal/scoring/service.go
package scoring

import (
	"context"

	"startup-scoring/internal/common/logger"
	"startup-scoring/internal/common/metrics"
	"startup-scoring/internal/common/observability"
	"startup-scoring/internal/events"
	"startup-scoring/internal/history"

	"go.opentelemetry.io/otel/attribute"
)

// Request is one scoring invocation. StartupID is optional; without it the
// result is returned but not recorded or announced.
type Request struct {
	StartupID        string          `json:"startupId,omitempty"`
	Dimensions       DimensionScores `json:"dimensions"`
	MarketFactors    []FactorInput   `json:"market_factors"`
	ExecutionFactors []FactorInput   `json:"execution_factors"`
	BiasCorrection   int             `json:"bias_correction"`
}

// Service wraps a Calculator with the side effects around a scoring run.
type Service struct {
	calculator *Calculator
	recorder   history.Recorder
	publisher  events.Publisher
	obs        *observability.Observability
	logger     logger.Logger
}

func NewService(calc *Calculator, recorder history.Recorder, publisher events.Publisher, obs *observability.Observability, log logger.Logger) *Service {
	if calc == nil {
		calc = NewCalculator()
	}
	if recorder == nil {
		recorder = history.NopRecorder{}
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		calculator: calc,
		recorder:   recorder,
		publisher:  publisher,
		obs:        obs,
		logger:     log.WithFields(map[string]interface{}{"component": "compute-score"}),
	}
}

// Score computes the result. Recording history and publishing the
// score.computed event are best effort; a scoring run never fails.
func (s *Service) Score(ctx context.Context, req *Request) *Result {
	ctx, span := observability.StartSpan(ctx, "scoring.ComputeScore")
	defer span.End()

	result := s.calculator.Compute(req.Dimensions, req.MarketFactors, req.ExecutionFactors, req.BiasCorrection)

	span.SetAttributes(
		attribute.Int("score.overall", result.OverallScore),
		attribute.String("score.verdict", string(result.Verdict)),
	)
	metrics.ScoresComputed.WithLabelValues(string(result.Verdict)).Inc()
	s.obs.RecordScore(ctx, "validation", result.OverallScore)

	if req.StartupID == "" {
		return result
	}

	snap := history.Snapshot{
		Kind:      history.KindValidationScore,
		StartupID: req.StartupID,
		Score:     result.OverallScore,
		Verdict:   string(result.Verdict),
		Details:   result.ScoresMatrix,
	}
	if err := s.recorder.Record(ctx, snap); err != nil {
		s.logger.Warn("score history write failed", map[string]interface{}{"startupId": req.StartupID, "error": err})
	}
	if err := s.publisher.Publish(ctx, events.NewEvent(events.TypeScoreComputed, req.StartupID, result)); err != nil {
		s.logger.Warn("event publish failed", map[string]interface{}{"eventType": events.TypeScoreComputed, "error": err})
	}

	s.logger.Info("score computed", map[string]interface{}{
		"startupId": req.StartupID,
		"overall":   result.OverallScore,
		"verdict":   result.Verdict,
	})
	return result
}
