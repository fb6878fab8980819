// internal/health/service.go
package health

import (
	"context"
	"time"

	apperrors "startup-scoring/internal/common/errors"
	"startup-scoring/internal/common/logger"
	"startup-scoring/internal/common/metrics"
	"startup-scoring/internal/common/observability"
	"startup-scoring/internal/events"
	"startup-scoring/internal/history"

	"go.opentelemetry.io/otel/attribute"
)

// DefaultCacheTTL is how long a computed score is reused before recomputing.
const DefaultCacheTTL = time.Hour

const (
	modeComputed = "computed"
	modeRedis    = "redis"
	modeStored   = "stored"
)

// Service computes, persists and serves startup health scores.
type Service struct {
	store     Store
	cache     Cache
	recorder  history.Recorder
	publisher events.Publisher
	obs       *observability.Observability
	logger    logger.Logger
	ttl       time.Duration
	now       func() time.Time
}

type Option func(*Service)

// WithCache enables the Redis cache in front of the stored score.
func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

func WithRecorder(r history.Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithObservability(obs *observability.Observability) Option {
	return func(s *Service) { s.obs = obs }
}

// WithTTL sets the freshness window for cached and stored scores.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		recorder:  history.NopRecorder{},
		publisher: events.NopPublisher{},
		logger:    log.WithFields(map[string]interface{}{"component": "health-scorer"}),
		ttl:       DefaultCacheTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Calculate recomputes the health score from current signals and persists it.
func (s *Service) Calculate(ctx context.Context, startupID string) (score *Score, err error) {
	ctx, span := observability.StartSpan(ctx, "health.Calculate", attribute.String("startup.id", startupID))
	defer func() { observability.EndSpan(span, err) }()

	if startupID == "" {
		return nil, apperrors.NewValidationError("Missing startupId")
	}

	signals, err := s.store.LoadSignals(ctx, startupID)
	if err != nil {
		return nil, err
	}

	score = Aggregate(signals, s.now())
	if err := s.store.SaveScore(ctx, startupID, score); err != nil {
		return nil, err
	}
	metrics.HealthScoreCalculations.WithLabelValues(modeComputed).Inc()
	s.obs.RecordScore(ctx, "health", score.Overall)
	span.SetAttributes(attribute.Int("health.overall", score.Overall))

	if s.cache != nil {
		if err := s.cache.Set(ctx, startupID, score); err != nil {
			s.logger.Warn("health cache write failed", map[string]interface{}{"startupId": startupID, "error": err})
		}
	}

	snap := history.Snapshot{
		Kind:       history.KindHealthScore,
		StartupID:  startupID,
		Score:      score.Overall,
		Details:    score.Breakdown,
		RecordedAt: score.LastCalculated,
	}
	if err := s.recorder.Record(ctx, snap); err != nil {
		s.logger.Warn("health history write failed", map[string]interface{}{"startupId": startupID, "error": err})
	}

	if err := s.publisher.Publish(ctx, events.NewEvent(events.TypeHealthCalculated, startupID, score)); err != nil {
		s.logger.Warn("event publish failed", map[string]interface{}{"eventType": events.TypeHealthCalculated, "error": err})
	}

	s.logger.Info("health score calculated", map[string]interface{}{
		"startupId": startupID,
		"overall":   score.Overall,
		"trend":     score.Trend,
	})
	return score, nil
}

// GetCached serves a recent score without recomputing when one exists:
// the Redis entry first, then the persisted score if it was checked within
// the TTL. A stored score of zero counts as never computed.
func (s *Service) GetCached(ctx context.Context, startupID string) (*Score, error) {
	if startupID == "" {
		return nil, apperrors.NewValidationError("Missing startupId")
	}

	if s.cache != nil {
		score, ok, err := s.cache.Get(ctx, startupID)
		if err != nil {
			s.logger.Warn("health cache read failed", map[string]interface{}{"startupId": startupID, "error": err})
		}
		if ok {
			metrics.HealthScoreCalculations.WithLabelValues(modeRedis).Inc()
			return score, nil
		}
	}

	stored, err := s.store.LoadStored(ctx, startupID)
	if err != nil {
		return nil, err
	}
	if stored != nil && stored.HealthScore != nil && *stored.HealthScore != 0 && fresh(stored.LastHealthCheck, s.now(), s.ttl) {
		metrics.HealthScoreCalculations.WithLabelValues(modeStored).Inc()
		return &Score{
			Overall:        *stored.HealthScore,
			Trend:          0,
			Breakdown:      decodeBreakdown(stored.ScoreBreakdown),
			Warnings:       []string{},
			LastCalculated: stored.LastHealthCheck.UTC(),
		}, nil
	}

	return s.Calculate(ctx, startupID)
}
