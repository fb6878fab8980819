// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"startup-scoring/internal/api"
	"startup-scoring/internal/common/auth"
	"startup-scoring/internal/common/aws"
	"startup-scoring/internal/common/camunda"
	"startup-scoring/internal/common/config"
	"startup-scoring/internal/common/database"
	"startup-scoring/internal/common/logger"
	"startup-scoring/internal/common/observability"
	"startup-scoring/internal/common/ratelimit"
	"startup-scoring/internal/common/validation"
	"startup-scoring/internal/events"
	"startup-scoring/internal/health"
	"startup-scoring/internal/history"
	"startup-scoring/internal/scoring"
	"startup-scoring/internal/triggers"
	"startup-scoring/pkg/registry"

	chs "startup-scoring/internal/workers/scoring/calculate-health-score"
	cvs "startup-scoring/internal/workers/scoring/compute-validation-score"
	ewt "startup-scoring/internal/workers/scoring/evaluate-workflow-triggers"
)

var connectRetry = &camunda.RetryConfig{
	MaxRetries: 15,
	BaseDelay:  2 * time.Second,
	MaxDelay:   30 * time.Second,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "console").Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...", zap.String("environment", cfg.App.Environment))

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Connections ---
	var pg *database.PostgresClient
	err = camunda.Retry(ctx, connectRetry, "PostgreSQL connection", func(ctx context.Context) error {
		var err error
		if pg, err = database.NewPostgres(cfg.Database.Postgres); err != nil {
			return err
		}
		return pg.Ping(ctx)
	})
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	var rdb *database.RedisClient
	err = camunda.Retry(ctx, connectRetry, "Redis connection", func(ctx context.Context) error {
		var err error
		if rdb, err = database.NewRedis(cfg.Database.Redis); err != nil {
			return err
		}
		return rdb.Ping(ctx)
	})
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	var recorder history.Recorder = history.NopRecorder{}
	var esClient *database.ElasticsearchClient
	if cfg.History.Enabled {
		err = camunda.Retry(ctx, connectRetry, "Elasticsearch connection", func(context.Context) error {
			var err error
			if esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch); err != nil {
				return err
			}
			return esClient.Ping()
		})
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		indexer := history.NewIndexer(esClient, cfg.History.Index)
		if err := indexer.EnsureIndex(ctx); err != nil {
			zapLog.Fatal("score history index setup failed", zap.Error(err))
		}
		recorder = indexer
		zapLog.Info("Elasticsearch connected successfully", zap.String("index", cfg.History.Index))
	}

	var publisher events.Publisher = events.NopPublisher{}
	if sns := cfg.Integrations.AWS.SNS; sns.Enabled {
		client, err := aws.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client init failed", zap.Error(err))
		}
		publisher = events.NewSNSPublisher(client, sns.TopicARN, log)
		zapLog.Info("SNS event publishing enabled", zap.String("topicArn", sns.TopicARN))
	}

	// --- Services ---
	reg, err := registry.Default()
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.Error(err))
	}
	schemas, err := reg.Schemas()
	if err != nil {
		zapLog.Fatal("activity registry schemas invalid", zap.Error(err))
	}
	validator, err := validation.NewValidator(schemas)
	if err != nil {
		zapLog.Fatal("schema compile failed", zap.Error(err))
	}

	calculator := scoring.NewCalculator(
		scoring.WithVerdictThresholds(cfg.Scoring.GoThreshold, cfg.Scoring.CautionThreshold),
	)
	scoringSvc := scoring.NewService(calculator, recorder, publisher, obs, log)

	ttl := time.Duration(cfg.Health.CacheTTLSeconds) * time.Second
	healthSvc := health.NewService(health.NewPostgresStore(pg.DB), log,
		health.WithCache(health.NewRedisCache(rdb.Client, ttl)),
		health.WithTTL(ttl),
		health.WithRecorder(recorder),
		health.WithPublisher(publisher),
		health.WithObservability(obs),
	)

	triggerSvc := triggers.NewService(
		triggers.NewEvaluator(triggers.DefaultRules()),
		triggers.NewPostgresStore(pg.DB),
		publisher,
		log,
	)

	// --- Workers ---
	var workers []worker.JobWorker
	if camundaEnabled(cfg) {
		zeebe, err := camunda.NewClient(ctx, cfg.Camunda.BrokerAddress)
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer zeebe.Close()
		zapLog.Info("Zeebe client connected successfully")

		zbc := zeebe.GetClient()
		start := func(taskType string, h camunda.JobHandler) {
			if jw := camunda.StartWorker(zbc, taskType, config.GetWorkerConfig(cfg, taskType), h, log, obs); jw != nil {
				workers = append(workers, jw)
			}
		}

		start(cvs.TaskType, cvs.NewHandler(
			cvs.LoadConfig(config.GetWorkerConfig(cfg, cvs.TaskType)), scoringSvc, validator, log))
		start(ewt.TaskType, ewt.NewHandler(
			ewt.LoadConfig(config.GetWorkerConfig(cfg, ewt.TaskType)), triggerSvc, validator, log))
		start(chs.TaskType, chs.NewHandler(
			chs.LoadConfig(config.GetWorkerConfig(cfg, chs.TaskType)), healthSvc, validator, log))

		zapLog.Info("All workers registered", zap.Int("count", len(workers)))
	}

	// --- HTTP ---
	var authenticator *auth.Authenticator
	if kc := cfg.Auth.Keycloak; kc.URL != "" {
		authenticator = auth.NewAuthenticator(
			auth.NewKeycloakClient(kc.URL, kc.Realm, kc.ClientID, kc.ClientSecret),
			cfg.Auth.ServiceToken,
		)
	} else {
		zapLog.Warn("keycloak not configured, only the service token is accepted")
		authenticator = auth.NewAuthenticator(nil, cfg.Auth.ServiceToken)
	}

	readiness := []api.ReadinessCheck{
		{Name: "postgres", Check: pg.Ping},
		{Name: "redis", Check: rdb.Ping},
	}
	if esClient != nil {
		readiness = append(readiness, api.ReadinessCheck{
			Name:  "elasticsearch",
			Check: func(context.Context) error { return esClient.Ping() },
		})
	}

	limiter := ratelimit.NewLimiter(rdb.Client, cfg.HTTP.RateLimit.Requests,
		time.Duration(cfg.HTTP.RateLimit.WindowSeconds)*time.Second)

	server := api.NewServer(api.Deps{
		Authenticator: authenticator,
		Authorizer:    auth.NewMembershipChecker(pg.DB),
		Limiter:       limiter,
		Validator:     validator,
		Scoring:       scoringSvc,
		Health:        healthSvc,
		Triggers:      triggerSvc,
		Readiness:     readiness,
		ProbesOnly:    !cfg.HTTP.Enabled,
		Logger:        log,
	})
	httpServer := server.NewHTTPServer(cfg.HTTP.Address,
		config.GetDuration(cfg.HTTP.ReadTimeout), config.GetDuration(cfg.HTTP.WriteTimeout))

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.HTTP.Address), zap.Bool("functions", cfg.HTTP.Enabled))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("http server stopped", zap.Error(err))
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	for _, jw := range workers {
		jw.Close()
		jw.AwaitClose()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http shutdown failed", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped")
}

func camundaEnabled(cfg *config.Config) bool {
	if cfg.Camunda.BrokerAddress == "" {
		return false
	}
	for _, taskType := range []string{cvs.TaskType, ewt.TaskType, chs.TaskType} {
		if config.IsWorkerEnabled(cfg, taskType) {
			return true
		}
	}
	return false
}
