// internal/api/server.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"startup-scoring/internal/common/auth"
	apperrors "startup-scoring/internal/common/errors"
	"startup-scoring/internal/common/logger"
	"startup-scoring/internal/common/ratelimit"
	"startup-scoring/internal/common/validation"
	"startup-scoring/internal/health"
	"startup-scoring/internal/scoring"
	"startup-scoring/internal/triggers"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	FunctionComputeScore    = "compute-score"
	FunctionHealthScorer    = "health-scorer"
	FunctionWorkflowTrigger = "workflow-trigger"

	functionsPrefix = "/functions/v1/"
	maxBodyBytes    = 1 << 20
)

type Authenticator interface {
	Authenticate(ctx context.Context, authorization string) (*auth.Principal, error)
}

type Authorizer interface {
	Authorize(ctx context.Context, p *auth.Principal, startupID string) error
}

type RateLimiter interface {
	Allow(ctx context.Context, key string) (ratelimit.Decision, error)
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps are the collaborators of the HTTP functions. Limiter may be nil.
type Deps struct {
	Authenticator Authenticator
	Authorizer    Authorizer
	Limiter       RateLimiter
	Validator     *validation.Validator
	Scoring       *scoring.Service
	Health        *health.Service
	Triggers      *triggers.Service
	Readiness     []ReadinessCheck
	// ProbesOnly serves /health, /ready and /metrics without the functions.
	ProbesOnly bool
	Logger     logger.Logger
}

type Server struct {
	deps    Deps
	logger  logger.Logger
	handler http.Handler
}

func NewServer(deps Deps) *Server {
	s := &Server{
		deps:   deps,
		logger: deps.Logger.WithFields(map[string]interface{}{"component": "http"}),
	}

	mux := http.NewServeMux()
	if !deps.ProbesOnly {
		mux.Handle(functionsPrefix+FunctionComputeScore, s.function(FunctionComputeScore, s.computeScore))
		mux.Handle(functionsPrefix+FunctionHealthScorer, s.function(FunctionHealthScorer, s.healthScorer))
		mux.Handle(functionsPrefix+FunctionWorkflowTrigger, s.function(FunctionWorkflowTrigger, s.workflowTrigger))
	}
	mux.HandleFunc("/health", s.healthz)
	mux.HandleFunc("/ready", s.readyz)
	mux.Handle("/metrics", promhttp.Handler())

	s.handler = withCORS(mux)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// NewHTTPServer wraps the handler with the configured timeouts.
func (s *Server) NewHTTPServer(addr string, readTimeout, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	failed := map[string]string{}
	for _, c := range s.deps.Readiness {
		if err := c.Check(ctx); err != nil {
			failed[c.Name] = err.Error()
		}
	}
	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "not_ready",
			"failed": failed,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}

type errorBody struct {
	Error   string                 `json:"error"`
	Code    apperrors.ErrorCode    `json:"code"`
	Details string                 `json:"details,omitempty"`
	Meta    map[string]interface{} `json:"metadata,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) int {
	stdErr := apperrors.Normalize(err)
	status := apperrors.HTTPStatus(stdErr)
	writeJSON(w, status, errorBody{
		Error:   stdErr.Message,
		Code:    stdErr.Code,
		Details: stdErr.Details,
		Meta:    stdErr.Metadata,
	})
	return status
}
