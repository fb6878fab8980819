// internal/api/middleware.go
package api

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"startup-scoring/internal/common/auth"
	apperrors "startup-scoring/internal/common/errors"
	"startup-scoring/internal/common/metrics"
	"startup-scoring/internal/common/observability"
	"startup-scoring/internal/common/ratelimit"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// functionHandler serves one validated request body for an authenticated caller.
type functionHandler func(ctx context.Context, p *auth.Principal, body []byte) (interface{}, error)

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// function runs the shared request pipeline: method, bearer token, rate
// limit, body schema, then the handler, which checks membership itself.
func (s *Server) function(name string, handle functionHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		ctx, span := observability.StartSpan(r.Context(), "http."+name,
			attribute.String("http.request_id", requestID))
		var err error
		defer func() { observability.EndSpan(span, err) }()

		status := http.StatusOK
		defer func() {
			metrics.ObserveHTTP(name, status, time.Since(start).Seconds())
		}()

		var result interface{}
		result, err = s.serve(ctx, w, r, name, handle)
		if err != nil {
			status = writeError(w, err)
			fields := map[string]interface{}{
				"function":  name,
				"requestId": requestID,
				"status":    status,
				"error":     err.Error(),
			}
			if status >= http.StatusInternalServerError {
				s.logger.Error("function failed", fields)
			} else {
				s.logger.Debug("function rejected request", fields)
			}
			return
		}
		writeJSON(w, status, result)
	})
}

func (s *Server) serve(ctx context.Context, w http.ResponseWriter, r *http.Request, name string, handle functionHandler) (interface{}, error) {
	if r.Method != http.MethodPost {
		return nil, apperrors.NewMethodNotAllowedError(r.Method)
	}

	principal, err := s.deps.Authenticator.Authenticate(ctx, r.Header.Get("Authorization"))
	if err != nil {
		return nil, err
	}

	if err := s.rateLimit(ctx, w, principal, name); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid JSON body")
	}
	if s.deps.Validator != nil && s.deps.Validator.Has(name) {
		result, err := s.deps.Validator.ValidateJSON(name, body)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		if !result.Valid {
			return nil, result.Err()
		}
	}

	return handle(ctx, principal, body)
}

// rateLimit fails open when the limiter store is unreachable.
func (s *Server) rateLimit(ctx context.Context, w http.ResponseWriter, p *auth.Principal, name string) error {
	if s.deps.Limiter == nil || p.Service {
		return nil
	}
	d, err := s.deps.Limiter.Allow(ctx, ratelimit.Key(p.UserID, name))
	if err != nil {
		s.logger.Warn("rate limiter unavailable", map[string]interface{}{"function": name, "error": err})
		return nil
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	if !d.Allowed {
		w.Header().Set("Retry-After", strconv.Itoa(int(d.RetryAfter.Seconds()+0.5)))
		return apperrors.NewRateLimitedError("Too many requests. Please wait before recalculating.")
	}
	return nil
}
