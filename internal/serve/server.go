// Package serve exposes design generation and choice simulation over a
// small JSON HTTP API.
package serve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nvandessel/conjoint/internal/config"
	"github.com/nvandessel/conjoint/internal/models"
	"github.com/nvandessel/conjoint/internal/ratelimit"
	"github.com/nvandessel/conjoint/internal/session"
	"github.com/nvandessel/conjoint/internal/store"
)

// Error codes returned in the error envelope.
const (
	ErrCodeBadRequest     = "BAD_REQUEST"
	ErrCodeConfiguration  = "CONFIGURATION_ERROR"
	ErrCodePrecondition   = "PRECONDITION_FAILED"
	ErrCodeDesignMismatch = "DESIGN_MISMATCH"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeRateLimited    = "RATE_LIMITED"
	ErrCodeInternalError  = "INTERNAL_ERROR"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Server serves the HTTP API.
type Server struct {
	runner  *session.Runner
	cfg     config.ServerConfig
	logger  *slog.Logger
	limiter *ratelimit.Limiter // nil when limiting is disabled
}

// New returns a Server backed by runner.
func New(runner *session.Runner) *Server {
	s := &Server{
		runner: runner,
		cfg:    runner.Config.Server,
		logger: runner.Logger,
	}
	if s.cfg.RequestsPerMinute > 0 {
		s.limiter = ratelimit.PerMinute(float64(s.cfg.RequestsPerMinute), s.cfg.Burst)
	}
	return s
}

// Router builds the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(s.rateLimit)

	r.Get("/healthz", s.handleHealth)
	r.Get("/runs", s.handleListRuns)

	r.Route("/designs", func(r chi.Router) {
		r.Post("/", s.handleCreateDesign)
		r.Route("/{designId}", func(r chi.Router) {
			r.Get("/", s.handleGetDesign)
			r.Post("/simulations", s.handleCreateSimulation)
		})
	})
	r.Get("/simulations/{simulationId}", s.handleGetSimulation)

	return r
}

// ListenAndServe serves on the configured address until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Router(),
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// rateLimit rejects clients that exceed their token bucket with 429.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil || r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}
		err := s.limiter.Take(clientKey(r))
		var le *ratelimit.LimitError
		if errors.As(err, &le) {
			w.Header().Set("Retry-After", strconv.Itoa(int(le.RetryAfter.Seconds())+1))
			writeErrorResponse(w, r, http.StatusTooManyRequests, ErrCodeRateLimited, "rate limit exceeded", "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey identifies the caller by remote host.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// errorBody is the error envelope.
type errorBody struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	ErrorCode string `json:"error_code"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// successBody is the success envelope.
type successBody struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccessResponse(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeJSON(w, status, successBody{
		Success:   true,
		Data:      data,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func writeErrorResponse(w http.ResponseWriter, r *http.Request, status int, code, msg, field string) {
	writeJSON(w, status, errorBody{
		Error:     msg,
		ErrorCode: code,
		Field:     field,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// writeError maps domain errors onto status codes: configuration 400,
// precondition 409, design mismatch 422, unknown run 404.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var cfgErr *models.ConfigurationError
	switch {
	case errors.As(err, &cfgErr):
		writeErrorResponse(w, r, http.StatusBadRequest, ErrCodeConfiguration, err.Error(), cfgErr.Field)
	case errors.Is(err, models.ErrPrecondition):
		writeErrorResponse(w, r, http.StatusConflict, ErrCodePrecondition, err.Error(), "")
	case errors.Is(err, models.ErrDesignMismatch):
		writeErrorResponse(w, r, http.StatusUnprocessableEntity, ErrCodeDesignMismatch, err.Error(), "")
	case errors.Is(err, store.ErrNotFound):
		writeErrorResponse(w, r, http.StatusNotFound, ErrCodeNotFound, err.Error(), "")
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err,
			"request_id", middleware.GetReqID(r.Context()))
		writeErrorResponse(w, r, http.StatusInternalServerError, ErrCodeInternalError, "internal error", "")
	}
}
