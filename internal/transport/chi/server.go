// Package chi exposes detection runs over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dupscan/internal/domain"
	domdoc "github.com/kailas-cloud/dupscan/internal/domain/document"
	"github.com/kailas-cloud/dupscan/internal/metrics"
	"github.com/kailas-cloud/dupscan/internal/usecase/detection"
	healthuc "github.com/kailas-cloud/dupscan/internal/usecase/health"
)

// Runner executes one detection run.
type Runner interface {
	Run(ctx context.Context, opts detection.Options) (detection.Result, error)
}

// HealthChecker aggregates dependency checks.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, res *detection.Result) bool

// Server serves health, metrics and run requests. Runs are CPU-bound and
// read the whole corpus, so at most one executes at a time.
type Server struct {
	runner        Runner
	health        HealthChecker
	defaults      detection.Options
	running       sync.Mutex
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP server. defaults fill parameters a request omits.
func NewServer(runner Runner, health HealthChecker, defaults detection.Options, logger *zap.Logger) *Server {
	s := &Server{
		runner:   runner,
		health:   health,
		defaults: defaults,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRunOptions, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusBadGateway, ErrorCodeStoreUnavailable),
		writerFailureHandler,
		cancelledHandler,
	}
	return s
}

// Router builds the chi router with the middleware chain.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(recoverJSON(s.logger))
	r.Use(requestLog(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.HTTPMiddleware())

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Post("/v1/runs", s.CreateRun)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeBadRequest, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})
	return r
}

// CreateRun handles POST /v1/runs.
func (s *Server) CreateRun(w http.ResponseWriter, r *http.Request) {
	params, err := bindCreateRunParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	opts, err := s.optionsFromParams(params)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	if !s.running.TryLock() {
		writeError(w, http.StatusConflict, ErrorCodeRunInProgress, domain.ErrRunInProgress.Error())
		return
	}
	defer s.running.Unlock()

	res, err := s.runner.Run(r.Context(), opts)
	if res.RunID != uuid.Nil {
		w.Header().Set(runIDHeader, res.RunID.String())
	}
	if err != nil {
		s.handleDomainError(w, err, &res)
		return
	}

	writeJSON(w, http.StatusOK, runToResponse(&res))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func bindCreateRunParams(r *http.Request) (CreateRunParams, error) {
	var params CreateRunParams
	q := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, false, "threshold", q, &params.Threshold); err != nil {
		return params, errors.New("invalid format for parameter threshold")
	}
	if err := runtime.BindQueryParameter("form", true, false, "workers", q, &params.Workers); err != nil {
		return params, errors.New("invalid format for parameter workers")
	}
	if err := runtime.BindQueryParameter("form", true, false, "text_field", q, &params.TextField); err != nil {
		return params, errors.New("invalid format for parameter text_field")
	}
	if err := runtime.BindQueryParameter("form", true, false, "write", q, &params.Write); err != nil {
		return params, errors.New("invalid format for parameter write")
	}
	return params, nil
}

func (s *Server) optionsFromParams(p CreateRunParams) (detection.Options, error) {
	opts := s.defaults
	if p.Threshold != nil {
		opts.Threshold = *p.Threshold
	}
	if p.Workers != nil {
		opts.Workers = *p.Workers
	}
	if p.TextField != nil {
		tf, err := domdoc.ParseTextField(*p.TextField)
		if err != nil {
			return opts, err
		}
		opts.TextField = tf
	}
	if p.Write != nil {
		opts.Write = *p.Write
	}
	return opts, opts.Validate()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidRunOptions,
		domain.ErrStoreUnavailable,
		domain.ErrWriterFailure,
		context.Canceled,
		context.DeadlineExceeded,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, _ *detection.Result) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, safeDomainMessage(err))
		return true
	}
}

// writerFailureHandler returns the computed run alongside the error, so the
// client keeps the matches.
func writerFailureHandler(w http.ResponseWriter, err error, res *detection.Result) bool {
	if !errors.Is(err, domain.ErrWriterFailure) {
		return false
	}
	run := runToResponse(res)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Code:    ErrorCodeWriterFailure,
		Message: safeDomainMessage(err),
		Run:     &run,
	})
	return true
}

func cancelledHandler(w http.ResponseWriter, err error, _ *detection.Result) bool {
	if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	writeError(w, http.StatusServiceUnavailable, ErrorCodeCancelled, safeDomainMessage(err))
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error, res *detection.Result) {
	s.logger.Warn("run failed", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err, res) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
