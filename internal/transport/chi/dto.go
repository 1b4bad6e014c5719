package chi

import (
	"time"

	"github.com/kailas-cloud/dupscan/internal/domain/match"
	"github.com/kailas-cloud/dupscan/internal/usecase/detection"
)

// ErrorCode is a machine-readable error class.
type ErrorCode string

// Error codes returned in ErrorResponse.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeRunInProgress    ErrorCode = "run_in_progress"
	ErrorCodeStoreUnavailable ErrorCode = "store_unavailable"
	ErrorCodeWriterFailure    ErrorCode = "writer_failure"
	ErrorCodeCancelled        ErrorCode = "cancelled"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	// Run carries the computed result when only the report write failed.
	Run *RunResponse `json:"run,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// CreateRunParams are the query parameters of POST /v1/runs.
type CreateRunParams struct {
	Threshold *float64 `form:"threshold"`
	Workers   *int     `form:"workers"`
	TextField *string  `form:"text_field"`
	Write     *bool    `form:"write"`
}

// RunFailure describes a pivot task dropped after a panic.
type RunFailure struct {
	Index int    `json:"index"`
	DocID string `json:"doc_id"`
	Error string `json:"error"`
}

// RunResponse is the body of POST /v1/runs.
type RunResponse struct {
	RunID      string        `json:"run_id"`
	Documents  int           `json:"documents"`
	Excluded   int           `json:"excluded"`
	Pairs      int64         `json:"pairs_compared"`
	MatchCount int           `json:"match_count"`
	Written    bool          `json:"report_written"`
	DurationMs int64         `json:"duration_ms"`
	Failures   []RunFailure  `json:"failures"`
	Matches    []match.Match `json:"matches"`
}

func runToResponse(r *detection.Result) RunResponse {
	failures := make([]RunFailure, len(r.Failures))
	for i, f := range r.Failures {
		failures[i] = RunFailure{Index: f.Index, DocID: f.DocID, Error: f.Err.Error()}
	}
	matches := r.Matches
	if matches == nil {
		matches = []match.Match{}
	}
	return RunResponse{
		RunID:      r.RunID.String(),
		Documents:  r.Documents,
		Excluded:   r.Excluded,
		Pairs:      r.Pairs,
		MatchCount: len(r.Matches),
		Written:    r.Written,
		DurationMs: r.Duration.Round(time.Millisecond).Milliseconds(),
		Failures:   failures,
		Matches:    matches,
	}
}
