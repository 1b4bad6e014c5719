package dupscan

import "github.com/kailas-cloud/dupscan/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrWriterFailure       = domain.ErrWriterFailure
	ErrInvalidDocumentText = domain.ErrInvalidDocumentText
	ErrInvalidRunOptions   = domain.ErrInvalidRunOptions
	ErrWorkerPanic         = domain.ErrWorkerPanic
)
