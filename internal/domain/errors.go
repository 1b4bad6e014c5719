package domain

import "errors"

var (
	// ErrStoreUnavailable signals that the document store could not produce a corpus.
	ErrStoreUnavailable = errors.New("document store unavailable")
	// ErrWriterFailure signals that the report writer failed.
	ErrWriterFailure = errors.New("report writer failure")
	// ErrInvalidDocumentText signals a missing or non-text comparison value.
	// It is recovered locally: such documents are excluded from every pair.
	ErrInvalidDocumentText = errors.New("invalid document text")
	// ErrWorkerPanic signals a comparison task that panicked. Its matches are
	// dropped; the other tasks still contribute.
	ErrWorkerPanic = errors.New("comparison task panicked")
	// ErrUnknownTextField signals an unsupported text_field value.
	ErrUnknownTextField = errors.New("unknown text field")
	// ErrInvalidRunOptions signals out-of-range run options.
	ErrInvalidRunOptions = errors.New("invalid run options")
	// ErrRunInProgress signals that another comparison run holds the runner.
	ErrRunInProgress = errors.New("run already in progress")
)
