package detection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dupscan/internal/domain"
	domdoc "github.com/kailas-cloud/dupscan/internal/domain/document"
	"github.com/kailas-cloud/dupscan/internal/domain/match"
	logpkg "github.com/kailas-cloud/dupscan/internal/logger"
	"github.com/kailas-cloud/dupscan/internal/metrics"
	"github.com/kailas-cloud/dupscan/internal/similarity"
	"github.com/kailas-cloud/dupscan/internal/usecase/compare"
	"github.com/kailas-cloud/dupscan/internal/usecase/report"
)

// Options configures one run.
type Options struct {
	Threshold float64
	Workers   int
	TextField domdoc.TextField
	AutoJunk  bool
	// Write hands a non-empty result to the exporter.
	Write bool
}

// DefaultOptions returns the stock run configuration.
func DefaultOptions() Options {
	return Options{
		Threshold: compare.DefaultThreshold,
		Workers:   compare.DefaultWorkers,
		TextField: domdoc.Raw,
		Write:     true,
	}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if !(o.Threshold >= 0 && o.Threshold <= 100) { // also rejects NaN
		return fmt.Errorf("threshold must be within [0, 100], got %v: %w", o.Threshold, domain.ErrInvalidRunOptions)
	}
	if o.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d: %w", o.Workers, domain.ErrInvalidRunOptions)
	}
	if _, err := domdoc.ParseTextField(string(o.TextField)); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidRunOptions, err)
	}
	return nil
}

// Result summarizes a run. Matches are ranked and survive a writer failure,
// so the caller can retry the write.
type Result struct {
	RunID     uuid.UUID
	Documents int
	Excluded  int
	Pairs     int64
	Matches   []match.Match
	Failures  []compare.TaskFailure
	Written   bool
	Duration  time.Duration
}

// Service runs fetch → compare → rank → export.
type Service struct {
	source           DocumentSource
	exporter         Exporter
	sourceName       string
	progressInterval time.Duration
	logger           *zap.Logger
}

// New creates a detection service reading sourceName from source.
func New(source DocumentSource, exporter Exporter, sourceName string, logger *zap.Logger) *Service {
	return &Service{
		source:           source,
		exporter:         exporter,
		sourceName:       sourceName,
		progressInterval: compare.DefaultProgressInterval,
		logger:           logger,
	}
}

// WithProgressInterval configures the scheduler's progress log cadence.
func (s *Service) WithProgressInterval(d time.Duration) *Service {
	if d > 0 {
		s.progressInterval = d
	}
	return s
}

// Run executes one detection run. Store failures abort before any comparison
// (ErrStoreUnavailable); writer failures are returned with the computed
// result (ErrWriterFailure).
func (s *Service) Run(ctx context.Context, opts Options) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	textField, _ := domdoc.ParseTextField(string(opts.TextField))

	start := time.Now()
	res := Result{RunID: uuid.New()}
	ctx, logger := logpkg.Scoped(ctx, s.logger, zap.String("run_id", res.RunID.String()))

	docs, err := s.source.Fetch(ctx, domdoc.Filter{Source: s.sourceName, TextField: textField})
	if err != nil {
		s.observe(start, "store_error")
		logger.Error("Failed to fetch documents", zap.String("source", s.sourceName), zap.Error(err))
		return res, fmt.Errorf("fetch documents: %w: %w", domain.ErrStoreUnavailable, err)
	}

	corpus := compare.NewCorpus(docs)
	res.Documents = corpus.Len()
	res.Excluded = corpus.Excluded()
	metrics.DocumentsLoaded.Set(float64(res.Documents))
	metrics.DocumentsExcluded.Set(float64(res.Excluded))

	logger.Info("Documents loaded, starting comparison",
		zap.String("source", s.sourceName),
		zap.Int("documents", res.Documents),
		zap.Int("excluded", res.Excluded),
		zap.String("text_field", string(textField)),
		zap.Float64("threshold", opts.Threshold),
	)

	scorer := similarity.NewScorer(similarity.Options{AutoJunk: opts.AutoJunk})
	scheduler := compare.NewScheduler(compare.NewEngine(scorer, opts.Threshold), logger).
		WithWorkers(opts.Workers).
		WithProgressInterval(s.progressInterval)

	out, err := scheduler.Run(ctx, corpus)
	if err != nil {
		s.observe(start, "cancelled")
		return res, fmt.Errorf("compare documents: %w", err)
	}

	ranked := report.Rank(out.Matches)
	res.Pairs = out.Pairs
	res.Matches = ranked.Matches
	res.Failures = out.Failures

	logger.Info("Comparison finished",
		zap.Int64("pairs_compared", res.Pairs),
		zap.Int("matches", len(res.Matches)),
		zap.Int("failed_tasks", len(res.Failures)),
		zap.Int("workers", scheduler.Workers()),
	)

	if opts.Write {
		written, err := s.exporter.Export(ctx, ranked)
		res.Written = written
		if err != nil {
			res.Duration = time.Since(start)
			s.observe(start, "writer_error")
			logger.Error("Failed to write report", zap.Error(err))
			return res, fmt.Errorf("write report: %w", err)
		}
	}

	res.Duration = time.Since(start)
	s.observe(start, "ok")
	logger.Info("Run completed",
		zap.Bool("report_written", res.Written),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

func (s *Service) observe(start time.Time, status string) {
	metrics.RunDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
}

// IsStoreFailure reports whether err came from the document store.
func IsStoreFailure(err error) bool { return errors.Is(err, domain.ErrStoreUnavailable) }

// IsWriterFailure reports whether err came from the report writer.
func IsWriterFailure(err error) bool { return errors.Is(err, domain.ErrWriterFailure) }
