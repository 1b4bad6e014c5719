package dupscan

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/dupscan/internal/domain"
	domdoc "github.com/kailas-cloud/dupscan/internal/domain/document"
	"github.com/kailas-cloud/dupscan/internal/domain/match"
	"github.com/kailas-cloud/dupscan/internal/report"
	"github.com/kailas-cloud/dupscan/internal/similarity"
	"github.com/kailas-cloud/dupscan/internal/usecase/compare"
	usecasereport "github.com/kailas-cloud/dupscan/internal/usecase/report"
)

// Detector compares document sets in memory. It is safe for concurrent use.
type Detector struct {
	scorer    *similarity.Scorer
	pairs     compare.Scorer
	threshold float64
	workers   int
	obs       *observer
}

// New creates a Detector.
func New(opts ...Option) (*Detector, error) {
	cfg := &detectorConfig{
		threshold: compare.DefaultThreshold,
		workers:   compare.DefaultWorkers,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if !(cfg.threshold >= 0 && cfg.threshold <= 100) { // also rejects NaN
		return nil, fmt.Errorf("dupscan: threshold must be within [0, 100], got %v: %w",
			cfg.threshold, domain.ErrInvalidRunOptions)
	}
	if cfg.workers < 1 {
		return nil, fmt.Errorf("dupscan: workers must be positive, got %d: %w",
			cfg.workers, domain.ErrInvalidRunOptions)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	scorer := similarity.NewScorer(similarity.Options{AutoJunk: cfg.autoJunk})
	return &Detector{
		scorer:    scorer,
		pairs:     scorer,
		threshold: cfg.threshold,
		workers:   cfg.workers,
		obs:       obs,
	}, nil
}

// Threshold returns the minimum matching score.
func (d *Detector) Threshold() float64 { return d.threshold }

// Score returns the similarity of a and b in [0, 100]. It is symmetric.
func (d *Detector) Score(a, b string) float64 {
	return d.scorer.Score(a, b)
}

// Compare scores every unordered pair of docs and returns the pairs at or
// above the threshold, highest score first. Equal scores keep corpus order.
// A cancelled ctx returns its error and no matches.
func (d *Detector) Compare(ctx context.Context, docs []Document) (*Result, error) {
	start := time.Now()

	corpus := compare.NewCorpus(toDomain(docs))
	engine := compare.NewEngine(d.pairs, d.threshold)
	outcome, err := compare.NewScheduler(engine, zap.NewNop()).
		WithWorkers(d.workers).
		Run(ctx, corpus)
	if err != nil {
		d.obs.observe("compare", start, err, "documents", len(docs))
		return nil, err
	}

	ranked := usecasereport.Rank(outcome.Matches)
	res := &Result{
		Matches:   fromDomainMatches(ranked.Matches),
		Documents: corpus.Len(),
		Excluded:  corpus.Excluded(),
		Pairs:     outcome.Pairs,
	}
	for _, f := range outcome.Failures {
		d.obs.taskFailed(f.Index, f.DocID, f.Err)
		res.Failures = append(res.Failures, TaskFailure{Index: f.Index, DocID: f.DocID, Err: f.Err})
	}

	d.obs.countMatches(len(res.Matches))
	d.obs.observe("compare", start, nil,
		"documents", res.Documents,
		"pairs", res.Pairs,
		"matches", len(res.Matches),
	)
	return res, nil
}

// WriteReport saves matches to path in the given order. format is "xlsx",
// "csv" or "json"; empty picks it from the file extension.
func (d *Detector) WriteReport(ctx context.Context, path, format string, matches []Match) error {
	start := time.Now()
	err := writeReport(ctx, path, format, matches)
	d.obs.observe("write_report", start, err, "path", path, "matches", len(matches))
	return err
}

func writeReport(ctx context.Context, path, format string, matches []Match) error {
	w, err := report.New(format, path, "")
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrWriterFailure, err)
	}
	if err := w.Write(ctx, toDomainMatches(matches)); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrWriterFailure, err)
	}
	return nil
}

func toDomain(docs []Document) []domdoc.Document {
	out := make([]domdoc.Document, len(docs))
	for i, d := range docs {
		out[i] = domdoc.New(d.ID, d.ExternalID, d.Origin, domdoc.TextFromAny(d.Text))
	}
	return out
}

func fromDomainMatches(ms []match.Match) []Match {
	out := make([]Match, len(ms))
	for i, m := range ms {
		out[i] = Match{
			Main:    Ref(m.A),
			Similar: Ref(m.B),
			Score:   m.Score,
		}
	}
	return out
}

func toDomainMatches(ms []Match) []match.Match {
	out := make([]match.Match, len(ms))
	for i, m := range ms {
		out[i] = match.Match{
			A:     match.Ref(m.Main),
			B:     match.Ref(m.Similar),
			Score: m.Score,
		}
	}
	return out
}
