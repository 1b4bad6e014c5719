package report

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/kailas-cloud/dupscan/internal/domain"
	"github.com/kailas-cloud/dupscan/internal/domain/match"
)

// Ranked is a match list ordered by descending score.
type Ranked struct {
	Matches []match.Match
}

// Empty reports whether no pair met the threshold.
func (r Ranked) Empty() bool { return len(r.Matches) == 0 }

// Rank sorts matches by score, highest first. Ties keep their input order.
// The input slice is not modified.
func Rank(matches []match.Match) Ranked {
	out := slices.Clone(matches)
	slices.SortStableFunc(out, func(a, b match.Match) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return Ranked{Matches: out}
}

// Exporter hands ranked matches to a Writer.
type Exporter struct {
	writer Writer
	logger *zap.Logger
}

// NewExporter creates an Exporter.
func NewExporter(writer Writer, logger *zap.Logger) *Exporter {
	return &Exporter{writer: writer, logger: logger}
}

// Export writes r unless it is empty. It reports whether the writer was called.
func (e *Exporter) Export(ctx context.Context, r Ranked) (bool, error) {
	if r.Empty() {
		e.logger.Info("No matches above threshold, skipping report")
		return false, nil
	}
	if err := e.writer.Write(ctx, r.Matches); err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrWriterFailure, err)
	}
	return true, nil
}
