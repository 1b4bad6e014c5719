package report

import (
	"context"

	"github.com/kailas-cloud/dupscan/internal/domain/match"
)

// Writer persists a ranked match list as a tabular report.
type Writer interface {
	Write(ctx context.Context, matches []match.Match) error
}
