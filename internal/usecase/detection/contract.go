package detection

import (
	"context"

	domdoc "github.com/kailas-cloud/dupscan/internal/domain/document"
	"github.com/kailas-cloud/dupscan/internal/usecase/report"
)

// DocumentSource fetches the corpus in a stable order.
type DocumentSource interface {
	Fetch(ctx context.Context, filter domdoc.Filter) ([]domdoc.Document, error)
}

// Exporter writes a ranked report, skipping empty ones.
type Exporter interface {
	Export(ctx context.Context, r report.Ranked) (written bool, err error)
}
