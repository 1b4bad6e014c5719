// Package document reads the corpus from Redis/Valkey hashes stored under
// {prefix}{collection}:{id}.
package document

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	domdoc "github.com/kailas-cloud/dupscan/internal/domain/document"
	logpkg "github.com/kailas-cloud/dupscan/internal/logger"
)

// DefaultKeyPrefix namespaces all document keys.
const DefaultKeyPrefix = "dupscan:"

const defaultBatchSize = 500

// store is the consumer interface for documents (ISP).
type store interface {
	Ping(ctx context.Context) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
}

// Repo implements detection.DocumentSource over Redis hashes.
type Repo struct {
	store     store
	keyPrefix string
	fields    domdoc.FieldMapping
	batchSize int
}

// New creates a document repository.
func New(s store, keyPrefix string, fields domdoc.FieldMapping) *Repo {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &Repo{
		store:     s,
		keyPrefix: keyPrefix,
		fields:    fields.WithDefaults(),
		batchSize: defaultBatchSize,
	}
}

// WithBatchSize configures how many hashes are read per pipeline.
func (r *Repo) WithBatchSize(n int) *Repo {
	if n > 0 {
		r.batchSize = n
	}
	return r
}

// Fetch returns every document of filter.Source. SCAN order is arbitrary, so
// keys are sorted to keep pair enumeration reproducible.
func (r *Repo) Fetch(ctx context.Context, filter domdoc.Filter) ([]domdoc.Document, error) {
	ns := namespace(r.keyPrefix, filter.Source)

	keys, err := r.store.Scan(ctx, ns+"*")
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", ns, err)
	}
	sort.Strings(keys)

	docs := make([]domdoc.Document, 0, len(keys))
	for start := 0; start < len(keys); start += r.batchSize {
		end := min(start+r.batchSize, len(keys))
		batch := keys[start:end]

		hashes, err := r.store.HGetAllMulti(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("read documents %d-%d: %w", start, end, err)
		}
		for i, m := range hashes {
			switch {
			case m == nil:
				logpkg.FromContext(ctx).Warn("Skipping key that is not a hash", zap.String("key", batch[i]))
				continue
			case len(m) == 0:
				// deleted between SCAN and HGETALL
				logpkg.FromContext(ctx).Debug("Document vanished during fetch", zap.String("key", batch[i]))
				continue
			}
			docs = append(docs, parseHashFields(extractDocID(batch[i], ns), m, r.fields, filter.TextField))
		}
	}

	return docs, nil
}

// Ping checks that the backing store is reachable.
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}
