package detection

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/kailas-cloud/dupscan/internal/domain"
	domdoc "github.com/kailas-cloud/dupscan/internal/domain/document"
	"github.com/kailas-cloud/dupscan/internal/domain/match"
	"github.com/kailas-cloud/dupscan/internal/usecase/report"
)

// --- Mocks ---

type mockSource struct {
	docs      []domdoc.Document
	err       error
	gotFilter domdoc.Filter
	calls     int
}

func (m *mockSource) Fetch(_ context.Context, f domdoc.Filter) ([]domdoc.Document, error) {
	m.calls++
	m.gotFilter = f
	return m.docs, m.err
}

type mockWriter struct {
	err   error
	calls int
	got   []match.Match
}

func (m *mockWriter) Write(_ context.Context, matches []match.Match) error {
	m.calls++
	m.got = matches
	return m.err
}

func newTestService(t *testing.T, src *mockSource, w *mockWriter) *Service {
	t.Helper()
	logger := zaptest.NewLogger(t)
	return New(src, report.NewExporter(w, logger), "articles", logger)
}

func d(id, text string) domdoc.Document {
	return domdoc.New(id, "ext-"+id, "https://news.example/"+id, domdoc.TextOf(text))
}

// --- Tests ---

func TestRun_RanksAndWrites(t *testing.T) {
	src := &mockSource{docs: []domdoc.Document{
		d("1", "the quick brown fox"),
		d("2", "the quick brown fax"),
		d("3", "the quick brown fox"),
		domdoc.New("4", "ext-4", "", domdoc.MissingText()),
	}}
	w := &mockWriter{}

	res, err := newTestService(t, src, w).Run(context.Background(), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, domdoc.Filter{Source: "articles", TextField: domdoc.Raw}, src.gotFilter)
	assert.Equal(t, 4, res.Documents)
	assert.Equal(t, 1, res.Excluded)
	assert.Equal(t, int64(3), res.Pairs)
	require.Len(t, res.Matches, 3)
	assert.Equal(t, 100.0, res.Matches[0].Score)
	assert.Equal(t, [2]string{"1", "3"}, [2]string{res.Matches[0].A.ID, res.Matches[0].B.ID})
	assert.GreaterOrEqual(t, res.Matches[0].Score, res.Matches[1].Score)
	assert.GreaterOrEqual(t, res.Matches[1].Score, res.Matches[2].Score)
	assert.True(t, res.Written)
	assert.Equal(t, 1, w.calls)
	assert.Equal(t, res.Matches, w.got)
	assert.NotEqual(t, uuid.Nil, res.RunID)
}

func TestRun_NoMatchesSkipsWriter(t *testing.T) {
	src := &mockSource{docs: []domdoc.Document{d("1", "alpha beta"), d("2", "xyz qrs")}}
	w := &mockWriter{}

	res, err := newTestService(t, src, w).Run(context.Background(), DefaultOptions())
	require.NoError(t, err)

	assert.Empty(t, res.Matches)
	assert.False(t, res.Written)
	assert.Zero(t, w.calls)
}

func TestRun_StoreUnavailable(t *testing.T) {
	src := &mockSource{err: errors.New("connection refused")}
	w := &mockWriter{}

	_, err := newTestService(t, src, w).Run(context.Background(), DefaultOptions())

	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.True(t, IsStoreFailure(err))
	assert.ErrorContains(t, err, "fetch documents")
	assert.Zero(t, w.calls)
}

func TestRun_WriterFailureKeepsMatches(t *testing.T) {
	src := &mockSource{docs: []domdoc.Document{d("1", "same"), d("2", "same")}}
	w := &mockWriter{err: errors.New("permission denied")}

	res, err := newTestService(t, src, w).Run(context.Background(), DefaultOptions())

	require.ErrorIs(t, err, domain.ErrWriterFailure)
	assert.True(t, IsWriterFailure(err))
	assert.False(t, res.Written)
	require.Len(t, res.Matches, 1, "computed matches must survive a writer failure")
}

func TestRun_NormalizedFieldAndNoWrite(t *testing.T) {
	src := &mockSource{docs: []domdoc.Document{d("1", "same"), d("2", "same")}}
	w := &mockWriter{}
	opts := DefaultOptions()
	opts.TextField = domdoc.Normalized
	opts.Write = false

	res, err := newTestService(t, src, w).Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, domdoc.Normalized, src.gotFilter.TextField)
	assert.Len(t, res.Matches, 1)
	assert.False(t, res.Written)
	assert.Zero(t, w.calls)
}

func TestRun_Cancelled(t *testing.T) {
	src := &mockSource{docs: []domdoc.Document{d("1", "same"), d("2", "same")}}
	w := &mockWriter{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestService(t, src, w).Run(ctx, DefaultOptions())

	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, w.calls, "cancelled runs write nothing")
}

func TestRun_InvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"threshold below zero", func(o *Options) { o.Threshold = -1 }},
		{"threshold above 100", func(o *Options) { o.Threshold = 100.5 }},
		{"threshold NaN", func(o *Options) { o.Threshold = math.NaN() }},
		{"negative workers", func(o *Options) { o.Workers = -2 }},
		{"unknown text field", func(o *Options) { o.TextField = "stemmed" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := &mockSource{}
			opts := DefaultOptions()
			tc.mutate(&opts)

			_, err := newTestService(t, src, &mockWriter{}).Run(context.Background(), opts)
			require.ErrorIs(t, err, domain.ErrInvalidRunOptions)
			assert.Zero(t, src.calls)
		})
	}
}
