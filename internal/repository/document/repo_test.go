package document

import (
	"context"
	"errors"
	"testing"

	domdoc "github.com/kailas-cloud/dupscan/internal/domain/document"
)

// --- Mock store ---

type mockStore struct {
	pingFn  func(ctx context.Context) error
	scanFn  func(ctx context.Context, pattern string) ([]string, error)
	hgetFn  func(ctx context.Context, keys []string) ([]map[string]string, error)
	batches [][]string
}

func (m *mockStore) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	return m.scanFn(ctx, pattern)
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	m.batches = append(m.batches, append([]string(nil), keys...))
	return m.hgetFn(ctx, keys)
}

func newTestRepo(t *testing.T, hashes map[string]map[string]string) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{
		scanFn: func(_ context.Context, pattern string) ([]string, error) {
			if pattern != "dupscan:articles:*" {
				t.Errorf("unexpected pattern: %s", pattern)
			}
			keys := make([]string, 0, len(hashes))
			for k := range hashes {
				keys = append(keys, k)
			}
			return keys, nil
		},
		hgetFn: func(_ context.Context, keys []string) ([]map[string]string, error) {
			out := make([]map[string]string, len(keys))
			for i, k := range keys {
				out[i] = hashes[k]
			}
			return out, nil
		},
	}
	return New(ms, "", domdoc.FieldMapping{}), ms
}

var articlesFilter = domdoc.Filter{Source: "articles", TextField: domdoc.Raw}

// --- Fetch ---

func TestFetch_SortedProjection(t *testing.T) {
	repo, _ := newTestRepo(t, map[string]map[string]string{
		"dupscan:articles:b": {"id": "2", "url": "https://news.example/2", "content": "second"},
		"dupscan:articles:a": {"id": "1", "url": "https://news.example/1", "content": "first"},
		"dupscan:articles:c": {"id": "3", "url": "https://news.example/3", "lemmatized_content": "üçüncü"},
	})

	docs, err := repo.Fetch(context.Background(), articlesFilter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 docs, got %d", len(docs))
	}
	for i, want := range []string{"a", "b", "c"} {
		if docs[i].ID() != want {
			t.Errorf("docs[%d].ID() = %s, want %s", i, docs[i].ID(), want)
		}
	}
	if docs[0].ExternalID() != "1" || docs[0].Origin() != "https://news.example/1" {
		t.Errorf("unexpected projection: ext=%s origin=%s", docs[0].ExternalID(), docs[0].Origin())
	}
	if text, ok := docs[1].Text().Value(); !ok || text != "second" {
		t.Errorf("expected raw text 'second', got %q (valid=%v)", text, ok)
	}
	if docs[2].Text().Valid() {
		t.Error("doc without raw content must have missing text")
	}
}

func TestFetch_NormalizedField(t *testing.T) {
	repo, _ := newTestRepo(t, map[string]map[string]string{
		"dupscan:articles:a": {"content": "Koşuyordu", "lemmatized_content": "koş"},
	})

	docs, err := repo.Fetch(context.Background(), domdoc.Filter{Source: "articles", TextField: domdoc.Normalized})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text, _ := docs[0].Text().Value(); text != "koş" {
		t.Errorf("expected normalized text, got %q", text)
	}
}

func TestFetch_EmptyStringIsValidText(t *testing.T) {
	repo, _ := newTestRepo(t, map[string]map[string]string{
		"dupscan:articles:a": {"content": ""},
	})

	docs, err := repo.Fetch(context.Background(), articlesFilter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !docs[0].Text().Valid() {
		t.Error("empty content is still text")
	}
}

func TestFetch_Batches(t *testing.T) {
	hashes := map[string]map[string]string{}
	for _, id := range []string{"1", "2", "3", "4", "5"} {
		hashes["dupscan:articles:"+id] = map[string]string{"content": id}
	}
	repo, ms := newTestRepo(t, hashes)
	repo.WithBatchSize(2)

	docs, err := repo.Fetch(context.Background(), articlesFilter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 5 {
		t.Fatalf("expected 5 docs, got %d", len(docs))
	}
	if len(ms.batches) != 3 {
		t.Fatalf("expected 3 pipelines, got %d", len(ms.batches))
	}
	if ms.batches[0][0] != "dupscan:articles:1" || ms.batches[2][0] != "dupscan:articles:5" {
		t.Errorf("batches not in key order: %v", ms.batches)
	}
}

func TestFetch_SkipsVanishedKeys(t *testing.T) {
	repo, _ := newTestRepo(t, map[string]map[string]string{
		"dupscan:articles:a": {"content": "x"},
		"dupscan:articles:b": {},
	})

	docs, err := repo.Fetch(context.Background(), articlesFilter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 || docs[0].ID() != "a" {
		t.Fatalf("expected only doc a, got %d docs", len(docs))
	}
}

func TestFetch_SkipsNonHashKeys(t *testing.T) {
	repo, _ := newTestRepo(t, map[string]map[string]string{
		"dupscan:articles:1": {"content": "same text"},
		"dupscan:articles:2": nil, // a string or list under the collection prefix
		"dupscan:articles:3": {"content": "same text"},
	})

	docs, err := repo.Fetch(context.Background(), articlesFilter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 || docs[0].ID() != "1" || docs[1].ID() != "3" {
		t.Fatalf("expected docs 1 and 3, got %d docs", len(docs))
	}
}

func TestFetch_ScanError(t *testing.T) {
	repo, ms := newTestRepo(t, nil)
	ms.scanFn = func(_ context.Context, _ string) ([]string, error) {
		return nil, errors.New("connection reset")
	}

	if _, err := repo.Fetch(context.Background(), articlesFilter); err == nil {
		t.Fatal("expected error on SCAN failure")
	}
}

func TestFetch_HGetAllError(t *testing.T) {
	repo, ms := newTestRepo(t, map[string]map[string]string{"dupscan:articles:a": {"content": "x"}})
	ms.hgetFn = func(_ context.Context, _ []string) ([]map[string]string, error) {
		return nil, errors.New("LOADING")
	}

	if _, err := repo.Fetch(context.Background(), articlesFilter); err == nil {
		t.Fatal("expected error on HGETALL failure")
	}
}

func TestFetch_Empty(t *testing.T) {
	repo, ms := newTestRepo(t, map[string]map[string]string{})

	docs, err := repo.Fetch(context.Background(), articlesFilter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected no docs, got %d", len(docs))
	}
	if len(ms.batches) != 0 {
		t.Error("HGETALL must not be called for an empty namespace")
	}
}

func TestNew_CustomPrefix(t *testing.T) {
	ms := &mockStore{
		scanFn: func(_ context.Context, pattern string) ([]string, error) {
			if pattern != "news:articles:*" {
				t.Errorf("unexpected pattern: %s", pattern)
			}
			return nil, nil
		},
	}
	if _, err := New(ms, "news:", domdoc.FieldMapping{}).Fetch(context.Background(), articlesFilter); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- Ping ---

func TestPing(t *testing.T) {
	repo, ms := newTestRepo(t, nil)
	if err := repo.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ms.pingFn = func(_ context.Context) error { return errors.New("down") }
	if err := repo.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
