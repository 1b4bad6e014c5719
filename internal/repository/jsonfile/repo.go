// Package jsonfile reads the corpus from JSON exports on disk. A source is
// either {dir}/{name}.json or every *.json file under {dir}/{name}/. Each
// file holds one record object or an array of them.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	domdoc "github.com/kailas-cloud/dupscan/internal/domain/document"
	logpkg "github.com/kailas-cloud/dupscan/internal/logger"
)

// Repo implements detection.DocumentSource over a directory of JSON files.
type Repo struct {
	dir    string
	fields domdoc.FieldMapping
}

// New creates a repository rooted at dir.
func New(dir string, fields domdoc.FieldMapping) *Repo {
	return &Repo{dir: dir, fields: fields.WithDefaults()}
}

// Fetch loads every record of filter.Source in file name order, then record
// order within each file.
func (r *Repo) Fetch(ctx context.Context, filter domdoc.Filter) ([]domdoc.Document, error) {
	files, err := r.sourceFiles(filter.Source)
	if err != nil {
		return nil, err
	}

	var docs []domdoc.Document
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := readRecords(path)
		if err != nil {
			return nil, err
		}
		name := filepath.Base(path)
		for i, rec := range records {
			if rec == nil {
				logpkg.FromContext(ctx).Warn("Skipping non-object record",
					zap.String("file", name), zap.Int("index", i))
				continue
			}
			docs = append(docs, r.toDocument(rec, name, i, filter.TextField))
		}
	}

	return docs, nil
}

// Ping checks the root directory is readable.
func (r *Repo) Ping(_ context.Context) error {
	info, err := os.Stat(r.dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w", r.dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", r.dir)
	}
	return nil
}

func (r *Repo) sourceFiles(source string) ([]string, error) {
	if source == "" || strings.Contains(source, "..") {
		return nil, fmt.Errorf("invalid source name %q", source)
	}

	base := filepath.Join(r.dir, source)
	info, err := os.Stat(base)
	switch {
	case err == nil && info.IsDir():
		matches, err := filepath.Glob(filepath.Join(base, "*.json"))
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", base, err)
		}
		sort.Strings(matches)
		return matches, nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("stat %s: %w", base, err)
	}

	file := base + ".json"
	if _, err := os.Stat(file); err != nil {
		return nil, fmt.Errorf("source %q: %w", source, err)
	}
	return []string{file}, nil
}

// readRecords decodes a file into records. Non-object array elements come
// back as nil entries so their positions stay stable.
func readRecords(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	switch t := v.(type) {
	case map[string]any:
		return []map[string]any{t}, nil
	case []any:
		out := make([]map[string]any, len(t))
		for i, el := range t {
			if m, ok := el.(map[string]any); ok {
				out[i] = m
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("decode %s: want object or array, got %T", path, v)
	}
}

func (r *Repo) toDocument(rec map[string]any, file string, idx int, tf domdoc.TextField) domdoc.Document {
	id := domdoc.StringOf(rec[r.fields.ID])
	if id == "" {
		id = file + "#" + strconv.Itoa(idx)
	}
	return domdoc.New(
		id,
		domdoc.StringOf(rec[r.fields.ExternalID]),
		domdoc.StringOf(rec[r.fields.Origin]),
		domdoc.TextFromAny(rec[r.fields.TextColumn(tf)]),
	)
}
