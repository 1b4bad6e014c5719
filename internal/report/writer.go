// Package report writes ranked matches to disk as xlsx, csv or json.
package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kailas-cloud/dupscan/internal/domain/match"
)

// Format is an output file format.
type Format string

const (
	XLSX Format = "xlsx"
	CSV  Format = "csv"
	JSON Format = "json"
)

// DefaultSheet is the worksheet name used when none is configured.
const DefaultSheet = "Similarities"

// reportPerm is the mode of a finished report file.
const reportPerm os.FileMode = 0o644

// Header is the column order shared by the tabular formats.
var Header = []string{
	"Main Content DB ID",
	"Similar Content DB ID",
	"Main Content ID",
	"Similar Content ID",
	"Main Content URL",
	"Similar Content URL",
	"Similarity Score",
}

// ResolveFormat returns format when set, otherwise infers it from the path
// extension.
func ResolveFormat(format, path string) (Format, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" {
		f = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch Format(f) {
	case XLSX, CSV, JSON:
		return Format(f), nil
	default:
		return "", fmt.Errorf("unsupported report format %q (want xlsx, csv or json)", f)
	}
}

// FileWriter writes the whole report to one file. The file is written to a
// temporary sibling and renamed, so a failed write never leaves a truncated
// report behind.
type FileWriter struct {
	format Format
	path   string
	sheet  string
}

// New creates the writer for format at path. sheet only applies to xlsx.
func New(format, path, sheet string) (*FileWriter, error) {
	if path == "" {
		return nil, errors.New("report path is required")
	}
	f, err := ResolveFormat(format, path)
	if err != nil {
		return nil, err
	}
	if sheet == "" {
		sheet = DefaultSheet
	}
	return &FileWriter{format: f, path: path, sheet: sheet}, nil
}

// Path returns the destination file.
func (w *FileWriter) Path() string { return w.path }

// Format returns the resolved output format.
func (w *FileWriter) Format() Format { return w.format }

// Write persists matches in the order given.
func (w *FileWriter) Write(ctx context.Context, matches []match.Match) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ensureDir(w.path); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(w.path), ".dupscan-report-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after rename

	switch w.format {
	case XLSX:
		err = writeXLSX(tmp, w.sheet, matches)
	case CSV:
		err = writeCSV(tmp, matches)
	case JSON:
		err = writeJSON(tmp, matches)
	}
	if err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s report: %w", w.format, err)
	}
	// CreateTemp opens with 0600 and the mode survives the rename.
	if err := tmp.Chmod(reportPerm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("move report into place: %w", err)
	}
	return nil
}

func row(m match.Match) []string {
	return []string{
		m.A.ID,
		m.B.ID,
		m.A.ExternalID,
		m.B.ExternalID,
		m.A.Origin,
		m.B.Origin,
	}
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir %s: %w", dir, err)
	}
	return nil
}
