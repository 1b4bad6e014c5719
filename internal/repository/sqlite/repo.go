// Package sqlite reads the corpus from a table in a SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	domdoc "github.com/kailas-cloud/dupscan/internal/domain/document"
)

// Repo implements detection.DocumentSource over a SQLite table.
type Repo struct {
	db     *sql.DB
	fields domdoc.FieldMapping
}

// Open opens the database at path. The file must already exist.
func Open(path string, fields domdoc.FieldMapping) (*Repo, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return NewFromDB(db, fields), nil
}

// NewFromDB wraps an already opened handle.
func NewFromDB(db *sql.DB, fields domdoc.FieldMapping) *Repo {
	return &Repo{db: db, fields: fields.WithDefaults()}
}

// Fetch returns every row of the filter.Source table ordered by id.
func (r *Repo) Fetch(ctx context.Context, filter domdoc.Filter) ([]domdoc.Document, error) {
	query := selectQuery(filter.Source, r.fields, filter.TextField)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", filter.Source, err)
	}
	defer rows.Close()

	var docs []domdoc.Document
	for rows.Next() {
		var id, ext, origin, text any
		if err := rows.Scan(&id, &ext, &origin, &text); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		docs = append(docs, domdoc.New(
			domdoc.StringOf(id), domdoc.StringOf(ext), domdoc.StringOf(origin), domdoc.TextFromAny(text),
		))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return docs, nil
}

// Ping verifies the database file can be read.
func (r *Repo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database handle.
func (r *Repo) Close() error {
	return r.db.Close()
}

func selectQuery(table string, f domdoc.FieldMapping, tf domdoc.TextField) string {
	return fmt.Sprintf("SELECT %s, %s, %s, %s FROM %s ORDER BY %s",
		quote(f.ID), quote(f.ExternalID), quote(f.Origin), quote(f.TextColumn(tf)),
		quote(table), quote(f.ID))
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
