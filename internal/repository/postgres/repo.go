// Package postgres reads the corpus from a PostgreSQL table.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domdoc "github.com/kailas-cloud/dupscan/internal/domain/document"
)

// Repo implements detection.DocumentSource over a PostgreSQL table.
type Repo struct {
	pool   *pgxpool.Pool
	fields domdoc.FieldMapping
}

// Connect creates a connection pool. The pool connects lazily so an
// unreachable server surfaces on Ping or Fetch.
func Connect(ctx context.Context, databaseURL string, fields domdoc.FieldMapping) (*Repo, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	return &Repo{pool: pool, fields: fields.WithDefaults()}, nil
}

// Fetch returns every row of the filter.Source table ordered by id.
func (r *Repo) Fetch(ctx context.Context, filter domdoc.Filter) ([]domdoc.Document, error) {
	rows, err := r.pool.Query(ctx, selectQuery(filter.Source, r.fields, filter.TextField))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", filter.Source, err)
	}
	defer rows.Close()

	var docs []domdoc.Document
	for rows.Next() {
		var id, ext, origin, text any
		if err := rows.Scan(&id, &ext, &origin, &text); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		docs = append(docs, domdoc.New(
			domdoc.StringOf(id), domdoc.StringOf(ext), domdoc.StringOf(origin), domdoc.TextFromAny(text),
		))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return docs, nil
}

// Ping checks the server is reachable.
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the pool.
func (r *Repo) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

func selectQuery(table string, f domdoc.FieldMapping, tf domdoc.TextField) string {
	id := pgx.Identifier{f.ID}.Sanitize()
	return fmt.Sprintf("SELECT %s, %s, %s, %s FROM %s ORDER BY %s",
		id,
		pgx.Identifier{f.ExternalID}.Sanitize(),
		pgx.Identifier{f.Origin}.Sanitize(),
		pgx.Identifier{f.TextColumn(tf)}.Sanitize(),
		tableIdentifier(table).Sanitize(),
		id,
	)
}

// tableIdentifier accepts an optional schema qualifier.
func tableIdentifier(table string) pgx.Identifier {
	for i := 0; i < len(table); i++ {
		if table[i] == '.' {
			return pgx.Identifier{table[:i], table[i+1:]}
		}
	}
	return pgx.Identifier{table}
}
