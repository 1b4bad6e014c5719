// Package match holds the values produced by a comparison run.
package match

import domdoc "github.com/kailas-cloud/dupscan/internal/domain/document"

// Ref identifies one side of a Match in the report.
type Ref struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Origin     string `json:"origin"`
}

// RefOf projects a document into a report reference.
func RefOf(d *domdoc.Document) Ref {
	return Ref{ID: d.ID(), ExternalID: d.ExternalID(), Origin: d.Origin()}
}

// Match is a document pair whose similarity met the threshold.
// A is the pivot (lower corpus index), B the compared document.
type Match struct {
	A     Ref     `json:"main"`
	B     Ref     `json:"similar"`
	Score float64 `json:"score"`
}

// New creates a Match between two documents.
func New(a, b *domdoc.Document, score float64) Match {
	return Match{A: RefOf(a), B: RefOf(b), Score: score}
}
