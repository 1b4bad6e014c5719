package document

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/dupscan/internal/domain"
)

// TextField selects which text representation of a document is compared.
type TextField string

const (
	// Raw compares the document content as stored.
	Raw TextField = "raw"
	// Normalized compares the pre-normalized (lemmatized) variant.
	Normalized TextField = "normalized"
)

// ParseTextField converts a config value into a TextField. Empty means Raw.
func ParseTextField(s string) (TextField, error) {
	switch TextField(strings.ToLower(strings.TrimSpace(s))) {
	case "", Raw:
		return Raw, nil
	case Normalized:
		return Normalized, nil
	default:
		return "", fmt.Errorf("%w: %q (want raw or normalized)", domain.ErrUnknownTextField, s)
	}
}

// Text is the comparison text of a document. The zero value is missing text.
type Text struct {
	value string
	valid bool
}

// TextOf wraps a string as valid comparison text.
func TextOf(s string) Text { return Text{value: s, valid: true} }

// MissingText returns the missing/invalid text marker.
func MissingText() Text { return Text{} }

// TextFromAny projects a loosely typed store value: only strings are text.
func TextFromAny(v any) Text {
	switch t := v.(type) {
	case string:
		return TextOf(t)
	case *string:
		if t == nil {
			return MissingText()
		}
		return TextOf(*t)
	default:
		return MissingText()
	}
}

// Value returns the text and whether it is valid.
func (t Text) Value() (string, bool) { return t.value, t.valid }

// Valid reports whether the text can take part in a comparison.
func (t Text) Valid() bool { return t.valid }

// Document is an immutable corpus entry.
type Document struct {
	id         string
	externalID string
	origin     string
	text       Text
}

// New creates a Document. The id is assigned by the store and must be unique
// within one corpus snapshot.
func New(id, externalID, origin string, text Text) Document {
	return Document{id: id, externalID: externalID, origin: origin, text: text}
}

// ID returns the store-assigned identifier.
func (d *Document) ID() string { return d.id }

// ExternalID returns the source-system identifier.
func (d *Document) ExternalID() string { return d.externalID }

// Origin returns the provenance URL.
func (d *Document) Origin() string { return d.origin }

// Text returns the comparison text.
func (d *Document) Text() Text { return d.text }

// CheckText returns ErrInvalidDocumentText when the document cannot be compared.
func (d *Document) CheckText() error {
	if !d.text.valid {
		return fmt.Errorf("document %s: %w", d.id, domain.ErrInvalidDocumentText)
	}
	return nil
}
