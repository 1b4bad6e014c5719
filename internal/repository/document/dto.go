package document

import (
	"strings"

	domdoc "github.com/kailas-cloud/dupscan/internal/domain/document"
)

// parseHashFields converts a document hash into a domain Document. A hash
// without the selected text field yields a document with missing text.
func parseHashFields(id string, m map[string]string, fields domdoc.FieldMapping, tf domdoc.TextField) domdoc.Document {
	text := domdoc.MissingText()
	if v, ok := m[fields.TextColumn(tf)]; ok {
		text = domdoc.TextOf(v)
	}
	return domdoc.New(id, m[fields.ExternalID], m[fields.Origin], text)
}

func namespace(prefix, source string) string {
	return prefix + source + ":"
}

func extractDocID(key, ns string) string {
	return strings.TrimPrefix(key, ns)
}
