package report

import (
	"encoding/json"
	"io"

	"github.com/kailas-cloud/dupscan/internal/domain/match"
)

func writeJSON(w io.Writer, matches []match.Match) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if matches == nil {
		matches = []match.Match{}
	}
	return enc.Encode(matches)
}
