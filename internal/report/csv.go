package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/kailas-cloud/dupscan/internal/domain/match"
)

func writeCSV(w io.Writer, matches []match.Match) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, m := range matches {
		rec := append(row(m), strconv.FormatFloat(m.Score, 'f', -1, 64))
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
