package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/kailas-cloud/dupscan/internal/domain/match"
)

const defaultExcelSheet = "Sheet1"

func writeXLSX(w io.Writer, sheet string, matches []match.Match) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory workbook

	if sheet != defaultExcelSheet {
		if err := f.SetSheetName(defaultExcelSheet, sheet); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i, m := range matches {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]any, 0, len(Header))
		for _, v := range row(m) {
			values = append(values, v)
		}
		values = append(values, m.Score)
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}

	return f.Write(w)
}
