package core

import (
	"bytes"

	"github.com/xuri/excelize/v2"
)

// parseExcel reads the first worksheet of an .xlsx workbook. The first
// non-blank row is the header. Cells are read as displayed.
func parseExcel(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, parseError("open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, parseError("workbook has no sheets")
	}

	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, parseError("read sheet %q: %v", sheets[0], err)
	}

	var header []string
	var records [][]string
	width := 0

	for _, rec := range raw {
		if isEmptyRow(rec) {
			continue
		}
		if header == nil {
			header = rec
			continue
		}
		if len(rec) > width {
			width = len(rec)
		}
		records = append(records, rec)
	}

	if header == nil {
		return nil, parseError("no columns to parse from file")
	}

	// Data cells beyond the header become unnamed columns.
	for len(header) < width {
		header = append(header, "")
	}

	return buildTextTable(header, records), nil
}
