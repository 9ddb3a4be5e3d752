package core

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTable decodes file content according to the declared file type.
//
// Malformed content returns an error wrapping ErrParse; a file type with no
// parser returns ErrUnsupportedFileType.
func ParseTable(ft FileType, data []byte) (*Table, error) {
	switch ft {
	case FileTypeCSV:
		return parseCSV(data)
	case FileTypeExcel:
		return parseExcel(data)
	case FileTypeJSON:
		return parseJSON(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFileType, ft)
	}
}

// normalizeHeader trims header names, names blank columns "Unnamed: i" and
// disambiguates duplicates with ".1", ".2" suffixes.
func normalizeHeader(raw []string) []string {
	out := make([]string, len(raw))
	taken := make(map[string]bool, len(raw))
	counts := make(map[string]int, len(raw))

	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}

		candidate := name
		for taken[candidate] {
			counts[name]++
			candidate = name + "." + strconv.Itoa(counts[name])
		}

		taken[candidate] = true
		out[i] = candidate
	}
	return out
}

// buildTextTable turns header and string records into a Table, padding short
// rows with nulls and coercing column types.
func buildTextTable(header []string, records [][]string) *Table {
	cols := normalizeHeader(header)
	rows := make([][]any, 0, len(records))

	for _, rec := range records {
		row := make([]any, len(cols))
		for i := range row {
			if i < len(rec) {
				row[i] = rec[i]
			}
		}
		rows = append(rows, row)
	}

	coerceColumns(rows, len(cols))
	return &Table{Columns: cols, Rows: rows}
}
