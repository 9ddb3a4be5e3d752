package core

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
)

func parseCSV(data []byte) (*Table, error) {
	r := csv.NewReader(newTextReader(bytes.NewReader(data)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var header []string
	var records [][]string

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, parseError("%v", err)
		}
		if isEmptyRow(rec) {
			continue
		}

		if header == nil {
			header = rec
			continue
		}

		if len(rec) > len(header) {
			line, _ := r.FieldPos(0)
			return nil, parseError("line %d: expected %d fields, saw %d", line, len(header), len(rec))
		}
		records = append(records, rec)
	}

	if header == nil {
		return nil, parseError("no columns to parse from file")
	}

	return buildTextTable(header, records), nil
}
