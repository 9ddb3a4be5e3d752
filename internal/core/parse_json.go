package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// parseJSON accepts two shapes:
//
//	[{"name": "a", "age": 1}, ...]            records
//	{"name": ["a", ...], "age": [1, ...]}     columns as arrays
//	{"name": {"0": "a"}, "age": {"0": 1}}     columns keyed by row label
//
// The document is read token by token so column order follows the file.
func parseJSON(data []byte) (*Table, error) {
	dec := json.NewDecoder(newTextReader(bytes.NewReader(data)))
	dec.UseNumber()

	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return nil, parseError("no columns to parse from file")
	}
	if err != nil {
		return nil, parseError("%v", err)
	}

	var t *Table
	switch tok {
	case json.Delim('['):
		t, err = readJSONRecords(dec)
	case json.Delim('{'):
		t, err = readJSONColumns(dec)
	default:
		return nil, parseError("top-level JSON value must be an array of records or an object of columns")
	}
	if err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, parseError("unexpected data after top-level JSON value")
	}
	return t, nil
}

// columnIndex assigns positions to column names in first-seen order.
type columnIndex struct {
	names []string
	pos   map[string]int
}

func (c *columnIndex) add(name string) int {
	if c.pos == nil {
		c.pos = make(map[string]int)
	}
	if i, ok := c.pos[name]; ok {
		return i
	}
	c.pos[name] = len(c.names)
	c.names = append(c.names, name)
	return len(c.names) - 1
}

func readJSONRecords(dec *json.Decoder) (*Table, error) {
	var cols columnIndex
	var rows [][]any

	for n := 0; dec.More(); n++ {
		tok, err := dec.Token()
		if err != nil {
			return nil, parseError("record %d: %v", n, err)
		}
		if tok != json.Delim('{') {
			return nil, parseError("record %d is not an object", n)
		}

		row := make([]any, len(cols.names))
		for dec.More() {
			key, err := readJSONKey(dec)
			if err != nil {
				return nil, parseError("record %d: %v", n, err)
			}
			v, err := readJSONValue(dec)
			if err != nil {
				return nil, parseError("record %d, field %q: %v", n, key, err)
			}

			i := cols.add(key)
			for len(row) <= i {
				row = append(row, nil)
			}
			row[i] = v
		}
		if _, err := dec.Token(); err != nil {
			return nil, parseError("record %d: %v", n, err)
		}
		rows = append(rows, row)
	}
	if _, err := dec.Token(); err != nil {
		return nil, parseError("%v", err)
	}

	return &Table{Columns: cols.names, Rows: padRows(rows, len(cols.names))}, nil
}

func readJSONColumns(dec *json.Decoder) (*Table, error) {
	var cols columnIndex
	var columns [][]any
	var labels columnIndex

	for dec.More() {
		name, err := readJSONKey(dec)
		if err != nil {
			return nil, parseError("%v", err)
		}

		tok, err := dec.Token()
		if err != nil {
			return nil, parseError("column %q: %v", name, err)
		}

		var values []any
		switch tok {
		case json.Delim('['):
			for dec.More() {
				v, err := readJSONValue(dec)
				if err != nil {
					return nil, parseError("column %q: %v", name, err)
				}
				values = append(values, v)
			}
		case json.Delim('{'):
			for dec.More() {
				label, err := readJSONKey(dec)
				if err != nil {
					return nil, parseError("column %q: %v", name, err)
				}
				v, err := readJSONValue(dec)
				if err != nil {
					return nil, parseError("column %q, row %q: %v", name, label, err)
				}
				p := labels.add(label)
				for len(values) <= p {
					values = append(values, nil)
				}
				values[p] = v
			}
		default:
			return nil, parseError("column %q must be an array or an object", name)
		}
		if _, err := dec.Token(); err != nil {
			return nil, parseError("column %q: %v", name, err)
		}

		i := cols.add(name)
		if i == len(columns) {
			columns = append(columns, values)
		} else {
			columns[i] = values
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, parseError("%v", err)
	}

	height := 0
	for _, c := range columns {
		if len(c) > height {
			height = len(c)
		}
	}

	rows := make([][]any, height)
	for r := range rows {
		row := make([]any, len(columns))
		for c, values := range columns {
			if r < len(values) {
				row[c] = values[r]
			}
		}
		rows[r] = row
	}

	return &Table{Columns: cols.names, Rows: rows}, nil
}

func readJSONKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", errors.New("expected object key")
	}
	return key, nil
}

// readJSONValue decodes the next value. Top-level numbers become int64 when
// integral, float64 otherwise; nested objects and arrays are kept as decoded.
func readJSONValue(dec *json.Decoder) (any, error) {
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	return v, nil
}

func padRows(rows [][]any, width int) [][]any {
	for i, row := range rows {
		for len(row) < width {
			row = append(row, nil)
		}
		rows[i] = row
	}
	return rows
}
