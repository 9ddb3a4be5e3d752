package core

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// InferSchema derives per-column statistics from a parsed table.
//
// The type tag merges the kinds of all non-null values: integer and float
// merge to float, date and timestamp to timestamp, any other mix to text.
// An all-null column is text. The sample is the first row's value as a
// string, or nil when the table is empty or that value is null.
func InferSchema(t *Table) Schema {
	s := Schema{
		Columns:     make(map[string]ColumnStats, len(t.Columns)),
		ColumnOrder: append([]string(nil), t.Columns...),
		RowCount:    len(t.Rows),
		ColumnCount: len(t.Columns),
	}

	for c, name := range t.Columns {
		var kind ColumnType
		nulls := 0
		unique := make(map[string]struct{})

		for _, row := range t.Rows {
			v := row[c]
			if v == nil {
				nulls++
				continue
			}
			unique[uniqueKey(v)] = struct{}{}
			kind = mergeKinds(kind, kindOf(v))
		}

		if kind == "" {
			kind = TypeText
		}

		var sample *string
		if len(t.Rows) > 0 && t.Rows[0][c] != nil {
			str := stringify(t.Rows[0][c])
			sample = &str
		}

		s.Columns[name] = ColumnStats{
			Type:        kind,
			Sample:      sample,
			UniqueCount: len(unique),
			NullCount:   nulls,
		}
	}

	return s
}

func kindOf(v any) ColumnType {
	switch tv := v.(type) {
	case int64, int, json.Number:
		return TypeInteger
	case float64:
		return TypeFloat
	case bool:
		return TypeBoolean
	case string:
		if k, ok := temporalType(tv); ok {
			return k
		}
		return TypeText
	case map[string]any:
		return TypeObject
	case []any:
		return TypeArray
	default:
		return TypeText
	}
}

func mergeKinds(a, b ColumnType) ColumnType {
	switch {
	case a == "":
		return b
	case a == b:
		return a
	case isNumericKind(a) && isNumericKind(b):
		return TypeFloat
	case isTemporalKind(a) && isTemporalKind(b):
		return TypeTimestamp
	default:
		return TypeText
	}
}

func isNumericKind(k ColumnType) bool  { return k == TypeInteger || k == TypeFloat }
func isTemporalKind(k ColumnType) bool { return k == TypeDate || k == TypeTimestamp }

// uniqueKey distinguishes values of different types that print alike,
// such as int64 1 and string "1".
func uniqueKey(v any) string {
	switch v.(type) {
	case map[string]any, []any:
		return fmt.Sprintf("%T:%s", v, stringify(v))
	default:
		return fmt.Sprintf("%T:%v", v, v)
	}
}

func stringify(v any) string {
	switch tv := v.(type) {
	case string:
		return tv
	case int64:
		return strconv.FormatInt(tv, 10)
	case float64:
		return strconv.FormatFloat(tv, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(tv)
	case map[string]any, []any:
		b, err := json.Marshal(tv)
		if err != nil {
			return fmt.Sprint(tv)
		}
		return string(b)
	default:
		return fmt.Sprint(tv)
	}
}
