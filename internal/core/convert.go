package core

// convert.go turns raw text cells (CSV, Excel) into typed values.
//
// Coercion is decided per column, not per cell: a column becomes int64 only
// if every non-null cell is integral, float64 if every non-null cell is
// numeric, bool if every non-null cell is true/false. Anything else keeps its
// original strings. Blank and NA cells become null in every column.

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	integerRegex = regexp.MustCompile(`^[+-]?\d+$`)

	// numericRegex matches integers, decimals, and scientific notation.
	numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)
)

// naValues are cell contents treated as missing.
var naValues = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// Date and timestamp layouts tried when classifying text columns.
var (
	dateLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"Jan 2, 2006", "2 Jan 2006", "January 2, 2006",
	}
	timestampLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04",
		"1/2/2006 15:04:05",
		"1/2/2006 15:04",
	}
)

// isMissing reports whether a raw cell should be stored as null.
func isMissing(s string) bool {
	_, ok := naValues[strings.TrimSpace(s)]
	return ok
}

// coerceColumns converts the string cells of each column in place.
// Cells must be string or nil.
func coerceColumns(rows [][]any, width int) {
	for col := 0; col < width; col++ {
		coerceColumn(rows, col)
	}
}

func coerceColumn(rows [][]any, col int) {
	allInt, allFloat, allBool := true, true, true
	seen := false

	for _, row := range rows {
		s, ok := row[col].(string)
		if !ok {
			continue
		}
		if isMissing(s) {
			row[col] = nil
			continue
		}
		seen = true
		v := strings.TrimSpace(s)
		if allInt && !isInteger(v) {
			allInt = false
		}
		if allFloat && !isNumeric(v) {
			allFloat = false
		}
		if allBool && parseBool(v) == nil {
			allBool = false
		}
	}

	if !seen {
		return
	}

	for _, row := range rows {
		s, ok := row[col].(string)
		if !ok {
			continue
		}
		v := strings.TrimSpace(s)
		switch {
		case allInt:
			n, _ := strconv.ParseInt(v, 10, 64)
			row[col] = n
		case allFloat:
			f, _ := strconv.ParseFloat(v, 64)
			row[col] = f
		case allBool:
			row[col] = *parseBool(v)
		}
	}
}

// isInteger reports whether s is an integer that fits in int64.
func isInteger(s string) bool {
	if !integerRegex.MatchString(s) {
		return false
	}
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func isNumeric(s string) bool {
	if !numericRegex.MatchString(s) {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// parseBool accepts true/false in any letter case.
func parseBool(s string) *bool {
	var b bool
	switch strings.ToLower(s) {
	case "true":
		b = true
	case "false":
		b = false
	default:
		return nil
	}
	return &b
}

// temporalType classifies a string as a date or timestamp.
// The second result is false for anything else.
func temporalType(s string) (ColumnType, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return TypeDate, true
		}
	}
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return TypeTimestamp, true
		}
	}
	return "", false
}

// isEmptyRow reports whether every cell of a raw record is blank.
func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
