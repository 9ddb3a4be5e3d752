package core

import (
	"testing"
)

// ----------------------------------------------------------------------------
// Cell classification
// ----------------------------------------------------------------------------

func TestIsInteger(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"0", true},
		{"123", true},
		{"-456", true},
		{"+7", true},
		{"9223372036854775807", true},
		{"9223372036854775808", false}, // overflows int64
		{"1.0", false},
		{"1e3", false},
		{"", false},
		{"12a", false},
		{" 12", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := isInteger(tt.input); got != tt.want {
				t.Errorf("isInteger(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsNumeric(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"123", true},
		{"123.45", true},
		{".99", true},
		{"99.", true},
		{"-0.5", true},
		{"1e10", true},
		{"2.5E-3", true},
		{"$100", false},
		{"1,000", false},
		{"abc", false},
		{"1.2.3", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := isNumeric(tt.input); got != tt.want {
				t.Errorf("isNumeric(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		input  string
		want   bool
		wantOK bool
	}{
		{"true", true, true},
		{"TRUE", true, true},
		{"False", false, true},
		{"yes", false, false},
		{"1", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseBool(tt.input)
			if (got != nil) != tt.wantOK {
				t.Fatalf("parseBool(%q) ok = %v, want %v", tt.input, got != nil, tt.wantOK)
			}
			if got != nil && *got != tt.want {
				t.Errorf("parseBool(%q) = %v, want %v", tt.input, *got, tt.want)
			}
		})
	}
}

func TestIsMissing(t *testing.T) {
	for _, s := range []string{"", "  ", "NA", "N/A", "null", "NULL", "NaN", "None", "#N/A", "<NA>"} {
		if !isMissing(s) {
			t.Errorf("isMissing(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"0", "none", "n.a.", "-", "missing"} {
		if isMissing(s) {
			t.Errorf("isMissing(%q) = true, want false", s)
		}
	}
}

func TestTemporalType(t *testing.T) {
	tests := []struct {
		input  string
		want   ColumnType
		wantOK bool
	}{
		{"2024-03-15", TypeDate, true},
		{"3/15/2024", TypeDate, true},
		{"Mar 15, 2024", TypeDate, true},
		{"2024-03-15T10:30:00Z", TypeTimestamp, true},
		{"2024-03-15 10:30:00", TypeTimestamp, true},
		{"2024-03-15T10:30:00", TypeTimestamp, true},
		{"yesterday", "", false},
		{"2024-13-45", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := temporalType(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("temporalType(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Column coercion
// ----------------------------------------------------------------------------

func column(values ...any) [][]any {
	rows := make([][]any, len(values))
	for i, v := range values {
		rows[i] = []any{v}
	}
	return rows
}

func TestCoerceColumn(t *testing.T) {
	tests := []struct {
		name string
		in   []any
		want []any
	}{
		{
			name: "integers",
			in:   []any{"1", " 2 ", "-3"},
			want: []any{int64(1), int64(2), int64(-3)},
		},
		{
			name: "integers with blanks stay integers",
			in:   []any{"1", "", nil, "NA"},
			want: []any{int64(1), nil, nil, nil},
		},
		{
			name: "mixed integers and decimals become floats",
			in:   []any{"1", "2.5"},
			want: []any{float64(1), 2.5},
		},
		{
			name: "booleans",
			in:   []any{"true", "FALSE"},
			want: []any{true, false},
		},
		{
			name: "any text keeps strings",
			in:   []any{"1", "two"},
			want: []any{"1", "two"},
		},
		{
			name: "all missing",
			in:   []any{"", "null"},
			want: []any{nil, nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := column(tt.in...)
			coerceColumns(rows, 1)
			for i, row := range rows {
				if row[0] != tt.want[i] {
					t.Errorf("row %d = %#v, want %#v", i, row[0], tt.want[i])
				}
			}
		})
	}
}

func TestIsEmptyRow(t *testing.T) {
	if !isEmptyRow([]string{"", "  ", "\t"}) {
		t.Error("isEmptyRow of blanks = false, want true")
	}
	if !isEmptyRow(nil) {
		t.Error("isEmptyRow(nil) = false, want true")
	}
	if isEmptyRow([]string{"", "x"}) {
		t.Error("isEmptyRow with value = true, want false")
	}
}
