package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferSchema(t *testing.T) {
	table := &Table{
		Columns: []string{"name", "age", "score", "joined", "active", "notes", "meta"},
		Rows: [][]any{
			{"Alice", int64(30), int64(7), "2024-01-05", true, nil, map[string]any{"k": "v"}},
			{"Bob", int64(25), 8.5, "2024-02-10 09:15:00", false, nil, map[string]any{"k": "v"}},
			{"Alice", nil, nil, "2024-03-01", true, nil, nil},
		},
	}

	s := InferSchema(table)

	assert.Equal(t, 3, s.RowCount)
	assert.Equal(t, 7, s.ColumnCount)
	assert.Equal(t, table.Columns, s.ColumnOrder)
	require.Len(t, s.Columns, 7)

	tests := []struct {
		column     string
		wantType   ColumnType
		wantSample string
		wantUnique int
		wantNulls  int
	}{
		{"name", TypeText, "Alice", 2, 0},
		{"age", TypeInteger, "30", 2, 1},
		{"score", TypeFloat, "7", 2, 1},
		{"joined", TypeTimestamp, "2024-01-05", 3, 0},
		{"active", TypeBoolean, "true", 2, 0},
		{"notes", TypeText, "", 0, 3},
		{"meta", TypeObject, `{"k":"v"}`, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			stats, ok := s.Columns[tt.column]
			require.True(t, ok)

			assert.Equal(t, tt.wantType, stats.Type)
			assert.Equal(t, tt.wantUnique, stats.UniqueCount)
			assert.Equal(t, tt.wantNulls, stats.NullCount)
			if tt.wantSample == "" {
				assert.Nil(t, stats.Sample)
			} else {
				require.NotNil(t, stats.Sample)
				assert.Equal(t, tt.wantSample, *stats.Sample)
			}
		})
	}
}

func TestInferSchema_EmptyTable(t *testing.T) {
	s := InferSchema(&Table{Columns: []string{"a", "b"}})

	assert.Equal(t, 0, s.RowCount)
	assert.Equal(t, 2, s.ColumnCount)
	for _, name := range []string{"a", "b"} {
		stats := s.Columns[name]
		assert.Equal(t, TypeText, stats.Type)
		assert.Nil(t, stats.Sample)
		assert.Zero(t, stats.UniqueCount)
		assert.Zero(t, stats.NullCount)
	}
}

func TestInferSchema_DistinctAcrossTypes(t *testing.T) {
	table := &Table{
		Columns: []string{"v"},
		Rows:    [][]any{{int64(1)}, {"1"}, {int64(1)}},
	}

	stats := InferSchema(table).Columns["v"]
	assert.Equal(t, TypeText, stats.Type)
	assert.Equal(t, 2, stats.UniqueCount)
}

func TestMergeKinds(t *testing.T) {
	tests := []struct {
		a, b ColumnType
		want ColumnType
	}{
		{"", TypeInteger, TypeInteger},
		{TypeInteger, TypeInteger, TypeInteger},
		{TypeInteger, TypeFloat, TypeFloat},
		{TypeFloat, TypeInteger, TypeFloat},
		{TypeDate, TypeTimestamp, TypeTimestamp},
		{TypeDate, TypeDate, TypeDate},
		{TypeInteger, TypeBoolean, TypeText},
		{TypeDate, TypeText, TypeText},
		{TypeObject, TypeArray, TypeText},
	}

	for _, tt := range tests {
		if got := mergeKinds(tt.a, tt.b); got != tt.want {
			t.Errorf("mergeKinds(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"x", "x"},
		{int64(-4), "-4"},
		{2.5, "2.5"},
		{float64(7), "7"},
		{false, "false"},
		{[]any{int64(1), "a"}, `[1,"a"]`},
	}

	for _, tt := range tests {
		if got := stringify(tt.in); got != tt.want {
			t.Errorf("stringify(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
