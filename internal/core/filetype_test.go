package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFileType(t *testing.T) {
	tests := []struct {
		input   string
		want    FileType
		wantErr bool
	}{
		{"csv", FileTypeCSV, false},
		{"CSV", FileTypeCSV, false},
		{" excel ", FileTypeExcel, false},
		{"json", FileTypeJSON, false},
		{"xml", "", true},
		{"xlsx", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFileType(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateFileType(t *testing.T) {
	tests := []struct {
		name        string
		fileType    FileType
		contentType string
		want        bool
	}{
		{"csv", FileTypeCSV, "text/csv", true},
		{"csv with charset", FileTypeCSV, "text/csv; charset=utf-8", true},
		{"csv application", FileTypeCSV, "application/csv", true},
		{"xlsx", FileTypeExcel, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", true},
		{"xls", FileTypeExcel, "application/vnd.ms-excel", true},
		{"json", FileTypeJSON, "application/json", true},
		{"csv sent as octet stream", FileTypeCSV, "application/octet-stream", false},
		{"json sent as csv", FileTypeJSON, "text/csv", false},
		{"missing content type", FileTypeCSV, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateFileType(tt.fileType, tt.contentType)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateFileType_Unknown(t *testing.T) {
	ok, err := ValidateFileType(FileType("parquet"), "application/octet-stream")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
	assert.Nil(t, AllowedContentTypes(FileType("parquet")))
}
