package core

import (
	"time"
)

// FileType is the declared format of a dataset's source file.
type FileType string

const (
	FileTypeCSV   FileType = "csv"
	FileTypeExcel FileType = "excel"
	FileTypeJSON  FileType = "json"
)

// Status is the ingestion state of a dataset.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusError      Status = "error"
)

// UploadStatusUploading is the only state an upload session ever takes.
const UploadStatusUploading = "uploading"

// ColumnType is the inferred type tag of a column.
type ColumnType string

const (
	TypeInteger   ColumnType = "integer"
	TypeFloat     ColumnType = "float"
	TypeBoolean   ColumnType = "boolean"
	TypeDate      ColumnType = "date"
	TypeTimestamp ColumnType = "timestamp"
	TypeText      ColumnType = "text"
	TypeObject    ColumnType = "object"
	TypeArray     ColumnType = "array"
)

// Dataset is a named collection of ingested rows plus its inferred schema.
type Dataset struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	FileType     FileType  `json:"file_type"`
	Status       Status    `json:"status"`
	Schema       *Schema   `json:"schema"`
	RowCount     *int64    `json:"row_count"`
	FileSize     *int64    `json:"file_size"`
	ErrorMessage *string   `json:"error_message"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Schema describes the columns found in an ingested file.
type Schema struct {
	Columns     map[string]ColumnStats `json:"columns"`
	ColumnOrder []string               `json:"column_order"`
	RowCount    int                    `json:"row_count"`
	ColumnCount int                    `json:"column_count"`
}

// ColumnStats holds the descriptive statistics of one column.
type ColumnStats struct {
	Type        ColumnType `json:"type"`
	Sample      *string    `json:"sample"`
	UniqueCount int        `json:"unique_count"`
	NullCount   int        `json:"null_count"`
}

// Record is one row payload keyed by column name.
type Record map[string]any

// DataPoint is one stored row of a dataset.
type DataPoint struct {
	ID        int64     `json:"id"`
	DatasetID int64     `json:"dataset_id"`
	RowIndex  int64     `json:"row_index"`
	Data      Record    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
}

// UploadSession records one upload attempt against a dataset.
// Chunk counters are never advanced.
type UploadSession struct {
	ID             string    `json:"id"`
	DatasetID      int64     `json:"dataset_id"`
	Filename       string    `json:"filename"`
	ContentType    string    `json:"content_type"`
	TotalChunks    *int      `json:"total_chunks"`
	ChunksReceived int       `json:"chunks_received"`
	Status         string    `json:"status"`
	ErrorMessage   *string   `json:"error_message"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Table is the tabular form of a parsed file.
// Every row has exactly len(Columns) cells; nil marks a missing value.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Record returns row i as a payload keyed by column name.
func (t *Table) Record(i int) Record {
	rec := make(Record, len(t.Columns))
	for j, col := range t.Columns {
		rec[col] = t.Rows[i][j]
	}
	return rec
}

// CreateDatasetParams holds the fields a client supplies when registering a dataset.
type CreateDatasetParams struct {
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	FileType    FileType `json:"file_type"`
}

// CreateUploadSessionParams identifies the file of an upload attempt.
type CreateUploadSessionParams struct {
	DatasetID   int64
	Filename    string
	ContentType string
}

// UploadResult summarizes a successful ingestion.
type UploadResult struct {
	DatasetID int64
	UploadID  string
	FileSize  int64
	RowCount  int64
	Schema    Schema
	Duration  time.Duration
}

// HealthStatus reports service and storage availability.
type HealthStatus struct {
	Status            string    `json:"status"`
	Timestamp         time.Time `json:"timestamp"`
	DatabaseConnected bool      `json:"database_connected"`
	Version           string    `json:"version"`
}
