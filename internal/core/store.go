package core

import "context"

// Store persists datasets, their rows and upload sessions.
//
// Lookups of a missing dataset return an error wrapping ErrNotFound.
// Status transitions are guarded in storage: BeginProcessing only succeeds
// from pending, CompleteDataset and FailDataset only from processing.
type Store interface {
	CreateDataset(ctx context.Context, p CreateDatasetParams) (*Dataset, error)
	GetDataset(ctx context.Context, id int64) (*Dataset, error)
	// ListDatasets returns datasets newest first.
	ListDatasets(ctx context.Context, skip, limit int) ([]Dataset, error)
	// DeleteDataset removes the dataset with its rows and upload sessions in one transaction.
	DeleteDataset(ctx context.Context, id int64) error

	// BeginProcessing moves a pending dataset to processing and records the file size.
	// Returns ErrConflict when the dataset is in any other state.
	BeginProcessing(ctx context.Context, id, fileSize int64) error
	CompleteDataset(ctx context.Context, id int64, schema Schema, rowCount int64) error
	FailDataset(ctx context.Context, id int64, message string) error

	// InsertDataPoints writes rows in a single transaction, numbering them
	// from startIndex.
	InsertDataPoints(ctx context.Context, datasetID, startIndex int64, rows []Record) error
	// PreviewDataPoints returns up to limit rows ordered by row_index.
	PreviewDataPoints(ctx context.Context, datasetID int64, limit int) ([]DataPoint, error)
	CountDataPoints(ctx context.Context, datasetID int64) (int64, error)

	CreateUploadSession(ctx context.Context, p CreateUploadSessionParams) (*UploadSession, error)
	// ListUploadSessions returns a dataset's sessions newest first.
	ListUploadSessions(ctx context.Context, datasetID int64) ([]UploadSession, error)

	Ping(ctx context.Context) error
	Close() error
}
