package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/JonMunkholm/dataingest/internal/logging"
)

// UploadParams describes a file uploaded to a dataset.
type UploadParams struct {
	DatasetID   int64
	Filename    string
	ContentType string
	Body        io.Reader
}

// UploadFile ingests a file into a pending dataset.
//
// The call blocks until every row is stored. Each batch of rows is committed
// on its own, so a failure part way through leaves the earlier batches in
// place with the dataset in error state and the failure text recorded.
func (s *Service) UploadFile(ctx context.Context, p UploadParams) (*UploadResult, error) {
	start := time.Now()

	ds, err := s.GetDataset(ctx, p.DatasetID)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(p.Body)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	size := int64(len(data))

	session, err := s.store.CreateUploadSession(ctx, CreateUploadSessionParams{
		DatasetID:   ds.ID,
		Filename:    p.Filename,
		ContentType: p.ContentType,
	})
	if err != nil {
		return nil, fmt.Errorf("create upload session: %w", err)
	}

	log := logging.WithFields(ctx,
		"dataset_id", ds.ID,
		"upload_id", session.ID,
		"file_name", p.Filename,
		"file_type", ds.FileType,
	)
	if ip := IPAddressFromContext(ctx); ip != "" {
		log = log.With("ip", ip, "user_agent", UserAgentFromContext(ctx))
	}

	if err := s.store.BeginProcessing(ctx, ds.ID, size); err != nil {
		return nil, fmt.Errorf("begin processing dataset %d: %w", ds.ID, err)
	}
	log.Info("ingestion started", "file_size", size)

	schema, rows, err := s.ingest(ctx, log, ds, p.ContentType, data)
	if err != nil {
		s.fail(ctx, log, ds.ID, err)
		return nil, err
	}

	result := &UploadResult{
		DatasetID: ds.ID,
		UploadID:  session.ID,
		FileSize:  size,
		RowCount:  rows,
		Schema:    schema,
		Duration:  time.Since(start),
	}

	log.Info("ingestion finished",
		"rows", rows,
		"columns", schema.ColumnCount,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// ingest runs the processing stage: type check, parse, schema, batched
// inserts and the final status update.
func (s *Service) ingest(ctx context.Context, log *slog.Logger, ds *Dataset, contentType string, data []byte) (Schema, int64, error) {
	ok, err := ValidateFileType(ds.FileType, contentType)
	if err != nil {
		return Schema{}, 0, err
	}
	if !ok {
		log.Warn("content type does not match file type",
			"content_type", contentType,
			"allowed", AllowedContentTypes(ds.FileType),
		)
	}

	table, err := ParseTable(ds.FileType, data)
	if err != nil {
		return Schema{}, 0, err
	}

	schema := InferSchema(table)
	total := len(table.Rows)

	for from := 0; from < total; from += s.batchSize {
		to := min(from+s.batchSize, total)

		batch := make([]Record, 0, to-from)
		for i := from; i < to; i++ {
			batch = append(batch, table.Record(i))
		}

		if err := s.store.InsertDataPoints(ctx, ds.ID, int64(from), batch); err != nil {
			return Schema{}, 0, fmt.Errorf("insert rows %d-%d: %w", from, to-1, err)
		}
		log.Debug("batch committed", "rows_stored", to, "rows_total", total)
	}

	if err := s.store.CompleteDataset(ctx, ds.ID, schema, int64(total)); err != nil {
		return Schema{}, 0, fmt.Errorf("complete dataset %d: %w", ds.ID, err)
	}
	return schema, int64(total), nil
}

// fail records the failure on the dataset. It runs even if ctx was cancelled.
func (s *Service) fail(ctx context.Context, log *slog.Logger, id int64, cause error) {
	if err := s.store.FailDataset(context.WithoutCancel(ctx), id, cause.Error()); err != nil {
		log.Error("failed to record ingestion error", "error", err, "cause", cause)
		return
	}
	log.Warn("ingestion failed", "error", cause)
}
