package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/dataingest/internal/logging"
)

// Version is reported by the health and root endpoints.
const Version = "1.0.0"

// DefaultBatchSize is the number of rows committed per transaction when the
// caller does not configure one.
const DefaultBatchSize = 1000

// Pagination bounds shared by preview and listing.
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Service provides the dataset ingestion operations.
type Service struct {
	store     Store
	batchSize int
}

// NewService creates a Service backed by store. A non-positive batchSize
// selects DefaultBatchSize.
func NewService(store Store, batchSize int) *Service {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Service{store: store, batchSize: batchSize}
}

// CreateDataset registers a dataset in pending state.
func (s *Service) CreateDataset(ctx context.Context, p CreateDatasetParams) (*Dataset, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, validationError("name is required")
	}

	ft, err := ParseFileType(string(p.FileType))
	if err != nil {
		return nil, err
	}
	p.FileType = ft

	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		p.Description = nil
	}

	ds, err := s.store.CreateDataset(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create dataset: %w", err)
	}

	logging.FromContext(ctx).Info("dataset created",
		"dataset_id", ds.ID,
		"name", ds.Name,
		"file_type", ds.FileType,
	)
	return ds, nil
}

// GetDataset returns a dataset by id.
func (s *Service) GetDataset(ctx context.Context, id int64) (*Dataset, error) {
	ds, err := s.store.GetDataset(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get dataset %d: %w", id, err)
	}
	return ds, nil
}

// PreviewDataset returns up to limit row payloads in file order.
// The limit is checked before storage is touched.
func (s *Service) PreviewDataset(ctx context.Context, id int64, limit int) ([]Record, error) {
	if limit < 1 || limit > MaxPageLimit {
		return nil, rangeError("limit must be between 1 and %d, got %d", MaxPageLimit, limit)
	}

	if _, err := s.GetDataset(ctx, id); err != nil {
		return nil, err
	}

	points, err := s.store.PreviewDataPoints(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("preview dataset %d: %w", id, err)
	}

	out := make([]Record, len(points))
	for i, p := range points {
		out[i] = p.Data
	}
	return out, nil
}

// ListDatasets returns datasets newest first.
func (s *Service) ListDatasets(ctx context.Context, skip, limit int) ([]Dataset, error) {
	if skip < 0 {
		return nil, rangeError("skip must be >= 0, got %d", skip)
	}
	if limit < 1 || limit > MaxPageLimit {
		return nil, rangeError("limit must be between 1 and %d, got %d", MaxPageLimit, limit)
	}

	list, err := s.store.ListDatasets(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	return list, nil
}

// DeleteDataset removes a dataset together with its rows and upload sessions.
func (s *Service) DeleteDataset(ctx context.Context, id int64) error {
	if err := s.store.DeleteDataset(ctx, id); err != nil {
		return fmt.Errorf("delete dataset %d: %w", id, err)
	}
	logging.FromContext(ctx).Info("dataset deleted", "dataset_id", id)
	return nil
}

// ListUploadSessions returns the upload attempts recorded for a dataset.
func (s *Service) ListUploadSessions(ctx context.Context, id int64) ([]UploadSession, error) {
	if _, err := s.GetDataset(ctx, id); err != nil {
		return nil, err
	}

	sessions, err := s.store.ListUploadSessions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list upload sessions for dataset %d: %w", id, err)
	}
	return sessions, nil
}

// Health reports whether storage answers a ping. The service itself is
// always reported operational.
func (s *Service) Health(ctx context.Context) HealthStatus {
	connected := true
	if err := s.store.Ping(ctx); err != nil {
		connected = false
		logging.FromContext(ctx).Warn("database ping failed", "error", err)
	}

	return HealthStatus{
		Status:            "operational",
		Timestamp:         time.Now().UTC(),
		DatabaseConnected: connected,
		Version:           Version,
	}
}
