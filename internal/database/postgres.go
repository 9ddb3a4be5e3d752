package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/dataingest/internal/config"
	"github.com/JonMunkholm/dataingest/internal/core"
	"github.com/JonMunkholm/dataingest/internal/logging"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// pgForeignKeyViolation is the SQLSTATE for a missing referenced row.
const pgForeignKeyViolation = "23503"

const pgDatasetColumns = `id, name, description, file_type, status, schema, row_count, file_size, error_message, created_at, updated_at`

const pgSessionColumns = `id, dataset_id, filename, content_type, total_chunks, chunks_received, status, error_message, created_at, updated_at`

// PostgresStore implements core.Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres creates a pool sized from cfg and verifies the connection.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// NewPostgresStore wraps an existing pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate applies embedded migrations not yet recorded in schema_migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	migrations, err := loadMigrations("postgres")
	if err != nil {
		return err
	}

	if _, err := s.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for _, m := range migrations {
		var applied bool
		if err := s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, m.Version,
		).Scan(&applied); err != nil {
			return fmt.Errorf("check migration %s: %w", m.Version, err)
		}
		if applied {
			continue
		}

		if err := s.applyMigration(ctx, m); err != nil {
			return err
		}
		logging.FromContext(ctx).Info("migration applied", "driver", "postgres", "version", m.Version)
	}
	return nil
}

func (s *PostgresStore) applyMigration(ctx context.Context, m migration) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", m.Version, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, m.SQL); err != nil {
		return fmt.Errorf("apply migration %s: %w", m.Version, err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.Version); err != nil {
		return fmt.Errorf("record migration %s: %w", m.Version, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit migration %s: %w", m.Version, err)
	}
	return nil
}

func (s *PostgresStore) CreateDataset(ctx context.Context, p core.CreateDatasetParams) (*core.Dataset, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO datasets (name, description, file_type, status)
		VALUES ($1, $2, $3, $4)
		RETURNING `+pgDatasetColumns,
		p.Name, p.Description, string(p.FileType), string(core.StatusPending),
	)
	return scanPgDataset(row)
}

func (s *PostgresStore) GetDataset(ctx context.Context, id int64) (*core.Dataset, error) {
	return getPgDataset(ctx, s.pool, id)
}

func getPgDataset(ctx context.Context, q DBTX, id int64) (*core.Dataset, error) {
	ds, err := scanPgDataset(q.QueryRow(ctx, `SELECT `+pgDatasetColumns+` FROM datasets WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	return ds, err
}

func (s *PostgresStore) ListDatasets(ctx context.Context, skip, limit int) ([]core.Dataset, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+pgDatasetColumns+`
		FROM datasets
		ORDER BY created_at DESC, id DESC
		OFFSET $1 LIMIT $2`, skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]core.Dataset, 0, limit)
	for rows.Next() {
		ds, err := scanPgDataset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ds)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteDataset(ctx context.Context, id int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM data_points WHERE dataset_id = $1`, id); err != nil {
		return fmt.Errorf("delete data points: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM upload_sessions WHERE dataset_id = $1`, id); err != nil {
		return fmt.Errorf("delete upload sessions: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM datasets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete dataset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) BeginProcessing(ctx context.Context, id, fileSize int64) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE datasets
		SET status = $2, file_size = $3, error_message = NULL, updated_at = now()
		WHERE id = $1 AND status = $4`,
		id, string(core.StatusProcessing), fileSize, string(core.StatusPending))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return s.transitionError(ctx, id)
	}
	return nil
}

func (s *PostgresStore) CompleteDataset(ctx context.Context, id int64, schema core.Schema, rowCount int64) error {
	b, err := encodeSchema(schema)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE datasets
		SET status = $2, schema = $3, row_count = $4, updated_at = now()
		WHERE id = $1 AND status = $5`,
		id, string(core.StatusReady), b, rowCount, string(core.StatusProcessing))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return s.transitionError(ctx, id)
	}
	return nil
}

func (s *PostgresStore) FailDataset(ctx context.Context, id int64, message string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE datasets
		SET status = $2, error_message = $3, updated_at = now()
		WHERE id = $1 AND status = $4`,
		id, string(core.StatusError), message, string(core.StatusProcessing))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return s.transitionError(ctx, id)
	}
	return nil
}

// transitionError explains why a guarded status update matched no row.
func (s *PostgresStore) transitionError(ctx context.Context, id int64) error {
	ds, err := getPgDataset(ctx, s.pool, id)
	if err != nil {
		return err
	}
	return conflictError(id, ds.Status)
}

// InsertDataPoints streams the batch with COPY inside its own transaction.
func (s *PostgresStore) InsertDataPoints(ctx context.Context, datasetID, startIndex int64, records []core.Record) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([][]any, len(records))
	for i, rec := range records {
		b, err := encodeRecord(rec)
		if err != nil {
			return err
		}
		rows[i] = []any{datasetID, startIndex + int64(i), b}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"data_points"},
		[]string{"dataset_id", "row_index", "data"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return core.ErrNotFound
		}
		return fmt.Errorf("copy data points: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) PreviewDataPoints(ctx context.Context, datasetID int64, limit int) ([]core.DataPoint, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, dataset_id, row_index, data, created_at
		FROM data_points
		WHERE dataset_id = $1
		ORDER BY row_index
		LIMIT $2`, datasetID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]core.DataPoint, 0, limit)
	for rows.Next() {
		var dp core.DataPoint
		var data []byte
		if err := rows.Scan(&dp.ID, &dp.DatasetID, &dp.RowIndex, &data, &dp.CreatedAt); err != nil {
			return nil, err
		}
		if dp.Data, err = decodeRecord(data); err != nil {
			return nil, err
		}
		out = append(out, dp)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountDataPoints(ctx context.Context, datasetID int64) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM data_points WHERE dataset_id = $1`, datasetID).Scan(&n)
	return n, err
}

func (s *PostgresStore) CreateUploadSession(ctx context.Context, p core.CreateUploadSessionParams) (*core.UploadSession, error) {
	id := pgtype.UUID{Bytes: uuid.New(), Valid: true}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO upload_sessions (id, dataset_id, filename, content_type, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+pgSessionColumns,
		id, p.DatasetID, p.Filename, p.ContentType, core.UploadStatusUploading,
	)
	us, err := scanPgSession(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return us, nil
}

func (s *PostgresStore) ListUploadSessions(ctx context.Context, datasetID int64) ([]core.UploadSession, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+pgSessionColumns+`
		FROM upload_sessions
		WHERE dataset_id = $1
		ORDER BY created_at DESC`, datasetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []core.UploadSession{}
	for rows.Next() {
		us, err := scanPgSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *us)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanPgDataset(row pgx.Row) (*core.Dataset, error) {
	var ds core.Dataset
	var fileType, status string
	var schema []byte

	err := row.Scan(
		&ds.ID, &ds.Name, &ds.Description, &fileType, &status, &schema,
		&ds.RowCount, &ds.FileSize, &ds.ErrorMessage, &ds.CreatedAt, &ds.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	ds.FileType = core.FileType(fileType)
	ds.Status = core.Status(status)
	if ds.Schema, err = decodeSchema(schema); err != nil {
		return nil, err
	}
	return &ds, nil
}

func scanPgSession(row pgx.Row) (*core.UploadSession, error) {
	var us core.UploadSession
	var id pgtype.UUID
	var contentType *string
	var totalChunks *int32

	err := row.Scan(
		&id, &us.DatasetID, &us.Filename, &contentType, &totalChunks,
		&us.ChunksReceived, &us.Status, &us.ErrorMessage, &us.CreatedAt, &us.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	us.ID = uuid.UUID(id.Bytes).String()
	if contentType != nil {
		us.ContentType = *contentType
	}
	if totalChunks != nil {
		n := int(*totalChunks)
		us.TotalChunks = &n
	}
	return &us, nil
}
