package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/JonMunkholm/dataingest/internal/core"
	"github.com/JonMunkholm/dataingest/internal/logging"
)

// sqliteTimeLayout is fixed width so that text ordering matches time ordering.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

const sqliteDatasetColumns = `id, name, description, file_type, status, schema, row_count, file_size, error_message, created_at, updated_at`

const sqliteSessionColumns = `id, dataset_id, filename, content_type, total_chunks, chunks_received, status, error_message, created_at, updated_at`

// SQLiteStore implements core.Store on an embedded SQLite database.
//
// SQLite has no TIMESTAMPTZ or JSONB: timestamps are stored as UTC text in
// sqliteTimeLayout and JSON payloads as TEXT. A single connection is used so
// that ":memory:" databases are shared by every query and writers never
// contend for the lock.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path.
// Use ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) timestamp() string {
	return formatSQLiteTime(s.now())
}

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseSQLiteTime(s string) (time.Time, error) {
	t, err := time.Parse(sqliteTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse sqlite time %q: %w", s, err)
	}
	return t, nil
}

// Migrate applies embedded migrations not yet recorded in schema_migrations.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	migrations, err := loadMigrations("sqlite")
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for _, m := range migrations {
		var n int
		if err := s.db.QueryRowContext(ctx,
			`SELECT count(*) FROM schema_migrations WHERE version = ?`, m.Version,
		).Scan(&n); err != nil {
			return fmt.Errorf("check migration %s: %w", m.Version, err)
		}
		if n > 0 {
			continue
		}

		if err := s.applyMigration(ctx, m); err != nil {
			return err
		}
		logging.FromContext(ctx).Info("migration applied", "driver", "sqlite", "version", m.Version)
	}
	return nil
}

func (s *SQLiteStore) applyMigration(ctx context.Context, m migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", m.Version, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("apply migration %s: %w", m.Version, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`, m.Version, s.timestamp(),
	); err != nil {
		return fmt.Errorf("record migration %s: %w", m.Version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", m.Version, err)
	}
	return nil
}

func (s *SQLiteStore) CreateDataset(ctx context.Context, p core.CreateDatasetParams) (*core.Dataset, error) {
	now := s.timestamp()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO datasets (name, description, file_type, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.Name, p.Description, string(p.FileType), string(core.StatusPending), now, now,
	)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetDataset(ctx, id)
}

func (s *SQLiteStore) GetDataset(ctx context.Context, id int64) (*core.Dataset, error) {
	ds, err := scanSQLiteDataset(s.db.QueryRowContext(ctx,
		`SELECT `+sqliteDatasetColumns+` FROM datasets WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	return ds, err
}

func (s *SQLiteStore) ListDatasets(ctx context.Context, skip, limit int) ([]core.Dataset, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sqliteDatasetColumns+`
		FROM datasets
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]core.Dataset, 0, limit)
	for rows.Next() {
		ds, err := scanSQLiteDataset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ds)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteDataset(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM data_points WHERE dataset_id = ?`, id); err != nil {
		return fmt.Errorf("delete data points: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM upload_sessions WHERE dataset_id = ?`, id); err != nil {
		return fmt.Errorf("delete upload sessions: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM datasets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete dataset: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return core.ErrNotFound
	}

	return tx.Commit()
}

func (s *SQLiteStore) BeginProcessing(ctx context.Context, id, fileSize int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE datasets
		SET status = ?, file_size = ?, error_message = NULL, updated_at = ?
		WHERE id = ? AND status = ?`,
		string(core.StatusProcessing), fileSize, s.timestamp(), id, string(core.StatusPending))
	if err != nil {
		return err
	}
	return s.checkTransition(ctx, id, res)
}

func (s *SQLiteStore) CompleteDataset(ctx context.Context, id int64, schema core.Schema, rowCount int64) error {
	b, err := encodeSchema(schema)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE datasets
		SET status = ?, schema = ?, row_count = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		string(core.StatusReady), string(b), rowCount, s.timestamp(), id, string(core.StatusProcessing))
	if err != nil {
		return err
	}
	return s.checkTransition(ctx, id, res)
}

func (s *SQLiteStore) FailDataset(ctx context.Context, id int64, message string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE datasets
		SET status = ?, error_message = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		string(core.StatusError), message, s.timestamp(), id, string(core.StatusProcessing))
	if err != nil {
		return err
	}
	return s.checkTransition(ctx, id, res)
}

// checkTransition explains why a guarded status update matched no row.
func (s *SQLiteStore) checkTransition(ctx context.Context, id int64, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	ds, err := s.GetDataset(ctx, id)
	if err != nil {
		return err
	}
	return conflictError(id, ds.Status)
}

func (s *SQLiteStore) InsertDataPoints(ctx context.Context, datasetID, startIndex int64, records []core.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO data_points (dataset_id, row_index, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := s.timestamp()
	for i, rec := range records {
		b, err := encodeRecord(rec)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, datasetID, startIndex+int64(i), string(b), now, now); err != nil {
			if isSQLiteForeignKeyError(err) {
				return core.ErrNotFound
			}
			return fmt.Errorf("insert data point %d: %w", startIndex+int64(i), err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) PreviewDataPoints(ctx context.Context, datasetID int64, limit int) ([]core.DataPoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, dataset_id, row_index, data, created_at
		FROM data_points
		WHERE dataset_id = ?
		ORDER BY row_index
		LIMIT ?`, datasetID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]core.DataPoint, 0, limit)
	for rows.Next() {
		var dp core.DataPoint
		var data, created string
		if err := rows.Scan(&dp.ID, &dp.DatasetID, &dp.RowIndex, &data, &created); err != nil {
			return nil, err
		}
		if dp.Data, err = decodeRecord([]byte(data)); err != nil {
			return nil, err
		}
		if dp.CreatedAt, err = parseSQLiteTime(created); err != nil {
			return nil, err
		}
		out = append(out, dp)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CountDataPoints(ctx context.Context, datasetID int64) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM data_points WHERE dataset_id = ?`, datasetID).Scan(&n)
	return n, err
}

func (s *SQLiteStore) CreateUploadSession(ctx context.Context, p core.CreateUploadSessionParams) (*core.UploadSession, error) {
	id := uuid.NewString()
	now := s.timestamp()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO upload_sessions (id, dataset_id, filename, content_type, chunks_received, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, ?, ?)`,
		id, p.DatasetID, p.Filename, p.ContentType, core.UploadStatusUploading, now, now,
	)
	if err != nil {
		if isSQLiteForeignKeyError(err) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}

	return scanSQLiteSession(s.db.QueryRowContext(ctx,
		`SELECT `+sqliteSessionColumns+` FROM upload_sessions WHERE id = ?`, id))
}

func (s *SQLiteStore) ListUploadSessions(ctx context.Context, datasetID int64) ([]core.UploadSession, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sqliteSessionColumns+`
		FROM upload_sessions
		WHERE dataset_id = ?
		ORDER BY created_at DESC, rowid DESC`, datasetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []core.UploadSession{}
	for rows.Next() {
		us, err := scanSQLiteSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *us)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteDataset(row rowScanner) (*core.Dataset, error) {
	var ds core.Dataset
	var fileType, status, created, updated string
	var schema sql.NullString

	err := row.Scan(
		&ds.ID, &ds.Name, &ds.Description, &fileType, &status, &schema,
		&ds.RowCount, &ds.FileSize, &ds.ErrorMessage, &created, &updated,
	)
	if err != nil {
		return nil, err
	}

	ds.FileType = core.FileType(fileType)
	ds.Status = core.Status(status)
	if schema.Valid {
		if ds.Schema, err = decodeSchema([]byte(schema.String)); err != nil {
			return nil, err
		}
	}
	if ds.CreatedAt, err = parseSQLiteTime(created); err != nil {
		return nil, err
	}
	if ds.UpdatedAt, err = parseSQLiteTime(updated); err != nil {
		return nil, err
	}
	return &ds, nil
}

func scanSQLiteSession(row rowScanner) (*core.UploadSession, error) {
	var us core.UploadSession
	var contentType sql.NullString
	var totalChunks sql.NullInt64
	var created, updated string

	err := row.Scan(
		&us.ID, &us.DatasetID, &us.Filename, &contentType, &totalChunks,
		&us.ChunksReceived, &us.Status, &us.ErrorMessage, &created, &updated,
	)
	if err != nil {
		return nil, err
	}

	us.ContentType = contentType.String
	if totalChunks.Valid {
		n := int(totalChunks.Int64)
		us.TotalChunks = &n
	}
	if us.CreatedAt, err = parseSQLiteTime(created); err != nil {
		return nil, err
	}
	if us.UpdatedAt, err = parseSQLiteTime(updated); err != nil {
		return nil, err
	}
	return &us, nil
}

func isSQLiteForeignKeyError(err error) bool {
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
