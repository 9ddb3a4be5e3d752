// Package database implements core.Store on PostgreSQL and SQLite.
//
// The backend is chosen from the DATABASE_URL scheme. Both backends share the
// same table layout (datasets, data_points, upload_sessions), created by the
// embedded migrations under migrations/<driver>.
package database

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/JonMunkholm/dataingest/internal/config"
	"github.com/JonMunkholm/dataingest/internal/core"
)

//go:embed migrations
var migrationsFS embed.FS

// Store is a core.Store that can create its own tables.
type Store interface {
	core.Store
	Migrate(ctx context.Context) error
}

// Open connects to the database named by cfg.URL and, when cfg.AutoMigrate
// is set, applies pending migrations.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	driver, err := cfg.Driver()
	if err != nil {
		return nil, err
	}

	var st Store
	switch driver {
	case "postgres":
		st, err = OpenPostgres(ctx, cfg)
	case "sqlite":
		st, err = OpenSQLite(ctx, cfg.SQLitePath())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("migrate %s: %w", driver, err)
		}
	}
	return st, nil
}

// migration is one embedded SQL file.
type migration struct {
	Version string
	SQL     string
}

// loadMigrations returns the driver's migrations ordered by file name.
func loadMigrations(driver string) ([]migration, error) {
	dir := path.Join("migrations", driver)
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	var out []migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		b, err := fs.ReadFile(migrationsFS, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", e.Name(), err)
		}
		out = append(out, migration{
			Version: strings.TrimSuffix(e.Name(), ".sql"),
			SQL:     string(b),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func encodeSchema(s core.Schema) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	return b, nil
}

// decodeSchema returns nil for a NULL column.
func decodeSchema(b []byte) (*core.Schema, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var s core.Schema
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	return &s, nil
}

func encodeRecord(r core.Record) ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode row: %w", err)
	}
	return b, nil
}

// decodeRecord keeps numbers as json.Number so large integers survive.
func decodeRecord(b []byte) (core.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var r core.Record
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("decode row: %w", err)
	}
	return r, nil
}

func conflictError(id int64, status core.Status) error {
	return fmt.Errorf("dataset %d is %s: %w", id, status, core.ErrConflict)
}
