package database

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/dataingest/internal/config"
	"github.com/JonMunkholm/dataingest/internal/core"
)

// newTestPostgres connects to TEST_DATABASE_URL, skipping when it is unset.
func newTestPostgres(t *testing.T) *PostgresStore {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	st, err := OpenPostgres(ctx, config.DatabaseConfig{URL: url, MaxConns: 4, MinConns: 0})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.Migrate(ctx))
	return st
}

func TestPostgres_IngestLifecycle(t *testing.T) {
	st := newTestPostgres(t)
	ctx := context.Background()

	ds, err := st.CreateDataset(ctx, core.CreateDatasetParams{Name: "pg lifecycle", FileType: core.FileTypeCSV})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.DeleteDataset(context.Background(), ds.ID) })
	assert.Equal(t, core.StatusPending, ds.Status)

	session, err := st.CreateUploadSession(ctx, core.CreateUploadSessionParams{
		DatasetID: ds.ID, Filename: "people.csv", ContentType: "text/csv",
	})
	require.NoError(t, err)
	assert.Len(t, session.ID, 36)

	require.NoError(t, st.BeginProcessing(ctx, ds.ID, 42))
	assert.ErrorIs(t, st.BeginProcessing(ctx, ds.ID, 42), core.ErrConflict)

	require.NoError(t, st.InsertDataPoints(ctx, ds.ID, 0, []core.Record{
		{"name": "Alice", "age": int64(30)},
		{"name": "Bob", "age": int64(25)},
	}))
	require.NoError(t, st.CompleteDataset(ctx, ds.ID, core.Schema{ColumnOrder: []string{"name", "age"}, RowCount: 2, ColumnCount: 2}, 2))

	got, err := st.GetDataset(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusReady, got.Status)
	require.NotNil(t, got.Schema)
	assert.Equal(t, 2, got.Schema.ColumnCount)

	points, err := st.PreviewDataPoints(ctx, ds.ID, 10)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "Alice", points[0].Data["name"])
	assert.Equal(t, json.Number("25"), points[1].Data["age"])

	sessions, err := st.ListUploadSessions(ctx, ds.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, session.ID, sessions[0].ID)
}

func TestPostgres_DeleteAndNotFound(t *testing.T) {
	st := newTestPostgres(t)
	ctx := context.Background()

	ds, err := st.CreateDataset(ctx, core.CreateDatasetParams{Name: "pg delete", FileType: core.FileTypeJSON})
	require.NoError(t, err)
	require.NoError(t, st.InsertDataPoints(ctx, ds.ID, 0, []core.Record{{"a": int64(1)}}))

	require.NoError(t, st.DeleteDataset(ctx, ds.ID))
	assert.ErrorIs(t, st.DeleteDataset(ctx, ds.ID), core.ErrNotFound)

	_, err = st.GetDataset(ctx, ds.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	err = st.InsertDataPoints(ctx, ds.ID, 0, []core.Record{{"a": int64(1)}})
	assert.ErrorIs(t, err, core.ErrNotFound)
}
