package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

func sampleSnapshot() types.Snapshot {
	return types.Snapshot{Tables: []types.TableSnapshot{
		{Name: "orders", HighestID: 0, Rows: []types.Row[json.RawMessage]{
			{ID: 0, Value: json.RawMessage(`"item #1"`)},
		}},
		{Name: "customers", HighestID: 5, Rows: []types.Row[json.RawMessage]{
			{ID: 4, Value: json.RawMessage(`{"name":"ada","tags":["x"]}`)},
			{ID: 1, Value: json.RawMessage(`"a new string"`)},
			{ID: 2, Value: json.RawMessage(`null`)},
		}},
		{Name: "empty", HighestID: -1},
	}}
}

func TestExportImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "export.db")
	snap := sampleSnapshot()

	info, err := Export(ctx, snap, dbPath)
	require.NoError(t, err)
	assert.Equal(t, 3, info.Tables)
	assert.Equal(t, 4, info.Rows)

	parsed, err := uuid.Parse(info.ExportID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())

	got, gotInfo, err := Import(ctx, dbPath)
	require.NoError(t, err)
	assert.Equal(t, info.ExportID, gotInfo.ExportID)
	assert.True(t, info.ExportedAt.Equal(gotInfo.ExportedAt))
	assert.Equal(t, 4, gotInfo.Rows)

	require.Len(t, got.Tables, 3)
	for i, want := range snap.Tables {
		assert.Equal(t, want.Name, got.Tables[i].Name)
		assert.Equal(t, want.HighestID, got.Tables[i].HighestID)
		require.Len(t, got.Tables[i].Rows, len(want.Rows))
		for j, r := range want.Rows {
			assert.Equal(t, r.ID, got.Tables[i].Rows[j].ID)
			assert.JSONEq(t, string(r.Value), string(got.Tables[i].Rows[j].Value))
		}
	}
}

func TestExport_ReplacesExistingFile(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "export.db")

	_, err := Export(ctx, sampleSnapshot(), dbPath)
	require.NoError(t, err)

	small := types.Snapshot{Tables: []types.TableSnapshot{{Name: "only", HighestID: -1}}}
	_, err = Export(ctx, small, dbPath)
	require.NoError(t, err)

	got, _, err := Import(ctx, dbPath)
	require.NoError(t, err)
	require.Len(t, got.Tables, 1)
	assert.Equal(t, "only", got.Tables[0].Name)
}

func TestExport_IsQueryableWithSQL(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "export.db")
	_, err := Export(ctx, sampleSnapshot(), dbPath)
	require.NoError(t, err)

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var name string
	err = db.QueryRowContext(ctx,
		`SELECT json_extract(value, '$.name') FROM pantry_rows WHERE table_name = ? AND row_id = ?`,
		"customers", 4).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "ada", name)
}

func TestImport_MissingFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "missing.db")
	_, _, err := Import(context.Background(), dbPath)
	assert.Error(t, err)

	_, statErr := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(statErr), "import must not create the file")
}

func TestImport_RejectsForeignDatabase(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "other.db")

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, _, err = Import(ctx, dbPath)
	assert.ErrorIs(t, err, ErrNotAnExport)
}
