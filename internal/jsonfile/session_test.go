package jsonfile

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

func openMem[V any](t *testing.T, h *memHandle, config types.Config) *Session[V] {
	t.Helper()
	s, err := Open[V](h, config, nil)
	require.NoError(t, err)
	return s
}

func TestSession_EmptyHandleStartsEmpty(t *testing.T) {
	s := openMem[string](t, newMemHandle(""), types.Config{})
	defer s.Close()

	tables, err := s.Tables()
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestSession_NewTableIsEmpty(t *testing.T) {
	s := openMem[string](t, newMemHandle(""), types.Config{})
	defer s.Close()

	require.NoError(t, s.CreateTable("t"))

	rows, err := s.Select("t", 0)
	require.NoError(t, err)
	assert.Empty(t, rows)

	values, err := s.Read("t", 0)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestSession_CreateAndDropTable(t *testing.T) {
	s := openMem[string](t, newMemHandle(""), types.Config{})
	defer s.Close()

	require.NoError(t, s.CreateTable("customers"))
	require.NoError(t, s.CreateTable("orders"))

	err := s.CreateTable("customers")
	assert.ErrorIs(t, err, types.ErrTableExists)

	tables, err := s.Tables()
	require.NoError(t, err)
	assert.Equal(t, []string{"customers", "orders"}, tables)

	_, err = s.Insert("orders", "item #1")
	require.NoError(t, err)
	require.NoError(t, s.DropTable("orders"))

	tables, err = s.Tables()
	require.NoError(t, err)
	assert.Equal(t, []string{"customers"}, tables)

	_, err = s.Read("orders", 0)
	assert.ErrorIs(t, err, types.ErrTableMissing)
	assert.ErrorIs(t, s.DropTable("orders"), types.ErrTableMissing)
}

func TestSession_TableNamesAreCaseSensitive(t *testing.T) {
	s := openMem[string](t, newMemHandle(""), types.Config{})
	defer s.Close()

	require.NoError(t, s.CreateTable("Users"))
	require.NoError(t, s.CreateTable("users"))

	tables, err := s.Tables()
	require.NoError(t, err)
	assert.Len(t, tables, 2)
}

func TestSession_InsertIdentifiersIncrease(t *testing.T) {
	s := openMem[int](t, newMemHandle(""), types.Config{})
	defer s.Close()
	require.NoError(t, s.CreateTable("t"))

	for want := int64(0); want < 5; want++ {
		id, err := s.Insert("t", int(want))
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}

	require.NoError(t, s.Delete("t", 4))
	require.NoError(t, s.Delete("t", 1))

	id, err := s.Insert("t", 99)
	require.NoError(t, err)
	assert.Equal(t, int64(5), id, "deleted identifiers must not be reissued")
}

func TestSession_InsertIntoMissingTable(t *testing.T) {
	s := openMem[string](t, newMemHandle(""), types.Config{})
	defer s.Close()

	_, err := s.Insert("non-existing table", "data")
	assert.ErrorIs(t, err, types.ErrTableMissing)
}

func TestSession_CustomersScenario(t *testing.T) {
	s := openMem[string](t, newMemHandle(""), types.Config{})
	defer s.Close()

	require.NoError(t, s.CreateTable("customers"))

	id, err := s.Insert("customers", "hello, world!")
	require.NoError(t, err)
	assert.Equal(t, int64(0), id)

	id, err = s.Insert("customers", "2nd string")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	require.NoError(t, s.Update("customers", 1, "a new string"))

	rows, err := s.Select("customers", 0)
	require.NoError(t, err)
	assert.Equal(t, []types.Row[string]{
		{ID: 0, Value: "hello, world!"},
		{ID: 1, Value: "a new string"},
	}, rows)

	require.NoError(t, s.Delete("customers", 0))

	rows, err = s.Select("customers", 0)
	require.NoError(t, err)
	assert.Equal(t, []types.Row[string]{{ID: 1, Value: "a new string"}}, rows)

	id, err = s.Insert("customers", "x")
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)
}

func TestSession_UpdateDeletePreconditions(t *testing.T) {
	s := openMem[string](t, newMemHandle(""), types.Config{})
	defer s.Close()

	require.NoError(t, s.CreateTable("t"))
	_, err := s.Insert("t", "a")
	require.NoError(t, err)
	_, err = s.Insert("t", "b")
	require.NoError(t, err)
	require.NoError(t, s.Delete("t", 1))

	tests := []struct {
		name    string
		table   string
		id      int64
		wantErr error
	}{
		{"missing table", "nope", 0, types.ErrTableMissing},
		{"negative id", "t", -1, types.ErrRowMissing},
		{"never allocated id", "t", 7, types.ErrRowMissing},
		{"deleted id", "t", 1, types.ErrRowMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, s.Update(tt.table, tt.id, "z"), tt.wantErr)
			assert.ErrorIs(t, s.Delete(tt.table, tt.id), tt.wantErr)
		})
	}

	values, err := s.Read("t", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, values, "failed calls must not mutate")
}

func TestSession_UpdateKeepsPosition(t *testing.T) {
	s := openMem[string](t, newMemHandle(""), types.Config{})
	defer s.Close()

	require.NoError(t, s.CreateTable("t"))
	for _, v := range []string{"a", "b", "c"} {
		_, err := s.Insert("t", v)
		require.NoError(t, err)
	}
	require.NoError(t, s.Update("t", 1, "B"))

	values, err := s.Read("t", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "B", "c"}, values)
}

func TestSession_ReadMatchesSelect(t *testing.T) {
	s := openMem[string](t, newMemHandle(""), types.Config{})
	defer s.Close()

	require.NoError(t, s.CreateTable("t"))
	for _, v := range []string{"a", "b", "c", "d"} {
		_, err := s.Insert("t", v)
		require.NoError(t, err)
	}

	for _, limit := range []int{0, 1, 3, 10, -1, -3, -10} {
		rows, err := s.Select("t", limit)
		require.NoError(t, err)
		values, err := s.Read("t", limit)
		require.NoError(t, err)
		require.Len(t, values, len(rows))
		for i := range rows {
			assert.Equal(t, rows[i].Value, values[i])
		}
	}
}

func TestSession_SelectReturnsCopy(t *testing.T) {
	s := openMem[json.RawMessage](t, newMemHandle(""), types.Config{})
	defer s.Close()

	require.NoError(t, s.CreateTable("t"))
	input := json.RawMessage(`"abc"`)
	_, err := s.Insert("t", input)
	require.NoError(t, err)
	input[1] = 'X'

	rows, err := s.Select("t", 0)
	require.NoError(t, err)
	rows[0].Value[1] = 'Y'
	rows[0].ID = 42

	again, err := s.Select("t", 0)
	require.NoError(t, err)
	assert.Equal(t, types.Row[json.RawMessage]{ID: 0, Value: json.RawMessage(`"abc"`)}, again[0])
}

func TestSession_ClosedGuard(t *testing.T) {
	h := newMemHandle("")
	s := openMem[string](t, h, types.Config{})
	require.NoError(t, s.CreateTable("customers"))
	_, err := s.Insert("customers", "hello")
	require.NoError(t, err)

	require.NoError(t, s.Close())
	assert.True(t, h.closed)
	assert.Equal(t, 1, h.syncs)

	_, err = s.Insert("customers", "should not be inserted")
	assert.ErrorIs(t, err, types.ErrClosedStore)
	assert.ErrorIs(t, s.Update("customers", 0, "x"), types.ErrClosedStore)
	assert.ErrorIs(t, s.Delete("customers", 0), types.ErrClosedStore)
	_, err = s.Select("customers", 0)
	assert.ErrorIs(t, err, types.ErrClosedStore)
	_, err = s.Read("customers", 0)
	assert.ErrorIs(t, err, types.ErrClosedStore)
	assert.ErrorIs(t, s.CreateTable("other"), types.ErrClosedStore)
	assert.ErrorIs(t, s.DropTable("customers"), types.ErrClosedStore)
	_, err = s.Tables()
	assert.ErrorIs(t, err, types.ErrClosedStore)
	assert.ErrorIs(t, s.Persist(), types.ErrClosedStore)
	_, err = s.Snapshot()
	assert.ErrorIs(t, err, types.ErrClosedStore)

	// Second close: no error, no persist, no second handle close.
	require.NoError(t, s.Close())
	assert.Equal(t, 1, h.syncs)
	assert.Equal(t, 1, h.closes)
}

func TestSession_RoundTrip(t *testing.T) {
	h := newMemHandle("")
	s := openMem[string](t, h, types.Config{})

	require.NoError(t, s.CreateTable("customers"))
	require.NoError(t, s.CreateTable("orders"))
	require.NoError(t, s.CreateTable("empty"))
	for _, v := range []string{"hello, world!", "2nd string"} {
		_, err := s.Insert("customers", v)
		require.NoError(t, err)
	}
	_, err := s.Insert("orders", "item #1")
	require.NoError(t, err)
	_, err = s.Insert("customers", "item #2")
	require.NoError(t, err)
	require.NoError(t, s.Delete("customers", 1))

	wantTables, err := s.Tables()
	require.NoError(t, err)
	wantRows := map[string][]types.Row[string]{}
	for _, name := range wantTables {
		wantRows[name], err = s.Select(name, 0)
		require.NoError(t, err)
	}
	require.NoError(t, s.Close())

	s2 := openMem[string](t, h.reopen(), types.Config{})
	defer s2.Close()

	gotTables, err := s2.Tables()
	require.NoError(t, err)
	assert.Equal(t, wantTables, gotTables)
	for _, name := range gotTables {
		rows, err := s2.Select(name, 0)
		require.NoError(t, err)
		assert.Equal(t, wantRows[name], rows, "table %q", name)
	}

	id, err := s2.Insert("customers", "after reload")
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
}

func TestSession_RoundTripStructuredValues(t *testing.T) {
	h := newMemHandle("")
	s := openMem[any](t, h, types.Config{})

	require.NoError(t, s.CreateTable("mixed"))
	values := []any{
		"text",
		float64(42),
		true,
		nil,
		[]any{float64(1), "two"},
		map[string]any{"name": "ada", "tags": []any{"x"}},
	}
	for _, v := range values {
		_, err := s.Insert("mixed", v)
		require.NoError(t, err)
	}
	require.NoError(t, s.Close())

	s2 := openMem[any](t, h.reopen(), types.Config{})
	defer s2.Close()
	got, err := s2.Read("mixed", 0)
	require.NoError(t, err)
	assert.Equal(t, values, got)
}

func TestSession_LoadRecomputesHighestID(t *testing.T) {
	h := newMemHandle(`{"t": [[5, "a"], [2, "b"]], "u": []}`)
	s := openMem[string](t, h, types.Config{})
	defer s.Close()

	id, err := s.Insert("t", "c")
	require.NoError(t, err)
	assert.Equal(t, int64(6), id)

	id, err = s.Insert("u", "first")
	require.NoError(t, err)
	assert.Equal(t, int64(0), id)

	rows, err := s.Select("t", 0)
	require.NoError(t, err)
	assert.Equal(t, []types.Row[string]{{ID: 5, Value: "a"}, {ID: 2, Value: "b"}, {ID: 6, Value: "c"}}, rows)
}

func TestSession_CorruptLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid json", `{"t": [[0, "a"]`},
		{"whitespace only", "   \n"},
		{"top level array", `[[0, "a"]]`},
		{"top level string", `"hello"`},
		{"table is not an array", `{"t": {"0": "a"}}`},
		{"table is null", `{"t": null}`},
		{"row is not a pair", `{"t": ["a"]}`},
		{"row has three elements", `{"t": [[0, "a", "b"]]}`},
		{"row has one element", `{"t": [[0]]}`},
		{"identifier is a string", `{"t": [["0", "a"]]}`},
		{"identifier is fractional", `{"t": [[1.5, "a"]]}`},
		{"identifier is negative", `{"t": [[-1, "a"]]}`},
		{"duplicate identifier", `{"t": [[0, "a"], [0, "b"]]}`},
		{"duplicate table", `{"t": [], "t": []}`},
		{"trailing data", `{"t": []} {"u": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newMemHandle(tt.content)
			s, err := Open[string](h, types.Config{}, nil)
			assert.ErrorIs(t, err, types.ErrCorruptStore)
			assert.Nil(t, s)
			assert.False(t, h.closed, "caller keeps the handle on failure")
		})
	}
}

func TestSession_ValueTypeMismatchIsCorrupt(t *testing.T) {
	h := newMemHandle(`{"t": [[0, {"nested": true}]]}`)
	_, err := Open[int](h, types.Config{}, nil)
	assert.ErrorIs(t, err, types.ErrCorruptStore)
}

func TestSession_OpenRejectsNilHandle(t *testing.T) {
	_, err := Open[string](nil, types.Config{}, nil)
	assert.ErrorIs(t, err, types.ErrStoreUnavailable)
}

func TestSession_OpenRejectsInvalidConfig(t *testing.T) {
	_, err := Open[string](newMemHandle(""), types.Config{Format: "xml"}, nil)
	assert.ErrorIs(t, err, types.ErrFormatUnknown)
}

func TestSession_OpenClosedFile(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = Open[string](f, types.Config{}, nil)
	assert.ErrorIs(t, err, types.ErrClosedStore)
}

func TestSession_PersistOverwrites(t *testing.T) {
	h := newMemHandle("")
	s := openMem[string](t, h, types.Config{Compact: true})
	defer s.Close()

	require.NoError(t, s.CreateTable("t"))
	for _, v := range []string{"first long value", "second long value"} {
		_, err := s.Insert("t", v)
		require.NoError(t, err)
	}
	require.NoError(t, s.Persist())
	require.NoError(t, s.DropTable("t"))
	require.NoError(t, s.Persist())

	assert.Equal(t, "{}\n", string(h.buf))
	assert.Equal(t, 2, h.syncs)
}

func TestSession_PersistFailureLeavesStore(t *testing.T) {
	h := newMemHandle("")
	s := openMem[string](t, h, types.Config{})

	require.NoError(t, s.CreateTable("t"))
	_, err := s.Insert("t", "a")
	require.NoError(t, err)

	h.writeErr = errors.New("disk full")
	assert.ErrorIs(t, s.Persist(), types.ErrIOFailure)

	values, err := s.Read("t", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, values)

	h.writeErr = nil
	require.NoError(t, s.Persist())
	require.NoError(t, s.Close())
}

func TestSession_CloseReportsPersistFailure(t *testing.T) {
	h := newMemHandle("")
	s := openMem[string](t, h, types.Config{})
	require.NoError(t, s.CreateTable("t"))

	h.writeErr = errors.New("disk full")
	assert.ErrorIs(t, s.Close(), types.ErrIOFailure)
	assert.True(t, h.closed, "handle is released even when the final persist fails")

	assert.NoError(t, s.Close())
	_, err := s.Tables()
	assert.ErrorIs(t, err, types.ErrClosedStore)
}

func TestSession_SyncImmediate(t *testing.T) {
	h := newMemHandle("")
	s := openMem[string](t, h, types.Config{SyncStrategy: types.SyncImmediate})
	defer s.Close()

	require.NoError(t, s.CreateTable("t"))
	_, err := s.Insert("t", "a")
	require.NoError(t, err)
	assert.Equal(t, 2, h.syncs)

	reloaded := openMem[string](t, h.reopen(), types.Config{})
	values, err := reloaded.Read("t", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, values)

	// Failed preconditions do not persist.
	_, err = s.Insert("missing", "a")
	assert.ErrorIs(t, err, types.ErrTableMissing)
	assert.Equal(t, 2, h.syncs)
}

func TestSession_SyncImmediateReportsWriteFailure(t *testing.T) {
	h := newMemHandle("")
	s := openMem[string](t, h, types.Config{SyncStrategy: types.SyncImmediate})
	require.NoError(t, s.CreateTable("t"))

	_, err := s.Insert("t", "a")
	require.NoError(t, err)

	h.writeErr = errors.New("disk full")
	id, err := s.Insert("t", "b")
	assert.ErrorIs(t, err, types.ErrIOFailure)
	assert.Equal(t, int64(0), id)
	assert.ErrorIs(t, s.Update("t", 0, "changed"), types.ErrIOFailure)
	assert.ErrorIs(t, s.Delete("t", 0), types.ErrIOFailure)
	assert.ErrorIs(t, s.CreateTable("u"), types.ErrIOFailure)

	rows, err := s.Select("t", 0)
	require.NoError(t, err)
	assert.Equal(t, []types.Row[string]{{ID: 0, Value: "a"}}, rows, "failed writes leave the store as it was")
	tables, err := s.Tables()
	require.NoError(t, err)
	assert.Equal(t, []string{"t"}, tables)

	h.writeErr = nil
	id, err = s.Insert("t", "b")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	require.NoError(t, s.Close())
}

func TestSession_SyncBatchFailedFlushUndoesLastWrite(t *testing.T) {
	h := newMemHandle("")
	s := openMem[string](t, h, types.Config{SyncStrategy: types.SyncBatch, BatchSize: 2})
	require.NoError(t, s.CreateTable("t"))

	h.writeErr = errors.New("disk full")
	_, err := s.Insert("t", "a")
	assert.ErrorIs(t, err, types.ErrIOFailure)

	tables, err := s.Tables()
	require.NoError(t, err)
	assert.Equal(t, []string{"t"}, tables, "writes acknowledged earlier in the batch stay")
	rows, err := s.Select("t", 0)
	require.NoError(t, err)
	assert.Empty(t, rows)

	// The batch is still due, so the retry flushes.
	h.writeErr = nil
	_, err = s.Insert("t", "a")
	require.NoError(t, err)
	assert.Equal(t, 1, h.syncs)
	require.NoError(t, s.Close())
}

func TestSession_RejectsUnencodableValues(t *testing.T) {
	h := newMemHandle("")
	s := openMem[float64](t, h, types.Config{})
	require.NoError(t, s.CreateTable("t"))
	_, err := s.Insert("t", 1.5)
	require.NoError(t, err)

	tests := []struct {
		name  string
		value float64
	}{
		{"NaN", math.NaN()},
		{"positive infinity", math.Inf(1)},
		{"negative infinity", math.Inf(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := s.Insert("t", tt.value)
			assert.ErrorIs(t, err, types.ErrValueInvalid)
			assert.Equal(t, int64(0), id)
			assert.ErrorIs(t, s.Update("t", 0, tt.value), types.ErrValueInvalid)
		})
	}

	rows, err := s.Select("t", 0)
	require.NoError(t, err)
	assert.Equal(t, []types.Row[float64]{{ID: 0, Value: 1.5}}, rows)

	assert.ErrorIs(t, s.Update("t", 9, math.NaN()), types.ErrRowMissing)

	id, err := s.Insert("t", 2.5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id, "rejected values do not consume identifiers")

	require.NoError(t, s.Close())
	assert.Equal(t, "{\n  \"t\": [\n    [\n      0,\n      1.5\n    ],\n    [\n      1,\n      2.5\n    ]\n  ]\n}\n", string(h.buf))
}

func TestSession_RejectsMalformedRawJSON(t *testing.T) {
	h := newMemHandle("")
	s := openMem[json.RawMessage](t, h, types.Config{Compact: true})
	require.NoError(t, s.CreateTable("t"))

	_, err := s.Insert("t", json.RawMessage(`{oops`))
	assert.ErrorIs(t, err, types.ErrValueInvalid)

	_, err = s.Insert("t", json.RawMessage(`{"ok":true}`))
	require.NoError(t, err)
	assert.ErrorIs(t, s.Update("t", 0, json.RawMessage(`[1,`)), types.ErrValueInvalid)

	require.NoError(t, s.Close())
	assert.Equal(t, `{"t":[[0,{"ok":true}]]}`+"\n", string(h.buf))
}

func TestSession_SyncBatch(t *testing.T) {
	h := newMemHandle("")
	s := openMem[string](t, h, types.Config{SyncStrategy: types.SyncBatch, BatchSize: 3})

	require.NoError(t, s.CreateTable("t"))
	_, err := s.Insert("t", "a")
	require.NoError(t, err)
	assert.Equal(t, 0, h.syncs)

	_, err = s.Insert("t", "b")
	require.NoError(t, err)
	assert.Equal(t, 1, h.syncs)

	_, err = s.Insert("t", "c")
	require.NoError(t, err)
	assert.Equal(t, 1, h.syncs)

	require.NoError(t, s.Close())
	assert.Equal(t, 2, h.syncs)
}

func TestSession_SyncOnCloseDoesNotWriteEarly(t *testing.T) {
	h := newMemHandle("")
	s := openMem[string](t, h, types.Config{})

	require.NoError(t, s.CreateTable("t"))
	_, err := s.Insert("t", "a")
	require.NoError(t, err)
	assert.Empty(t, h.buf)

	require.NoError(t, s.Close())
	assert.NotEmpty(t, h.buf)
}

func TestSession_ValuesFormat(t *testing.T) {
	h := newMemHandle(`{"test": ["item #1", "item #2", "item #3"]}`)
	s := openMem[string](t, h, types.Config{Format: types.FormatValues, Compact: true})

	rows, err := s.Select("test", -1)
	require.NoError(t, err)
	assert.Equal(t, []types.Row[string]{{ID: 2, Value: "item #3"}}, rows)

	require.NoError(t, s.Delete("test", 0))
	require.NoError(t, s.Close())
	assert.Equal(t, `{"test":["item #2","item #3"]}`+"\n", string(h.buf))
}

func TestSession_SnapshotRestore(t *testing.T) {
	src := openMem[string](t, newMemHandle(""), types.Config{})
	defer src.Close()
	require.NoError(t, src.CreateTable("t"))
	for _, v := range []string{"a", "b", "c"} {
		_, err := src.Insert("t", v)
		require.NoError(t, err)
	}
	require.NoError(t, src.Delete("t", 2))

	snap, err := src.Snapshot()
	require.NoError(t, err)
	require.Len(t, snap.Tables, 1)
	assert.Equal(t, int64(2), snap.Tables[0].HighestID)

	dst := openMem[string](t, newMemHandle(""), types.Config{})
	defer dst.Close()
	require.NoError(t, dst.CreateTable("stale"))
	require.NoError(t, dst.Restore(snap))

	tables, err := dst.Tables()
	require.NoError(t, err)
	assert.Equal(t, []string{"t"}, tables)

	id, err := dst.Insert("t", "d")
	require.NoError(t, err)
	assert.Equal(t, int64(3), id, "restored counter must survive the deleted maximum")
}

func TestSession_RestoreRejectsBadSnapshot(t *testing.T) {
	s := openMem[int](t, newMemHandle(""), types.Config{})
	defer s.Close()
	require.NoError(t, s.CreateTable("keep"))

	bad := types.Snapshot{Tables: []types.TableSnapshot{{
		Name: "t",
		Rows: []types.Row[json.RawMessage]{{ID: 0, Value: json.RawMessage(`"not an int"`)}},
	}}}
	assert.ErrorIs(t, s.Restore(bad), types.ErrCorruptStore)

	tables, err := s.Tables()
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, tables)
}

func TestSession_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	require.NoError(t, err)
	s, err := Open[string](f, types.Config{DataFile: path}, nil)
	require.NoError(t, err)

	require.NoError(t, s.CreateTable("test"))
	for _, v := range []string{"item #1", "item #2"} {
		_, err := s.Insert("test", v)
		require.NoError(t, err)
	}
	require.NoError(t, s.Persist())
	_, err = s.Insert("test", "item #3")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"item #3"`)

	f, err = os.OpenFile(path, os.O_RDWR, 0o644)
	require.NoError(t, err)
	s, err = Open[string](f, types.Config{DataFile: path}, nil)
	require.NoError(t, err)
	defer s.Close()

	values, err := s.Read("test", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"item #1", "item #2", "item #3"}, values)
}
