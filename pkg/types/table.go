package types

import (
	"encoding/json"
	"errors"
)

// Row is one (identifier, value) pair of a table.
type Row[V any] struct {
	ID    int64 `json:"id"`
	Value V     `json:"value"`
}

// Cloner is implemented by values that can deep-copy themselves. The engine
// clones such values on the way in and out so callers never share memory
// with the stored rows.
type Cloner[T any] interface {
	Clone() T
}

// Snapshot is a detached, format-neutral copy of a whole store. Values are
// kept as raw JSON so snapshots can move between sessions of different
// value types and between the JSON, JSONL and SQLite representations.
type Snapshot struct {
	Tables []TableSnapshot `json:"tables"`
}

// TableSnapshot is one table of a Snapshot, rows in table order.
type TableSnapshot struct {
	Name      string                 `json:"name"`
	HighestID int64                  `json:"highest_id"`
	Rows      []Row[json.RawMessage] `json:"rows"`
}

// Table and row precondition errors.
var (
	ErrTableExists  = errors.New("table already exists")
	ErrTableMissing = errors.New("table does not exist")
	ErrRowMissing   = errors.New("row does not exist")
	ErrValueInvalid = errors.New("value cannot be encoded as JSON")
)
