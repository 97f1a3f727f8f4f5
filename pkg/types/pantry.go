package types

import "errors"

// Pantry is the caller-facing contract of one open session over a single
// store file. Values are opaque to the engine; V is whatever the caller
// stores (text, numbers, nested JSON) as long as it round-trips through
// encoding/json.
type Pantry[V any] interface {
	// CreateTable adds an empty table. Returns ErrTableExists if the name
	// is already taken.
	CreateTable(name string) error

	// DropTable removes a table and all of its rows.
	// Returns ErrTableMissing if the table does not exist.
	DropTable(name string) error

	// Tables returns the table names in creation (or load) order.
	Tables() ([]string, error)

	// Insert appends value to the table and returns its new identifier.
	// Identifiers start at 0 and are never reissued within a session.
	// Returns ErrValueInvalid, with nothing inserted, if value cannot be
	// encoded as JSON.
	Insert(table string, value V) (int64, error)

	// Select returns a copy of the table's rows after windowing: limit 0
	// returns every row, a positive limit the first limit rows, a negative
	// limit the last |limit| rows.
	Select(table string, limit int) ([]Row[V], error)

	// Read is Select with the identifiers stripped.
	Read(table string, limit int) ([]V, error)

	// Update replaces the value of row id in place.
	// Returns ErrRowMissing if no row currently carries id and
	// ErrValueInvalid if value cannot be encoded as JSON.
	Update(table string, id int64, value V) error

	// Delete removes row id. The identifier is not reissued within the
	// session; after a reload only the largest identifier present is
	// known.
	// Returns ErrRowMissing if no row currently carries id.
	Delete(table string, id int64) error

	// Snapshot returns a detached copy of the whole store with values
	// encoded as JSON.
	Snapshot() (Snapshot, error)

	// Restore replaces the whole store with the content of snap.
	Restore(snap Snapshot) error

	// Persist rewrites the backing file with the current store and flushes it.
	Persist() error

	// Close persists once and releases the backing file. Idempotent:
	// later calls return nil and do nothing. After Close every other
	// operation returns ErrClosedStore.
	Close() error
}

// Session lifecycle and persistence errors.
var (
	ErrStoreUnavailable = errors.New("store file could not be opened or created")
	ErrClosedStore      = errors.New("store is closed")
	ErrCorruptStore     = errors.New("store file is corrupt")
	ErrIOFailure        = errors.New("store file write failed")
)
