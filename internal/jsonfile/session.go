// Package jsonfile implements the single-file JSON storage engine: an
// in-memory table store loaded from, and persisted back to, one JSON
// document through a Session that owns the backing file handle.
package jsonfile

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Session owns one open Handle and the Store loaded from it. All access to
// the Store goes through the Session's lock.
type Session[V any] struct {
	mu     sync.RWMutex
	open   bool
	handle Handle
	store  *Store[V]

	id     string
	config types.Config
	logger *slog.Logger

	// Sync strategy state
	syncStrategy string
	batchSize    int
	pending      int // mutations since the last persist
}

var _ types.Pantry[string] = (*Session[string])(nil)

// Open loads a Session from h. Empty content yields an empty store;
// anything else must be a valid document or Open fails with
// ErrCorruptStore. On failure the caller keeps ownership of h.
// A nil logger discards log output.
func Open[V any](h Handle, config types.Config, logger *slog.Logger) (*Session[V], error) {
	if h == nil {
		return nil, fmt.Errorf("%w: nil handle", types.ErrStoreUnavailable)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Session[V]{
		handle:       h,
		id:           newSessionID(),
		config:       config,
		syncStrategy: config.GetSyncStrategy(),
		batchSize:    config.GetBatchSize(),
	}
	s.logger = logger.With("session", s.id, "path", config.DataFile)

	store, err := s.load()
	if err != nil {
		return nil, err
	}
	s.store = store
	s.open = true
	return s, nil
}

func (s *Session[V]) load() (*Store[V], error) {
	size, err := handleSize(s.handle)
	if err != nil {
		if errors.Is(err, os.ErrClosed) {
			return nil, types.ErrClosedStore
		}
		return nil, fmt.Errorf("%w: %v", types.ErrStoreUnavailable, err)
	}
	if size == 0 {
		s.logger.Debug("initialized empty store")
		return newStore[V](), nil
	}

	data, err := readAll(s.handle)
	if err != nil {
		return nil, fmt.Errorf("%w: reading store: %v", types.ErrStoreUnavailable, err)
	}
	snap, err := decodeDocument(data, s.config.GetFormat())
	if err != nil {
		return nil, err
	}
	store, err := storeFromSnapshot[V](snap)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("loaded store", "tables", len(store.order), "bytes", size)
	return store, nil
}

// ID returns the session identifier used in log output.
func (s *Session[V]) ID() string {
	return s.id
}

// CreateTable adds an empty table.
func (s *Session[V]) CreateTable(name string) error {
	return s.mutate(func() error { return s.store.createTable(name) })
}

// DropTable removes a table with all of its rows.
func (s *Session[V]) DropTable(name string) error {
	return s.mutate(func() error { return s.store.dropTable(name) })
}

// Tables returns the table names in creation order.
func (s *Session[V]) Tables() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrClosedStore
	}
	return s.store.names(), nil
}

// Insert appends value to table and returns its identifier.
func (s *Session[V]) Insert(table string, value V) (int64, error) {
	var id int64
	err := s.mutate(func() error {
		var err error
		id, err = s.store.insert(table, value)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Select returns a windowed copy of the rows of table.
func (s *Session[V]) Select(table string, limit int) ([]types.Row[V], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrClosedStore
	}
	return s.store.selectRows(table, limit)
}

// Read returns the values of Select(table, limit).
func (s *Session[V]) Read(table string, limit int) ([]V, error) {
	rows, err := s.Select(table, limit)
	if err != nil {
		return nil, err
	}
	values := make([]V, len(rows))
	for i, r := range rows {
		values[i] = r.Value
	}
	return values, nil
}

// Update replaces the value of row id in table.
func (s *Session[V]) Update(table string, id int64, value V) error {
	return s.mutate(func() error { return s.store.update(table, id, value) })
}

// Delete removes row id from table.
func (s *Session[V]) Delete(table string, id int64) error {
	return s.mutate(func() error { return s.store.delete(table, id) })
}

// Snapshot returns a detached copy of the store with JSON-encoded values.
func (s *Session[V]) Snapshot() (types.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return types.Snapshot{}, types.ErrClosedStore
	}
	return s.store.snapshot()
}

// Restore replaces the whole store with snap. A snapshot that does not
// decode into V leaves the store untouched.
func (s *Session[V]) Restore(snap types.Snapshot) error {
	return s.mutate(func() error {
		store, err := storeFromSnapshot[V](snap)
		if err != nil {
			return err
		}
		s.store = store
		return nil
	})
}

// Persist rewrites the backing file with the current store.
func (s *Session[V]) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return types.ErrClosedStore
	}
	return s.persistLocked()
}

// Close persists once and releases the handle. Later calls are no-ops.
func (s *Session[V]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return nil // idempotent
	}
	s.open = false

	persistErr := s.persistLocked()
	if persistErr != nil {
		s.logger.Warn("persist on close failed", "err", persistErr)
	}
	closeErr := s.handle.Close()
	s.store = nil
	s.handle = nil
	s.logger.Debug("closed store")

	if closeErr != nil {
		closeErr = fmt.Errorf("%w: closing store: %v", types.ErrIOFailure, closeErr)
	}
	return errors.Join(persistErr, closeErr)
}

// mutate runs fn under the write lock and applies the sync strategy when
// fn succeeds. fn must leave the store untouched when it fails. When the
// strategy persists this mutation and the persist fails, the mutation is
// undone.
func (s *Session[V]) mutate(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return types.ErrClosedStore
	}

	due := s.persistDueLocked()
	var prev *Store[V]
	if due {
		prev = s.store.clone()
	}
	if err := fn(); err != nil {
		return err
	}
	if !due {
		if s.syncStrategy == types.SyncBatch {
			s.pending++
		}
		return nil
	}
	if err := s.persistLocked(); err != nil {
		s.store = prev
		return err
	}
	return nil
}

// Sync strategy (on_close, immediate, batch)

// persistDueLocked reports whether the next successful mutation must reach
// the file before it is acknowledged. The caller must hold s.mu.
func (s *Session[V]) persistDueLocked() bool {
	switch s.syncStrategy {
	case types.SyncImmediate:
		return true
	case types.SyncBatch:
		return s.pending+1 >= s.batchSize
	}
	return false
}

// persistLocked encodes the store and overwrites the handle. The caller
// must hold s.mu.
func (s *Session[V]) persistLocked() error {
	snap, err := s.store.snapshot()
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrIOFailure, err)
	}
	data, err := encodeDocument(snap, s.config.GetFormat(), s.config.Compact)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrIOFailure, err)
	}
	if err := overwrite(s.handle, data); err != nil {
		return fmt.Errorf("%w: %v", types.ErrIOFailure, err)
	}
	s.pending = 0
	s.logger.Debug("persisted store", "tables", len(snap.Tables), "bytes", len(data))
	return nil
}

// newSessionID generates a UUID v7 for log correlation.
func newSessionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
