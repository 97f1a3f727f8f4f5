package jsonfile

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Store maps table names to tables. order keeps the creation (or load)
// order of the names so the document round-trips unchanged.
type Store[V any] struct {
	tables map[string]*Table[V]
	order  []string
}

func newStore[V any]() *Store[V] {
	return &Store[V]{tables: make(map[string]*Table[V])}
}

func (s *Store[V]) table(name string) (*Table[V], error) {
	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrTableMissing, name)
	}
	return t, nil
}

func (s *Store[V]) createTable(name string) error {
	if _, ok := s.tables[name]; ok {
		return fmt.Errorf("%w: %q", types.ErrTableExists, name)
	}
	s.tables[name] = newTable[V]()
	s.order = append(s.order, name)
	return nil
}

func (s *Store[V]) dropTable(name string) error {
	if _, err := s.table(name); err != nil {
		return err
	}
	delete(s.tables, name)
	s.order = slices.DeleteFunc(s.order, func(n string) bool { return n == name })
	return nil
}

func (s *Store[V]) names() []string {
	return slices.Clone(s.order)
}

// checkValue rejects values the document encoder would fail on later
// (NaN, infinities, malformed raw JSON, channels).
func checkValue[V any](value V) error {
	if _, err := json.Marshal(value); err != nil {
		return fmt.Errorf("%w: %v", types.ErrValueInvalid, err)
	}
	return nil
}

func (s *Store[V]) insert(name string, value V) (int64, error) {
	t, err := s.table(name)
	if err != nil {
		return 0, err
	}
	if err := checkValue(value); err != nil {
		return 0, err
	}
	return t.insert(value), nil
}

func (s *Store[V]) update(name string, id int64, value V) error {
	t, err := s.table(name)
	if err != nil {
		return err
	}
	if t.indexOf(id) < 0 {
		return fmt.Errorf("%w: cannot update id %d in table %q", types.ErrRowMissing, id, name)
	}
	if err := checkValue(value); err != nil {
		return err
	}
	if !t.update(id, value) {
		return fmt.Errorf("%w: cannot update id %d in table %q", types.ErrRowMissing, id, name)
	}
	return nil
}

func (s *Store[V]) delete(name string, id int64) error {
	t, err := s.table(name)
	if err != nil {
		return err
	}
	if !t.delete(id) {
		return fmt.Errorf("%w: cannot delete id %d from table %q", types.ErrRowMissing, id, name)
	}
	return nil
}

func (s *Store[V]) selectRows(name string, limit int) ([]types.Row[V], error) {
	t, err := s.table(name)
	if err != nil {
		return nil, err
	}
	return t.window(limit), nil
}

// clone copies the table structure so a mutation can be undone. Values are
// shared: the store replaces them but never changes them in place.
func (s *Store[V]) clone() *Store[V] {
	c := &Store[V]{
		tables: make(map[string]*Table[V], len(s.tables)),
		order:  slices.Clone(s.order),
	}
	for name, t := range s.tables {
		c.tables[name] = &Table[V]{rows: slices.Clone(t.rows), highestID: t.highestID}
	}
	return c
}

// snapshot returns a detached, JSON-encoded copy of the store.
func (s *Store[V]) snapshot() (types.Snapshot, error) {
	snap := types.Snapshot{Tables: make([]types.TableSnapshot, 0, len(s.order))}
	for _, name := range s.order {
		ts, err := s.tables[name].snapshot(name)
		if err != nil {
			return types.Snapshot{}, err
		}
		snap.Tables = append(snap.Tables, ts)
	}
	return snap, nil
}

// storeFromSnapshot builds a Store from snap. Any shape violation wraps
// ErrCorruptStore; no partial store is returned.
func storeFromSnapshot[V any](snap types.Snapshot) (*Store[V], error) {
	s := newStore[V]()
	for _, ts := range snap.Tables {
		if _, dup := s.tables[ts.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate table %q", types.ErrCorruptStore, ts.Name)
		}
		t, err := tableFromSnapshot[V](ts)
		if err != nil {
			return nil, err
		}
		s.tables[ts.Name] = t
		s.order = append(s.order, ts.Name)
	}
	return s, nil
}
