package jsonfile

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Table is an ordered sequence of rows plus the highest identifier ever
// allocated in it. highestID is tracked explicitly and never derived from
// len(rows): deletes retire identifiers for good.
type Table[V any] struct {
	rows      []types.Row[V]
	highestID int64
}

func newTable[V any]() *Table[V] {
	return &Table[V]{highestID: -1}
}

// insert appends value under the next identifier and returns it.
func (t *Table[V]) insert(value V) int64 {
	id := t.highestID + 1
	t.rows = append(t.rows, types.Row[V]{ID: id, Value: cloneValue(value)})
	t.highestID = id
	return id
}

// indexOf returns the position of row id, or -1.
func (t *Table[V]) indexOf(id int64) int {
	if id < 0 || id > t.highestID {
		return -1
	}
	return slices.IndexFunc(t.rows, func(r types.Row[V]) bool { return r.ID == id })
}

func (t *Table[V]) update(id int64, value V) bool {
	i := t.indexOf(id)
	if i < 0 {
		return false
	}
	t.rows[i].Value = cloneValue(value)
	return true
}

func (t *Table[V]) delete(id int64) bool {
	i := t.indexOf(id)
	if i < 0 {
		return false
	}
	t.rows = slices.Delete(t.rows, i, i+1)
	return true
}

// window returns a detached copy of the rows selected by limit: 0 for all
// rows, n > 0 for the first n, n < 0 for the last |n|.
func (t *Table[V]) window(limit int) []types.Row[V] {
	sel := windowOf(t.rows, limit)
	out := make([]types.Row[V], len(sel))
	for i, r := range sel {
		out[i] = types.Row[V]{ID: r.ID, Value: cloneValue(r.Value)}
	}
	return out
}

func windowOf[T any](rows []T, limit int) []T {
	n := len(rows)
	switch {
	case limit > 0 && limit < n:
		return rows[:limit]
	case limit < 0 && limit > -n:
		return rows[n+limit:]
	}
	return rows
}

// snapshot encodes the table's values as raw JSON.
func (t *Table[V]) snapshot(name string) (types.TableSnapshot, error) {
	ts := types.TableSnapshot{
		Name:      name,
		HighestID: t.highestID,
		Rows:      make([]types.Row[json.RawMessage], len(t.rows)),
	}
	for i, r := range t.rows {
		raw, err := json.Marshal(r.Value)
		if err != nil {
			return types.TableSnapshot{}, fmt.Errorf("encoding row %d of table %q: %w", r.ID, name, err)
		}
		ts.Rows[i] = types.Row[json.RawMessage]{ID: r.ID, Value: raw}
	}
	return ts, nil
}

// tableFromSnapshot decodes ts into a Table. The counter is the larger of
// the recorded HighestID and the maximum identifier present, so an
// inconsistent snapshot can never cause identifier reuse.
func tableFromSnapshot[V any](ts types.TableSnapshot) (*Table[V], error) {
	t := newTable[V]()
	if ts.HighestID > t.highestID {
		t.highestID = ts.HighestID
	}
	seen := make(map[int64]struct{}, len(ts.Rows))
	t.rows = make([]types.Row[V], 0, len(ts.Rows))
	for i, r := range ts.Rows {
		if r.ID < 0 {
			return nil, fmt.Errorf("%w: table %q row %d has negative identifier %d", types.ErrCorruptStore, ts.Name, i, r.ID)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("%w: table %q has duplicate identifier %d", types.ErrCorruptStore, ts.Name, r.ID)
		}
		seen[r.ID] = struct{}{}

		var v V
		if err := json.Unmarshal(r.Value, &v); err != nil {
			return nil, fmt.Errorf("%w: table %q row %d: %v", types.ErrCorruptStore, ts.Name, r.ID, err)
		}
		t.rows = append(t.rows, types.Row[V]{ID: r.ID, Value: v})
		if r.ID > t.highestID {
			t.highestID = r.ID
		}
	}
	return t, nil
}

// cloneValue copies values that would otherwise share memory with the
// caller: Cloner implementations and raw byte payloads.
func cloneValue[V any](v V) V {
	switch x := any(v).(type) {
	case types.Cloner[V]:
		return x.Clone()
	case json.RawMessage:
		return any(slices.Clone(x)).(V)
	case []byte:
		return any(slices.Clone(x)).(V)
	}
	return v
}
