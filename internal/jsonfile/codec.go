package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// The document is a single JSON object mapping table names to arrays of
// rows. The object is read and written token by token so the table order
// survives a round trip; encoding/json maps would sort the keys.

// DecodeSnapshot parses a store document without binding the values to a
// Go type. Empty input decodes to an empty snapshot. Shape violations wrap
// ErrCorruptStore.
func DecodeSnapshot(data []byte, format string) (types.Snapshot, error) {
	if len(data) == 0 {
		return types.Snapshot{}, nil
	}
	return decodeDocument(data, format)
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", types.ErrCorruptStore, fmt.Sprintf(format, args...))
}

func decodeDocument(data []byte, format string) (types.Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return types.Snapshot{}, corrupt("reading document: %v", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return types.Snapshot{}, corrupt("top level is not an object")
	}

	var snap types.Snapshot
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return types.Snapshot{}, corrupt("reading table name: %v", err)
		}
		name, ok := tok.(string)
		if !ok {
			return types.Snapshot{}, corrupt("unexpected token %v", tok)
		}
		if seen[name] {
			return types.Snapshot{}, corrupt("duplicate table %q", name)
		}
		seen[name] = true

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return types.Snapshot{}, corrupt("reading table %q: %v", name, err)
		}
		ts, err := decodeTable(name, raw, format)
		if err != nil {
			return types.Snapshot{}, err
		}
		snap.Tables = append(snap.Tables, ts)
	}
	if _, err := dec.Token(); err != nil {
		return types.Snapshot{}, corrupt("closing document: %v", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return types.Snapshot{}, corrupt("trailing data after document")
	}
	return snap, nil
}

func decodeTable(name string, raw json.RawMessage, format string) (types.TableSnapshot, error) {
	ts := types.TableSnapshot{Name: name, HighestID: -1}
	if len(raw) == 0 || raw[0] != '[' {
		return ts, corrupt("table %q is not an array", name)
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return ts, corrupt("table %q: %v", name, err)
	}

	ts.Rows = make([]types.Row[json.RawMessage], 0, len(elems))
	for i, elem := range elems {
		var row types.Row[json.RawMessage]
		if format == types.FormatValues {
			row = types.Row[json.RawMessage]{ID: int64(i), Value: compactValue(elem)}
		} else {
			var err error
			if row, err = decodePair(elem); err != nil {
				return ts, corrupt("table %q row %d: %v", name, i, err)
			}
		}
		if row.ID > ts.HighestID {
			ts.HighestID = row.ID
		}
		ts.Rows = append(ts.Rows, row)
	}
	return ts, nil
}

// decodePair parses one [identifier, value] row.
func decodePair(elem json.RawMessage) (types.Row[json.RawMessage], error) {
	if len(elem) == 0 || elem[0] != '[' {
		return types.Row[json.RawMessage]{}, errors.New("row is not an [id, value] pair")
	}
	var pair []json.RawMessage
	if err := json.Unmarshal(elem, &pair); err != nil {
		return types.Row[json.RawMessage]{}, err
	}
	if len(pair) != 2 {
		return types.Row[json.RawMessage]{}, fmt.Errorf("row has %d elements, want 2", len(pair))
	}
	var id int64
	if err := json.Unmarshal(pair[0], &id); err != nil {
		return types.Row[json.RawMessage]{}, fmt.Errorf("identifier %s is not an integer", pair[0])
	}
	if id < 0 {
		return types.Row[json.RawMessage]{}, fmt.Errorf("identifier %d is negative", id)
	}
	return types.Row[json.RawMessage]{ID: id, Value: compactValue(pair[1])}, nil
}

// compactValue strips the indentation a persisted document carries, so a
// loaded value reads the same as the one that was stored.
func compactValue(raw json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return json.RawMessage(buf.Bytes())
}

// encodeDocument renders snap as a full store document, indented with two
// spaces unless compact is set.
func encodeDocument(snap types.Snapshot, format string, compact bool) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ts := range snap.Tables {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(ts.Name)
		if err != nil {
			return nil, fmt.Errorf("encoding table name: %w", err)
		}
		buf.Write(name)
		buf.WriteString(":[")
		for j, r := range ts.Rows {
			if j > 0 {
				buf.WriteByte(',')
			}
			if format == types.FormatValues {
				buf.Write(r.Value)
				continue
			}
			buf.WriteByte('[')
			buf.WriteString(strconv.FormatInt(r.ID, 10))
			buf.WriteByte(',')
			buf.Write(r.Value)
			buf.WriteByte(']')
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if compact {
		if err := json.Compact(&out, buf.Bytes()); err != nil {
			return nil, fmt.Errorf("compacting document: %w", err)
		}
	} else if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("indenting document: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}
