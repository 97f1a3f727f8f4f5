// JSONL dump and load of store snapshots, with atomic persistence.

package jsonfile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// jsonlRecord is one line of a JSONL dump. A table header carries
// HighestID and no ID; a row carries ID and Value. Headers precede the rows
// of their table so empty tables and retired identifiers survive the dump.
type jsonlRecord struct {
	Table     string          `json:"table"`
	HighestID *int64          `json:"highest_id,omitempty"`
	ID        *int64          `json:"id,omitempty"`
	Value     json.RawMessage `json:"value,omitempty"`
}

// WriteSnapshotJSONL atomically writes snap to path as JSON Lines.
func WriteSnapshotJSONL(path string, snap types.Snapshot) error {
	var records []json.RawMessage
	for _, ts := range snap.Tables {
		highest := ts.HighestID
		rec, err := json.Marshal(jsonlRecord{Table: ts.Name, HighestID: &highest})
		if err != nil {
			return fmt.Errorf("encoding header of %q: %w", ts.Name, err)
		}
		records = append(records, rec)
		for _, r := range ts.Rows {
			id := r.ID
			rec, err := json.Marshal(jsonlRecord{Table: ts.Name, ID: &id, Value: r.Value})
			if err != nil {
				return fmt.Errorf("encoding row %d of %q: %w", r.ID, ts.Name, err)
			}
			records = append(records, rec)
		}
	}
	return writeJSONL(path, records)
}

// ReadSnapshotJSONL reads a JSONL dump written by WriteSnapshotJSONL and
// returns the number of lines it skipped. Malformed lines and records
// without a table are skipped; a row whose table has no header opens the
// table implicitly.
func ReadSnapshotJSONL(path string) (types.Snapshot, int, error) {
	records, skipped, err := readJSONL(path)
	if err != nil {
		return types.Snapshot{}, 0, err
	}

	var snap types.Snapshot
	index := make(map[string]int)
	tableFor := func(name string) *types.TableSnapshot {
		i, ok := index[name]
		if !ok {
			i = len(snap.Tables)
			index[name] = i
			snap.Tables = append(snap.Tables, types.TableSnapshot{Name: name, HighestID: -1})
		}
		return &snap.Tables[i]
	}

	for _, raw := range records {
		var rec jsonlRecord
		if err := json.Unmarshal(raw, &rec); err != nil || rec.Table == "" {
			skipped++
			continue
		}
		ts := tableFor(rec.Table)
		switch {
		case rec.ID != nil:
			ts.Rows = append(ts.Rows, types.Row[json.RawMessage]{ID: *rec.ID, Value: rec.Value})
			if *rec.ID > ts.HighestID {
				ts.HighestID = *rec.ID
			}
		case rec.HighestID != nil:
			if *rec.HighestID > ts.HighestID {
				ts.HighestID = *rec.HighestID
			}
		}
	}
	return snap, skipped, nil
}

// readJSONL reads a JSONL file and returns each non-empty, parseable line as
// a json.RawMessage, plus the count of malformed lines it skipped.
func readJSONL(path string) ([]json.RawMessage, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	skipped := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			skipped++
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, skipped, nil
}

// writeJSONL atomically writes records to a JSONL file using the temp-file,
// fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			return fail(fmt.Errorf("writing record: %w", err))
		}
		if err := w.WriteByte('\n'); err != nil {
			return fail(fmt.Errorf("writing newline: %w", err))
		}
	}
	if err := w.Flush(); err != nil {
		return fail(fmt.Errorf("flushing buffer: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("syncing temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
