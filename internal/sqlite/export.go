package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// ErrNotAnExport is returned by Import when the database lacks the pantry
// schema or carries an unsupported format version.
var ErrNotAnExport = errors.New("not a pantry export")

// ExportInfo describes one export.
type ExportInfo struct {
	ExportID   string
	ExportedAt time.Time
	Tables     int
	Rows       int
}

// Export writes snap into a fresh SQLite database at dbPath, replacing any
// existing file. All rows are written in one transaction.
func Export(ctx context.Context, snap types.Snapshot, dbPath string) (ExportInfo, error) {
	info := ExportInfo{
		ExportID:   newExportID(),
		ExportedAt: time.Now().UTC().Truncate(time.Second),
		Tables:     len(snap.Tables),
	}

	// Remove existing database file to ensure fresh schema.
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return info, fmt.Errorf("removing %s: %w", dbPath, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return info, fmt.Errorf("opening %s: %w", dbPath, err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return info, fmt.Errorf("creating schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return info, fmt.Errorf("beginning export transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, insertMeta, info.ExportID, info.ExportedAt.Format(time.RFC3339), formatVersion); err != nil {
		return info, fmt.Errorf("writing export metadata: %w", err)
	}

	rowStmt, err := tx.PrepareContext(ctx, insertRow)
	if err != nil {
		return info, fmt.Errorf("preparing row insert: %w", err)
	}
	defer rowStmt.Close()

	for pos, ts := range snap.Tables {
		if _, err := tx.ExecContext(ctx, insertTable, ts.Name, pos, ts.HighestID); err != nil {
			return info, fmt.Errorf("writing table %q: %w", ts.Name, err)
		}
		for rpos, r := range ts.Rows {
			if _, err := rowStmt.ExecContext(ctx, ts.Name, rpos, r.ID, string(r.Value)); err != nil {
				return info, fmt.Errorf("writing row %d of %q: %w", r.ID, ts.Name, err)
			}
			info.Rows++
		}
	}

	if err := tx.Commit(); err != nil {
		return info, fmt.Errorf("committing export transaction: %w", err)
	}
	return info, nil
}

// Import reads a database written by Export back into a snapshot, tables
// and rows in their exported order.
func Import(ctx context.Context, dbPath string) (types.Snapshot, ExportInfo, error) {
	var info ExportInfo

	// sql.Open would silently create a missing file.
	if _, err := os.Stat(dbPath); err != nil {
		return types.Snapshot{}, info, fmt.Errorf("opening %s: %w", dbPath, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return types.Snapshot{}, info, fmt.Errorf("opening %s: %w", dbPath, err)
	}
	defer db.Close()

	var exportedAt string
	var version int
	if err := db.QueryRowContext(ctx, selectMeta).Scan(&info.ExportID, &exportedAt, &version); err != nil {
		return types.Snapshot{}, info, fmt.Errorf("%w: reading metadata: %v", ErrNotAnExport, err)
	}
	if version != formatVersion {
		return types.Snapshot{}, info, fmt.Errorf("%w: format version %d", ErrNotAnExport, version)
	}
	if t, err := time.Parse(time.RFC3339, exportedAt); err == nil {
		info.ExportedAt = t
	}

	snap, err := readTables(ctx, db)
	if err != nil {
		return types.Snapshot{}, info, err
	}
	for i := range snap.Tables {
		rows, err := readRows(ctx, db, snap.Tables[i].Name)
		if err != nil {
			return types.Snapshot{}, info, err
		}
		snap.Tables[i].Rows = rows
		info.Rows += len(rows)
	}
	info.Tables = len(snap.Tables)
	return snap, info, nil
}

func readTables(ctx context.Context, db *sql.DB) (types.Snapshot, error) {
	rows, err := db.QueryContext(ctx, selectTables)
	if err != nil {
		return types.Snapshot{}, fmt.Errorf("querying tables: %w", err)
	}
	defer rows.Close()

	var snap types.Snapshot
	for rows.Next() {
		var ts types.TableSnapshot
		if err := rows.Scan(&ts.Name, &ts.HighestID); err != nil {
			return types.Snapshot{}, fmt.Errorf("scanning table: %w", err)
		}
		snap.Tables = append(snap.Tables, ts)
	}
	if err := rows.Err(); err != nil {
		return types.Snapshot{}, fmt.Errorf("iterating tables: %w", err)
	}
	return snap, nil
}

func readRows(ctx context.Context, db *sql.DB, table string) ([]types.Row[json.RawMessage], error) {
	rows, err := db.QueryContext(ctx, selectRows, table)
	if err != nil {
		return nil, fmt.Errorf("querying rows of %q: %w", table, err)
	}
	defer rows.Close()

	var out []types.Row[json.RawMessage]
	for rows.Next() {
		var id int64
		var value string
		if err := rows.Scan(&id, &value); err != nil {
			return nil, fmt.Errorf("scanning row of %q: %w", table, err)
		}
		out = append(out, types.Row[json.RawMessage]{ID: id, Value: json.RawMessage(value)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows of %q: %w", table, err)
	}
	return out, nil
}

// newExportID generates a UUID v7 identifying one export.
func newExportID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
