// Package sqlite mirrors pantry stores into SQLite database files so they
// can be inspected and queried with standard SQL tooling, and reads such
// mirrors back into snapshots.
package sqlite

import (
	_ "embed"
)

//go:embed schema.sql
var schemaSQL string

// formatVersion is written to pantry_meta and checked on import.
const formatVersion = 1

const (
	insertMeta  = `INSERT INTO pantry_meta (export_id, exported_at, format_version) VALUES (?, ?, ?)`
	insertTable = `INSERT INTO pantry_tables (name, position, highest_id) VALUES (?, ?, ?)`
	insertRow   = `INSERT INTO pantry_rows (table_name, position, row_id, value) VALUES (?, ?, ?, ?)`

	selectMeta   = `SELECT export_id, exported_at, format_version FROM pantry_meta LIMIT 1`
	selectTables = `SELECT name, highest_id FROM pantry_tables ORDER BY position`
	selectRows   = `SELECT row_id, value FROM pantry_rows WHERE table_name = ? ORDER BY position`
)
