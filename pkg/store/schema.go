package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

var schemaTables = []struct {
	name string
	ddl  string
}{
	{"blobs", `
		CREATE TABLE IF NOT EXISTS blobs (
			id TEXT PRIMARY KEY NOT NULL,
			size INTEGER NOT NULL
		)`},
	{"rules", `
		CREATE TABLE IF NOT EXISTS rules (
			id TEXT PRIMARY KEY NOT NULL,
			name TEXT NOT NULL,
			patterns_json TEXT NOT NULL,
			structural_id TEXT NOT NULL
		)`},
	{"matches", `
		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			blob_id TEXT NOT NULL REFERENCES blobs(id),
			rule_id TEXT NOT NULL,
			rule_name TEXT NOT NULL,
			structural_id TEXT NOT NULL UNIQUE,
			finding_id TEXT NOT NULL,
			offset_start INTEGER NOT NULL,
			offset_end INTEGER NOT NULL,
			start_line INTEGER,
			start_column INTEGER,
			end_line INTEGER,
			end_column INTEGER,
			text TEXT NOT NULL,
			snippet_before TEXT,
			snippet_matching TEXT,
			snippet_after TEXT
		)`},
	{"findings", `
		CREATE TABLE IF NOT EXISTS findings (
			id TEXT PRIMARY KEY NOT NULL,
			rule_id TEXT NOT NULL,
			text TEXT NOT NULL
		)`},
	{"provenance", `
		CREATE TABLE IF NOT EXISTS provenance (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			blob_id TEXT NOT NULL REFERENCES blobs(id),
			type TEXT NOT NULL,
			path TEXT NOT NULL,
			UNIQUE(blob_id, type, path)
		)`},
}

var schemaIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_matches_blob_id ON matches(blob_id)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_finding_id ON matches(finding_id)`,
	`CREATE INDEX IF NOT EXISTS idx_provenance_blob_id ON provenance(blob_id)`,
}

// CreateSchema creates the database schema if it doesn't exist. An
// existing database written by a different schema version is rejected.
func CreateSchema(db *sql.DB) error {
	if err := createSchemaVersionTable(db); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	for _, t := range schemaTables {
		if _, err := db.Exec(t.ddl); err != nil {
			return fmt.Errorf("creating %s table: %w", t.name, err)
		}
	}

	for _, ddl := range schemaIndexes {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}

	return nil
}

func createSchemaVersionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	var version int
	err = db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = db.Exec("INSERT INTO schema_version (version) VALUES (?)", SchemaVersion)
		return err
	case err != nil:
		return err
	case version != SchemaVersion:
		return fmt.Errorf("unsupported schema version %d (want %d)", version, SchemaVersion)
	}

	return nil
}
