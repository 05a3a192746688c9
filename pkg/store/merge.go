package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
)

// MergeConfig configures the merge operation.
type MergeConfig struct {
	// SourcePaths are the database files to merge from.
	SourcePaths []string
	// DestPath is the destination database file.
	DestPath string
}

// MergeStats counts the rows each merge added to the destination.
type MergeStats struct {
	BlobsMerged      int
	RulesMerged      int
	MatchesMerged    int
	FindingsMerged   int
	ProvenanceMerged int
	SourcesProcessed int
}

// mergeTables lists what is copied, in dependency order. Rows already
// present in the destination are skipped by their unique keys.
var mergeTables = []struct {
	name    string
	columns string
	count   func(*MergeStats) *int
}{
	{"blobs", "id, size", func(s *MergeStats) *int { return &s.BlobsMerged }},
	{"rules", "id, name, patterns_json, structural_id", func(s *MergeStats) *int { return &s.RulesMerged }},
	{"matches", matchColumns, func(s *MergeStats) *int { return &s.MatchesMerged }},
	{"findings", "id, rule_id, text", func(s *MergeStats) *int { return &s.FindingsMerged }},
	{"provenance", "blob_id, type, path", func(s *MergeStats) *int { return &s.ProvenanceMerged }},
}

// Merge combines several scan databases into one.
func Merge(cfg MergeConfig) (*MergeStats, error) {
	if len(cfg.SourcePaths) == 0 {
		return nil, errors.New("no source databases specified")
	}
	if cfg.DestPath == "" {
		return nil, ErrNoPath
	}

	dest, err := NewSQLite(cfg.DestPath)
	if err != nil {
		return nil, fmt.Errorf("opening destination database: %w", err)
	}
	defer dest.Close()

	stats := &MergeStats{}
	for _, src := range cfg.SourcePaths {
		if err := mergeFrom(dest.db, src, stats); err != nil {
			return stats, fmt.Errorf("merging from %s: %w", src, err)
		}
		stats.SourcesProcessed++
	}
	return stats, nil
}

// mergeFrom attaches the source database and copies every table inside
// one transaction.
func mergeFrom(dest *sql.DB, sourcePath string, stats *MergeStats) error {
	if _, err := os.Stat(sourcePath); err != nil {
		return err
	}
	// Opening through NewSQLite rejects databases of another schema version.
	src, err := NewSQLite(sourcePath)
	if err != nil {
		return fmt.Errorf("opening source database: %w", err)
	}
	src.Close()

	if _, err := dest.Exec("ATTACH DATABASE ? AS src", sourcePath); err != nil {
		return fmt.Errorf("attaching source database: %w", err)
	}
	defer dest.Exec("DETACH DATABASE src")

	tx, err := dest.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, t := range mergeTables {
		res, err := tx.Exec(fmt.Sprintf(
			"INSERT OR IGNORE INTO main.%s (%s) SELECT %s FROM src.%s",
			t.name, t.columns, t.columns, t.name,
		))
		if err != nil {
			return fmt.Errorf("merging %s: %w", t.name, err)
		}
		affected, _ := res.RowsAffected()
		*t.count(stats) += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
