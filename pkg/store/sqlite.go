package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/praetorian-inc/glossa/pkg/types"
	_ "modernc.org/sqlite"
)

// driverName is the database/sql driver registered by modernc.org/sqlite.
const driverName = "sqlite"

const matchColumns = `blob_id, rule_id, rule_name, structural_id, finding_id,
	offset_start, offset_end, start_line, start_column, end_line, end_column,
	text, snippet_before, snippet_matching, snippet_after`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens or creates a SQLite database at path.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite serialises writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// AddBlob stores a blob record.
func (s *SQLiteStore) AddBlob(id types.BlobID, size int64) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO blobs (id, size) VALUES (?, ?)", id.Hex(), size)
	if err != nil {
		return fmt.Errorf("inserting blob: %w", err)
	}
	return nil
}

// AddRule records a rule. Re-adding a rule replaces its row.
func (s *SQLiteStore) AddRule(r *types.Rule) error {
	patterns, err := json.Marshal(r.Patterns)
	if err != nil {
		return fmt.Errorf("marshaling patterns: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO rules (id, name, patterns_json, structural_id)
		VALUES (?, ?, ?, ?)
	`, r.ID, r.Name, string(patterns), r.StructuralID)
	if err != nil {
		return fmt.Errorf("inserting rule: %w", err)
	}
	return nil
}

// GetRules retrieves the recorded rules.
func (s *SQLiteStore) GetRules() ([]*types.Rule, error) {
	rows, err := s.db.Query("SELECT id, name, patterns_json, structural_id FROM rules ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying rules: %w", err)
	}
	defer rows.Close()

	rules := []*types.Rule{}
	for rows.Next() {
		var r types.Rule
		var patterns string
		if err := rows.Scan(&r.ID, &r.Name, &patterns, &r.StructuralID); err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}
		if err := json.Unmarshal([]byte(patterns), &r.Patterns); err != nil {
			return nil, fmt.Errorf("unmarshaling patterns of %s: %w", r.ID, err)
		}
		rules = append(rules, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rules: %w", err)
	}
	return rules, nil
}

// AddMatch stores a match record.
func (s *SQLiteStore) AddMatch(m *types.Match) error {
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO matches (`+matchColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		m.BlobID.Hex(),
		m.RuleID,
		m.RuleName,
		m.StructuralID,
		m.FindingID,
		m.Location.Offset.Start,
		m.Location.Offset.End,
		m.Location.Source.Start.Line,
		m.Location.Source.Start.Column,
		m.Location.Source.End.Line,
		m.Location.Source.End.Column,
		m.Text,
		m.Snippet.Before,
		m.Snippet.Matching,
		m.Snippet.After,
	)
	if err != nil {
		return fmt.Errorf("inserting match: %w", err)
	}
	return nil
}

// AddFinding stores a finding (deduplicated).
func (s *SQLiteStore) AddFinding(f *types.Finding) error {
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO findings (id, rule_id, text)
		VALUES (?, ?, ?)
	`, f.ID, f.RuleID, f.Text)
	if err != nil {
		return fmt.Errorf("inserting finding: %w", err)
	}
	return nil
}

// AddProvenance associates provenance with a blob.
func (s *SQLiteStore) AddProvenance(blobID types.BlobID, prov types.Provenance) error {
	switch prov.(type) {
	case types.FileProvenance, types.TextProvenance:
	default:
		return fmt.Errorf("unknown provenance type: %T", prov)
	}

	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO provenance (blob_id, type, path)
		VALUES (?, ?, ?)
	`, blobID.Hex(), prov.Kind(), prov.Path())
	if err != nil {
		return fmt.Errorf("inserting provenance: %w", err)
	}
	return nil
}

// GetMatches retrieves matches for a blob.
func (s *SQLiteStore) GetMatches(blobID types.BlobID) ([]*types.Match, error) {
	rows, err := s.db.Query(`
		SELECT `+matchColumns+`
		FROM matches
		WHERE blob_id = ?
		ORDER BY offset_start, rule_id
	`, blobID.Hex())
	if err != nil {
		return nil, fmt.Errorf("querying matches: %w", err)
	}
	return collectMatches(rows)
}

// GetAllMatches retrieves all matches.
func (s *SQLiteStore) GetAllMatches() ([]*types.Match, error) {
	rows, err := s.db.Query(`
		SELECT ` + matchColumns + `
		FROM matches
		ORDER BY blob_id, offset_start, rule_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying matches: %w", err)
	}
	return collectMatches(rows)
}

func collectMatches(rows *sql.Rows) ([]*types.Match, error) {
	defer rows.Close()

	matches := []*types.Match{}
	for rows.Next() {
		var m types.Match
		var blobIDHex string
		var startLine, startCol, endLine, endCol sql.NullInt64
		var before, matching, after sql.NullString

		err := rows.Scan(
			&blobIDHex,
			&m.RuleID,
			&m.RuleName,
			&m.StructuralID,
			&m.FindingID,
			&m.Location.Offset.Start,
			&m.Location.Offset.End,
			&startLine,
			&startCol,
			&endLine,
			&endCol,
			&m.Text,
			&before,
			&matching,
			&after,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}

		blobID, err := types.ParseBlobID(blobIDHex)
		if err != nil {
			return nil, fmt.Errorf("parsing blob ID: %w", err)
		}
		m.BlobID = blobID

		m.Location.Source.Start = types.SourcePoint{Line: int(startLine.Int64), Column: int(startCol.Int64)}
		m.Location.Source.End = types.SourcePoint{Line: int(endLine.Int64), Column: int(endCol.Int64)}
		m.Snippet = types.Snippet{Before: before.String, Matching: matching.String, After: after.String}

		matches = append(matches, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating matches: %w", err)
	}
	return matches, nil
}

// GetFindings retrieves all findings.
func (s *SQLiteStore) GetFindings() ([]*types.Finding, error) {
	rows, err := s.db.Query(`
		SELECT id, rule_id, text
		FROM findings
		ORDER BY rule_id, text
	`)
	if err != nil {
		return nil, fmt.Errorf("querying findings: %w", err)
	}
	defer rows.Close()

	findings := []*types.Finding{}
	for rows.Next() {
		var f types.Finding
		if err := rows.Scan(&f.ID, &f.RuleID, &f.Text); err != nil {
			return nil, fmt.Errorf("scanning finding: %w", err)
		}
		findings = append(findings, &f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating findings: %w", err)
	}
	return findings, nil
}

// GetProvenance retrieves all provenance records for a blob.
func (s *SQLiteStore) GetProvenance(blobID types.BlobID) ([]types.Provenance, error) {
	rows, err := s.db.Query(`
		SELECT type, path
		FROM provenance
		WHERE blob_id = ?
		ORDER BY id
	`, blobID.Hex())
	if err != nil {
		return nil, fmt.Errorf("querying provenance: %w", err)
	}
	defer rows.Close()

	provs := []types.Provenance{}
	for rows.Next() {
		var kind, path string
		if err := rows.Scan(&kind, &path); err != nil {
			return nil, fmt.Errorf("scanning provenance: %w", err)
		}
		prov, err := provenanceFromRow(kind, path)
		if err != nil {
			return nil, err
		}
		provs = append(provs, prov)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating provenance: %w", err)
	}
	return provs, nil
}

// FindingExists checks if a finding with this ID exists.
func (s *SQLiteStore) FindingExists(id string) (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM findings WHERE id = ?", id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking finding existence: %w", err)
	}
	return count > 0, nil
}

// BlobExists checks if a blob has already been scanned.
func (s *SQLiteStore) BlobExists(id types.BlobID) (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM blobs WHERE id = ?", id.Hex()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking blob existence: %w", err)
	}
	return count > 0, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
