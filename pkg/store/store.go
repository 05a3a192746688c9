// Package store persists scan results: blobs, the rules that ran, the
// matches they produced, deduplicated findings and where each blob came
// from.
package store

import (
	"errors"

	"github.com/praetorian-inc/glossa/pkg/types"
)

// MemoryPath selects the in-memory backend.
const MemoryPath = ":memory:"

// ErrNoPath is returned by New when Config.Path is empty.
var ErrNoPath = errors.New("path is required")

// Store provides persistence for scan results.
type Store interface {
	// AddBlob stores a blob record. Adding a known blob is a no-op.
	AddBlob(id types.BlobID, size int64) error

	// AddRule records a rule that took part in the scan.
	AddRule(r *types.Rule) error

	// GetRules retrieves the recorded rules ordered by ID.
	GetRules() ([]*types.Rule, error)

	// AddMatch stores a match record. Matches are unique by structural ID.
	AddMatch(m *types.Match) error

	// AddFinding stores a finding (deduplicated by ID).
	AddFinding(f *types.Finding) error

	// AddProvenance associates provenance with a blob.
	AddProvenance(blobID types.BlobID, prov types.Provenance) error

	// GetMatches retrieves matches for a blob in offset order.
	GetMatches(blobID types.BlobID) ([]*types.Match, error)

	// GetAllMatches retrieves all matches (for JSON export).
	GetAllMatches() ([]*types.Match, error)

	// GetFindings retrieves all findings ordered by rule and text.
	GetFindings() ([]*types.Finding, error)

	// GetProvenance retrieves every provenance recorded for a blob.
	GetProvenance(blobID types.BlobID) ([]types.Provenance, error)

	// FindingExists checks if a finding with this ID exists.
	FindingExists(id string) (bool, error)

	// BlobExists checks if a blob has already been scanned.
	BlobExists(id types.BlobID) (bool, error)

	// Close releases the backend.
	Close() error
}

// Config for store initialization.
type Config struct {
	// Path is the database file path, or MemoryPath.
	Path string
}

// New creates a Store. MemoryPath yields a MemoryStore, any other path
// a SQLite database at that location.
func New(cfg Config) (Store, error) {
	switch cfg.Path {
	case "":
		return nil, ErrNoPath
	case MemoryPath:
		return NewMemory(), nil
	default:
		return NewSQLite(cfg.Path)
	}
}

// provenanceFromRow rebuilds a Provenance from its stored kind and path.
func provenanceFromRow(kind, path string) (types.Provenance, error) {
	switch kind {
	case "file":
		return types.FileProvenance{FilePath: path}, nil
	case "text":
		return types.TextProvenance{Name: path}, nil
	default:
		return nil, &UnknownProvenanceError{Kind: kind}
	}
}

// UnknownProvenanceError reports a provenance kind the store cannot map.
type UnknownProvenanceError struct {
	Kind string
}

func (e *UnknownProvenanceError) Error() string {
	return "unknown provenance type: " + e.Kind
}
