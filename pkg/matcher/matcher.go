// Package matcher tokenizes content with a set of rules. Each rule's
// patterns are compiled into one pattern trie; scanning is leftmost
// longest across all rules.
package matcher

import (
	"runtime"

	"github.com/praetorian-inc/glossa/pkg/types"
)

// Matcher scans content for rule matches.
type Matcher interface {
	// Match scans content against all loaded rules.
	Match(content []byte) ([]*types.Match, error)

	// MatchWithBlobID scans content with a known BlobID.
	MatchWithBlobID(content []byte, blobID types.BlobID) ([]*types.Match, error)

	// Close releases resources.
	Close() error
}

// DefaultChunkSize is the content size from which a blob is split into
// line-aligned chunks that are scanned in parallel.
const DefaultChunkSize = 256 * 1024

// Config for matcher initialization.
type Config struct {
	// Rules to compile. Earlier rules win ties.
	Rules []*types.Rule

	// ContextLines is the number of lines kept before and after a match.
	ContextLines int

	// MaxMatchesPerBlob limits matches returned per blob (0 = unlimited).
	MaxMatchesPerBlob int

	// Dedupe selects which matches count as duplicates within a blob.
	Dedupe DedupeMode

	// ChunkSize overrides DefaultChunkSize.
	ChunkSize int

	// Workers bounds parallel chunk scans (0 = GOMAXPROCS).
	Workers int
}

func (c Config) withDefaults() Config {
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	return c
}

// New creates a Matcher from cfg.
func New(cfg Config) (Matcher, error) {
	return NewTrie(cfg)
}
