// Package enum discovers the content a scan runs over.
package enum

import (
	"context"

	"github.com/praetorian-inc/glossa/pkg/types"
)

// Callback receives one blob. Enumerators may call it from several
// goroutines at once.
type Callback func(content []byte, blobID types.BlobID, prov types.Provenance) error

// Enumerator discovers content to scan from a source.
type Enumerator interface {
	// Enumerate yields blobs from the source.
	Enumerate(ctx context.Context, callback Callback) error
}

// Config for filesystem enumeration.
type Config struct {
	// Root is the starting path for enumeration. It may name a single file.
	Root string

	// IncludeHidden includes hidden files/directories (starting with .).
	IncludeHidden bool

	// MaxFileSize is the maximum file size to process (0 = no limit).
	MaxFileSize int64

	// FollowSymlinks follows symbolic links to files.
	FollowSymlinks bool

	// Extensions restricts the walk to these file extensions, compared
	// case-insensitively with or without the leading dot. Empty means all.
	Extensions []string

	// Workers is the number of parallel readers (0 = runtime.NumCPU()).
	Workers int
}
