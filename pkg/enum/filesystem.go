package enum

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"

	"github.com/praetorian-inc/glossa/pkg/logger"
	"github.com/praetorian-inc/glossa/pkg/types"
)

// binarySniffLen is how much of a file is checked for NUL bytes.
const binarySniffLen = 8192

// FilesystemEnumerator enumerates files from a filesystem directory.
type FilesystemEnumerator struct {
	config     Config
	extensions map[string]struct{}
}

// NewFilesystemEnumerator creates a new filesystem enumerator.
func NewFilesystemEnumerator(config Config) *FilesystemEnumerator {
	e := &FilesystemEnumerator{config: config}
	if len(config.Extensions) > 0 {
		e.extensions = make(map[string]struct{}, len(config.Extensions))
		for _, ext := range config.Extensions {
			e.extensions["."+strings.TrimPrefix(strings.ToLower(ext), ".")] = struct{}{}
		}
	}
	return e
}

// Enumerate walks the filesystem and yields text file blobs.
// Phase 1: walk the tree and collect eligible paths (sequential).
// Phase 2: read files and invoke callback in parallel.
func (e *FilesystemEnumerator) Enumerate(ctx context.Context, callback Callback) error {
	var ignore *gitignore.GitIgnore
	gitignorePath := filepath.Join(e.config.Root, ".gitignore")
	if _, err := os.Stat(gitignorePath); err == nil {
		ignore, err = gitignore.CompileIgnoreFile(gitignorePath)
		if err != nil {
			logger.Log.Warn("ignoring unreadable .gitignore", "path", gitignorePath, "error", err)
		}
	}

	var files []string
	err := filepath.WalkDir(e.config.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if path != e.config.Root && !e.config.IncludeHidden && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		ok, err := e.eligible(path, d, ignore)
		if err != nil {
			return err
		}
		if ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Log.Debug("filesystem walk complete", "root", e.config.Root, "files", len(files))

	numReaders := e.config.Workers
	if numReaders < 1 {
		numReaders = runtime.NumCPU()
	}

	origCtx := ctx
	g, ctx := errgroup.WithContext(ctx)
	pathsCh := make(chan string, numReaders*2)

	g.Go(func() error {
		defer close(pathsCh)
		for _, f := range files {
			select {
			case pathsCh <- f:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < numReaders; i++ {
		g.Go(func() error {
			for path := range pathsCh {
				if err := e.processFile(ctx, path, callback); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	// Goroutines may all finish before noticing a cancelled caller.
	return origCtx.Err()
}

// eligible applies the walk filters to a non-directory entry.
func (e *FilesystemEnumerator) eligible(path string, d fs.DirEntry, ignore *gitignore.GitIgnore) (bool, error) {
	if !e.config.IncludeHidden && isHidden(d.Name()) {
		return false, nil
	}

	if e.extensions != nil {
		if _, ok := e.extensions[strings.ToLower(filepath.Ext(path))]; !ok {
			return false, nil
		}
	}

	info, err := d.Info()
	if err != nil {
		return false, err
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		if !e.config.FollowSymlinks {
			return false, nil
		}
		if info, err = os.Stat(path); err != nil || !info.Mode().IsRegular() {
			return false, nil
		}
	}
	if !info.Mode().IsRegular() {
		return false, nil
	}

	if e.config.MaxFileSize > 0 && info.Size() > e.config.MaxFileSize {
		return false, nil
	}

	if ignore != nil {
		relPath, err := filepath.Rel(e.config.Root, path)
		if err != nil {
			return false, err
		}
		if ignore.MatchesPath(relPath) {
			return false, nil
		}
	}

	return true, nil
}

// processFile reads a single file and invokes the callback. Binary files
// are skipped.
func (e *FilesystemEnumerator) processFile(ctx context.Context, path string, callback Callback) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}

	if isBinary(content) {
		logger.Log.Debug("skipping binary file", "path", path)
		return nil
	}

	return callback(content, types.ComputeBlobID(content), types.FileProvenance{FilePath: path})
}

// isHidden checks if a filename is hidden (starts with .).
// The special entries "." and ".." are NOT considered hidden.
func isHidden(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return strings.HasPrefix(name, ".")
}

// isBinary reports a NUL byte in the first binarySniffLen bytes.
func isBinary(content []byte) bool {
	return bytes.IndexByte(content[:min(len(content), binarySniffLen)], 0) != -1
}
