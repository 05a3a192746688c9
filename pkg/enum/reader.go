package enum

import (
	"context"
	"fmt"
	"io"

	"github.com/praetorian-inc/glossa/pkg/types"
)

// ReaderEnumerator yields the whole of an io.Reader as one blob, such as
// standard input or text passed on the command line.
type ReaderEnumerator struct {
	r    io.Reader
	name string
}

// NewReaderEnumerator creates an enumerator over r. Name is recorded as
// the blob's TextProvenance.
func NewReaderEnumerator(r io.Reader, name string) *ReaderEnumerator {
	return &ReaderEnumerator{r: r, name: name}
}

// Enumerate reads r to EOF and invokes callback once.
func (e *ReaderEnumerator) Enumerate(ctx context.Context, callback Callback) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	content, err := io.ReadAll(e.r)
	if err != nil {
		return fmt.Errorf("reading %s: %w", types.TextProvenance{Name: e.name}.Path(), err)
	}

	return callback(content, types.ComputeBlobID(content), types.TextProvenance{Name: e.name})
}
