package enum

import (
	"context"
	"strings"
	"testing"

	"github.com/praetorian-inc/glossa/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedEnumerator yields a fixed list of texts.
type fixedEnumerator []string

func (f fixedEnumerator) Enumerate(ctx context.Context, callback Callback) error {
	for i, s := range f {
		if err := ctx.Err(); err != nil {
			return err
		}
		prov := types.TextProvenance{Name: s + "#" + string(rune('0'+i))}
		if err := callback([]byte(s), types.ComputeBlobID([]byte(s)), prov); err != nil {
			return err
		}
	}
	return nil
}

func TestCombinedEnumerator(t *testing.T) {
	tests := []struct {
		name        string
		enumerators []Enumerator
		want        []string
	}{
		{name: "empty", want: nil},
		{
			name:        "single",
			enumerators: []Enumerator{fixedEnumerator{"a", "b"}},
			want:        []string{"a", "b"},
		},
		{
			name:        "duplicates across enumerators",
			enumerators: []Enumerator{fixedEnumerator{"a", "b"}, fixedEnumerator{"b", "c"}},
			want:        []string{"a", "b", "c"},
		},
		{
			name:        "duplicates within one enumerator",
			enumerators: []Enumerator{fixedEnumerator{"x", "x", "y"}},
			want:        []string{"x", "y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			err := NewCombinedEnumerator(tt.enumerators...).Enumerate(context.Background(),
				func(content []byte, _ types.BlobID, _ types.Provenance) error {
					got = append(got, string(content))
					return nil
				})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCombinedEnumerator_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewCombinedEnumerator(fixedEnumerator{"a"}).Enumerate(ctx,
		func([]byte, types.BlobID, types.Provenance) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReaderEnumerator(t *testing.T) {
	var got []types.Provenance
	var text string
	e := NewReaderEnumerator(strings.NewReader("0x1F and 42"), "stdin")
	err := e.Enumerate(context.Background(), func(content []byte, blobID types.BlobID, prov types.Provenance) error {
		assert.Equal(t, types.ComputeBlobID(content), blobID)
		text = string(content)
		got = append(got, prov)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "0x1F and 42", text)
	assert.Equal(t, []types.Provenance{types.TextProvenance{Name: "stdin"}}, got)
}

func TestReaderEnumerator_ReadError(t *testing.T) {
	e := NewReaderEnumerator(failingReader{}, "")
	err := e.Enumerate(context.Background(), func([]byte, types.BlobID, types.Provenance) error { return nil })
	assert.ErrorIs(t, err, assert.AnError)
	assert.ErrorContains(t, err, "<text>")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, assert.AnError }
