package ptrie

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCharSet_Members(t *testing.T) {
	cs, err := ParseCharSet("「abc」")
	require.NoError(t, err)

	for r := rune(windowLow); r <= windowHigh; r++ {
		want := r == 'a' || r == 'b' || r == 'c'
		assert.Equal(t, want, cs.Contains(r), "rune %q", r)
	}
}

func TestParseCharSet_Ranges(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		in      []rune
		out     []rune
	}{
		{
			name:    "low mask only",
			pattern: "「0〜9」",
			in:      []rune{'0', '5', '9'},
			out:     []rune{'/', ':', 'a'},
		},
		{
			name:    "high mask only",
			pattern: "「a〜c」",
			in:      []rune{'a', 'b', 'c'},
			out:     []rune{'`', 'd', 'A'},
		},
		{
			name:    "straddles both masks",
			pattern: "「0〜z」",
			in:      []rune{'0', '@', '_', '`', 'z'},
			out:     []rune{'/', '{', '~'},
		},
		{
			name:    "mixed chars and ranges",
			pattern: "「-a〜z0〜9」",
			in:      []rune{'-', 'q', '7'},
			out:     []rune{'_', 'A', ' '},
		},
		{
			name:    "whole window",
			pattern: "「 〜\u0080」",
			in:      []rune{' ', '~', 0x7f, 0x80},
			out:     []rune{0x1f, 0x81, 'é', 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs, err := ParseCharSet(tt.pattern)
			require.NoError(t, err)
			for _, r := range tt.in {
				assert.True(t, cs.Contains(r), "expected %q in %s", r, tt.pattern)
			}
			for _, r := range tt.out {
				assert.False(t, cs.Contains(r), "expected %q not in %s", r, tt.pattern)
			}
		})
	}
}

func TestParseCharSet_Errors(t *testing.T) {
	tests := []struct {
		pattern string
		want    error
	}{
		{"「a〜」", ErrMalformedClass},
		{"a〜c」", ErrMalformedClass},
		{"「a〜c", ErrMalformedClass},
		{"", ErrMalformedClass},
		{"「z〜a」", ErrClassBounds},
		{"「é」", ErrClassBounds},
		{"「a〜é」", ErrClassBounds},
		{"「\t」", ErrClassBounds},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			_, err := ParseCharSet(tt.pattern)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestCharSet_AddCharIdempotent(t *testing.T) {
	var cs CharSet
	require.NoError(t, cs.AddChar('x'))
	before := cs

	require.NoError(t, cs.AddChar('x'))
	assert.Equal(t, before, cs)
	assert.True(t, cs.Contains('x'))
	assert.False(t, cs.Contains('y'))
}

func TestCharSet_ZeroValue(t *testing.T) {
	var cs CharSet
	assert.True(t, cs.Empty())
	assert.False(t, cs.Contains('a'))
	assert.Equal(t, 0, cs.Match("abc", 0))
	assert.Equal(t, "「」", cs.String())
}

func TestCharSet_OutOfWindowQueries(t *testing.T) {
	cs, err := ParseCharSet("「 〜\u0080」")
	require.NoError(t, err)

	assert.False(t, cs.Contains(-1))
	assert.False(t, cs.Contains('\n'))
	assert.False(t, cs.Contains('「'))
	assert.Error(t, cs.AddChar('\n'))
	assert.Error(t, cs.AddRange('a', 'é'))
}

func TestCharSet_Match(t *testing.T) {
	cs, err := ParseCharSet("「a〜z」")
	require.NoError(t, err)

	assert.Equal(t, 1, cs.Match("abc", 0))
	assert.Equal(t, 1, cs.Match("abc", 2))
	assert.Equal(t, 0, cs.Match("abc", 3))
	assert.Equal(t, 0, cs.Match("abc", -1))
	assert.Equal(t, 0, cs.Match("A", 0))
	assert.Equal(t, 0, cs.Match("é", 0))
}

func TestCharSet_String(t *testing.T) {
	parsed, err := ParseCharSet("「abc」")
	require.NoError(t, err)
	assert.Equal(t, "「abc」", parsed.String())

	var cs CharSet
	require.NoError(t, cs.AddRange('a', 'e'))
	require.NoError(t, cs.AddChar('0'))
	require.NoError(t, cs.AddChar('1'))
	require.NoError(t, cs.AddChar('_'))
	assert.Equal(t, "「01_a〜e」", cs.String())
}
