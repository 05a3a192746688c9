package ptrie

import (
	"fmt"
	"unicode/utf8"
)

// CharSet is a set of characters drawn from the window U+0020..U+0080,
// packed into two 64-bit masks. The zero value is an empty set.
//
// Membership queries are total: characters outside the window are simply
// absent. Construction is partial: adding them is an error.
type CharSet struct {
	lo      uint64 // offsets 0..63
	hi      uint64 // offsets 64..96
	display string
}

// ParseCharSet builds a CharSet from a bracketed description such as
// 「abc」, 「a〜z」 or 「-a〜z0〜9」.
func ParseCharSet(pattern string) (*CharSet, error) {
	runes := []rune(pattern)
	if len(runes) < 2 || runes[0] != classOpen || runes[len(runes)-1] != classClose {
		return nil, fmt.Errorf("%w: %q must start with %c and end with %c", ErrMalformedClass, pattern, classOpen, classClose)
	}

	inner := runes[1 : len(runes)-1]
	if len(inner) > 0 && inner[len(inner)-1] == rangeOp {
		return nil, fmt.Errorf("%w: range operator %c must be followed by a character", ErrMalformedClass, rangeOp)
	}

	cs := &CharSet{display: pattern}
	for i := 0; i < len(inner); i++ {
		start := inner[i]
		if i+1 < len(inner) && inner[i+1] == rangeOp {
			i += 2
			if err := cs.AddRange(start, inner[i]); err != nil {
				return nil, err
			}
			continue
		}
		if err := cs.AddChar(start); err != nil {
			return nil, err
		}
	}
	return cs, nil
}

// AddChar adds a single character to the set.
func (c *CharSet) AddChar(r rune) error {
	if !inWindow(r) {
		return fmt.Errorf("%w: %U is outside U+0020..U+0080", ErrClassBounds, r)
	}
	off := uint(r - windowLow)
	if off < 64 {
		c.lo |= 1 << off
	} else {
		c.hi |= 1 << (off - 64)
	}
	return nil
}

// AddRange adds every character in [lo, hi] to the set.
func (c *CharSet) AddRange(lo, hi rune) error {
	if lo > hi {
		return fmt.Errorf("%w: %q is greater than %q", ErrClassBounds, lo, hi)
	}
	if !inWindow(lo) || !inWindow(hi) {
		return fmt.Errorf("%w: range %U..%U is outside U+0020..U+0080", ErrClassBounds, lo, hi)
	}

	start := uint(lo - windowLow)
	end := uint(hi - windowLow)
	switch {
	case end < 64:
		c.lo |= bitRange(start, end)
	case start >= 64:
		c.hi |= bitRange(start-64, end-64)
	default:
		c.lo |= bitRange(start, 63)
		c.hi |= bitRange(0, end-64)
	}
	return nil
}

// Contains reports whether r is in the set.
func (c *CharSet) Contains(r rune) bool {
	if !inWindow(r) {
		return false
	}
	off := uint(r - windowLow)
	if off < 64 {
		return c.lo&(1<<off) != 0
	}
	return c.hi&(1<<(off-64)) != 0
}

// Match returns the byte length of the character at text[pos] if it is
// in the set, or 0.
func (c *CharSet) Match(text string, pos int) int {
	if pos < 0 || pos >= len(text) {
		return 0
	}
	r, size := utf8.DecodeRuneInString(text[pos:])
	if c.Contains(r) {
		return size
	}
	return 0
}

// Empty reports whether no character has been added.
func (c *CharSet) Empty() bool {
	return c.lo == 0 && c.hi == 0
}

// String returns the description the set was parsed from, or a
// reconstructed 「…」 description.
func (c *CharSet) String() string {
	if c.display != "" {
		return c.display
	}
	buf := []rune{classOpen}
	for r := rune(windowLow); r <= windowHigh; r++ {
		if !c.Contains(r) {
			continue
		}
		end := r
		for end+1 <= windowHigh && c.Contains(end+1) {
			end++
		}
		buf = append(buf, r)
		if end > r+1 {
			buf = append(buf, rangeOp, end)
		} else if end == r+1 {
			buf = append(buf, end)
		}
		r = end
	}
	return string(append(buf, classClose))
}

func (c *CharSet) equal(o *CharSet) bool {
	return c.lo == o.lo && c.hi == o.hi
}

func inWindow(r rune) bool {
	return r >= windowLow && r <= windowHigh
}

// bitRange returns a mask with bits [from, to] set, 0 <= from <= to <= 63.
func bitRange(from, to uint) uint64 {
	n := to - from + 1
	if n == 64 {
		return ^uint64(0)
	}
	return (uint64(1)<<n - 1) << from
}
