// Package cursor provides a forward-only cursor over a string.
//
// All offsets taken and returned by a Cursor are byte offsets relative to
// its current position.
package cursor

import (
	"strings"
	"unicode/utf8"
)

// Cursor reads a string from left to right.
type Cursor struct {
	s   string
	pos int
}

// New returns a cursor positioned at the start of s.
func New(s string) *Cursor {
	return &Cursor{s: s}
}

// Pos returns the absolute position of the cursor in the underlying string.
func (c *Cursor) Pos() int {
	return c.pos
}

// Len returns the number of bytes left.
func (c *Cursor) Len() int {
	return len(c.s) - c.pos
}

// Done reports whether the cursor has reached the end.
func (c *Cursor) Done() bool {
	return c.pos >= len(c.s)
}

// Rest returns the unread part of the string.
func (c *Cursor) Rest() string {
	return c.Peek(0)
}

// Peek returns the unread part of the string after skipping ahead bytes,
// or "" if that runs past the end.
func (c *Cursor) Peek(ahead int) string {
	if c.pos+ahead > len(c.s) || ahead < 0 {
		return ""
	}
	return c.s[c.pos+ahead:]
}

// Jump advances the cursor by n bytes, stopping at the end.
func (c *Cursor) Jump(n int) {
	c.pos = min(c.pos+n, len(c.s))
}

// NextRune consumes and returns the next rune and its size. At the end it
// returns utf8.RuneError and 0.
func (c *Cursor) NextRune() (rune, int) {
	if c.Done() {
		return utf8.RuneError, 0
	}
	r, size := utf8.DecodeRuneInString(c.s[c.pos:])
	c.pos += size
	return r, size
}

// IndexOf returns the offset of the first r at or after the cursor, or -1.
func (c *Cursor) IndexOf(r rune) int {
	return strings.IndexRune(c.Rest(), r)
}

// Search returns the offset of the first needle found at least ahead bytes
// past the cursor, or -1.
func (c *Cursor) Search(needle string, ahead int) int {
	if c.pos+ahead > len(c.s) {
		return -1
	}
	i := strings.Index(c.Peek(ahead), needle)
	if i < 0 {
		return -1
	}
	return i + ahead
}

// Slice returns the unread bytes in [begin, end).
func (c *Cursor) Slice(begin, end int) string {
	return c.s[c.pos+begin : c.pos+end]
}
