// Package ptrie implements a pattern trie: a small automaton that finds
// the longest token, starting at a given position, matching any of a set
// of registered patterns.
//
// Patterns are literal characters mixed with three constructs:
//
//	「a〜z_」          one character from a class (U+0020..U+0080 only)
//	〸l, 〸「0〜9」     one or more of a character or class, greedy
//	〔label〡sub〕      a sub-pattern compiled into its own trie
//
// Literal prefixes are shared between patterns. At every node an exact
// literal edge is preferred over capability edges, and capability edges
// are tried in the order they were registered. There is no backtracking.
//
// A Trie is built by a single goroutine. Once registration is finished,
// LongestMatch and MatchLen may be called concurrently; Freeze makes the
// end of registration explicit.
package ptrie

import (
	"fmt"
	"unicode/utf8"
)

// Trie is a set of registered patterns.
type Trie struct {
	root   *node
	count  int
	frozen bool
}

type node struct {
	children map[rune]*node
	edges    []edge // registration order
}

type edge struct {
	cap  capability
	next *node
}

// New returns an empty trie.
func New() *Trie {
	return &Trie{root: newNode()}
}

// Compile returns a trie holding all of patterns.
func Compile(patterns ...string) (*Trie, error) {
	t := New()
	for i, p := range patterns {
		if err := t.AddPattern(p); err != nil {
			return nil, fmt.Errorf("pattern %d: %w", i, err)
		}
	}
	return t, nil
}

// MustCompile is like Compile but panics if a pattern cannot be
// registered. It simplifies safe initialization of package-level tries.
func MustCompile(patterns ...string) *Trie {
	t, err := Compile(patterns...)
	if err != nil {
		panic("ptrie: Compile: " + err.Error())
	}
	return t
}

// AddPattern registers one pattern. On error the trie is left exactly as
// it was; previously registered patterns are unaffected.
func (t *Trie) AddPattern(pattern string) error {
	if t.frozen {
		return &PatternError{Pattern: pattern, Err: ErrFrozen}
	}

	steps, err := parse(pattern)
	if err != nil {
		return err
	}

	cur := t.root
	for i := range steps {
		if steps[i].literal {
			cur = cur.literal(steps[i].r)
		} else {
			cur = cur.capability(steps[i].cap)
		}
	}
	cur.literal(sentinel)
	t.count++
	return nil
}

// Freeze ends registration. Further calls to AddPattern fail with
// ErrFrozen.
func (t *Trie) Freeze() {
	t.frozen = true
}

// Frozen reports whether Freeze has been called.
func (t *Trie) Frozen() bool {
	return t.frozen
}

// Len returns the number of registered patterns.
func (t *Trie) Len() int {
	return t.count
}

// LongestMatch returns the longest prefix of text[pos:] that matches a
// registered pattern, or "" if there is none. A pos outside the text
// yields "".
func (t *Trie) LongestMatch(text string, pos int) string {
	n := t.MatchLen(text, pos)
	if n == 0 {
		return ""
	}
	return text[pos : pos+n]
}

// MatchLen is LongestMatch returning the length of the match in bytes.
func (t *Trie) MatchLen(text string, pos int) int {
	if pos < 0 || pos > len(text) {
		return 0
	}

	cur := t.root
	end := pos
	longest := 0
	for end < len(text) {
		n, next := cur.candidate(text, end)
		if next == nil {
			break
		}
		end += n
		cur = next
		if cur.accepting() {
			longest = end - pos
		}
	}
	return longest
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

func (n *node) accepting() bool {
	_, ok := n.children[sentinel]
	return ok
}

// literal returns the child for r, creating it if needed.
func (n *node) literal(r rune) *node {
	child, ok := n.children[r]
	if !ok {
		child = newNode()
		n.children[r] = child
	}
	return child
}

// capability returns the child reached through c, reusing an existing
// edge that accepts exactly the same input.
func (n *node) capability(c capability) *node {
	for i := range n.edges {
		if n.edges[i].cap.sameAs(&c) {
			return n.edges[i].next
		}
	}
	child := newNode()
	n.edges = append(n.edges, edge{cap: c, next: child})
	return child
}

// candidate picks the edge to follow at text[pos]: the literal edge for
// the character if there is one, else the first capability edge that
// matches. It returns the number of bytes consumed and the target node,
// or a nil node when nothing matches.
func (n *node) candidate(text string, pos int) (int, *node) {
	r, size := utf8.DecodeRuneInString(text[pos:])
	if r != sentinel {
		if child, ok := n.children[r]; ok {
			return size, child
		}
	}
	for i := range n.edges {
		if k := n.edges[i].cap.match(text, pos); k > 0 {
			return k, n.edges[i].next
		}
	}
	return 0, nil
}
