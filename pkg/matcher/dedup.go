package matcher

import "github.com/praetorian-inc/glossa/pkg/types"

// DedupeMode controls how matches are deduplicated.
type DedupeMode int

const (
	// DedupeByLocation drops matches of the same rule at the same span.
	// Every occurrence of a token is reported.
	DedupeByLocation DedupeMode = iota

	// DedupeByContent reports each (rule, text) pair once per blob.
	DedupeByContent
)

// ParseDedupeMode maps "location" and "content" to a DedupeMode.
func ParseDedupeMode(s string) (DedupeMode, bool) {
	switch s {
	case "", "location":
		return DedupeByLocation, true
	case "content":
		return DedupeByContent, true
	}
	return DedupeByLocation, false
}

// Deduplicator remembers matches it has seen. It is not safe for
// concurrent use; matchers create one per scan.
type Deduplicator struct {
	seen map[string]struct{}
	mode DedupeMode
}

// NewDeduplicator creates a deduplicator for mode.
func NewDeduplicator(mode DedupeMode) *Deduplicator {
	return &Deduplicator{seen: make(map[string]struct{}), mode: mode}
}

// IsDuplicate reports whether an equivalent match was already added.
func (d *Deduplicator) IsDuplicate(m *types.Match) bool {
	_, ok := d.seen[d.key(m)]
	return ok
}

// Add marks a match as seen.
func (d *Deduplicator) Add(m *types.Match) {
	d.seen[d.key(m)] = struct{}{}
}

// Len returns the number of distinct matches added.
func (d *Deduplicator) Len() int {
	return len(d.seen)
}

// Reset clears the deduplicator for reuse.
func (d *Deduplicator) Reset() {
	clear(d.seen)
}

func (d *Deduplicator) key(m *types.Match) string {
	if d.mode == DedupeByContent {
		// FindingID hashes rule and text.
		return m.FindingID
	}
	return m.StructuralID
}
