package ptrie

import "fmt"

type capKind uint8

const (
	capClass  capKind = iota // one character from a CharSet
	capRepeat                // one or more characters from a CharSet, greedy
	capGroup                 // longest match of an owned sub-trie
)

// capability is the non-literal condition on a trie edge. The variant set
// is closed; match is a pure function of the text and the capability.
type capability struct {
	kind  capKind
	class CharSet // capClass, capRepeat
	group *Trie   // capGroup, sealed
	label string  // capGroup, informational only
}

// match returns how many bytes of text, starting at pos, the capability
// consumes. Zero means no match.
func (c *capability) match(text string, pos int) int {
	switch c.kind {
	case capClass:
		return c.class.Match(text, pos)
	case capRepeat:
		end := pos
		for {
			n := c.class.Match(text, end)
			if n == 0 {
				break
			}
			end += n
		}
		return end - pos
	case capGroup:
		return c.group.MatchLen(text, pos)
	}
	return 0
}

// sameAs reports whether two capabilities accept exactly the same input,
// so that their edges can share a child node. Groups are never shared.
func (c *capability) sameAs(o *capability) bool {
	if c.kind != o.kind || c.kind == capGroup {
		return false
	}
	return c.class.equal(&o.class)
}

func (c *capability) String() string {
	switch c.kind {
	case capClass:
		return c.class.String()
	case capRepeat:
		return string(repeatMarker) + c.class.String()
	case capGroup:
		return fmt.Sprintf("%c%s%c%d patterns%c", groupOpen, c.label, groupSep, c.group.Len(), groupClose)
	}
	return "?"
}
