package ptrie

import (
	"errors"
	"fmt"
)

// Errors reported while building character classes or registering
// patterns. Matching never fails.
var (
	ErrMalformedClass      = errors.New("malformed character class")
	ErrClassBounds         = errors.New("invalid character class bounds")
	ErrMalformedGroup      = errors.New("malformed group")
	ErrMalformedRepetition = errors.New("malformed repetition")
	ErrReservedRune        = errors.New("reserved code point in pattern")
	ErrFrozen              = errors.New("trie is frozen")
)

// PatternError describes a pattern that could not be registered.
// Offset is the index, in runes, of the construct that failed.
type PatternError struct {
	Pattern string
	Offset  int
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("ptrie: pattern %q at offset %d: %v", e.Pattern, e.Offset, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}
