package ptrie

// Reserved code points of the pattern notation.
//
//	Set:          「abc」
//	Range:        「a〜c」
//	One or more:  〸a  or  〸「0〜9」
//	Named group:  a〔label〡〸b〕c
const (
	classOpen    = '「'
	classClose   = '」'
	rangeOp      = '〜'
	repeatMarker = '〸'
	groupOpen    = '〔'
	groupClose   = '〕'
	groupSep     = '〡'

	// sentinel keys the edge that marks an accept state. It can never
	// appear in a registered pattern.
	sentinel = '\x00'
)

// Character classes cover the window [windowLow, windowHigh].
const (
	windowLow  = 32
	windowHigh = 128
	windowSize = windowHigh - windowLow + 1 // 97
)

// LiteralPrefix returns the run of literal characters at the start of
// pattern, stopping at the first class, repetition or group construct.
// A pattern that cannot be registered may still have a prefix.
func LiteralPrefix(pattern string) string {
	for i, r := range pattern {
		switch r {
		case classOpen, repeatMarker, groupOpen, sentinel:
			return pattern[:i]
		}
	}
	return pattern
}
