package types

import "fmt"

// OffsetSpan is the byte range [Start, End).
type OffsetSpan struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Len returns the span length in bytes.
func (s OffsetSpan) Len() int64 {
	return s.End - s.Start
}

// SourcePoint is a 1-based line:column position. Columns count runes.
type SourcePoint struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (p SourcePoint) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// SourceSpan is a start-end line:column range.
type SourceSpan struct {
	Start SourcePoint `json:"start"`
	End   SourcePoint `json:"end"`
}

// Location combines byte offsets and source positions.
type Location struct {
	Offset OffsetSpan `json:"offset"`
	Source SourceSpan `json:"source"`
}

// NewLocation computes the location of content[start:end].
func NewLocation(content []byte, start, end int) Location {
	sl, sc := ComputeLineColumn(content, start)
	el, ec := ComputeLineColumn(content, end)
	return Location{
		Offset: OffsetSpan{Start: int64(start), End: int64(end)},
		Source: SourceSpan{
			Start: SourcePoint{Line: sl, Column: sc},
			End:   SourcePoint{Line: el, Column: ec},
		},
	}
}
