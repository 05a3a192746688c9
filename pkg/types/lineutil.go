package types

import (
	"sort"
	"unicode/utf8"
)

// ComputeLineColumn returns the 1-based line and column of a byte offset
// in content. Columns count runes, so a multi-byte character advances the
// column by one. Offsets past the end are clamped.
func ComputeLineColumn(content []byte, byteOffset int) (line, column int) {
	line, column = 1, 1
	for i := 0; i < byteOffset && i < len(content); {
		if content[i] == '\n' {
			line++
			column = 1
			i++
			continue
		}
		_, size := utf8.DecodeRune(content[i:])
		column++
		i += size
	}
	return line, column
}

// LineIndex answers repeated offset to line:column queries over one blob
// without rescanning it from the start each time.
type LineIndex struct {
	content []byte
	starts  []int // byte offset of each line start
}

// NewLineIndex indexes the line starts of content.
func NewLineIndex(content []byte) *LineIndex {
	starts := []int{0}
	for i, b := range content {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{content: content, starts: starts}
}

// Point returns the same position as ComputeLineColumn.
func (x *LineIndex) Point(offset int) SourcePoint {
	offset = max(0, min(offset, len(x.content)))
	line := sort.Search(len(x.starts), func(i int) bool { return x.starts[i] > offset })
	lineStart := x.starts[line-1]
	return SourcePoint{Line: line, Column: utf8.RuneCount(x.content[lineStart:offset]) + 1}
}

// Location returns the location of content[start:end].
func (x *LineIndex) Location(start, end int) Location {
	return Location{
		Offset: OffsetSpan{Start: int64(start), End: int64(end)},
		Source: SourceSpan{Start: x.Point(start), End: x.Point(end)},
	}
}
