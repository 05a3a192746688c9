// Package markdown tokenizes lines of inline markdown (emphasis and code
// spans) into tags.
package markdown

import (
	"bufio"
	"io"
	"strings"

	"github.com/praetorian-inc/glossa/pkg/cursor"
	"github.com/praetorian-inc/glossa/pkg/ptrie"
	"github.com/praetorian-inc/glossa/pkg/tag"
)

// Tag names and metadata keys produced by Parse.
const (
	TagText = "text"
	TagBr   = "br"

	KeyContent = "content"
	KeyBold    = "bold"
	KeyItalic  = "italic"
	KeyCode    = "code"
)

type style struct {
	// ahead is where the search for the closing delimiter starts, so that
	// a span always has content.
	ahead int
	flags []string
}

var styles = map[string]style{
	"***": {ahead: 4, flags: []string{KeyBold, KeyItalic}},
	"**":  {ahead: 3, flags: []string{KeyBold}},
	"*":   {ahead: 2, flags: []string{KeyItalic}},
	"`":   {ahead: 2, flags: []string{KeyCode}},
}

var delimiters = func() *ptrie.Trie {
	t := ptrie.MustCompile("***", "**", "*", "`")
	t.Freeze()
	return t
}()

// Parse tokenizes lines. Each line yields text tags; a br tag separates
// successive lines. A delimiter without a matching closer is plain text.
func Parse(lines []string) []*tag.Tag {
	var result []*tag.Tag
	for i, line := range lines {
		result = parseLine(line, result)
		if i < len(lines)-1 {
			result = append(result, tag.New(TagBr))
		}
	}
	return result
}

// ParseReader reads r line by line and tokenizes it.
func ParseReader(r io.Reader) ([]*tag.Tag, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return Parse(lines), nil
}

func parseLine(line string, result []*tag.Tag) []*tag.Tag {
	c := cursor.New(line)
	var pending strings.Builder

	for !c.Done() {
		delim := delimiters.LongestMatch(c.Rest(), 0)
		if st, ok := styles[delim]; ok {
			if end := c.Search(delim, st.ahead); end >= 0 {
				result = flush(result, &pending)
				span := tag.New(TagText)
				for _, f := range st.flags {
					span.Flag(f)
				}
				span.Set(KeyContent, c.Slice(len(delim), end))
				result = append(result, span)
				c.Jump(end + len(delim))
				continue
			}
		}

		start := c.Pos()
		c.NextRune()
		pending.WriteString(line[start:c.Pos()])
	}
	return flush(result, &pending)
}

func flush(result []*tag.Tag, pending *strings.Builder) []*tag.Tag {
	if pending.Len() == 0 {
		return result
	}
	result = append(result, tag.New(TagText).Set(KeyContent, pending.String()))
	pending.Reset()
	return result
}
