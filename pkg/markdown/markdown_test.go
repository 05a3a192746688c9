package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praetorian-inc/glossa/pkg/tag"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{
			name:  "empty line",
			lines: []string{""},
			want:  "[]",
		},
		{
			name:  "plain",
			lines: []string{"hello"},
			want:  "[《text〡content〓hello》]",
		},
		{
			name:  "bold first",
			lines: []string{"**hello**world"},
			want:  "[《text〡bold〡content〓hello》, 《text〡content〓world》]",
		},
		{
			name:  "bold last",
			lines: []string{"hello**world**"},
			want:  "[《text〡content〓hello》, 《text〡bold〡content〓world》]",
		},
		{
			name:  "unclosed delimiter is text",
			lines: []string{"2 * 3"},
			want:  "[《text〡content〓2 * 3》]",
		},
		{
			name:  "empty span is text",
			lines: []string{"****"},
			want:  "[《text〡content〓****》]",
		},
		{
			name:  "non-ASCII content",
			lines: []string{"très *joli*"},
			want:  "[《text〡content〓très 》, 《text〡content〓joli〡italic》]",
		},
		{
			name: "three lines",
			lines: []string{
				"hello**world**",
				"ok *italic* and `i=42`",
				"This text is ***really important***.",
			},
			want: "[《text〡content〓hello》, 《text〡bold〡content〓world》, 《br》, " +
				"《text〡content〓ok 》, 《text〡content〓italic〡italic》, 《text〡content〓 and 》, " +
				"《text〡code〡content〓i=42》, 《br》, 《text〡content〓This text is 》, " +
				"《text〡bold〡content〓really important〡italic》, 《text〡content〓.》]",
		},
		{
			name:  "blank line between",
			lines: []string{"a", "", "b"},
			want:  "[《text〡content〓a》, 《br》, 《br》, 《text〡content〓b》]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tag.Join(Parse(tt.lines)))
		})
	}
}

func TestParseReader(t *testing.T) {
	tags, err := ParseReader(strings.NewReader("hello**world**\n`x`\n"))
	require.NoError(t, err)
	assert.Equal(t,
		"[《text〡content〓hello》, 《text〡bold〡content〓world》, 《br》, 《text〡code〡content〓x》]",
		tag.Join(tags))
}

func TestRenderHTML(t *testing.T) {
	got := RenderHTML(Parse([]string{"hello**world**", "ok *it* `c`"}))
	assert.Equal(t, "hello<strong>world</strong><br>ok <em>it</em> <code>c</code>", got)
}

func TestRenderHTML_EscapesContent(t *testing.T) {
	got := RenderHTML(Parse([]string{"**<script>alert(1)</script>**"}))
	assert.NotContains(t, got, "<script>")
	assert.Contains(t, got, "<strong>")
	assert.Contains(t, got, "&lt;script&gt;")
}
