package markdown

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/praetorian-inc/glossa/pkg/tag"
)

// RenderHTML renders tags produced by Parse as sanitized HTML.
func RenderHTML(tags []*tag.Tag) string {
	var b strings.Builder
	for _, t := range tags {
		switch t.Name {
		case TagBr:
			b.WriteString("<br>")
		case TagText:
			b.WriteString(renderText(t))
		}
	}
	return sanitize(b.String())
}

func renderText(t *tag.Tag) string {
	s := html.EscapeString(t.Get(KeyContent))
	if t.Has(KeyCode) {
		s = "<code>" + s + "</code>"
	}
	if t.Has(KeyItalic) {
		s = "<em>" + s + "</em>"
	}
	if t.Has(KeyBold) {
		s = "<strong>" + s + "</strong>"
	}
	return s
}

func sanitize(s string) string {
	return bluemonday.UGCPolicy().Sanitize(s)
}
