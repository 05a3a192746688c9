package explore

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// listNav is the cursor and scroll position of a list pane.
type listNav struct {
	cursor int
	offset int
}

// move applies a navigation key to a list of count rows with page rows
// visible. It reports whether msg was a navigation key.
func (n *listNav) move(msg tea.KeyMsg, count, page int) bool {
	switch {
	case key.Matches(msg, keys.Up):
		n.cursor--
	case key.Matches(msg, keys.Down):
		n.cursor++
	case key.Matches(msg, keys.PageUp):
		n.cursor -= page
	case key.Matches(msg, keys.PageDown):
		n.cursor += page
	case key.Matches(msg, keys.Top):
		n.cursor = 0
	case key.Matches(msg, keys.Bottom):
		n.cursor = count - 1
	default:
		return false
	}
	n.clamp(count, page)
	return true
}

// clamp keeps the cursor inside the list and on screen.
func (n *listNav) clamp(count, page int) {
	n.cursor = max(0, min(n.cursor, count-1))
	if n.cursor < n.offset {
		n.offset = n.cursor
	}
	if n.cursor >= n.offset+page {
		n.offset = n.cursor - page + 1
	}
}

// window returns the index range of the visible rows.
func (n listNav) window(count, page int) (start, end int) {
	start = min(n.offset, count)
	return start, min(start+page, count)
}

// fillRows pads lines to width and adds blank rows up to rows.
func fillRows(lines []string, rows, width int) string {
	width = max(0, width)
	out := make([]string, 0, max(rows, len(lines)))
	for _, l := range lines {
		out = append(out, padRight(l, width))
	}
	for len(out) < rows {
		out = append(out, strings.Repeat(" ", width))
	}
	return strings.Join(out, "\n")
}

// framePane draws a titled, bordered pane.
func framePane(title, body string, width, height int, focused bool) string {
	border := inactiveBorderStyle
	if focused {
		border = activeBorderStyle
	}
	box := border.Width(max(0, width-2)).Height(max(0, height-3)).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), box)
}

// highlight renders a selected row.
func highlight(line string, width int) string {
	return selectedRowStyle.Width(max(0, width)).Render(ansi.Strip(line))
}

// truncateString shortens s to maxLen cells, ending it with "...".
func truncateString(s string, maxLen int) string {
	switch {
	case maxLen <= 0:
		return ""
	case ansi.StringWidth(s) <= maxLen:
		return s
	case maxLen <= 3:
		return ansi.Truncate(s, maxLen, "")
	}
	return ansi.Truncate(s, maxLen, "...")
}

func padRight(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
