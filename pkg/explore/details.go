package explore

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/praetorian-inc/glossa/pkg/types"
)

// detailsPane shows the matches of the selected finding, one at a time.
type detailsPane struct {
	finding     *findingRow
	matchCursor int
	width       int
	height      int
	offset      int // scroll offset for content
	focused     bool
}

func newDetailsPane() detailsPane {
	return detailsPane{}
}

func (dp *detailsPane) setFinding(f *findingRow) {
	dp.finding = f
	dp.matchCursor = 0
	dp.offset = 0
}

func (dp detailsPane) selectedMatch() *matchRow {
	if dp.finding == nil || dp.matchCursor < 0 || dp.matchCursor >= len(dp.finding.Matches) {
		return nil
	}
	return dp.finding.Matches[dp.matchCursor]
}

func (dp detailsPane) Update(msg tea.Msg) (detailsPane, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok || !dp.focused {
		return dp, nil
	}

	switch {
	case key.Matches(km, keys.PrevMatch):
		dp.selectMatch(dp.matchCursor - 1)
	case key.Matches(km, keys.NextMatch):
		dp.selectMatch(dp.matchCursor + 1)
	case key.Matches(km, keys.Up):
		dp.offset--
	case key.Matches(km, keys.Down):
		dp.offset++
	case key.Matches(km, keys.PageUp):
		dp.offset -= dp.visibleRows()
	case key.Matches(km, keys.PageDown):
		dp.offset += dp.visibleRows()
	case key.Matches(km, keys.Top):
		dp.offset = 0
	}
	dp.offset = max(0, dp.offset)
	return dp, nil
}

// selectMatch moves to match i of the finding if it exists.
func (dp *detailsPane) selectMatch(i int) {
	if dp.finding != nil && i >= 0 && i < len(dp.finding.Matches) {
		dp.matchCursor = i
		dp.offset = 0
	}
}

// lines renders the pane content before scrolling.
func (dp detailsPane) lines(contentWidth int) []string {
	f := dp.finding
	if f == nil {
		return []string{"  No finding selected"}
	}

	lines := []string{
		field("Rule:", fmt.Sprintf("%s (%s)", f.RuleName, f.RuleID)),
		fmt.Sprintf("  %s %s", fieldLabelStyle.Render("Text:"), snippetMatchStyle.Render(displayText(f.Text))),
		field("Finding:", f.FindingID),
	}
	if len(f.Categories) > 0 {
		lines = append(lines, field("Categories:", strings.Join(f.Categories, ", ")))
	}
	lines = append(lines, "")

	m := dp.selectedMatch()
	if m == nil {
		return append(lines, "  No matches")
	}
	lines = append(lines,
		"  "+headerRowStyle.Render(fmt.Sprintf("Match %d/%d (h/l to navigate)", dp.matchCursor+1, len(f.Matches))),
		"  "+strings.Repeat("─", max(0, min(40, contentWidth-4))),
	)
	return append(lines, renderMatchDetails(m, contentWidth)...)
}

func (dp detailsPane) View() string {
	if dp.width <= 0 || dp.height <= 0 {
		return ""
	}

	width := dp.width - 4
	all := dp.lines(width)
	all = all[min(dp.offset, max(0, len(all)-1)):]
	rows := dp.visibleRows()
	if len(all) > rows {
		all = all[:rows]
	}

	visible := make([]string, len(all))
	for i, l := range all {
		visible[i] = truncateString(l, width)
	}
	return framePane(" Details ", fillRows(visible, rows, width), dp.width, dp.height, dp.focused)
}

func field(label, value string) string {
	return fmt.Sprintf("  %s %s", fieldLabelStyle.Render(label), fieldValueStyle.Render(value))
}

func renderMatchDetails(m *matchRow, maxWidth int) []string {
	var lines []string
	for _, prov := range m.Provenance {
		name := "Source:"
		if _, ok := prov.(types.FileProvenance); ok {
			name = "File:"
		}
		lines = append(lines, field(name, prov.Path()))
	}
	lines = append(lines, field("Blob:", m.BlobID.Hex()[:12]+"..."))

	loc := m.Location
	if loc.Source.Start.Line > 0 {
		lines = append(lines, field("Location:", fmt.Sprintf("%s - %s (bytes %d-%d)",
			loc.Source.Start, loc.Source.End, loc.Offset.Start, loc.Offset.End)))
	}

	lines = append(lines, "", "  "+fieldLabelStyle.Render("Snippet:"))
	for _, l := range snippetLines(m.Snippet) {
		lines = append(lines, "    "+truncateString(l, maxWidth-6))
	}
	return lines
}

// snippetLines lays out the context and the token as they appear in the
// source, the token highlighted within its line.
func snippetLines(s types.Snippet) []string {
	lines := []string{""}
	add := func(text string, style lipgloss.Style) {
		for i, piece := range strings.Split(text, "\n") {
			if i > 0 {
				lines = append(lines, "")
			}
			if piece = strings.TrimSuffix(piece, "\r"); piece != "" {
				lines[len(lines)-1] += style.Render(piece)
			}
		}
	}
	add(s.Before, snippetContextStyle)
	add(s.Matching, snippetMatchStyle)
	add(s.After, snippetContextStyle)
	return lines
}

func (dp detailsPane) visibleRows() int {
	return max(1, dp.height-4)
}

func (dp *detailsPane) setSize(w, h int) {
	dp.width = w
	dp.height = h
}
