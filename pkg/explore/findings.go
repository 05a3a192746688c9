package explore

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// sortField defines which column to sort by.
type sortField int

const (
	sortByRuleName sortField = iota
	sortByText
	sortByMatches
	sortByLength
	sortFieldCount // sentinel
)

var sortFieldNames = [sortFieldCount]string{
	"Rule Name", "Text", "Matches", "Length",
}

var sortCompare = [sortFieldCount]func(a, b *findingRow) int{
	sortByRuleName: func(a, b *findingRow) int { return cmp.Compare(a.RuleName, b.RuleName) },
	sortByText:     func(a, b *findingRow) int { return cmp.Compare(a.Text, b.Text) },
	sortByMatches:  func(a, b *findingRow) int { return cmp.Compare(a.MatchCount, b.MatchCount) },
	sortByLength:   func(a, b *findingRow) int { return cmp.Compare(len(a.Text), len(b.Text)) },
}

// findingsPane is the findings table above the details.
type findingsPane struct {
	listNav
	rows    []*findingRow // rows passing the filters, in display order
	total   int
	width   int
	height  int
	focused bool
	sortBy  sortField
	desc    bool
}

func newFindingsPane(rows []*findingRow) findingsPane {
	fp := findingsPane{total: len(rows)}
	fp.setFilteredRows(rows)
	return fp
}

// setFilteredRows replaces the visible rows, keeping the sort order.
func (fp *findingsPane) setFilteredRows(rows []*findingRow) {
	fp.rows = slices.Clone(rows)
	fp.sort()
	fp.clamp(len(fp.rows), fp.visibleRows())
}

func (fp findingsPane) selectedFinding() *findingRow {
	if fp.cursor < 0 || fp.cursor >= len(fp.rows) {
		return nil
	}
	return fp.rows[fp.cursor]
}

func (fp findingsPane) Update(msg tea.Msg) (findingsPane, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok || !fp.focused || fp.move(km, len(fp.rows), fp.visibleRows()) {
		return fp, nil
	}
	switch {
	case key.Matches(km, keys.Sort):
		fp.sortBy = (fp.sortBy + 1) % sortFieldCount
	case key.Matches(km, keys.Reverse):
		fp.desc = !fp.desc
	default:
		return fp, nil
	}
	fp.sort()
	return fp, nil
}

// sort orders rows by the current column. Ties keep load order, which is
// rule ID then text.
func (fp *findingsPane) sort() {
	compare := sortCompare[fp.sortBy]
	slices.SortStableFunc(fp.rows, func(a, b *findingRow) int {
		if fp.desc {
			return compare(b, a)
		}
		return compare(a, b)
	})
}

func (fp findingsPane) View() string {
	if fp.width <= 0 || fp.height <= 0 {
		return ""
	}

	width := fp.width - 4 // borders
	colCount := 8
	colRule := min(30, width/3)
	colText := max(10, width-colRule-colCount-3)

	mark := func(f sortField) string {
		switch {
		case fp.sortBy != f:
			return ""
		case fp.desc:
			return " v"
		}
		return " ^"
	}

	rows := fp.visibleRows()
	lines := make([]string, 0, rows+2)
	header := fmt.Sprintf(" %-*s %-*s %*s",
		colRule, "Rule Name"+mark(sortByRuleName),
		colText, "Text"+mark(sortByText)+mark(sortByLength),
		colCount, "Matches"+mark(sortByMatches))
	lines = append(lines,
		headerRowStyle.Width(max(0, width)).Render(truncateString(header, width)),
		strings.Repeat("─", max(0, width)))

	start, end := fp.window(len(fp.rows), rows)
	for i := start; i < end; i++ {
		r := fp.rows[i]
		line := fmt.Sprintf(" %s %s %*d",
			padRight(truncateString(r.RuleName, colRule), colRule),
			padRight(truncateString(displayText(r.Text), colText), colText),
			colCount, r.MatchCount)
		if i == fp.cursor && fp.focused {
			line = highlight(line, width)
		}
		lines = append(lines, line)
	}

	title := fmt.Sprintf(" Findings (%d/%d) [sort: %s] ", len(fp.rows), fp.total, sortFieldNames[fp.sortBy])
	return framePane(title, fillRows(lines, rows+2, width), fp.width, fp.height, fp.focused)
}

func (fp findingsPane) visibleRows() int {
	return max(1, fp.height-6) // title + border + header + separator
}

func (fp *findingsPane) setSize(w, h int) {
	fp.width = w
	fp.height = h
}

// displayText shows line breaks and tabs of a token on one line.
func displayText(s string) string {
	return strings.NewReplacer("\n", `\n`, "\r", `\r`, "\t", `\t`).Replace(s)
}
