package explore

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// filterPane is the facet tree on the left: one heading per facet, its
// values below it while expanded.
type filterPane struct {
	listNav
	facets   *facetState
	items    []filterItem
	expanded map[facetID]bool
	width    int
	height   int
	focused  bool
}

// filterItem is one row of the tree. Heading rows have value -1.
type filterItem struct {
	facet facetID
	value int
}

func (it filterItem) heading() bool { return it.value < 0 }

func newFilterPane(facets *facetState) filterPane {
	fp := filterPane{facets: facets, expanded: make(map[facetID]bool)}
	for _, def := range facetDefs {
		fp.expanded[def.ID] = true
	}
	fp.rebuildItems()
	return fp
}

// rebuildItems flattens the tree. Facets without values are hidden.
func (fp *filterPane) rebuildItems() {
	fp.items = nil
	for _, def := range facetDefs {
		values := fp.facets.Values[def.ID]
		if len(values) == 0 {
			continue
		}
		fp.items = append(fp.items, filterItem{facet: def.ID, value: -1})
		if fp.expanded[def.ID] {
			for i := range values {
				fp.items = append(fp.items, filterItem{facet: def.ID, value: i})
			}
		}
	}
}

func (fp filterPane) Update(msg tea.Msg) (filterPane, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok || !fp.focused || fp.move(km, len(fp.items), fp.visibleRows()) {
		return fp, nil
	}
	switch {
	case key.Matches(km, keys.Toggle):
		fp.toggleCurrent()
	case key.Matches(km, keys.Reset):
		fp.facets.resetAll()
	}
	return fp, nil
}

// toggleCurrent collapses or expands a facet heading, or flips the
// selection of a value.
func (fp *filterPane) toggleCurrent() {
	if fp.cursor < 0 || fp.cursor >= len(fp.items) {
		return
	}
	item := fp.items[fp.cursor]
	if !item.heading() {
		v := fp.facets.Values[item.facet][item.value]
		v.Selected = !v.Selected
		return
	}

	fp.expanded[item.facet] = !fp.expanded[item.facet]
	fp.rebuildItems()
	for i, it := range fp.items {
		if it.heading() && it.facet == item.facet {
			fp.cursor = i
			break
		}
	}
	fp.clamp(len(fp.items), fp.visibleRows())
}

// label is the facet name of a heading or the value of a value row.
func (fp filterPane) label(it filterItem) string {
	if it.heading() {
		return facetDefs[it.facet].Label
	}
	return fp.facets.Values[it.facet][it.value].Value
}

func (fp filterPane) render(it filterItem) string {
	if it.heading() {
		arrow := "▸"
		if fp.expanded[it.facet] {
			arrow = "▾"
		}
		return facetLabelStyle.Render(fmt.Sprintf(" %s %s", arrow, fp.label(it)))
	}

	v := fp.facets.Values[it.facet][it.value]
	name := truncateString(fp.label(it), fp.width-12)
	count := facetCountStyle.Render(fmt.Sprintf("(%d)", v.Count))
	if v.Selected {
		return fmt.Sprintf("   %s %s %s", facetSelectedStyle.Render("+"), facetSelectedStyle.Render(name), count)
	}
	return fmt.Sprintf("     %s %s", name, count)
}

func (fp filterPane) View() string {
	if fp.width <= 0 || fp.height <= 0 {
		return ""
	}

	rows := fp.visibleRows()
	start, end := fp.window(len(fp.items), rows)
	lines := make([]string, 0, rows)
	for i := start; i < end; i++ {
		line := fp.render(fp.items[i])
		if i == fp.cursor && fp.focused {
			line = highlight(line, fp.width-2)
		}
		lines = append(lines, line)
	}

	return framePane(" Filters ", fillRows(lines, rows, fp.width-2), fp.width, fp.height, fp.focused)
}

func (fp filterPane) visibleRows() int {
	return max(1, fp.height-4) // title + border
}

func (fp *filterPane) setSize(w, h int) {
	fp.width = w
	fp.height = h
}
