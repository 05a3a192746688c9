// Package explore is an interactive terminal browser for the findings of
// a scan database.
package explore

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/praetorian-inc/glossa/pkg/types"
)

// focusedPane tracks which pane has keyboard focus.
type focusedPane int

const (
	paneFilters focusedPane = iota
	paneFindings
	paneDetails
)

// overlay tracks which modal overlay is active.
type overlay int

const (
	overlayNone overlay = iota
	overlayHelp
	overlaySource
)

// filtersWidthPercent and findingsHeightPercent split the screen.
const (
	filtersWidthPercent   = 30
	filtersMaxWidth       = 50
	findingsHeightPercent = 40
)

// pagerFinishedMsg is sent when an external pager process exits.
type pagerFinishedMsg struct{ err error }

// Model is the root Bubble Tea model for the explore TUI.
type Model struct {
	data     *exploreData
	filters  filterPane
	findings findingsPane
	details  detailsPane

	focus         focusedPane
	activeOverlay overlay
	showFilters   bool

	overlayContent string
	overlayOffset  int

	help help.Model

	width  int
	height int
	err    error
}

// New creates a Model from the scan database at path.
func New(path string) (Model, error) {
	data, err := loadData(path)
	if err != nil {
		return Model{}, err
	}
	return newModel(data), nil
}

func newModel(data *exploreData) Model {
	m := Model{
		data:        data,
		filters:     newFilterPane(buildFacets(data.findings)),
		findings:    newFindingsPane(data.findings),
		details:     newDetailsPane(),
		help:        newHelp(),
		showFilters: true,
	}
	m.setFocus(paneFindings)
	m.details.setFinding(m.findings.selectedFinding())
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.SetWindowTitle("glossa explore")
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case pagerFinishedMsg:
		m.err = msg.err
		return m, nil

	case tea.MouseMsg:
		if m.activeOverlay != overlayNone {
			return m, nil
		}
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		m.handleMouseClick(msg.X, msg.Y)
		return m, nil

	case tea.KeyMsg:
		if m.activeOverlay != overlayNone {
			m.updateOverlay(msg)
			return m, nil
		}

		switch {
		case key.Matches(msg, keys.ForceQuit), key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Help):
			m.showOverlay(overlayHelp, m.renderHelp())
			return m, nil
		case key.Matches(msg, keys.HideFilters):
			m.showFilters = !m.showFilters
			if !m.showFilters && m.focus == paneFilters {
				m.setFocus(paneFindings)
			}
			return m, nil
		case key.Matches(msg, keys.Filters):
			if m.showFilters {
				m.setFocus(paneFilters)
			}
			return m, nil
		case key.Matches(msg, keys.Findings):
			m.setFocus(paneFindings)
			return m, nil
		case key.Matches(msg, keys.Details):
			m.setFocus(paneDetails)
			return m, nil
		case key.Matches(msg, keys.Source) && m.focus != paneFilters:
			return m, m.openSource()
		}

		var cmd tea.Cmd
		switch m.focus {
		case paneFilters:
			m.filters, cmd = m.filters.Update(msg)
			m.applyFilters()
		case paneFindings:
			prev := m.findings.selectedFinding()
			m.findings, cmd = m.findings.Update(msg)
			if f := m.findings.selectedFinding(); f != prev {
				m.details.setFinding(f)
			}
		case paneDetails:
			m.details, cmd = m.details.Update(msg)
		}
		return m, cmd
	}

	return m, nil
}

func (m *Model) showOverlay(o overlay, content string) {
	m.activeOverlay = o
	m.overlayContent = content
	m.overlayOffset = 0
}

// updateOverlay scrolls or closes the active overlay.
func (m *Model) updateOverlay(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, keys.Quit),
		key.Matches(msg, keys.ForceQuit),
		m.activeOverlay == overlayHelp && key.Matches(msg, keys.Help),
		m.activeOverlay == overlaySource && key.Matches(msg, keys.Source):
		m.activeOverlay = overlayNone
	case key.Matches(msg, keys.Down):
		m.overlayOffset++
	case key.Matches(msg, keys.Up):
		m.overlayOffset = max(0, m.overlayOffset-1)
	case key.Matches(msg, keys.PageDown):
		m.overlayOffset += m.height / 2
	case key.Matches(msg, keys.PageUp):
		m.overlayOffset = max(0, m.overlayOffset-m.height/2)
	}
}

// layout returns the filters width and the findings height of the
// current window.
func (m Model) layout() (filtersWidth, findingsHeight, contentHeight int) {
	contentHeight = m.height - 2 // status bar + padding
	findingsHeight = contentHeight * findingsHeightPercent / 100
	if m.showFilters {
		filtersWidth = min(m.width*filtersWidthPercent/100, filtersMaxWidth)
	}
	return filtersWidth, findingsHeight, contentHeight
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.activeOverlay != overlayNone {
		return m.renderOverlay()
	}

	filtersWidth, findingsHeight, contentHeight := m.layout()
	dataWidth := m.width - filtersWidth

	m.findings.setSize(dataWidth, findingsHeight)
	m.details.setSize(dataWidth, contentHeight-findingsHeight)
	mainContent := lipgloss.JoinVertical(lipgloss.Left, m.findings.View(), m.details.View())

	if m.showFilters {
		m.filters.setSize(filtersWidth, contentHeight)
		mainContent = lipgloss.JoinHorizontal(lipgloss.Top, m.filters.View(), mainContent)
	}

	return lipgloss.JoinVertical(lipgloss.Left, mainContent, m.renderStatusBar())
}

func (m Model) renderStatusBar() string {
	status := fmt.Sprintf(" %d findings | %d shown", len(m.data.findings), len(m.findings.rows))
	if m.err != nil {
		status += " | " + m.err.Error()
	}
	left := statusBarStyle.Render(status)

	h := m.help
	h.Width = max(0, m.width-lipgloss.Width(left))
	right := h.View(keys)

	gap := max(0, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderOverlay() string {
	overlayWidth := m.width * 80 / 100
	overlayHeight := m.height * 80 / 100

	title := " Help (q to close) "
	if m.activeOverlay == overlaySource {
		title = " Source (q to close) "
	}

	lines := strings.Split(m.overlayContent, "\n")
	offset := min(m.overlayOffset, max(0, len(lines)-1))
	end := min(offset+max(1, overlayHeight-4), len(lines))

	box := modalStyle.
		Width(overlayWidth - 4).
		Height(overlayHeight - 2).
		Render(strings.Join(lines[offset:end], "\n"))
	overlayView := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), box)

	hPad := (m.width - lipgloss.Width(overlayView)) / 2
	vPad := (m.height - lipgloss.Height(overlayView)) / 2
	return strings.Repeat("\n", max(0, vPad)) +
		lipgloss.NewStyle().PaddingLeft(max(0, hPad)).Render(overlayView)
}

func (m *Model) setFocus(p focusedPane) {
	m.filters.focused = p == paneFilters
	m.findings.focused = p == paneFindings
	m.details.focused = p == paneDetails
	m.focus = p
}

func (m *Model) handleMouseClick(x, y int) {
	filtersWidth, findingsHeight, contentHeight := m.layout()
	if y >= contentHeight {
		return
	}

	switch {
	case x < filtersWidth:
		m.setFocus(paneFilters)
		row := y - 2 // title + border top
		if idx := row + m.filters.offset; row >= 0 && idx < len(m.filters.items) {
			m.filters.cursor = idx
			m.filters.toggleCurrent()
			m.applyFilters()
		}
	case y < findingsHeight:
		m.setFocus(paneFindings)
		row := y - 4 // title + border top + header + separator
		if idx := row + m.findings.offset; row >= 0 && idx < len(m.findings.rows) {
			m.findings.cursor = idx
			m.details.setFinding(m.findings.selectedFinding())
		}
	default:
		m.setFocus(paneDetails)
	}
}

// applyFilters recomputes the visible findings from the facet selection.
func (m *Model) applyFilters() {
	var filtered []*findingRow
	for _, f := range m.data.findings {
		if m.filters.facets.matchesFinding(f) {
			filtered = append(filtered, f)
		}
	}
	prev := m.findings.selectedFinding()
	m.findings.setFilteredRows(filtered)
	m.filters.facets.updateCounts(m.data.findings)

	if f := m.findings.selectedFinding(); f != prev {
		m.details.setFinding(f)
	}
}

// openSource pages the file of the selected match, or shows its snippet
// when no file is on disk.
func (m *Model) openSource() tea.Cmd {
	match := m.details.selectedMatch()
	if match == nil {
		return nil
	}

	for _, prov := range match.Provenance {
		if fp, ok := prov.(types.FileProvenance); ok {
			if _, err := os.Stat(fp.FilePath); err == nil {
				return openInPager(fp.FilePath, match.Location.Source.Start.Line)
			}
		}
	}

	m.showOverlay(overlaySource, match.Snippet.Before+match.Snippet.Matching+match.Snippet.After)
	return nil
}

func openInPager(filePath string, line int) tea.Cmd {
	pager := os.Getenv("PAGER")
	if pager == "" {
		pager = "less"
	}

	var args []string
	if line > 0 && pager == "less" {
		args = append(args, fmt.Sprintf("+%d", line))
	}
	args = append(args, filePath)

	c := exec.Command(pager, args...)
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return pagerFinishedMsg{err: err}
	})
}

// Close releases resources held by the model.
func (m *Model) Close() error {
	if m.data != nil {
		return m.data.close()
	}
	return nil
}

// renderHelp lays out every binding in columns under a title.
func (m Model) renderHelp() string {
	h := m.help
	h.ShowAll = true
	return "Glossa Explore - Findings Browser\n\n" + h.View(keys)
}
