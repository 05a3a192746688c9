package explore

import "github.com/charmbracelet/lipgloss"

// Palette. Adaptive colors keep the browser readable on light terminals.
var (
	accent  = lipgloss.AdaptiveColor{Light: "#1F5FAF", Dark: "#5F9FFF"}
	token   = lipgloss.AdaptiveColor{Light: "#8A6D00", Dark: "#E5C07B"}
	chosen  = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#98C379"}
	faint   = lipgloss.AdaptiveColor{Light: "#8C8C8C", Dark: "#6C6C6C"}
	label   = lipgloss.AdaptiveColor{Light: "#00838F", Dark: "#56B6C2"}
	strong  = lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}
	rowMark = lipgloss.AdaptiveColor{Light: "#D0E0FF", Dark: "#264F78"}
)

var (
	pane                = lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	activeBorderStyle   = pane.BorderForeground(accent)
	inactiveBorderStyle = pane.BorderForeground(faint)
	modalStyle          = pane.Border(lipgloss.DoubleBorder()).BorderForeground(accent).Padding(1, 2)

	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(strong).Background(accent).Padding(0, 1)
	headerRowStyle   = lipgloss.NewStyle().Bold(true).Foreground(label)
	selectedRowStyle = lipgloss.NewStyle().Background(rowMark).Foreground(strong)
	statusBarStyle   = lipgloss.NewStyle().Foreground(faint)

	snippetMatchStyle   = lipgloss.NewStyle().Bold(true).Foreground(token)
	snippetContextStyle = lipgloss.NewStyle().Foreground(faint)

	facetLabelStyle    = lipgloss.NewStyle().Bold(true).Foreground(accent)
	facetSelectedStyle = lipgloss.NewStyle().Foreground(chosen)
	facetCountStyle    = statusBarStyle

	fieldLabelStyle = headerRowStyle
	fieldValueStyle = lipgloss.NewStyle().Foreground(strong)

	helpKeyStyle  = lipgloss.NewStyle().Foreground(label)
	helpDescStyle = statusBarStyle
)
