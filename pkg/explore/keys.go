package explore

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

// keyMap lists every binding of the browser. It implements help.KeyMap,
// so the status bar and the help overlay are generated from it.
type keyMap struct {
	Up, Down, PrevMatch, NextMatch key.Binding
	PageUp, PageDown, Top, Bottom  key.Binding

	Filters, Findings, Details, HideFilters key.Binding

	Toggle, Reset key.Binding

	Sort, Reverse key.Binding

	Source, Help, Quit, ForceQuit key.Binding
}

func bind(keys []string, helpKey, desc string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(helpKey, desc))
}

var keys = keyMap{
	Up:        bind([]string{"up", "k"}, "k/↑", "up"),
	Down:      bind([]string{"down", "j"}, "j/↓", "down"),
	PrevMatch: bind([]string{"left", "h"}, "h/←", "previous match"),
	NextMatch: bind([]string{"right", "l"}, "l/→", "next match"),
	PageUp:    bind([]string{"pgup", "ctrl+b"}, "C-b", "page up"),
	PageDown:  bind([]string{"pgdown", "ctrl+f"}, "C-f", "page down"),
	Top:       bind([]string{"home", "g"}, "g", "top"),
	Bottom:    bind([]string{"end", "G"}, "G", "bottom"),

	Filters:     bind([]string{"f1"}, "F1", "focus filters"),
	Findings:    bind([]string{"f"}, "f", "focus findings"),
	Details:     bind([]string{"d"}, "d", "focus details"),
	HideFilters: bind([]string{"f7"}, "F7", "show/hide filters"),

	Toggle: bind([]string{"x", " ", "enter"}, "x/spc", "toggle value or facet"),
	Reset:  bind([]string{"ctrl+r"}, "C-r", "reset filters"),

	Sort:    bind([]string{"s"}, "s", "next sort column"),
	Reverse: bind([]string{"S"}, "S", "reverse sort"),

	Source:    bind([]string{"o"}, "o", "source"),
	Help:      bind([]string{"?"}, "?", "help"),
	Quit:      bind([]string{"q"}, "q", "quit"),
	ForceQuit: bind([]string{"ctrl+c"}, "C-c", "force quit"),
}

// ShortHelp is shown in the status bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Findings, k.Sort, k.Source, k.HideFilters, k.Help}
}

// FullHelp is shown in the help overlay, one column per group.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PrevMatch, k.NextMatch, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Filters, k.Findings, k.Details, k.HideFilters},
		{k.Toggle, k.Reset, k.Sort, k.Reverse},
		{k.Source, k.Help, k.Quit, k.ForceQuit},
	}
}

func newHelp() help.Model {
	h := help.New()
	h.Styles.ShortKey = helpKeyStyle
	h.Styles.ShortDesc = helpDescStyle
	h.Styles.FullKey = helpKeyStyle
	h.Styles.FullDesc = helpDescStyle
	return h
}
