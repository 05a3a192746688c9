package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/praetorian-inc/glossa/pkg/explore"
	"github.com/spf13/cobra"
)

var exploreDatastore string

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Interactively browse scan results",
	Long: `Launch a terminal UI to browse the findings of a scan database.

Features:
  - Three-pane layout: filters, findings table, match details
  - Faceted filtering by rule name, category and file type
  - Vi-style navigation (hjkl, Ctrl-f/b, g/G)
  - Source viewer for matched content
  - Sortable findings table`,
	RunE: runExplore,
}

func init() {
	exploreCmd.Flags().StringVar(&exploreDatastore, "datastore", "glossa.db", "Path to the scan database")
}

func runExplore(cmd *cobra.Command, args []string) error {
	model, err := explore.New(exploreDatastore)
	if err != nil {
		return fmt.Errorf("loading datastore: %w", err)
	}
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running explore TUI: %w", err)
	}
	return nil
}
