package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/praetorian-inc/glossa/pkg/store"
	"github.com/praetorian-inc/glossa/pkg/types"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// snippetWidth is the widest snippet the human report prints.
const snippetWidth = 160

var (
	reportDatastore  string
	reportFormat     string
	reportColor      string
	reportMaxMatches int
)

// styles holds the color formatters of the human report.
type styles struct {
	findingHeading *color.Color
	id             *color.Color
	ruleName       *color.Color
	heading        *color.Color
	match          *color.Color
	metadata       *color.Color
}

// newStyles creates color formatters for report output.
func newStyles(enabled bool) *styles {
	s := &styles{
		findingHeading: color.New(color.Bold, color.FgHiWhite),
		id:             color.New(color.FgHiGreen),
		ruleName:       color.New(color.Bold, color.FgHiBlue),
		heading:        color.New(color.Bold),
		match:          color.New(color.FgYellow),
		metadata:       color.New(color.FgHiBlue),
	}

	// Per-color settings override color.NoColor, which is derived from
	// os.Stdout rather than the command's writer.
	for _, c := range []*color.Color{s.findingHeading, s.id, s.ruleName, s.heading, s.match, s.metadata} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

// snippetParts holds separated snippet components for colored output
type snippetParts struct {
	prefix   string // "..." if truncated at start
	before   string
	matching string
	after    string
	suffix   string // "..." if truncated at end
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a report from scan results",
	Long:  "Read findings and matches from a scan database and print them",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportDatastore, "datastore", "glossa.db", "Path to the scan database")
	reportCmd.Flags().StringVar(&reportFormat, "format", "human", "Output format: human, json, sarif")
	reportCmd.Flags().StringVar(&reportColor, "color", "auto", "Color output: auto, always, never")
	reportCmd.Flags().IntVar(&reportMaxMatches, "max-matches", 3, "Matches shown per finding in human output (0 = all)")
}

func runReport(cmd *cobra.Command, args []string) error {
	if reportDatastore == store.MemoryPath {
		return fmt.Errorf("cannot report from in-memory store")
	}
	if _, err := os.Stat(reportDatastore); err != nil {
		return fmt.Errorf("datastore not found: %s", reportDatastore)
	}

	s, err := store.New(store.Config{Path: reportDatastore})
	if err != nil {
		return fmt.Errorf("opening datastore: %w", err)
	}
	defer s.Close()

	findings, err := s.GetFindings()
	if err != nil {
		return fmt.Errorf("retrieving findings: %w", err)
	}
	matches, err := s.GetAllMatches()
	if err != nil {
		return fmt.Errorf("retrieving matches: %w", err)
	}
	rules, err := s.GetRules()
	if err != nil {
		return fmt.Errorf("retrieving rules: %w", err)
	}

	switch reportFormat {
	case "json":
		return outputReportJSON(cmd, findings, matches)
	case "human":
		return outputReportHuman(cmd, s, findings, matches, rules)
	case "sarif":
		return outputSARIF(cmd, s, rules, matches)
	default:
		return fmt.Errorf("unknown output format: %s", reportFormat)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// groupByFinding attaches every match to its finding.
func groupByFinding(findings []*types.Finding, matches []*types.Match) {
	byID := make(map[string][]*types.Match, len(findings))
	for _, m := range matches {
		byID[m.FindingID] = append(byID[m.FindingID], m)
	}
	for _, f := range findings {
		f.Matches = byID[f.ID]
	}
}

// formatSnippetWithParts joins before, matching and after and, when the
// result is wider than maxLen bytes, cuts a window centred on the match.
// Cuts never split a UTF-8 sequence.
func formatSnippetWithParts(before, matching, after string, maxLen int) snippetParts {
	full := before + matching + after
	if len(full) <= maxLen {
		return snippetParts{before: before, matching: matching, after: after}
	}

	matchStart := len(before)
	matchEnd := matchStart + len(matching)

	if len(matching) >= maxLen {
		return snippetParts{
			prefix:   "...",
			matching: matching[:runeStart(matching, maxLen-6)],
			suffix:   "...",
		}
	}

	// Reserve room for "..." on each side.
	half := (maxLen - len(matching) - 6) / 2
	start := matchStart - half
	end := matchEnd + half
	if start < 0 {
		end -= start
		start = 0
	}
	if end > len(full) {
		start = max(0, start-(end-len(full)))
		end = len(full)
	}
	start = runeStart(full, start)
	end = runeStart(full, end)

	parts := snippetParts{
		before:   full[start:matchStart],
		matching: matching,
		after:    full[matchEnd:end],
	}
	if start > 0 {
		parts.prefix = "..."
	}
	if end < len(full) {
		parts.suffix = "..."
	}
	return parts
}

// runeStart moves i back to the start of the UTF-8 sequence it falls in.
func runeStart(s string, i int) int {
	for i > 0 && i < len(s) && s[i]&0xC0 == 0x80 {
		i--
	}
	return i
}

func outputReportJSON(cmd *cobra.Command, findings []*types.Finding, matches []*types.Match) error {
	groupByFinding(findings, matches)

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(findings)
}

// colorEnabled resolves --color against the terminal and NO_COLOR.
func colorEnabled(out io.Writer) bool {
	switch reportColor {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func outputReportHuman(cmd *cobra.Command, s store.Store, findings []*types.Finding, matches []*types.Match, rules []*types.Rule) error {
	out := cmd.OutOrStdout()
	st := newStyles(colorEnabled(out))
	groupByFinding(findings, matches)

	ruleNames := make(map[string]string, len(rules))
	for _, r := range rules {
		ruleNames[r.ID] = r.Name
	}
	paths := newProvenanceCache(s)

	for i, f := range findings {
		fmt.Fprintf(out, "%s (%s %s)\n",
			st.findingHeading.Sprintf("Finding %d/%d", i+1, len(findings)),
			st.heading.Sprint("id"),
			st.id.Sprint(f.ID))

		ruleName, ok := ruleNames[f.RuleID]
		if !ok {
			ruleName = f.RuleID
		}
		fmt.Fprintf(out, "%s %s\n", st.heading.Sprint("Rule:"), st.ruleName.Sprint(ruleName))
		fmt.Fprintf(out, "%s %s\n", st.heading.Sprint("Text:"), st.match.Sprint(f.Text))

		shown := f.Matches
		if reportMaxMatches > 0 && len(shown) > reportMaxMatches {
			fmt.Fprintf(out, "Showing %d/%d matches:\n", reportMaxMatches, len(shown))
			shown = shown[:reportMaxMatches]
		}

		for k, match := range shown {
			fmt.Fprintf(out, "\n    %s (%s %s)\n",
				st.heading.Sprintf("Match %d/%d", k+1, len(f.Matches)),
				st.heading.Sprint("id"),
				st.id.Sprint(match.StructuralID))
			fmt.Fprintf(out, "    %s %s\n", st.heading.Sprint("File:"), st.metadata.Sprint(paths.path(match.BlobID)))
			fmt.Fprintf(out, "    %s %s\n", st.heading.Sprint("Blob:"), st.metadata.Sprint(match.BlobID.Hex()))
			if match.Location.Source.Start.Line > 0 {
				fmt.Fprintf(out, "    %s %s-%s\n",
					st.heading.Sprint("Lines:"),
					match.Location.Source.Start, match.Location.Source.End)
			}

			parts := formatSnippetWithParts(match.Snippet.Before, match.Snippet.Matching, match.Snippet.After, snippetWidth)
			fmt.Fprintf(out, "\n        %s%s%s%s%s\n",
				parts.prefix,
				parts.before,
				st.match.Sprint(parts.matching),
				parts.after,
				parts.suffix)
		}

		fmt.Fprintf(out, "\n\n")
	}

	if len(findings) == 0 {
		fmt.Fprintf(out, "No findings.\n")
	}
	return nil
}
