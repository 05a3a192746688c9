package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/praetorian-inc/glossa/pkg/enum"
	"github.com/praetorian-inc/glossa/pkg/logger"
	"github.com/praetorian-inc/glossa/pkg/matcher"
	"github.com/praetorian-inc/glossa/pkg/sarif"
	"github.com/praetorian-inc/glossa/pkg/store"
	"github.com/praetorian-inc/glossa/pkg/types"
	"github.com/spf13/cobra"
)

// stdinTarget reads the text to scan from standard input.
const stdinTarget = "-"

var (
	scanRulesPath     string
	scanRuleset       string
	scanRulesInclude  string
	scanRulesExclude  string
	scanOutputPath    string
	scanOutputFormat  string
	scanMaxFileSize   int64
	scanIncludeHidden bool
	scanExtensions    []string
	scanContextLines  int
	scanIncremental   bool
	scanDedupe        string
	scanMaxMatches    int
	scanWorkers       int
)

var scanCmd = &cobra.Command{
	Use:   "scan <target>...",
	Short: "Tokenize files and store the matches",
	Long: `Scan files or directories (or "-" for standard input), tokenize them with
the selected rules and store every match in a SQLite database.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanRulesPath, "rules", "", "Path to custom rules file or directory")
	scanCmd.Flags().StringVar(&scanRuleset, "ruleset", "", "Builtin ruleset ID (see 'rules list --rulesets')")
	scanCmd.Flags().StringVar(&scanRulesInclude, "rules-include", "", "Include rules matching regex pattern (comma-separated)")
	scanCmd.Flags().StringVar(&scanRulesExclude, "rules-exclude", "", "Exclude rules matching regex pattern (comma-separated)")
	scanCmd.Flags().StringVar(&scanOutputPath, "output", "glossa.db", "Output database path (:memory: to keep nothing)")
	scanCmd.Flags().StringVar(&scanOutputFormat, "format", "human", "Output format: human, json, sarif")
	scanCmd.Flags().Int64Var(&scanMaxFileSize, "max-file-size", 10*1024*1024, "Maximum file size to scan (bytes)")
	scanCmd.Flags().BoolVar(&scanIncludeHidden, "include-hidden", false, "Include hidden files and directories")
	scanCmd.Flags().StringSliceVar(&scanExtensions, "ext", nil, "Only scan files with these extensions (e.g. md,txt)")
	scanCmd.Flags().IntVar(&scanContextLines, "context-lines", 1, "Lines of context before/after matches (0 to disable)")
	scanCmd.Flags().BoolVar(&scanIncremental, "incremental", false, "Skip already-scanned blobs")
	scanCmd.Flags().StringVar(&scanDedupe, "dedupe", "location", "Drop repeated matches per blob by: location, content")
	scanCmd.Flags().IntVar(&scanMaxMatches, "max-matches", 0, "Maximum matches per blob (0 = unlimited)")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0, "Parallel file readers (0 = number of CPUs)")
}

// scanStats counts what a scan did. Enumerator callbacks run in parallel;
// mu also guards store writes.
type scanStats struct {
	mu       sync.Mutex
	blobs    int
	skipped  int
	matches  int
	findings int
}

func runScan(cmd *cobra.Command, args []string) error {
	for _, target := range args {
		if target == stdinTarget {
			continue
		}
		if _, err := os.Stat(target); err != nil {
			return fmt.Errorf("target does not exist: %s", target)
		}
	}

	dedupe, ok := matcher.ParseDedupeMode(scanDedupe)
	if !ok {
		return fmt.Errorf("unknown dedupe mode: %s", scanDedupe)
	}

	rules, err := ruleSource{
		path:    scanRulesPath,
		ruleset: scanRuleset,
		include: scanRulesInclude,
		exclude: scanRulesExclude,
	}.load()
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}

	m, err := matcher.New(matcher.Config{
		Rules:             rules,
		ContextLines:      scanContextLines,
		MaxMatchesPerBlob: scanMaxMatches,
		Dedupe:            dedupe,
	})
	if err != nil {
		return fmt.Errorf("creating matcher: %w", err)
	}
	defer m.Close()

	s, err := store.New(store.Config{Path: scanOutputPath})
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	defer s.Close()

	for _, r := range rules {
		if err := s.AddRule(r); err != nil {
			return fmt.Errorf("storing rule: %w", err)
		}
	}

	stats := &scanStats{}
	enumerator := createEnumerator(args, cmd.InOrStdin())
	err = enumerator.Enumerate(context.Background(), func(content []byte, blobID types.BlobID, prov types.Provenance) error {
		return scanBlob(s, m, stats, content, blobID, prov)
	})
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}

	// Keep stdout pure for machine-readable formats.
	summary := cmd.OutOrStdout()
	if scanOutputFormat != "human" {
		summary = cmd.ErrOrStderr()
	}
	if scanIncremental {
		fmt.Fprintf(summary, "Scan complete: %d blobs, %d matches, %d findings (%d blobs skipped)\n",
			stats.blobs, stats.matches, stats.findings, stats.skipped)
	} else {
		fmt.Fprintf(summary, "Scan complete: %d blobs, %d matches, %d findings\n",
			stats.blobs, stats.matches, stats.findings)
	}
	if scanOutputPath != store.MemoryPath {
		fmt.Fprintf(summary, "Results stored in: %s\n", scanOutputPath)
	}

	switch scanOutputFormat {
	case "json":
		matches, err := s.GetAllMatches()
		if err != nil {
			return fmt.Errorf("retrieving matches: %w", err)
		}
		return outputMatches(cmd, matches)
	case "sarif":
		matches, err := s.GetAllMatches()
		if err != nil {
			return fmt.Errorf("retrieving matches: %w", err)
		}
		return outputSARIF(cmd, s, rules, matches)
	case "human":
		findings, err := s.GetFindings()
		if err != nil {
			return fmt.Errorf("retrieving findings: %w", err)
		}
		return outputFindings(cmd, findings)
	default:
		return fmt.Errorf("unknown output format: %s", scanOutputFormat)
	}
}

// scanBlob tokenizes one blob and records it with its matches and
// findings.
func scanBlob(s store.Store, m matcher.Matcher, stats *scanStats, content []byte, blobID types.BlobID, prov types.Provenance) error {
	if scanIncremental {
		exists, err := s.BlobExists(blobID)
		if err != nil {
			return fmt.Errorf("checking blob: %w", err)
		}
		if exists {
			// Same content under another name still gets its provenance.
			if err := s.AddProvenance(blobID, prov); err != nil {
				return fmt.Errorf("storing provenance: %w", err)
			}
			stats.mu.Lock()
			stats.skipped++
			stats.mu.Unlock()
			return nil
		}
	}

	matches, err := m.MatchWithBlobID(content, blobID)
	if err != nil {
		return fmt.Errorf("matching %s: %w", prov.Path(), err)
	}
	logger.Log.Debug("blob scanned", "path", prov.Path(), "matches", len(matches))

	// Writes are serialised so the finding count stays exact.
	stats.mu.Lock()
	defer stats.mu.Unlock()

	if err := s.AddBlob(blobID, int64(len(content))); err != nil {
		return fmt.Errorf("storing blob: %w", err)
	}
	if err := s.AddProvenance(blobID, prov); err != nil {
		return fmt.Errorf("storing provenance: %w", err)
	}

	for _, match := range matches {
		if err := s.AddMatch(match); err != nil {
			return fmt.Errorf("storing match: %w", err)
		}

		exists, err := s.FindingExists(match.FindingID)
		if err != nil {
			return fmt.Errorf("checking finding: %w", err)
		}
		if exists {
			continue
		}
		finding := &types.Finding{ID: match.FindingID, RuleID: match.RuleID, Text: match.Text}
		if err := s.AddFinding(finding); err != nil {
			return fmt.Errorf("storing finding: %w", err)
		}
		stats.findings++
	}

	stats.blobs++
	stats.matches += len(matches)
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func createEnumerator(targets []string, stdin io.Reader) enum.Enumerator {
	enumerators := make([]enum.Enumerator, 0, len(targets))
	for _, target := range targets {
		if target == stdinTarget {
			enumerators = append(enumerators, enum.NewReaderEnumerator(stdin, "stdin"))
			continue
		}
		enumerators = append(enumerators, enum.NewFilesystemEnumerator(enum.Config{
			Root:          target,
			IncludeHidden: scanIncludeHidden,
			MaxFileSize:   scanMaxFileSize,
			Extensions:    scanExtensions,
			Workers:       scanWorkers,
		}))
	}
	if len(enumerators) == 1 {
		return enumerators[0]
	}
	return enum.NewCombinedEnumerator(enumerators...)
}

func outputMatches(cmd *cobra.Command, matches []*types.Match) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(matches)
}

func outputFindings(cmd *cobra.Command, findings []*types.Finding) error {
	out := cmd.OutOrStdout()
	if len(findings) == 0 {
		fmt.Fprintf(out, "\nNo findings.\n")
		return nil
	}

	fmt.Fprintf(out, "\nFindings:\n")
	for i, f := range findings {
		fmt.Fprintf(out, "%d. %s %q\n", i+1, f.RuleID, f.Text)
	}
	return nil
}

// outputSARIF writes matches as a SARIF 2.1.0 log.
func outputSARIF(cmd *cobra.Command, s store.Store, rules []*types.Rule, matches []*types.Match) error {
	report := sarif.NewReport(version)
	for _, r := range rules {
		report.AddRule(r)
	}

	paths := newProvenanceCache(s)
	for _, match := range matches {
		report.AddResult(match, paths.path(match.BlobID))
	}

	jsonBytes, err := report.ToJSON()
	if err != nil {
		return fmt.Errorf("serializing SARIF: %w", err)
	}
	if _, err := cmd.OutOrStdout().Write(append(jsonBytes, '\n')); err != nil {
		return fmt.Errorf("writing SARIF output: %w", err)
	}
	return nil
}

// provenanceCache resolves blob IDs to a display path, querying the store
// once per blob.
type provenanceCache struct {
	s     store.Store
	paths map[types.BlobID]string
}

func newProvenanceCache(s store.Store) *provenanceCache {
	return &provenanceCache{s: s, paths: make(map[types.BlobID]string)}
}

// path returns the first recorded path of a blob, or its hex ID.
func (c *provenanceCache) path(id types.BlobID) string {
	if p, ok := c.paths[id]; ok {
		return p
	}
	p := id.Hex()
	provs, err := c.s.GetProvenance(id)
	if err != nil {
		logger.Log.Warn("provenance lookup failed", "blob", p, "error", err)
	} else if len(provs) > 0 {
		p = provs[0].Path()
	}
	c.paths[id] = p
	return p
}
