package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/praetorian-inc/glossa/pkg/matcher"
	"github.com/praetorian-inc/glossa/pkg/ptrie"
	"github.com/praetorian-inc/glossa/pkg/types"
	"github.com/spf13/cobra"
)

var (
	matchPatterns  []string
	matchRuleIDs   []string
	matchRulesPath string
	matchOffset    int
	matchAll       bool
	matchFormat    string
)

var matchCmd = &cobra.Command{
	Use:   "match [text...]",
	Short: "Match ad hoc patterns against text",
	Long: `Compile the given patterns into one trie and report the longest match
starting at --offset (a byte offset). With --all the whole text is
tokenized instead. Text is read from standard input when no argument is
given; several arguments are joined with spaces.`,
	Example: `  glossa match -p '〸「0〜9」' -p '〸「0〜9」.〸「0〜9」' '3.14 apples'
  glossa match --rule glossa.number.hex --offset 4 'use 0x1F'
  echo 'v1.2.3 and v2.0.0' | glossa match --rule glossa.number.version --all`,
	RunE: runMatch,
}

func init() {
	matchCmd.Flags().StringArrayVarP(&matchPatterns, "pattern", "p", nil, "Pattern in glossa notation (repeatable)")
	matchCmd.Flags().StringSliceVar(&matchRuleIDs, "rule", nil, "Use the patterns of these rule IDs")
	matchCmd.Flags().StringVar(&matchRulesPath, "rules", "", "Rules file or directory for --rule (builtin when empty)")
	matchCmd.Flags().IntVar(&matchOffset, "offset", 0, "Byte offset to match at")
	matchCmd.Flags().BoolVar(&matchAll, "all", false, "Tokenize the whole text")
	matchCmd.Flags().StringVar(&matchFormat, "format", "text", "Output format: text, json")
}

// matchResult is one token reported by the match command.
type matchResult struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

func runMatch(cmd *cobra.Command, args []string) error {
	patterns, err := matchPatternList()
	if err != nil {
		return err
	}

	var text string
	if len(args) > 0 {
		text = strings.Join(args, " ")
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		text = strings.TrimSuffix(string(data), "\n")
	}

	var results []matchResult
	if matchAll {
		results, err = matchTokens(patterns, text)
	} else {
		results, err = matchAt(patterns, text, matchOffset)
	}
	if err != nil {
		return err
	}

	switch matchFormat {
	case "json":
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		encoder.SetEscapeHTML(false)
		if results == nil {
			results = []matchResult{}
		}
		return encoder.Encode(results)
	case "text":
		for _, r := range results {
			fmt.Fprintf(cmd.OutOrStdout(), "%d-%d\t%s\n", r.Start, r.End, r.Text)
		}
		if len(results) == 0 {
			return fmt.Errorf("no match")
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", matchFormat)
	}
}

// matchPatternList merges --pattern values with the patterns of --rule
// rules, in flag order.
func matchPatternList() ([]string, error) {
	patterns := append([]string{}, matchPatterns...)
	if len(matchRuleIDs) > 0 {
		rules, err := ruleSource{path: matchRulesPath}.load()
		if err != nil {
			return nil, err
		}
		byID := make(map[string]*types.Rule, len(rules))
		for _, r := range rules {
			byID[r.ID] = r
		}
		for _, id := range matchRuleIDs {
			r, ok := byID[id]
			if !ok {
				return nil, fmt.Errorf("unknown rule: %s", id)
			}
			patterns = append(patterns, r.Patterns...)
		}
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("at least one --pattern or --rule is required")
	}
	return patterns, nil
}

// matchAt reports the longest match starting at offset, if any.
func matchAt(patterns []string, text string, offset int) ([]matchResult, error) {
	trie, err := ptrie.Compile(patterns...)
	if err != nil {
		return nil, err
	}
	n := trie.MatchLen(text, offset)
	if n == 0 {
		return nil, nil
	}
	return []matchResult{{Start: offset, End: offset + n, Text: text[offset : offset+n]}}, nil
}

// matchTokens tokenizes text leftmost-longest with the patterns as one rule.
func matchTokens(patterns []string, text string) ([]matchResult, error) {
	r := &types.Rule{ID: "match", Name: "match", Patterns: patterns}
	r.StructuralID = r.ComputeStructuralID()

	m, err := matcher.New(matcher.Config{Rules: []*types.Rule{r}})
	if err != nil {
		return nil, err
	}
	defer m.Close()

	matches, err := m.Match([]byte(text))
	if err != nil {
		return nil, err
	}
	results := make([]matchResult, len(matches))
	for i, mt := range matches {
		results[i] = matchResult{
			Start: int(mt.Location.Offset.Start),
			End:   int(mt.Location.Offset.End),
			Text:  mt.Text,
		}
	}
	return results, nil
}
