package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/praetorian-inc/glossa/pkg/rule"
	"github.com/praetorian-inc/glossa/pkg/types"
	"github.com/spf13/cobra"
)

var (
	rulesPath     string
	outputFormat  string
	listRulesets  bool
	checkRulesets bool
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage tokenizer rules",
	Long:  "Commands for listing and checking tokenizer rules",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available rules",
	Long:  "Display all available rules with their IDs, names and patterns",
	RunE:  runRulesList,
}

var rulesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate rules",
	Long: `Compile every pattern of every rule and check each rule's examples:
examples must be recognised in full, negative examples must not be.`,
	RunE: runRulesCheck,
}

func init() {
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesCheckCmd)

	rulesListCmd.Flags().StringVar(&rulesPath, "rules", "", "Path to custom rules file or directory")
	rulesListCmd.Flags().StringVar(&outputFormat, "format", "table", "Output format: table, json")
	rulesListCmd.Flags().BoolVar(&listRulesets, "rulesets", false, "List builtin rulesets instead of rules")

	rulesCheckCmd.Flags().StringVar(&rulesPath, "rules", "", "Path to custom rules file or directory")
	rulesCheckCmd.Flags().BoolVar(&checkRulesets, "rulesets", true, "Also check builtin rulesets (builtin rules only)")
}

func runRulesList(cmd *cobra.Command, args []string) error {
	if listRulesets {
		rulesets, err := rule.NewLoader().LoadBuiltinRulesets()
		if err != nil {
			return fmt.Errorf("loading builtin rulesets: %w", err)
		}
		return outputRulesets(cmd, rulesets)
	}

	rules, err := ruleSource{path: rulesPath}.load()
	if err != nil {
		return err
	}

	switch outputFormat {
	case "json":
		return outputRulesJSON(cmd, rules)
	case "table":
		return outputRulesTable(cmd, rules)
	default:
		return fmt.Errorf("unknown output format: %s", outputFormat)
	}
}

func runRulesCheck(cmd *cobra.Command, args []string) error {
	rules, err := ruleSource{path: rulesPath}.load()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	known := make(map[string]bool, len(rules))
	for _, r := range rules {
		err := rule.ValidateRule(r)
		if err == nil && known[r.ID] {
			err = fmt.Errorf("duplicate rule ID: %s", r.ID)
		}
		known[r.ID] = true

		if err != nil {
			failed++
			fmt.Fprintf(out, "FAIL  %s: %v\n", r.ID, err)
			continue
		}
		fmt.Fprintf(out, "ok    %s (%d patterns, %d examples)\n", r.ID, len(r.Patterns), len(r.Examples)+len(r.NegativeExamples))
	}

	if checkRulesets && rulesPath == "" {
		rulesets, err := rule.NewLoader().LoadBuiltinRulesets()
		if err != nil {
			return fmt.Errorf("loading builtin rulesets: %w", err)
		}
		for _, rs := range rulesets {
			if err := rule.ValidateRuleset(rs, known); err != nil {
				failed++
				fmt.Fprintf(out, "FAIL  ruleset %s: %v\n", rs.ID, err)
				continue
			}
			fmt.Fprintf(out, "ok    ruleset %s (%d rules)\n", rs.ID, len(rs.RuleIDs))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d checks failed", failed)
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func outputRulesJSON(cmd *cobra.Command, rules []*types.Rule) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(rules)
}

func outputRulesTable(cmd *cobra.Command, rules []*types.Rule) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "ID\tName\tCategories\tPatterns\n")
	fmt.Fprintf(w, "--\t----\t----------\t--------\n")

	for _, r := range rules {
		categories := ""
		if len(r.Categories) > 0 {
			categories = r.Categories[0]
			if len(r.Categories) > 1 {
				categories += fmt.Sprintf(" (+%d)", len(r.Categories)-1)
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.Name, categories, strings.Join(r.Patterns, "  "))
	}

	return nil
}

func outputRulesets(cmd *cobra.Command, rulesets []*types.Ruleset) error {
	if outputFormat == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(rulesets)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "ID\tName\tRules\n")
	fmt.Fprintf(w, "--\t----\t-----\n")
	for _, rs := range rulesets {
		fmt.Fprintf(w, "%s\t%s\t%d\n", rs.ID, rs.Name, len(rs.RuleIDs))
	}
	return nil
}
