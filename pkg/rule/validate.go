package rule

import (
	"fmt"

	"github.com/praetorian-inc/glossa/pkg/ptrie"
	"github.com/praetorian-inc/glossa/pkg/types"
)

// Compile builds the frozen trie holding all of a rule's patterns.
func Compile(r *types.Rule) (*ptrie.Trie, error) {
	t, err := ptrie.Compile(r.Patterns...)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", r.ID, err)
	}
	t.Freeze()
	return t, nil
}

// ValidateRule checks required fields, compiles the patterns and runs the
// rule's examples against them. Every example must match in full from
// its first byte; no negative example may.
func ValidateRule(r *types.Rule) error {
	if r == nil {
		return fmt.Errorf("rule is nil")
	}

	if r.ID == "" {
		return fmt.Errorf("rule ID is required")
	}
	if r.Name == "" {
		return fmt.Errorf("rule name is required")
	}
	if len(r.Patterns) == 0 {
		return fmt.Errorf("rule %s: at least one pattern is required", r.ID)
	}

	t, err := Compile(r)
	if err != nil {
		return err
	}

	for _, ex := range r.Examples {
		if got := t.LongestMatch(ex, 0); got != ex {
			return fmt.Errorf("rule %s: example %q not matched in full (matched %q)", r.ID, ex, got)
		}
	}
	for _, ex := range r.NegativeExamples {
		if t.LongestMatch(ex, 0) == ex {
			return fmt.Errorf("rule %s: negative example %q matched", r.ID, ex)
		}
	}

	expectedID := r.ComputeStructuralID()
	if r.StructuralID != "" && r.StructuralID != expectedID {
		return fmt.Errorf("rule %s has inconsistent StructuralID: got %s, expected %s",
			r.ID, r.StructuralID, expectedID)
	}

	return nil
}

// ValidateRuleset checks required fields, duplicate entries and, when
// knownRuleIDs is non-nil, that every referenced rule exists.
func ValidateRuleset(rs *types.Ruleset, knownRuleIDs map[string]bool) error {
	if rs == nil {
		return fmt.Errorf("ruleset is nil")
	}

	if rs.ID == "" {
		return fmt.Errorf("ruleset ID is required")
	}
	if rs.Name == "" {
		return fmt.Errorf("ruleset name is required")
	}
	if len(rs.RuleIDs) == 0 {
		return fmt.Errorf("ruleset %s must reference at least one rule", rs.ID)
	}

	seen := make(map[string]bool, len(rs.RuleIDs))
	for _, id := range rs.RuleIDs {
		if knownRuleIDs != nil && !knownRuleIDs[id] {
			return fmt.Errorf("ruleset %s references unknown rule ID: %s", rs.ID, id)
		}
		if seen[id] {
			return fmt.Errorf("ruleset %s contains duplicate rule ID: %s", rs.ID, id)
		}
		seen[id] = true
	}

	return nil
}
