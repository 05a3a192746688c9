package rule

import (
	"fmt"
	"io/fs"
	"os"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/praetorian-inc/glossa/pkg/types"
)

// Loader reads rules and rulesets from YAML.
type Loader struct {
	fs fs.FS // holds rules/*.yml and rulesets/*.yml
}

// NewLoader returns a loader over the built-in rules.
func NewLoader() *Loader {
	return &Loader{fs: builtinFS}
}

// NewLoaderWithFS returns a loader over fsys, which must use the same
// rules/ and rulesets/ layout as the built-in set.
func NewLoaderWithFS(fsys fs.FS) *Loader {
	return &Loader{fs: fsys}
}

// LoadRules parses every rule in a rules document.
func (l *Loader) LoadRules(data []byte) ([]*types.Rule, error) {
	var file yamlRulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("no rules found in YAML")
	}

	rules := make([]*types.Rule, 0, len(file.Rules))
	for _, yr := range file.Rules {
		rules = append(rules, convertYAMLRule(yr))
	}
	return rules, nil
}

// LoadRule parses a rules document holding exactly one rule.
func (l *Loader) LoadRule(data []byte) (*types.Rule, error) {
	rules, err := l.LoadRules(data)
	if err != nil {
		return nil, err
	}
	if len(rules) > 1 {
		return nil, fmt.Errorf("expected single rule, found %d", len(rules))
	}
	return rules[0], nil
}

// LoadRuleFile reads every rule in a YAML file.
func (l *Loader) LoadRuleFile(path string) ([]*types.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	rules, err := l.LoadRules(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// LoadRuleset parses a rulesets document holding exactly one ruleset.
func (l *Loader) LoadRuleset(data []byte) (*types.Ruleset, error) {
	var file yamlRulesetsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(file.Rulesets) == 0 {
		return nil, fmt.Errorf("no rulesets found in YAML")
	}
	if len(file.Rulesets) > 1 {
		return nil, fmt.Errorf("expected single ruleset, found %d", len(file.Rulesets))
	}
	return convertYAMLRuleset(file.Rulesets[0]), nil
}

// LoadRulesetFile reads a ruleset from a YAML file.
func (l *Loader) LoadRulesetFile(path string) (*types.Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return l.LoadRuleset(data)
}

// LoadBuiltinRules loads every rule under rules/.
func (l *Loader) LoadBuiltinRules() ([]*types.Rule, error) {
	var rules []*types.Rule
	err := l.walk("rules", func(name string, data []byte) error {
		var file yamlRulesFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("failed to parse %s: %w", name, err)
		}
		for _, yr := range file.Rules {
			rules = append(rules, convertYAMLRule(yr))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// LoadBuiltinRulesets loads every ruleset under rulesets/.
func (l *Loader) LoadBuiltinRulesets() ([]*types.Ruleset, error) {
	var rulesets []*types.Ruleset
	err := l.walk("rulesets", func(name string, data []byte) error {
		var file yamlRulesetsFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("failed to parse %s: %w", name, err)
		}
		for _, yrs := range file.Rulesets {
			rulesets = append(rulesets, convertYAMLRuleset(yrs))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rulesets, nil
}

// ResolveRuleset returns the rules a ruleset includes, in ruleset order.
func ResolveRuleset(rs *types.Ruleset, rules []*types.Rule) ([]*types.Rule, error) {
	byID := make(map[string]*types.Rule, len(rules))
	for _, r := range rules {
		byID[r.ID] = r
	}

	selected := make([]*types.Rule, 0, len(rs.RuleIDs))
	for _, id := range rs.RuleIDs {
		r, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("ruleset %s references unknown rule ID: %s", rs.ID, id)
		}
		selected = append(selected, r)
	}
	return selected, nil
}

func (l *Loader) walk(dir string, fn func(name string, data []byte) error) error {
	return fs.WalkDir(l.fs, dir, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(name) != ".yml" {
			return nil
		}
		data, err := fs.ReadFile(l.fs, name)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		return fn(name, data)
	})
}

// convertYAMLRule converts a yamlRule and computes its StructuralID.
func convertYAMLRule(yr yamlRule) *types.Rule {
	r := &types.Rule{
		ID:               yr.ID,
		Name:             yr.Name,
		Patterns:         yr.Patterns,
		Description:      yr.Description,
		Examples:         yr.Examples,
		NegativeExamples: yr.NegativeExamples,
		References:       yr.References,
		Categories:       yr.Categories,
		Keywords:         yr.Keywords,
	}
	r.StructuralID = r.ComputeStructuralID()
	return r
}

func convertYAMLRuleset(yrs yamlRuleset) *types.Ruleset {
	return &types.Ruleset{
		ID:          yrs.ID,
		Name:        yrs.Name,
		Description: yrs.Description,
		RuleIDs:     yrs.RuleIDs,
	}
}
