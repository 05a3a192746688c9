package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/praetorian-inc/glossa/pkg/logger"
	"github.com/praetorian-inc/glossa/pkg/rule"
	"github.com/praetorian-inc/glossa/pkg/types"
)

// ruleSource selects the rules a command runs with.
type ruleSource struct {
	path    string // rules file or directory; builtin rules when empty
	ruleset string // builtin ruleset ID
	include string // comma-separated ID regexes
	exclude string // comma-separated ID regexes
}

// load resolves the rule source into an ordered rule list.
func (src ruleSource) load() ([]*types.Rule, error) {
	loader := rule.NewLoader()

	var rules []*types.Rule
	var err error
	if src.path != "" {
		rules, err = loadRulePath(loader, src.path)
	} else {
		rules, err = loader.LoadBuiltinRules()
	}
	if err != nil {
		return nil, err
	}

	if src.ruleset != "" {
		rules, err = resolveBuiltinRuleset(loader, src.ruleset, rules)
		if err != nil {
			return nil, err
		}
	}

	if src.include != "" || src.exclude != "" {
		rules, err = rule.Filter(rules, rule.FilterConfig{
			Include: rule.ParsePatterns(src.include),
			Exclude: rule.ParsePatterns(src.exclude),
		})
		if err != nil {
			return nil, fmt.Errorf("filtering rules: %w", err)
		}
	}

	if len(rules) == 0 {
		return nil, fmt.Errorf("no rules selected")
	}
	logger.Log.Debug("rules loaded", "count", len(rules))
	return rules, nil
}

// loadRulePath loads a rules file, or every .yml/.yaml file in a
// directory in name order.
func loadRulePath(loader *rule.Loader, path string) ([]*types.Rule, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}
	if !info.IsDir() {
		return loader.LoadRuleFile(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}

	var rules []*types.Rule
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yml" && ext != ".yaml") {
			continue
		}
		r, err := loader.LoadRuleFile(filepath.Join(path, e.Name()))
		if err != nil {
			return nil, err
		}
		rules = append(rules, r...)
	}
	return rules, nil
}

func resolveBuiltinRuleset(loader *rule.Loader, id string, rules []*types.Rule) ([]*types.Rule, error) {
	rulesets, err := loader.LoadBuiltinRulesets()
	if err != nil {
		return nil, fmt.Errorf("loading rulesets: %w", err)
	}
	for _, rs := range rulesets {
		if rs.ID == id {
			return rule.ResolveRuleset(rs, rules)
		}
	}
	return nil, fmt.Errorf("unknown ruleset: %s", id)
}
