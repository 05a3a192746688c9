// Package prefilter narrows a rule set to the rules that can possibly
// match a piece of content, using an Aho-Corasick scan for keywords.
package prefilter

import (
	"github.com/cloudflare/ahocorasick"

	"github.com/praetorian-inc/glossa/pkg/ptrie"
	"github.com/praetorian-inc/glossa/pkg/types"
)

// Prefilter maps keywords to the rules that need them.
type Prefilter struct {
	rules        []*types.Rule
	matcher      *ahocorasick.Matcher
	keywords     []string         // keyword at each matcher index
	keywordRules map[string][]int // keyword -> indexes into rules
	always       []int            // rules without keywords
}

// Keywords returns the keywords that must occur in content for r to
// match. Explicit keywords win; otherwise every pattern contributes its
// literal prefix. A nil result means the rule must always be checked.
func Keywords(r *types.Rule) []string {
	if len(r.Keywords) > 0 {
		return r.Keywords
	}
	if len(r.Patterns) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(r.Patterns))
	keywords := make([]string, 0, len(r.Patterns))
	for _, p := range r.Patterns {
		prefix := ptrie.LiteralPrefix(p)
		if prefix == "" {
			return nil
		}
		if !seen[prefix] {
			seen[prefix] = true
			keywords = append(keywords, prefix)
		}
	}
	return keywords
}

// New builds a prefilter over rules.
func New(rules []*types.Rule) *Prefilter {
	pf := &Prefilter{
		rules:        rules,
		keywordRules: make(map[string][]int),
	}

	for i, r := range rules {
		keywords := Keywords(r)
		if len(keywords) == 0 {
			pf.always = append(pf.always, i)
			continue
		}
		for _, kw := range keywords {
			if _, ok := pf.keywordRules[kw]; !ok {
				pf.keywords = append(pf.keywords, kw)
			}
			pf.keywordRules[kw] = append(pf.keywordRules[kw], i)
		}
	}

	if len(pf.keywords) > 0 {
		pf.matcher = ahocorasick.NewStringMatcher(pf.keywords)
	}
	return pf
}

// Filter returns the rules that might match content, in their original
// order.
func (pf *Prefilter) Filter(content []byte) []*types.Rule {
	selected := make([]bool, len(pf.rules))
	for _, i := range pf.always {
		selected[i] = true
	}
	if pf.matcher != nil {
		for _, hit := range pf.matcher.Match(content) {
			for _, i := range pf.keywordRules[pf.keywords[hit]] {
				selected[i] = true
			}
		}
	}

	result := make([]*types.Rule, 0, len(pf.rules))
	for i, ok := range selected {
		if ok {
			result = append(result, pf.rules[i])
		}
	}
	return result
}
