// Package scanner keeps a compiled rule set in memory and tokenizes text
// on demand, remembering the findings of everything it has seen. It backs
// long-lived processes such as the streaming server.
package scanner

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/praetorian-inc/glossa/pkg/logger"
	"github.com/praetorian-inc/glossa/pkg/matcher"
	"github.com/praetorian-inc/glossa/pkg/ptrie"
	"github.com/praetorian-inc/glossa/pkg/rule"
	"github.com/praetorian-inc/glossa/pkg/store"
	"github.com/praetorian-inc/glossa/pkg/types"
)

// DefaultContextLines is the snippet context of cores built by NewCore.
const DefaultContextLines = 2

var (
	cachedBuiltinRules []*types.Rule
	cachedRulesErr     error
	cacheOnce          sync.Once
)

// loadBuiltinRulesCached loads the builtin rules once per process.
func loadBuiltinRulesCached() ([]*types.Rule, error) {
	cacheOnce.Do(func() {
		cachedBuiltinRules, cachedRulesErr = rule.NewLoader().LoadBuiltinRules()
	})
	return cachedBuiltinRules, cachedRulesErr
}

// Config configures a Core.
type Config struct {
	Rules        []*types.Rule
	ContextLines int
}

// Core wraps a matcher and an in-memory store of the session's findings.
type Core struct {
	matcher matcher.Matcher
	store   store.Store
	rules   int
}

// NewCore creates a Core from rulesJSON, which is either "" or "builtin"
// for the builtin rules or a JSON array of rules.
func NewCore(rulesJSON string) (*Core, error) {
	var rules []*types.Rule
	if rulesJSON == "" || rulesJSON == "builtin" {
		var err error
		rules, err = loadBuiltinRulesCached()
		if err != nil {
			return nil, fmt.Errorf("loading builtin rules: %w", err)
		}
	} else {
		if err := json.Unmarshal([]byte(rulesJSON), &rules); err != nil {
			return nil, fmt.Errorf("parsing rules: %w", err)
		}
	}
	return NewCoreWithConfig(Config{Rules: rules, ContextLines: DefaultContextLines})
}

// NewCoreWithConfig creates a Core from already loaded rules.
func NewCoreWithConfig(cfg Config) (*Core, error) {
	if len(cfg.Rules) == 0 {
		return nil, fmt.Errorf("no rules")
	}
	for _, r := range cfg.Rules {
		if r.StructuralID == "" {
			r.StructuralID = r.ComputeStructuralID()
		}
	}

	m, err := matcher.New(matcher.Config{
		Rules:        cfg.Rules,
		ContextLines: cfg.ContextLines,
	})
	if err != nil {
		return nil, fmt.Errorf("creating matcher: %w", err)
	}

	s := store.NewMemory()
	for _, r := range cfg.Rules {
		if err := s.AddRule(r); err != nil {
			m.Close()
			return nil, fmt.Errorf("storing rule: %w", err)
		}
	}

	logger.Log.Debug("scanner core ready", "rules", len(cfg.Rules))
	return &Core{matcher: m, store: s, rules: len(cfg.Rules)}, nil
}

// RuleCount returns the number of loaded rules.
func (c *Core) RuleCount() int {
	return c.rules
}

// Tokenize matches content and records the matches under source.
func (c *Core) Tokenize(content, source string) (*TokenizeResult, error) {
	data := []byte(content)
	blobID := types.ComputeBlobID(data)

	matches, err := c.matcher.MatchWithBlobID(data, blobID)
	if err != nil {
		return nil, err
	}
	if err := c.record(blobID, len(data), source, matches); err != nil {
		return nil, err
	}

	if matches == nil {
		matches = []*types.Match{}
	}
	return &TokenizeResult{Source: source, Matches: matches}, nil
}

// TokenizeBatch tokenizes items in order. Items that fail are listed in
// Failed and skipped.
func (c *Core) TokenizeBatch(items []ContentItem) (*BatchResult, error) {
	result := &BatchResult{Results: []TokenizeResult{}}
	for _, item := range items {
		r, err := c.Tokenize(item.Content, item.Source)
		if err != nil {
			logger.Log.Warn("tokenize failed", "source", item.Source, "error", err)
			result.Failed = append(result.Failed, item.Source)
			continue
		}
		result.Results = append(result.Results, *r)
		result.Total += len(r.Matches)
	}
	return result, nil
}

// Match compiles patterns into one trie and returns the longest match
// at offset in text.
func (c *Core) Match(patterns []string, text string, offset int) (*MatchResult, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("no patterns")
	}
	if offset < 0 || offset > len(text) {
		return nil, fmt.Errorf("offset %d out of range [0, %d]", offset, len(text))
	}
	t, err := ptrie.Compile(patterns...)
	if err != nil {
		return nil, err
	}
	n := t.MatchLen(text, offset)
	return &MatchResult{Offset: offset, Length: n, Text: text[offset : offset+n]}, nil
}

// Findings returns the distinct findings of the session so far.
func (c *Core) Findings() ([]*types.Finding, error) {
	return c.store.GetFindings()
}

func (c *Core) record(blobID types.BlobID, size int, source string, matches []*types.Match) error {
	if err := c.store.AddBlob(blobID, int64(size)); err != nil {
		return fmt.Errorf("storing blob: %w", err)
	}
	if err := c.store.AddProvenance(blobID, types.TextProvenance{Name: source}); err != nil {
		return fmt.Errorf("storing provenance: %w", err)
	}
	for _, m := range matches {
		if err := c.store.AddMatch(m); err != nil {
			return fmt.Errorf("storing match: %w", err)
		}
		if err := c.store.AddFinding(&types.Finding{ID: m.FindingID, RuleID: m.RuleID, Text: m.Text}); err != nil {
			return fmt.Errorf("storing finding: %w", err)
		}
	}
	return nil
}

// Close releases the matcher and the store.
func (c *Core) Close() {
	if c.matcher != nil {
		c.matcher.Close()
	}
	if c.store != nil {
		c.store.Close()
	}
}
