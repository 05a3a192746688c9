// Package glossa tokenizes text with longest-match pattern tries.
//
// A rule names a token kind and lists patterns in glossa notation:
// literal runes, classes such as 「a〜z_」, repetition such as 〸「0〜9」 and
// labelled groups 〔name〡pattern〕. The scanner walks the text left to
// right and at every position takes the longest token any rule
// recognises.
//
// # Basic Usage
//
// Create a scanner with the builtin rules and scan content:
//
//	scanner, err := glossa.NewScanner()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer scanner.Close()
//
//	matches, err := scanner.ScanString("retry 3 times, then use 0x1F")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, match := range matches {
//	    fmt.Printf("%s %q at %s\n", match.RuleID, match.Text, match.Location.Source.Start)
//	}
//
// # Ad Hoc Patterns
//
//	scanner, err := glossa.NewScanner(glossa.WithPatterns("ticket", "JIRA-〸「0〜9」"))
//
// # Markdown
//
// Tokenize splits markdown-style lines into text tags flagged bold,
// italic or code:
//
//	for _, t := range glossa.Tokenize([]string{"**hi** `x`"}) {
//	    fmt.Println(t)
//	}
package glossa

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/praetorian-inc/glossa/pkg/markdown"
	"github.com/praetorian-inc/glossa/pkg/matcher"
	"github.com/praetorian-inc/glossa/pkg/ptrie"
	"github.com/praetorian-inc/glossa/pkg/rule"
	"github.com/praetorian-inc/glossa/pkg/tag"
	"github.com/praetorian-inc/glossa/pkg/types"
)

// Re-export commonly used types so callers can import just this package.
type (
	// Match is one recognised token.
	Match = types.Match

	// Rule names a token kind and its patterns.
	Rule = types.Rule

	// Location describes where a match was found within content.
	Location = types.Location

	// Snippet contains the matched text with surrounding context.
	Snippet = types.Snippet

	// Tag is a markdown token produced by Tokenize.
	Tag = tag.Tag

	// DedupeMode selects which matches count as duplicates.
	DedupeMode = matcher.DedupeMode
)

// Re-export dedupe modes.
const (
	DedupeByLocation = matcher.DedupeByLocation
	DedupeByContent  = matcher.DedupeByContent
)

// ErrClosed is returned by scans on a closed Scanner.
var ErrClosed = errors.New("glossa: scanner closed")

// Scanner tokenizes content with a fixed rule set.
type Scanner struct {
	matcher matcher.Matcher
	config  *scannerConfig
	mu      sync.RWMutex
}

// scannerConfig holds scanner configuration.
type scannerConfig struct {
	rules        []*types.Rule
	extra        []*types.Rule
	contextLines int
	maxMatches   int
	dedupe       matcher.DedupeMode
}

// Option configures a Scanner.
type Option func(*scannerConfig)

// WithRules uses custom rules instead of the builtin rules.
func WithRules(rules []*Rule) Option {
	return func(c *scannerConfig) {
		c.rules = rules
	}
}

// WithPatterns adds an ad hoc rule with the given ID. It is placed ahead
// of the other rules, so it wins ties. Without WithRules the builtin rules
// are not loaded once an ad hoc rule is present.
func WithPatterns(id string, patterns ...string) Option {
	return func(c *scannerConfig) {
		r := &types.Rule{ID: id, Name: id, Patterns: patterns}
		r.StructuralID = r.ComputeStructuralID()
		c.extra = append(c.extra, r)
	}
}

// WithContextLines sets the number of context lines to include around
// matches. Default is 0.
func WithContextLines(lines int) Option {
	return func(c *scannerConfig) {
		c.contextLines = lines
	}
}

// WithMaxMatches limits the matches returned per scan (0 = unlimited).
func WithMaxMatches(n int) Option {
	return func(c *scannerConfig) {
		c.maxMatches = n
	}
}

// WithDedupe sets the deduplication mode. Default is DedupeByLocation.
func WithDedupe(mode DedupeMode) Option {
	return func(c *scannerConfig) {
		c.dedupe = mode
	}
}

// NewScanner creates a new Scanner with the given options.
//
// By default the scanner uses the builtin rules, keeps no context lines
// and drops only repeated matches of one rule at one span.
func NewScanner(opts ...Option) (*Scanner, error) {
	config := &scannerConfig{}
	for _, opt := range opts {
		opt(config)
	}

	if config.rules == nil && len(config.extra) == 0 {
		rules, err := LoadBuiltinRules()
		if err != nil {
			return nil, fmt.Errorf("loading builtin rules: %w", err)
		}
		config.rules = rules
	}
	config.rules = append(append([]*types.Rule{}, config.extra...), config.rules...)

	m, err := matcher.New(matcher.Config{
		Rules:             config.rules,
		ContextLines:      config.contextLines,
		MaxMatchesPerBlob: config.maxMatches,
		Dedupe:            config.dedupe,
	})
	if err != nil {
		return nil, fmt.Errorf("creating matcher: %w", err)
	}

	return &Scanner{matcher: m, config: config}, nil
}

// ScanString tokenizes a string and returns all matches.
func (s *Scanner) ScanString(content string) ([]*Match, error) {
	return s.ScanBytes([]byte(content))
}

// ScanBytes tokenizes raw bytes and returns all matches.
func (s *Scanner) ScanBytes(content []byte) ([]*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.matcher == nil {
		return nil, ErrClosed
	}
	return s.matcher.Match(content)
}

// ScanFile reads and tokenizes a file.
func (s *Scanner) ScanFile(path string) ([]*Match, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return s.ScanBytes(content)
}

// Close releases scanner resources. Scans after Close return ErrClosed.
func (s *Scanner) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.matcher == nil {
		return nil
	}
	err := s.matcher.Close()
	s.matcher = nil
	return err
}

// RuleCount returns the number of rules loaded.
func (s *Scanner) RuleCount() int {
	return len(s.config.rules)
}

// Rules returns a copy of the loaded rules in priority order.
func (s *Scanner) Rules() []*Rule {
	rules := make([]*Rule, len(s.config.rules))
	copy(rules, s.config.rules)
	return rules
}

// LoadRulesFromFile loads every rule in a YAML rules file.
func LoadRulesFromFile(path string) ([]*Rule, error) {
	return rule.NewLoader().LoadRuleFile(path)
}

// LoadBuiltinRules returns all builtin rules.
func LoadBuiltinRules() ([]*Rule, error) {
	return rule.NewLoader().LoadBuiltinRules()
}

// Compile builds a frozen pattern trie from patterns, for callers that
// need a single longest-match query rather than a full scan.
func Compile(patterns ...string) (*ptrie.Trie, error) {
	return ptrie.Compile(patterns...)
}

// Tokenize splits markdown-style lines into text tags; see package
// markdown.
func Tokenize(lines []string) []*Tag {
	return markdown.Parse(lines)
}
