package matcher

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/praetorian-inc/glossa/pkg/logger"
	"github.com/praetorian-inc/glossa/pkg/prefilter"
	"github.com/praetorian-inc/glossa/pkg/ptrie"
	"github.com/praetorian-inc/glossa/pkg/rule"
	"github.com/praetorian-inc/glossa/pkg/types"
)

type compiledRule struct {
	rule         *types.Rule
	trie         *ptrie.Trie
	structuralID string
}

// span is a match before it is turned into a types.Match.
type span struct {
	rule       *compiledRule
	start, end int
}

// TrieMatcher implements Matcher on frozen pattern tries. It holds no
// per-scan state and is safe for concurrent use.
type TrieMatcher struct {
	cfg       Config
	rules     []*compiledRule
	byRule    map[*types.Rule]*compiledRule
	prefilter *prefilter.Prefilter
	multiline bool // some pattern contains a newline; chunking is unsafe
}

// NewTrie compiles every rule in cfg.
func NewTrie(cfg Config) (*TrieMatcher, error) {
	if len(cfg.Rules) == 0 {
		return nil, fmt.Errorf("no rules provided")
	}
	cfg = cfg.withDefaults()

	m := &TrieMatcher{
		cfg:       cfg,
		rules:     make([]*compiledRule, 0, len(cfg.Rules)),
		byRule:    make(map[*types.Rule]*compiledRule, len(cfg.Rules)),
		prefilter: prefilter.New(cfg.Rules),
	}

	for _, r := range cfg.Rules {
		t, err := rule.Compile(r)
		if err != nil {
			return nil, fmt.Errorf("failed to compile patterns: %w", err)
		}
		sid := r.StructuralID
		if sid == "" {
			sid = r.ComputeStructuralID()
		}
		c := &compiledRule{rule: r, trie: t, structuralID: sid}
		m.rules = append(m.rules, c)
		m.byRule[r] = c

		for _, p := range r.Patterns {
			if strings.ContainsRune(p, '\n') {
				m.multiline = true
			}
		}
	}

	logger.Log.Debug("compiled rules", "rules", len(m.rules), "multiline", m.multiline)
	return m, nil
}

// Match scans content against all loaded rules.
func (m *TrieMatcher) Match(content []byte) ([]*types.Match, error) {
	return m.MatchWithBlobID(content, types.ComputeBlobID(content))
}

// MatchWithBlobID scans content with a known BlobID.
func (m *TrieMatcher) MatchWithBlobID(content []byte, blobID types.BlobID) ([]*types.Match, error) {
	candidates := m.candidates(content)
	if len(candidates) == 0 {
		return []*types.Match{}, nil
	}

	var spans []span
	if len(content) >= m.cfg.ChunkSize && !m.multiline {
		spans = m.scanChunks(content, candidates)
	} else {
		spans = scan(string(content), 0, candidates)
	}

	lines := types.NewLineIndex(content)
	dedup := NewDeduplicator(m.cfg.Dedupe)
	matches := make([]*types.Match, 0, len(spans))
	for _, sp := range spans {
		match := m.buildMatch(blobID, sp, content, lines)
		if dedup.IsDuplicate(match) {
			continue
		}
		dedup.Add(match)
		matches = append(matches, match)

		if m.cfg.MaxMatchesPerBlob > 0 && len(matches) >= m.cfg.MaxMatchesPerBlob {
			logger.Log.Debug("match limit reached", "blob", blobID.Hex(), "limit", m.cfg.MaxMatchesPerBlob)
			break
		}
	}
	return matches, nil
}

// Close releases resources. Tries hold none beyond memory.
func (m *TrieMatcher) Close() error {
	return nil
}

// Rules returns the compiled rules in tie-break order.
func (m *TrieMatcher) Rules() []*types.Rule {
	rules := make([]*types.Rule, len(m.rules))
	for i, c := range m.rules {
		rules[i] = c.rule
	}
	return rules
}

// candidates returns the compiled rules that may match content.
func (m *TrieMatcher) candidates(content []byte) []*compiledRule {
	filtered := m.prefilter.Filter(content)
	out := make([]*compiledRule, 0, len(filtered))
	for _, r := range filtered {
		out = append(out, m.byRule[r])
	}
	logger.Log.Debug("prefilter", "candidates", len(out), "rules", len(m.rules))
	return out
}

// scanChunks scans line-aligned chunks in parallel. Without newline
// patterns no token can cross a line end, so the result equals a
// sequential scan.
func (m *TrieMatcher) scanChunks(content []byte, candidates []*compiledRule) []span {
	chunks := ChunkContent(content, m.cfg.ChunkSize)
	results := make([][]span, len(chunks))

	var g errgroup.Group
	g.SetLimit(m.cfg.Workers)
	for i, ch := range chunks {
		g.Go(func() error {
			results[i] = scan(string(ch.Content), ch.StartOffset, candidates)
			return nil
		})
	}
	_ = g.Wait()

	var spans []span
	for _, r := range results {
		spans = append(spans, r...)
	}
	return spans
}

// scan tokenizes text leftmost-longest. At each position the longest
// match over all candidates wins, ties going to the earlier rule; with no
// match the scan moves on by one character. Offsets are shifted by base.
func scan(text string, base int, candidates []*compiledRule) []span {
	var spans []span
	for pos := 0; pos < len(text); {
		var best *compiledRule
		bestLen := 0
		for _, c := range candidates {
			if n := c.trie.MatchLen(text, pos); n > bestLen {
				best, bestLen = c, n
			}
		}
		if best == nil {
			_, size := utf8.DecodeRuneInString(text[pos:])
			pos += size
			continue
		}
		spans = append(spans, span{rule: best, start: base + pos, end: base + pos + bestLen})
		pos += bestLen
	}
	return spans
}

func (m *TrieMatcher) buildMatch(blobID types.BlobID, sp span, content []byte, lines *types.LineIndex) *types.Match {
	text := string(content[sp.start:sp.end])
	before, after := ExtractContext(content, sp.start, sp.end, m.cfg.ContextLines)

	match := &types.Match{
		BlobID:   blobID,
		RuleID:   sp.rule.rule.ID,
		RuleName: sp.rule.rule.Name,
		Location: lines.Location(sp.start, sp.end),
		Text:     text,
		Snippet:  types.Snippet{Before: before, Matching: text, After: after},
	}
	match.StructuralID = match.ComputeStructuralID(sp.rule.structuralID)
	match.FindingID = types.ComputeFindingID(sp.rule.structuralID, text)
	return match
}
