package scanner

import "github.com/praetorian-inc/glossa/pkg/types"

// ContentItem is one piece of text to tokenize.
type ContentItem struct {
	Source   string            `json:"source"`  // e.g. "README.md", "clipboard"
	Content  string            `json:"content"` // the text to tokenize
	Metadata map[string]string `json:"metadata,omitempty"`
}

// TokenizeResult holds the matches found in one item.
type TokenizeResult struct {
	Source  string         `json:"source"`
	Matches []*types.Match `json:"matches"`
}

// BatchResult holds the results of several items.
type BatchResult struct {
	Results []TokenizeResult `json:"results"`
	Total   int              `json:"total"`
	Failed  []string         `json:"failed,omitempty"` // sources that could not be tokenized
}

// MatchResult is the longest match of ad hoc patterns at one offset.
// Length is 0 when nothing matched.
type MatchResult struct {
	Offset int    `json:"offset"`
	Length int    `json:"length"`
	Text   string `json:"text"`
}
