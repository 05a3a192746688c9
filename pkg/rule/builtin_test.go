package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinRules_Valid(t *testing.T) {
	rules, err := NewLoader().LoadBuiltinRules()
	require.NoError(t, err)
	require.NotEmpty(t, rules)

	seen := make(map[string]bool)
	for _, r := range rules {
		t.Run(r.ID, func(t *testing.T) {
			assert.False(t, seen[r.ID], "duplicate rule ID")
			seen[r.ID] = true
			assert.NoError(t, ValidateRule(r))
			assert.NotEmpty(t, r.Examples, "builtin rules carry examples")
		})
	}
}

func TestBuiltinRulesets_Valid(t *testing.T) {
	loader := NewLoader()
	rules, err := loader.LoadBuiltinRules()
	require.NoError(t, err)
	rulesets, err := loader.LoadBuiltinRulesets()
	require.NoError(t, err)

	known := make(map[string]bool, len(rules))
	for _, r := range rules {
		known[r.ID] = true
	}

	ids := make(map[string]bool)
	for _, rs := range rulesets {
		ids[rs.ID] = true
		assert.NoError(t, ValidateRuleset(rs, known), rs.ID)
	}
	assert.True(t, ids["default"])
	assert.True(t, ids["code"])
	assert.True(t, ids["prose"])
}

func TestBuiltinRules_Examples(t *testing.T) {
	rules, err := NewLoader().LoadBuiltinRules()
	require.NoError(t, err)

	byID := make(map[string]int)
	for i, r := range rules {
		byID[r.ID] = i
	}

	tests := []struct {
		ruleID string
		text   string
		want   string
	}{
		{"glossa.identifier", "snake_case(x)", "snake_case"},
		{"glossa.number.decimal", "3.14159rad", "3.14159"},
		{"glossa.ipv4", "127.0.0.1:8080", "127.0.0.1"},
		{"glossa.url", "https://example.com/a b", "https://example.com/a"},
		{"glossa.annotation", "TODO(bob): fix", "TODO(bob)"},
		{"glossa.markdown.strong", "**a** and **b**", "**a**"},
	}

	for _, tt := range tests {
		t.Run(tt.ruleID, func(t *testing.T) {
			i, ok := byID[tt.ruleID]
			require.True(t, ok)
			trie, err := Compile(rules[i])
			require.NoError(t, err)
			assert.True(t, trie.Frozen())
			assert.Equal(t, tt.want, trie.LongestMatch(tt.text, 0))
		})
	}
}
