package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praetorian-inc/glossa/pkg/types"
)

func ruleIDs(rules []*types.Rule) []string {
	ids := make([]string, len(rules))
	for i, r := range rules {
		ids[i] = r.ID
	}
	return ids
}

func TestParsePatterns(t *testing.T) {
	assert.Equal(t, []string{}, ParsePatterns(""))
	assert.Equal(t, []string{"a"}, ParsePatterns("a"))
	assert.Equal(t, []string{"a", "b.*"}, ParsePatterns(" a , ,b.* "))
}

func TestFilter(t *testing.T) {
	rules := []*types.Rule{
		{ID: "glossa.number.integer"},
		{ID: "glossa.number.hex"},
		{ID: "glossa.identifier"},
		{ID: "glossa.url"},
	}

	tests := []struct {
		name   string
		config FilterConfig
		want   []string
	}{
		{
			name:   "no filters",
			config: FilterConfig{},
			want:   []string{"glossa.number.integer", "glossa.number.hex", "glossa.identifier", "glossa.url"},
		},
		{
			name:   "include",
			config: FilterConfig{Include: []string{`^glossa\.number\.`}},
			want:   []string{"glossa.number.integer", "glossa.number.hex"},
		},
		{
			name:   "exclude",
			config: FilterConfig{Exclude: []string{"hex$", "url"}},
			want:   []string{"glossa.number.integer", "glossa.identifier"},
		},
		{
			name:   "include then exclude",
			config: FilterConfig{Include: []string{"number", "identifier"}, Exclude: []string{"integer"}},
			want:   []string{"glossa.number.hex", "glossa.identifier"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Filter(rules, tt.config)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ruleIDs(got))
		})
	}
}

func TestFilter_InvalidExpression(t *testing.T) {
	_, err := Filter([]*types.Rule{{ID: "a"}}, FilterConfig{Include: []string{"("}})
	assert.ErrorContains(t, err, "invalid regex pattern")
}

func TestFilter_Empty(t *testing.T) {
	got, err := Filter(nil, FilterConfig{Include: []string{"("}})
	require.NoError(t, err)
	assert.Empty(t, got)
}
