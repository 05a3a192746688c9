package store

import (
	"path/filepath"
	"testing"

	"github.com/praetorian-inc/glossa/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seed writes one blob of content, with a single match on it, to a new
// database at path.
func seed(t *testing.T, path, content, ruleID string) {
	t.Helper()

	s, err := NewSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	id := types.ComputeBlobID([]byte(content))
	rule := &types.Rule{ID: ruleID, Name: ruleID, Patterns: []string{"〸「0〜9」"}}
	rule.StructuralID = rule.ComputeStructuralID()
	m := testMatch(id, ruleID, content, 0)

	require.NoError(t, s.AddBlob(id, int64(len(content))))
	require.NoError(t, s.AddRule(rule))
	require.NoError(t, s.AddMatch(m))
	require.NoError(t, s.AddFinding(&types.Finding{ID: m.FindingID, RuleID: ruleID, Text: content}))
	require.NoError(t, s.AddProvenance(id, types.FileProvenance{FilePath: path + ".txt"}))
}

func TestMerge_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  MergeConfig
		want string
	}{
		{name: "no sources", cfg: MergeConfig{DestPath: "dest.db"}, want: "no source databases"},
		{name: "no destination", cfg: MergeConfig{SourcePaths: []string{"a.db"}}, want: "path is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Merge(tt.cfg)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestMerge_MissingSource(t *testing.T) {
	dir := t.TempDir()
	_, err := Merge(MergeConfig{
		SourcePaths: []string{filepath.Join(dir, "missing.db")},
		DestPath:    filepath.Join(dir, "dest.db"),
	})
	assert.ErrorContains(t, err, "missing.db")
}

func TestMerge_MultipleSources(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.db")
	b := filepath.Join(dir, "b.db")
	seed(t, a, "42", "glossa.integer")
	seed(t, b, "7", "glossa.integer")

	dest := filepath.Join(dir, "dest.db")
	stats, err := Merge(MergeConfig{SourcePaths: []string{a, b}, DestPath: dest})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.SourcesProcessed)
	assert.Equal(t, 2, stats.BlobsMerged)
	assert.Equal(t, 1, stats.RulesMerged, "same rule ID in both sources")
	assert.Equal(t, 2, stats.MatchesMerged)
	assert.Equal(t, 2, stats.FindingsMerged)
	assert.Equal(t, 2, stats.ProvenanceMerged)

	s, err := NewSQLite(dest)
	require.NoError(t, err)
	defer s.Close()

	matches, err := s.GetAllMatches()
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestMerge_Deduplication(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.db")
	seed(t, a, "42", "glossa.integer")

	dest := filepath.Join(dir, "dest.db")
	_, err := Merge(MergeConfig{SourcePaths: []string{a}, DestPath: dest})
	require.NoError(t, err)

	stats, err := Merge(MergeConfig{SourcePaths: []string{a}, DestPath: dest})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SourcesProcessed)
	assert.Zero(t, stats.BlobsMerged)
	assert.Zero(t, stats.MatchesMerged)
	assert.Zero(t, stats.FindingsMerged)
	assert.Zero(t, stats.ProvenanceMerged)
}
