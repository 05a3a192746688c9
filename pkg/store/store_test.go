package store

import (
	"path/filepath"
	"testing"

	"github.com/praetorian-inc/glossa/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

// backends returns a fresh instance of every Store implementation.
func backends(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := NewSQLite(filepath.Join(t.TempDir(), "glossa.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": sqlite,
	}
}

func testMatch(blobID types.BlobID, ruleID, text string, start int64) *types.Match {
	m := &types.Match{
		BlobID:   blobID,
		RuleID:   ruleID,
		RuleName: ruleID + " name",
		Location: types.Location{
			Offset: types.OffsetSpan{Start: start, End: start + int64(len(text))},
			Source: types.SourceSpan{
				Start: types.SourcePoint{Line: 1, Column: int(start) + 1},
				End:   types.SourcePoint{Line: 1, Column: int(start) + 1 + len(text)},
			},
		},
		Text:    text,
		Snippet: types.Snippet{Before: "x = ", Matching: text, After: ";"},
	}
	m.StructuralID = m.ComputeStructuralID(ruleID + "-sid")
	m.FindingID = types.ComputeFindingID(ruleID+"-sid", text)
	return m
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    any
		wantErr error
	}{
		{name: "empty path", path: "", wantErr: ErrNoPath},
		{name: "memory", path: MemoryPath, want: &MemoryStore{}},
		{name: "file", path: filepath.Join(t.TempDir(), "scan.db"), want: &SQLiteStore{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(Config{Path: tt.path})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer s.Close()
			assert.IsType(t, tt.want, s)
		})
	}
}

func TestStore_Blobs(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			id := types.ComputeBlobID([]byte("0x1F + 42"))

			exists, err := s.BlobExists(id)
			require.NoError(t, err)
			assert.False(t, exists)

			require.NoError(t, s.AddBlob(id, 9))
			require.NoError(t, s.AddBlob(id, 9), "re-adding a blob is a no-op")

			exists, err = s.BlobExists(id)
			require.NoError(t, err)
			assert.True(t, exists)
		})
	}
}

func TestStore_Rules(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			hex := &types.Rule{ID: "glossa.hex", Name: "Hex", Patterns: []string{"0x〸「0〜9a〜f」"}}
			hex.StructuralID = hex.ComputeStructuralID()
			num := &types.Rule{ID: "glossa.integer", Name: "Integer", Patterns: []string{"〸「0〜9」"}}
			num.StructuralID = num.ComputeStructuralID()

			require.NoError(t, s.AddRule(num))
			require.NoError(t, s.AddRule(hex))
			require.NoError(t, s.AddRule(hex))

			rules, err := s.GetRules()
			require.NoError(t, err)
			require.Len(t, rules, 2)
			assert.Equal(t, "glossa.hex", rules[0].ID)
			assert.Equal(t, hex.Patterns, rules[0].Patterns)
			assert.Equal(t, hex.StructuralID, rules[0].StructuralID)
			assert.Equal(t, "glossa.integer", rules[1].ID)
		})
	}
}

func TestStore_Matches(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			a := types.ComputeBlobID([]byte("a"))
			b := types.ComputeBlobID([]byte("b"))
			require.NoError(t, s.AddBlob(a, 1))
			require.NoError(t, s.AddBlob(b, 1))

			late := testMatch(a, "glossa.integer", "42", 10)
			early := testMatch(a, "glossa.hex", "0x1F", 0)
			other := testMatch(b, "glossa.integer", "7", 3)

			require.NoError(t, s.AddMatch(late))
			require.NoError(t, s.AddMatch(early))
			require.NoError(t, s.AddMatch(other))
			require.NoError(t, s.AddMatch(late), "duplicate structural ID is ignored")

			got, err := s.GetMatches(a)
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, early, got[0])
			assert.Equal(t, late, got[1])

			all, err := s.GetAllMatches()
			require.NoError(t, err)
			assert.Len(t, all, 3)

			none, err := s.GetMatches(types.ComputeBlobID([]byte("unknown")))
			require.NoError(t, err)
			assert.NotNil(t, none)
			assert.Empty(t, none)
		})
	}
}

func TestStore_Findings(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			f1 := &types.Finding{ID: types.ComputeFindingID("sid", "42"), RuleID: "glossa.integer", Text: "42"}
			f2 := &types.Finding{ID: types.ComputeFindingID("sid", "0x1F"), RuleID: "glossa.hex", Text: "0x1F"}

			exists, err := s.FindingExists(f1.ID)
			require.NoError(t, err)
			assert.False(t, exists)

			require.NoError(t, s.AddFinding(f1))
			require.NoError(t, s.AddFinding(f2))
			require.NoError(t, s.AddFinding(&types.Finding{ID: f1.ID, RuleID: "other", Text: "other"}))

			exists, err = s.FindingExists(f1.ID)
			require.NoError(t, err)
			assert.True(t, exists)

			findings, err := s.GetFindings()
			require.NoError(t, err)
			require.Len(t, findings, 2)
			assert.Equal(t, "glossa.hex", findings[0].RuleID)
			assert.Equal(t, "glossa.integer", findings[1].RuleID)
			assert.Equal(t, "42", findings[1].Text, "first finding with an ID wins")
		})
	}
}

func TestStore_Provenance(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			id := types.ComputeBlobID([]byte("shared content"))
			require.NoError(t, s.AddBlob(id, 14))

			require.NoError(t, s.AddProvenance(id, types.FileProvenance{FilePath: "a/notes.md"}))
			require.NoError(t, s.AddProvenance(id, types.FileProvenance{FilePath: "b/notes.md"}))
			require.NoError(t, s.AddProvenance(id, types.FileProvenance{FilePath: "a/notes.md"}))
			require.NoError(t, s.AddProvenance(id, types.TextProvenance{Name: "argv"}))

			provs, err := s.GetProvenance(id)
			require.NoError(t, err)
			assert.Equal(t, []types.Provenance{
				types.FileProvenance{FilePath: "a/notes.md"},
				types.FileProvenance{FilePath: "b/notes.md"},
				types.TextProvenance{Name: "argv"},
			}, provs)

			empty, err := s.GetProvenance(types.ComputeBlobID([]byte("nothing")))
			require.NoError(t, err)
			assert.Empty(t, empty)
		})
	}
}
