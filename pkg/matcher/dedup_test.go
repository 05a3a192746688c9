package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/praetorian-inc/glossa/pkg/types"
)

func TestDeduplicator_ByLocation(t *testing.T) {
	d := NewDeduplicator(DedupeByLocation)

	m1 := &types.Match{StructuralID: "loc1", FindingID: "same"}
	m2 := &types.Match{StructuralID: "loc2", FindingID: "same"}

	assert.False(t, d.IsDuplicate(m1))
	d.Add(m1)
	assert.True(t, d.IsDuplicate(m1))
	assert.False(t, d.IsDuplicate(m2))
}

func TestDeduplicator_ByContent(t *testing.T) {
	d := NewDeduplicator(DedupeByContent)

	m1 := &types.Match{StructuralID: "loc1", FindingID: "same"}
	m2 := &types.Match{StructuralID: "loc2", FindingID: "same"}
	m3 := &types.Match{StructuralID: "loc3", FindingID: "other"}

	d.Add(m1)
	assert.True(t, d.IsDuplicate(m2))
	assert.False(t, d.IsDuplicate(m3))
	assert.Equal(t, 1, d.Len())
}

func TestDeduplicator_Reset(t *testing.T) {
	d := NewDeduplicator(DedupeByLocation)
	m := &types.Match{StructuralID: "x"}

	d.Add(m)
	d.Reset()
	assert.False(t, d.IsDuplicate(m))
	assert.Equal(t, 0, d.Len())
}

func TestParseDedupeMode(t *testing.T) {
	mode, ok := ParseDedupeMode("content")
	assert.True(t, ok)
	assert.Equal(t, DedupeByContent, mode)

	mode, ok = ParseDedupeMode("")
	assert.True(t, ok)
	assert.Equal(t, DedupeByLocation, mode)

	_, ok = ParseDedupeMode("fuzzy")
	assert.False(t, ok)
}
