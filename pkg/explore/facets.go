package explore

import (
	"cmp"
	"slices"

	"github.com/praetorian-inc/glossa/pkg/types"
)

// facetID identifies a facet category.
type facetID int

const (
	facetRuleName facetID = iota
	facetCategory
	facetFileType
)

type facetDef struct {
	ID    facetID
	Label string
}

var facetDefs = []facetDef{
	{facetRuleName, "Rule Name"},
	{facetCategory, "Category"},
	{facetFileType, "File Type"},
}

// facetValue is a single selectable value within a facet.
type facetValue struct {
	FacetID  facetID
	Value    string
	Count    int
	Selected bool
}

// facetState holds the complete filter state.
type facetState struct {
	Values map[facetID][]*facetValue
}

func newFacetState() *facetState {
	return &facetState{
		Values: make(map[facetID][]*facetValue),
	}
}

// valuesOf returns the values a finding contributes to a facet.
func valuesOf(id facetID, f *findingRow) []string {
	switch id {
	case facetRuleName:
		return []string{f.RuleName}
	case facetCategory:
		return f.Categories
	case facetFileType:
		return f.FileTypes
	}
	return nil
}

// buildFacets collects facet values and their counts from findings.
func buildFacets(findings []*findingRow) *facetState {
	fs := newFacetState()
	for _, def := range facetDefs {
		counts := make(map[string]int)
		for _, f := range findings {
			for _, v := range valuesOf(def.ID, f) {
				counts[v]++
			}
		}
		fs.Values[def.ID] = mapToFacetValues(def.ID, counts)
	}
	return fs
}

func mapToFacetValues(id facetID, counts map[string]int) []*facetValue {
	values := make([]*facetValue, 0, len(counts))
	for v, c := range counts {
		values = append(values, &facetValue{FacetID: id, Value: v, Count: c})
	}
	slices.SortFunc(values, func(a, b *facetValue) int {
		return cmp.Compare(a.Value, b.Value)
	})
	return values
}

// selectedValues returns the set of selected values for a facet.
func (fs *facetState) selectedValues(id facetID) map[string]bool {
	selected := make(map[string]bool)
	for _, v := range fs.Values[id] {
		if v.Selected {
			selected[v.Value] = true
		}
	}
	return selected
}

// hasActiveFilters returns true if any facet has selections.
func (fs *facetState) hasActiveFilters() bool {
	for _, values := range fs.Values {
		for _, v := range values {
			if v.Selected {
				return true
			}
		}
	}
	return false
}

// resetAll deselects all facet values.
func (fs *facetState) resetAll() {
	for _, values := range fs.Values {
		for _, v := range values {
			v.Selected = false
		}
	}
}

// matchesFinding reports whether a finding passes all active filters.
// Selections within a facet are ORed; facets are ANDed.
func (fs *facetState) matchesFinding(f *findingRow) bool {
	for _, def := range facetDefs {
		selected := fs.selectedValues(def.ID)
		if len(selected) == 0 {
			continue
		}
		if !slices.ContainsFunc(valuesOf(def.ID, f), func(v string) bool { return selected[v] }) {
			return false
		}
	}
	return true
}

// updateCounts recounts facet values over the findings that pass the
// current filters.
func (fs *facetState) updateCounts(findings []*findingRow) {
	for _, values := range fs.Values {
		for _, v := range values {
			v.Count = 0
		}
	}

	for _, f := range findings {
		if !fs.matchesFinding(f) {
			continue
		}
		for _, def := range facetDefs {
			own := valuesOf(def.ID, f)
			for _, v := range fs.Values[def.ID] {
				if slices.Contains(own, v.Value) {
					v.Count++
				}
			}
		}
	}
}

// findingRow is the denormalized view model of a finding.
type findingRow struct {
	FindingID  string
	RuleID     string
	RuleName   string
	Categories []string
	Text       string
	MatchCount int
	FileTypes  []string
	Matches    []*matchRow
}

// matchRow is the denormalized view model of a match.
type matchRow struct {
	StructuralID string
	BlobID       types.BlobID
	Location     types.Location
	Snippet      types.Snippet
	Provenance   []types.Provenance
}
