package explore

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/praetorian-inc/glossa/pkg/logger"
	"github.com/praetorian-inc/glossa/pkg/rule"
	"github.com/praetorian-inc/glossa/pkg/store"
	"github.com/praetorian-inc/glossa/pkg/types"
)

// noExtension is the file type facet value of paths without an extension.
const noExtension = "(none)"

// exploreData holds everything the TUI shows, loaded once at startup.
type exploreData struct {
	store    store.Store
	ruleMap  map[string]*types.Rule
	findings []*findingRow
}

// loadData opens a scan database and builds the finding view models.
func loadData(path string) (*exploreData, error) {
	if path == store.MemoryPath {
		return nil, fmt.Errorf("cannot explore an in-memory store")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("datastore not found: %s", path)
	}

	s, err := store.New(store.Config{Path: path})
	if err != nil {
		return nil, fmt.Errorf("opening datastore: %w", err)
	}

	data, err := buildData(s)
	if err != nil {
		s.Close()
		return nil, err
	}
	return data, nil
}

// buildData reads findings, matches and rules from s.
func buildData(s store.Store) (*exploreData, error) {
	ruleMap, err := loadRuleMap(s)
	if err != nil {
		return nil, err
	}

	findings, err := s.GetFindings()
	if err != nil {
		return nil, fmt.Errorf("retrieving findings: %w", err)
	}
	matches, err := s.GetAllMatches()
	if err != nil {
		return nil, fmt.Errorf("retrieving matches: %w", err)
	}

	byFinding := make(map[string][]*types.Match, len(findings))
	for _, m := range matches {
		byFinding[m.FindingID] = append(byFinding[m.FindingID], m)
	}

	provs := make(map[types.BlobID][]types.Provenance)
	rows := make([]*findingRow, 0, len(findings))
	for _, f := range findings {
		fMatches := byFinding[f.ID]
		for _, m := range fMatches {
			if _, ok := provs[m.BlobID]; ok {
				continue
			}
			p, err := s.GetProvenance(m.BlobID)
			if err != nil {
				logger.Log.Warn("provenance lookup failed", "blob", m.BlobID.Hex(), "error", err)
			}
			provs[m.BlobID] = p
		}
		rows = append(rows, buildFindingRow(f, fMatches, ruleMap, provs))
	}

	return &exploreData{store: s, ruleMap: ruleMap, findings: rows}, nil
}

// loadRuleMap indexes the rules recorded in the store. The store keeps
// no categories, so they come from the builtin rule of the same ID.
func loadRuleMap(s store.Store) (map[string]*types.Rule, error) {
	rules, err := s.GetRules()
	if err != nil {
		return nil, fmt.Errorf("retrieving rules: %w", err)
	}
	ruleMap := make(map[string]*types.Rule, len(rules))
	for _, r := range rules {
		ruleMap[r.ID] = r
	}

	builtin, err := rule.NewLoader().LoadBuiltinRules()
	if err != nil {
		return nil, fmt.Errorf("loading builtin rules: %w", err)
	}
	for _, b := range builtin {
		if r, ok := ruleMap[b.ID]; ok && len(r.Categories) == 0 {
			r.Categories = b.Categories
		}
	}
	return ruleMap, nil
}

// buildFindingRow creates the view model of a finding and its matches.
func buildFindingRow(f *types.Finding, matches []*types.Match, ruleMap map[string]*types.Rule, provs map[types.BlobID][]types.Provenance) *findingRow {
	row := &findingRow{
		FindingID:  f.ID,
		RuleID:     f.RuleID,
		RuleName:   f.RuleID,
		Text:       f.Text,
		MatchCount: len(matches),
	}
	if r, ok := ruleMap[f.RuleID]; ok {
		if r.Name != "" {
			row.RuleName = r.Name
		}
		row.Categories = r.Categories
	}

	fileTypes := make(map[string]bool)
	row.Matches = make([]*matchRow, 0, len(matches))
	for _, m := range matches {
		mr := &matchRow{
			StructuralID: m.StructuralID,
			BlobID:       m.BlobID,
			Location:     m.Location,
			Snippet:      m.Snippet,
			Provenance:   provs[m.BlobID],
		}
		for _, p := range mr.Provenance {
			fileTypes[fileType(p)] = true
		}
		row.Matches = append(row.Matches, mr)
	}
	for ft := range fileTypes {
		row.FileTypes = append(row.FileTypes, ft)
	}
	slices.Sort(row.FileTypes)

	return row
}

// fileType returns the extension of a file provenance, or the provenance
// kind for other origins.
func fileType(p types.Provenance) string {
	if _, ok := p.(types.FileProvenance); !ok {
		return p.Kind()
	}
	if ext := filepath.Ext(p.Path()); ext != "" {
		return ext
	}
	return noExtension
}

// close closes the underlying store.
func (d *exploreData) close() error {
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}
