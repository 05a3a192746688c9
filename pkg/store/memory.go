package store

import (
	"cmp"
	"slices"
	"sync"

	"github.com/praetorian-inc/glossa/pkg/types"
)

// MemoryStore implements Store with in-process maps. Results are lost
// on Close.
type MemoryStore struct {
	mu         sync.RWMutex
	blobs      map[types.BlobID]int64
	rules      map[string]*types.Rule
	matches    []*types.Match
	matchIDs   map[string]struct{} // structural IDs already stored
	findings   map[string]*types.Finding
	provenance map[types.BlobID][]types.Provenance
}

// NewMemory creates a new in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		blobs:      make(map[types.BlobID]int64),
		rules:      make(map[string]*types.Rule),
		matchIDs:   make(map[string]struct{}),
		findings:   make(map[string]*types.Finding),
		provenance: make(map[types.BlobID][]types.Provenance),
	}
}

// AddBlob stores a blob record.
func (m *MemoryStore) AddBlob(id types.BlobID, size int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.blobs[id]; !exists {
		m.blobs[id] = size
	}
	return nil
}

// AddRule records a rule.
func (m *MemoryStore) AddRule(r *types.Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rules[r.ID] = r
	return nil
}

// GetRules retrieves the recorded rules.
func (m *MemoryStore) GetRules() ([]*types.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*types.Rule, 0, len(m.rules))
	for _, r := range m.rules {
		result = append(result, r)
	}
	slices.SortFunc(result, func(a, b *types.Rule) int { return cmp.Compare(a.ID, b.ID) })
	return result, nil
}

// AddMatch stores a match record.
func (m *MemoryStore) AddMatch(match *types.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.matchIDs[match.StructuralID]; exists {
		return nil
	}
	m.matchIDs[match.StructuralID] = struct{}{}
	m.matches = append(m.matches, match)
	return nil
}

// AddFinding stores a finding (deduplicated).
func (m *MemoryStore) AddFinding(f *types.Finding) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.findings[f.ID]; !exists {
		m.findings[f.ID] = f
	}
	return nil
}

// AddProvenance associates provenance with a blob.
func (m *MemoryStore) AddProvenance(blobID types.BlobID, prov types.Provenance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.provenance[blobID] {
		if p.Kind() == prov.Kind() && p.Path() == prov.Path() {
			return nil
		}
	}
	m.provenance[blobID] = append(m.provenance[blobID], prov)
	return nil
}

// GetMatches retrieves matches for a blob.
func (m *MemoryStore) GetMatches(blobID types.BlobID) ([]*types.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []*types.Match{}
	for _, match := range m.matches {
		if match.BlobID == blobID {
			result = append(result, match)
		}
	}
	slices.SortStableFunc(result, compareMatches)
	return result, nil
}

// GetAllMatches retrieves all matches.
func (m *MemoryStore) GetAllMatches() ([]*types.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := slices.Clone(m.matches)
	if result == nil {
		result = []*types.Match{}
	}
	slices.SortStableFunc(result, compareMatches)
	return result, nil
}

// GetFindings retrieves all findings.
func (m *MemoryStore) GetFindings() ([]*types.Finding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*types.Finding, 0, len(m.findings))
	for _, f := range m.findings {
		result = append(result, f)
	}
	slices.SortFunc(result, func(a, b *types.Finding) int {
		return cmp.Or(cmp.Compare(a.RuleID, b.RuleID), cmp.Compare(a.Text, b.Text))
	})
	return result, nil
}

// GetProvenance retrieves all provenance records for a blob.
func (m *MemoryStore) GetProvenance(blobID types.BlobID) ([]types.Provenance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := slices.Clone(m.provenance[blobID])
	if result == nil {
		result = []types.Provenance{}
	}
	return result, nil
}

// FindingExists checks if a finding with this ID exists.
func (m *MemoryStore) FindingExists(id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.findings[id]
	return exists, nil
}

// BlobExists checks if a blob has already been scanned.
func (m *MemoryStore) BlobExists(id types.BlobID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.blobs[id]
	return exists, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}

// compareMatches orders matches the way the SQLite backend does.
func compareMatches(a, b *types.Match) int {
	return cmp.Or(
		cmp.Compare(a.BlobID.Hex(), b.BlobID.Hex()),
		cmp.Compare(a.Location.Offset.Start, b.Location.Offset.Start),
		cmp.Compare(a.RuleID, b.RuleID),
	)
}
