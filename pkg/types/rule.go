package types

import (
	"crypto/sha1"
	"encoding/hex"
)

// Rule names a token kind and the patterns, in ptrie notation, that
// recognise it.
type Rule struct {
	ID               string   `json:"id"`   // e.g., "glossa.number"
	Name             string   `json:"name"` // human-readable name
	Patterns         []string `json:"patterns"`
	StructuralID     string   `json:"structural_id"` // SHA-1 of patterns (computed)
	Description      string   `json:"description,omitempty"`
	Examples         []string `json:"examples,omitempty"`          // must match in full
	NegativeExamples []string `json:"negative_examples,omitempty"` // must not match in full
	References       []string `json:"references,omitempty"`
	Categories       []string `json:"categories,omitempty"`
	Keywords         []string `json:"keywords,omitempty"` // prefilter keywords; derived from patterns when empty
}

// ComputeStructuralID hashes the rule's patterns in order. Two rules
// with the same patterns recognise the same tokens and share an ID.
func (r *Rule) ComputeStructuralID() string {
	h := sha1.New()
	for i, p := range r.Patterns {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Ruleset groups rules by ID.
type Ruleset struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	RuleIDs     []string `json:"rule_ids"`
}
