package types

import (
	"crypto/sha1"
	"encoding/hex"
)

// Finding groups the matches of one rule that share the same text.
type Finding struct {
	ID      string   `json:"id"` // SHA-1(rule_structural_id + '\0' + text)
	RuleID  string   `json:"rule_id"`
	Text    string   `json:"text"`
	Matches []*Match `json:"matches,omitempty"`
}

// ComputeFindingID computes the content-based finding ID.
func ComputeFindingID(ruleStructuralID, text string) string {
	h := sha1.New()
	h.Write([]byte(ruleStructuralID))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
