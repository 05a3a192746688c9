package types

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
)

// Match is one token recognised by a rule.
type Match struct {
	BlobID       BlobID   `json:"blob_id"`
	StructuralID string   `json:"structural_id"` // SHA-1(rule_structural_id, blob_id, start, end)
	FindingID    string   `json:"finding_id"`    // SHA-1(rule_structural_id, text)
	RuleID       string   `json:"rule_id"`
	RuleName     string   `json:"rule_name"`
	Location     Location `json:"location"`
	Text         string   `json:"text"`
	Snippet      Snippet  `json:"snippet"`
}

// ComputeStructuralID identifies a match by rule, blob and byte span.
// Format: SHA-1(rule_structural_id + '\0' + blob_id + '\0' + start + '\0' + end)
func (m *Match) ComputeStructuralID(ruleStructuralID string) string {
	h := sha1.New()
	h.Write([]byte(ruleStructuralID))
	h.Write([]byte{0})
	h.Write(m.BlobID[:])
	h.Write([]byte{0})
	h.Write(strconv.AppendInt(nil, m.Location.Offset.Start, 10))
	h.Write([]byte{0})
	h.Write(strconv.AppendInt(nil, m.Location.Offset.End, 10))
	return hex.EncodeToString(h.Sum(nil))
}
