package serve

import (
	"encoding/json"

	"github.com/praetorian-inc/glossa/pkg/scanner"
)

// Request types.
const (
	TypeTokenize      = "tokenize"
	TypeTokenizeBatch = "tokenize_batch"
	TypeMatch         = "match"
	TypeFindings      = "findings"
	TypeClose         = "close"
)

// Request is one incoming NDJSON line.
type Request struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// TokenizePayload is the payload of "tokenize" requests.
type TokenizePayload struct {
	Content string `json:"content"`
	Source  string `json:"source"`
}

// TokenizeBatchPayload is the payload of "tokenize_batch" requests.
type TokenizeBatchPayload struct {
	Items []scanner.ContentItem `json:"items"`
}

// MatchPayload is the payload of "match" requests.
type MatchPayload struct {
	Patterns []string `json:"patterns"`
	Text     string   `json:"text"`
	Offset   int      `json:"offset"`
}

// Response is one outgoing NDJSON line. Type echoes the request type,
// or is "ready" for the greeting.
type Response struct {
	Success bool            `json:"success"`
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ReadyData is the data of the "ready" greeting.
type ReadyData struct {
	Version string `json:"version"`
	Rules   int    `json:"rules"`
}
