package types

// Snippet is a match with surrounding context lines.
type Snippet struct {
	Before   string `json:"before"`
	Matching string `json:"matching"`
	After    string `json:"after"`
}
