// Package sarif renders scan matches as a SARIF 2.1.0 log.
package sarif

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/praetorian-inc/glossa/pkg/types"
)

// SARIF 2.1.0 constants
const (
	SchemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"
	Version   = "2.1.0"
	ToolName  = "glossa"
)

// Level is the result level. Tokens are informational.
const Level = "note"

// Report is the top-level SARIF report structure
type Report struct {
	Schema  string `json:"$schema"`
	Version string `json:"version"`
	Runs    []Run  `json:"runs"`

	ruleIndex map[string]int
}

// Run represents a single invocation of the tool
type Run struct {
	Tool    Tool     `json:"tool"`
	Results []Result `json:"results"`
}

// Tool describes the analysis tool
type Tool struct {
	Driver Driver `json:"driver"`
}

// Driver contains tool metadata
type Driver struct {
	Name           string `json:"name"`
	Version        string `json:"version"`
	InformationURI string `json:"informationUri,omitempty"`
	Rules          []Rule `json:"rules,omitempty"`
}

// Rule is a reportingDescriptor for one glossa rule.
type Rule struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	ShortDescription Text            `json:"shortDescription"`
	FullDescription  *Text           `json:"fullDescription,omitempty"`
	HelpURI          string          `json:"helpUri,omitempty"`
	Properties       *RuleProperties `json:"properties,omitempty"`
}

// RuleProperties carries the rule's patterns and categories.
type RuleProperties struct {
	Patterns []string `json:"patterns,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// Text is a SARIF message string.
type Text struct {
	Text string `json:"text"`
}

// Result represents a single match
type Result struct {
	RuleID              string            `json:"ruleId"`
	RuleIndex           int               `json:"ruleIndex"`
	Level               string            `json:"level"`
	Message             Text              `json:"message"`
	Locations           []Location        `json:"locations"`
	PartialFingerprints map[string]string `json:"partialFingerprints,omitempty"`
}

// Location describes where a result was found
type Location struct {
	PhysicalLocation PhysicalLocation `json:"physicalLocation"`
}

// PhysicalLocation specifies file location
type PhysicalLocation struct {
	ArtifactLocation ArtifactLocation `json:"artifactLocation"`
	Region           Region           `json:"region"`
}

// ArtifactLocation identifies the file
type ArtifactLocation struct {
	URI string `json:"uri"`
}

// Region is a 1-based line/column range; EndColumn is exclusive.
type Region struct {
	StartLine   int   `json:"startLine"`
	StartColumn int   `json:"startColumn"`
	EndLine     int   `json:"endLine"`
	EndColumn   int   `json:"endColumn"`
	CharOffset  int64 `json:"charOffset"`
	CharLength  int64 `json:"charLength"`
	Snippet     *Text `json:"snippet,omitempty"`
}

// NewReport creates a report with one empty run for the given tool
// version.
func NewReport(toolVersion string) *Report {
	return &Report{
		Schema:  SchemaURI,
		Version: Version,
		Runs: []Run{
			{
				Tool: Tool{
					Driver: Driver{
						Name:           ToolName,
						Version:        toolVersion,
						InformationURI: "https://github.com/praetorian-inc/glossa",
						Rules:          []Rule{},
					},
				},
				Results: []Result{},
			},
		},
		ruleIndex: make(map[string]int),
	}
}

// AddRule adds a rule to the driver. Adding a rule twice is a no-op.
func (r *Report) AddRule(rule *types.Rule) {
	if _, ok := r.ruleIndex[rule.ID]; ok {
		return
	}

	desc := rule.Description
	if desc == "" {
		desc = rule.Name
	}
	sarifRule := Rule{
		ID:               rule.ID,
		Name:             rule.Name,
		ShortDescription: Text{Text: desc},
	}
	if len(rule.Patterns) > 0 || len(rule.Categories) > 0 {
		sarifRule.Properties = &RuleProperties{Patterns: rule.Patterns, Tags: rule.Categories}
	}
	if len(rule.References) > 0 {
		sarifRule.HelpURI = rule.References[0]
	}

	driver := &r.Runs[0].Tool.Driver
	r.ruleIndex[rule.ID] = len(driver.Rules)
	driver.Rules = append(driver.Rules, sarifRule)
}

// AddResult adds a match found in the artifact at path. A rule the
// report has not seen is added with only its ID and name.
func (r *Report) AddResult(match *types.Match, path string) {
	idx, ok := r.ruleIndex[match.RuleID]
	if !ok {
		r.AddRule(&types.Rule{ID: match.RuleID, Name: match.RuleName})
		idx = r.ruleIndex[match.RuleID]
	}

	region := Region{
		StartLine:   match.Location.Source.Start.Line,
		StartColumn: match.Location.Source.Start.Column,
		EndLine:     match.Location.Source.End.Line,
		EndColumn:   match.Location.Source.End.Column,
		CharOffset:  match.Location.Offset.Start,
		CharLength:  match.Location.Offset.Len(),
	}
	if match.Text != "" {
		region.Snippet = &Text{Text: match.Text}
	}

	result := Result{
		RuleID:    match.RuleID,
		RuleIndex: idx,
		Level:     Level,
		Message:   Text{Text: match.RuleName + ": " + match.Text},
		Locations: []Location{
			{
				PhysicalLocation: PhysicalLocation{
					ArtifactLocation: ArtifactLocation{URI: formatFileURI(path)},
					Region:           region,
				},
			},
		},
	}
	if match.FindingID != "" {
		result.PartialFingerprints = map[string]string{"findingId/v1": match.FindingID}
	}

	r.Runs[0].Results = append(r.Runs[0].Results, result)
}

// ToJSON serializes the report to JSON bytes
func (r *Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// formatFileURI converts a file path to SARIF URI format.
// Absolute paths get a file:// prefix, relative paths stay as-is.
func formatFileURI(path string) string {
	path = filepath.ToSlash(path)
	if filepath.IsAbs(filepath.FromSlash(path)) {
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		return "file://" + path
	}
	return path
}
