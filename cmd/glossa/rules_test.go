package main

import (
	"encoding/json"
	"testing"

	"github.com/praetorian-inc/glossa/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetRulesFlags() {
	rulesPath = ""
	outputFormat = "table"
	listRulesets = false
	checkRulesets = true
}

func TestRunRulesList(t *testing.T) {
	resetRulesFlags()
	cmd, stdout, _ := newTestCmd()

	require.NoError(t, runRulesList(cmd, nil))

	output := stdout.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "glossa.number.hex")
	assert.Contains(t, output, "0x〸「0〜9a〜fA〜F」")
}

func TestRunRulesListJSON(t *testing.T) {
	resetRulesFlags()
	outputFormat = "json"
	cmd, stdout, _ := newTestCmd()

	require.NoError(t, runRulesList(cmd, nil))

	var rules []*types.Rule
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &rules))
	assert.Len(t, rules, 11)
	assert.Contains(t, stdout.String(), "「", "notation is not escaped")
}

func TestRunRulesList_Rulesets(t *testing.T) {
	resetRulesFlags()
	listRulesets = true
	cmd, stdout, _ := newTestCmd()

	require.NoError(t, runRulesList(cmd, nil))
	assert.Contains(t, stdout.String(), "default")
	assert.Contains(t, stdout.String(), "prose")
}

func TestRunRulesList_CustomDirectory(t *testing.T) {
	resetRulesFlags()
	dir := t.TempDir()
	writeFile(t, dir, "a.yml", testRulesYAML)
	writeFile(t, dir, "b.yaml", "rules:\n  - name: Dot\n    id: test.dot\n    patterns: ['.']\n")
	writeFile(t, dir, "notes.txt", "not a rules file")
	rulesPath = dir
	outputFormat = "json"
	cmd, stdout, _ := newTestCmd()

	require.NoError(t, runRulesList(cmd, nil))

	var rules []*types.Rule
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &rules))
	ids := make([]string, len(rules))
	for i, r := range rules {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"test.ticket", "test.word", "test.dot"}, ids)
}

func TestRunRulesList_UnknownFormat(t *testing.T) {
	resetRulesFlags()
	outputFormat = "xml"
	cmd, _, _ := newTestCmd()
	assert.ErrorContains(t, runRulesList(cmd, nil), "unknown output format")
}

func TestRunRulesCheck_Builtin(t *testing.T) {
	resetRulesFlags()
	cmd, stdout, _ := newTestCmd()

	require.NoError(t, runRulesCheck(cmd, nil))
	assert.Contains(t, stdout.String(), "ok    glossa.ipv4")
	assert.Contains(t, stdout.String(), "ok    ruleset default (11 rules)")
	assert.NotContains(t, stdout.String(), "FAIL")
}

func TestRunRulesCheck_Failures(t *testing.T) {
	resetRulesFlags()
	dir := t.TempDir()
	rulesPath = writeFile(t, dir, "bad.yml", testRulesYAML+`  - name: Broken
    id: test.broken
    patterns:
      - '「z〜a」'
  - name: Wrong Example
    id: test.wrong
    patterns:
      - 'ab'
    examples:
      - 'abc'
  - name: Ticket Again
    id: test.ticket
    patterns:
      - 'T'
`)
	cmd, stdout, _ := newTestCmd()

	err := runRulesCheck(cmd, nil)
	assert.ErrorContains(t, err, "3 checks failed")

	output := stdout.String()
	assert.Contains(t, output, "ok    test.word")
	assert.Contains(t, output, "FAIL  test.broken")
	assert.Contains(t, output, "FAIL  test.wrong")
	assert.Contains(t, output, "duplicate rule ID: test.ticket")
	assert.NotContains(t, output, "ruleset", "rulesets are only checked with builtin rules")
}
