package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetMatchFlags() {
	matchPatterns = nil
	matchRuleIDs = nil
	matchRulesPath = ""
	matchOffset = 0
	matchAll = false
	matchFormat = "text"
}

func TestRunMatch(t *testing.T) {
	tests := []struct {
		name  string
		setup func()
		args  []string
		stdin string
		want  string
	}{
		{
			name: "longest pattern wins",
			setup: func() {
				matchPatterns = []string{"〸「0〜9」", "〸「0〜9」.〸「0〜9」"}
			},
			args: []string{"3.14 apples"},
			want: "0-4\t3.14\n",
		},
		{
			name: "arguments joined",
			setup: func() {
				matchPatterns = []string{"〸「0〜9」 apples"}
			},
			args: []string{"3", "apples"},
			want: "0-8\t3 apples\n",
		},
		{
			name: "builtin rule at offset",
			setup: func() {
				matchRuleIDs = []string{"glossa.number.hex"}
				matchOffset = 4
			},
			args: []string{"use 0x1F"},
			want: "4-8\t0x1F\n",
		},
		{
			name: "tokenize stdin",
			setup: func() {
				matchRuleIDs = []string{"glossa.number.version"}
				matchAll = true
			},
			stdin: "v1.2.3 and v2.0.0\n",
			want:  "0-6\tv1.2.3\n11-17\tv2.0.0\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetMatchFlags()
			tt.setup()
			cmd, stdout, _ := newTestCmd()
			cmd.SetIn(strings.NewReader(tt.stdin))

			require.NoError(t, runMatch(cmd, tt.args))
			assert.Equal(t, tt.want, stdout.String())
		})
	}
}

func TestRunMatch_JSON(t *testing.T) {
	resetMatchFlags()
	matchPatterns = []string{"ab", "〸「a〜z」"}
	matchAll = true
	matchFormat = "json"

	cmd, stdout, _ := newTestCmd()
	require.NoError(t, runMatch(cmd, []string{"ab 12 abc"}))

	var results []matchResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &results))
	assert.Equal(t, []matchResult{
		{Start: 0, End: 2, Text: "ab"},
		{Start: 6, End: 9, Text: "abc"},
	}, results)
}

func TestRunMatch_JSONNoMatch(t *testing.T) {
	resetMatchFlags()
	matchPatterns = []string{"x"}
	matchFormat = "json"

	cmd, stdout, _ := newTestCmd()
	require.NoError(t, runMatch(cmd, []string{"abc"}))
	assert.Equal(t, "[]\n", stdout.String())
}

func TestRunMatch_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func()
		want  string
	}{
		{name: "no patterns", setup: func() {}, want: "at least one --pattern or --rule is required"},
		{name: "no match", setup: func() { matchPatterns = []string{"x"} }, want: "no match"},
		{name: "unknown rule", setup: func() { matchRuleIDs = []string{"nope"} }, want: "unknown rule: nope"},
		{name: "invalid pattern", setup: func() { matchPatterns = []string{"「a"} }},
		{
			name: "unknown format",
			setup: func() {
				matchPatterns = []string{"a"}
				matchFormat = "xml"
			},
			want: "unknown output format: xml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetMatchFlags()
			tt.setup()
			cmd, _, _ := newTestCmd()

			err := runMatch(cmd, []string{"abc"})
			require.Error(t, err)
			if tt.want != "" {
				assert.ErrorContains(t, err, tt.want)
			}
		})
	}
}
