package main

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/praetorian-inc/glossa/pkg/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMarkdown_Tags(t *testing.T) {
	markdownFormat = "tags"
	path := writeFile(t, t.TempDir(), "doc.md", "**hi** there\nuse `x`\n")

	cmd, stdout, _ := newTestCmd()
	require.NoError(t, runMarkdown(cmd, []string{path}))

	want := strings.Join([]string{
		"《text〡bold〡content〓hi》",
		"《text〡content〓 there》",
		"《br》",
		"《text〡content〓use 》",
		"《text〡code〡content〓x》",
	}, "\n") + "\n"
	assert.Equal(t, want, stdout.String())
}

func TestRunMarkdown_JSON(t *testing.T) {
	markdownFormat = "json"

	cmd, stdout, _ := newTestCmd()
	cmd.SetIn(strings.NewReader("*a*"))
	require.NoError(t, runMarkdown(cmd, []string{stdinTarget}))

	var tags []*tag.Tag
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &tags))
	require.Len(t, tags, 1)
	assert.Equal(t, "text", tags[0].Name)
	assert.Equal(t, map[string]string{"italic": "", "content": "a"}, tags[0].Metadata)

	markdownFormat = "json"
	cmd, stdout, _ = newTestCmd()
	cmd.SetIn(strings.NewReader(""))
	require.NoError(t, runMarkdown(cmd, nil))
	assert.Equal(t, "[]\n", stdout.String())
}

func TestRunMarkdown_HTML(t *testing.T) {
	markdownFormat = "html"

	cmd, stdout, _ := newTestCmd()
	cmd.SetIn(strings.NewReader("**a<b** and `c`"))
	require.NoError(t, runMarkdown(cmd, nil))

	output := stdout.String()
	assert.Contains(t, output, "<strong>a&lt;b</strong>")
	assert.Contains(t, output, "<code>c</code>")
}

func TestRunMarkdown_Errors(t *testing.T) {
	markdownFormat = "tags"
	cmd, _, _ := newTestCmd()
	assert.ErrorContains(t, runMarkdown(cmd, []string{filepath.Join(t.TempDir(), "missing.md")}), "opening")

	markdownFormat = "yaml"
	cmd, _, _ = newTestCmd()
	cmd.SetIn(strings.NewReader("x"))
	assert.ErrorContains(t, runMarkdown(cmd, nil), "unknown output format: yaml")
}
