package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// testRulesYAML defines two small rules used across the command tests.
const testRulesYAML = `rules:
  - name: Ticket
    id: test.ticket
    patterns:
      - 'JIRA-〸「0〜9」'
    examples:
      - 'JIRA-42'
    negative_examples:
      - 'JIRA-'
  - name: Word
    id: test.word
    patterns:
      - '〸「a〜z」'
    examples:
      - 'hello'
`

// writeFile writes content to name under dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// newTestCmd returns a bare command writing to separate stdout and
// stderr buffers.
func newTestCmd() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	return cmd, &stdout, &stderr
}
