package serve

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praetorian-inc/glossa/pkg/scanner"
	"github.com/praetorian-inc/glossa/pkg/types"
)

func newCore(t *testing.T) *scanner.Core {
	t.Helper()
	core, err := scanner.NewCore("builtin")
	require.NoError(t, err)
	t.Cleanup(core.Close)
	return core
}

// serve runs a server over input and returns the decoded responses.
func serve(t *testing.T, core *scanner.Core, input string) []Response {
	t.Helper()
	out := &bytes.Buffer{}
	require.NoError(t, NewServer(core, strings.NewReader(input), out).Run(context.Background()))

	var responses []Response
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		var resp Response
		require.NoError(t, json.Unmarshal([]byte(line), &resp), line)
		responses = append(responses, resp)
	}
	return responses
}

func TestServer_SendsReadyOnStart(t *testing.T) {
	core := newCore(t)
	out := &bytes.Buffer{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = NewServer(core, strings.NewReader(""), out).Run(ctx)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.NotEmpty(t, lines)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "ready", resp.Type)

	var ready ReadyData
	require.NoError(t, json.Unmarshal(resp.Data, &ready))
	assert.Equal(t, Version, ready.Version)
	assert.Equal(t, 11, ready.Rules)
}

func TestServer_Tokenize(t *testing.T) {
	responses := serve(t, newCore(t), `{"type":"tokenize","payload":{"content":"see 10.0.0.1","source":"msg"}}`+"\n")
	require.Len(t, responses, 2)

	resp := responses[1]
	assert.True(t, resp.Success)
	assert.Equal(t, TypeTokenize, resp.Type)

	var result scanner.TokenizeResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Equal(t, "msg", result.Source)
	require.Len(t, result.Matches, 2)
	assert.Equal(t, "see", result.Matches[0].Text)
	assert.Equal(t, "glossa.ipv4", result.Matches[1].RuleID)
	assert.Equal(t, types.OffsetSpan{Start: 4, End: 12}, result.Matches[1].Location.Offset)
}

func TestServer_TokenizeBatch(t *testing.T) {
	request := `{"type":"tokenize_batch","payload":{"items":[{"source":"s1","content":"x"},{"source":"s2","content":"0x1F 7"}]}}` + "\n"
	responses := serve(t, newCore(t), request)
	require.Len(t, responses, 2)

	var result scanner.BatchResult
	require.NoError(t, json.Unmarshal(responses[1].Data, &result))
	require.Len(t, result.Results, 2)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, "s2", result.Results[1].Source)
}

func TestServer_Match(t *testing.T) {
	request := `{"type":"match","payload":{"patterns":["〸a","〸ab"],"text":"aaab!","offset":0}}` + "\n"
	responses := serve(t, newCore(t), request)
	require.Len(t, responses, 2)
	require.True(t, responses[1].Success, responses[1].Error)

	var result scanner.MatchResult
	require.NoError(t, json.Unmarshal(responses[1].Data, &result))
	assert.Equal(t, scanner.MatchResult{Offset: 0, Length: 4, Text: "aaab"}, result)
}

func TestServer_Findings(t *testing.T) {
	input := strings.Join([]string{
		`{"type":"tokenize","payload":{"content":"42","source":"a"}}`,
		`{"type":"tokenize","payload":{"content":"x 42","source":"b"}}`,
		`{"type":"findings"}`,
	}, "\n") + "\n"
	responses := serve(t, newCore(t), input)
	require.Len(t, responses, 4)

	var findings []*types.Finding
	require.NoError(t, json.Unmarshal(responses[3].Data, &findings))
	var texts []string
	for _, f := range findings {
		texts = append(texts, f.Text)
	}
	assert.ElementsMatch(t, []string{"42", "x"}, texts)
}

func TestServer_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType string
		wantErr  string
	}{
		{
			name:     "unknown type",
			input:    `{"type":"scan"}`,
			wantType: "unknown",
			wantErr:  "unknown request type: scan",
		},
		{
			name:     "missing payload",
			input:    `{"type":"tokenize"}`,
			wantType: TypeTokenize,
			wantErr:  "missing payload",
		},
		{
			name:     "bad pattern",
			input:    `{"type":"match","payload":{"patterns":["「a"],"text":"a"}}`,
			wantType: TypeMatch,
		},
		{
			name:     "malformed line",
			input:    `{"type":`,
			wantType: "decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responses := serve(t, newCore(t), tt.input+"\n")
			require.Len(t, responses, 2)

			resp := responses[1]
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantType, resp.Type)
			assert.NotEmpty(t, resp.Error)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, resp.Error)
			}
		})
	}
}

func TestServer_Close(t *testing.T) {
	input := `{"type":"close"}` + "\n" + `{"type":"tokenize","payload":{"content":"a","source":"late"}}` + "\n"
	responses := serve(t, newCore(t), input)
	assert.Len(t, responses, 1, "requests after close are not answered")
}

func TestServer_GracefulShutdownOnContext(t *testing.T) {
	core := newCore(t)
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- NewServer(core, pr, io.Discard).Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}

// A request queued just before EOF must still be answered.
func TestServer_RequestBeforeEOF(t *testing.T) {
	core := newCore(t)
	request := `{"type":"tokenize_batch","payload":{"items":[{"source":"s1","content":"a"},{"source":"s2","content":"b"}]}}` + "\n"

	for i := range 20 {
		responses := serve(t, core, request)
		require.Len(t, responses, 2, "iteration %d", i)
		assert.True(t, responses[1].Success, "iteration %d", i)
		assert.Equal(t, TypeTokenizeBatch, responses[1].Type, "iteration %d", i)
	}
}
