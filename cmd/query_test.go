package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mozilla-ai/gqltz/internal/flags"
)

type capturedRequest struct {
	header http.Header
	body   map[string]any
}

func newTestUpstream(t *testing.T, response string) (*httptest.Server, <-chan capturedRequest) {
	t.Helper()

	captured := make(chan capturedRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		req := capturedRequest{header: r.Header.Clone()}
		_ = json.Unmarshal(body, &req.body)
		captured <- req

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)

	return srv, captured
}

// Tests touching flags.Timezone and flags.ConfigFile are not parallel.
func TestQueryCmd(t *testing.T) {
	flags.Timezone = "Asia/Kolkata"
	t.Cleanup(func() { flags.Timezone = "" })

	srv, captured := newTestUpstream(
		t,
		`{"data":{"createTask":{"id":"7","dueDate":"2025-03-10T09:00:00.000Z","createdAt":"2025-03-09T20:00:00.000Z"}}}`,
	)

	c, err := NewQueryCmd(newTestBaseCmd())
	require.NoError(t, err)

	var stdout bytes.Buffer
	c.SetOut(&stdout)
	c.SetErr(&bytes.Buffer{})
	c.SetArgs([]string{
		"mutation CreateTask($input: TaskInput!) { createTask(input: $input) { id dueDate createdAt } }",
		"--endpoint", srv.URL,
		"--operation-name", "CreateTask",
		"--variables", `{"input":{"title":"Ship","dueDate":"2025-03-10T14:30:00"}}`,
		"-H", "Authorization: Bearer token",
	})

	require.NoError(t, c.Execute())

	got := <-captured
	require.Equal(t, "Bearer token", got.header.Get("Authorization"))
	require.Equal(t, "CreateTask", got.body["operationName"])
	require.Equal(t, map[string]any{
		"input": map[string]any{"title": "Ship", "dueDate": "2025-03-10T09:00:00.000Z"},
	}, got.body["variables"])

	require.JSONEq(
		t,
		`{"data":{"createTask":{"id":"7","dueDate":"2025-03-10T14:30:00.000","createdAt":"2025-03-10T01:30:00.000"}}}`,
		stdout.String(),
	)
}

func TestQueryCmd_ConfiguredEndpointAndQueryFile(t *testing.T) {
	srv, captured := newTestUpstream(t, `{"data":{"tasks":[{"updatedAt":"2025-07-01T12:00:00.000Z"}]}}`)

	dir := t.TempDir()
	configFile := filepath.Join(dir, ".gqltz.toml")
	require.NoError(t, os.WriteFile(configFile, []byte(`[daemon]
upstream = "`+srv.URL+`"
timezone = "Europe/Berlin"
`), 0o644))
	queryFile := filepath.Join(dir, "tasks.graphql")
	require.NoError(t, os.WriteFile(queryFile, []byte("{ tasks { updatedAt } }"), 0o644))

	flags.ConfigFile = configFile
	t.Cleanup(func() { flags.ConfigFile = "" })

	c, err := NewQueryCmd(newTestBaseCmd())
	require.NoError(t, err)

	var stdout bytes.Buffer
	c.SetOut(&stdout)
	c.SetErr(&bytes.Buffer{})
	c.SetArgs([]string{"--query-file", queryFile})

	require.NoError(t, c.Execute())

	got := <-captured
	require.Equal(t, "{ tasks { updatedAt } }", got.body["query"])
	require.JSONEq(t, `{"data":{"tasks":[{"updatedAt":"2025-07-01T14:00:00.000"}]}}`, stdout.String())
}

func TestQueryCmd_Errors(t *testing.T) {
	queryFile := filepath.Join(t.TempDir(), "query.graphql")
	require.NoError(t, os.WriteFile(queryFile, []byte("{ a }"), 0o644))

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "missing document",
			args:    []string{"--endpoint", "http://localhost:4000/graphql"},
			wantErr: "a GraphQL document is required",
		},
		{
			name:    "document twice",
			args:    []string{"{ a }", "--query-file", queryFile, "--endpoint", "http://localhost:4000/graphql"},
			wantErr: "provide the GraphQL document as an argument or with --query-file, not both",
		},
		{
			name:    "invalid variables",
			args:    []string{"{ a }", "--variables", "[1,2]", "--endpoint", "http://localhost:4000/graphql"},
			wantErr: "invalid variables, expected a JSON object",
		},
		{
			name:    "missing endpoint",
			args:    []string{"{ a }"},
			wantErr: "an endpoint is required, use --endpoint or configure the daemon upstream",
		},
		{
			name:    "invalid header",
			args:    []string{"{ a }", "--endpoint", "http://localhost:4000/graphql", "-H", "Authorization"},
			wantErr: "invalid header 'Authorization', expected 'Name: value'",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			flags.Timezone = "UTC"
			t.Cleanup(func() { flags.Timezone = "" })

			c, err := NewQueryCmd(newTestBaseCmd())
			require.NoError(t, err)
			c.SetOut(&bytes.Buffer{})
			c.SetErr(&bytes.Buffer{})
			c.SetArgs(tc.args)

			require.ErrorContains(t, c.Execute(), tc.wantErr)
		})
	}
}
