package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/codex-k8s/runstep-agent/internal/log"
	"github.com/codex-k8s/runstep-agent/internal/schema"
	contract "github.com/codex-k8s/runstep-agent/pkg/runstep"
)

func connect(t *testing.T) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server, err := Builder{Version: "test", Logger: log.Discard()}.Build()
	require.NoError(t, err)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func structured[T any](t *testing.T, result *mcp.CallToolResult) T {
	t.Helper()
	require.False(t, result.IsError)
	raw, err := json.Marshal(result.StructuredContent)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestListTools(t *testing.T) {
	session := connect(t)

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
		require.NotNil(t, tool.InputSchema, tool.Name)
		require.NotNil(t, tool.OutputSchema, tool.Name)
	}
	require.ElementsMatch(t, []string{ToolRunStep, ToolValidateResponse}, names)
}

func TestRunStepTool(t *testing.T) {
	session := connect(t)
	ctx := context.Background()

	cases := []struct {
		name string
		args map[string]any
		want contract.Response
	}{
		{
			name: "first tool",
			args: map[string]any{"tools": []any{map[string]any{"name": "search"}, map[string]any{"name": "click"}}},
			want: contract.Response{Thought: contract.DefaultThought, Action: contract.Action{Tool: "search", Args: map[string]any{}}},
		},
		{
			name: "no tools",
			args: map[string]any{},
			want: contract.Response{Thought: contract.DefaultThought, Action: contract.Action{Tool: "say", Args: map[string]any{"message": "ok"}}},
		},
		{
			name: "full payload",
			args: map[string]any{
				"history": []any{map[string]any{"role": "user", "content": "hi"}},
				"tools":   []any{},
				"meta":    map[string]any{"run_id": "r1", "step_idx": 3},
			},
			want: contract.Response{Thought: contract.DefaultThought, Action: contract.Action{Tool: "say", Args: map[string]any{"message": "ok"}}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: ToolRunStep, Arguments: tc.args})
			require.NoError(t, err)
			require.Equal(t, tc.want, structured[contract.Response](t, res))
		})
	}
}

func TestValidateResponseTool(t *testing.T) {
	session := connect(t)
	ctx := context.Background()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name: ToolValidateResponse,
		Arguments: map[string]any{"response": map[string]any{
			"thought": "t",
			"action":  map[string]any{"tool": "say", "args": map[string]any{}},
		}},
	})
	require.NoError(t, err)
	require.Equal(t, contract.ValidationResult{Valid: true, Errors: []string{}}, structured[contract.ValidationResult](t, res))

	res, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      ToolValidateResponse,
		Arguments: map[string]any{"response": map[string]any{"thought": "", "action": map[string]any{}}},
	})
	require.NoError(t, err)
	got := structured[contract.ValidationResult](t, res)
	require.False(t, got.Valid)
	require.Equal(t, []string{contract.MsgThought, contract.MsgActionMissing + "args, tool"}, got.Errors)

	res, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      ToolValidateResponse,
		Arguments: map[string]any{"response": "nope"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{contract.MsgNotObject}, structured[contract.ValidationResult](t, res).Errors)
}

func TestSchemaResources(t *testing.T) {
	session := connect(t)
	ctx := context.Background()

	list, err := session.ListResources(ctx, nil)
	require.NoError(t, err)
	require.Len(t, list.Resources, len(schema.Names()))

	res, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: SchemaURIPrefix + schema.NameResponse})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &doc))
	require.Equal(t, schema.NameResponse, doc["title"])
}
