package mcp

import (
	"context"
	"encoding/json"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T, server *sdkmcp.Server) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func callTool(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	result, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok)
	return text.Text, result.IsError
}

func TestServer_ToolsAndResources(t *testing.T) {
	svc, _ := newTestServices(t)
	session := connect(t, NewServer(Config{
		Services:      svc,
		DefaultUser:   "owner",
		TransportMode: TransportStdio,
	}))
	ctx := context.Background()

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	names := make(map[string]bool, len(tools.Tools))
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, def := range buildToolCatalog() {
		assert.True(t, names[def.Name], "tool %s registered", def.Name)
	}

	resources, err := session.ListResources(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, resources.Resources, len(docResources))

	read, err := session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "plantree://docs/concepts"})
	require.NoError(t, err)
	require.Len(t, read.Contents, 1)
	assert.Contains(t, read.Contents[0].Text, "Numbering")
}

func TestServer_CallTools(t *testing.T) {
	svc, projectID := newTestServices(t)
	session := connect(t, NewServer(Config{
		Services:      svc,
		DefaultUser:   "owner",
		TransportMode: TransportStdio,
	}))

	text, isErr := callTool(t, session, "create_object", map[string]any{"project_id": projectID, "name": "Kickoff", "kind": "milestone"})
	require.False(t, isErr, text)
	var created map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &created))
	assert.Equal(t, "Kickoff", created["name"])
	assert.Equal(t, "milestone", created["kind"])

	text, isErr = callTool(t, session, "get_object", map[string]any{"id": "missing"})
	require.True(t, isErr)
	var apiErr APIError
	require.NoError(t, json.Unmarshal([]byte(text), &apiErr))
	assert.Equal(t, CodeNotFound, apiErr.Code)
}

func TestServer_DefaultUserIsRequester(t *testing.T) {
	svc, projectID := newTestServices(t)
	session := connect(t, NewServer(Config{
		Services:      svc,
		DefaultUser:   "stranger",
		TransportMode: TransportStdio,
	}))

	text, isErr := callTool(t, session, "list_objects", map[string]any{"project_id": projectID})
	require.True(t, isErr)
	assert.Contains(t, text, CodeAccessDenied)
}
