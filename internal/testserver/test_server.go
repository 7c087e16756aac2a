// Package testserver runs the full plantree HTTP stack over an in-memory
// database for end-to-end tests.
package testserver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/plantree/internal/app"
	"github.com/rpggio/plantree/internal/domain/project"
	"github.com/rpggio/plantree/internal/mcp"
	"github.com/rpggio/plantree/internal/sqlite"
	"github.com/rpggio/plantree/internal/timeline"
	"github.com/rpggio/plantree/internal/transport"
	"github.com/stretchr/testify/require"
)

// TestServer is a running plantree server with one authenticated user.
type TestServer struct {
	Server *httptest.Server
	App    *app.App
	Token  string
	UserID string
}

// New starts a server whose API key token authenticates userID.
func New(t *testing.T, token, userID string) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	a := app.New(db, timeline.DefaultConfig(), nil)
	services := mcp.Services{
		Projects:     a.Projects,
		Objects:      a.Objects,
		Numbering:    a.Numbering,
		Dependencies: a.Dependencies,
		Timeline:     a.Timeline,
		Activity:     a.Activity,
	}
	mcpServer := mcp.NewServer(mcp.Config{
		Services:      services,
		Resolver:      a.APIKeys,
		AuthEnabled:   true,
		TransportMode: mcp.TransportHTTP,
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{SessionTimeout: time.Minute},
	)

	server := httptest.NewServer(transport.NewServer(mcp.NewHandler(services), transport.Options{
		Auth: transport.AuthMiddleware(a.APIKeys),
		MCP:  mcpHandler,
	}))

	ts := &TestServer{
		Server: server,
		App:    a,
		Token:  token,
		UserID: userID,
	}
	require.NoError(t, ts.AddUser(userID, token))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return ts
}

// AddUser registers userID and binds token to it.
func (ts *TestServer) AddUser(userID, token string) error {
	ctx := context.Background()
	user := &project.User{ID: userID, Name: userID, CreatedAt: time.Now().UTC()}
	if err := ts.App.Users.EnsureUser(ctx, user); err != nil {
		return err
	}
	return ts.App.APIKeys.Register(ctx, userID, token, "test")
}

// Connect opens an MCP client session over streamable HTTP sending token.
func (ts *TestServer) Connect(t *testing.T, token string) *sdkmcp.ClientSession {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.Server.URL + "/mcp",
		HTTPClient: &http.Client{Transport: bearer{token: token}},
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

type bearer struct {
	token string
}

func (b bearer) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+b.token)
	return http.DefaultTransport.RoundTrip(req)
}
