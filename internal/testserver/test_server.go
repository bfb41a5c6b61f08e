// Package testserver runs a complete gantry HTTP server on an in-memory
// database for end-to-end tests.
package testserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/gantry/internal/app"
	"github.com/rpggio/gantry/internal/domain/person"
	"github.com/rpggio/gantry/internal/mcp"
	"github.com/rpggio/gantry/internal/store"
	"github.com/rpggio/gantry/internal/transport"
)

type TestServer struct {
	Server *httptest.Server
	App    *app.App
	DB     *store.DB
}

// New starts a server with authentication enabled.
func New(t *testing.T) *TestServer {
	t.Helper()

	db, err := store.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background(), nil))

	a := app.New(db, app.Options{})

	mcpServer := mcp.NewServer(mcp.Config{
		Services:      a.MCPServices(),
		Resolver:      a.Keys,
		AuthEnabled:   true,
		TransportMode: "http",
		Version:       "test",
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{SessionTimeout: time.Minute},
	)

	srv := transport.NewServer(transport.Config{
		Services:    a.HTTPServices(),
		Resolver:    a.Keys,
		AuthEnabled: true,
		MCP:         mcpHandler,
	})
	server := httptest.NewServer(srv.Handler())

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &TestServer{Server: server, App: a, DB: db}
}

// Register creates a person and returns it with a fresh API key.
func (ts *TestServer) Register(t *testing.T, email, name string) (*person.Person, string) {
	t.Helper()
	ctx := context.Background()

	p, err := ts.App.People.Register(ctx, person.RegisterRequest{Email: email, FullName: name})
	require.NoError(t, err)
	key, err := ts.App.Keys.Create(ctx, p.ID, "test")
	require.NoError(t, err)
	return p, key
}

// MCPClient opens an MCP session over streamable HTTP using token.
func (ts *TestServer) MCPClient(t *testing.T, token string) *sdkmcp.ClientSession {
	t.Helper()

	httpClient := &http.Client{Transport: bearerTransport{token: token, base: http.DefaultTransport}}
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	cs, err := client.Connect(context.Background(), &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.Server.URL + "/mcp",
		HTTPClient: httpClient,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (b bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+b.token)
	return b.base.RoundTrip(req)
}
