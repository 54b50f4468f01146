package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/brizzai/hubspot-connect/internal/auth"
	"github.com/brizzai/hubspot-connect/internal/auth/providers"
	"github.com/brizzai/hubspot-connect/internal/config"
	"github.com/brizzai/hubspot-connect/internal/integrations/hubspot"
	"github.com/brizzai/hubspot-connect/internal/models"
	"github.com/brizzai/hubspot-connect/internal/requester"
	"github.com/brizzai/hubspot-connect/internal/server/tool"
	"github.com/brizzai/hubspot-connect/internal/store"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer wires the real service against a fake HubSpot (token + contacts endpoints).
func newTestServer(t *testing.T) (*Server, *store.MemoryStore) {
	t.Helper()

	hub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/token":
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "the-code", r.PostForm.Get("code"))
			_, _ = w.Write([]byte(`{"access_token":"tok","refresh_token":"r","expires_in":1800}`))
		case "/crm/v3/objects/contacts":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"results":[{"id":"1","properties":{"firstname":"A","lastname":"B"}},{"id":"3"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(hub.Close)

	cfg := &config.Config{
		Server: config.ServerConfig{Name: "hubspot-connect", Version: "test", Mode: config.ServerModeHTTP},
		HubSpot: config.HubSpotConfig{
			ClientID:       "cid",
			ClientSecret:   "secret",
			RedirectURI:    "http://localhost:8000/integrations/hubspot/oauth2callback",
			Scopes:         []string{"crm.objects.contacts.read"},
			AuthURL:        "https://app.hubspot.com/oauth/authorize",
			TokenURL:       hub.URL + "/oauth/v1/token",
			APIBaseURL:     hub.URL,
			ClientAuth:     config.ClientAuthBody,
			StateTTL:       time.Minute,
			CredentialsTTL: time.Minute,
		},
	}

	r := requester.NewHTTPRequester(requester.HTTPRequesterParams{Config: &cfg.HubSpot})
	provider, err := providers.NewHubSpotProvider(&cfg.HubSpot, r)
	require.NoError(t, err)
	s := store.NewMemoryStore()
	contacts := hubspot.NewClient(&cfg.HubSpot, r)

	return NewServer(cfg, auth.NewService(cfg, provider, s, contacts), contacts), s
}

func postForm(t *testing.T, h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_EndToEndHandshake(t *testing.T) {
	srv, s := newTestServer(t)
	h := srv.HTTPHandler()
	pair := url.Values{"user_id": {"u1"}, "org_id": {"o1"}}

	rec := postForm(t, h, "/integrations/hubspot/authorize", pair)
	require.Equal(t, http.StatusOK, rec.Code)
	var authURL string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &authURL))
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	st := u.Query().Get("state")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/integrations/hubspot/oauth2callback?"+url.Values{
		"code":  {"the-code"},
		"state": {st},
	}.Encode(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "window.close()")
	assert.Equal(t, 1, s.Len())

	rec = postForm(t, h, "/integrations/hubspot/credentials", pair)
	require.Equal(t, http.StatusOK, rec.Code)
	creds := rec.Body.String()
	assert.JSONEq(t, `{"access_token":"tok","refresh_token":"r","expires_in":1800}`, creds)

	rec = postForm(t, h, "/integrations/hubspot/credentials", pair)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postForm(t, h, "/integrations/hubspot/load", url.Values{"credentials": {creds}})
	require.Equal(t, http.StatusOK, rec.Code)
	var items []models.IntegrationItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "A B", items[0].Name)
	assert.Equal(t, "Contact 3", items[1].Name)
	assert.Equal(t, "https://app.hubspot.com/contacts/3", models.StringValue(items[1].URL))
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.HTTPHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServer_ContextCancellation(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.config.Server.Host = "127.0.0.1"
	srv.config.Server.Port = 0

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not stop after context cancellation")
	}
}

func newMCPClient(t *testing.T, srv *Server) *client.Client {
	t.Helper()
	c, err := client.NewInProcessClient(srv.mcp)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "test-client", Version: "1.0.0"}
	_, err = c.Initialize(ctx, initReq)
	require.NoError(t, err)
	return c
}

func TestMCPServer_ListTools(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newMCPClient(t, srv)

	tools, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
	require.NoError(t, err)
	require.Len(t, tools.Tools, 1)
	assert.Equal(t, tool.ListContactsName, tools.Tools[0].Name)
	assert.Contains(t, tools.Tools[0].InputSchema.Properties, "credentials")
}

func TestMCPServer_CallListContacts(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newMCPClient(t, srv)

	request := mcp.CallToolRequest{}
	request.Params.Name = tool.ListContactsName
	request.Params.Arguments = map[string]any{"access_token": "tok"}

	result, err := c.CallTool(context.Background(), request)
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	var items []models.IntegrationItem
	require.NoError(t, json.Unmarshal([]byte(text.Text), &items))
	assert.Len(t, items, 2)
}

func TestMCPServer_CallWithoutCredentials(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newMCPClient(t, srv)

	request := mcp.CallToolRequest{}
	request.Params.Name = tool.ListContactsName
	request.Params.Arguments = map[string]any{}

	result, err := c.CallTool(context.Background(), request)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
