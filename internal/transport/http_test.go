package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rpggio/plantree/internal/app"
	"github.com/rpggio/plantree/internal/mcp"
	"github.com/rpggio/plantree/internal/testutil"
	"github.com/rpggio/plantree/internal/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testHandler struct {
	userID string
	method string
	params json.RawMessage
	err    error
}

func (h *testHandler) Handle(_ context.Context, userID, method string, params json.RawMessage) (any, error) {
	h.userID, h.method, h.params = userID, method, params
	if h.err != nil {
		return nil, h.err
	}
	return map[string]string{"user": userID}, nil
}

func do(t *testing.T, srv *httptest.Server, method, path, token, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestHTTPServer_RPC(t *testing.T) {
	handler := &testHandler{}
	resolver := &testResolver{tokenToUser: map[string]string{"token": "user1"}}
	srv := httptest.NewServer(NewServer(handler, Options{Auth: AuthMiddleware(resolver)}))
	t.Cleanup(srv.Close)

	resp, body := do(t, srv, http.MethodPost, "/rpc", "token", `{"jsonrpc":"2.0","method":"list_projects","id":1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "list_projects", handler.method)
	assert.Equal(t, "user1", handler.userID)

	var rpcResp Response
	require.NoError(t, json.Unmarshal(body, &rpcResp))
	assert.Nil(t, rpcResp.Error)
	assert.EqualValues(t, 1, rpcResp.ID)

	resp, _ = do(t, srv, http.MethodPost, "/rpc", "", `{"jsonrpc":"2.0","method":"list_projects","id":1}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHTTPServer_RPCErrors(t *testing.T) {
	handler := &testHandler{err: &mcp.APIError{Code: mcp.CodeConflict, Message: "stale version"}}
	srv := httptest.NewServer(NewServer(handler, Options{Auth: DefaultUserMiddleware("local")}))
	t.Cleanup(srv.Close)

	_, body := do(t, srv, http.MethodPost, "/rpc", "", `{"jsonrpc":"2.0","method":"update_object","id":"a"}`)
	var rpcResp Response
	require.NoError(t, json.Unmarshal(body, &rpcResp))
	require.NotNil(t, rpcResp.Error)
	assert.Equal(t, ErrConflict, rpcResp.Error.Code)
	assert.Equal(t, "stale version", rpcResp.Error.Message)

	_, body = do(t, srv, http.MethodPost, "/rpc", "", `not json`)
	require.NoError(t, json.Unmarshal(body, &rpcResp))
	assert.Equal(t, ErrParseCode, rpcResp.Error.Code)
}

func TestHTTPServer_Health(t *testing.T) {
	srv := httptest.NewServer(NewServer(&testHandler{}, Options{}))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("Content-Type"))
}

func TestHTTPServer_Metrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("plantree_operations_total 1\n"))
	})
	srv := httptest.NewServer(NewServer(&testHandler{}, Options{Metrics: metrics, MetricsPath: "/metrics"}))
	t.Cleanup(srv.Close)

	resp, body := do(t, srv, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "plantree_operations_total")
}

func TestHTTPServer_RESTParams(t *testing.T) {
	handler := &testHandler{}
	srv := httptest.NewServer(NewServer(handler, Options{Auth: DefaultUserMiddleware("local")}))
	t.Cleanup(srv.Close)

	resp, _ := do(t, srv, http.MethodGet, "/api/projects/p1/search?q=deploy&limit=5", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "search_objects", handler.method)
	assert.JSONEq(t, `{"project_id":"p1","query":"deploy","limit":5}`, string(handler.params))

	resp, _ = do(t, srv, http.MethodPatch, "/api/projects/p1/objects/o1", "", `{"id":"spoofed","version":2,"name":"x"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "update_object", handler.method)
	assert.JSONEq(t, `{"id":"o1","project_id":"p1","version":2,"name":"x"}`, string(handler.params), "path values win over the body")

	resp, _ = do(t, srv, http.MethodGet, "/api/projects/p1/activity?limit=-1", "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodPost, "/api/projects", "", `[1,2]`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPServer_ErrorStatus(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{mcp.CodeValidation, http.StatusBadRequest},
		{mcp.CodeAccessDenied, http.StatusForbidden},
		{mcp.CodeNotFound, http.StatusNotFound},
		{mcp.CodeConflict, http.StatusConflict},
		{mcp.CodeStorage, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			handler := &testHandler{err: &mcp.APIError{Code: tt.code, Message: "m"}}
			srv := httptest.NewServer(NewServer(handler, Options{Auth: DefaultUserMiddleware("local")}))
			t.Cleanup(srv.Close)

			resp, body := do(t, srv, http.MethodGet, "/api/projects", "", "")
			assert.Equal(t, tt.status, resp.StatusCode)
			var payload errorBody
			require.NoError(t, json.Unmarshal(body, &payload))
			assert.Equal(t, tt.code, payload.Error.Code)
		})
	}
}

func TestHTTPServer_RESTFlow(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.SeedUser(t, db, "owner")
	testutil.SeedUser(t, db, "dev")
	a := app.New(db, timeline.DefaultConfig(), nil)
	ownerToken, err := a.APIKeys.Issue(context.Background(), "owner", "test")
	require.NoError(t, err)
	devToken, err := a.APIKeys.Issue(context.Background(), "dev", "test")
	require.NoError(t, err)

	handler := mcp.NewHandler(mcp.Services{
		Projects:     a.Projects,
		Objects:      a.Objects,
		Numbering:    a.Numbering,
		Dependencies: a.Dependencies,
		Timeline:     a.Timeline,
		Activity:     a.Activity,
	})
	srv := httptest.NewServer(NewServer(handler, Options{Auth: AuthMiddleware(a.APIKeys)}))
	t.Cleanup(srv.Close)

	resp, body := do(t, srv, http.MethodPost, "/api/projects", ownerToken,
		`{"name":"Launch","start_date":"2024-01-01","end_date":"2024-01-31"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var proj struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &proj))

	resp, _ = do(t, srv, http.MethodGet, "/api/projects/"+proj.ID+"/objects", devToken, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = do(t, srv, http.MethodPost, "/api/projects/"+proj.ID+"/members", ownerToken, `{"user_id":"dev"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	ids := make([]string, 0, 2)
	for _, name := range []string{"Design", "Build"} {
		resp, body = do(t, srv, http.MethodPost, "/api/projects/"+proj.ID+"/objects", devToken, `{"name":"`+name+`"}`)
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
		var obj struct {
			ID     string `json:"id"`
			Number int    `json:"number"`
		}
		require.NoError(t, json.Unmarshal(body, &obj))
		ids = append(ids, obj.ID)
	}

	resp, body = do(t, srv, http.MethodPost, "/api/dependencies", devToken,
		`{"from_id":"`+ids[0]+`","to_id":"`+ids[1]+`","type":"SS"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, _ = do(t, srv, http.MethodPost, "/api/dependencies", devToken,
		`{"from_id":"`+ids[0]+`","to_id":"`+ids[1]+`"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = do(t, srv, http.MethodGet, "/api/projects/"+proj.ID+"/outline", devToken, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var outline mcp.OutlineResponse
	require.NoError(t, json.Unmarshal(body, &outline))
	require.Len(t, outline.Objects, 2)
	assert.Equal(t, "2", outline.Objects[1].Label)

	resp, body = do(t, srv, http.MethodGet, "/api/projects/"+proj.ID+"/timeline.svg?view=month", devToken, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.Contains(body, []byte("<svg")))
	assert.Contains(t, string(body), `id="arrowhead"`)

	resp, body = do(t, srv, http.MethodPost, "/api/projects", devToken, `{"name":"Other"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var other struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &other))
	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		resp, _ = do(t, srv, method, "/api/projects/"+other.ID+"/objects/"+ids[0], devToken, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, "%s under a foreign project", method)
	}
	resp, _ = do(t, srv, http.MethodPatch, "/api/projects/"+other.ID+"/objects/"+ids[0], devToken, `{"version":1,"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = do(t, srv, http.MethodGet, "/api/projects/"+other.ID+"/objects/"+ids[0]+"/dependencies", devToken, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodDelete, "/api/projects/"+proj.ID+"/objects/"+ids[0], "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = do(t, srv, http.MethodDelete, "/api/projects/"+proj.ID+"/objects/"+ids[0], devToken, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = do(t, srv, http.MethodGet, "/api/projects/"+proj.ID+"/objects/"+ids[1], devToken, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var build struct {
		Number int `json:"number"`
	}
	require.NoError(t, json.Unmarshal(body, &build))
	assert.Equal(t, 1, build.Number, "renumbered after delete")
}
