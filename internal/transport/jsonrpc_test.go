package transport

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/rpggio/plantree/internal/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest(t *testing.T) {
	body := bytes.NewBufferString(`{"jsonrpc":"2.0","method":"test","params":{"a":1},"id":1}`)
	req, err := ParseRequest(body)
	require.NoError(t, err)
	require.Equal(t, "2.0", req.JSONRPC)
	require.Equal(t, "test", req.Method)
	require.Equal(t, json.RawMessage(`{"a":1}`), req.Params)
}

func TestParseRequest_Invalid(t *testing.T) {
	_, err := ParseRequest(bytes.NewBufferString(`{"jsonrpc":"2.0","id":1}`))
	require.ErrorIs(t, err, errInvalidRequest)

	_, err = ParseRequest(bytes.NewBufferString(`{"jsonrpc":`))
	require.ErrorIs(t, err, errParse)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, 1, ErrInvalidParams, "bad params", nil)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	require.Equal(t, ErrInvalidParams, resp.Error.Code)
	require.Equal(t, "bad params", resp.Error.Message)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestRPCCode(t *testing.T) {
	assert.Equal(t, ErrInvalidParams, rpcCode(mcp.CodeValidation))
	assert.Equal(t, ErrMethodNotFound, rpcCode(mcp.CodeUnknownMethod))
	assert.Equal(t, ErrAccessDenied, rpcCode(mcp.CodeAccessDenied))
	assert.Equal(t, ErrNotFound, rpcCode(mcp.CodeNotFound))
	assert.Equal(t, ErrConflict, rpcCode(mcp.CodeConflict))
	assert.Equal(t, ErrInternal, rpcCode(mcp.CodeStorage))
}
