package transport

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/richard-senior/pronosticos/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRequestConcatenatedMessages(t *testing.T) {
	input := `{"jsonrpc":"2.0","method":"initialize","id":1,"params":{"protocolVersion":"2024-11-05"}}` +
		"\n\n  " +
		`{"jsonrpc":"2.0","method":"tools/call","id":"b","params":{"name":"predict_match","arguments":{"home":"Betis {B}","away":"Sevilla \"FC\""}}}` +
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`

	tr := NewStreamTransport(strings.NewReader(input), io.Discard)

	first, err := tr.ReadRequest()
	require.NoError(t, err)
	assert.Equal(t, "initialize", first.Method)
	assert.Equal(t, float64(1), first.ID)

	second, err := tr.ReadRequest()
	require.NoError(t, err)
	assert.Equal(t, "tools/call", second.Method)
	var params struct {
		Arguments map[string]string `json:"arguments"`
	}
	require.NoError(t, json.Unmarshal(second.Params, &params))
	assert.Equal(t, "Betis {B}", params.Arguments["home"])
	assert.Equal(t, `Sevilla "FC"`, params.Arguments["away"])

	third, err := tr.ReadRequest()
	require.NoError(t, err)
	assert.True(t, third.IsNotification())

	_, err = tr.ReadRequest()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadRequestTruncated(t *testing.T) {
	tr := NewStreamTransport(strings.NewReader(`{"jsonrpc":"2.0","method":"ping"`), io.Discard)
	_, err := tr.ReadRequest()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadRequestWrongVersion(t *testing.T) {
	tr := NewStreamTransport(strings.NewReader(`{"jsonrpc":"1.0","method":"ping","id":1}`), io.Discard)
	_, err := tr.ReadRequest()
	assert.Error(t, err)
}

func TestWriteResponse(t *testing.T) {
	var out bytes.Buffer
	tr := NewStreamTransport(strings.NewReader(""), &out)

	response, err := protocol.NewJsonRpcResponse(map[string]string{"status": "ok"}, 7)
	require.NoError(t, err)
	require.NoError(t, tr.WriteResponse(response))
	require.NoError(t, tr.WriteResponse(protocol.NewJsonRpcErrorResponse(protocol.ErrMethodNotFound, "nope", nil, 8)))

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	parsed, err := protocol.ParseJsonRpcResponse([]byte(lines[0]))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, string(parsed.Result))
	assert.Equal(t, float64(7), parsed.ID)

	parsed, err = protocol.ParseJsonRpcResponse([]byte(lines[1]))
	require.NoError(t, err)
	require.NotNil(t, parsed.Error)
	assert.Equal(t, protocol.ErrMethodNotFound, parsed.Error.Code)
}
