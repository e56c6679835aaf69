package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/richard-senior/pronosticos/internal/app/apptest"
	"github.com/richard-senior/pronosticos/pkg/protocol"
	"github.com/richard-senior/pronosticos/pkg/transport"
	"github.com/richard-senior/pronosticos/pkg/util/podds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(transport.NewStreamTransport(strings.NewReader(""), io.Discard), apptest.New(t, apptest.NewSource()))
}

func request(t *testing.T, method string, params any, id any) *protocol.JsonRpcRequest {
	t.Helper()
	req, err := protocol.NewJsonRpcRequest(method, params, id)
	require.NoError(t, err)
	return req
}

// toolText unwraps the text content of a tools/call result
func toolText(t *testing.T, resp *protocol.JsonRpcResponse) string {
	t.Helper()
	require.Nil(t, resp.Error)
	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	require.Len(t, result.Content, 1)
	assert.Equal(t, "text", result.Content[0].Type)
	return result.Content[0].Text
}

func TestInitialize(t *testing.T) {
	s := newTestServer(t)

	resp := s.HandleRequest(request(t, "initialize", map[string]any{"protocolVersion": "2025-03-26"}, 1))
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	var result map[string]any
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.Equal(t, "2025-03-26", result["protocolVersion"])
	assert.Equal(t, "pronosticos", result["serverInfo"].(map[string]any)["name"])

	resp = s.HandleRequest(request(t, "initialize", nil, 2))
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.Equal(t, defaultProtocolVersion, result["protocolVersion"])
}

func TestNotificationsGetNoResponse(t *testing.T) {
	s := newTestServer(t)
	assert.Nil(t, s.HandleRequest(request(t, "notifications/initialized", nil, nil)))

	resp := s.HandleRequest(request(t, "ping", nil, 3))
	require.NotNil(t, resp)
	assert.JSONEq(t, `{}`, string(resp.Result))
}

func TestToolsList(t *testing.T) {
	s := newTestServer(t)

	resp := s.HandleRequest(request(t, "tools/list", nil, 1))
	require.Nil(t, resp.Error)

	var result protocol.ToolsResponse
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	names := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
		assert.Equal(t, "object", tool.InputSchema.Type, tool.Name)
	}
	assert.Contains(t, names, "predict_match")
	assert.Contains(t, names, "backtest")
	assert.Contains(t, names, "list_leagues")
	assert.Len(t, names, 16)
}

func TestToolsCallPredictMatch(t *testing.T) {
	s := newTestServer(t)

	resp := s.HandleRequest(request(t, "tools/call", map[string]any{
		"name":      "predict_match",
		"arguments": map[string]any{"league": apptest.LeagueID, "home": "Alaves", "away": "Betis"},
	}, 5))

	var prediction podds.Prediction
	require.NoError(t, json.Unmarshal([]byte(toolText(t, resp)), &prediction))
	assert.Equal(t, "Alaves", prediction.HomeTeam)
	assert.InDelta(t, 8.0/3.0, prediction.ExpectedHomeGoals, 1e-9)
	assert.Len(t, prediction.TopScores, 5)
}

func TestToolsCallPrefixedName(t *testing.T) {
	s := newTestServer(t)
	resp := s.HandleRequest(request(t, "tools/call", map[string]any{"name": "mcp___list_leagues"}, 6))
	assert.Contains(t, toolText(t, resp), apptest.LeagueID)
}

func TestInvokeTool(t *testing.T) {
	s := newTestServer(t)
	resp := s.HandleRequest(request(t, "invoke_tool", map[string]any{
		"name":       "league_statistics",
		"parameters": map[string]any{"league": apptest.LeagueID},
	}, 7))
	require.Nil(t, resp.Error)

	var stats podds.LeagueStatistics
	require.NoError(t, json.Unmarshal(resp.Result, &stats))
	assert.Equal(t, 12, stats.Played)
}

func TestDirectToolMethod(t *testing.T) {
	s := newTestServer(t)
	resp := s.HandleRequest(request(t, "team_rates", map[string]any{"league": apptest.LeagueID, "team": "Celta"}, 8))
	require.Nil(t, resp.Error)
	assert.Contains(t, string(resp.Result), `"homeGoalsScoredAvg":2`)
}

func TestErrorCodes(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		req  *protocol.JsonRpcRequest
		code int
	}{
		{"unknown method", request(t, "resources/list", nil, 1), protocol.ErrMethodNotFound},
		{"unknown tool", request(t, "tools/call", map[string]any{"name": "horoscope"}, 2), protocol.ErrMethodNotFound},
		{"unknown league", request(t, "tools/call", map[string]any{
			"name": "backtest", "arguments": map[string]any{"league": "segunda"}}, 3), protocol.ErrNotFound},
		{"unknown team", request(t, "tools/call", map[string]any{
			"name": "predict_match", "arguments": map[string]any{"league": apptest.LeagueID, "home": "Racing", "away": "Betis"}}, 4), protocol.ErrNotFound},
		{"missing argument", request(t, "tools/call", map[string]any{
			"name": "predict_match", "arguments": map[string]any{"league": apptest.LeagueID}}, 5), protocol.ErrToolExecutionFailed},
		{"bad invoke", request(t, "invoke_tool", map[string]any{"parameters": map[string]any{}}, 6), protocol.ErrInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.HandleRequest(tt.req)
			require.NotNil(t, resp)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code, resp.Error.Message)
			assert.Equal(t, tt.req.ID, resp.ID)
		})
	}
}

func TestErrorCodeMapping(t *testing.T) {
	assert.Equal(t, protocol.ErrUnprocessable, errorCode(podds.ErrNoReport))
	assert.Equal(t, protocol.ErrUnprocessable, errorCode(&podds.InsufficientHistoryError{Team: "x", MatchesPlayed: 1, Required: 3}))
	assert.Equal(t, protocol.ErrNotFound, errorCode(&podds.InsufficientHistoryError{Team: "x"}))
	assert.Equal(t, protocol.ErrToolExecutionFailed, errorCode(errors.New("boom")))
}

func TestProcessRequestsOverStream(t *testing.T) {
	input := `{"jsonrpc":"2.0","method":"initialize","id":1,"params":{}}
{"jsonrpc":"2.0","method":"notifications/initialized"}
{"jsonrpc":"2.0","method":"tools/list","id":2}
`
	var out bytes.Buffer
	a := apptest.New(t, apptest.NewSource())
	s := NewServer(transport.NewStreamTransport(strings.NewReader(input), &out), a)

	err := s.ProcessRequests()
	assert.ErrorIs(t, err, io.EOF)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	first, err := protocol.ParseJsonRpcResponse([]byte(lines[0]))
	require.NoError(t, err)
	assert.Equal(t, float64(1), first.ID)
	second, err := protocol.ParseJsonRpcResponse([]byte(lines[1]))
	require.NoError(t, err)
	assert.Equal(t, float64(2), second.ID)
	assert.Contains(t, string(second.Result), "predict_upcoming")
}
