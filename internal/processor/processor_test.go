package processor

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/richard-senior/pronosticos/internal/app/apptest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantTool string
		wantArgs map[string]any
		wantErr  bool
	}{
		{"tool only", "list_leagues", "list_leagues", map[string]any{}, false},
		{"arguments", "predict_match league=liga_esp home=Betis away=Celta", "predict_match",
			map[string]any{"league": "liga_esp", "home": "Betis", "away": "Celta"}, false},
		{"quoted values", `predict_match home='Real Madrid' away="Atletico de Madrid"`, "predict_match",
			map[string]any{"home": "Real Madrid", "away": "Atletico de Madrid"}, false},
		{"extra whitespace", "  backtest \t league=premier  ", "backtest", map[string]any{"league": "premier"}, false},
		{"value with equals", "list_fixtures date=a=b", "list_fixtures", map[string]any{"date": "a=b"}, false},
		{"empty", "   ", "", nil, true},
		{"not key value", "predict_match Betis", "", nil, true},
		{"empty key", "predict_match =Betis", "", nil, true},
		{"unterminated quote", "predict_match home='Real", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool, args, err := ParseQuery(tt.query)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTool, tool)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestProcessRequestListsTools(t *testing.T) {
	a := apptest.New(t, apptest.NewSource())

	for _, input := range []string{`{"requestId":"r1"}`, `{"tool":"list_tools","requestId":"r1"}`} {
		body, err := ProcessRequest(context.Background(), a, []byte(input))
		require.NoError(t, err)

		var resp struct {
			RequestID string     `json:"requestId"`
			Tool      string     `json:"tool"`
			Result    []ToolInfo `json:"result"`
		}
		require.NoError(t, json.Unmarshal(body, &resp))
		assert.Equal(t, "r1", resp.RequestID)
		assert.Equal(t, "list_tools", resp.Tool)
		assert.Len(t, resp.Result, 16)
		for _, info := range resp.Result {
			assert.NotContains(t, info.Description, "\n", info.Name)
		}
	}
}

func TestProcessRequestQuery(t *testing.T) {
	a := apptest.New(t, apptest.NewSource())

	body, err := ProcessRequest(context.Background(), a,
		[]byte(`{"query":"predict_match league=liga_esp home=Alaves away=Betis","requestId":"q"}`))
	require.NoError(t, err)

	var resp struct {
		Tool   string `json:"tool"`
		Result struct {
			HomeTeam          string  `json:"homeTeam"`
			ExpectedHomeGoals float64 `json:"expectedHomeGoals"`
			ExpectedAwayGoals float64 `json:"expectedAwayGoals"`
		} `json:"result"`
		Metadata map[string]any `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "predict_match", resp.Tool)
	assert.Equal(t, "Alaves", resp.Result.HomeTeam)
	assert.InDelta(t, 8.0/3.0, resp.Result.ExpectedHomeGoals, 1e-9)
	assert.InDelta(t, 2.0/3.0, resp.Result.ExpectedAwayGoals, 1e-9)
	assert.Equal(t, "1.0.0", resp.Metadata["version"])
}

func TestProcessRequestArgumentsOverrideQuery(t *testing.T) {
	a := apptest.New(t, apptest.NewSource())

	body, err := ProcessRequest(context.Background(), a,
		[]byte(`{"query":"team_rates league=premier team=Nobody","arguments":{"league":"liga_esp","team":"Celta"}}`))
	require.NoError(t, err)
	assert.Contains(t, string(body), `"homeGoalsScoredAvg": 2`)
}

func TestProcessRequestErrors(t *testing.T) {
	a := apptest.New(t, apptest.NewSource())

	tests := []struct {
		name     string
		input    string
		wantCode string
	}{
		{"invalid json", `{"tool":`, "invalid_request"},
		{"bad query", `{"query":"predict_match 'open"}`, "invalid_request"},
		{"unknown tool", `{"tool":"horoscope"}`, "unknown_tool"},
		{"unknown league", `{"tool":"backtest","arguments":{"league":"segunda"}}`, "league_not_found"},
		{"unknown team", `{"tool":"predict_match","arguments":{"league":"liga_esp","home":"Racing","away":"Betis"}}`, "unknown_team"},
		{"missing argument", `{"tool":"predict_match","arguments":{"league":"liga_esp"}}`, "tool_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := ProcessRequest(context.Background(), a, []byte(tt.input))
			assert.ErrorIs(t, err, ErrRequestFailed)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(body, &resp))
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}
