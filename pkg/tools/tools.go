// Package tools exposes pronosticos operations as MCP tools.
// Each tool is a pair: a function describing it and a handler executing it.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/richard-senior/pronosticos/internal/app"
	"github.com/richard-senior/pronosticos/pkg/protocol"
)

// Handler executes a tool call against the application
type Handler func(ctx context.Context, a *app.App, params map[string]any) (any, error)

// Registration pairs a tool description with its handler
type Registration struct {
	Tool    protocol.Tool
	Handler Handler
}

// All returns every pronosticos tool
func All() []Registration {
	return []Registration{
		{ListLeaguesTool(), HandleListLeagues},
		{AddLeagueTool(), HandleAddLeague},
		{UpdateLeagueTool(), HandleUpdateLeague},
		{RemoveLeagueTool(), HandleRemoveLeague},
		{RefreshFixturesTool(), HandleRefreshFixtures},
		{LeagueOverviewTool(), HandleLeagueOverview},
		{ListFixturesTool(), HandleListFixtures},
		{PredictMatchTool(), HandlePredictMatch},
		{PredictUpcomingTool(), HandlePredictUpcoming},
		{TeamRatesTool(), HandleTeamRates},
		{TeamStatisticsTool(), HandleTeamStatistics},
		{LeagueStatisticsTool(), HandleLeagueStatistics},
		{OddsComparisonTool(), HandleOddsComparison},
		{BacktestTool(), HandleBacktest},
		{ExportCSVTool(), HandleExportCSV},
		{FixturePageMarkdownTool(), HandleFixturePageMarkdown},
	}
}

// ParamsMap converts raw tool arguments to a map
func ParamsMap(params any) (map[string]any, error) {
	if params == nil {
		return map[string]any{}, nil
	}
	if raw, ok := params.(json.RawMessage); ok {
		paramsMap := map[string]any{}
		if len(raw) == 0 || string(raw) == "null" {
			return paramsMap, nil
		}
		if err := json.Unmarshal(raw, &paramsMap); err != nil {
			return nil, fmt.Errorf("couldn't format the parameters as a map of strings: %w", err)
		}
		return paramsMap, nil
	}
	paramsMap, ok := params.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("couldn't format the parameters as a map of strings")
	}
	return paramsMap, nil
}

// stringParam returns a trimmed string argument or "" when absent
func stringParam(params map[string]any, name string) string {
	switch v := params[name].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func requireString(params map[string]any, name string) (string, error) {
	value := stringParam(params, name)
	if value == "" {
		return "", fmt.Errorf("no %s parameter was sent", name)
	}
	return value, nil
}

// intParam reads a numeric argument sent either as a JSON number or a string
func intParam(params map[string]any, name string, fallback int) (int, error) {
	switch v := params[name].(type) {
	case nil:
		return fallback, nil
	case float64:
		return int(v), nil
	case string:
		if strings.TrimSpace(v) == "" {
			return fallback, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%s must be a whole number, got: %s", name, v)
		}
		return n, nil
	}
	return 0, fmt.Errorf("%s must be a whole number", name)
}

// leagueProperty is shared by every tool that works on one competition
var leagueProperty = protocol.ToolProperty{
	Type:        "string",
	Description: "The league id as returned by list_leagues, ie. 'liga_esp' or 'premier'",
}

func schema(required []string, properties map[string]protocol.ToolProperty) protocol.InputSchema {
	if required == nil {
		required = []string{}
	}
	return protocol.InputSchema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}
