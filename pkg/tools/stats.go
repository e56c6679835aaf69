package tools

import (
	"bytes"
	"context"

	"github.com/richard-senior/pronosticos/internal/app"
	"github.com/richard-senior/pronosticos/internal/logger"
	"github.com/richard-senior/pronosticos/pkg/datasource"
	"github.com/richard-senior/pronosticos/pkg/protocol"
)

func TeamRatesTool() protocol.Tool {
	return protocol.Tool{
		Name: "team_rates",
		Description: `
		Returns a team's scoring profile over its played matches: matches played at home and away,
		and the average goals scored and conceded overall, at home and away.
		These are the inputs of predict_match. The team name must match exactly.
		`,
		InputSchema: schema([]string{"league", "team"}, map[string]protocol.ToolProperty{
			"league": leagueProperty,
			"team":   {Type: "string", Description: "Team name"},
		}),
	}
}

func HandleTeamRates(ctx context.Context, a *app.App, params map[string]any) (any, error) {
	id, err := requireString(params, "league")
	if err != nil {
		return nil, err
	}
	team, err := requireString(params, "team")
	if err != nil {
		return nil, err
	}
	model, err := a.Model(ctx, id)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"league":        id,
		"leagueAverage": model.LeagueAverage(),
		"profile":       model.Rates(team),
	}, nil
}

func TeamStatisticsTool() protocol.Tool {
	return protocol.Tool{
		Name: "team_statistics",
		Description: `
		Returns a team's results split by venue: matches, average total goals, percentage of matches over each goal line,
		percentage where both teams scored and the win/draw/loss percentages.
		The team may be any part of its name.
		`,
		InputSchema: schema([]string{"league", "team"}, map[string]protocol.ToolProperty{
			"league": leagueProperty,
			"team":   {Type: "string", Description: "Team name or part of it"},
		}),
	}
}

func HandleTeamStatistics(ctx context.Context, a *app.App, params map[string]any) (any, error) {
	id, err := requireString(params, "league")
	if err != nil {
		return nil, err
	}
	team, err := requireString(params, "team")
	if err != nil {
		return nil, err
	}
	return a.TeamStatistics(ctx, id, team)
}

func LeagueStatisticsTool() protocol.Tool {
	return protocol.Tool{
		Name: "league_statistics",
		Description: `
		Returns league wide statistics: played and upcoming counts, average goals per match,
		the percentage of matches over and under each goal line, exact total goals and both teams scoring.
		`,
		InputSchema: schema([]string{"league"}, map[string]protocol.ToolProperty{
			"league": leagueProperty,
		}),
	}
}

func HandleLeagueStatistics(ctx context.Context, a *app.App, params map[string]any) (any, error) {
	id, err := requireString(params, "league")
	if err != nil {
		return nil, err
	}
	return a.Statistics(ctx, id)
}

func OddsComparisonTool() protocol.Tool {
	return protocol.Tool{
		Name: "odds_comparison",
		Description: `
		Prices every upcoming match of a league from how both teams did at the venue they play it:
		1X2, double chance, over 1.5 and 2.5, under 3.5, both teams to score and result with over/under 2.5.
		Probabilities are percentages and odds are fair decimal odds. 1X2 and double chance prices carry
		the range bookmakers usually quote and a verdict: VALOR above it, REVISAR near its top, NO otherwise.
		With filepath the comparison is also written there as CSV.
		`,
		InputSchema: schema([]string{"league"}, map[string]protocol.ToolProperty{
			"league":   leagueProperty,
			"filepath": {Type: "string", Description: "Optional absolute path of a CSV file to write the comparison to"},
		}),
	}
}

func HandleOddsComparison(ctx context.Context, a *app.App, params map[string]any) (any, error) {
	id, err := requireString(params, "league")
	if err != nil {
		return nil, err
	}
	comparisons, err := a.OddsComparison(ctx, id)
	if err != nil {
		return nil, err
	}
	outputPath := stringParam(params, "filepath")
	if outputPath == "" {
		return comparisons, nil
	}

	var buf bytes.Buffer
	if err := datasource.WriteOddsComparisonCSV(&buf, comparisons); err != nil {
		return nil, err
	}
	if err := writeExport(outputPath, buf.Bytes()); err != nil {
		return nil, err
	}
	logger.Info("Exported odds comparison to " + outputPath)
	return map[string]any{
		"location":    outputPath,
		"matches":     len(comparisons),
		"comparisons": comparisons,
	}, nil
}

func BacktestTool() protocol.Tool {
	return protocol.Tool{
		Name: "backtest",
		Description: `
		Measures how often the model would have been right on the league's played matches,
		for 1X2, over/under 2.5, both teams to score and double chance.
		Every played match is predicted from the whole season, including itself, so the figures are optimistic.
		Needs at least ten played matches.
		`,
		InputSchema: schema([]string{"league"}, map[string]protocol.ToolProperty{
			"league": leagueProperty,
		}),
	}
}

func HandleBacktest(ctx context.Context, a *app.App, params map[string]any) (any, error) {
	id, err := requireString(params, "league")
	if err != nil {
		return nil, err
	}
	return a.Backtest(ctx, id)
}
