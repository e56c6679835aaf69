package tools

import (
	"context"

	"github.com/richard-senior/pronosticos/internal/app"
	"github.com/richard-senior/pronosticos/pkg/protocol"
)

func PredictMatchTool() protocol.Tool {
	return protocol.Tool{
		Name: "predict_match",
		Description: `
		Predicts a football match from both teams' home and away scoring records using a Poisson model.
		Returns expected goals, 1X2 probabilities with fair odds, over/under 0.5 to 4.5, both teams to score,
		double chance, win and both score, asian handicap +/-1.5, the most likely score and the top five scores.
		Both teams need at least three played matches. Team names must match exactly (see league_overview).
		`,
		InputSchema: schema([]string{"league", "home", "away"}, map[string]protocol.ToolProperty{
			"league": leagueProperty,
			"home":   {Type: "string", Description: "Home team name"},
			"away":   {Type: "string", Description: "Away team name"},
		}),
	}
}

func HandlePredictMatch(ctx context.Context, a *app.App, params map[string]any) (any, error) {
	id, err := requireString(params, "league")
	if err != nil {
		return nil, err
	}
	home, err := requireString(params, "home")
	if err != nil {
		return nil, err
	}
	away, err := requireString(params, "away")
	if err != nil {
		return nil, err
	}
	return a.Predict(ctx, id, home, away)
}

func PredictUpcomingTool() protocol.Tool {
	return protocol.Tool{
		Name: "predict_upcoming",
		Description: `
		Predicts every upcoming match of a league, optionally only those of a round or a date.
		Matches whose teams have too little history are listed with the reason they were skipped.
		`,
		InputSchema: schema([]string{"league"}, map[string]protocol.ToolProperty{
			"league": leagueProperty,
			"round":  {Type: "string", Description: "Round label"},
			"date":   {Type: "string", Description: "Match date as YYYY-MM-DD"},
		}),
	}
}

func HandlePredictUpcoming(ctx context.Context, a *app.App, params map[string]any) (any, error) {
	id, err := requireString(params, "league")
	if err != nil {
		return nil, err
	}
	predictions, err := a.PredictUpcoming(ctx, id, stringParam(params, "round"), stringParam(params, "date"))
	if err != nil {
		return nil, err
	}

	skipped := 0
	for _, p := range predictions {
		if p.Prediction == nil {
			skipped++
		}
	}
	return map[string]any{
		"league":      id,
		"count":       len(predictions),
		"skipped":     skipped,
		"predictions": predictions,
	}, nil
}
