package tools

import (
	"context"
	"fmt"

	"github.com/richard-senior/pronosticos/internal/app"
	"github.com/richard-senior/pronosticos/pkg/protocol"
	"github.com/richard-senior/pronosticos/pkg/util/podds"
)

func LeagueOverviewTool() protocol.Tool {
	return protocol.Tool{
		Name: "league_overview",
		Description: `
		Summarises the loaded fixtures of a league: how many matches are played and upcoming,
		the teams, the rounds, the dates with upcoming matches and the dates with results.
		Use this to find valid team names, rounds and dates before calling other tools.
		`,
		InputSchema: schema([]string{"league"}, map[string]protocol.ToolProperty{
			"league": leagueProperty,
		}),
	}
}

func HandleLeagueOverview(ctx context.Context, a *app.App, params map[string]any) (any, error) {
	id, err := requireString(params, "league")
	if err != nil {
		return nil, err
	}
	repo, err := a.Repository(ctx, id)
	if err != nil {
		return nil, err
	}
	model := podds.NewModel(repo, a.Session().Config())
	return map[string]any{
		"league":        id,
		"matches":       repo.Len(),
		"played":        len(repo.Played()),
		"upcoming":      len(repo.Upcoming()),
		"leagueAverage": model.LeagueAverage(),
		"teams":         repo.Teams(),
		"rounds":        repo.Rounds(),
		"datesUpcoming": repo.DatesUpcoming(),
		"datesPlayed":   repo.DatesPlayed(),
	}, nil
}

func ListFixturesTool() protocol.Tool {
	return protocol.Tool{
		Name: "list_fixtures",
		Description: `
		Lists the matches of a league. Filters combine:
		- status: 'played', 'upcoming' or 'all' (default)
		- team: any part of a team name, with venue 'home', 'away' or 'either'
		- round: an exact round label as shown by league_overview
		- date: YYYY-MM-DD
		`,
		InputSchema: schema([]string{"league"}, map[string]protocol.ToolProperty{
			"league": leagueProperty,
			"status": {Type: "string", Description: "played, upcoming or all", Enum: []string{"all", "played", "upcoming"}},
			"team":   {Type: "string", Description: "Team name or part of it"},
			"venue":  {Type: "string", Description: "Where the team plays", Enum: []string{"either", "home", "away"}},
			"round":  {Type: "string", Description: "Round label"},
			"date":   {Type: "string", Description: "Match date as YYYY-MM-DD"},
		}),
	}
}

func HandleListFixtures(ctx context.Context, a *app.App, params map[string]any) (any, error) {
	id, err := requireString(params, "league")
	if err != nil {
		return nil, err
	}
	repo, err := a.Repository(ctx, id)
	if err != nil {
		return nil, err
	}

	var matches []podds.Match
	if team := stringParam(params, "team"); team != "" {
		venue, err := podds.ParseVenue(stringParam(params, "venue"))
		if err != nil {
			return nil, err
		}
		matches = repo.MatchesForTeam(team, venue)
	} else {
		matches = repo.All()
	}

	status := stringParam(params, "status")
	round := stringParam(params, "round")
	date := stringParam(params, "date")
	switch status {
	case "", "all", "played", "upcoming":
	default:
		return nil, fmt.Errorf("status must be played, upcoming or all, got: %s", status)
	}

	out := make([]podds.Match, 0, len(matches))
	for _, m := range matches {
		if status == "played" && !m.IsPlayed() {
			continue
		}
		if status == "upcoming" && !m.IsUpcoming() {
			continue
		}
		if round != "" && m.RoundLabel() != round {
			continue
		}
		if date != "" && m.DateValue() != date {
			continue
		}
		out = append(out, m)
	}
	return map[string]any{"league": id, "count": len(out), "matches": out}, nil
}
