package tools

import (
	"context"

	"github.com/richard-senior/pronosticos/internal/app"
	"github.com/richard-senior/pronosticos/internal/logger"
	"github.com/richard-senior/pronosticos/pkg/protocol"
)

func ListLeaguesTool() protocol.Tool {
	return protocol.Tool{
		Name: "list_leagues",
		Description: `
		Lists the football leagues pronosticos knows about, with the url their fixtures are read from.
		Use the returned id with every other tool.
		`,
		InputSchema: schema(nil, nil),
	}
}

func HandleListLeagues(ctx context.Context, a *app.App, params map[string]any) (any, error) {
	leagues, err := a.Leagues().List()
	if err != nil {
		return nil, err
	}
	loaded := make(map[string]bool)
	for _, id := range a.Session().Competitions() {
		loaded[id] = true
	}

	out := make([]map[string]any, 0, len(leagues))
	for _, l := range leagues {
		out = append(out, map[string]any{
			"id":     l.ID,
			"name":   l.Name,
			"url":    l.URL,
			"loaded": loaded[l.ID],
		})
	}
	return map[string]any{"leagues": out}, nil
}

func AddLeagueTool() protocol.Tool {
	return protocol.Tool{
		Name: "add_league",
		Description: `
		Registers a new league. The id is derived from the name (lower case, accents removed, spaces as underscores).
		The url is a livefutbol style fixtures page or the path of a CSV export.
		`,
		InputSchema: schema([]string{"name", "url"}, map[string]protocol.ToolProperty{
			"name": {Type: "string", Description: "Display name, ie. 'Eredivisie'"},
			"url":  {Type: "string", Description: "Fixtures page url or CSV path"},
		}),
	}
}

func HandleAddLeague(ctx context.Context, a *app.App, params map[string]any) (any, error) {
	name, err := requireString(params, "name")
	if err != nil {
		return nil, err
	}
	url, err := requireString(params, "url")
	if err != nil {
		return nil, err
	}
	return a.Leagues().Add(name, url)
}

func UpdateLeagueTool() protocol.Tool {
	return protocol.Tool{
		Name:        "update_league",
		Description: "Changes the display name and/or fixtures url of a league. Omitted values are left unchanged.",
		InputSchema: schema([]string{"league"}, map[string]protocol.ToolProperty{
			"league": leagueProperty,
			"name":   {Type: "string", Description: "New display name"},
			"url":    {Type: "string", Description: "New fixtures page url or CSV path"},
		}),
	}
}

func HandleUpdateLeague(ctx context.Context, a *app.App, params map[string]any) (any, error) {
	id, err := requireString(params, "league")
	if err != nil {
		return nil, err
	}
	return a.Leagues().Update(id, stringParam(params, "name"), stringParam(params, "url"))
}

func RemoveLeagueTool() protocol.Tool {
	return protocol.Tool{
		Name:        "remove_league",
		Description: "Removes a league together with its stored fixtures.",
		InputSchema: schema([]string{"league"}, map[string]protocol.ToolProperty{
			"league": leagueProperty,
		}),
	}
}

func HandleRemoveLeague(ctx context.Context, a *app.App, params map[string]any) (any, error) {
	id, err := requireString(params, "league")
	if err != nil {
		return nil, err
	}
	if err := a.RemoveLeague(id); err != nil {
		return nil, err
	}
	return map[string]any{"removed": id}, nil
}

func RefreshFixturesTool() protocol.Tool {
	return protocol.Tool{
		Name: "refresh_fixtures",
		Description: `
		Downloads the latest fixtures and results of a league and replaces the stored copy.
		Omit the league to refresh every league.
		This should be used when the user mentions results that pronosticos does not yet know.
		`,
		InputSchema: schema(nil, map[string]protocol.ToolProperty{
			"league": leagueProperty,
		}),
	}
}

func HandleRefreshFixtures(ctx context.Context, a *app.App, params map[string]any) (any, error) {
	id := stringParam(params, "league")
	if id != "" {
		return a.Refresh(ctx, id)
	}

	results, err := a.RefreshAll(ctx)
	out := map[string]any{"refreshed": results}
	if err != nil {
		logger.Warn("Some leagues failed to refresh", err)
		out["errors"] = err.Error()
	}
	return out, nil
}
