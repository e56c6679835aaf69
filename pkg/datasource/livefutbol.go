package datasource

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/richard-senior/pronosticos/internal/logger"
	"github.com/richard-senior/pronosticos/pkg/util/podds"
)

// UnknownTeam stands in for a team name missing from the page
const UnknownTeam = "Unknown"

// datetime layouts seen in data-datetime attributes
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseFixturePage extracts matches from a fixture calendar page.
//
// The calendar is a div.module-gameplan whose first child div holds, in order,
// round headers (div.round-head) and match rows (div.match). Each match takes
// the round of the closest header above it.
func ParseFixturePage(r io.Reader) ([]podds.Match, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML: %w", err)
	}

	container := doc.Find("div.module-gameplan").First()
	if container.Length() == 0 {
		return nil, fmt.Errorf("could not find module-gameplan container")
	}

	wrapper := container.ChildrenFiltered("div").First()
	if wrapper.Length() == 0 {
		return nil, fmt.Errorf("could not find fixture list inside module-gameplan")
	}

	matches := make([]podds.Match, 0)
	currentRound := ""
	wrapper.Children().Each(func(i int, s *goquery.Selection) {
		switch {
		case s.HasClass("round-head"):
			currentRound = cleanText(s.Text())
		case s.HasClass("match"):
			matches = append(matches, parseMatchRow(s, currentRound))
		}
	})

	if len(matches) == 0 {
		logger.Warn("Fixture page contained no matches")
	}
	return matches, nil
}

func parseMatchRow(s *goquery.Selection, round string) podds.Match {
	date, kickoff := parseDatetime(s.AttrOr("data-datetime", ""))
	if kickoff == "" {
		kickoff = cleanText(s.Find("div.match-time").First().Text())
	}

	home := cleanText(s.Find("div.team-name-home").First().Text())
	if home == "" {
		home = UnknownTeam
	}
	away := cleanText(s.Find("div.team-name-away").First().Text())
	if away == "" {
		away = UnknownTeam
	}

	match := podds.NewMatch(round, date, kickoff, home, away)
	if h, a, ok := podds.ParseScore(s.Find("div.match-result").First().Text()); ok {
		match = match.WithScore(h, a)
	}
	return match
}

// parseDatetime splits an ISO timestamp into YYYY-MM-DD and HH:MM in the
// timestamp's own offset. Unparseable input gives empty strings.
func parseDatetime(value string) (string, string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", ""
	}
	for _, layout := range datetimeLayouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		if layout == "2006-01-02" {
			return t.Format("2006-01-02"), ""
		}
		return t.Format("2006-01-02"), t.Format("15:04")
	}
	logger.Debug("Unparseable match datetime", value)
	return "", ""
}

// cleanText collapses whitespace the way the page renders it
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
