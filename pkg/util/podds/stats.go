package podds

import "strings"

// GoalLinePercentage is the share of played matches over and under a goals line
type GoalLinePercentage struct {
	Line  float64 `json:"line"`
	Over  float64 `json:"over"`
	Under float64 `json:"under"`
}

// ExactGoalsPercentage is the share of played matches with exactly Goals total goals
type ExactGoalsPercentage struct {
	Goals      int     `json:"goals"`
	Percentage float64 `json:"percentage"`
}

// LeagueStatistics are observed frequencies over a whole competition.
// Percentages are 0..100 and zero when nothing has been played.
type LeagueStatistics struct {
	Matches             int                    `json:"matches"`
	Played              int                    `json:"played"`
	Upcoming            int                    `json:"upcoming"`
	PercentagePlayed    float64                `json:"percentagePlayed"`
	AverageGoals        float64                `json:"averageGoals"`
	BothScorePercentage float64                `json:"bothScorePercentage"`
	GoalLines           []GoalLinePercentage   `json:"goalLines"`
	ExactGoals          []ExactGoalsPercentage `json:"exactGoals"`
}

// VenueStatistics are a team's observed frequencies at one venue (or both)
type VenueStatistics struct {
	Matches             int                  `json:"matches"`
	AverageGoals        float64              `json:"averageGoals"` // both sides' goals
	BothScorePercentage float64              `json:"bothScorePercentage"`
	WinPercentage       float64              `json:"winPercentage"`
	DrawPercentage      float64              `json:"drawPercentage"`
	LossPercentage      float64              `json:"lossPercentage"`
	GoalLines           []GoalLinePercentage `json:"goalLines"`
}

// TeamStatistics groups a team's frequencies overall, at home and away
type TeamStatistics struct {
	Team     string          `json:"team"`
	Overall  VenueStatistics `json:"overall"`
	Home     VenueStatistics `json:"home"`
	Away     VenueStatistics `json:"away"`
	Upcoming int             `json:"upcoming"`
}

// CalculateLeagueStatistics computes competition-wide frequencies for the given N.5 lines
// and exact totals 0..maxExact.
func CalculateLeagueStatistics(repo *Repository, lines []int, maxExact int) LeagueStatistics {
	played := repo.Played()
	stats := LeagueStatistics{
		Matches:  repo.Len(),
		Played:   len(played),
		Upcoming: repo.Len() - len(played),
	}
	stats.PercentagePlayed = percentage(stats.Played, stats.Matches)
	stats.AverageGoals = averageGoals(played)
	stats.BothScorePercentage = percentage(countWhere(played, Match.BothScored), len(played))
	stats.GoalLines = goalLines(played, lines)

	stats.ExactGoals = make([]ExactGoalsPercentage, 0, maxExact+1)
	for n := 0; n <= maxExact; n++ {
		exact := n
		count := countWhere(played, func(m Match) bool { return m.TotalGoals() == exact })
		stats.ExactGoals = append(stats.ExactGoals, ExactGoalsPercentage{Goals: n, Percentage: percentage(count, len(played))})
	}
	return stats
}

// CalculateTeamStatistics computes a team's frequencies for the given N.5 lines.
// The team is matched by substring, like Repository.MatchesForTeam.
func CalculateTeamStatistics(repo *Repository, team string, lines []int) TeamStatistics {
	return TeamStatistics{
		Team:     team,
		Overall:  venueStatistics(repo.PlayedForTeam(team, VenueEither), team, VenueEither, lines),
		Home:     venueStatistics(repo.PlayedForTeam(team, VenueHome), team, VenueHome, lines),
		Away:     venueStatistics(repo.PlayedForTeam(team, VenueAway), team, VenueAway, lines),
		Upcoming: len(repo.UpcomingForTeam(team)),
	}
}

func venueStatistics(played []Match, team string, venue Venue, lines []int) VenueStatistics {
	stats := VenueStatistics{
		Matches:             len(played),
		AverageGoals:        averageGoals(played),
		BothScorePercentage: percentage(countWhere(played, Match.BothScored), len(played)),
		GoalLines:           goalLines(played, lines),
	}

	var wins, draws, losses int
	for _, m := range played {
		switch teamOutcome(m, team, venue) {
		case ResultHome:
			wins++
		case ResultDraw:
			draws++
		case ResultAway:
			losses++
		}
	}
	stats.WinPercentage = percentage(wins, len(played))
	stats.DrawPercentage = percentage(draws, len(played))
	stats.LossPercentage = percentage(losses, len(played))
	return stats
}

// teamOutcome reports the result from the team's point of view:
// ResultHome for a win, ResultDraw for a draw, ResultAway for a loss.
func teamOutcome(m Match, team string, venue Venue) string {
	result := m.Result()
	if result == ResultDraw {
		return ResultDraw
	}
	asHome := venue != VenueAway && strings.Contains(m.HomeTeam, team)
	if !asHome {
		if result == ResultAway {
			return ResultHome
		}
		return ResultAway
	}
	return result
}

func goalLines(played []Match, lines []int) []GoalLinePercentage {
	out := make([]GoalLinePercentage, 0, len(lines))
	for _, line := range lines {
		n := line
		over := countWhere(played, func(m Match) bool { return m.TotalGoals() > n })
		out = append(out, GoalLinePercentage{
			Line:  float64(n) + 0.5,
			Over:  percentage(over, len(played)),
			Under: percentage(len(played)-over, len(played)),
		})
	}
	return out
}

func averageGoals(played []Match) float64 {
	if len(played) == 0 {
		return 0
	}
	goals := 0
	for _, m := range played {
		goals += m.TotalGoals()
	}
	return float64(goals) / float64(len(played))
}

func countWhere(matches []Match, keep func(Match) bool) int {
	count := 0
	for _, m := range matches {
		if keep(m) {
			count++
		}
	}
	return count
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}
