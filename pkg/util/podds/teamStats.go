package podds

// TeamScoringProfile summarises a team's played matches.
// Averages over an empty subset are zero.
type TeamScoringProfile struct {
	Team                 string  `json:"team"`
	MatchesPlayed        int     `json:"matchesPlayed"`
	HomeMatches          int     `json:"homeMatches"`
	AwayMatches          int     `json:"awayMatches"`
	GoalsScoredAvg       float64 `json:"goalsScoredAvg"`
	GoalsConcededAvg     float64 `json:"goalsConcededAvg"`
	HomeGoalsScoredAvg   float64 `json:"homeGoalsScoredAvg"`
	HomeGoalsConcededAvg float64 `json:"homeGoalsConcededAvg"`
	AwayGoalsScoredAvg   float64 `json:"awayGoalsScoredAvg"`
	AwayGoalsConcededAvg float64 `json:"awayGoalsConcededAvg"`
}

// CalculateTeamProfile computes the scoring profile of team over the played matches.
// Team names are compared exactly; upcoming matches are ignored.
func CalculateTeamProfile(matches []Match, team string) TeamScoringProfile {
	profile := TeamScoringProfile{Team: team}

	var homeScored, homeConceded, awayScored, awayConceded int
	for _, m := range matches {
		if !m.IsPlayed() {
			continue
		}
		if m.HomeTeam == team {
			profile.HomeMatches++
			homeScored += *m.HomeGoals
			homeConceded += *m.AwayGoals
		}
		if m.AwayTeam == team {
			profile.AwayMatches++
			awayScored += *m.AwayGoals
			awayConceded += *m.HomeGoals
		}
	}

	profile.MatchesPlayed = profile.HomeMatches + profile.AwayMatches
	if profile.MatchesPlayed == 0 {
		return profile
	}

	profile.GoalsScoredAvg = float64(homeScored+awayScored) / float64(profile.MatchesPlayed)
	profile.GoalsConcededAvg = float64(homeConceded+awayConceded) / float64(profile.MatchesPlayed)

	if profile.HomeMatches > 0 {
		profile.HomeGoalsScoredAvg = float64(homeScored) / float64(profile.HomeMatches)
		profile.HomeGoalsConcededAvg = float64(homeConceded) / float64(profile.HomeMatches)
	}
	if profile.AwayMatches > 0 {
		profile.AwayGoalsScoredAvg = float64(awayScored) / float64(profile.AwayMatches)
		profile.AwayGoalsConcededAvg = float64(awayConceded) / float64(profile.AwayMatches)
	}

	return profile
}

// CalculateLeagueAverage returns the mean goals per team per played match,
// or defaultAverage when nothing has been played.
func CalculateLeagueAverage(matches []Match, defaultAverage float64) float64 {
	played := 0
	goals := 0
	for _, m := range matches {
		if !m.IsPlayed() {
			continue
		}
		played++
		goals += m.TotalGoals()
	}
	if played == 0 {
		return defaultAverage
	}
	return float64(goals) / float64(played*2)
}
