package podds

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// doubleRoundRobin plays every pairing home and away with the same score
func doubleRoundRobin(teams []string, homeGoals, awayGoals int) []Match {
	matches := make([]Match, 0)
	for _, home := range teams {
		for _, away := range teams {
			if home == away {
				continue
			}
			matches = append(matches, NewMatch("Jornada 1", "2024-08-18", "", home, away).WithScore(homeGoals, awayGoals))
		}
	}
	return matches
}

func TestCalculateTeamProfile(t *testing.T) {
	matches := []Match{
		NewMatch("", "", "", "Getafe", "Cadiz").WithScore(3, 1),
		NewMatch("", "", "", "Getafe", "Elche").WithScore(1, 1),
		NewMatch("", "", "", "Cadiz", "Getafe").WithScore(2, 0),
		NewMatch("", "", "", "Getafe CF B", "Cadiz").WithScore(5, 0),
		NewMatch("", "", "", "Getafe", "Elche"),
	}

	profile := CalculateTeamProfile(matches, "Getafe")
	assert.Equal(t, 3, profile.MatchesPlayed)
	assert.Equal(t, 2, profile.HomeMatches)
	assert.Equal(t, 1, profile.AwayMatches)
	assert.InDelta(t, 2.0, profile.HomeGoalsScoredAvg, epsilon)
	assert.InDelta(t, 1.0, profile.HomeGoalsConcededAvg, epsilon)
	assert.InDelta(t, 0.0, profile.AwayGoalsScoredAvg, epsilon)
	assert.InDelta(t, 2.0, profile.AwayGoalsConcededAvg, epsilon)
	assert.InDelta(t, 4.0/3.0, profile.GoalsScoredAvg, epsilon)
	assert.InDelta(t, 4.0/3.0, profile.GoalsConcededAvg, epsilon)

	empty := CalculateTeamProfile(matches, "Osasuna")
	assert.Equal(t, TeamScoringProfile{Team: "Osasuna"}, empty)
}

func TestCalculateLeagueAverage(t *testing.T) {
	matches := []Match{
		NewMatch("", "", "", "A", "B").WithScore(3, 1),
		NewMatch("", "", "", "B", "A").WithScore(0, 0),
		NewMatch("", "", "", "A", "C"),
	}
	assert.InDelta(t, 1.0, CalculateLeagueAverage(matches, 2.5), epsilon)
	assert.InDelta(t, 2.5, CalculateLeagueAverage(nil, 2.5), epsilon)
	assert.InDelta(t, 2.5, CalculateLeagueAverage(matches[2:], 2.5), epsilon)
}

func TestPredictHomeAdvantage(t *testing.T) {
	t.Log("Every home side wins 2-1 in a four team double round robin")
	repo := NewRepository(doubleRoundRobin([]string{"Alaves", "Betis", "Celta", "Dépor"}, 2, 1))
	model := NewModel(repo, nil)
	assert.InDelta(t, 1.5, model.LeagueAverage(), epsilon)

	prediction, err := model.Predict("Alaves", "Betis")
	require.NoError(t, err)
	t.Log(prediction.String())

	assert.InDelta(t, 8.0/3.0, prediction.ExpectedHomeGoals, 1e-9)
	assert.InDelta(t, 2.0/3.0, prediction.ExpectedAwayGoals, 1e-9)
	assert.Greater(t, prediction.MatchOdds.HomeWin, prediction.MatchOdds.AwayWin)
	assert.Equal(t, prediction.TopScores[0], prediction.MostLikelyScore)
	assert.Len(t, prediction.TopScores, 5)
	assert.Len(t, prediction.OverUnder, 5)
	assert.Equal(t, 6, prediction.Matrix.MaxGoals)
	assert.InDelta(t, 1/prediction.MatchOdds.HomeWin, prediction.FairOdds.HomeWin, epsilon)

	ou, ok := prediction.OverUnderLine(2)
	require.True(t, ok)
	assert.Equal(t, 2.5, ou.Line)
	_, ok = prediction.OverUnderLine(9)
	assert.False(t, ok)
}

func TestPredictSymmetricTeams(t *testing.T) {
	// identical strengths at both venues give equal win probabilities
	repo := NewRepository(doubleRoundRobin([]string{"A", "B", "C", "D"}, 1, 1))
	prediction, err := NewModel(repo, nil).Predict("A", "B")
	require.NoError(t, err)

	assert.InDelta(t, prediction.ExpectedHomeGoals, prediction.ExpectedAwayGoals, epsilon)
	assert.InDelta(t, prediction.MatchOdds.HomeWin, prediction.MatchOdds.AwayWin, epsilon)
}

func TestPredictIsIdempotent(t *testing.T) {
	repo := NewRepository(doubleRoundRobin([]string{"A", "B", "C", "D"}, 2, 1))
	model := NewModel(repo, nil)

	first, err := model.Predict("C", "D")
	require.NoError(t, err)
	second, err := model.Predict("C", "D")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExpectedGoalsMonotonicInAttack(t *testing.T) {
	model := NewModel(NewRepository(doubleRoundRobin([]string{"A", "B", "C", "D"}, 2, 1)), nil)
	home := model.Rates("A")
	away := model.Rates("B")

	baseHome, baseAway := model.ExpectedGoals(home, away)
	base := model.predictFromProfiles(home, away, model.LeagueAverage())

	home.HomeGoalsScoredAvg += 1
	strongerHome, strongerAway := model.ExpectedGoals(home, away)
	stronger := model.predictFromProfiles(home, away, model.LeagueAverage())

	assert.Greater(t, strongerHome, baseHome)
	assert.InDelta(t, baseAway, strongerAway, epsilon)
	assert.Greater(t, stronger.MatchOdds.HomeWin, base.MatchOdds.HomeWin)
}

func TestExpectedGoalsZeroLeagueAverage(t *testing.T) {
	repo := NewRepository(doubleRoundRobin([]string{"A", "B", "C", "D"}, 0, 0))
	model := NewModel(repo, nil)
	assert.Equal(t, 0.0, model.LeagueAverage())

	prediction, err := model.Predict("A", "B")
	require.NoError(t, err)
	assert.False(t, math.IsNaN(prediction.ExpectedHomeGoals))
	assert.Equal(t, 0.0, prediction.ExpectedHomeGoals)
	assert.Equal(t, 1.0, prediction.MatchOdds.Draw)
	assert.Equal(t, "0-0", prediction.MostLikelyScore.String())
}

func TestPredictInsufficientHistory(t *testing.T) {
	matches := doubleRoundRobin([]string{"A", "B", "C", "D"}, 2, 1)
	matches = append(matches,
		NewMatch("", "", "", "Newcomer", "A").WithScore(0, 1),
		NewMatch("", "", "", "B", "Newcomer").WithScore(1, 1),
	)
	model := NewModel(NewRepository(matches), nil)

	_, err := model.Predict("A", "Newcomer")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientHistory))
	assert.False(t, errors.Is(err, ErrUnknownTeam))

	var historyErr *InsufficientHistoryError
	require.True(t, errors.As(err, &historyErr))
	assert.Equal(t, "Newcomer", historyErr.Team)
	assert.Equal(t, 2, historyErr.MatchesPlayed)
	assert.Equal(t, 3, historyErr.Required)

	_, err = model.Predict("Ghost", "A")
	assert.True(t, errors.Is(err, ErrUnknownTeam))
	assert.True(t, errors.Is(err, ErrInsufficientHistory))
	assert.Contains(t, err.Error(), "Ghost")
}

func TestPredictUsesExactNames(t *testing.T) {
	// "Real" is a substring of both teams but never plays under that name
	matches := doubleRoundRobin([]string{"Real Madrid", "Real Sociedad", "Getafe", "Elche"}, 2, 1)
	_, err := NewModel(NewRepository(matches), nil).Predict("Real", "Getafe")
	assert.ErrorIs(t, err, ErrUnknownTeam)
}

func TestPredictUpcoming(t *testing.T) {
	matches := doubleRoundRobin([]string{"A", "B", "C", "D"}, 2, 1)
	matches = append(matches,
		NewMatch("Jornada 7", "2024-10-05", "18:30", "A", "C"),
		NewMatch("Jornada 7", "2024-10-05", "21:00", "B", "Newcomer"),
		NewMatch("Jornada 8", "2024-10-12", "", "D", "A"),
	)
	model := NewModel(NewRepository(matches), nil)

	all := model.PredictUpcoming("", "")
	require.Len(t, all, 3)
	assert.NotNil(t, all[0].Prediction)
	assert.Empty(t, all[0].Skipped)
	assert.Nil(t, all[1].Prediction)
	assert.Contains(t, all[1].Skipped, "Newcomer")

	round := model.PredictUpcoming("Jornada 8", "")
	require.Len(t, round, 1)
	assert.Equal(t, "D", round[0].Match.HomeTeam)

	date := model.PredictUpcoming("", "2024-10-05")
	assert.Len(t, date, 2)
	assert.Empty(t, model.PredictUpcoming("Jornada 8", "2024-10-05"))
}
