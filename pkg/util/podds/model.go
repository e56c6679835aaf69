package podds

import (
	"fmt"
)

// Prediction is the full set of market probabilities for one fixture.
// All probabilities are in [0, 1].
type Prediction struct {
	HomeTeam          string             `json:"homeTeam"`
	AwayTeam          string             `json:"awayTeam"`
	ExpectedHomeGoals float64            `json:"expectedHomeGoals"`
	ExpectedAwayGoals float64            `json:"expectedAwayGoals"`
	LeagueAverage     float64            `json:"leagueAverage"`
	MatchOdds         MatchOdds          `json:"matchOdds"`
	FairOdds          MatchOdds          `json:"fairOdds"`
	OverUnder         []OverUnder        `json:"overUnder"`
	BothTeamsToScore  BothTeamsToScore   `json:"bothTeamsToScore"`
	DoubleChance      DoubleChance       `json:"doubleChance"`
	WinAndBothScore   WinAndBothScore    `json:"winAndBothScore"`
	AsianHandicap     AsianHandicap      `json:"asianHandicap"`
	MostLikelyScore   Scoreline          `json:"mostLikelyScore"`
	TopScores         []Scoreline        `json:"topScores"`
	HomeProfile       TeamScoringProfile `json:"homeProfile"`
	AwayProfile       TeamScoringProfile `json:"awayProfile"`
	Matrix            *ScoreMatrix       `json:"scoreMatrix"`
}

// OverUnderLine returns the over/under market for the line n.5
func (p *Prediction) OverUnderLine(n int) (OverUnder, bool) {
	line := float64(n) + 0.5
	for _, ou := range p.OverUnder {
		if ou.Line == line {
			return ou, true
		}
	}
	return OverUnder{}, false
}

// Model turns a match repository into predictions.
// It holds no state beyond the repository snapshot and configuration,
// so the same inputs always give the same outputs.
type Model struct {
	repo   *Repository
	config *Config
}

// NewModel creates a model over repo. A nil config uses DefaultConfig.
func NewModel(repo *Repository, config *Config) *Model {
	if config == nil {
		config = DefaultConfig()
	}
	if repo == nil {
		repo = NewRepository(nil)
	}
	return &Model{repo: repo, config: config}
}

// Repository returns the snapshot the model reads from
func (m *Model) Repository() *Repository {
	return m.repo
}

// Config returns the model configuration
func (m *Model) Config() *Config {
	return m.config
}

// Rates computes the scoring profile of team from the played matches
func (m *Model) Rates(team string) TeamScoringProfile {
	return CalculateTeamProfile(m.repo.matches, team)
}

// LeagueAverage returns the goals per team per match across all played matches
func (m *Model) LeagueAverage() float64 {
	return CalculateLeagueAverage(m.repo.matches, m.config.DefaultLeagueAverage)
}

// ExpectedGoals applies the attack/defence strength model.
// Each side's attack is its venue scoring average over the league average, and
// its defence is its venue conceding average over the league average.
func (m *Model) ExpectedGoals(home, away TeamScoringProfile) (float64, float64) {
	return calculateExpectedGoals(home, away, m.LeagueAverage(), m.config.NeutralStrength)
}

func calculateExpectedGoals(home, away TeamScoringProfile, leagueAverage, neutral float64) (float64, float64) {
	homeAttack, homeDefence := neutral, neutral
	awayAttack, awayDefence := neutral, neutral
	if leagueAverage > 0 {
		homeAttack = home.HomeGoalsScoredAvg / leagueAverage
		homeDefence = home.HomeGoalsConcededAvg / leagueAverage
		awayAttack = away.AwayGoalsScoredAvg / leagueAverage
		awayDefence = away.AwayGoalsConcededAvg / leagueAverage
	}
	homeExpected := homeAttack * awayDefence * leagueAverage
	awayExpected := awayAttack * homeDefence * leagueAverage
	return homeExpected, awayExpected
}

// Predict estimates every market for homeTeam hosting awayTeam.
// Returns an *InsufficientHistoryError when either side has played fewer than
// MinMatchesPlayed matches.
func (m *Model) Predict(homeTeam, awayTeam string) (*Prediction, error) {
	homeProfile := m.Rates(homeTeam)
	awayProfile := m.Rates(awayTeam)
	if err := m.checkHistory(homeProfile); err != nil {
		return nil, err
	}
	if err := m.checkHistory(awayProfile); err != nil {
		return nil, err
	}
	return m.predictFromProfiles(homeProfile, awayProfile, m.LeagueAverage()), nil
}

func (m *Model) checkHistory(profile TeamScoringProfile) error {
	if profile.MatchesPlayed < m.config.MinMatchesPlayed {
		return &InsufficientHistoryError{
			Team:          profile.Team,
			MatchesPlayed: profile.MatchesPlayed,
			Required:      m.config.MinMatchesPlayed,
		}
	}
	return nil
}

func (m *Model) predictFromProfiles(home, away TeamScoringProfile, leagueAverage float64) *Prediction {
	homeExpected, awayExpected := calculateExpectedGoals(home, away, leagueAverage, m.config.NeutralStrength)
	matrix := NewScoreMatrix(homeExpected, awayExpected, m.config.MaxGoals)

	overUnder := make([]OverUnder, 0, len(m.config.OverUnderLines))
	for _, line := range m.config.OverUnderLines {
		overUnder = append(overUnder, matrix.OverUnder(line))
	}

	top := matrix.TopScores(m.config.TopScoreCount)
	odds := matrix.MatchOdds()

	return &Prediction{
		HomeTeam:          home.Team,
		AwayTeam:          away.Team,
		ExpectedHomeGoals: homeExpected,
		ExpectedAwayGoals: awayExpected,
		LeagueAverage:     leagueAverage,
		MatchOdds:         odds,
		FairOdds:          FairMatchOdds(odds),
		OverUnder:         overUnder,
		BothTeamsToScore:  matrix.BothTeamsToScore(),
		DoubleChance:      doubleChanceFrom(odds),
		WinAndBothScore:   matrix.WinAndBothScore(),
		AsianHandicap:     matrix.AsianHandicap(),
		MostLikelyScore:   matrix.MostLikely(),
		TopScores:         top,
		HomeProfile:       home,
		AwayProfile:       away,
		Matrix:            matrix,
	}
}

// UpcomingPrediction pairs an unplayed fixture with its prediction.
// Skipped is set instead of Prediction when a side lacks history.
type UpcomingPrediction struct {
	Match      Match       `json:"match"`
	Prediction *Prediction `json:"prediction,omitempty"`
	Skipped    string      `json:"skipped,omitempty"`
}

// PredictUpcoming predicts every unplayed fixture, optionally restricted to a
// round label and/or a date. Empty filters match everything.
func (m *Model) PredictUpcoming(round, date string) []UpcomingPrediction {
	leagueAverage := m.LeagueAverage()
	out := make([]UpcomingPrediction, 0)
	for _, match := range m.repo.Upcoming() {
		if round != "" && match.RoundLabel() != round {
			continue
		}
		if date != "" && match.DateValue() != date {
			continue
		}
		up := UpcomingPrediction{Match: match}
		home := m.Rates(match.HomeTeam)
		away := m.Rates(match.AwayTeam)
		if err := m.checkHistory(home); err != nil {
			up.Skipped = err.Error()
		} else if err := m.checkHistory(away); err != nil {
			up.Skipped = err.Error()
		} else {
			up.Prediction = m.predictFromProfiles(home, away, leagueAverage)
		}
		out = append(out, up)
	}
	return out
}

// String renders a one-line summary of the prediction
func (p *Prediction) String() string {
	return fmt.Sprintf("%s v %s: xG %.2f-%.2f, 1X2 %.1f%%/%.1f%%/%.1f%%, most likely %s",
		p.HomeTeam, p.AwayTeam,
		p.ExpectedHomeGoals, p.ExpectedAwayGoals,
		p.MatchOdds.HomeWin*100, p.MatchOdds.Draw*100, p.MatchOdds.AwayWin*100,
		p.MostLikelyScore)
}
