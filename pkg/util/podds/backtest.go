package podds

import (
	"fmt"
)

// Double chance options in argmax tie-break order
const (
	DoubleChanceHomeOrDraw = "1X"
	DoubleChanceHomeOrAway = "12"
	DoubleChanceDrawOrAway = "X2"
)

// MarketAccuracy is the hit count and rate for one market
type MarketAccuracy struct {
	Correct    int     `json:"correct"`
	Percentage float64 `json:"percentage"`
}

// AccuracyReport aggregates backtest results over the played matches
type AccuracyReport struct {
	Played       int            `json:"played"`       // played matches in the repository
	Total        int            `json:"total"`        // matches where both sides had enough history
	MatchOdds    MarketAccuracy `json:"matchOdds"`    // 1X2
	OverUnder    MarketAccuracy `json:"overUnder"`    // over/under on BacktestGoalsLine
	GoalsLine    float64        `json:"goalsLine"`    // the graded line, e.g. 2.5
	BothScore    MarketAccuracy `json:"bothScore"`    // BTTS
	DoubleChance MarketAccuracy `json:"doubleChance"` // most likely double chance option
}

// PredictionAccuracy holds the graded outcome of a single played match
type PredictionAccuracy struct {
	HomeTeam              string `json:"homeTeam"`
	AwayTeam              string `json:"awayTeam"`
	ActualResult          string `json:"actualResult"`
	PredictedResult       string `json:"predictedResult"`
	ResultCorrect         bool   `json:"resultCorrect"`
	PredictedOver         bool   `json:"predictedOver"`
	OverUnderCorrect      bool   `json:"overUnderCorrect"`
	PredictedBothScore    bool   `json:"predictedBothScore"`
	BothScoreCorrect      bool   `json:"bothScoreCorrect"`
	PredictedDoubleChance string `json:"predictedDoubleChance"`
	DoubleChanceCorrect   bool   `json:"doubleChanceCorrect"`
}

// Backtest predicts every played match whose teams both meet MinMatchesPlayed
// and grades the predictions against the actual scores.
//
// Team profiles are built from the whole played history, including the match
// being graded and anything after it, so the rates are optimistic compared to
// a strictly out-of-sample evaluation.
func (m *Model) Backtest() (*AccuracyReport, error) {
	played := m.repo.Played()
	if len(played) < m.config.MinBacktestSample {
		return nil, fmt.Errorf("%w: %d played, %d required", ErrNoReport, len(played), m.config.MinBacktestSample)
	}

	leagueAverage := m.LeagueAverage()
	profiles := make(map[string]TeamScoringProfile)
	profileFor := func(team string) TeamScoringProfile {
		p, ok := profiles[team]
		if !ok {
			p = m.Rates(team)
			profiles[team] = p
		}
		return p
	}

	accuracies := make([]*PredictionAccuracy, 0, len(played))
	for _, match := range played {
		home := profileFor(match.HomeTeam)
		away := profileFor(match.AwayTeam)
		if m.checkHistory(home) != nil || m.checkHistory(away) != nil {
			continue
		}
		prediction := m.predictFromProfiles(home, away, leagueAverage)
		accuracies = append(accuracies, m.EvaluatePredictionAccuracy(match, prediction))
	}

	report := EvaluateAllPredictions(accuracies)
	if report == nil {
		return nil, fmt.Errorf("%w: no played match has two teams with %d or more matches", ErrNoReport, m.config.MinMatchesPlayed)
	}
	report.Played = len(played)
	report.GoalsLine = float64(m.config.BacktestGoalsLine) + 0.5
	return report, nil
}

// EvaluatePredictionAccuracy grades a prediction against a played match.
// Returns nil if the match has not been played.
func (m *Model) EvaluatePredictionAccuracy(match Match, prediction *Prediction) *PredictionAccuracy {
	if !match.IsPlayed() || prediction == nil {
		return nil
	}

	accuracy := &PredictionAccuracy{
		HomeTeam:     match.HomeTeam,
		AwayTeam:     match.AwayTeam,
		ActualResult: match.Result(),
	}

	accuracy.PredictedResult = predictedResult(prediction.MatchOdds)
	accuracy.ResultCorrect = accuracy.PredictedResult == accuracy.ActualResult

	accuracy.PredictedDoubleChance = predictedDoubleChance(prediction.DoubleChance)
	accuracy.DoubleChanceCorrect = doubleChanceCovers(accuracy.PredictedDoubleChance, accuracy.ActualResult)

	line := m.config.BacktestGoalsLine
	ou, ok := prediction.OverUnderLine(line)
	if !ok {
		ou = prediction.Matrix.OverUnder(line)
	}
	accuracy.PredictedOver = ou.Over > ou.Under
	accuracy.OverUnderCorrect = accuracy.PredictedOver == (match.TotalGoals() > line)

	accuracy.PredictedBothScore = prediction.BothTeamsToScore.Yes > prediction.BothTeamsToScore.No
	accuracy.BothScoreCorrect = accuracy.PredictedBothScore == match.BothScored()

	return accuracy
}

// EvaluateAllPredictions aggregates graded matches into a report.
// Returns nil when there is nothing to aggregate.
func EvaluateAllPredictions(accuracies []*PredictionAccuracy) *AccuracyReport {
	report := &AccuracyReport{}
	for _, acc := range accuracies {
		if acc == nil {
			continue
		}
		report.Total++
		if acc.ResultCorrect {
			report.MatchOdds.Correct++
		}
		if acc.OverUnderCorrect {
			report.OverUnder.Correct++
		}
		if acc.BothScoreCorrect {
			report.BothScore.Correct++
		}
		if acc.DoubleChanceCorrect {
			report.DoubleChance.Correct++
		}
	}
	if report.Total == 0 {
		return nil
	}

	for _, market := range []*MarketAccuracy{&report.MatchOdds, &report.OverUnder, &report.BothScore, &report.DoubleChance} {
		market.Percentage = float64(market.Correct) / float64(report.Total) * 100
	}
	return report
}

// predictedResult is the 1X2 argmax; ties resolve home, then draw, then away
func predictedResult(odds MatchOdds) string {
	best := ResultHome
	bestProb := odds.HomeWin
	if odds.Draw > bestProb {
		best, bestProb = ResultDraw, odds.Draw
	}
	if odds.AwayWin > bestProb {
		best = ResultAway
	}
	return best
}

// predictedDoubleChance is the double chance argmax; ties resolve 1X, then 12, then X2
func predictedDoubleChance(dc DoubleChance) string {
	best := DoubleChanceHomeOrDraw
	bestProb := dc.HomeOrDraw
	if dc.HomeOrAway > bestProb {
		best, bestProb = DoubleChanceHomeOrAway, dc.HomeOrAway
	}
	if dc.DrawOrAway > bestProb {
		best = DoubleChanceDrawOrAway
	}
	return best
}

func doubleChanceCovers(option, result string) bool {
	switch option {
	case DoubleChanceHomeOrDraw:
		return result == ResultHome || result == ResultDraw
	case DoubleChanceHomeOrAway:
		return result == ResultHome || result == ResultAway
	case DoubleChanceDrawOrAway:
		return result == ResultDraw || result == ResultAway
	}
	return false
}
