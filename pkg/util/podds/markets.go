package podds

import (
	"fmt"
	"sort"
)

// MatchOdds holds the 1X2 probabilities
type MatchOdds struct {
	HomeWin float64 `json:"homeWin"`
	Draw    float64 `json:"draw"`
	AwayWin float64 `json:"awayWin"`
}

// OverUnder holds the probabilities either side of a goals line
type OverUnder struct {
	Line  float64 `json:"line"`
	Over  float64 `json:"over"`
	Under float64 `json:"under"`
}

// BothTeamsToScore holds the BTTS probabilities
type BothTeamsToScore struct {
	Yes float64 `json:"yes"`
	No  float64 `json:"no"`
}

// DoubleChance holds the probabilities of the three two-outcome markets
type DoubleChance struct {
	HomeOrDraw float64 `json:"1X"`
	HomeOrAway float64 `json:"12"`
	DrawOrAway float64 `json:"X2"`
}

// WinAndBothScore holds the probability of each side winning with both sides scoring
type WinAndBothScore struct {
	Home float64 `json:"home"`
	Away float64 `json:"away"`
}

// AsianHandicap holds the ±1.5 goal handicap lines
type AsianHandicap struct {
	HomeMinus1p5 float64 `json:"homeMinus1p5"`
	HomePlus1p5  float64 `json:"homePlus1p5"`
	AwayMinus1p5 float64 `json:"awayMinus1p5"`
	AwayPlus1p5  float64 `json:"awayPlus1p5"`
}

// Scoreline is one cell of the score matrix
type Scoreline struct {
	HomeGoals   int     `json:"homeGoals"`
	AwayGoals   int     `json:"awayGoals"`
	Probability float64 `json:"probability"`
}

func (s Scoreline) String() string {
	return fmt.Sprintf("%d-%d", s.HomeGoals, s.AwayGoals)
}

/////////////////////////////////////////////////////////////////////////
////// Market derivation
/////////////////////////////////////////////////////////////////////////

// MatchOdds sums the lower triangle, the diagonal and the upper triangle
func (s *ScoreMatrix) MatchOdds() MatchOdds {
	homeWin, draw, awayWin := calculateMatchOutcomeProbabilities(s.Cells)
	return MatchOdds{HomeWin: homeWin, Draw: draw, AwayWin: awayWin}
}

// calculateMatchOutcomeProbabilities splits the matrix into its three disjoint regions
func calculateMatchOutcomeProbabilities(matrix [][]float64) (homeWin, draw, awayWin float64) {
	for i := range matrix {
		for j := range matrix[i] {
			prob := matrix[i][j]
			if i > j {
				homeWin += prob
			} else if i == j {
				draw += prob
			} else {
				awayWin += prob
			}
		}
	}
	return homeWin, draw, awayWin
}

// OverUnder returns the over/under probabilities for the line N.5.
// Under is the complement of over, so the two always sum to one.
func (s *ScoreMatrix) OverUnder(n int) OverUnder {
	over := s.sum(func(i, j int) bool { return i+j > n })
	return OverUnder{
		Line:  float64(n) + 0.5,
		Over:  over,
		Under: 1 - over,
	}
}

// BothTeamsToScore uses inclusion-exclusion over the zero row and zero column
func (s *ScoreMatrix) BothTeamsToScore() BothTeamsToScore {
	homeBlank := s.sum(func(i, j int) bool { return i == 0 })
	awayBlank := s.sum(func(i, j int) bool { return j == 0 })
	yes := 1 - homeBlank - awayBlank + s.At(0, 0)
	return BothTeamsToScore{Yes: yes, No: 1 - yes}
}

// DoubleChance combines the 1X2 probabilities pairwise
func (s *ScoreMatrix) DoubleChance() DoubleChance {
	return doubleChanceFrom(s.MatchOdds())
}

func doubleChanceFrom(odds MatchOdds) DoubleChance {
	return DoubleChance{
		HomeOrDraw: odds.HomeWin + odds.Draw,
		HomeOrAway: odds.HomeWin + odds.AwayWin,
		DrawOrAway: odds.Draw + odds.AwayWin,
	}
}

// WinAndBothScore sums the cells where both sides scored and one side won
func (s *ScoreMatrix) WinAndBothScore() WinAndBothScore {
	return WinAndBothScore{
		Home: s.sum(func(i, j int) bool { return j >= 1 && i > j }),
		Away: s.sum(func(i, j int) bool { return i >= 1 && j > i }),
	}
}

// AsianHandicap derives the ±1.5 lines. Each plus line is the complement
// of the opposite side's minus line.
func (s *ScoreMatrix) AsianHandicap() AsianHandicap {
	homeMinus := s.sum(func(i, j int) bool { return float64(i-j) > 1.5 })
	awayMinus := s.sum(func(i, j int) bool { return float64(j-i) > 1.5 })
	return AsianHandicap{
		HomeMinus1p5: homeMinus,
		AwayPlus1p5:  1 - homeMinus,
		AwayMinus1p5: awayMinus,
		HomePlus1p5:  1 - awayMinus,
	}
}

// Scorelines returns every cell ordered by descending probability.
// Equal probabilities keep row-major order (0-0, 0-1, ... 1-0, ...).
func (s *ScoreMatrix) Scorelines() []Scoreline {
	scores := make([]Scoreline, 0, s.Size()*s.Size())
	for i, row := range s.Cells {
		for j, p := range row {
			scores = append(scores, Scoreline{HomeGoals: i, AwayGoals: j, Probability: p})
		}
	}
	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].Probability > scores[b].Probability
	})
	return scores
}

// MostLikely returns the highest probability scoreline
func (s *ScoreMatrix) MostLikely() Scoreline {
	return s.TopScores(1)[0]
}

// TopScores returns the n most likely scorelines
func (s *ScoreMatrix) TopScores(n int) []Scoreline {
	scores := s.Scorelines()
	if n < 0 {
		n = 0
	}
	if n > len(scores) {
		n = len(scores)
	}
	return scores[:n]
}
