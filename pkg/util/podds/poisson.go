package podds

import (
	"math"
)

// PoissonProbability returns P(X = k) for X ~ Poisson(lambda).
// Computed in log space so large k does not overflow the factorial.
// A non-positive lambda is a point mass at zero.
func PoissonProbability(k int, lambda float64) float64 {
	if k < 0 {
		return 0
	}
	if lambda <= 0 {
		if k == 0 {
			return 1
		}
		return 0
	}
	logFactorial, _ := math.Lgamma(float64(k) + 1)
	return math.Exp(float64(k)*math.Log(lambda) - lambda - logFactorial)
}

// calculateGoalProbabilities returns P(0..maxGoals goals) for one side
func calculateGoalProbabilities(lambda float64, maxGoals int) []float64 {
	probs := make([]float64, maxGoals+1)
	for k := 0; k <= maxGoals; k++ {
		probs[k] = PoissonProbability(k, lambda)
	}
	return probs
}

// ScoreMatrix is the joint scoreline distribution of a match.
// Cells[i][j] is the probability that the home side scores i and the away side j.
// Goals above MaxGoals are truncated and the remaining mass is not redistributed,
// so the cells sum to slightly less than one.
type ScoreMatrix struct {
	LambdaHome float64     `json:"lambdaHome"`
	LambdaAway float64     `json:"lambdaAway"`
	MaxGoals   int         `json:"maxGoals"`
	Cells      [][]float64 `json:"cells"`
}

// NewScoreMatrix builds the independent Poisson matrix for the two expected-goal values
func NewScoreMatrix(lambdaHome, lambdaAway float64, maxGoals int) *ScoreMatrix {
	if maxGoals < 0 {
		maxGoals = 0
	}
	homeProbs := calculateGoalProbabilities(lambdaHome, maxGoals)
	awayProbs := calculateGoalProbabilities(lambdaAway, maxGoals)
	return &ScoreMatrix{
		LambdaHome: lambdaHome,
		LambdaAway: lambdaAway,
		MaxGoals:   maxGoals,
		Cells:      createProbabilityMatrix(homeProbs, awayProbs),
	}
}

// createProbabilityMatrix is the outer product of the two marginal distributions
func createProbabilityMatrix(homeProbs, awayProbs []float64) [][]float64 {
	matrix := make([][]float64, len(homeProbs))
	for i := range homeProbs {
		matrix[i] = make([]float64, len(awayProbs))
		for j := range awayProbs {
			matrix[i][j] = homeProbs[i] * awayProbs[j]
		}
	}
	return matrix
}

// Size returns the number of rows (and columns) in the matrix
func (s *ScoreMatrix) Size() int {
	return s.MaxGoals + 1
}

// At returns the probability of the exact scoreline, 0 outside the matrix
func (s *ScoreMatrix) At(homeGoals, awayGoals int) float64 {
	if homeGoals < 0 || awayGoals < 0 || homeGoals > s.MaxGoals || awayGoals > s.MaxGoals {
		return 0
	}
	return s.Cells[homeGoals][awayGoals]
}

// TotalProbability returns the probability mass captured by the matrix
func (s *ScoreMatrix) TotalProbability() float64 {
	return s.sum(func(i, j int) bool { return true })
}

// sum adds up the cells selected by include
func (s *ScoreMatrix) sum(include func(i, j int) bool) float64 {
	total := 0.0
	for i, row := range s.Cells {
		for j, p := range row {
			if include(i, j) {
				total += p
			}
		}
	}
	return total
}
