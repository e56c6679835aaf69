package podds

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-9

func TestPoissonProbability(t *testing.T) {
	assert.InDelta(t, math.Exp(-1.5), PoissonProbability(0, 1.5), epsilon)
	assert.InDelta(t, 0.2510214302, PoissonProbability(2, 1.5), 1e-9)
	assert.InDelta(t, 0.1953668148, PoissonProbability(4, 4), 1e-9)

	assert.Equal(t, 0.0, PoissonProbability(-1, 1.5))
	assert.Equal(t, 1.0, PoissonProbability(0, 0))
	assert.Equal(t, 0.0, PoissonProbability(3, 0))

	// large k stays finite
	p := PoissonProbability(170, 3)
	assert.False(t, math.IsNaN(p) || math.IsInf(p, 0))
	assert.GreaterOrEqual(t, p, 0.0)
}

func TestScoreMatrixShape(t *testing.T) {
	matrix := NewScoreMatrix(1.4, 1.1, 6)
	require.Len(t, matrix.Cells, 7)
	for _, row := range matrix.Cells {
		require.Len(t, row, 7)
	}
	assert.Equal(t, 7, matrix.Size())

	// independence: every cell is the product of the marginals
	assert.InDelta(t, PoissonProbability(2, 1.4)*PoissonProbability(1, 1.1), matrix.At(2, 1), epsilon)
	assert.Equal(t, 0.0, matrix.At(7, 0))
	assert.Equal(t, 0.0, matrix.At(0, -1))
}

func TestScoreMatrixIsNotRenormalized(t *testing.T) {
	matrix := NewScoreMatrix(2.8, 1.9, 6)
	total := matrix.TotalProbability()

	marginalHome, marginalAway := 0.0, 0.0
	for k := 0; k <= 6; k++ {
		marginalHome += PoissonProbability(k, 2.8)
		marginalAway += PoissonProbability(k, 1.9)
	}

	assert.Less(t, total, 1.0)
	assert.InDelta(t, marginalHome*marginalAway, total, epsilon)
}

func TestScoreMatrixMassBound(t *testing.T) {
	tests := []struct {
		home, away float64
	}{
		{0.3, 0.3},
		{0.5, 1.0},
		{1.0, 1.0},
		{1.5, 1.2},
		{2.0, 2.0},
		{2.5, 0.8},
		{1.2, 2.5},
		{2.5, 2.5},
	}
	for _, tt := range tests {
		total := NewScoreMatrix(tt.home, tt.away, 6).TotalProbability()
		assert.Greater(t, total, 0.95, "lambdas %.1f/%.1f", tt.home, tt.away)
		assert.Less(t, total, 1.0, "lambdas %.1f/%.1f", tt.home, tt.away)
	}

	// seven goals per side stop covering 95% of the mass once both sides
	// expect about three goals
	assert.InDelta(t, 0.9341, NewScoreMatrix(3, 3, 6).TotalProbability(), 1e-4)
	assert.InDelta(t, 0.7909, NewScoreMatrix(4, 4, 6).TotalProbability(), 1e-4)
}

func TestScoreMatrixZeroLambda(t *testing.T) {
	matrix := NewScoreMatrix(0, 0, 6)
	assert.Equal(t, 1.0, matrix.At(0, 0))
	assert.InDelta(t, 1.0, matrix.TotalProbability(), epsilon)
	assert.Equal(t, 1.0, matrix.MatchOdds().Draw)
}
