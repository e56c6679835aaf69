package podds

import "fmt"

// Config holds the thresholds and constants of the outcome model.
// Everything the model treats as a magic number lives here.
type Config struct {
	// === GATING ===
	MinMatchesPlayed  int // Played matches a team needs before it can be predicted (default: 3)
	MinBacktestSample int // Played matches a competition needs before a backtest runs (default: 10)

	// === SCORE MATRIX ===
	MaxGoals int // Goals per side covered by the score matrix, 0..N (default: 6)

	// === LEAGUE AVERAGE ===
	DefaultLeagueAverage float64 // Goals per team per match when nothing has been played (default: 2.5)
	NeutralStrength      float64 // Attack/defence strength used when the league average is zero (default: 1.0)

	// === MARKETS ===
	TopScoreCount     int   // Number of scorelines in the top list (default: 5)
	OverUnderLines    []int // N for the "over N.5" markets (default: 0..4)
	BacktestGoalsLine int   // N for the over/under line the backtest grades (default: 2, i.e. 2.5)
}

// DefaultConfig returns the configuration the model uses unless told otherwise
func DefaultConfig() *Config {
	return &Config{
		MinMatchesPlayed:  3,
		MinBacktestSample: 10,

		MaxGoals: 6,

		DefaultLeagueAverage: 2.5,
		NeutralStrength:      1.0,

		TopScoreCount:     5,
		OverUnderLines:    []int{0, 1, 2, 3, 4},
		BacktestGoalsLine: 2,
	}
}

// === CONFIGURATION VALIDATION ===

// ValidateConfig ensures all configuration values are within reasonable ranges
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config must not be nil")
	}
	if config.MinMatchesPlayed < 1 {
		return fmt.Errorf("MinMatchesPlayed must be at least 1, got: %d", config.MinMatchesPlayed)
	}
	if config.MinBacktestSample < 1 {
		return fmt.Errorf("MinBacktestSample must be at least 1, got: %d", config.MinBacktestSample)
	}
	if config.MaxGoals < 1 || config.MaxGoals > 20 {
		return fmt.Errorf("MaxGoals must be between 1 and 20, got: %d", config.MaxGoals)
	}
	if config.DefaultLeagueAverage <= 0 {
		return fmt.Errorf("DefaultLeagueAverage must be positive, got: %f", config.DefaultLeagueAverage)
	}
	if config.NeutralStrength <= 0 {
		return fmt.Errorf("NeutralStrength must be positive, got: %f", config.NeutralStrength)
	}
	if config.TopScoreCount < 1 {
		return fmt.Errorf("TopScoreCount must be at least 1, got: %d", config.TopScoreCount)
	}
	for _, line := range config.OverUnderLines {
		if line < 0 || line >= 2*config.MaxGoals {
			return fmt.Errorf("OverUnderLines must be between 0 and %d, got: %d", 2*config.MaxGoals-1, line)
		}
	}
	if config.BacktestGoalsLine < 0 || config.BacktestGoalsLine >= 2*config.MaxGoals {
		return fmt.Errorf("BacktestGoalsLine must be between 0 and %d, got: %d", 2*config.MaxGoals-1, config.BacktestGoalsLine)
	}
	return nil
}
