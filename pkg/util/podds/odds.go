package podds

// FairOdds converts a probability in [0, 1] to decimal odds with no margin.
// Returns 0 for probabilities that are not positive.
func FairOdds(probability float64) float64 {
	if probability <= 0 {
		return 0
	}
	return 1 / probability
}

// FairMatchOdds returns the margin-free decimal odds of the 1X2 market
func FairMatchOdds(odds MatchOdds) MatchOdds {
	return MatchOdds{
		HomeWin: FairOdds(odds.HomeWin),
		Draw:    FairOdds(odds.Draw),
		AwayWin: FairOdds(odds.AwayWin),
	}
}
