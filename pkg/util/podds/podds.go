// Package podds estimates football match outcome probabilities.
//
// Team attack and defence strengths are taken from home and away scoring
// averages relative to the league average, turned into expected goals, and
// spread over a truncated independent Poisson scoreline matrix. Every market
// (1X2, over/under, both teams to score, double chance, Asian handicap,
// exact score) is read off that matrix. A backtest grades the model against
// the competition's played matches.
package podds
