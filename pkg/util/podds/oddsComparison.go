package podds

import "math"

// ValueVerdict grades computed odds against the range bookmakers usually quote
type ValueVerdict string

const (
	VerdictValue  ValueVerdict = "VALOR"   // above the usual range
	VerdictReview ValueVerdict = "REVISAR" // near the top of it
	VerdictNone   ValueVerdict = "NO"
)

// valueBand is the usual bookmaker range of a market and the odds above which
// the computed price is worth a look
type valueBand struct {
	market string
	value  float64
	review float64
}

var (
	winBand        = valueBand{market: "1.50-3.50", value: 3.50, review: 2.50}
	drawBand       = valueBand{market: "2.80-4.50", value: 4.50, review: 3.65}
	singleDrawBand = valueBand{market: "1.10-1.50", value: 1.50, review: 1.30}
	noDrawBand     = valueBand{market: "1.15-1.40", value: 1.40, review: 1.27}
)

func (b valueBand) verdict(odds float64) ValueVerdict {
	switch {
	case odds > b.value:
		return VerdictValue
	case odds > b.review:
		return VerdictReview
	}
	return VerdictNone
}

// comparisonLines are the N.5 lines the comparison prices
var comparisonLines = []int{1, 2, 3}

// PricedOutcome is a percentage (0..100) and its fair decimal odds.
// Verdict and MarketRange are only set for the 1X2 and double chance markets.
type PricedOutcome struct {
	Probability float64      `json:"probability"`
	Odds        float64      `json:"odds"`
	MarketRange string       `json:"marketRange,omitempty"`
	Verdict     ValueVerdict `json:"verdict,omitempty"`
}

// OddsComparison prices an upcoming match from the observed frequencies of
// both teams at the venue they play it, for comparison with bookmaker odds.
type OddsComparison struct {
	Match         Match   `json:"match"`
	ExpectedGoals float64 `json:"expectedGoals"`

	HomeWin PricedOutcome `json:"homeWin"`
	Draw    PricedOutcome `json:"draw"`
	AwayWin PricedOutcome `json:"awayWin"`

	HomeOrDraw PricedOutcome `json:"homeOrDraw"`
	DrawOrAway PricedOutcome `json:"drawOrAway"`
	HomeOrAway PricedOutcome `json:"homeOrAway"`

	Over1p5   PricedOutcome `json:"over1p5"`
	Over2p5   PricedOutcome `json:"over2p5"`
	Under3p5  PricedOutcome `json:"under3p5"`
	BothScore PricedOutcome `json:"bothScore"`

	HomeWinOver2p5  PricedOutcome `json:"homeWinOver2p5"`
	HomeWinUnder2p5 PricedOutcome `json:"homeWinUnder2p5"`
	DrawOver2p5     PricedOutcome `json:"drawOver2p5"`
	DrawUnder2p5    PricedOutcome `json:"drawUnder2p5"`
	AwayWinOver2p5  PricedOutcome `json:"awayWinOver2p5"`
	AwayWinUnder2p5 PricedOutcome `json:"awayWinUnder2p5"`
}

// CalculateOddsComparison prices every upcoming match of the repository.
// The home side is judged on its home record and the visitor on its away
// record; teams are matched by substring like CalculateTeamStatistics.
// Values are rounded to two decimals.
func CalculateOddsComparison(repo *Repository) []OddsComparison {
	upcoming := repo.Upcoming()
	out := make([]OddsComparison, 0, len(upcoming))
	for _, m := range upcoming {
		home := venueStatistics(repo.PlayedForTeam(m.HomeTeam, VenueHome), m.HomeTeam, VenueHome, comparisonLines)
		away := venueStatistics(repo.PlayedForTeam(m.AwayTeam, VenueAway), m.AwayTeam, VenueAway, comparisonLines)
		out = append(out, compareOdds(m, home, away))
	}
	return out
}

func compareOdds(m Match, home, away VenueStatistics) OddsComparison {
	homeWin := home.WinPercentage
	draw := (home.DrawPercentage + away.DrawPercentage) / 2
	awayWin := away.WinPercentage
	if total := homeWin + draw + awayWin; total > 0 {
		homeWin = homeWin / total * 100
		draw = draw / total * 100
		awayWin = awayWin / total * 100
	}

	over := func(i int) float64 { return (home.GoalLines[i].Over + away.GoalLines[i].Over) / 2 }
	over1p5, over2p5, over3p5 := over(0), over(1), over(2)
	under2p5 := 100 - over2p5

	return OddsComparison{
		Match:         m.clone(),
		ExpectedGoals: round2((home.AverageGoals + away.AverageGoals) / 2),

		HomeWin: winBand.price(homeWin),
		Draw:    drawBand.price(draw),
		AwayWin: winBand.price(awayWin),

		HomeOrDraw: singleDrawBand.price(homeWin + draw),
		DrawOrAway: singleDrawBand.price(draw + awayWin),
		HomeOrAway: noDrawBand.price(homeWin + awayWin),

		Over1p5:   price(over1p5),
		Over2p5:   price(over2p5),
		Under3p5:  price(100 - over3p5),
		BothScore: price((home.BothScorePercentage + away.BothScorePercentage) / 2),

		HomeWinOver2p5:  price(homeWin * over2p5 / 100),
		HomeWinUnder2p5: price(homeWin * under2p5 / 100),
		DrawOver2p5:     price(draw * over2p5 / 100),
		DrawUnder2p5:    price(draw * under2p5 / 100),
		AwayWinOver2p5:  price(awayWin * over2p5 / 100),
		AwayWinUnder2p5: price(awayWin * under2p5 / 100),
	}
}

// price converts a percentage to an outcome with fair odds
func price(percent float64) PricedOutcome {
	return PricedOutcome{
		Probability: round2(percent),
		Odds:        round2(FairOdds(percent / 100)),
	}
}

func (b valueBand) price(percent float64) PricedOutcome {
	outcome := price(percent)
	outcome.MarketRange = b.market
	outcome.Verdict = b.verdict(FairOdds(percent / 100))
	return outcome
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
