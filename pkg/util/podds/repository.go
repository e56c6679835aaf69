package podds

import (
	"fmt"
	"sort"
	"strings"

	"github.com/richard-senior/pronosticos/internal/logger"
)

// Venue selects which side of a fixture a team filter looks at
type Venue int

const (
	VenueEither Venue = iota
	VenueHome
	VenueAway
)

func (v Venue) String() string {
	switch v {
	case VenueHome:
		return "home"
	case VenueAway:
		return "away"
	default:
		return "either"
	}
}

// ParseVenue accepts "home", "away" and "either" (or "all", or empty)
func ParseVenue(s string) (Venue, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "either", "all", "any":
		return VenueEither, nil
	case "home", "local":
		return VenueHome, nil
	case "away", "visita":
		return VenueAway, nil
	}
	return VenueEither, fmt.Errorf("invalid venue %q, expected home, away or either", s)
}

// Repository holds the fixtures of one competition and answers filtered views over them.
// Views return copies, so callers may keep or modify them freely.
// A loaded repository is treated as an immutable snapshot; refreshes build a new one.
type Repository struct {
	matches []Match
}

// NewRepository loads a batch of match records into a new snapshot.
// Records without both team names are dropped, and records with a single goal value
// are kept as upcoming matches. Reloading a competition means building another
// repository; see Session.Replace.
func NewRepository(matches []Match) *Repository {
	r := &Repository{}
	r.load(matches)
	return r
}

// load fills a repository under construction
func (r *Repository) load(matches []Match) {
	loaded := make([]Match, 0, len(matches))
	for i, m := range matches {
		m = m.clone()
		m.HomeTeam = strings.TrimSpace(m.HomeTeam)
		m.AwayTeam = strings.TrimSpace(m.AwayTeam)
		if m.HomeTeam == "" || m.AwayTeam == "" {
			logger.Warn("Dropping match record without team names at index", i)
			continue
		}
		if m.normalize() {
			logger.Warn("Match has a partial score, treating as upcoming:", m.HomeTeam, "v", m.AwayTeam)
		}
		loaded = append(loaded, m)
	}
	r.matches = loaded
}

// Len returns the number of loaded matches
func (r *Repository) Len() int {
	return len(r.matches)
}

// All returns every loaded match in source order
func (r *Repository) All() []Match {
	return r.filter(func(Match) bool { return true })
}

// Played returns the matches with a final score
func (r *Repository) Played() []Match {
	return r.filter(Match.IsPlayed)
}

// Upcoming returns the matches without a final score
func (r *Repository) Upcoming() []Match {
	return r.filter(Match.IsUpcoming)
}

// MatchesForTeam returns the matches whose home and/or away name contains team.
// Matching is by substring, so "Real" also selects "Real Madrid" and "Real Sociedad".
func (r *Repository) MatchesForTeam(team string, venue Venue) []Match {
	return r.filter(func(m Match) bool {
		return involves(m, team, venue)
	})
}

// PlayedForTeam is MatchesForTeam restricted to played matches
func (r *Repository) PlayedForTeam(team string, venue Venue) []Match {
	return r.filter(func(m Match) bool {
		return m.IsPlayed() && involves(m, team, venue)
	})
}

// UpcomingForTeam returns the team's unplayed matches at either venue
func (r *Repository) UpcomingForTeam(team string) []Match {
	return r.filter(func(m Match) bool {
		return m.IsUpcoming() && involves(m, team, VenueEither)
	})
}

// HeadToHeadUpcoming returns unplayed fixtures between the two teams, in either direction
func (r *Repository) HeadToHeadUpcoming(teamA, teamB string) []Match {
	return r.filter(func(m Match) bool {
		if !m.IsUpcoming() {
			return false
		}
		return (strings.Contains(m.HomeTeam, teamA) && strings.Contains(m.AwayTeam, teamB)) ||
			(strings.Contains(m.HomeTeam, teamB) && strings.Contains(m.AwayTeam, teamA))
	})
}

// MatchesByRound returns the matches whose round label equals round
func (r *Repository) MatchesByRound(round string) []Match {
	return r.filter(func(m Match) bool {
		return m.Round != nil && *m.Round == round
	})
}

// MatchesByDate returns the matches played or scheduled on date (YYYY-MM-DD)
func (r *Repository) MatchesByDate(date string) []Match {
	return r.filter(func(m Match) bool {
		return m.Date != nil && *m.Date == date
	})
}

// DatesUpcoming returns the distinct dates of unplayed matches, earliest first
func (r *Repository) DatesUpcoming() []string {
	dates := distinct(r.matches, func(m Match) *string {
		if m.IsUpcoming() {
			return m.Date
		}
		return nil
	})
	sort.Strings(dates)
	return dates
}

// DatesPlayed returns the distinct dates of played matches, most recent first
func (r *Repository) DatesPlayed() []string {
	dates := distinct(r.matches, func(m Match) *string {
		if m.IsPlayed() {
			return m.Date
		}
		return nil
	})
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}

// Rounds returns the distinct round labels in natural order.
// Labels are ordered by the number they carry ("Jornada 2" before "Jornada 10"),
// then alphabetically.
func (r *Repository) Rounds() []string {
	rounds := distinct(r.matches, func(m Match) *string { return m.Round })
	sort.SliceStable(rounds, func(i, j int) bool {
		ni, nj := ParseRoundNumber(rounds[i]), ParseRoundNumber(rounds[j])
		if ni != nj {
			return ni < nj
		}
		return rounds[i] < rounds[j]
	})
	return rounds
}

// Teams returns the sorted distinct team names that appear in played matches
func (r *Repository) Teams() []string {
	seen := make(map[string]bool)
	teams := make([]string, 0)
	for _, m := range r.matches {
		if !m.IsPlayed() {
			continue
		}
		for _, name := range []string{m.HomeTeam, m.AwayTeam} {
			if !seen[name] {
				seen[name] = true
				teams = append(teams, name)
			}
		}
	}
	sort.Strings(teams)
	return teams
}

func (r *Repository) filter(keep func(Match) bool) []Match {
	out := make([]Match, 0)
	for _, m := range r.matches {
		if keep(m) {
			out = append(out, m.clone())
		}
	}
	return out
}

func involves(m Match, team string, venue Venue) bool {
	switch venue {
	case VenueHome:
		return strings.Contains(m.HomeTeam, team)
	case VenueAway:
		return strings.Contains(m.AwayTeam, team)
	default:
		return strings.Contains(m.HomeTeam, team) || strings.Contains(m.AwayTeam, team)
	}
}

func distinct(matches []Match, key func(Match) *string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, m := range matches {
		k := key(m)
		if k == nil || seen[*k] {
			continue
		}
		seen[*k] = true
		out = append(out, *k)
	}
	return out
}
