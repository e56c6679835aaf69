package podds

import (
	"strconv"
	"strings"
)

// Result codes as used throughout the model
const (
	ResultHome = "H"
	ResultDraw = "D"
	ResultAway = "A"
)

// Match is one fixture of a competition.
// Optional fields are nil when the source did not provide them.
// A match is played exactly when both goal counts are present.
type Match struct {
	Round       *string `json:"round,omitempty"`
	Date        *string `json:"date,omitempty"`        // YYYY-MM-DD
	KickoffTime *string `json:"kickoffTime,omitempty"` // HH:MM
	HomeTeam    string  `json:"homeTeam"`
	AwayTeam    string  `json:"awayTeam"`
	HomeGoals   *int    `json:"homeGoals,omitempty"`
	AwayGoals   *int    `json:"awayGoals,omitempty"`
}

// NewMatch builds an upcoming match. Empty strings become absent fields.
func NewMatch(round, date, kickoff, homeTeam, awayTeam string) Match {
	return Match{
		Round:       optionalString(round),
		Date:        optionalString(date),
		KickoffTime: optionalString(kickoff),
		HomeTeam:    homeTeam,
		AwayTeam:    awayTeam,
	}
}

// WithScore returns a copy of the match with the final score set
func (m Match) WithScore(homeGoals, awayGoals int) Match {
	m.HomeGoals = &homeGoals
	m.AwayGoals = &awayGoals
	return m
}

/////////////////////////////////////////////////////////////////////////
////// Status Query Methods
/////////////////////////////////////////////////////////////////////////

// IsPlayed returns true if the match has a final score
func (m Match) IsPlayed() bool {
	return m.HomeGoals != nil && m.AwayGoals != nil
}

// IsUpcoming returns true if the match has no final score
func (m Match) IsUpcoming() bool {
	return !m.IsPlayed()
}

// TotalGoals returns the goals scored by both sides, 0 for upcoming matches
func (m Match) TotalGoals() int {
	if !m.IsPlayed() {
		return 0
	}
	return *m.HomeGoals + *m.AwayGoals
}

// BothScored returns true if each side scored at least once
func (m Match) BothScored() bool {
	return m.IsPlayed() && *m.HomeGoals > 0 && *m.AwayGoals > 0
}

// Result returns "H", "D" or "A" for played matches and "" otherwise
func (m Match) Result() string {
	if !m.IsPlayed() {
		return ""
	}
	switch {
	case *m.HomeGoals > *m.AwayGoals:
		return ResultHome
	case *m.HomeGoals == *m.AwayGoals:
		return ResultDraw
	default:
		return ResultAway
	}
}

// ScoreString renders the score as "h:a", or "-:-" when not played
func (m Match) ScoreString() string {
	if !m.IsPlayed() {
		return "-:-"
	}
	return strconv.Itoa(*m.HomeGoals) + ":" + strconv.Itoa(*m.AwayGoals)
}

// RoundLabel returns the round label or "" when absent
func (m Match) RoundLabel() string {
	return valueOf(m.Round)
}

// DateValue returns the date or "" when absent
func (m Match) DateValue() string {
	return valueOf(m.Date)
}

// KickoffValue returns the kickoff time or "" when absent
func (m Match) KickoffValue() string {
	return valueOf(m.KickoffTime)
}

// normalize enforces the played invariant; it reports whether the record changed
func (m *Match) normalize() bool {
	if (m.HomeGoals == nil) != (m.AwayGoals == nil) {
		m.HomeGoals = nil
		m.AwayGoals = nil
		return true
	}
	return false
}

// clone deep-copies the optional fields so a repository never shares memory with its caller
func (m Match) clone() Match {
	c := m
	c.Round = copyString(m.Round)
	c.Date = copyString(m.Date)
	c.KickoffTime = copyString(m.KickoffTime)
	if m.HomeGoals != nil {
		h := *m.HomeGoals
		c.HomeGoals = &h
	}
	if m.AwayGoals != nil {
		a := *m.AwayGoals
		c.AwayGoals = &a
	}
	return c
}

/////////////////////////////////////////////////////////////////////////
////// Parsing helpers
/////////////////////////////////////////////////////////////////////////

// ParseScore extracts goals from score strings like "2:1", "2 - 1" or "2-1".
// ok is false for unplayed markers such as "-:-" or anything unparseable.
func ParseScore(scoreStr string) (homeGoals int, awayGoals int, ok bool) {
	scoreStr = strings.ReplaceAll(strings.TrimSpace(scoreStr), " ", "")
	if scoreStr == "" {
		return 0, 0, false
	}
	scoreStr = strings.ReplaceAll(scoreStr, "-", ":")
	parts := strings.Split(scoreStr, ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 {
		return 0, 0, false
	}
	a, err := strconv.Atoi(parts[1])
	if err != nil || a < 0 {
		return 0, 0, false
	}
	return h, a, true
}

// ParseRoundNumber extracts the ordinal from labels like "Jornada 12", "Round 1" or "7".
// Returns 0 when the label carries no number.
func ParseRoundNumber(roundStr string) int {
	roundStr = strings.TrimSpace(roundStr)

	for _, part := range strings.Fields(roundStr) {
		part = strings.Trim(part, ".ºª")
		if num, err := strconv.Atoi(part); err == nil {
			return num
		}
	}

	if num, err := strconv.Atoi(roundStr); err == nil {
		return num
	}

	return 0
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func valueOf(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
