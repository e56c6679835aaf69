package podds

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDataset is returned when a competition has no loaded matches
	ErrEmptyDataset = errors.New("no matches loaded for competition")
	// ErrInsufficientHistory is returned when a team has too few played matches to be rated
	ErrInsufficientHistory = errors.New("insufficient match history")
	// ErrUnknownTeam is an InsufficientHistory case where the team has never played
	ErrUnknownTeam = errors.New("unknown team")
	// ErrNoReport is returned by a backtest that has nothing to evaluate
	ErrNoReport = errors.New("not enough played matches to produce an accuracy report")
)

// InsufficientHistoryError names the team that blocked a prediction
type InsufficientHistoryError struct {
	Team          string `json:"team"`
	MatchesPlayed int    `json:"matchesPlayed"`
	Required      int    `json:"required"`
}

func (e *InsufficientHistoryError) Error() string {
	if e.MatchesPlayed == 0 {
		return fmt.Sprintf("%s: %q has no played matches", ErrUnknownTeam, e.Team)
	}
	return fmt.Sprintf("%s: %q has played %d matches, %d required",
		ErrInsufficientHistory, e.Team, e.MatchesPlayed, e.Required)
}

// Is lets errors.Is match both ErrInsufficientHistory and, for teams with no
// history at all, ErrUnknownTeam.
func (e *InsufficientHistoryError) Is(target error) bool {
	switch target {
	case ErrInsufficientHistory:
		return true
	case ErrUnknownTeam:
		return e.MatchesPlayed == 0
	}
	return false
}
