package podds

import (
	"fmt"
	"sort"
	"sync"
)

// Session is the caller-owned state of a running application: the current
// fixtures snapshot of every loaded competition and the last backtest each
// produced. Snapshots are replaced whole, so a reader holding one never sees
// a partially refreshed competition.
type Session struct {
	mu      sync.RWMutex
	config  *Config
	repos   map[string]*Repository
	reports map[string]*AccuracyReport
}

// NewSession creates an empty session. A nil config uses DefaultConfig.
func NewSession(config *Config) *Session {
	if config == nil {
		config = DefaultConfig()
	}
	return &Session{
		config:  config,
		repos:   make(map[string]*Repository),
		reports: make(map[string]*AccuracyReport),
	}
}

// Config returns the model configuration used for every competition
func (s *Session) Config() *Config {
	return s.config
}

// Replace swaps in a new snapshot for the competition built from matches.
// The previous accuracy report is discarded since it described old data.
func (s *Session) Replace(competitionID string, matches []Match) *Repository {
	repo := NewRepository(matches)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repos[competitionID] = repo
	delete(s.reports, competitionID)
	return repo
}

// Remove forgets a competition
func (s *Session) Remove(competitionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.repos, competitionID)
	delete(s.reports, competitionID)
}

// Repository returns the current snapshot of a competition.
// Returns ErrEmptyDataset when nothing has been loaded for it.
func (s *Session) Repository(competitionID string) (*Repository, error) {
	s.mu.RLock()
	repo, ok := s.repos[competitionID]
	s.mu.RUnlock()
	if !ok || repo.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDataset, competitionID)
	}
	return repo, nil
}

// Model returns a model over the competition's current snapshot
func (s *Session) Model(competitionID string) (*Model, error) {
	repo, err := s.Repository(competitionID)
	if err != nil {
		return nil, err
	}
	return NewModel(repo, s.config), nil
}

// Backtest runs a backtest over the competition's current snapshot and
// remembers the report
func (s *Session) Backtest(competitionID string) (*AccuracyReport, error) {
	repo, err := s.Repository(competitionID)
	if err != nil {
		return nil, err
	}
	report, err := NewModel(repo, s.config).Backtest()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// a refresh may have landed while the backtest ran
	if s.repos[competitionID] == repo {
		s.reports[competitionID] = report
	}
	return report, nil
}

// LastReport returns the most recent backtest of the competition's current snapshot
func (s *Session) LastReport(competitionID string) (*AccuracyReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[competitionID]
	return report, ok
}

// Competitions returns the ids of every loaded competition, sorted
func (s *Session) Competitions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.repos))
	for id := range s.repos {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
