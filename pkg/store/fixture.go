package store

import (
	"fmt"
	"time"

	"github.com/richard-senior/pronosticos/internal/logger"
	"github.com/richard-senior/pronosticos/pkg/util/podds"
)

// Compile-time check to ensure Fixture implements Persistable interface
var _ Persistable = (*Fixture)(nil)

// Fixture is the stored form of a podds.Match within a competition snapshot
type Fixture struct {
	CompetitionID string    `column:"competition_id" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`
	Seq           int       `column:"seq" dbtype:"INTEGER NOT NULL" primary:"true"`
	Round         *string   `column:"round" dbtype:"TEXT"`
	Date          *string   `column:"match_date" dbtype:"TEXT"`
	KickoffTime   *string   `column:"kickoff_time" dbtype:"TEXT"`
	HomeTeam      string    `column:"home_team" dbtype:"TEXT NOT NULL"`
	AwayTeam      string    `column:"away_team" dbtype:"TEXT NOT NULL"`
	HomeGoals     *int      `column:"home_goals" dbtype:"INTEGER"`
	AwayGoals     *int      `column:"away_goals" dbtype:"INTEGER"`
	FetchedAt     time.Time `column:"fetched_at" dbtype:"DATETIME"`
}

func (f *Fixture) GetTableName() string {
	return "fixture"
}

func (f *Fixture) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{"competition_id": f.CompetitionID, "seq": f.Seq}
}

func (f *Fixture) SetPrimaryKey(pk map[string]interface{}) error {
	id, ok := pk["competition_id"].(string)
	if !ok {
		return fmt.Errorf("fixture competition_id must be a string")
	}
	seq, ok := pk["seq"].(int)
	if !ok {
		return fmt.Errorf("fixture seq must be an int")
	}
	f.CompetitionID = id
	f.Seq = seq
	return nil
}

func (f *Fixture) BeforeSave() error {
	if f.CompetitionID == "" {
		return fmt.Errorf("fixture competition id must not be empty")
	}
	if (f.HomeGoals == nil) != (f.AwayGoals == nil) {
		return fmt.Errorf("fixture %s v %s has a partial score", f.HomeTeam, f.AwayTeam)
	}
	return nil
}

func (f *Fixture) AfterSave() error    { return nil }
func (f *Fixture) BeforeDelete() error { return nil }
func (f *Fixture) AfterDelete() error  { return nil }

// Match converts the stored row back to a podds.Match
func (f *Fixture) Match() podds.Match {
	return podds.Match{
		Round:       f.Round,
		Date:        f.Date,
		KickoffTime: f.KickoffTime,
		HomeTeam:    f.HomeTeam,
		AwayTeam:    f.AwayTeam,
		HomeGoals:   f.HomeGoals,
		AwayGoals:   f.AwayGoals,
	}
}

// FixtureStore keeps the last fetched snapshot of each competition
type FixtureStore struct {
	db *DB
}

// NewFixtureStore creates the fixture table if needed
func NewFixtureStore(db *DB) (*FixtureStore, error) {
	if err := db.CreateTable(&Fixture{}); err != nil {
		return nil, err
	}
	return &FixtureStore{db: db}, nil
}

// SaveSnapshot replaces the stored fixtures of a competition in one transaction
func (s *FixtureStore) SaveSnapshot(competitionID string, matches []podds.Match) error {
	fetchedAt := time.Now().UTC()
	rows := make([]Persistable, 0, len(matches))
	for i, m := range matches {
		if m.HomeGoals == nil || m.AwayGoals == nil {
			m.HomeGoals, m.AwayGoals = nil, nil
		}
		rows = append(rows, &Fixture{
			CompetitionID: competitionID,
			Seq:           i,
			Round:         m.Round,
			Date:          m.Date,
			KickoffTime:   m.KickoffTime,
			HomeTeam:      m.HomeTeam,
			AwayTeam:      m.AwayTeam,
			HomeGoals:     m.HomeGoals,
			AwayGoals:     m.AwayGoals,
			FetchedAt:     fetchedAt,
		})
	}
	if err := s.db.ReplaceWhere(&Fixture{}, rows, "competition_id = ?", competitionID); err != nil {
		return fmt.Errorf("failed to store snapshot for %s: %w", competitionID, err)
	}
	logger.Info("Stored fixture snapshot", competitionID, len(rows))
	return nil
}

// LoadSnapshot returns the stored fixtures of a competition in source order.
// An unknown competition gives an empty slice.
func (s *FixtureStore) LoadSnapshot(competitionID string) ([]podds.Match, error) {
	rows, err := s.db.FindWhere(&Fixture{}, "competition_id = ? ORDER BY seq", competitionID)
	if err != nil {
		return nil, err
	}
	matches := make([]podds.Match, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, row.(*Fixture).Match())
	}
	return matches, nil
}

// DeleteSnapshot forgets a competition's stored fixtures
func (s *FixtureStore) DeleteSnapshot(competitionID string) error {
	_, err := s.db.DeleteWhere(&Fixture{}, "competition_id = ?", competitionID)
	return err
}

// Competitions returns the ids that have a stored snapshot
func (s *FixtureStore) Competitions() ([]string, error) {
	rows, err := s.db.sql.Query("SELECT DISTINCT competition_id FROM fixture ORDER BY competition_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list stored competitions: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan competition id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
