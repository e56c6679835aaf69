package store

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/richard-senior/pronosticos/internal/logger"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrDuplicateLeague is returned when a league name normalizes to an existing id
	ErrDuplicateLeague = errors.New("league already exists")
	// ErrLeagueNotFound is returned for unknown league ids
	ErrLeagueNotFound = errors.New("league not found")
)

// Compile-time check to ensure League implements Persistable interface
var _ Persistable = (*League)(nil)

// League is a competition and the locator its fixtures are fetched from
type League struct {
	ID        string    `json:"id" column:"id" dbtype:"TEXT NOT NULL" primary:"true"`
	Name      string    `json:"name" column:"name" dbtype:"TEXT NOT NULL"`
	URL       string    `json:"url" column:"url" dbtype:"TEXT NOT NULL"`
	CreatedAt time.Time `json:"createdAt" column:"created_at" dbtype:"DATETIME"`
	UpdatedAt time.Time `json:"updatedAt" column:"updated_at" dbtype:"DATETIME"`
}

func (l *League) GetTableName() string {
	return "league"
}

func (l *League) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{"id": l.ID}
}

func (l *League) SetPrimaryKey(pk map[string]interface{}) error {
	id, ok := pk["id"].(string)
	if !ok {
		return fmt.Errorf("league primary key must be a string id")
	}
	l.ID = id
	return nil
}

func (l *League) BeforeSave() error {
	l.Name = strings.TrimSpace(l.Name)
	l.URL = strings.TrimSpace(l.URL)
	if l.Name == "" {
		return fmt.Errorf("league name must not be empty")
	}
	if l.URL == "" {
		return fmt.Errorf("league url must not be empty")
	}
	if l.ID == "" {
		l.ID = NormalizeLeagueID(l.Name)
	}
	now := time.Now().UTC()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
	return nil
}

func (l *League) AfterSave() error    { return nil }
func (l *League) BeforeDelete() error { return nil }
func (l *League) AfterDelete() error  { return nil }

// DefaultLeagues are seeded into an empty registry
var DefaultLeagues = []League{
	{ID: "liga_esp", Name: "Liga Española", URL: "https://www.livefutbol.com/espana/laliga/calendario/"},
	{ID: "premier", Name: "Premier League", URL: "https://www.livefutbol.com/inglaterra/premier-league/calendario/"},
	{ID: "serie_a", Name: "Serie A", URL: "https://www.livefutbol.com/italia/serie-a/calendario/"},
	{ID: "bundesliga", Name: "Bundesliga", URL: "https://www.livefutbol.com/alemania/bundesliga/calendario/"},
	{ID: "ligue1", Name: "Ligue 1", URL: "https://www.livefutbol.com/francia/ligue-1/calendario/"},
}

// NormalizeLeagueID derives a league id from its display name:
// lower case, accents removed, runs of whitespace replaced by "_".
func NormalizeLeagueID(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), "_")
}

// LeagueRegistry stores the competitions the application knows about
type LeagueRegistry struct {
	db *DB
}

// NewLeagueRegistry creates the league table if needed
func NewLeagueRegistry(db *DB) (*LeagueRegistry, error) {
	if err := db.CreateTable(&League{}); err != nil {
		return nil, err
	}
	return &LeagueRegistry{db: db}, nil
}

// SeedDefaults adds DefaultLeagues when the registry is empty.
// Returns the number of leagues added.
func (r *LeagueRegistry) SeedDefaults() (int, error) {
	existing, err := r.List()
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for _, l := range DefaultLeagues {
		league := l
		if err := r.db.Insert(&league); err != nil {
			return 0, fmt.Errorf("failed to seed league %s: %w", l.ID, err)
		}
	}
	logger.Info("Seeded default leagues", len(DefaultLeagues))
	return len(DefaultLeagues), nil
}

// List returns every league ordered by name
func (r *LeagueRegistry) List() ([]*League, error) {
	rows, err := r.db.FindAll(&League{}, "name")
	if err != nil {
		return nil, err
	}
	leagues := make([]*League, 0, len(rows))
	for _, row := range rows {
		leagues = append(leagues, row.(*League))
	}
	return leagues, nil
}

// Get returns the league with the given id
func (r *LeagueRegistry) Get(id string) (*League, error) {
	league := &League{}
	if err := r.db.FindByPrimaryKey(league, map[string]interface{}{"id": id}); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrLeagueNotFound, id)
		}
		return nil, err
	}
	return league, nil
}

// Add registers a new league. The id is the normalized name; a name that
// normalizes to the id or the normalized name of an existing league is
// rejected with ErrDuplicateLeague.
func (r *LeagueRegistry) Add(name, url string) (*League, error) {
	league := &League{ID: NormalizeLeagueID(name), Name: name, URL: url}
	if league.ID == "" {
		return nil, fmt.Errorf("league name must not be empty")
	}

	existing, err := r.List()
	if err != nil {
		return nil, err
	}
	for _, l := range existing {
		if l.ID == league.ID || NormalizeLeagueID(l.Name) == league.ID {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateLeague, l.ID)
		}
	}

	if err := r.db.Insert(league); err != nil {
		return nil, err
	}
	logger.Info("Added league", league.ID, league.URL)
	return league, nil
}

// Update changes a league's name and/or url. Empty values are left unchanged.
// The id never changes.
func (r *LeagueRegistry) Update(id, name, url string) (*League, error) {
	league, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) != "" {
		league.Name = name
	}
	if strings.TrimSpace(url) != "" {
		league.URL = url
	}
	if err := r.db.Save(league); err != nil {
		return nil, err
	}
	return league, nil
}

// Remove deletes a league
func (r *LeagueRegistry) Remove(id string) error {
	err := r.db.Delete(&League{ID: id})
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrLeagueNotFound, id)
	}
	return err
}

// Locators returns the display name to fixture locator mapping
func (r *LeagueRegistry) Locators() (map[string]string, error) {
	leagues, err := r.List()
	if err != nil {
		return nil, err
	}
	locators := make(map[string]string, len(leagues))
	for _, l := range leagues {
		locators[l.Name] = l.URL
	}
	return locators, nil
}
