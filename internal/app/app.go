// Package app wires configuration, persistence, the fixture source and the
// prediction session into the operations every front end shares.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/richard-senior/pronosticos/internal/config"
	"github.com/richard-senior/pronosticos/internal/logger"
	"github.com/richard-senior/pronosticos/pkg/datasource"
	"github.com/richard-senior/pronosticos/pkg/store"
	"github.com/richard-senior/pronosticos/pkg/util/podds"
)

// App owns the long lived resources of a pronosticos process
type App struct {
	config   *config.Config
	db       *store.DB
	leagues  *store.LeagueRegistry
	users    *store.CredentialStore
	fixtures *store.FixtureStore
	source   datasource.Source
	session  *podds.Session
	closers  []io.Closer
}

// Option customises an App built by New
type Option func(*App)

// WithSource replaces the fixture source built from the datasource config
func WithSource(source datasource.Source) Option {
	return func(a *App) {
		a.source = source
	}
}

// RefreshResult summarises one refreshed competition
type RefreshResult struct {
	LeagueID  string    `json:"leagueId"`
	Matches   int       `json:"matches"`
	Played    int       `json:"played"`
	Upcoming  int       `json:"upcoming"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// New opens the database, seeds the default leagues and restores any stored
// fixture snapshots into a fresh session
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := store.Open(cfg.Paths.DBPath)
	if err != nil {
		return nil, err
	}

	a := &App{
		config:  cfg,
		db:      db,
		session: podds.NewSession(cfg.PoddsConfig()),
	}
	for _, opt := range opts {
		opt(a)
	}

	if err := a.init(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init() error {
	var err error
	if a.leagues, err = store.NewLeagueRegistry(a.db); err != nil {
		return err
	}
	if a.users, err = store.NewCredentialStore(a.db); err != nil {
		return err
	}
	if a.fixtures, err = store.NewFixtureStore(a.db); err != nil {
		return err
	}
	if _, err := a.leagues.SeedDefaults(); err != nil {
		return err
	}
	if a.source == nil {
		a.source = a.newSource()
	}
	return a.Restore()
}

// newSource builds the fetcher chain selected by datasource.fetch_mode
func (a *App) newSource() datasource.Source {
	ds := a.config.Datasource

	var fetcher datasource.Fetcher
	switch ds.FetchMode {
	case config.FetchPlaywright, config.FetchBrowser:
		pw := datasource.NewPlaywrightFetcher(ds.UserAgent)
		a.closers = append(a.closers, pw)
		fetcher = pw
	case config.FetchChromedp:
		cdp := datasource.NewChromedpFetcher(ds.UserAgent)
		a.closers = append(a.closers, cdp)
		fetcher = cdp
	default:
		fetcher = datasource.NewHTTPFetcher(ds.UserAgent)
	}

	if ds.CacheTTL > 0 && a.config.Paths.CachePath != "" {
		fetcher = datasource.NewCachedFetcher(fetcher, a.config.Paths.CachePath, ds.CacheTTL)
	}
	logger.Info("Using fixture fetch mode", ds.FetchMode)
	return datasource.New(fetcher, ds.Timeout)
}

// Close releases browsers and the database
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *App) Config() *config.Config { return a.config }
func (a *App) Session() *podds.Session { return a.session }
func (a *App) Leagues() *store.LeagueRegistry { return a.leagues }
func (a *App) Users() *store.CredentialStore { return a.users }
func (a *App) Fixtures() *store.FixtureStore { return a.fixtures }

// Restore loads every stored fixture snapshot into the session
func (a *App) Restore() error {
	ids, err := a.fixtures.Competitions()
	if err != nil {
		return err
	}
	for _, id := range ids {
		matches, err := a.fixtures.LoadSnapshot(id)
		if err != nil {
			return err
		}
		a.session.Replace(id, matches)
		logger.Info("Restored fixture snapshot", id, len(matches))
	}
	return nil
}

// Refresh fetches the league's fixtures, stores them and swaps them into the
// session. A source that yields no records is reported as ErrEmptyDataset and
// the previous snapshot is kept. Cached pages are never used.
func (a *App) Refresh(ctx context.Context, leagueID string) (*RefreshResult, error) {
	return a.refresh(datasource.WithForceRefresh(ctx), leagueID)
}

// refresh loads the league through the source; whether a cached page may
// answer is up to the context
func (a *App) refresh(ctx context.Context, leagueID string) (*RefreshResult, error) {
	league, err := a.leagues.Get(leagueID)
	if err != nil {
		return nil, err
	}

	matches, err := a.source.Fetch(ctx, league.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh %s: %w", league.ID, err)
	}
	if len(matches) == 0 {
		logger.Warn("Fixture source returned no matches, keeping previous snapshot", league.ID)
		return nil, fmt.Errorf("%w: %s returned no matches", podds.ErrEmptyDataset, league.ID)
	}

	if err := a.fixtures.SaveSnapshot(league.ID, matches); err != nil {
		return nil, err
	}
	repo := a.session.Replace(league.ID, matches)

	return &RefreshResult{
		LeagueID:  league.ID,
		Matches:   repo.Len(),
		Played:    len(repo.Played()),
		Upcoming:  len(repo.Upcoming()),
		FetchedAt: time.Now().UTC(),
	}, nil
}

// RefreshAll refreshes every registered league. Failures do not stop the
// remaining leagues; they are joined into the returned error.
func (a *App) RefreshAll(ctx context.Context) ([]*RefreshResult, error) {
	leagues, err := a.leagues.List()
	if err != nil {
		return nil, err
	}

	results := make([]*RefreshResult, 0, len(leagues))
	var errs []error
	for _, l := range leagues {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		result, err := a.Refresh(ctx, l.ID)
		if err != nil {
			logger.Error("Refresh failed", l.ID, err)
			errs = append(errs, err)
			continue
		}
		results = append(results, result)
	}
	return results, errors.Join(errs...)
}

// Repository returns the league's current snapshot, fetching it first when the
// session has none. That first load may be answered from the page cache.
func (a *App) Repository(ctx context.Context, leagueID string) (*podds.Repository, error) {
	repo, err := a.session.Repository(leagueID)
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, podds.ErrEmptyDataset) {
		return nil, err
	}
	if _, err := a.refresh(ctx, leagueID); err != nil {
		return nil, err
	}
	return a.session.Repository(leagueID)
}

// Model returns a model over the league's current snapshot
func (a *App) Model(ctx context.Context, leagueID string) (*podds.Model, error) {
	repo, err := a.Repository(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	return podds.NewModel(repo, a.session.Config()), nil
}

// Predict predicts a single fixture
func (a *App) Predict(ctx context.Context, leagueID, homeTeam, awayTeam string) (*podds.Prediction, error) {
	model, err := a.Model(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	return model.Predict(homeTeam, awayTeam)
}

// PredictUpcoming predicts the league's upcoming fixtures, optionally limited
// to a round and/or date
func (a *App) PredictUpcoming(ctx context.Context, leagueID, round, date string) ([]podds.UpcomingPrediction, error) {
	model, err := a.Model(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	return model.PredictUpcoming(round, date), nil
}

// Backtest runs and remembers a backtest of the league
func (a *App) Backtest(ctx context.Context, leagueID string) (*podds.AccuracyReport, error) {
	if _, err := a.Repository(ctx, leagueID); err != nil {
		return nil, err
	}
	return a.session.Backtest(leagueID)
}

// Statistics returns the league wide statistics
func (a *App) Statistics(ctx context.Context, leagueID string) (podds.LeagueStatistics, error) {
	repo, err := a.Repository(ctx, leagueID)
	if err != nil {
		return podds.LeagueStatistics{}, err
	}
	cfg := a.session.Config()
	return podds.CalculateLeagueStatistics(repo, cfg.OverUnderLines, cfg.MaxGoals), nil
}

// TeamStatistics returns one team's statistics split by venue
func (a *App) TeamStatistics(ctx context.Context, leagueID, team string) (podds.TeamStatistics, error) {
	repo, err := a.Repository(ctx, leagueID)
	if err != nil {
		return podds.TeamStatistics{}, err
	}
	return podds.CalculateTeamStatistics(repo, team, a.session.Config().OverUnderLines), nil
}

// OddsComparison prices the league's upcoming matches from venue frequencies
func (a *App) OddsComparison(ctx context.Context, leagueID string) ([]podds.OddsComparison, error) {
	repo, err := a.Repository(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	return podds.CalculateOddsComparison(repo), nil
}

// ExportOddsComparisonCSV writes the league's odds comparison as CSV
func (a *App) ExportOddsComparisonCSV(ctx context.Context, leagueID string, w io.Writer) error {
	comparisons, err := a.OddsComparison(ctx, leagueID)
	if err != nil {
		return err
	}
	return datasource.WriteOddsComparisonCSV(w, comparisons)
}

// ExportCSV writes the league's current snapshot as CSV
func (a *App) ExportCSV(ctx context.Context, leagueID string, w io.Writer) error {
	repo, err := a.Repository(ctx, leagueID)
	if err != nil {
		return err
	}
	return datasource.WriteCSV(w, repo.All())
}

// RemoveLeague deletes the league with its stored and loaded fixtures
func (a *App) RemoveLeague(leagueID string) error {
	if err := a.leagues.Remove(leagueID); err != nil {
		return err
	}
	if err := a.fixtures.DeleteSnapshot(leagueID); err != nil {
		return err
	}
	a.session.Remove(leagueID)
	return nil
}
