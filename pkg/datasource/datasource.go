// Package datasource fetches competition fixtures and turns them into podds matches.
package datasource

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/richard-senior/pronosticos/internal/logger"
	"github.com/richard-senior/pronosticos/pkg/util/podds"
)

// Source produces the match records of the competition found at locator
type Source interface {
	Fetch(ctx context.Context, locator string) ([]podds.Match, error)
}

// Fetcher retrieves the raw HTML of a page
type Fetcher interface {
	FetchPage(ctx context.Context, url string) ([]byte, error)
}

// Datasource is the default Source. HTTP(S) locators are fetched and parsed as
// fixture pages; anything else is read as a local CSV export.
type Datasource struct {
	fetcher Fetcher
	timeout time.Duration
}

// New creates a Datasource that fetches pages with fetcher.
// A zero timeout leaves deadlines to the caller's context.
func New(fetcher Fetcher, timeout time.Duration) *Datasource {
	return &Datasource{fetcher: fetcher, timeout: timeout}
}

// Fetch implements Source
func (d *Datasource) Fetch(ctx context.Context, locator string) ([]podds.Match, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return nil, fmt.Errorf("empty fixture locator")
	}

	if !isRemote(locator) {
		return d.readLocal(locator)
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	logger.Inform("Fetching fixtures from", locator)
	html, err := d.fetcher.FetchPage(ctx, locator)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fixtures from %s: %w", locator, err)
	}

	matches, err := ParseFixturePage(strings.NewReader(string(html)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse fixtures from %s: %w", locator, err)
	}
	logger.Info("Parsed fixtures", locator, len(matches))
	return matches, nil
}

func (d *Datasource) readLocal(path string) ([]podds.Match, error) {
	path = strings.TrimPrefix(path, "file://")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixtures file: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

func isRemote(locator string) bool {
	lower := strings.ToLower(locator)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
