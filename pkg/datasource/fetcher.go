package datasource

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/richard-senior/pronosticos/internal/logger"
	"github.com/richard-senior/pronosticos/pkg/transport"
)

// HTTPFetcher downloads pages with a plain HTTP client
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPFetcher uses the shared transport client
func NewHTTPFetcher(userAgent string) *HTTPFetcher {
	return &HTTPFetcher{Client: transport.GetCustomHTTPClient(), UserAgent: userAgent}
}

// FetchPage implements Fetcher
func (f *HTTPFetcher) FetchPage(ctx context.Context, url string) ([]byte, error) {
	return transport.GetHtmlContext(ctx, f.Client, url, f.UserAgent)
}

type forceRefreshKey struct{}

// WithForceRefresh marks ctx so a CachedFetcher downloads the page again
// instead of serving its copy. The new page still replaces the cached one.
func WithForceRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, forceRefreshKey{}, true)
}

// IsForceRefresh reports whether ctx was marked by WithForceRefresh
func IsForceRefresh(ctx context.Context) bool {
	force, _ := ctx.Value(forceRefreshKey{}).(bool)
	return force
}

// CachedFetcher keeps a copy of every page on disk and serves it until it is
// older than TTL or the context asks for a forced refresh
type CachedFetcher struct {
	Next Fetcher
	Dir  string
	TTL  time.Duration
	now  func() time.Time
}

// NewCachedFetcher wraps next with a page cache in dir
func NewCachedFetcher(next Fetcher, dir string, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{Next: next, Dir: dir, TTL: ttl, now: time.Now}
}

// FetchPage implements Fetcher
func (c *CachedFetcher) FetchPage(ctx context.Context, url string) ([]byte, error) {
	cacheFilename := c.cacheFile(url)

	if IsForceRefresh(ctx) {
		logger.Debug("Forced refresh, skipping cache:", cacheFilename)
	} else if info, err := os.Stat(cacheFilename); err == nil && c.now().Sub(info.ModTime()) < c.TTL {
		data, err := os.ReadFile(cacheFilename)
		if err == nil {
			logger.Debug("Loaded page from cache:", cacheFilename)
			return data, nil
		}
		logger.Warn("Failed to read cache file, fetching again", cacheFilename, err)
	}

	data, err := c.Next.FetchPage(ctx, url)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		logger.Warn("Failed to create cache directory", c.Dir, err)
		return data, nil
	}
	if err := os.WriteFile(cacheFilename, data, 0644); err != nil {
		logger.Warn("Failed to write cache file", cacheFilename, err)
	} else {
		logger.Debug("Cached page to", cacheFilename)
	}
	return data, nil
}

// Invalidate removes the cached copy of url
func (c *CachedFetcher) Invalidate(url string) error {
	err := os.Remove(c.cacheFile(url))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cache file: %w", err)
	}
	return nil
}

func (c *CachedFetcher) cacheFile(url string) string {
	sum := sha1.Sum([]byte(url))
	return filepath.Join(c.Dir, "page-"+hex.EncodeToString(sum[:])+".html")
}
