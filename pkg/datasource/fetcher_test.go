package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFetcher serves fixed pages and counts calls
type stubFetcher struct {
	pages map[string]string
	calls int
	err   error
}

func (s *stubFetcher) FetchPage(ctx context.Context, url string) ([]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	page, ok := s.pages[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return []byte(page), nil
}

func TestHTTPFetcher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pronosticos-test", r.Header.Get("User-Agent"))
		if r.URL.Path != "/calendario/" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(fixturePage))
	}))
	defer server.Close()

	fetcher := &HTTPFetcher{Client: server.Client(), UserAgent: "pronosticos-test"}
	page, err := fetcher.FetchPage(context.Background(), server.URL+"/calendario/")
	require.NoError(t, err)
	assert.Equal(t, fixturePage, string(page))

	_, err = fetcher.FetchPage(context.Background(), server.URL+"/missing/")
	assert.Error(t, err)
}

func TestCachedFetcher(t *testing.T) {
	stub := &stubFetcher{pages: map[string]string{"https://example.com/a": "<html>a</html>"}}
	dir := filepath.Join(t.TempDir(), "cache")
	cache := NewCachedFetcher(stub, dir, time.Hour)

	page, err := cache.FetchPage(context.Background(), "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, "<html>a</html>", string(page))
	assert.Equal(t, 1, stub.calls)

	page, err = cache.FetchPage(context.Background(), "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, "<html>a</html>", string(page))
	assert.Equal(t, 1, stub.calls, "second fetch should be served from disk")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, cache.Invalidate("https://example.com/a"))
	require.NoError(t, cache.Invalidate("https://example.com/a"))
	_, err = cache.FetchPage(context.Background(), "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls)
}

func TestCachedFetcherExpires(t *testing.T) {
	stub := &stubFetcher{pages: map[string]string{"https://example.com/a": "fresh"}}
	cache := NewCachedFetcher(stub, t.TempDir(), time.Minute)

	_, err := cache.FetchPage(context.Background(), "https://example.com/a")
	require.NoError(t, err)

	cache.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = cache.FetchPage(context.Background(), "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls)
}

func TestCachedFetcherDoesNotCacheErrors(t *testing.T) {
	stub := &stubFetcher{err: errors.New("connection refused")}
	dir := t.TempDir()
	cache := NewCachedFetcher(stub, dir, time.Hour)

	_, err := cache.FetchPage(context.Background(), "https://example.com/a")
	assert.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCachedFetcherForceRefresh(t *testing.T) {
	stub := &stubFetcher{pages: map[string]string{"https://example.com/a": "old"}}
	cache := NewCachedFetcher(stub, t.TempDir(), time.Hour)
	ctx := context.Background()

	_, err := cache.FetchPage(ctx, "https://example.com/a")
	require.NoError(t, err)

	stub.pages["https://example.com/a"] = "new"
	page, err := cache.FetchPage(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, "old", string(page))

	forced := WithForceRefresh(ctx)
	assert.True(t, IsForceRefresh(forced))
	assert.False(t, IsForceRefresh(ctx))
	page, err = cache.FetchPage(forced, "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, "new", string(page))
	assert.Equal(t, 2, stub.calls)

	page, err = cache.FetchPage(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, "new", string(page), "the forced fetch should replace the cached copy")
	assert.Equal(t, 2, stub.calls)
}
