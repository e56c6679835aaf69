package datasource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasourceFetchRemote(t *testing.T) {
	stub := &stubFetcher{pages: map[string]string{"https://www.livefutbol.com/espana/laliga/calendario/": fixturePage}}
	source := New(stub, time.Second)

	matches, err := source.Fetch(context.Background(), " https://www.livefutbol.com/espana/laliga/calendario/ ")
	require.NoError(t, err)
	assert.Len(t, matches, 3)
}

func TestDatasourceFetchErrors(t *testing.T) {
	source := New(&stubFetcher{err: errors.New("timeout")}, 0)

	_, err := source.Fetch(context.Background(), "https://example.com/")
	assert.ErrorContains(t, err, "timeout")

	_, err = source.Fetch(context.Background(), "   ")
	assert.Error(t, err)

	broken := New(&stubFetcher{pages: map[string]string{"https://example.com/": "<html></html>"}}, 0)
	_, err = broken.Fetch(context.Background(), "https://example.com/")
	assert.ErrorContains(t, err, "failed to parse")
}

func TestDatasourceFetchLocalCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "liga.csv")
	require.NoError(t, os.WriteFile(path, []byte("Jornada,Local,Visita,GA,GC\nJornada 1,Sevilla,Betis,1,0\n"), 0644))

	source := New(&stubFetcher{}, 0)
	for _, locator := range []string{path, "file://" + path} {
		matches, err := source.Fetch(context.Background(), locator)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "1:0", matches[0].ScoreString())
	}

	_, err := source.Fetch(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
