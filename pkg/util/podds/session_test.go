package podds

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionReplace(t *testing.T) {
	session := NewSession(nil)
	assert.Equal(t, DefaultConfig(), session.Config())

	_, err := session.Repository("laliga")
	assert.ErrorIs(t, err, ErrEmptyDataset)

	first := session.Replace("laliga", sampleFixtures())
	repo, err := session.Repository("laliga")
	require.NoError(t, err)
	assert.Same(t, first, repo)

	session.Replace("laliga", sampleFixtures()[:1])
	repo, err = session.Repository("laliga")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.Len())
	// the first snapshot is untouched
	assert.Equal(t, 6, first.Len())

	session.Replace("empty", nil)
	_, err = session.Repository("empty")
	assert.ErrorIs(t, err, ErrEmptyDataset)

	assert.Equal(t, []string{"empty", "laliga"}, session.Competitions())
}

func TestSessionBacktestReport(t *testing.T) {
	session := NewSession(nil)
	session.Replace("liga", homeWinsLeague())

	_, ok := session.LastReport("liga")
	assert.False(t, ok)

	report, err := session.Backtest("liga")
	require.NoError(t, err)
	last, ok := session.LastReport("liga")
	require.True(t, ok)
	assert.Same(t, report, last)

	// a new snapshot invalidates the old report
	session.Replace("liga", homeWinsLeague())
	_, ok = session.LastReport("liga")
	assert.False(t, ok)

	session.Remove("liga")
	_, err = session.Model("liga")
	assert.ErrorIs(t, err, ErrEmptyDataset)
	assert.Empty(t, session.Competitions())
}

func TestSessionBacktestErrors(t *testing.T) {
	session := NewSession(nil)
	_, err := session.Backtest("missing")
	assert.ErrorIs(t, err, ErrEmptyDataset)

	session.Replace("short", homeWinsLeague()[:3])
	_, err = session.Backtest("short")
	assert.ErrorIs(t, err, ErrNoReport)
	_, ok := session.LastReport("short")
	assert.False(t, ok)
}

func TestSessionConcurrentAccess(t *testing.T) {
	session := NewSession(nil)
	session.Replace("liga", homeWinsLeague())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			session.Replace(fmt.Sprintf("liga-%d", i), homeWinsLeague())
			session.Replace("liga", homeWinsLeague())
		}(i)
		go func() {
			defer wg.Done()
			model, err := session.Model("liga")
			if assert.NoError(t, err) {
				_, err = model.Predict("A", "B")
				assert.NoError(t, err)
			}
			_, err = session.Backtest("liga")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, session.Competitions(), 9)
}
