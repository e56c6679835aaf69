package store

import (
	"testing"

	"github.com/richard-senior/pronosticos/pkg/util/podds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixtureSnapshotRoundTrip(t *testing.T) {
	fixtures, err := NewFixtureStore(openTestDB(t))
	require.NoError(t, err)

	matches := []podds.Match{
		podds.NewMatch("Jornada 1", "2024-08-16", "19:00", "Athletic", "Getafe").WithScore(1, 1),
		podds.NewMatch("Jornada 1", "", "", "Betis", "Girona").WithScore(1, 1),
		podds.NewMatch("Jornada 2", "2024-08-25", "", "Getafe", "Rayo Vallecano"),
	}
	require.NoError(t, fixtures.SaveSnapshot("liga_esp", matches))

	loaded, err := fixtures.LoadSnapshot("liga_esp")
	require.NoError(t, err)
	assert.Equal(t, matches, loaded)

	ids, err := fixtures.Competitions()
	require.NoError(t, err)
	assert.Equal(t, []string{"liga_esp"}, ids)
}

func TestFixtureSnapshotReplaces(t *testing.T) {
	fixtures, err := NewFixtureStore(openTestDB(t))
	require.NoError(t, err)

	first := []podds.Match{
		podds.NewMatch("", "", "", "A", "B"),
		podds.NewMatch("", "", "", "C", "D"),
	}
	second := []podds.Match{podds.NewMatch("", "", "", "A", "B").WithScore(3, 0)}

	require.NoError(t, fixtures.SaveSnapshot("liga", first))
	require.NoError(t, fixtures.SaveSnapshot("other", first))
	require.NoError(t, fixtures.SaveSnapshot("liga", second))

	loaded, err := fixtures.LoadSnapshot("liga")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, 3, *loaded[0].HomeGoals)

	other, err := fixtures.LoadSnapshot("other")
	require.NoError(t, err)
	assert.Len(t, other, 2)

	require.NoError(t, fixtures.DeleteSnapshot("liga"))
	loaded, err = fixtures.LoadSnapshot("liga")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestFixtureSnapshotDropsPartialScores(t *testing.T) {
	fixtures, err := NewFixtureStore(openTestDB(t))
	require.NoError(t, err)

	h := 2
	require.NoError(t, fixtures.SaveSnapshot("liga", []podds.Match{{HomeTeam: "A", AwayTeam: "B", HomeGoals: &h}}))

	loaded, err := fixtures.LoadSnapshot("liga")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.True(t, loaded[0].IsUpcoming())
}
