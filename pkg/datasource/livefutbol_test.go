package datasource

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturePage = `<!DOCTYPE html>
<html><body>
<div class="module-gameplan">
  <div>
    <div class="round-head">Jornada   1</div>
    <div class="match" data-datetime="2024-08-15T19:00:00+02:00">
      <div class="match-time">19:00</div>
      <div class="team-name-home"> Athletic  Club </div>
      <div class="match-result">1 : 1</div>
      <div class="team-name-away">Getafe</div>
    </div>
    <div class="match" data-datetime="2024-08-16">
      <div class="match-time">21:30</div>
      <div class="team-name-home">Betis</div>
      <div class="match-result">-:-</div>
      <div class="team-name-away">Girona</div>
    </div>
    <div class="ad">sponsored</div>
    <div class="round-head">Jornada 2</div>
    <div class="match" data-datetime="not a date">
      <div class="team-name-home">Getafe</div>
      <div class="match-result">0-1</div>
      <div class="team-name-away"></div>
    </div>
  </div>
</div>
</body></html>`

func TestParseFixturePage(t *testing.T) {
	matches, err := ParseFixturePage(strings.NewReader(fixturePage))
	require.NoError(t, err)
	require.Len(t, matches, 3)

	first := matches[0]
	assert.Equal(t, "Jornada 1", first.RoundLabel())
	assert.Equal(t, "2024-08-15", first.DateValue())
	assert.Equal(t, "19:00", first.KickoffValue())
	assert.Equal(t, "Athletic Club", first.HomeTeam)
	assert.Equal(t, "Getafe", first.AwayTeam)
	require.True(t, first.IsPlayed())
	assert.Equal(t, "1:1", first.ScoreString())

	// a date-only timestamp falls back to the printed kickoff
	second := matches[1]
	assert.Equal(t, "2024-08-16", second.DateValue())
	assert.Equal(t, "21:30", second.KickoffValue())
	assert.True(t, second.IsUpcoming())

	third := matches[2]
	assert.Equal(t, "Jornada 2", third.RoundLabel())
	assert.Nil(t, third.Date)
	assert.Equal(t, UnknownTeam, third.AwayTeam)
	assert.Equal(t, "0:1", third.ScoreString())
}

func TestParseFixturePageWithoutCalendar(t *testing.T) {
	_, err := ParseFixturePage(strings.NewReader(`<html><body><p>maintenance</p></body></html>`))
	assert.Error(t, err)

	_, err = ParseFixturePage(strings.NewReader(`<div class="module-gameplan"></div>`))
	assert.Error(t, err)
}

func TestParseFixturePageEmptyCalendar(t *testing.T) {
	matches, err := ParseFixturePage(strings.NewReader(`<div class="module-gameplan"><div></div></div>`))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestParseDatetime(t *testing.T) {
	date, kickoff := parseDatetime("2024-09-01T16:15:00+02:00")
	assert.Equal(t, "2024-09-01", date)
	assert.Equal(t, "16:15", kickoff)

	date, kickoff = parseDatetime("2024-09-01 18:30:00")
	assert.Equal(t, "2024-09-01", date)
	assert.Equal(t, "18:30", kickoff)

	date, kickoff = parseDatetime("")
	assert.Empty(t, date)
	assert.Empty(t, kickoff)
}
