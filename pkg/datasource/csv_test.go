package datasource

import (
	"bytes"
	"strings"
	"testing"

	"github.com/richard-senior/pronosticos/pkg/util/podds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	matches := []podds.Match{
		podds.NewMatch("Jornada 1", "2024-08-15", "19:00", "Athletic", "Getafe").WithScore(1, 1),
		podds.NewMatch("Jornada 2", "", "", "Getafe", "Rayo Vallecano"),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, matches))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Jornada,Fecha,Hora,Local,Visita,GA,GC", lines[0])
	assert.Equal(t, "Jornada 1,2024-08-15,19:00,Athletic,Getafe,1,1", lines[1])
	assert.Equal(t, "Jornada 2,,,Getafe,Rayo Vallecano,,", lines[2])
}

func TestReadCSVWrittenByWriteCSV(t *testing.T) {
	matches := []podds.Match{
		podds.NewMatch("Jornada 1", "2024-08-15", "19:00", "Athletic", "Getafe").WithScore(1, 1),
		podds.NewMatch("Jornada 2", "", "", "Getafe", "Rayo, Vallecano"),
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, matches))

	read, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, matches, read)
}

func TestReadCSVColumnOrderAndCells(t *testing.T) {
	input := "\ufeffLocal,Visita,GC,GA,Fecha\n" +
		"Sevilla,Betis,0,2.0,2024-10-06\n" +
		"Cadiz,Elche,1,,\n" +
		",Osasuna,1,1,\n" +
		"Villarreal,Mallorca,x,1,\n"

	matches, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.Equal(t, "Sevilla", matches[0].HomeTeam)
	assert.Equal(t, "2:0", matches[0].ScoreString())
	assert.Equal(t, "2024-10-06", matches[0].DateValue())
	assert.Nil(t, matches[0].Round)

	// partial and malformed scores are imported as upcoming
	assert.True(t, matches[1].IsUpcoming())
	assert.True(t, matches[2].IsUpcoming())
}

func TestReadCSVErrors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("Jornada,Local\nJornada 1,Sevilla\n"))
	assert.Error(t, err)

	matches, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestWriteOddsComparisonCSV(t *testing.T) {
	repo := podds.NewRepository([]podds.Match{
		podds.NewMatch("Jornada 1", "2024-08-15", "19:00", "Athletic", "Getafe").WithScore(2, 1),
		podds.NewMatch("Jornada 1", "2024-08-16", "21:00", "Rayo Vallecano", "Getafe").WithScore(0, 0),
		podds.NewMatch("Jornada 2", "2024-08-24", "18:30", "Athletic", "Rayo Vallecano"),
	})

	var buf bytes.Buffer
	require.NoError(t, WriteOddsComparisonCSV(&buf, podds.CalculateOddsComparison(repo)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	header := strings.Split(lines[0], ",")
	row := strings.Split(lines[1], ",")
	require.Len(t, header, len(OddsComparisonHeader))
	require.Len(t, row, len(OddsComparisonHeader))

	cell := func(column string) string {
		for i, h := range header {
			if h == column {
				return row[i]
			}
		}
		t.Fatalf("missing column %s", column)
		return ""
	}
	assert.Equal(t, "Jornada 2", cell(ColumnRound))
	assert.Equal(t, "Athletic", cell(ColumnHome))
	assert.Equal(t, "Rayo Vallecano", cell(ColumnAway))
	// Athletic won at home, Rayo have not played away
	assert.Equal(t, "100.00", cell("Prob_Victoria_Local_%"))
	assert.Equal(t, "1.00", cell("Cuota_Victoria_Local"))
	assert.Equal(t, "0.00", cell("Cuota_Empate"))
	assert.Equal(t, "NO", cell("Valor_Local"))
	assert.Equal(t, "1.50-3.50", cell("Mercado_Victoria"))
	assert.Equal(t, "1.50", cell("Goles_Esperados"))
}
