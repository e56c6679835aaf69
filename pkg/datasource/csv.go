package datasource

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/richard-senior/pronosticos/internal/logger"
	"github.com/richard-senior/pronosticos/pkg/util/podds"
)

// CSV column names of a fixture export
const (
	ColumnRound     = "Jornada"
	ColumnDate      = "Fecha"
	ColumnTime      = "Hora"
	ColumnHome      = "Local"
	ColumnAway      = "Visita"
	ColumnHomeGoals = "GA"
	ColumnAwayGoals = "GC"
)

// CSVHeader is the column order WriteCSV produces
var CSVHeader = []string{ColumnRound, ColumnDate, ColumnTime, ColumnHome, ColumnAway, ColumnHomeGoals, ColumnAwayGoals}

// WriteCSV exports matches with CSVHeader columns. Absent values are empty cells.
func WriteCSV(w io.Writer, matches []podds.Match) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, m := range matches {
		record := []string{
			m.RoundLabel(),
			m.DateValue(),
			m.KickoffValue(),
			m.HomeTeam,
			m.AwayTeam,
			goalsCell(m.HomeGoals),
			goalsCell(m.AwayGoals),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadCSV imports a fixture export. Columns are found by header name, so
// their order does not matter; a row with only one goal cell filled is
// imported as upcoming.
func ReadCSV(r io.Reader) ([]podds.Match, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return []podds.Match{}, nil
	}

	headers := records[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff") // Remove BOM
	}
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{ColumnHome, ColumnAway} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("CSV is missing the %s column", required)
		}
	}

	cell := func(record []string, column string) string {
		i, ok := index[column]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	matches := make([]podds.Match, 0, len(records)-1)
	for i, record := range records[1:] {
		home, away := cell(record, ColumnHome), cell(record, ColumnAway)
		if home == "" || away == "" {
			logger.Warn("Skipping CSV row without teams at row", i+2)
			continue
		}
		m := podds.NewMatch(cell(record, ColumnRound), cell(record, ColumnDate), cell(record, ColumnTime), home, away)

		h, hok := parseGoals(cell(record, ColumnHomeGoals))
		a, aok := parseGoals(cell(record, ColumnAwayGoals))
		if hok && aok {
			m = m.WithScore(h, a)
		} else if hok != aok {
			logger.Warn("CSV row has a partial score, treating as upcoming at row", i+2)
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// OddsComparisonHeader is the column order WriteOddsComparisonCSV produces
var OddsComparisonHeader = []string{
	ColumnRound, ColumnDate, ColumnTime, ColumnHome, ColumnAway,
	"Prob_Victoria_Local_%", "Prob_Empate_%", "Prob_Victoria_Visitante_%",
	"Cuota_Victoria_Local", "Cuota_Empate", "Cuota_Victoria_Visitante",
	"Mercado_Victoria", "Mercado_Empate",
	"Valor_Local", "Valor_Empate", "Valor_Visitante",
	"Prob_1X_%", "Prob_X2_%", "Prob_12_%",
	"Cuota_1X", "Cuota_X2", "Cuota_12",
	"Mercado_1X_X2", "Mercado_12",
	"Valor_1X", "Valor_X2", "Valor_12",
	"Goles_Esperados",
	"Prob_Over_1.5_%", "Prob_Over_2.5_%", "Prob_Under_3.5_%", "Prob_BTTS_%",
	"Cuota_Over_1.5", "Cuota_Over_2.5", "Cuota_Under_3.5", "Cuota_BTTS",
	"Prob_Local_Over2.5_%", "Prob_Local_Under2.5_%",
	"Prob_Empate_Over2.5_%", "Prob_Empate_Under2.5_%",
	"Prob_Visitante_Over2.5_%", "Prob_Visitante_Under2.5_%",
	"Cuota_Local_Over2.5", "Cuota_Local_Under2.5",
	"Cuota_Empate_Over2.5", "Cuota_Empate_Under2.5",
	"Cuota_Visitante_Over2.5", "Cuota_Visitante_Under2.5",
}

// WriteOddsComparisonCSV exports computed odds with OddsComparisonHeader columns
func WriteOddsComparisonCSV(w io.Writer, comparisons []podds.OddsComparison) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(OddsComparisonHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, c := range comparisons {
		m := c.Match
		record := []string{m.RoundLabel(), m.DateValue(), m.KickoffValue(), m.HomeTeam, m.AwayTeam}
		record = append(record, probabilities(c.HomeWin, c.Draw, c.AwayWin)...)
		record = append(record, odds(c.HomeWin, c.Draw, c.AwayWin)...)
		record = append(record, c.HomeWin.MarketRange, c.Draw.MarketRange)
		record = append(record, string(c.HomeWin.Verdict), string(c.Draw.Verdict), string(c.AwayWin.Verdict))
		record = append(record, probabilities(c.HomeOrDraw, c.DrawOrAway, c.HomeOrAway)...)
		record = append(record, odds(c.HomeOrDraw, c.DrawOrAway, c.HomeOrAway)...)
		record = append(record, c.HomeOrDraw.MarketRange, c.HomeOrAway.MarketRange)
		record = append(record, string(c.HomeOrDraw.Verdict), string(c.DrawOrAway.Verdict), string(c.HomeOrAway.Verdict))
		record = append(record, decimalCell(c.ExpectedGoals))
		record = append(record, probabilities(c.Over1p5, c.Over2p5, c.Under3p5, c.BothScore)...)
		record = append(record, odds(c.Over1p5, c.Over2p5, c.Under3p5, c.BothScore)...)
		combined := []podds.PricedOutcome{c.HomeWinOver2p5, c.HomeWinUnder2p5, c.DrawOver2p5, c.DrawUnder2p5, c.AwayWinOver2p5, c.AwayWinUnder2p5}
		record = append(record, probabilities(combined...)...)
		record = append(record, odds(combined...)...)
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func probabilities(outcomes ...podds.PricedOutcome) []string {
	cells := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		cells = append(cells, decimalCell(o.Probability))
	}
	return cells
}

func odds(outcomes ...podds.PricedOutcome) []string {
	cells := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		cells = append(cells, decimalCell(o.Odds))
	}
	return cells
}

func decimalCell(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func goalsCell(goals *int) string {
	if goals == nil {
		return ""
	}
	return strconv.Itoa(*goals)
}

// parseGoals accepts integers and the "2.0" floats some exporters write
func parseGoals(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 && f == float64(int(f)) {
		return int(f), true
	}
	return 0, false
}
