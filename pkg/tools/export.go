package tools

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/richard-senior/pronosticos/internal/app"
	"github.com/richard-senior/pronosticos/internal/logger"
	"github.com/richard-senior/pronosticos/pkg/protocol"
)

func ExportCSVTool() protocol.Tool {
	return protocol.Tool{
		Name: "export_csv",
		Description: `
		Writes the fixtures of a league to a CSV file with the columns Jornada,Fecha,Hora,Local,Visita,GA,GC.
		The file can be registered later as the url of a league to work offline.
		`,
		InputSchema: schema([]string{"league"}, map[string]protocol.ToolProperty{
			"league":   leagueProperty,
			"filepath": {Type: "string", Description: "The absolute path of the CSV file. Defaults to <league>.csv in the present working directory."},
		}),
	}
}

func HandleExportCSV(ctx context.Context, a *app.App, params map[string]any) (any, error) {
	id, err := requireString(params, "league")
	if err != nil {
		return nil, err
	}
	outputPath := stringParam(params, "filepath")
	if outputPath == "" {
		outputPath = "./" + id + ".csv"
	}

	var buf bytes.Buffer
	if err := a.ExportCSV(ctx, id, &buf); err != nil {
		return nil, err
	}
	if err := writeExport(outputPath, buf.Bytes()); err != nil {
		return nil, err
	}
	logger.Info("Exported fixtures to " + outputPath)

	return map[string]any{
		"location": outputPath,
		"bytes":    buf.Len(),
	}, nil
}

func writeExport(outputPath string, data []byte) error {
	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	return nil
}
