package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/richard-senior/pronosticos/internal/app"
	"github.com/richard-senior/pronosticos/internal/config"
	"github.com/richard-senior/pronosticos/internal/logger"
	"github.com/richard-senior/pronosticos/pkg/api"
	"github.com/richard-senior/pronosticos/pkg/server"
	"github.com/richard-senior/pronosticos/pkg/transport"
)

const usage = `usage: pronosticos [-config file] <command> [args]

commands:
  serve                          MCP server over stdio (default)
  http                           HTTP JSON API
  refresh [league]               fetch fixtures of one or every league
  predict <league> <home> <away> predict a match
  backtest <league>              measure model accuracy on played matches
  export-csv <league> [file]     write fixtures as CSV
  odds-comparison <league> [file] price upcoming matches, as CSV when file is given
  leagues                        list leagues
  add-user <username> <password> register a user
`

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults to $"+config.EnvConfigPath+")")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.ApplyLogging(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		logger.Fatal("Failed to prepare directories", err)
	}

	args := flag.Args()
	command := "serve"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}
	logger.Info("Starting pronosticos", command)

	a, err := app.New(cfg)
	if err != nil {
		logger.Fatal("Failed to start application", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, a, command, args); err != nil {
		logger.Error("Command failed:", command, err)
		fmt.Fprintln(os.Stderr, err)
		a.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.App, command string, args []string) error {
	switch command {
	case "serve":
		s := server.NewServer(transport.NewStdioTransport(), a)
		return s.Start()

	case "http":
		return serveHTTP(ctx, a)

	case "refresh":
		if len(args) > 0 {
			result, err := a.Refresh(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(result)
		}
		results, err := a.RefreshAll(ctx)
		if printErr := printJSON(results); printErr != nil {
			return printErr
		}
		return err

	case "predict":
		if len(args) != 3 {
			return fmt.Errorf("predict needs <league> <home> <away>")
		}
		prediction, err := a.Predict(ctx, args[0], args[1], args[2])
		if err != nil {
			return err
		}
		logger.Info(prediction.String())
		return printJSON(prediction)

	case "backtest":
		if len(args) != 1 {
			return fmt.Errorf("backtest needs <league>")
		}
		report, err := a.Backtest(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(report)

	case "export-csv":
		if len(args) < 1 {
			return fmt.Errorf("export-csv needs <league> [file]")
		}
		if len(args) == 1 {
			return a.ExportCSV(ctx, args[0], os.Stdout)
		}
		f, err := os.Create(args[1])
		if err != nil {
			return err
		}
		if err := a.ExportCSV(ctx, args[0], f); err != nil {
			f.Close()
			return err
		}
		return f.Close()

	case "odds-comparison":
		if len(args) < 1 {
			return fmt.Errorf("odds-comparison needs <league> [file]")
		}
		if len(args) == 1 {
			comparisons, err := a.OddsComparison(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(comparisons)
		}
		f, err := os.Create(args[1])
		if err != nil {
			return err
		}
		if err := a.ExportOddsComparisonCSV(ctx, args[0], f); err != nil {
			f.Close()
			return err
		}
		return f.Close()

	case "leagues":
		leagues, err := a.Leagues().List()
		if err != nil {
			return err
		}
		return printJSON(leagues)

	case "add-user":
		if len(args) < 2 {
			return fmt.Errorf("add-user needs <username> <password> [email] [name]")
		}
		email, name := optionalArg(args, 2), optionalArg(args, 3)
		user, err := a.Users().Register(args[0], args[1], email, name)
		if err != nil {
			return err
		}
		return printJSON(user)
	}

	flag.Usage()
	return fmt.Errorf("unknown command: %s", command)
}

func serveHTTP(ctx context.Context, a *app.App) error {
	cfg := a.Config().HTTP
	s := api.NewServer(cfg, a)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down HTTP API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
