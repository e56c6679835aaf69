package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/richard-senior/pronosticos/internal/app"
	"github.com/richard-senior/pronosticos/internal/config"
	"github.com/richard-senior/pronosticos/internal/logger"
	"github.com/richard-senior/pronosticos/internal/processor"
)

func main() {
	debug := flag.Bool("debug", false, "Enable debug logging")
	configPath := flag.String("config", "", "YAML config file")
	inputFile := flag.String("input", "", "Input file path (if not provided, arguments or stdin will be used)")
	outputFile := flag.String("output", "", "Output file path (if not provided, stdout will be used)")
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
	if *debug {
		logger.SetLevel(logger.DEBUG)
		logger.Debug("Debug logging enabled")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		logger.Fatal("Failed to prepare directories", err)
	}

	// Determine input source
	var input []byte
	if *inputFile != "" {
		input, err = os.ReadFile(*inputFile)
		if err != nil {
			logger.Fatal("Failed to read input file", err)
		}
	} else if args := flag.Args(); len(args) > 0 {
		// "predict_match league=liga_espanola home=Barcelona away='Real Madrid'"
		request := processor.Request{
			Query:     strings.Join(quoteArgs(args), " "),
			RequestID: fmt.Sprintf("cli-%d", os.Getpid()),
		}
		input, err = json.Marshal(request)
		if err != nil {
			logger.Fatal("Failed to create request from command line arguments", err)
		}
	} else {
		input, err = io.ReadAll(os.Stdin)
		if err != nil {
			logger.Fatal("Failed to read from stdin", err)
		}
	}

	a, err := app.New(cfg)
	if err != nil {
		logger.Fatal("Failed to start application", err)
	}

	result, err := processor.ProcessRequest(context.Background(), a, input)
	a.Close()
	if result != nil {
		if *outputFile != "" {
			if writeErr := os.WriteFile(*outputFile, result, 0644); writeErr != nil {
				logger.Fatal("Failed to write to output file", writeErr)
			}
		} else {
			fmt.Println(string(result))
		}
	}
	if err != nil {
		logger.Error("Failed to process request", err)
		os.Exit(1)
	}
}

// quoteArgs re-quotes shell arguments whose value contains spaces so the
// query survives being joined back into one string
func quoteArgs(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if ok && strings.ContainsAny(value, " \t") && !strings.ContainsRune(value, '"') {
			arg = key + `="` + value + `"`
		}
		out[i] = arg
	}
	return out
}
