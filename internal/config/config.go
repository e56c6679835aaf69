package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/richard-senior/pronosticos/internal/logger"
	"github.com/richard-senior/pronosticos/pkg/util/podds"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable that points at the config file
const EnvConfigPath = "PRONOSTICOS_CONFIG"

// Fetch modes for datasource.fetch_mode. FetchBrowser is an alias of FetchPlaywright.
const (
	FetchHTTP       = "http"
	FetchPlaywright = "playwright"
	FetchChromedp   = "chromedp"
	FetchBrowser    = "browser"
)

// Config is the application configuration. Every section has defaults, so
// a config file only needs the values it wants to change.
type Config struct {
	Paths      PathsConfig      `yaml:"paths"`
	Logging    LoggingConfig    `yaml:"logging"`
	Model      ModelConfig      `yaml:"model"`
	HTTP       HTTPConfig       `yaml:"http"`
	Datasource DatasourceConfig `yaml:"datasource"`
}

type PathsConfig struct {
	AssetsPath string `yaml:"assets"` // base directory for everything below
	CachePath  string `yaml:"cache"`  // downloaded fixture pages
	DBPath     string `yaml:"db"`     // sqlite database
}

type LoggingConfig struct {
	Level        string `yaml:"level"`  // debug, info, warn, error
	Output       string `yaml:"output"` // console, file, both
	File         string `yaml:"file"`
	ShowDateTime bool   `yaml:"show_datetime"`
}

type ModelConfig struct {
	MinMatchesPlayed     int     `yaml:"min_matches_played"`
	MinBacktestSample    int     `yaml:"min_backtest_sample"`
	MaxGoals             int     `yaml:"max_goals"`
	DefaultLeagueAverage float64 `yaml:"default_league_average"`
	TopScoreCount        int     `yaml:"top_score_count"`
	OverUnderLines       []int   `yaml:"over_under_lines"`
	BacktestGoalsLine    int     `yaml:"backtest_goals_line"`
}

type HTTPConfig struct {
	Address         string        `yaml:"address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatasourceConfig struct {
	FetchMode string        `yaml:"fetch_mode"` // http, playwright or chromedp
	Timeout   time.Duration `yaml:"timeout"`
	CacheTTL  time.Duration `yaml:"cache_ttl"` // 0 disables the page cache
	UserAgent string        `yaml:"user_agent"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	assets := filepath.Join(home, ".pronosticos")

	modelDefaults := podds.DefaultConfig()
	return &Config{
		Paths: PathsConfig{
			AssetsPath: assets,
			CachePath:  filepath.Join(assets, "cache"),
			DBPath:     filepath.Join(assets, "pronosticos.db"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: "file",
			File:   "/tmp/pronosticos.log",
		},
		Model: ModelConfig{
			MinMatchesPlayed:     modelDefaults.MinMatchesPlayed,
			MinBacktestSample:    modelDefaults.MinBacktestSample,
			MaxGoals:             modelDefaults.MaxGoals,
			DefaultLeagueAverage: modelDefaults.DefaultLeagueAverage,
			TopScoreCount:        modelDefaults.TopScoreCount,
			OverUnderLines:       modelDefaults.OverUnderLines,
			BacktestGoalsLine:    modelDefaults.BacktestGoalsLine,
		},
		HTTP: HTTPConfig{
			Address:         ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Datasource: DatasourceConfig{
			FetchMode: FetchHTTP,
			Timeout:   45 * time.Second,
			CacheTTL:  6 * time.Hour,
			UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
		},
	}
}

// Load reads the YAML file at configPath over the defaults.
// An empty path falls back to $PRONOSTICOS_CONFIG; a missing file gives the defaults.
func Load(configPath string) (*Config, error) {
	config := Default()
	if configPath == "" {
		configPath = os.Getenv(EnvConfigPath)
	}
	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("Config file not found, using defaults:", configPath)
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	config.fillDerivedPaths()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}
	return config, nil
}

// fillDerivedPaths places unset cache and db paths under the assets path
func (c *Config) fillDerivedPaths() {
	if c.Paths.CachePath == "" {
		c.Paths.CachePath = filepath.Join(c.Paths.AssetsPath, "cache")
	}
	if c.Paths.DBPath == "" {
		c.Paths.DBPath = filepath.Join(c.Paths.AssetsPath, "pronosticos.db")
	}
}

// Validate ensures all configuration values are within reasonable ranges
func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	if _, err := logger.ParseOutput(c.Logging.Output); err != nil {
		return err
	}
	if c.Paths.DBPath == "" {
		return fmt.Errorf("paths.db must not be empty")
	}
	switch c.Datasource.FetchMode {
	case FetchHTTP, FetchPlaywright, FetchChromedp, FetchBrowser:
	default:
		return fmt.Errorf("datasource.fetch_mode must be http, playwright or chromedp, got: %s", c.Datasource.FetchMode)
	}
	if c.Datasource.Timeout <= 0 {
		return fmt.Errorf("datasource.timeout must be positive, got: %s", c.Datasource.Timeout)
	}
	if c.Datasource.CacheTTL < 0 {
		return fmt.Errorf("datasource.cache_ttl must not be negative, got: %s", c.Datasource.CacheTTL)
	}
	return podds.ValidateConfig(c.PoddsConfig())
}

// PoddsConfig converts the model section to the engine's configuration
func (c *Config) PoddsConfig() *podds.Config {
	pc := podds.DefaultConfig()
	pc.MinMatchesPlayed = c.Model.MinMatchesPlayed
	pc.MinBacktestSample = c.Model.MinBacktestSample
	pc.MaxGoals = c.Model.MaxGoals
	pc.DefaultLeagueAverage = c.Model.DefaultLeagueAverage
	pc.TopScoreCount = c.Model.TopScoreCount
	pc.BacktestGoalsLine = c.Model.BacktestGoalsLine
	if len(c.Model.OverUnderLines) > 0 {
		pc.OverUnderLines = append([]int(nil), c.Model.OverUnderLines...)
	}
	return pc
}

// ApplyLogging configures the logger from the logging section
func (c *Config) ApplyLogging() error {
	level, err := logger.ParseLevel(c.Logging.Level)
	if err != nil {
		return err
	}
	output, err := logger.ParseOutput(c.Logging.Output)
	if err != nil {
		return err
	}
	logger.SetShowDateTime(c.Logging.ShowDateTime)
	logger.SetLevel(level)
	logger.SetLogFile(c.Logging.File)
	return logger.SetLogOutput(output)
}

// EnsureDirectories creates the assets and cache directories
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.AssetsPath, c.Paths.CachePath, filepath.Dir(c.Paths.DBPath)} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
