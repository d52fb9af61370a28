// Package config loads and validates the backtest configuration.
// Configuration errors are fatal at startup: a run never starts with a
// partially valid setup.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"options-spread-backtest/internal/domain"
)

// Config is the YAML-facing configuration surface.
type Config struct {
	Strategy StrategyConfig `yaml:"strategy"`
	Stores   StoresConfig   `yaml:"stores"`
	Logging  LoggingConfig  `yaml:"logging"`
	Output   OutputConfig   `yaml:"output"`
}

// StrategyConfig holds the strategy constants. Zero values fall back to
// the defaults the strategy was researched with.
type StrategyConfig struct {
	WindowStart     string `yaml:"window_start"`      // default 09:15
	WindowEnd       string `yaml:"window_end"`        // default 15:25
	QuoteTime       string `yaml:"quote_time"`        // default = window_end
	StrikeInterval  int    `yaml:"strike_interval"`   // default 100
	ExitWindowStart string `yaml:"exit_window_start"` // default 09:15
	ExitWindowEnd   string `yaml:"exit_window_end"`   // default 09:30
	TrailingWindow  int    `yaml:"trailing_window"`   // default 3 samples
}

// StoresConfig holds backend connection strings. Empty DSNs select the
// in-memory fixture stores.
type StoresConfig struct {
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
	PostgresDSN   string `yaml:"postgres_dsn"`
}

// LoggingConfig controls the logrus setup.
type LoggingConfig struct {
	Level string `yaml:"level"` // default info
	JSON  bool   `yaml:"json"`
}

// OutputConfig controls where stage boundary tables are written.
type OutputConfig struct {
	Dir string `yaml:"dir"` // empty disables boundary CSV snapshots
}

// Settings is the parsed, validated form of StrategyConfig consumed by
// the pipeline stages.
type Settings struct {
	WindowStart     domain.TimeOfDay
	WindowEnd       domain.TimeOfDay
	QuoteTime       domain.TimeOfDay
	StrikeInterval  int
	ExitWindowStart domain.TimeOfDay
	ExitWindowEnd   domain.TimeOfDay
	TrailingWindow  int
}

// Default returns the configuration the strategy was researched with.
func Default() Config {
	return Config{
		Strategy: StrategyConfig{
			WindowStart:     "09:15",
			WindowEnd:       "15:25",
			QuoteTime:       "15:25",
			StrikeInterval:  100,
			ExitWindowStart: "09:15",
			ExitWindowEnd:   "09:30",
			TrailingWindow:  3,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Settings validates the strategy section and resolves it into typed
// values. Any failure here aborts the run before any data is touched.
func (c Config) Settings() (*Settings, error) {
	s := &Settings{
		StrikeInterval: c.Strategy.StrikeInterval,
		TrailingWindow: c.Strategy.TrailingWindow,
	}

	var err error
	if s.WindowStart, err = domain.ParseTimeOfDay(c.Strategy.WindowStart); err != nil {
		return nil, fmt.Errorf("window_start: %w", err)
	}
	if s.WindowEnd, err = domain.ParseTimeOfDay(c.Strategy.WindowEnd); err != nil {
		return nil, fmt.Errorf("window_end: %w", err)
	}
	quoteTime := c.Strategy.QuoteTime
	if quoteTime == "" {
		quoteTime = c.Strategy.WindowEnd
	}
	if s.QuoteTime, err = domain.ParseTimeOfDay(quoteTime); err != nil {
		return nil, fmt.Errorf("quote_time: %w", err)
	}
	if s.ExitWindowStart, err = domain.ParseTimeOfDay(c.Strategy.ExitWindowStart); err != nil {
		return nil, fmt.Errorf("exit_window_start: %w", err)
	}
	if s.ExitWindowEnd, err = domain.ParseTimeOfDay(c.Strategy.ExitWindowEnd); err != nil {
		return nil, fmt.Errorf("exit_window_end: %w", err)
	}

	if s.WindowStart >= s.WindowEnd {
		return nil, fmt.Errorf("window_start %s must be before window_end %s",
			c.Strategy.WindowStart, c.Strategy.WindowEnd)
	}
	if s.ExitWindowStart >= s.ExitWindowEnd {
		return nil, fmt.Errorf("exit_window_start %s must be before exit_window_end %s",
			c.Strategy.ExitWindowStart, c.Strategy.ExitWindowEnd)
	}
	if s.StrikeInterval <= 0 {
		return nil, fmt.Errorf("strike_interval must be positive, got %d", s.StrikeInterval)
	}
	if s.TrailingWindow < 1 {
		return nil, fmt.Errorf("trailing_window must be at least 1, got %d", s.TrailingWindow)
	}

	return s, nil
}
