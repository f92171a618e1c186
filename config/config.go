package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rustyeddy/tradestats/analytics"
	"github.com/rustyeddy/tradestats/journal"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvDBPath         = "TRADESTATS_DB_PATH"
	EnvLogLevel       = "TRADESTATS_LOG_LEVEL"
	EnvLogFormat      = "TRADESTATS_LOG_FORMAT"
	EnvInitialBalance = "TRADESTATS_INITIAL_BALANCE"
)

// Config represents the complete tradestats configuration
type Config struct {
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Import   ImportConfig   `json:"import" yaml:"import"`
	Analysis AnalysisConfig `json:"analysis" yaml:"analysis"`
	Log      LogConfig      `json:"log" yaml:"log"`
}

// JournalConfig locates the SQLite trade store
type JournalConfig struct {
	DBPath string `json:"db_path" yaml:"db_path"`
}

// ImportConfig controls how CSV exports are read
type ImportConfig struct {
	// ColumnMapping maps a trade field to the header that holds it.
	ColumnMapping map[string]string `json:"column_mapping,omitempty" yaml:"column_mapping,omitempty"`
	// Timezone applies to timestamps that carry no offset.
	Timezone string `json:"timezone,omitempty" yaml:"timezone,omitempty"`
}

// AnalysisConfig contains the analyzer parameters
type AnalysisConfig struct {
	InitialBalance string          `json:"initial_balance" yaml:"initial_balance"`
	RiskFreeRate   float64         `json:"risk_free_rate" yaml:"risk_free_rate"`
	CapitalBase    string          `json:"capital_base" yaml:"capital_base"`
	Sessions       []SessionConfig `json:"sessions,omitempty" yaml:"sessions,omitempty"`
	Overlaps       []OverlapConfig `json:"overlaps,omitempty" yaml:"overlaps,omitempty"`
}

// SessionConfig is a named UTC window, e.g. {London, "08:00", "16:00"}
type SessionConfig struct {
	Name  string `json:"name" yaml:"name"`
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// OverlapConfig names two sessions whose intersection is analyzed
type OverlapConfig struct {
	A string `json:"a" yaml:"a"`
	B string `json:"b" yaml:"b"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // "json" or "console"
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON).
// Fields missing from the file keep their defaults, and environment
// overrides are applied before validation.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Load reads path when it is set, otherwise starts from Default. Either way
// the environment is applied and the result validated.
func Load(path string) (*Config, error) {
	if path != "" {
		return LoadFromFile(path)
	}
	cfg := Default()
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads the first .env file found in paths into the process
// environment. Missing files are not an error.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
		return nil
	}
	return nil
}

// ApplyEnv overrides file values with any TRADESTATS_* variables that are set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Journal.DBPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv(EnvInitialBalance); v != "" {
		c.Analysis.InitialBalance = v
	}
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Journal.DBPath == "" {
		return errors.New("journal.db_path is required")
	}

	for field := range c.Import.ColumnMapping {
		if _, ok := journal.CanonicalField(field); !ok {
			return fmt.Errorf("import.column_mapping: unknown field %q", field)
		}
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("import.timezone: %w", err)
	}

	if b, err := c.Balance(); err != nil {
		return fmt.Errorf("analysis.initial_balance: %w", err)
	} else if !b.IsPositive() {
		return errors.New("analysis.initial_balance must be positive")
	}
	if b, err := c.Capital(); err != nil {
		return fmt.Errorf("analysis.capital_base: %w", err)
	} else if !b.IsPositive() {
		return errors.New("analysis.capital_base must be positive")
	}
	if c.Analysis.RiskFreeRate < 0 || c.Analysis.RiskFreeRate >= 1 {
		return errors.New("analysis.risk_free_rate must be between 0 and 1")
	}

	sessions, err := c.Sessions()
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(sessions))
	for _, s := range sessions {
		known[s.Name] = true
	}
	for _, o := range c.Analysis.Overlaps {
		if !known[o.A] || !known[o.B] {
			return fmt.Errorf("analysis.overlaps: unknown session in %s/%s", o.A, o.B)
		}
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	if c.Log.Format != "" && c.Log.Format != "json" && c.Log.Format != "console" {
		return errors.New("log.format must be 'json' or 'console'")
	}
	return nil
}

// Balance is the starting equity for the drawdown curve.
func (c *Config) Balance() (decimal.Decimal, error) {
	return decimal.NewFromString(c.Analysis.InitialBalance)
}

// Capital is the base that turns trade profits into returns.
func (c *Config) Capital() (decimal.Decimal, error) {
	return decimal.NewFromString(c.Analysis.CapitalBase)
}

func (c *Config) Location() (*time.Location, error) {
	if c.Import.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Import.Timezone)
}

// Sessions parses the configured session windows. An empty list means the
// default FX sessions.
func (c *Config) Sessions() ([]analytics.Session, error) {
	if len(c.Analysis.Sessions) == 0 {
		return analytics.DefaultSessions(), nil
	}

	out := make([]analytics.Session, 0, len(c.Analysis.Sessions))
	seen := map[string]bool{}
	for _, s := range c.Analysis.Sessions {
		if s.Name == "" {
			return nil, errors.New("analysis.sessions: name is required")
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("analysis.sessions: duplicate session %q", s.Name)
		}
		seen[s.Name] = true

		w, err := analytics.ParseWindow(s.Start, s.End)
		if err != nil {
			return nil, fmt.Errorf("analysis.sessions %s: %w", s.Name, err)
		}
		out = append(out, analytics.Session{Name: s.Name, Window: w})
	}
	return out, nil
}

// Overlaps returns the configured pairs, or the defaults when none are set.
func (c *Config) Overlaps() []analytics.OverlapPair {
	if len(c.Analysis.Overlaps) == 0 {
		return analytics.DefaultOverlaps()
	}
	out := make([]analytics.OverlapPair, len(c.Analysis.Overlaps))
	for i, o := range c.Analysis.Overlaps {
		out[i] = analytics.OverlapPair{A: o.A, B: o.B}
	}
	return out
}

// TimeOptions collects the analyzer settings for analytics.NewTimePatternAnalyzer.
func (c *Config) TimeOptions() ([]analytics.TimeOption, error) {
	sessions, err := c.Sessions()
	if err != nil {
		return nil, err
	}
	capital, err := c.Capital()
	if err != nil {
		return nil, fmt.Errorf("analysis.capital_base: %w", err)
	}
	return []analytics.TimeOption{
		analytics.WithSessions(sessions),
		analytics.WithOverlaps(c.Overlaps()),
		analytics.WithRiskFreeRate(c.Analysis.RiskFreeRate),
		analytics.WithCapitalBase(capital),
	}, nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Journal: JournalConfig{
			DBPath: "./tradestats.sqlite",
		},
		Import: ImportConfig{
			Timezone: "UTC",
		},
		Analysis: AnalysisConfig{
			InitialBalance: "10000.00",
			RiskFreeRate:   0.02,
			CapitalBase:    "10000.00",
			Sessions: []SessionConfig{
				{Name: "Asian", Start: "00:00", End: "08:00"},
				{Name: "London", Start: "08:00", End: "16:00"},
				{Name: "New_York", Start: "13:00", End: "21:00"},
				{Name: "London_NY_Overlap", Start: "13:00", End: "16:00"},
			},
			Overlaps: []OverlapConfig{
				{A: "Asian", B: "London"},
				{A: "London", B: "New_York"},
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
