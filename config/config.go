package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/lendpool/pool"
)

// EnvPrefix prefixes every environment override, e.g. LENDPOOL_POOL_DAILY_RATE.
const EnvPrefix = "LENDPOOL_"

// Config represents the complete backtest configuration
type Config struct {
	Pool     PoolConfig     `json:"pool" yaml:"pool" envPrefix:"POOL_"`
	Backtest BacktestConfig `json:"backtest" yaml:"backtest" envPrefix:"BACKTEST_"`
	Journal  JournalConfig  `json:"journal" yaml:"journal" envPrefix:"JOURNAL_"`
	Log      LogConfig      `json:"log" yaml:"log" envPrefix:"LOG_"`
}

// PoolConfig contains the lending pool parameters
type PoolConfig struct {
	InitialBalance    float64 `json:"initial_balance" yaml:"initial_balance" env:"INITIAL_BALANCE"`
	DailyInterestRate float64 `json:"daily_interest_rate" yaml:"daily_interest_rate" env:"DAILY_RATE"`
}

// BacktestConfig selects the trade history to replay
type BacktestConfig struct {
	Instrument string `json:"instrument" yaml:"instrument" env:"INSTRUMENT"`
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty" env:"TRADES_FILE"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type   string `json:"type" yaml:"type" env:"TYPE"` // "none", "csv" or "sqlite"
	Dir    string `json:"dir,omitempty" yaml:"dir,omitempty" env:"DIR"`
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty" env:"DB_PATH"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level" env:"LEVEL"`
	JSON  bool   `json:"json" yaml:"json" env:"JSON"`
}

// LoadFromFile loads configuration from a file, YAML first with a JSON
// fallback. Missing fields keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Load reads the file at path when one is given, then applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func unmarshal(data []byte, cfg *Config) error {
	base := *cfg
	if err := yaml.Unmarshal(data, cfg); err == nil {
		return nil
	}
	*cfg = base
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config (tried YAML and JSON): %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from LENDPOOL_* environment variables. Unset
// variables leave the current value alone.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}

// SaveToFile saves configuration to a file (YAML for .yaml/.yml, JSON otherwise)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
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

// Validate checks if the configuration is valid. The instrument may be left
// empty here and supplied on the command line.
func (c *Config) Validate() error {
	if c.Pool.InitialBalance < 0 {
		return fmt.Errorf("pool.initial_balance must not be negative")
	}
	if c.Pool.DailyInterestRate < 0 {
		return fmt.Errorf("pool.daily_interest_rate must not be negative")
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.Dir == "" {
			return fmt.Errorf("journal dir required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	return nil
}

// PoolConfig converts the file settings into engine parameters.
func (c *Config) PoolConfig() pool.Config {
	return pool.Config{
		InitialBalance:    decimal.NewFromFloat(c.Pool.InitialBalance),
		DailyInterestRate: decimal.NewFromFloat(c.Pool.DailyInterestRate),
		Instrument:        c.Backtest.Instrument,
	}
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Pool: PoolConfig{
			InitialBalance:    pool.DefaultInitialBalance.InexactFloat64(),
			DailyInterestRate: pool.DefaultDailyInterestRate.InexactFloat64(),
		},
		Backtest: BacktestConfig{
			Instrument: "ETH",
		},
		Journal: JournalConfig{
			Type:   "none",
			Dir:    "./journal",
			DBPath: "./lendpool.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
