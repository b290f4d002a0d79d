package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rustyeddy/lendpool/config"
)

var rootCmd = &cobra.Command{
	Use:   "lendpool",
	Short: "Lending pool backtester for leveraged long positions",
	Long: `Lendpool replays historical trade records against a lending pool that
finances leveraged longs. It tracks pool solvency, the interest traders pay
for borrowing and their profit and loss.

It provides tools for:
  - Backtesting the pool against a trade history (backtest)
  - Splitting a trade history into per-direction CSVs (sanitize)
  - Managing configuration files (config)
  - Querying journaled runs (journal)`,
	SilenceUsage: true,
}

var (
	cfgFile  string
	logLevel string
	jsonLog  bool
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "log as JSON")
}

// loadConfig reads --config (if given) and LENDPOOL_* overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if jsonLog {
		cfg.Log.JSON = true
	}
	return cfg, nil
}

// newLogger builds a production (JSON) or development (console) logger at
// the configured level.
func newLogger(lc config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(lc.Level))
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	zc := zap.NewDevelopmentConfig()
	if lc.JSON {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.DisableStacktrace = true
	return zc.Build()
}
