package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/lendpool/config"
	"github.com/rustyeddy/lendpool/ingest"
	"github.com/rustyeddy/lendpool/journal"
	"github.com/rustyeddy/lendpool/pool"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay a trade history against the lending pool",
	Long: `Backtest replays every trade for one instrument, in time order, against
a lending pool. Open Long trades borrow their full notional from the pool and
Close Long trades repay it oldest position first, plus daily interest.

The trade file is a CSV with a header row and the columns
time,coin,dir,px,sz (optionally ntl,fee,closedPnl), time in
DD/MM/YYYY - HH:mm:ss.

Example:
  lendpool backtest --trades data/trades.csv --instrument ETH --rate 0.01`,
	RunE: runBacktest,
}

var (
	btTradesPath  string
	btInstrument  string
	btBalance     float64
	btRate        float64
	btJournalType string
	btJournalDir  string
	btDBPath      string
	btProgress    bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	f := backtestCmd.Flags()
	f.StringVarP(&btTradesPath, "trades", "t", "", "path to trade history CSV (default from config)")
	f.StringVarP(&btInstrument, "instrument", "i", "", "instrument to backtest (default from config)")
	f.Float64VarP(&btBalance, "balance", "b", 0, "initial pool balance (default from config)")
	f.Float64VarP(&btRate, "rate", "r", 0, "daily interest rate, 0.01 = 1%/day (default from config)")
	f.StringVarP(&btJournalType, "journal", "j", "", "journal type: none, csv, sqlite (default from config)")
	f.StringVar(&btJournalDir, "journal-dir", "", "CSV journal directory")
	f.StringVarP(&btDBPath, "db", "d", "", "SQLite journal path")
	f.BoolVar(&btProgress, "progress", false, "show a progress bar")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyBacktestFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Backtest.TradesFile == "" {
		return fmt.Errorf("no trade file: use --trades or backtest.trades_file")
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	trades, err := ingest.ReadFile(cfg.Backtest.TradesFile)
	if err != nil {
		return fmt.Errorf("read trades: %w", err)
	}
	log.Info("trades loaded", zap.String("file", cfg.Backtest.TradesFile), zap.Int("count", len(trades)))

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	opts := []pool.Option{
		pool.WithLogger(log),
		pool.WithJournal(j),
		pool.WithDataset(filepath.Base(cfg.Backtest.TradesFile)),
	}
	if btProgress {
		bar := newProgressBar(len(trades))
		opts = append(opts, pool.WithProgress(func(done, total int) { _ = bar.Set(done) }))
		defer fmt.Fprintln(os.Stderr)
	}

	engine, err := pool.New(cfg.PoolConfig(), opts...)
	if err != nil {
		return err
	}

	report, err := engine.Run(trades)
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	report.Print(cmd.OutOrStdout())
	return nil
}

// applyBacktestFlags overrides config values with the flags the user set.
func applyBacktestFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("trades") {
		cfg.Backtest.TradesFile = btTradesPath
	}
	if f.Changed("instrument") {
		cfg.Backtest.Instrument = btInstrument
	}
	if f.Changed("balance") {
		cfg.Pool.InitialBalance = btBalance
	}
	if f.Changed("rate") {
		cfg.Pool.DailyInterestRate = btRate
	}
	if f.Changed("journal") {
		cfg.Journal.Type = btJournalType
	}
	if f.Changed("journal-dir") {
		cfg.Journal.Dir = btJournalDir
	}
	if f.Changed("db") {
		cfg.Journal.DBPath = btDBPath
	}
}

func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "csv":
		return journal.NewCSV(jc.Dir)
	case "sqlite":
		return journal.NewSQLite(jc.DBPath)
	default:
		return journal.Nop{}, nil
	}
}

func newProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Replaying trades..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
