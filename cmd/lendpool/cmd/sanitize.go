package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/lendpool/export"
	"github.com/rustyeddy/lendpool/ingest"
)

var sanitizeCmd = &cobra.Command{
	Use:   "sanitize <trades.csv>",
	Short: "Split a trade history into one CSV per direction",
	Long: `Sanitize reads a trade history, optionally keeps only some coins, and
writes open_long, close_long, open_short, close_short and other trades to
separate CSV files. It also checks that opened and closed size agree.

Example:
  lendpool sanitize data/trades.csv --coin ETH --out data/eth`,
	Args: cobra.ExactArgs(1),
	RunE: runSanitize,
}

var (
	sanitizeOut   string
	sanitizeCoins []string
)

func init() {
	rootCmd.AddCommand(sanitizeCmd)

	sanitizeCmd.Flags().StringVarP(&sanitizeOut, "out", "o", "categorized_trades", "output directory")
	sanitizeCmd.Flags().StringSliceVar(&sanitizeCoins, "coin", nil, "coins to keep (repeatable, default all)")
}

func runSanitize(cmd *cobra.Command, args []string) error {
	trades, err := ingest.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read trades: %w", err)
	}
	trades = ingest.FilterInstruments(trades, sanitizeCoins...)

	cats := export.Partition(trades)
	paths, err := export.WriteCategories(sanitizeOut, cats)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	summary := export.Summarize(cats)
	summary.Print(out)
	fmt.Fprintf(out, "\nWrote %d files to %s\n", len(paths), sanitizeOut)
	return nil
}
