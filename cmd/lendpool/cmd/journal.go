package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/lendpool/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query journaled backtest runs",
	Long: `Query and display backtest runs recorded in a SQLite journal.

Subcommands:
  runs   - List every run
  run    - Show one run with its diagnostics
  fills  - List the close fills of a run

Examples:
  lendpool journal runs
  lendpool journal run <run-id>
  lendpool journal fills <run-id>`,
}

var journalRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List every journaled run",
	Args:  cobra.NoArgs,
	RunE:  runJournalRuns,
}

var journalRunCmd = &cobra.Command{
	Use:   "run <run-id>",
	Short: "Show a run summary and its diagnostics",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalRun,
}

var journalFillsCmd = &cobra.Command{
	Use:   "fills <run-id>",
	Short: "List the fills of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalFills,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunsCmd)
	journalCmd.AddCommand(journalRunCmd)
	journalCmd.AddCommand(journalFillsCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./lendpool.db", "path to SQLite journal DB")
}

func runJournalRuns(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	runs, err := j.ListRuns(cmd.Context())
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), journal.FormatRunsOrg(runs))
	return nil
}

func runJournalRun(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	ctx := cmd.Context()
	rec, err := j.GetRun(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	diags, err := j.ListDiagnosticsByRun(ctx, args[0])
	if err != nil {
		return fmt.Errorf("list diagnostics: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, journal.FormatRunOrg(rec))
	if len(diags) > 0 {
		fmt.Fprintln(out, "** Diagnostics")
		fmt.Fprint(out, journal.FormatDiagnosticsOrg(diags))
	}
	return nil
}

func runJournalFills(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	fills, err := j.ListFillsByRun(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("list fills: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), journal.FormatFillsOrg(fills))
	return nil
}
