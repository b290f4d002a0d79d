package pool

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/lendpool/market"
)

// Report is the end-of-run summary of a backtest.
type Report struct {
	RunID      string
	Instrument string
	DailyRate  decimal.Decimal

	InitialBalance            decimal.Decimal
	FinalBalance              decimal.Decimal
	TotalInterestEarnedByPool decimal.Decimal
	TotalLossBorneByPool      decimal.Decimal
	OverallProfit             decimal.Decimal

	TotalUserGrossProfit     decimal.Decimal
	TotalInterestPaidByUsers decimal.Decimal
	TotalUserNetProfit       decimal.Decimal

	// Counts holds the number of target-instrument trades per direction,
	// including the ones the pool does not account for.
	Counts        map[market.Direction]int
	Fills         int
	OpenPositions int
	OpenSize      decimal.Decimal

	Diagnostics []Diagnostic
}

func newReport(runID string, cfg Config) *Report {
	return &Report{
		RunID:                     runID,
		Instrument:                cfg.Instrument,
		DailyRate:                 cfg.DailyInterestRate,
		InitialBalance:            cfg.InitialBalance,
		FinalBalance:              cfg.InitialBalance,
		TotalInterestEarnedByPool: decimal.Zero,
		TotalLossBorneByPool:      decimal.Zero,
		OverallProfit:             decimal.Zero,
		TotalUserGrossProfit:      decimal.Zero,
		TotalInterestPaidByUsers:  decimal.Zero,
		TotalUserNetProfit:        decimal.Zero,
		Counts:                    make(map[market.Direction]int),
		OpenSize:                  decimal.Zero,
	}
}

// Trades is the number of trades seen for the target instrument.
func (r *Report) Trades() int {
	n := 0
	for _, c := range r.Counts {
		n += c
	}
	return n
}

func (r *Report) DiagnosticCount(kind DiagnosticKind) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Print writes the report in the same layout as the console summary of the
// pool simulator, amounts to two decimals.
func (r *Report) Print(w io.Writer) {
	const unit = "USDC"
	money := func(d decimal.Decimal) string { return d.StringFixed(2) + " " + unit }

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Backtesting results for %s:\n", r.Instrument)
	if r.RunID != "" {
		fmt.Fprintf(w, "Run ID: %s\n", r.RunID)
	}
	fmt.Fprintf(w, "Initial Pool Balance: %s\n", money(r.InitialBalance))
	fmt.Fprintf(w, "Final Pool Balance: %s\n", money(r.FinalBalance))
	fmt.Fprintf(w, "Total Interest Earned by Pool: %s\n", money(r.TotalInterestEarnedByPool))
	fmt.Fprintf(w, "Total Loss Borne by Pool: %s\n", money(r.TotalLossBorneByPool))
	fmt.Fprintf(w, "Overall Profit: %s\n", money(r.OverallProfit))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total User Gross Profit: %s\n", money(r.TotalUserGrossProfit))
	fmt.Fprintf(w, "Total Interest paid by user: %s\n", money(r.TotalInterestPaidByUsers))
	fmt.Fprintf(w, "Total User Net Profit: %s\n", money(r.TotalUserNetProfit))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trades")
	fmt.Fprintln(w, "--------------------------------------------------")
	for _, d := range market.Directions {
		fmt.Fprintf(w, "%-12s %d\n", d.String()+":", r.Counts[d])
	}
	fmt.Fprintf(w, "%-12s %d\n", "Fills:", r.Fills)
	fmt.Fprintf(w, "%-12s %d (size %s)\n", "Still open:", r.OpenPositions, r.OpenSize)

	if len(r.Diagnostics) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Warnings (%d)\n", len(r.Diagnostics))
		fmt.Fprintln(w, "--------------------------------------------------")
		for _, d := range r.Diagnostics {
			fmt.Fprintf(w, "- %s\n", d)
		}
	}
}
