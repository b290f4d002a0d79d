package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatRunOrg renders a RunRecord as an Org-mode heading with the totals in
// a PROPERTIES drawer.
func FormatRunOrg(r RunRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "* BACKTEST: %s (%s)\n", r.Instrument, shortID(r.RunID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":RUN_ID:            %s\n", r.RunID)
	fmt.Fprintf(&b, ":CREATED:           [%s]\n", r.Created.Format("2006-01-02 Mon 15:04"))
	fmt.Fprintf(&b, ":INSTRUMENT:        %s\n", r.Instrument)
	if r.Dataset != "" {
		fmt.Fprintf(&b, ":DATASET:           %s\n", r.Dataset)
	}
	fmt.Fprintf(&b, ":DAILY_RATE:        %s\n", r.DailyRate)
	fmt.Fprintf(&b, ":INITIAL_BALANCE:   %s\n", r.InitialBalance.StringFixed(2))
	fmt.Fprintf(&b, ":FINAL_BALANCE:     %s\n", r.FinalBalance.StringFixed(2))
	fmt.Fprintf(&b, ":INTEREST_EARNED:   %s\n", r.InterestEarned.StringFixed(2))
	fmt.Fprintf(&b, ":LOSS_BORNE:        %s\n", r.LossBorne.StringFixed(2))
	fmt.Fprintf(&b, ":OVERALL_PROFIT:    %s\n", r.OverallProfit.StringFixed(2))
	fmt.Fprintf(&b, ":USER_GROSS_PROFIT: %s\n", r.UserGrossProfit.StringFixed(2))
	fmt.Fprintf(&b, ":INTEREST_PAID:     %s\n", r.InterestPaid.StringFixed(2))
	fmt.Fprintf(&b, ":USER_NET_PROFIT:   %s\n", r.UserNetProfit.StringFixed(2))
	fmt.Fprintf(&b, ":TRADES:            %d\n", r.Trades)
	fmt.Fprintf(&b, ":FILLS:             %d\n", r.Fills)
	fmt.Fprintf(&b, ":REJECTED:          %d\n", r.Rejected)
	fmt.Fprintf(&b, ":OVER_CLOSES:       %d\n", r.OverCloses)
	b.WriteString(":END:\n")
	return b.String()
}

// FormatRunsOrg renders a table with one row per run.
func FormatRunsOrg(runs []RunRecord) string {
	var b strings.Builder
	b.WriteString("| Run | Created | Instrument | Final Balance | Overall Profit | Fills |\n")
	b.WriteString("|-----+---------+------------+---------------+----------------+-------|\n")
	for _, r := range runs {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %d |\n",
			shortID(r.RunID),
			r.Created.UTC().Format(time.RFC3339),
			r.Instrument,
			r.FinalBalance.StringFixed(2),
			r.OverallProfit.StringFixed(2),
			r.Fills,
		)
	}
	return b.String()
}

// FormatFillsOrg renders fills as an Org table.
func FormatFillsOrg(fills []FillRecord) string {
	var b strings.Builder
	b.WriteString("| Fill | Size | Open | Close | Days | Interest | To Pool | Profit | Loss |\n")
	b.WriteString("|------+------+------+-------+------+----------+---------+--------+------|\n")
	for _, f := range fills {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %d | %s | %s | %s | %s |\n",
			shortID(f.FillID),
			f.Size,
			f.OpenPrice,
			f.ClosePrice,
			f.DaysHeld,
			f.Interest.StringFixed(2),
			f.ToPool.StringFixed(2),
			f.Profit.StringFixed(2),
			f.Loss.StringFixed(2),
		)
	}
	return b.String()
}

// FormatDiagnosticsOrg renders diagnostics as a bullet list.
func FormatDiagnosticsOrg(diags []DiagnosticRecord) string {
	var b strings.Builder
	for _, d := range diags {
		fmt.Fprintf(&b, "- [%s] %s: %s\n", d.Time.UTC().Format(time.RFC3339), d.Kind, d.Message)
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
