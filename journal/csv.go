// journal/csv.go
package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	FillsFile       = "fills.csv"
	DiagnosticsFile = "diagnostics.csv"
	RunsFile        = "runs.csv"
)

var (
	fillsHeader       = []string{"run_id", "fill_id", "instrument", "size", "open_price", "close_price", "open_time", "close_time", "days_held", "interest", "to_pool", "profit", "loss"}
	diagnosticsHeader = []string{"run_id", "kind", "instrument", "time", "size", "amount", "message"}
	runsHeader        = []string{"run_id", "created", "instrument", "dataset", "daily_rate", "initial_balance", "final_balance", "interest_earned", "loss_borne", "overall_profit", "user_gross_profit", "interest_paid", "user_net_profit", "trades", "opens", "closes", "fills", "rejected", "over_closes"}
)

// CSVJournal writes fills, diagnostics and run summaries to three files in
// one directory.
type CSVJournal struct {
	fills, diags, runs *csv.Writer
	files              []*os.File
}

func NewCSV(dir string) (*CSVJournal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	j := &CSVJournal{}
	open := func(name string, header []string) (*csv.Writer, error) {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		j.files = append(j.files, f)

		w := csv.NewWriter(f)
		if err := w.Write(header); err != nil {
			return nil, err
		}
		w.Flush()
		return w, w.Error()
	}

	var err error
	if j.fills, err = open(FillsFile, fillsHeader); err != nil {
		j.closeFiles()
		return nil, err
	}
	if j.diags, err = open(DiagnosticsFile, diagnosticsHeader); err != nil {
		j.closeFiles()
		return nil, err
	}
	if j.runs, err = open(RunsFile, runsHeader); err != nil {
		j.closeFiles()
		return nil, err
	}
	return j, nil
}

func (j *CSVJournal) RecordFill(f FillRecord) error {
	return write(j.fills, []string{
		f.RunID,
		f.FillID,
		f.Instrument,
		f.Size.String(),
		f.OpenPrice.String(),
		f.ClosePrice.String(),
		f.OpenTime.Format(time.RFC3339),
		f.CloseTime.Format(time.RFC3339),
		strconv.FormatInt(f.DaysHeld, 10),
		f.Interest.String(),
		f.ToPool.String(),
		f.Profit.String(),
		f.Loss.String(),
	})
}

func (j *CSVJournal) RecordDiagnostic(d DiagnosticRecord) error {
	return write(j.diags, []string{
		d.RunID,
		d.Kind,
		d.Instrument,
		d.Time.Format(time.RFC3339),
		d.Size.String(),
		d.Amount.String(),
		d.Message,
	})
}

func (j *CSVJournal) RecordRun(r RunRecord) error {
	return write(j.runs, []string{
		r.RunID,
		r.Created.Format(time.RFC3339),
		r.Instrument,
		r.Dataset,
		r.DailyRate.String(),
		r.InitialBalance.String(),
		r.FinalBalance.String(),
		r.InterestEarned.String(),
		r.LossBorne.String(),
		r.OverallProfit.String(),
		r.UserGrossProfit.String(),
		r.InterestPaid.String(),
		r.UserNetProfit.String(),
		strconv.Itoa(r.Trades),
		strconv.Itoa(r.Opens),
		strconv.Itoa(r.Closes),
		strconv.Itoa(r.Fills),
		strconv.Itoa(r.Rejected),
		strconv.Itoa(r.OverCloses),
	})
}

func (j *CSVJournal) Close() error {
	for _, w := range []*csv.Writer{j.fills, j.diags, j.runs} {
		w.Flush()
		if err := w.Error(); err != nil {
			j.closeFiles()
			return err
		}
	}
	return j.closeFiles()
}

func (j *CSVJournal) closeFiles() error {
	var first error
	for _, f := range j.files {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	j.files = nil
	return first
}

func write(w *csv.Writer, record []string) error {
	if err := w.Write(record); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
