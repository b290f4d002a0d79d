package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordFill(f FillRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO fills
		(fill_id, run_id, instrument, size, open_price, close_price, open_time, close_time, days_held, interest, to_pool, profit, loss)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.FillID, f.RunID, f.Instrument, f.Size, f.OpenPrice, f.ClosePrice,
		f.OpenTime, f.CloseTime, f.DaysHeld, f.Interest, f.ToPool, f.Profit, f.Loss,
	)
	return err
}

func (j *SQLite) RecordDiagnostic(d DiagnosticRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO diagnostics
		(run_id, kind, instrument, time, size, amount, message)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.RunID, d.Kind, d.Instrument, d.Time, d.Size, d.Amount, d.Message,
	)
	return err
}

func (j *SQLite) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, created, instrument, dataset, daily_rate,
		 initial_balance, final_balance, interest_earned, loss_borne, overall_profit,
		 user_gross_profit, interest_paid, user_net_profit,
		 trades, opens, closes, fills, rejected, over_closes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Instrument, r.Dataset, r.DailyRate,
		r.InitialBalance, r.FinalBalance, r.InterestEarned, r.LossBorne, r.OverallProfit,
		r.UserGrossProfit, r.InterestPaid, r.UserNetProfit,
		r.Trades, r.Opens, r.Closes, r.Fills, r.Rejected, r.OverCloses,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
