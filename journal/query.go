package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const runColumns = `run_id, created, instrument, dataset, daily_rate,
	initial_balance, final_balance, interest_earned, loss_borne, overall_profit,
	user_gross_profit, interest_paid, user_net_profit,
	trades, opens, closes, fills, rejected, over_closes`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (RunRecord, error) {
	var r RunRecord
	err := s.Scan(
		&r.RunID, &r.Created, &r.Instrument, &r.Dataset, &r.DailyRate,
		&r.InitialBalance, &r.FinalBalance, &r.InterestEarned, &r.LossBorne, &r.OverallProfit,
		&r.UserGrossProfit, &r.InterestPaid, &r.UserNetProfit,
		&r.Trades, &r.Opens, &r.Closes, &r.Fills, &r.Rejected, &r.OverCloses,
	)
	return r, err
}

// GetRun returns a single run summary by ID.
func (j *SQLite) GetRun(ctx context.Context, runID string) (RunRecord, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)

	rec, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, fmt.Errorf("run %q: %w", runID, ErrRunNotFound)
		}
		return RunRecord{}, err
	}
	return rec, nil
}

// ListRuns returns every run, newest first.
func (j *SQLite) ListRuns(ctx context.Context) ([]RunRecord, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY created DESC, run_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListFillsByRun returns the fills of a run in close order.
func (j *SQLite) ListFillsByRun(ctx context.Context, runID string) ([]FillRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT fill_id, run_id, instrument, size, open_price, close_price, open_time, close_time, days_held, interest, to_pool, profit, loss
		FROM fills
		WHERE run_id = ?
		ORDER BY close_time ASC, fill_id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FillRecord
	for rows.Next() {
		var f FillRecord
		if err := rows.Scan(
			&f.FillID, &f.RunID, &f.Instrument, &f.Size, &f.OpenPrice, &f.ClosePrice,
			&f.OpenTime, &f.CloseTime, &f.DaysHeld, &f.Interest, &f.ToPool, &f.Profit, &f.Loss,
		); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListDiagnosticsByRun returns the anomalies of a run in the order raised.
func (j *SQLite) ListDiagnosticsByRun(ctx context.Context, runID string) ([]DiagnosticRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, kind, instrument, time, size, amount, message
		FROM diagnostics
		WHERE run_id = ?
		ORDER BY id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DiagnosticRecord
	for rows.Next() {
		var d DiagnosticRecord
		if err := rows.Scan(&d.RunID, &d.Kind, &d.Instrument, &d.Time, &d.Size, &d.Amount, &d.Message); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
