// journal/schema.go
package journal

// Money and size columns are TEXT so decimal values round-trip exactly.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	instrument TEXT NOT NULL,
	dataset TEXT NOT NULL,
	daily_rate TEXT NOT NULL,
	initial_balance TEXT NOT NULL,
	final_balance TEXT NOT NULL,
	interest_earned TEXT NOT NULL,
	loss_borne TEXT NOT NULL,
	overall_profit TEXT NOT NULL,
	user_gross_profit TEXT NOT NULL,
	interest_paid TEXT NOT NULL,
	user_net_profit TEXT NOT NULL,
	trades INTEGER NOT NULL,
	opens INTEGER NOT NULL,
	closes INTEGER NOT NULL,
	fills INTEGER NOT NULL,
	rejected INTEGER NOT NULL,
	over_closes INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS fills (
	fill_id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	instrument TEXT NOT NULL,
	size TEXT NOT NULL,
	open_price TEXT NOT NULL,
	close_price TEXT NOT NULL,
	open_time DATETIME NOT NULL,
	close_time DATETIME NOT NULL,
	days_held INTEGER NOT NULL,
	interest TEXT NOT NULL,
	to_pool TEXT NOT NULL,
	profit TEXT NOT NULL,
	loss TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS diagnostics (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	instrument TEXT NOT NULL,
	time DATETIME NOT NULL,
	size TEXT NOT NULL,
	amount TEXT NOT NULL,
	message TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fills_run ON fills(run_id, close_time);
CREATE INDEX IF NOT EXISTS idx_diagnostics_run ON diagnostics(run_id, time);
`
