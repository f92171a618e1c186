// journal/schema.go
package journal

// Money columns are TEXT so decimals round-trip without float loss.
const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	direction TEXT NOT NULL,
	volume REAL NOT NULL,
	open_time DATETIME NOT NULL,
	open_price TEXT NOT NULL,
	close_time DATETIME,
	close_price TEXT,
	stop_loss TEXT,
	take_profit TEXT,
	commission TEXT NOT NULL,
	swap TEXT NOT NULL,
	profit TEXT NOT NULL,
	broker_tag INTEGER,
	note TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_trades_close_time ON trades(close_time);
`
