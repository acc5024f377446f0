package store

const Schema = `
CREATE TABLE IF NOT EXISTS candles (
	id TEXT PRIMARY KEY,
	instrument TEXT NOT NULL,
	date INTEGER NOT NULL,
	time TEXT NOT NULL,
	open REAL NOT NULL,
	high REAL NOT NULL,
	low REAL NOT NULL,
	close REAL NOT NULL,
	volume INTEGER NOT NULL,
	window_rows INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_candles_date ON candles(date, time);
`
