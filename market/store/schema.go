package store

const Schema = `
CREATE TABLE IF NOT EXISTS closes (
	symbol TEXT NOT NULL,
	day DATETIME NOT NULL,
	close REAL NOT NULL,
	PRIMARY KEY (symbol, day)
);

CREATE INDEX IF NOT EXISTS idx_closes_symbol_day ON closes(symbol, day);
`
