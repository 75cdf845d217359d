// Package store keeps daily closes in SQLite so quotes can be computed
// without network access.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/optsim/errs"
	"github.com/rustyeddy/optsim/market"
)

// Lookback is the window Fetch reads, matching a one year history.
const Lookback = 365 * 24 * time.Hour

// Close is a single daily close for a symbol.
type Close struct {
	Symbol string
	Day    time.Time
	Close  float64
}

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

// Put upserts closes in one transaction.
func (s *SQLite) Put(ctx context.Context, closes []Close) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO closes (symbol, day, close) VALUES (?, ?, ?)
		ON CONFLICT(symbol, day) DO UPDATE SET close = excluded.close`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range closes {
		if !(c.Close > 0) || math.IsInf(c.Close, 1) {
			return fmt.Errorf("%w: close for %s on %s must be positive and finite", errs.ErrInvalidArgument, c.Symbol, c.Day.Format(time.DateOnly))
		}
		if _, err := stmt.ExecContext(ctx, c.Symbol, c.Day.UTC(), c.Close); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Closes returns closes for symbol on or after since, oldest first.
func (s *SQLite) Closes(ctx context.Context, symbol string, since time.Time) ([]Close, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, day, close
		FROM closes
		WHERE symbol = ? AND day >= ?
		ORDER BY day ASC`, symbol, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Close
	for rows.Next() {
		var c Close
		if err := rows.Scan(&c.Symbol, &c.Day, &c.Close); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Latest returns the most recent stored day for symbol.
func (s *SQLite) Latest(ctx context.Context, symbol string) (time.Time, error) {
	var day time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT day FROM closes WHERE symbol = ? ORDER BY day DESC LIMIT 1`, symbol).Scan(&day)
	if err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, fmt.Errorf("%w: symbol %q not found", errs.ErrUpstreamUnavailable, symbol)
		}
		return time.Time{}, err
	}
	return day, nil
}

// Fetch computes a quote from the year of closes before the latest stored
// day. It implements market.Provider.
func (s *SQLite) Fetch(ctx context.Context, symbol string) (market.Quote, error) {
	last, err := s.Latest(ctx, symbol)
	if err != nil {
		return market.Quote{}, err
	}
	rows, err := s.Closes(ctx, symbol, last.Add(-Lookback))
	if err != nil {
		return market.Quote{}, fmt.Errorf("%w: %s: %w", errs.ErrUpstreamUnavailable, symbol, err)
	}

	closes := make([]float64, len(rows))
	for i, r := range rows {
		closes[i] = r.Close
	}
	q, err := market.QuoteFromCloses(symbol, closes, last)
	if err != nil {
		return market.Quote{}, fmt.Errorf("%w: %s: %w", errs.ErrUpstreamUnavailable, symbol, err)
	}
	return q, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
