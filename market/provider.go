package market

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/optsim/errs"
)

// Quote is what a Provider reports for a symbol: the last close and the
// annualized volatility of daily returns over the lookback window.
type Quote struct {
	Symbol       string    `json:"symbol"`
	LastPrice    float64   `json:"last_price"`
	Volatility   float64   `json:"volatility"`
	Observations int       `json:"observations"`
	AsOf         time.Time `json:"as_of"`
}

// Provider looks up market statistics for a symbol. Failures are
// reported wrapped in errs.ErrUpstreamUnavailable.
type Provider interface {
	Fetch(ctx context.Context, symbol string) (Quote, error)
}

// State turns the quote into a market state at the given risk free rate.
func (q Quote) State(rate float64) State {
	return State{
		Spot:       q.LastPrice,
		Rate:       rate,
		Volatility: q.Volatility,
	}
}

// QuoteFromCloses builds a Quote from a series of daily closes, oldest first.
func QuoteFromCloses(symbol string, closes []float64, asOf time.Time) (Quote, error) {
	vol, err := HistoricalVolatility(closes, TradingDaysPerYear)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		Symbol:       symbol,
		LastPrice:    closes[len(closes)-1],
		Volatility:   vol,
		Observations: len(closes),
		AsOf:         asOf,
	}, nil
}

// Resolve returns manual unchanged when symbol is empty. Otherwise spot
// and volatility come from the provider and only the rate is kept.
func Resolve(ctx context.Context, p Provider, symbol string, manual State) (State, *Quote, error) {
	if symbol == "" {
		return manual, nil, nil
	}
	if p == nil {
		return State{}, nil, fmt.Errorf("%w: no market data provider configured", errs.ErrUpstreamUnavailable)
	}
	q, err := p.Fetch(ctx, symbol)
	if err != nil {
		return State{}, nil, err
	}
	return q.State(manual.Rate), &q, nil
}
