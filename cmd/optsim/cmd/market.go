package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/optsim/errs"
	"github.com/rustyeddy/optsim/market"
	"github.com/rustyeddy/optsim/market/store"
	"github.com/rustyeddy/optsim/market/yahoo"
	"github.com/rustyeddy/optsim/server"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// provider opens the configured market data source.
func (a *app) provider() (market.Provider, io.Closer, error) {
	pc := a.cfg.Provider
	switch pc.Type {
	case "sqlite":
		s, err := store.NewSQLite(pc.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		timeout, err := pc.ParseTimeout()
		if err != nil {
			return nil, nil, err
		}
		return yahoo.NewClient(pc.BaseURL, timeout), nopCloser{}, nil
	}
}

// marketState returns the manual market inputs, or the provider's view of
// the configured symbol when a ticker was requested.
func (a *app) marketState(ctx context.Context, cmd *cobra.Command) (market.State, *market.Quote, error) {
	mc := a.cfg.Market
	if !mc.UseTicker && !cmd.Flags().Changed("ticker") {
		return mc.State(), nil, nil
	}

	p, closer, err := a.provider()
	if err != nil {
		return market.State{}, nil, fmt.Errorf("open provider: %w", err)
	}
	defer closer.Close()

	m, q, err := market.Resolve(ctx, p, mc.Symbol, mc.State())
	if err != nil {
		return market.State{}, nil, tickerError(err)
	}
	a.log.Info("market data", "symbol", q.Symbol, "spot", q.LastPrice, "volatility", q.Volatility, "observations", q.Observations)
	return m, q, nil
}

func tickerError(err error) error {
	if errors.Is(err, errs.ErrUpstreamUnavailable) {
		return fmt.Errorf("%s: %w", server.TickerNotFound, err)
	}
	return err
}
