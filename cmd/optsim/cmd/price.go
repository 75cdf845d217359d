package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/optsim/internal/id"
	"github.com/rustyeddy/optsim/option"
)

func newPriceCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "price",
		Short: "Price a European option with Black-Scholes",
		Long: `Price a European call or put. Spot and volatility come from the
flags, or from the market data provider when --ticker is given.

Examples:
  optsim price --spot 700 --strike 725 --years 2 --rate 0.015 --sigma 0.02 --kind call
  optsim price --ticker ^TWII --strike 725 --years 2 --kind put`,
		Args: cobra.NoArgs,
		RunE: a.runPrice,
	}

	f := c.Flags()
	f.Float64("spot", 0, "spot price of the underlying")
	f.Float64("strike", 0, "strike price")
	f.Float64("years", 0, "time to expiry in years")
	f.Float64("rate", 0, "annual risk free rate, e.g. 0.015")
	f.Float64("sigma", 0, "annual volatility, e.g. 0.2")
	f.String("kind", "", "call or put")
	f.String("ticker", "", "take spot and volatility from this symbol")
	for name, key := range map[string]string{
		"spot":   "market.spot",
		"strike": "contract.strike",
		"years":  "contract.years",
		"rate":   "market.rate",
		"sigma":  "market.volatility",
		"kind":   "contract.kind",
		"ticker": "market.symbol",
	} {
		bindKey(f, name, key)
	}
	return c
}

func (a *app) runPrice(cmd *cobra.Command, _ []string) error {
	contract, err := a.cfg.Contract.Contract()
	if err != nil {
		return err
	}
	m, q, err := a.marketState(cmd.Context(), cmd)
	if err != nil {
		return err
	}

	premium, err := option.Price(m, contract)
	if err != nil {
		return err
	}
	a.log.Info("priced", "run_id", id.New(), "kind", contract.Kind, "premium", premium)

	if q != nil {
		fmt.Fprintf(a.out, "Ticker: %s (last %.2f, %d closes)\n", q.Symbol, q.LastPrice, q.Observations)
	}
	fmt.Fprintf(a.out, "Spot: %.2f  Strike: %.2f  Years: %g  Rate: %.2f%%  Volatility: %.2f%%\n",
		m.Spot, contract.Strike, contract.Years, m.Rate*100, m.Volatility*100)
	fmt.Fprintf(a.out, "%s premium: %s\n", contract.Kind, option.FormatPremium(premium))
	return nil
}
