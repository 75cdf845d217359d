package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newQuoteCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "quote SYMBOL",
		Short: "Show the last close and historical volatility for a symbol",
		Long: `Look up a symbol with the configured market data provider and print
its last close and the annualized volatility of its daily returns.

Example:
  optsim quote ^TWII`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, closer, err := a.provider()
			if err != nil {
				return fmt.Errorf("open provider: %w", err)
			}
			defer closer.Close()

			q, err := p.Fetch(cmd.Context(), args[0])
			if err != nil {
				return tickerError(err)
			}
			fmt.Fprintf(a.out, "%s\n", q.Symbol)
			fmt.Fprintf(a.out, "  Last: %.2f\n", q.LastPrice)
			fmt.Fprintf(a.out, "  Volatility: %.2f%% (%d closes)\n", q.Volatility*100, q.Observations)
			fmt.Fprintf(a.out, "  As of: %s\n", q.AsOf.Format("2006-01-02"))
			return nil
		},
	}
	c.Flags().String("provider", "", "yahoo or sqlite")
	c.Flags().String("db", "", "SQLite close store for the sqlite provider")
	bindKey(c.Flags(), "provider", "provider.type")
	bindKey(c.Flags(), "db", "provider.db_path")
	return c
}
