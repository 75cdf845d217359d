package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/optsim/market/store"
)

const defaultDBPath = "optsim.db"

func newDataCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "data",
		Short: "Manage the local close store",
		Long: `Manage the SQLite store of daily closes used by the sqlite provider.

Subcommands:
  import - Load date,close rows from a CSV file`,
	}

	var symbol string
	imp := &cobra.Command{
		Use:   "import CSV",
		Short: "Import daily closes from a CSV file",
		Long: `Read date,close rows (an optional header is skipped) and upsert them
into the store for one symbol.

Example:
  optsim data import --db closes.db --symbol ^TWII twii.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open csv: %w", err)
			}
			defer f.Close()

			closes, err := store.ReadCSV(f, symbol)
			if err != nil {
				return err
			}

			path := a.cfg.Provider.DBPath
			if path == "" {
				path = defaultDBPath
			}
			db, err := store.NewSQLite(path)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Put(cmd.Context(), closes); err != nil {
				return err
			}
			latest, err := db.Latest(cmd.Context(), symbol)
			if err != nil {
				return err
			}

			a.log.Info("closes imported", "symbol", symbol, "rows", len(closes), "db", path)
			fmt.Fprintf(a.out, "✓ Imported %d closes for %s into %s (latest %s)\n",
				len(closes), symbol, path, latest.Format(time.DateOnly))
			return nil
		},
	}
	imp.Flags().StringVar(&symbol, "symbol", "", "symbol the closes belong to (required)")
	imp.Flags().String("db", "", "SQLite database file (default "+defaultDBPath+")")
	_ = imp.MarkFlagRequired("symbol")
	bindKey(imp.Flags(), "db", "provider.db_path")

	c.AddCommand(imp)
	return c
}
