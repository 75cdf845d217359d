package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"math/rand/v2"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/optsim/chart"
	"github.com/rustyeddy/optsim/errs"
	"github.com/rustyeddy/optsim/gbm"
	"github.com/rustyeddy/optsim/internal/id"
	"github.com/rustyeddy/optsim/market"
	"github.com/rustyeddy/optsim/option"
)

type simulateFlags struct {
	format string
	out    string
	chart  string
}

// simulateResult is the JSON document written by --format json.
type simulateResult struct {
	RunID    string           `json:"run_id"`
	Seed     uint64           `json:"seed"`
	Market   market.State     `json:"market"`
	Years    float64          `json:"years"`
	Rows     int              `json:"rows"`
	Paths    int              `json:"paths"`
	Stats    gbm.Stats        `json:"stats"`
	Estimate *option.Estimate `json:"estimate,omitempty"`
	Grid     [][]float64      `json:"grid"`
}

func newSimulateCmd(a *app) *cobra.Command {
	var sf simulateFlags
	c := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate GBM price paths",
		Long: `Simulate geometric Brownian motion price paths from the spot price.
Rows are time steps and columns are paths. A seed of 0 picks a random
seed, which is logged so the run can be repeated.

Examples:
  optsim simulate --spot 700 --years 2 --sigma 0.02 --paths 20 --seed 7
  optsim simulate --format json --out paths.json --chart paths.png --strike 725`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSimulate(cmd, sf)
		},
	}

	f := c.Flags()
	f.Float64("spot", 0, "spot price of the underlying")
	f.Float64("years", 0, "horizon in years")
	f.Float64("rate", 0, "annual risk free rate")
	f.Float64("sigma", 0, "annual volatility")
	f.Int("paths", 0, "number of paths")
	f.Int("steps-per-year", 0, "time steps per year")
	f.Int("workers", 0, "goroutines per row")
	f.Uint64("seed", 0, "random seed, 0 for a random one")
	f.Float64("strike", 0, "strike for the chart line and the Monte Carlo estimate")
	f.String("kind", "", "call or put for the Monte Carlo estimate")
	f.String("ticker", "", "take spot and volatility from this symbol")
	f.StringVar(&sf.format, "format", "csv", "output format: csv or json")
	f.StringVarP(&sf.out, "out", "o", "", "output file (default stdout)")
	f.StringVar(&sf.chart, "chart", "", "also draw the paths to this image file (.png, .svg, .pdf)")
	for name, key := range map[string]string{
		"spot":           "market.spot",
		"years":          "contract.years",
		"rate":           "market.rate",
		"sigma":          "market.volatility",
		"paths":          "simulation.num_paths",
		"steps-per-year": "simulation.steps_per_year",
		"workers":        "simulation.workers",
		"seed":           "simulation.seed",
		"strike":         "contract.strike",
		"kind":           "contract.kind",
		"ticker":         "market.symbol",
	} {
		bindKey(f, name, key)
	}
	return c
}

func (a *app) runSimulate(cmd *cobra.Command, sf simulateFlags) error {
	if sf.format != "csv" && sf.format != "json" {
		return fmt.Errorf("%w: format must be csv or json, got %q", errs.ErrInvalidArgument, sf.format)
	}
	ctx := cmd.Context()
	m, _, err := a.marketState(ctx, cmd)
	if err != nil {
		return err
	}

	seed := a.cfg.Simulation.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	runID := id.New()
	years := a.cfg.Contract.Years
	cfg := a.cfg.Simulation.GBM()
	log := a.log.With("run_id", runID, "seed", seed)
	log.Info("simulating", "paths", cfg.NumPaths, "years", years, "steps_per_year", cfg.StepsPerYear)

	out := a.out
	if sf.out != "" {
		f, err := os.Create(sf.out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	// CSV without a chart streams rows, so the grid is never held in memory.
	if sf.format == "csv" && sf.chart == "" {
		rows, err := gbm.Stream(ctx, m, years, cfg, gbm.NewRand(seed))
		if err != nil {
			return err
		}
		if err := writeCSVRows(out, cfg.NumPaths, rows); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Info("simulation written", "out", sf.out)
		return nil
	}

	e, err := gbm.Simulate(ctx, m, years, cfg, gbm.NewRand(seed))
	if err != nil {
		return err
	}

	res := simulateResult{
		RunID:  runID,
		Seed:   seed,
		Market: m,
		Years:  years,
		Rows:   e.NumRows(),
		Paths:  e.NumPaths(),
		Stats:  e.Stats(),
	}
	if contract, err := a.cfg.Contract.Contract(); err == nil && cmd.Flags().Changed("strike") {
		est, err := option.EstimateFromTerminal(e.Terminal(), m.Rate, contract)
		if err != nil {
			return err
		}
		res.Estimate = &est
		log.Info("monte carlo estimate", "kind", contract.Kind, "price", est.Price, "std_err", est.StdErr)
	}

	switch sf.format {
	case "json":
		res.Grid = e.Rows()
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("write json: %w", err)
		}
	default:
		if err := writeCSVRows(out, e.NumPaths(), func(yield func(int, []float64) bool) {
			for t := 0; t < e.NumRows(); t++ {
				if !yield(t, e.Row(t)) {
					return
				}
			}
		}); err != nil {
			return err
		}
	}

	if sf.chart != "" {
		p, err := chart.Render(e, a.cfg.Contract.Strike, chart.Options{})
		if err != nil {
			return err
		}
		if err := chart.Save(sf.chart, p, chart.Options{}); err != nil {
			return err
		}
		log.Info("chart saved", "path", sf.chart)
	}
	return nil
}

// writeCSVRows writes a header then one record per row: the step index
// followed by each path's price.
func writeCSVRows(w io.Writer, paths int, rows iter.Seq2[int, []float64]) error {
	cw := csv.NewWriter(w)
	record := make([]string, paths+1)
	record[0] = "step"
	for j := 0; j < paths; j++ {
		record[j+1] = "path_" + strconv.Itoa(j)
	}
	if err := cw.Write(record); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	for t, row := range rows {
		record[0] = strconv.Itoa(t)
		for j, v := range row {
			record[j+1] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
