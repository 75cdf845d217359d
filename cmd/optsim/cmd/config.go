package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/optsim/config"
)

func newConfigCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Generate or validate configuration files",
		Long: `Manage optsim configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  optsim config init -o optsim.yaml
  optsim config validate -f optsim.yaml`,
	}

	var output string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if err := config.Default().SaveToFile(output); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			fmt.Fprintf(a.out, "✓ Created default configuration: %s\n", output)
			fmt.Fprintln(a.out, "\nEdit the file and run with:")
			fmt.Fprintf(a.out, "  optsim price --config %s\n", output)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&output, "output", "o", "optsim.yaml", "output config file path")

	var path string
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg, err := config.LoadFromFile(path)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			fmt.Fprintf(a.out, "✓ Configuration valid: %s\n", path)
			fmt.Fprintf(a.out, "  Market: spot %.2f, rate %.2f%%, volatility %.2f%%", cfg.Market.Spot, cfg.Market.Rate*100, cfg.Market.Volatility*100)
			if cfg.Market.UseTicker {
				fmt.Fprintf(a.out, " (ticker %s)", cfg.Market.Symbol)
			}
			fmt.Fprintln(a.out)
			fmt.Fprintf(a.out, "  Contract: %s %.2f, %g years\n", cfg.Contract.Kind, cfg.Contract.Strike, cfg.Contract.Years)
			fmt.Fprintf(a.out, "  Simulation: %d paths, %d steps/year\n", cfg.Simulation.NumPaths, cfg.Simulation.StepsPerYear)
			fmt.Fprintf(a.out, "  Provider: %s\n", cfg.Provider.Type)
			return nil
		},
	}
	validateCmd.Flags().StringVarP(&path, "file", "f", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("file")

	c.AddCommand(initCmd, validateCmd)
	return c
}
