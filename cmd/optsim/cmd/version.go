package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Long:  `Display the current version of the optsim CLI.`,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(a.out, "optsim version %s\n", version)
			fmt.Fprintln(a.out, "Black-Scholes option pricing and GBM path simulation")
		},
	}
}
