package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rustyeddy/optsim/config"
	"github.com/rustyeddy/optsim/internal/logging"
)

// configKey is the flag annotation naming the config key a flag overrides.
const configKey = "optsim_config_key"

// app carries state shared by every subcommand of one invocation.
type app struct {
	configPath string
	cfg        *config.Config
	log        *slog.Logger
	closer     io.Closer
	out        io.Writer
}

// NewRootCmd builds the optsim command tree writing results to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:   "optsim",
		Short: "Black-Scholes option pricing and GBM price path simulation",
		Long: `Optsim prices European options with the Black-Scholes formula and
simulates geometric Brownian motion price paths.

It provides tools for:
  - Pricing calls and puts from manual inputs or a ticker
  - Simulating and charting price paths with a reproducible seed
  - Importing daily closes into a local SQLite store
  - Serving the pricer and simulator over HTTP`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.closer != nil {
				return a.closer.Close()
			}
			return nil
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (YAML or JSON)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: text or json")
	bindKey(pf, "log-level", "logging.level")
	bindKey(pf, "log-format", "logging.format")

	root.AddCommand(
		newPriceCmd(a),
		newSimulateCmd(a),
		newQuoteCmd(a),
		newDataCmd(a),
		newConfigCmd(a),
		newServeCmd(a),
		newVersionCmd(a),
	)
	return root
}

// Execute runs the CLI against os.Args until done or interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd(os.Stdout).ExecuteContext(ctx)
}

// bindKey marks flag name as an override for config key.
func bindKey(fs *pflag.FlagSet, name, key string) {
	_ = fs.SetAnnotation(name, configKey, []string{key})
}

// setup loads configuration for cmd with precedence flag, env, file,
// default, then installs the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	v, err := config.NewViper()
	if err != nil {
		return err
	}
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if keys := f.Annotations[configKey]; len(keys) == 1 && bindErr == nil {
			bindErr = v.BindPFlag(keys[0], f)
		}
	})
	if bindErr != nil {
		return fmt.Errorf("bind flags: %w", bindErr)
	}

	cfg, err := config.Load(v, a.configPath)
	if err != nil {
		return err
	}
	closer, err := logging.Init(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	a.cfg, a.log, a.closer = cfg, slog.Default(), closer
	a.log.Debug("config loaded", "command", cmd.Name(), "file", a.configPath)
	return nil
}
