package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eytandecker/vn-diagram/internal/config"
	"github.com/eytandecker/vn-diagram/internal/envelope"
	"github.com/eytandecker/vn-diagram/pkg/types"
)

func main() {
	if err := newRootCmd(config.Load()).Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries configuration and the logger shared by every subcommand.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	verbose bool
}

func newRootCmd(cfg config.Config) *cobra.Command {
	a := &app{cfg: cfg, logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "vndiagram",
		Short: "Compute and render V-n (airspeed vs load factor) diagrams",
		Long: `vndiagram derives the maneuver and gust load envelopes of a light aircraft
from a handful of aerodynamic constants and draws them as a V-n diagram.

Aircraft constants come from a YAML profile (--profile or VN_PROFILE);
omitted keys fall back to the built-in reference aircraft.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(a.cfg.LogLevel, a.verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.Diagram.ProfilePath, "profile", cfg.Diagram.ProfilePath, "YAML aircraft profile")
	flags.Float64Var(&a.cfg.Diagram.SweepMax, "sweep-max", cfg.Diagram.SweepMax, "upper bound of the airspeed sweep (kts)")
	flags.IntVar(&a.cfg.Diagram.SweepSamples, "samples", cfg.Diagram.SweepSamples, "number of airspeed samples")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(a.computeCmd(), a.renderCmd(), a.serveCmd())
	return root
}

// newLogger builds a production logger writing to stderr.
func newLogger(level string, verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

// diagram loads the configured aircraft and computes its diagram.
func (a *app) diagram() (*envelope.Diagram, error) {
	ac, err := config.LoadAircraft(a.cfg.Diagram.ProfilePath)
	if err != nil {
		return nil, err
	}
	return a.compute(ac)
}

func (a *app) compute(ac types.Aircraft) (*envelope.Diagram, error) {
	d, err := envelope.Compute(ac, a.cfg.Diagram.Sweep())
	if err != nil {
		return nil, err
	}
	a.logger.Debug("computed diagram",
		zap.String("aircraft", ac.Name),
		zap.Float64("n_max", d.NMax),
		zap.Float64("n_min", d.NMin),
		zap.Int("samples", len(d.V)))
	return d, nil
}
