package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eytandecker/vn-diagram/internal/config"
	internalmcp "github.com/eytandecker/vn-diagram/internal/mcp"
	"github.com/eytandecker/vn-diagram/internal/simconnect"
	"github.com/eytandecker/vn-diagram/internal/state"
)

func (a *app) serveCmd() *cobra.Command {
	var noSim bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio",
		Long: `Runs an MCP server on stdio exposing compute_vn_diagram, render_vn_diagram
and check_flight_envelope. Unless --no-sim is set, live airspeed and G load
are polled from SimConnect and checked against the configured aircraft.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), noSim)
		},
	}
	cmd.Flags().BoolVar(&noSim, "no-sim", false, "do not connect to SimConnect")
	return cmd
}

func (a *app) serve(parent context.Context, noSim bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	ac, err := config.LoadAircraft(a.cfg.Diagram.ProfilePath)
	if err != nil {
		return err
	}

	mgr := state.NewManager(a.cfg.Polling.StaleThreshold)
	srv, err := internalmcp.NewServer(ac, a.cfg.Diagram.Sweep(), mgr, a.logger)
	if err != nil {
		return err
	}

	if !noSim {
		go runPollerLoop(ctx, a.cfg, mgr, a.logger)
	}

	a.logger.Info("mcp server starting", zap.String("aircraft", ac.Name), zap.Bool("simconnect", !noSim))
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// reconnectBackoff doubles the retry delay from initial up to max and starts
// over once a session has connected.
type reconnectBackoff struct {
	initial, max, next time.Duration
}

func newReconnectBackoff(initial, max time.Duration) *reconnectBackoff {
	return &reconnectBackoff{initial: initial, max: max, next: initial}
}

// Delay returns how long to wait before the next attempt.
func (b *reconnectBackoff) Delay(connected bool) time.Duration {
	if connected {
		b.next = b.initial
	}
	d := b.next
	b.next = min(b.next*2, b.max)
	return d
}

// runPollerLoop connects to SimConnect and polls for data, retrying with
// exponential backoff (1s to 30s) on failure.
func runPollerLoop(ctx context.Context, cfg config.Config, mgr *state.Manager, log *zap.Logger) {
	backoff := newReconnectBackoff(time.Second, 30*time.Second)

	for {
		if ctx.Err() != nil {
			return
		}

		connected, err := runPoller(ctx, cfg, mgr, log)
		if errors.Is(err, context.Canceled) {
			return
		}
		delay := backoff.Delay(connected)
		if err != nil {
			log.Warn("simconnect disconnected", zap.Error(err), zap.Bool("was_connected", connected), zap.Duration("retry_in", delay))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// runPoller connects, registers the flight load SimVars and polls until the
// connection is lost or ctx is done. connected reports whether the session
// got as far as registering.
func runPoller(ctx context.Context, cfg config.Config, mgr *state.Manager, log *zap.Logger) (connected bool, err error) {
	client := simconnect.NewClient(simconnect.Config{
		Host:    cfg.SimConnect.Host,
		Port:    cfg.SimConnect.Port,
		Timeout: cfg.SimConnect.Timeout,
		AppName: cfg.SimConnect.AppName,
	})

	if err := client.Connect(ctx); err != nil {
		return false, err
	}
	defer client.Close()
	log.Info("simconnect connected", zap.String("host", cfg.SimConnect.Host), zap.Int("port", cfg.SimConnect.Port))

	poller := simconnect.NewPoller(client, mgr, simconnect.PollerConfig{PollInterval: cfg.Polling.Interval}, log)
	if err := poller.RegisterSimVars(); err != nil {
		return false, err
	}
	return true, poller.Start(ctx)
}
