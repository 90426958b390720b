package simconnect

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eytandecker/vn-diagram/pkg/types"
)

// FlightLoadUpdater is implemented by state.Manager.
// Defined on the consuming side to avoid import cycles.
type FlightLoadUpdater interface {
	Update(load types.FlightLoad)
}

// PollerConfig holds configuration for the Poller.
type PollerConfig struct {
	PollInterval time.Duration
}

// DefaultPollerConfig returns a PollerConfig with a 250ms interval.
func DefaultPollerConfig() PollerConfig {
	return PollerConfig{PollInterval: 250 * time.Millisecond}
}

// Poller requests flight load data on an interval and forwards parsed samples.
type Poller struct {
	client  *Client
	updater FlightLoadUpdater
	cfg     PollerConfig
	log     *zap.Logger
}

// NewPoller creates a Poller. A nil logger discards output.
func NewPoller(client *Client, updater FlightLoadUpdater, cfg PollerConfig, log *zap.Logger) *Poller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{
		client:  client,
		updater: updater,
		cfg:     cfg,
		log:     log,
	}
}

// RegisterSimVars adds every FlightLoadSimVars entry to the data definition.
func (p *Poller) RegisterSimVars() error {
	for _, sv := range FlightLoadSimVars {
		if err := p.client.AddToDataDefinition(DefIDFlightLoad, sv); err != nil {
			return err
		}
	}
	p.log.Debug("registered flight load simvars", zap.Int("count", len(FlightLoadSimVars)))
	return nil
}

// Start blocks, sending periodic RequestData messages and processing responses.
// It exits when ctx is cancelled or the connection fails.
func (p *Poller) Start(ctx context.Context) error {
	interval := p.cfg.PollInterval
	if interval <= 0 {
		interval = DefaultPollerConfig().PollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	done := make(chan error, 1)
	go p.readLoop(done)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-done:
			return err
		case <-ticker.C:
			if _, err := p.client.RequestData(DefIDFlightLoad, ObjectIDUser, ReqIDFlightLoad); err != nil {
				return err
			}
		}
	}
}

func (p *Poller) readLoop(done chan<- error) {
	for {
		h, data, err := p.client.ReadNext()
		if err != nil {
			done <- err
			return
		}
		switch h.Type {
		case MsgSimObjectData:
			if h.ID != ReqIDFlightLoad {
				continue
			}
			load, err := ParseFlightLoadPayload(data)
			if err != nil {
				p.log.Warn("parse flight load payload", zap.Error(err))
				continue
			}
			if !load.Finite() {
				p.log.Warn("discarding non-finite flight load",
					zap.Float64("tas_kts", load.TrueSpeed),
					zap.Float64("load_factor", load.LoadFactor))
				continue
			}
			p.updater.Update(load)
		case MsgException:
			code, sendID, err := ExceptionSendID(data)
			if err != nil {
				p.log.Warn("malformed exception", zap.Uint32("id", h.ID), zap.Error(err))
				continue
			}
			p.log.Warn("simconnect exception", zap.Uint32("code", code), zap.Uint32("send_id", sendID))
		}
	}
}
