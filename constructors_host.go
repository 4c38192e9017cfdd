//go:build !tinygo && !baremetal

// This file is built only for non-embedded targets (host-based testing).
package nrfnode

import (
	"github.com/sirupsen/logrus"

	"github.com/ystepanoff/nrfnode/config"
	"github.com/ystepanoff/nrfnode/driver/stub"
	"github.com/ystepanoff/nrfnode/sim"
)

// NewNode assembles a node on the given hardware with a stub radio.
func NewNode(cfg *config.Config, hw Hardware, log logrus.FieldLogger) (*Node, error) {
	return assemble(cfg, hw, stub.New(), log)
}

// SimNode is a node running on the simulated platform, with handles on
// every simulated part.
type SimNode struct {
	*Node

	Clock    *sim.Clock
	Platform *sim.Platform
	Probe    *sim.Probe
	Store    *sim.Store
	Pin      *sim.Pin
	Radio    *stub.Driver
}

// NewSimNode assembles a node on a fresh simulated platform. The platform
// timings follow the configuration.
func NewSimNode(cfg *config.Config, opts sim.Options, log logrus.FieldLogger) (*SimNode, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if opts.TickInterval == 0 {
		opts.TickInterval = cfg.Timing.Tick
	}
	if opts.WatchdogPeriod == 0 {
		opts.WatchdogPeriod = cfg.Timing.Watchdog
	}

	clock := &sim.Clock{}
	s := &SimNode{
		Clock:    clock,
		Platform: sim.NewPlatform(clock, opts),
		Probe:    sim.NewProbe(clock),
		Store:    sim.NewStore(),
		Pin:      &sim.Pin{},
		Radio:    stub.New(),
	}
	n, err := assemble(cfg, Hardware{
		Platform: s.Platform,
		Probe:    s.Probe,
		Store:    s.Store,
		Pin:      s.Pin,
	}, s.Radio, log)
	if err != nil {
		return nil, err
	}
	s.Node = n
	return s, nil
}
