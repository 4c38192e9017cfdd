package nrfnode

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ystepanoff/nrfnode/config"
	"github.com/ystepanoff/nrfnode/device"
	"github.com/ystepanoff/nrfnode/dispatch"
	"github.com/ystepanoff/nrfnode/platform"
	"github.com/ystepanoff/nrfnode/power"
	proto "github.com/ystepanoff/nrfnode/protocol"
	"github.com/ystepanoff/nrfnode/sensor"
	"github.com/ystepanoff/nrfnode/transport"
)

// Hardware is what the board provides besides the radio.
type Hardware struct {
	Platform platform.Platform
	Probe    sensor.Probe
	Store    sensor.Store
	Pin      sensor.Pin // optional
}

// Node is one assembled sensor node.
type Node struct {
	Config *config.Config

	State      *device.State
	Sensors    *sensor.Orchestrator
	Dispatcher *dispatch.Dispatcher
	Scheduler  *power.Scheduler
	Link       *transport.Link
	Driver     transport.RadioDriver
}

// assemble validates and normalizes a copy of cfg and wires the node
// around driver.
func assemble(cfg *config.Config, hw Hardware, driver transport.RadioDriver, log logrus.FieldLogger) (*Node, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	c := *cfg
	if err := config.Validate(&c); err != nil {
		return nil, err
	}
	config.Normalize(&c)

	if hw.Platform == nil || hw.Probe == nil || hw.Store == nil {
		return nil, fmt.Errorf("nrfnode: platform, probe and store are required")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("node", c.Node.Address)

	state := device.NewState()
	link := transport.NewLinkWithDriver(driver, c.Node.ChannelOrDefault(), log)

	orch := sensor.New(state, sensor.NewSet(c.Node.LowPower, c.Node.BatteryEnabled()), sensor.Hardware{
		ADC:       hw.Platform,
		Suspender: hw.Platform,
		Probe:     hw.Probe,
		Store:     hw.Store,
		Pin:       hw.Pin,
	}, sensor.Options{
		TemperatureOffset:  c.Sensors.TemperatureOffset,
		CalibrationAddress: c.Sensors.CalibrationAddress,
		CalibrationDefault: c.Sensors.CalibrationDefault,
		ProbeResolution:    c.Sensors.ProbeResolution,
		BatteryConstant:    c.Sensors.BatteryConstant,
		LowPower:           c.Node.LowPower,
		Logger:             log,
	})

	disp := dispatch.New(state, link, orch, dispatch.Options{
		LowPower:    c.Node.LowPower,
		WindowTicks: c.Timing.WindowTicks(),
		Logger:      log,
	})

	sched := power.New(state, hw.Platform, link, orch, disp, power.Options{
		Address:      proto.Address(c.Node.Address),
		WindowTicks:  c.Timing.WindowTicks(),
		RefreshTicks: c.Timing.RefreshTicks(),
		SleepCycles:  c.Timing.SleepCycles,
		LowPower:     c.Node.LowPower,
		Logger:       log,
	})

	return &Node{
		Config:     &c,
		State:      state,
		Sensors:    orch,
		Dispatcher: disp,
		Scheduler:  sched,
		Link:       link,
		Driver:     driver,
	}, nil
}

// Address returns the node's radio address.
func (n *Node) Address() Address { return proto.Address(n.Config.Node.Address) }

// Boot brings the node up. It must be called once before Step or Run.
func (n *Node) Boot() { n.Scheduler.Boot() }

// Step runs one pass of the control loop.
func (n *Node) Step() { n.Scheduler.Step() }

// Run loops the control loop until ctx is done.
func (n *Node) Run(ctx context.Context) error { return n.Scheduler.Run(ctx) }

func (n *Node) Mode() Mode { return n.Scheduler.Mode() }
