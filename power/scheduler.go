// Package power runs the node's main control loop: the RESPONSIVE window
// driven by the fast tick and, on duty-cycled nodes, the watchdog-paced
// deep sleep between windows.
package power

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ystepanoff/nrfnode/device"
	"github.com/ystepanoff/nrfnode/dispatch"
	"github.com/ystepanoff/nrfnode/platform"
	proto "github.com/ystepanoff/nrfnode/protocol"
	"github.com/ystepanoff/nrfnode/sensor"
	"github.com/ystepanoff/nrfnode/transport"
)

// Mode is the scheduler state.
type Mode uint8

const (
	Responsive Mode = iota
	DutyCycleSleep
)

func (m Mode) String() string {
	switch m {
	case Responsive:
		return "responsive"
	case DutyCycleSleep:
		return "duty-cycle-sleep"
	}
	return "unknown"
}

const (
	// DefaultWindowTicks is 3 s of 10 ms ticks.
	DefaultWindowTicks = 300
	// DefaultRefreshTicks is 60 s of 10 ms ticks.
	DefaultRefreshTicks = 6000
	// DefaultSleepCycles at an 8 s watchdog sleeps about 64 s.
	DefaultSleepCycles = 8
)

// Options tunes the scheduler. Zero values select the defaults.
type Options struct {
	Address proto.Address

	// WindowTicks is how long the node stays responsive before sleeping.
	WindowTicks uint32
	// RefreshTicks is the probe refresh period of always-on nodes.
	RefreshTicks uint32
	// SleepCycles is the number of watchdog expiries per sleep.
	SleepCycles uint32
	// LowPower enables DUTY_CYCLE_SLEEP.
	LowPower bool

	Logger logrus.FieldLogger
}

// Scheduler owns the control loop. All of its methods run on the main
// control path; only the platform handlers touch the state concurrently.
type Scheduler struct {
	state    *device.State
	plat     platform.Platform
	radio    transport.Radio
	sensor   *sensor.Orchestrator
	dispatch *dispatch.Dispatcher
	opts     Options
	log      logrus.FieldLogger
}

func New(state *device.State, plat platform.Platform, radio transport.Radio, orch *sensor.Orchestrator, disp *dispatch.Dispatcher, opts Options) *Scheduler {
	if opts.WindowTicks == 0 {
		opts.WindowTicks = DefaultWindowTicks
	}
	if opts.RefreshTicks == 0 {
		opts.RefreshTicks = DefaultRefreshTicks
	}
	if opts.SleepCycles == 0 {
		opts.SleepCycles = DefaultSleepCycles
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Scheduler{
		state:    state,
		plat:     plat,
		radio:    radio,
		sensor:   orch,
		dispatch: disp,
		opts:     opts,
		log:      opts.Logger.WithField("component", "power"),
	}
}

// Mode reports the current scheduler state.
func (s *Scheduler) Mode() Mode {
	if s.state.DeepSleep() {
		return DutyCycleSleep
	}
	return Responsive
}

// Boot brings the node up in RESPONSIVE. The first probe reading busy-waits
// because no wake source is enabled yet.
func (s *Scheduler) Boot() {
	s.sensor.LoadCalibration()
	s.sensor.ConfigureProbe()

	s.radio.Initialize()
	s.radio.Configure()
	s.radio.SetLocalAddress(s.opts.Address)
	s.radio.PowerUpReceive()

	s.sensor.RefreshProbe(platform.Busy)

	s.plat.SetHandlers(platform.Handlers{
		Tick:     s.state.Tick,
		Watchdog: s.state.WatchdogExpired,
	})
	s.plat.EnableTick()

	s.sensor.MeasureBattery()

	s.log.WithFields(logrus.Fields{
		"addr":        s.opts.Address,
		"low_power":   s.opts.LowPower,
		"calibration": s.sensor.Calibration(),
		"battery":     s.sensor.Battery(),
	}).Info("node up")
}

// Step runs one pass of the control loop. Every pass ends suspended or
// having done work, so a caller looping on Step never spins.
func (s *Scheduler) Step() {
	if s.state.DeepSleep() {
		s.sleepStep()
		return
	}

	var (
		p   *proto.Packet
		got bool
	)
	if s.state.TakeTicks() > 0 {
		p, got = s.radio.PollInboundQueue()
		s.radio.PollOutboundQueue()
	}

	switch {
	case got:
		s.dispatch.Handle(p)
	case s.opts.LowPower && s.state.Elapsed() > s.opts.WindowTicks:
		s.enterSleep()
	case !s.opts.LowPower && s.state.Elapsed() > s.opts.RefreshTicks:
		s.state.ResetElapsed()
		s.sensor.RefreshProbe(platform.Idle)
		s.log.WithField("probe", s.sensor.ProbeReading()).Debug("probe refreshed")
	default:
		s.plat.Suspend(platform.Idle)
	}
}

// Run loops Step until ctx is done. Cancellation is observed between
// passes only.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s.Step()
	}
}

// enterSleep switches from the fast tick to the watchdog. The tick is off
// before the watchdog is armed.
func (s *Scheduler) enterSleep() {
	s.state.ResetElapsed()
	s.plat.DisableTick()
	s.radio.PowerDown()

	s.state.ResetCycles()
	s.plat.ArmWatchdog()
	s.state.SetDeepSleep(true)

	s.log.WithField("cycles", s.opts.SleepCycles).Debug("entering sleep")
	s.plat.Suspend(platform.Deep)
}

func (s *Scheduler) sleepStep() {
	if s.state.Cycles() >= s.opts.SleepCycles {
		s.wake()
		return
	}
	// the expiry consumed the wake enable
	s.plat.RearmWatchdog()
	s.plat.Suspend(platform.Deep)
}

// wake returns to RESPONSIVE. The watchdog is off before the tick is
// enabled. The battery is measured while the probe converts, and the
// remaining conversion time is waited out with the tick running so a poll
// arriving meanwhile is picked up by the forced pass at the end.
func (s *Scheduler) wake() {
	s.plat.DisarmWatchdog()
	s.state.ResetCycles()
	s.state.SetDeepSleep(false)

	s.sensor.StartProbe()
	s.sensor.MeasureBattery()

	s.plat.EnableTick()
	s.sensor.WaitProbe(platform.Idle)
	s.sensor.CollectProbe()

	s.state.ResetElapsed()
	s.radio.PowerUpReceive()
	s.state.ForceTick()

	s.log.WithFields(logrus.Fields{
		"probe":   s.sensor.ProbeReading(),
		"battery": s.sensor.Battery(),
	}).Debug("woke")
}
