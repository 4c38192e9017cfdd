//go:build !tinygo && !baremetal

// Package sim provides a deterministic host platform for the node: a
// virtual clock, the fast tick, the watchdog, the analog converter, a
// one-wire probe, persistent storage and the output pin.
//
// Time only moves when the node suspends or converts, so a full
// 64-second sleep cycle runs in microseconds unless pacing is enabled.
package sim

import (
	"fmt"
	"sync"
	"time"

	"github.com/ystepanoff/nrfnode/platform"
)

// Clock is a virtual monotonic clock measured from power-on.
type Clock struct {
	mu  sync.Mutex
	now time.Duration
}

func (c *Clock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) set(t time.Duration) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

const (
	DefaultTickInterval   = 10 * time.Millisecond
	DefaultWatchdogPeriod = 8 * time.Second
	DefaultADCTime        = 104 * time.Microsecond
	DefaultBusyStep       = 100 * time.Microsecond

	// DefaultTemperatureRaw is the on-chip sensor count near 25 degC.
	DefaultTemperatureRaw = 314
	// DefaultSupply is two lithium cells behind a divider, in millivolts.
	DefaultSupply = 3700
)

// Options configures the simulated platform.
type Options struct {
	TickInterval   time.Duration
	WatchdogPeriod time.Duration
	ADCTime        time.Duration
	BusyStep       time.Duration

	// Speed paces virtual time against the wall clock: 1 is real time,
	// 10 is ten times faster. Zero runs unpaced.
	Speed float64
	// Done aborts pacing sleeps.
	Done <-chan struct{}

	// Trace records hardware control calls for inspection.
	Trace bool
}

// Platform implements platform.Platform on a virtual clock.
type Platform struct {
	clock *Clock
	opts  Options

	handlers platform.Handlers

	tickOn   bool
	nextTick time.Duration

	wdtArmed bool
	wdtWake  bool
	nextWdt  time.Duration

	adcOn bool

	mu             sync.Mutex
	temperatureRaw uint16
	supplyMV       uint32

	trace []string
}

// NewPlatform returns a platform with the tick and watchdog disabled and
// the analog converter powered down.
func NewPlatform(clock *Clock, opts Options) *Platform {
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.WatchdogPeriod <= 0 {
		opts.WatchdogPeriod = DefaultWatchdogPeriod
	}
	if opts.ADCTime <= 0 {
		opts.ADCTime = DefaultADCTime
	}
	if opts.BusyStep <= 0 {
		opts.BusyStep = DefaultBusyStep
	}
	return &Platform{
		clock:          clock,
		opts:           opts,
		temperatureRaw: DefaultTemperatureRaw,
		supplyMV:       DefaultSupply,
	}
}

func (p *Platform) record(op string) {
	if p.opts.Trace {
		p.trace = append(p.trace, op)
	}
}

// Trace returns the recorded control calls.
func (p *Platform) Trace() []string {
	out := make([]string, len(p.trace))
	copy(out, p.trace)
	return out
}

// ResetTrace discards the recorded calls.
func (p *Platform) ResetTrace() { p.trace = p.trace[:0] }

func (p *Platform) SetHandlers(h platform.Handlers) { p.handlers = h }

func (p *Platform) EnableTick() {
	p.record("tick:on")
	p.tickOn = true
	p.nextTick = p.clock.Now() + p.opts.TickInterval
}

func (p *Platform) DisableTick() {
	p.record("tick:off")
	p.tickOn = false
}

func (p *Platform) TickEnabled() bool { return p.tickOn }

func (p *Platform) ArmWatchdog() {
	p.record("wdt:arm")
	p.wdtArmed = true
	p.wdtWake = true
	p.nextWdt = p.clock.Now() + p.opts.WatchdogPeriod
}

func (p *Platform) RearmWatchdog() {
	p.record("wdt:rearm")
	p.wdtWake = true
}

func (p *Platform) DisarmWatchdog() {
	p.record("wdt:off")
	p.wdtArmed = false
	p.wdtWake = false
}

// WatchdogArmed reports whether the watchdog runs with wake enabled.
func (p *Platform) WatchdogArmed() bool { return p.wdtArmed && p.wdtWake }

func (p *Platform) EnableADC() {
	p.record("adc:on")
	p.adcOn = true
}

func (p *Platform) DisableADC() {
	p.record("adc:off")
	p.adcOn = false
}

// ADCEnabled reports whether the converter is powered.
func (p *Platform) ADCEnabled() bool { return p.adcOn }

// SetTemperatureRaw sets the count the on-chip sensor converts to.
func (p *Platform) SetTemperatureRaw(raw uint16) {
	p.mu.Lock()
	p.temperatureRaw = raw
	p.mu.Unlock()
}

// SetSupply sets the supply voltage in millivolts.
func (p *Platform) SetSupply(mv uint32) {
	p.mu.Lock()
	p.supplyMV = mv
	p.mu.Unlock()
}

// Convert runs a one-shot conversion. The node waits in noise-reduction
// sleep, so pending ticks may fire meanwhile.
func (p *Platform) Convert(ch platform.Channel) uint16 {
	if !p.adcOn {
		panic("sim: conversion with the analog converter powered down")
	}
	p.record(fmt.Sprintf("adc:convert:%d", ch))
	p.advanceTo(p.clock.Now() + p.opts.ADCTime)

	p.mu.Lock()
	defer p.mu.Unlock()
	switch ch {
	case platform.ChannelTemperature:
		return p.temperatureRaw
	case platform.ChannelBandgap:
		// 1.1V against the supply on a 10-bit converter.
		if p.supplyMV == 0 {
			return 1023
		}
		raw := 1125300 / p.supplyMV
		if raw > 1023 {
			raw = 1023
		}
		return uint16(raw)
	}
	return 0
}

// Suspend yields until the next event the hint allows to wake the
// processor. Suspending with no possible wake source is a hang on real
// hardware and panics here.
func (p *Platform) Suspend(h platform.Hint) {
	switch h {
	case platform.Busy:
		p.advanceTo(p.clock.Now() + p.opts.BusyStep)

	case platform.Idle:
		next, ok := p.nextWake()
		if !ok {
			panic("sim: idle suspend with no wake source enabled")
		}
		p.advanceTo(next)

	case platform.Deep:
		p.record("suspend:deep")
		if !p.wdtArmed || !p.wdtWake {
			panic("sim: deep suspend without watchdog wake enabled")
		}
		p.advanceTo(p.nextWdt)
	}
}

func (p *Platform) nextWake() (time.Duration, bool) {
	var (
		next time.Duration
		ok   bool
	)
	if p.tickOn {
		next, ok = p.nextTick, true
	}
	if p.wdtArmed && p.wdtWake && (!ok || p.nextWdt < next) {
		next, ok = p.nextWdt, true
	}
	return next, ok
}

// advanceTo moves the clock to t, firing every tick and watchdog expiry
// that falls due on the way in time order.
func (p *Platform) advanceTo(t time.Duration) {
	for {
		now := p.clock.Now()
		due := t
		tick := p.tickOn && p.nextTick <= due
		if tick {
			due = p.nextTick
		}
		wdt := p.wdtArmed && p.nextWdt <= due
		if wdt && p.nextWdt < due {
			due, tick = p.nextWdt, false
		}

		p.pace(due - now)
		p.clock.set(due)

		if !tick && !wdt {
			return
		}
		if tick {
			p.nextTick += p.opts.TickInterval
			if p.handlers.Tick != nil {
				p.handlers.Tick()
			}
		}
		if wdt {
			p.nextWdt += p.opts.WatchdogPeriod
			if p.wdtWake {
				// the interrupt enable is consumed by the expiry
				p.wdtWake = false
				if p.handlers.Watchdog != nil {
					p.handlers.Watchdog()
				}
			}
		}
	}
}

func (p *Platform) pace(d time.Duration) {
	if p.opts.Speed <= 0 || d <= 0 {
		return
	}
	timer := time.NewTimer(time.Duration(float64(d) / p.opts.Speed))
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-p.opts.Done:
	}
}
