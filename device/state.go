// Package device holds the node's process-wide state for one power-on
// session.
//
// Counters and flags that an interrupt-style handler touches are atomics;
// the handler side only ever increments. Everything else is owned by the
// main control path.
package device

import "sync/atomic"

// State is the single device context shared by the scheduler, the
// dispatcher and the sensor orchestrator.
type State struct {
	// handler-written
	ticks   atomic.Uint32 // fast ticks not yet observed by the main loop
	elapsed atomic.Uint32 // fast ticks since the responsiveness window opened
	cycles  atomic.Uint32 // watchdog expiries in the current sleep

	deepSleep atomic.Bool

	// main path only
	output      bool
	calibration uint8
	probe       int16 // 1/16 degC
	battery     uint8
}

// NewState returns the power-on state. The digital output starts on.
func NewState() *State {
	return &State{output: true}
}

// Tick is the fast tick handler.
func (s *State) Tick() {
	s.ticks.Add(1)
	s.elapsed.Add(1)
}

// WatchdogExpired is the watchdog handler.
func (s *State) WatchdogExpired() {
	s.cycles.Add(1)
}

// TakeTicks returns the number of pending ticks and clears them.
func (s *State) TakeTicks() uint32 { return s.ticks.Swap(0) }

// ForceTick marks a tick as pending without advancing elapsed time, so the
// next pass services the radio queues immediately.
func (s *State) ForceTick() { s.ticks.Add(1) }

func (s *State) Elapsed() uint32 { return s.elapsed.Load() }

func (s *State) ResetElapsed() { s.elapsed.Store(0) }

// CreditElapsed pushes the elapsed counter forward by n ticks.
func (s *State) CreditElapsed(n uint32) { s.elapsed.Add(n) }

func (s *State) Cycles() uint32 { return s.cycles.Load() }

func (s *State) ResetCycles() { s.cycles.Store(0) }

func (s *State) DeepSleep() bool { return s.deepSleep.Load() }

func (s *State) SetDeepSleep(on bool) { s.deepSleep.Store(on) }

func (s *State) Output() bool { return s.output }

func (s *State) SetOutput(on bool) { s.output = on }

func (s *State) Calibration() uint8 { return s.calibration }

func (s *State) SetCalibration(v uint8) { s.calibration = v }

// ProbeReading is the last collected one-wire reading, 1/16 degC.
func (s *State) ProbeReading() int16 { return s.probe }

func (s *State) SetProbeReading(v int16) { s.probe = v }

func (s *State) Battery() uint8 { return s.battery }

func (s *State) SetBattery(v uint8) { s.battery = v }
