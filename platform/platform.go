// Package platform describes the hardware the node runs on in terms of
// capabilities rather than registers.
package platform

// Hint selects how deeply the processor may suspend while it waits.
type Hint uint8

const (
	// Busy does not suspend; the caller polls.
	Busy Hint = iota
	// Idle suspends until the next fast tick or any other interrupt.
	Idle
	// Deep suspends until the watchdog fires. Nothing else wakes it.
	Deep
)

func (h Hint) String() string {
	switch h {
	case Busy:
		return "busy"
	case Idle:
		return "idle"
	case Deep:
		return "deep"
	}
	return "unknown"
}

// Channel selects the analog converter input and reference.
type Channel uint8

const (
	// ChannelTemperature measures the on-chip temperature sensor against
	// the internal 1.1V reference.
	ChannelTemperature Channel = iota
	// ChannelBandgap measures the internal 1.1V reference against the
	// supply voltage.
	ChannelBandgap
)

// Handlers are invoked from interrupt context. They must do nothing but
// bump counters.
type Handlers struct {
	Tick     func()
	Watchdog func()
}

// Suspender yields the processor with a power hint.
type Suspender interface {
	Suspend(h Hint)
}

// Ticker controls the fast periodic tick interrupt.
type Ticker interface {
	EnableTick()
	DisableTick()
	TickEnabled() bool
}

// Watchdog controls the coarse watchdog. Its wake capability is consumed
// by every expiry and must be re-armed before the next deep suspension.
type Watchdog interface {
	ArmWatchdog()
	RearmWatchdog()
	DisarmWatchdog()
}

// Analog is the analog-to-digital converter. Convert blocks until the
// one-shot conversion completes.
type Analog interface {
	EnableADC()
	DisableADC()
	Convert(ch Channel) uint16
}

// Platform is everything the scheduler needs from the hardware.
type Platform interface {
	Suspender
	Ticker
	Watchdog
	Analog
	SetHandlers(h Handlers)
}
