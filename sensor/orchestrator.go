// Package sensor owns the node's logical sensors and their cached readings.
package sensor

import (
	"github.com/sirupsen/logrus"

	"github.com/ystepanoff/nrfnode/device"
	"github.com/ystepanoff/nrfnode/platform"
	"github.com/ystepanoff/nrfnode/protocol"
)

// Probe is the one-wire temperature sensor. A conversion, once started,
// always runs to completion.
type Probe interface {
	SetResolution(bits uint8)
	StartConversion()
	ConversionInProgress() bool
	ReadResult() int16
}

// Store is byte-addressed persistent memory. Unwritten cells read 0xFF.
type Store interface {
	LoadByte(addr uint16) byte
	StoreByte(addr uint16, v byte)
}

// Pin drives the digital output line.
type Pin interface {
	Set(on bool)
}

// Unprogrammed is what a never-written store cell reads as.
const Unprogrammed byte = 0xFF

const (
	DefaultTemperatureOffset  = 19
	DefaultCalibrationAddress = 1
	DefaultCalibration        = 128
	DefaultProbeResolution    = 10
	// DefaultBatteryConstant is 1.1V * 1023 * 1000 / 20: a supply of 5.09V
	// reads 255 and 1.8V reads 90. Dividing by 50 gives volts.
	DefaultBatteryConstant = 56265
)

// Hardware bundles the collaborators the orchestrator drives.
type Hardware struct {
	ADC       platform.Analog
	Suspender platform.Suspender
	Probe     Probe
	Store     Store
	Pin       Pin // optional
}

// Options tunes the orchestrator. Zero values select the defaults.
type Options struct {
	TemperatureOffset  uint8
	CalibrationAddress uint16
	CalibrationDefault uint8
	ProbeResolution    uint8
	BatteryConstant    uint32

	// LowPower appends the battery byte to probe replies.
	LowPower bool

	Logger logrus.FieldLogger
}

// Orchestrator executes sensor operations against the device state.
type Orchestrator struct {
	state *device.State
	set   Set
	hw    Hardware
	opts  Options
	log   logrus.FieldLogger

	converting bool
}

// New returns an orchestrator for the given sensor set.
func New(state *device.State, set Set, hw Hardware, opts Options) *Orchestrator {
	if opts.TemperatureOffset == 0 {
		opts.TemperatureOffset = DefaultTemperatureOffset
	}
	if opts.CalibrationAddress == 0 {
		opts.CalibrationAddress = DefaultCalibrationAddress
	}
	if opts.CalibrationDefault == 0 {
		opts.CalibrationDefault = DefaultCalibration
	}
	if opts.ProbeResolution == 0 {
		opts.ProbeResolution = DefaultProbeResolution
	}
	if opts.BatteryConstant == 0 {
		opts.BatteryConstant = DefaultBatteryConstant
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Orchestrator{
		state: state,
		set:   set,
		hw:    hw,
		opts:  opts,
		log:   opts.Logger.WithField("component", "sensor"),
	}
}

// Set returns the sensor descriptors.
func (o *Orchestrator) Set() Set { return o.set }

// Descriptor returns the descriptor at index i.
func (o *Orchestrator) Descriptor(i uint8) (Descriptor, bool) { return o.set.Lookup(i) }

// Handle runs cmd against sensor index. It returns the reply data for
// read-family commands and whether the command was accepted at all. An
// out-of-range index or unsupported command is ignored.
func (o *Orchestrator) Handle(index uint8, cmd protocol.Command, data []byte) ([]byte, bool) {
	d, ok := o.set.Lookup(index)
	if !ok || !d.Supports(cmd) {
		return nil, false
	}

	switch d.Kind {
	case KindInternalTemperature:
		switch cmd {
		case protocol.CmdRead:
			return []byte{o.ReadTemperature()}, true
		case protocol.CmdCalibrationRead:
			return []byte{o.Calibration()}, true
		case protocol.CmdCalibrationWrite:
			if len(data) > 0 {
				o.WriteCalibration(data[0])
			}
			return nil, true
		}

	case KindOutput:
		switch cmd {
		case protocol.CmdRead:
			return []byte{o.Output()}, true
		case protocol.CmdWrite:
			var v byte
			if len(data) > 0 {
				v = data[0]
			}
			o.SetOutput(v)
			return nil, true
		}

	case KindProbe:
		raw := uint16(o.ProbeReading())
		if o.opts.LowPower {
			return []byte{byte(raw), byte(raw >> 8), o.state.Battery()}, true
		}
		return []byte{byte(raw), byte(raw >> 8)}, true

	case KindBattery:
		return []byte{o.MeasureBattery()}, true
	}
	return nil, false
}

// ReadTemperature converts the on-chip sensor and applies the fixed offset
// and the calibration byte. The arithmetic wraps in one byte.
func (o *Orchestrator) ReadTemperature() uint8 {
	o.hw.ADC.EnableADC()
	raw := o.hw.ADC.Convert(platform.ChannelTemperature)
	o.hw.ADC.DisableADC()
	return uint8(int(raw) - int(o.opts.TemperatureOffset) - int(o.state.Calibration()))
}

// SetOutput drives the output line: nonzero means on.
func (o *Orchestrator) SetOutput(v byte) {
	on := v > 0
	o.state.SetOutput(on)
	if o.hw.Pin != nil {
		o.hw.Pin.Set(on)
	}
}

// Output returns the output flag as 0 or 1.
func (o *Orchestrator) Output() byte {
	if o.state.Output() {
		return 1
	}
	return 0
}

// ConfigureProbe sets the probe resolution. 10 bits gives 0.25 degC steps.
func (o *Orchestrator) ConfigureProbe() {
	o.hw.Probe.SetResolution(o.opts.ProbeResolution)
}

// StartProbe begins a probe conversion. It refuses while one is in flight.
func (o *Orchestrator) StartProbe() bool {
	if o.converting {
		return false
	}
	o.hw.Probe.StartConversion()
	o.converting = true
	return true
}

// ProbeBusy reports whether a started conversion has not been collected.
func (o *Orchestrator) ProbeBusy() bool { return o.converting }

// WaitProbe blocks until the probe reports completion. With Busy it
// polls; with Idle it suspends between polls and relies on the fast tick
// to wake it, so it must only be used while the tick is enabled.
//
// There is no timeout: a probe that never completes hangs the caller.
func (o *Orchestrator) WaitProbe(h platform.Hint) {
	for o.hw.Probe.ConversionInProgress() {
		o.hw.Suspender.Suspend(h)
	}
}

// CollectProbe reads the finished conversion into the cached reading.
func (o *Orchestrator) CollectProbe() {
	if !o.converting {
		return
	}
	o.WaitProbe(platform.Busy)
	o.state.SetProbeReading(o.hw.Probe.ReadResult())
	o.converting = false
}

// RefreshProbe runs a full start, wait, collect cycle.
func (o *Orchestrator) RefreshProbe(h platform.Hint) {
	o.StartProbe()
	o.WaitProbe(h)
	o.CollectProbe()
}

// ProbeReading returns the cached probe value. Reads never start a
// conversion.
func (o *Orchestrator) ProbeReading() int16 { return o.state.ProbeReading() }

// MeasureBattery converts the 1.1V reference against the supply and
// scales it to one byte. Conversion to volts is left to the poller.
func (o *Orchestrator) MeasureBattery() uint8 {
	o.hw.ADC.EnableADC()
	raw := o.hw.ADC.Convert(platform.ChannelBandgap)
	o.hw.ADC.DisableADC()

	v := uint8(0xFF)
	if raw != 0 {
		if q := o.opts.BatteryConstant / uint32(raw); q < 0xFF {
			v = uint8(q)
		}
	}
	o.state.SetBattery(v)
	return v
}

// Battery returns the last measured battery byte.
func (o *Orchestrator) Battery() uint8 { return o.state.Battery() }

// LoadCalibration reads the calibration byte from the store. An
// unprogrammed cell selects the neutral default.
func (o *Orchestrator) LoadCalibration() {
	v := o.hw.Store.LoadByte(o.opts.CalibrationAddress)
	if v == Unprogrammed {
		v = o.opts.CalibrationDefault
	}
	o.state.SetCalibration(v)
}

func (o *Orchestrator) Calibration() uint8 { return o.state.Calibration() }

// WriteCalibration updates the calibration byte. The store is written only
// when the value changes. It reports whether a write happened.
func (o *Orchestrator) WriteCalibration(v uint8) bool {
	if o.state.Calibration() == v {
		return false
	}
	o.state.SetCalibration(v)
	o.hw.Store.StoreByte(o.opts.CalibrationAddress, v)
	o.log.WithField("calibration", v).Debug("calibration stored")
	return true
}
