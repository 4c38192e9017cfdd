package sensor

import "github.com/ystepanoff/nrfnode/protocol"

// Kind identifies what a logical sensor measures or drives.
type Kind uint8

const (
	KindInternalTemperature Kind = iota
	KindOutput
	KindProbe
	KindBattery
)

func (k Kind) String() string {
	switch k {
	case KindInternalTemperature:
		return "internal-temperature"
	case KindOutput:
		return "output"
	case KindProbe:
		return "probe"
	case KindBattery:
		return "battery"
	}
	return "unknown"
}

// Type codes advertised to pollers in the presentation response.
const (
	TypeOutput              byte = 0
	TypeInternalTemperature byte = 3
	TypeProbe               byte = 4
	TypeBattery             byte = 6

	// LowPowerFlag is added to the probe's type code on duty-cycled nodes
	// so pollers know replies may be delayed by up to one sleep period.
	LowPowerFlag byte = 128
)

type commandSet uint8

func commands(cmds ...protocol.Command) commandSet {
	var s commandSet
	for _, c := range cmds {
		s |= 1 << c
	}
	return s
}

// Descriptor is one logical sensor: its index, advertised type code and
// the commands it accepts.
type Descriptor struct {
	Index uint8
	Kind  Kind
	Code  byte

	supports commandSet
}

// Supports reports whether cmd is valid for this sensor.
func (d Descriptor) Supports(cmd protocol.Command) bool {
	if cmd > protocol.CmdCalibrationWrite {
		return false
	}
	return d.supports&(1<<cmd) != 0
}

// Set is the ordered sensor list of one build variant.
type Set []Descriptor

// NewSet returns the 3-sensor variant, or the 4-sensor variant when the
// battery sensor is exposed.
func NewSet(lowPower, battery bool) Set {
	probeCode := TypeProbe
	if lowPower {
		probeCode += LowPowerFlag
	}

	s := Set{
		{
			Index:    0,
			Kind:     KindInternalTemperature,
			Code:     TypeInternalTemperature,
			supports: commands(protocol.CmdRead, protocol.CmdCalibrationRead, protocol.CmdCalibrationWrite),
		},
		{
			Index:    1,
			Kind:     KindOutput,
			Code:     TypeOutput,
			supports: commands(protocol.CmdRead, protocol.CmdWrite),
		},
		{
			Index:    2,
			Kind:     KindProbe,
			Code:     probeCode,
			supports: commands(protocol.CmdRead),
		},
	}
	if battery {
		s = append(s, Descriptor{
			Index:    3,
			Kind:     KindBattery,
			Code:     TypeBattery,
			supports: commands(protocol.CmdRead),
		})
	}
	return s
}

// Lookup returns the descriptor at index i.
func (s Set) Lookup(i uint8) (Descriptor, bool) {
	if int(i) >= len(s) {
		return Descriptor{}, false
	}
	return s[i], true
}

// Presentation builds the presentation payload for this set.
func (s Set) Presentation() *protocol.Presentation {
	p := &protocol.Presentation{Count: uint8(len(s))}
	for i, d := range s {
		if i >= protocol.MaxSensors {
			break
		}
		p.Types[i] = d.Code
	}
	return p
}
