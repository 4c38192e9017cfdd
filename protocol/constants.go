package protocol

import (
	"fmt"
	"strings"
)

// Generic radio & protocol constants (platform independent). All higher layers should depend on this file.
const (
	// Frame sizing
	// Layout:
	//   Length (1 byte) | From (1) | To (1) | Type (1) | Seq (1) | Payload (0-22) | CRC32 (4) | Terminal (1)
	// Length counts everything after the length byte, i.e., total Frame size minus 1.

	// Sizes of individual components
	LengthFieldSize = 1
	AddressSize     = 1
	TypeFieldSize   = 1
	SeqFieldSize    = 1
	CRCSize         = 4 // CRC32, little-endian
	TerminalSize    = 1

	// Header: Length + From + To + Type + Seq = 5 bytes before payload
	FrameHeaderSize = LengthFieldSize + 2*AddressSize + TypeFieldSize + SeqFieldSize

	// Total maximum Frame length on air (including length, CRC, Terminal).
	// 32 bytes is the transceiver FIFO width.
	MaxFrameSize = 32

	// Application-level payload allowance
	MaxPayloadSize = MaxFrameSize - FrameHeaderSize - CRCSize - TerminalSize

	// Request payload: Cmd(1) | Sensor(1) | Data
	RequestHeaderSize = 2
	// Response payload: Cmd(1) | Sensor(1) | Len(1) | Data
	ResponseHeaderSize = 3

	MaxRequestData  = MaxPayloadSize - RequestHeaderSize
	MaxResponseData = MaxPayloadSize - ResponseHeaderSize

	// Presentation payload: Count(1) | Types(MaxSensors)
	MaxSensors = 4

	// RF defaults (can be overridden per node)
	DefaultChannel = 76

	// internal helper (bytes in header after length byte)
	headerWithoutLen = FrameHeaderSize - LengthFieldSize

	// Terminal byte value appended to the end of every Frame
	FrameTerminal = 0x55
)

// Type is the packet type tag.
type Type byte

const (
	TypeRequest              Type = 0x01
	TypeResponse             Type = 0x02
	TypePresentationRequest  Type = 0x03
	TypePresentationResponse Type = 0x04
)

func (t Type) String() string {
	switch t {
	case TypeRequest:
		return "REQUEST"
	case TypeResponse:
		return "RESPONSE"
	case TypePresentationRequest:
		return "PRESENTATION_REQUEST"
	case TypePresentationResponse:
		return "PRESENTATION_RESPONSE"
	}
	return "UNKNOWN"
}

// Command is carried by request and response payloads.
type Command byte

const (
	CmdRead             Command = 0x00
	CmdWrite            Command = 0x01
	CmdCalibrationRead  Command = 0x02
	CmdCalibrationWrite Command = 0x03
)

// IsRead reports whether the command belongs to the read family, which
// always produces a response.
func (c Command) IsRead() bool {
	return c == CmdRead || c == CmdCalibrationRead
}

// ParseCommand accepts a command name as printed by String, case
// insensitively, or its short form read, write, cal-read, cal-write.
func ParseCommand(s string) (Command, error) {
	switch strings.ToUpper(s) {
	case "READ":
		return CmdRead, nil
	case "WRITE":
		return CmdWrite, nil
	case "CALIBRATION_READ", "CAL-READ":
		return CmdCalibrationRead, nil
	case "CALIBRATION_WRITE", "CAL-WRITE":
		return CmdCalibrationWrite, nil
	}
	return 0, fmt.Errorf("unknown command %q", s)
}

func (c Command) String() string {
	switch c {
	case CmdRead:
		return "READ"
	case CmdWrite:
		return "WRITE"
	case CmdCalibrationRead:
		return "CALIBRATION_READ"
	case CmdCalibrationWrite:
		return "CALIBRATION_WRITE"
	}
	return "UNKNOWN"
}
