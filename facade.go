// Package nrfnode provides a façade over the sensor node: configuration,
// assembly of the control loop and the re-exported protocol types.
package nrfnode

import (
	"github.com/ystepanoff/nrfnode/power"
	"github.com/ystepanoff/nrfnode/protocol"
	"github.com/ystepanoff/nrfnode/transport"
)

// The actual constructors are split into build-tag specific files:
// - constructors_nrf.go - for embedded platforms (//go:build tinygo || baremetal)
// - constructors_host.go - for development/testing (//go:build !tinygo && !baremetal)

// Re-exported types
type (
	Address      = protocol.Address
	Packet       = protocol.Packet
	Request      = protocol.Request
	Response     = protocol.Response
	Presentation = protocol.Presentation
	Command      = protocol.Command
	Radio        = transport.Radio
	Coordinator  = transport.Coordinator
	Mode         = power.Mode
)

// Error constants exposed in the public API
var (
	ErrInvalidPayload = protocol.ErrInvalidPayload
	ErrInvalidFrame   = protocol.ErrInvalidFrame
	ErrInvalidAddress = protocol.ErrInvalidAddress
	ErrInvalidChannel = protocol.ErrInvalidChannel
	ErrTimeout        = protocol.ErrTimeout
)

// Constants exposed in the public API
const (
	CoordinatorAddress = protocol.CoordinatorAddress
	DefaultChannel     = protocol.DefaultChannel

	CmdRead             = protocol.CmdRead
	CmdWrite            = protocol.CmdWrite
	CmdCalibrationRead  = protocol.CmdCalibrationRead
	CmdCalibrationWrite = protocol.CmdCalibrationWrite

	Responsive     = power.Responsive
	DutyCycleSleep = power.DutyCycleSleep
)
