// Package dispatch turns inbound poll packets into sensor operations and
// replies.
package dispatch

import (
	"github.com/sirupsen/logrus"

	"github.com/ystepanoff/nrfnode/device"
	proto "github.com/ystepanoff/nrfnode/protocol"
	"github.com/ystepanoff/nrfnode/sensor"
	"github.com/ystepanoff/nrfnode/transport"
)

// Options tunes the dispatcher.
type Options struct {
	// LowPower enables closing the responsiveness window early once a
	// probe reply has been delivered.
	LowPower bool
	// WindowTicks is the responsiveness window length in fast ticks.
	WindowTicks uint32

	Logger logrus.FieldLogger
}

// Dispatcher handles at most one inbound packet per call.
type Dispatcher struct {
	state  *device.State
	radio  transport.Radio
	sensor *sensor.Orchestrator
	opts   Options
	log    logrus.FieldLogger
}

func New(state *device.State, radio transport.Radio, orch *sensor.Orchestrator, opts Options) *Dispatcher {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Dispatcher{
		state:  state,
		radio:  radio,
		sensor: orch,
		opts:   opts,
		log:    opts.Logger.WithField("component", "dispatch"),
	}
}

// Handle processes one inbound packet.
func (d *Dispatcher) Handle(p *proto.Packet) {
	if p == nil {
		return
	}

	replied := false
	switch pl := p.Payload.(type) {
	case *proto.Request:
		replied = d.handleRequest(p.From, pl)
	case *proto.PresentationRequest:
		d.reply(p.From, d.sensor.Set().Presentation())
		replied = true
	default:
		d.log.WithFields(logrus.Fields{"from": p.From, "type": p.Type()}).Debug("ignoring packet")
	}

	if replied && d.radio.OutboundStatus() == transport.OutboundStaged {
		d.radio.PollOutboundQueue()
	}
}

func (d *Dispatcher) handleRequest(from proto.Address, req *proto.Request) bool {
	fields := logrus.Fields{"from": from, "sensor": req.Sensor, "cmd": req.Cmd}

	data, ok := d.sensor.Handle(req.Sensor, req.Cmd, req.Data)
	if !ok {
		d.log.WithFields(fields).Debug("unsupported request ignored")
		return false
	}
	if !req.Cmd.IsRead() {
		d.log.WithFields(fields).Debug("write applied")
		return false
	}

	d.reply(from, proto.NewResponse(req.Cmd, req.Sensor, data))

	if desc, _ := d.sensor.Descriptor(req.Sensor); desc.Kind == sensor.KindProbe && d.opts.LowPower {
		d.closeWindowOnDelivery()
	}
	return true
}

// closeWindowOnDelivery waits for the probe reply to leave the radio and,
// if it was delivered, pushes the elapsed counter past the window so the
// next pass goes straight back to sleep. A second request arriving right
// after may be missed.
func (d *Dispatcher) closeWindowOnDelivery() {
	d.radio.PollOutboundQueue()
	for d.radio.OutboundStatus() == transport.OutboundStaged {
		d.radio.PollOutboundQueue()
	}
	if d.radio.OutboundStatus() != transport.OutboundSent {
		return
	}
	d.state.CreditElapsed(d.opts.WindowTicks + 1)
	d.log.Debug("probe reply delivered, closing window")
}

func (d *Dispatcher) reply(to proto.Address, payload proto.Payload) {
	d.radio.SendPacket(&proto.Packet{To: to, Payload: payload})
}
