package transport

import proto "github.com/ystepanoff/nrfnode/protocol"

// OutboundStatus reports where the last queued packet is.
type OutboundStatus uint8

const (
	// OutboundEmpty: nothing has been queued since power-on.
	OutboundEmpty OutboundStatus = iota
	// OutboundStaged: queued but not yet handed to the transceiver.
	OutboundStaged
	// OutboundSent: delivered and acknowledged.
	OutboundSent
	// OutboundFailed: the transceiver gave up.
	OutboundFailed
)

func (s OutboundStatus) String() string {
	switch s {
	case OutboundEmpty:
		return "empty"
	case OutboundStaged:
		return "staged"
	case OutboundSent:
		return "sent"
	case OutboundFailed:
		return "failed"
	}
	return "unknown"
}

// Radio is the capability the node core consumes. Framing, retransmission
// and address filtering are the implementation's business.
type Radio interface {
	Initialize()
	Configure()
	SetLocalAddress(addr proto.Address)
	PowerUpReceive()
	PowerDown()
	SendPacket(p *proto.Packet)
	PollInboundQueue() (*proto.Packet, bool)
	PollOutboundQueue()
	OutboundStatus() OutboundStatus
}
