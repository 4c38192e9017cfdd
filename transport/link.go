package transport

import (
	"errors"

	"github.com/sirupsen/logrus"

	proto "github.com/ystepanoff/nrfnode/protocol"
)

// Link implements Radio on top of a RadioDriver. It has a single outbound
// slot, stamps the sender address and sequence number, and drops inbound
// frames that fail to decode or are addressed to another node.
type Link struct {
	driver  RadioDriver
	channel uint8
	local   proto.Address
	log     logrus.FieldLogger

	seq       uint8
	staged    []byte
	status    OutboundStatus
	receiving bool

	dropped uint32
}

var _ Radio = (*Link)(nil)

// NewLinkWithDriver returns a link on the given channel. A nil logger
// selects the standard logrus logger.
func NewLinkWithDriver(d RadioDriver, channel uint8, log logrus.FieldLogger) *Link {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Link{
		driver:  d,
		channel: channel,
		log:     log.WithField("component", "link"),
	}
}

func (l *Link) Initialize() { l.driver.Init() }

func (l *Link) Configure() {
	if err := l.driver.Configure(l.channel); err != nil {
		l.log.WithError(err).WithField("channel", l.channel).Error("radio configure failed")
	}
}

func (l *Link) SetLocalAddress(addr proto.Address) {
	l.local = addr
	l.driver.SetAddress(byte(addr))
}

// LocalAddress returns the address set by SetLocalAddress.
func (l *Link) LocalAddress() proto.Address { return l.local }

func (l *Link) PowerUpReceive() {
	l.driver.PowerUp()
	l.receiving = true
}

func (l *Link) PowerDown() {
	l.driver.PowerDown()
	l.receiving = false
}

// Receiving reports whether the receiver is powered.
func (l *Link) Receiving() bool { return l.receiving }

// SendPacket stages p for transmission. A packet still staged from before
// is pushed out first so it is not lost.
func (l *Link) SendPacket(p *proto.Packet) {
	if l.status == OutboundStaged {
		l.PollOutboundQueue()
	}

	p.From = l.local
	p.Seq = l.seq
	l.seq++

	data, err := proto.EncodePacket(p)
	if err != nil {
		l.log.WithError(err).WithField("type", p.Type()).Error("encode failed")
		l.status = OutboundFailed
		return
	}
	l.staged = data
	l.status = OutboundStaged
}

// PollOutboundQueue hands a staged packet to the transceiver.
func (l *Link) PollOutboundQueue() {
	if l.status != OutboundStaged {
		return
	}
	err := l.driver.Tx(l.staged)
	l.staged = nil
	if err != nil {
		l.log.WithError(err).Debug("tx failed")
		l.status = OutboundFailed
		return
	}
	l.status = OutboundSent
}

func (l *Link) OutboundStatus() OutboundStatus { return l.status }

// PollInboundQueue returns the next packet addressed to this node, if any.
func (l *Link) PollInboundQueue() (*proto.Packet, bool) {
	if !l.receiving {
		return nil, false
	}
	for {
		data, err := l.driver.Rx(0)
		if err != nil {
			if !errors.Is(err, proto.ErrTimeout) {
				l.log.WithError(err).Debug("rx failed")
			}
			return nil, false
		}

		p, err := proto.DecodePacket(data)
		if err != nil {
			l.dropped++
			l.log.WithError(err).Debug("dropping undecodable frame")
			continue
		}
		if p.To != l.local {
			l.dropped++
			continue
		}
		return p, true
	}
}

// Dropped returns how many inbound frames were discarded.
func (l *Link) Dropped() uint32 { return l.dropped }
