package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	proto "github.com/ystepanoff/nrfnode/protocol"
)

// DefaultReplyTimeout bounds how long the coordinator waits for a reply
// when the context carries no deadline.
const DefaultReplyTimeout = 200 * time.Millisecond

// Coordinator is the polling peer at address 1. It sends requests to
// nodes and waits for their replies. There are no retries.
type Coordinator struct {
	driver  RadioDriver
	timeout time.Duration
	log     logrus.FieldLogger
	seq     uint8
}

// NewCoordinatorWithDriver returns a coordinator. A zero timeout selects
// DefaultReplyTimeout; a nil logger the standard logrus logger.
func NewCoordinatorWithDriver(d RadioDriver, timeout time.Duration, log logrus.FieldLogger) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultReplyTimeout
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Coordinator{
		driver:  d,
		timeout: timeout,
		log:     log.WithField("component", "coordinator"),
	}
}

// Initialise brings the transceiver up on channel in receive mode.
func (c *Coordinator) Initialise(channel uint8) error {
	if err := proto.ValidateChannel(channel); err != nil {
		return err
	}
	c.driver.Init()
	if err := c.driver.Configure(channel); err != nil {
		return fmt.Errorf("configure: %w", err)
	}
	c.driver.SetAddress(byte(proto.CoordinatorAddress))
	c.driver.PowerUp()
	return nil
}

func (c *Coordinator) send(to proto.Address, payload proto.Payload) error {
	if !proto.ValidNodeAddress(to) {
		return proto.ErrInvalidAddress
	}
	p := &proto.Packet{
		From:    proto.CoordinatorAddress,
		To:      to,
		Seq:     c.seq,
		Payload: payload,
	}
	c.seq++

	data, err := proto.EncodePacket(p)
	if err != nil {
		return err
	}
	c.log.WithFields(logrus.Fields{"to": to, "type": p.Type(), "seq": p.Seq}).Debug("sending")
	return c.driver.Tx(data)
}

// Request sends a command to sensor on node to. Read-family commands wait
// for the matching response; write-family commands return once sent.
func (c *Coordinator) Request(ctx context.Context, to proto.Address, cmd proto.Command, sensor uint8, data []byte) (*proto.Response, error) {
	if err := c.send(to, &proto.Request{Cmd: cmd, Sensor: sensor, Data: data}); err != nil {
		return nil, err
	}
	if !cmd.IsRead() {
		return nil, nil
	}

	p, err := c.await(ctx, to, func(p *proto.Packet) bool {
		res, ok := p.Payload.(*proto.Response)
		return ok && res.Cmd == cmd && res.Sensor == sensor
	})
	if err != nil {
		return nil, fmt.Errorf("%s sensor %d on node %d: %w", cmd, sensor, to, err)
	}
	return p.Payload.(*proto.Response), nil
}

// Present asks node to for its sensor list.
func (c *Coordinator) Present(ctx context.Context, to proto.Address) (*proto.Presentation, error) {
	if err := c.send(to, &proto.PresentationRequest{}); err != nil {
		return nil, err
	}
	p, err := c.await(ctx, to, func(p *proto.Packet) bool {
		_, ok := p.Payload.(*proto.Presentation)
		return ok
	})
	if err != nil {
		return nil, fmt.Errorf("presentation from node %d: %w", to, err)
	}
	return p.Payload.(*proto.Presentation), nil
}

func (c *Coordinator) await(ctx context.Context, from proto.Address, match func(*proto.Packet) bool) (*proto.Packet, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	for {
		select {
		case <-ctx.Done():
			return nil, proto.ErrTimeout
		default:
		}

		data, err := c.driver.Rx(10 * time.Millisecond)
		if err != nil {
			continue
		}
		p, err := proto.DecodePacket(data)
		if err != nil {
			c.log.WithError(err).Debug("dropping undecodable frame")
			continue
		}
		if p.From != from || p.To != proto.CoordinatorAddress || !match(p) {
			continue
		}
		return p, nil
	}
}
