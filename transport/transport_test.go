package transport

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	proto "github.com/ystepanoff/nrfnode/protocol"
)

// MockDriver implements the RadioDriver interface for testing
type MockDriver struct {
	mutex   sync.Mutex
	txLog   [][]byte
	rxData  [][]byte
	powered bool
	address byte
	txErr   error
}

func NewMockDriver() *MockDriver {
	return &MockDriver{
		txLog:  make([][]byte, 0),
		rxData: make([][]byte, 0),
	}
}

func (d *MockDriver) Init() {}

func (d *MockDriver) Configure(channel uint8) error {
	return proto.ValidateChannel(channel)
}

func (d *MockDriver) SetAddress(addr byte) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.address = addr
}

func (d *MockDriver) PowerUp() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.powered = true
}

func (d *MockDriver) PowerDown() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.powered = false
}

func (d *MockDriver) Tx(data []byte) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.txErr != nil {
		return d.txErr
	}

	// Make a copy to avoid data races
	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	d.txLog = append(d.txLog, dataCopy)
	return nil
}

func (d *MockDriver) Rx(timeout time.Duration) ([]byte, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if len(d.rxData) == 0 {
		return nil, proto.ErrTimeout
	}

	data := d.rxData[0]
	d.rxData = d.rxData[1:]

	// Make a copy to avoid data races
	result := make([]byte, len(data))
	copy(result, data)

	return result, nil
}

// Test helper methods
func (d *MockDriver) GetTxLog() [][]byte {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	// Return a copy to avoid data races
	result := make([][]byte, len(d.txLog))
	for i, data := range d.txLog {
		result[i] = make([]byte, len(data))
		copy(result[i], data)
	}

	return result
}

func (d *MockDriver) ClearTxLog() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.txLog = d.txLog[:0]
}

// TakeTxLog returns the transmitted frames and clears the log atomically.
func (d *MockDriver) TakeTxLog() [][]byte {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	result := d.txLog
	d.txLog = make([][]byte, 0)
	return result
}

func (d *MockDriver) InjectRx(data []byte) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	// Make a copy to avoid data races
	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	d.rxData = append(d.rxData, dataCopy)
}

func mustEncode(t *testing.T, p *proto.Packet) []byte {
	t.Helper()
	data, err := proto.EncodePacket(p)
	if err != nil {
		t.Fatalf("EncodePacket() error = %v", err)
	}
	return data
}

func mustDecode(t *testing.T, data []byte) *proto.Packet {
	t.Helper()
	p, err := proto.DecodePacket(data)
	if err != nil {
		t.Fatalf("DecodePacket() error = %v", err)
	}
	return p
}

func newTestLink(t *testing.T) (*Link, *MockDriver) {
	t.Helper()
	d := NewMockDriver()
	l := NewLinkWithDriver(d, proto.DefaultChannel, nil)
	l.Initialize()
	l.Configure()
	l.SetLocalAddress(3)
	l.PowerUpReceive()
	return l, d
}

func TestLinkOutboundStatus(t *testing.T) {
	l, d := newTestLink(t)

	if got := l.OutboundStatus(); got != OutboundEmpty {
		t.Fatalf("OutboundStatus() = %v, want empty", got)
	}

	l.SendPacket(&proto.Packet{To: proto.CoordinatorAddress, Payload: proto.NewResponse(proto.CmdRead, 1, []byte{1})})
	if got := l.OutboundStatus(); got != OutboundStaged {
		t.Fatalf("OutboundStatus() after send = %v, want staged", got)
	}
	if len(d.GetTxLog()) != 0 {
		t.Fatal("frame transmitted before the outbound queue was polled")
	}

	l.PollOutboundQueue()
	if got := l.OutboundStatus(); got != OutboundSent {
		t.Fatalf("OutboundStatus() after poll = %v, want sent", got)
	}

	txLog := d.GetTxLog()
	if len(txLog) != 1 {
		t.Fatalf("Expected 1 transmitted frame, got %d", len(txLog))
	}
	p := mustDecode(t, txLog[0])
	if p.From != 3 || p.To != proto.CoordinatorAddress {
		t.Errorf("addresses = %d->%d, want 3->1", p.From, p.To)
	}

	d.txErr = errors.New("no ack")
	l.SendPacket(&proto.Packet{To: proto.CoordinatorAddress, Payload: &proto.Presentation{Count: 1}})
	l.PollOutboundQueue()
	if got := l.OutboundStatus(); got != OutboundFailed {
		t.Errorf("OutboundStatus() after tx error = %v, want failed", got)
	}
}

func TestLinkSequenceNumbers(t *testing.T) {
	l, d := newTestLink(t)

	for i := 0; i < 3; i++ {
		l.SendPacket(&proto.Packet{To: proto.CoordinatorAddress, Payload: &proto.Presentation{}})
	}
	l.PollOutboundQueue()

	// each send flushes the previous staged frame
	txLog := d.GetTxLog()
	if len(txLog) != 3 {
		t.Fatalf("Expected 3 transmitted frames, got %d", len(txLog))
	}
	for i, f := range txLog {
		if p := mustDecode(t, f); p.Seq != uint8(i) {
			t.Errorf("frame %d Seq = %d, want %d", i, p.Seq, i)
		}
	}
}

func TestLinkInboundFiltering(t *testing.T) {
	l, d := newTestLink(t)

	d.InjectRx([]byte{0x01, 0x02, 0x03})
	d.InjectRx(mustEncode(t, &proto.Packet{From: 1, To: 4, Payload: &proto.PresentationRequest{}}))
	d.InjectRx(mustEncode(t, &proto.Packet{From: 1, To: 3, Seq: 9, Payload: &proto.Request{Cmd: proto.CmdRead, Sensor: 2}}))

	p, ok := l.PollInboundQueue()
	if !ok {
		t.Fatal("PollInboundQueue() = none, want request")
	}
	req, ok := p.Payload.(*proto.Request)
	if !ok || req.Sensor != 2 || p.Seq != 9 {
		t.Errorf("packet = %v %+v", p, p.Payload)
	}
	if got := l.Dropped(); got != 2 {
		t.Errorf("Dropped() = %d, want 2", got)
	}

	if _, ok := l.PollInboundQueue(); ok {
		t.Error("PollInboundQueue() returned a packet from an empty queue")
	}
}

func TestLinkIgnoresInboundWhilePoweredDown(t *testing.T) {
	l, d := newTestLink(t)
	l.PowerDown()
	if d.powered {
		t.Fatal("driver still powered")
	}

	d.InjectRx(mustEncode(t, &proto.Packet{From: 1, To: 3, Payload: &proto.PresentationRequest{}}))
	if _, ok := l.PollInboundQueue(); ok {
		t.Error("PollInboundQueue() delivered a packet while powered down")
	}

	l.PowerUpReceive()
	if _, ok := l.PollInboundQueue(); !ok {
		t.Error("PollInboundQueue() = none after power up")
	}
}

// nodeEcho answers coordinator frames the way a node would.
func nodeEcho(coord *MockDriver, stop <-chan struct{}) {
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
			}
			for _, f := range coord.TakeTxLog() {
				in, err := proto.DecodePacket(f)
				if err != nil {
					continue
				}
				out := &proto.Packet{From: in.To, To: in.From}
				switch pl := in.Payload.(type) {
				case *proto.Request:
					out.Payload = proto.NewResponse(pl.Cmd, pl.Sensor, []byte{0x42})
				case *proto.PresentationRequest:
					out.Payload = &proto.Presentation{Count: 2, Types: [proto.MaxSensors]byte{3, 0}}
				}
				data, _ := proto.EncodePacket(out)
				coord.InjectRx(data)
			}
			time.Sleep(time.Millisecond)
		}
	}()
}

func TestCoordinatorRequestAndPresent(t *testing.T) {
	coordDriver := NewMockDriver()
	c := NewCoordinatorWithDriver(coordDriver, time.Second, nil)
	if err := c.Initialise(proto.DefaultChannel); err != nil {
		t.Fatalf("Initialise() error = %v", err)
	}
	if coordDriver.address != byte(proto.CoordinatorAddress) {
		t.Errorf("coordinator address = %d, want 1", coordDriver.address)
	}

	stop := make(chan struct{})
	defer close(stop)
	nodeEcho(coordDriver, stop)

	ctx := context.Background()
	res, err := c.Request(ctx, 3, proto.CmdRead, 0, nil)
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if !bytes.Equal(res.Payload(), []byte{0x42}) {
		t.Errorf("Payload() = %v, want [0x42]", res.Payload())
	}

	pres, err := c.Present(ctx, 3)
	if err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	if pres.Count != 2 {
		t.Errorf("Count = %d, want 2", pres.Count)
	}
}

func TestCoordinatorTimeoutAndValidation(t *testing.T) {
	c := NewCoordinatorWithDriver(NewMockDriver(), 20*time.Millisecond, nil)
	if err := c.Initialise(200); !errors.Is(err, proto.ErrInvalidChannel) {
		t.Errorf("Initialise(200) error = %v, want ErrInvalidChannel", err)
	}

	if _, err := c.Request(context.Background(), proto.CoordinatorAddress, proto.CmdRead, 0, nil); !errors.Is(err, proto.ErrInvalidAddress) {
		t.Errorf("Request(to 1) error = %v, want ErrInvalidAddress", err)
	}

	if _, err := c.Request(context.Background(), 3, proto.CmdRead, 0, nil); !errors.Is(err, proto.ErrTimeout) {
		t.Errorf("Request() error = %v, want ErrTimeout", err)
	}

	res, err := c.Request(context.Background(), 3, proto.CmdWrite, 1, []byte{1})
	if err != nil || res != nil {
		t.Errorf("write Request() = %v, %v, want nil, nil", res, err)
	}
}
