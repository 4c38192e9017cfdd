//go:build !tinygo && !baremetal

package stub

import (
	"sync"
	"time"

	proto "github.com/ystepanoff/nrfnode/protocol"
	"github.com/ystepanoff/nrfnode/transport"
)

// Driver implements a mock radio driver for host-side testing. While
// powered down it hears nothing: injected frames are dropped.
type Driver struct {
	mu      sync.Mutex
	rxBuf   ringBuffer
	txBuf   ringBuffer
	powered bool
	address byte
	channel uint8
	failTx  error
	dropped int
}

var _ transport.RadioDriver = (*Driver)(nil)

func New() *Driver { return &Driver{} }

func (d *Driver) Init() {}

func (d *Driver) Configure(channel uint8) error {
	if err := proto.ValidateChannel(channel); err != nil {
		return err
	}
	d.mu.Lock()
	d.channel = channel
	d.mu.Unlock()
	return nil
}

func (d *Driver) SetAddress(addr byte) {
	d.mu.Lock()
	d.address = addr
	d.mu.Unlock()
}

func (d *Driver) PowerUp() {
	d.mu.Lock()
	d.powered = true
	d.mu.Unlock()
}

// PowerDown switches the receiver off and discards anything it held.
func (d *Driver) PowerDown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.powered = false
	for {
		if _, ok := d.rxBuf.pop(); !ok {
			break
		}
		d.dropped++
	}
}

// Powered reports whether the receiver is on.
func (d *Driver) Powered() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.powered
}

// FailTx makes every following Tx return err. Nil restores success.
func (d *Driver) FailTx(err error) {
	d.mu.Lock()
	d.failTx = err
	d.mu.Unlock()
}

func (d *Driver) Tx(data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failTx != nil {
		return d.failTx
	}
	frame := make([]byte, len(data))
	copy(frame, data)
	d.txBuf.push(frame)
	return nil
}

func (d *Driver) Rx(timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	for {
		d.mu.Lock()
		frame, ok := d.rxBuf.pop()
		d.mu.Unlock()
		if ok {
			out := make([]byte, len(frame))
			copy(out, frame)
			return out, nil
		}

		if timeout <= 0 || time.Now().After(deadline) {
			return nil, proto.ErrTimeout
		}
		time.Sleep(1 * time.Millisecond)
	}
}

// InjectRx delivers a frame as if it arrived over the air.
func (d *Driver) InjectRx(data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.powered {
		d.dropped++
		return
	}
	frame := make([]byte, len(data))
	copy(frame, data)
	d.rxBuf.push(frame)
}

// Dropped returns how many inbound frames were lost to power-down.
func (d *Driver) Dropped() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

func (d *Driver) GetTxLog() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.txBuf.snapshot()
}

// TakeTx returns the transmitted frames and clears the log.
func (d *Driver) TakeTx() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.txBuf.snapshot()
	d.txBuf = ringBuffer{}
	return out
}

// Connect forwards every frame transmitted by a to b and vice versa until
// stop is closed.
func Connect(a, b *Driver, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for {
			for _, f := range a.TakeTx() {
				b.InjectRx(f)
			}
			for _, f := range b.TakeTx() {
				a.InjectRx(f)
			}
			select {
			case <-stop:
				return
			case <-ticker.C:
			}
		}
	}()
}

const ringCapacity = 64

type ringBuffer struct {
	data       [ringCapacity][]byte
	head, tail int // head = next pop, tail = next push
	count      int
}

func (rb *ringBuffer) push(frame []byte) {
	if rb.count == ringCapacity {
		// Overwrite the oldest when buffer is full to keep memory bounded
		rb.data[rb.tail] = nil
		rb.head = (rb.head + 1) % ringCapacity
		rb.count--
	}
	rb.data[rb.tail] = frame
	rb.tail = (rb.tail + 1) % ringCapacity
	rb.count++
}

func (rb *ringBuffer) pop() ([]byte, bool) {
	if rb.count == 0 {
		return nil, false
	}
	frame := rb.data[rb.head]
	rb.data[rb.head] = nil
	rb.head = (rb.head + 1) % ringCapacity
	rb.count--
	return frame, true
}

func (rb *ringBuffer) snapshot() [][]byte {
	out := make([][]byte, rb.count)
	i := rb.head
	for c := 0; c < rb.count; c++ {
		cp := make([]byte, len(rb.data[i]))
		copy(cp, rb.data[i])
		out[c] = cp
		i = (i + 1) % ringCapacity
	}
	return out
}
