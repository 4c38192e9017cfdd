//go:build tinygo || baremetal

package nrf

import (
	"time"
	"unsafe"

	proto "github.com/ystepanoff/nrfnode/protocol"
	"github.com/ystepanoff/nrfnode/transport"

	"device/nrf"
)

// Driver provides a RadioDriver backed by the real NRF peripheral
// registers. Once powered up it listens continuously; Tx interrupts the
// listen and resumes it afterwards.
type Driver struct {
	buffer  [proto.MaxFrameSize]byte
	channel uint8
	address byte
	powered bool
}

var _ transport.RadioDriver = (*Driver)(nil)

func New() *Driver { return &Driver{} }

func (d *Driver) Init() { StartHFCLK() }

// Configure validates and applies the channel, leaving the radio off
// until PowerUp.
func (d *Driver) Configure(channel uint8) error {
	if err := ConfigureRadio(channel); err != nil {
		return err
	}
	nrf.RADIO.POWER.Set(0)
	d.channel = channel
	return nil
}

// SetAddress sets the node address frames are pre-filtered on.
func (d *Driver) SetAddress(addr byte) { d.address = addr }

// PowerUp powers the radio and starts listening. Register contents are
// lost while powered off, so the configuration is applied again.
func (d *Driver) PowerUp() {
	if err := ConfigureRadio(d.channel); err != nil {
		return
	}
	d.powered = true
	d.listen()
}

func (d *Driver) PowerDown() {
	if d.powered {
		disable()
	}
	nrf.RADIO.POWER.Set(0)
	d.powered = false
}

func (d *Driver) listen() {
	nrf.RADIO.PACKETPTR.Set(uint32(uintptr(unsafe.Pointer(&d.buffer[0]))))
	nrf.RADIO.EVENTS_READY.Set(0)
	nrf.RADIO.EVENTS_END.Set(0)
	nrf.RADIO.TASKS_RXEN.Set(1)
	for nrf.RADIO.EVENTS_READY.Get() == 0 {
	}
	nrf.RADIO.TASKS_START.Set(1)
}

func (d *Driver) Tx(data []byte) error {
	if len(data) > proto.MaxFrameSize {
		return proto.ErrInvalidFrame
	}
	if d.powered {
		disable()
	} else if err := ConfigureRadio(d.channel); err != nil {
		return err
	}

	var out [proto.MaxFrameSize]byte
	copy(out[:], data)
	nrf.RADIO.PACKETPTR.Set(uint32(uintptr(unsafe.Pointer(&out[0]))))
	nrf.RADIO.EVENTS_READY.Set(0)
	nrf.RADIO.EVENTS_END.Set(0)
	nrf.RADIO.TASKS_TXEN.Set(1)
	for nrf.RADIO.EVENTS_READY.Get() == 0 {
	}
	nrf.RADIO.TASKS_START.Set(1)
	for nrf.RADIO.EVENTS_END.Get() == 0 {
	}
	disable()

	if d.powered {
		d.listen()
	} else {
		nrf.RADIO.POWER.Set(0)
	}
	return nil
}

// Rx returns the next received frame addressed to this node. A
// non-positive timeout checks once without waiting.
func (d *Driver) Rx(timeout time.Duration) ([]byte, error) {
	if !d.powered {
		return nil, proto.ErrTimeout
	}
	start := time.Now()
	for {
		if nrf.RADIO.EVENTS_END.Get() != 0 {
			frame, ok := d.take()
			if ok {
				return frame, nil
			}
		}
		if timeout <= 0 || time.Since(start) > timeout {
			return nil, proto.ErrTimeout
		}
	}
}

// take copies the frame out of the buffer and restarts the listen. Frames
// failing the hardware CRC or addressed elsewhere are discarded.
func (d *Driver) take() ([]byte, bool) {
	crcOK := nrf.RADIO.CRCSTATUS.Get() != 0
	n := int(d.buffer[0]) + 1
	if n > proto.MaxFrameSize {
		n = proto.MaxFrameSize
	}

	var frame []byte
	if crcOK && n > 2 && (d.address == 0 || d.buffer[2] == d.address) {
		frame = make([]byte, n)
		copy(frame, d.buffer[:n])
	}

	nrf.RADIO.EVENTS_END.Set(0)
	nrf.RADIO.TASKS_START.Set(1)
	return frame, frame != nil
}
