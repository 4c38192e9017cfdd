package transport

import "time"

// RadioDriver is the interface that wraps the basic transceiver operations.
// Rx returns protocol.ErrTimeout when nothing arrives within timeout; a
// zero timeout polls without waiting.
type RadioDriver interface {
	Init()
	Configure(channel uint8) error
	SetAddress(addr byte)
	PowerUp()
	PowerDown()
	Tx(data []byte) error
	Rx(timeout time.Duration) ([]byte, error)
}
