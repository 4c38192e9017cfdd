//go:build !tinygo && !baremetal

package sim

import (
	"sync"
	"time"
)

// BaseConversionTime is the probe conversion time at 9-bit resolution.
// Each extra bit doubles it, 750ms at 12 bits.
const BaseConversionTime = 93750 * time.Microsecond

// Probe is a one-wire temperature probe whose conversion takes real
// (virtual) time.
type Probe struct {
	clock *Clock

	mu          sync.Mutex
	resolution  uint8
	raw         int16
	converting  bool
	doneAt      time.Duration
	conversions int
}

// NewProbe returns a 12-bit probe reading 21.5 degC.
func NewProbe(clock *Clock) *Probe {
	return &Probe{clock: clock, resolution: 12, raw: 21*16 + 8}
}

func (p *Probe) SetResolution(bits uint8) {
	if bits < 9 {
		bits = 9
	}
	if bits > 12 {
		bits = 12
	}
	p.mu.Lock()
	p.resolution = bits
	p.mu.Unlock()
}

// ConversionTime returns the conversion time at the current resolution.
func (p *Probe) ConversionTime() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return BaseConversionTime << (p.resolution - 9)
}

func (p *Probe) StartConversion() {
	d := p.ConversionTime()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.converting = true
	p.doneAt = p.clock.Now() + d
	p.conversions++
}

func (p *Probe) ConversionInProgress() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.converting && p.clock.Now() >= p.doneAt {
		p.converting = false
	}
	return p.converting
}

// ReadResult returns the scratchpad temperature in 1/16 degC. Bits below
// the configured resolution read as zero.
func (p *Probe) ReadResult() int16 {
	p.mu.Lock()
	defer p.mu.Unlock()
	mask := int16(1)<<(12-p.resolution) - 1
	return p.raw &^ mask
}

// SetTemperature sets the measured temperature in 1/16 degC.
func (p *Probe) SetTemperature(raw int16) {
	p.mu.Lock()
	p.raw = raw
	p.mu.Unlock()
}

// Conversions returns how many conversions were started.
func (p *Probe) Conversions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conversions
}

// StoreSize is the simulated EEPROM size in bytes.
const StoreSize = 1024

// Store is an EEPROM that starts fully erased and counts writes.
type Store struct {
	mu     sync.Mutex
	cells  [StoreSize]byte
	writes int
}

func NewStore() *Store {
	s := &Store{}
	for i := range s.cells {
		s.cells[i] = 0xFF
	}
	return s
}

func (s *Store) LoadByte(addr uint16) byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cells[int(addr)%StoreSize]
}

func (s *Store) StoreByte(addr uint16, v byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cells[int(addr)%StoreSize] = v
	s.writes++
}

// Writes returns the number of cell writes so far.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Pin records the output line level.
type Pin struct {
	mu      sync.Mutex
	on      bool
	changes int
}

func (p *Pin) Set(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.on != on {
		p.changes++
	}
	p.on = on
}

func (p *Pin) On() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.on
}

// Changes returns how many times the level flipped.
func (p *Pin) Changes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.changes
}
