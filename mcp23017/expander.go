package mcp23017

import (
	"fmt"
	"sync"

	"github.com/antongulenko/pipad/ft260"
	log "github.com/sirupsen/logrus"
)

const Config = IOCON_BIT_INTPOL | IOCON_BIT_HAEN

// Expander uses all 16 pins of one MCP23017 as outputs. The output latches are cached,
// so changing a pin costs a single register write. Pins may be set from multiple goroutines.
type Expander struct {
	Bus  ft260.I2cBus
	Addr byte

	lock        sync.Mutex
	latches     [2]byte
	initialized bool
}

func (e *Expander) Init() error {
	if e.Addr < ADDRESS || e.Addr > MAX_ADDRESS {
		return fmt.Errorf("Invalid MCP23017 address %#02x (must be %#02x..%#02x)", e.Addr, ADDRESS, MAX_ADDRESS)
	}
	e.lock.Lock()
	defer e.lock.Unlock()
	log.Printf("Configuring GPIO extension %#02x", e.Addr)
	if err := e.Bus.I2cWrite(e.Addr, IOCON_PAIRED, Config); err != nil {
		return err
	}
	// Latches first, so the pins do not glitch when switching to output
	if err := e.Bus.I2cWrite(e.Addr, OLAT_PAIRED, e.latches[0], e.latches[1]); err != nil {
		return err
	}
	if err := e.Bus.I2cWrite(e.Addr, IODIR_PAIRED, OUTPUT, OUTPUT); err != nil {
		return err
	}
	e.initialized = true
	return nil
}

// Pin returns an output line for pin 0..15 (A0..A7, B0..B7)
func (e *Expander) Pin(pin int) (*Pin, error) {
	if pin < 0 || pin >= NumPins {
		return nil, fmt.Errorf("Invalid MCP23017 pin %v (must be 0..%v)", pin, NumPins-1)
	}
	return &Pin{expander: e, port: pin / 8, mask: 1 << uint(pin%8)}, nil
}

func (e *Expander) set(port int, mask byte, high bool) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	if !e.initialized {
		return fmt.Errorf("MCP23017 at %#02x is not initialized", e.Addr)
	}
	latch := e.latches[port]
	if high {
		latch |= mask
	} else {
		latch &^= mask
	}
	if latch == e.latches[port] {
		return nil
	}
	if err := e.Bus.I2cWrite(e.Addr, OLAT_PAIRED+byte(port), latch); err != nil {
		return err
	}
	e.latches[port] = latch
	return nil
}

type Pin struct {
	expander *Expander
	port     int
	mask     byte
}

func (p *Pin) SetLevel(high bool) error {
	return p.expander.set(p.port, p.mask, high)
}

func (p *Pin) String() string {
	return fmt.Sprintf("mcp23017@%#02x:%c%v", p.expander.Addr, 'A'+p.port, bitIndex(p.mask))
}

func bitIndex(mask byte) int {
	for i := 0; i < 8; i++ {
		if mask == 1<<uint(i) {
			return i
		}
	}
	return -1
}
