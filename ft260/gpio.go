package ft260

import (
	"fmt"
	"strings"
)

const (
	ReportID_GPIO = 0xB0 // Feature
)

// ReportID_GPIO Feature In and Out
type ReportGpio struct {
	Value   byte // GPIO 0-5 bits
	Dir     byte // GPIO 0-5 direction bits, 1 = output
	ValueEx byte // GPIO A-H bits
	DirEx   byte // GPIO A-H direction bits, 1 = output
}

func (r *ReportGpio) ReportID() byte {
	return ReportID_GPIO
}

func (r *ReportGpio) ReportLen() int {
	return 4
}

func (r *ReportGpio) Marshall(b []byte) error {
	b[0] = r.Value
	b[1] = r.Dir
	b[2] = r.ValueEx
	b[3] = r.DirEx
	return nil
}

func (r *ReportGpio) Unmarshall(b []byte) error {
	r.Value = b[0]
	r.Dir = b[1]
	r.ValueEx = b[2]
	r.DirEx = b[3]
	return nil
}

// GpioPin is a single FT260 GPIO configured as output. GPIO 0 and 1 carry the I2C bus and are not available.
type GpioPin struct {
	dev  *Ft260
	name string
	mask byte
	ex   bool // GPIO A-H
}

// Gpio returns the output pin with the given name: "2".."5" for GPIO 2-5, "A".."H" for GPIO A-H.
func (f *Ft260) Gpio(name string) (*GpioPin, error) {
	pin := &GpioPin{dev: f, name: strings.ToUpper(name)}
	if len(pin.name) != 1 {
		return nil, fmt.Errorf("Invalid FT260 GPIO name %q", name)
	}
	switch c := pin.name[0]; {
	case c >= '2' && c <= '5':
		pin.mask = 1 << (c - '0')
	case c >= 'A' && c <= 'H':
		pin.mask = 1 << (c - 'A')
		pin.ex = true
	case c == '0' || c == '1':
		return nil, fmt.Errorf("FT260 GPIO %v is used by the I2C bus", c-'0')
	default:
		return nil, fmt.Errorf("Invalid FT260 GPIO name %q", name)
	}
	return pin, nil
}

func (p *GpioPin) String() string {
	return "ft260:GPIO" + p.name
}

func (p *GpioPin) SetLevel(high bool) error {
	return p.dev.setGpio(p.mask, p.ex, high)
}

// Modifies the cached GPIO state and writes it, unless the pin already has the requested output level
func (f *Ft260) setGpio(mask byte, ex bool, high bool) error {
	if !f.gpioLoaded {
		if err := f.Read(&f.gpio); err != nil {
			return fmt.Errorf("Failed to read FT260 GPIO state: %v", err)
		}
		f.gpioLoaded = true
	}
	state := f.gpio
	value, dir := &state.Value, &state.Dir
	if ex {
		value, dir = &state.ValueEx, &state.DirEx
	}
	*dir |= mask
	if high {
		*value |= mask
	} else {
		*value &^= mask
	}
	if state == f.gpio {
		return nil
	}
	if err := f.Write(&state); err != nil {
		return err
	}
	f.gpio = state
	return nil
}
