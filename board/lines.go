package board

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/antongulenko/pipad/keypad"
	"github.com/antongulenko/pipad/mcp23017"
	"github.com/antongulenko/pipad/pca9685"
)

const (
	LineFt260    = "ft260"    // ft260:<GPIO name>, e.g. ft260:2 or ft260:A
	LineGpio     = "gpio"     // gpio:<periph pin name>, e.g. gpio:GPIO17
	LineMcp23017 = "mcp23017" // mcp23017:<I2C address>:<pin 0..15>
	LinePca9685  = "pca9685"  // pca9685:<I2C address>:<output 0..15>
	LineDummy    = "dummy"    // dummy:<name>
)

type LineSpec struct {
	Kind  string
	Name  string
	Addr  byte
	Index int
}

func (s LineSpec) String() string {
	switch s.Kind {
	case LineMcp23017, LinePca9685:
		return fmt.Sprintf("%v:%#02x:%v", s.Kind, s.Addr, s.Index)
	default:
		return s.Kind + ":" + s.Name
	}
}

func ParseLine(spec string) (LineSpec, error) {
	parts := strings.Split(spec, ":")
	res := LineSpec{Kind: parts[0]}
	switch res.Kind {
	case LineFt260, LineGpio, LineDummy:
		if len(parts) != 2 || parts[1] == "" {
			return res, fmt.Errorf("Invalid line %q, expected %v:<name>", spec, res.Kind)
		}
		res.Name = parts[1]
	case LineMcp23017, LinePca9685:
		if len(parts) != 3 {
			return res, fmt.Errorf("Invalid line %q, expected %v:<address>:<index>", spec, res.Kind)
		}
		addr, err := strconv.ParseUint(parts[1], 0, 8)
		if err != nil {
			return res, fmt.Errorf("Invalid I2C address in line %q: %v", spec, err)
		}
		index, err := strconv.Atoi(parts[2])
		if err != nil {
			return res, fmt.Errorf("Invalid index in line %q: %v", spec, err)
		}
		res.Addr = byte(addr)
		res.Index = index
		res.Name = parts[1] + ":" + parts[2]
	default:
		return res, fmt.Errorf("Unknown line type %q in %q (available: %v, %v, %v, %v, %v)",
			res.Kind, spec, LineFt260, LineGpio, LineMcp23017, LinePca9685, LineDummy)
	}
	return res, nil
}

func (b *Board) openLine(specStr string) (keypad.DigitalLine, error) {
	spec, err := ParseLine(specStr)
	if err != nil {
		return nil, err
	}
	switch spec.Kind {
	case LineDummy:
		return &dummyLine{name: spec.String()}, nil
	case LineMcp23017:
		expander, err := b.expander(spec.Addr)
		if err != nil {
			return nil, err
		}
		return expander.Pin(spec.Index)
	case LinePca9685:
		driver, err := b.pwmDriver(spec.Addr)
		if err != nil {
			return nil, err
		}
		return driver.Output(spec.Index)
	}

	// Lines directly on the host adapter
	if b.Backend == BackendDummy {
		return &dummyLine{name: spec.String()}, nil
	}
	switch {
	case spec.Kind == LineFt260 && b.Backend == BackendFt260:
		pin, err := b.usb.Gpio(spec.Name)
		if err != nil {
			return nil, err
		}
		if b.sequencer != nil {
			return &sequencedLine{line: pin, sequencer: b.sequencer}, nil
		}
		return pin, nil
	case spec.Kind == LineGpio && b.Backend == BackendPeriph:
		return openPeriphLine(spec.Name)
	default:
		return nil, fmt.Errorf("Line %v is not available with the %v backend", spec, b.Backend)
	}
}

// Expanders are shared by all lines with the same address and initialized on first use
func (b *Board) expander(addr byte) (*mcp23017.Expander, error) {
	if e, ok := b.expanders[addr]; ok {
		return e, nil
	}
	e := &mcp23017.Expander{Bus: b.bus, Addr: addr}
	if err := e.Init(); err != nil {
		return nil, err
	}
	if b.expanders == nil {
		b.expanders = make(map[byte]*mcp23017.Expander)
	}
	b.expanders[addr] = e
	return e, nil
}

func (b *Board) pwmDriver(addr byte) (*pca9685.Driver, error) {
	if d, ok := b.pwmDrivers[addr]; ok {
		return d, nil
	}
	d := &pca9685.Driver{Bus: b.bus, Addr: addr, Frequency: b.PwmFrequency}
	if err := d.Init(); err != nil {
		return nil, err
	}
	if b.pwmDrivers == nil {
		b.pwmDrivers = make(map[byte]*pca9685.Driver)
	}
	b.pwmDrivers[addr] = d
	return d, nil
}
