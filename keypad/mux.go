package keypad

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

const (
	NumSelectLines = 4
	NumChannels    = 1 << NumSelectLines
)

// DigitalLine is a single output pin. Implementations exist for the FT260 GPIOs,
// the MCP23017 expander, PCA9685 channels and host GPIOs.
type DigitalLine interface {
	SetLevel(high bool) error
}

func checkChannel(index int) {
	if index < 0 || index >= NumChannels {
		panic(fmt.Sprintf("Invalid multiplexer index %v (must be 0..%v)", index, NumChannels-1))
	}
}

// SelectLevels returns the select line levels addressing the given channel, least significant bit first.
func SelectLevels(index int) (levels [NumSelectLines]bool) {
	checkChannel(index)
	for i := range levels {
		levels[i] = index>>uint(i)&1 == 1
	}
	return
}

// Mux drives the select lines of the 16-channel analog multiplexer shared by both buses.
// Callers must give the addressed channel time to settle before sampling it.
type Mux struct {
	lines    [NumSelectLines]DigitalLine
	selected int
}

func NewMux(lines [NumSelectLines]DigitalLine) *Mux {
	return &Mux{
		lines:    lines,
		selected: -1,
	}
}

// Select addresses the given channel. Indices outside of 0..15 are a programming error and panic.
func (m *Mux) Select(index int) error {
	levels := SelectLevels(index)
	log.Tracef("select %v", index)
	for i, line := range m.lines {
		if err := line.SetLevel(levels[i]); err != nil {
			m.selected = -1
			return fmt.Errorf("Failed to set multiplexer select line %v: %v", i, err)
		}
	}
	m.selected = index
	return nil
}

// Selected returns the currently addressed channel, or -1 if no channel was selected successfully yet.
func (m *Mux) Selected() int {
	return m.selected
}
