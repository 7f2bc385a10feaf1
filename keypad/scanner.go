package keypad

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// ScanTable holds the key states of one bus, nil for channels without a key.
type ScanTable [NumChannels]*KeyState

// Scanner owns the multiplexer, the sampler and the indicator and runs the scan cycle over both buses.
type Scanner struct {
	Interval time.Duration // Pause between two scan cycles

	mux       *Mux
	sampler   Sampler
	indicator *Indicator
	tables    [NumBuses]ScanTable

	anyPressed bool
	cycles     uint64
}

// NewScanner records the resting value of every populated key and switches the indicator off.
func NewScanner(mux *Mux, sampler Sampler, indicator *Indicator, layouts [NumBuses]Layout) (*Scanner, error) {
	s := &Scanner{
		mux:       mux,
		sampler:   sampler,
		indicator: indicator,
	}
	if err := s.calibrate(layouts); err != nil {
		return nil, err
	}
	if err := indicator.Set(false); err != nil {
		return nil, fmt.Errorf("Failed to initialize press indicator: %v", err)
	}
	return s, nil
}

func (s *Scanner) calibrate(layouts [NumBuses]Layout) error {
	for channel := 0; channel < NumChannels; channel++ {
		selected := false
		for bus := Bus0; bus < NumBuses; bus++ {
			if !layouts[bus].Populated(channel) {
				continue
			}
			code := layouts[bus][channel]
			if !selected {
				if err := s.mux.Select(channel); err != nil {
					return err
				}
				selected = true
			}
			val, err := s.sampler.Read(bus)
			if err != nil {
				return fmt.Errorf("Failed to read resting value of %v:%v (%v): %v", bus, channel, code, err)
			}
			log.Debugf("%v:%v (%v) rests at %v", bus, channel, code, val)
			s.tables[bus][channel] = NewKeyState(code, val)
		}
	}
	return nil
}

// Scan performs one full cycle over all channels and updates the indicator if the
// aggregated pressed state changed since the previous cycle.
func (s *Scanner) Scan() error {
	anyPressed := false
	for channel := 0; channel < NumChannels; channel++ {
		selected := false
		for bus := Bus0; bus < NumBuses; bus++ {
			key := s.tables[bus][channel]
			if key == nil {
				continue
			}
			if !selected {
				if err := s.mux.Select(channel); err != nil {
					return err
				}
				selected = true
			}
			val, err := s.sampler.Read(bus)
			if err != nil {
				return fmt.Errorf("Failed to read %v:%v (%v): %v", bus, channel, key.Code(), err)
			}
			key.Update(val)
			anyPressed = anyPressed || key.Pressed()
		}
	}
	s.cycles++
	if anyPressed != s.anyPressed {
		if err := s.indicator.Set(anyPressed); err != nil {
			return fmt.Errorf("Failed to update press indicator: %v", err)
		}
		s.anyPressed = anyPressed
	}
	return nil
}

// Run scans until a peripheral fails. It does not return otherwise.
func (s *Scanner) Run() error {
	log.Printf("Scanning %v key(s) on %v buses", s.NumKeys(), NumBuses)
	for {
		if err := s.Scan(); err != nil {
			return fmt.Errorf("Scan cycle %v failed: %v", s.cycles+1, err)
		}
		if s.Interval > 0 {
			time.Sleep(s.Interval)
		}
	}
}

// PressedKeys returns the codes of all pressed keys in scan order.
func (s *Scanner) PressedKeys() []KeyCode {
	var keys []KeyCode
	s.forEachKey(func(_ Bus, _ int, key *KeyState) {
		if key.Pressed() {
			keys = append(keys, key.Code())
		}
	})
	return keys
}

func (s *Scanner) NumKeys() (res int) {
	s.forEachKey(func(Bus, int, *KeyState) {
		res++
	})
	return
}

// Key returns the state of the key on the given bus and channel, or nil.
func (s *Scanner) Key(bus Bus, channel int) *KeyState {
	checkChannel(channel)
	return s.tables[bus][channel]
}

func (s *Scanner) AnyPressed() bool {
	return s.anyPressed
}

func (s *Scanner) Cycles() uint64 {
	return s.cycles
}

func (s *Scanner) forEachKey(f func(bus Bus, channel int, key *KeyState)) {
	for channel := 0; channel < NumChannels; channel++ {
		for bus := Bus0; bus < NumBuses; bus++ {
			if key := s.tables[bus][channel]; key != nil {
				f(bus, channel, key)
			}
		}
	}
}
