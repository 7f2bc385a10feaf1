package keypad

import (
	"fmt"
	"time"
)

// Bus identifies one of the two analog lines behind the multiplexer.
type Bus int

const (
	Bus0 = Bus(iota)
	Bus1

	NumBuses = 2
)

func (b Bus) String() string {
	return fmt.Sprintf("am%d", int(b))
}

// AnalogLine performs one blocking analog-to-digital conversion.
type AnalogLine interface {
	Convert() (Value, error)
}

// Sampler returns a representative reading of the currently addressed channel on the given bus.
type Sampler interface {
	Read(bus Bus) (Value, error)
}

// AveragingSampler reads one AnalogLine per bus.
// With Discard set, the first conversion after each Read call is dropped to absorb multiplexer settling.
// Samples conversions are then averaged (truncating). Discard=false, Samples=1 performs a single conversion.
type AveragingSampler struct {
	Lines   [NumBuses]AnalogLine
	Discard bool
	Samples int
	Settle  time.Duration // Optional pause before the first conversion
}

func (s *AveragingSampler) Read(bus Bus) (Value, error) {
	if bus < 0 || bus >= NumBuses {
		panic(fmt.Sprintf("Invalid analog bus %v", int(bus)))
	}
	line := s.Lines[bus]
	if s.Settle > 0 {
		time.Sleep(s.Settle)
	}
	if s.Discard {
		if _, err := line.Convert(); err != nil {
			return 0, fmt.Errorf("Warm-up conversion on %v failed: %v", bus, err)
		}
	}
	samples := s.Samples
	if samples < 1 {
		samples = 1
	}
	var sum Value
	for i := 0; i < samples; i++ {
		val, err := line.Convert()
		if err != nil {
			return 0, fmt.Errorf("Conversion %v of %v on %v failed: %v", i+1, samples, bus, err)
		}
		sum += val
	}
	return sum / Value(samples), nil
}
