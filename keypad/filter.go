package keypad

import (
	log "github.com/sirupsen/logrus"
)

// Value is a raw ADC reading or a smoothed reading derived from it.
// Smoothed values are compared against the resting baseline and the difference can be negative.
type Value int

const (
	// Each update moves the filtered value 1/2^FilterShift of the way towards the new reading
	FilterShift = 2

	// Deviations from the resting value. Pressing a key lowers the reading.
	PressThreshold   = Value(-3)
	ReleaseThreshold = Value(-1)
)

// KeyState tracks the filtered reading of one analog key and decides whether it is pressed.
// The resting value is fixed when the KeyState is created.
type KeyState struct {
	resting  Value
	filtered Value
	pressed  bool
	code     KeyCode
}

func NewKeyState(code KeyCode, resting Value) *KeyState {
	return &KeyState{
		resting:  resting,
		filtered: resting,
		code:     code,
	}
}

// Smooth returns the next filtered value. The shift is arithmetic, so negative differences
// are rounded towards negative infinity.
func Smooth(filtered, raw Value) Value {
	return filtered + (raw-filtered)>>FilterShift
}

// Update feeds a new raw reading into the filter and returns true if the pressed state changed.
func (k *KeyState) Update(raw Value) bool {
	k.filtered = Smooth(k.filtered, raw)
	delta := k.Delta()
	log.Tracef("raw %v, filtered %v (delta %v) on %v", raw, k.filtered, delta, k.code)

	if !k.pressed && delta < PressThreshold {
		log.Debugf("%v pressed", k.code)
		k.pressed = true
		return true
	} else if k.pressed && delta > ReleaseThreshold {
		log.Debugf("%v released", k.code)
		k.pressed = false
		return true
	}
	return false
}

func (k *KeyState) Delta() Value {
	return k.filtered - k.resting
}

func (k *KeyState) Resting() Value {
	return k.resting
}

func (k *KeyState) Filtered() Value {
	return k.filtered
}

func (k *KeyState) Pressed() bool {
	return k.pressed
}

func (k *KeyState) Code() KeyCode {
	return k.code
}
