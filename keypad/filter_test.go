package keypad

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func floorDiv4(d int) int {
	q := d / 4
	if d%4 != 0 && d < 0 {
		q--
	}
	return q
}

func TestSmoothFloorShift(t *testing.T) {
	a := assert.New(t)
	// Every raw value in the device range against filtered values covering all residues mod 4
	for _, f := range []int{-4096, -4095, -4094, -4093, -1, 0, 1, 2, 3, 1997, 2000, 4095} {
		for r := -4096; r <= 4095; r++ {
			expected := Value(f + floorDiv4(r-f))
			if !a.Equal(expected, Smooth(Value(f), Value(r)), "filtered %v, raw %v", f, r) {
				return
			}
		}
	}
	// Every numerator r - f in [-8191, 8191]
	for d := -8191; d <= 8191; d++ {
		if !a.Equal(Value(floorDiv4(d)), Smooth(0, Value(d)), "numerator %v", d) {
			return
		}
	}

	// Truncation towards zero would produce 0 and -1 here
	a.Equal(Value(-1), Smooth(0, -1))
	a.Equal(Value(-2), Smooth(0, -5))
	a.Equal(Value(1), Smooth(0, 5))
}

func TestSmoothStallsBelowTarget(t *testing.T) {
	a := assert.New(t)

	// Approaching from above converges exactly
	f := Value(2010)
	for i := 0; i < 50; i++ {
		f = Smooth(f, 2000)
	}
	a.Equal(Value(2000), f)

	// Approaching from below stops 3 counts short
	f = Value(1990)
	for i := 0; i < 50; i++ {
		f = Smooth(f, 2000)
	}
	a.Equal(Value(1997), f)
}

func TestKeyStateInit(t *testing.T) {
	a := assert.New(t)
	k := NewKeyState(Kp7, 1234)
	a.Equal(Value(1234), k.Resting())
	a.Equal(Value(1234), k.Filtered())
	a.Equal(Value(0), k.Delta())
	a.False(k.Pressed())
	a.Equal(Kp7, k.Code())
}

func TestKeyStatePressSequence(t *testing.T) {
	a := assert.New(t)
	k := NewKeyState(Kp5, 2000)

	filtered := Value(2000)
	pressedAt := -1
	for i, raw := range []Value{1995, 1985, 1970, 1960} {
		filtered = filtered + Value(floorDiv4(int(raw-filtered)))
		changed := k.Update(raw)
		a.Equal(filtered, k.Filtered(), "step %v", i)
		if pressedAt < 0 && filtered-2000 < -3 {
			pressedAt = i
			a.True(changed, "step %v", i)
		}
		a.Equal(pressedAt >= 0, k.Pressed(), "step %v", i)
	}
	a.Equal(1, pressedAt)
	a.Equal(Value(1981), k.Filtered())
}

// setDelta moves the filtered value to resting+delta and feeds a reading that keeps it there
func setDelta(k *KeyState, delta Value) bool {
	k.filtered = k.resting + delta
	return k.Update(k.filtered)
}

func TestKeyStateHysteresis(t *testing.T) {
	a := assert.New(t)
	k := NewKeyState(Kp9, 3000)

	// The press threshold itself does not press
	a.False(setDelta(k, PressThreshold))
	a.False(k.Pressed())
	a.True(setDelta(k, PressThreshold-1))
	a.True(k.Pressed())

	// Anything up to and including the release threshold keeps the key pressed
	for _, delta := range []Value{-2, -1, -3, -1, -10, ReleaseThreshold, -2, ReleaseThreshold} {
		a.False(setDelta(k, delta), "delta %v", delta)
		a.True(k.Pressed(), "delta %v", delta)
	}

	a.True(setDelta(k, ReleaseThreshold+1))
	a.False(k.Pressed())

	// Inside the band a released key stays released
	for _, delta := range []Value{-1, -2, PressThreshold, -2} {
		a.False(setDelta(k, delta), "delta %v", delta)
		a.False(k.Pressed(), "delta %v", delta)
	}
}

func TestKeyStateSingleTransitionPerUpdate(t *testing.T) {
	a := assert.New(t)
	k := NewKeyState(Kp1, 2000)
	k.pressed = true
	k.filtered = 1999

	// Jumps far above the release threshold: releases exactly once
	a.True(k.Update(2100))
	a.False(k.Pressed())
	a.Equal(Value(2024), k.Filtered())
	a.False(k.Update(2100))
	a.False(k.Pressed())
}
