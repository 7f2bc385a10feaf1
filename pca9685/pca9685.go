package pca9685

import (
	"fmt"
	"math"
	"time"

	"github.com/antongulenko/pipad/ft260"
	log "github.com/sirupsen/logrus"
)

const (
	MODE1 = byte(iota)
	MODE2

	// The I2C addresses are stored in the 7 MSBs. Addresses must be left-shifted once.
	SUBADR1
	SUBADR2
	SUBADR3
	ALLCALLADR

	// 4 registers per output: ON_L, ON_H, OFF_L, OFF_H.
	// Default for LEDn_...: all zero, except for FULL_OFF_BIT in LEDn_OFF_H.
	LED0_ON_L

	LED0 = LED0_ON_L
)

const (
	ALL_ON_L = byte(0xFA + iota)
	ALL_ON_H
	ALL_OFF_L
	ALL_OFF_H
	PRE_SCALE // Only settable in SLEEP mode. Default value: 0x30
	TEST_MODE

	ALL_LEDS = ALL_ON_L
)

// Default values all zero, except ALLCALL and SLEEP
const (
	MODE1_ALLCALL = byte(1 << iota) // 1: Respond to ALLCALL address
	MODE1_SUB3                      // 1: Respond to SUB3 address
	MODE1_SUB2                      // 1: Respond to SUB2 address
	MODE1_SUB1                      // 1: Respond to SUB1 address
	MODE1_SLEEP                     // 0: normal mode 1: oscillator off, low power mode
	MODE1_AI                        // 1: Register auto increment
	MODE1_EXTCLK                    // 1: use EXTCLK pin as clock source. Can only be cleared by power cycle or software reset.
	MODE1_RESTART                   // Write 1: wake up from SLEEP (write 0 no effect). Only possible if read as 1, after setting SLEEP.
)

// Default values all zero, except OUTDRV
const (
	MODE2_OUTNE0 = byte(1 << iota) // (only for OUTNE1=0) 0: leds off 1: [leds on if OUTDRV=1, high-impedance if OUTDRV=0]
	MODE2_OUTNE1                   // 1: high impedance 0: see OUTNE0
	MODE2_OUTDRV                   // 0: outputs are open drain 1: outputs are totem pole
	MODE2_OCH                      // 0: output change on STOP 1: output change on ACK (after writing all 4 registers of an LED)
	MODE2_INVRT                    // 1: invert output logic
)

const (
	ADDRESS     = byte(0x40) // 0100 0000
	ADDRESS_MAX = byte(0x7F) // 0111 1111

	NUM_OUTPUTS      = 16
	BYTE_PER_OUTPUT  = 4
	TIMER_RESOLUTION = 4096

	FULL_ON_BIT  = 0x10 // bit 4 of LEDn_ON_H.
	FULL_OFF_BIT = 0x10 // bit 4 of LEDn_OFF_H. Takes precedence over the FULL_ON_BIT.

	FREQ_MIN          = 23.84185791
	FREQ_MAX          = 1525.87890625
	FREQ_MIN_PRESCALE = byte(0xFF)
	FREQ_MAX_PRESCALE = byte(0x03) // Minimum value asserted by hardware

	INTERNAL_OSCILLATOR = 25000000 // 25 MHz

	oscillatorStartup = 500 * time.Microsecond
)

func round(f float64) int {
	return int(math.Floor(f + .5))
}

func FullOnValues() (byte, byte, byte, byte) {
	return 0, FULL_ON_BIT, 0, 0
}

func FullOffValues() (byte, byte, byte, byte) {
	return 0, 0, 0, FULL_OFF_BIT
}

func FullValues(on bool) (byte, byte, byte, byte) {
	if on {
		return FullOnValues()
	} else {
		return FullOffValues()
	}
}

func PrescalerExternalClock(externalOscillator float64, frequency float64) byte {
	v := externalOscillator / (float64(TIMER_RESOLUTION) * frequency)
	return byte(round(v)) - 1
}

func Prescaler(frequency float64) byte {
	return PrescalerExternalClock(INTERNAL_OSCILLATOR, frequency)
}

func OutputRegister(output int) byte {
	return LED0 + byte(output)*BYTE_PER_OUTPUT
}

// Driver is one PCA9685 whose outputs are used as digital lines (fully on or fully off).
type Driver struct {
	Bus       ft260.I2cBus
	Addr      byte
	Frequency float64 // PWM frequency in Hz, FREQ_MIN..FREQ_MAX
	OpenDrain bool    // Default: totem pole outputs
}

func (d *Driver) Init() error {
	if d.Frequency < FREQ_MIN || d.Frequency > FREQ_MAX {
		return fmt.Errorf("Invalid PCA9685 PWM frequency %v (must be %v..%v)", d.Frequency, FREQ_MIN, FREQ_MAX)
	}
	prescale := Prescaler(d.Frequency)
	log.Printf("Initializing PWM driver at %#02x (%vHz, prescale %#02x)...", d.Addr, d.Frequency, prescale)
	if err := d.Bus.I2cWrite(d.Addr, MODE1, MODE1_SLEEP|MODE1_ALLCALL); err != nil {
		return err
	}
	if err := d.Bus.I2cWrite(d.Addr, PRE_SCALE, prescale); err != nil {
		return err
	}
	mode2 := MODE2_OUTDRV
	if d.OpenDrain {
		mode2 = 0
	}
	if err := d.Bus.I2cWrite(d.Addr, MODE2, mode2); err != nil {
		return err
	}
	if err := d.Bus.I2cWrite(d.Addr, MODE1, MODE1_ALLCALL|MODE1_AI); err != nil {
		return err
	}
	time.Sleep(oscillatorStartup)
	return nil
}

func (d *Driver) Output(output int) (*Output, error) {
	if output < 0 || output >= NUM_OUTPUTS {
		return nil, fmt.Errorf("Invalid PCA9685 output %v (must be 0..%v)", output, NUM_OUTPUTS-1)
	}
	return &Output{driver: d, register: OutputRegister(output)}, nil
}

type Output struct {
	driver   *Driver
	register byte
}

func (o *Output) SetLevel(high bool) error {
	onL, onH, offL, offH := FullValues(high)
	return o.driver.Bus.I2cWrite(o.driver.Addr, o.register, onL, onH, offL, offH)
}
