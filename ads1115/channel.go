package ads1115

import (
	"fmt"
	"time"

	"github.com/antongulenko/pipad/ft260"
)

const defaultConversionTimeout = 100 * time.Millisecond

// Channel performs single-shot conversions of one input. Switching the input mux of the
// ADS1115 is part of every conversion, so multiple Channels can share one device.
type Channel struct {
	Bus  ft260.I2cBus
	Addr byte

	Mux      uint16 // CONFIG_MUX_...
	Gain     uint16 // CONFIG_PGA_...
	DataRate uint16 // CONFIG_DR_...

	// Wait for the expected conversion time before polling the OS bit. Set to false for
	// slow buses where the I2C round trip already exceeds the conversion time.
	WaitConversion bool
	Timeout        time.Duration // Defaults to 100ms
}

func (c *Channel) Config() uint16 {
	return CONFIG_OS | c.Mux | c.Gain | CONFIG_MODE | c.DataRate | CONFIG_COMP_QUE_OFF
}

// Convert starts a conversion and blocks until the device reports its completion.
func (c *Channel) Convert() (int16, error) {
	config := c.Config()
	if err := WriteRegister(c.Bus, c.Addr, REG_CONFIG, config); err != nil {
		return 0, fmt.Errorf("Failed to start ADS1115 conversion: %v", err)
	}
	if c.WaitConversion {
		time.Sleep(ConversionTime(config))
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultConversionTimeout
	}
	deadline := time.Now().Add(timeout)
	for {
		status, err := ReadRegister(c.Bus, c.Addr, REG_CONFIG)
		if err != nil {
			return 0, fmt.Errorf("Failed to poll ADS1115 conversion: %v", err)
		}
		if uint16(status)&CONFIG_OS != 0 {
			break
		}
		if time.Now().After(deadline) {
			return 0, fmt.Errorf("ADS1115 conversion at %#02x did not complete within %v", c.Addr, timeout)
		}
	}
	return ReadRegister(c.Bus, c.Addr, REG_CONVERSION)
}
