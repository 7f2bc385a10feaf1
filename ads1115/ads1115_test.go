package ads1115

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeBus emulates the register file of one ADS1115
type fakeBus struct {
	writes     [][]byte
	pollsBusy  int // Number of config reads reporting a running conversion
	conversion uint16
	failWrite  bool
}

func (b *fakeBus) I2cWrite(addr byte, data ...byte) error {
	if b.failWrite {
		return errors.New("nack")
	}
	b.writes = append(b.writes, append([]byte{addr}, data...))
	return nil
}

func (b *fakeBus) I2cRead(addr byte, data []byte) error {
	data[0], data[1] = byte(b.conversion>>8), byte(b.conversion)
	return nil
}

func (b *fakeBus) I2cGet(addr byte, registerAddr byte, size int) ([]byte, error) {
	switch registerAddr {
	case REG_CONFIG:
		if b.pollsBusy > 0 {
			b.pollsBusy--
			return []byte{0x05, 0x83}, nil
		}
		return []byte{0x85, 0x83}, nil
	case REG_CONVERSION:
		return []byte{byte(b.conversion >> 8), byte(b.conversion)}, nil
	}
	return nil, errors.New("unexpected register")
}

func TestRegisterConstants(t *testing.T) {
	a := assert.New(t)
	a.Equal(byte(0), REG_CONVERSION)
	a.Equal(byte(1), REG_CONFIG)
	a.Equal(byte(3), REG_HI_THRESH)
	a.Equal(uint16(0x4000), CONFIG_MUX_0GND)
	a.Equal(uint16(0x5000), CONFIG_MUX_1GND)
	a.Equal(uint16(0x0200), CONFIG_PGA_4V)
	a.Equal(uint16(0x00E0), CONFIG_DR_860)
}

func TestConfigHelpers(t *testing.T) {
	a := assert.New(t)

	dr, err := DataRateConfig(475)
	a.NoError(err)
	a.Equal(CONFIG_DR_475, dr)
	_, err = DataRateConfig(100)
	a.Error(err)

	pga, err := GainConfig(4096)
	a.NoError(err)
	a.Equal(CONFIG_PGA_4V, pga)
	_, err = GainConfig(5000)
	a.Error(err)

	mux, err := SingleEndedMux(1)
	a.NoError(err)
	a.Equal(CONFIG_MUX_1GND, mux)
	_, err = SingleEndedMux(4)
	a.Error(err)

	a.Equal(time.Second/128, ConversionTime(CONFIG_DR_128))
	a.Equal(time.Second/860, ConversionTime(CONFIG_OS|CONFIG_DR_860|CONFIG_MUX_3GND))
}

func TestChannelConvert(t *testing.T) {
	a := assert.New(t)
	bus := &fakeBus{pollsBusy: 2, conversion: 0x7FF0}
	c := Channel{
		Bus:      bus,
		Addr:     ADDR_GND,
		Mux:      CONFIG_MUX_1GND,
		Gain:     CONFIG_PGA_4V,
		DataRate: CONFIG_DR_860,
	}
	a.Equal(uint16(0xD3E3), c.Config())

	val, err := c.Convert()
	a.NoError(err)
	a.Equal(int16(0x7FF0), val)
	a.Equal([][]byte{{ADDR_GND, REG_CONFIG, 0xD3, 0xE3}}, bus.writes)
	a.Equal(0, bus.pollsBusy)
}

func TestChannelConvertTimeout(t *testing.T) {
	a := assert.New(t)
	bus := &fakeBus{pollsBusy: 1 << 30}
	c := Channel{Bus: bus, Addr: ADDR_VDD, Timeout: 5 * time.Millisecond}
	_, err := c.Convert()
	a.Error(err)

	bus = &fakeBus{failWrite: true}
	c.Bus = bus
	_, err = c.Convert()
	a.Error(err)
}

func TestReadRegisterDirectly(t *testing.T) {
	a := assert.New(t)
	val, err := ReadRegisterDirectly(&fakeBus{conversion: 0xFFFE}, ADDR_GND)
	a.NoError(err)
	a.Equal(int16(-2), val)
}
