package board

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// Host I2C and GPIO, e.g. on a Raspberry Pi
func (b *Board) setupPeriph() error {
	state, err := host.Init()
	if err != nil {
		return fmt.Errorf("Failed to initialize periph host drivers: %v", err)
	}
	for _, failure := range state.Failed {
		log.Debugf("periph driver %v failed to load: %v", failure.D, failure.Err)
	}
	bus, err := i2creg.Open(b.I2cBus)
	if err != nil {
		return fmt.Errorf("Failed to open I2C bus %q: %v", b.I2cBus, err)
	}
	b.periphBus = bus
	if err := bus.SetSpeed(physic.Frequency(b.I2cFreq) * physic.KiloHertz); err != nil {
		log.Warnf("Failed to set I2C bus speed to %vkHz: %v", b.I2cFreq, err)
	}
	log.Printf("Opened I2C bus %v", bus)
	b.bus = &periphI2cBus{bus: bus}
	return nil
}

type periphI2cBus struct {
	bus i2c.Bus
}

func (p *periphI2cBus) I2cWrite(addr byte, data ...byte) error {
	return p.bus.Tx(uint16(addr), data, nil)
}

func (p *periphI2cBus) I2cRead(addr byte, data []byte) error {
	return p.bus.Tx(uint16(addr), nil, data)
}

func (p *periphI2cBus) I2cGet(addr byte, registerAddr byte, size int) ([]byte, error) {
	res := make([]byte, size)
	err := p.bus.Tx(uint16(addr), []byte{registerAddr}, res)
	return res, err
}

type periphLine struct {
	pin gpio.PinIO
}

func openPeriphLine(name string) (*periphLine, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("Unknown GPIO pin %q", name)
	}
	return &periphLine{pin: pin}, nil
}

func (l *periphLine) SetLevel(high bool) error {
	return l.pin.Out(gpio.Level(high))
}
