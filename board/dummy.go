package board

import (
	"sync"

	"github.com/antongulenko/pipad/keypad"
	log "github.com/sirupsen/logrus"
)

// dummyI2cBus only logs writes. Reads return zeros.
type dummyI2cBus struct {
}

func (d *dummyI2cBus) I2cWrite(addr byte, data ...byte) error {
	log.Debugf("Dummy I2C write to %#02x: %#02x", addr, data)
	return nil
}

func (d *dummyI2cBus) I2cRead(addr byte, data []byte) error {
	for i := range data {
		data[i] = 0
	}
	return nil
}

func (d *dummyI2cBus) I2cGet(addr byte, registerAddr byte, size int) ([]byte, error) {
	return make([]byte, size), nil
}

type dummyLine struct {
	name  string
	lock  sync.Mutex
	level bool
}

func (l *dummyLine) SetLevel(high bool) error {
	log.Tracef("Dummy line %v: %v", l.name, high)
	l.lock.Lock()
	defer l.lock.Unlock()
	l.level = high
	return nil
}

func (l *dummyLine) Level() bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.level
}

type dummyAnalogLine struct {
	name  string
	value keypad.Value
}

func (l *dummyAnalogLine) Convert() (keypad.Value, error) {
	return l.value, nil
}
