package board

import (
	"sync"

	"github.com/antongulenko/pipad/ft260"
	"github.com/antongulenko/pipad/keypad"
)

// sequencer executes all device accesses on a single goroutine, so the scanner and the
// shutdown handler never talk to the USB device concurrently.
type sequencer struct {
	queue chan *request
}

type request struct {
	op    func() error
	Error error

	done bool
	wait *sync.Cond
}

func newSequencer(queueSize int) *sequencer {
	return &sequencer{queue: make(chan *request, queueSize)}
}

func (r *request) init() {
	r.wait = &sync.Cond{L: new(sync.Mutex)}
}

func (r *request) Wait() {
	r.wait.L.Lock()
	defer r.wait.L.Unlock()
	for !r.done {
		r.wait.Wait()
	}
}

func (r *request) notifyDone() {
	r.wait.L.Lock()
	defer r.wait.L.Unlock()
	r.done = true
	r.wait.Broadcast()
}

func (s *sequencer) handleRequests() {
	for req := range s.queue {
		req.Error = req.op()
		req.notifyDone()
	}
}

func (s *sequencer) do(op func() error) error {
	req := &request{op: op}
	req.init()
	s.queue <- req
	req.Wait()
	return req.Error
}

type sequencedI2cBus struct {
	bus       ft260.I2cBus
	sequencer *sequencer
}

func (s *sequencedI2cBus) I2cWrite(addr byte, data ...byte) error {
	return s.sequencer.do(func() error {
		return s.bus.I2cWrite(addr, data...)
	})
}

func (s *sequencedI2cBus) I2cRead(addr byte, data []byte) error {
	return s.sequencer.do(func() error {
		return s.bus.I2cRead(addr, data)
	})
}

func (s *sequencedI2cBus) I2cGet(addr byte, registerAddr byte, size int) (res []byte, err error) {
	err = s.sequencer.do(func() (err error) {
		res, err = s.bus.I2cGet(addr, registerAddr, size)
		return
	})
	return
}

type sequencedLine struct {
	line      keypad.DigitalLine
	sequencer *sequencer
}

func (s *sequencedLine) SetLevel(high bool) error {
	return s.sequencer.do(func() error {
		return s.line.SetLevel(high)
	})
}
