package keypad

import (
	log "github.com/sirupsen/logrus"
)

// Indicator drives the active-low press indicator: a high line level means inactive.
type Indicator struct {
	line   DigitalLine
	active bool
}

func NewIndicator(line DigitalLine) *Indicator {
	return &Indicator{line: line}
}

func (i *Indicator) Set(active bool) error {
	log.Debugf("Setting press indicator active: %v", active)
	if err := i.line.SetLevel(!active); err != nil {
		return err
	}
	i.active = active
	return nil
}

func (i *Indicator) Active() bool {
	return i.active
}
