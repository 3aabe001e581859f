// Package gauge drives the analog VU meters. Each meter is a moving-coil
// gauge fed from a PWM pin through an RC filter, so commanded deflection is
// simply a duty cycle. Levels are 0-255, matching the calibration tables.
package gauge

import (
	"codeberg.org/mutker/vuclock/internal/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

const (
	// MaxLevel is full-scale deflection.
	MaxLevel = 255

	// DiagnosticLevel is mid-scale, used as the visible "no clock" pattern.
	DiagnosticLevel = 128

	// DefaultFrequency is fast enough that the meter coil sees a DC average.
	DefaultFrequency = 8 * physic.KiloHertz
)

// Gauge is a single meter. Set commands a deflection level; there is no
// feedback path from the hardware.
type Gauge interface {
	Set(level uint8) error
}

// PWMPin drives a gauge from a hardware PWM-capable GPIO pin.
type PWMPin struct {
	pin  gpio.PinIO
	freq physic.Frequency
}

// NewPWMPin wraps a pin as a gauge output. A zero frequency selects
// DefaultFrequency.
func NewPWMPin(pin gpio.PinIO, freq physic.Frequency) *PWMPin {
	if freq == 0 {
		freq = DefaultFrequency
	}

	return &PWMPin{pin: pin, freq: freq}
}

// Set maps a 0-255 level linearly onto the pin's duty cycle range.
func (p *PWMPin) Set(level uint8) error {
	duty := gpio.Duty(uint64(level) * uint64(gpio.DutyMax) / MaxLevel)
	if err := p.pin.PWM(duty, p.freq); err != nil {
		return errors.New().Wrap(ErrWriteFailed, err).WithData(p.pin.Name())
	}

	return nil
}

// Name returns the underlying pin name.
func (p *PWMPin) Name() string {
	return p.pin.Name()
}
