package meter

import (
	"time"

	"codeberg.org/mutker/vuclock/internal/errors"
	"codeberg.org/mutker/vuclock/internal/gauge"
)

const (
	// DefaultStepInterval is the minimum spacing between downward steps.
	DefaultStepInterval = 100 * time.Millisecond

	// DefaultSweepLength is how long a full-scale downward sweep takes.
	DefaultSweepLength = 750 * time.Millisecond
)

// Needle animates one gauge toward its target level. Rising is instant: the
// coil can pull the needle up without stress. Falling is rate-limited, one
// fixed step per interval, so the needle glides down instead of slamming
// against the stop. Each Needle owns its gauge's state and is touched by a
// single goroutine.
type Needle struct {
	out          gauge.Gauge
	current      uint8
	lastStep     time.Time
	stepInterval time.Duration
	stepSize     uint8
}

// NewNeedle creates a needle at level 0. Zero durations select the defaults.
// The step size is derived so that a full-scale sweep takes about sweepLength;
// exact sweep duration depends on integer rounding and is tunable, not a
// contract.
func NewNeedle(out gauge.Gauge, stepInterval, sweepLength time.Duration) *Needle {
	if stepInterval <= 0 {
		stepInterval = DefaultStepInterval
	}
	if sweepLength < stepInterval {
		sweepLength = DefaultSweepLength
	}

	stepSize := 255 * stepInterval.Milliseconds() / sweepLength.Milliseconds()
	if stepSize < 1 {
		stepSize = 1
	}

	return &Needle{
		out:          out,
		stepInterval: stepInterval,
		stepSize:     uint8(stepSize),
	}
}

// Current returns the last-commanded level.
func (n *Needle) Current() uint8 {
	return n.current
}

// Update advances the needle toward target, writing to the gauge only when
// the commanded level actually changes.
func (n *Needle) Update(now time.Time, target uint8) error {
	if n.current == target {
		return nil
	}

	if target > n.current {
		n.current = target
		return n.write()
	}

	// Falling. If a whole step would underflow, clamp straight to 0:
	// unsigned subtraction wrapping past zero would throw the needle to
	// full deflection.
	if n.stepSize > n.current {
		n.current = 0
		return n.write()
	}

	if now.Sub(n.lastStep) <= n.stepInterval {
		return nil
	}

	n.current -= n.stepSize
	n.lastStep = now

	return n.write()
}

func (n *Needle) write() error {
	if err := n.out.Set(n.current); err != nil {
		return errors.New().Wrap(ErrGaugeWriteFailed, err)
	}

	return nil
}
