// Package rtc adapts the battery-backed real-time clock into a time source
// for the display loop.
package rtc

import "time"

// Snapshot is one reading of the clock's stored date and time.
type Snapshot struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int // 0-23
	Minute int // 0-59
	Second int // 0-59
}

// Source reads and writes the hardware clock.
type Source interface {
	// Now returns the currently stored time.
	Now() (Snapshot, error)

	// IsRunning reports whether the oscillator is running, i.e. whether the
	// stored time is valid. A clock that lost battery power comes up halted.
	IsRunning() (bool, error)

	// SetTime stores a new time and starts the oscillator.
	SetTime(Snapshot) error
}

// DefaultTime is written once at startup when the clock has no valid stored
// time. Midnight reads as 12 o'clock on the hour gauge, which is the least
// confusing place for the needles to sit until someone sets the real time.
var DefaultTime = Snapshot{
	Year:  2020,
	Month: time.January,
	Day:   1,
}
