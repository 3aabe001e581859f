package telemetry

import (
	"context"
	"time"
)

// Collector defines the core domain interface
type Collector interface {
	Record(ctx context.Context, snapshot *Snapshot) error
	Close() error
}

// Snapshot captures one displayed second: the clock reading, what the needles
// were told to reach, and where they actually were.
type Snapshot struct {
	Timestamp time.Time
	Clock     ClockReading
	Levels    GaugeLevels
	Targets   GaugeLevels
}

type ClockReading struct {
	Hour   int
	Minute int
	Second int
}

type GaugeLevels struct {
	Hour   uint8
	Minute uint8
	Second uint8
}
