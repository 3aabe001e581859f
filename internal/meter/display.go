package meter

import (
	"context"
	"time"

	"codeberg.org/mutker/vuclock/internal/errors"
	"codeberg.org/mutker/vuclock/internal/gauge"
	"codeberg.org/mutker/vuclock/internal/logger"
	"codeberg.org/mutker/vuclock/internal/rtc"
	"codeberg.org/mutker/vuclock/internal/telemetry"
)

// DefaultPollInterval is the steady-state polling cadence. It must stay well
// under a second so no tick boundary is ever missed; shorter intervals only
// make the second-hand sweep finer.
const DefaultPollInterval = 10 * time.Millisecond

// Display runs one clock face: three needles fed from a single time source.
// All state is touched by one goroutine; a cycle reads the clock once so all
// three gauges see the same snapshot.
type Display struct {
	source    rtc.Source
	cal       Calibration
	hour      *Needle
	minute    *Needle
	second    *Needle
	collector telemetry.Collector

	anchor  time.Time
	lastSec int
	started bool
}

// NewDisplay wires a display. collector may be nil to disable recording.
func NewDisplay(source rtc.Source, cal Calibration, hour, minute, second *Needle, collector telemetry.Collector) *Display {
	return &Display{
		source:    source,
		cal:       cal,
		hour:      hour,
		minute:    minute,
		second:    second,
		collector: collector,
	}
}

// Step performs one polling pass: fetch the time, compute the three targets,
// advance the three needles.
func (d *Display) Step(ctx context.Context, now time.Time) error {
	errFactory := errors.New()

	snap, err := d.source.Now()
	if err != nil {
		return errFactory.Wrap(ErrTimeReadFailed, err)
	}

	// Re-anchor the sub-second sweep whenever the stored second advances.
	// The 59→0 rollover is not an increase, so the anchor briefly lags
	// there; the next tick corrects it.
	ticked := snap.Second != d.lastSec
	if !d.started {
		d.anchor = now
		d.started = true
		ticked = false
	} else if snap.Second > d.lastSec {
		d.anchor = now
	}
	d.lastSec = snap.Second

	secTarget := sweepLevel(snap.Second, now.Sub(d.anchor))
	minTarget := d.cal.MinuteLevel(snap.Minute)
	hourTarget := d.cal.HourLevel(HourIndex(snap.Hour))

	if err := d.second.Update(now, secTarget); err != nil {
		return err
	}
	if err := d.minute.Update(now, minTarget); err != nil {
		return err
	}
	if err := d.hour.Update(now, hourTarget); err != nil {
		return err
	}

	if ticked && d.collector != nil {
		d.record(ctx, now, snap, hourTarget, minTarget, secTarget)
	}

	return nil
}

// record stores one per-second snapshot. Telemetry is observability, not the
// clock; failures are logged and never stop the display.
func (d *Display) record(ctx context.Context, now time.Time, snap rtc.Snapshot, hourTarget, minTarget, secTarget uint8) {
	err := d.collector.Record(ctx, &telemetry.Snapshot{
		Timestamp: now,
		Clock: telemetry.ClockReading{
			Hour:   snap.Hour,
			Minute: snap.Minute,
			Second: snap.Second,
		},
		Levels: telemetry.GaugeLevels{
			Hour:   d.hour.Current(),
			Minute: d.minute.Current(),
			Second: d.second.Current(),
		},
		Targets: telemetry.GaugeLevels{
			Hour:   hourTarget,
			Minute: minTarget,
			Second: secTarget,
		},
	})
	if err != nil {
		logger.Warn().Err(err).Msg("failed to record telemetry snapshot")
	}
}

// Run polls until the context is cancelled. The loop body never blocks; the
// ticker bounds how fast the host re-runs it.
func (d *Display) Run(ctx context.Context, pollInterval time.Duration) error {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if err := d.Step(ctx, now); err != nil {
				return err
			}
		}
	}
}

// SelfTest sweeps a gauge from rest to full scale and back, with a fixed
// delay per step. Purely cosmetic, used once at boot.
func SelfTest(g gauge.Gauge, stepDelay time.Duration) error {
	for level := 0; level <= gauge.MaxLevel; level++ {
		if err := g.Set(uint8(level)); err != nil {
			return err
		}
		time.Sleep(stepDelay)
	}
	for level := gauge.MaxLevel; level >= 0; level-- {
		if err := g.Set(uint8(level)); err != nil {
			return err
		}
		time.Sleep(stepDelay)
	}

	return nil
}
