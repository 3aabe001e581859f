package meter

import (
	"testing"
	"time"

	"codeberg.org/mutker/vuclock/internal/gauge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var needleBase = time.Date(2024, time.June, 15, 13, 37, 0, 0, time.UTC)

func TestRiseIsInstant(t *testing.T) {
	rec := &gauge.Recorder{}
	n := NewNeedle(rec, 0, 0)

	require.NoError(t, n.Update(needleBase, 200))
	assert.Equal(t, []uint8{200}, rec.Writes, "a rise jumps straight to target")
	assert.Equal(t, uint8(200), n.Current())
}

func TestSteadyStateWritesNothing(t *testing.T) {
	rec := &gauge.Recorder{}
	n := NewNeedle(rec, 0, 0)

	require.NoError(t, n.Update(needleBase, 100))
	rec.Reset()

	for i := 0; i < 5; i++ {
		require.NoError(t, n.Update(needleBase.Add(time.Duration(i)*time.Second), 100))
	}
	assert.Empty(t, rec.Writes, "no writes while current == target")
}

func TestFallIsRateLimited(t *testing.T) {
	rec := &gauge.Recorder{}
	n := NewNeedle(rec, 0, 0)

	require.NoError(t, n.Update(needleBase, 255))
	rec.Reset()

	// Calls spaced wider than the step interval each take one step down.
	now := needleBase
	for i := 0; i < 20 && n.Current() > 0; i++ {
		now = now.Add(110 * time.Millisecond)
		require.NoError(t, n.Update(now, 0))
	}

	assert.Equal(t, []uint8{221, 187, 153, 119, 85, 51, 17, 0}, rec.Writes)
	assert.Equal(t, uint8(0), n.Current())
}

func TestFallWithinIntervalHolds(t *testing.T) {
	rec := &gauge.Recorder{}
	n := NewNeedle(rec, 0, 0)

	require.NoError(t, n.Update(needleBase, 255))
	now := needleBase.Add(110 * time.Millisecond)
	require.NoError(t, n.Update(now, 0))
	rec.Reset()

	// Polling much faster than the step interval must not step again.
	for i := 1; i <= 9; i++ {
		require.NoError(t, n.Update(now.Add(time.Duration(i)*10*time.Millisecond), 0))
	}
	assert.Empty(t, rec.Writes)
	assert.Equal(t, uint8(221), n.Current())
}

func TestFallNeverWrapsBelowZero(t *testing.T) {
	rec := &gauge.Recorder{}
	n := NewNeedle(rec, 0, 0)

	// A current level smaller than one step clamps straight to 0 instead
	// of wrapping the unsigned level to full deflection.
	require.NoError(t, n.Update(needleBase, 20))
	rec.Reset()

	require.NoError(t, n.Update(needleBase.Add(time.Millisecond), 0))
	assert.Equal(t, []uint8{0}, rec.Writes)
	assert.Equal(t, uint8(0), n.Current())
}

func TestFullSweepDuration(t *testing.T) {
	rec := &gauge.Recorder{}
	n := NewNeedle(rec, DefaultStepInterval, DefaultSweepLength)

	require.NoError(t, n.Update(needleBase, 255))

	// First downward step fires immediately, the remaining seven are rate
	// limited, so the full sweep lands near the configured 750ms.
	now := needleBase.Add(time.Millisecond)
	require.NoError(t, n.Update(now, 0))
	steps := 0
	for n.Current() > 0 {
		now = now.Add(101 * time.Millisecond)
		require.NoError(t, n.Update(now, 0))
		steps++
		require.Less(t, steps, 20, "sweep must terminate")
	}

	total := now.Sub(needleBase)
	assert.InDelta(t, float64(DefaultSweepLength), float64(total), float64(100*time.Millisecond))
}

func TestCustomSweepTiming(t *testing.T) {
	rec := &gauge.Recorder{}
	n := NewNeedle(rec, 50*time.Millisecond, 500*time.Millisecond)

	// 255 * 50 / 500 = 25 per step
	require.NoError(t, n.Update(needleBase, 255))
	require.NoError(t, n.Update(needleBase.Add(time.Millisecond), 0))
	assert.Equal(t, uint8(230), n.Current())
}
