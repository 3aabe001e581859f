package meter

import (
	"context"
	"testing"
	"time"

	"codeberg.org/mutker/vuclock/internal/errors"
	"codeberg.org/mutker/vuclock/internal/gauge"
	"codeberg.org/mutker/vuclock/internal/rtc"
	"codeberg.org/mutker/vuclock/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	snap rtc.Snapshot
	err  error
}

func (f *fakeSource) Now() (rtc.Snapshot, error) { return f.snap, f.err }
func (f *fakeSource) IsRunning() (bool, error)   { return true, nil }
func (f *fakeSource) SetTime(rtc.Snapshot) error { return nil }

type fakeCollector struct {
	snapshots []*telemetry.Snapshot
}

func (f *fakeCollector) Record(_ context.Context, s *telemetry.Snapshot) error {
	f.snapshots = append(f.snapshots, s)
	return nil
}

func (f *fakeCollector) Close() error { return nil }

type testDisplay struct {
	display              *Display
	source               *fakeSource
	hour, minute, second *gauge.Recorder
}

func newTestDisplay(snap rtc.Snapshot, collector telemetry.Collector) *testDisplay {
	td := &testDisplay{
		source: &fakeSource{snap: snap},
		hour:   &gauge.Recorder{},
		minute: &gauge.Recorder{},
		second: &gauge.Recorder{},
	}
	td.display = NewDisplay(
		td.source,
		DefaultCalibration(),
		NewNeedle(td.hour, 0, 0),
		NewNeedle(td.minute, 0, 0),
		NewNeedle(td.second, 0, 0),
		collector,
	)

	return td
}

var displayBase = time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

func TestStepAtMidnightThirty(t *testing.T) {
	// 00:00:30 with every needle at rest: the second hand jumps to half
	// sweep, the minute hand stays parked, the hour hand jumps to full
	// scale (midnight reads as 12).
	td := newTestDisplay(rtc.Snapshot{Hour: 0, Minute: 0, Second: 30}, nil)

	require.NoError(t, td.display.Step(context.Background(), displayBase))

	assert.Equal(t, []uint8{128}, td.second.Writes)
	assert.Empty(t, td.minute.Writes, "minute target equals current, no write")
	assert.Equal(t, []uint8{255}, td.hour.Writes)
}

func TestSecondHandSweepsBetweenTicks(t *testing.T) {
	td := newTestDisplay(rtc.Snapshot{Hour: 6, Minute: 15, Second: 10}, nil)
	ctx := context.Background()

	require.NoError(t, td.display.Step(ctx, displayBase))
	first := td.second.Last()

	// Same stored second, later poll: the hand keeps creeping forward.
	require.NoError(t, td.display.Step(ctx, displayBase.Add(500*time.Millisecond)))
	mid := td.second.Last()
	assert.Greater(t, mid, first)

	// Tick boundary re-anchors the sweep without moving backwards.
	td.source.snap.Second = 11
	require.NoError(t, td.display.Step(ctx, displayBase.Add(time.Second)))
	assert.GreaterOrEqual(t, td.second.Last(), mid)
}

func TestMinuteRolloverSweepsDown(t *testing.T) {
	td := newTestDisplay(rtc.Snapshot{Hour: 3, Minute: 59, Second: 0}, nil)
	ctx := context.Background()

	require.NoError(t, td.display.Step(ctx, displayBase))
	require.Equal(t, uint8(251), td.minute.Last(), "minute 59 rises instantly")

	// Minute rolls over: the needle must glide down in bounded steps, not
	// slam to 0.
	td.source.snap.Minute = 0
	now := displayBase
	for i := 0; i < 20 && td.display.minute.Current() > 0; i++ {
		now = now.Add(110 * time.Millisecond)
		require.NoError(t, td.display.Step(ctx, now))
	}

	assert.Equal(t, uint8(0), td.display.minute.Current())
	last := uint8(255)
	for _, w := range td.minute.Writes[1:] {
		assert.Less(t, w, last, "downward sweep is strictly decreasing")
		last = w
	}
}

func TestStepPropagatesTimeSourceError(t *testing.T) {
	td := newTestDisplay(rtc.Snapshot{}, nil)
	td.source.err = errors.New().New(rtc.ErrReadFailed)

	err := td.display.Step(context.Background(), displayBase)
	require.Error(t, err)
	assert.Equal(t, ErrTimeReadFailed, errors.CodeOf(err))
}

func TestTelemetryRecordedOncePerSecond(t *testing.T) {
	collector := &fakeCollector{}
	td := newTestDisplay(rtc.Snapshot{Hour: 12, Minute: 30, Second: 5}, collector)
	ctx := context.Background()

	// First pass only anchors; repeated polls of the same second do not
	// record.
	require.NoError(t, td.display.Step(ctx, displayBase))
	require.NoError(t, td.display.Step(ctx, displayBase.Add(10*time.Millisecond)))
	assert.Empty(t, collector.snapshots)

	td.source.snap.Second = 6
	require.NoError(t, td.display.Step(ctx, displayBase.Add(time.Second)))
	require.NoError(t, td.display.Step(ctx, displayBase.Add(1010*time.Millisecond)))
	require.Len(t, collector.snapshots, 1)

	snap := collector.snapshots[0]
	assert.Equal(t, telemetry.ClockReading{Hour: 12, Minute: 30, Second: 6}, snap.Clock)
	assert.Equal(t, DefaultCalibration().MinuteLevel(30), snap.Targets.Minute)
	assert.Equal(t, uint8(255), snap.Targets.Hour, "hour 12 reads full scale")
}

func TestRunStopsOnCancel(t *testing.T) {
	td := newTestDisplay(rtc.Snapshot{Hour: 1, Minute: 2, Second: 3}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- td.display.Run(ctx, time.Millisecond)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}

	assert.NotEmpty(t, td.second.Writes, "loop stepped at least once before cancel")
}

func TestSelfTestSweep(t *testing.T) {
	rec := &gauge.Recorder{}
	require.NoError(t, SelfTest(rec, 0))

	require.Len(t, rec.Writes, 2*(gauge.MaxLevel+1))
	assert.Equal(t, uint8(0), rec.Writes[0])
	assert.Equal(t, uint8(gauge.MaxLevel), rec.Writes[gauge.MaxLevel])
	assert.Equal(t, uint8(0), rec.Last())
}
