package meter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSweepLevelEndpoints(t *testing.T) {
	assert.Equal(t, uint8(0), sweepLevel(0, 0))
	assert.Equal(t, uint8(255), sweepLevel(59, 999*time.Millisecond))
	assert.Equal(t, uint8(128), sweepLevel(30, 0))
}

func TestSweepLevelMonotonic(t *testing.T) {
	last := uint8(0)
	for second := 0; second < 60; second++ {
		for ms := 0; ms < 1000; ms += 50 {
			level := sweepLevel(second, time.Duration(ms)*time.Millisecond)
			assert.GreaterOrEqual(t, level, last, "second %d ms %d", second, ms)
			last = level
		}
	}
	assert.Equal(t, uint8(255), last)
}

func TestSweepLevelClampsBackwardJump(t *testing.T) {
	// A clock set backwards can briefly make the anchor lie in the future.
	assert.Equal(t, uint8(0), sweepLevel(0, -5*time.Second))
}

func TestSweepLevelClampsOverrun(t *testing.T) {
	// Polling right before a tick can push elapsed past the minute.
	assert.Equal(t, uint8(255), sweepLevel(59, 1500*time.Millisecond))
}
