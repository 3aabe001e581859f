package meter

import "time"

// The second hand sweeps across the full minute instead of stepping 60 times,
// so its axis is a plain linear map rather than a calibration table.
const sweepRangeMillis = 60000

// sweepLevel maps the position within the current minute onto a deflection
// level. second is the whole-second reading; sinceAnchor is the time elapsed
// since the last observed tick boundary. Rounds to nearest.
//
// A backward clock jump can make the input transiently wrong; the result is
// clamped and corrects itself at the next tick boundary.
func sweepLevel(second int, sinceAnchor time.Duration) uint8 {
	elapsed := int64(second)*1000 + sinceAnchor.Milliseconds()
	if elapsed < 0 {
		return 0
	}

	level := (elapsed*255 + sweepRangeMillis/2) / sweepRangeMillis
	if level > 255 {
		return 255
	}

	return uint8(level)
}
