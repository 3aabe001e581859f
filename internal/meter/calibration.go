// Package meter converts a time-of-day reading into gauge deflection levels
// and animates each needle toward its target.
package meter

import "codeberg.org/mutker/vuclock/internal/errors"

// Calibration maps hour-of-12 and minute-of-hour onto deflection levels.
// The gauges are not linear across their range, so the mapping is a measured
// per-device table rather than a proportional scale. Tables are immutable
// after load.
type Calibration struct {
	Hour   [12]uint8
	Minute [60]uint8
}

// DefaultCalibration returns the tables measured on the reference unit.
// A deployed device with different meters overrides them in its config file.
func DefaultCalibration() Calibration {
	return Calibration{
		Hour: [12]uint8{0, 22, 44, 67, 92, 117, 142, 166, 189, 212, 233, 255},
		Minute: [60]uint8{
			0, 4, 9, 13, 17, 20, 24, 29, 33, 37, 41, 45, 49, 53, 57,
			62, 66, 71, 75, 79, 83, 87, 92, 96, 100, 105, 109, 114, 118, 123,
			127, 131, 136, 140, 144, 149, 153, 157, 162, 166, 170, 175, 179, 184, 188,
			193, 198, 202, 206, 210, 214, 219, 223, 227, 231, 235, 240, 244, 248, 251,
		},
	}
}

// CalibrationFromTables builds a Calibration from config-supplied tables.
// An empty table keeps the built-in default for that axis; a non-empty one
// must be complete.
func CalibrationFromTables(hour, minute []int) (Calibration, error) {
	errFactory := errors.New()

	c := DefaultCalibration()
	if len(hour) != 0 {
		if len(hour) != len(c.Hour) {
			return c, errFactory.WithData(ErrInvalidCalibration, "hour table must have 12 entries")
		}
		for i, v := range hour {
			if v < 0 || v > 255 {
				return c, errFactory.WithData(ErrInvalidCalibration, "hour table value out of range")
			}
			c.Hour[i] = uint8(v)
		}
	}
	if len(minute) != 0 {
		if len(minute) != len(c.Minute) {
			return c, errFactory.WithData(ErrInvalidCalibration, "minute table must have 60 entries")
		}
		for i, v := range minute {
			if v < 0 || v > 255 {
				return c, errFactory.WithData(ErrInvalidCalibration, "minute table value out of range")
			}
			c.Minute[i] = uint8(v)
		}
	}

	return c, nil
}

// HourLevel returns the deflection for an hour index in [1,12].
func (c Calibration) HourLevel(index int) uint8 {
	return c.Hour[index-1]
}

// MinuteLevel returns the deflection for a minute in [0,59].
func (c Calibration) MinuteLevel(minute int) uint8 {
	return c.Minute[minute]
}

// HourIndex converts a 24-hour clock reading to the 12-hour gauge index.
// Both midnight and noon read full scale.
func HourIndex(hour int) int {
	if hour == 0 || hour == 12 {
		return 12
	}

	return hour % 12
}
