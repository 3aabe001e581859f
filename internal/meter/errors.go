package meter

import "codeberg.org/mutker/vuclock/internal/errors"

const (
	ErrInvalidCalibration = errors.ErrorCode("meter_invalid_calibration")
	ErrTimeReadFailed     = errors.ErrorCode("meter_time_read_failed")
	ErrGaugeWriteFailed   = errors.ErrorCode("meter_gauge_write_failed")
)
