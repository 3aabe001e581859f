package rtc

import "codeberg.org/mutker/vuclock/internal/errors"

const (
	ErrDeviceNotFound = errors.ErrorCode("rtc_device_not_found")
	ErrReadFailed     = errors.ErrorCode("rtc_read_failed")
	ErrWriteFailed    = errors.ErrorCode("rtc_write_failed")
	ErrInvalidTime    = errors.ErrorCode("rtc_invalid_time")
)
