package gauge

import "codeberg.org/mutker/vuclock/internal/errors"

const (
	ErrWriteFailed = errors.ErrorCode("gauge_write_failed")
	ErrPinNotFound = errors.ErrorCode("gauge_pin_not_found")
)
