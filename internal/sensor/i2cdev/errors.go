package i2cdev

import "errors"

var (
	// ErrNoDevice is returned by Init when the device does not answer or
	// identifies as something else.
	ErrNoDevice = errors.New("i2cdev: device not found")

	// ErrChecksum is returned when a CRC-protected word fails verification.
	ErrChecksum = errors.New("i2cdev: checksum mismatch")

	// ErrShortRead is returned when fewer bytes arrive than requested.
	ErrShortRead = errors.New("i2cdev: short read")

	// ErrSaturated is returned when a light channel overflowed.
	ErrSaturated = errors.New("i2cdev: sensor saturated")
)
