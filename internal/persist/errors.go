package persist

import "errors"

var (
	// ErrInvalidKey is returned for an empty key.
	ErrInvalidKey = errors.New("persist: invalid key")

	// ErrReadFailed is returned when an entry cannot be read.
	ErrReadFailed = errors.New("persist: read failed")

	// ErrWriteFailed is returned when an entry cannot be written.
	ErrWriteFailed = errors.New("persist: write failed")
)
