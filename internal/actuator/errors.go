package actuator

import "errors"

var (
	// ErrUnknownChannel is returned for a channel outside the three defined ones.
	ErrUnknownChannel = errors.New("actuator: unknown channel")

	// ErrOutputFailed is returned when the hardware write fails.
	// Nothing was persisted and the level is unchanged.
	ErrOutputFailed = errors.New("actuator: output write failed")

	// ErrPersistFailed is returned when the hardware was written but the
	// level could not be persisted. The reported level is unchanged.
	ErrPersistFailed = errors.New("actuator: persist failed")

	// ErrLoadFailed is returned when a persisted level cannot be read at startup.
	ErrLoadFailed = errors.New("actuator: load failed")
)
