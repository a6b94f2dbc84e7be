package sensor

import "errors"

var (
	// ErrNotReady is returned by TryRead when the sensor is healthy but has
	// no new data yet. The sensor stays available; its fields are omitted.
	ErrNotReady = errors.New("sensor: data not ready")

	// ErrNotInitialized is returned by TryRead before a successful Init.
	ErrNotInitialized = errors.New("sensor: not initialized")
)
