package platform

import "errors"

// Domain errors for the platform package.
var (
	// ErrNetworkTimeout is returned when no interface came up in time.
	ErrNetworkTimeout = errors.New("platform: network not available")

	// ErrNoWireless is returned when the interface has no wireless statistics.
	ErrNoWireless = errors.New("platform: no wireless statistics")
)
