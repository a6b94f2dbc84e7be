package link

import "errors"

var (
	// ErrSetupFailed is returned when the link came up but the online
	// status or a subscription could not be established.
	ErrSetupFailed = errors.New("link: session setup failed")
)
