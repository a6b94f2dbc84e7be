package node

import "errors"

// Domain errors for the node package.
var (
	// ErrNotStarted is returned by Run when Start has not completed.
	ErrNotStarted = errors.New("node: not started")

	// ErrNetworkUnavailable is returned by Start when the network wait fails.
	ErrNetworkUnavailable = errors.New("node: network unavailable")
)
