package telemetry

import "errors"

var (
	// ErrEncodeFailed is returned when the payload cannot be serialised.
	ErrEncodeFailed = errors.New("telemetry: encode failed")

	// ErrPublishFailed is returned when the transport rejects the payload.
	ErrPublishFailed = errors.New("telemetry: publish failed")
)
