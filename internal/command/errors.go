package command

import "errors"

var (
	// ErrMalformed is returned when a command is not a JSON object.
	// No actuator is touched.
	ErrMalformed = errors.New("command: malformed")

	// ErrApplyFailed is returned, joined once per field, when an actuator
	// rejects a level. The other fields are still applied.
	ErrApplyFailed = errors.New("command: apply failed")
)
