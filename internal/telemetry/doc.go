// Package telemetry assembles and publishes the node's periodic status
// message.
//
// One Payload combines the latest sensor sample, the actuator levels and
// process/link health. Sensor fields are omitted unless the sensor
// produced data this cycle; actuator levels and health fields are always
// present.
//
// Publishing is best effort. A failed publish is reported to the caller
// and not retried; the next scheduled publish supersedes it.
package telemetry
