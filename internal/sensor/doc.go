// Package sensor aggregates the node's independent sensors into one
// best-effort reading.
//
// Each physical sensor is a Sensor: it can be initialised once and then
// asked for a Measurement. Acquisition never needs the concrete sensor
// types. A sensor that fails Init is left out for the rest of the process
// lifetime. A sensor that fails a single read is reported unavailable for
// that sample only, and its fields are left empty.
//
// Every Sample builds a fresh Reading, so fields never carry over from an
// earlier cycle.
package sensor
