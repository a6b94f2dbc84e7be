package sensor

import "errors"

// Logger defines the logging interface for sensor acquisition.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Acquisition samples a fixed set of sensors.
//
// Acquisition is not safe for concurrent use; it belongs to the control loop.
type Acquisition struct {
	sensors   []Sensor
	available []bool
	logger    Logger
}

// New creates an Acquisition over sensors. No sensor is available until
// Init has run.
func New(sensors ...Sensor) *Acquisition {
	return &Acquisition{
		sensors:   sensors,
		available: make([]bool, len(sensors)),
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for acquisition.
func (a *Acquisition) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	a.logger = logger
}

// Init initialises every sensor once. Sensors that fail are marked
// unavailable and never retried. It returns the number of sensors that
// came up.
func (a *Acquisition) Init() int {
	up := 0
	for i, s := range a.sensors {
		if err := s.Init(); err != nil {
			a.available[i] = false
			a.logger.Error("sensor not found", "sensor", string(s.Kind()), "error", err)
			continue
		}
		a.available[i] = true
		up++
		a.logger.Info("sensor initialized", "sensor", string(s.Kind()))
	}
	return up
}

// Sample reads every available sensor into a fresh Reading.
//
// A failed read marks that sensor unavailable for this reading and is
// logged; the other sensors are still read.
func (a *Acquisition) Sample() Reading {
	var r Reading

	for i, s := range a.sensors {
		if !a.available[i] {
			continue
		}

		m, err := s.TryRead()
		switch {
		case errors.Is(err, ErrNotReady):
			r.setOK(s.Kind(), true)
			a.logger.Debug("sensor data not ready", "sensor", string(s.Kind()))
		case err != nil:
			r.setOK(s.Kind(), false)
			a.logger.Error("sensor read failed", "sensor", string(s.Kind()), "error", err)
		default:
			r.setOK(s.Kind(), true)
			if m != nil {
				m.Apply(&r)
			}
		}
	}

	return r
}
