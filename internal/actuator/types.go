package actuator

import "context"

// Channel identifies one PWM output.
type Channel int

const (
	Circulation Channel = iota
	Light
	Exhaust
)

// Channels lists every channel in the order they are restored and applied.
var Channels = [...]Channel{Circulation, Light, Exhaust}

// Key returns the persistence key of the channel.
func (c Channel) Key() string {
	switch c {
	case Circulation:
		return "circ"
	case Light:
		return "light"
	case Exhaust:
		return "exh"
	default:
		return ""
	}
}

// String returns a human-readable channel name for logs.
func (c Channel) String() string {
	switch c {
	case Circulation:
		return "circulation"
	case Light:
		return "light"
	case Exhaust:
		return "exhaust"
	default:
		return "unknown"
	}
}

func (c Channel) valid() bool {
	return c >= Circulation && c <= Exhaust
}

// Levels is a snapshot of all three channel levels.
type Levels struct {
	Circulation uint8
	Light       uint8
	Exhaust     uint8
}

// Get returns the level of ch. Unknown channels read as 0.
func (l Levels) Get(ch Channel) uint8 {
	switch ch {
	case Circulation:
		return l.Circulation
	case Light:
		return l.Light
	case Exhaust:
		return l.Exhaust
	default:
		return 0
	}
}

func (l *Levels) set(ch Channel, v uint8) {
	switch ch {
	case Circulation:
		l.Circulation = v
	case Light:
		l.Light = v
	case Exhaust:
		l.Exhaust = v
	}
}

// Pins maps channels to the platform's PWM pin names.
type Pins struct {
	Circulation string
	Light       string
	Exhaust     string
}

func (p Pins) pin(ch Channel) string {
	switch ch {
	case Circulation:
		return p.Circulation
	case Light:
		return p.Light
	case Exhaust:
		return p.Exhaust
	default:
		return ""
	}
}

// Output writes a PWM duty cycle to a pin.
// gobot's raspi.Adaptor satisfies this interface.
type Output interface {
	PwmWrite(pin string, level byte) error
}

// Store is the durable integer map levels are persisted in.
// *persist.Store satisfies this interface.
type Store interface {
	GetInt(ctx context.Context, key string) (int, bool, error)
	PutInt(ctx context.Context, key string, value int) error
}

// Logger defines the logging interface for the controller.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

// DiscardOutput accepts every write and drives nothing.
// It stands in for the hardware when the node runs without a board.
type DiscardOutput struct{}

// PwmWrite implements Output.
func (DiscardOutput) PwmWrite(string, byte) error { return nil }
