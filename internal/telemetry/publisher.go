package telemetry

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/greenhouse-node/internal/actuator"
	"github.com/nerrad567/greenhouse-node/internal/sensor"
)

// Sampler produces a fresh sensor reading.
type Sampler interface {
	Sample() sensor.Reading
}

// LevelSource reports the current actuator levels.
type LevelSource interface {
	Levels() actuator.Levels
}

// AttemptCounter reports the connection attempt count.
type AttemptCounter interface {
	Attempts() uint64
}

// SignalSource reports the link signal strength in dBm.
type SignalSource interface {
	RSSI() int
}

// Sender publishes a message.
type Sender interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Options configures a Publisher.
type Options struct {
	Topic           string
	QoS             byte
	FirmwareVersion string

	Sensors   Sampler
	Actuators LevelSource
	Link      AttemptCounter
	Signal    SignalSource
	Sender    Sender

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Publisher builds and sends payloads.
type Publisher struct {
	opts    Options
	started time.Time
}

// NewPublisher creates a publisher. Uptime is measured from this call.
func NewPublisher(opts Options) *Publisher {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Publisher{
		opts:    opts,
		started: opts.Now(),
	}
}

// Publish samples the sensors, builds a payload and sends it, non-retained,
// on the sensor topic.
func (p *Publisher) Publish() error {
	h := Health{
		Uptime:          p.opts.Now().Sub(p.started),
		FirmwareVersion: p.opts.FirmwareVersion,
		Reconnects:      p.opts.Link.Attempts(),
	}
	if p.opts.Signal != nil {
		h.RSSI = p.opts.Signal.RSSI()
	}

	payload := Build(p.opts.Sensors.Sample(), p.opts.Actuators.Levels(), h)

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodeFailed, err)
	}

	if err := p.opts.Sender.Publish(p.opts.Topic, data, p.opts.QoS, false); err != nil {
		return fmt.Errorf("%w: %d bytes: %w", ErrPublishFailed, len(data), err)
	}
	return nil
}
