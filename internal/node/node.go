package node

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/greenhouse-node/internal/actuator"
	"github.com/nerrad567/greenhouse-node/internal/command"
	"github.com/nerrad567/greenhouse-node/internal/infrastructure/mqtt"
	"github.com/nerrad567/greenhouse-node/internal/link"
	"github.com/nerrad567/greenhouse-node/internal/telemetry"
)

// Loop defaults.
const (
	// DefaultTickInterval is the pause between loop iterations.
	DefaultTickInterval = 20 * time.Millisecond

	// DefaultTelemetryInterval is the telemetry publish period.
	DefaultTelemetryInterval = 5 * time.Second

	// maxDispatchPerTick bounds how many inbound messages one iteration handles.
	maxDispatchPerTick = 64
)

// Actuators restores and reports output levels.
type Actuators interface {
	LoadPersisted(ctx context.Context) (actuator.Levels, error)
	Levels() actuator.Levels
}

// Sensors initialises the sensor set.
type Sensors interface {
	Init() int
}

// Link keeps the broker connection up.
type Link interface {
	Ensure() link.State
}

// Commands applies inbound command payloads.
type Commands interface {
	Handle(ctx context.Context, raw []byte) (command.Applied, error)
}

// Telemetry publishes one telemetry payload.
type Telemetry interface {
	Publish() error
}

// Inbox delivers messages received by the broker client.
// *mqtt.Client satisfies this interface.
type Inbox interface {
	Inbound() <-chan mqtt.Message
}

// NetworkWaiter blocks until the network is usable.
type NetworkWaiter interface {
	Wait(ctx context.Context) (string, error)
}

// Housekeeper runs once at the top of every iteration.
type Housekeeper interface {
	Housekeep(ctx context.Context)
}

// PeerObserver receives payloads from the controller's status topic.
type PeerObserver interface {
	Observe(payload []byte)
}

// Logger defines the logging interface for the node.
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

// Options wires a Node. Actuators, Sensors, Link, Commands, Telemetry and
// Inbox are required.
type Options struct {
	Actuators Actuators
	Sensors   Sensors
	Link      Link
	Commands  Commands
	Telemetry Telemetry
	Inbox     Inbox

	// Network is waited on during Start. Nil skips the wait.
	Network NetworkWaiter

	// Housekeeping is optional.
	Housekeeping Housekeeper

	// Peer receives controller status messages. Nil ignores them.
	Peer PeerObserver

	CommandTopic    string
	PeerStatusTopic string

	TickInterval      time.Duration
	TelemetryInterval time.Duration

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Node is the control loop.
//
// Node is not safe for concurrent use. Start, Step and Run must be called
// from one goroutine.
type Node struct {
	opts     Options
	logger   Logger
	schedule *telemetry.Schedule
	started  bool
}

// New creates a Node. Zero intervals take their defaults.
func New(opts Options) *Node {
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.TelemetryInterval <= 0 {
		opts.TelemetryInterval = DefaultTelemetryInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Node{
		opts:   opts,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the node.
func (n *Node) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	n.logger = logger
}

// Start restores the outputs, initialises sensors and waits for the network.
//
// Persistence and sensor problems are logged and do not stop the node. Only
// a failed network wait is returned.
func (n *Node) Start(ctx context.Context) error {
	levels, err := n.opts.Actuators.LoadPersisted(ctx)
	if err != nil {
		n.logger.Warn("restoring actuator levels", "error", err)
	}
	n.logger.Info("actuator levels restored",
		"circulation", levels.Circulation,
		"light", levels.Light,
		"exhaust", levels.Exhaust,
	)

	found := n.opts.Sensors.Init()
	n.logger.Info("sensors initialised", "available", found)

	if n.opts.Network != nil {
		iface, err := n.opts.Network.Wait(ctx)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrNetworkUnavailable, err)
		}
		n.logger.Info("network available", "interface", iface)
	}

	n.schedule = telemetry.NewSchedule(n.opts.TelemetryInterval, n.opts.Now())
	n.started = true
	return nil
}

// Run calls Step every tick until ctx is cancelled.
func (n *Node) Run(ctx context.Context) error {
	if !n.started {
		return ErrNotStarted
	}

	ticker := time.NewTicker(n.opts.TickInterval)
	defer ticker.Stop()

	for {
		n.Step(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Step runs one loop iteration. No failure inside it is returned; every
// problem is logged and retried on a later iteration.
func (n *Node) Step(ctx context.Context) {
	if n.opts.Housekeeping != nil {
		n.opts.Housekeeping.Housekeep(ctx)
	}

	state := n.opts.Link.Ensure()

	n.dispatch(ctx)

	if n.schedule != nil && n.schedule.Due(n.opts.Now()) {
		if err := n.opts.Telemetry.Publish(); err != nil {
			if state == link.StateConnected {
				n.logger.Warn("telemetry not published", "error", err)
			} else {
				n.logger.Debug("telemetry not published", "state", state, "error", err)
			}
		}
	}
}

// dispatch handles queued inbound messages without blocking.
func (n *Node) dispatch(ctx context.Context) {
	inbound := n.opts.Inbox.Inbound()
	for i := 0; i < maxDispatchPerTick; i++ {
		select {
		case msg := <-inbound:
			n.route(ctx, msg)
		default:
			return
		}
	}
}

// route sends one message to its handler by topic.
func (n *Node) route(ctx context.Context, msg mqtt.Message) {
	switch msg.Topic {
	case n.opts.CommandTopic:
		// The handler logs failures.
		_, _ = n.opts.Commands.Handle(ctx, msg.Payload)
	case n.opts.PeerStatusTopic:
		if n.opts.Peer != nil {
			n.opts.Peer.Observe(msg.Payload)
		}
	default:
		n.logger.Debug("message on unexpected topic", "topic", msg.Topic)
	}
}
