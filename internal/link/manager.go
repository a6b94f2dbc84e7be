package link

import (
	"errors"
	"fmt"
)

// State is the connection state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

// Transport is the broker client the manager drives.
// *mqtt.Client satisfies this interface.
type Transport interface {
	// Connect makes one bounded connection attempt.
	Connect() error

	IsConnected() bool
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte) error

	// Disconnect drops a connection whose setup failed.
	Disconnect()
}

// Config names the topics set up on every connect.
type Config struct {
	StatusTopic     string
	CommandTopic    string
	PeerStatusTopic string
	QoS             byte

	// OnlinePayload is published, retained, on StatusTopic.
	OnlinePayload []byte
}

// Logger defines the logging interface for the manager.
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

// Manager owns connection state and the attempt counter.
//
// Manager is not safe for concurrent use; it belongs to the control loop.
type Manager struct {
	transport Transport
	cfg       Config
	logger    Logger

	state    State
	attempts uint64
}

// NewManager creates a manager in StateDisconnected.
func NewManager(t Transport, cfg Config) *Manager {
	return &Manager{
		transport: t,
		cfg:       cfg,
		logger:    noopLogger{},
		state:     StateDisconnected,
	}
}

// SetLogger sets the logger for the manager.
func (m *Manager) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	m.logger = logger
}

// State returns the current connection state.
func (m *Manager) State() State {
	return m.state
}

// Attempts returns the number of connection attempts since start.
// It never decreases.
func (m *Manager) Attempts() uint64 {
	return m.attempts
}

// Ensure checks the link and, if it is down, makes one attempt to bring it
// up. It returns the resulting state. Failures are logged and retried on
// the next call.
func (m *Manager) Ensure() State {
	if m.state == StateConnected {
		if m.transport.IsConnected() {
			return m.state
		}
		m.state = StateDisconnected
		m.logger.Warn("broker link lost", "attempts", m.attempts)
	}

	m.state = StateConnecting
	m.attempts++

	// A connect that timed out may still have completed in the background.
	// The transport refuses a second Connect then, so adopt the session.
	if m.transport.IsConnected() {
		m.logger.Debug("broker connected late, adopting session", "attempt", m.attempts)
	} else if err := m.transport.Connect(); err != nil {
		m.state = StateDisconnected
		m.logger.Debug("broker connect failed", "attempt", m.attempts, "error", err)
		return m.state
	}

	if err := m.setup(); err != nil {
		m.transport.Disconnect()
		m.state = StateDisconnected
		m.logger.Warn("broker session setup failed", "attempt", m.attempts, "error", err)
		return m.state
	}

	m.state = StateConnected
	m.logger.Info("broker link up", "attempt", m.attempts)
	return m.state
}

// setup announces the node and restores subscriptions on a fresh session.
func (m *Manager) setup() error {
	var errs []error

	if err := m.transport.Publish(m.cfg.StatusTopic, m.cfg.OnlinePayload, m.cfg.QoS, true); err != nil {
		errs = append(errs, fmt.Errorf("online status: %w", err))
	}
	for _, topic := range []string{m.cfg.CommandTopic, m.cfg.PeerStatusTopic} {
		if topic == "" {
			continue
		}
		if err := m.transport.Subscribe(topic, m.cfg.QoS); err != nil {
			errs = append(errs, fmt.Errorf("subscribe %s: %w", topic, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrSetupFailed, err)
	}
	return nil
}
