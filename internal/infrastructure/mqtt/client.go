package mqtt

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/greenhouse-node/internal/infrastructure/config"
)

// Client wraps paho.mqtt.golang for a node driven by a single control loop.
//
// Unlike a long-running service client it never reconnects on its own:
// the caller invokes Connect whenever it wants an attempt, and received
// messages are queued on Inbound rather than handled on paho's goroutines.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
//   - Messages are enqueued from paho goroutines; Inbound is meant to be
//     drained by one consumer.
type Client struct {
	client  pahomqtt.Client
	cfg     config.MQTTConfig
	timeout time.Duration
	limit   int

	inbound chan Message
	dropped atomic.Uint64

	// closed is set by Close; later Connect calls are refused.
	closed atomic.Bool

	// logger for connection loss and dropped messages (optional, set via SetLogger).
	logger   Logger
	loggerMu sync.RWMutex
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
}

// Message is a received MQTT message.
type Message struct {
	Topic   string
	Payload []byte
}

// New builds a client from cfg without connecting.
//
// The last will is declared on cfg.Topics.Status so that every connect
// carries it.
func New(cfg config.MQTTConfig) *Client {
	c := &Client{
		cfg:     cfg,
		timeout: connectTimeout(cfg),
		limit:   maxPayload(cfg),
		inbound: make(chan Message, inboundBuffer(cfg)),
	}

	opts := buildClientOptions(cfg)
	configureLWT(opts, cfg.Topics.Status)

	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		if logger := c.getLogger(); logger != nil {
			logger.Warn("MQTT connection lost", "error", err)
		}
	})

	c.client = pahomqtt.NewClient(opts)
	return c
}

// Connect makes one connection attempt, bounded by the configured connect
// timeout. It does not retry.
func (c *Client) Connect() error {
	if c.closed.Load() {
		return fmt.Errorf("%w: client closed", ErrConnectionFailed)
	}

	token := c.client.Connect()
	if !token.WaitTimeout(c.timeout) {
		return fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, c.timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return nil
}

// IsConnected reports whether the broker connection is currently up.
func (c *Client) IsConnected() bool {
	if c.client == nil {
		return false
	}
	return c.client.IsConnected()
}

// Inbound returns the queue of received messages.
func (c *Client) Inbound() <-chan Message {
	return c.inbound
}

// Dropped returns the number of messages discarded because the inbound
// queue was full.
func (c *Client) Dropped() uint64 {
	return c.dropped.Load()
}

// Close publishes a retained offline status and disconnects.
//
// This is the graceful counterpart of the last will: the broker only
// publishes the will on an unclean disconnect.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	c.closed.Store(true)

	if c.IsConnected() && c.cfg.Topics.Status != "" {
		token := c.client.Publish(c.cfg.Topics.Status, willQoS, true, []byte(StatusOffline))
		token.WaitTimeout(c.timeout)
	}

	c.client.Disconnect(defaultDisconnectQuiesce)
	return nil
}

// Disconnect drops the connection without publishing an offline status.
// Unlike Close the client can connect again afterwards.
func (c *Client) Disconnect() {
	if c.client == nil || !c.client.IsConnected() {
		return
	}
	c.client.Disconnect(defaultDisconnectQuiesce)
}

// SetLogger sets a logger for connection events.
// If not set, they are silently ignored.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

// getLogger returns the current logger (may be nil).
func (c *Client) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}

// enqueue queues a received message without blocking the paho router.
// When the queue is full the message is dropped.
func (c *Client) enqueue(topic string, payload []byte) {
	msg := Message{Topic: topic, Payload: append([]byte(nil), payload...)}

	select {
	case c.inbound <- msg:
	default:
		n := c.dropped.Add(1)
		if logger := c.getLogger(); logger != nil {
			logger.Warn("MQTT inbound queue full, message dropped",
				"topic", topic,
				"dropped_total", n,
			)
		}
	}
}
