package mqtt

import (
	"fmt"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// Subscribe asks the broker for messages on topic. Received messages are
// queued on Inbound.
//
// Sessions are clean, so a subscription lasts only as long as the current
// connection; the caller re-subscribes after each successful Connect.
func (c *Client) Subscribe(topic string, qos byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Subscribe(topic, qos, c.handle)
	if !token.WaitTimeout(c.timeout) {
		return fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, c.timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}

	return nil
}

// handle is the paho callback for every subscription.
func (c *Client) handle(_ pahomqtt.Client, msg pahomqtt.Message) {
	if logger := c.getLogger(); logger != nil {
		logger.Debug("MQTT message received",
			"topic", msg.Topic(),
			"bytes", len(msg.Payload()),
		)
	}
	c.enqueue(msg.Topic(), msg.Payload())
}
