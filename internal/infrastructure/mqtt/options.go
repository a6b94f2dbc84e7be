package mqtt

import (
	"crypto/tls"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/greenhouse-node/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultConnectTimeout is used when the config does not set one.
	defaultConnectTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 250 // milliseconds

	// defaultKeepAlive is used when the config does not set one.
	defaultKeepAlive = 15 * time.Second

	// defaultMaxPayload leaves headroom over the largest telemetry payload.
	defaultMaxPayload = 1024

	// defaultInboundBuffer is used when the config does not set one.
	defaultInboundBuffer = 32

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2

	// willQoS is the QoS of the last will message.
	willQoS = 1

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls.VersionTLS12
)

// Status payloads published on the node's own status topic.
const (
	StatusOnline  = `{"status":"online"}`
	StatusOffline = `{"status":"offline"}`
)

// buildClientOptions creates paho MQTT options from the node config.
//
// Reconnection is owned by the caller: paho's auto-reconnect and connect
// retry are both disabled so every attempt is visible and counted.
// Sessions are clean, so subscriptions must be re-issued after each connect.
func buildClientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	// Broker URL
	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	brokerURL := fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port)
	opts.AddBroker(brokerURL)

	opts.SetClientID(cfg.Broker.ClientID)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	opts.SetCleanSession(true)
	opts.SetResumeSubs(false)

	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)

	opts.SetConnectTimeout(connectTimeout(cfg))
	opts.SetKeepAlive(keepAlive(cfg))

	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{
			MinVersion: tlsMinVersion,
		})
	}

	return opts
}

// configureLWT declares the last will on the node's status topic.
//
// The broker publishes it, retained, when the node drops off without a
// clean disconnect, so subscribers see "offline" instead of a stale "online".
func configureLWT(opts *pahomqtt.ClientOptions, statusTopic string) {
	if statusTopic == "" {
		return
	}
	opts.SetWill(statusTopic, StatusOffline, willQoS, true)
}

func connectTimeout(cfg config.MQTTConfig) time.Duration {
	if d := cfg.ConnectTimeoutDuration(); d > 0 {
		return d
	}
	return defaultConnectTimeout
}

func keepAlive(cfg config.MQTTConfig) time.Duration {
	if cfg.KeepAlive > 0 {
		return time.Duration(cfg.KeepAlive) * time.Second
	}
	return defaultKeepAlive
}

func maxPayload(cfg config.MQTTConfig) int {
	if cfg.MaxPayload > 0 {
		return cfg.MaxPayload
	}
	return defaultMaxPayload
}

func inboundBuffer(cfg config.MQTTConfig) int {
	if cfg.InboundBuffer > 0 {
		return cfg.InboundBuffer
	}
	return defaultInboundBuffer
}
