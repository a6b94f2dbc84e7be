package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the greenhouse node.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Node      NodeConfig      `yaml:"node"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Hardware  HardwareConfig  `yaml:"hardware"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// NodeConfig contains node identity and control loop settings.
type NodeConfig struct {
	ID string `yaml:"id"`

	// FirmwareVersion overrides the build version reported in telemetry when set.
	FirmwareVersion string `yaml:"firmware_version"`

	// LoopIntervalMS is the pause between control loop iterations (milliseconds).
	LoopIntervalMS int `yaml:"loop_interval_ms"`

	// NetworkInterface is the interface whose association is awaited at startup
	// and whose signal quality is reported. Empty means any non-loopback interface.
	NetworkInterface string `yaml:"network_interface"`

	// NetworkWaitTimeout bounds the startup association wait (seconds). 0 waits forever.
	NetworkWaitTimeout int `yaml:"network_wait_timeout"`
}

// DatabaseConfig contains SQLite settings for the persisted actuator levels.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker MQTTBrokerConfig `yaml:"broker"`
	Auth   MQTTAuthConfig   `yaml:"auth"`
	QoS    int              `yaml:"qos"`

	// ConnectTimeout bounds a single connect attempt (seconds).
	ConnectTimeout int `yaml:"connect_timeout"`

	// KeepAlive is the MQTT keepalive interval (seconds).
	KeepAlive int `yaml:"keepalive"`

	// MaxPayload is the largest message the node will publish (bytes).
	MaxPayload int `yaml:"max_payload"`

	// InboundBuffer is the number of received messages queued for the control loop.
	InboundBuffer int `yaml:"inbound_buffer"`

	Topics MQTTTopicsConfig `yaml:"topics"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTTopicsConfig names the topics the node exchanges with the controller.
type MQTTTopicsConfig struct {
	Sensors    string `yaml:"sensors"`
	Commands   string `yaml:"commands"`
	Status     string `yaml:"status"`
	PeerStatus string `yaml:"peer_status"`
}

// HardwareConfig selects the I/O platform and pin/address assignments.
type HardwareConfig struct {
	// Driver is "raspi" for a Raspberry Pi via gobot, or "none" to run without hardware.
	Driver string `yaml:"driver"`

	// I2CBus selects the I2C bus number. -1 uses the adaptor default.
	I2CBus int `yaml:"i2c_bus"`

	// PiBlaster drives PWM through the pi-blaster daemon, which any GPIO
	// header pin supports. Without it only the hardware PWM pins work.
	PiBlaster bool `yaml:"pi_blaster"`

	CirculationPin string `yaml:"circulation_pin"`
	LightPin       string `yaml:"light_pin"`
	ExhaustPin     string `yaml:"exhaust_pin"`

	Sensors SensorAddressConfig `yaml:"sensors"`
}

// SensorAddressConfig contains the I2C addresses of the three sensors.
type SensorAddressConfig struct {
	SHT4x    int `yaml:"sht4x"`
	APDS9960 int `yaml:"apds9960"`
	TSL2591  int `yaml:"tsl2591"`
}

// TelemetryConfig contains telemetry publishing settings.
type TelemetryConfig struct {
	// Interval is the publish period (seconds).
	Interval int `yaml:"interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Supported hardware drivers.
const (
	DriverRaspi = "raspi"
	DriverNone  = "none"
)

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: GREENHOUSE_SECTION_KEY
// For example: GREENHOUSE_DATABASE_PATH, GREENHOUSE_MQTT_HOST
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config matching the deployed greenhouse wiring.
func defaultConfig() *Config {
	return &Config{
		Node: NodeConfig{
			ID:             "greenhouse-node",
			LoopIntervalMS: 20,
		},
		Database: DatabaseConfig{
			Path:        "./data/greenhouse.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "ESP32-Greenhouse",
			},
			QoS:            1,
			ConnectTimeout: 5,
			KeepAlive:      15,
			MaxPayload:     1024,
			InboundBuffer:  32,
			Topics: MQTTTopicsConfig{
				Sensors:    "greenhouse/sensors",
				Commands:   "greenhouse/commands",
				Status:     "greenhouse/esp32/status",
				PeerStatus: "greenhouse/jetson/status",
			},
		},
		Hardware: HardwareConfig{
			Driver:         DriverRaspi,
			I2CBus:         -1,
			PiBlaster:      true,
			CirculationPin: "11",
			LightPin:       "13",
			ExhaustPin:     "15",
			Sensors: SensorAddressConfig{
				SHT4x:    0x44,
				APDS9960: 0x39,
				TSL2591:  0x29,
			},
		},
		Telemetry: TelemetryConfig{
			Interval: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GREENHOUSE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("GREENHOUSE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("GREENHOUSE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("GREENHOUSE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("GREENHOUSE_HARDWARE_DRIVER"); v != "" {
		cfg.Hardware.Driver = v
	}
}

// Validate checks the configuration for errors.
// All problems are reported together rather than one at a time.
func (c *Config) Validate() error {
	var errs []string

	if c.Node.ID == "" {
		errs = append(errs, "node.id is required")
	}
	if c.Node.LoopIntervalMS < 1 {
		errs = append(errs, "node.loop_interval_ms must be at least 1")
	}
	if c.Node.NetworkWaitTimeout < 0 {
		errs = append(errs, "node.network_wait_timeout cannot be negative")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.Broker.ClientID == "" {
		errs = append(errs, "mqtt.broker.client_id is required")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.ConnectTimeout < 1 {
		errs = append(errs, "mqtt.connect_timeout must be at least 1 second")
	}
	if c.MQTT.MaxPayload < 1 {
		errs = append(errs, "mqtt.max_payload must be positive")
	}
	if c.MQTT.InboundBuffer < 1 {
		errs = append(errs, "mqtt.inbound_buffer must be positive")
	}
	t := c.MQTT.Topics
	if t.Sensors == "" || t.Commands == "" || t.Status == "" || t.PeerStatus == "" {
		errs = append(errs, "mqtt.topics: sensors, commands, status and peer_status are required")
	}

	switch c.Hardware.Driver {
	case DriverRaspi:
		if c.Hardware.CirculationPin == "" || c.Hardware.LightPin == "" || c.Hardware.ExhaustPin == "" {
			errs = append(errs, "hardware pins are required for the raspi driver")
		}
	case DriverNone:
	default:
		errs = append(errs, fmt.Sprintf("hardware.driver %q must be %q or %q", c.Hardware.Driver, DriverRaspi, DriverNone))
	}

	if c.Telemetry.Interval < 1 {
		errs = append(errs, "telemetry.interval must be at least 1 second")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// LoopInterval returns the control loop pause as a Duration.
func (c *Config) LoopInterval() time.Duration {
	return time.Duration(c.Node.LoopIntervalMS) * time.Millisecond
}

// NetworkWaitTimeout returns the startup association bound as a Duration.
func (c *Config) NetworkWaitTimeout() time.Duration {
	return time.Duration(c.Node.NetworkWaitTimeout) * time.Second
}

// TelemetryInterval returns the telemetry publish period as a Duration.
func (c *Config) TelemetryInterval() time.Duration {
	return time.Duration(c.Telemetry.Interval) * time.Second
}

// ConnectTimeoutDuration returns the per-attempt MQTT connect bound as a Duration.
func (m MQTTConfig) ConnectTimeoutDuration() time.Duration {
	return time.Duration(m.ConnectTimeout) * time.Second
}
