// Greenhouse Node - environmental sensing and actuation
//
// This is the main entry point for the greenhouse node. The node:
//   - Samples inside climate, inside illuminance and outside colour sensors
//   - Drives circulation fan, grow light and exhaust fan PWM outputs
//   - Restores the last commanded output levels after a restart
//   - Publishes telemetry to, and takes commands from, an MQTT controller
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gobot.io/x/gobot/v2/platforms/adaptors"
	"gobot.io/x/gobot/v2/platforms/raspi"

	_ "github.com/nerrad567/greenhouse-node/migrations"

	"github.com/nerrad567/greenhouse-node/internal/actuator"
	"github.com/nerrad567/greenhouse-node/internal/command"
	"github.com/nerrad567/greenhouse-node/internal/infrastructure/config"
	"github.com/nerrad567/greenhouse-node/internal/infrastructure/database"
	"github.com/nerrad567/greenhouse-node/internal/infrastructure/logging"
	"github.com/nerrad567/greenhouse-node/internal/infrastructure/mqtt"
	"github.com/nerrad567/greenhouse-node/internal/link"
	"github.com/nerrad567/greenhouse-node/internal/node"
	"github.com/nerrad567/greenhouse-node/internal/persist"
	"github.com/nerrad567/greenhouse-node/internal/platform"
	"github.com/nerrad567/greenhouse-node/internal/sensor"
	"github.com/nerrad567/greenhouse-node/internal/sensor/i2cdev"
	"github.com/nerrad567/greenhouse-node/internal/telemetry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// healthInterval is how often housekeeping checks the database and inbound queue.
const healthInterval = time.Minute

func main() {
	configFlag := flag.String("config", "", "path to config file (overrides GREENHOUSE_CONFIG)")
	flag.Parse()
	if *configFlag != "" {
		os.Setenv("GREENHOUSE_CONFIG", *configFlag) //nolint:errcheck // only fails on invalid key
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the node and runs the control loop until ctx is cancelled.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting greenhouse node",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, cfg.Node.ID, version)
	log.Info("configuration loaded", "path", configPath, "node", cfg.Node.ID)

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	hw, err := openHardware(cfg.Hardware, log)
	if err != nil {
		return fmt.Errorf("opening hardware: %w", err)
	}
	defer func() {
		if closeErr := hw.Close(); closeErr != nil {
			log.Error("error releasing hardware", "error", closeErr)
		}
	}()

	actuators := actuator.NewController(hw.output, persist.NewStore(db, persist.DefaultNamespace), actuator.Pins{
		Circulation: cfg.Hardware.CirculationPin,
		Light:       cfg.Hardware.LightPin,
		Exhaust:     cfg.Hardware.ExhaustPin,
	})
	actuators.SetLogger(log.Component("actuator"))

	sensors := sensor.New(hw.sensors...)
	sensors.SetLogger(log.Component("sensor"))

	mqttClient := mqtt.New(cfg.MQTT)
	mqttClient.SetLogger(log.Component("mqtt"))
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()

	qos := byte(cfg.MQTT.QoS) //nolint:gosec // validated to 0..2
	topics := cfg.MQTT.Topics

	mgr := link.NewManager(mqttClient, link.Config{
		StatusTopic:     topics.Status,
		CommandTopic:    topics.Commands,
		PeerStatusTopic: topics.PeerStatus,
		QoS:             qos,
		OnlinePayload:   []byte(mqtt.StatusOnline),
	})
	mgr.SetLogger(log.Component("link"))

	commands := command.NewHandler(actuators)
	commands.SetLogger(log.Component("command"))

	firmware := version
	if cfg.Node.FirmwareVersion != "" {
		firmware = cfg.Node.FirmwareVersion
	}
	publisher := telemetry.NewPublisher(telemetry.Options{
		Topic:           topics.Sensors,
		FirmwareVersion: firmware,
		Sensors:         sensors,
		Actuators:       actuators,
		Link:            mgr,
		Signal:          platform.NewSignal(cfg.Node.NetworkInterface),
		Sender:          mqttClient,
	})

	n := node.New(node.Options{
		Actuators: actuators,
		Sensors:   sensors,
		Link:      mgr,
		Commands:  commands,
		Telemetry: publisher,
		Inbox:     mqttClient,
		Network: platform.NetworkWait{
			Interface: cfg.Node.NetworkInterface,
			Timeout:   cfg.NetworkWaitTimeout(),
			Logger:    log.Component("network"),
		},
		Housekeeping:      &healthMonitor{db: db, mqtt: mqttClient, log: log.Component("health"), interval: healthInterval},
		Peer:              node.NewPeerStatus(log.Component("peer")),
		CommandTopic:      topics.Commands,
		PeerStatusTopic:   topics.PeerStatus,
		TickInterval:      cfg.LoopInterval(),
		TelemetryInterval: cfg.TelemetryInterval(),
	})
	n.SetLogger(log.Component("node"))

	if err := n.Start(ctx); err != nil {
		return fmt.Errorf("starting node: %w", err)
	}
	log.Info("control loop running",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
		"telemetry_interval", cfg.TelemetryInterval(),
	)

	if err := n.Run(ctx); err != nil {
		return fmt.Errorf("running node: %w", err)
	}

	// Deferred cleanup runs in reverse order:
	// 1. MQTT (offline status, then disconnect)
	// 2. Hardware
	// 3. Database
	log.Info("shutdown signal received, cleaning up")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GREENHOUSE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GREENHOUSE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// hardware is the opened I/O platform.
type hardware struct {
	output  actuator.Output
	sensors []sensor.Sensor
	close   func() error
}

// Close releases the platform.
func (h *hardware) Close() error {
	if h.close == nil {
		return nil
	}
	return h.close()
}

// openHardware connects the configured platform and builds the sensor set.
//
// The "none" driver discards PWM writes and has no sensors, which lets the
// node run against a broker on a development machine.
func openHardware(cfg config.HardwareConfig, log *logging.Logger) (*hardware, error) {
	if cfg.Driver == config.DriverNone {
		log.Warn("hardware driver disabled, outputs are discarded and no sensors are read")
		return &hardware{output: actuator.DiscardOutput{}}, nil
	}

	var opts []interface{}
	if cfg.PiBlaster {
		opts = append(opts, adaptors.WithPWMUsePiBlaster())
	}
	r := raspi.NewAdaptor(opts...)
	if err := r.Connect(); err != nil {
		return nil, fmt.Errorf("connecting raspi adaptor: %w", err)
	}
	log.Info("raspi adaptor connected", "pi_blaster", cfg.PiBlaster, "i2c_bus", cfg.I2CBus)

	bus := i2cdev.NewGobotBus(r, cfg.I2CBus)
	return &hardware{
		output: r,
		sensors: []sensor.Sensor{
			i2cdev.NewSHT4x(bus, cfg.Sensors.SHT4x),
			i2cdev.NewAPDS9960(bus, cfg.Sensors.APDS9960),
			i2cdev.NewTSL2591(bus, cfg.Sensors.TSL2591),
		},
		close: r.Finalize,
	}, nil
}

// healthMonitor is the loop's housekeeping step. It checks the database
// and reports inbound messages dropped since the last check.
type healthMonitor struct {
	db       *database.DB
	mqtt     *mqtt.Client
	log      *logging.Logger
	interval time.Duration

	last    time.Time
	dropped uint64
}

// Housekeep runs the checks at most once per interval.
func (h *healthMonitor) Housekeep(ctx context.Context) {
	now := time.Now()
	if now.Sub(h.last) < h.interval {
		return
	}
	h.last = now

	if err := h.db.HealthCheck(ctx); err != nil {
		h.log.Error("database health check failed", "error", err)
	}
	if dropped := h.mqtt.Dropped(); dropped != h.dropped {
		h.log.Warn("inbound messages dropped", "since_last_check", dropped-h.dropped, "total", dropped)
		h.dropped = dropped
	}
}
