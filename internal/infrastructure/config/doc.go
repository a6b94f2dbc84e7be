// Package config handles loading and validating greenhouse node configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// Defaults match the existing greenhouse wiring: broker on port 1883, client ID
// "ESP32-Greenhouse", the greenhouse/* topic set and a 5 second telemetry period.
//
// Security Considerations:
//   - MQTT credentials should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.MQTT.Topics.Sensors)
package config
