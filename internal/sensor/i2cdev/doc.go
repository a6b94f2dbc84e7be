// Package i2cdev contains register-level drivers for the node's I2C
// sensors: Sensirion SHT4x, Broadcom APDS9960 and ams TSL2591.
//
// Drivers talk to a Bus, which hands out per-address connections. The
// GobotBus adapter opens them through a gobot platform adaptor such as
// raspi.Adaptor; tests use an in-memory bus.
//
// Each driver implements sensor.Sensor.
package i2cdev
