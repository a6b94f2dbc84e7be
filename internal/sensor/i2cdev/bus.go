package i2cdev

import (
	"fmt"

	"gobot.io/x/gobot/v2/drivers/i2c"
)

// Conn is a connection to one device address.
// gobot's i2c.Connection satisfies it.
type Conn interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	ReadByteData(reg uint8) (uint8, error)
	WriteByteData(reg uint8, val uint8) error
	ReadBlockData(reg uint8, data []byte) error
	Close() error
}

// Bus opens connections to device addresses.
type Bus interface {
	Open(address int) (Conn, error)
}

// GobotBus opens connections through a gobot I2C connector.
type GobotBus struct {
	Connector i2c.Connector

	// BusNr selects the bus; a negative value uses the connector default.
	BusNr int
}

// NewGobotBus returns a Bus on busNr of connector.
func NewGobotBus(connector i2c.Connector, busNr int) *GobotBus {
	return &GobotBus{Connector: connector, BusNr: busNr}
}

// Open implements Bus.
func (b *GobotBus) Open(address int) (Conn, error) {
	bus := b.BusNr
	if bus < 0 {
		bus = b.Connector.DefaultI2cBus()
	}
	conn, err := b.Connector.GetI2cConnection(address, bus)
	if err != nil {
		return nil, fmt.Errorf("opening i2c-%d address 0x%02x: %w", bus, address, err)
	}
	return conn, nil
}

// readFull reads exactly len(p) bytes in one transfer.
func readFull(c Conn, p []byte) error {
	n, err := c.Read(p)
	if err != nil {
		return err
	}
	if n != len(p) {
		return fmt.Errorf("%w: got %d of %d bytes", ErrShortRead, n, len(p))
	}
	return nil
}

// le16 decodes a little-endian word.
func le16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}
