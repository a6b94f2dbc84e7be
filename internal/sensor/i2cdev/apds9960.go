package i2cdev

import (
	"fmt"

	"github.com/nerrad567/greenhouse-node/internal/sensor"
)

// APDS9960 registers used for the colour engine.
const (
	APDS9960DefaultAddress = 0x39

	apdsRegEnable  = 0x80
	apdsRegATime   = 0x81
	apdsRegControl = 0x8F
	apdsRegID      = 0x92
	apdsRegStatus  = 0x93
	apdsRegCDataL  = 0x94

	apdsID = 0xAB

	apdsEnablePON = 0x01
	apdsEnableAEN = 0x02

	apdsStatusAValid = 0x01

	// apdsATime10ms is an ADC integration time of 10 ms (256 - 10/2.78).
	apdsATime10ms = 0xFC

	// apdsGain4x selects 4x ALS gain.
	apdsGain4x = 0x01
)

// APDS9960 is the colour engine of a Broadcom APDS9960. Proximity and
// gesture are left disabled.
type APDS9960 struct {
	bus     Bus
	address int
	conn    Conn
}

// NewAPDS9960 returns a driver for the sensor at address.
func NewAPDS9960(bus Bus, address int) *APDS9960 {
	return &APDS9960{bus: bus, address: address}
}

// Kind implements sensor.Sensor.
func (d *APDS9960) Kind() sensor.Kind { return sensor.KindColor }

// Init checks the device ID and enables the colour engine.
func (d *APDS9960) Init() error {
	conn, err := d.bus.Open(d.address)
	if err != nil {
		return fmt.Errorf("%w: apds9960: %w", ErrNoDevice, err)
	}

	if err := apdsConfigure(conn); err != nil {
		conn.Close() //nolint:errcheck // Best effort cleanup on error path
		return err
	}

	d.conn = conn
	return nil
}

func apdsConfigure(conn Conn) error {
	id, err := conn.ReadByteData(apdsRegID)
	if err != nil {
		return fmt.Errorf("%w: apds9960 id: %w", ErrNoDevice, err)
	}
	if id != apdsID {
		return fmt.Errorf("%w: apds9960 id 0x%02x, want 0x%02x", ErrNoDevice, id, apdsID)
	}

	steps := []struct {
		reg, val uint8
	}{
		{apdsRegEnable, 0},
		{apdsRegATime, apdsATime10ms},
		{apdsRegControl, apdsGain4x},
		{apdsRegEnable, apdsEnablePON | apdsEnableAEN},
	}
	for _, s := range steps {
		if err := conn.WriteByteData(s.reg, s.val); err != nil {
			return fmt.Errorf("apds9960 write 0x%02x: %w", s.reg, err)
		}
	}
	return nil
}

// TryRead returns sensor.ErrNotReady until an integration cycle completes.
func (d *APDS9960) TryRead() (sensor.Measurement, error) {
	if d.conn == nil {
		return nil, sensor.ErrNotInitialized
	}

	status, err := d.conn.ReadByteData(apdsRegStatus)
	if err != nil {
		return nil, fmt.Errorf("apds9960 status: %w", err)
	}
	if status&apdsStatusAValid == 0 {
		return nil, sensor.ErrNotReady
	}

	buf := make([]byte, 8)
	if err := d.conn.ReadBlockData(apdsRegCDataL, buf); err != nil {
		return nil, fmt.Errorf("apds9960 colour data: %w", err)
	}

	return sensor.Color{
		Clear: le16(buf[0:2]),
		R:     le16(buf[2:4]),
		G:     le16(buf[4:6]),
		B:     le16(buf[6:8]),
	}, nil
}
