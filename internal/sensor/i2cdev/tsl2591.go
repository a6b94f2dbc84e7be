package i2cdev

import (
	"fmt"

	"github.com/nerrad567/greenhouse-node/internal/sensor"
)

// TSL2591 registers. Every register access carries the command bit with
// normal transaction type.
const (
	TSL2591DefaultAddress = 0x29

	tslCommand = 0xA0

	tslRegEnable  = 0x00
	tslRegControl = 0x01
	tslRegID      = 0x12
	tslRegC0DataL = 0x14

	tslID = 0x50

	tslEnablePON = 0x01
	tslEnableAEN = 0x02

	tslGainMedium   = 0x10
	tslIntegrate300 = 0x02

	// Lux coefficients for medium gain and 300 ms integration.
	tslIntegrationMS = 300.0
	tslGainFactor    = 25.0
	tslLuxDF         = 408.0

	tslOverflow = 0xFFFF
)

// TSL2591 is an ams TSL2591 light sensor running continuously at medium
// gain and 300 ms integration.
type TSL2591 struct {
	bus     Bus
	address int
	conn    Conn
}

// NewTSL2591 returns a driver for the sensor at address.
func NewTSL2591(bus Bus, address int) *TSL2591 {
	return &TSL2591{bus: bus, address: address}
}

// Kind implements sensor.Sensor.
func (d *TSL2591) Kind() sensor.Kind { return sensor.KindIlluminance }

// Init checks the device ID, sets gain and timing, and starts the ADC.
func (d *TSL2591) Init() error {
	conn, err := d.bus.Open(d.address)
	if err != nil {
		return fmt.Errorf("%w: tsl2591: %w", ErrNoDevice, err)
	}

	if err := tslConfigure(conn); err != nil {
		conn.Close() //nolint:errcheck // Best effort cleanup on error path
		return err
	}

	d.conn = conn
	return nil
}

func tslConfigure(conn Conn) error {
	id, err := conn.ReadByteData(tslCommand | tslRegID)
	if err != nil {
		return fmt.Errorf("%w: tsl2591 id: %w", ErrNoDevice, err)
	}
	if id != tslID {
		return fmt.Errorf("%w: tsl2591 id 0x%02x, want 0x%02x", ErrNoDevice, id, tslID)
	}

	if err := conn.WriteByteData(tslCommand|tslRegControl, tslGainMedium|tslIntegrate300); err != nil {
		return fmt.Errorf("tsl2591 control: %w", err)
	}
	if err := conn.WriteByteData(tslCommand|tslRegEnable, tslEnablePON|tslEnableAEN); err != nil {
		return fmt.Errorf("tsl2591 enable: %w", err)
	}
	return nil
}

// TryRead returns the last completed integration.
func (d *TSL2591) TryRead() (sensor.Measurement, error) {
	if d.conn == nil {
		return nil, sensor.ErrNotInitialized
	}

	buf := make([]byte, 4)
	if err := d.conn.ReadBlockData(tslCommand|tslRegC0DataL, buf); err != nil {
		return nil, fmt.Errorf("tsl2591 channel data: %w", err)
	}
	full := le16(buf[0:2])
	ir := le16(buf[2:4])

	lux, err := tslLux(full, ir)
	if err != nil {
		return nil, err
	}

	return sensor.Illuminance{Lux: lux, Full: full, Infrared: ir}, nil
}

// tslLux converts channel counts to lux. A saturated channel has no
// meaningful lux value.
func tslLux(full, ir uint16) (uint32, error) {
	if full == tslOverflow || ir == tslOverflow {
		return 0, fmt.Errorf("%w: full=%d ir=%d", ErrSaturated, full, ir)
	}
	if full == 0 || ir >= full {
		return 0, nil
	}

	cpl := (tslIntegrationMS * tslGainFactor) / tslLuxDF
	f, i := float64(full), float64(ir)
	lux := ((f - i) * (1 - i/f)) / cpl
	return uint32(lux), nil
}
