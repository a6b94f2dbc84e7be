package i2cdev

import (
	"fmt"
	"time"

	"github.com/sigurn/crc8"

	"github.com/nerrad567/greenhouse-node/internal/sensor"
)

// SHT4x commands and timings (datasheet section 4.5).
const (
	SHT4xDefaultAddress = 0x44

	sht4xCmdMeasureHigh = 0xFD
	sht4xCmdReadSerial  = 0x89
	sht4xCmdSoftReset   = 0x94

	sht4xMeasureHighDelay = 10 * time.Millisecond
	sht4xCommandDelay     = time.Millisecond
)

// sensirionCRC is the CRC used on every Sensirion data word.
var sensirionCRC = crc8.MakeTable(crc8.Params{
	Poly:   0x31,
	Init:   0xFF,
	RefIn:  false,
	RefOut: false,
	XorOut: 0x00,
	Check:  0xF7,
	Name:   "CRC-8/SENSIRION",
})

// SHT4x is a Sensirion SHT40/41/45 temperature and humidity sensor read in
// high-repeatability mode.
type SHT4x struct {
	bus     Bus
	address int
	conn    Conn
	serial  uint32

	sleep func(time.Duration)
}

// NewSHT4x returns a driver for the sensor at address.
func NewSHT4x(bus Bus, address int) *SHT4x {
	return &SHT4x{
		bus:     bus,
		address: address,
		sleep:   time.Sleep,
	}
}

// Kind implements sensor.Sensor.
func (d *SHT4x) Kind() sensor.Kind { return sensor.KindClimate }

// Init resets the sensor and reads its serial number.
func (d *SHT4x) Init() error {
	conn, err := d.bus.Open(d.address)
	if err != nil {
		return fmt.Errorf("%w: sht4x: %w", ErrNoDevice, err)
	}

	if _, err := conn.Write([]byte{sht4xCmdSoftReset}); err != nil {
		conn.Close() //nolint:errcheck // Best effort cleanup on error path
		return fmt.Errorf("%w: sht4x reset: %w", ErrNoDevice, err)
	}
	d.sleep(sht4xCommandDelay)

	words, err := d.command(conn, sht4xCmdReadSerial, sht4xCommandDelay)
	if err != nil {
		conn.Close() //nolint:errcheck // Best effort cleanup on error path
		return fmt.Errorf("%w: sht4x serial: %w", ErrNoDevice, err)
	}

	d.conn = conn
	d.serial = uint32(words[0])<<16 | uint32(words[1])
	return nil
}

// TryRead implements sensor.Sensor.
func (d *SHT4x) TryRead() (sensor.Measurement, error) {
	if d.conn == nil {
		return nil, sensor.ErrNotInitialized
	}

	words, err := d.command(d.conn, sht4xCmdMeasureHigh, sht4xMeasureHighDelay)
	if err != nil {
		return nil, fmt.Errorf("sht4x measure: %w", err)
	}

	return sensor.Climate{
		TempC: sht4xTemperature(words[0]),
		RH:    sht4xHumidity(words[1]),
	}, nil
}

// command sends cmd, waits, and reads two CRC-checked words.
func (d *SHT4x) command(conn Conn, cmd byte, wait time.Duration) ([2]uint16, error) {
	var words [2]uint16

	if _, err := conn.Write([]byte{cmd}); err != nil {
		return words, err
	}
	d.sleep(wait)

	buf := make([]byte, 6)
	if err := readFull(conn, buf); err != nil {
		return words, err
	}

	for i := range words {
		chunk := buf[i*3 : i*3+2]
		if got, want := crc8.Checksum(chunk, sensirionCRC), buf[i*3+2]; got != want {
			return words, fmt.Errorf("%w: word %d crc 0x%02x, want 0x%02x", ErrChecksum, i, got, want)
		}
		words[i] = uint16(chunk[0])<<8 | uint16(chunk[1])
	}
	return words, nil
}

func sht4xTemperature(raw uint16) float64 {
	return -45 + 175*float64(raw)/65535
}

// sht4xHumidity converts and clips to the physical range; the transfer
// function overshoots near 0 and 100 %RH.
func sht4xHumidity(raw uint16) float64 {
	rh := -6 + 125*float64(raw)/65535
	switch {
	case rh < 0:
		return 0
	case rh > 100:
		return 100
	default:
		return rh
	}
}
