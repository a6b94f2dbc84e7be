package sensor

import "github.com/nerrad567/greenhouse-node/internal/climate"

// Kind identifies which slot of a Reading a sensor fills.
type Kind string

const (
	// KindClimate is the temperature/humidity sensor (SHT4x).
	KindClimate Kind = "sht4x"

	// KindColor is the ambient light and colour sensor (APDS9960).
	KindColor Kind = "apds9960"

	// KindIlluminance is the broad-spectrum light sensor (TSL2591).
	KindIlluminance Kind = "tsl2591"
)

// Sensor is one independently optional sensor.
type Sensor interface {
	Kind() Kind

	// Init prepares the device. It is called once at startup.
	Init() error

	// TryRead returns the latest measurement, ErrNotReady, or a failure.
	TryRead() (Measurement, error)
}

// Measurement is a successful read that knows how to record itself.
type Measurement interface {
	Apply(r *Reading)
}

// Reading is the result of one Sample.
//
// A value pointer is only set when the matching OK flag is true. An OK
// flag may be true with a nil value when the sensor had no new data.
type Reading struct {
	ClimateOK     bool
	ColorOK       bool
	IlluminanceOK bool

	Climate     *ClimateValues
	Color       *Color
	Illuminance *Illuminance
}

// ClimateValues holds a temperature/humidity read and the metrics derived
// from it.
type ClimateValues struct {
	TempC float64
	RH    float64

	// DewPointF is nil when humidity is not positive.
	DewPointF *float64

	VPDKPa float64
}

// Climate is a raw temperature/humidity measurement.
type Climate struct {
	TempC float64
	RH    float64
}

// Apply records the measurement and its derived metrics.
func (m Climate) Apply(r *Reading) {
	v := &ClimateValues{
		TempC:  m.TempC,
		RH:     m.RH,
		VPDKPa: climate.VPDKPa(m.TempC, m.RH),
	}
	if m.RH > 0 {
		dp := climate.DewPointF(m.TempC, m.RH)
		v.DewPointF = &dp
	}
	r.Climate = v
}

// Illuminance is a lux measurement with its raw channels.
type Illuminance struct {
	Lux      uint32
	Full     uint16
	Infrared uint16
}

// Apply records the measurement.
func (m Illuminance) Apply(r *Reading) {
	v := m
	r.Illuminance = &v
}

// Color is a raw RGBC measurement.
type Color struct {
	R     uint16
	G     uint16
	B     uint16
	Clear uint16
}

// Apply records the measurement.
func (m Color) Apply(r *Reading) {
	v := m
	r.Color = &v
}

// setOK sets the availability flag for kind.
func (r *Reading) setOK(kind Kind, ok bool) {
	switch kind {
	case KindClimate:
		r.ClimateOK = ok
	case KindColor:
		r.ColorOK = ok
	case KindIlluminance:
		r.IlluminanceOK = ok
	}
}
