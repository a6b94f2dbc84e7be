package telemetry

import (
	"math"
	"time"

	"github.com/nerrad567/greenhouse-node/internal/actuator"
	"github.com/nerrad567/greenhouse-node/internal/climate"
	"github.com/nerrad567/greenhouse-node/internal/sensor"
)

// Payload is the JSON document published on the sensor topic.
type Payload struct {
	SHT4OK bool `json:"sensor_sht4_ok"`
	APDSOK bool `json:"sensor_apds_ok"`
	TSLOK  bool `json:"sensor_tsl_ok"`

	InsideTempF      *float64 `json:"inside_temp_f,omitempty"`
	InsideHumidityRH *float64 `json:"inside_humidity_rh,omitempty"`
	InsideDewPointF  *float64 `json:"inside_dew_point_f,omitempty"`
	InsideVPDKPa     *float64 `json:"inside_vpd_kpa,omitempty"`

	InsideBrightnessLux *uint32 `json:"inside_brightness_lux,omitempty"`
	TSLFullSpectrum     *uint16 `json:"tsl_full_spectrum,omitempty"`
	TSLInfrared         *uint16 `json:"tsl_infrared,omitempty"`

	OutsideBrightnessRaw *uint16 `json:"outside_brightness_raw,omitempty"`
	OutsideColorR        *uint16 `json:"outside_color_r,omitempty"`
	OutsideColorG        *uint16 `json:"outside_color_g,omitempty"`
	OutsideColorB        *uint16 `json:"outside_color_b,omitempty"`

	CirculationFanPWM uint8 `json:"circulation_fan_pwm"`
	GrowLightPWM      uint8 `json:"grow_light_pwm"`
	ExhaustFanPWM     uint8 `json:"exhaust_fan_pwm"`

	RuntimeMS       int64  `json:"esp32_runtime_ms"`
	FirmwareVersion string `json:"firmware_version"`
	WifiRSSI        int    `json:"wifi_rssi"`
	MQTTReconnects  uint64 `json:"mqtt_reconnects"`
}

// Health is the process and link state reported with every payload.
type Health struct {
	Uptime          time.Duration
	FirmwareVersion string
	RSSI            int
	Reconnects      uint64
}

// Build assembles a payload. It has no side effects.
func Build(r sensor.Reading, levels actuator.Levels, h Health) Payload {
	p := Payload{
		SHT4OK: r.ClimateOK,
		APDSOK: r.ColorOK,
		TSLOK:  r.IlluminanceOK,

		CirculationFanPWM: levels.Circulation,
		GrowLightPWM:      levels.Light,
		ExhaustFanPWM:     levels.Exhaust,

		RuntimeMS:       h.Uptime.Milliseconds(),
		FirmwareVersion: h.FirmwareVersion,
		WifiRSSI:        h.RSSI,
		MQTTReconnects:  h.Reconnects,
	}

	if r.ClimateOK && r.Climate != nil {
		c := r.Climate
		p.InsideTempF = round2(climate.CToF(c.TempC))
		p.InsideHumidityRH = round2(c.RH)
		if c.DewPointF != nil {
			p.InsideDewPointF = round2(*c.DewPointF)
		}
		p.InsideVPDKPa = round2(c.VPDKPa)
	}

	if r.IlluminanceOK && r.Illuminance != nil {
		il := *r.Illuminance
		p.InsideBrightnessLux = &il.Lux
		p.TSLFullSpectrum = &il.Full
		p.TSLInfrared = &il.Infrared
	}

	if r.ColorOK && r.Color != nil {
		col := *r.Color
		p.OutsideBrightnessRaw = &col.Clear
		p.OutsideColorR = &col.R
		p.OutsideColorG = &col.G
		p.OutsideColorB = &col.B
	}

	return p
}

// round2 rounds to two decimals, which keeps the encoded payload short.
func round2(v float64) *float64 {
	r := math.Round(v*100) / 100
	return &r
}
