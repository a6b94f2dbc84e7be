// Package climate derives plant-relevant metrics from air temperature and
// relative humidity.
//
// All functions are pure. Inputs are not validated; callers make sure
// humidity is in range before calling DewPointF.
package climate

import "math"

// Magnus coefficients for dew point (Sonntag 1990, over water).
const (
	magnusA = 17.62
	magnusB = 243.12 // °C
)

// Tetens coefficients for saturation vapour pressure.
const (
	tetensA   = 17.27
	tetensB   = 237.3  // °C
	tetensSVP = 0.6108 // kPa at 0 °C
)

// DewPointF returns the dew point in °F for tempC (°C) and rh (%RH).
//
// The result is meaningless for rh <= 0.
func DewPointF(tempC, rh float64) float64 {
	gamma := (magnusA*tempC)/(magnusB+tempC) + math.Log(rh/100)
	dewC := (magnusB * gamma) / (magnusA - gamma)
	return CToF(dewC)
}

// VPDKPa returns the vapour-pressure deficit in kPa for tempC (°C) and
// rh (%RH). It is never negative.
func VPDKPa(tempC, rh float64) float64 {
	svp := tetensSVP * math.Exp((tetensA*tempC)/(tempC+tetensB))
	return math.Max(0, svp*(1-rh/100))
}

// CToF converts °C to °F.
func CToF(c float64) float64 {
	return c*9/5 + 32
}
