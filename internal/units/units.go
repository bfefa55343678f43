// Package units converts the handful of physical quantities a reactor
// network carries between their canonical SI magnitudes and the forms
// people type or read.
package units

import (
	"fmt"
	"strconv"
	"strings"
)

// Dimension classifies a numeric property.
type Dimension string

const (
	Temperature  Dimension = "temperature"
	Pressure     Dimension = "pressure"
	MassFlowRate Dimension = "mass_flow_rate"
	Time         Dimension = "time"
	Volume       Dimension = "volume"
	Mass         Dimension = "mass"
	Scalar       Dimension = "scalar"
)

// ZeroCelsius is 0 °C expressed in kelvin.
const ZeroCelsius = 273.15

var dimensions = map[string]Dimension{
	"temperature":    Temperature,
	"pressure":       Pressure,
	"mass_flow_rate": MassFlowRate,
	"flow_rate":      MassFlowRate,
	"time_constant":  Time,
	"dt":             Time,
	"end_time":       Time,
	"max_time":       Time,
	"time_step":      Time,
	"volume":         Volume,
	"mass":           Mass,
	"K":              Scalar,
	"coeff":          Scalar,
	"area":           Scalar,
	"U":              Scalar,
	"nominal_flow":   Scalar,
}

// Lookup reports the dimension of a known numeric property key.
func Lookup(key string) (Dimension, bool) {
	d, ok := dimensions[key]
	return d, ok
}

// factors maps unit spellings to a multiplier onto the canonical unit of
// each dimension. Temperature is affine and handled separately.
var factors = map[Dimension]map[string]float64{
	Pressure: {
		"pa": 1, "kpa": 1e3, "mpa": 1e6, "bar": 1e5, "mbar": 1e2,
		"atm": 101325, "psi": 6894.757293168,
	},
	MassFlowRate: {
		"kg/s": 1, "g/s": 1e-3, "kg/h": 1.0 / 3600, "kg/min": 1.0 / 60,
	},
	Time: {
		"s": 1, "ms": 1e-3, "us": 1e-6, "min": 60, "h": 3600,
	},
	Volume: {
		"m3": 1, "m^3": 1, "m³": 1, "l": 1e-3, "ml": 1e-6, "cm3": 1e-6, "cm^3": 1e-6,
	},
	Mass: {
		"kg": 1, "g": 1e-3, "mg": 1e-6,
	},
}

// Parse converts text such as "1000 K", "726.85 degC", "1 atm" or
// "0.1 kg/s" into the canonical magnitude of dim. A bare number is taken
// to already be canonical.
func Parse(dim Dimension, text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("empty value")
	}

	if v, err := strconv.ParseFloat(text, 64); err == nil {
		return v, nil
	}

	num, unit := split(text)
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as a number", text)
	}

	if dim == Temperature {
		switch strings.ToLower(unit) {
		case "k", "kelvin":
			return v, nil
		case "c", "degc", "°c", "celsius":
			return v + ZeroCelsius, nil
		case "f", "degf", "°f":
			return (v-32)*5/9 + ZeroCelsius, nil
		}
		return 0, fmt.Errorf("unknown temperature unit %q", unit)
	}

	table, ok := factors[dim]
	if !ok {
		return 0, fmt.Errorf("%s values take no unit, got %q", dim, unit)
	}
	f, ok := table[strings.ToLower(unit)]
	if !ok {
		return 0, fmt.Errorf("unknown %s unit %q", dim, unit)
	}
	return v * f, nil
}

func split(text string) (string, string) {
	i := strings.IndexFunc(text, func(r rune) bool {
		return !(r >= '0' && r <= '9' || r == '.' || r == '-' || r == '+' || r == 'e' || r == 'E')
	})
	if i < 0 {
		return text, ""
	}
	return strings.TrimSpace(text[:i]), strings.TrimSpace(text[i:])
}

// KelvinToCelsius converts an absolute temperature to degrees Celsius.
func KelvinToCelsius(k float64) float64 { return k - ZeroCelsius }

// CelsiusToKelvin converts degrees Celsius to kelvin.
func CelsiusToKelvin(c float64) float64 { return c + ZeroCelsius }

// Label returns the human label for a property key, with its display unit.
func Label(key string) string {
	switch key {
	case "temperature":
		return "temperature (°C)"
	case "pressure":
		return "pressure (Pa)"
	case "composition":
		return "composition (%mol)"
	case "mass_flow_rate", "flow_rate":
		return key + " (kg/s)"
	case "volume":
		return "volume (m³)"
	case "mass":
		return "mass (kg)"
	case "time_constant":
		return "time_constant (s)"
	}
	return key
}

// FormatNumber renders a float compactly, the way a properties form shows it.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
