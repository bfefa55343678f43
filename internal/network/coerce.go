package network

import (
	"fmt"
	"math"
	"strings"

	"github.com/boulder-sim/boulder/internal/units"
)

// CoerceProperties returns a copy of props with every known numeric key
// stored as float64. Integers widen, unit-bearing strings such as
// "1000 K" are converted, and anything unparsable is a validation error
// naming the field.
func CoerceProperties(entity Entity, id string, props Properties) (Properties, error) {
	out := props.Clone()
	for key, v := range out {
		dim, numeric := units.Lookup(key)
		if !numeric {
			out[key] = widen(v)
			continue
		}
		f, err := toFloat(dim, v)
		if err != nil {
			return nil, invalid(entity, id, key, err.Error())
		}
		out[key] = f
	}
	return out, nil
}

// NormalizeProperties is the lenient flavour of CoerceProperties used when
// a whole configuration is loaded: values that cannot be coerced are kept
// as given.
func NormalizeProperties(props Properties) Properties {
	out := props.Clone()
	for key, v := range out {
		dim, numeric := units.Lookup(key)
		if !numeric {
			out[key] = widen(v)
			continue
		}
		if f, err := toFloat(dim, v); err == nil {
			out[key] = f
		}
	}
	return out
}

func toFloat(dim units.Dimension, v any) (float64, error) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint64:
		f = float64(t)
	case string:
		p, err := units.Parse(dim, strings.TrimSpace(t))
		if err != nil {
			return 0, err
		}
		f = p
	case nil:
		return 0, fmt.Errorf("value is required")
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("value must be finite")
	}
	return f, nil
}

// NormalizeValue widens integer kinds to float64, recursively, so decoded
// YAML and JSON compare equal.
func NormalizeValue(v any) any {
	return widen(v)
}

func widen(v any) any {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = widen(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = widen(e)
		}
		return out
	}
	return v
}
