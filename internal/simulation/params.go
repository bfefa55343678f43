package simulation

import (
	"github.com/boulder-sim/boulder/internal/network"
)

// Defaults applied when neither the caller nor the configuration say.
const (
	DefaultDuration  = 10.0
	DefaultTimeStep  = 1.0
	DefaultMechanism = "gri30.yaml"
)

// Params are the knobs of one run.
type Params struct {
	Duration  float64 `json:"simulation_time"`
	TimeStep  float64 `json:"time_step"`
	Mechanism string  `json:"mechanism,omitempty"`
}

// ResolveParams fills the zero fields of p. The mechanism comes from
// phases.gas.mechanism, then DefaultMechanism; duration from
// settings.end_time or settings.max_time; step from settings.dt or
// settings.time_step.
func ResolveParams(cfg network.Configuration, p Params) Params {
	if p.Mechanism == "" {
		if gas, ok := cfg.Phases["gas"].(map[string]any); ok {
			if m, ok := gas["mechanism"].(string); ok {
				p.Mechanism = m
			}
		}
	}
	if p.Mechanism == "" {
		p.Mechanism = DefaultMechanism
	}

	if p.Duration <= 0 {
		p.Duration = setting(cfg, DefaultDuration, "end_time", "max_time")
	}
	if p.TimeStep <= 0 {
		p.TimeStep = setting(cfg, DefaultTimeStep, "dt", "time_step")
	}
	return p
}

func setting(cfg network.Configuration, fallback float64, keys ...string) float64 {
	for _, block := range []map[string]any{cfg.Settings, cfg.Simulation} {
		for _, k := range keys {
			if v, ok := network.Properties(block).Float(k); ok && v > 0 {
				return v
			}
		}
	}
	return fallback
}
