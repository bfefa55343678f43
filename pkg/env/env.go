package env

import (
	"time"

	"github.com/boulder-sim/boulder/pkg/log"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

var variables = new(Environment)

// Process the environment variables set for boulder.
func Process() error {
	if err := envconfig.Process("boulder", variables); err != nil {
		return errors.Wrap(err, "failed to process environment variables")
	}

	// set the log level
	if err := log.SetLevelFromString(variables.LogLevel); err != nil {
		return errors.Wrap(err, "failed to set log level")
	}

	if variables.LogFile != "" {
		if err := log.SetOutput(variables.LogFile); err != nil {
			return errors.Wrap(err, "failed to set log output")
		}
	}

	return nil
}

// Variables returns the processed environment variables.
func Variables() Environment {
	return *variables
}

// Environment defines the environment variables used
// by boulder.
type Environment struct {
	LogLevel       string        `default:"info"`
	LogFile        string        `default:""`
	Port           int           `default:"8080"`
	EngineURL      string        `default:""` // upstream simulation engine
	EngineTimeout  time.Duration `default:"30s"`
	ConfigPath     string        `default:""` // preloaded configuration
	StreamPing     time.Duration `default:"15s"`
	SimulationTime float64       `default:"0"` // zero defers to the configuration settings
	TimeStep       float64       `default:"0"`
	Mechanism      string        `default:""`
	MaxUploadBytes int64         `default:"1048576"`
}
