package env

import (
	"testing"
	"time"

	"github.com/boulder-sim/boulder/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessDefaults(t *testing.T) {
	defer log.SetLevel(log.INFO)

	require.NoError(t, Process())

	vars := Variables()
	assert.Equal(t, 8080, vars.Port)
	assert.Equal(t, 15*time.Second, vars.StreamPing)
	assert.Zero(t, vars.SimulationTime)
	assert.Zero(t, vars.TimeStep)
}

func TestProcessOverrides(t *testing.T) {
	defer log.SetLevel(log.INFO)

	t.Setenv("BOULDER_PORT", "9090")
	t.Setenv("BOULDER_LOGLEVEL", "debug")
	t.Setenv("BOULDER_ENGINEURL", "http://engine:8000")

	require.NoError(t, Process())

	vars := Variables()
	assert.Equal(t, 9090, vars.Port)
	assert.Equal(t, "http://engine:8000", vars.EngineURL)
	assert.Equal(t, log.DEBUG, log.GetLevel())
}

func TestProcessRejectsBadLevel(t *testing.T) {
	defer log.SetLevel(log.INFO)

	t.Setenv("BOULDER_LOGLEVEL", "chatty")
	assert.Error(t, Process())
}
