package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLevelFromString(t *testing.T) {
	defer SetLevel(INFO)

	cases := map[string]Level{
		"debug":   DEBUG,
		"INFO":    INFO,
		"warn":    WARNING,
		"Warning": WARNING,
		"error":   ERROR,
		"fatal":   FATAL,
	}
	for in, want := range cases {
		require.NoError(t, SetLevelFromString(in), in)
		assert.Equal(t, want, GetLevel(), in)
	}

	assert.Error(t, SetLevelFromString("verbose"))
}

func TestSetOutputWritesToFile(t *testing.T) {
	defer func() { require.NoError(t, SetOutput("")) }()
	defer SetLevel(INFO)

	path := filepath.Join(t.TempDir(), "boulder.log")
	require.NoError(t, SetOutput(path))

	SetLevel(INFO)
	Info("session started", "simulation_id", "abc")
	Debug("filtered out")
	_ = Sync()

	buf, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(buf), `"simulation_id":"abc"`)
	assert.NotContains(t, string(buf), "filtered out")
}
