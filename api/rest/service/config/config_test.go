package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/boulder-sim/boulder/internal/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParses(t *testing.T) {
	doc, err := Service("").Default()
	require.NoError(t, err)
	assert.Len(t, doc.Config.Nodes, 3)
	assert.Len(t, doc.Config.Connections, 2)
	assert.Equal(t, defaultYAML, doc.YAML)
}

func TestPreloaded(t *testing.T) {
	_, ok := Service("").Preloaded()
	assert.False(t, ok)

	path := filepath.Join(t.TempDir(), "mix.yaml")
	require.NoError(t, os.WriteFile(path, []byte(defaultYAML), 0o600))

	doc, ok := Service(path).Preloaded()
	require.True(t, ok)
	assert.Equal(t, "mix.yaml", doc.Filename)
	assert.Len(t, doc.Config.Nodes, 3)
}

func TestPreloadedBadFileIsSkipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nodes: ["), 0o600))

	_, ok := Service(path).Preloaded()
	assert.False(t, ok)
}

func TestValidateRejectsDanglingReference(t *testing.T) {
	cfg := network.Configuration{
		Nodes: []network.Node{{ID: "r1", Type: network.IdealGasReactor, Properties: network.Properties{}}},
		Connections: []network.Connection{{
			ID: "mfc1", Type: network.MassFlowController, Source: "r1", Target: "r9",
			Properties: network.Properties{},
		}},
	}

	_, err := Service("").Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "r9")
}

func TestExportParseRoundTrip(t *testing.T) {
	svc := Service("")
	doc, err := svc.Default()
	require.NoError(t, err)

	text, err := svc.Export(doc.Config, "")
	require.NoError(t, err)
	again, err := svc.Parse(text)
	require.NoError(t, err)
	assert.Equal(t, doc.Config.Nodes, again.Config.Nodes)
}
