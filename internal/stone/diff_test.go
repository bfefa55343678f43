package stone

import (
	"testing"

	"github.com/boulder-sim/boulder/internal/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareIdentical(t *testing.T) {
	cfg, err := Parse([]byte(typeAsKey))
	require.NoError(t, err)

	assert.True(t, Compare(*cfg, cfg.Clone()).Empty())
}

func TestCompareReportsChanges(t *testing.T) {
	actual, err := Parse([]byte(typeAsKey))
	require.NoError(t, err)

	desired := actual.Clone()
	desired.Nodes[0].Properties["pressure"] = 202650.0
	desired.Nodes = append(desired.Nodes, network.Node{ID: "r2", Type: network.Reactor, Properties: network.Properties{}})
	desired.Connections = nil

	diff := Compare(desired, *actual)
	assert.False(t, diff.Empty())
	assert.Equal(t, []string{"node/r2"}, diff.Creates)
	assert.Equal(t, []string{"connection/mfc1"}, diff.Deletes)
	require.Len(t, diff.Updates, 1)
	assert.Equal(t, "node/r1", diff.Updates[0].ID)
	assert.Contains(t, diff.Updates[0].Diff, "pressure")
}

func TestCompareIgnoresUnitSpelling(t *testing.T) {
	a := network.Configuration{Nodes: []network.Node{{ID: "r1", Type: network.Reactor, Properties: network.Properties{"temperature": "1000 K"}}}}
	b := network.Configuration{Nodes: []network.Node{{ID: "r1", Type: network.Reactor, Properties: network.Properties{"temperature": 1000.0}}}}

	assert.True(t, Compare(a, b).Empty())
}
