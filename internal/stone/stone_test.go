package stone

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/boulder-sim/boulder/internal/network"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const typeAsKey = `
metadata:
  name: mix
  version: "1.0"
phases:
  gas:
    mechanism: gri30.yaml
settings:
  end_time: 250 ms
  dt: 0.01
nodes:
  - id: r1
    IdealGasReactor:
      temperature: 1000 K
      pressure: 101325
      composition: "CH4:1,O2:2,N2:7.52"
  - id: res1
    Reservoir:
      temperature: 300
      composition: "O2:1,N2:3.76"
connections:
  - id: mfc1
    MassFlowController:
      mass_flow_rate: 0.1
    source: res1
    target: r1
`

const explicitForm = `
components:
  - id: r1
    type: IdealGasReactor
    properties:
      temperature: 1000
      pressure: 101325
      composition: "CH4:1,O2:2,N2:7.52"
  - id: res1
    type: Reservoir
    properties:
      temperature: 300
      composition: "O2:1,N2:3.76"
connections:
  - id: mfc1
    type: MassFlowController
    source: res1
    target: r1
    properties:
      mass_flow_rate: 0.1
`

func TestParseEncodingsAgree(t *testing.T) {
	a, err := Parse([]byte(typeAsKey))
	require.NoError(t, err)
	b, err := Parse([]byte(explicitForm))
	require.NoError(t, err)

	if diff := cmp.Diff(a.Nodes, b.Nodes); diff != "" {
		t.Fatalf("nodes differ (-typeAsKey +explicit):\n%s", diff)
	}
	if diff := cmp.Diff(a.Connections, b.Connections); diff != "" {
		t.Fatalf("connections differ (-typeAsKey +explicit):\n%s", diff)
	}

	assert.Equal(t, network.IdealGasReactor, a.Nodes[0].Type)
	assert.Equal(t, 1000.0, a.Nodes[0].Properties["temperature"])
	assert.Equal(t, "res1", a.Connections[0].Source)
	assert.InDelta(t, 0.25, a.Settings["end_time"], 1e-12)
	assert.Equal(t, "mix", a.Metadata["name"])
}

func TestRoundTrip(t *testing.T) {
	cfg, err := Parse([]byte(typeAsKey))
	require.NoError(t, err)
	cfg.Output = []any{map[string]any{"reactor": "r1", "quantity": "temperature"}}
	cfg.Nodes[0].Metadata = map[string]any{"note": "main"}

	text, err := Export(*cfg)
	require.NoError(t, err)

	again, err := Parse(text)
	require.NoError(t, err)

	if diff := cmp.Diff(*cfg, *again); diff != "" {
		t.Fatalf("round trip changed configuration (-want +got):\n%s", diff)
	}
}

func TestExportIsCanonical(t *testing.T) {
	cfg, err := Parse([]byte(explicitForm))
	require.NoError(t, err)

	text, err := Export(*cfg)
	require.NoError(t, err)

	out := string(text)
	assert.Contains(t, out, "nodes:")
	assert.NotContains(t, out, "components:")
	assert.NotContains(t, out, "type:")
	assert.NotContains(t, out, "properties:")
	assert.Contains(t, out, "IdealGasReactor:\n")

	// property keys come out sorted
	assert.Less(t, strings.Index(out, "composition"), strings.Index(out, "pressure"))
	// source/target follow the type key
	assert.Less(t, strings.Index(out, "MassFlowController"), strings.Index(out, "source: res1"))
}

func TestExportEmpty(t *testing.T) {
	text, err := Export(network.Empty())
	require.NoError(t, err)

	cfg, err := Parse(text)
	require.NoError(t, err)
	assert.Empty(t, cfg.Nodes)
	assert.Empty(t, cfg.Connections)
}

func TestExportQuotesNumericIDs(t *testing.T) {
	text, err := Export(network.Configuration{
		Nodes: []network.Node{{ID: "1", Type: network.Reservoir, Properties: network.Properties{}}},
	})
	require.NoError(t, err)

	cfg, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, "1", cfg.Nodes[0].ID)
}

func TestParseErrors(t *testing.T) {
	cases := map[string]struct {
		doc  string
		want string
		is   error
	}{
		"unparsable": {doc: "nodes: [", want: "yaml"},
		"empty":      {doc: "", is: ErrEmpty},
		"scalar":     {doc: "just text", want: "must be a mapping"},
		"both sections": {
			doc:  "nodes: []\ncomponents: []\n",
			want: "either nodes or components",
		},
		"multiple type keys": {
			doc:  "nodes:\n  - id: r1\n    Reservoir: {}\n    IdealGasReactor: {}\n",
			want: `multiple type keys "Reservoir", "IdealGasReactor"`,
		},
		"type and key": {
			doc:  "nodes:\n  - id: r1\n    type: Reservoir\n    IdealGasReactor: {}\n",
			want: "both type",
		},
		"missing id": {
			doc:  "nodes:\n  - Reservoir: {}\n",
			want: "nodes[0].id is required",
			is:   network.ErrValidation,
		},
		"missing type": {
			doc:  "nodes:\n  - id: r1\n",
			want: "type",
			is:   network.ErrValidation,
		},
		"duplicate node": {
			doc:  "nodes:\n  - id: a\n    Reservoir: {}\n  - id: a\n    Reservoir: {}\n",
			want: `"a"`,
			is:   network.ErrDuplicateIdentifier,
		},
		"dangling target": {
			doc:  "nodes:\n  - id: a\n    Reservoir: {}\nconnections:\n  - id: c\n    Valve: {}\n    source: a\n    target: z\n",
			want: `"z" does not reference an existing node`,
			is:   network.ErrReference,
		},
		"self loop": {
			doc:  "nodes:\n  - id: a\n    Reservoir: {}\nconnections:\n  - id: c\n    Valve: {}\n    source: a\n    target: a\n",
			want: "source and target must differ",
			is:   network.ErrReference,
		},
		"properties not a mapping": {
			doc:  "nodes:\n  - id: a\n    Reservoir: 3\n",
			want: "must be a mapping",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			require.Error(t, err)
			if tc.want != "" {
				assert.Contains(t, err.Error(), tc.want)
			}
			if tc.is != nil {
				assert.True(t, errors.Is(err, tc.is), "expected %v, got %v", tc.is, err)
			}
		})
	}
}

func TestUnknownUnitKeptAsText(t *testing.T) {
	cfg, err := Parse([]byte("nodes:\n  - id: a\n    Reservoir:\n      temperature: warm\n"))
	require.NoError(t, err)
	assert.Equal(t, "warm", cfg.Nodes[0].Properties["temperature"])
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.yaml"), []byte(typeAsKey), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "bad.yml"), []byte("nodes: ["), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	docs, err := Collect([]string{dir})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, filepath.Join(dir, "good.yaml"), docs[0].Path)
	assert.NoError(t, docs[0].Err)
	assert.Error(t, docs[1].Err)

	docs, err = Collect([]string{filepath.Join(dir, "**", "*.yml"), filepath.Join(dir, "nested", "bad.yml")})
	require.NoError(t, err)
	require.Len(t, docs, 1)

	_, err = Collect([]string{filepath.Join(dir, "notes.txt")})
	assert.Error(t, err)
}

func TestExportReservedTypeNames(t *testing.T) {
	cfg := network.Configuration{
		Nodes: []network.Node{
			{ID: "a", Type: "properties", Properties: network.Properties{"temperature": 300.0}},
			{ID: "b", Type: "id", Properties: network.Properties{}},
			{ID: "c", Type: "source", Properties: network.Properties{}},
		},
		Connections: []network.Connection{
			{ID: "w", Type: "target", Source: "a", Target: "b", Properties: network.Properties{}},
		},
	}

	text, err := Export(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(text), "type: properties")
	assert.Contains(t, string(text), "type: target")

	back, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, back.Nodes, 3)
	assert.Equal(t, network.Kind("properties"), back.Nodes[0].Type)
	assert.Equal(t, 300.0, back.Nodes[0].Properties["temperature"])
	assert.Equal(t, network.Kind("id"), back.Nodes[1].Type)
	assert.Equal(t, network.Kind("source"), back.Nodes[2].Type)
	assert.Equal(t, network.Kind("target"), back.Connections[0].Type)
	assert.Equal(t, "a", back.Connections[0].Source)
}
