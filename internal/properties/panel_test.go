package properties

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boulder-sim/boulder/internal/network"
	"github.com/boulder-sim/boulder/internal/selection"
)

func seeded(t *testing.T) *network.Store {
	t.Helper()
	s := network.NewStore()
	require.NoError(t, s.AddNode(network.Node{ID: "r1", Type: network.IdealGasReactor, Properties: network.Properties{
		"temperature": 1000.0, "pressure": 101325.0, "composition": "CH4:1,O2:2,N2:7.52", "volume": 0.001,
	}}))
	require.NoError(t, s.AddNode(network.Node{ID: "res1", Type: network.Reservoir, Properties: network.Properties{
		"temperature": 300.0, "composition": "O2:1,N2:3.76",
	}}))
	require.NoError(t, s.AddConnection(network.Connection{ID: "mfc1", Type: network.MassFlowController, Source: "res1", Target: "r1",
		Properties: network.Properties{"mass_flow_rate": 0.1}}))
	return s
}

var (
	r1   = selection.Element{Kind: selection.KindNode, ID: "r1", Type: network.IdealGasReactor}
	mfc1 = selection.Element{Kind: selection.KindEdge, ID: "mfc1", Type: network.MassFlowController}
)

func fieldMap(fields []Field) map[string]Field {
	out := make(map[string]Field, len(fields))
	for _, f := range fields {
		out[f.Key] = f
	}
	return out
}

func TestViewReadsFullPropertySet(t *testing.T) {
	p := NewPanel(seeded(t))

	v, err := p.View(r1)
	require.NoError(t, err)
	assert.Equal(t, "r1 (IdealGasReactor)", v.Title())
	require.Len(t, v.Fields, 4)
	assert.Equal(t, []string{"composition", "pressure", "temperature", "volume"},
		[]string{v.Fields[0].Key, v.Fields[1].Key, v.Fields[2].Key, v.Fields[3].Key})

	fields := fieldMap(v.Fields)
	assert.Equal(t, "726.85", fields["temperature"].Value)
	assert.Equal(t, "temperature (°C)", fields["temperature"].Label)
	assert.Equal(t, "pressure (Pa)", fields["pressure"].Label)

	v, err = p.View(mfc1)
	require.NoError(t, err)
	assert.Equal(t, "res1", v.Source)
	assert.Equal(t, "r1", v.Target)
	assert.Equal(t, "0.1", fieldMap(v.Fields)["mass_flow_rate"].Value)
}

func TestViewUnknownElement(t *testing.T) {
	p := NewPanel(seeded(t))
	_, err := p.View(selection.Element{Kind: selection.KindNode, ID: "ghost"})
	assert.True(t, errors.Is(err, network.ErrNotFound))
}

func TestSaveConvertsTemperatureBackToKelvin(t *testing.T) {
	s := seeded(t)
	p := NewPanel(s)

	require.NoError(t, p.BeginEdit(r1))
	_, editing := p.Editing()
	require.True(t, editing)
	assert.Equal(t, "726.85", fieldMap(p.Form())["temperature"].Value)

	require.NoError(t, p.SetField("temperature", "26.85"))
	require.NoError(t, p.SetField("note", "preheated"))
	require.NoError(t, p.Save())

	_, editing = p.Editing()
	assert.False(t, editing)

	n, _ := s.Node("r1")
	temp, _ := n.Properties.Float("temperature")
	assert.InDelta(t, 300.0, temp, 1e-9)
	press, _ := n.Properties.Float("pressure")
	assert.InDelta(t, 101325.0, press, 1e-9)
	assert.Equal(t, "preheated", n.Properties["note"])
}

func TestSaveAcceptsUnitSuffix(t *testing.T) {
	s := seeded(t)
	p := NewPanel(s)
	require.NoError(t, p.BeginEdit(r1))
	require.NoError(t, p.SetField("pressure", "2 atm"))
	require.NoError(t, p.Save())

	n, _ := s.Node("r1")
	press, _ := n.Properties.Float("pressure")
	assert.InDelta(t, 202650.0, press, 1e-6)
}

func TestSaveFailureKeepsFormAndModel(t *testing.T) {
	s := seeded(t)
	p := NewPanel(s)
	before := s.Snapshot()

	require.NoError(t, p.BeginEdit(r1))
	require.NoError(t, p.SetField("pressure", "lots"))
	err := p.Save()

	var nerr *network.Error
	require.True(t, errors.As(err, &nerr))
	assert.Equal(t, "pressure", nerr.Field)
	assert.True(t, errors.Is(err, network.ErrValidation))

	_, editing := p.Editing()
	assert.True(t, editing)
	assert.Equal(t, "lots", fieldMap(p.Form())["pressure"].Value)
	assert.Equal(t, before, s.Snapshot())
}

func TestSaveRenamesFlowRateOnMassFlowController(t *testing.T) {
	s := seeded(t)
	p := NewPanel(s)

	require.NoError(t, p.BeginEdit(mfc1))
	require.NoError(t, p.SetField("flow_rate", "0.25"))
	require.NoError(t, p.Save())

	c, _ := s.Connection("mfc1")
	_, stale := c.Properties["flow_rate"]
	assert.False(t, stale)
	rate, _ := c.Properties.Float("mass_flow_rate")
	assert.Equal(t, 0.25, rate)
}

func TestFormOperationsOutsideEditMode(t *testing.T) {
	p := NewPanel(seeded(t))
	assert.Nil(t, p.Form())
	assert.ErrorIs(t, p.SetField("pressure", "1"), ErrNotEditing)
	assert.ErrorIs(t, p.Save(), ErrNotEditing)
}

func TestCancelDiscardsEdits(t *testing.T) {
	s := seeded(t)
	p := NewPanel(s)
	require.NoError(t, p.BeginEdit(r1))
	require.NoError(t, p.SetField("pressure", "1"))
	p.Cancel()

	n, _ := s.Node("r1")
	press, _ := n.Properties.Float("pressure")
	assert.Equal(t, 101325.0, press)
}

func TestDeleteCascadesAndClearsSelection(t *testing.T) {
	s := seeded(t)
	p := NewPanel(s)
	sel := selection.NewStore()
	sel.Select(r1)

	require.NoError(t, p.BeginEdit(r1))
	require.NoError(t, p.Delete(r1, sel))

	cfg := s.Snapshot()
	assert.Len(t, cfg.Nodes, 1)
	assert.Empty(t, cfg.Connections)
	_, selected := sel.Current()
	assert.False(t, selected)
	_, editing := p.Editing()
	assert.False(t, editing)
}

func TestDeleteConnection(t *testing.T) {
	s := seeded(t)
	p := NewPanel(s)
	require.NoError(t, p.Delete(mfc1, nil))
	assert.Empty(t, s.Snapshot().Connections)
	assert.ErrorIs(t, p.Delete(mfc1, nil), network.ErrNotFound)
}
