package plugin

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boulder-sim/boulder/internal/network"
	"github.com/boulder-sim/boulder/internal/simulation"
)

type panicPane struct{}

func (panicPane) Descriptor() Descriptor           { return Descriptor{ID: "boom", Label: "Boom"} }
func (panicPane) Available(Context) bool           { return true }
func (panicPane) Render(Context) (*Payload, error) { panic("kaboom") }

type failingPane struct{}

func (failingPane) Descriptor() Descriptor           { return Descriptor{ID: "fail", Label: "Fail"} }
func (failingPane) Available(Context) bool           { return true }
func (failingPane) Render(Context) (*Payload, error) { return nil, errors.New("no data") }

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := Builtins()
	err := r.Register(NetworkPane{})
	assert.ErrorIs(t, err, ErrDuplicatePlugin)

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "network", list[0].ID)
	assert.Equal(t, []string{"reactor"}, list[0].SupportedElementTypes)
	assert.True(t, list[1].RequiresSelection)
}

func TestRenderUnknown(t *testing.T) {
	_, err := Builtins().Render("ghost", Context{})
	assert.ErrorIs(t, err, ErrUnknownPlugin)
}

func TestRenderRequiresSelection(t *testing.T) {
	r := Builtins()
	res, err := r.Render("reactor-state", Context{})
	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Equal(t, UnavailableMessage, res.Message)

	res, err = r.Render("reactor-state", Context{SelectedElement: &Element{Type: ElementConnection, ID: "mfc1"}})
	require.NoError(t, err)
	assert.False(t, res.Available)
}

func TestReactorStatePane(t *testing.T) {
	r := Builtins()
	sel := &Element{Type: ElementReactor, ID: "r1"}

	res, err := r.Render("reactor-state", Context{SelectedElement: sel})
	require.NoError(t, err)
	require.True(t, res.Available)
	assert.Equal(t, PayloadText, res.Data.Type)
	assert.Contains(t, res.Data.Content, "run simulation first")

	data := &simulation.Results{Progress: simulation.Progress{
		Times: []float64{0, 1},
		ReactorsSeries: map[string]simulation.Series{"r1": {
			T: []float64{1000, 1500}, P: []float64{101325, 101325},
			X: map[string][]float64{"CO2": {0, 0.1}, "H2O": {0, 0.2}, "AR": {0, 1e-9}},
		}},
	}}
	res, err = r.Render("reactor-state", Context{SelectedElement: sel, SimulationData: data})
	require.NoError(t, err)
	require.Equal(t, PayloadTable, res.Data.Type)
	require.Len(t, res.Data.Rows, 5)
	assert.Equal(t, "X H2O", res.Data.Rows[3][0])
	assert.Equal(t, "X CO2", res.Data.Rows[4][0])
}

func TestNetworkPane(t *testing.T) {
	store := network.NewStore()
	require.NoError(t, store.AddNode(network.Node{ID: "r1", Type: network.IdealGasReactor, Properties: network.Properties{"temperature": 1000.0}}))
	require.NoError(t, store.AddNode(network.Node{ID: "r2", Type: network.Reservoir}))
	require.NoError(t, store.AddConnection(network.Connection{ID: "mfc1", Type: network.MassFlowController, Source: "r2", Target: "r1",
		Properties: network.Properties{"mass_flow_rate": 0.1}}))
	cfg := store.Snapshot()

	r := Builtins()
	res, err := r.Render("network", Context{})
	require.NoError(t, err)
	assert.False(t, res.Available)

	res, err = r.Render("network", Context{Config: &cfg})
	require.NoError(t, err)
	require.True(t, res.Available)
	require.Equal(t, PayloadGrid, res.Data.Type)
	require.Len(t, res.Data.Items, 2)
	assert.Len(t, res.Data.Items[0].Rows, 2)
	assert.Equal(t, "mfc1", res.Data.Items[1].Rows[0][0])
}

func TestRenderContainsFailures(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(panicPane{}))
	require.NoError(t, r.Register(failingPane{}))

	res, err := r.Render("boom", Context{})
	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Contains(t, res.Message, "kaboom")

	res, err = r.Render("fail", Context{})
	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Equal(t, "no data", res.Message)
}
