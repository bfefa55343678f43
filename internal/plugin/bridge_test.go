package plugin

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boulder-sim/boulder/internal/network"
	"github.com/boulder-sim/boulder/internal/selection"
	"github.com/boulder-sim/boulder/internal/simulation"
)

type countingRenderer struct {
	mu    sync.Mutex
	calls map[string]int
	last  Context
	err   error
}

func (r *countingRenderer) Render(_ context.Context, id string, c Context) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = map[string]int{}
	}
	r.calls[id]++
	r.last = c
	if r.err != nil {
		return nil, r.err
	}
	return &Result{Available: true, Data: Text(id)}, nil
}

func newBridge() *Bridge {
	b := NewBridge()
	b.SetDescriptors([]Descriptor{
		{ID: "network", Label: "Network"},
		{ID: "reactor-state", Label: "Reactor State", RequiresSelection: true, SupportedElementTypes: []string{"reactor"}},
	})
	return b
}

func TestCacheKey(t *testing.T) {
	sel := &selection.Element{Kind: selection.KindNode, ID: "r1"}
	res := &simulation.Results{}
	plain := Descriptor{ID: "network"}
	needy := Descriptor{ID: "reactor-state", RequiresSelection: true}

	assert.Equal(t, "network|results:none|dark|cfg:3|sel:-", CacheKey(plain, Inputs{Theme: "dark", ConfigVersion: 3, Selection: sel}))
	assert.Equal(t, "reactor-state|results:sim-1|light|cfg:0|sel:node:r1",
		CacheKey(needy, Inputs{Theme: "light", Results: res, ResultsID: "sim-1", Selection: sel}))
}

func TestIdenticalContextNotRequestedTwice(t *testing.T) {
	b := newBridge()
	r := &countingRenderer{}
	in := Inputs{Theme: "dark"}

	tk, ok := b.Request("network", in)
	require.True(t, ok)
	_, again := b.Execute(context.Background(), r, tk)
	assert.False(t, again)

	_, ok = b.Request("network", in)
	assert.False(t, ok)
	assert.Equal(t, 1, r.calls["network"])

	res, ok := b.Result("network")
	require.True(t, ok)
	assert.True(t, res.Available)
}

func TestInFlightNotDuplicated(t *testing.T) {
	b := newBridge()
	first, ok := b.Request("network", Inputs{Theme: "dark"})
	require.True(t, ok)
	assert.True(t, b.InFlight("network"))

	_, ok = b.Request("network", Inputs{Theme: "dark"})
	assert.False(t, ok)
	_, ok = b.Request("network", Inputs{Theme: "light"})
	assert.False(t, ok, "pane already busy")

	again := b.Resolve(first, Result{Available: true})
	assert.True(t, again, "inputs changed while in flight")
	assert.False(t, b.InFlight("network"))

	next, ok := b.Request("network", Inputs{Theme: "light"})
	require.True(t, ok)
	assert.Equal(t, "light", next.Context.Theme)
}

func TestSelectionOnlySentWhenRequired(t *testing.T) {
	b := newBridge()
	store := network.NewStore()
	require.NoError(t, store.AddNode(network.Node{ID: "r1", Type: network.IdealGasReactor, Properties: network.Properties{"temperature": 1000.0}}))
	cfg := store.Snapshot()
	sel := &selection.Element{Kind: selection.KindNode, ID: "r1", Type: network.IdealGasReactor}

	tk, ok := b.Request("network", Inputs{Config: &cfg, Selection: sel})
	require.True(t, ok)
	assert.Nil(t, tk.Context.SelectedElement)
	assert.Equal(t, "light", tk.Context.Theme)

	tk, ok = b.Request("reactor-state", Inputs{Config: &cfg, Selection: sel})
	require.True(t, ok)
	require.NotNil(t, tk.Context.SelectedElement)
	assert.Equal(t, "reactor", tk.Context.SelectedElement.Type)
	assert.Equal(t, 1000.0, tk.Context.SelectedElement.Properties["temperature"])

	b.Resolve(tk, Result{Available: true})
	_, ok = b.Request("reactor-state", Inputs{Config: &cfg, Selection: &selection.Element{Kind: selection.KindNode, ID: "r2"}})
	assert.True(t, ok, "new selection is a new context")
}

func TestRenderFailureContained(t *testing.T) {
	b := newBridge()
	r := &countingRenderer{err: errors.New("backend exploded")}

	tk, ok := b.Request("network", Inputs{})
	require.True(t, ok)
	res, _ := b.Execute(context.Background(), r, tk)
	assert.False(t, res.Available)
	assert.Equal(t, "backend exploded", res.Message)

	other, ok := b.Request("reactor-state", Inputs{})
	assert.True(t, ok)
	assert.Equal(t, "reactor-state", other.Plugin)
}

func TestUnknownPluginIgnored(t *testing.T) {
	b := newBridge()
	_, ok := b.Request("ghost", Inputs{})
	assert.False(t, ok)
}

func TestSetDescriptorsDropsStaleCache(t *testing.T) {
	b := newBridge()
	tk, _ := b.Request("network", Inputs{})
	b.Resolve(tk, Result{Available: true})

	b.SetDescriptors([]Descriptor{{ID: "reactor-state"}})
	_, ok := b.Result("network")
	assert.False(t, ok)
	assert.Len(t, b.Descriptors(), 1)
}
