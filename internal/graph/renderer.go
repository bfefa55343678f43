package graph

import (
	"sync"

	"github.com/boulder-sim/boulder/internal/network"
)

// Renderer keeps a scene and layout in step with a network store. The
// layout is recomputed only when elements are added or removed; property
// edits just re-project colours and labels.
type Renderer struct {
	mu      sync.RWMutex
	store   *network.Store
	spacing Spacing
	scene   Scene
	layout  Layout
	layouts int
	cancel  func()
}

// NewRenderer subscribes to store and builds the initial projection.
func NewRenderer(store *network.Store, sp Spacing) *Renderer {
	r := &Renderer{store: store, spacing: sp}
	r.rebuild(true)
	r.cancel = store.Subscribe(func(c network.Change) {
		r.rebuild(c.Structural())
	})
	return r
}

// Scene returns the current projection.
func (r *Renderer) Scene() Scene {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.scene
}

// Layout returns the current node placement.
func (r *Renderer) Layout() Layout {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.layout
}

// LayoutCount reports how many times the layout has been computed.
func (r *Renderer) LayoutCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.layouts
}

// Close detaches the renderer from its store.
func (r *Renderer) Close() {
	if r.cancel != nil {
		r.cancel()
	}
}

func (r *Renderer) rebuild(structural bool) {
	cfg := r.store.Snapshot()
	scene := Project(cfg)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.scene = scene
	if structural {
		r.layout = ComputeLayout(cfg, r.spacing)
		r.layouts++
	}
}
