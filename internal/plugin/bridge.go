package plugin

import (
	"context"
	"fmt"
	"sync"

	"github.com/boulder-sim/boulder/internal/network"
	"github.com/boulder-sim/boulder/internal/selection"
	"github.com/boulder-sim/boulder/internal/simulation"
	"github.com/boulder-sim/boulder/pkg/log"
)

// Renderer performs one render call against the plugin backend.
type Renderer interface {
	Render(ctx context.Context, id string, c Context) (*Result, error)
}

// Inputs are the dependencies a pane is rendered from.
type Inputs struct {
	ResultsID     string
	Results       *simulation.Results
	Config        *network.Configuration
	ConfigVersion uint64
	Theme         string
	Selection     *selection.Element
}

// Ticket identifies one issued render request.
type Ticket struct {
	Plugin  string
	Key     string
	Context Context
}

type cached struct {
	key    string
	result Result
}

// Bridge decides when a pane must be re-rendered. A request is issued at
// most once per context key, and never while another one for the same
// pane is still in flight.
type Bridge struct {
	mu       sync.Mutex
	descs    []Descriptor
	cache    map[string]cached
	inflight map[string]string
	wanted   map[string]string
}

func NewBridge() *Bridge {
	return &Bridge{
		cache:    make(map[string]cached),
		inflight: make(map[string]string),
		wanted:   make(map[string]string),
	}
}

// SetDescriptors replaces the discovered panes. Cached results of panes
// that disappeared are dropped.
func (b *Bridge) SetDescriptors(descs []Descriptor) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.descs = append([]Descriptor(nil), descs...)
	keep := make(map[string]bool, len(descs))
	for _, d := range descs {
		keep[d.ID] = true
	}
	for id := range b.cache {
		if !keep[id] {
			delete(b.cache, id)
		}
	}
}

// Descriptors returns the discovered panes in discovery order.
func (b *Bridge) Descriptors() []Descriptor {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Descriptor(nil), b.descs...)
}

// Descriptor looks a pane up by id.
func (b *Bridge) Descriptor(id string) (Descriptor, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, d := range b.descs {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// CacheKey derives the identity of a render context. The selection only
// takes part when the pane requires one.
func CacheKey(d Descriptor, in Inputs) string {
	results := "none"
	if in.Results != nil {
		results = in.ResultsID
		if results == "" {
			results = "anonymous"
		}
	}
	sel := "-"
	if d.RequiresSelection && in.Selection != nil {
		sel = in.Selection.Key()
	}
	return fmt.Sprintf("%s|results:%s|%s|cfg:%d|sel:%s", d.ID, results, in.Theme, in.ConfigVersion, sel)
}

// Request returns a ticket when pane id needs rendering for in. It
// returns false when the result for this key is already cached or a
// request for the pane is in flight.
func (b *Bridge) Request(id string, in Inputs) (Ticket, bool) {
	d, ok := b.Descriptor(id)
	if !ok {
		return Ticket{}, false
	}
	key := CacheKey(d, in)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.wanted[id] = key
	if c, ok := b.cache[id]; ok && c.key == key {
		return Ticket{}, false
	}
	if _, busy := b.inflight[id]; busy {
		return Ticket{}, false
	}
	b.inflight[id] = key
	return Ticket{Plugin: id, Key: key, Context: buildContext(d, in)}, true
}

// Execute performs the render for t through r and resolves it. Failures
// become an unavailable result so one broken pane never blocks the others.
func (b *Bridge) Execute(ctx context.Context, r Renderer, t Ticket) (Result, bool) {
	res, err := r.Render(ctx, t.Plugin, t.Context)
	var out Result
	switch {
	case err != nil:
		log.Warn("plugin render failed", "plugin", t.Plugin, "error", err)
		out = Result{Available: false, Message: err.Error()}
	case res == nil:
		out = Result{Available: false, Message: "empty response"}
	default:
		out = *res
	}
	return out, b.Resolve(t, out)
}

// Resolve stores the outcome of t. It reports whether the inputs moved on
// while t was in flight, in which case the caller should Request again.
func (b *Bridge) Resolve(t Ticket, res Result) (again bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inflight[t.Plugin] == t.Key {
		delete(b.inflight, t.Plugin)
	}
	b.cache[t.Plugin] = cached{key: t.Key, result: res}
	return b.wanted[t.Plugin] != t.Key
}

// Result returns the last render of pane id.
func (b *Bridge) Result(id string) (Result, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.cache[id]
	return c.result, ok
}

// InFlight reports whether pane id is being rendered.
func (b *Bridge) InFlight(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.inflight[id]
	return ok
}

// Invalidate drops every cached result so the next Request re-renders.
func (b *Bridge) Invalidate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cache = make(map[string]cached)
}

func buildContext(d Descriptor, in Inputs) Context {
	c := Context{SimulationData: in.Results, Config: in.Config, Theme: in.Theme}
	if c.Theme == "" {
		c.Theme = "light"
	}
	if d.RequiresSelection && in.Selection != nil {
		var cfg network.Configuration
		if in.Config != nil {
			cfg = *in.Config
		}
		el := ElementFrom(*in.Selection, cfg)
		c.SelectedElement = &el
	}
	return c
}
