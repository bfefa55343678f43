package plugin

import (
	"errors"
	"fmt"
	"sync"

	"github.com/boulder-sim/boulder/pkg/log"
)

var (
	ErrDuplicatePlugin = errors.New("plugin already registered")
	ErrUnknownPlugin   = errors.New("plugin not found")
)

// Pane is a server-hosted output pane.
type Pane interface {
	Descriptor() Descriptor
	// Available may refine the default rule; most panes return
	// Available(p.Descriptor(), c).
	Available(c Context) bool
	Render(c Context) (*Payload, error)
}

// Registry holds panes in registration order.
type Registry struct {
	mu    sync.RWMutex
	panes []Pane
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds p. Ids must be unique.
func (r *Registry) Register(p Pane) error {
	d := p.Descriptor()
	if d.ID == "" {
		return fmt.Errorf("plugin id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.panes {
		if existing.Descriptor().ID == d.ID {
			return fmt.Errorf("%w: %q", ErrDuplicatePlugin, d.ID)
		}
	}
	r.panes = append(r.panes, p)
	return nil
}

// List returns every descriptor, with element types defaulted.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.panes))
	for _, p := range r.panes {
		d := p.Descriptor()
		d.SupportedElementTypes = d.ElementTypes()
		out = append(out, d)
	}
	return out
}

func (r *Registry) Get(id string) (Pane, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.panes {
		if p.Descriptor().ID == id {
			return p, true
		}
	}
	return nil, false
}

// Render renders pane id for c. A pane that declines the context, fails
// or panics yields an unavailable result rather than an error; only an
// unknown id is an error.
func (r *Registry) Render(id string, c Context) (res Result, err error) {
	p, ok := r.Get(id)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownPlugin, id)
	}
	if !p.Available(c) {
		return Result{Available: false, Message: UnavailableMessage}, nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("plugin panicked", "plugin", id, "panic", rec)
			res, err = Result{Available: false, Message: fmt.Sprintf("plugin %s crashed: %v", id, rec)}, nil
		}
	}()

	data, rerr := p.Render(c)
	if rerr != nil {
		log.Warn("plugin render failed", "plugin", id, "error", rerr)
		return Result{Available: false, Message: rerr.Error()}, nil
	}
	return Result{Available: true, Data: data}, nil
}
