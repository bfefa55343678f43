// Package selection tracks the one graph element the user has picked.
package selection

import (
	"sync"

	"github.com/boulder-sim/boulder/internal/network"
)

// ElementKind says whether a selection is a node or an edge.
type ElementKind string

const (
	KindNode ElementKind = "node"
	KindEdge ElementKind = "edge"
)

// Element identifies the selected node or connection. Type carries the
// component kind so consumers can filter without a model lookup.
type Element struct {
	Kind ElementKind  `json:"kind"`
	ID   string       `json:"id"`
	Type network.Kind `json:"type"`
}

// Key is a stable string for the element, unique across kinds.
func (e Element) Key() string {
	return string(e.Kind) + ":" + e.ID
}

// PluginType maps the element to the element-type vocabulary output panes
// declare support for.
func (e Element) PluginType() string {
	if e.Kind == KindEdge {
		return "connection"
	}
	return "reactor"
}

// Store holds at most one selected element.
type Store struct {
	mu      sync.RWMutex
	current *Element
	subs    map[int]func(*Element)
	nextSub int
}

func NewStore() *Store {
	return &Store{subs: make(map[int]func(*Element))}
}

// Current returns the selection, or false when nothing is selected.
func (s *Store) Current() (Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Element{}, false
	}
	return *s.current, true
}

// Select replaces the selection. Selecting the element already selected
// does not notify.
func (s *Store) Select(e Element) {
	s.mu.Lock()
	if s.current != nil && *s.current == e {
		s.mu.Unlock()
		return
	}
	sel := e
	s.current = &sel
	subs := s.subscribers()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(&sel)
	}
}

// Clear drops the selection.
func (s *Store) Clear() {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return
	}
	s.current = nil
	subs := s.subscribers()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(nil)
	}
}

// Prune clears the selection when it names an element no longer in cfg,
// which is how a cascading delete reaches it.
func (s *Store) Prune(cfg network.Configuration) {
	cur, ok := s.Current()
	if !ok {
		return
	}
	var exists bool
	switch cur.Kind {
	case KindNode:
		_, exists = cfg.Node(cur.ID)
	case KindEdge:
		_, exists = cfg.Connection(cur.ID)
	}
	if !exists {
		s.Clear()
	}
}

// Subscribe registers fn for selection changes; nil means cleared.
func (s *Store) Subscribe(fn func(*Element)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) subscribers() []func(*Element) {
	out := make([]func(*Element), 0, len(s.subs))
	for i := 0; i < s.nextSub; i++ {
		if fn, ok := s.subs[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}
