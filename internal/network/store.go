package network

import (
	"strings"
	"sync"
)

// Op identifies the kind of change a Store applied.
type Op string

const (
	OpReplace Op = "replace"
	OpReset   Op = "reset"
	OpAdd     Op = "add"
	OpUpdate  Op = "update"
	OpRemove  Op = "remove"
)

// Change describes one successful mutation. Cascaded lists the connection
// ids removed along with a node.
type Change struct {
	Op       Op
	Entity   Entity
	ID       string
	Cascaded []string
	Version  uint64
}

// Structural reports whether the change added or removed graph elements,
// which is when a layout has to be recomputed.
func (c Change) Structural() bool {
	return c.Op != OpUpdate
}

// Store is the single source of truth for the network being edited. Every
// successful mutation bumps the version and synchronously notifies
// subscribers after the new state is readable.
type Store struct {
	mu         sync.RWMutex
	cfg        Configuration
	sourceName string
	sourceText string
	version    uint64
	subs       map[int]func(Change)
	nextSub    int
}

// NewStore returns a store holding an empty configuration.
func NewStore() *Store {
	return &Store{
		cfg:  Empty(),
		subs: make(map[int]func(Change)),
	}
}

// Subscribe registers fn for every future change. The returned function
// removes the subscription; calling it more than once is harmless.
func (s *Store) Subscribe(fn func(Change)) (cancel func()) {
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

// Snapshot returns a deep copy of the current configuration.
func (s *Store) Snapshot() Configuration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// Version increases on every successful mutation.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Source returns the file name and original text the configuration was
// loaded from, if any.
func (s *Store) Source() (name, text string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sourceName, s.sourceText
}

// Node returns a copy of the node with the given id.
func (s *Store) Node(id string) (Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.cfg.Node(id)
	if !ok {
		return Node{}, false
	}
	return n.Clone(), true
}

// Connection returns a copy of the connection with the given id.
func (s *Store) Connection(id string) (Connection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cfg.Connection(id)
	if !ok {
		return Connection{}, false
	}
	return c.Clone(), true
}

// SetConfiguration replaces the whole model. It always succeeds.
func (s *Store) SetConfiguration(cfg Configuration, sourceName, sourceText string) {
	next := cfg.Clone()
	if next.Nodes == nil {
		next.Nodes = []Node{}
	}
	if next.Connections == nil {
		next.Connections = []Connection{}
	}
	for i := range next.Nodes {
		next.Nodes[i].Properties = NormalizeProperties(next.Nodes[i].Properties)
	}
	for i := range next.Connections {
		next.Connections[i].Properties = NormalizeProperties(next.Connections[i].Properties)
	}

	s.commit(Change{Op: OpReplace}, func() {
		s.cfg = next
		s.sourceName = sourceName
		s.sourceText = sourceText
	})
}

// ResetConfiguration restores the empty configuration and forgets the
// source file.
func (s *Store) ResetConfiguration() {
	s.commit(Change{Op: OpReset}, func() {
		s.cfg = Empty()
		s.sourceName = ""
		s.sourceText = ""
	})
}

// AddNode appends node, keeping insertion order.
func (s *Store) AddNode(node Node) error {
	node.ID = strings.TrimSpace(node.ID)
	if node.ID == "" {
		return invalid(EntityNode, "", "id", "is required")
	}
	if strings.TrimSpace(string(node.Type)) == "" {
		return invalid(EntityNode, node.ID, "type", "is required")
	}
	props, err := CoerceProperties(EntityNode, node.ID, node.Properties)
	if err != nil {
		return err
	}
	node.Properties = props
	node.Metadata = cloneMap(node.Metadata)

	return s.mutate(Change{Op: OpAdd, Entity: EntityNode, ID: node.ID}, func(cfg *Configuration, _ *Change) error {
		if _, exists := cfg.Node(node.ID); exists {
			return duplicate(EntityNode, node.ID)
		}
		cfg.Nodes = append(cfg.Nodes, node)
		return nil
	})
}

// UpdateNode merges partial into the node's properties. The id and type
// never change through this path.
func (s *Store) UpdateNode(id string, partial Properties) error {
	props, err := CoerceProperties(EntityNode, id, partial)
	if err != nil {
		return err
	}

	return s.mutate(Change{Op: OpUpdate, Entity: EntityNode, ID: id}, func(cfg *Configuration, _ *Change) error {
		for i := range cfg.Nodes {
			if cfg.Nodes[i].ID != id {
				continue
			}
			merged := cfg.Nodes[i].Properties.Clone()
			for k, v := range props {
				merged[k] = v
			}
			cfg.Nodes[i].Properties = merged
			return nil
		}
		return notFound(EntityNode, id)
	})
}

// RemoveNode deletes the node and every connection touching it. Removing
// an unknown id returns ErrNotFound and changes nothing.
func (s *Store) RemoveNode(id string) error {
	return s.mutate(Change{Op: OpRemove, Entity: EntityNode, ID: id}, func(cfg *Configuration, change *Change) error {
		idx := -1
		for i, n := range cfg.Nodes {
			if n.ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return notFound(EntityNode, id)
		}
		cfg.Nodes = append(cfg.Nodes[:idx:idx], cfg.Nodes[idx+1:]...)

		kept := make([]Connection, 0, len(cfg.Connections))
		for _, c := range cfg.Connections {
			if c.Source == id || c.Target == id {
				change.Cascaded = append(change.Cascaded, c.ID)
				continue
			}
			kept = append(kept, c)
		}
		cfg.Connections = kept
		return nil
	})
}

// AddConnection appends conn after checking its id and both endpoints.
func (s *Store) AddConnection(conn Connection) error {
	conn.ID = strings.TrimSpace(conn.ID)
	conn.Source = strings.TrimSpace(conn.Source)
	conn.Target = strings.TrimSpace(conn.Target)
	if conn.ID == "" {
		return invalid(EntityConnection, "", "id", "is required")
	}
	if strings.TrimSpace(string(conn.Type)) == "" {
		return invalid(EntityConnection, conn.ID, "type", "is required")
	}
	if conn.Source == conn.Target {
		return reference(conn.ID, "target", "source and target must differ")
	}
	props, err := CoerceProperties(EntityConnection, conn.ID, conn.Properties)
	if err != nil {
		return err
	}
	conn.Properties = props
	conn.Metadata = cloneMap(conn.Metadata)

	return s.mutate(Change{Op: OpAdd, Entity: EntityConnection, ID: conn.ID}, func(cfg *Configuration, _ *Change) error {
		if _, exists := cfg.Connection(conn.ID); exists {
			return duplicate(EntityConnection, conn.ID)
		}
		if _, ok := cfg.Node(conn.Source); !ok {
			return reference(conn.ID, "source", "node "+quote(conn.Source)+" does not exist")
		}
		if _, ok := cfg.Node(conn.Target); !ok {
			return reference(conn.ID, "target", "node "+quote(conn.Target)+" does not exist")
		}
		cfg.Connections = append(cfg.Connections, conn)
		return nil
	})
}

// UpdateConnection merges partial into the connection's properties.
func (s *Store) UpdateConnection(id string, partial Properties) error {
	props, err := CoerceProperties(EntityConnection, id, partial)
	if err != nil {
		return err
	}

	return s.mutate(Change{Op: OpUpdate, Entity: EntityConnection, ID: id}, func(cfg *Configuration, _ *Change) error {
		for i := range cfg.Connections {
			if cfg.Connections[i].ID != id {
				continue
			}
			merged := cfg.Connections[i].Properties.Clone()
			for k, v := range props {
				merged[k] = v
			}
			cfg.Connections[i].Properties = merged
			return nil
		}
		return notFound(EntityConnection, id)
	})
}

// ReplaceConnectionProperties swaps the whole property set, which is how a
// key can be renamed (flow_rate becoming mass_flow_rate, for instance).
func (s *Store) ReplaceConnectionProperties(id string, props Properties) error {
	coerced, err := CoerceProperties(EntityConnection, id, props)
	if err != nil {
		return err
	}

	return s.mutate(Change{Op: OpUpdate, Entity: EntityConnection, ID: id}, func(cfg *Configuration, _ *Change) error {
		for i := range cfg.Connections {
			if cfg.Connections[i].ID == id {
				cfg.Connections[i].Properties = coerced
				return nil
			}
		}
		return notFound(EntityConnection, id)
	})
}

// RemoveConnection deletes one connection. Removing an unknown id returns
// ErrNotFound and changes nothing.
func (s *Store) RemoveConnection(id string) error {
	return s.mutate(Change{Op: OpRemove, Entity: EntityConnection, ID: id}, func(cfg *Configuration, _ *Change) error {
		for i, c := range cfg.Connections {
			if c.ID == id {
				cfg.Connections = append(cfg.Connections[:i:i], cfg.Connections[i+1:]...)
				return nil
			}
		}
		return notFound(EntityConnection, id)
	})
}

// mutate applies fn to a working copy and only installs it when fn
// succeeds, so a failed mutation leaves the model exactly as it was.
func (s *Store) mutate(change Change, fn func(*Configuration, *Change) error) error {
	s.mu.Lock()
	work := s.cfg
	work.Nodes = append([]Node(nil), s.cfg.Nodes...)
	work.Connections = append([]Connection(nil), s.cfg.Connections...)
	if err := fn(&work, &change); err != nil {
		s.mu.Unlock()
		return err
	}
	s.cfg = work
	s.version++
	change.Version = s.version
	subs := s.subscribers()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(change)
	}
	return nil
}

func (s *Store) commit(change Change, apply func()) {
	s.mu.Lock()
	apply()
	s.version++
	change.Version = s.version
	subs := s.subscribers()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(change)
	}
}

func (s *Store) subscribers() []func(Change) {
	out := make([]func(Change), 0, len(s.subs))
	for i := 0; i < s.nextSub; i++ {
		if fn, ok := s.subs[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func quote(s string) string { return `"` + s + `"` }
