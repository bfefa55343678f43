// Package network holds the in-memory reactor network: nodes (reactors and
// reservoirs), directed flow connections between them, and the opaque
// configuration blocks that travel with them.
package network

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind discriminates node and connection variants.
type Kind string

const (
	IdealGasReactor              Kind = "IdealGasReactor"
	IdealGasConstPressureReactor Kind = "IdealGasConstPressureReactor"
	IdealGasMoleReactor          Kind = "IdealGasMoleReactor"
	ConstPressureReactor         Kind = "ConstPressureReactor"
	Reactor                      Kind = "Reactor"
	Reservoir                    Kind = "Reservoir"

	MassFlowController Kind = "MassFlowController"
	Valve              Kind = "Valve"
	PressureController Kind = "PressureController"
	Wall               Kind = "Wall"
)

// IsReservoir reports whether k is a fixed-state reservoir.
func (k Kind) IsReservoir() bool { return k == Reservoir }

// IsReactor reports whether k integrates a state over time. Unknown kinds
// ending in "Reactor" count, so plugin-defined reactors behave.
func (k Kind) IsReactor() bool {
	return k != Reservoir && strings.HasSuffix(string(k), "Reactor")
}

// CarriesFlow reports whether k moves mass between its endpoints.
func (k Kind) CarriesFlow() bool {
	switch k {
	case MassFlowController, Valve, PressureController:
		return true
	}
	return false
}

// Properties is the open property bag of a node or connection. Values are
// float64, string, bool or nested JSON-like data.
type Properties map[string]any

// Float returns the numeric value stored under key.
func (p Properties) Float(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

// String returns the value stored under key rendered as text.
func (p Properties) String(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}

// Keys returns the property names in sorted order.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of p.
func (p Properties) Clone() Properties {
	if p == nil {
		return Properties{}
	}
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

// Group returns the visual cluster a node belongs to, if any.
func (p Properties) Group() string {
	if g := strings.TrimSpace(p.String("group")); g != "" {
		return g
	}
	return strings.TrimSpace(p.String("group_name"))
}

// Node is a reactor or reservoir vertex.
type Node struct {
	ID         string         `json:"id"`
	Type       Kind           `json:"type"`
	Properties Properties     `json:"properties"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Clone returns a deep copy of n.
func (n Node) Clone() Node {
	n.Properties = n.Properties.Clone()
	n.Metadata = cloneMap(n.Metadata)
	return n
}

// Connection is a directed flow device between two nodes.
type Connection struct {
	ID         string         `json:"id"`
	Type       Kind           `json:"type"`
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Properties Properties     `json:"properties"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Clone returns a deep copy of c.
func (c Connection) Clone() Connection {
	c.Properties = c.Properties.Clone()
	c.Metadata = cloneMap(c.Metadata)
	return c
}

// Configuration is a complete, serializable network definition. The
// Metadata, Simulation, Settings, Phases and Output blocks are carried
// through edits and exports untouched.
type Configuration struct {
	Metadata    map[string]any `json:"metadata,omitempty"`
	Simulation  map[string]any `json:"simulation,omitempty"`
	Settings    map[string]any `json:"settings,omitempty"`
	Phases      map[string]any `json:"phases,omitempty"`
	Output      any            `json:"output,omitempty"`
	Nodes       []Node         `json:"nodes"`
	Connections []Connection   `json:"connections"`
}

// Empty returns a configuration with no nodes or connections.
func Empty() Configuration {
	return Configuration{Nodes: []Node{}, Connections: []Connection{}}
}

// Clone returns a deep copy of c.
func (c Configuration) Clone() Configuration {
	out := Configuration{
		Metadata:    cloneMap(c.Metadata),
		Simulation:  cloneMap(c.Simulation),
		Settings:    cloneMap(c.Settings),
		Phases:      cloneMap(c.Phases),
		Output:      cloneValue(c.Output),
		Nodes:       make([]Node, len(c.Nodes)),
		Connections: make([]Connection, len(c.Connections)),
	}
	for i, n := range c.Nodes {
		out.Nodes[i] = n.Clone()
	}
	for i, conn := range c.Connections {
		out.Connections[i] = conn.Clone()
	}
	return out
}

// Node looks up a node by id.
func (c Configuration) Node(id string) (Node, bool) {
	for _, n := range c.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Connection looks up a connection by id.
func (c Configuration) Connection(id string) (Connection, bool) {
	for _, conn := range c.Connections {
		if conn.ID == id {
			return conn, true
		}
	}
	return Connection{}, false
}

// ConnectionsOf returns every connection with nodeID as an endpoint.
func (c Configuration) ConnectionsOf(nodeID string) []Connection {
	var out []Connection
	for _, conn := range c.Connections {
		if conn.Source == nodeID || conn.Target == nodeID {
			out = append(out, conn)
		}
	}
	return out
}

// Linked reports whether a connection from source to target exists.
func (c Configuration) Linked(source, target string) (Connection, bool) {
	for _, conn := range c.Connections {
		if conn.Source == source && conn.Target == target {
			return conn, true
		}
	}
	return Connection{}, false
}

// NextConnectionID returns "<prefix>_<n>" for the smallest n, starting at
// one past the current connection count, that no connection uses.
func (c Configuration) NextConnectionID(prefix string) string {
	used := make(map[string]struct{}, len(c.Connections))
	for _, conn := range c.Connections {
		used[conn.ID] = struct{}{}
	}
	for n := len(c.Connections) + 1; ; n++ {
		id := fmt.Sprintf("%s_%d", prefix, n)
		if _, taken := used[id]; !taken {
			return id
		}
	}
}

// NextNodeID is the node counterpart of NextConnectionID.
func (c Configuration) NextNodeID(prefix string) string {
	used := make(map[string]struct{}, len(c.Nodes))
	for _, n := range c.Nodes {
		used[n.ID] = struct{}{}
	}
	for n := len(c.Nodes) + 1; ; n++ {
		id := fmt.Sprintf("%s%d", prefix, n)
		if _, taken := used[id]; !taken {
			return id
		}
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case Properties:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	}
	return v
}
