// Package stone reads and writes reactor network configurations in the
// STONE YAML dialect, where a component's type name doubles as the key
// holding its properties:
//
//	nodes:
//	  - id: r1
//	    IdealGasReactor:
//	      temperature: 1000
//
// The explicit form (type: and properties: keys) and the legacy
// components: section are accepted on input. Export always writes the
// type-as-key form under nodes:.
package stone

import (
	"errors"
	"fmt"
	"strings"

	"github.com/boulder-sim/boulder/internal/network"
	"github.com/boulder-sim/boulder/internal/units"
	"gopkg.in/yaml.v3"
)

// ErrEmpty is returned when the document holds no configuration at all.
var ErrEmpty = errors.New("configuration is empty")

var (
	nodeFields       = map[string]bool{"id": true, "metadata": true, "type": true, "properties": true}
	connectionFields = map[string]bool{"id": true, "metadata": true, "type": true, "properties": true, "source": true, "target": true}
	timingKeys       = []string{"dt", "end_time", "max_time", "time_step"}
)

// Parse decodes, normalises and validates a configuration document.
func Parse(data []byte) (*network.Configuration, error) {
	cfg, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if err := Validate(*cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode normalises a document into a Configuration without checking
// identifiers or references.
func Decode(data []byte) (*network.Configuration, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, ErrEmpty
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("configuration must be a mapping, got %s", kindName(doc))
	}

	cfg := network.Empty()
	var sawNodes, sawComponents bool

	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, value := doc.Content[i].Value, doc.Content[i+1]

		switch key {
		case "nodes", "components":
			if key == "nodes" {
				sawNodes = true
			} else {
				sawComponents = true
			}
			if sawNodes && sawComponents {
				return nil, fmt.Errorf("use either nodes or components, not both")
			}
			nodes, err := decodeNodes(key, value)
			if err != nil {
				return nil, err
			}
			cfg.Nodes = nodes
		case "connections":
			conns, err := decodeConnections(value)
			if err != nil {
				return nil, err
			}
			cfg.Connections = conns
		case "metadata", "simulation", "settings", "phases":
			block, err := decodeBlock(key, value)
			if err != nil {
				return nil, err
			}
			switch key {
			case "metadata":
				cfg.Metadata = block
			case "simulation":
				cfg.Simulation = coerceTiming(block)
			case "settings":
				cfg.Settings = coerceTiming(block)
			case "phases":
				cfg.Phases = block
			}
		case "output":
			var out any
			if err := value.Decode(&out); err != nil {
				return nil, fmt.Errorf("output: %w", err)
			}
			cfg.Output = network.NormalizeValue(out)
		}
	}

	return &cfg, nil
}

func decodeNodes(section string, seq *yaml.Node) ([]network.Node, error) {
	if isNull(seq) {
		return []network.Node{}, nil
	}
	if seq.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%s must be a list", section)
	}

	nodes := make([]network.Node, 0, len(seq.Content))
	for i, item := range seq.Content {
		e, err := decodeEntry(fmt.Sprintf("%s[%d]", section, i), item, nodeFields)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, network.Node{
			ID:         e.id,
			Type:       network.Kind(e.kind),
			Properties: e.props,
			Metadata:   e.metadata,
		})
	}
	return nodes, nil
}

func decodeConnections(seq *yaml.Node) ([]network.Connection, error) {
	if isNull(seq) {
		return []network.Connection{}, nil
	}
	if seq.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("connections must be a list")
	}

	conns := make([]network.Connection, 0, len(seq.Content))
	for i, item := range seq.Content {
		e, err := decodeEntry(fmt.Sprintf("connections[%d]", i), item, connectionFields)
		if err != nil {
			return nil, err
		}
		conns = append(conns, network.Connection{
			ID:         e.id,
			Type:       network.Kind(e.kind),
			Source:     e.source,
			Target:     e.target,
			Properties: e.props,
			Metadata:   e.metadata,
		})
	}
	return conns, nil
}

type entry struct {
	id, kind       string
	source, target string
	props          network.Properties
	metadata       map[string]any
}

func decodeEntry(path string, item *yaml.Node, standard map[string]bool) (entry, error) {
	var e entry
	if item.Kind != yaml.MappingNode {
		return e, fmt.Errorf("%s must be a mapping", path)
	}

	var typeKeys []string
	var typed *yaml.Node
	var explicit *yaml.Node

	for i := 0; i+1 < len(item.Content); i += 2 {
		key, value := item.Content[i].Value, item.Content[i+1]

		if !standard[key] {
			typeKeys = append(typeKeys, key)
			typed = value
			continue
		}

		switch key {
		case "id":
			e.id = strings.TrimSpace(value.Value)
		case "type":
			e.kind = strings.TrimSpace(value.Value)
		case "source":
			e.source = strings.TrimSpace(value.Value)
		case "target":
			e.target = strings.TrimSpace(value.Value)
		case "properties":
			explicit = value
		case "metadata":
			block, err := decodeBlock(path+".metadata", value)
			if err != nil {
				return e, err
			}
			e.metadata = block
		}
	}

	label := path
	if e.id != "" {
		label = fmt.Sprintf("%s (%s)", path, e.id)
	}

	switch {
	case e.kind != "" && len(typeKeys) > 0:
		return e, fmt.Errorf("%s: has both type %q and type key %q", label, e.kind, typeKeys[0])
	case len(typeKeys) > 1:
		return e, fmt.Errorf("%s: multiple type keys %s", label, strings.Join(quoteAll(typeKeys), ", "))
	case len(typeKeys) == 1:
		if explicit != nil {
			return e, fmt.Errorf("%s: properties given alongside type key %q", label, typeKeys[0])
		}
		e.kind = typeKeys[0]
		explicit = typed
	}

	props, err := decodeBlock(label+"."+orDefault(e.kind, "properties"), explicit)
	if err != nil {
		return e, err
	}
	e.props = network.NormalizeProperties(network.Properties(props))

	return e, nil
}

func decodeBlock(path string, value *yaml.Node) (map[string]any, error) {
	if value == nil || isNull(value) {
		return map[string]any{}, nil
	}
	if value.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s must be a mapping", path)
	}
	var out map[string]any
	if err := value.Decode(&out); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return network.NormalizeValue(out).(map[string]any), nil
}

// coerceTiming converts unit-bearing timing values ("250 ms") to seconds.
// Values that do not parse are kept as given.
func coerceTiming(block map[string]any) map[string]any {
	for _, key := range timingKeys {
		s, ok := block[key].(string)
		if !ok {
			continue
		}
		if v, err := units.Parse(units.Time, s); err == nil {
			block[key] = v
		}
	}
	return block
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.SequenceNode:
		return "a list"
	case yaml.ScalarNode:
		return "a scalar"
	case yaml.AliasNode:
		return "an alias"
	}
	return "a document"
}

func quoteAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
