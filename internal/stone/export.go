package stone

import (
	"bytes"
	"fmt"

	"github.com/boulder-sim/boulder/internal/network"
	"gopkg.in/yaml.v3"
)

// Export writes cfg in canonical STONE form. Top-level blocks appear in the
// order metadata, simulation, settings, phases, nodes, connections,
// output; property keys are sorted.
func Export(cfg network.Configuration) ([]byte, error) {
	doc, err := build(cfg)
	if err != nil {
		return nil, err
	}
	return encode(doc)
}

func build(cfg network.Configuration) (*yaml.Node, error) {
	doc := mapping()

	for _, block := range []struct {
		key   string
		value map[string]any
	}{
		{"metadata", cfg.Metadata},
		{"simulation", cfg.Simulation},
		{"settings", cfg.Settings},
		{"phases", cfg.Phases},
	} {
		if len(block.value) == 0 {
			continue
		}
		if err := appendValue(doc, block.key, block.value); err != nil {
			return nil, err
		}
	}

	nodes := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, n := range cfg.Nodes {
		item := mapping()
		appendScalar(item, "id", n.ID)
		if err := appendProperties(item, string(n.Type), n.Properties, nodeFields); err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
		if len(n.Metadata) > 0 {
			if err := appendValue(item, "metadata", n.Metadata); err != nil {
				return nil, fmt.Errorf("node %q: %w", n.ID, err)
			}
		}
		nodes.Content = append(nodes.Content, item)
	}
	doc.Content = append(doc.Content, key("nodes"), nodes)

	conns := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, c := range cfg.Connections {
		item := mapping()
		appendScalar(item, "id", c.ID)
		if err := appendProperties(item, string(c.Type), c.Properties, connectionFields); err != nil {
			return nil, fmt.Errorf("connection %q: %w", c.ID, err)
		}
		appendScalar(item, "source", c.Source)
		appendScalar(item, "target", c.Target)
		if len(c.Metadata) > 0 {
			if err := appendValue(item, "metadata", c.Metadata); err != nil {
				return nil, fmt.Errorf("connection %q: %w", c.ID, err)
			}
		}
		conns.Content = append(conns.Content, item)
	}
	doc.Content = append(doc.Content, key("connections"), conns)

	if cfg.Output != nil {
		if err := appendValue(doc, "output", cfg.Output); err != nil {
			return nil, err
		}
	}

	return &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{doc}}, nil
}

func encode(doc *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// appendProperties writes "<Type>: {props}". A type that is missing, or
// that collides with one of the entry's own fields, is written in the
// explicit form (type: and properties:) so it reads back unchanged.
func appendProperties(item *yaml.Node, kind string, props network.Properties, reserved map[string]bool) error {
	if props == nil {
		props = network.Properties{}
	}
	if kind != "" && !reserved[kind] {
		return appendValue(item, kind, map[string]any(props))
	}
	if kind != "" {
		appendScalar(item, "type", kind)
	}
	return appendValue(item, "properties", map[string]any(props))
}

func appendValue(m *yaml.Node, k string, v any) error {
	var value yaml.Node
	if err := value.Encode(v); err != nil {
		return fmt.Errorf("%s: %w", k, err)
	}
	m.Content = append(m.Content, key(k), &value)
	return nil
}

func appendScalar(m *yaml.Node, k, v string) {
	m.Content = append(m.Content, key(k), &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v})
}

func mapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func key(k string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
}
