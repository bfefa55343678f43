package stone

import (
	"fmt"
	"strings"

	"github.com/boulder-sim/boulder/internal/network"
	"gopkg.in/yaml.v3"
)

// Comments holds the comments of a source document keyed by the element
// they annotate. Nodes and connections are keyed by id, so comments follow
// an entry across reordering and survive edits to its values.
type Comments struct {
	notes map[string]note
}

type note struct {
	key, value comment
}

type comment struct {
	head, line, foot string
}

func (c comment) empty() bool {
	return c.head == "" && c.line == "" && c.foot == ""
}

func commentOf(n *yaml.Node) comment {
	if n == nil {
		return comment{}
	}
	return comment{head: n.HeadComment, line: n.LineComment, foot: n.FootComment}
}

func (c comment) applyTo(n *yaml.Node) {
	if n == nil {
		return
	}
	n.HeadComment, n.LineComment, n.FootComment = c.head, c.line, c.foot
}

// ReadComments collects the comments of data. Text that does not parse
// yields no comments.
func ReadComments(data []byte) Comments {
	c := Comments{notes: map[string]note{}}
	if len(data) == 0 {
		return c
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return c
	}
	walk(&root, func(path string, k, v *yaml.Node) {
		n := note{key: commentOf(k), value: commentOf(v)}
		if n.key.empty() && n.value.empty() {
			return
		}
		if _, seen := c.notes[path]; seen {
			return
		}
		c.notes[path] = n
	})
	return c
}

// Len is the number of annotated elements.
func (c Comments) Len() int {
	return len(c.notes)
}

func (c Comments) apply(doc *yaml.Node) {
	if len(c.notes) == 0 {
		return
	}
	walk(doc, func(path string, k, v *yaml.Node) {
		n, ok := c.notes[path]
		if !ok {
			return
		}
		n.key.applyTo(k)
		n.value.applyTo(v)
	})
}

// ExportWithComments writes cfg in canonical form, carrying over the
// comments of original onto the elements that still exist.
func ExportWithComments(cfg network.Configuration, original []byte) ([]byte, error) {
	doc, err := build(cfg)
	if err != nil {
		return nil, err
	}
	ReadComments(original).apply(doc)
	return encode(doc)
}

// walk visits every key/value pair of a document. The document itself is
// visited with an empty path and a nil key. Entries of nodes and
// connections are addressed by id, and their property block by "$props"
// whichever encoding holds it.
func walk(root *yaml.Node, visit func(path string, k, v *yaml.Node)) {
	if root.Kind != yaml.DocumentNode {
		walkValue("", root, visit)
		return
	}
	visit("", nil, root)
	if len(root.Content) > 0 {
		walkValue("", root.Content[0], visit)
	}
}

func walkValue(path string, v *yaml.Node, visit func(string, *yaml.Node, *yaml.Node)) {
	switch v.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(v.Content); i += 2 {
			k, val := v.Content[i], v.Content[i+1]
			name := k.Value
			if path == "" && name == "components" {
				name = "nodes"
			}
			child := join(path, name)
			visit(child, k, val)
			walkValue(child, val, visit)
		}
	case yaml.SequenceNode:
		for i, item := range v.Content {
			if (path == "nodes" || path == "connections") && item.Kind == yaml.MappingNode {
				walkEntry(fmt.Sprintf("%s[%s]", path, entryID(item, i)), item, fieldsFor(path), visit)
				continue
			}
			child := fmt.Sprintf("%s[%d]", path, i)
			visit(child, nil, item)
			walkValue(child, item, visit)
		}
	}
}

func walkEntry(path string, item *yaml.Node, standard map[string]bool, visit func(string, *yaml.Node, *yaml.Node)) {
	visit(path, nil, item)
	for i := 0; i+1 < len(item.Content); i += 2 {
		k, v := item.Content[i], item.Content[i+1]
		name := k.Value
		if !standard[name] || name == "properties" {
			name = "$props"
		}
		child := join(path, name)
		visit(child, k, v)
		walkValue(child, v, visit)
	}
}

func entryID(item *yaml.Node, index int) string {
	for i := 0; i+1 < len(item.Content); i += 2 {
		if item.Content[i].Value == "id" {
			if id := strings.TrimSpace(item.Content[i+1].Value); id != "" {
				return id
			}
		}
	}
	return fmt.Sprintf("#%d", index)
}

func fieldsFor(section string) map[string]bool {
	if section == "connections" {
		return connectionFields
	}
	return nodeFields
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
