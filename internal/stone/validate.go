package stone

import (
	"fmt"
	"strings"

	"github.com/boulder-sim/boulder/internal/network"
)

// Validate checks identifiers and references. Errors are *network.Error
// values so callers can match them with errors.Is.
func Validate(cfg network.Configuration) error {
	nodes := make(map[string]struct{}, len(cfg.Nodes))
	for i, n := range cfg.Nodes {
		if strings.TrimSpace(n.ID) == "" {
			return &network.Error{Kind: network.ErrValidation, Entity: network.EntityNode, Field: "id", Msg: fmt.Sprintf("nodes[%d].id is required", i)}
		}
		if strings.TrimSpace(string(n.Type)) == "" {
			return &network.Error{Kind: network.ErrValidation, Entity: network.EntityNode, ID: n.ID, Field: "type", Msg: "is required"}
		}
		if _, dup := nodes[n.ID]; dup {
			return &network.Error{Kind: network.ErrDuplicateIdentifier, Entity: network.EntityNode, ID: n.ID, Msg: "duplicate node id"}
		}
		nodes[n.ID] = struct{}{}
	}

	conns := make(map[string]struct{}, len(cfg.Connections))
	for i, c := range cfg.Connections {
		if strings.TrimSpace(c.ID) == "" {
			return &network.Error{Kind: network.ErrValidation, Entity: network.EntityConnection, Field: "id", Msg: fmt.Sprintf("connections[%d].id is required", i)}
		}
		if strings.TrimSpace(string(c.Type)) == "" {
			return &network.Error{Kind: network.ErrValidation, Entity: network.EntityConnection, ID: c.ID, Field: "type", Msg: "is required"}
		}
		if _, dup := conns[c.ID]; dup {
			return &network.Error{Kind: network.ErrDuplicateIdentifier, Entity: network.EntityConnection, ID: c.ID, Msg: "duplicate connection id"}
		}
		conns[c.ID] = struct{}{}

		if _, ok := nodes[c.Source]; !ok {
			return &network.Error{Kind: network.ErrReference, Entity: network.EntityConnection, ID: c.ID, Field: "source", Msg: fmt.Sprintf("%q does not reference an existing node", c.Source)}
		}
		if _, ok := nodes[c.Target]; !ok {
			return &network.Error{Kind: network.ErrReference, Entity: network.EntityConnection, ID: c.ID, Field: "target", Msg: fmt.Sprintf("%q does not reference an existing node", c.Target)}
		}
		if c.Source == c.Target {
			return &network.Error{Kind: network.ErrReference, Entity: network.EntityConnection, ID: c.ID, Field: "target", Msg: "source and target must differ"}
		}
	}

	return nil
}
