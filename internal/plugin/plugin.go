// Package plugin describes output panes contributed by plugins: their
// discovery descriptors, the render context sent to them, the tagged
// payload they answer with, a client-side bridge that de-duplicates
// render requests and a server-side registry hosting the panes.
package plugin

import (
	"github.com/boulder-sim/boulder/internal/network"
	"github.com/boulder-sim/boulder/internal/selection"
	"github.com/boulder-sim/boulder/internal/simulation"
)

// Element types a pane can declare support for.
const (
	ElementReactor    = "reactor"
	ElementConnection = "connection"
)

// Descriptor is what discovery returns for one pane.
type Descriptor struct {
	ID                    string   `json:"id"`
	Label                 string   `json:"label"`
	Icon                  string   `json:"icon,omitempty"`
	RequiresSelection     bool     `json:"requires_selection"`
	SupportedElementTypes []string `json:"supported_element_types"`
}

// ElementTypes defaults to reactors only.
func (d Descriptor) ElementTypes() []string {
	if len(d.SupportedElementTypes) == 0 {
		return []string{ElementReactor}
	}
	return d.SupportedElementTypes
}

// Supports reports whether the pane accepts elementType.
func (d Descriptor) Supports(elementType string) bool {
	for _, t := range d.ElementTypes() {
		if t == elementType {
			return true
		}
	}
	return false
}

// Element is the selected element as sent to a pane.
type Element struct {
	Type       string             `json:"type"`
	ID         string             `json:"id"`
	Kind       network.Kind       `json:"kind,omitempty"`
	Properties network.Properties `json:"properties,omitempty"`
	Source     string             `json:"source,omitempty"`
	Target     string             `json:"target,omitempty"`
}

// ElementFrom resolves a selection against cfg.
func ElementFrom(sel selection.Element, cfg network.Configuration) Element {
	el := Element{Type: sel.PluginType(), ID: sel.ID, Kind: sel.Type}
	if sel.Kind == selection.KindEdge {
		if c, ok := cfg.Connection(sel.ID); ok {
			el.Kind, el.Properties, el.Source, el.Target = c.Type, c.Properties, c.Source, c.Target
		}
		return el
	}
	if n, ok := cfg.Node(sel.ID); ok {
		el.Kind, el.Properties = n.Type, n.Properties
	}
	return el
}

// Context is the render request body.
type Context struct {
	SimulationData  *simulation.Results    `json:"simulation_data,omitempty"`
	SelectedElement *Element               `json:"selected_element,omitempty"`
	Config          *network.Configuration `json:"config,omitempty"`
	Theme           string                 `json:"theme"`
}

// Available applies the default availability rule: a pane that needs a
// selection needs one of a supported type.
func Available(d Descriptor, c Context) bool {
	if !d.RequiresSelection {
		return true
	}
	return c.SelectedElement != nil && d.Supports(c.SelectedElement.Type)
}

// Result is the render response.
type Result struct {
	Available bool     `json:"available"`
	Message   string   `json:"message,omitempty"`
	Data      *Payload `json:"data,omitempty"`
}

// UnavailableMessage is what a pane that declines the context answers.
const UnavailableMessage = "Plugin not available for current context"
