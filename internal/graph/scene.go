// Package graph projects a reactor network into a drawable scene, lays it
// out in left-to-right ranks and turns pointer gestures into selection
// events and connection requests.
package graph

import (
	"fmt"
	"math"

	"github.com/boulder-sim/boulder/internal/network"
	"github.com/boulder-sim/boulder/internal/units"
)

// Shape is the outline a node is drawn with.
type Shape string

const (
	ShapeRounded Shape = "rounded"
	ShapeOctagon Shape = "octagon"
)

// Temperature colour ramp end points.
const (
	ColdKelvin = 300.0
	HotKelvin  = 2273.0
)

var (
	coldRGB    = [3]float64{0x3b, 0x82, 0xf6}
	hotRGB     = [3]float64{0xef, 0x44, 0x44}
	neutralHex = "#9ca3af"
)

// NodeView is the drawable form of a node.
type NodeView struct {
	ID          string
	Label       string
	Type        network.Kind
	Shape       Shape
	Color       string
	Intensity   float64
	Temperature float64
	HasTemp     bool
	Group       string
}

// EdgeView is the drawable form of a connection.
type EdgeView struct {
	ID     string
	Source string
	Target string
	Type   network.Kind
	Label  string
}

// GroupView is a visual container for nodes sharing a group property.
type GroupView struct {
	Key     string
	Name    string
	Members []string
}

// Scene is a disposable projection of a configuration; it can be rebuilt
// from the model at any time.
type Scene struct {
	Nodes  []NodeView
	Edges  []EdgeView
	Groups []GroupView
}

// Node returns the view for id.
func (s Scene) Node(id string) (NodeView, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeView{}, false
}

// Edge returns the view for id.
func (s Scene) Edge(id string) (EdgeView, bool) {
	for _, e := range s.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return EdgeView{}, false
}

// Project builds the scene for cfg.
func Project(cfg network.Configuration) Scene {
	scene := Scene{
		Nodes: make([]NodeView, 0, len(cfg.Nodes)),
		Edges: make([]EdgeView, 0, len(cfg.Connections)),
	}

	groups := map[string]int{}
	for _, n := range cfg.Nodes {
		view := NodeView{
			ID:    n.ID,
			Label: n.ID,
			Type:  n.Type,
			Shape: ShapeRounded,
			Color: neutralHex,
		}
		if n.Type.IsReservoir() {
			view.Shape = ShapeOctagon
		}
		if t, ok := n.Properties.Float("temperature"); ok {
			view.Temperature = t
			view.HasTemp = true
			view.Intensity = Intensity(t)
			view.Color = TemperatureColor(t)
		}
		if g := n.Properties.Group(); g != "" {
			view.Group = "group:" + g
			idx, ok := groups[view.Group]
			if !ok {
				idx = len(scene.Groups)
				groups[view.Group] = idx
				scene.Groups = append(scene.Groups, GroupView{Key: view.Group, Name: g})
			}
			scene.Groups[idx].Members = append(scene.Groups[idx].Members, n.ID)
		}
		scene.Nodes = append(scene.Nodes, view)
	}

	for _, c := range cfg.Connections {
		label := string(c.Type)
		if v, ok := c.Properties.Float("mass_flow_rate"); ok {
			label = fmt.Sprintf("%s %s kg/s", c.Type, units.FormatNumber(v))
		}
		scene.Edges = append(scene.Edges, EdgeView{
			ID:     c.ID,
			Source: c.Source,
			Target: c.Target,
			Type:   c.Type,
			Label:  label,
		})
	}

	return scene
}

// Intensity maps a temperature onto [0, 1] between ColdKelvin and
// HotKelvin.
func Intensity(kelvin float64) float64 {
	f := (kelvin - ColdKelvin) / (HotKelvin - ColdKelvin)
	return math.Max(0, math.Min(1, f))
}

// TemperatureColor interpolates the colour ramp linearly.
func TemperatureColor(kelvin float64) string {
	f := Intensity(kelvin)
	var rgb [3]int
	for i := range rgb {
		rgb[i] = int(math.Round(coldRGB[i] + (hotRGB[i]-coldRGB[i])*f))
	}
	return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2])
}
