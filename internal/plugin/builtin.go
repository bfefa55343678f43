package plugin

import (
	"fmt"
	"sort"

	"github.com/boulder-sim/boulder/internal/network"
	"github.com/boulder-sim/boulder/internal/units"
)

// Builtins returns a registry with the panes shipped with the gateway.
func Builtins() *Registry {
	r := NewRegistry()
	_ = r.Register(NetworkPane{})
	_ = r.Register(ReactorStatePane{})
	return r
}

// NetworkPane tabulates the nodes and connections of the configuration.
type NetworkPane struct{}

func (NetworkPane) Descriptor() Descriptor {
	return Descriptor{ID: "network", Label: "Network", Icon: "diagram-3"}
}

func (p NetworkPane) Available(c Context) bool {
	return Available(p.Descriptor(), c) && c.Config != nil
}

func (NetworkPane) Render(c Context) (*Payload, error) {
	cfg := c.Config
	nodes := make([][]any, 0, len(cfg.Nodes))
	for _, n := range cfg.Nodes {
		nodes = append(nodes, []any{n.ID, string(n.Type), quantity(n.Properties, "temperature"), quantity(n.Properties, "pressure")})
	}
	conns := make([][]any, 0, len(cfg.Connections))
	for _, cn := range cfg.Connections {
		conns = append(conns, []any{cn.ID, string(cn.Type), cn.Source, cn.Target, quantity(cn.Properties, "mass_flow_rate")})
	}
	return Grid(2,
		*Table("Nodes", []string{"id", "type", "T (K)", "P (Pa)"}, nodes),
		*Table("Connections", []string{"id", "type", "source", "target", "ṁ (kg/s)"}, conns),
	), nil
}

// ReactorStatePane shows the final state of the selected reactor.
type ReactorStatePane struct{}

func (ReactorStatePane) Descriptor() Descriptor {
	return Descriptor{
		ID:                    "reactor-state",
		Label:                 "Reactor State",
		Icon:                  "thermometer-half",
		RequiresSelection:     true,
		SupportedElementTypes: []string{ElementReactor},
	}
}

func (p ReactorStatePane) Available(c Context) bool {
	return Available(p.Descriptor(), c)
}

func (ReactorStatePane) Render(c Context) (*Payload, error) {
	id := c.SelectedElement.ID
	if c.SimulationData == nil {
		return Text(fmt.Sprintf("No results for %s yet: run simulation first.", id)), nil
	}
	series, ok := c.SimulationData.ReactorsSeries[id]
	if !ok || series.Last() < 0 {
		return Failure("no series for reactor %q", id), nil
	}
	last := series.Last()

	rows := [][]any{
		{"time (s)", lastOf(c.SimulationData.Times)},
		{"temperature (°C)", units.KelvinToCelsius(series.T[last])},
	}
	if last < len(series.P) {
		rows = append(rows, []any{"pressure (Pa)", series.P[last]})
	}

	type frac struct {
		name string
		x    float64
	}
	var fracs []frac
	for sp, xs := range series.X {
		if len(xs) > 0 && xs[len(xs)-1] > 1e-4 {
			fracs = append(fracs, frac{sp, xs[len(xs)-1]})
		}
	}
	sort.Slice(fracs, func(i, j int) bool {
		if fracs[i].x != fracs[j].x {
			return fracs[i].x > fracs[j].x
		}
		return fracs[i].name < fracs[j].name
	})
	for _, f := range fracs {
		rows = append(rows, []any{"X " + f.name, f.x})
	}
	return Table(id, []string{"quantity", "value"}, rows), nil
}

func quantity(p network.Properties, key string) any {
	if v, ok := p.Float(key); ok {
		return v
	}
	return p.String(key)
}

func lastOf(xs []float64) any {
	if len(xs) == 0 {
		return ""
	}
	return xs[len(xs)-1]
}
