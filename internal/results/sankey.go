package results

import (
	"fmt"
	"sort"
	"strings"

	"github.com/boulder-sim/boulder/internal/simulation"
	"github.com/boulder-sim/boulder/internal/units"
)

// Flow is one resolved Sankey link.
type Flow struct {
	Source string
	Target string
	Value  float64
	Kind   string
	Label  string
}

// SankeyView is the flow diagram in resolved form.
type SankeyView struct {
	Nodes   []string
	Flows   []Flow
	Message string
}

const msgNoSankey = "Sankey diagram data not available for this simulation."

// Sankey resolves the columnar links of r against its node list. Links
// pointing outside the node list are dropped.
func Sankey(r *simulation.Results) SankeyView {
	if r == nil {
		return SankeyView{Message: msgNoResults}
	}
	if r.SankeyLinks == nil || len(r.SankeyNodes) == 0 || r.SankeyLinks.Len() == 0 {
		return SankeyView{Message: msgNoSankey}
	}

	l := r.SankeyLinks
	v := SankeyView{Nodes: r.SankeyNodes}
	for i := 0; i < l.Len(); i++ {
		s, t := l.Source[i], l.Target[i]
		if s < 0 || s >= len(r.SankeyNodes) || t < 0 || t >= len(r.SankeyNodes) {
			continue
		}
		f := Flow{Source: r.SankeyNodes[s], Target: r.SankeyNodes[t], Value: l.Value[i]}
		if i < len(l.Color) {
			f.Kind = l.Color[i]
		}
		if i < len(l.Label) {
			f.Label = l.Label[i]
		}
		v.Flows = append(v.Flows, f)
	}
	if len(v.Flows) == 0 {
		v.Message = msgNoSankey
	}
	return v
}

// Outflow sums the flows leaving node, optionally only of one kind.
func (v SankeyView) Outflow(node, kind string) float64 {
	var sum float64
	for _, f := range v.Flows {
		if f.Source == node && (kind == "" || f.Kind == kind) {
			sum += f.Value
		}
	}
	return sum
}

// RenderSankey lists flows, largest first, with a bar scaled to the
// largest one.
func RenderSankey(v SankeyView, width int) string {
	if v.Message != "" {
		return v.Message
	}
	flows := append([]Flow(nil), v.Flows...)
	sort.SliceStable(flows, func(i, j int) bool { return flows[i].Value > flows[j].Value })

	max := 0.0
	nameW := 0
	for _, f := range flows {
		if f.Value > max {
			max = f.Value
		}
		if w := len(f.Source) + len(f.Target) + 4; w > nameW {
			nameW = w
		}
	}
	barW := width - nameW - 28
	if barW < 4 {
		barW = 4
	}

	var b strings.Builder
	for _, f := range flows {
		name := f.Source + " ─▶ " + f.Target
		n := 0
		if max > 0 {
			n = int(f.Value / max * float64(barW))
		}
		if n == 0 && f.Value > 0 {
			n = 1
		}
		label := f.Label
		if label == "" {
			label = f.Kind
		}
		fmt.Fprintf(&b, "%-*s %s %s %s\n", nameW, name, strings.Repeat("█", n)+strings.Repeat(" ", barW-n), units.FormatNumber(round3(f.Value)), label)
	}
	return strings.TrimRight(b.String(), "\n")
}

func round3(v float64) float64 {
	return float64(int64(v*1000+sign(v)*0.5)) / 1000
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
