package results

import (
	"fmt"
	"strings"

	"github.com/boulder-sim/boulder/internal/network"
	"github.com/boulder-sim/boulder/internal/selection"
	"github.com/boulder-sim/boulder/internal/simulation"
	"github.com/boulder-sim/boulder/internal/units"
)

// ThermoView is the Thermo tab content.
type ThermoView struct {
	Title string
	Body  string
	// Available is false when Body only explains why there is no report.
	Available bool
}

// Thermo describes the selected element: the engine's report for a
// reactor, or computed flows plus the upstream state for a flow
// controller.
func Thermo(sel *selection.Element, cfg network.Configuration, progress *simulation.Progress) ThermoView {
	if sel == nil {
		return ThermoView{Title: "Thermo", Body: "Select a reactor or a flow controller."}
	}
	if sel.Kind == selection.KindEdge {
		return flowThermo(sel.ID, cfg, progress)
	}

	title := sel.ID
	if progress == nil {
		return ThermoView{Title: title, Body: fmt.Sprintf("No report for %s yet: run simulation first.", sel.ID)}
	}
	report, ok := progress.ReactorReports[sel.ID]
	if !ok || (report.ThermoReport == "" && report.ReactorReport == "") {
		return ThermoView{Title: title, Body: fmt.Sprintf("No report for %s yet: run simulation first.", sel.ID)}
	}
	body := report.ThermoReport
	if body == "" {
		body = report.ReactorReport
	}
	return ThermoView{Title: title, Body: strings.TrimRight(body, "\n"), Available: true}
}

func flowThermo(id string, cfg network.Configuration, progress *simulation.Progress) ThermoView {
	conn, ok := cfg.Connection(id)
	if !ok {
		return ThermoView{Title: id, Body: "Connection no longer exists."}
	}
	title := fmt.Sprintf("%s (%s: %s ─▶ %s)", conn.ID, conn.Type, conn.Source, conn.Target)
	if !conn.Type.CarriesFlow() {
		return ThermoView{Title: title, Body: "Thermo is available for reactors and flow controllers only."}
	}

	var b strings.Builder
	report, computed := simulation.FlowReport{}, false
	if progress != nil {
		report, computed = progress.ConnectionReports[conn.ID]
	}

	switch {
	case computed:
		fmt.Fprintf(&b, "mass flow rate        %s kg/s\n", units.FormatNumber(report.MassFlowRate))
		if report.VolumetricReal > 0 {
			fmt.Fprintf(&b, "volumetric (real)     %s m³/s\n", units.FormatNumber(report.VolumetricReal))
		}
		if report.VolumetricNormal > 0 {
			fmt.Fprintf(&b, "volumetric (normal)   %s Nm³/s\n", units.FormatNumber(report.VolumetricNormal))
		}
	default:
		if v, ok := conn.Properties.Float("mass_flow_rate"); ok {
			fmt.Fprintf(&b, "mass flow rate        %s kg/s (set point)\n", units.FormatNumber(v))
		}
		b.WriteString("computed flow rates unavailable: run simulation first\n")
	}

	b.WriteString("\nupstream " + conn.Source + "\n")
	b.WriteString(upstream(conn.Source, cfg, progress))
	return ThermoView{Title: title, Body: strings.TrimRight(b.String(), "\n"), Available: computed}
}

// upstream reports the last simulated state of node id, or its configured
// initial state when no run exists yet.
func upstream(id string, cfg network.Configuration, progress *simulation.Progress) string {
	var b strings.Builder
	if progress != nil {
		if s, ok := progress.ReactorsSeries[id]; ok && s.Last() >= 0 {
			i := s.Last()
			fmt.Fprintf(&b, "  temperature         %.2f °C\n", units.KelvinToCelsius(s.T[i]))
			if i < len(s.P) {
				fmt.Fprintf(&b, "  pressure            %s Pa\n", units.FormatNumber(s.P[i]))
			}
			final := make(map[string][]float64, len(s.X))
			for sp, xs := range s.X {
				if len(xs) > 0 {
					final[sp] = xs[len(xs)-1:]
				}
			}
			var parts []string
			for _, tr := range DominantSpecies(final, 1e-4, 0) {
				parts = append(parts, fmt.Sprintf("%s:%.4g", tr.Name, tr.Max))
			}
			if len(parts) > 0 {
				fmt.Fprintf(&b, "  composition         %s\n", strings.Join(parts, ", "))
			}
			return b.String()
		}
	}

	n, ok := cfg.Node(id)
	if !ok {
		return "  unknown node\n"
	}
	if t, ok := n.Properties.Float("temperature"); ok {
		fmt.Fprintf(&b, "  temperature         %.2f °C (initial)\n", units.KelvinToCelsius(t))
	}
	if p, ok := n.Properties.Float("pressure"); ok {
		fmt.Fprintf(&b, "  pressure            %s Pa (initial)\n", units.FormatNumber(p))
	}
	if c := n.Properties.String("composition"); c != "" {
		fmt.Fprintf(&b, "  composition         %s (initial)\n", c)
	}
	return b.String()
}
