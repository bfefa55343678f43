package results

import (
	"sort"

	"github.com/boulder-sim/boulder/internal/network"
	"github.com/boulder-sim/boulder/internal/selection"
	"github.com/boulder-sim/boulder/internal/simulation"
	"github.com/boulder-sim/boulder/internal/units"
)

// Species selection defaults for the Plots tab.
const (
	DominantThreshold = 0.01
	DominantLimit     = 12
)

// Trace is one named trajectory.
type Trace struct {
	Name   string
	Values []float64
	Max    float64
}

// PlotData is what the Plots tab draws for the selected reactor.
type PlotData struct {
	ReactorID    string
	Times        []float64
	TemperatureC []float64
	Pressure     []float64
	Species      []Trace
	// Message explains an empty plot.
	Message string
}

// Empty reports whether there is nothing to draw.
func (p PlotData) Empty() bool {
	return len(p.Times) == 0
}

const (
	msgSelectReactor = "Select a reactor to plot its trajectory."
	msgNoResults     = "Run a simulation to see results."
)

// Plots builds the temperature, pressure and dominant species traces of
// the selected reactor from the latest progress.
func Plots(sel *selection.Element, cfg network.Configuration, progress *simulation.Progress) PlotData {
	if sel == nil || sel.Kind != selection.KindNode {
		return PlotData{Message: msgSelectReactor}
	}
	if _, ok := cfg.Node(sel.ID); !ok {
		return PlotData{Message: msgSelectReactor}
	}
	if progress == nil {
		return PlotData{ReactorID: sel.ID, Message: msgNoResults}
	}
	series, ok := progress.ReactorsSeries[sel.ID]
	if !ok {
		return PlotData{ReactorID: sel.ID, Message: "No trajectory for " + sel.ID + " in this run."}
	}

	n := len(progress.Times)
	if len(series.T) < n {
		n = len(series.T)
	}
	out := PlotData{
		ReactorID:    sel.ID,
		Times:        progress.Times[:n],
		TemperatureC: make([]float64, n),
		Pressure:     series.P,
	}
	if len(out.Pressure) > n {
		out.Pressure = out.Pressure[:n]
	}
	for i := 0; i < n; i++ {
		out.TemperatureC[i] = units.KelvinToCelsius(series.T[i])
	}
	out.Species = DominantSpecies(series.X, DominantThreshold, DominantLimit)
	return out
}

// DominantSpecies returns the species whose maximum fraction exceeds
// threshold, largest maximum first (ties by name), at most limit of them.
func DominantSpecies(fractions map[string][]float64, threshold float64, limit int) []Trace {
	out := make([]Trace, 0, len(fractions))
	for name, values := range fractions {
		if len(values) == 0 {
			continue
		}
		max := values[0]
		for _, v := range values[1:] {
			if v > max {
				max = v
			}
		}
		if max > threshold {
			out = append(out, Trace{Name: name, Values: values, Max: max})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Max != out[j].Max {
			return out[i].Max > out[j].Max
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
