package results

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/boulder-sim/boulder/internal/units"
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af"))
)

// RenderPlots draws each trace of p as a labelled sparkline with its
// range.
func RenderPlots(p PlotData, width int) string {
	if p.Empty() {
		return mutedStyle.Render(p.Message)
	}
	cells := width - 34
	if cells < 8 {
		cells = 8
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  t = %s … %s s\n\n", labelStyle.Render(p.ReactorID),
		units.FormatNumber(p.Times[0]), units.FormatNumber(p.Times[len(p.Times)-1]))
	line(&b, "T (°C)", p.TemperatureC, cells)
	if len(p.Pressure) > 0 {
		line(&b, "P (Pa)", p.Pressure, cells)
	}
	if len(p.Species) > 0 {
		b.WriteString("\n" + mutedStyle.Render("mole fractions") + "\n")
		for _, tr := range p.Species {
			line(&b, tr.Name, tr.Values, cells)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func line(b *strings.Builder, name string, values []float64, cells int) {
	if len(values) == 0 {
		return
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	fmt.Fprintf(b, "%-10s %s  %.4g … %.4g\n", name, Sparkline(values, cells), lo, hi)
}

// RenderSummary draws the summary rows as an aligned table.
func RenderSummary(rows [][]string) string {
	if len(rows) == 0 {
		return mutedStyle.Render(msgNoResults)
	}
	all := append([][]string{SummaryColumns}, rows...)
	widths := make([]int, len(SummaryColumns))
	for _, r := range all {
		for i, c := range r {
			if i < len(widths) && lipgloss.Width(c) > widths[i] {
				widths[i] = lipgloss.Width(c)
			}
		}
	}

	var b strings.Builder
	for ri, r := range all {
		parts := make([]string, len(r))
		for i, c := range r {
			parts[i] = c + strings.Repeat(" ", widths[i]-lipgloss.Width(c))
		}
		text := strings.TrimRight(strings.Join(parts, "  "), " ")
		if ri == 0 {
			text = labelStyle.Render(text)
		}
		b.WriteString(text + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderThermo draws a Thermo view.
func RenderThermo(v ThermoView) string {
	body := v.Body
	if !v.Available {
		body = mutedStyle.Render(body)
	}
	return labelStyle.Render(v.Title) + "\n\n" + body
}
