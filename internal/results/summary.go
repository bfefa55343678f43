package results

import (
	"fmt"
	"strings"
	"time"

	"github.com/boulder-sim/boulder/internal/simulation"
	"github.com/boulder-sim/boulder/internal/units"
)

// SummaryColumns heads the Summary table.
var SummaryColumns = []string{"Reactor", "Quantity", "Value", "Unit"}

// Summary flattens the summary rows into table cells. Temperatures in K
// are shown in °C like everywhere else.
func Summary(r *simulation.Results) [][]string {
	if r == nil {
		return nil
	}
	rows := make([][]string, 0, len(r.Summary))
	for _, row := range r.Summary {
		value, unit := row.Value, row.Unit
		if row.Quantity == "temperature" && unit == "K" {
			value, unit = units.KelvinToCelsius(value), "°C"
		}
		label := row.Label
		if label == "" {
			label = row.Quantity
		}
		label = strings.TrimSpace(strings.TrimPrefix(label, row.Reactor))
		rows = append(rows, []string{row.Reactor, label, fmt.Sprintf("%.6g", value), unit})
	}
	return rows
}

// DownloadName is the file the generated code is saved to.
const DownloadName = "cantera_simulation.py"

// Code prefixes the engine's generated script with a provenance header.
// source is the configuration file name, empty when the network was built
// in the console.
func Code(r *simulation.Results, source string, now time.Time) string {
	if r == nil || r.CodeStr == "" {
		return ""
	}
	if source == "" {
		source = "(no file, edited or generated in app)"
	}
	header := fmt.Sprintf(`"""
This file was automatically generated by Boulder on %s.
Configuration source: %s

This script defines all Cantera objects (reactors, connections), builds the reactor network, and runs a sample simulation loop.
You can modify and run this script independently with Cantera installed.
"""
`, now.Format("2006-01-02 15:04:05"), source)
	return header + r.CodeStr
}
