// Package results turns simulation output into the content of the results
// tab strip: trajectories, flow diagram, per-element thermo reports,
// tabular summary and plugin panes.
package results

import (
	"strings"

	"github.com/boulder-sim/boulder/internal/plugin"
)

// TabID identifies a tab. Plugin tabs are "plugin:<plugin id>".
type TabID string

const (
	TabPlots   TabID = "plots"
	TabSankey  TabID = "sankey"
	TabThermo  TabID = "thermo"
	TabSummary TabID = "summary"
	TabError   TabID = "error"

	pluginPrefix = "plugin:"
)

// PluginTab is the tab id of plugin id.
func PluginTab(id string) TabID {
	return TabID(pluginPrefix + id)
}

// PluginID returns the plugin behind a plugin tab.
func (t TabID) PluginID() (string, bool) {
	if !strings.HasPrefix(string(t), pluginPrefix) {
		return "", false
	}
	return strings.TrimPrefix(string(t), pluginPrefix), true
}

// Tab is one entry of the strip.
type Tab struct {
	ID    TabID
	Label string
}

var fixedTabs = []Tab{
	{ID: TabPlots, Label: "Plots"},
	{ID: TabSankey, Label: "Sankey"},
	{ID: TabThermo, Label: "Thermo"},
	{ID: TabSummary, Label: "Summary"},
}

// Tabs is the strip state: the fixed tabs, an Error tab present only while
// the session holds an error, then one tab per discovered plugin.
type Tabs struct {
	plugins  []Tab
	hasError bool
	active   TabID
}

func NewTabs() *Tabs {
	return &Tabs{active: TabPlots}
}

// List returns the visible tabs in order.
func (t *Tabs) List() []Tab {
	out := make([]Tab, 0, len(fixedTabs)+1+len(t.plugins))
	out = append(out, fixedTabs...)
	if t.hasError {
		out = append(out, Tab{ID: TabError, Label: "Error"})
	}
	return append(out, t.plugins...)
}

func (t *Tabs) Active() TabID {
	return t.active
}

// Activate switches to id if it is visible.
func (t *Tabs) Activate(id TabID) bool {
	if t.index(id) < 0 {
		return false
	}
	t.active = id
	return true
}

// ActivateIndex switches to the i-th visible tab, zero based.
func (t *Tabs) ActivateIndex(i int) bool {
	list := t.List()
	if i < 0 || i >= len(list) {
		return false
	}
	t.active = list[i].ID
	return true
}

func (t *Tabs) Next() {
	t.step(1)
}

func (t *Tabs) Prev() {
	t.step(-1)
}

// SyncError shows the Error tab while hasError holds, switching to it when
// it first appears. When the error clears with the Error tab active the
// strip falls back to Plots.
func (t *Tabs) SyncError(hasError bool) {
	if hasError == t.hasError {
		return
	}
	t.hasError = hasError
	if hasError {
		t.active = TabError
		return
	}
	if t.active == TabError {
		t.active = TabPlots
	}
}

// SetPlugins replaces the plugin tabs. If the active plugin tab vanished
// the strip falls back to Plots.
func (t *Tabs) SetPlugins(descs []plugin.Descriptor) {
	t.plugins = t.plugins[:0]
	for _, d := range descs {
		label := d.Label
		if label == "" {
			label = d.ID
		}
		t.plugins = append(t.plugins, Tab{ID: PluginTab(d.ID), Label: label})
	}
	if t.index(t.active) < 0 {
		t.active = TabPlots
	}
}

func (t *Tabs) step(delta int) {
	list := t.List()
	i := t.index(t.active)
	if i < 0 {
		t.active = TabPlots
		return
	}
	i = (i + delta + len(list)) % len(list)
	t.active = list[i].ID
}

func (t *Tabs) index(id TabID) int {
	for i, tab := range t.List() {
		if tab.ID == id {
			return i
		}
	}
	return -1
}
