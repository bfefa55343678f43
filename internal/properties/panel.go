// Package properties shows and edits the full property set of the
// selected node or connection.
package properties

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/boulder-sim/boulder/internal/network"
	"github.com/boulder-sim/boulder/internal/selection"
	"github.com/boulder-sim/boulder/internal/units"
	"github.com/boulder-sim/boulder/pkg/log"
)

// ErrNotEditing is returned by form operations outside edit mode.
var ErrNotEditing = errors.New("properties panel is not in edit mode")

// Field is one labelled property row.
type Field struct {
	Key   string
	Label string
	Value string
}

// View is the read-only rendition of an element.
type View struct {
	Element selection.Element
	Type    network.Kind
	Source  string
	Target  string
	Fields  []Field
}

// Title is the panel heading: the id followed by the component kind.
func (v View) Title() string {
	return fmt.Sprintf("%s (%s)", v.Element.ID, v.Type)
}

// Panel reads from the configuration model, never from the graph scene,
// which only carries a display subset of each element.
type Panel struct {
	store *network.Store

	editing bool
	target  selection.Element
	keys    []string
	form    map[string]string
}

func NewPanel(store *network.Store) *Panel {
	return &Panel{store: store}
}

// View renders the selected element from the model.
func (p *Panel) View(sel selection.Element) (View, error) {
	props, kind, src, tgt, err := p.lookup(sel)
	if err != nil {
		return View{}, err
	}
	v := View{Element: sel, Type: kind, Source: src, Target: tgt}
	for _, key := range props.Keys() {
		v.Fields = append(v.Fields, Field{Key: key, Label: units.Label(key), Value: display(key, props[key])})
	}
	return v, nil
}

// Editing reports whether a form is open, and for which element.
func (p *Panel) Editing() (selection.Element, bool) {
	return p.target, p.editing
}

// BeginEdit snapshots the element's properties into a string form.
// Temperature is shown in °C.
func (p *Panel) BeginEdit(sel selection.Element) error {
	props, _, _, _, err := p.lookup(sel)
	if err != nil {
		return err
	}
	p.target = sel
	p.keys = props.Keys()
	p.form = make(map[string]string, len(p.keys))
	for _, key := range p.keys {
		p.form[key] = display(key, props[key])
	}
	p.editing = true
	return nil
}

// Form returns the editable rows in key order.
func (p *Panel) Form() []Field {
	if !p.editing {
		return nil
	}
	out := make([]Field, 0, len(p.keys))
	for _, key := range p.keys {
		out = append(out, Field{Key: key, Label: units.Label(key), Value: p.form[key]})
	}
	return out
}

// SetField changes one form value. Unknown keys are added to the form.
func (p *Panel) SetField(key, value string) error {
	if !p.editing {
		return ErrNotEditing
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return &network.Error{Kind: network.ErrValidation, Entity: p.entity(), ID: p.target.ID, Field: "key", Msg: "is required"}
	}
	if _, ok := p.form[key]; !ok {
		p.keys = append(p.keys, key)
		sort.Strings(p.keys)
	}
	p.form[key] = value
	return nil
}

// Save writes the form back through the model. On failure the panel stays
// in edit mode with the form intact and the model unchanged.
func (p *Panel) Save() error {
	if !p.editing {
		return ErrNotEditing
	}
	props := make(network.Properties, len(p.form))
	for key, text := range p.form {
		props[key] = parseField(key, text)
	}

	var err error
	switch p.target.Kind {
	case selection.KindEdge:
		err = p.saveConnection(props)
	default:
		err = p.store.UpdateNode(p.target.ID, props)
	}
	if err != nil {
		log.Warn("properties save rejected", "element", p.target.Key(), "error", err)
		return err
	}
	log.Debug("properties saved", "element", p.target.Key())
	p.Cancel()
	return nil
}

// Cancel leaves edit mode without writing anything.
func (p *Panel) Cancel() {
	p.editing = false
	p.target = selection.Element{}
	p.keys = nil
	p.form = nil
}

// Delete removes the selected element, cascading for nodes, and clears the
// selection.
func (p *Panel) Delete(sel selection.Element, selections *selection.Store) error {
	var err error
	if sel.Kind == selection.KindEdge {
		err = p.store.RemoveConnection(sel.ID)
	} else {
		err = p.store.RemoveNode(sel.ID)
	}
	if err != nil {
		return err
	}
	if p.editing && p.target.Key() == sel.Key() {
		p.Cancel()
	}
	if selections != nil {
		selections.Clear()
	}
	return nil
}

func (p *Panel) saveConnection(props network.Properties) error {
	conn, ok := p.store.Connection(p.target.ID)
	if !ok {
		return &network.Error{Kind: network.ErrNotFound, Entity: network.EntityConnection, ID: p.target.ID, Msg: "not found"}
	}
	flow, renamed := props["flow_rate"]
	if conn.Type != network.MassFlowController || !renamed {
		return p.store.UpdateConnection(conn.ID, props)
	}

	merged := conn.Properties.Clone()
	for k, v := range props {
		merged[k] = v
	}
	delete(merged, "flow_rate")
	merged["mass_flow_rate"] = flow
	return p.store.ReplaceConnectionProperties(conn.ID, merged)
}

func (p *Panel) lookup(sel selection.Element) (network.Properties, network.Kind, string, string, error) {
	if sel.Kind == selection.KindEdge {
		c, ok := p.store.Connection(sel.ID)
		if !ok {
			return nil, "", "", "", &network.Error{Kind: network.ErrNotFound, Entity: network.EntityConnection, ID: sel.ID, Msg: "not found"}
		}
		return c.Properties, c.Type, c.Source, c.Target, nil
	}
	n, ok := p.store.Node(sel.ID)
	if !ok {
		return nil, "", "", "", &network.Error{Kind: network.ErrNotFound, Entity: network.EntityNode, ID: sel.ID, Msg: "not found"}
	}
	return n.Properties, n.Type, "", "", nil
}

func (p *Panel) entity() network.Entity {
	if p.target.Kind == selection.KindEdge {
		return network.EntityConnection
	}
	return network.EntityNode
}

func display(key string, v any) string {
	switch t := v.(type) {
	case float64:
		if key == "temperature" {
			return units.FormatNumber(round(units.KelvinToCelsius(t)))
		}
		return units.FormatNumber(t)
	case string:
		return t
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// parseField turns form text back into a stored value: a number when it
// parses as one, the raw text otherwise. A bare temperature is °C.
func parseField(key, text string) any {
	trimmed := strings.TrimSpace(text)
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return text
	}
	if key == "temperature" {
		return units.CelsiusToKelvin(f)
	}
	return f
}

// round trims float noise from K to °C conversions (1000 K showing as
// 726.8499999999999).
func round(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 10, 64), 64)
	return r
}
