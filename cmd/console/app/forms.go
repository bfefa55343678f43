package app

import (
	"strings"

	"github.com/boulder-sim/boulder/internal/properties"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type formKind int

const (
	formNode formKind = iota
	formConnection
	formOpen
)

type formField struct {
	key   string
	label string
	input textinput.Model
}

// form is a modal dialog of labelled text inputs. It stays open with the
// last issue shown until a submit succeeds or it is cancelled.
type form struct {
	kind   formKind
	title  string
	fields []formField
	focus  int
	issue  string
}

func newField(key, label, value string) formField {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 256
	in.SetValue(value)
	return formField{key: key, label: label, input: in}
}

func newNodeForm(id string) *form {
	d := properties.DefaultNodeForm(id)
	f := &form{kind: formNode, title: "Add reactor", fields: []formField{
		newField("id", "ID", d.ID),
		newField("type", "Type", d.Type),
		newField("temperature", "Temperature (K)", d.Temperature),
		newField("pressure", "Pressure (Pa)", d.Pressure),
		newField("composition", "Composition", d.Composition),
		newField("volume", "Volume (m³)", d.Volume),
	}}
	f.setFocus(0)
	return f
}

func newConnectionForm(id, source, target string) *form {
	d := properties.DefaultConnectionForm(id)
	f := &form{kind: formConnection, title: "Add flow device", fields: []formField{
		newField("id", "ID", d.ID),
		newField("type", "Type", d.Type),
		newField("source", "Source", source),
		newField("target", "Target", target),
		newField("mass_flow_rate", "Mass flow rate (kg/s)", d.MassFlowRate),
	}}
	f.setFocus(0)
	return f
}

func newOpenForm() *form {
	f := &form{kind: formOpen, title: "Open configuration", fields: []formField{
		newField("path", "File", ""),
	}}
	f.fields[0].input.Placeholder = "network.yaml"
	f.setFocus(0)
	return f
}

func (f *form) value(key string) string {
	for _, field := range f.fields {
		if field.key == key {
			return strings.TrimSpace(field.input.Value())
		}
	}
	return ""
}

func (f *form) setFocus(i int) {
	if len(f.fields) == 0 {
		return
	}
	i = (i%len(f.fields) + len(f.fields)) % len(f.fields)
	for j := range f.fields {
		if j == i {
			f.fields[j].input.Focus()
		} else {
			f.fields[j].input.Blur()
		}
	}
	f.focus = i
}

func (f *form) next() { f.setFocus(f.focus + 1) }
func (f *form) prev() { f.setFocus(f.focus - 1) }

func (f *form) update(msg tea.Msg) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f *form) nodeForm() properties.NodeForm {
	return properties.NodeForm{
		ID:          f.value("id"),
		Type:        f.value("type"),
		Temperature: f.value("temperature"),
		Pressure:    f.value("pressure"),
		Composition: f.value("composition"),
		Volume:      f.value("volume"),
	}
}

func (f *form) connectionForm() properties.ConnectionForm {
	return properties.ConnectionForm{
		ID:           f.value("id"),
		Type:         f.value("type"),
		Source:       f.value("source"),
		Target:       f.value("target"),
		MassFlowRate: f.value("mass_flow_rate"),
	}
}

func (f *form) view(width int) string {
	labelWidth := 0
	for _, field := range f.fields {
		labelWidth = max(labelWidth, lipgloss.Width(field.label))
	}
	inputWidth := max(width-labelWidth-4, 16)

	lines := []string{modalTitle.Render(f.title), ""}
	for i, field := range f.fields {
		marker := "  "
		if i == f.focus {
			marker = "› "
		}
		field.input.Width = inputWidth
		label := lipgloss.NewStyle().Width(labelWidth).Render(field.label)
		lines = append(lines, marker+label+"  "+field.input.View())
	}
	lines = append(lines, "", modalHint.Render("enter submit • tab/shift+tab field • esc cancel"))
	if f.issue != "" {
		lines = append(lines, errorStyle.Render(f.issue))
	}
	return strings.Join(lines, "\n")
}
