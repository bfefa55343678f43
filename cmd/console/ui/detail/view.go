package detail

import (
	"fmt"
	"strings"

	"github.com/boulder-sim/boulder/internal/properties"
	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	sectionTitleStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)
	labelStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	valueStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("253"))
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	placeholderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	cursorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
)

// ViewModel captures the data required to render the properties pane.
type ViewModel struct {
	// View is the selected element, nil when nothing is selected.
	View *properties.View
	Err  error

	// Editing switches the pane to the form rows below.
	Editing bool
	Form    []properties.Field
	Cursor  int
	// Input is the rendered text input of the row under the cursor.
	Input string
	// Issue is the last save rejection, shown under the form.
	Issue string

	Width int
}

// Render produces the properties pane.
func Render(vm ViewModel) string {
	style := lipgloss.NewStyle()
	if vm.Width > 0 {
		style = style.MaxWidth(vm.Width)
	}

	switch {
	case vm.Err != nil:
		return style.Render(errorStyle.Render("Failed to load properties: " + vm.Err.Error()))
	case vm.View == nil:
		return style.Render(placeholderStyle.Render("Select a node or connection to view its properties."))
	}

	sections := []string{renderHeader(*vm.View)}
	if vm.Editing {
		sections = append(sections, renderForm(vm))
	} else {
		sections = append(sections, renderFields(vm.View.Fields))
	}

	return style.Render(strings.TrimSpace(strings.Join(sections, "\n")))
}

func renderHeader(v properties.View) string {
	title := headerStyle.Render(v.Title())
	if v.Source == "" && v.Target == "" {
		return title
	}
	sub := fmt.Sprintf("%s → %s", v.Source, v.Target)
	return lipgloss.JoinVertical(lipgloss.Left, title, labelStyle.Render(sub))
}

func renderFields(fields []properties.Field) string {
	if len(fields) == 0 {
		return renderSection("Properties", placeholderStyle.Render("No properties"))
	}
	width := labelWidth(fields)
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render(pad(f.Label, width)), valueStyle.Render(f.Value)))
	}
	return renderSection("Properties", strings.Join(lines, "\n"))
}

func renderForm(vm ViewModel) string {
	width := labelWidth(vm.Form)
	lines := make([]string, 0, len(vm.Form)+2)
	for i, f := range vm.Form {
		marker := "  "
		value := valueStyle.Render(f.Value)
		if i == vm.Cursor {
			marker = cursorStyle.Render("› ")
			if vm.Input != "" {
				value = vm.Input
			}
		}
		lines = append(lines, marker+labelStyle.Render(pad(f.Label, width))+" "+value)
	}
	lines = append(lines, placeholderStyle.Render("enter save • esc cancel • tab next field"))
	if strings.TrimSpace(vm.Issue) != "" {
		lines = append(lines, errorStyle.Render(vm.Issue))
	}
	return renderSection("Edit", strings.Join(lines, "\n"))
}

func renderSection(title, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		sectionTitleStyle.Render(title),
		body,
	)
}

func labelWidth(fields []properties.Field) int {
	w := 0
	for _, f := range fields {
		if n := lipgloss.Width(f.Label); n > w {
			w = n
		}
	}
	return w
}

func pad(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
