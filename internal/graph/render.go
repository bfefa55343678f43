package graph

import (
	"fmt"
	"strings"

	"github.com/boulder-sim/boulder/internal/units"
	"github.com/charmbracelet/lipgloss"
)

// Palette holds the colours used for chrome around nodes.
type Palette struct {
	Accent  string
	Muted   string
	Edge    string
	Preview string
}

// RenderOptions configures Render.
type RenderOptions struct {
	// FocusedID is the element under the keyboard cursor (node or edge id).
	FocusedID string
	// SelectedKey is selection.Element.Key() of the selected element.
	SelectedKey string
	// SourceID marks the pending connect-mode source.
	SourceID string
	// PreviewSource and PreviewTarget draw the dashed preview edge.
	PreviewSource, PreviewTarget string
	MaxWidth                     int
	Colors                       Palette
}

const (
	boxMinWidth = 14
	columnGap   = " ─▶ "
)

var octagonBorder = lipgloss.Border{
	Top:         "─",
	Bottom:      "─",
	Left:        "│",
	Right:       "│",
	TopLeft:     "╱",
	TopRight:    "╲",
	BottomLeft:  "╲",
	BottomRight: "╱",
}

// Render draws the scene as rank columns, left to right, followed by the
// list of connections.
func Render(scene Scene, layout Layout, opts RenderOptions) string {
	if len(scene.Nodes) == 0 {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(orColor(opts.Colors.Muted, "240"))).
			Render("No reactors yet. Press a to add one.")
	}

	views := make(map[string]NodeView, len(scene.Nodes))
	for _, n := range scene.Nodes {
		views[n.ID] = n
	}

	columns := make([]string, 0, len(layout.Ranks)*2)
	for i, rank := range layout.Ranks {
		if i > 0 {
			columns = append(columns, lipgloss.NewStyle().PaddingTop(1).
				Foreground(lipgloss.Color(orColor(opts.Colors.Edge, "245"))).Render(columnGap))
		}
		columns = append(columns, renderColumn(rank, views, opts))
	}

	graph := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	edges := renderEdges(scene, opts)

	out := graph
	if edges != "" {
		out = lipgloss.JoinVertical(lipgloss.Left, graph, "", edges)
	}
	if opts.MaxWidth > 0 && lipgloss.Width(out) > opts.MaxWidth {
		out = lipgloss.NewStyle().MaxWidth(opts.MaxWidth).Render(out)
	}
	return out
}

func renderColumn(ids []string, views map[string]NodeView, opts RenderOptions) string {
	var (
		blocks  []string
		run     []string
		runName string
	)
	flush := func() {
		if len(run) == 0 {
			return
		}
		if runName == "" {
			blocks = append(blocks, run...)
		} else {
			title := lipgloss.NewStyle().Italic(true).Render(strings.TrimPrefix(runName, "group:"))
			body := lipgloss.JoinVertical(lipgloss.Left, append([]string{title}, run...)...)
			blocks = append(blocks, lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color(orColor(opts.Colors.Muted, "240"))).
				Render(body))
		}
		run = nil
	}

	for _, id := range ids {
		view, ok := views[id]
		if !ok {
			continue
		}
		if view.Group != runName {
			flush()
			runName = view.Group
		}
		run = append(run, renderNode(view, opts))
	}
	flush()

	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

func renderNode(n NodeView, opts RenderOptions) string {
	marker := " "
	switch {
	case n.ID == opts.SourceID:
		marker = "◎"
	case "node:"+n.ID == opts.SelectedKey:
		marker = "●"
	case n.ID == opts.FocusedID:
		marker = "›"
	}

	lines := []string{
		fmt.Sprintf("%s %s", marker, n.Label),
		"  " + shortKind(string(n.Type)),
	}
	if n.HasTemp {
		lines = append(lines, fmt.Sprintf("  %.1f °C", units.KelvinToCelsius(n.Temperature)))
	}

	width := maxLen(lines...)
	if width < boxMinWidth {
		width = boxMinWidth
	}

	border := lipgloss.RoundedBorder()
	if n.Shape == ShapeOctagon {
		border = octagonBorder
	}
	style := lipgloss.NewStyle().
		Border(border).
		BorderForeground(lipgloss.Color(n.Color)).
		Padding(0, 1).
		Width(width + 2)

	if n.ID == opts.FocusedID || "node:"+n.ID == opts.SelectedKey {
		style = style.Bold(true)
		if opts.Colors.Accent != "" {
			style = style.BorderForeground(lipgloss.Color(opts.Colors.Accent))
		}
	}
	if "node:"+n.ID == opts.SelectedKey {
		style = style.BorderStyle(lipgloss.ThickBorder())
	}

	return style.Render(strings.Join(lines, "\n"))
}

func renderEdges(scene Scene, opts RenderOptions) string {
	var rows []string
	edgeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(orColor(opts.Colors.Edge, "245")))
	hot := lipgloss.NewStyle().Bold(true)
	if opts.Colors.Accent != "" {
		hot = hot.Foreground(lipgloss.Color(opts.Colors.Accent))
	}

	for _, e := range scene.Edges {
		marker := " "
		style := edgeStyle
		switch {
		case "edge:"+e.ID == opts.SelectedKey:
			marker = "●"
			style = hot
		case e.ID == opts.FocusedID:
			marker = "›"
			style = hot
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s %s: %s ──▶ %s  %s", marker, e.ID, e.Source, e.Target, e.Label)))
	}

	if opts.PreviewSource != "" && opts.PreviewTarget != "" && opts.PreviewSource != opts.PreviewTarget {
		preview := lipgloss.NewStyle().Foreground(lipgloss.Color(orColor(opts.Colors.Preview, "214")))
		rows = append(rows, preview.Render(fmt.Sprintf("  ┄ %s ┄┄▶ %s", opts.PreviewSource, opts.PreviewTarget)))
	}

	return strings.Join(rows, "\n")
}

func shortKind(kind string) string {
	kind = strings.TrimPrefix(kind, "IdealGas")
	if kind == "" {
		return "?"
	}
	return kind
}

func maxLen(lines ...string) int {
	m := 0
	for _, line := range lines {
		if w := lipgloss.Width(line); w > m {
			m = w
		}
	}
	return m
}

func orColor(c, fallback string) string {
	if c == "" {
		return fallback
	}
	return c
}
