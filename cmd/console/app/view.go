package app

import (
	"fmt"
	"strings"

	"github.com/boulder-sim/boulder/cmd/console/ui/detail"
	"github.com/boulder-sim/boulder/cmd/console/ui/status"
	"github.com/boulder-sim/boulder/internal/graph"
	"github.com/boulder-sim/boulder/internal/plugin"
	"github.com/boulder-sim/boulder/internal/results"
	"github.com/boulder-sim/boulder/internal/selection"
	"github.com/charmbracelet/lipgloss"
)

// View renders the interface.
func (m Model) View() string {
	width := m.viewportWidth
	if width <= 0 {
		width = 100
	}

	header := m.renderHeader(width)
	var body string
	switch m.state {
	case statusLoading:
		body = centerText(fmt.Sprintf("%s Loading configuration…", m.spinner.View()))
	case statusError:
		body = boxStyle.Render("Failed to load configuration: " + m.err.Error() + "\n\n" + placeholder.Render("Press r to retry or q to quit."))
	default:
		body = lipgloss.JoinVertical(lipgloss.Left, m.renderWorkspace(width), m.renderResults(width))
	}

	screen := lipgloss.JoinVertical(lipgloss.Left, header, body, m.renderFooter(width))
	if m.modal != modalNone {
		return m.renderModal(screen)
	}
	return screen
}

func (m Model) renderHeader(totalWidth int) string {
	name, _ := m.store.Source()
	title := "untitled network"
	if name != "" {
		title = name
	} else if m.origin != "" {
		title = m.origin + " network"
	}
	cfg := m.store.Snapshot()
	info := barStyle.Render(fmt.Sprintf("%s  •  %d nodes  •  %d connections  •  %s theme",
		title, len(cfg.Nodes), len(cfg.Connections), m.theme))

	logo := logoStyle.Render("┌────┐\n│ Bo │\n└────┘")
	logoWidth := lipgloss.Width(logo)
	leftWidth := max(totalWidth-logoWidth, 0)
	left := lipgloss.NewStyle().Width(leftWidth).MaxWidth(leftWidth).PaddingTop(1).Render(info)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, logo)
}

// renderWorkspace lays the network graph beside the properties pane.
func (m Model) renderWorkspace(totalWidth int) string {
	detailWidth := clamp(totalWidth/3, 28, 48)
	graphWidth := max(totalWidth-detailWidth-4, 30)

	sel, hasSel := m.selections.Current()
	opts := graph.RenderOptions{
		FocusedID:     m.focused,
		PreviewSource: m.previewSource,
		PreviewTarget: m.previewTarget,
		MaxWidth:      graphWidth - 4,
		Colors:        m.palette.graphColors(),
	}
	if hasSel {
		opts.SelectedKey = sel.Key()
	}
	if src, ok := m.connector.Source(); ok {
		opts.SourceID = src
	}

	graphBox := boxStyle
	if m.cursor == graph.CursorCrosshair {
		graphBox = activeBox
	}
	graphPane := graphBox.Width(graphWidth).Render(graph.Render(m.renderer.Scene(), m.renderer.Layout(), opts))

	vm := detail.ViewModel{Width: detailWidth - 4}
	if hasSel {
		v, err := m.panel.View(sel)
		if err != nil {
			vm.Err = err
		} else {
			vm.View = &v
		}
	}
	if m.modal == modalProperties {
		vm.Editing = true
		vm.Form = m.panel.Form()
		vm.Cursor = m.propCursor
		vm.Input = m.propInput.View()
		vm.Issue = m.propIssue
	}
	detailPane := boxStyle.Width(detailWidth).Render(detail.Render(vm))

	return lipgloss.JoinHorizontal(lipgloss.Top, graphPane, detailPane)
}

func (m Model) renderResults(totalWidth int) string {
	innerWidth := max(totalWidth-6, 20)
	strip := m.renderTabStrip()
	content := m.renderTabContent(innerWidth)
	return boxStyle.Width(totalWidth - 2).Render(lipgloss.JoinVertical(lipgloss.Left, strip, "", content))
}

func (m Model) renderTabStrip() string {
	tabs := m.tabs.List()
	active := m.tabs.Active()
	parts := make([]string, len(tabs))
	for i, tab := range tabs {
		label := tab.Label
		if i < 9 {
			label = fmt.Sprintf("%d %s", i+1, tab.Label)
		}
		if tab.ID == active {
			parts[i] = tabActive.Render(label)
		} else {
			parts[i] = tabInactive.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) renderTabContent(width int) string {
	var sel *selection.Element
	if cur, ok := m.selections.Current(); ok {
		sel = &cur
	}
	cfg := m.store.Snapshot()

	active := m.tabs.Active()
	switch active {
	case results.TabPlots:
		return results.RenderPlots(results.Plots(sel, cfg, m.currentProgress()), width)
	case results.TabSankey:
		return results.RenderSankey(results.Sankey(m.snap.Results), width)
	case results.TabThermo:
		return results.RenderThermo(results.Thermo(sel, cfg, m.currentProgress()))
	case results.TabSummary:
		if m.snap.Results == nil {
			return placeholder.Render("Run a simulation to see the summary.")
		}
		elapsed := placeholder.Render("elapsed " + formatElapsed(m.snap.Results.ElapsedTime))
		return lipgloss.JoinVertical(lipgloss.Left, m.summary.View(), elapsed)
	case results.TabError:
		return errorStyle.Render(m.snap.Error)
	}

	id, ok := active.PluginID()
	if !ok {
		return ""
	}
	return m.renderPluginTab(id, width)
}

func (m Model) renderPluginTab(id string, width int) string {
	res, ok := m.bridge.Result(id)
	switch {
	case m.bridge.InFlight(id) && !ok:
		return fmt.Sprintf("%s Rendering %s…", m.spinner.View(), id)
	case !ok:
		return placeholder.Render("Nothing rendered yet.")
	case !res.Available:
		msg := res.Message
		if msg == "" {
			msg = plugin.UnavailableMessage
		}
		return placeholder.Render(msg)
	}
	return plugin.Render(res.Data, width)
}

func (m Model) renderFooter(width int) string {
	state := m.snap.State
	badge := status.Label(state, m.runner.Session.Percent())
	switch status.ToneOf(state) {
	case status.ToneRunning:
		badge = hintStyle.Render(m.spinner.View()+" "+badge) + m.progress.ViewAs(m.runner.Session.Percent())
	case status.ToneSuccess:
		badge = noticeStyle.Render("✓ " + badge)
	case status.ToneFailure:
		badge = errorStyle.Render("✗ " + badge)
	default:
		badge = barStyle.Render(badge)
	}

	lines := []string{badge}
	if m.hint != "" {
		lines[0] = lipgloss.JoinHorizontal(lipgloss.Top, badge, hintStyle.Render(m.hint))
	}
	if m.notice != "" {
		style := noticeStyle
		if m.noticeErr {
			style = errorStyle
		}
		lines = append(lines, style.MaxWidth(width).Render(m.notice))
	}
	lines = append(lines, barStyle.Render(m.help.View(m.keys)))
	return strings.Join(lines, "\n")
}

func (m Model) renderModal(background string) string {
	width := m.viewportWidth
	height := m.viewportHeight
	if width <= 0 {
		width = lipgloss.Width(background)
	}
	if height <= 0 {
		height = lipgloss.Height(background)
	}

	modalWidth := clamp(width-10, 40, max(width-4, 40))

	var body string
	switch m.modal {
	case modalForm:
		body = m.form.view(modalWidth - 6)
	case modalYAML:
		body = m.renderYAML()
	case modalProperties:
		// the form is drawn inside the properties pane
		return background
	}

	modal := modalStyle.Width(modalWidth).Render(body)
	return lipgloss.Place(width, height,
		lipgloss.Center, lipgloss.Center,
		modal,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.palette.WhitespaceTint)))
}

func (m Model) renderYAML() string {
	if m.yamlReadOnly {
		return strings.Join([]string{
			modalTitle.Render("Configuration (read-only)"),
			"",
			m.yamlView.View(),
			"",
			modalHint.Render("↑/↓ scroll • esc close"),
		}, "\n")
	}

	lines := []string{modalTitle.Render("Edit configuration"), "", m.yaml.View(), ""}
	hint := "ctrl+s save • esc discard"
	if m.editor.Stale() {
		hint += " • the network changed since this text was exported; saving replaces it"
	}
	lines = append(lines, modalHint.Render(hint))
	if m.yamlIssue != "" {
		lines = append(lines, errorStyle.Render(m.yamlIssue))
	}
	return strings.Join(lines, "\n")
}
