package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/boulder-sim/boulder/cmd/console/config"
	"github.com/boulder-sim/boulder/internal/graph"
	"github.com/boulder-sim/boulder/internal/network"
	"github.com/boulder-sim/boulder/internal/plugin"
	"github.com/boulder-sim/boulder/internal/properties"
	"github.com/boulder-sim/boulder/internal/results"
	"github.com/boulder-sim/boulder/internal/selection"
	"github.com/boulder-sim/boulder/internal/simulation"
	"github.com/boulder-sim/boulder/internal/transcoder"
	"github.com/boulder-sim/boulder/pkg/log"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type status int

const (
	statusLoading status = iota
	statusReady
	statusError
)

type modal int

const (
	modalNone modal = iota
	modalForm
	modalYAML
	modalProperties
)

// errOffline is shown when a run is requested without an engine.
var errOffline = errors.New("simulations need a gateway; the console is offline")

// Model represents the Bubble Tea program state. The stores it points to
// are shared by every copy of the model.
type Model struct {
	deps     Deps
	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	progress progress.Model
	summary  table.Model

	store      *network.Store
	renderer   *graph.Renderer
	connector  *graph.Connector
	selections *selection.Store
	panel      *properties.Panel
	editor     *transcoder.Editor
	runner     *simulation.Runner
	feed       *feed
	tabs       *results.Tabs
	bridge     *plugin.Bridge

	state  status
	err    error
	origin string
	snap   simulation.Snapshot

	focused       string
	edge          int
	cursor        string
	hint          string
	notice        string
	noticeErr     bool
	previewSource string
	previewTarget string

	modal        modal
	form         *form
	yaml         textarea.Model
	yamlView     viewport.Model
	yamlReadOnly bool
	yamlIssue    string
	propInput    textinput.Model
	propCursor   int
	propIssue    string

	cancelRun context.CancelFunc
	runSeq    int

	theme          string
	palette        themePalette
	viewportWidth  int
	viewportHeight int
}

// New creates the root model with dependency references.
func New(deps Deps) Model {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Dir == "" {
		deps.Dir = "."
	}
	if deps.Backend == nil {
		deps.Backend = transcoder.Local{}
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ta := textarea.New()
	ta.ShowLineNumbers = true
	ta.CharLimit = 0

	in := textinput.New()
	in.Prompt = ""

	store := network.NewStore()
	runner := &simulation.Runner{Engine: deps.Engine, Session: simulation.NewSession()}

	m := Model{
		deps:       deps,
		keys:       defaultKeys(),
		help:       help.New(),
		spinner:    sp,
		progress:   progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		summary:    newSummaryTable(),
		store:      store,
		renderer:   graph.NewRenderer(store, graph.DefaultSpacing),
		connector:  graph.NewConnector(),
		selections: selection.NewStore(),
		panel:      properties.NewPanel(store),
		editor:     transcoder.NewEditor(store, deps.Backend),
		runner:     runner,
		feed:       newFeed(runner.Session),
		tabs:       results.NewTabs(),
		bridge:     plugin.NewBridge(),
		state:      statusLoading,
		cursor:     graph.CursorDefault,
		yaml:       ta,
		yamlView:   viewport.New(80, 20),
		propInput:  in,
	}
	m.snap = runner.Session.Snapshot()
	m.setTheme(deps.Theme)
	return m
}

// Init bootstraps the initial load, plugin discovery and the session feed.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.feed.wait()}
	if m.deps.Sources != nil {
		cmds = append(cmds, loadInitial(m.deps.Sources))
	}
	if m.deps.Plugins != nil {
		cmds = append(cmds, discoverPlugins(m.deps.Plugins))
	}
	return tea.Batch(cmds...)
}

// Close releases the session feed and stops a run still in flight.
func (m Model) Close() {
	running := m.runner.Session.Stop()
	if m.cancelRun != nil {
		m.cancelRun()
	}
	if running != "" && m.deps.Engine != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.deps.Engine.Stop(ctx, running); err != nil {
			log.Warn("failed to stop simulation on exit", "id", running, "error", err)
		}
	}
	m.feed.close()
	m.renderer.Close()
}

// Update handles Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		cmd = m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.viewportWidth = msg.Width
		m.viewportHeight = msg.Height
		m.help.Width = msg.Width
		m.progress.Width = max(msg.Width/4, 10)
		m.yaml.SetWidth(max(msg.Width-16, 20))
		m.yaml.SetHeight(max(msg.Height-14, 5))
		m.yamlView.Width = max(msg.Width-16, 20)
		m.yamlView.Height = max(msg.Height-14, 5)
		m.resizeSummary(max(msg.Width-6, 20), max(msg.Height/3-4, 3))
		return m, nil
	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		return m, cmd
	case configLoadedMsg:
		m.applyDocument(msg)
	case loadFailedMsg:
		m.state = statusError
		m.err = msg.err
		return m, nil
	case uploadFailedMsg:
		if m.modal == modalForm && m.form != nil && m.form.kind == formOpen {
			m.form.issue = msg.err.Error()
		} else {
			m.fail(msg.err)
		}
		return m, nil
	case pluginsLoadedMsg:
		if msg.err != nil {
			log.Warn("plugin discovery failed", "error", msg.err)
			m.fail(fmt.Errorf("plugin discovery: %w", msg.err))
			return m, nil
		}
		m.bridge.SetDescriptors(msg.descs)
		m.tabs.SetPlugins(m.bridge.Descriptors())
	case editorOpenedMsg:
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.openYAML(msg.text, msg.readOnly)
		return m, nil
	case editorSavedMsg:
		if msg.err != nil {
			m.yamlIssue = msg.err.Error()
			return m, nil
		}
		m.closeModal()
		m.afterMutation()
		m.notify("Configuration replaced from YAML")
	case runFinishedMsg:
		if msg.seq != m.runSeq {
			return m, nil
		}
		m.cancelRun = nil
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.fail(msg.err)
		}
		m.applySnapshot(msg.snap)
	case snapshotMsg:
		m.applySnapshot(msg.snap)
		cmd = m.feed.wait()
	case pluginRenderedMsg:
		if !msg.again {
			return m, nil
		}
	case codeSavedMsg:
		if msg.err != nil {
			m.fail(msg.err)
		} else {
			m.notify("Generated code written to " + msg.path)
		}
		return m, nil
	}

	return m, tea.Batch(cmd, m.pluginCmd())
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch m.modal {
	case modalForm:
		return m.handleFormKey(msg)
	case modalYAML:
		return m.handleYAMLKey(msg)
	case modalProperties:
		return m.handlePropertiesKey(msg)
	}

	if m.state != statusReady {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return tea.Quit
		case key.Matches(msg, m.keys.Run) && m.state == statusError && m.deps.Sources != nil:
			m.state = statusLoading
			m.err = nil
			return loadInitial(m.deps.Sources)
		}
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Left):
		m.moveFocus(-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.moveFocus(1, 0)
	case key.Matches(msg, m.keys.Up):
		m.moveFocus(0, -1)
	case key.Matches(msg, m.keys.Down):
		m.moveFocus(0, 1)
	case key.Matches(msg, m.keys.Click):
		if n, ok := m.store.Node(m.focused); ok {
			m.apply(m.connector.ClickNode(n.ID, n.Type))
		}
	case key.Matches(msg, m.keys.Edge):
		m.cycleEdge()
	case key.Matches(msg, m.keys.Background):
		if m.connector.State() == graph.GestureArmed {
			m.apply(m.connector.ModifierUp())
		} else {
			m.apply(m.connector.ClickBackground())
		}
	case key.Matches(msg, m.keys.Connect):
		if m.connector.State() == graph.GestureIdle {
			m.apply(m.connector.ModifierDown())
		} else {
			m.apply(m.connector.ModifierUp())
		}
	case key.Matches(msg, m.keys.AddNode):
		m.openForm(newNodeForm(m.store.Snapshot().NextNodeID("reactor")))
	case key.Matches(msg, m.keys.AddConnection):
		source := m.focused
		if sel, ok := m.selections.Current(); ok && sel.Kind == selection.KindNode {
			source = sel.ID
		}
		m.openForm(newConnectionForm(m.store.Snapshot().NextConnectionID("mfc"), source, ""))
	case key.Matches(msg, m.keys.Edit):
		m.beginEdit()
	case key.Matches(msg, m.keys.Delete):
		m.deleteSelection()
	case key.Matches(msg, m.keys.ViewYAML):
		return openEditor(m.editor, true)
	case key.Matches(msg, m.keys.EditYAML):
		return openEditor(m.editor, false)
	case key.Matches(msg, m.keys.Run):
		return m.startRun()
	case key.Matches(msg, m.keys.Stop):
		m.stopRun()
	case key.Matches(msg, m.keys.NextTab):
		m.tabs.Next()
	case key.Matches(msg, m.keys.PrevTab):
		m.tabs.Prev()
	case key.Matches(msg, m.keys.Open):
		if m.deps.Sources == nil {
			m.fail(errors.New("no configuration source"))
			return nil
		}
		m.openForm(newOpenForm())
	case key.Matches(msg, m.keys.New):
		m.store.ResetConfiguration()
		m.origin = ""
		m.afterMutation()
		m.notify("Started an empty network")
	case key.Matches(msg, m.keys.Download):
		return m.downloadCode()
	case key.Matches(msg, m.keys.Theme):
		m.toggleTheme()
	default:
		if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			m.tabs.ActivateIndex(int(s[0] - '1'))
		}
	}
	return nil
}

// apply carries out the effects of a graph gesture.
func (m *Model) apply(effects []graph.Effect) {
	for _, e := range effects {
		switch e.Kind {
		case graph.EffectHint:
			m.hint = e.Message
		case graph.EffectCursor:
			m.cursor = e.Message
			if e.Message == graph.CursorDefault {
				m.hint = ""
			}
		case graph.EffectPreview:
			m.previewSource, m.previewTarget = e.Source, e.Target
		case graph.EffectClearPreview:
			m.previewSource, m.previewTarget = "", ""
		case graph.EffectConnect:
			m.connect(e.Source, e.Target)
		case graph.EffectSelect:
			m.selections.Select(e.Element)
		case graph.EffectClearSelection:
			m.selections.Clear()
		case graph.EffectNotice:
			m.notify(e.Message)
		case graph.EffectShowThermo:
			m.tabs.Activate(results.TabThermo)
		}
	}
}

func (m *Model) connect(source, target string) {
	conn, err := graph.ProposeConnection(m.store.Snapshot(), source, target)
	if err == nil {
		err = m.store.AddConnection(conn)
	}
	if err != nil {
		m.fail(err)
		return
	}
	m.afterMutation()
	m.notify(fmt.Sprintf("Connected %s → %s (%s)", source, target, conn.ID))
}

func (m *Model) moveFocus(dRank, dOrder int) {
	ranks := m.renderer.Layout().Ranks
	r, i := locate(ranks, m.focused)
	if r < 0 {
		m.ensureFocus()
		return
	}
	if dRank != 0 {
		r = clamp(r+dRank, 0, len(ranks)-1)
		if len(ranks[r]) == 0 {
			return
		}
		i = clamp(i, 0, len(ranks[r])-1)
	} else {
		i = clamp(i+dOrder, 0, len(ranks[r])-1)
	}
	if ranks[r][i] == m.focused {
		return
	}
	m.focused = ranks[r][i]
	m.edge = 0
	m.apply(m.connector.Hover(m.focused))
}

// ensureFocus keeps the cursor on an existing node.
func (m *Model) ensureFocus() {
	ranks := m.renderer.Layout().Ranks
	if r, _ := locate(ranks, m.focused); r >= 0 {
		return
	}
	m.focused = ""
	m.edge = 0
	for _, ids := range ranks {
		if len(ids) > 0 {
			m.focused = ids[0]
			return
		}
	}
}

// cycleEdge selects the next connection touching the focused node.
func (m *Model) cycleEdge() {
	conns := m.store.Snapshot().ConnectionsOf(m.focused)
	if len(conns) == 0 {
		m.notify("No connections on " + m.focused)
		return
	}
	c := conns[m.edge%len(conns)]
	m.edge = (m.edge + 1) % len(conns)
	m.apply(m.connector.ClickEdge(c.ID, c.Type))
}

func (m *Model) afterMutation() {
	m.selections.Prune(m.store.Snapshot())
	m.ensureFocus()
}

func (m *Model) applyDocument(msg configLoadedMsg) {
	if m.modal == modalForm && m.form != nil && m.form.kind == formOpen {
		m.closeModal()
	}
	m.store.SetConfiguration(msg.doc.Config, msg.doc.Filename, msg.doc.YAML)
	m.selections.Clear()
	m.state = statusReady
	m.err = nil
	m.origin = msg.origin
	m.focused = ""
	m.ensureFocus()

	name := msg.doc.Filename
	if name == "" {
		name = msg.origin + " network"
	}
	m.notify(fmt.Sprintf("Loaded %s (%d nodes, %d connections)", name, len(msg.doc.Config.Nodes), len(msg.doc.Config.Connections)))
}

func (m *Model) applySnapshot(snap simulation.Snapshot) {
	if snap.Generation < m.snap.Generation {
		return
	}
	m.snap = snap
	m.tabs.SyncError(snap.Error != "")
	if snap.Results != nil {
		m.summary.SetRows(summaryToRows(results.Summary(snap.Results)))
	} else {
		m.summary.SetRows(nil)
	}
}

func (m *Model) startRun() tea.Cmd {
	if m.deps.Engine == nil {
		m.fail(errOffline)
		return nil
	}
	if m.cancelRun != nil || m.runner.Session.State() == simulation.Running {
		m.fail(simulation.ErrSessionActive)
		return nil
	}
	cfg := m.store.Snapshot()
	if len(cfg.Nodes) == 0 {
		m.fail(errors.New("the network is empty"))
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelRun = cancel
	m.runSeq++
	m.tabs.Activate(results.TabPlots)
	m.notify("Simulation started")
	return runSimulation(ctx, m.runner, m.runSeq, cfg, m.deps.Params)
}

// stopRun ends a run in flight, or clears the last outcome. No event of
// the stopped run is applied once it returns.
func (m *Model) stopRun() {
	if m.cancelRun != nil {
		m.runner.Session.Stop()
		m.cancelRun()
		m.cancelRun = nil
		m.applySnapshot(m.runner.Session.Snapshot())
		m.notify("Simulation stopped")
		return
	}
	if m.runner.Session.State() == simulation.Idle {
		return
	}
	m.runner.Session.Clear()
	m.notify("Results cleared")
}

func (m *Model) downloadCode() tea.Cmd {
	name, _ := m.store.Source()
	code := results.Code(m.snap.Results, name, m.deps.Now())
	if code == "" {
		m.fail(errors.New("no generated code yet: run a simulation first"))
		return nil
	}
	return writeCode(filepath.Join(m.deps.Dir, results.DownloadName), code)
}

func (m *Model) deleteSelection() {
	sel, ok := m.selections.Current()
	if !ok {
		m.fail(errors.New("nothing selected"))
		return
	}
	if err := m.panel.Delete(sel, m.selections); err != nil {
		m.fail(err)
		return
	}
	m.afterMutation()
	m.notify("Deleted " + sel.ID)
}

// pluginCmd renders the active plugin tab when its inputs changed.
func (m *Model) pluginCmd() tea.Cmd {
	if m.deps.Plugins == nil {
		return nil
	}
	id, ok := m.tabs.Active().PluginID()
	if !ok {
		return nil
	}
	t, ok := m.bridge.Request(id, m.pluginInputs())
	if !ok {
		return nil
	}
	return renderPlugin(m.bridge, m.deps.Plugins, t)
}

func (m *Model) pluginInputs() plugin.Inputs {
	cfg := m.store.Snapshot()
	in := plugin.Inputs{Config: &cfg, ConfigVersion: m.store.Version(), Theme: m.theme}
	if m.snap.Results != nil {
		in.Results = m.snap.Results
		in.ResultsID = m.snap.ID
	}
	if sel, ok := m.selections.Current(); ok {
		in.Selection = &sel
	}
	return in
}

func (m *Model) currentProgress() *simulation.Progress {
	if m.snap.Results != nil {
		return &m.snap.Results.Progress
	}
	return m.snap.Progress
}

func (m *Model) notify(text string) {
	m.notice = text
	m.noticeErr = false
}

func (m *Model) fail(err error) {
	m.notice = err.Error()
	m.noticeErr = true
}

func (m *Model) openForm(f *form) {
	m.form = f
	m.modal = modalForm
}

func (m *Model) closeModal() {
	m.modal = modalNone
	m.form = nil
	m.yamlIssue = ""
	m.propIssue = ""
	m.yaml.Blur()
	m.propInput.Blur()
}

func (m *Model) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.closeModal()
		return nil
	case "tab", "down":
		m.form.next()
		return nil
	case "shift+tab", "up":
		m.form.prev()
		return nil
	case "enter":
		return m.submitForm()
	}
	return m.form.update(msg)
}

// submitForm keeps the dialog open on any failure so the input can be
// corrected.
func (m *Model) submitForm() tea.Cmd {
	f := m.form
	switch f.kind {
	case formNode:
		node, err := f.nodeForm().Node()
		if err == nil {
			err = m.store.AddNode(node)
		}
		if err != nil {
			f.issue = err.Error()
			return nil
		}
		m.closeModal()
		m.focused = node.ID
		m.afterMutation()
		m.notify("Added " + node.ID)
	case formConnection:
		conn, err := f.connectionForm().Connection()
		if err == nil {
			err = m.store.AddConnection(conn)
		}
		if err != nil {
			f.issue = err.Error()
			return nil
		}
		m.closeModal()
		m.afterMutation()
		m.notify(fmt.Sprintf("Added %s (%s → %s)", conn.ID, conn.Source, conn.Target))
	case formOpen:
		path := f.value("path")
		if path == "" {
			f.issue = "file path is required"
			return nil
		}
		f.issue = ""
		return uploadFile(m.deps.Sources, path)
	}
	return nil
}

func (m *Model) openYAML(text string, readOnly bool) {
	m.modal = modalYAML
	m.yamlReadOnly = readOnly
	m.yamlIssue = ""
	if readOnly {
		m.yamlView.SetContent(strings.TrimSuffix(text, "\n"))
		m.yamlView.GotoTop()
		return
	}
	m.yaml.SetValue(text)
	m.yaml.Focus()
}

func (m *Model) handleYAMLKey(msg tea.KeyMsg) tea.Cmd {
	if m.yamlReadOnly {
		switch msg.String() {
		case "esc", "q", "v":
			m.closeModal()
			return nil
		}
		var cmd tea.Cmd
		m.yamlView, cmd = m.yamlView.Update(msg)
		return cmd
	}

	switch msg.String() {
	case "esc":
		m.editor.Close()
		m.closeModal()
		return nil
	case "ctrl+s":
		return saveEditor(m.editor, m.yaml.Value())
	}
	var cmd tea.Cmd
	m.yaml, cmd = m.yaml.Update(msg)
	return cmd
}

func (m *Model) beginEdit() {
	sel, ok := m.selections.Current()
	if !ok {
		m.fail(errors.New("select a node or connection first"))
		return
	}
	if err := m.panel.BeginEdit(sel); err != nil {
		m.fail(err)
		return
	}
	if len(m.panel.Form()) == 0 {
		m.panel.Cancel()
		m.fail(fmt.Errorf("%s has no editable properties", sel.ID))
		return
	}
	m.modal = modalProperties
	m.propIssue = ""
	m.focusProperty(0)
}

func (m *Model) focusProperty(i int) {
	fields := m.panel.Form()
	if len(fields) == 0 {
		return
	}
	m.propCursor = (i%len(fields) + len(fields)) % len(fields)
	m.propInput.SetValue(fields[m.propCursor].Value)
	m.propInput.CursorEnd()
	m.propInput.Focus()
}

// commitProperty writes the text input back into the panel form.
func (m *Model) commitProperty() error {
	fields := m.panel.Form()
	if m.propCursor >= len(fields) {
		return nil
	}
	return m.panel.SetField(fields[m.propCursor].Key, m.propInput.Value())
}

func (m *Model) handlePropertiesKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.panel.Cancel()
		m.closeModal()
		return nil
	case "tab", "down":
		if err := m.commitProperty(); err != nil {
			m.propIssue = err.Error()
			return nil
		}
		m.focusProperty(m.propCursor + 1)
		return nil
	case "shift+tab", "up":
		if err := m.commitProperty(); err != nil {
			m.propIssue = err.Error()
			return nil
		}
		m.focusProperty(m.propCursor - 1)
		return nil
	case "enter":
		sel, _ := m.panel.Editing()
		if err := m.commitProperty(); err != nil {
			m.propIssue = err.Error()
			return nil
		}
		if err := m.panel.Save(); err != nil {
			m.propIssue = err.Error()
			return nil
		}
		m.closeModal()
		m.afterMutation()
		m.notify("Saved " + sel.ID)
		return nil
	}
	var cmd tea.Cmd
	m.propInput, cmd = m.propInput.Update(msg)
	return cmd
}

// Theme returns the active palette name.
func (m Model) Theme() string {
	if m.theme == "" {
		return config.ThemeDark
	}
	return m.theme
}
