package app

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/boulder-sim/boulder/internal/network"
	"github.com/boulder-sim/boulder/internal/plugin"
	"github.com/boulder-sim/boulder/internal/results"
	"github.com/boulder-sim/boulder/internal/selection"
	"github.com/boulder-sim/boulder/internal/simulation"
	"github.com/boulder-sim/boulder/pkg/client"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/suite"
)

type fakeSources struct {
	preloaded *client.Document
	def       *client.Document
	err       error
	uploads   []string
}

func (f *fakeSources) Default(context.Context) (*client.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.def, nil
}

func (f *fakeSources) Preloaded(context.Context) (*client.Document, bool, error) {
	return f.preloaded, f.preloaded != nil, nil
}

func (f *fakeSources) Upload(_ context.Context, name string, _ []byte) (*client.Document, error) {
	f.uploads = append(f.uploads, name)
	return &client.Document{Config: pair(), Filename: name}, nil
}

type fakeEngine struct {
	mu      sync.Mutex
	events  []simulation.Event
	stream  *simulation.Subscription
	stopped []string
}

func (f *fakeEngine) Start(context.Context, network.Configuration, simulation.Params) (string, error) {
	return "sim-1", nil
}

func (f *fakeEngine) Stream(context.Context, string) (*simulation.Subscription, error) {
	if f.stream != nil {
		return f.stream, nil
	}
	ch := make(chan simulation.Event, len(f.events))
	for _, ev := range f.events {
		ch <- ev
	}
	close(ch)
	return simulation.NewSubscription(ch, nil), nil
}

func (f *fakeEngine) Stop(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = append(f.stopped, id)
	return nil
}

func (f *fakeEngine) stoppedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.stopped...)
}

func (f *fakeEngine) Results(context.Context, string) (*simulation.Results, error) {
	return nil, errors.New("not found")
}

type fakePlugins struct {
	mu    sync.Mutex
	calls int
}

func (f *fakePlugins) List(context.Context) ([]plugin.Descriptor, error) {
	return []plugin.Descriptor{{ID: "notes", Label: "Notes"}}, nil
}

func (f *fakePlugins) Render(_ context.Context, _ string, c plugin.Context) (*plugin.Result, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return &plugin.Result{Available: true, Data: plugin.Text("theme is " + c.Theme)}, nil
}

func pair() network.Configuration {
	return network.Configuration{
		Nodes: []network.Node{
			{ID: "r1", Type: network.IdealGasReactor, Properties: network.Properties{
				"temperature": 1000.0, "pressure": 101325.0, "composition": "CH4:1,O2:2,N2:7.52",
			}},
			{ID: "res1", Type: network.Reservoir, Properties: network.Properties{
				"temperature": 300.0, "composition": "O2:1,N2:3.76",
			}},
		},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

type ModelSuite struct {
	suite.Suite
	sources *fakeSources
	engine  *fakeEngine
	plugins *fakePlugins
	models  []Model
}

func TestModelSuite(t *testing.T) {
	suite.Run(t, new(ModelSuite))
}

func (s *ModelSuite) SetupTest() {
	s.sources = &fakeSources{def: &client.Document{Config: pair(), YAML: "nodes: []"}}
	s.engine = &fakeEngine{}
	s.plugins = &fakePlugins{}
	s.models = nil
}

func (s *ModelSuite) TearDownTest() {
	for _, m := range s.models {
		m.Close()
	}
}

func (s *ModelSuite) newModel(deps Deps) Model {
	if deps.Sources == nil {
		deps.Sources = s.sources
	}
	m := New(deps)
	s.models = append(s.models, m)
	return m
}

func (s *ModelSuite) send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		res, _ := m.Update(msg)
		m = res.(Model)
	}
	return m
}

func (s *ModelSuite) newReadyModel(deps Deps) Model {
	m := s.newModel(deps)
	return s.send(m, configLoadedMsg{doc: &client.Document{Config: pair()}, origin: "default"})
}

func (s *ModelSuite) event(typ simulation.EventType, v any) simulation.Event {
	raw, err := json.Marshal(v)
	s.Require().NoError(err)
	return simulation.Event{Type: typ, Data: raw}
}

func (s *ModelSuite) TestLoadInitialPrefersPreloaded() {
	s.sources.preloaded = &client.Document{Config: pair(), Filename: "plant.yaml"}
	msg := loadInitial(s.sources)()
	loaded, ok := msg.(configLoadedMsg)
	s.Require().True(ok)
	s.Equal("preloaded", loaded.origin)

	s.sources.preloaded = nil
	loaded = loadInitial(s.sources)().(configLoadedMsg)
	s.Equal("default", loaded.origin)
}

func (s *ModelSuite) TestLoadFailureShowsErrorAndRetries() {
	s.sources.err = errors.New("backend down")
	m := s.newModel(Deps{})
	m = s.send(m, loadInitial(s.sources)())
	s.Equal(statusError, m.state)
	s.Contains(m.View(), "backend down")

	m.handleKey(runes("r"))
	s.Equal(statusLoading, m.state)
}

func (s *ModelSuite) TestConfigLoadedFocusesFirstNode() {
	m := s.newReadyModel(Deps{})
	s.Equal(statusReady, m.state)
	s.Equal("r1", m.focused)
	s.Contains(m.notice, "2 nodes")
	s.Len(m.store.Snapshot().Nodes, 2)
}

func (s *ModelSuite) TestClickSelectsFocusedNode() {
	m := s.newReadyModel(Deps{})
	m = s.send(m, runes("j"), tea.KeyMsg{Type: tea.KeyEnter})

	sel, ok := m.selections.Current()
	s.Require().True(ok)
	s.Equal(selection.Element{Kind: selection.KindNode, ID: "res1", Type: network.Reservoir}, sel)
	s.Contains(m.View(), "res1 (Reservoir)")

	m = s.send(m, tea.KeyMsg{Type: tea.KeyEsc})
	_, ok = m.selections.Current()
	s.False(ok)
}

func (s *ModelSuite) TestConnectGestureAddsMassFlowController() {
	m := s.newReadyModel(Deps{})

	m = s.send(m, runes("c"))
	s.NotEmpty(m.hint)
	m = s.send(m, tea.KeyMsg{Type: tea.KeyEnter}, runes("j"))
	s.Equal("r1", m.previewSource)
	s.Equal("res1", m.previewTarget)

	m = s.send(m, tea.KeyMsg{Type: tea.KeyEnter})
	conn, ok := m.store.Connection("mfc_1")
	s.Require().True(ok)
	s.Equal("r1", conn.Source)
	s.Equal("res1", conn.Target)
	s.Equal(network.MassFlowController, conn.Type)
	s.Empty(m.previewTarget)

	m = s.send(m, runes("c"))
	s.Equal("", m.hint)
}

func (s *ModelSuite) TestAddReactorFormKeepsOpenOnDuplicate() {
	m := s.newReadyModel(Deps{})
	m = s.send(m, runes("a"))
	s.Require().Equal(modalForm, m.modal)
	s.Equal("reactor3", m.form.value("id"))

	m.form.fields[0].input.SetValue("r1")
	m = s.send(m, tea.KeyMsg{Type: tea.KeyEnter})
	s.Equal(modalForm, m.modal)
	s.Contains(m.form.issue, "r1")
	s.Len(m.store.Snapshot().Nodes, 2)

	m.form.fields[0].input.SetValue("r2")
	m = s.send(m, tea.KeyMsg{Type: tea.KeyEnter})
	s.Equal(modalNone, m.modal)
	s.Equal("r2", m.focused)
	_, ok := m.store.Node("r2")
	s.True(ok)
}

func (s *ModelSuite) TestAddConnectionFormRejectsSelfLoop() {
	m := s.newReadyModel(Deps{})
	m = s.send(m, runes("A"))
	s.Require().Equal(formConnection, m.form.kind)
	s.Equal("r1", m.form.value("source"))

	m.form.fields[3].input.SetValue("r1")
	m = s.send(m, tea.KeyMsg{Type: tea.KeyEnter})
	s.Equal(modalForm, m.modal)
	s.NotEmpty(m.form.issue)
	s.Empty(m.store.Snapshot().Connections)

	m.form.fields[3].input.SetValue("res1")
	m = s.send(m, tea.KeyMsg{Type: tea.KeyEnter})
	s.Equal(modalNone, m.modal)
	s.Len(m.store.Snapshot().Connections, 1)
}

func (s *ModelSuite) TestDeleteCascadesAndClearsSelection() {
	m := s.newReadyModel(Deps{})
	s.Require().NoError(m.store.AddConnection(network.Connection{
		ID: "mfc1", Type: network.MassFlowController, Source: "res1", Target: "r1",
		Properties: network.Properties{"mass_flow_rate": 0.1},
	}))
	m = s.send(m, tea.KeyMsg{Type: tea.KeyEnter}, runes("d"))

	cfg := m.store.Snapshot()
	s.Len(cfg.Nodes, 1)
	s.Empty(cfg.Connections)
	_, ok := m.selections.Current()
	s.False(ok)
	s.Equal("res1", m.focused)
}

func (s *ModelSuite) TestEditPropertiesSavesThroughModel() {
	m := s.newReadyModel(Deps{})
	m = s.send(m, tea.KeyMsg{Type: tea.KeyEnter}, runes("p"))
	s.Require().Equal(modalProperties, m.modal)

	for i, f := range m.panel.Form() {
		if f.Key == "pressure" {
			m.focusProperty(i)
		}
	}
	m.propInput.SetValue("200000")
	m = s.send(m, tea.KeyMsg{Type: tea.KeyEnter})

	s.Equal(modalNone, m.modal)
	n, _ := m.store.Node("r1")
	p, ok := n.Properties.Float("pressure")
	s.True(ok)
	s.InDelta(200000, p, 1e-9)
}

func (s *ModelSuite) TestMalformedYAMLLeavesModelUntouched() {
	m := s.newReadyModel(Deps{})
	before := m.store.Snapshot()
	version := m.store.Version()

	m = s.send(m, openEditor(m.editor, false)())
	s.Require().Equal(modalYAML, m.modal)
	s.Contains(m.yaml.Value(), "r1")

	m = s.send(m, saveEditor(m.editor, "nodes: [unterminated")())
	s.Equal(modalYAML, m.modal)
	s.NotEmpty(m.yamlIssue)
	s.Equal(version, m.store.Version())
	s.Equal(before, m.store.Snapshot())

	m = s.send(m, tea.KeyMsg{Type: tea.KeyEsc})
	s.Equal(modalNone, m.modal)
	s.False(m.editor.IsOpen())
}

func (s *ModelSuite) TestReadOnlyViewDoesNotOpenEditor() {
	m := s.newReadyModel(Deps{})
	m = s.send(m, openEditor(m.editor, true)())
	s.Equal(modalYAML, m.modal)
	s.True(m.yamlReadOnly)
	s.False(m.editor.IsOpen())

	m = s.send(m, runes("q"))
	s.Equal(modalNone, m.modal)
}

func (s *ModelSuite) TestRunOfflineIsRefused() {
	m := s.newReadyModel(Deps{})
	cmd := m.startRun()
	s.Nil(cmd)
	s.True(m.noticeErr)
	s.Contains(m.notice, "offline")
}

func (s *ModelSuite) TestRunToCompletion() {
	progress := simulation.Progress{
		IsRunning: true,
		Times:     []float64{0, 1},
		ReactorsSeries: map[string]simulation.Series{
			"r1": {T: []float64{1000, 1100}, P: []float64{101325, 101325}, X: map[string][]float64{"CH4": {0.1, 0.05}}},
		},
	}
	final := simulation.Results{
		Progress:    progress,
		Status:      simulation.StatusComplete,
		CodeStr:     "import cantera as ct\n",
		Summary:     []simulation.SummaryRow{{Reactor: "r1", Quantity: "temperature", Label: "r1 Temperature", Value: 1373.15, Unit: "K"}},
		ElapsedTime: 1.5,
	}
	s.engine.events = []simulation.Event{
		s.event(simulation.EventProgress, progress),
		s.event(simulation.EventComplete, final),
	}

	m := s.newReadyModel(Deps{Engine: s.engine, Dir: s.T().TempDir()})
	cmd := m.startRun()
	s.Require().NotNil(cmd)
	s.NotNil(m.cancelRun)

	m = s.send(m, cmd())
	s.Nil(m.cancelRun)
	s.Equal(simulation.Completed, m.snap.State)
	s.Len(m.summary.Rows(), 1)

	m = s.send(m, tea.KeyMsg{Type: tea.KeyEnter})
	view := m.View()
	s.Contains(view, "completed")
	s.Contains(view, "T (°C)")

	m.tabs.Activate(results.TabSummary)
	s.Contains(m.View(), "1.5s")

	cmd = m.downloadCode()
	s.Require().NotNil(cmd)
	m = s.send(m, cmd())
	s.False(m.noticeErr, m.notice)
	data, err := os.ReadFile(filepath.Join(m.deps.Dir, results.DownloadName))
	s.Require().NoError(err)
	s.Contains(string(data), "import cantera as ct")
}

func (s *ModelSuite) TestStopEndsRunAndIgnoresBufferedEvents() {
	ch := make(chan simulation.Event, 500)
	for i := 0; i < cap(ch); i++ {
		ch <- s.event(simulation.EventProgress, simulation.Progress{IsRunning: true, Times: []float64{float64(i)}})
	}
	var once sync.Once
	s.engine.stream = simulation.NewSubscription(ch, func() { once.Do(func() { close(ch) }) })

	m := s.newReadyModel(Deps{Engine: s.engine})
	cmd := m.startRun()
	s.Require().NotNil(cmd)
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	s.Eventually(func() bool {
		return m.runner.Session.Snapshot().Progress != nil
	}, time.Second, time.Millisecond)

	m = s.send(m, runes("s"))
	gen := m.runner.Session.Generation()
	s.Nil(m.cancelRun)
	s.Equal(simulation.Idle, m.snap.State)
	s.Equal("Simulation stopped", m.notice)

	m = s.send(m, <-done)
	s.Equal(simulation.Idle, m.runner.Session.State())
	s.Equal(gen, m.runner.Session.Generation())
	s.Nil(m.snap.Progress)
	s.Equal([]string{"sim-1"}, s.engine.stoppedIDs())
}

func (s *ModelSuite) TestFinishedOldRunKeepsNewRun() {
	m := s.newReadyModel(Deps{Engine: s.engine})
	m.runSeq = 2
	m.cancelRun = func() {}
	m = s.send(m, runFinishedMsg{seq: 1, err: context.Canceled})
	s.NotNil(m.cancelRun)
}

func (s *ModelSuite) TestRunWhileRunningIsRejected() {
	m := s.newReadyModel(Deps{Engine: s.engine})
	m.cancelRun = func() {}
	s.Nil(m.startRun())
	s.Equal(simulation.ErrSessionActive.Error(), m.notice)
}

func (s *ModelSuite) TestErrorTabFollowsSessionError() {
	m := s.newReadyModel(Deps{})
	m = s.send(m, snapshotMsg{snap: simulation.Snapshot{State: simulation.Failed, Generation: 1, Error: "mechanism not found"}})
	s.True(m.tabs.Activate(results.TabError))
	s.Contains(m.View(), "mechanism not found")

	m = s.send(m, snapshotMsg{snap: simulation.Snapshot{State: simulation.Idle, Generation: 2}})
	s.Equal(results.TabPlots, m.tabs.Active())
}

func (s *ModelSuite) TestStaleSnapshotIsIgnored() {
	m := s.newReadyModel(Deps{})
	m = s.send(m, snapshotMsg{snap: simulation.Snapshot{State: simulation.Running, Generation: 3}})
	m = s.send(m, snapshotMsg{snap: simulation.Snapshot{State: simulation.Failed, Generation: 2, Error: "old"}})
	s.Equal(simulation.Running, m.snap.State)
}

func (s *ModelSuite) TestPluginTabRendersOncePerContext() {
	m := s.newReadyModel(Deps{Plugins: s.plugins})
	m = s.send(m, discoverPlugins(s.plugins)())

	tabs := m.tabs.List()
	s.Require().Equal(results.PluginTab("notes"), tabs[len(tabs)-1].ID)
	s.Require().True(m.tabs.Activate(results.PluginTab("notes")))

	cmd := m.pluginCmd()
	s.Require().NotNil(cmd)
	m = s.send(m, cmd())
	s.Nil(m.pluginCmd())
	s.Contains(m.View(), "theme is dark")

	m.toggleTheme()
	cmd = m.pluginCmd()
	s.Require().NotNil(cmd)
	m = s.send(m, cmd())
	s.Contains(m.View(), "theme is light")
	s.Equal(2, s.plugins.calls)
}

func (s *ModelSuite) TestOpenFormUploadsFile() {
	dir := s.T().TempDir()
	path := filepath.Join(dir, "plant.yaml")
	s.Require().NoError(os.WriteFile(path, []byte("nodes: []\n"), 0o644))

	m := s.newReadyModel(Deps{})
	m = s.send(m, runes("o"))
	s.Require().Equal(formOpen, m.form.kind)

	m = s.send(m, tea.KeyMsg{Type: tea.KeyEnter})
	s.Equal("file path is required", m.form.issue)

	m.form.fields[0].input.SetValue(path)
	cmd := m.submitForm()
	s.Require().NotNil(cmd)
	m = s.send(m, cmd())
	s.Equal(modalNone, m.modal)
	s.Equal([]string{"plant.yaml"}, s.sources.uploads)
	name, _ := m.store.Source()
	s.Equal("plant.yaml", name)
}

func (s *ModelSuite) TestOpenMissingFileKeepsForm() {
	m := s.newReadyModel(Deps{})
	m = s.send(m, runes("o"))
	m.form.fields[0].input.SetValue(filepath.Join(s.T().TempDir(), "missing.yaml"))
	m = s.send(m, m.submitForm()())
	s.Equal(modalForm, m.modal)
	s.NotEmpty(m.form.issue)
}

func (s *ModelSuite) TestNewResetsNetwork() {
	m := s.newReadyModel(Deps{})
	m = s.send(m, tea.KeyMsg{Type: tea.KeyCtrlN})
	s.Empty(m.store.Snapshot().Nodes)
	s.Empty(m.focused)
	s.Contains(m.View(), "No reactors yet")
}

func (s *ModelSuite) TestCloseStopsRunningSession() {
	m := s.newReadyModel(Deps{Engine: s.engine})
	_, err := m.runner.Session.Start(context.Background(), s.engine, pair(), simulation.Params{})
	s.Require().NoError(err)

	m.Close()
	s.Equal([]string{"sim-1"}, s.engine.stopped)
	s.Equal(simulation.Idle, m.runner.Session.State())
}

func (s *ModelSuite) TestDownloadWithoutResultsFails() {
	m := s.newReadyModel(Deps{Now: func() time.Time { return time.Unix(0, 0) }})
	s.Nil(m.downloadCode())
	s.True(m.noticeErr)
}
