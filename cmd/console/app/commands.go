package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/boulder-sim/boulder/internal/network"
	"github.com/boulder-sim/boulder/internal/plugin"
	"github.com/boulder-sim/boulder/internal/simulation"
	"github.com/boulder-sim/boulder/internal/transcoder"
	"github.com/boulder-sim/boulder/pkg/client"
	tea "github.com/charmbracelet/bubbletea"
)

// loadInitial prefers the configuration the backend was started with and
// falls back to the starter network.
func loadInitial(sources Sources) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		doc, ok, err := sources.Preloaded(ctx)
		if err == nil && ok {
			return configLoadedMsg{doc: doc, origin: "preloaded"}
		}

		doc, err = sources.Default(ctx)
		if err != nil {
			return loadFailedMsg{err: err}
		}
		return configLoadedMsg{doc: doc, origin: "default"}
	}
}

func discoverPlugins(plugins Plugins) tea.Cmd {
	return func() tea.Msg {
		descs, err := plugins.List(context.Background())
		return pluginsLoadedMsg{descs: descs, err: err}
	}
}

func uploadFile(sources Sources, path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return uploadFailedMsg{err: err}
		}
		doc, err := sources.Upload(context.Background(), filepath.Base(path), data)
		if err != nil {
			return uploadFailedMsg{err: err}
		}
		return configLoadedMsg{doc: doc, origin: "upload"}
	}
}

// openEditor fetches text for the modal. The read-only view leaves the
// editor session closed.
func openEditor(editor *transcoder.Editor, readOnly bool) tea.Cmd {
	return func() tea.Msg {
		var (
			text string
			err  error
		)
		if readOnly {
			text, err = editor.Export(context.Background())
		} else {
			text, err = editor.Open(context.Background())
		}
		return editorOpenedMsg{text: text, readOnly: readOnly, err: err}
	}
}

func saveEditor(editor *transcoder.Editor, text string) tea.Cmd {
	return func() tea.Msg {
		if err := editor.SetText(text); err != nil {
			return editorSavedMsg{err: err}
		}
		return editorSavedMsg{err: editor.Save(context.Background())}
	}
}

func runSimulation(ctx context.Context, runner *simulation.Runner, seq int, cfg network.Configuration, p simulation.Params) tea.Cmd {
	return func() tea.Msg {
		snap, err := runner.Run(ctx, cfg, p, nil)
		return runFinishedMsg{seq: seq, snap: snap, err: err}
	}
}

func renderPlugin(bridge *plugin.Bridge, r plugin.Renderer, t plugin.Ticket) tea.Cmd {
	return func() tea.Msg {
		_, again := bridge.Execute(context.Background(), r, t)
		return pluginRenderedMsg{id: t.Plugin, again: again}
	}
}

func writeCode(path, code string) tea.Cmd {
	return func() tea.Msg {
		if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
			return codeSavedMsg{path: path, err: fmt.Errorf("write %s: %w", path, err)}
		}
		return codeSavedMsg{path: path}
	}
}

type configLoadedMsg struct {
	doc    *client.Document
	origin string
}

type loadFailedMsg struct {
	err error
}

type uploadFailedMsg struct {
	err error
}

type pluginsLoadedMsg struct {
	descs []plugin.Descriptor
	err   error
}

type editorOpenedMsg struct {
	text     string
	readOnly bool
	err      error
}

type editorSavedMsg struct {
	err error
}

type runFinishedMsg struct {
	seq  int
	snap simulation.Snapshot
	err  error
}

type pluginRenderedMsg struct {
	id    string
	again bool
}

type codeSavedMsg struct {
	path string
	err  error
}
