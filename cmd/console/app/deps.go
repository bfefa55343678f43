package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	csvc "github.com/boulder-sim/boulder/api/rest/service/config"
	"github.com/boulder-sim/boulder/internal/plugin"
	"github.com/boulder-sim/boulder/internal/simulation"
	"github.com/boulder-sim/boulder/internal/stone"
	"github.com/boulder-sim/boulder/internal/transcoder"
	"github.com/boulder-sim/boulder/pkg/client"
)

// Sources loads whole configuration documents.
type Sources interface {
	Default(ctx context.Context) (*client.Document, error)
	Preloaded(ctx context.Context) (*client.Document, bool, error)
	Upload(ctx context.Context, filename string, data []byte) (*client.Document, error)
}

// Plugins discovers and renders output panes.
type Plugins interface {
	List(ctx context.Context) ([]plugin.Descriptor, error)
	plugin.Renderer
}

// Deps are the collaborators of the console. Engine and Plugins may be nil,
// which disables simulations and plugin tabs respectively.
type Deps struct {
	Sources Sources
	Backend transcoder.Backend
	Engine  simulation.Engine
	Plugins Plugins

	Params simulation.Params
	Theme  string
	// Dir is where generated code is written.
	Dir string
	Now func() time.Time
}

// Remote wires every collaborator to the gateway behind c.
func Remote(c *client.Client) Deps {
	return Deps{
		Sources: c.Configs(),
		Backend: transcoder.NewRemote(c),
		Engine:  c.Simulations(),
		Plugins: c.Plugins(),
	}
}

// Offline serves configurations and the built-in panes in-process.
// Simulations are unavailable.
func Offline(configPath string) Deps {
	return Deps{
		Sources: localSources{svc: csvc.Service(configPath)},
		Backend: transcoder.Local{},
		Plugins: localPlugins{reg: plugin.Builtins()},
	}
}

type localSources struct {
	svc csvc.Config
}

func (l localSources) Default(context.Context) (*client.Document, error) {
	return l.svc.Default()
}

func (l localSources) Preloaded(context.Context) (*client.Document, bool, error) {
	doc, ok := l.svc.Preloaded()
	return doc, ok, nil
}

func (l localSources) Upload(_ context.Context, filename string, data []byte) (*client.Document, error) {
	if !stone.IsYAML(filename) {
		ext := strings.ToLower(filepath.Ext(filename))
		return nil, &transcoder.ParseError{Message: fmt.Sprintf("Unsupported file type: %s. Use .yaml or .yml", ext)}
	}
	doc, err := l.svc.Parse(string(data))
	if err != nil {
		return nil, &transcoder.ParseError{Message: err.Error()}
	}
	doc.Filename = filepath.Base(filename)
	return doc, nil
}

type localPlugins struct {
	reg *plugin.Registry
}

func (l localPlugins) List(context.Context) ([]plugin.Descriptor, error) {
	return l.reg.List(), nil
}

func (l localPlugins) Render(_ context.Context, id string, c plugin.Context) (*plugin.Result, error) {
	res, err := l.reg.Render(id, c)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
