package config

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/boulder-sim/boulder/internal/network"
	"github.com/boulder-sim/boulder/internal/stone"
	"github.com/boulder-sim/boulder/pkg/client"
	"github.com/boulder-sim/boulder/pkg/log"
)

//go:embed default.yaml
var defaultYAML string

// Config serves configuration documents through the STONE codec.
type Config interface {
	Default() (*client.Document, error)
	Preloaded() (*client.Document, bool)
	Parse(text string) (*client.Document, error)
	Validate(cfg network.Configuration) (*network.Configuration, error)
	Export(cfg network.Configuration, original string) (string, error)
}

type configService struct {
	preloaded *client.Document
}

// Service returns a Config. A non-empty path is loaded once as the
// preloaded document; a file that fails to load is logged and skipped.
func Service(path string) Config {
	svc := &configService{}
	if path == "" {
		return svc
	}

	doc, err := load(path)
	if err != nil {
		log.Error("failed to load preloaded configuration", "path", path, "error", err)
		return svc
	}
	log.Info("preloaded configuration", "filename", doc.Filename, "nodes", len(doc.Config.Nodes))
	svc.preloaded = doc
	return svc
}

func load(path string) (*client.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := stone.Parse(data)
	if err != nil {
		return nil, err
	}
	return &client.Document{Config: *cfg, YAML: string(data), Filename: filepath.Base(path)}, nil
}

func (s *configService) Default() (*client.Document, error) {
	return s.Parse(defaultYAML)
}

func (s *configService) Preloaded() (*client.Document, bool) {
	if s.preloaded == nil {
		return nil, false
	}
	return s.preloaded, true
}

func (s *configService) Parse(text string) (*client.Document, error) {
	cfg, err := stone.Parse([]byte(text))
	if err != nil {
		return nil, err
	}
	return &client.Document{Config: *cfg, YAML: text}, nil
}

func (s *configService) Validate(cfg network.Configuration) (*network.Configuration, error) {
	if err := stone.Validate(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *configService) Export(cfg network.Configuration, original string) (string, error) {
	out, err := stone.ExportWithComments(cfg, []byte(original))
	if err != nil {
		return "", err
	}
	return string(out), nil
}
