// Package transcoder sequences conversions between the live network model
// and its YAML text. Parsing and formatting are delegated to a Backend; the
// Editor owns when the model may be replaced.
package transcoder

import (
	"context"
	"errors"
	"net/http"

	"github.com/boulder-sim/boulder/internal/network"
	"github.com/boulder-sim/boulder/internal/stone"
	"github.com/boulder-sim/boulder/pkg/client"
)

// ParseError reports text the backend refused. Message is shown to the
// user as it came from the backend.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return e.Message
}

// Backend converts between text and configurations. Export carries the
// comments of original, the text the configuration was loaded from, over
// to the elements that still exist.
type Backend interface {
	Parse(ctx context.Context, text string) (*network.Configuration, error)
	Export(ctx context.Context, cfg network.Configuration, original string) (string, error)
}

// Local runs the STONE codec in-process.
type Local struct{}

func (Local) Parse(_ context.Context, text string) (*network.Configuration, error) {
	cfg, err := stone.Parse([]byte(text))
	if err != nil {
		return nil, &ParseError{Message: err.Error()}
	}
	return cfg, nil
}

func (Local) Export(_ context.Context, cfg network.Configuration, original string) (string, error) {
	out, err := stone.ExportWithComments(cfg, []byte(original))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Remote delegates to the gateway's configuration routes.
type Remote struct {
	Configs *client.ConfigsService
}

// NewRemote returns a backend bound to c.
func NewRemote(c *client.Client) Remote {
	return Remote{Configs: c.Configs()}
}

func (r Remote) Parse(ctx context.Context, text string) (*network.Configuration, error) {
	doc, err := r.Configs.Parse(ctx, text)
	if err != nil {
		var serr *client.StatusError
		if errors.As(err, &serr) && rejected(serr.Code) {
			return nil, &ParseError{Message: serr.Detail}
		}
		return nil, err
	}
	return &doc.Config, nil
}

func (r Remote) Export(ctx context.Context, cfg network.Configuration, original string) (string, error) {
	return r.Configs.Export(ctx, cfg, original)
}

func rejected(code int) bool {
	return code == http.StatusUnprocessableEntity || code == http.StatusBadRequest
}
