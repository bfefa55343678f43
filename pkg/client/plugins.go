package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/boulder-sim/boulder/internal/plugin"
)

// PluginsService exposes output pane discovery and rendering.
type PluginsService struct {
	client *Client
}

// List discovers the available panes.
func (s *PluginsService) List(ctx context.Context) ([]plugin.Descriptor, error) {
	var descs []plugin.Descriptor
	if err := s.client.do(ctx, http.MethodGet, s.client.resolve("/api/plugins"), nil, &descs); err != nil {
		return nil, fmt.Errorf("list plugins: %w", err)
	}
	return descs, nil
}

// Render asks pane id to render c.
func (s *PluginsService) Render(ctx context.Context, id string, c plugin.Context) (*plugin.Result, error) {
	var res plugin.Result
	path := s.client.resolve("/api/plugins/" + url.PathEscape(id) + "/render")
	if err := s.client.do(ctx, http.MethodPost, path, c, &res); err != nil {
		return nil, fmt.Errorf("render plugin %s: %w", id, err)
	}
	return &res, nil
}
