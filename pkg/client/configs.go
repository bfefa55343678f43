package client

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/boulder-sim/boulder/internal/network"
)

// Document is a configuration together with its text.
type Document struct {
	Config   network.Configuration `json:"config"`
	YAML     string                `json:"yaml"`
	Filename string                `json:"filename,omitempty"`
}

// ConfigsService exposes configuration-related operations.
type ConfigsService struct {
	client *Client
}

// Default fetches the starter configuration.
func (s *ConfigsService) Default(ctx context.Context) (*Document, error) {
	var doc Document
	if err := s.client.do(ctx, http.MethodGet, s.client.resolve("/api/configs/default"), nil, &doc); err != nil {
		return nil, fmt.Errorf("default config: %w", err)
	}
	return &doc, nil
}

// Preloaded fetches the configuration the backend was started with. ok is
// false when there is none.
func (s *ConfigsService) Preloaded(ctx context.Context) (doc *Document, ok bool, err error) {
	var payload struct {
		Preloaded bool `json:"preloaded"`
		Document
	}
	if err := s.client.do(ctx, http.MethodGet, s.client.resolve("/api/configs/preloaded"), nil, &payload); err != nil {
		return nil, false, fmt.Errorf("preloaded config: %w", err)
	}
	if !payload.Preloaded {
		return nil, false, nil
	}
	return &payload.Document, true, nil
}

// Parse converts YAML text into a normalized configuration. A rejected
// text comes back as a *StatusError with code 422.
func (s *ConfigsService) Parse(ctx context.Context, text string) (*Document, error) {
	var doc Document
	body := map[string]string{"yaml": text}
	if err := s.client.do(ctx, http.MethodPost, s.client.resolve("/api/configs/parse"), body, &doc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &doc, nil
}

// Validate checks and normalizes cfg.
func (s *ConfigsService) Validate(ctx context.Context, cfg network.Configuration) (*network.Configuration, error) {
	var payload struct {
		Config network.Configuration `json:"config"`
	}
	body := map[string]any{"config": cfg}
	if err := s.client.do(ctx, http.MethodPost, s.client.resolve("/api/configs/validate"), body, &payload); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &payload.Config, nil
}

// Export renders cfg as canonical YAML. Comments of original, when given,
// are kept on the elements that still exist.
func (s *ConfigsService) Export(ctx context.Context, cfg network.Configuration, original string) (string, error) {
	var payload struct {
		YAML string `json:"yaml"`
	}
	body := map[string]any{"config": cfg}
	if original != "" {
		body["yaml"] = original
	}
	if err := s.client.do(ctx, http.MethodPost, s.client.resolve("/api/configs/export"), body, &payload); err != nil {
		return "", fmt.Errorf("export config: %w", err)
	}
	return payload.YAML, nil
}

// Upload sends a configuration file and returns it normalized, with the
// file name retained.
func (s *ConfigsService) Upload(ctx context.Context, filename string, data []byte) (*Document, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("upload config: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("upload config: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("upload config: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.client.resolve("/api/configs/upload"), &buf)
	if err != nil {
		return nil, fmt.Errorf("upload config: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var doc Document
	if err := s.client.send(req, &doc); err != nil {
		return nil, fmt.Errorf("upload config: %w", err)
	}
	return &doc, nil
}
