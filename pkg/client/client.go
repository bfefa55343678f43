// Package client talks to the Boulder backend: configuration transcoding,
// simulation runs and their progress streams, and plugin panes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrTransport marks failures to reach the backend at all, as opposed to
// the backend answering with an error status.
var ErrTransport = errors.New("transport error")

// StatusError is an error status answered by the backend. Detail carries
// the backend's own message verbatim.
type StatusError struct {
	Code   int
	Status string
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("request failed: %s", e.Status)
	}
	return fmt.Sprintf("request failed: %s: %s", e.Status, e.Detail)
}

// Client wraps HTTP interaction with the Boulder REST API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	// streams have no overall deadline
	streamClient *http.Client
}

// New constructs a client for baseURL. timeout bounds plain requests;
// progress streams are bounded by their context only.
func New(baseURL *url.URL, timeout time.Duration) *Client {
	return &Client{
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: timeout},
		streamClient: &http.Client{},
	}
}

// BaseURL is the backend the client talks to.
func (c *Client) BaseURL() *url.URL {
	return c.baseURL
}

func (c *Client) resolve(path string, queries ...string) string {
	raw := strings.TrimSuffix(c.baseURL.String(), "/") + path
	filtered := make([]string, 0, len(queries))
	for _, q := range queries {
		q = strings.Trim(q, "?& ")
		if q != "" {
			filtered = append(filtered, q)
		}
	}

	if len(filtered) == 0 {
		return raw
	}

	return raw + "?" + strings.Join(filtered, "&")
}

func decodeBody(body io.ReadCloser, target any) error {
	decodeErr := json.NewDecoder(body).Decode(target)
	closeErr := body.Close()
	if decodeErr != nil {
		if closeErr != nil {
			return errors.Join(decodeErr, closeErr)
		}
		return decodeErr
	}
	return closeErr
}

// statusError reads the backend's error body. FastAPI-style {"detail"} and
// echo-style {"message"} bodies are both understood.
func statusError(resp *http.Response) error {
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
	}
	detail := ""
	if err := json.Unmarshal(raw, &body); err == nil {
		switch d := body.Detail.(type) {
		case string:
			detail = d
		case nil:
			detail = body.Message
		default:
			b, _ := json.Marshal(d)
			detail = string(b)
		}
	} else {
		detail = strings.TrimSpace(string(raw))
	}
	return &StatusError{Code: resp.StatusCode, Status: resp.Status, Detail: detail}
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return statusError(resp)
	}

	if out == nil {
		return resp.Body.Close()
	}

	return decodeBody(resp.Body, out)
}

// Configs exposes configuration transcoding.
func (c *Client) Configs() *ConfigsService {
	return &ConfigsService{client: c}
}

// Simulations exposes simulation runs.
func (c *Client) Simulations() *SimulationsService {
	return &SimulationsService{client: c}
}

// Plugins exposes output pane discovery and rendering.
func (c *Client) Plugins() *PluginsService {
	return &PluginsService{client: c}
}

type healthResponse struct {
	Status string `json:"status"`
}

// Ping verifies the API health endpoint responds with a healthy status.
func (c *Client) Ping(ctx context.Context) error {
	var payload healthResponse
	if err := c.do(ctx, http.MethodGet, c.resolve("/api/health"), nil, &payload); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if strings.ToLower(strings.TrimSpace(payload.Status)) != "healthy" {
		return fmt.Errorf("health check failed: status=%q", payload.Status)
	}
	return nil
}

// Mechanism is a selectable chemistry mechanism file.
type Mechanism struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Mechanisms lists the mechanism files the engine can load.
func (c *Client) Mechanisms(ctx context.Context) ([]Mechanism, error) {
	var out []Mechanism
	if err := c.do(ctx, http.MethodGet, c.resolve("/api/mechanisms"), nil, &out); err != nil {
		return nil, fmt.Errorf("list mechanisms: %w", err)
	}
	return out, nil
}
