package client

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/boulder-sim/boulder/internal/network"
	"github.com/boulder-sim/boulder/internal/simulation"
	"github.com/boulder-sim/boulder/pkg/log"
)

// maxEventSize bounds one SSE line; complete events carry whole series.
const maxEventSize = 32 << 20

// SimulationsService runs simulations. It implements simulation.Engine.
type SimulationsService struct {
	client *Client
}

var _ simulation.Engine = (*SimulationsService)(nil)

type startRequest struct {
	Config         network.Configuration `json:"config"`
	Mechanism      string                `json:"mechanism,omitempty"`
	SimulationTime float64               `json:"simulation_time"`
	TimeStep       float64               `json:"time_step"`
}

// Start submits cfg and returns the session identifier.
func (s *SimulationsService) Start(ctx context.Context, cfg network.Configuration, p simulation.Params) (string, error) {
	body := startRequest{Config: cfg, Mechanism: p.Mechanism, SimulationTime: p.Duration, TimeStep: p.TimeStep}
	var payload struct {
		SimulationID string `json:"simulation_id"`
	}
	if err := s.client.do(ctx, http.MethodPost, s.client.resolve("/api/simulations"), body, &payload); err != nil {
		return "", fmt.Errorf("start simulation: %w", err)
	}
	if payload.SimulationID == "" {
		return "", fmt.Errorf("start simulation: empty simulation id")
	}
	return payload.SimulationID, nil
}

// Stop stops and forgets simulation id.
func (s *SimulationsService) Stop(ctx context.Context, id string) error {
	if err := s.client.do(ctx, http.MethodDelete, s.client.resolve("/api/simulations/"+url.PathEscape(id)), nil, nil); err != nil {
		return fmt.Errorf("stop simulation: %w", err)
	}
	return nil
}

// Results fetches the current or final results of id.
func (s *SimulationsService) Results(ctx context.Context, id string) (*simulation.Results, error) {
	var res simulation.Results
	if err := s.client.do(ctx, http.MethodGet, s.client.resolve("/api/simulations/"+url.PathEscape(id)+"/results"), nil, &res); err != nil {
		return nil, fmt.Errorf("simulation results: %w", err)
	}
	return &res, nil
}

// Cleanup drops finished simulations older than maxAge seconds, or all of
// them when maxAge is negative.
func (s *SimulationsService) Cleanup(ctx context.Context, maxAge int) (removed, remaining int, err error) {
	query := ""
	if maxAge >= 0 {
		query = "max_age_seconds=" + strconv.Itoa(maxAge)
	}
	var payload struct {
		Removed   int `json:"removed"`
		Remaining int `json:"remaining"`
	}
	if err := s.client.do(ctx, http.MethodPost, s.client.resolve("/api/simulations/cleanup", query), nil, &payload); err != nil {
		return 0, 0, fmt.Errorf("cleanup simulations: %w", err)
	}
	return payload.Removed, payload.Remaining, nil
}

// Stream opens the progress channel of id. Closing the subscription ends
// the request.
func (s *SimulationsService) Stream(ctx context.Context, id string) (*simulation.Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.client.resolve("/api/simulations/"+url.PathEscape(id)+"/stream"), nil)
	if err != nil {
		cancel()
		return nil, err
	}

	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Connection", "keep-alive")

	resp, err := s.client.streamClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("stream simulation: %w: %v", ErrTransport, err)
	}

	if resp.StatusCode != http.StatusOK {
		cancel()
		return nil, fmt.Errorf("stream simulation: %w", statusError(resp))
	}

	ch := make(chan simulation.Event, 100)
	sub := simulation.NewSubscription(ch, cancel)

	go func() {
		defer resp.Body.Close()
		defer close(ch)

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 64<<10), maxEventSize)
		var currentType simulation.EventType
		var currentData []byte

		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				if currentType != "" && len(currentData) > 0 {
					evt := simulation.Event{Type: currentType, Data: currentData}
					select {
					case ch <- evt:
					case <-ctx.Done():
						return
					}
				}
				currentType = ""
				currentData = nil
				continue
			}

			if bytes.HasPrefix(line, []byte(":")) {
				continue // Comment/Ping
			}

			parts := bytes.SplitN(line, []byte(":"), 2)
			if len(parts) < 2 {
				continue
			}

			field := string(bytes.TrimSpace(parts[0]))
			value := bytes.TrimPrefix(parts[1], []byte(" "))

			switch field {
			case "event":
				currentType = simulation.EventType(value)
			case "data":
				if currentData != nil {
					currentData = append(currentData, '\n')
				}
				currentData = append(currentData, value...)
			}
		}

		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			log.Warn("simulation stream broke", "id", id, "error", err)
			sub.SetErr(fmt.Errorf("%w: %v", ErrTransport, err))
		}
	}()

	return sub, nil
}
