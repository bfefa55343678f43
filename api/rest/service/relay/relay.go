// Package relay tracks simulations the gateway forwarded to the upstream
// engine. Gateway ids are independent of the engine's own ids.
package relay

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/boulder-sim/boulder/internal/metrics"
	"github.com/boulder-sim/boulder/internal/network"
	"github.com/boulder-sim/boulder/internal/simulation"
	"github.com/boulder-sim/boulder/pkg/log"
	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("simulation not found")
	ErrNoEngine = errors.New("no simulation engine configured")
)

// Run is one relayed simulation.
type Run struct {
	ID         string            `json:"simulation_id"`
	Upstream   string            `json:"upstream_id"`
	Params     simulation.Params `json:"params"`
	Status     string            `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	FinishedAt time.Time         `json:"finished_at,omitempty"`
}

// Terminal reports whether the run reached complete or error.
func (r Run) Terminal() bool {
	return r.Status == simulation.StatusComplete || r.Status == simulation.StatusError
}

// Relay is an in-memory registry of runs.
type Relay struct {
	engine simulation.Engine
	now    func() time.Time

	mu   sync.RWMutex
	runs map[string]*Run
}

// New returns a relay over engine. A nil engine makes every operation
// that needs it fail with ErrNoEngine.
func New(engine simulation.Engine) *Relay {
	return &Relay{engine: engine, now: time.Now, runs: map[string]*Run{}}
}

// Configured reports whether an engine is attached.
func (r *Relay) Configured() bool {
	return r.engine != nil
}

// Start resolves p against cfg and submits the run upstream.
func (r *Relay) Start(ctx context.Context, cfg network.Configuration, p simulation.Params) (Run, error) {
	if r.engine == nil {
		return Run{}, ErrNoEngine
	}

	p = simulation.ResolveParams(cfg, p)
	upstream, err := r.engine.Start(ctx, cfg, p)
	if err != nil {
		return Run{}, err
	}

	run := &Run{
		ID:        uuid.NewString(),
		Upstream:  upstream,
		Params:    p,
		Status:    simulation.StatusRunning,
		CreatedAt: r.now(),
	}

	r.mu.Lock()
	r.runs[run.ID] = run
	r.mu.Unlock()

	metrics.SimulationsActive.Inc()
	log.Info("simulation relayed", "simulation_id", run.ID, "upstream_id", upstream, "mechanism", p.Mechanism, "duration", p.Duration)
	return *run, nil
}

// Get returns run id.
func (r *Relay) Get(id string) (Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return Run{}, ErrNotFound
	}
	return *run, nil
}

// List returns every tracked run, oldest first.
func (r *Relay) List() []Run {
	r.mu.RLock()
	out := make([]Run, 0, len(r.runs))
	for _, run := range r.runs {
		out = append(out, *run)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Stream opens the upstream stream of run id.
func (r *Relay) Stream(ctx context.Context, id string) (*simulation.Subscription, error) {
	if r.engine == nil {
		return nil, ErrNoEngine
	}
	run, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return r.engine.Stream(ctx, run.Upstream)
}

// Observe records a relayed event of run id.
func (r *Relay) Observe(id string, t simulation.EventType) {
	metrics.StreamEventsTotal.WithLabelValues(string(t)).Inc()
	switch t {
	case simulation.EventComplete:
		r.finish(id, simulation.StatusComplete)
	case simulation.EventError:
		r.finish(id, simulation.StatusError)
	}
}

// Results fetches the results of run id from upstream. With cleanup set,
// a finished run is forgotten afterwards.
func (r *Relay) Results(ctx context.Context, id string, cleanup bool) (*simulation.Results, error) {
	if r.engine == nil {
		return nil, ErrNoEngine
	}
	run, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	res, err := r.engine.Results(ctx, run.Upstream)
	if err != nil {
		return nil, err
	}

	switch res.Status {
	case simulation.StatusComplete, simulation.StatusError:
		r.finish(id, res.Status)
		if cleanup {
			r.forget(id)
		}
	}
	return res, nil
}

// Stop stops run id upstream and forgets it. The run is forgotten even
// when the engine refuses.
func (r *Relay) Stop(ctx context.Context, id string) error {
	if r.engine == nil {
		return ErrNoEngine
	}
	run, err := r.Get(id)
	if err != nil {
		return err
	}

	r.forget(id)
	if err := r.engine.Stop(ctx, run.Upstream); err != nil {
		log.Warn("upstream stop failed", "simulation_id", id, "upstream_id", run.Upstream, "error", err)
		return err
	}
	return nil
}

// Cleanup forgets finished runs created more than maxAge ago. A negative
// maxAge removes every finished run.
func (r *Relay) Cleanup(maxAge time.Duration) (removed, remaining int) {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, run := range r.runs {
		if !run.Terminal() {
			continue
		}
		if maxAge >= 0 && now.Sub(run.CreatedAt) <= maxAge {
			continue
		}
		delete(r.runs, id)
		removed++
	}
	return removed, len(r.runs)
}

func (r *Relay) finish(id, status string) {
	r.mu.Lock()
	run, ok := r.runs[id]
	if !ok || run.Status != simulation.StatusRunning {
		r.mu.Unlock()
		return
	}
	run.Status = status
	run.FinishedAt = r.now()
	elapsed := run.FinishedAt.Sub(run.CreatedAt)
	r.mu.Unlock()

	metrics.SimulationsActive.Dec()
	metrics.SimulationsTotal.WithLabelValues(status).Inc()
	metrics.SimulationDurationSeconds.WithLabelValues(status).Observe(elapsed.Seconds())
	log.Info("simulation finished", "simulation_id", id, "status", status, "elapsed", elapsed)
}

func (r *Relay) forget(id string) {
	r.mu.Lock()
	run, ok := r.runs[id]
	if ok {
		delete(r.runs, id)
	}
	r.mu.Unlock()

	if ok && run.Status == simulation.StatusRunning {
		metrics.SimulationsActive.Dec()
		metrics.SimulationsTotal.WithLabelValues("stopped").Inc()
	}
}
