package simulation

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/boulder-sim/boulder/internal/network"
	"github.com/boulder-sim/boulder/pkg/log"
)

// State of a session.
type State int

const (
	Idle State = iota
	Running
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return "idle"
}

// Terminal reports whether the state ends a run.
func (s State) Terminal() bool {
	return s == Completed || s == Failed
}

// ConnectionLost is the error shown when a stream dies without telling
// us why.
const ConnectionLost = "connection lost"

// ErrSessionActive is returned by Start while a run is in progress.
var ErrSessionActive = errors.New("a simulation is already running")

// Snapshot is a consistent copy of the session for rendering.
type Snapshot struct {
	State      State
	ID         string
	Generation uint64
	Params     Params
	Progress   *Progress
	Results    *Results
	Error      string
}

// Session is the state machine for one run at a time:
// Idle -> Running -> Completed | Failed, with Stop returning to Idle from
// anywhere. Every Start and Stop bumps the generation; events carrying an
// older generation are dropped.
type Session struct {
	mu         sync.Mutex
	state      State
	id         string
	generation uint64
	params     Params
	progress   *Progress
	results    *Results
	err        string
	sub        *Subscription

	// deliver serializes notifications with Stop.
	deliver sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

func NewSession() *Session {
	return &Session{subs: make(map[int]func(Snapshot))}
}

// Subscribe registers fn for every state change. Once Stop returns no
// notification of an earlier generation reaches fn. fn must not call Stop.
func (s *Session) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Start submits cfg to the engine and moves to Running. A terminal
// session is reset first; a running one is refused with ErrSessionActive.
// When the engine refuses the run the session stays Idle and the error is
// returned.
func (s *Session) Start(ctx context.Context, engine Engine, cfg network.Configuration, p Params) (uint64, error) {
	s.mu.Lock()
	if s.state == Running {
		s.mu.Unlock()
		return 0, ErrSessionActive
	}
	changed := s.state != Idle
	s.reset()
	s.mu.Unlock()
	if changed {
		s.notify()
	}

	p = ResolveParams(cfg, p)
	id, err := engine.Start(ctx, cfg, p)
	if err != nil {
		log.Error("simulation start failed", "error", err)
		return 0, err
	}

	s.mu.Lock()
	if s.state != Idle {
		// someone else started in the meantime
		s.mu.Unlock()
		_ = engine.Stop(ctx, id)
		return 0, ErrSessionActive
	}
	s.generation++
	s.state = Running
	s.id = id
	s.params = p
	gen := s.generation
	s.mu.Unlock()

	log.Info("simulation started", "id", id, "mechanism", p.Mechanism, "duration", p.Duration, "step", p.TimeStep)
	s.notify()
	return gen, nil
}

// Attach hands the session the progress channel opened for gen. If the
// session has moved on the subscription is closed immediately and false
// is returned.
func (s *Session) Attach(gen uint64, sub *Subscription) bool {
	s.mu.Lock()
	if gen != s.generation || s.state != Running || s.sub != nil {
		s.mu.Unlock()
		sub.Close()
		return false
	}
	s.sub = sub
	s.mu.Unlock()
	return true
}

// Handle applies one event received on the channel of gen, in receipt
// order. It reports whether the event changed the session.
func (s *Session) Handle(gen uint64, ev Event) bool {
	s.mu.Lock()
	if gen != s.generation || s.state != Running {
		s.mu.Unlock()
		log.Debug("discarding stale simulation event", "type", ev.Type, "generation", gen)
		return false
	}

	var closing *Subscription
	switch ev.Type {
	case EventProgress:
		var p Progress
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			s.mu.Unlock()
			log.Warn("ignoring malformed progress payload", "id", s.id, "error", err)
			return false
		}
		s.progress = &p

	case EventComplete:
		var r Results
		if err := json.Unmarshal(ev.Data, &r); err != nil {
			s.mu.Unlock()
			log.Warn("ignoring malformed complete payload", "id", s.id, "error", err)
			return false
		}
		closing = s.complete(r)

	case EventError:
		var e ErrorPayload
		if err := json.Unmarshal(ev.Data, &e); err != nil || e.Message == "" {
			e.Message = "simulation failed"
		}
		s.err = e.Message
		s.state = Failed
		closing = s.detach()
		log.Warn("simulation failed", "id", s.id, "message", e.Message)

	default:
		s.mu.Unlock()
		log.Debug("ignoring unknown simulation event", "type", ev.Type)
		return false
	}
	s.mu.Unlock()

	if closing != nil {
		closing.Close()
	}
	s.emit(gen)
	return true
}

// Complete ends the run of gen with r, as a complete event would. It is
// how results fetched after the stream dropped are applied.
func (s *Session) Complete(gen uint64, r Results) bool {
	s.mu.Lock()
	if gen != s.generation || s.state != Running {
		s.mu.Unlock()
		return false
	}
	closing := s.complete(r)
	s.mu.Unlock()

	if closing != nil {
		closing.Close()
	}
	s.emit(gen)
	return true
}

// complete must be called with the lock held.
func (s *Session) complete(r Results) *Subscription {
	p := r.Progress
	s.results = &r
	s.progress = &p
	s.state = Completed
	log.Info("simulation completed", "id", s.id, "elapsed", r.ElapsedTime)
	return s.detach()
}

// Fail ends the run of gen with msg, or ConnectionLost when msg is empty.
func (s *Session) Fail(gen uint64, msg string) bool {
	if msg == "" {
		msg = ConnectionLost
	}
	s.mu.Lock()
	if gen != s.generation || s.state != Running {
		s.mu.Unlock()
		return false
	}
	s.err = msg
	s.state = Failed
	closing := s.detach()
	s.mu.Unlock()

	if closing != nil {
		closing.Close()
	}
	log.Warn("simulation failed", "message", msg)
	s.emit(gen)
	return true
}

// Stop returns to Idle from any state, closing the channel before it
// returns. The id of a run that was still going is returned so the caller
// can tell the engine. Stopping an idle session does nothing.
func (s *Session) Stop() (runningID string) {
	runningID, _ = s.stop(nil)
	return runningID
}

// Abandon stops the run of gen if it is still the current one.
func (s *Session) Abandon(gen uint64) bool {
	_, ok := s.stop(&gen)
	return ok
}

func (s *Session) stop(gen *uint64) (string, bool) {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	if gen != nil && *gen != s.generation {
		s.mu.Unlock()
		return "", false
	}
	if s.state == Idle && s.sub == nil && s.id == "" {
		s.mu.Unlock()
		return "", false
	}
	var runningID string
	if s.state == Running {
		runningID = s.id
	}
	closing := s.detach()
	s.reset()
	s.generation++
	s.mu.Unlock()

	if closing != nil {
		closing.Close()
	}
	s.publish(nil)
	return runningID, true
}

// Clear is Stop without the id.
func (s *Session) Clear() {
	s.Stop()
}

// Percent estimates completion from the last progress time and the total
// time hint, falling back to the requested duration.
func (s *Session) Percent() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Completed:
		return 1
	case Idle:
		return 0
	}
	if s.progress == nil || len(s.progress.Times) == 0 {
		return 0
	}
	total := s.progress.TotalTime
	if total <= 0 {
		total = s.params.Duration
	}
	if total <= 0 {
		return 0
	}
	pct := s.progress.Times[len(s.progress.Times)-1] / total
	if pct > 1 {
		pct = 1
	}
	if pct < 0 {
		pct = 0
	}
	return pct
}

// detach must be called with the lock held.
func (s *Session) detach() *Subscription {
	sub := s.sub
	s.sub = nil
	return sub
}

// reset must be called with the lock held.
func (s *Session) reset() {
	s.state = Idle
	s.id = ""
	s.params = Params{}
	s.progress = nil
	s.results = nil
	s.err = ""
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		State:      s.state,
		ID:         s.id,
		Generation: s.generation,
		Params:     s.params,
		Progress:   s.progress,
		Results:    s.results,
		Error:      s.err,
	}
}

func (s *Session) notify() {
	s.deliver.Lock()
	defer s.deliver.Unlock()
	s.publish(nil)
}

// emit notifies subscribers unless gen has been superseded.
func (s *Session) emit(gen uint64) {
	s.deliver.Lock()
	defer s.deliver.Unlock()
	s.publish(&gen)
}

// publish must be called with deliver held.
func (s *Session) publish(gen *uint64) {
	s.mu.Lock()
	if gen != nil && *gen != s.generation {
		s.mu.Unlock()
		return
	}
	snap := s.snapshot()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for i := 0; i < s.nextSub; i++ {
		if fn, ok := s.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
