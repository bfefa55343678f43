package simulation

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boulder-sim/boulder/internal/network"
)

type fakeEngine struct {
	mu       sync.Mutex
	started  []Params
	stopped  []string
	startErr error
	events   []Event
	results  *Results
	closed   int
	streamFn func() (*Subscription, error)
}

func (f *fakeEngine) Start(_ context.Context, _ network.Configuration, p Params) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return "", f.startErr
	}
	f.started = append(f.started, p)
	return "sim-" + string(rune('0'+len(f.started))), nil
}

func (f *fakeEngine) Stream(_ context.Context, _ string) (*Subscription, error) {
	if f.streamFn != nil {
		return f.streamFn()
	}
	ch := make(chan Event, len(f.events))
	for _, ev := range f.events {
		ch <- ev
	}
	close(ch)
	return NewSubscription(ch, func() {
		f.mu.Lock()
		f.closed++
		f.mu.Unlock()
	}), nil
}

func (f *fakeEngine) Stop(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = append(f.stopped, id)
	return nil
}

func (f *fakeEngine) Results(_ context.Context, _ string) (*Results, error) {
	if f.results == nil {
		return nil, errors.New("not found")
	}
	return f.results, nil
}

func event(t *testing.T, typ EventType, v any) Event {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return Event{Type: typ, Data: raw}
}

func progressAt(times ...float64) Progress {
	temps := make([]float64, len(times))
	for i := range temps {
		temps[i] = 1000 + float64(i)
	}
	return Progress{
		IsRunning:      true,
		Times:          times,
		ReactorsSeries: map[string]Series{"r1": {T: temps, P: temps, X: map[string][]float64{"CH4": temps}}},
	}
}

func finalResults() Results {
	p := progressAt(0, 1, 2, 3)
	p.IsRunning = false
	p.IsComplete = true
	return Results{
		Progress:    p,
		CodeStr:     "import cantera as ct",
		Summary:     []SummaryRow{{Reactor: "r1", Quantity: "T", Label: "Temperature", Value: 1003, Unit: "K"}},
		SankeyNodes: []string{"res1", "r1"},
		SankeyLinks: &SankeyLinks{Source: []int{0}, Target: []int{1}, Value: []float64{0.1}},
		ElapsedTime: 1.5,
	}
}

func running(t *testing.T, s *Session, e *fakeEngine) uint64 {
	t.Helper()
	gen, err := s.Start(context.Background(), e, network.Empty(), Params{Duration: 10, TimeStep: 1})
	require.NoError(t, err)
	require.Equal(t, Running, s.State())
	return gen
}

func TestStartRejectedWhileRunning(t *testing.T) {
	e := &fakeEngine{}
	s := NewSession()
	running(t, s, e)

	_, err := s.Start(context.Background(), e, network.Empty(), Params{})
	assert.ErrorIs(t, err, ErrSessionActive)
	assert.Len(t, e.started, 1)
}

func TestStartFromTerminalResets(t *testing.T) {
	e := &fakeEngine{}
	s := NewSession()
	gen := running(t, s, e)
	require.True(t, s.Fail(gen, "boom"))
	require.Equal(t, "boom", s.Snapshot().Error)

	gen2 := running(t, s, e)
	assert.Greater(t, gen2, gen)
	snap := s.Snapshot()
	assert.Empty(t, snap.Error)
	assert.Nil(t, snap.Progress)
	assert.Equal(t, "sim-2", snap.ID)
}

func TestStartFailureStaysIdle(t *testing.T) {
	e := &fakeEngine{startErr: errors.New("engine down")}
	s := NewSession()
	_, err := s.Start(context.Background(), e, network.Empty(), Params{})
	assert.Error(t, err)
	assert.Equal(t, Idle, s.State())
}

func TestStartResolvesParams(t *testing.T) {
	e := &fakeEngine{}
	s := NewSession()
	cfg := network.Empty()
	cfg.Phases = map[string]any{"gas": map[string]any{"mechanism": "h2o2.yaml"}}
	cfg.Settings = map[string]any{"end_time": 2.0, "dt": 0.1}

	_, err := s.Start(context.Background(), e, cfg, Params{})
	require.NoError(t, err)
	assert.Equal(t, Params{Duration: 2, TimeStep: 0.1, Mechanism: "h2o2.yaml"}, e.started[0])
}

func TestProgressThenCompleteEqualsComplete(t *testing.T) {
	final := finalResults()

	direct := NewSession()
	gen := running(t, direct, &fakeEngine{})
	require.True(t, direct.Handle(gen, event(t, EventComplete, final)))

	streamed := NewSession()
	gen = running(t, streamed, &fakeEngine{})
	for _, p := range []Progress{progressAt(0), progressAt(0, 1), progressAt(0, 1, 2)} {
		require.True(t, streamed.Handle(gen, event(t, EventProgress, p)))
	}
	require.True(t, streamed.Handle(gen, event(t, EventComplete, final)))

	a, b := direct.Snapshot(), streamed.Snapshot()
	assert.Equal(t, Completed, b.State)
	assert.Equal(t, a.Results, b.Results)
	assert.Equal(t, a.Progress, b.Progress)
}

func TestEventsAfterTerminalAreDiscarded(t *testing.T) {
	for _, terminal := range []Event{
		{Type: EventComplete, Data: json.RawMessage(`{"times":[0,1],"reactors_series":{}}`)},
		{Type: EventError, Data: json.RawMessage(`{"message":"solver diverged"}`)},
	} {
		s := NewSession()
		gen := running(t, s, &fakeEngine{})
		require.True(t, s.Handle(gen, terminal))
		before := s.Snapshot()

		assert.False(t, s.Handle(gen, event(t, EventProgress, progressAt(0, 1, 2, 3, 4))))
		assert.Equal(t, before, s.Snapshot())
	}
}

func TestStaleGenerationIgnored(t *testing.T) {
	e := &fakeEngine{}
	s := NewSession()
	old := running(t, s, e)
	s.Stop()
	fresh := running(t, s, e)

	assert.False(t, s.Handle(old, event(t, EventProgress, progressAt(0))))
	assert.Nil(t, s.Snapshot().Progress)
	assert.True(t, s.Handle(fresh, event(t, EventProgress, progressAt(0))))
}

func TestMalformedPayloadIsIgnored(t *testing.T) {
	s := NewSession()
	gen := running(t, s, &fakeEngine{})

	assert.False(t, s.Handle(gen, Event{Type: EventProgress, Data: json.RawMessage(`{"times": "soon"`)}))
	assert.False(t, s.Handle(gen, Event{Type: EventComplete, Data: json.RawMessage(`not json`)}))
	assert.False(t, s.Handle(gen, Event{Type: "heartbeat", Data: json.RawMessage(`{}`)}))
	assert.Equal(t, Running, s.State())

	assert.True(t, s.Handle(gen, Event{Type: EventError, Data: json.RawMessage(`garbage`)}))
	assert.Equal(t, Failed, s.State())
	assert.Equal(t, "simulation failed", s.Snapshot().Error)
}

func TestFailDefaultsToConnectionLost(t *testing.T) {
	s := NewSession()
	gen := running(t, s, &fakeEngine{})
	require.True(t, s.Fail(gen, ""))
	assert.Equal(t, ConnectionLost, s.Snapshot().Error)
	assert.False(t, s.Fail(gen, "again"))
}

func TestStopClosesChannelOnce(t *testing.T) {
	e := &fakeEngine{}
	s := NewSession()
	gen := running(t, s, e)
	sub, err := e.Stream(context.Background(), "sim-1")
	require.NoError(t, err)
	require.True(t, s.Attach(gen, sub))

	assert.Equal(t, "sim-1", s.Stop())
	assert.Equal(t, Idle, s.State())
	assert.Equal(t, 1, e.closed)

	s.Stop()
	s.Clear()
	sub.Close()
	assert.Equal(t, 1, e.closed)
	assert.False(t, s.Handle(gen, event(t, EventProgress, progressAt(0))))
}

func TestStopOnIdleIsNoop(t *testing.T) {
	s := NewSession()
	calls := 0
	s.Subscribe(func(Snapshot) { calls++ })

	before := s.Snapshot()
	assert.Empty(t, s.Stop())
	s.Clear()
	assert.Equal(t, before, s.Snapshot())
	assert.Zero(t, calls)
}

func TestAttachAfterStopClosesSubscription(t *testing.T) {
	e := &fakeEngine{}
	s := NewSession()
	gen := running(t, s, e)
	s.Stop()

	sub, _ := e.Stream(context.Background(), "sim-1")
	assert.False(t, s.Attach(gen, sub))
	assert.Equal(t, 1, e.closed)
}

func TestPercent(t *testing.T) {
	s := NewSession()
	assert.Zero(t, s.Percent())

	gen := running(t, s, &fakeEngine{})
	require.True(t, s.Handle(gen, event(t, EventProgress, progressAt(0, 1, 2, 3, 4, 5))))
	assert.InDelta(t, 0.5, s.Percent(), 1e-9)

	p := progressAt(0, 1)
	p.TotalTime = 4
	require.True(t, s.Handle(gen, event(t, EventProgress, p)))
	assert.InDelta(t, 0.25, s.Percent(), 1e-9)

	require.True(t, s.Handle(gen, event(t, EventComplete, finalResults())))
	assert.Equal(t, 1.0, s.Percent())
}

func TestSubscribersSeeTransitions(t *testing.T) {
	s := NewSession()
	var states []State
	cancel := s.Subscribe(func(snap Snapshot) { states = append(states, snap.State) })

	gen := running(t, s, &fakeEngine{})
	s.Handle(gen, event(t, EventProgress, progressAt(0)))
	s.Handle(gen, event(t, EventComplete, finalResults()))
	cancel()
	s.Stop()

	assert.Equal(t, []State{Running, Running, Completed}, states)
}
