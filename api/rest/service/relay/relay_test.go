package relay

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/boulder-sim/boulder/internal/network"
	"github.com/boulder-sim/boulder/internal/simulation"
	"github.com/stretchr/testify/suite"
)

type fakeEngine struct {
	mu      sync.Mutex
	started []simulation.Params
	stopped []string
	status  string
}

func (f *fakeEngine) Start(_ context.Context, _ network.Configuration, p simulation.Params) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, p)
	return "up-1", nil
}

func (f *fakeEngine) Stream(_ context.Context, _ string) (*simulation.Subscription, error) {
	ch := make(chan simulation.Event)
	close(ch)
	return simulation.NewSubscription(ch, nil), nil
}

func (f *fakeEngine) Stop(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = append(f.stopped, id)
	return nil
}

func (f *fakeEngine) Results(_ context.Context, _ string) (*simulation.Results, error) {
	return &simulation.Results{Status: f.status}, nil
}

type RelaySuite struct {
	suite.Suite
	engine *fakeEngine
	relay  *Relay
	clock  time.Time
}

func TestRelaySuite(t *testing.T) {
	suite.Run(t, new(RelaySuite))
}

func (s *RelaySuite) SetupTest() {
	s.engine = &fakeEngine{status: simulation.StatusRunning}
	s.relay = New(s.engine)
	s.clock = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.relay.now = func() time.Time { return s.clock }
}

func (s *RelaySuite) start() Run {
	cfg := network.Configuration{Phases: map[string]any{"gas": map[string]any{"mechanism": "h2o2.yaml"}}}
	run, err := s.relay.Start(context.Background(), cfg, simulation.Params{Duration: 2})
	s.Require().NoError(err)
	return run
}

func (s *RelaySuite) TestStartResolvesParams() {
	run := s.start()

	s.NotEmpty(run.ID)
	s.NotEqual("up-1", run.ID)
	s.Equal("up-1", run.Upstream)
	s.Equal(simulation.StatusRunning, run.Status)
	s.Require().Len(s.engine.started, 1)
	s.Equal(simulation.Params{Duration: 2, TimeStep: simulation.DefaultTimeStep, Mechanism: "h2o2.yaml"}, s.engine.started[0])
}

func (s *RelaySuite) TestNoEngine() {
	r := New(nil)
	s.False(r.Configured())

	_, err := r.Start(context.Background(), network.Empty(), simulation.Params{})
	s.True(errors.Is(err, ErrNoEngine))
	_, err = r.Stream(context.Background(), "x")
	s.True(errors.Is(err, ErrNoEngine))
}

func (s *RelaySuite) TestUnknownID() {
	_, err := s.relay.Results(context.Background(), "missing", false)
	s.True(errors.Is(err, ErrNotFound))
	s.True(errors.Is(s.relay.Stop(context.Background(), "missing"), ErrNotFound))
}

func (s *RelaySuite) TestObserveFinishes() {
	run := s.start()

	s.relay.Observe(run.ID, simulation.EventProgress)
	got, err := s.relay.Get(run.ID)
	s.Require().NoError(err)
	s.False(got.Terminal())

	s.relay.Observe(run.ID, simulation.EventComplete)
	got, err = s.relay.Get(run.ID)
	s.Require().NoError(err)
	s.Equal(simulation.StatusComplete, got.Status)

	s.relay.Observe(run.ID, simulation.EventError)
	got, err = s.relay.Get(run.ID)
	s.Require().NoError(err)
	s.Equal(simulation.StatusComplete, got.Status, "first terminal status wins")
}

func (s *RelaySuite) TestResultsCleanupOnlyWhenFinished() {
	run := s.start()

	_, err := s.relay.Results(context.Background(), run.ID, true)
	s.Require().NoError(err)
	_, err = s.relay.Get(run.ID)
	s.NoError(err, "running simulations survive cleanup")

	s.engine.status = simulation.StatusComplete
	_, err = s.relay.Results(context.Background(), run.ID, true)
	s.Require().NoError(err)
	_, err = s.relay.Get(run.ID)
	s.True(errors.Is(err, ErrNotFound))
}

func (s *RelaySuite) TestStopForgets() {
	run := s.start()

	s.Require().NoError(s.relay.Stop(context.Background(), run.ID))
	s.Equal([]string{"up-1"}, s.engine.stopped)
	s.Empty(s.relay.List())
}

func (s *RelaySuite) TestCleanupByAge() {
	old := s.start()
	s.relay.Observe(old.ID, simulation.EventComplete)

	s.clock = s.clock.Add(time.Hour)
	fresh := s.start()
	s.relay.Observe(fresh.ID, simulation.EventError)
	running := s.start()

	removed, remaining := s.relay.Cleanup(30 * time.Minute)
	s.Equal(1, removed)
	s.Equal(2, remaining)

	removed, remaining = s.relay.Cleanup(-1)
	s.Equal(1, removed)
	s.Equal(1, remaining)
	s.Equal(running.ID, s.relay.List()[0].ID)
}
