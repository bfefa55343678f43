// Package simulation drives one run of the chemistry engine against a
// configuration snapshot and folds its progress stream into a session.
package simulation

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/boulder-sim/boulder/internal/network"
)

// EventType names a server-push event.
type EventType string

const (
	EventProgress EventType = "progress"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// Event is one message from a session's progress channel. Data is decoded
// lazily so a malformed payload only costs that one event.
type Event struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Engine is the external collaborator that actually integrates the network.
type Engine interface {
	Start(ctx context.Context, cfg network.Configuration, p Params) (string, error)
	Stream(ctx context.Context, id string) (*Subscription, error)
	Stop(ctx context.Context, id string) error
	Results(ctx context.Context, id string) (*Results, error)
}

// Subscription is the handle on an open progress channel. The owner must
// Close it; Close is safe to call any number of times.
type Subscription struct {
	events <-chan Event
	cancel func()
	once   sync.Once

	mu  sync.Mutex
	err error
}

// NewSubscription wraps a producer's channel. cancel tears the producer
// down and must cause events to be closed eventually.
func NewSubscription(events <-chan Event, cancel func()) *Subscription {
	if cancel == nil {
		cancel = func() {}
	}
	return &Subscription{events: events, cancel: cancel}
}

// Events is closed when the stream ends, cleanly or not.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Next blocks for the next event. ok is false once the stream has ended.
func (s *Subscription) Next(ctx context.Context) (ev Event, ok bool) {
	select {
	case ev, ok = <-s.events:
		return ev, ok
	case <-ctx.Done():
		return Event{}, false
	}
}

// SetErr records why the producer stopped. Producers call it before
// closing the channel.
func (s *Subscription) SetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

// Err is the transport failure that ended the stream, if any.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Subscription) Close() {
	s.once.Do(s.cancel)
}
