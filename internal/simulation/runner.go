package simulation

import (
	"context"

	"github.com/boulder-sim/boulder/internal/network"
	"github.com/boulder-sim/boulder/pkg/log"
)

// Runner drives a session to a terminal state without a UI.
type Runner struct {
	Engine  Engine
	Session *Session
}

func NewRunner(engine Engine) *Runner {
	return &Runner{Engine: engine, Session: NewSession()}
}

// Run starts cfg, applies events in order and returns the terminal
// snapshot. If the stream ends early the results endpoint is consulted
// before the run is declared lost. Cancelling ctx, or stopping the
// session, stops the run upstream.
func (r *Runner) Run(ctx context.Context, cfg network.Configuration, p Params, onUpdate func(Snapshot)) (Snapshot, error) {
	if onUpdate != nil {
		cancel := r.Session.Subscribe(onUpdate)
		defer cancel()
	}

	gen, err := r.Session.Start(ctx, r.Engine, cfg, p)
	if err != nil {
		return r.Session.Snapshot(), err
	}
	id := r.Session.Snapshot().ID

	sub, err := r.Engine.Stream(ctx, id)
	if err != nil {
		r.Session.Fail(gen, err.Error())
		return r.Session.Snapshot(), nil
	}
	if !r.Session.Attach(gen, sub) {
		return r.Session.Snapshot(), nil
	}

	for {
		ev, ok := sub.Next(ctx)
		if !ok || ctx.Err() != nil {
			break
		}
		if !r.Session.Handle(gen, ev) && r.Session.Generation() != gen {
			break
		}
		if r.Session.State() != Running {
			return r.Session.Snapshot(), nil
		}
	}

	// Cancelled, or stopped through the session by someone else.
	if ctx.Err() != nil || r.Session.Generation() != gen {
		r.Session.Abandon(gen)
		if err := r.Engine.Stop(context.Background(), id); err != nil {
			log.Warn("failed to stop simulation", "id", id, "error", err)
		}
		if err := ctx.Err(); err != nil {
			return r.Session.Snapshot(), err
		}
		return r.Session.Snapshot(), context.Canceled
	}

	r.recover(ctx, gen, id, sub)
	return r.Session.Snapshot(), nil
}

// recover fetches results after the stream closed without a terminal
// event.
func (r *Runner) recover(ctx context.Context, gen uint64, id string, sub *Subscription) {
	res, err := r.Engine.Results(ctx, id)
	if err == nil {
		switch res.Status {
		case StatusComplete:
			r.Session.Complete(gen, *res)
			return
		case StatusError:
			r.Session.Fail(gen, res.ErrorMessage)
			return
		}
	}

	msg := ConnectionLost
	if serr := sub.Err(); serr != nil {
		log.Warn("simulation stream ended", "id", id, "error", serr)
	}
	r.Session.Fail(gen, msg)
}
