package app

import (
	"context"
	"testing"

	"github.com/boulder-sim/boulder/internal/simulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedCollapsesBursts(t *testing.T) {
	session := simulation.NewSession()
	f := newFeed(session)
	defer f.close()

	engine := &fakeEngine{}
	_, err := session.Start(context.Background(), engine, pair(), simulation.Params{})
	require.NoError(t, err)
	session.Stop()

	msg := f.wait()()
	snap, ok := msg.(snapshotMsg)
	require.True(t, ok)
	assert.Equal(t, simulation.Idle, snap.snap.State)
	assert.Equal(t, session.Generation(), snap.snap.Generation)

	select {
	case <-f.signal:
		t.Fatal("burst should leave a single pending signal")
	default:
	}
}

func TestFeedCloseEndsWait(t *testing.T) {
	f := newFeed(simulation.NewSession())
	f.close()
	f.close()

	assert.Nil(t, f.wait()())
	f.push(simulation.Snapshot{State: simulation.Running})
	assert.Equal(t, simulation.Idle, f.latest.State)
}
