package app

import (
	"sync"

	"github.com/boulder-sim/boulder/internal/simulation"
	tea "github.com/charmbracelet/bubbletea"
)

// feed hands session snapshots to the program loop. Only the latest
// snapshot is kept; a burst of progress events collapses into one message.
type feed struct {
	mu     sync.Mutex
	latest simulation.Snapshot
	closed bool
	signal chan struct{}
	cancel func()
}

func newFeed(s *simulation.Session) *feed {
	f := &feed{signal: make(chan struct{}, 1), latest: s.Snapshot()}
	f.cancel = s.Subscribe(f.push)
	return f
}

func (f *feed) push(snap simulation.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.latest = snap
	select {
	case f.signal <- struct{}{}:
	default:
	}
}

// wait blocks until the session changes. It returns nil once the feed is
// closed.
func (f *feed) wait() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-f.signal; !ok {
			return nil
		}
		f.mu.Lock()
		snap := f.latest
		f.mu.Unlock()
		return snapshotMsg{snap: snap}
	}
}

func (f *feed) close() {
	f.cancel()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	close(f.signal)
}

type snapshotMsg struct {
	snap simulation.Snapshot
}
