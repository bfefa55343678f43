package transcoder

import (
	"context"
	"errors"
	"sync"

	"github.com/boulder-sim/boulder/internal/network"
	"github.com/boulder-sim/boulder/pkg/log"
)

// ErrClosed is returned by operations that need an open edit session.
var ErrClosed = errors.New("editor is not open")

// Editor holds one text edit session over a store.
type Editor struct {
	store   *network.Store
	backend Backend

	mu       sync.Mutex
	open     bool
	text     string
	original string
	version  uint64
}

// NewEditor returns a closed editor over store.
func NewEditor(store *network.Store, backend Backend) *Editor {
	return &Editor{store: store, backend: backend}
}

// Export returns the text of the current model without opening a session.
func (e *Editor) Export(ctx context.Context) (string, error) {
	_, original := e.store.Source()
	return e.backend.Export(ctx, e.store.Snapshot(), original)
}

// Open starts an edit session from a fresh export of the model, keeping
// the comments of the loaded file. Any text left over from a previous
// session is discarded.
func (e *Editor) Open(ctx context.Context) (string, error) {
	version := e.store.Version()
	_, original := e.store.Source()
	text, err := e.backend.Export(ctx, e.store.Snapshot(), original)
	if err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.open = true
	e.text = text
	e.original = text
	e.version = version
	return text, nil
}

// IsOpen reports whether an edit session is active.
func (e *Editor) IsOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open
}

// Text returns the edited text.
func (e *Editor) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text
}

// SetText replaces the edited text. It does not touch the model.
func (e *Editor) SetText(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open {
		return ErrClosed
	}
	e.text = text
	return nil
}

// Dirty reports whether the text differs from what was exported on open.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open && e.text != e.original
}

// Stale reports whether the model changed after the session was opened.
func (e *Editor) Stale() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open && e.store.Version() != e.version
}

// Save parses the edited text and, only when that succeeds, replaces the
// model with the result. The session stays open on both outcomes.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	if !e.open {
		e.mu.Unlock()
		return ErrClosed
	}
	text := e.text
	e.mu.Unlock()

	name, _ := e.store.Source()
	if err := e.commit(ctx, name, text); err != nil {
		return err
	}

	e.mu.Lock()
	e.original = text
	e.version = e.store.Version()
	e.mu.Unlock()
	return nil
}

// Close ends the edit session and drops its text.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.open = false
	e.text = ""
	e.original = ""
}

func (e *Editor) commit(ctx context.Context, name, text string) error {
	cfg, err := e.backend.Parse(ctx, text)
	if err != nil {
		log.Warn("configuration rejected", "source", name, "error", err)
		return err
	}
	e.store.SetConfiguration(*cfg, name, text)
	log.Info("configuration replaced", "source", name, "nodes", len(cfg.Nodes), "connections", len(cfg.Connections))
	return nil
}
