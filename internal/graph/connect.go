package graph

import (
	"fmt"
	"time"

	"github.com/boulder-sim/boulder/internal/network"
	"github.com/boulder-sim/boulder/internal/selection"
)

// DoubleTapWindow is how close two selections of the same node must be to
// count as a double tap.
const DoubleTapWindow = 300 * time.Millisecond

// DefaultMassFlowRate is the flow given to connections drawn by gesture,
// in kg/s.
const DefaultMassFlowRate = 0.001

// GestureState is the connect-mode state.
type GestureState int

const (
	GestureIdle GestureState = iota
	GestureArmed
	GestureSourcePicked
)

func (s GestureState) String() string {
	switch s {
	case GestureArmed:
		return "armed"
	case GestureSourcePicked:
		return "source-picked"
	}
	return "idle"
}

// EffectKind enumerates what the UI must do in response to a gesture.
type EffectKind int

const (
	EffectHint EffectKind = iota
	EffectCursor
	EffectPreview
	EffectClearPreview
	EffectConnect
	EffectSelect
	EffectClearSelection
	EffectNotice
	EffectShowThermo
)

// Cursor values carried by EffectCursor.
const (
	CursorDefault   = "default"
	CursorCrosshair = "crosshair"
)

// Effect is one instruction emitted by the Connector.
type Effect struct {
	Kind    EffectKind
	Message string
	Source  string
	Target  string
	Element selection.Element
}

type tap struct {
	id string
	at time.Time
}

// Connector interprets pointer gestures. Holding the modifier arms connect
// mode; clicking a source then a different target asks for a connection.
// Without the modifier, clicks select.
type Connector struct {
	state   GestureState
	source  string
	preview string
	last    tap
	now     func() time.Time
}

// NewConnector returns an idle connector using the wall clock.
func NewConnector() *Connector {
	return &Connector{now: time.Now}
}

// WithClock replaces the connector's time source.
func (c *Connector) WithClock(now func() time.Time) *Connector {
	c.now = now
	return c
}

// State returns the gesture state.
func (c *Connector) State() GestureState { return c.state }

// Source returns the pending source node, if one is picked.
func (c *Connector) Source() (string, bool) {
	return c.source, c.state == GestureSourcePicked
}

// Preview returns the dashed preview edge, if one is shown.
func (c *Connector) Preview() (source, target string, ok bool) {
	if c.state != GestureSourcePicked || c.preview == "" {
		return "", "", false
	}
	return c.source, c.preview, true
}

// ModifierDown arms connect mode.
func (c *Connector) ModifierDown() []Effect {
	if c.state != GestureIdle {
		return nil
	}
	c.state = GestureArmed
	return []Effect{
		{Kind: EffectCursor, Message: CursorCrosshair},
		{Kind: EffectHint, Message: "Connect mode: click the source node"},
	}
}

// ModifierUp leaves connect mode, cancelling any pending source.
func (c *Connector) ModifierUp() []Effect {
	if c.state == GestureIdle {
		return nil
	}
	pending := c.state == GestureSourcePicked
	c.reset()

	effects := []Effect{{Kind: EffectCursor, Message: CursorDefault}}
	if pending {
		effects = append(effects,
			Effect{Kind: EffectClearPreview},
			Effect{Kind: EffectNotice, Message: "Connection cancelled"},
		)
	}
	return effects
}

// ClickNode handles a click on node id of the given kind.
func (c *Connector) ClickNode(id string, kind network.Kind) []Effect {
	switch c.state {
	case GestureArmed:
		c.state = GestureSourcePicked
		c.source = id
		c.preview = ""
		return []Effect{{Kind: EffectHint, Message: fmt.Sprintf("Source %s: click the target node", id)}}
	case GestureSourcePicked:
		if id == c.source {
			return nil
		}
		source := c.source
		c.state = GestureArmed
		c.source = ""
		c.preview = ""
		return []Effect{
			{Kind: EffectClearPreview},
			{Kind: EffectConnect, Source: source, Target: id},
		}
	}

	el := selection.Element{Kind: selection.KindNode, ID: id, Type: kind}
	effects := []Effect{{Kind: EffectSelect, Element: el}}

	now := c.now()
	if c.last.id == id && now.Sub(c.last.at) <= DoubleTapWindow {
		effects = append(effects, Effect{Kind: EffectShowThermo, Element: el})
		c.last = tap{}
	} else {
		c.last = tap{id: id, at: now}
	}
	return effects
}

// ClickEdge handles a click on a connection. Edges are not connect-mode
// targets.
func (c *Connector) ClickEdge(id string, kind network.Kind) []Effect {
	if c.state != GestureIdle {
		return nil
	}
	c.last = tap{}
	el := selection.Element{Kind: selection.KindEdge, ID: id, Type: kind}
	effects := []Effect{{Kind: EffectSelect, Element: el}}
	if kind == network.MassFlowController {
		effects = append(effects, Effect{Kind: EffectShowThermo, Element: el})
	}
	return effects
}

// Hover moves the pointer over node id; an empty id means no node.
func (c *Connector) Hover(id string) []Effect {
	if c.state != GestureSourcePicked {
		return nil
	}
	if id == "" || id == c.source {
		if c.preview == "" {
			return nil
		}
		c.preview = ""
		return []Effect{{Kind: EffectClearPreview}}
	}
	if id == c.preview {
		return nil
	}
	c.preview = id
	return []Effect{{Kind: EffectPreview, Source: c.source, Target: id}}
}

// ClickBackground clears the selection, or the pending source while in
// connect mode.
func (c *Connector) ClickBackground() []Effect {
	c.last = tap{}
	switch c.state {
	case GestureIdle:
		return []Effect{{Kind: EffectClearSelection}}
	case GestureSourcePicked:
		c.state = GestureArmed
		c.source = ""
		c.preview = ""
		return []Effect{{Kind: EffectClearPreview}, {Kind: EffectHint, Message: "Connect mode: click the source node"}}
	}
	return nil
}

func (c *Connector) reset() {
	c.state = GestureIdle
	c.source = ""
	c.preview = ""
}

// ProposeConnection builds the connection a gesture from source to target
// creates: a mass flow controller with the next free mfc_<n> id and a
// default flow. A second link between the same ordered pair is refused.
func ProposeConnection(cfg network.Configuration, source, target string) (network.Connection, error) {
	if existing, ok := cfg.Linked(source, target); ok {
		return network.Connection{}, &network.Error{
			Kind:   network.ErrDuplicateIdentifier,
			Entity: network.EntityConnection,
			ID:     existing.ID,
			Msg:    fmt.Sprintf("already connects %s to %s", source, target),
		}
	}
	return network.Connection{
		ID:         cfg.NextConnectionID("mfc"),
		Type:       network.MassFlowController,
		Source:     source,
		Target:     target,
		Properties: network.Properties{"mass_flow_rate": DefaultMassFlowRate},
	}, nil
}
