package graph

import (
	"sort"

	"github.com/boulder-sim/boulder/internal/network"
)

// Point is a position on the layout canvas.
type Point struct {
	X, Y float64
}

// Spacing controls the distance between ranks (X), between nodes within a
// rank (Y), and the nudge applied to coincident nodes.
type Spacing struct {
	Rank   float64
	Order  float64
	Offset float64
}

// DefaultSpacing is the spacing the console uses.
var DefaultSpacing = Spacing{Rank: 200, Order: 100, Offset: 16}

// Layout places every node of a scene.
type Layout struct {
	Positions map[string]Point
	Ranks     [][]string
	rank      map[string]int
}

// Rank returns the column index of a node.
func (l Layout) Rank(id string) (int, bool) {
	r, ok := l.rank[id]
	return r, ok
}

type layoutNode struct {
	id           string
	index        int
	successors   []*layoutNode
	predecessors []*layoutNode
	depth        int
}

// ComputeLayout ranks nodes left to right along the flow direction.
// Recirculation loops are tolerated: edges closing a cycle are ignored for
// ranking. Nodes pinned by a metadata position keep it. Nodes that end up
// on identical coordinates are nudged apart deterministically.
func ComputeLayout(cfg network.Configuration, sp Spacing) Layout {
	nodes := make(map[string]*layoutNode, len(cfg.Nodes))
	ordered := make([]*layoutNode, 0, len(cfg.Nodes))
	for i, n := range cfg.Nodes {
		if _, dup := nodes[n.ID]; dup {
			continue
		}
		ln := &layoutNode{id: n.ID, index: i}
		nodes[n.ID] = ln
		ordered = append(ordered, ln)
	}

	type link struct{ from, to string }
	seen := map[link]struct{}{}
	for _, c := range cfg.Connections {
		from, okFrom := nodes[c.Source]
		to, okTo := nodes[c.Target]
		if !okFrom || !okTo || from == to {
			continue
		}
		l := link{c.Source, c.Target}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		from.successors = append(from.successors, to)
	}

	back := backEdges(ordered)
	indegree := make(map[string]int, len(nodes))
	for _, n := range ordered {
		kept := n.successors[:0]
		for _, succ := range n.successors {
			if _, isBack := back[[2]string{n.id, succ.id}]; isBack {
				continue
			}
			kept = append(kept, succ)
			succ.predecessors = append(succ.predecessors, n)
			indegree[succ.id]++
		}
		n.successors = kept
	}

	var queue []*layoutNode
	for _, n := range ordered {
		if indegree[n.id] == 0 {
			queue = append(queue, n)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, succ := range current.successors {
			if current.depth+1 > succ.depth {
				succ.depth = current.depth + 1
			}
			indegree[succ.id]--
			if indegree[succ.id] == 0 {
				queue = insertByIndex(queue, succ)
			}
		}
	}

	maxDepth := 0
	for _, n := range ordered {
		if n.depth > maxDepth {
			maxDepth = n.depth
		}
	}

	out := Layout{
		Positions: make(map[string]Point, len(ordered)),
		rank:      make(map[string]int, len(ordered)),
	}
	if len(ordered) == 0 {
		return out
	}

	out.Ranks = make([][]string, maxDepth+1)
	for _, n := range ordered {
		out.Ranks[n.depth] = append(out.Ranks[n.depth], n.id)
		out.rank[n.id] = n.depth
	}

	for depth, ids := range out.Ranks {
		for order, id := range ids {
			out.Positions[id] = Point{X: float64(depth) * sp.Rank, Y: float64(order) * sp.Order}
		}
	}
	for _, n := range cfg.Nodes {
		if p, ok := pinned(n); ok {
			out.Positions[n.ID] = p
		}
	}

	ids := make([]string, len(ordered))
	for i, n := range ordered {
		ids[i] = n.id
	}
	ResolveCollisions(ids, out.Positions, sp.Offset)

	return out
}

// ResolveCollisions moves every node that shares coordinates with an
// earlier node (in ids order) by k*offset on both axes, where k is the
// smallest positive step landing on a free spot.
func ResolveCollisions(ids []string, positions map[string]Point, offset float64) {
	if offset == 0 {
		offset = 1
	}
	taken := make(map[Point]struct{}, len(ids))
	for _, id := range ids {
		p, ok := positions[id]
		if !ok {
			continue
		}
		if _, clash := taken[p]; clash {
			base := p
			for k := 1; ; k++ {
				p = Point{X: base.X + float64(k)*offset, Y: base.Y + float64(k)*offset}
				if _, clash := taken[p]; !clash {
					break
				}
			}
			positions[id] = p
		}
		taken[p] = struct{}{}
	}
}

// backEdges finds the edges that close a cycle during a depth-first walk
// started from each node in insertion order.
func backEdges(ordered []*layoutNode) map[[2]string]struct{} {
	const (
		unvisited = iota
		active
		done
	)
	state := make(map[string]int, len(ordered))
	back := map[[2]string]struct{}{}

	var visit func(n *layoutNode)
	visit = func(n *layoutNode) {
		state[n.id] = active
		for _, succ := range n.successors {
			switch state[succ.id] {
			case unvisited:
				visit(succ)
			case active:
				back[[2]string{n.id, succ.id}] = struct{}{}
			}
		}
		state[n.id] = done
	}

	for _, n := range ordered {
		if state[n.id] == unvisited {
			visit(n)
		}
	}
	return back
}

func insertByIndex(queue []*layoutNode, node *layoutNode) []*layoutNode {
	i := sort.Search(len(queue), func(i int) bool {
		return queue[i].index >= node.index
	})
	queue = append(queue, nil)
	copy(queue[i+1:], queue[i:])
	queue[i] = node
	return queue
}

func pinned(n network.Node) (Point, bool) {
	pos, ok := n.Metadata["position"].(map[string]any)
	if !ok {
		return Point{}, false
	}
	x, okX := toFloat(pos["x"])
	y, okY := toFloat(pos["y"])
	if !okX || !okY {
		return Point{}, false
	}
	return Point{X: x, Y: y}, true
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	}
	return 0, false
}
