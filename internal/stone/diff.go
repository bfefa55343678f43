package stone

import (
	"sort"

	"github.com/boulder-sim/boulder/internal/network"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Diff captures the comparison between two configurations, keyed by
// element id.
type Diff struct {
	Creates []string
	Updates []Update
	Deletes []string
}

// Update captures the differences for an element present on both sides.
type Update struct {
	ID   string
	Diff string
}

// Empty reports whether the diff contains no changes.
func (d Diff) Empty() bool {
	return len(d.Creates) == 0 && len(d.Updates) == 0 && len(d.Deletes) == 0
}

// Compare generates a diff from actual to desired. Ids in the output are
// qualified by kind as "node/<id>" or "connection/<id>".
func Compare(desired, actual network.Configuration) Diff {
	want := elements(desired)
	have := elements(actual)

	opts := []cmp.Option{
		cmpopts.EquateEmpty(),
		cmpopts.EquateApprox(0, 1e-12),
	}

	var result Diff
	for id, el := range want {
		prev, ok := have[id]
		if !ok {
			result.Creates = append(result.Creates, id)
			continue
		}
		if diff := cmp.Diff(prev, el, opts...); diff != "" {
			result.Updates = append(result.Updates, Update{ID: id, Diff: diff})
		}
		delete(have, id)
	}
	for id := range have {
		result.Deletes = append(result.Deletes, id)
	}

	sort.Strings(result.Creates)
	sort.Strings(result.Deletes)
	sort.Slice(result.Updates, func(i, j int) bool { return result.Updates[i].ID < result.Updates[j].ID })
	return result
}

func elements(cfg network.Configuration) map[string]any {
	out := make(map[string]any, len(cfg.Nodes)+len(cfg.Connections))
	for _, n := range cfg.Nodes {
		n.Properties = network.NormalizeProperties(n.Properties)
		out["node/"+n.ID] = n
	}
	for _, c := range cfg.Connections {
		c.Properties = network.NormalizeProperties(c.Properties)
		out["connection/"+c.ID] = c
	}
	return out
}
