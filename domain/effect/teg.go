package effect

import (
	"sort"

	"github.com/timewave-computer/causality/infrastructure/codec"
	"github.com/timewave-computer/causality/infrastructure/hash"
)

// NodeId identifies a TEG node: the content hash of its effect's
// canonical encoding combined with its position in the source sequence,
// so two structurally identical effects at different positions still get
// distinct ids.
type NodeId [32]byte

func (n NodeId) String() string { return hash.Hash{Algo: hash.Blake3, Bytes: n}.String() }

func nodeID(reg *hash.Registry, e *Effect, index int) (NodeId, error) {
	w := codec.NewWriter(64)
	w.Uint64(uint64(index))
	w.Bytes_(e.CanonicalEncode())
	h, err := reg.ContentHashDefault(w.Bytes())
	if err != nil {
		return NodeId{}, err
	}
	return NodeId(h.Bytes), nil
}

// Node is one vertex of the TEG: an effect, the nodes it depends on, and
// its precomputed critical-path length.
type Node struct {
	ID           NodeId
	Effect       *Effect
	Dependencies []NodeId
	CriticalPath int64
}

// Graph is the dependency DAG the TEG builder produces from an ordered
// effect sequence.
type Graph struct {
	Nodes map[NodeId]*Node
	Order []NodeId
}

// Build lowers an ordered effect sequence into a TEG: node N_i depends on
// node N_j (j<i) iff N_j writes or produces a resource that N_i reads or
// writes (§4.3). Only the most recent qualifying writer/producer per
// resource is recorded as a direct edge — earlier writers are already
// ordered transitively through that writer, so this is equivalent to the
// full edge set for scheduling purposes while keeping the graph sparse.
func Build(reg *hash.Registry, effects []*Effect) (*Graph, error) {
	g := &Graph{Nodes: make(map[NodeId]*Node, len(effects))}
	lastWriter := make(map[hash.ContentId]NodeId, len(effects))

	for i, e := range effects {
		id, err := nodeID(reg, e, i)
		if err != nil {
			return nil, err
		}

		touched := append(append([]hash.ContentId(nil), e.Footprint.Reads...), e.Footprint.Writes...)
		depSet := make(map[NodeId]struct{})
		for _, r := range touched {
			if dep, ok := lastWriter[r]; ok {
				depSet[dep] = struct{}{}
			}
		}
		deps := make([]NodeId, 0, len(depSet))
		for d := range depSet {
			deps = append(deps, d)
		}
		sort.Slice(deps, func(a, b int) bool { return deps[a].String() < deps[b].String() })

		g.Nodes[id] = &Node{ID: id, Effect: e, Dependencies: deps}
		g.Order = append(g.Order, id)

		for _, w := range e.Footprint.Writes {
			lastWriter[w] = id
		}
		for _, p := range e.Footprint.Productions {
			lastWriter[p] = id
		}
	}

	g.computeCriticalPaths()
	return g, nil
}

// computeCriticalPaths fills in each node's longest-path-to-a-leaf cost.
// Dependencies only point to earlier positions in g.Order, so every
// node's successors have already been resolved by the time we visit it
// in reverse construction order.
func (g *Graph) computeCriticalPaths() {
	successors := make(map[NodeId][]NodeId, len(g.Nodes))
	for _, id := range g.Order {
		for _, dep := range g.Nodes[id].Dependencies {
			successors[dep] = append(successors[dep], id)
		}
	}

	for i := len(g.Order) - 1; i >= 0; i-- {
		n := g.Nodes[g.Order[i]]
		best := int64(0)
		for _, succ := range successors[n.ID] {
			if cp := g.Nodes[succ].CriticalPath; cp > best {
				best = cp
			}
		}
		n.CriticalPath = n.Effect.Footprint.Cost + best
	}
}

// Ready returns the subset of nodes whose dependencies are all present in
// completed.
func (g *Graph) Ready(completed map[NodeId]struct{}) []*Node {
	var ready []*Node
	for _, id := range g.Order {
		if _, done := completed[id]; done {
			continue
		}
		n := g.Nodes[id]
		allDone := true
		for _, dep := range n.Dependencies {
			if _, ok := completed[dep]; !ok {
				allDone = false
				break
			}
		}
		if allDone {
			ready = append(ready, n)
		}
	}
	return ready
}

// Priority implements §4.3's scheduling priority for a ready node:
// 1000 + min(cost/100, 500) + 50*|productions|. Higher dispatches first;
// ties are broken by lower cost (the caller's comparator, not here).
func Priority(n *Node) int64 {
	costBonus := n.Effect.Footprint.Cost / 100
	if costBonus > 500 {
		costBonus = 500
	}
	return 1000 + costBonus + 50*int64(len(n.Effect.Footprint.Productions))
}
