// Package cfg implements the control-flow-graph model shared by every
// language frontend: an arena of nodes plus untyped edges, with the
// reachability validation and cyclomatic-complexity base the metric
// extractor needs. Index-based rather than pointer-based, so cyclic
// structures (loops) are trivial to build and walk without cycle-safety
// gymnastics.
package cfg

import "fmt"

// NodeID indexes into a Graph's node arena.
type NodeID int

// Kind tags what a node represents. Edges carry no type of their own;
// fallthrough, true/false branches, exception paths, and back-edges are
// all conveyed purely by topology.
type Kind int

const (
	KindEntry Kind = iota
	KindExit
	KindStatement
	KindBranch
	KindMerge
	KindSink // return/throw/panic/break/continue that routes directly to exit.
)

func (k Kind) String() string {
	switch k {
	case KindEntry:
		return "entry"
	case KindExit:
		return "exit"
	case KindStatement:
		return "statement"
	case KindBranch:
		return "branch"
	case KindMerge:
		return "merge"
	case KindSink:
		return "sink"
	default:
		return "unknown"
	}
}

// Graph is a single function's control-flow graph.
type Graph struct {
	kinds []Kind
	edges [][2]NodeID
	entry NodeID
	exit  NodeID
}

// Builder constructs a Graph incrementally. Zero value is not usable;
// use NewBuilder.
type Builder struct {
	g *Graph
}

// NewBuilder creates a Builder with entry and exit nodes already placed.
func NewBuilder() *Builder {
	g := &Graph{}
	entry := g.addNode(KindEntry)
	exit := g.addNode(KindExit)
	g.entry = entry
	g.exit = exit

	return &Builder{g: g}
}

func (g *Graph) addNode(k Kind) NodeID {
	id := NodeID(len(g.kinds))
	g.kinds = append(g.kinds, k)

	return id
}

// Entry returns the designated entry node.
func (b *Builder) Entry() NodeID { return b.g.entry }

// Exit returns the designated exit node.
func (b *Builder) Exit() NodeID { return b.g.exit }

// AddNode appends a new node of the given kind and returns its ID.
func (b *Builder) AddNode(k Kind) NodeID {
	return b.g.addNode(k)
}

// AddEdge records a directed edge from -> to. Duplicate edges are
// permitted; they are deliberate (e.g. a branch that both true- and
// false-heads into the same merge) and do not corrupt CC, since CC is
// computed from the literal edge and node counts.
func (b *Builder) AddEdge(from, to NodeID) {
	b.g.edges = append(b.g.edges, [2]NodeID{from, to})
}

// Build finalizes the graph. Validation (single entry/exit, full
// reachability from entry, exit reachable from every non-terminator
// node) is performed by Validate, not here, so callers can inspect a
// graph that fails validation for diagnostics.
func (b *Builder) Build() *Graph {
	return b.g
}

// NodeCount returns the number of nodes in the graph (N in E - N + 2).
func (g *Graph) NodeCount() int { return len(g.kinds) }

// EdgeCount returns the number of edges in the graph (E in E - N + 2).
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Kind returns the kind tag for a node.
func (g *Graph) Kind(id NodeID) Kind { return g.kinds[id] }

// Entry returns the designated entry node.
func (g *Graph) Entry() NodeID { return g.entry }

// Exit returns the designated exit node.
func (g *Graph) Exit() NodeID { return g.exit }

// successors returns the out-edges of a node.
func (g *Graph) successors(id NodeID) []NodeID {
	var out []NodeID

	for _, e := range g.edges {
		if e[0] == id {
			out = append(out, e[1])
		}
	}

	return out
}

// predecessors returns the in-edges of a node.
func (g *Graph) predecessors(id NodeID) []NodeID {
	var in []NodeID

	for _, e := range g.edges {
		if e[1] == id {
			in = append(in, e[0])
		}
	}

	return in
}

// reachableFrom computes the set of nodes reachable from start by
// following edges forward.
func (g *Graph) reachableFrom(start NodeID) map[NodeID]bool {
	seen := map[NodeID]bool{start: true}
	stack := []NodeID{start}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, succ := range g.successors(n) {
			if !seen[succ] {
				seen[succ] = true
				stack = append(stack, succ)
			}
		}
	}

	return seen
}

// canReach reports whether target is reachable from start by
// following edges forward.
func (g *Graph) canReach(start, target NodeID) bool {
	return g.reachableFrom(start)[target]
}

// Validate enforces §4.D's invariants: exactly one entry and one exit
// (structural, by construction), every node reachable from entry, and
// exit reachable from every node that is not a terminator (KindSink
// nodes are terminators; they route directly to exit and need not have
// further outgoing flow beyond that single edge).
func (g *Graph) Validate() error {
	reachable := g.reachableFrom(g.entry)
	for id := range g.kinds {
		nid := NodeID(id)
		if !reachable[nid] {
			return fmt.Errorf("node %d (%s) unreachable from entry", id, g.kinds[id])
		}
	}

	for id, k := range g.kinds {
		nid := NodeID(id)
		if nid == g.exit {
			continue
		}

		if k == KindSink {
			// Terminators must still route to exit directly; validate that.
			if !g.canReach(nid, g.exit) {
				return fmt.Errorf("terminator node %d does not reach exit", id)
			}

			continue
		}

		if !g.canReach(nid, g.exit) {
			return fmt.Errorf("node %d (%s) cannot reach exit", id, k)
		}
	}

	return nil
}

// CyclomaticBase computes cc_base = E - N + 2 per §4.D. A degenerate
// single-path function (one node, no branch/merge/sink, entry->exit)
// yields 1.
func (g *Graph) CyclomaticBase() int {
	return g.EdgeCount() - g.NodeCount() + 2
}
