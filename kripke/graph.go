package kripke

import (
	"fmt"
	"sort"
)

// NodeID identifies a node of a StateGraph. IDs are dense, start at zero,
// and stay valid for the lifetime of the graph.
type NodeID int

// StateNode wraps one State with its identifier and outgoing edges.
type StateNode struct {
	ID    NodeID
	State State
	succ  []NodeID
}

// Successors returns a copy of the outgoing edges in insertion order.
// Duplicate edges are kept.
func (n *StateNode) Successors() []NodeID {
	out := make([]NodeID, len(n.succ))
	copy(out, n.succ)
	return out
}

// StateGraph is a finite Kripke structure: an arena of nodes plus a
// designated root.
//
// A graph is built by a single writer (AddState, AddTransition, SetRoot)
// and afterwards only read. Reads never mutate it, so any number of
// evaluations may run concurrently once construction has finished.
// Nothing here enforces that split; callers do.
type StateGraph struct {
	nodes   []*StateNode
	root    NodeID
	hasRoot bool
	edges   int
}

func NewStateGraph() *StateGraph {
	return &StateGraph{}
}

// AddState creates a node with no outgoing edges and returns its ID.
// The first state added becomes the root.
func (g *StateGraph) AddState(s State) NodeID {
	if g == nil {
		return -1
	}
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, &StateNode{ID: id, State: s})
	if !g.hasRoot {
		g.root = id
		g.hasRoot = true
	}
	return id
}

// AddTransition appends to as a successor of from. The graph is left
// unchanged when either endpoint is unknown.
func (g *StateGraph) AddTransition(from, to NodeID) error {
	if g == nil {
		return ErrNilGraph
	}
	if !g.valid(from) {
		return fmt.Errorf("transition %d -> %d: source: %w", from, to, ErrNodeNotFound)
	}
	if !g.valid(to) {
		return fmt.Errorf("transition %d -> %d: target: %w", from, to, ErrNodeNotFound)
	}
	n := g.nodes[from]
	n.succ = append(n.succ, to)
	g.edges++
	return nil
}

// SetRoot designates the default initial state.
func (g *StateGraph) SetRoot(id NodeID) error {
	if g == nil {
		return ErrNilGraph
	}
	if !g.valid(id) {
		return fmt.Errorf("root %d: %w", id, ErrNodeNotFound)
	}
	g.root = id
	g.hasRoot = true
	return nil
}

func (g *StateGraph) Root() (NodeID, bool) {
	if g == nil || !g.hasRoot {
		return 0, false
	}
	return g.root, true
}

func (g *StateGraph) valid(id NodeID) bool {
	return g != nil && id >= 0 && int(id) < len(g.nodes)
}

func (g *StateGraph) Node(id NodeID) (*StateNode, bool) {
	if !g.valid(id) {
		return nil, false
	}
	return g.nodes[id], true
}

func (g *StateGraph) State(id NodeID) (State, bool) {
	if !g.valid(id) {
		return State{}, false
	}
	return g.nodes[id].State, true
}

// Lookup returns the first node whose state has the given name.
func (g *StateGraph) Lookup(name string) (NodeID, bool) {
	if g == nil {
		return 0, false
	}
	for _, n := range g.nodes {
		if n.State.Name() == name {
			return n.ID, true
		}
	}
	return 0, false
}

// Name is the display name of a node, falling back to its number.
func (g *StateGraph) Name(id NodeID) string {
	if s, ok := g.State(id); ok && s.Name() != "" {
		return s.Name()
	}
	return fmt.Sprintf("n%d", id)
}

func (g *StateGraph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.nodes)
}

func (g *StateGraph) EdgeCount() int {
	if g == nil {
		return 0
	}
	return g.edges
}

// IDs returns every node identifier in ascending order.
func (g *StateGraph) IDs() []NodeID {
	out := make([]NodeID, g.Len())
	for i := range out {
		out[i] = NodeID(i)
	}
	return out
}

func (g *StateGraph) Successors(id NodeID) []NodeID {
	n, ok := g.Node(id)
	if !ok {
		return nil
	}
	return n.Successors()
}

// Predecessors is derived by scanning every successor list; the graph
// does not store incoming edges.
func (g *StateGraph) Predecessors(id NodeID) []NodeID {
	if !g.valid(id) {
		return nil
	}
	var out []NodeID
	for _, n := range g.nodes {
		for _, s := range n.succ {
			if s == id {
				out = append(out, n.ID)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AllNodes returns the full node set.
func (g *StateGraph) AllNodes() StateSet {
	out := make(StateSet, g.Len())
	for i := 0; i < g.Len(); i++ {
		out.Add(NodeID(i))
	}
	return out
}

// Reachable returns start plus every node transitively reachable from it.
// An unknown start yields the empty set.
func (g *StateGraph) Reachable(start NodeID) StateSet {
	visited := NewStateSet()
	g.walk(start, func(n *StateNode) { visited.Add(n.ID) })
	return visited
}

// walk visits every node reachable from start exactly once.
func (g *StateGraph) walk(start NodeID, visit func(*StateNode)) {
	if !g.valid(start) {
		return
	}
	seen := NewStateSet(start)
	work := []NodeID{start}
	for len(work) > 0 {
		id := work[len(work)-1]
		work = work[:len(work)-1]
		n := g.nodes[id]
		visit(n)
		for _, s := range n.succ {
			if !seen.Has(s) {
				seen.Add(s)
				work = append(work, s)
			}
		}
	}
}

// Terminals returns the nodes without successors (deadlocks).
func (g *StateGraph) Terminals() StateSet {
	out := NewStateSet()
	if g == nil {
		return out
	}
	for _, n := range g.nodes {
		if len(n.succ) == 0 {
			out.Add(n.ID)
		}
	}
	return out
}

// scopeNodes lists the nodes of scope, or every node when scope is nil.
func (g *StateGraph) scopeNodes(scope StateSet) []*StateNode {
	if g == nil {
		return nil
	}
	if scope == nil {
		return g.nodes
	}
	out := make([]*StateNode, 0, len(scope))
	for _, id := range scope.Sorted() {
		if g.valid(id) {
			out = append(out, g.nodes[id])
		}
	}
	return out
}

// PreImageExistential returns the nodes of scope (every node when scope
// is nil) with at least one successor in target:
//
//	Pre_E(W) = { s | ∃ s' . R(s,s') ∧ s' ∈ W }
func (g *StateGraph) PreImageExistential(target, scope StateSet) StateSet {
	out := NewStateSet()
	for _, n := range g.scopeNodes(scope) {
		for _, s := range n.succ {
			if target.Has(s) {
				out.Add(n.ID)
				break
			}
		}
	}
	return out
}

// PreImageUniversal returns the nodes of scope (every node when scope is
// nil) whose successor list is non-empty and lies entirely in target:
//
//	Pre_A(W) = { s | Succ(s) ≠ ∅ ∧ Succ(s) ⊆ W }
//
// Terminal nodes are excluded. A deadlock has no next state, so it does
// not satisfy AX φ for any φ, and AF/AU never pass through one.
func (g *StateGraph) PreImageUniversal(target, scope StateSet) StateSet {
	out := NewStateSet()
	for _, n := range g.scopeNodes(scope) {
		if len(n.succ) == 0 {
			continue
		}
		if allIn(n.succ, target) {
			out.Add(n.ID)
		}
	}
	return out
}

func allIn(ids []NodeID, set StateSet) bool {
	for _, id := range ids {
		if !set.Has(id) {
			return false
		}
	}
	return true
}
