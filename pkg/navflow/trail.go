package navflow

import (
	"fmt"
	"strings"
)

// Frame records one entered subgraph: the subgraph node, the graph it is
// registered in, and the graph it wraps.
type Frame struct {
	Subgraph SubgraphView
	Parent   *Graph
	Inner    *Graph
}

// Trail is the stack of currently entered subgraph frames, outermost first.
// It is rebuilt during traversal and never mutated in place: Push and Pop
// return new trails, so a trail captured in screen metadata stays valid.
type Trail []Frame

// Push returns a new trail with f appended.
func (t Trail) Push(f Frame) Trail {
	out := make(Trail, len(t), len(t)+1)
	copy(out, t)
	return append(out, f)
}

// Pop returns the innermost frame and the trail without it.
func (t Trail) Pop() (Frame, Trail, bool) {
	if len(t) == 0 {
		return Frame{}, nil, false
	}
	return t[len(t)-1], t[: len(t)-1 : len(t)-1], true
}

// Top returns the innermost frame.
func (t Trail) Top() (Frame, bool) {
	if len(t) == 0 {
		return Frame{}, false
	}
	return t[len(t)-1], true
}

// Depth returns the number of entered subgraphs.
func (t Trail) Depth() int {
	return len(t)
}

// Graph returns the graph traversal is in: the innermost frame's graph, or
// root when the trail is empty.
func (t Trail) Graph(root *Graph) *Graph {
	if f, ok := t.Top(); ok {
		return f.Inner
	}
	return root
}

// IDs returns the subgraph node IDs from the outermost frame inwards. With
// the root graph, the IDs are enough to rebuild the trail (see ResolveTrail).
func (t Trail) IDs() []string {
	ids := make([]string, len(t))
	for i, f := range t {
		ids[i] = f.Subgraph.ID
	}
	return ids
}

// CommonPrefix returns the number of leading frames t and other share.
func (t Trail) CommonPrefix(other Trail) int {
	n := min(len(t), len(other))
	for i := 0; i < n; i++ {
		if !t[i].same(other[i]) {
			return i
		}
	}
	return n
}

// Equal reports whether both trails hold the same frames.
func (t Trail) Equal(other Trail) bool {
	return len(t) == len(other) && t.CommonPrefix(other) == len(t)
}

// String renders the trail as "a/b/c"; the empty trail renders as "/".
func (t Trail) String() string {
	if len(t) == 0 {
		return "/"
	}
	return strings.Join(t.IDs(), "/")
}

func (f Frame) same(o Frame) bool {
	return f.Subgraph.ID == o.Subgraph.ID && f.Inner == o.Inner && f.Parent == o.Parent
}

// ResolveTrail rebuilds a trail from a root graph and a path of subgraph
// node IDs, as produced by Trail.IDs.
func ResolveTrail(root *Graph, ids []string) (Trail, error) {
	var trail Trail
	g := root
	for _, id := range ids {
		n, ok := g.Node(id)
		if !ok {
			return nil, &ConfigurationError{Op: "resolve_trail", NodeID: id, Err: fmt.Errorf("%w in graph %s", ErrNodeNotFound, g.Name())}
		}
		sg, ok := n.(subgraphNode)
		if !ok {
			return nil, &ConfigurationError{Op: "resolve_trail", NodeID: id, Err: ErrInvalidSubgraph}
		}
		v := sg.view()
		trail = trail.Push(Frame{Subgraph: v, Parent: g, Inner: v.Graph})
		g = v.Graph
	}
	return trail, nil
}

// Descend follows subgraph entries starting at n until it reaches a node
// that is not a subgraph, pushing one frame per subgraph entered. The
// returned graph is the one the returned node lives in. A node that is not a
// subgraph is returned unchanged with g and trail.
func Descend(n Node, g *Graph, trail Trail) (Node, *Graph, Trail, error) {
	for {
		sg, ok := n.(subgraphNode)
		if !ok {
			return n, g, trail, nil
		}
		v := sg.view()
		entry, ok := v.Graph.Node(v.EntryID)
		if !ok {
			return nil, nil, nil, &ConfigurationError{Op: "descend", NodeID: v.ID, Err: fmt.Errorf("%w: entry %q", ErrNodeNotFound, v.EntryID)}
		}
		trail = trail.Push(Frame{Subgraph: v, Parent: g, Inner: v.Graph})
		g = v.Graph
		n = entry
	}
}
