package navflow

import (
	"fmt"
	"reflect"
)

// Graph owns a node registry and an adjacency list of edges keyed by source
// node ID. Edge order per source is registration order and defines
// tie-break priority during resolution.
//
// Graph is NOT safe for concurrent mutation. Build it on one goroutine
// during setup; once a Controller or DryRun uses it, treat it as read-only.
// Read-only methods may then be called concurrently.
//
// Example:
//
//	g := navflow.NewGraph("root")
//	g.MustAddNode(navflow.NewScreen[navflow.Void, string]("home"))
//	g.MustAddNode(navflow.NewScreen[string, navflow.Void]("detail"))
//	g.MustAddEdge(navflow.Pass[string]("home", "detail", navflow.Push, nil))
type Graph struct {
	name  string
	nodes map[string]Node
	order []string
	edges map[string][]*Edge
}

// NewGraph creates an empty graph. The name is used in logs, outlines, and
// diagrams.
func NewGraph(name string) *Graph {
	return &Graph{
		name:  name,
		nodes: make(map[string]Node),
		edges: make(map[string][]*Edge),
	}
}

// Name returns the graph name.
func (g *Graph) Name() string {
	return g.name
}

// AddNode registers a node. It fails with ErrDuplicateNodeID if the ID is
// already registered. Subgraph nodes are accepted and validated as by
// AddSubgraph.
func (g *Graph) AddNode(n Node) error {
	if n == nil || n.ID() == "" {
		return &ConfigurationError{Op: "add_node", Err: ErrInvalidNode}
	}
	id := n.ID()
	if _, exists := g.nodes[id]; exists {
		return &ConfigurationError{Op: "add_node", NodeID: id, Err: ErrDuplicateNodeID}
	}
	if sg, ok := n.(subgraphNode); ok {
		if g.containedIn(sg.view().Graph) {
			return &ConfigurationError{Op: "add_subgraph", NodeID: id, Err: ErrSubgraphCycle}
		}
	}

	g.nodes[id] = n
	g.order = append(g.order, id)
	return nil
}

// AddSubgraph registers a subgraph node. It behaves like AddNode but rejects
// nodes that do not wrap a nested graph.
func (g *Graph) AddSubgraph(n Node) error {
	if n == nil || KindOf(n) != KindSubgraph {
		id := ""
		if n != nil {
			id = n.ID()
		}
		return &ConfigurationError{Op: "add_subgraph", NodeID: id, Err: ErrInvalidSubgraph}
	}
	return g.AddNode(n)
}

// AddEdge appends an edge to its source's adjacency list. Both endpoints must
// already be registered (ErrUnknownEndpoint otherwise), and the edge's
// output must be usable as the destination's input.
func (g *Graph) AddEdge(e *Edge) error {
	if e == nil || e.from == "" || e.to == "" {
		return &ConfigurationError{Op: "add_edge", Err: ErrInvalidEdge}
	}
	if _, ok := g.nodes[e.from]; !ok {
		return &ConfigurationError{Op: "add_edge", EdgeID: e.id, Err: fmt.Errorf("%w: source %q", ErrUnknownEndpoint, e.from)}
	}
	dest, ok := g.nodes[e.to]
	if !ok {
		return &ConfigurationError{Op: "add_edge", EdgeID: e.id, Err: fmt.Errorf("%w: destination %q", ErrUnknownEndpoint, e.to)}
	}
	if !assignable(e.target, dest.InputType()) {
		return &ConfigurationError{
			Op:     "add_edge",
			EdgeID: e.id,
			Err:    fmt.Errorf("%w: edge produces %s, %s requires %s", ErrTypeMismatch, typeName(e.target), e.to, typeName(dest.InputType())),
		}
	}

	g.edges[e.from] = append(g.edges[e.from], e)
	return nil
}

// MustAddNode is AddNode that panics on error. Use it in static setup code.
func (g *Graph) MustAddNode(n Node) *Graph {
	if err := g.AddNode(n); err != nil {
		panic(err)
	}
	return g
}

// MustAddSubgraph is AddSubgraph that panics on error.
func (g *Graph) MustAddSubgraph(n Node) *Graph {
	if err := g.AddSubgraph(n); err != nil {
		panic(err)
	}
	return g
}

// MustAddEdge is AddEdge that panics on error.
func (g *Graph) MustAddEdge(e *Edge) *Graph {
	if err := g.AddEdge(e); err != nil {
		panic(err)
	}
	return g
}

// Node returns the node registered under id.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Has reports whether id is registered.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Len returns the number of registered nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// NodeIDs returns the registered IDs in registration order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, len(g.order))
	copy(ids, g.order)
	return ids
}

// Nodes returns the registered nodes in registration order.
func (g *Graph) Nodes() []Node {
	nodes := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Edges returns the outgoing edges of a node in registration order.
func (g *Graph) Edges(from string) []*Edge {
	src := g.edges[from]
	if len(src) == 0 {
		return nil
	}
	out := make([]*Edge, len(src))
	copy(out, src)
	return out
}

// AllEdges returns every edge, grouped by source in node registration order.
func (g *Graph) AllEdges() []*Edge {
	var out []*Edge
	for _, id := range g.order {
		out = append(out, g.edges[id]...)
	}
	return out
}

// Subgraphs returns the erased views of the subgraph nodes registered
// directly in g, in registration order.
func (g *Graph) Subgraphs() []SubgraphView {
	var out []SubgraphView
	for _, id := range g.order {
		if sg, ok := g.nodes[id].(subgraphNode); ok {
			out = append(out, sg.view())
		}
	}
	return out
}

// containedIn reports whether g is inner or any graph nested inside it.
func (g *Graph) containedIn(inner *Graph) bool {
	if inner == nil {
		return false
	}
	if inner == g {
		return true
	}
	for _, sv := range inner.Subgraphs() {
		if g.containedIn(sv.Graph) {
			return true
		}
	}
	return false
}

// assignable reports whether a value produced as from can be delivered to a
// node requiring to. Interface-typed producers are checked at runtime.
func assignable(from, to reflect.Type) bool {
	if from == nil || to == nil {
		return true
	}
	return from.AssignableTo(to) || from.Kind() == reflect.Interface
}
