package navflow

import (
	"errors"
)

// Builder is a fluent wrapper around Graph for setup code that registers
// many nodes and edges. Unlike the Must* helpers it never panics: every
// registration error is collected and returned, joined, from Build.
//
// Example:
//
//	g, err := navflow.NewBuilder("checkout").
//	    Node(cart).
//	    Node(payment).
//	    Edge(navflow.Pass[Order]("cart", "payment", navflow.Push, nil)).
//	    Build()
type Builder struct {
	graph *Graph
	errs  []error
}

// NewBuilder starts building a graph with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{graph: NewGraph(name)}
}

// Node registers n.
func (b *Builder) Node(n Node) *Builder {
	if err := b.graph.AddNode(n); err != nil {
		b.errs = append(b.errs, err)
	}
	return b
}

// Nodes registers each node in order.
func (b *Builder) Nodes(nodes ...Node) *Builder {
	for _, n := range nodes {
		b.Node(n)
	}
	return b
}

// Subgraph registers a subgraph node.
func (b *Builder) Subgraph(n Node) *Builder {
	if err := b.graph.AddSubgraph(n); err != nil {
		b.errs = append(b.errs, err)
	}
	return b
}

// Edge registers e. Edges referencing nodes that failed to register are
// reported as unknown endpoints.
func (b *Builder) Edge(e *Edge) *Builder {
	if err := b.graph.AddEdge(e); err != nil {
		b.errs = append(b.errs, err)
	}
	return b
}

// Edges registers each edge in order.
func (b *Builder) Edges(edges ...*Edge) *Builder {
	for _, e := range edges {
		b.Edge(e)
	}
	return b
}

// Build validates the graph and returns it. On failure it returns nil and
// every error collected so far, joined with errors.Join.
func (b *Builder) Build() (*Graph, error) {
	errs := b.errs
	if err := b.graph.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return b.graph, nil
}

// MustBuild is Build that panics on error.
func (b *Builder) MustBuild() *Graph {
	g, err := b.Build()
	if err != nil {
		panic(err)
	}
	return g
}
