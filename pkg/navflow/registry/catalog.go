package registry

import (
	"github.com/randalmurphal/navflow/pkg/navflow"
)

// EdgeFactory builds an edge between two nodes with a given transition.
// Catalog entries carry the typed predicate and transform; the flow file
// supplies the endpoints.
type EdgeFactory func(from, to string, t navflow.Transition) *navflow.Edge

// Catalog names the nodes and edges a flow file can refer to.
// It is safe for concurrent use.
type Catalog struct {
	nodes *Registry[string, navflow.Node]
	edges *Registry[string, EdgeFactory]
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		nodes: New[string, navflow.Node](),
		edges: New[string, EdgeFactory](),
	}
}

// AddNode registers n under name and returns the catalog.
func (c *Catalog) AddNode(name string, n navflow.Node) *Catalog {
	c.nodes.Register(name, n)
	return c
}

// AddEdge registers an edge constructor under name and returns the catalog.
func (c *Catalog) AddEdge(name string, f EdgeFactory) *Catalog {
	c.edges.Register(name, f)
	return c
}

// Node returns the node registered under name.
func (c *Catalog) Node(name string) (navflow.Node, bool) {
	return c.nodes.Get(name)
}

// Edge returns the edge constructor registered under name.
func (c *Catalog) Edge(name string) (EdgeFactory, bool) {
	return c.edges.Get(name)
}

// NodeNames returns the registered node names, sorted.
func (c *Catalog) NodeNames() []string {
	return sortedKeys(c.nodes)
}

// EdgeNames returns the registered edge names, sorted.
func (c *Catalog) EdgeNames() []string {
	return sortedKeys(c.edges)
}
