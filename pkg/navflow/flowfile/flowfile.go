// Package flowfile loads navigation graphs declared in YAML.
//
// A flow file declares one graph tree:
//
//	graph:
//	  name: root
//	  nodes:
//	    - id: home
//	      ref: home            # node registered in the catalog
//	    - id: checkout
//	      subgraph:
//	        entry: cart
//	        exit: done
//	        graph:
//	          name: checkout
//	          nodes:
//	            - {id: cart, placeholder: true}
//	            - {id: done, placeholder: true}
//	          edges:
//	            - {from: cart, to: done, kind: push}
//	  edges:
//	    - {from: home, to: checkout, kind: push, edge: toCheckout}
//	    - {from: checkout, to: home, kind: pop_to, pop_to: 0}
//	    - {from: checkout, to: home, kind: dismiss, when: "output.cancelled"}
//
// Nodes name a catalog entry with ref (defaulting to their id) or are
// declared placeholder: topology-only screens accepting and producing any
// value. Edges take their predicate and transform from an edge ref, or a
// predicate alone from a when condition (see package cond); edges with
// neither forward the output unchanged.
package flowfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/navflow/pkg/navflow"
	"github.com/randalmurphal/navflow/pkg/navflow/cond"
	"github.com/randalmurphal/navflow/pkg/navflow/registry"
)

var (
	// ErrUnknownRef indicates a node or edge ref missing from the catalog.
	ErrUnknownRef = errors.New("unknown catalog ref")

	// ErrInvalidFile indicates a structurally invalid flow file.
	ErrInvalidFile = errors.New("invalid flow file")
)

// File is the top-level document.
type File struct {
	Graph GraphSpec `yaml:"graph"`
}

// GraphSpec declares one graph.
type GraphSpec struct {
	Name  string     `yaml:"name"`
	Nodes []NodeSpec `yaml:"nodes"`
	Edges []EdgeSpec `yaml:"edges"`
}

// NodeSpec declares a node. Exactly one of Ref, Placeholder, and Subgraph
// applies; a bare id is a ref to the same name.
type NodeSpec struct {
	ID          string        `yaml:"id"`
	Ref         string        `yaml:"ref,omitempty"`
	Placeholder bool          `yaml:"placeholder,omitempty"`
	Subgraph    *SubgraphSpec `yaml:"subgraph,omitempty"`
}

// SubgraphSpec declares a subgraph node's nested graph.
type SubgraphSpec struct {
	Entry string    `yaml:"entry"`
	Exit  string    `yaml:"exit"`
	Graph GraphSpec `yaml:"graph"`
}

// EdgeSpec declares an edge.
type EdgeSpec struct {
	ID    string `yaml:"id,omitempty"`
	From  string `yaml:"from"`
	To    string `yaml:"to"`
	Kind  string `yaml:"kind"`
	PopTo int    `yaml:"pop_to,omitempty"`
	Edge  string `yaml:"edge,omitempty"`
	When  string `yaml:"when,omitempty"`
}

// Option configures loading.
type Option func(*loader)

// WithCatalog resolves refs through c.
func WithCatalog(c *registry.Catalog) Option {
	return func(l *loader) {
		l.catalog = c
	}
}

// Placeholders turns unknown node refs into placeholder screens and unknown
// edge refs into pass-through edges instead of failing. Use it to inspect
// topology without the application's node types.
func Placeholders() Option {
	return func(l *loader) {
		l.placeholders = true
	}
}

type loader struct {
	catalog      *registry.Catalog
	placeholders bool
	errs         []error
}

// LoadFile reads and loads a flow file.
func LoadFile(path string, opts ...Option) (*navflow.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read flow file: %w", err)
	}
	return Parse(data, opts...)
}

// Load reads a flow file from r.
func Load(r io.Reader, opts ...Option) (*navflow.Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read flow file: %w", err)
	}
	return Parse(data, opts...)
}

// Parse builds the graph tree declared in data. Every problem found is
// returned, joined; the graph is returned only when there are none.
func Parse(data []byte, opts ...Option) (*navflow.Graph, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	l := &loader{catalog: registry.NewCatalog()}
	for _, opt := range opts {
		opt(l)
	}

	g := l.graph(f.Graph, "root")
	if len(l.errs) > 0 {
		return nil, errors.Join(l.errs...)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (l *loader) fail(format string, args ...any) {
	l.errs = append(l.errs, fmt.Errorf(format, args...))
}

func (l *loader) graph(spec GraphSpec, fallbackName string) *navflow.Graph {
	name := spec.Name
	if name == "" {
		name = fallbackName
	}
	g := navflow.NewGraph(name)

	for _, ns := range spec.Nodes {
		n := l.node(ns, name)
		if n == nil {
			continue
		}
		if err := g.AddNode(n); err != nil {
			l.errs = append(l.errs, err)
		}
	}

	for _, es := range spec.Edges {
		e := l.edge(es, name)
		if e == nil {
			continue
		}
		if err := g.AddEdge(e); err != nil {
			l.errs = append(l.errs, err)
		}
	}
	return g
}

func (l *loader) node(ns NodeSpec, graphName string) navflow.Node {
	if ns.ID == "" {
		l.fail("%w: graph %s: node without id", ErrInvalidFile, graphName)
		return nil
	}

	switch {
	case ns.Subgraph != nil:
		inner := l.graph(ns.Subgraph.Graph, ns.ID)
		n, err := navflow.SubgraphOf(ns.ID, inner, ns.Subgraph.Entry, ns.Subgraph.Exit)
		if err != nil {
			l.errs = append(l.errs, err)
			return nil
		}
		return n
	case ns.Placeholder:
		return Placeholder(ns.ID)
	}

	ref := ns.Ref
	if ref == "" {
		ref = ns.ID
	}
	n, ok := l.catalog.Node(ref)
	if !ok {
		if l.placeholders {
			return Placeholder(ns.ID)
		}
		l.fail("%w: graph %s: node %s: ref %q", ErrUnknownRef, graphName, ns.ID, ref)
		return nil
	}
	if n.ID() != ns.ID {
		l.fail("%w: graph %s: node %s: ref %q has id %q", ErrInvalidFile, graphName, ns.ID, ref, n.ID())
		return nil
	}
	return n
}

func (l *loader) edge(es EdgeSpec, graphName string) *navflow.Edge {
	if es.From == "" || es.To == "" {
		l.fail("%w: graph %s: edge needs from and to", ErrInvalidFile, graphName)
		return nil
	}

	kind := es.Kind
	if kind == "" {
		kind = string(navflow.TransitionPush)
	}
	t, err := navflow.ParseTransition(kind)
	if err != nil {
		l.fail("%w: graph %s: edge %s->%s: %v", ErrInvalidFile, graphName, es.From, es.To, err)
		return nil
	}
	if t.Kind == navflow.TransitionPopTo && es.PopTo > 0 {
		t = navflow.PopTo(es.PopTo)
	}

	var e *navflow.Edge
	switch {
	case es.Edge != "" && es.When != "":
		l.fail("%w: graph %s: edge %s->%s: edge and when are mutually exclusive", ErrInvalidFile, graphName, es.From, es.To)
		return nil
	case es.When != "":
		c, err := cond.Compile(es.When)
		if err != nil {
			l.fail("%w: graph %s: edge %s->%s: %w", ErrInvalidFile, graphName, es.From, es.To, err)
			return nil
		}
		e = navflow.Pass[any](es.From, es.To, t, c.Match)
	case es.Edge != "":
		factory, ok := l.catalog.Edge(es.Edge)
		switch {
		case ok:
			e = factory(es.From, es.To, t)
		case l.placeholders:
			e = navflow.Pass[any](es.From, es.To, t, nil)
		default:
			l.fail("%w: graph %s: edge %s->%s: ref %q", ErrUnknownRef, graphName, es.From, es.To, es.Edge)
			return nil
		}
	default:
		e = navflow.Pass[any](es.From, es.To, t, nil)
	}

	if es.ID != "" {
		e.Named(es.ID)
	}
	return e
}

// Placeholder returns a topology-only screen that accepts and produces any
// value.
func Placeholder(id string) navflow.Node {
	return navflow.NewScreen[any, any](id)
}
