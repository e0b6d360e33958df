package navflow

import (
	"fmt"
	"reflect"
)

// SubgraphView is the normalized description of a subgraph node.
type SubgraphView struct {
	ID      string
	Graph   *Graph
	EntryID string
	ExitID  string
}

// Subgraph is a node that wraps an entire nested graph with a designated
// entry and exit node. Its input type is the entry's input type and its
// output type is the exit's output type.
//
// A Subgraph participates in its parent graph like any other node: edges
// may point into it and out of it. Entering it is never visible on the host
// stack; traversal continues at the entry node.
type Subgraph[In, Out any] struct {
	id    string
	inner *Graph
	entry string
	exit  string
}

// NewSubgraph creates a subgraph node over inner. The entry and exit must be
// registered in inner, the entry must accept In, and the exit must produce
// Out.
func NewSubgraph[In, Out any](id string, inner *Graph, entry, exit string) (*Subgraph[In, Out], error) {
	if id == "" || inner == nil {
		return nil, &ConfigurationError{Op: "new_subgraph", NodeID: id, Err: ErrInvalidSubgraph}
	}

	entryNode, ok := inner.Node(entry)
	if !ok {
		return nil, &ConfigurationError{Op: "new_subgraph", NodeID: id, Err: fmt.Errorf("%w: entry %q not in graph %s", ErrInvalidSubgraph, entry, inner.Name())}
	}
	exitNode, ok := inner.Node(exit)
	if !ok {
		return nil, &ConfigurationError{Op: "new_subgraph", NodeID: id, Err: fmt.Errorf("%w: exit %q not in graph %s", ErrInvalidSubgraph, exit, inner.Name())}
	}
	if in := typeOf[In](); entryNode.InputType() != in {
		return nil, &ConfigurationError{Op: "new_subgraph", NodeID: id, Err: fmt.Errorf("%w: entry %s takes %s, subgraph declares %s", ErrInvalidSubgraph, entry, typeName(entryNode.InputType()), typeName(in))}
	}
	if out := typeOf[Out](); exitNode.OutputType() != out {
		return nil, &ConfigurationError{Op: "new_subgraph", NodeID: id, Err: fmt.Errorf("%w: exit %s produces %s, subgraph declares %s", ErrInvalidSubgraph, exit, typeName(exitNode.OutputType()), typeName(out))}
	}

	return &Subgraph[In, Out]{id: id, inner: inner, entry: entry, exit: exit}, nil
}

// MustSubgraph is NewSubgraph that panics on error.
func MustSubgraph[In, Out any](id string, inner *Graph, entry, exit string) *Subgraph[In, Out] {
	s, err := NewSubgraph[In, Out](id, inner, entry, exit)
	if err != nil {
		panic(err)
	}
	return s
}

// ID returns the node identifier.
func (s *Subgraph[In, Out]) ID() string { return s.id }

// InputType returns the type of In, which is the entry node's input type.
func (s *Subgraph[In, Out]) InputType() reflect.Type { return typeOf[In]() }

// OutputType returns the type of Out, which is the exit node's output type.
func (s *Subgraph[In, Out]) OutputType() reflect.Type { return typeOf[Out]() }

// Graph returns the nested graph.
func (s *Subgraph[In, Out]) Graph() *Graph { return s.inner }

// EntryID returns the entry node ID.
func (s *Subgraph[In, Out]) EntryID() string { return s.entry }

// ExitID returns the exit node ID.
func (s *Subgraph[In, Out]) ExitID() string { return s.exit }

func (s *Subgraph[In, Out]) view() SubgraphView {
	return SubgraphView{ID: s.id, Graph: s.inner, EntryID: s.entry, ExitID: s.exit}
}

// dynamicSubgraph is a subgraph whose types are taken from its entry and
// exit nodes rather than declared.
type dynamicSubgraph struct {
	id    string
	inner *Graph
	entry Node
	exit  Node
}

// SubgraphOf creates a subgraph node whose input type is the entry's input
// type and whose output type is the exit's output type. It is meant for
// graphs assembled at runtime, such as from flow files, where the types are
// not known statically.
func SubgraphOf(id string, inner *Graph, entry, exit string) (Node, error) {
	if id == "" || inner == nil {
		return nil, &ConfigurationError{Op: "new_subgraph", NodeID: id, Err: ErrInvalidSubgraph}
	}
	entryNode, ok := inner.Node(entry)
	if !ok {
		return nil, &ConfigurationError{Op: "new_subgraph", NodeID: id, Err: fmt.Errorf("%w: entry %q not in graph %s", ErrInvalidSubgraph, entry, inner.Name())}
	}
	exitNode, ok := inner.Node(exit)
	if !ok {
		return nil, &ConfigurationError{Op: "new_subgraph", NodeID: id, Err: fmt.Errorf("%w: exit %q not in graph %s", ErrInvalidSubgraph, exit, inner.Name())}
	}
	return &dynamicSubgraph{id: id, inner: inner, entry: entryNode, exit: exitNode}, nil
}

func (s *dynamicSubgraph) ID() string               { return s.id }
func (s *dynamicSubgraph) InputType() reflect.Type  { return s.entry.InputType() }
func (s *dynamicSubgraph) OutputType() reflect.Type { return s.exit.OutputType() }

func (s *dynamicSubgraph) view() SubgraphView {
	return SubgraphView{ID: s.id, Graph: s.inner, EntryID: s.entry.ID(), ExitID: s.exit.ID()}
}
