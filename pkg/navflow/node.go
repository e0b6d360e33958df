package navflow

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime/debug"
)

// Void is the unit type. Nodes that need no input or produce no meaningful
// output declare Void.
type Void struct{}

// Node is a destination or processing step in a navigation graph.
// It declares the type of data it requires and the type it produces on
// completion. IDs must be unique within a Graph.
//
// Concrete nodes are built from Screen, Headless, or Subgraph, usually by
// embedding one of them in an application type so presenters can match on
// the concrete type:
//
//	type ProfileScreen struct {
//	    navflow.Screen[UserID, navflow.Void]
//	}
type Node interface {
	ID() string
	InputType() reflect.Type
	OutputType() reflect.Type
}

// NodeKind classifies how the controller treats a node.
type NodeKind string

const (
	// KindScreen is a UI-bearing node materialized by a Presenter.
	KindScreen NodeKind = "screen"
	// KindHeadless is a node that runs a function inline and never appears on the host stack.
	KindHeadless NodeKind = "headless"
	// KindSubgraph is a node wrapping a nested graph.
	KindSubgraph NodeKind = "subgraph"
)

// headlessNode is implemented by nodes that run inline during traversal.
type headlessNode interface {
	Node
	run(ctx context.Context, input any) (any, error)
}

// subgraphNode is implemented by nodes that wrap a nested graph.
type subgraphNode interface {
	Node
	view() SubgraphView
}

// Screen is a presenting node. It carries only identity and its type
// contract; what it looks like is up to the Presenter that handles it.
type Screen[In, Out any] struct {
	id string
}

// NewScreen creates a presenting node with the given ID.
func NewScreen[In, Out any](id string) Screen[In, Out] {
	return Screen[In, Out]{id: id}
}

// ID returns the node identifier.
func (s Screen[In, Out]) ID() string { return s.id }

// InputType returns the type of In.
func (s Screen[In, Out]) InputType() reflect.Type { return typeOf[In]() }

// OutputType returns the type of Out.
func (s Screen[In, Out]) OutputType() reflect.Type { return typeOf[Out]() }

// Headless is a node without a presentable form. Its function runs
// synchronously when traversal reaches it and its result feeds edge
// resolution immediately.
type Headless[In, Out any] struct {
	id string
	fn func(ctx context.Context, in In) (Out, error)
}

// NewHeadless creates a headless node.
//
// Panics if fn is nil.
func NewHeadless[In, Out any](id string, fn func(ctx context.Context, in In) (Out, error)) *Headless[In, Out] {
	if fn == nil {
		panic("navflow: headless function cannot be nil")
	}
	return &Headless[In, Out]{id: id, fn: fn}
}

// ID returns the node identifier.
func (h *Headless[In, Out]) ID() string { return h.id }

// InputType returns the type of In.
func (h *Headless[In, Out]) InputType() reflect.Type { return typeOf[In]() }

// OutputType returns the type of Out.
func (h *Headless[In, Out]) OutputType() reflect.Type { return typeOf[Out]() }

// Process runs the node's function with a typed input.
func (h *Headless[In, Out]) Process(ctx context.Context, in In) (Out, error) {
	return h.fn(ctx, in)
}

func (h *Headless[In, Out]) run(ctx context.Context, input any) (any, error) {
	in, ok := cast[In](input)
	if !ok {
		return nil, &ConfigurationError{
			Op:     "process",
			NodeID: h.id,
			Err:    fmt.Errorf("%w: want %s, got %s", ErrTypeMismatch, typeName(typeOf[In]()), typeName(reflect.TypeOf(input))),
		}
	}
	return h.fn(ctx, in)
}

// process runs a headless node. Panics become *PanicError and errors from
// the node's function are wrapped in *NodeError; configuration errors pass
// through unchanged.
func process(ctx context.Context, h headlessNode, input any) (output any, err error) {
	defer func() {
		if r := recover(); r != nil {
			output = nil
			err = &PanicError{NodeID: h.ID(), Value: r, Stack: string(debug.Stack())}
		}
	}()

	output, err = h.run(ctx, input)
	if err != nil {
		var cfgErr *ConfigurationError
		if errors.As(err, &cfgErr) {
			return nil, err
		}
		return nil, &NodeError{NodeID: h.ID(), Op: "process", Err: err}
	}
	return output, nil
}

// ErasedNode is the homogeneous view of a node used by graphs, the resolver,
// and the controller. Callers never need to type-assert to discover nesting:
// Subgraph is non-nil exactly when Kind is KindSubgraph.
type ErasedNode struct {
	ID       string
	Kind     NodeKind
	Node     Node
	Subgraph *SubgraphView
}

// Wrap builds the erased view of a node.
func Wrap(n Node) ErasedNode {
	e := ErasedNode{ID: n.ID(), Kind: KindOf(n), Node: n}
	if sg, ok := n.(subgraphNode); ok {
		v := sg.view()
		e.Subgraph = &v
	}
	return e
}

// KindOf reports how the controller treats n.
func KindOf(n Node) NodeKind {
	switch n.(type) {
	case subgraphNode:
		return KindSubgraph
	case headlessNode:
		return KindHeadless
	default:
		return KindScreen
	}
}

// typeOf returns the reflect.Type of T, including interface types.
func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// cast views v as a T. A nil v is accepted when T's zero value is nil.
func cast[T any](v any) (T, bool) {
	if t, ok := v.(T); ok {
		return t, true
	}
	var zero T
	if v == nil && nillable(typeOf[T]()) {
		return zero, true
	}
	return zero, false
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}
