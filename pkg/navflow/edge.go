package navflow

import (
	"reflect"
)

// Edge is a directed, typed connection between two nodes. It carries a
// transition, an optional eligibility predicate over the source's output,
// and a transform from that output to the destination's input.
//
// Edges are created with NewEdge, Pass, or Drop, which capture the static
// types and erase them so edges of different types share one adjacency list.
// An Edge is immutable once added to a Graph.
type Edge struct {
	id         string
	from       string
	to         string
	transition Transition

	source       reflect.Type
	target       reflect.Type
	hasPredicate bool

	// when and transform report false as their second result when the
	// value is not of the source type.
	when      func(v any) (eligible bool, typed bool)
	transform func(v any) (out any, typed bool)
}

// NewEdge creates an edge from a node producing Out to a node requiring In.
// when may be nil, meaning the edge is always eligible for Out values.
// transform may be nil, in which case the destination receives In's zero
// value.
func NewEdge[Out, In any](from, to string, t Transition, when func(Out) bool, transform func(Out) In) *Edge {
	return &Edge{
		id:           defaultEdgeID(from, to),
		from:         from,
		to:           to,
		transition:   t,
		source:       typeOf[Out](),
		target:       typeOf[In](),
		hasPredicate: when != nil,
		when: func(v any) (bool, bool) {
			out, ok := cast[Out](v)
			if !ok {
				return false, false
			}
			if when == nil {
				return true, true
			}
			return when(out), true
		},
		transform: func(v any) (any, bool) {
			out, ok := cast[Out](v)
			if !ok {
				return nil, false
			}
			if transform == nil {
				var zero In
				return zero, true
			}
			return transform(out), true
		},
	}
}

// Pass creates an edge whose destination receives the source output unchanged.
func Pass[T any](from, to string, t Transition, when func(T) bool) *Edge {
	return NewEdge(from, to, t, when, func(v T) T { return v })
}

// Drop creates an unconditional edge to a destination that takes Void.
// Drop edges accept any output, which makes them the way to leave a
// subgraph from a node other than its designated exit.
func Drop(from, to string, t Transition) *Edge {
	return NewEdge[any, Void](from, to, t, nil, nil)
}

// Named overrides the default "{from}->{to}" ID and returns the edge.
func (e *Edge) Named(id string) *Edge {
	e.id = id
	return e
}

// ID returns the edge identifier.
func (e *Edge) ID() string { return e.id }

// From returns the source node ID.
func (e *Edge) From() string { return e.from }

// To returns the destination node ID.
func (e *Edge) To() string { return e.to }

// Transition returns the edge's transition.
func (e *Edge) Transition() Transition { return e.transition }

// SourceType returns the output type the edge expects from its source.
func (e *Edge) SourceType() reflect.Type { return e.source }

// TargetType returns the input type the edge produces for its destination.
func (e *Edge) TargetType() reflect.Type { return e.target }

// HasPredicate reports whether the edge has an eligibility predicate.
func (e *Edge) HasPredicate() bool { return e.hasPredicate }

// IsDrop reports whether the edge has no predicate and targets Void.
// Drop edges accept outputs of any type.
func (e *Edge) IsDrop() bool {
	return !e.hasPredicate && e.target == typeOf[Void]()
}

// ApplyPredicate reports whether e is eligible for output.
//
// When output is not of the edge's source type the edge is not eligible and
// a *TypeMismatchError describes why; the caller decides whether to report
// it. Drop edges are the exception: they are eligible for any output.
// ApplyPredicate never panics on a mismatch.
func ApplyPredicate(e *Edge, output any) (bool, error) {
	eligible, typed := e.when(output)
	if typed {
		return eligible, nil
	}
	if e.IsDrop() {
		return true, nil
	}
	return false, e.mismatch(output)
}

// ApplyTransform converts output into the destination's input.
//
// It follows the same type policy as ApplyPredicate: a drop edge turns any
// output into Void{}; any other mismatch is a *ConfigurationError, because
// the resolver never transforms through an edge whose predicate rejected the
// value.
func ApplyTransform(e *Edge, output any) (any, error) {
	out, typed := e.transform(output)
	if typed {
		return out, nil
	}
	if e.IsDrop() {
		return Void{}, nil
	}
	return nil, &ConfigurationError{Op: "transform", EdgeID: e.id, Err: e.mismatch(output)}
}

func (e *Edge) mismatch(v any) *TypeMismatchError {
	return &TypeMismatchError{EdgeID: e.id, Want: e.source, Got: reflect.TypeOf(v)}
}

func defaultEdgeID(from, to string) string {
	return from + "->" + to
}
