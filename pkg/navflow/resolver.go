package navflow

import (
	"context"
	"fmt"
)

// Resolution is the outcome of a successful edge resolution.
type Resolution struct {
	// Edge is the selected edge.
	Edge *Edge
	// From is the node whose edge matched. After climbing it is the
	// enclosing subgraph node rather than the node that completed.
	From Node
	// To is the edge's destination node.
	To Node
	// Graph is the graph Edge and To belong to.
	Graph *Graph
	// Trail is the trail in effect at To, shorter than the input trail by
	// the number of frames climbed.
	Trail Trail
	// Input is the edge transform applied to the output.
	Input any
	// Climbed is the number of subgraph frames left during resolution.
	Climbed int
}

// Resolver selects the next edge for a completed node.
//
// Selection rule: edges are tried in registration order and the first
// eligible edge wins. When the node's graph has no eligible edge, the
// resolver leaves the innermost subgraph frame and retries from that
// subgraph node in its parent graph with the original output, one frame at a
// time, until an edge matches or the trail is exhausted.
type Resolver struct {
	observer  Observer
	sessionID string
}

// NewResolver creates a resolver that reports evaluations to obs.
// A nil observer discards events.
func NewResolver(obs Observer) *Resolver {
	if obs == nil {
		obs = NoopObserver{}
	}
	return &Resolver{observer: obs}
}

func (r *Resolver) withSession(id string) *Resolver {
	return &Resolver{observer: r.observer, sessionID: id}
}

// Next resolves the transition following node's completion with output.
// g is the graph node lives in and trail the frames entered to reach it.
//
// ok is false when no edge is eligible anywhere along the trail. That is a
// valid terminal state (the current screen stays), not an error; it is
// reported as EventNoEligibleEdge. The only error is a configuration error
// raised by an edge transform or a dangling edge.
func (r *Resolver) Next(ctx context.Context, node Node, output any, g *Graph, trail Trail) (Resolution, bool, error) {
	current := node
	graph := g
	depth := trail.Depth()
	climbed := 0

	for {
		for _, e := range graph.edges[current.ID()] {
			eligible, mismatch := ApplyPredicate(e, output)
			r.emit(ctx, Event{
				Kind:     EventEdgeEvaluated,
				NodeID:   current.ID(),
				EdgeID:   e.ID(),
				Graph:    graph.Name(),
				Eligible: eligible,
				Mismatch: mismatch,
				Depth:    trail.Depth(),
			})
			if !eligible {
				continue
			}

			input, err := ApplyTransform(e, output)
			if err != nil {
				return Resolution{}, false, err
			}
			to, found := graph.Node(e.To())
			if !found {
				return Resolution{}, false, &ConfigurationError{Op: "resolve", EdgeID: e.ID(), Err: fmt.Errorf("%w: destination %q", ErrUnknownEndpoint, e.To())}
			}
			return Resolution{
				Edge:    e,
				From:    current,
				To:      to,
				Graph:   graph,
				Trail:   trail,
				Input:   input,
				Climbed: climbed,
			}, true, nil
		}

		frame, rest, popped := trail.Pop()
		if !popped {
			r.emit(ctx, Event{Kind: EventNoEligibleEdge, NodeID: node.ID(), Graph: g.Name(), Depth: depth})
			return Resolution{}, false, nil
		}

		sub, found := frame.Parent.Node(frame.Subgraph.ID)
		if !found {
			return Resolution{}, false, &ConfigurationError{Op: "resolve", NodeID: frame.Subgraph.ID, Err: ErrNodeNotFound}
		}
		r.emit(ctx, Event{Kind: EventSubgraphExited, NodeID: frame.Subgraph.ID, NodeKind: KindSubgraph, Graph: frame.Parent.Name(), Depth: rest.Depth()})

		current = sub
		graph = frame.Parent
		trail = rest
		climbed++
	}
}

func (r *Resolver) emit(ctx context.Context, evt Event) {
	evt.SessionID = r.sessionID
	r.observer.OnEvent(ctx, evt)
}
