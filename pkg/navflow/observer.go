package navflow

import (
	"context"
	"log/slog"

	"github.com/randalmurphal/navflow/pkg/navflow/observability"
)

// EventKind identifies a traversal event.
type EventKind string

const (
	EventNodeVisited     EventKind = "node_visited"
	EventEdgeEvaluated   EventKind = "edge_evaluated"
	EventNoEligibleEdge  EventKind = "no_eligible_edge"
	EventSubgraphEntered EventKind = "subgraph_entered"
	EventSubgraphExited  EventKind = "subgraph_exited"
	EventDispatched      EventKind = "dispatched"
	EventStackRebuilt    EventKind = "stack_rebuilt"
)

// Event is a structured traversal event. Fields that do not apply to a kind
// are left zero.
type Event struct {
	Kind      EventKind
	SessionID string
	NodeID    string
	NodeKind  NodeKind
	EdgeID    string
	Graph     string

	// Transition is set for EventNodeVisited (incoming) and EventDispatched.
	Transition Transition

	// Eligible and Mismatch are set for EventEdgeEvaluated.
	Eligible bool
	Mismatch error

	// Depth is the trail depth after the event. For EventNoEligibleEdge it
	// is the depth of the node that got stuck.
	Depth int

	// Screens and Entries are the host screen count and the internal entry
	// count (screens plus subgraph markers), set for EventStackRebuilt.
	Screens int
	Entries int
}

// Observer receives traversal events. Implementations must not call back
// into the controller that emitted the event.
type Observer interface {
	OnEvent(ctx context.Context, evt Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, evt Event)

// OnEvent calls f.
func (f ObserverFunc) OnEvent(ctx context.Context, evt Event) {
	f(ctx, evt)
}

// NoopObserver discards events.
type NoopObserver struct{}

// OnEvent does nothing.
func (NoopObserver) OnEvent(context.Context, Event) {}

type multiObserver []Observer

func (m multiObserver) OnEvent(ctx context.Context, evt Event) {
	for _, o := range m {
		o.OnEvent(ctx, evt)
	}
}

// Observers fans events out to every non-nil observer in order.
func Observers(obs ...Observer) Observer {
	var out multiObserver
	for _, o := range obs {
		if o != nil {
			out = append(out, o)
		}
	}
	switch len(out) {
	case 0:
		return NoopObserver{}
	case 1:
		return out[0]
	}
	return out
}

// NewLogObserver returns an Observer that writes each event through the
// observability log helpers.
func NewLogObserver(logger *slog.Logger) Observer {
	return ObserverFunc(func(_ context.Context, evt Event) {
		switch evt.Kind {
		case EventNodeVisited:
			observability.LogVisit(logger, evt.NodeID, string(evt.NodeKind), evt.Graph, evt.Depth)
		case EventEdgeEvaluated:
			observability.LogEdgeEvaluated(logger, evt.EdgeID, evt.Eligible, evt.Mismatch)
		case EventNoEligibleEdge:
			observability.LogNoEligibleEdge(logger, evt.NodeID, evt.Graph, evt.Depth)
		case EventSubgraphEntered:
			observability.LogSubgraphEntered(logger, evt.NodeID, evt.Depth)
		case EventSubgraphExited:
			observability.LogSubgraphExited(logger, evt.NodeID, evt.Depth)
		case EventDispatched:
			observability.LogDispatch(logger, evt.EdgeID, evt.Transition.String())
		case EventStackRebuilt:
			observability.LogStackRebuilt(logger, evt.Screens, evt.Entries)
		}
	})
}

// NewTelemetryObserver returns an Observer that records counters for
// dispatched transitions, stuck resolutions, and rebuilds.
func NewTelemetryObserver(metrics observability.MetricsRecorder) Observer {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return ObserverFunc(func(ctx context.Context, evt Event) {
		switch evt.Kind {
		case EventDispatched:
			metrics.RecordTransition(ctx, evt.EdgeID, string(evt.Transition.Kind))
		case EventNoEligibleEdge:
			metrics.RecordStuck(ctx, evt.NodeID)
		case EventStackRebuilt:
			metrics.RecordRebuild(ctx, evt.Screens)
		}
	})
}
