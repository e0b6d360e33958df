package navflow

import (
	"context"
	"sync"
)

// Test payload types used across tests

// User is a typed payload passed between screens.
type User struct {
	Name string
}

// Order is a second payload type used to provoke mismatches.
type Order struct {
	ID    int
	Total int
}

// recordingObserver collects events for assertions.
type recordingObserver struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingObserver) OnEvent(_ context.Context, evt Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

// ofKind returns the recorded events of kind k in order.
func (r *recordingObserver) ofKind(k EventKind) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// linearGraph builds screens ids[0] -> ids[1] -> ... with Void payloads.
func linearGraph(name string, ids ...string) *Graph {
	g := NewGraph(name)
	for _, id := range ids {
		g.MustAddNode(NewScreen[Void, Void](id))
	}
	for i := 1; i < len(ids); i++ {
		g.MustAddEdge(Pass[Void](ids[i-1], ids[i], Push, nil))
	}
	return g
}

// checkoutGraph builds the subgraph fixture used by several tests:
//
//	root:     outer --push--> S --push--> C
//	S.inner:  A --push--> B
func checkoutGraph() (root, inner *Graph) {
	inner = linearGraph("inner", "A", "B")
	root = NewGraph("root")
	root.MustAddNode(NewScreen[Void, Void]("outer"))
	root.MustAddSubgraph(MustSubgraph[Void, Void]("S", inner, "A", "B"))
	root.MustAddNode(NewScreen[Void, Void]("C"))
	root.MustAddEdge(Pass[Void]("outer", "S", Push, nil))
	root.MustAddEdge(Pass[Void]("S", "C", Push, nil))
	return root, inner
}

func always[T any](T) bool { return true }
func never[T any](T) bool  { return false }
