package navflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/navflow/pkg/navflow"
	"github.com/randalmurphal/navflow/pkg/navflow/hoststack"
)

// presented records one call to Present.
type presented struct {
	NodeID string
	Input  any
	Done   navflow.Completion
}

// update records one call to Update.
type update struct {
	Handle navflow.Handle
	Input  any
}

// testPresenter presents every node it is allowed to and remembers the
// completion callbacks so tests can finish screens.
type testPresenter struct {
	allow     func(navflow.Node) bool
	presented []presented
	updates   []update
	failWith  error
}

func newTestPresenter() *testPresenter {
	return &testPresenter{}
}

func (p *testPresenter) CanHandle(n navflow.Node) bool {
	return p.allow == nil || p.allow(n)
}

func (p *testPresenter) Present(_ context.Context, n navflow.Node, input any, done navflow.Completion) (navflow.Handle, error) {
	if p.failWith != nil {
		return nil, p.failWith
	}
	p.presented = append(p.presented, presented{NodeID: n.ID(), Input: input, Done: navflow.Once(done)})
	return "view:" + n.ID(), nil
}

func (p *testPresenter) Update(_ context.Context, h navflow.Handle, input any) error {
	p.updates = append(p.updates, update{Handle: h, Input: input})
	return nil
}

// finish calls the completion of the most recent presentation of nodeID.
func (p *testPresenter) finish(t *testing.T, nodeID string, output any) {
	t.Helper()
	for i := len(p.presented) - 1; i >= 0; i-- {
		if p.presented[i].NodeID == nodeID {
			p.presented[i].Done(output)
			return
		}
	}
	t.Fatalf("node %s was never presented", nodeID)
}

// presentedIDs returns the IDs of presented nodes in order.
func (p *testPresenter) presentedIDs() []string {
	ids := make([]string, len(p.presented))
	for i, pr := range p.presented {
		ids[i] = pr.NodeID
	}
	return ids
}

// rejectingHost refuses to show the node named reject.
type rejectingHost struct {
	*hoststack.Memory
	reject string
}

var errHostRejected = errors.New("host rejected command")

func (h *rejectingHost) Apply(cmd navflow.Command, done func()) error {
	if cmd.Screen.Meta != nil && cmd.Screen.Meta.Node.ID() == h.reject {
		return errHostRejected
	}
	return h.Memory.Apply(cmd, done)
}

// errorSink collects errors reported through WithErrorHandler.
type errorSink struct {
	errs []error
}

func (s *errorSink) handle(err error) {
	s.errs = append(s.errs, err)
}

// hostIDs returns the node IDs of the host screens, "?" for screens
// without metadata.
func hostIDs(host navflow.HostStack) []string {
	var ids []string
	for _, s := range host.Screens() {
		if s.Meta == nil {
			ids = append(ids, "?")
			continue
		}
		ids = append(ids, s.Meta.Node.ID())
	}
	return ids
}

// stackIDs renders the controller's model, marking subgraph entries with
// a trailing slash.
func stackIDs(ctrl *navflow.Controller) []string {
	var ids []string
	for _, e := range ctrl.Stack() {
		if e.Kind == navflow.EntrySubgraph {
			ids = append(ids, e.NodeID+"/")
			continue
		}
		ids = append(ids, e.NodeID)
	}
	return ids
}

// ops returns the ops of every command the host applied.
func ops(host *hoststack.Memory) []navflow.Op {
	var out []navflow.Op
	for _, cmd := range host.Commands() {
		out = append(out, cmd.Op)
	}
	return out
}

// completeTop completes the top host screen directly through the controller.
func completeTop(t *testing.T, ctrl *navflow.Controller, host navflow.HostStack, output any) error {
	t.Helper()
	screens := host.Screens()
	require.NotEmpty(t, screens)
	return ctrl.Complete(context.Background(), screens[len(screens)-1].Key, output)
}

// checkoutGraph builds:
//
//	root:     outer --push--> S --push--> C
//	S.inner:  A --push--> B
func checkoutGraph() *navflow.Graph {
	inner := navflow.NewBuilder("inner").
		Nodes(navflow.NewScreen[navflow.Void, navflow.Void]("A"), navflow.NewScreen[navflow.Void, navflow.Void]("B")).
		Edge(navflow.Pass[navflow.Void]("A", "B", navflow.Push, nil)).
		MustBuild()

	return navflow.NewBuilder("root").
		Node(navflow.NewScreen[navflow.Void, navflow.Void]("outer")).
		Subgraph(navflow.MustSubgraph[navflow.Void, navflow.Void]("S", inner, "A", "B")).
		Node(navflow.NewScreen[navflow.Void, navflow.Void]("C")).
		Edges(
			navflow.Pass[navflow.Void]("outer", "S", navflow.Push, nil),
			navflow.Pass[navflow.Void]("S", "C", navflow.Push, nil),
		).
		MustBuild()
}

func is(want string) func(string) bool {
	return func(s string) bool { return s == want }
}

// appGraph builds a string-driven app flow:
//
//	home --push--> list --push--> detail
//	list --modal--> sheet (output "sheet")
//	detail --pop--> list (output "back")
//	detail --pop_to(0)--> home (output "home")
//	detail --none--> detail (output "refresh")
//	sheet --dismiss--> list (output "close")
//	sheet --push--> detail (output "open")
func appGraph() *navflow.Graph {
	screen := func(id string) navflow.Node { return navflow.NewScreen[any, string](id) }
	edge := func(from, to string, t navflow.Transition, when string) *navflow.Edge {
		var pred func(string) bool
		if when != "" {
			pred = is(when)
		}
		return navflow.Pass(from, to, t, pred)
	}

	return navflow.NewBuilder("app").
		Nodes(screen("home"), screen("list"), screen("detail"), screen("sheet")).
		Edges(
			edge("home", "list", navflow.Push, ""),
			edge("list", "sheet", navflow.Modal, "sheet"),
			edge("list", "detail", navflow.Push, ""),
			edge("detail", "list", navflow.Pop, "back"),
			edge("detail", "home", navflow.PopTo(0), "home"),
			edge("detail", "detail", navflow.None, "refresh"),
			edge("sheet", "list", navflow.Dismiss, "close"),
			edge("sheet", "detail", navflow.Push, "open"),
		).
		MustBuild()
}

// eventLog records traversal events.
type eventLog struct {
	events []navflow.Event
}

func (l *eventLog) OnEvent(_ context.Context, evt navflow.Event) {
	l.events = append(l.events, evt)
}

func (l *eventLog) ofKind(k navflow.EventKind) []navflow.Event {
	var out []navflow.Event
	for _, e := range l.events {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// edges returns the edge IDs of events of kind k.
func (l *eventLog) edges(k navflow.EventKind) []string {
	var out []string
	for _, e := range l.ofKind(k) {
		out = append(out, e.EdgeID)
	}
	return out
}
