package navflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_FirstEligibleEdgeWins(t *testing.T) {
	g := NewGraph("root")
	g.MustAddNode(NewScreen[Void, any]("home"))
	g.MustAddNode(NewScreen[any, Void]("profileA"))
	g.MustAddNode(NewScreen[any, Void]("profileB"))
	g.MustAddNode(NewScreen[any, Void]("profileC"))
	g.MustAddEdge(Pass("home", "profileA", Push, never[any]))
	g.MustAddEdge(Pass("home", "profileB", Push, always[any]))
	g.MustAddEdge(Pass("home", "profileC", Push, always[any]))

	home, _ := g.Node("home")
	for _, output := range []any{nil, 1, "x", User{Name: "ann"}} {
		res, ok, err := NewResolver(nil).Next(context.Background(), home, output, g, nil)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "profileB", res.To.ID())
		assert.Equal(t, "home->profileB", res.Edge.ID())
		assert.Equal(t, output, res.Input)
		assert.Same(t, g, res.Graph)
		assert.Equal(t, 0, res.Climbed)
	}
}

func TestResolver_MismatchSkipsEdgeAndIsReported(t *testing.T) {
	g := NewGraph("root")
	g.MustAddNode(NewScreen[Void, any]("home"))
	g.MustAddNode(NewScreen[User, Void]("profile"))
	g.MustAddNode(NewScreen[Order, Void]("order"))
	g.MustAddEdge(Pass[any]("home", "profile", Push, func(v any) bool { _, ok := v.(User); return ok }))
	g.MustAddEdge(NewEdge[Order, Order]("home", "order", Push, nil, func(o Order) Order { return o }))

	obs := &recordingObserver{}
	home, _ := g.Node("home")

	res, ok, err := NewResolver(obs).Next(context.Background(), home, Order{ID: 9}, g, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "order", res.To.ID())
	assert.Equal(t, Order{ID: 9}, res.Input)

	evaluated := obs.ofKind(EventEdgeEvaluated)
	require.Len(t, evaluated, 2)
	assert.False(t, evaluated[0].Eligible)
	assert.NoError(t, evaluated[0].Mismatch)
	assert.True(t, evaluated[1].Eligible)

	// A User output matches the first edge; an int matches neither and the
	// typed edge reports the mismatch.
	obs = &recordingObserver{}
	_, ok, err = NewResolver(obs).Next(context.Background(), home, 42, g, nil)
	require.NoError(t, err)
	assert.False(t, ok)
	evaluated = obs.ofKind(EventEdgeEvaluated)
	require.Len(t, evaluated, 2)
	assert.ErrorIs(t, evaluated[1].Mismatch, ErrTypeMismatch)
	assert.Len(t, obs.ofKind(EventNoEligibleEdge), 1)
}

func TestResolver_ClimbsOutOfSubgraph(t *testing.T) {
	root, inner := checkoutGraph()
	obs := &recordingObserver{}
	ctx := context.Background()

	outer, _ := root.Node("outer")
	res, ok, err := NewResolver(obs).Next(ctx, outer, Void{}, root, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "S", res.To.ID())

	// Descending is transparent: traversal lands on the entry.
	n, g, trail, err := Descend(res.To, res.Graph, res.Trail)
	require.NoError(t, err)
	assert.Equal(t, "A", n.ID())
	assert.Same(t, inner, g)
	assert.Equal(t, 1, trail.Depth())
	assert.Equal(t, "S", trail.String())

	// B has no local edge, so resolution climbs one frame and continues
	// from S in the root graph with the same output.
	b, _ := inner.Node("B")
	res, ok, err = NewResolver(obs).Next(ctx, b, Void{}, inner, trail)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "C", res.To.ID())
	assert.Equal(t, "S", res.From.ID())
	assert.Same(t, root, res.Graph)
	assert.Equal(t, 0, res.Trail.Depth())
	assert.Equal(t, 1, res.Climbed)

	exited := obs.ofKind(EventSubgraphExited)
	require.Len(t, exited, 1)
	assert.Equal(t, "S", exited[0].NodeID)
	assert.Equal(t, "root", exited[0].Graph)
}

func TestResolver_ClimbsOneFrameAtATime(t *testing.T) {
	// root: start -> L1 -> done
	// L1:   L2 (entry and exit)
	// L2:   leaf; L2 has an edge out of the subgraph node in L1's graph.
	l2 := NewGraph("l2")
	l2.MustAddNode(NewScreen[Void, Void]("leaf"))

	l1 := NewGraph("l1")
	l1.MustAddSubgraph(MustSubgraph[Void, Void]("L2", l2, "leaf", "leaf"))
	l1.MustAddNode(NewScreen[Void, Void]("mid"))
	l1.MustAddEdge(Pass[Void]("L2", "mid", Push, nil))

	root := NewGraph("root")
	root.MustAddNode(NewScreen[Void, Void]("start"))
	root.MustAddSubgraph(MustSubgraph[Void, Void]("L1", l1, "L2", "mid"))
	root.MustAddNode(NewScreen[Void, Void]("done"))
	root.MustAddEdge(Pass[Void]("start", "L1", Push, nil))
	root.MustAddEdge(Pass[Void]("L1", "done", Push, nil))

	l1Node, _ := root.Node("L1")
	leaf, g, trail, err := Descend(l1Node, root, nil)
	require.NoError(t, err)
	require.Equal(t, "leaf", leaf.ID())
	require.Equal(t, "L1/L2", trail.String())

	// The nearest enclosing frame wins: leaf climbs to L2 in l1, not to L1.
	res, ok, err := NewResolver(nil).Next(context.Background(), leaf, Void{}, g, trail)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "mid", res.To.ID())
	assert.Same(t, l1, res.Graph)
	assert.Equal(t, "L1", res.Trail.String())

	// mid has no edges: it climbs out of L1 and continues to done.
	res, ok, err = NewResolver(nil).Next(context.Background(), res.To, Void{}, res.Graph, res.Trail)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "done", res.To.ID())
	assert.Equal(t, 0, res.Trail.Depth())
}

func TestResolver_NoEdgeAnywhere(t *testing.T) {
	root, _ := checkoutGraph()
	c, _ := root.Node("C")
	obs := &recordingObserver{}

	_, ok, err := NewResolver(obs).Next(context.Background(), c, Void{}, root, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	stuck := obs.ofKind(EventNoEligibleEdge)
	require.Len(t, stuck, 1)
	assert.Equal(t, "C", stuck[0].NodeID)
}

func TestResolver_StuckInsideSubgraphReportsWhereItStarted(t *testing.T) {
	inner := linearGraph("inner", "A", "B")
	root := NewGraph("root")
	root.MustAddSubgraph(MustSubgraph[Void, Void]("S", inner, "A", "B"))

	s, _ := root.Node("S")
	_, _, trail, err := Descend(s, root, nil)
	require.NoError(t, err)

	b, _ := inner.Node("B")
	obs := &recordingObserver{}
	_, ok, err := NewResolver(obs).Next(context.Background(), b, Void{}, inner, trail)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, obs.ofKind(EventSubgraphExited), 1)

	stuck := obs.ofKind(EventNoEligibleEdge)
	require.Len(t, stuck, 1)
	assert.Equal(t, "B", stuck[0].NodeID)
	assert.Equal(t, "inner", stuck[0].Graph)
	assert.Equal(t, 1, stuck[0].Depth)
}

func TestResolver_DropEdgeLeavesSubgraphFromAnyNode(t *testing.T) {
	// Exiting from a node that is not the designated exit: only a drop edge
	// accepts the foreign output type.
	inner := NewGraph("wizard")
	inner.MustAddNode(NewScreen[Void, Order]("step1"))
	inner.MustAddNode(NewScreen[Order, User]("step2"))
	inner.MustAddEdge(Pass[Order]("step1", "step2", Push, func(o Order) bool { return o.Total > 0 }))

	root := NewGraph("root")
	root.MustAddSubgraph(MustSubgraph[Void, User]("wizard", inner, "step1", "step2"))
	root.MustAddNode(NewScreen[User, Void]("summary"))
	root.MustAddNode(NewScreen[Void, Void]("cancelled"))
	root.MustAddEdge(Pass[User]("wizard", "summary", Push, nil))
	root.MustAddEdge(Drop("wizard", "cancelled", Pop))

	wizard, _ := root.Node("wizard")
	step1, g, trail, err := Descend(wizard, root, nil)
	require.NoError(t, err)

	obs := &recordingObserver{}
	res, ok, err := NewResolver(obs).Next(context.Background(), step1, Order{Total: 0}, g, trail)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "cancelled", res.To.ID())
	assert.Equal(t, Void{}, res.Input)

	// The typed edge out of the subgraph reported the mismatch instead of
	// crashing.
	var mismatches int
	for _, e := range obs.ofKind(EventEdgeEvaluated) {
		if e.Mismatch != nil {
			mismatches++
			assert.Equal(t, "wizard->summary", e.EdgeID)
		}
	}
	assert.Equal(t, 1, mismatches)
}

func TestResolveTrail(t *testing.T) {
	root, inner := checkoutGraph()

	trail, err := ResolveTrail(root, []string{"S"})
	require.NoError(t, err)
	require.Equal(t, 1, trail.Depth())
	assert.Same(t, inner, trail.Graph(root))
	assert.Equal(t, []string{"S"}, trail.IDs())

	_, g, descended, err := Descend(MustSubgraph[Void, Void]("S", inner, "A", "B"), root, nil)
	require.NoError(t, err)
	assert.Same(t, inner, g)
	assert.Equal(t, 1, trail.CommonPrefix(descended))

	empty, err := ResolveTrail(root, nil)
	require.NoError(t, err)
	assert.Same(t, root, empty.Graph(root))
	assert.Equal(t, "/", empty.String())

	_, err = ResolveTrail(root, []string{"ghost"})
	assert.ErrorIs(t, err, ErrNodeNotFound)
	_, err = ResolveTrail(root, []string{"outer"})
	assert.ErrorIs(t, err, ErrInvalidSubgraph)
}

func TestTrail_PushDoesNotAlias(t *testing.T) {
	root, _ := checkoutGraph()
	base, err := ResolveTrail(root, []string{"S"})
	require.NoError(t, err)

	f, _ := base.Top()
	a := base.Push(f)
	b := base.Push(f)
	a[1].Subgraph.ID = "changed"

	assert.Equal(t, "S", b[1].Subgraph.ID)
	assert.Equal(t, 1, base.Depth())

	_, popped, ok := a.Pop()
	require.True(t, ok)
	assert.True(t, popped.Equal(base))
	_, _, ok = Trail(nil).Pop()
	assert.False(t, ok)
}
