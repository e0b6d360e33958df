package navflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cycleGraph is home -> a, a <-> b.
func cycleGraph() *Graph {
	g := linearGraph("root", "home", "a", "b")
	g.MustAddEdge(Pass[Void]("b", "a", Pop, nil))
	return g
}

func voidOutputs(ids ...string) StaticOutputs {
	out := make(StaticOutputs, len(ids))
	for _, id := range ids {
		out[id] = Void{}
	}
	return out
}

func TestDryRun_CycleExceedsHopCap(t *testing.T) {
	sim, err := DryRun(context.Background(), cycleGraph(), "home", Void{}, voidOutputs("home", "a", "b"), WithMaxHops(5))

	var exceeded *SimulationExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.ErrorIs(t, err, ErrSimulationExceeded)
	assert.Equal(t, 5, exceeded.MaxHops)
	assert.Equal(t, "a", exceeded.LastNodeID)
	assert.Equal(t, []string{"home", "a", "b", "a", "b", "a"}, exceeded.Path)

	require.NotNil(t, sim)
	assert.Equal(t, 5, sim.Hops())
	assert.Equal(t, StopReason(""), sim.Stop)
}

func TestDryRun_ExactlyMaxHopsEndingTerminal(t *testing.T) {
	g := linearGraph("root", "n0", "n1", "n2", "n3")

	sim, err := DryRun(context.Background(), g, "n0", Void{}, voidOutputs("n0", "n1", "n2", "n3"), WithMaxHops(3))
	require.NoError(t, err)
	assert.Equal(t, StopNoEdge, sim.Stop)
	assert.Equal(t, 3, sim.Hops())
	assert.Equal(t, []string{"n0", "n1", "n2", "n3"}, sim.Path())
	assert.Equal(t, "n2->n3", sim.Final().EdgeID)
	assert.Equal(t, Push, sim.Final().Transition)
}

func TestDryRun_ZeroMaxHops(t *testing.T) {
	tests := []struct {
		name    string
		graph   *Graph
		start   string
		outputs StaticOutputs
		wantErr bool
	}{
		{"edge out of start", linearGraph("root", "a", "b"), "a", voidOutputs("a", "b"), true},
		{"cycle", cycleGraph(), "a", voidOutputs("a", "b"), true},
		{"terminal start", linearGraph("root", "a"), "a", voidOutputs("a"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim, err := DryRun(context.Background(), tt.graph, tt.start, Void{}, tt.outputs, WithMaxHops(0))
			require.NotNil(t, sim)
			assert.Equal(t, []string{"a"}, sim.Path())
			assert.Equal(t, 0, sim.Hops())

			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, StopNoEdge, sim.Stop)
				return
			}
			var exceeded *SimulationExceededError
			require.ErrorAs(t, err, &exceeded)
			assert.Equal(t, 0, exceeded.MaxHops)
			assert.Equal(t, "a", exceeded.LastNodeID)
		})
	}
}

func TestDryRun_NegativeMaxHops(t *testing.T) {
	sim, err := DryRun(context.Background(), linearGraph("root", "a", "b"), "a", Void{}, voidOutputs("a", "b"), WithMaxHops(-1))
	assert.Nil(t, sim)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.ErrorIs(t, err, ErrInvalidMaxHops)
}

func TestDryRun_StopPredicate(t *testing.T) {
	sim, err := DryRun(context.Background(), cycleGraph(), "home", Void{}, voidOutputs("home", "a", "b"),
		WithStop(func(s Step) bool { return s.NodeID == "b" }),
	)
	require.NoError(t, err)
	assert.Equal(t, StopPredicate, sim.Stop)
	assert.Equal(t, []string{"home", "a", "b"}, sim.Path())
}

func TestDryRun_DescendsAndClimbsSubgraphs(t *testing.T) {
	root, _ := checkoutGraph()
	obs := &recordingObserver{}

	sim, err := DryRun(context.Background(), root, "outer", Void{}, voidOutputs("outer", "A", "B", "C"),
		WithDryRunObserver(obs),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "A", "B", "C"}, sim.Path())
	assert.NotEmpty(t, sim.SessionID)

	steps := sim.Steps
	assert.Equal(t, "/", steps[0].Trail)
	assert.Equal(t, "S", steps[1].Trail)
	assert.Equal(t, "inner", steps[1].Graph)
	assert.Equal(t, 1, steps[2].Depth)
	assert.Equal(t, "S->C", steps[3].EdgeID)
	assert.Equal(t, 0, steps[3].Depth)

	assert.Len(t, obs.ofKind(EventSubgraphExited), 1)
	for _, evt := range obs.events {
		assert.Equal(t, sim.SessionID, evt.SessionID)
	}
}

func TestDryRun_RunsHeadlessNodes(t *testing.T) {
	g := NewGraph("root")
	g.MustAddNode(NewScreen[Void, User]("login"))
	g.MustAddNode(NewHeadless("greet", func(_ context.Context, u User) (string, error) {
		return "hello " + u.Name, nil
	}))
	g.MustAddNode(NewScreen[string, Void]("welcome"))
	g.MustAddEdge(Pass[User]("login", "greet", Push, nil))
	g.MustAddEdge(Pass[string]("greet", "welcome", Push, nil))

	sim, err := DryRun(context.Background(), g, "login", Void{}, StaticOutputs{"login": User{Name: "ann"}, "welcome": Void{}})
	require.NoError(t, err)
	assert.Equal(t, []string{"login", "greet", "welcome"}, sim.Path())
	assert.Equal(t, KindHeadless, sim.Steps[1].NodeKind)
	assert.Equal(t, "hello ann", sim.Final().Input)
}

func TestDryRun_HeadlessFailures(t *testing.T) {
	boom := errors.New("boom")

	testCases := []struct {
		name  string
		fn    func(context.Context, Void) (Void, error)
		check func(t *testing.T, err error)
	}{
		{
			name: "error",
			fn:   func(context.Context, Void) (Void, error) { return Void{}, boom },
			check: func(t *testing.T, err error) {
				var nodeErr *NodeError
				require.ErrorAs(t, err, &nodeErr)
				assert.Equal(t, "work", nodeErr.NodeID)
				assert.Equal(t, "process", nodeErr.Op)
				assert.ErrorIs(t, err, boom)
			},
		},
		{
			name: "panic",
			fn:   func(context.Context, Void) (Void, error) { panic("kaboom") },
			check: func(t *testing.T, err error) {
				var panicErr *PanicError
				require.ErrorAs(t, err, &panicErr)
				assert.Equal(t, "work", panicErr.NodeID)
				assert.Equal(t, "kaboom", panicErr.Value)
				assert.NotEmpty(t, panicErr.Stack)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := NewGraph("root")
			g.MustAddNode(NewHeadless("work", tc.fn))

			sim, err := DryRun(context.Background(), g, "work", Void{}, nil)
			tc.check(t, err)
			assert.Equal(t, []string{"work"}, sim.Path())
		})
	}
}

func TestDryRun_MissingOutput(t *testing.T) {
	sim, err := DryRun(context.Background(), cycleGraph(), "home", Void{}, voidOutputs("home"))

	var nodeErr *NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, "a", nodeErr.NodeID)
	assert.ErrorIs(t, err, ErrNoOutput)
	assert.Equal(t, []string{"home", "a"}, sim.Path())
}

func TestDryRun_UnknownStart(t *testing.T) {
	_, err := DryRun(context.Background(), cycleGraph(), "ghost", Void{}, nil)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestDryRun_OutputFunc(t *testing.T) {
	g := NewGraph("root")
	g.MustAddNode(NewScreen[Void, int]("counter"))
	g.MustAddNode(NewScreen[int, Void]("done"))
	g.MustAddEdge(Pass("counter", "done", Push, func(n int) bool { return n > 2 }))
	g.MustAddEdge(Pass[int]("counter", "counter", None, nil).Named("again"))

	calls := 0
	outputs := OutputFunc(func(_ context.Context, n Node, _ any) (any, bool) {
		if n.ID() == "done" {
			return Void{}, true
		}
		calls++
		return calls, true
	})

	sim, err := DryRun(context.Background(), g, "counter", Void{}, outputs)
	require.NoError(t, err)
	assert.Equal(t, []string{"counter", "counter", "counter", "done"}, sim.Path())
	assert.Equal(t, 3, sim.Final().Input)
}

func TestDryRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DryRun(ctx, cycleGraph(), "home", Void{}, voidOutputs("home", "a", "b"))
	assert.ErrorIs(t, err, context.Canceled)
}
