package navflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/randalmurphal/navflow/pkg/navflow/observability"
)

// DefaultMaxHops is the dry-run hop cap used when WithMaxHops is not given.
const DefaultMaxHops = 100

// OutputProvider supplies synthetic outputs for screens during a dry run.
// ok is false when it has no output for the node, which fails the run with
// ErrNoOutput.
type OutputProvider interface {
	Output(ctx context.Context, node Node, input any) (output any, ok bool)
}

// OutputFunc adapts a function to OutputProvider.
type OutputFunc func(ctx context.Context, node Node, input any) (any, bool)

// Output calls f.
func (f OutputFunc) Output(ctx context.Context, node Node, input any) (any, bool) {
	return f(ctx, node, input)
}

// StaticOutputs is an OutputProvider that answers by node ID.
type StaticOutputs map[string]any

// Output returns the value registered for node's ID.
func (s StaticOutputs) Output(_ context.Context, node Node, _ any) (any, bool) {
	v, ok := s[node.ID()]
	return v, ok
}

// StopReason explains why a dry run ended without error.
type StopReason string

const (
	// StopNoEdge means the last node had no eligible edge along its trail.
	StopNoEdge StopReason = "no_edge"
	// StopPredicate means the WithStop predicate returned true.
	StopPredicate StopReason = "stop_predicate"
)

// Step is one node reached during a dry run.
type Step struct {
	// Hop is the number of edges followed to reach the node; 0 for the start.
	Hop      int
	NodeID   string
	NodeKind NodeKind
	Graph    string
	// EdgeID and Transition describe the edge that led here, empty for the start.
	EdgeID     string
	Transition Transition
	// Depth is the trail depth at the node.
	Depth int
	// Trail is the subgraph path at the node, "/" at the root.
	Trail string
	Input any
}

// Simulation is the result of a dry run.
type Simulation struct {
	SessionID string
	Steps     []Step
	Stop      StopReason
}

// Final returns the last step reached.
func (s *Simulation) Final() Step {
	if len(s.Steps) == 0 {
		return Step{}
	}
	return s.Steps[len(s.Steps)-1]
}

// Path returns the node IDs of every step in order.
func (s *Simulation) Path() []string {
	ids := make([]string, len(s.Steps))
	for i, st := range s.Steps {
		ids[i] = st.NodeID
	}
	return ids
}

// Hops returns the number of edges followed.
func (s *Simulation) Hops() int {
	return s.Final().Hop
}

// dryRunConfig holds dry-run configuration.
type dryRunConfig struct {
	maxHops  int
	stop     func(Step) bool
	observer Observer
	metrics  observability.MetricsRecorder
	spans    observability.SpanManager
}

func defaultDryRunConfig() dryRunConfig {
	return dryRunConfig{
		maxHops:  DefaultMaxHops,
		observer: NoopObserver{},
		metrics:  observability.NoopMetrics{},
		spans:    observability.NoopSpanManager{},
	}
}

// DryRunOption configures DryRun.
type DryRunOption func(*dryRunConfig)

// WithMaxHops sets the maximum number of edges a dry run may follow.
// Default: 100
//
// Zero allows no edges at all, so only the start node is simulated. A
// negative cap makes DryRun fail with ErrInvalidMaxHops.
//
// Exceeding the cap returns *SimulationExceededError, which usually means
// the graph has a cycle the provided outputs never leave.
func WithMaxHops(n int) DryRunOption {
	return func(c *dryRunConfig) {
		c.maxHops = n
	}
}

// WithStop ends the run successfully at the first step for which stop
// returns true.
func WithStop(stop func(Step) bool) DryRunOption {
	return func(c *dryRunConfig) {
		c.stop = stop
	}
}

// WithDryRunObserver reports the run's resolution events to obs.
func WithDryRunObserver(obs Observer) DryRunOption {
	return func(c *dryRunConfig) {
		if obs != nil {
			c.observer = obs
		}
	}
}

// WithDryRunMetrics records the run's hop count.
func WithDryRunMetrics(metrics observability.MetricsRecorder) DryRunOption {
	return func(c *dryRunConfig) {
		if metrics != nil {
			c.metrics = metrics
		}
	}
}

// WithDryRunTracing wraps the run in a span.
func WithDryRunTracing(spans observability.SpanManager) DryRunOption {
	return func(c *dryRunConfig) {
		if spans != nil {
			c.spans = spans
		}
	}
}

// DryRun simulates traversal of root from startID without presenters or a
// host stack. Subgraphs are descended, headless nodes run for real, and
// screens take their output from outputs. Edges are resolved exactly as the
// controller resolves them, including climbing out of subgraphs.
//
// The run ends when a node has no eligible edge (StopNoEdge) or the stop
// predicate matches (StopPredicate). Following more than the hop cap
// returns the partial simulation with a *SimulationExceededError.
//
// Example:
//
//	sim, err := navflow.DryRun(ctx, root, "home", navflow.Void{},
//	    navflow.StaticOutputs{"home": "alice", "profile": navflow.Void{}},
//	    navflow.WithMaxHops(20),
//	)
func DryRun(ctx context.Context, root *Graph, startID string, input any, outputs OutputProvider, opts ...DryRunOption) (sim *Simulation, err error) {
	cfg := defaultDryRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.maxHops < 0 {
		return nil, &ConfigurationError{Op: "dry_run", Err: fmt.Errorf("%w: %d", ErrInvalidMaxHops, cfg.maxHops)}
	}

	n, ok := root.Node(startID)
	if !ok {
		return nil, &ConfigurationError{Op: "dry_run", NodeID: startID, Err: ErrNodeNotFound}
	}

	sim = &Simulation{SessionID: uuid.NewString()}
	resolver := NewResolver(cfg.observer).withSession(sim.SessionID)

	ctx, span := cfg.spans.StartDryRunSpan(ctx, root.Name(), startID)
	defer func() {
		cfg.metrics.RecordDryRun(ctx, sim.Hops(), err != nil)
		cfg.spans.EndSpanWithError(span, err)
	}()

	g := root
	var trail Trail
	var via *Edge
	hop := 0

	for {
		if err := ctx.Err(); err != nil {
			return sim, err
		}

		n, g, trail, err = Descend(n, g, trail)
		if err != nil {
			return sim, err
		}

		step := Step{
			Hop:      hop,
			NodeID:   n.ID(),
			NodeKind: KindOf(n),
			Graph:    g.Name(),
			Depth:    trail.Depth(),
			Trail:    trail.String(),
			Input:    input,
		}
		if via != nil {
			step.EdgeID = via.ID()
			step.Transition = via.Transition()
		}
		sim.Steps = append(sim.Steps, step)

		if cfg.stop != nil && cfg.stop(step) {
			sim.Stop = StopPredicate
			return sim, nil
		}

		output, err := simulateOutput(ctx, n, input, outputs)
		if err != nil {
			return sim, err
		}

		res, ok, err := resolver.Next(ctx, n, output, g, trail)
		if err != nil {
			return sim, err
		}
		if !ok {
			sim.Stop = StopNoEdge
			return sim, nil
		}

		if hop == cfg.maxHops {
			return sim, &SimulationExceededError{MaxHops: cfg.maxHops, LastNodeID: n.ID(), Path: sim.Path()}
		}
		hop++

		n, g, trail, input, via = res.To, res.Graph, res.Trail, res.Input, res.Edge
	}
}

func simulateOutput(ctx context.Context, n Node, input any, outputs OutputProvider) (any, error) {
	if h, ok := n.(headlessNode); ok {
		return process(ctx, h, input)
	}
	if outputs == nil {
		return nil, &NodeError{NodeID: n.ID(), Op: "dry_run", Err: ErrNoOutput}
	}
	out, ok := outputs.Output(ctx, n, input)
	if !ok {
		return nil, &NodeError{NodeID: n.ID(), Op: "dry_run", Err: ErrNoOutput}
	}
	return out, nil
}
