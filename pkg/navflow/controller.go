package navflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/navflow/pkg/navflow/checkpoint"
	"github.com/randalmurphal/navflow/pkg/navflow/observability"
)

// Phase is the controller's traversal state.
type Phase string

const (
	PhaseIdle               Phase = "idle"
	PhaseVisiting           Phase = "visiting"
	PhaseDescending         Phase = "descending"
	PhaseRunningHeadless    Phase = "running_headless"
	PhaseAwaitingCompletion Phase = "awaiting_completion"
	PhaseDispatching        Phase = "dispatching"
)

// EntryKind distinguishes stack entries.
type EntryKind string

const (
	// EntryScreen mirrors one host screen.
	EntryScreen EntryKind = "screen"
	// EntrySubgraph marks where a subgraph frame was entered.
	EntrySubgraph EntryKind = "subgraph"
)

// StackEntry is one element of the controller's model of the current
// position.
type StackEntry struct {
	Kind   EntryKind
	NodeID string
	// Node is the screen node or the subgraph node.
	Node Node
	// Graph is the graph Node is registered in.
	Graph *Graph
	// Depth is the trail depth at the entry: for a subgraph entry, the
	// depth after entering it.
	Depth int

	// Screen entries only.
	Key        string
	Transition Transition
	Overlay    bool
}

type presentation struct {
	presenter Presenter
	meta      *Metadata
}

type pendingCompletion struct {
	key    string
	output any
}

// Controller drives traversal of a graph tree against a host stack.
//
// It descends into subgraphs, runs headless nodes inline, asks presenters
// to materialize screens, dispatches transitions to the host, and rebuilds
// its model from the host after every acknowledged command and every host
// notification.
//
// Controller is NOT safe for concurrent use. Start, Complete, completion
// callbacks, and host notifications must be delivered serially, as a UI
// event loop does. Completions that arrive while a host command is still
// unacknowledged are queued and processed after the acknowledgement.
type Controller struct {
	root       *Graph
	host       HostStack
	presenters []Presenter
	resolver   *Resolver

	cfg      controllerConfig
	logger   *slog.Logger
	observer Observer

	phase    Phase
	started  bool
	baseCtx  context.Context
	entries  []StackEntry
	shown    map[string]presentation
	inFlight int
	active   bool
	queue    []pendingCompletion
	sequence int
	cancel   func()
}

// NewController creates a controller over root. Presenters are consulted in
// order; the first whose CanHandle accepts a node presents it.
func NewController(root *Graph, host HostStack, presenters []Presenter, opts ...ControllerOption) *Controller {
	cfg := defaultControllerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.sessionID == "" {
		cfg.sessionID = uuid.NewString()
	}

	c := &Controller{
		root:       root,
		host:       host,
		presenters: presenters,
		cfg:        cfg,
		phase:      PhaseIdle,
		shown:      make(map[string]presentation),
	}
	c.wire()
	return c
}

// wire builds the session-scoped logger, observer chain, and resolver.
func (c *Controller) wire() {
	c.logger = observability.EnrichLogger(c.cfg.logger, c.cfg.sessionID)
	c.observer = Observers(c.cfg.observer, NewLogObserver(c.logger), NewTelemetryObserver(c.cfg.metrics))
	c.resolver = NewResolver(c.observer).withSession(c.cfg.sessionID)
}

// SessionID returns the session identifier.
func (c *Controller) SessionID() string { return c.cfg.sessionID }

// Phase returns the current traversal phase.
func (c *Controller) Phase() Phase { return c.phase }

// Root returns the root graph.
func (c *Controller) Root() *Graph { return c.root }

// Stack returns the controller's model: screen entries mirroring the host
// stack, interleaved with subgraph entries marking where frames were entered.
func (c *Controller) Stack() []StackEntry {
	out := make([]StackEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Screens returns only the screen entries of Stack.
func (c *Controller) Screens() []StackEntry {
	var out []StackEntry
	for _, e := range c.entries {
		if e.Kind == EntryScreen {
			out = append(out, e)
		}
	}
	return out
}

// Trail returns the trail of the top screen, or an empty trail.
func (c *Controller) Trail() Trail {
	screens := c.host.Screens()
	for i := len(screens) - 1; i >= 0; i-- {
		if screens[i].Meta != nil {
			return screens[i].Meta.Trail
		}
	}
	return nil
}

// Start begins traversal at nodeID in the root graph with an empty trail,
// as if arriving by a push.
func (c *Controller) Start(ctx context.Context, nodeID string, input any) error {
	if c.started {
		return ErrAlreadyStarted
	}
	n, ok := c.root.Node(nodeID)
	if !ok {
		return &ConfigurationError{Op: "start", NodeID: nodeID, Err: ErrNodeNotFound}
	}

	c.begin(ctx)
	return c.run(func() error {
		return c.visit(ctx, n, input, c.root, nil, Push, nil)
	})
}

func (c *Controller) begin(ctx context.Context) {
	c.started = true
	c.baseCtx = context.WithoutCancel(ctx)
	c.cancel = c.host.Observe(c.onHostEvent)
}

// Stop detaches the controller from host notifications. The host stack is
// left as it is.
func (c *Controller) Stop() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.started = false
	c.phase = PhaseIdle
	c.queue = nil
}

// Complete delivers output for the screen with the given key, exactly as
// the completion passed to Present does. It returns ErrUnknownHandle when
// the screen is no longer on the host stack.
func (c *Controller) Complete(ctx context.Context, key string, output any) error {
	if !c.started {
		return ErrNotStarted
	}
	if c.busy() {
		c.queue = append(c.queue, pendingCompletion{key: key, output: output})
		return nil
	}
	return c.run(func() error {
		return c.complete(ctx, key, output)
	})
}

func (c *Controller) complete(ctx context.Context, key string, output any) error {
	p, ok := c.shown[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, key)
	}
	meta := p.meta

	res, ok, err := c.resolver.Next(ctx, meta.Node, output, meta.Graph, meta.Trail)
	if err != nil {
		return err
	}
	if !ok {
		c.settle()
		return nil
	}
	return c.dispatch(ctx, res, meta.Transition.Kind == TransitionModal)
}

// HostChanged tells the controller the host stack changed. It is called
// automatically for notifications from HostStack.Observe; hosts that cannot
// notify may call it directly. Changes made by the controller's own
// commands are reconciled when they are acknowledged.
func (c *Controller) HostChanged(ctx context.Context) {
	if !c.started || c.inFlight > 0 {
		return
	}
	_ = c.run(func() error {
		c.Rebuild(ctx)
		c.settle()
		return nil
	})
}

func (c *Controller) onHostEvent(evt HostEvent) {
	c.logger.Debug("host event", slog.String("kind", string(evt.Kind)), slog.String("key", evt.Screen.Key))
	c.HostChanged(c.baseCtx)
}

// visit arrives at n in g with input, by a transition of kind incoming.
// then, if set, runs after the host acknowledged the presentation.
func (c *Controller) visit(ctx context.Context, n Node, input any, g *Graph, trail Trail, incoming Transition, then func(context.Context) error) error {
	c.phase = PhaseVisiting
	c.emit(ctx, Event{Kind: EventNodeVisited, NodeID: n.ID(), NodeKind: KindOf(n), Graph: g.Name(), Transition: incoming, Depth: trail.Depth()})

	if KindOf(n) == KindSubgraph {
		c.phase = PhaseDescending
		depth := trail.Depth()
		var err error
		n, g, trail, err = Descend(n, g, trail)
		if err != nil {
			return err
		}
		for i := depth; i < trail.Depth(); i++ {
			c.emit(ctx, Event{Kind: EventSubgraphEntered, NodeID: trail[i].Subgraph.ID, NodeKind: KindSubgraph, Graph: trail[i].Parent.Name(), Depth: i + 1})
		}
		c.emit(ctx, Event{Kind: EventNodeVisited, NodeID: n.ID(), NodeKind: KindOf(n), Graph: g.Name(), Transition: incoming, Depth: trail.Depth()})
	}

	switch h := n.(type) {
	case headlessNode:
		return c.runHeadless(ctx, h, input, g, trail)
	default:
		if incoming.IsForward() {
			return c.present(ctx, n, input, g, trail, incoming, then)
		}
		return c.arrive(ctx, n, input, g)
	}
}

func (c *Controller) runHeadless(ctx context.Context, h headlessNode, input any, g *Graph, trail Trail) error {
	c.phase = PhaseRunningHeadless

	output, err := process(ctx, h, input)
	if err != nil {
		observability.LogNodeError(c.logger, h.ID(), err)
		c.settle()
		return err
	}

	res, ok, err := c.resolver.Next(ctx, h, output, g, trail)
	if err != nil {
		return err
	}
	if !ok {
		c.settle()
		return nil
	}
	return c.dispatch(ctx, res, false)
}

func (c *Controller) present(ctx context.Context, n Node, input any, g *Graph, trail Trail, incoming Transition, then func(context.Context) error) error {
	p, ok := selectPresenter(c.presenters, n)
	if !ok {
		return &ConfigurationError{Op: "present", NodeID: n.ID(), Err: ErrNoPresenter}
	}

	key := uuid.NewString()
	meta := &Metadata{Node: n, Graph: g, Trail: trail, Transition: incoming, Input: input}
	c.shown[key] = presentation{presenter: p, meta: meta}

	done := func(output any) {
		if err := c.Complete(c.baseCtx, key, output); err != nil {
			c.reportError(err)
		}
	}
	handle, err := p.Present(ctx, n, input, done)
	if err != nil {
		delete(c.shown, key)
		return &NodeError{NodeID: n.ID(), Op: "present", Err: err}
	}

	op := OpAppend
	if incoming.Kind == TransitionModal {
		op = OpShowOverlay
	}
	screen := HostScreen{Key: key, Handle: handle, Overlay: op == OpShowOverlay, Meta: meta}
	if err := c.command(ctx, Command{Op: op, Screen: screen}, then); err != nil {
		if !c.onHost(key) {
			delete(c.shown, key)
		}
		return err
	}
	return nil
}

// onHost reports whether the screen presented under key is on the host stack.
func (c *Controller) onHost(key string) bool {
	for _, s := range c.host.Screens() {
		if s.Key == key {
			return true
		}
	}
	return false
}

// arrive handles a backward or "none" transition whose destination is a
// screen: the screen should already be on top of the host stack, and it
// receives the new input through Updater when its presenter supports it.
func (c *Controller) arrive(ctx context.Context, n Node, input any, g *Graph) error {
	screens := c.host.Screens()
	if len(screens) == 0 {
		c.logger.Warn("arrived at screen with empty host stack", slog.String("node_id", n.ID()))
		c.settle()
		return nil
	}

	top := screens[len(screens)-1]
	if top.Meta == nil || top.Meta.Node.ID() != n.ID() || top.Meta.Graph != g {
		topID := ""
		if top.Meta != nil {
			topID = top.Meta.Node.ID()
		}
		c.logger.Warn("arrived at screen that is not on top of host stack",
			slog.String("node_id", n.ID()),
			slog.String("top_node_id", topID),
		)
		c.settle()
		return nil
	}

	top.Meta.Input = input
	if p, ok := c.shown[top.Key]; ok {
		if u, ok := p.presenter.(Updater); ok {
			if err := u.Update(ctx, top.Handle, input); err != nil {
				return &NodeError{NodeID: n.ID(), Op: "update", Err: err}
			}
		}
	}
	c.settle()
	return nil
}

// command applies cmd to the host. then runs after the acknowledgement,
// following a rebuild. When the host acknowledges synchronously, errors
// from then are returned; later ones go to the error handler.
func (c *Controller) command(ctx context.Context, cmd Command, then func(context.Context) error) error {
	c.inFlight++
	c.phase = PhaseDispatching
	c.cfg.spans.AddSpanEvent(ctx, "host_command", attribute.String("op", string(cmd.Op)))

	sync := true
	var syncErr error
	done := func() {
		err := c.acknowledged(ctx, then)
		if sync {
			syncErr = err
		} else if err != nil {
			c.reportError(err)
		}
	}

	if err := c.host.Apply(cmd, done); err != nil {
		c.inFlight--
		c.settle()
		return fmt.Errorf("host %s: %w", cmd.Op, err)
	}
	sync = false
	return syncErr
}

func (c *Controller) acknowledged(ctx context.Context, then func(context.Context) error) error {
	c.inFlight--

	wasActive := c.active
	c.active = true
	c.Rebuild(ctx)

	var err error
	if then != nil {
		err = then(ctx)
	}
	if c.inFlight == 0 && c.phase == PhaseDispatching {
		c.settle()
	}
	c.active = wasActive

	if !wasActive {
		c.drain()
	}
	return err
}

// run marks the controller active for the duration of fn and processes
// queued completions afterwards.
func (c *Controller) run(fn func() error) error {
	wasActive := c.active
	c.active = true
	err := fn()
	c.active = wasActive
	if !wasActive {
		c.drain()
	}
	return err
}

func (c *Controller) busy() bool {
	return c.active || c.inFlight > 0
}

func (c *Controller) drain() {
	for len(c.queue) > 0 && !c.busy() {
		next := c.queue[0]
		c.queue = c.queue[1:]
		if err := c.Complete(c.baseCtx, next.key, next.output); err != nil {
			c.reportError(err)
		}
	}
}

// settle leaves the transient phases once nothing is in flight.
func (c *Controller) settle() {
	if c.inFlight > 0 {
		c.phase = PhaseDispatching
		return
	}
	if len(c.entries) > 0 || len(c.host.Screens()) > 0 {
		c.phase = PhaseAwaitingCompletion
		return
	}
	c.phase = PhaseIdle
}

func (c *Controller) emit(ctx context.Context, evt Event) {
	evt.SessionID = c.cfg.sessionID
	c.observer.OnEvent(ctx, evt)
}

func (c *Controller) reportError(err error) {
	if c.cfg.onError != nil {
		c.cfg.onError(err)
		return
	}
	c.logger.Error("navigation failed", slog.String("error", err.Error()))
}

// persist saves a snapshot when checkpointing is enabled.
func (c *Controller) persist() {
	store := c.cfg.store
	if store == nil {
		return
	}

	snap, err := c.Snapshot()
	if err != nil {
		observability.LogCheckpointError(c.logger, c.cfg.sessionID, "snapshot", err)
		return
	}
	c.sequence++
	snap.Sequence = c.sequence

	body, err := snap.Marshal()
	if err != nil {
		observability.LogCheckpointError(c.logger, c.cfg.sessionID, "marshal", err)
		return
	}
	cp := checkpoint.New(c.cfg.sessionID, c.sequence, body)
	if len(snap.Screens) > 0 {
		cp.WithTop(snap.Screens[len(snap.Screens)-1].NodeID)
	}
	data, err := cp.Marshal()
	if err != nil {
		observability.LogCheckpointError(c.logger, c.cfg.sessionID, "marshal", err)
		return
	}
	if err := store.Save(c.cfg.sessionID, c.sequence, data); err != nil {
		observability.LogCheckpointError(c.logger, c.cfg.sessionID, "save", err)
		return
	}
	observability.LogCheckpoint(c.logger, c.cfg.sessionID, c.sequence, len(data))
}
