package navflow

import (
	"context"
)

// dispatch carries out a resolved transition.
//
// Backward kinds run their host command immediately, whatever way the
// source screen was presented, and then arrive at the destination. Forward
// kinds leaving a screen that was presented as an overlay close the overlay
// first and present the destination only after the host acknowledged the
// close. Everything else visits the destination directly.
func (c *Controller) dispatch(ctx context.Context, res Resolution, fromOverlay bool) (err error) {
	c.phase = PhaseDispatching
	t := res.Edge.Transition()

	ctx, span := c.cfg.spans.StartDispatchSpan(ctx, c.cfg.sessionID, res.Edge.ID(), string(t.Kind))
	defer func() { c.cfg.spans.EndSpanWithError(span, err) }()

	c.emit(ctx, Event{
		Kind:       EventDispatched,
		NodeID:     res.To.ID(),
		NodeKind:   KindOf(res.To),
		EdgeID:     res.Edge.ID(),
		Graph:      res.Graph.Name(),
		Transition: t,
		Depth:      res.Trail.Depth(),
	})

	next := func(ctx context.Context) error {
		return c.visit(ctx, res.To, res.Input, res.Graph, res.Trail, t, nil)
	}

	switch {
	case t.IsBackward():
		return c.command(ctx, backwardCommand(t), next)
	case t.IsForward() && fromOverlay:
		return c.command(ctx, Command{Op: OpCloseOverlay}, next)
	default:
		return next(ctx)
	}
}

// backwardCommand maps a backward transition to its host command.
func backwardCommand(t Transition) Command {
	switch t.Kind {
	case TransitionPop:
		return Command{Op: OpRemoveTop}
	case TransitionPopTo:
		return Command{Op: OpTruncate, Length: t.Index + 1}
	default:
		return Command{Op: OpCloseOverlay}
	}
}
