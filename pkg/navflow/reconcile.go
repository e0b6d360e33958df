package navflow

import (
	"context"
	"log/slog"
)

// Rebuild replaces the controller's model with one derived from the host
// stack, which is the source of truth for what is on screen.
//
// Host screens are read bottom first. For each, the trail recorded at
// presentation time is compared with the trail carried from the screen
// below: frames past their longest common prefix are entered here and get a
// subgraph entry, then the screen itself gets a screen entry. The result has
// exactly one screen entry per host screen, in host order, whatever changed
// the host (the controller's own commands, back gestures, dismissed
// overlays). Screens without metadata were not presented by this
// controller; they are skipped with a warning.
func (c *Controller) Rebuild(ctx context.Context) {
	screens := c.host.Screens()
	entries := make([]StackEntry, 0, len(screens))
	onHost := make(map[string]bool, len(screens))
	var carried Trail
	count := 0

	for _, s := range screens {
		if s.Meta == nil || s.Meta.Node == nil {
			c.logger.Warn("skipping host screen",
				slog.String("key", s.Key),
				slog.String("error", ErrMissingMetadata.Error()),
			)
			continue
		}
		meta := s.Meta

		for i := carried.CommonPrefix(meta.Trail); i < meta.Trail.Depth(); i++ {
			f := meta.Trail[i]
			sub, _ := f.Parent.Node(f.Subgraph.ID)
			entries = append(entries, StackEntry{
				Kind:   EntrySubgraph,
				NodeID: f.Subgraph.ID,
				Node:   sub,
				Graph:  f.Parent,
				Depth:  i + 1,
			})
		}
		carried = meta.Trail

		entries = append(entries, StackEntry{
			Kind:       EntryScreen,
			NodeID:     meta.Node.ID(),
			Node:       meta.Node,
			Graph:      meta.Graph,
			Depth:      meta.Trail.Depth(),
			Key:        s.Key,
			Transition: meta.Transition,
			Overlay:    s.Overlay,
		})
		onHost[s.Key] = true
		count++
	}

	for key := range c.shown {
		if !onHost[key] {
			delete(c.shown, key)
		}
	}

	c.entries = entries
	c.emit(ctx, Event{Kind: EventStackRebuilt, Screens: count, Entries: len(entries), Depth: carried.Depth()})
	c.persist()
}
