package navflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/randalmurphal/navflow/pkg/navflow/checkpoint"
)

// SnapshotVersion is the current snapshot format version.
const SnapshotVersion = 1

// Snapshot is a serializable record of the host stack as the controller
// presented it. Trails are stored as subgraph ID paths from the root graph,
// so a snapshot can be restored against a freshly built graph tree.
type Snapshot struct {
	Version   int              `json:"version"`
	SessionID string           `json:"session_id"`
	Sequence  int              `json:"sequence"`
	Screens   []ScreenSnapshot `json:"screens"`
}

// ScreenSnapshot records one presented screen.
type ScreenSnapshot struct {
	NodeID     string          `json:"node_id"`
	Trail      []string        `json:"trail,omitempty"`
	Transition string          `json:"transition"`
	Overlay    bool            `json:"overlay,omitempty"`
	Input      json.RawMessage `json:"input,omitempty"`
}

// Marshal serializes the snapshot to JSON.
func (s Snapshot) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalSnapshot deserializes a snapshot from JSON.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, err
	}
	if s.Version > SnapshotVersion {
		return Snapshot{}, fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	return s, nil
}

// Snapshot records the screens currently on the host stack. Inputs are
// JSON-encoded; a screen whose input cannot be encoded fails the snapshot.
func (c *Controller) Snapshot() (Snapshot, error) {
	snap := Snapshot{
		Version:   SnapshotVersion,
		SessionID: c.cfg.sessionID,
		Sequence:  c.sequence,
	}
	for _, s := range c.host.Screens() {
		if s.Meta == nil || s.Meta.Node == nil {
			continue
		}
		input, err := json.Marshal(s.Meta.Input)
		if err != nil {
			return Snapshot{}, &NodeError{NodeID: s.Meta.Node.ID(), Op: "snapshot", Err: err}
		}
		snap.Screens = append(snap.Screens, ScreenSnapshot{
			NodeID:     s.Meta.Node.ID(),
			Trail:      s.Meta.Trail.IDs(),
			Transition: s.Meta.Transition.String(),
			Overlay:    s.Overlay,
			Input:      input,
		})
	}
	return snap, nil
}

// Restore replays snap onto an empty host stack: each screen is presented
// again, bottom first, with its decoded input, and the controller continues
// the snapshot's session. Every node and subgraph named in snap must exist
// in the controller's graph tree.
func (c *Controller) Restore(ctx context.Context, snap Snapshot) error {
	if c.started {
		return ErrAlreadyStarted
	}
	if len(c.host.Screens()) > 0 {
		return &ConfigurationError{Op: "restore", Err: ErrHostNotEmpty}
	}

	steps := make([]restoreStep, 0, len(snap.Screens))
	for _, s := range snap.Screens {
		step, err := c.resolveScreen(s)
		if err != nil {
			return err
		}
		steps = append(steps, step)
	}

	if snap.SessionID != "" && snap.SessionID != c.cfg.sessionID {
		c.cfg.sessionID = snap.SessionID
		c.wire()
	}
	c.sequence = snap.Sequence

	c.begin(ctx)
	if len(steps) == 0 {
		return nil
	}
	return c.run(func() error {
		return c.replay(ctx, steps)
	})
}

// Resume restores the latest checkpoint saved for sessionID in the
// controller's checkpoint store.
func (c *Controller) Resume(ctx context.Context, sessionID string) error {
	if c.cfg.store == nil {
		return &ConfigurationError{Op: "resume", Err: errors.New("checkpointing not configured")}
	}
	data, _, err := c.cfg.store.Latest(sessionID)
	if err != nil {
		return fmt.Errorf("load checkpoint: %w", err)
	}
	cp, err := checkpoint.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("decode checkpoint: %w", err)
	}
	snap, err := UnmarshalSnapshot(cp.Snapshot)
	if err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	return c.Restore(ctx, snap)
}

type restoreStep struct {
	node       Node
	graph      *Graph
	trail      Trail
	transition Transition
	input      any
}

func (c *Controller) resolveScreen(s ScreenSnapshot) (restoreStep, error) {
	trail, err := ResolveTrail(c.root, s.Trail)
	if err != nil {
		return restoreStep{}, err
	}
	g := trail.Graph(c.root)
	n, ok := g.Node(s.NodeID)
	if !ok {
		return restoreStep{}, &ConfigurationError{Op: "restore", NodeID: s.NodeID, Err: ErrNodeNotFound}
	}
	if KindOf(n) != KindScreen {
		return restoreStep{}, &ConfigurationError{Op: "restore", NodeID: s.NodeID, Err: ErrInvalidNode}
	}

	t := Push
	if s.Transition != "" {
		if t, err = ParseTransition(s.Transition); err != nil {
			return restoreStep{}, &ConfigurationError{Op: "restore", NodeID: s.NodeID, Err: err}
		}
	}
	if s.Overlay {
		t = Modal
	} else if !t.IsForward() {
		t = Push
	}

	input, err := decodeInput(n.InputType(), s.Input)
	if err != nil {
		return restoreStep{}, &NodeError{NodeID: s.NodeID, Op: "restore", Err: err}
	}
	return restoreStep{node: n, graph: g, trail: trail, transition: t, input: input}, nil
}

// replay presents steps one at a time, each after the previous one was
// acknowledged by the host.
func (c *Controller) replay(ctx context.Context, steps []restoreStep) error {
	s := steps[0]
	var then func(context.Context) error
	if len(steps) > 1 {
		then = func(ctx context.Context) error {
			return c.replay(ctx, steps[1:])
		}
	}
	return c.present(ctx, s.node, s.input, s.graph, s.trail, s.transition, then)
}

// decodeInput decodes raw into a value of type t. Empty or null input
// decodes to t's zero value.
func decodeInput(t reflect.Type, raw json.RawMessage) (any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return reflect.Zero(t).Interface(), nil
	}
	ptr := reflect.New(t)
	if err := json.Unmarshal(raw, ptr.Interface()); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}
