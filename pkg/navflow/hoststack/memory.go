// Package hoststack provides an in-memory navflow.HostStack.
//
// Memory behaves like a platform navigation stack without rendering
// anything: it applies commands, records them, and lets tests and tools
// simulate user gestures (back swipes, overlay dismissals) that change the
// stack behind the controller's back.
package hoststack

import (
	"errors"
	"fmt"
	"sync"

	"github.com/randalmurphal/navflow/pkg/navflow"
)

var (
	// ErrTransitionInProgress indicates a command arrived while an earlier
	// one was still waiting for its acknowledgement.
	ErrTransitionInProgress = errors.New("host transition in progress")

	// ErrInvalidCommand indicates a command that cannot apply to the
	// current stack.
	ErrInvalidCommand = errors.New("invalid host command")
)

// Option configures a Memory host stack.
type Option func(*Memory)

// WithDeferredAcks holds command acknowledgements until Ack or Flush is
// called, the way an animated transition finishes some time after it
// starts. While an acknowledgement is pending, Apply refuses new commands
// with ErrTransitionInProgress.
func WithDeferredAcks() Option {
	return func(m *Memory) {
		m.deferred = true
	}
}

// Memory is an in-memory host stack. It is safe for concurrent use, but
// callbacks run on the goroutine that triggers them.
type Memory struct {
	mu        sync.Mutex
	screens   []navflow.HostScreen
	commands  []navflow.Command
	observers map[int]func(navflow.HostEvent)
	nextObs   int
	deferred  bool
	pending   []func()
}

var _ navflow.HostStack = (*Memory)(nil)

// NewMemory creates an empty host stack.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{observers: make(map[int]func(navflow.HostEvent))}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Apply implements navflow.HostStack.
func (m *Memory) Apply(cmd navflow.Command, done func()) error {
	m.mu.Lock()
	if len(m.pending) > 0 {
		m.mu.Unlock()
		return ErrTransitionInProgress
	}
	if err := m.apply(cmd); err != nil {
		m.mu.Unlock()
		return err
	}
	m.commands = append(m.commands, cmd)
	if m.deferred {
		if done == nil {
			done = func() {}
		}
		m.pending = append(m.pending, done)
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	if done != nil {
		done()
	}
	return nil
}

func (m *Memory) apply(cmd navflow.Command) error {
	switch cmd.Op {
	case navflow.OpAppend:
		s := cmd.Screen
		s.Overlay = false
		m.screens = append(m.screens, s)
	case navflow.OpShowOverlay:
		s := cmd.Screen
		s.Overlay = true
		m.screens = append(m.screens, s)
	case navflow.OpRemoveTop:
		if len(m.screens) == 0 {
			return fmt.Errorf("%w: remove top of empty stack", ErrInvalidCommand)
		}
		m.screens = m.screens[:len(m.screens)-1]
	case navflow.OpTruncate:
		if cmd.Length < 0 || cmd.Length > len(m.screens) {
			return fmt.Errorf("%w: truncate to %d with %d screens", ErrInvalidCommand, cmd.Length, len(m.screens))
		}
		m.screens = m.screens[:cmd.Length]
	case navflow.OpCloseOverlay:
		i := m.topOverlay()
		if i < 0 {
			return fmt.Errorf("%w: no overlay to close", ErrInvalidCommand)
		}
		m.screens = m.screens[:i]
	default:
		return fmt.Errorf("%w: unknown op %q", ErrInvalidCommand, cmd.Op)
	}
	return nil
}

func (m *Memory) topOverlay() int {
	for i := len(m.screens) - 1; i >= 0; i-- {
		if m.screens[i].Overlay {
			return i
		}
	}
	return -1
}

// Screens implements navflow.HostStack.
func (m *Memory) Screens() []navflow.HostScreen {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]navflow.HostScreen, len(m.screens))
	copy(out, m.screens)
	return out
}

// Observe implements navflow.HostStack.
func (m *Memory) Observe(fn func(navflow.HostEvent)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextObs
	m.nextObs++
	m.observers[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.observers, id)
	}
}

// Pending reports whether an acknowledgement is waiting.
func (m *Memory) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending) > 0
}

// Ack delivers the oldest pending acknowledgement and reports whether there
// was one.
func (m *Memory) Ack() bool {
	m.mu.Lock()
	if len(m.pending) == 0 {
		m.mu.Unlock()
		return false
	}
	done := m.pending[0]
	m.pending = m.pending[1:]
	m.mu.Unlock()

	done()
	return true
}

// Flush delivers acknowledgements until none are pending, including those
// for commands issued by earlier acknowledgements.
func (m *Memory) Flush() {
	for m.Ack() {
	}
}

// Commands returns every command applied so far, oldest first.
func (m *Memory) Commands() []navflow.Command {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]navflow.Command, len(m.commands))
	copy(out, m.commands)
	return out
}

// SwipeBack removes the top screen the way a back gesture does. It refuses
// to remove the root screen or an overlay and reports whether it did
// anything.
func (m *Memory) SwipeBack() bool {
	m.mu.Lock()
	n := len(m.screens)
	if n < 2 || m.screens[n-1].Overlay || len(m.pending) > 0 {
		m.mu.Unlock()
		return false
	}
	removed := m.screens[n-1]
	m.screens = m.screens[:n-1]
	m.mu.Unlock()

	m.notify(navflow.HostEvent{Kind: navflow.HostPopped, Screen: removed})
	return true
}

// DismissOverlay closes the topmost overlay the way a dismiss gesture does,
// removing every screen above it too.
func (m *Memory) DismissOverlay() bool {
	m.mu.Lock()
	i := m.topOverlay()
	if i < 0 || len(m.pending) > 0 {
		m.mu.Unlock()
		return false
	}
	removed := m.screens[i]
	m.screens = m.screens[:i]
	m.mu.Unlock()

	m.notify(navflow.HostEvent{Kind: navflow.HostOverlayDismissed, Screen: removed})
	return true
}

// PopToRoot removes every screen above the root, like a tab re-selection.
func (m *Memory) PopToRoot() bool {
	m.mu.Lock()
	if len(m.screens) < 2 || len(m.pending) > 0 {
		m.mu.Unlock()
		return false
	}
	removed := m.screens[len(m.screens)-1]
	m.screens = m.screens[:1]
	m.mu.Unlock()

	m.notify(navflow.HostEvent{Kind: navflow.HostPopped, Screen: removed})
	return true
}

// Inject pushes a screen the controller did not present, such as a system
// dialog, and announces it with HostTopShown.
func (m *Memory) Inject(screen navflow.HostScreen) {
	m.mu.Lock()
	m.screens = append(m.screens, screen)
	m.mu.Unlock()

	m.notify(navflow.HostEvent{Kind: navflow.HostTopShown, Screen: screen})
}

func (m *Memory) notify(evt navflow.HostEvent) {
	m.mu.Lock()
	fns := make([]func(navflow.HostEvent), 0, len(m.observers))
	for i := 0; i < m.nextObs; i++ {
		if fn, ok := m.observers[i]; ok {
			fns = append(fns, fn)
		}
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(evt)
	}
}
