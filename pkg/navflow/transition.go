package navflow

import (
	"fmt"
	"strconv"
	"strings"
)

// TransitionKind is the semantic category of a transition. Values are named
// tags, not tied to any host API.
type TransitionKind string

const (
	TransitionPush    TransitionKind = "push"    // append to the host stack
	TransitionModal   TransitionKind = "modal"   // present as an overlay layer
	TransitionPop     TransitionKind = "pop"     // remove the top of the host stack
	TransitionPopTo   TransitionKind = "pop_to"  // remove until the host stack has Index+1 screens
	TransitionDismiss TransitionKind = "dismiss" // close the topmost overlay
	TransitionNone    TransitionKind = "none"    // no host-visible change
)

// Transition is a transition kind plus the target index for pop_to.
type Transition struct {
	Kind TransitionKind
	// Index is the zero-based host stack index to pop back to. Only
	// meaningful for TransitionPopTo; 0 means the root screen.
	Index int
}

// Predefined transitions.
var (
	Push    = Transition{Kind: TransitionPush}
	Modal   = Transition{Kind: TransitionModal}
	Pop     = Transition{Kind: TransitionPop}
	Dismiss = Transition{Kind: TransitionDismiss}
	None    = Transition{Kind: TransitionNone}
)

// PopTo returns a transition that pops the host stack back to index n.
func PopTo(n int) Transition {
	return Transition{Kind: TransitionPopTo, Index: n}
}

// IsBackward reports whether t removes screens (pop, pop_to, dismiss).
// Backward transitions execute immediately regardless of how the source
// screen was presented.
func (t Transition) IsBackward() bool {
	switch t.Kind {
	case TransitionPop, TransitionPopTo, TransitionDismiss:
		return true
	}
	return false
}

// IsForward reports whether t presents a new screen (push, modal).
func (t Transition) IsForward() bool {
	return t.Kind == TransitionPush || t.Kind == TransitionModal
}

// String returns "push", "modal", "pop", "pop_to(n)", "dismiss" or "none".
func (t Transition) String() string {
	if t.Kind == TransitionPopTo {
		return fmt.Sprintf("%s(%d)", t.Kind, t.Index)
	}
	return string(t.Kind)
}

// ParseTransition parses the String form of a transition. "pop_to" without
// an index means index 0.
func ParseTransition(s string) (Transition, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch TransitionKind(s) {
	case TransitionPush, TransitionModal, TransitionPop, TransitionDismiss, TransitionNone:
		return Transition{Kind: TransitionKind(s)}, nil
	case TransitionPopTo:
		return PopTo(0), nil
	}

	rest, ok := strings.CutPrefix(s, string(TransitionPopTo)+"(")
	if ok && strings.HasSuffix(rest, ")") {
		n, err := strconv.Atoi(strings.TrimSuffix(rest, ")"))
		if err == nil && n >= 0 {
			return PopTo(n), nil
		}
	}
	return Transition{}, fmt.Errorf("unknown transition %q", s)
}
