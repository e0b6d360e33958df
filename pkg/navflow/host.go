package navflow

// Op is a host stack command.
type Op string

const (
	// OpAppend pushes Screen on top of the host stack.
	OpAppend Op = "append"
	// OpRemoveTop removes the top screen.
	OpRemoveTop Op = "remove_top"
	// OpTruncate removes screens until Length remain.
	OpTruncate Op = "truncate"
	// OpShowOverlay presents Screen as an overlay layer.
	OpShowOverlay Op = "show_overlay"
	// OpCloseOverlay closes the topmost overlay and everything above it.
	OpCloseOverlay Op = "close_overlay"
)

// Command is an instruction to the host stack.
type Command struct {
	Op Op
	// Screen is set for OpAppend and OpShowOverlay.
	Screen HostScreen
	// Length is set for OpTruncate.
	Length int
}

// Metadata is the navigation context attached to a host screen when it is
// presented. Reconciliation reads it back to rebuild the controller's model
// from whatever the host stack currently shows.
type Metadata struct {
	Node       Node
	Graph      *Graph
	Trail      Trail
	Transition Transition
	Input      any
}

// HostScreen is one screen on the host stack.
type HostScreen struct {
	// Key correlates the screen with the controller. It is unique per
	// presentation within a session.
	Key string
	// Handle is what the presenter returned.
	Handle Handle
	// Overlay is true for screens shown with OpShowOverlay.
	Overlay bool
	// Meta is the navigation metadata. Screens the controller did not
	// present have none.
	Meta *Metadata
}

// HostEventKind identifies a host stack notification.
type HostEventKind string

const (
	// HostTopShown reports that a new top screen finished appearing.
	HostTopShown HostEventKind = "top_shown"
	// HostOverlayDismissed reports that the user dismissed an overlay.
	HostOverlayDismissed HostEventKind = "overlay_dismissed"
	// HostPopped reports that screens were removed outside the controller,
	// for example by a back gesture.
	HostPopped HostEventKind = "popped"
)

// HostEvent is a host stack notification.
type HostEvent struct {
	Kind HostEventKind
	// Screen is the screen that appeared or was removed, when known.
	Screen HostScreen
}

// HostStack is the authoritative record of what is on screen. The
// controller commands it and observes it, but never assumes its own model
// is correct: after every acknowledged command and every notification it
// rebuilds from Screens.
type HostStack interface {
	// Apply executes cmd. done is called once the host has finished the
	// change, possibly after an animation; hosts that finish synchronously
	// may call it before Apply returns. done is not called when Apply
	// returns an error.
	Apply(cmd Command, done func()) error

	// Screens returns the current screens, bottom first.
	Screens() []HostScreen

	// Observe registers fn for notifications and returns a function that
	// removes it.
	Observe(fn func(HostEvent)) (cancel func())
}
