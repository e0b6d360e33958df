package navflow

import (
	"errors"
	"fmt"
	"reflect"
)

// Sentinel errors for graph construction.
var (
	// ErrDuplicateNodeID indicates a node ID is already registered in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownEndpoint indicates an edge references an unregistered node.
	ErrUnknownEndpoint = errors.New("edge endpoint not registered")

	// ErrInvalidSubgraph indicates a subgraph's entry or exit does not match its declaration.
	ErrInvalidSubgraph = errors.New("invalid subgraph")

	// ErrSubgraphCycle indicates a subgraph contains itself, directly or indirectly.
	ErrSubgraphCycle = errors.New("subgraph contains itself")

	// ErrInvalidNode indicates a node with an empty ID or a nil value.
	ErrInvalidNode = errors.New("invalid node")

	// ErrInvalidEdge indicates an edge with missing endpoints or transform.
	ErrInvalidEdge = errors.New("invalid edge")
)

// Sentinel errors for traversal.
var (
	// ErrNodeNotFound indicates a node ID is not registered in the graph being searched.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoPresenter indicates no presenter can handle a UI-bearing node.
	ErrNoPresenter = errors.New("no presenter can handle node")

	// ErrTypeMismatch indicates a value does not have the type an edge or node declares.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrNotStarted indicates an operation that requires an active flow was called on an idle controller.
	ErrNotStarted = errors.New("controller not started")

	// ErrAlreadyStarted indicates Start or Restore was called twice.
	ErrAlreadyStarted = errors.New("controller already started")

	// ErrMissingMetadata indicates a host screen carries no navigation metadata.
	ErrMissingMetadata = errors.New("host screen has no navigation metadata")

	// ErrUnknownHandle indicates a completion for a screen that is not on the host stack.
	ErrUnknownHandle = errors.New("unknown presentation handle")

	// ErrHostNotEmpty indicates Restore was called with screens already on the host stack.
	ErrHostNotEmpty = errors.New("host stack is not empty")
)

// Sentinel errors for simulation.
var (
	// ErrSimulationExceeded indicates a dry run exceeded its hop cap.
	ErrSimulationExceeded = errors.New("simulation exceeded maximum hops")

	// ErrNoOutput indicates the output provider declined to produce an output for a node.
	ErrNoOutput = errors.New("no synthetic output for node")

	// ErrInvalidMaxHops indicates a negative dry-run hop cap.
	ErrInvalidMaxHops = errors.New("max hops must not be negative")
)

// ConfigurationError reports a programming mistake in how a graph or
// controller was wired. It is never caused by runtime data.
type ConfigurationError struct {
	// Op is the operation that detected the problem ("add_node", "add_edge", "present", ...).
	Op string
	// NodeID is the node involved, if any.
	NodeID string
	// EdgeID is the edge involved, if any.
	EdgeID string
	// Err is the underlying sentinel or cause.
	Err error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	switch {
	case e.EdgeID != "":
		return fmt.Sprintf("navflow: %s: edge %s: %v", e.Op, e.EdgeID, e.Err)
	case e.NodeID != "":
		return fmt.Sprintf("navflow: %s: node %s: %v", e.Op, e.NodeID, e.Err)
	default:
		return fmt.Sprintf("navflow: %s: %v", e.Op, e.Err)
	}
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// TypeMismatchError describes a value that does not have the type an edge
// expects for its source output.
type TypeMismatchError struct {
	// EdgeID is the edge whose contract was violated.
	EdgeID string
	// Want is the declared type.
	Want reflect.Type
	// Got is the dynamic type of the value, nil for a nil value.
	Got reflect.Type
}

// Error implements the error interface.
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("edge %s: want %s, got %s", e.EdgeID, typeName(e.Want), typeName(e.Got))
}

// Unwrap returns ErrTypeMismatch for errors.Is support.
func (e *TypeMismatchError) Unwrap() error {
	return ErrTypeMismatch
}

// NodeError wraps an error returned while running or presenting a node.
type NodeError struct {
	// NodeID is the identifier of the node that failed.
	NodeID string
	// Op is the operation that failed ("process", "present", "update").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s: %s: %v", e.NodeID, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *NodeError) Unwrap() error {
	return e.Err
}

// PanicError captures a panic raised by a headless node.
type PanicError struct {
	// NodeID is the identifier of the node that panicked.
	NodeID string
	// Value is the value passed to panic().
	Value any
	// Stack is the stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("node %s panicked: %v", e.NodeID, e.Value)
}

// SimulationExceededError is returned by DryRun when the simulated path
// takes more hops than allowed, which usually means an unintended cycle.
type SimulationExceededError struct {
	// MaxHops is the configured cap.
	MaxHops int
	// LastNodeID is the node the simulation was leaving when it stopped.
	LastNodeID string
	// Path holds the node IDs visited so far, in order.
	Path []string
}

// Error implements the error interface.
func (e *SimulationExceededError) Error() string {
	return fmt.Sprintf("exceeded maximum hops (%d) at node %s", e.MaxHops, e.LastNodeID)
}

// Unwrap returns ErrSimulationExceeded for errors.Is support.
func (e *SimulationExceededError) Unwrap() error {
	return ErrSimulationExceeded
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
