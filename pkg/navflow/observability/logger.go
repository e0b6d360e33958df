// Package observability provides structured logging, metrics, and tracing
// helpers for navflow.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
)

// EnrichLogger adds session context to a logger.
//
// Example:
//
//	enriched := EnrichLogger(logger, "session-123")
//	enriched.Info("restored") // includes session_id
func EnrichLogger(logger *slog.Logger, sessionID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("session_id", sessionID))
}

// LogVisit logs arrival at a node.
func LogVisit(logger *slog.Logger, nodeID, kind, graph string, depth int) {
	if logger == nil {
		return
	}
	logger.Debug("visiting node",
		slog.String("node_id", nodeID),
		slog.String("node_kind", kind),
		slog.String("graph", graph),
		slog.Int("depth", depth),
	)
}

// LogEdgeEvaluated logs a single edge eligibility check. mismatch is the
// type mismatch that made the edge ineligible, if any.
func LogEdgeEvaluated(logger *slog.Logger, edgeID string, eligible bool, mismatch error) {
	if logger == nil {
		return
	}
	attrs := []any{
		slog.String("edge_id", edgeID),
		slog.Bool("eligible", eligible),
	}
	if mismatch != nil {
		attrs = append(attrs, slog.String("mismatch", mismatch.Error()))
	}
	logger.Debug("edge evaluated", attrs...)
}

// LogNoEligibleEdge logs a resolution that exhausted every frame. The
// current screen stays displayed.
func LogNoEligibleEdge(logger *slog.Logger, nodeID, graph string, depth int) {
	if logger == nil {
		return
	}
	logger.Info("no eligible transition",
		slog.String("node_id", nodeID),
		slog.String("graph", graph),
		slog.Int("depth", depth),
	)
}

// LogSubgraphEntered logs descending into a subgraph.
func LogSubgraphEntered(logger *slog.Logger, subgraphID string, depth int) {
	if logger == nil {
		return
	}
	logger.Debug("subgraph entered",
		slog.String("subgraph_id", subgraphID),
		slog.Int("depth", depth),
	)
}

// LogSubgraphExited logs climbing out of a subgraph during resolution.
func LogSubgraphExited(logger *slog.Logger, subgraphID string, depth int) {
	if logger == nil {
		return
	}
	logger.Debug("subgraph exited",
		slog.String("subgraph_id", subgraphID),
		slog.Int("depth", depth),
	)
}

// LogDispatch logs a transition being dispatched to the host stack.
func LogDispatch(logger *slog.Logger, edgeID, transition string) {
	if logger == nil {
		return
	}
	logger.Debug("dispatching transition",
		slog.String("edge_id", edgeID),
		slog.String("kind", transition),
	)
}

// LogStackRebuilt logs a reconciliation pass.
func LogStackRebuilt(logger *slog.Logger, screens, entries int) {
	if logger == nil {
		return
	}
	logger.Debug("stack rebuilt",
		slog.Int("stack_len", screens),
		slog.Int("entries", entries),
	)
}

// LogNodeError logs a failure while processing or presenting a node.
func LogNodeError(logger *slog.Logger, nodeID string, err error) {
	if logger == nil {
		return
	}
	logger.Error("node failed",
		slog.String("node_id", nodeID),
		slog.String("error", err.Error()),
	)
}

// LogCheckpoint logs a saved navigation snapshot.
func LogCheckpoint(logger *slog.Logger, sessionID string, sequence, sizeBytes int) {
	if logger == nil {
		return
	}
	logger.Debug("checkpoint saved",
		slog.String("session_id", sessionID),
		slog.Int("sequence", sequence),
		slog.Int("size_bytes", sizeBytes),
	)
}

// LogCheckpointError logs checkpoint failure (non-fatal).
func LogCheckpointError(logger *slog.Logger, sessionID string, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("checkpoint failed",
		slog.String("session_id", sessionID),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}
