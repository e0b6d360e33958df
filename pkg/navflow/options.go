package navflow

import (
	"io"
	"log/slog"

	"github.com/randalmurphal/navflow/pkg/navflow/checkpoint"
	"github.com/randalmurphal/navflow/pkg/navflow/observability"
)

// controllerConfig holds controller configuration.
type controllerConfig struct {
	logger    *slog.Logger
	observer  Observer
	sessionID string
	store     checkpoint.Store
	metrics   observability.MetricsRecorder
	spans     observability.SpanManager
	onError   func(error)
}

func defaultControllerConfig() controllerConfig {
	return controllerConfig{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// ControllerOption configures a Controller.
type ControllerOption func(*controllerConfig)

// WithLogger sets the logger. The default discards everything.
// Traversal events are logged at debug level, stuck resolutions at info,
// and failures at warn or error.
func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *controllerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver adds an observer for traversal events. It may be given more
// than once; observers are called in the order they were added.
func WithObserver(obs Observer) ControllerOption {
	return func(c *controllerConfig) {
		c.observer = Observers(c.observer, obs)
	}
}

// WithSessionID sets the session ID used in logs, events, and checkpoints.
// Default: a random UUID.
func WithSessionID(id string) ControllerOption {
	return func(c *controllerConfig) {
		c.sessionID = id
	}
}

// WithCheckpointing persists a snapshot after every reconciliation.
// Checkpoint failures are logged and never interrupt navigation.
//
// Example:
//
//	store, _ := checkpoint.NewSQLiteStore("./navigation.db")
//	ctrl := navflow.NewController(root, host, presenters,
//	    navflow.WithCheckpointing(store),
//	    navflow.WithSessionID("device-42"),
//	)
func WithCheckpointing(store checkpoint.Store) ControllerOption {
	return func(c *controllerConfig) {
		c.store = store
	}
}

// WithMetrics records transitions, stuck resolutions, and rebuilds.
func WithMetrics(metrics observability.MetricsRecorder) ControllerOption {
	return func(c *controllerConfig) {
		if metrics != nil {
			c.metrics = metrics
		}
	}
}

// WithTracing starts a span for each dispatched transition.
func WithTracing(spans observability.SpanManager) ControllerOption {
	return func(c *controllerConfig) {
		if spans != nil {
			c.spans = spans
		}
	}
}

// WithErrorHandler receives errors raised after a completion callback or a
// deferred host acknowledgement, where there is no caller to return them
// to. The default logs them at error level.
func WithErrorHandler(fn func(error)) ControllerOption {
	return func(c *controllerConfig) {
		c.onError = fn
	}
}
