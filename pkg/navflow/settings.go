package navflow

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/randalmurphal/navflow/pkg/navflow/checkpoint"
	"github.com/randalmurphal/navflow/pkg/navflow/config"
	"github.com/randalmurphal/navflow/pkg/navflow/observability"
)

// Runtime is the set of options and resources derived from config.Settings.
type Runtime struct {
	Logger     *slog.Logger
	Store      checkpoint.Store
	Controller []ControllerOption
	DryRun     []DryRunOption
}

// Close releases the checkpoint store, if one was opened.
func (r *Runtime) Close() error {
	if r.Store == nil {
		return nil
	}
	return r.Store.Close()
}

// OptionsFromSettings turns settings into controller and dry-run options.
// Logs are written to w in the configured format and level. The caller owns
// the returned Runtime and must Close it.
//
// Example:
//
//	cfg, _ := config.FromFile("navflow.yaml")
//	settings, err := config.LoadSettings(cfg)
//	rt, err := navflow.OptionsFromSettings(settings, os.Stderr)
//	defer rt.Close()
//	ctrl := navflow.NewController(root, host, presenters, rt.Controller...)
func OptionsFromSettings(s config.Settings, w io.Writer) (*Runtime, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	handlerOpts := &slog.HandlerOptions{Level: s.LogLevel}
	var handler slog.Handler = slog.NewTextHandler(w, handlerOpts)
	if s.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	}
	rt := &Runtime{Logger: slog.New(handler)}

	rt.Controller = append(rt.Controller, WithLogger(rt.Logger))
	rt.DryRun = append(rt.DryRun, WithMaxHops(s.MaxHops), WithDryRunObserver(NewLogObserver(rt.Logger)))
	if s.SessionID != "" {
		rt.Controller = append(rt.Controller, WithSessionID(s.SessionID))
	}
	if s.Metrics {
		metrics := observability.NewMetricsRecorder()
		rt.Controller = append(rt.Controller, WithMetrics(metrics))
		rt.DryRun = append(rt.DryRun, WithDryRunMetrics(metrics))
	}
	if s.Tracing {
		spans := observability.NewSpanManager()
		rt.Controller = append(rt.Controller, WithTracing(spans))
		rt.DryRun = append(rt.DryRun, WithDryRunTracing(spans))
	}

	switch s.Checkpoint.Driver {
	case config.DriverMemory:
		rt.Store = checkpoint.NewMemoryStore()
	case config.DriverSQLite:
		store, err := checkpoint.NewSQLiteStore(s.Checkpoint.Path)
		if err != nil {
			return nil, fmt.Errorf("open checkpoint store: %w", err)
		}
		rt.Store = store
	}
	if rt.Store != nil {
		rt.Controller = append(rt.Controller, WithCheckpointing(rt.Store))
	}
	return rt, nil
}
