package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Checkpoint drivers.
const (
	DriverNone   = ""
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// DefaultMaxHops mirrors the engine's dry-run default.
const DefaultMaxHops = 100

// ErrInvalidSettings indicates settings that cannot be used.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings is the typed configuration the engine consumes.
//
//	session_id: device-42
//	log_level: debug        # debug | info | warn | error
//	log_format: json        # text | json
//	metrics: true
//	tracing: true
//	dry_run:
//	  max_hops: 50
//	checkpoint:
//	  driver: sqlite        # memory | sqlite
//	  path: ./navigation.db
type Settings struct {
	SessionID  string
	LogLevel   slog.Level
	LogFormat  string
	Metrics    bool
	Tracing    bool
	MaxHops    int
	Checkpoint CheckpointSettings
}

// CheckpointSettings selects the snapshot store.
type CheckpointSettings struct {
	Driver string
	Path   string
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		LogLevel:  slog.LevelInfo,
		LogFormat: "text",
		MaxHops:   DefaultMaxHops,
	}
}

// LoadSettings reads Settings from cfg, starting from DefaultSettings, and
// validates the result.
func LoadSettings(cfg Config) (Settings, error) {
	s := DefaultSettings()
	s.SessionID = cfg.String("session_id", s.SessionID)
	s.LogFormat = strings.ToLower(cfg.String("log_format", s.LogFormat))
	s.Metrics = cfg.Bool("metrics", s.Metrics)
	s.Tracing = cfg.Bool("tracing", s.Tracing)
	s.MaxHops = cfg.Int("dry_run.max_hops", s.MaxHops)
	s.Checkpoint.Driver = strings.ToLower(cfg.String("checkpoint.driver", s.Checkpoint.Driver))
	s.Checkpoint.Path = cfg.String("checkpoint.path", s.Checkpoint.Path)

	if level := cfg.String("log_level", ""); level != "" {
		if err := s.LogLevel.UnmarshalText([]byte(level)); err != nil {
			return Settings{}, fmt.Errorf("%w: log_level %q", ErrInvalidSettings, level)
		}
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks that the settings can be used.
func (s Settings) Validate() error {
	var errs []error
	if s.MaxHops <= 0 {
		errs = append(errs, fmt.Errorf("%w: dry_run.max_hops must be positive, got %d", ErrInvalidSettings, s.MaxHops))
	}
	switch s.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("%w: log_format %q", ErrInvalidSettings, s.LogFormat))
	}
	switch s.Checkpoint.Driver {
	case DriverNone, DriverMemory:
	case DriverSQLite:
		if s.Checkpoint.Path == "" {
			errs = append(errs, fmt.Errorf("%w: checkpoint.path is required for sqlite", ErrInvalidSettings))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: checkpoint.driver %q", ErrInvalidSettings, s.Checkpoint.Driver))
	}
	return errors.Join(errs...)
}
