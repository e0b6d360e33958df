package config_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/navflow/pkg/navflow/config"
)

func TestDefaultSettings(t *testing.T) {
	s := config.DefaultSettings()
	assert.Equal(t, slog.LevelInfo, s.LogLevel)
	assert.Equal(t, "text", s.LogFormat)
	assert.Equal(t, config.DefaultMaxHops, s.MaxHops)
	assert.Equal(t, config.DriverNone, s.Checkpoint.Driver)
	assert.NoError(t, s.Validate())
}

func TestLoadSettings(t *testing.T) {
	cfg, err := config.FromYAML([]byte(`
session_id: device-42
log_level: debug
log_format: JSON
metrics: true
tracing: true
dry_run:
  max_hops: 50
checkpoint:
  driver: sqlite
  path: ./navigation.db
`))
	require.NoError(t, err)

	s, err := config.LoadSettings(cfg)
	require.NoError(t, err)
	assert.Equal(t, config.Settings{
		SessionID: "device-42",
		LogLevel:  slog.LevelDebug,
		LogFormat: "json",
		Metrics:   true,
		Tracing:   true,
		MaxHops:   50,
		Checkpoint: config.CheckpointSettings{
			Driver: config.DriverSQLite,
			Path:   "./navigation.db",
		},
	}, s)
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad level", "log_level: loud"},
		{"bad format", "log_format: xml"},
		{"zero hops", "dry_run: {max_hops: 0}"},
		{"unknown driver", "checkpoint: {driver: redis}"},
		{"sqlite without path", "checkpoint: {driver: sqlite}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.FromYAML([]byte(tt.yaml))
			require.NoError(t, err)

			_, err = config.LoadSettings(cfg)
			assert.ErrorIs(t, err, config.ErrInvalidSettings)
		})
	}
}

func TestSettings_ValidateJoinsErrors(t *testing.T) {
	s := config.Settings{LogFormat: "xml", MaxHops: -1, Checkpoint: config.CheckpointSettings{Driver: "redis"}}
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_hops")
	assert.Contains(t, err.Error(), "log_format")
	assert.Contains(t, err.Error(), "checkpoint.driver")
}
