package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks defaults and format validations for Config.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Nil config.
	require.Error(t, Validate(nil))

	// Empty config gets all defaults.
	cfg := new(Config)

	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultListenAddress, cfg.ListenAddress)
	require.Equal(t, DefaultTickPeriod, cfg.TickPeriod)
	require.Equal(t, DefaultTagsFilename, cfg.TagsFile)
	require.Equal(t, DefaultUpdatePeriod, cfg.Stream.UpdatePeriod)
	require.Equal(t, DefaultHeartbeatPeriod, cfg.Stream.HeartbeatPeriod)

	// Bad listen address.
	cfg = &Config{ListenAddress: "bad:address"}
	require.Error(t, Validate(cfg))

	// Negative tick period.
	cfg = &Config{TickPeriod: -time.Second}
	require.Error(t, Validate(cfg))
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := &Config{
		ListenAddress: "127.0.0.1:8085",
		TickPeriod:    500 * time.Millisecond,
		TagsFile:      "tags.yaml",
		ScenariosFile: "scenarios.yaml",
		Stream: StreamConfig{
			UpdatePeriod:    2 * time.Second,
			HeartbeatPeriod: 10 * time.Second,
		},
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.ListenAddress, loaded.ListenAddress)
	require.Equal(t, cfg.TickPeriod, loaded.TickPeriod)
	require.Equal(t, cfg.Stream.UpdatePeriod, loaded.Stream.UpdatePeriod)
}

// TestLoadMissingFileYieldsDefaults asserts an absent file is not an error.
func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultListenAddress, cfg.ListenAddress)
}
