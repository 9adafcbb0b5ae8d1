package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// StreamConfig holds per-session streaming defaults.
// Clients may override both periods when they subscribe.
type StreamConfig struct {
	// UpdatePeriod is the default interval between value batches per session.
	UpdatePeriod time.Duration `yaml:"update_period"`
	// HeartbeatPeriod is the default interval between liveness pings per session.
	HeartbeatPeriod time.Duration `yaml:"heartbeat_period"`
}

// Config holds runtime parameters for the simulator process.
type Config struct {
	// ListenAddress is the HTTP listen address for the API, stream and metrics endpoints.
	ListenAddress string `yaml:"listen_addr"`
	// TickPeriod is the interval of the shared clock driving value recomputation.
	TickPeriod time.Duration `yaml:"tick_period"`
	// TagsFile is the path to the YAML file holding tag definitions.
	TagsFile string `yaml:"tags_file"`
	// ScenariosFile is the path to the YAML file holding scenario definitions.
	ScenariosFile string `yaml:"scenarios_file"`
	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
	// Stream holds per-session streaming defaults.
	Stream StreamConfig `yaml:"stream"`
}

const (
	// DefaultConfigFilename is the default filename for simulator settings.
	DefaultConfigFilename = "pi-simulator-settings.yaml"

	// DefaultListenAddress is the default HTTP listen address.
	DefaultListenAddress = ":8080"

	// DefaultTickPeriod is the default interval of the shared simulation clock.
	DefaultTickPeriod = time.Second

	// DefaultTagsFilename is the default filename for tag definitions.
	DefaultTagsFilename = "pi-simulator-tags.yaml"

	// DefaultScenariosFilename is the default filename for scenario definitions.
	DefaultScenariosFilename = "pi-simulator-scenarios.yaml"

	// DefaultUpdatePeriod is the default per-session output interval.
	DefaultUpdatePeriod = time.Second

	// DefaultHeartbeatPeriod is the default per-session liveness ping interval.
	DefaultHeartbeatPeriod = 30 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNegativeTickPeriod is returned when the tick period is negative.
	errNegativeTickPeriod = errors.New("tick period must not be negative")
)

// Load reads configuration from the provided path and validates essential fields.
// An absent file yields the defaults rather than an error so the simulator can
// run without any configuration at all.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := new(Config)
			if err = Validate(cfg); err != nil {
				return nil, err
			}

			return cfg, nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err = yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and fills defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.ListenAddress); err != nil {
		return fmt.Errorf("invalid listen address: %w", err)
	}

	if cfg.TickPeriod < 0 {
		return errNegativeTickPeriod
	}

	if cfg.TickPeriod == 0 {
		cfg.TickPeriod = DefaultTickPeriod
	}

	if cfg.TagsFile == "" {
		cfg.TagsFile = DefaultTagsFilename
	}

	if cfg.ScenariosFile == "" {
		cfg.ScenariosFile = DefaultScenariosFilename
	}

	if cfg.Stream.UpdatePeriod <= 0 {
		cfg.Stream.UpdatePeriod = DefaultUpdatePeriod
	}

	if cfg.Stream.HeartbeatPeriod <= 0 {
		cfg.Stream.HeartbeatPeriod = DefaultHeartbeatPeriod
	}

	return nil
}
