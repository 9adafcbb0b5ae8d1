package simulator

import (
	"context"
	"fmt"

	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/config"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/logger"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/repository/definitions"
)

// Options controls the simulator process and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the HTTP server.
	ListenAddress string
}

// Run starts the simulator and blocks until the context is canceled or the
// HTTP server stops. Configuration is loaded first; tag and scenario
// definitions come from the store, seeded with the built-in set on first run.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "pi-simulator")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	}

	listenAddress := settings.ListenAddress
	if opts.ListenAddress != "" {
		listenAddress = opts.ListenAddress
	}

	repo := definitions.NewFileRepository(settings.TagsFile, settings.ScenariosFile)

	svc, err := newService(ctx, repo, settings)
	if err != nil {
		return fmt.Errorf("initialise service: %w", err)
	}

	return svc.run(ctx, listenAddress)
}
