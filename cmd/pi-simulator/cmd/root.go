package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/config"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/service/simulator"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// rootCmd represents the base command for running the simulator.
	rootCmd = &cobra.Command{
		Use:   "pi-simulator [listen-address]",
		Short: "Run the process-data historian simulator.",
		Long: `Starts the simulator serving a synthetic process-data feed over HTTP.

A fixed catalogue of process tags continuously produces noisy values on a
shared clock, optionally distorted by time-bounded fault scenarios, and is
exposed to WebSocket subscribers, a polling API and Prometheus metrics.
Tag and scenario definitions are persisted as YAML and seeded with the
built-in set on first run.
Listen address can be provided as argument to override config (e.g., :9090).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &simulator.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
			}

			return simulator.Run(ctx, options)
		},
	}
)

// Execute runs the pi-simulator CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
}
