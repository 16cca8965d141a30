package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/wildtrail/wildtrail/internal/daemon"
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to listen on (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveMetrics, "metrics", false, "Expose Prometheus /metrics (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

var (
	serveHost    string
	servePort    int
	serveMetrics bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the wildtrail API server",
	Long:  `Start the progression HTTP API, the expiry sweeper and the health checker.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}

	// Override config from flags
	if serveHost != "" {
		cfg.API.Host = serveHost
	}
	if servePort > 0 {
		cfg.API.Port = servePort
	}
	if serveMetrics {
		cfg.Telemetry.Prometheus = true
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	d, err := daemon.NewWithConfig(cfg, log)
	if err != nil {
		return err
	}
	defer d.Close()

	return d.Serve(context.Background())
}
