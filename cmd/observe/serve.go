package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/observation/internal/config"
	"github.com/vango-dev/observation/internal/server"
	"github.com/vango-dev/observation/internal/suspect"
	"github.com/vango-dev/observation/pkg/observation"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		port       int
		host       string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the suspects over HTTP",
		Long: `Serve the demo suspects over HTTP.

GET /suspects/{id}/watch upgrades to a WebSocket that receives
the suspect's report every time a property it read changes.

Examples:
  observe serve
  observe serve --config=observe.json
  observe serve --port=9090 --log-level=debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			// Apply command-line overrides
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to "+config.ConfigFileName+" (default: defaults)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.New(), nil
	}
	return config.LoadFile(path)
}

func runServe(ctx context.Context, cfg *config.Config, logOut io.Writer) error {
	logger := cfg.NewLogger(logOut)
	observation.SetLogger(logger)

	opts := []server.Option{server.WithLogger(logger)}
	if cfg.Metrics.Enabled {
		observation.EnableMetrics(observation.WithNamespace(cfg.Metrics.Namespace))
		opts = append(opts, server.WithMetricsHandler(promhttp.Handler(), cfg.Metrics.Path))
	}
	if cfg.Tracing.Enabled {
		observation.SetTracerName(cfg.Tracing.Name)
	}

	srv := server.New(suspect.Seed(), opts...)
	return srv.Run(ctx, cfg.Address())
}
