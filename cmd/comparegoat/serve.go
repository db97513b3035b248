package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/CompareGoat/internal/api"
	"github.com/IshaanNene/CompareGoat/internal/config"
	"github.com/IshaanNene/CompareGoat/internal/observability"
)

// serveCmd creates the "serve" subcommand.
func serveCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve comparisons over a JSON HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(func(c *config.Config) {
				if port > 0 {
					c.API.Port = port
				}
			})
			if err != nil {
				return err
			}

			logger := observability.NewLogger(&cfg.Logging, os.Stderr, verbose)
			a, err := newApp(cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := api.NewServer(&cfg.API, a.service, a.metrics, logger)
			srv.SetMaxRelated(cfg.Discovery.PerQueryMax)
			if h, ok := a.store.(api.History); ok {
				srv.SetHistory(h)
			}
			if err := srv.Start(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()
			logger.Info("shutting down API server")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (0 = use config)")
	return cmd
}
