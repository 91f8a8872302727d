package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/brnhrs/warhorse-server/internal/app"
	"github.com/brnhrs/warhorse-server/internal/config"
	applog "github.com/brnhrs/warhorse-server/internal/log"
)

func main() {
	var (
		configPath string
		logLevel   string
		addr       string
	)

	root := &cobra.Command{
		Use:   "warhorse-server",
		Short: "Friend-graph and chat backend for multiplayer game clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := applog.New(logLevel)

			cfg, resolvedPath, err := config.Load(logger, configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if addr != "" {
				cfg.Addr = addr
			}
			logger.Info().Str("config", resolvedPath).Msg("configuration resolved")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(&cfg, logger)
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}

			logger.Info().Str("addr", cfg.Addr).Msg("starting server")
			if err := application.Run(ctx); err != nil {
				return fmt.Errorf("server exited with error: %w", err)
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}

	root.Flags().StringVar(&configPath, "config", "", "path to config.yaml (default: ./config.yaml)")
	root.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	root.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
