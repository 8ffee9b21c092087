package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/MakeNowJust/heredoc"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jan-sykora/api-demo/internal/config"
	"github.com/jan-sykora/api-demo/internal/logging"
	"github.com/jan-sykora/api-demo/internal/server"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		zlog.Error().Err(err).Msg("server failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		addr      string
		configDir string
		verbose   bool
	)
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Serve the usage event and image store APIs",
		Long: heredoc.Doc(`
			Serves the EventService and ImageService as JSON over HTTP.

			The same port answers gRPC health checks and reflection, so
			tools like grpcurl work against it:

			  grpcurl -plaintext localhost:8080 grpc.health.v1.Health/Check

			Settings are read from settings.toml, settings.yaml or
			settings.json in the config directory.
		`),
		Version:       version + " (" + commit + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.Setup(os.Stderr, verbose)
			if configDir != "" {
				if err := os.Setenv(config.EnvConfigDir, configDir); err != nil {
					return err
				}
			}
			settings, handle, err := config.LoadSettings()
			if err != nil {
				return err
			}
			log.Debug().Str("path", handle.Path).Str("format", string(handle.Format)).Msg("settings loaded")
			if cmd.Flags().Changed("addr") {
				settings.Server.HTTPAddr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx, server.Config{
				Addr:            settings.Server.HTTPAddr,
				ShutdownTimeout: settings.Server.ShutdownTimeout.Std(),
				Logger:          log,
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", config.ServerHTTPAddrDefault, "HTTP listen address")
	cmd.Flags().StringVar(&configDir, "config", "", "config directory (defaults to $"+config.EnvConfigDir+" or the user config dir)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	return cmd
}
