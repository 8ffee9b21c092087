package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jan-sykora/api-demo/internal/apiclient"
	"github.com/jan-sykora/api-demo/internal/config"
	"github.com/jan-sykora/api-demo/internal/logging"
	"github.com/jan-sykora/api-demo/internal/storage"
	"github.com/jan-sykora/api-demo/internal/telemetry"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		zlog.Error().Err(err).Msg("client failed")
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags and settings are merged.
type app struct {
	configDir string
	basePath  string
	token     string
	timeout   time.Duration
	output    string
	verbose   bool

	settings  config.Settings
	log       zerolog.Logger
	telemetry telemetry.Instrumenter
	client    *apiclient.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Talk to the api-demo server",
		Long: heredoc.Doc(`
			Command line client for the usage event and image store APIs.

			Every call is built from the HTTP binding of its RPC, so
			the requests match what the gateway expects:

			  client events list --page-size 5
			  client images upload cat.png
			  client gallery add dog.jpg
		`),
		Version:       version + " (" + commit + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.telemetry == nil {
				return nil
			}
			ctx, cancel := context.WithTimeout(context.WithoutCancel(cmd.Context()), 5*time.Second)
			defer cancel()
			return a.telemetry.Shutdown(ctx)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configDir, "config", "", "config directory (defaults to $"+config.EnvConfigDir+" or the user config dir)")
	flags.StringVar(&a.basePath, "base-path", "", "server base URL (default from settings, "+config.ClientBasePathDefault+")")
	flags.StringVar(&a.token, "token", "", "bearer token sent with every call")
	flags.DurationVar(&a.timeout, "timeout", 0, "request timeout (default from settings)")
	flags.StringVarP(&a.output, "output", "o", outputTable, "output format: table, json or yaml")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(newEventsCmd(a), newImagesCmd(a), newGalleryCmd(a))
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	a.log = logging.Setup(os.Stderr, a.verbose)
	cmd.SetContext(a.log.WithContext(cmd.Context()))

	if a.configDir != "" {
		if err := os.Setenv(config.EnvConfigDir, a.configDir); err != nil {
			return err
		}
	}
	settings, _, err := config.LoadSettings()
	if err != nil {
		return err
	}
	settings = config.ApplyEnv(settings, os.Getenv)
	if a.basePath != "" {
		settings.Client.BasePath = a.basePath
	}
	if a.token != "" {
		settings.Client.BearerToken = a.token
	}
	if a.timeout > 0 {
		settings.Client.Timeout = config.Duration(a.timeout)
	}
	a.settings = settings

	telCfg := telemetry.ConfigFromEnv(os.Getenv)
	telCfg.Endpoint = settings.Telemetry.Endpoint
	telCfg.Insecure = settings.Telemetry.Insecure
	if settings.Telemetry.ServiceName != "" {
		telCfg.ServiceName = settings.Telemetry.ServiceName
	}
	telCfg.Version = version
	instr, err := telemetry.New(telCfg)
	if err != nil {
		a.log.Warn().Err(err).Msg("tracing disabled")
		instr = telemetry.Noop()
	}
	a.telemetry = instr

	a.client = apiclient.New(apiclient.Options{
		BasePath:    settings.Client.BasePath,
		BearerToken: settings.Client.BearerToken,
		Timeout:     settings.Client.Timeout.Std(),
		Logger:      &a.log,
		Telemetry:   instr,
	})
	return nil
}

// openStore opens the local gallery store picked in settings.
func (a *app) openStore() (storage.KV, error) {
	path := a.settings.Storage.Path
	if path == "" {
		name := "gallery.json"
		if a.settings.Storage.Driver == config.StorageDriverSQLite {
			name = "gallery.db"
		}
		path = filepath.Join(config.Dir(), name)
	}
	return storage.Open(string(a.settings.Storage.Driver), path)
}
