// File: cmd/root.go
package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/wisdark/tsunami-security-scanner/internal/config"
	"github.com/wisdark/tsunami-security-scanner/internal/network"
	"github.com/wisdark/tsunami-security-scanner/internal/observability"
	"github.com/wisdark/tsunami-security-scanner/internal/plugin"
	"github.com/wisdark/tsunami-security-scanner/internal/plugin/catalog"
	"github.com/wisdark/tsunami-security-scanner/internal/plugin/payload"
	"github.com/wisdark/tsunami-security-scanner/internal/plugin/tcs"
	"github.com/wisdark/tsunami-security-scanner/internal/server"
)

// NewRootCommand builds the plugin-server command. Flags mirror the options
// the orchestrator passes when it spawns a language server.
func NewRootCommand() *cobra.Command {
	cmd, _ := newRootCommand()
	return cmd
}

func newRootCommand() (*cobra.Command, *viper.Viper) {
	v := viper.New()
	config.SetDefaults(v)

	cmd := &cobra.Command{
		Use:           "plugin-server",
		Short:         "Hosts vulnerability detection plugins behind one RPC endpoint.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				return err
			}
			observability.InitializeLogger(cfg.Logger)
			defer observability.Sync()
			return run(cmd.Context(), cfg, observability.GetLogger())
		},
	}

	flags := cmd.Flags()
	flags.Int("port", 34567, "port to listen on")
	flags.Int("threads", 10, "number of worker threads serving RPC calls")
	flags.String("log-output", "/tmp", "server execution log directory")
	flags.Duration("timeout-seconds", 10*time.Second, "timeout for complete outbound HTTP calls")
	flags.String("log-id", "", "id to track logs for all outgoing HTTP calls")
	flags.Bool("trust-all-ssl-cert", true, "trust all SSL certificates on HTTPS traffic")
	flags.String("callback-address", "127.0.0.1", "hostname or IP address of the callback server")
	flags.Int("callback-port", 8881, "callback server port for the HTTP logging service")
	flags.String("polling-uri", "http://127.0.0.1:8880", "callback server URI for log polling")
	flags.Duration("shutdown-grace", 3*time.Second, "how long in-flight calls may finish after a termination signal")

	// Flag names bind onto the structured config keys.
	bindings := map[string]string{
		"server.port":             "port",
		"server.threads":          "threads",
		"server.shutdown_grace":   "shutdown-grace",
		"logger.output_dir":       "log-output",
		"network.timeout":         "timeout-seconds",
		"network.log_id":          "log-id",
		"network.trust_all_certs": "trust-all-ssl-cert",
		"callback.address":        "callback-address",
		"callback.port":           "callback-port",
		"callback.polling_uri":    "polling-uri",
	}
	for key, flagName := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(flagName)); err != nil {
			// Binding only fails on a missing flag, which is a programming
			// error caught by the cmd tests.
			panic(fmt.Sprintf("binding flag %q: %v", flagName, err))
		}
	}

	return cmd, v
}

// run assembles the shared dependencies, builds the plugin set and serves
// until a termination signal arrives. Every failure on this path happens
// before the listener binds; the process never runs with a partial plugin
// set.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	httpClient := network.NewClient(network.ClientConfig{
		Timeout:       cfg.Network.Timeout,
		TrustAllCerts: cfg.Network.TrustAllCerts,
		LogID:         cfg.Network.LogID,
		Logger:        logger.Named("httpclient"),
	})

	callbackClient := tcs.NewClient(
		cfg.Callback.Address,
		cfg.Callback.Port,
		cfg.Callback.PollingURI,
		httpClient,
		logger,
	)

	definitions, err := payload.DefaultDefinitions()
	if err != nil {
		return fmt.Errorf("loading payload definitions: %w", err)
	}
	payloadGenerator, err := payload.NewGenerator(
		payload.RandomSecretGenerator{}, definitions, callbackClient, logger)
	if err != nil {
		return fmt.Errorf("building payload generator: %w", err)
	}

	registry := plugin.NewRegistry()
	if err := catalog.Load(registry); err != nil {
		return err
	}
	pluginSet, err := registry.Build(plugin.Deps{
		HTTPClient:       httpClient,
		PayloadGenerator: payloadGenerator,
		Logger:           logger,
	})
	if err != nil {
		return fmt.Errorf("building plugin set: %w", err)
	}

	srv, err := server.New(cfg.Server, pluginSet, logger)
	if err != nil {
		return fmt.Errorf("building server: %w", err)
	}

	// The orchestrator retires the server with SIGTERM; signal.NotifyContext
	// fires the cancellation exactly once, later signals are no-ops here.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Serve(ctx)
}
