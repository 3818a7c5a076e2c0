package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/facturx-fusion/internal/logging"
	"github.com/rezonia/facturx-fusion/internal/server"
	"github.com/rezonia/facturx-fusion/internal/telemetry"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
	enableAPM    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the Factur-X Fusion HTTP API.

Endpoints:
  - GET  /fusion/api/health           - Health check
  - POST /fusion/v1/GenerateFacturX   - Generate from base64 JSON
  - POST /fusion/v2/GenerateFacturX   - Generate from multipart upload
  - POST /fusion/v1/InspectFacturX    - Inspect a hybrid PDF
  - GET  /fusion/openapi.json         - OpenAPI document
  - GET  /fusion/docs/index.html      - Swagger UI

Flags override the config file, which overrides the built-in defaults.

Examples:
  # Start server on default port
  facturx-fusion serve

  # Start with a config file and APM enabled
  facturx-fusion serve --config fusion.yaml --telemetry

  # Start in debug mode
  facturx-fusion serve --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", "", "Server listen address (default from config, :8080)")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 0, "HTTP read timeout (default from config, 30s)")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 0, "HTTP write timeout (default from config, 5m)")
	serveCmd.Flags().BoolVar(&enableAPM, "telemetry", false, "Enable Elastic APM instrumentation")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("address") {
		cfg.Server.Address = serverAddr
	}
	if flags.Changed("debug") {
		cfg.Server.Debug = serverDebug
	}
	if flags.Changed("read-timeout") {
		cfg.Server.ReadTimeout = readTimeout
	}
	if flags.Changed("write-timeout") {
		cfg.Server.WriteTimeout = writeTimeout
	}
	if flags.Changed("telemetry") {
		cfg.Server.Telemetry = enableAPM
	}
	if cfg.Server.Debug {
		cfg.Logger.Level = "debug"
	}

	lc := cfg.Logger
	logging.InitLogger(lc.File, lc.MaxSizeMB, lc.MaxBackups, lc.MaxAgeDays, lc.Compress, lc.Level)
	defer func() {
		if err := logging.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "close log file: %v\n", err)
		}
	}()

	validator := newValidator(cfg)
	coverage := validator.SchemaCoverage()
	if len(coverage) == 0 {
		logging.Warn("XSD validation unavailable, requests with XML checks will fail",
			"schema_dir", cfg.Generation.SchemaDir,
		)
	}

	opts := []server.Option{server.WithPipeline(newPipeline(cfg, validator))}
	if cfg.Server.Telemetry {
		tracer, err := telemetry.NewTracer(cfg.Server.ServiceName, version)
		if err != nil {
			return err
		}
		defer tracer.Close()
		opts = append(opts, server.WithTracer(tracer))
		logging.Info("APM telemetry enabled", "service", cfg.Server.ServiceName)
	}

	srv := server.NewServer(server.ConfigFrom(cfg), opts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info("Starting server",
		"address", cfg.Server.Address,
		"version", version,
		"v1_response", cfg.Server.V1Response,
		"max_attachments", cfg.Limits.MaxAttachments,
		"max_concurrent", cfg.Generation.MaxConcurrent,
		"schema_dir", cfg.Generation.SchemaDir,
		"xsd_profiles", coverage,
	)
	return srv.Run(ctx)
}
