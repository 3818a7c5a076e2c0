package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/facturx-fusion/internal/config"
	"github.com/rezonia/facturx-fusion/internal/facturx"
	"github.com/rezonia/facturx-fusion/internal/logging"
	"github.com/rezonia/facturx-fusion/internal/processor"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string
	configPath   string
)

var rootCmd = &cobra.Command{
	Use:   "facturx-fusion",
	Short: "Embed Factur-X invoices into PDF documents",
	Long: `Factur-X Fusion turns a PDF and an XML invoice into a hybrid
Factur-X/ZUGFeRD PDF, either as an HTTP service or from the command line.

Examples:
  # Start the HTTP API
  facturx-fusion serve --address :8080

  # Generate a hybrid PDF offline
  facturx-fusion generate --pdf invoice.pdf --xml factur-x.xml -o hybrid.pdf

  # Recover the embedded XML
  facturx-fusion extract hybrid.pdf

  # Check invoice XML files
  facturx-fusion validate *.xml`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	// serve replaces this with the configured logger
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := "warn"
		if verbose {
			level = "debug"
		}
		logging.InitConsoleLogger(level)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "table", "Output format (json, table)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file (env: CONFIG_PATH)")

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newValidator builds the XML validator from the generation settings
func newValidator(cfg config.Config) *facturx.Validator {
	lint := facturx.NewXMLLint(cfg.Generation.XMLLintPath)
	if cfg.Generation.Timeout > 0 {
		lint.SetTimeout(cfg.Generation.Timeout)
	}
	if !lint.IsAvailable() {
		printVerbose("xmllint not found, XSD validation unavailable\n\n%s\n", facturx.InstallInstructions())
	}
	return facturx.NewValidator(
		facturx.WithSchemaDir(cfg.Generation.SchemaDir),
		facturx.WithXMLLint(lint),
	)
}

func newPipeline(cfg config.Config, v *facturx.Validator) *processor.Pipeline {
	opts := []processor.Option{
		processor.WithGenerator(facturx.NewGenerator(v)),
		processor.WithMaxAttachments(cfg.Limits.MaxAttachments),
		processor.WithConcurrency(cfg.Generation.MaxConcurrent),
		processor.WithTimeout(cfg.Generation.Timeout),
	}
	if cfg.Generation.TempDir != "" {
		opts = append(opts, processor.WithTempDir(cfg.Generation.TempDir))
	}
	return processor.NewPipeline(opts...)
}

func commandTimeout(cfg config.Config) time.Duration {
	if cfg.Generation.Timeout > 0 {
		return cfg.Generation.Timeout
	}
	return 2 * time.Minute
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
