package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rezonia/facturx-fusion/internal/model"
)

// V1 response modes
const (
	ResponseJSON = "json"
	ResponseFile = "file"
)

// Config is the service configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Limits     LimitsConfig     `yaml:"limits"`
	Generation GenerationConfig `yaml:"generation"`
	Logger     LoggerConfig     `yaml:"logger"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Address         string        `yaml:"address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Debug           bool          `yaml:"debug"`
	// V1Response selects the v1 output shape: "json" envelope or "file" download
	V1Response string `yaml:"v1_response"`
	// Telemetry enables the APM middleware
	Telemetry   bool   `yaml:"telemetry"`
	ServiceName string `yaml:"service_name"`
}

// LimitsConfig bounds request sizes
type LimitsConfig struct {
	MaxAttachments  int   `yaml:"max_attachments"`
	MaxRequestBytes int64 `yaml:"max_request_bytes"`
}

// GenerationConfig controls the hybrid PDF generator
type GenerationConfig struct {
	TempDir       string        `yaml:"temp_dir"`
	MaxConcurrent int           `yaml:"max_concurrent"`
	Timeout       time.Duration `yaml:"timeout"`
	SchemaDir     string        `yaml:"schema_dir"`
	XMLLintPath   string        `yaml:"xmllint_path"`
}

// LoggerConfig controls log output and rotation
type LoggerConfig struct {
	File       string `yaml:"file"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    5 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
			V1Response:      ResponseJSON,
			ServiceName:     "facturx-fusion",
		},
		Limits: LimitsConfig{
			MaxAttachments:  model.DefaultMaxAttachments,
			MaxRequestBytes: 64 << 20,
		},
		Generation: GenerationConfig{
			MaxConcurrent: DefaultConcurrency(),
			Timeout:       2 * time.Minute,
		},
		Logger: LoggerConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// DefaultConcurrency derives the generation slot count from GOMAXPROCS
func DefaultConcurrency() int {
	n := runtime.GOMAXPROCS(0) * 2
	if n < 2 {
		return 2
	}
	return n
}

// Load reads the file named by CONFIG_PATH, or returns defaults when unset.
// Environment overrides are applied in both cases.
func Load() (Config, error) {
	return LoadFrom(os.Getenv("CONFIG_PATH"))
}

// LoadFrom reads a YAML config file on top of the defaults. An empty path
// skips the file.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("FUSION_ADDRESS"); v != "" {
		c.Server.Address = v
	}
	if v := os.Getenv("FUSION_TEMP_DIR"); v != "" {
		c.Generation.TempDir = v
	}
	if v := os.Getenv("FUSION_SCHEMA_DIR"); v != "" {
		c.Generation.SchemaDir = v
	}
	if v := os.Getenv("FUSION_LOG_LEVEL"); v != "" {
		c.Logger.Level = v
	}
	if v := os.Getenv("FUSION_TELEMETRY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("FUSION_TELEMETRY: %w", err)
		}
		c.Server.Telemetry = b
	}
	return nil
}

// Validate rejects inconsistent settings
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is empty")
	}
	switch c.Server.V1Response {
	case ResponseJSON, ResponseFile:
	default:
		return fmt.Errorf("server.v1_response must be %q or %q, got %q", ResponseJSON, ResponseFile, c.Server.V1Response)
	}
	if c.Limits.MaxAttachments < 0 {
		return fmt.Errorf("limits.max_attachments must not be negative")
	}
	if c.Limits.MaxRequestBytes <= 0 {
		return fmt.Errorf("limits.max_request_bytes must be positive")
	}
	if c.Generation.MaxConcurrent <= 0 {
		return fmt.Errorf("generation.max_concurrent must be positive")
	}
	if c.Generation.Timeout < 0 {
		return fmt.Errorf("generation.timeout must not be negative")
	}
	if c.Generation.TempDir != "" {
		info, err := os.Stat(c.Generation.TempDir)
		if err != nil {
			return fmt.Errorf("generation.temp_dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("generation.temp_dir %s is not a directory", c.Generation.TempDir)
		}
	}
	return nil
}
