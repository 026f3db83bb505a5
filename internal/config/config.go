package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory.
const FileName = "recon.yaml"

// Config represents the top-level recon.yaml configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Upload    UploadConfig    `yaml:"upload"`
	Logging   LoggingConfig   `yaml:"logging"`
	Export    ExportConfig    `yaml:"export"`
	Activity  ActivityConfig  `yaml:"activity"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Serve     ServeConfig     `yaml:"serve"`
}

// ServerConfig locates the staging service.
type ServerConfig struct {
	BaseURL string        `yaml:"base_url" env:"RECON_BASE_URL" validate:"required,url"`
	Token   string        `yaml:"token,omitempty" env:"RECON_TOKEN"`
	Timeout time.Duration `yaml:"timeout" env:"RECON_TIMEOUT" validate:"min=1s"`
}

// UploadConfig holds defaults applied to new uploads.
type UploadConfig struct {
	DefaultAssigneeID int64 `yaml:"default_assignee_id,omitempty" env:"RECON_DEFAULT_ASSIGNEE_ID" validate:"gte=0"`
}

// LoggingConfig controls the logrus logger.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"RECON_LOG_LEVEL" validate:"oneof=trace debug info warn warning error"`
	Format string `yaml:"format" env:"RECON_LOG_FORMAT" validate:"oneof=text json"`
}

// ExportConfig controls invalid-row downloads.
type ExportConfig struct {
	Format string `yaml:"format" env:"RECON_EXPORT_FORMAT" validate:"oneof=csv xlsx"`
	Dir    string `yaml:"dir" env:"RECON_EXPORT_DIR"`
}

// ActivityConfig points at the append-only activity log. Empty disables it.
type ActivityConfig struct {
	Path string `yaml:"path,omitempty" env:"RECON_ACTIVITY_LOG"`
}

// TelemetryConfig toggles OpenTelemetry.
type TelemetryConfig struct {
	Enabled bool `yaml:"enabled" env:"RECON_OTEL_ENABLED"`
	Stdout  bool `yaml:"stdout" env:"RECON_OTEL_STDOUT"`
}

// ServeConfig configures the local reference staging service.
type ServeConfig struct {
	Listen string `yaml:"listen" env:"RECON_LISTEN" validate:"required,hostname_port"`
}

// Load reads a recon.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config pointing at a staging service on localhost.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL: "http://localhost:8089",
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Export: ExportConfig{
			Format: "csv",
			Dir:    ".",
		},
		Serve: ServeConfig{
			Listen: "127.0.0.1:8089",
		},
	}
}

// LoadEnvFiles loads whichever of the given dotenv files exist, without
// overriding variables already set. It returns how many were loaded.
func LoadEnvFiles(files ...string) (int, error) {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return 0, fmt.Errorf("loading env files: %w", err)
	}
	return len(existing), nil
}

// ApplyEnv overrides cfg fields from RECON_* environment variables.
// Unset variables leave the file values in place.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports the first invalid field in a readable form.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("invalid config: %s fails %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("invalid config: %w", err)
}

// Resolve builds the effective config: the file at path when it exists,
// defaults otherwise, then dotenv files and the environment on top.
func Resolve(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		loaded, err := Load(path)
		switch {
		case err == nil:
			cfg = loaded
		case !errors.Is(err, os.ErrNotExist):
			return nil, err
		}
	}
	if _, err := LoadEnvFiles(".env", ".env.local"); err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
