// Package config loads quercle-go settings from YAML files, the
// environment and .env files.
//
// Usage:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("quercle.yaml").
//	    WithDotenv(".env").
//	    Load()
//
// Precedence: defaults → YAML file → environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	quercle "github.com/quercle/quercle-go"
	"github.com/quercle/quercle-go/tools"
)

// Config is the complete quercle-go configuration.
type Config struct {
	// APIKey is the Quercle credential. Usually left empty here and
	// supplied via QUERCLE_API_KEY.
	APIKey string `yaml:"api_key" env:"QUERCLE_API_KEY"`

	// BaseURL overrides the API host.
	BaseURL string `yaml:"base_url" env:"QUERCLE_BASE_URL"`

	// Timeout bounds each request.
	Timeout time.Duration `yaml:"timeout" env:"QUERCLE_TIMEOUT"`

	// RequestsPerSecond enables client-side rate limiting when positive.
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"QUERCLE_REQUESTS_PER_SECOND"`
	Burst             int     `yaml:"burst" env:"QUERCLE_BURST"`

	// Defaults apply to the raw operations when the caller leaves
	// format/use_safeguard unset. Treated as configuration constants until
	// the remote contract pins down per-endpoint defaults.
	Defaults DefaultsConfig `yaml:"defaults"`

	// Log configures the zap logger built by NewLogger.
	Log LogConfig `yaml:"log"`
}

// DefaultsConfig mirrors tools.Defaults in YAML form.
type DefaultsConfig struct {
	Format       string `yaml:"format" env:"QUERCLE_DEFAULT_FORMAT"`
	UseSafeguard *bool  `yaml:"use_safeguard" env:"QUERCLE_USE_SAFEGUARD"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level: debug, info, warn, error.
	Level string `yaml:"level" env:"QUERCLE_LOG_LEVEL"`
	// Format: json or console.
	Format string `yaml:"format" env:"QUERCLE_LOG_FORMAT"`
}

// DefaultConfig returns the package defaults.
func DefaultConfig() *Config {
	safeguard := true
	return &Config{
		BaseURL: quercle.DefaultBaseURL,
		Timeout: quercle.DefaultTimeout,
		Defaults: DefaultsConfig{
			Format:       string(quercle.FormatMarkdown),
			UseSafeguard: &safeguard,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Loader builds a Config. Zero or more sources are layered on top of the
// defaults.
type Loader struct {
	configPath string
	dotenvPath string
}

// NewLoader creates a config loader with no sources attached.
func NewLoader() *Loader { return &Loader{} }

// WithConfigPath points the loader at a YAML file. A missing file is not an
// error; the defaults stand.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithDotenv loads the named .env file into the process environment before
// the environment pass. A missing file is not an error.
func (l *Loader) WithDotenv(path string) *Loader {
	l.dotenvPath = path
	return l
}

// Load layers the sources: defaults, then the YAML file, then the
// environment.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.dotenvPath != "" {
		if err := godotenv.Load(l.dotenvPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load dotenv %s: %w", l.dotenvPath, err)
		}
	}

	if l.configPath != "" {
		data, err := os.ReadFile(l.configPath)
		switch {
		case os.IsNotExist(err):
			// keep defaults
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("QUERCLE_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("QUERCLE_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("QUERCLE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("QUERCLE_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("QUERCLE_REQUESTS_PER_SECOND"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("QUERCLE_REQUESTS_PER_SECOND: %w", err)
		}
		c.RequestsPerSecond = f
	}
	if v := os.Getenv("QUERCLE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("QUERCLE_BURST: %w", err)
		}
		c.Burst = n
	}
	if v := os.Getenv("QUERCLE_DEFAULT_FORMAT"); v != "" {
		c.Defaults.Format = v
	}
	if v := os.Getenv("QUERCLE_USE_SAFEGUARD"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("QUERCLE_USE_SAFEGUARD: %w", err)
		}
		c.Defaults.UseSafeguard = &b
	}
	if v := os.Getenv("QUERCLE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("QUERCLE_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	return nil
}

// ClientConfig bridges to the client package.
func (c *Config) ClientConfig() quercle.Config {
	return quercle.Config{
		APIKey:            c.APIKey,
		BaseURL:           c.BaseURL,
		Timeout:           c.Timeout,
		RequestsPerSecond: c.RequestsPerSecond,
		Burst:             c.Burst,
	}
}

// ToolDefaults bridges to the tools package.
func (c *Config) ToolDefaults() tools.Defaults {
	return tools.Defaults{
		Format:       quercle.Format(c.Defaults.Format),
		UseSafeguard: c.Defaults.UseSafeguard,
	}
}

// NewLogger builds a zap logger from the log section.
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}

	var zc zap.Config
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = level
	return zc.Build()
}
