package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/obsidianstack/dcrcalc/internal/dcr"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultHTTPPort   = 8080
	DefaultAuthHeader = "X-API-Key"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "json"
)

// Config is the top-level configuration. Fields map 1:1 to config.example.yaml.
type Config struct {
	Calculator CalculatorConfig `yaml:"calculator"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
}

// CalculatorConfig holds the tunable estimation constants.
type CalculatorConfig struct {
	// DefaultRampDegrees is used when no advertised duration is given.
	DefaultRampDegrees float64 `yaml:"default_ramp_degrees"`

	// RodRatioEstimate multiplies the stroke when rod length is unknown.
	RodRatioEstimate float64 `yaml:"rod_ratio_estimate"`
}

// Params converts the section into calculator params.
func (c CalculatorConfig) Params() dcr.Params {
	return dcr.Params{
		DefaultRampDegrees: c.DefaultRampDegrees,
		RodRatioEstimate:   c.RodRatioEstimate,
	}
}

// ServerConfig holds the settings used by `dcrcalc serve`.
type ServerConfig struct {
	// HTTPPort is the port the REST API, WebSocket and /metrics listen on.
	HTTPPort int `yaml:"http_port"`

	// Auth configures how the server authenticates incoming API requests.
	Auth AuthConfig `yaml:"auth"`
}

// AuthConfig configures REST API authentication.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// Header is the HTTP header carrying the key. Defaults to X-API-Key.
	Header string `yaml:"header"`

	// KeyEnv is the name of the environment variable holding the expected key.
	KeyEnv string `yaml:"key_env"`
}

// Key returns the API key resolved from the environment.
// Returns empty string if KeyEnv is unset or the variable is not found.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// RequireKey reports an error when mode is apikey but the key variable is
// unset or empty. Load does not check this; callers that serve requests do.
func (a AuthConfig) RequireKey() error {
	if a.Mode == "apikey" && a.Key() == "" {
		return fmt.Errorf("config: server.auth.key_env %q is unset or empty", a.KeyEnv)
	}
	return nil
}

// LogConfig controls the slog handler built by main.
type LogConfig struct {
	// Level is one of: debug | info | warn | error.
	Level string `yaml:"level"`

	// Format is one of: json | text.
	Format string `yaml:"format"`
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a Config pre-populated with default values. It is also
// what the CLI runs with when no config file is given.
func Defaults() *Config {
	return &Config{
		Calculator: CalculatorConfig{
			DefaultRampDegrees: dcr.DefaultRampDegrees,
			RodRatioEstimate:   dcr.RodRatioEstimate,
		},
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
			Auth: AuthConfig{
				Mode:   "none",
				Header: DefaultAuthHeader,
			},
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if c := cfg.Calculator.DefaultRampDegrees; !finite(c) || c < 0 {
		return fmt.Errorf("calculator.default_ramp_degrees must be a finite, non-negative number")
	}
	if c := cfg.Calculator.RodRatioEstimate; !finite(c) || c <= 0 {
		return fmt.Errorf("calculator.rod_ratio_estimate must be a finite, positive number")
	}
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d out of range", cfg.Server.HTTPPort)
	}
	switch cfg.Server.Auth.Mode {
	case "apikey":
		if cfg.Server.Auth.KeyEnv == "" {
			return fmt.Errorf("server.auth.key_env is required when mode is apikey")
		}
	case "none", "":
	default:
		return fmt.Errorf("server.auth: unknown mode %q", cfg.Server.Auth.Mode)
	}
	if cfg.Server.Auth.Header == "" {
		cfg.Server.Auth.Header = DefaultAuthHeader
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format: unknown format %q", cfg.Log.Format)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
