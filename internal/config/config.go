// Package config provides configuration management for microtosca.
//
// This package handles loading configuration from multiple sources:
//   - YAML configuration files
//   - Environment variables (with MT_ prefix)
//   - .env files
//   - Default values
//
// # Configuration Sources Priority
//
// Configuration is loaded in the following order (later sources override earlier ones):
//  1. Default values (hardcoded)
//  2. Configuration files (./config.yaml, ./configs/config.yaml, ~/.microtosca/config.yaml, /etc/microtosca/config.yaml)
//  3. .env files
//  4. Environment variables (MT_ prefix)
//
// # Usage Example
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Model: %s (%s)\n", cfg.Model.Name, cfg.Model.File)
//
// # Environment Variables
//
// Use MT_ prefix and underscores for nested keys:
//   - MT_SERVER_PORT=8095
//   - MT_MODEL_FILE=./architecture.yaml
//   - MT_SECURITY_AUTH_ENABLED=true
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration structure.
type Config struct {
	// Server contains HTTP server configuration
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Model selects the architecture served and checked by the commands
	Model ModelConfig `mapstructure:"model" yaml:"model"`

	// Logging contains logging settings
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Security contains security and rate limiting settings
	Security SecurityConfig `mapstructure:"security" yaml:"security"`

	// Integrity configures background scans of the served model
	Integrity IntegrityConfig `mapstructure:"integrity" yaml:"integrity"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// Host is the server bind address
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the server listen port
	Port int `mapstructure:"port" yaml:"port"`

	// ReadTimeout is the maximum duration for reading requests
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing responses
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`

	// ShutdownTimeout is the maximum duration for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	// Debug enables debug logging and detailed error responses
	Debug bool `mapstructure:"debug" yaml:"debug"`
}

// ModelConfig describes the architecture model.
type ModelConfig struct {
	// Name is used when no document is loaded
	Name string `mapstructure:"name" yaml:"name"`

	// File is an architecture document (JSON or YAML) loaded at start-up
	File string `mapstructure:"file" yaml:"file"`

	// Strict aborts loading on the first rejected node or link
	Strict bool `mapstructure:"strict" yaml:"strict"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error)
	Level string `mapstructure:"level" yaml:"level"`

	// Format is the log format (json, text)
	Format string `mapstructure:"format" yaml:"format"`

	// Output is the log output destination (stdout, stderr)
	Output string `mapstructure:"output" yaml:"output"`
}

// SecurityConfig contains security and rate limiting settings.
type SecurityConfig struct {
	// RateLimit is the maximum requests per second per client (0 disables it)
	RateLimit int `mapstructure:"rate_limit" yaml:"rate_limit"`

	// AllowedOrigins are the CORS allowed origins
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`

	// AuthEnabled requires a bearer token on mutating routes
	AuthEnabled bool `mapstructure:"auth_enabled" yaml:"auth_enabled"`

	// JWTSecret is the secret key for signing tokens
	JWTSecret string `mapstructure:"jwt_secret" yaml:"jwt_secret"`

	// JWTExpiration is the lifetime of generated tokens
	JWTExpiration time.Duration `mapstructure:"jwt_expiration" yaml:"jwt_expiration"`
}

// IntegrityConfig configures background integrity scans.
type IntegrityConfig struct {
	// ScanInterval is the time between scans of the served model (0 disables them)
	ScanInterval time.Duration `mapstructure:"scan_interval" yaml:"scan_interval"`
}

var cfg *Config

// Load reads configuration from a file and environment variables.
// If cfgFile is empty, it searches for config.yaml in standard locations.
// A missing explicit file falls back to defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.microtosca")
		v.AddConfigPath("/etc/microtosca")
	}

	if err := v.ReadInConfig(); err != nil {
		if cfgFile != "" {
			if !isFileNotFoundError(err) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		} else {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.MergeInConfig() // .env is optional

	v.SetEnvPrefix("MT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8095)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.debug", false)

	v.SetDefault("model.name", "microtosca")
	v.SetDefault("model.file", "")
	v.SetDefault("model.strict", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("security.rate_limit", 100)
	v.SetDefault("security.allowed_origins", []string{"*"})
	v.SetDefault("security.auth_enabled", false)
	v.SetDefault("security.jwt_secret", "")
	v.SetDefault("security.jwt_expiration", "24h")

	v.SetDefault("integrity.scan_interval", "0s")
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	if cfg.Model.Name == "" {
		return fmt.Errorf("model name is required")
	}

	if cfg.Security.RateLimit < 0 {
		return fmt.Errorf("invalid rate limit: %d", cfg.Security.RateLimit)
	}

	if cfg.Security.AuthEnabled && cfg.Security.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required when auth is enabled")
	}

	if cfg.Integrity.ScanInterval < 0 {
		return fmt.Errorf("invalid integrity scan interval: %s", cfg.Integrity.ScanInterval)
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	return nil
}

// Get returns the configuration loaded last.
func Get() *Config {
	return cfg
}

// Address returns the host:port the server listens on.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// isFileNotFoundError checks if an error is a file not found error.
func isFileNotFoundError(err error) bool {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return errors.Is(pathErr, os.ErrNotExist)
	}
	return false
}
