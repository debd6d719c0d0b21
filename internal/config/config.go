// Package config provides centralized configuration management using Viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Submission backends.
const (
	BackendSimulated = "simulated"
	BackendNATS      = "nats"
)

// Config holds all configuration values for intake.
type Config struct {
	Backend         string        `mapstructure:"backend" validate:"oneof=simulated nats"`
	SubmitLatency   time.Duration `mapstructure:"submit_latency" validate:"gte=0"`
	DismissDelay    time.Duration `mapstructure:"dismiss_delay" validate:"gt=0"`
	SimulateFailure bool          `mapstructure:"simulate_failure"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	MaxRetries      int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	MCPPort         int           `mapstructure:"mcp_port" validate:"gte=0,lte=65535"`
	LogLevel        string        `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFile         string        `mapstructure:"log_file"`
}

// fileConfig is the on-disk shape, with durations written as strings.
type fileConfig struct {
	Backend         string `yaml:"backend"`
	SubmitLatency   string `yaml:"submit_latency"`
	DismissDelay    string `yaml:"dismiss_delay"`
	SimulateFailure bool   `yaml:"simulate_failure"`
	RequestTimeout  string `yaml:"request_timeout"`
	MaxRetries      int    `yaml:"max_retries"`
	MCPPort         int    `yaml:"mcp_port"`
	LogLevel        string `yaml:"log_level"`
	LogFile         string `yaml:"log_file"`
}

// MarshalYAML writes durations in their human readable form ("1.5s").
func (c Config) MarshalYAML() (any, error) {
	return fileConfig{
		Backend:         c.Backend,
		SubmitLatency:   c.SubmitLatency.String(),
		DismissDelay:    c.DismissDelay.String(),
		SimulateFailure: c.SimulateFailure,
		RequestTimeout:  c.RequestTimeout.String(),
		MaxRetries:      c.MaxRetries,
		MCPPort:         c.MCPPort,
		LogLevel:        c.LogLevel,
		LogFile:         c.LogFile,
	}, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Backend:        BackendSimulated,
		SubmitLatency:  1500 * time.Millisecond,
		DismissDelay:   2 * time.Second,
		RequestTimeout: 5 * time.Second,
		MaxRetries:     3,
		MCPPort:        7331,
		LogLevel:       "info",
	}
}

// keys are every config key, bound to INTAKE_<KEY> environment variables.
var keys = []string{
	"backend",
	"submit_latency",
	"dismiss_delay",
	"simulate_failure",
	"request_timeout",
	"max_retries",
	"mcp_port",
	"log_level",
	"log_file",
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("intake")

	def := Default()
	v.SetDefault("backend", def.Backend)
	v.SetDefault("submit_latency", def.SubmitLatency)
	v.SetDefault("dismiss_delay", def.DismissDelay)
	v.SetDefault("simulate_failure", def.SimulateFailure)
	v.SetDefault("request_timeout", def.RequestTimeout)
	v.SetDefault("max_retries", def.MaxRetries)
	v.SetDefault("mcp_port", def.MCPPort)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_file", def.LogFile)

	v.SetEnvPrefix("INTAKE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit ENV bindings for better bool/int/duration parsing
	for _, key := range keys {
		if err := v.BindEnv(key, "INTAKE_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Field(), fe.ActualTag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/intake/intake.yml or $XDG_CONFIG_HOME/intake/intake.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "intake", "intake.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "intake", "intake.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "intake.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return write(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
