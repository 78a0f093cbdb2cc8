// Package config provides configuration management for reqfile.
// It handles loading, validating and saving the settings used by the CLI when it
// builds fetches: default headers, output rendering, metrics and object storage.
// Values come from a YAML file, optionally overridden by REQFILE_* environment
// variables, which may themselves be loaded from .env files.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/reqfile/pkg/errors"
	"github.com/glorpus-work/reqfile/pkg/fsutil"
	"github.com/glorpus-work/reqfile/pkg/header"
	"github.com/hashicorp/go-version"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	// Version is the schema version of the file.
	Version string `yaml:"version"`

	// General settings
	Settings Settings `yaml:"settings"`
}

// Settings represents general application settings.
type Settings struct {
	// Output settings
	LogLevel string `yaml:"log_level"` // debug, info, warn, error
	Format   string `yaml:"format"`    // text, json

	// Request settings
	UserAgent      string            `yaml:"user_agent,omitempty"`
	DefaultHeaders map[string]string `yaml:"default_headers,omitempty"`

	// MetricsFile, if set, receives the Prometheus text exposition after each run.
	MetricsFile string `yaml:"metrics_file,omitempty"`
	// HooksDir is scanned for post-fetch.tengo and on-failure.tengo.
	HooksDir string `yaml:"hooks_dir,omitempty"`

	// Auth maps a host name to the credentials sent to it.
	Auth map[string]*AuthConfig `yaml:"auth,omitempty"`

	S3 S3Settings `yaml:"s3,omitempty"`
}

// S3Settings configures the object store used for s3:// destinations.
type S3Settings struct {
	Region       string `yaml:"region,omitempty"`
	Endpoint     string `yaml:"endpoint,omitempty"`
	UsePathStyle bool   `yaml:"use_path_style,omitempty"`

	// Credentials are only taken from the environment.
	AccessKeyID     string `yaml:"-"`
	SecretAccessKey string `yaml:"-"`
}

// Default configuration values.
const (
	// CurrentVersion is written into new configuration files.
	CurrentVersion = "1.0"

	// SupportedVersions is the constraint a loaded file's version must satisfy.
	SupportedVersions = ">= 1.0, < 2.0"

	// DefaultUserAgent is sent when neither the config nor the caller sets one.
	DefaultUserAgent = "reqfile/1"

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Settings: Settings{
			LogLevel:       "info",
			Format:         "text",
			UserAgent:      DefaultUserAgent,
			DefaultHeaders: map[string]string{},
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the defaults.
// Environment overrides are applied in both cases.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			cfg.ApplyEnv()
			if err := cfg.Validate(); err != nil {
				return nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
			}
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()
	config.ApplyEnv()

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
	}

	return &config, nil
}

// SaveConfig atomically replaces the file at path with the YAML encoding of c.
// The file is readable by its owner only since it may carry credentials.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	err = fsutil.ReplaceFile(absPath, fsutil.FileModeSecure, fsutil.DirModeSecure, func(w io.Writer) error {
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(YAMLIndent)
		if err := encoder.Encode(c); err != nil {
			return errors.Wrap(errors.ErrConfigEncode, err.Error())
		}
		return encoder.Close()
	})
	if err != nil {
		return errors.Wrapf(err, "failed to save config to %s", absPath)
	}
	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	if err := validateVersion(c.Version); err != nil {
		return err
	}
	return validateSettings(c.Settings)
}

func validateVersion(v string) error {
	parsed, err := version.NewVersion(v)
	if err != nil {
		return errors.Wrapf(errors.ErrConfigVersion, "%q", v)
	}
	constraint, err := version.NewConstraint(SupportedVersions)
	if err != nil {
		return err
	}
	if !constraint.Check(parsed) {
		return errors.ErrConfigVersionWithDetails(v, SupportedVersions)
	}
	return nil
}

func validateSettings(s Settings) error {
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[s.Format] {
		return errors.ErrInvalidFormatWithDetails(s.Format)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return errors.ErrInvalidLogLevelWithDetails(s.LogLevel)
	}
	if _, err := header.FromMap(s.DefaultHeaders); err != nil {
		return fmt.Errorf("default_headers: %w", err)
	}
	return validateAuth(s.Auth)
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "reqfile", "config.yaml"), nil
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
	if c.Settings.Format == "" {
		c.Settings.Format = defaults.Settings.Format
	}
	if c.Settings.UserAgent == "" {
		c.Settings.UserAgent = defaults.Settings.UserAgent
	}
	if c.Settings.DefaultHeaders == nil {
		c.Settings.DefaultHeaders = map[string]string{}
	}
}
