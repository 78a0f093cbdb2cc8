package cli

import (
	"fmt"

	"github.com/glorpus-work/reqfile/internal/logger"
	"github.com/glorpus-work/reqfile/pkg/config"
	"github.com/glorpus-work/reqfile/pkg/errors"
)

// These variables will be set by the main package
var (
	ConfigPath   *string
	Verbose      *bool
	OutputFormat *string
)

// loadConfig loads .env files from the working directory and the configuration
// file, applies command line overrides and initializes logging from the result.
func loadConfig() (*config.Config, error) {
	if err := config.LoadEnvFiles("."); err != nil {
		return nil, err
	}

	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if OutputFormat != nil && *OutputFormat != "" {
		if *OutputFormat != string(logger.FormatText) && *OutputFormat != string(logger.FormatJSON) {
			return nil, errors.ErrInvalidFormatWithDetails(*OutputFormat)
		}
		cfg.Settings.Format = *OutputFormat
	}
	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = "debug"
	}

	logger.InitLogger(cfg.Settings.LogLevel, logger.OutputFormat(cfg.Settings.Format))
	logger.Debug("Configuration loaded", logger.Fields{"path": configPath})

	return cfg, nil
}

func getConfigPath() (string, error) {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath, nil
	}

	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("failed to get default config path: %w", err)
	}
	return defaultPath, nil
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch errors.KindOf(err) {
	case errors.KindInvalidHeaderName, errors.KindInvalidHeaderValue:
		return ExitHeader
	case errors.KindNetwork:
		return ExitNetwork
	case errors.KindPersistence:
		return ExitPersistence
	default:
		return ExitFailure
	}
}
