package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable that overrides a setting.
const EnvPrefix = "REQFILE_"

// LoadEnvFiles loads dir/.env and then dir/.env.local into the process
// environment. Variables already set in the environment win over .env, while
// .env.local overrides both. Missing files are skipped.
func LoadEnvFiles(dir string) error {
	base := filepath.Join(dir, ".env")
	if _, err := os.Stat(base); err == nil {
		if err := godotenv.Load(base); err != nil {
			return fmt.Errorf("failed to load %s: %w", base, err)
		}
	}

	local := filepath.Join(dir, ".env.local")
	if _, err := os.Stat(local); err == nil {
		if err := godotenv.Overload(local); err != nil {
			return fmt.Errorf("failed to load %s: %w", local, err)
		}
	}

	return nil
}

// ApplyEnv overrides settings from REQFILE_* environment variables.
func (c *Config) ApplyEnv() {
	setString(&c.Settings.LogLevel, "LOG_LEVEL")
	setString(&c.Settings.Format, "FORMAT")
	setString(&c.Settings.UserAgent, "USER_AGENT")
	setString(&c.Settings.MetricsFile, "METRICS_FILE")
	setString(&c.Settings.HooksDir, "HOOKS_DIR")
	setString(&c.Settings.S3.Region, "S3_REGION")
	setString(&c.Settings.S3.Endpoint, "S3_ENDPOINT")
	setString(&c.Settings.S3.AccessKeyID, "S3_ACCESS_KEY_ID")
	setString(&c.Settings.S3.SecretAccessKey, "S3_SECRET_ACCESS_KEY")

	if v, ok := os.LookupEnv(EnvPrefix + "S3_USE_PATH_STYLE"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Settings.S3.UsePathStyle = b
		}
	}
}

func setString(dst *string, name string) {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok && v != "" {
		*dst = v
	}
}
