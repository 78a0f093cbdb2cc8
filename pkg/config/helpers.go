package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// headerKeyPrefix addresses a single entry of default_headers, e.g. "header.Accept".
const headerKeyPrefix = "header."

// SetValue sets a configuration value by key
// Supported keys:
//   - log_level: string - Logging level (debug, info, warn, error)
//   - format: string - Result format (text, json)
//   - user_agent: string - User-Agent sent with every request
//   - metrics_file: string - Prometheus textfile written after each run
//   - hooks_dir: string - Directory holding hook scripts
//   - s3.region, s3.endpoint: string - Object store location
//   - s3.use_path_style: bool - Address buckets by path instead of host
//   - header.<Name>: string - A default request header; an empty value removes it
func (c *Config) SetValue(key, value string) error {
	if name, ok := strings.CutPrefix(key, headerKeyPrefix); ok {
		if c.Settings.DefaultHeaders == nil {
			c.Settings.DefaultHeaders = map[string]string{}
		}
		if value == "" {
			delete(c.Settings.DefaultHeaders, name)
		} else {
			c.Settings.DefaultHeaders[name] = value
		}
		return nil
	}

	switch key {
	case "log_level":
		c.Settings.LogLevel = value
	case "format":
		c.Settings.Format = value
	case "user_agent":
		c.Settings.UserAgent = value
	case "metrics_file":
		c.Settings.MetricsFile = value
	case "hooks_dir":
		c.Settings.HooksDir = value
	case "s3.region":
		c.Settings.S3.Region = value
	case "s3.endpoint":
		c.Settings.S3.Endpoint = value
	case "s3.use_path_style":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %s", key, value)
		}
		c.Settings.S3.UsePathStyle = boolVal
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// GetValue returns the value of key as a string.
func (c *Config) GetValue(key string) (string, error) {
	if name, ok := strings.CutPrefix(key, headerKeyPrefix); ok {
		v, exists := c.Settings.DefaultHeaders[name]
		if !exists {
			return "", fmt.Errorf("no default header: %s", name)
		}
		return v, nil
	}

	switch key {
	case "log_level":
		return c.Settings.LogLevel, nil
	case "format":
		return c.Settings.Format, nil
	case "user_agent":
		return c.Settings.UserAgent, nil
	case "metrics_file":
		return c.Settings.MetricsFile, nil
	case "hooks_dir":
		return c.Settings.HooksDir, nil
	case "s3.region":
		return c.Settings.S3.Region, nil
	case "s3.endpoint":
		return c.Settings.S3.Endpoint, nil
	case "s3.use_path_style":
		return strconv.FormatBool(c.Settings.S3.UsePathStyle), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// Keys returns every key accepted by GetValue, sorted. Default headers appear
// as header.<Name>.
func (c *Config) Keys() []string {
	keys := []string{
		"format",
		"hooks_dir",
		"log_level",
		"metrics_file",
		"s3.endpoint",
		"s3.region",
		"s3.use_path_style",
		"user_agent",
	}
	for name := range c.Settings.DefaultHeaders {
		keys = append(keys, headerKeyPrefix+name)
	}
	sort.Strings(keys)
	return keys
}

// ToMap flattens the settings into key/value pairs for display.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string)
	for _, key := range c.Keys() {
		v, err := c.GetValue(key)
		if err != nil {
			continue
		}
		result[key] = v
	}
	return result
}
