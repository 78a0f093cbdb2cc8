package cli

import (
	"path/filepath"
	"testing"

	"github.com/glorpus-work/reqfile/pkg/config"
	"github.com/glorpus-work/reqfile/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigInitSetGet(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "reqfile", "config.yaml")

	_, logs, err := execute(t, NewConfigCmd(), cfgPath, "init")
	require.NoError(t, err)
	assert.Contains(t, logs, "Configuration file created")
	assert.FileExists(t, cfgPath)

	_, _, err = execute(t, NewConfigCmd(), cfgPath, "init")
	assert.ErrorIs(t, err, errors.ErrConfigFileExists)

	_, _, err = execute(t, NewConfigCmd(), cfgPath, "init", "--force")
	require.NoError(t, err)

	_, _, err = execute(t, NewConfigCmd(), cfgPath, "set", "header.Accept", "application/json")
	require.NoError(t, err)
	_, _, err = execute(t, NewConfigCmd(), cfgPath, "set", "format", "json")
	require.NoError(t, err)

	out, _, err := execute(t, NewConfigCmd(), cfgPath, "get", "header.Accept")
	require.NoError(t, err)
	assert.Equal(t, "application/json\n", out)

	cfg, err := config.LoadConfig(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Settings.Format)
	assert.Equal(t, config.CurrentVersion, cfg.Version)
}

func TestConfigSet_RejectsInvalid(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	_, _, err := execute(t, NewConfigCmd(), cfgPath, "set", "format", "xml")
	assert.ErrorIs(t, err, errors.ErrInvalidFormat)
	assert.NoFileExists(t, cfgPath)

	_, _, err = execute(t, NewConfigCmd(), cfgPath, "set", "header.Bad Name", "x")
	assert.ErrorIs(t, err, errors.ErrInvalidHeaderName)

	_, _, err = execute(t, NewConfigCmd(), cfgPath, "set", "cache_dir", "/tmp")
	assert.ErrorContains(t, err, "unknown configuration key")
}

func TestConfigShow(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	out, _, err := execute(t, NewConfigCmd(), cfgPath, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "SETTING")
	assert.Regexp(t, `log_level\s+info`, out)
	assert.Regexp(t, `user_agent\s+`+config.DefaultUserAgent, out)
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, NewVersionCmd(), filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "reqfile version "+Version)
}
