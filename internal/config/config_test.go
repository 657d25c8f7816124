package config_test

import (
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jezza/wuxia-dl/internal/config"
)

func isolateConfigDir(t *testing.T) {
	t.Helper()
	t.Setenv("APPDATA", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestDefaults(t *testing.T) {
	isolateConfigDir(t)

	cfg, _, err := config.LoadMerged(config.Options{IgnoreConfig: true})
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Output)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.Equal(t, "WuxiaWorld", cfg.Author)
	assert.False(t, cfg.BypassCloudflare)
}

func TestFlagOverrides(t *testing.T) {
	isolateConfigDir(t)

	cfg, _, err := config.LoadMerged(config.Options{
		IgnoreConfig:     true,
		Output:           "out",
		Workers:          3,
		TimeoutSeconds:   5,
		Author:           "Anonymous",
		UserAgent:        "test-agent",
		BypassCloudflare: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "out", cfg.Output)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.Equal(t, "Anonymous", cfg.Author)
	assert.Equal(t, "test-agent", cfg.UserAgent)
	assert.True(t, cfg.BypassCloudflare)
}

func TestNormalizesBadValues(t *testing.T) {
	isolateConfigDir(t)

	cfg, _, err := config.LoadMerged(config.Options{
		IgnoreConfig:   true,
		Workers:        -2,
		TimeoutSeconds: -1,
	})
	require.NoError(t, err)

	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, 30, cfg.TimeoutSeconds)
}

func TestProfileRoundTrip(t *testing.T) {
	isolateConfigDir(t)

	// No profile yet: the in-memory default is used.
	_, used, err := config.LoadMerged(config.Options{})
	require.NoError(t, err)
	assert.Contains(t, used, "default config in memory")

	// Save a profile, make it active, load it back merged.
	cfg := config.DefaultConfig()
	cfg.Workers = 2
	cfg.Author = "Saved Author"

	_, err = config.ActiveConfigPath()
	require.ErrorIs(t, err, config.ErrNoConfig)

	list, err := config.ListConfigs()
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, config.SaveYAML(cfg, filepath.Join(config.ConfigsDir(), "Default.yaml")))
	require.NoError(t, config.SwitchConfig("Default"))

	label, err := config.CurrentLabel()
	require.NoError(t, err)
	assert.Equal(t, "Default", label)

	loaded, usedPath, err := config.LoadMerged(config.Options{Workers: 7})
	require.NoError(t, err)
	assert.Contains(t, usedPath, "Default.yaml")
	assert.Equal(t, 7, loaded.Workers, "flag beats profile")
	assert.Equal(t, "Saved Author", loaded.Author)

	list, err = config.ListConfigs()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Active)
}

func TestSwitchConfig_Missing(t *testing.T) {
	isolateConfigDir(t)

	err := config.SwitchConfig("nope")
	require.Error(t, err)
}

func TestRemoveConfig(t *testing.T) {
	isolateConfigDir(t)

	_, err := config.ListConfigs() // creates the config directories
	require.NoError(t, err)

	require.NoError(t, config.SaveYAML(config.DefaultConfig(), filepath.Join(config.ConfigsDir(), "Spare.yaml")))
	require.NoError(t, config.SwitchConfig("Spare"))
	require.NoError(t, config.RemoveConfig("Spare"))

	_, err = config.CurrentLabel()
	require.ErrorIs(t, err, config.ErrNoConfig)
}
