package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSystemConfig(t *testing.T) {
	sys := DefaultSystemConfig()
	assert.Equal(t, 10, sys.MaxSteps)
	assert.False(t, sys.FailFast)
	assert.True(t, sys.WarmupEnabled)
	assert.Equal(t, "command", sys.WarmupKey)
	assert.Equal(t, "info", sys.LogLevel)
}

func TestLoadSystemConfigFallsBackToDefaults(t *testing.T) {
	sys := LoadSystemConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Equal(t, DefaultSystemConfig(), sys)

	corrupt := filepath.Join(t.TempDir(), "system.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("{not json"), 0644))
	sys = LoadSystemConfig(corrupt)
	assert.Equal(t, DefaultSystemConfig(), sys)
}

func TestLoadSystemConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "system.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"max_steps": 5, "fail_fast": true}`), 0644))

	sys := LoadSystemConfig(path)
	assert.Equal(t, 5, sys.MaxSteps)
	assert.True(t, sys.FailFast)
	// Untouched fields keep their defaults.
	assert.Equal(t, 3, sys.MaxRetries)
}

func TestLoadSystemConfigClampsMaxSteps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "system.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"max_steps": 0}`), 0644))
	assert.Equal(t, 1, LoadSystemConfig(path).MaxSteps)

	require.NoError(t, os.WriteFile(path, []byte(`{"max_steps": -4}`), 0644))
	assert.Equal(t, 1, LoadSystemConfig(path).MaxSteps)
}

func TestLoadRequiresConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config.json")
}

func TestLoadParsesFullConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	appCfg := `{
		"planner": [{"type": "ollama", "models": ["llama3.2-vision"]}],
		"channels": {"web": {"port": 9000}},
		"custom_instructions": "prefer keyboard shortcuts"
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(appCfg), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "system.json"), []byte(`{"max_steps": 7}`), 0644))

	cfg, sys, err := Load()
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Planner)
	assert.Contains(t, cfg.Channels, "web")
	assert.Equal(t, "prefer keyboard shortcuts", cfg.CustomInstructions)
	assert.Equal(t, 7, sys.MaxSteps)
}

func TestValidateRejectsMissingPlanner(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.Validate())
}
