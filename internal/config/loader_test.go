package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// resetViper clears global viper state between tests since the loader
// intentionally shares the global instance with cobra flag bindings.
func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func writeConfigFile(t *testing.T, cfg map[string]any) string {
	t.Helper()
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "simple-ocr.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestLoaderDefaults(t *testing.T) {
	resetViper(t)

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultCanvasSize, cfg.Canvas.TargetSize)
	assert.Equal(t, DefaultWorkers, cfg.Extract.Workers)
	assert.Equal(t, "text", cfg.Output.Format)
}

func TestLoaderWithFile(t *testing.T) {
	resetViper(t)

	path := writeConfigFile(t, map[string]any{
		"output_dir": "runs",
		"log_level":  "debug",
		"canvas":     map[string]any{"target_size": 768},
		"extract":    map[string]any{"workers": 2},
		"vlm":        map[string]any{"model": "test-vlm"},
	})

	cfg, err := NewLoader().LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "runs", cfg.OutputDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 768, cfg.Canvas.TargetSize)
	assert.Equal(t, 2, cfg.Extract.Workers)
	assert.Equal(t, "test-vlm", cfg.VLM.Model)
	// Unset values fall back to defaults.
	assert.Equal(t, 3, cfg.VLM.MaxRetries)
}

func TestLoaderWithMissingFile(t *testing.T) {
	resetViper(t)

	_, err := NewLoader().LoadWithFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoaderInvalidConfigRejected(t *testing.T) {
	resetViper(t)

	path := writeConfigFile(t, map[string]any{
		"extract": map[string]any{"workers": 0},
	})

	_, err := NewLoader().LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers")
}

func TestLoaderLegacyEnvironmentNames(t *testing.T) {
	resetViper(t)

	t.Setenv(EnvAPIKey, "secret")
	t.Setenv(EnvBaseURL, "https://vlm.example.com/v1")
	t.Setenv(EnvModelName, "layout-vlm")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.VLM.APIKey)
	assert.Equal(t, "https://vlm.example.com/v1", cfg.VLM.BaseURL)
	assert.Equal(t, "layout-vlm", cfg.VLM.Model)
	assert.NoError(t, cfg.ValidateVLM())
}
