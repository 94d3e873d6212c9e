package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "simple-ocr"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "SIMPLE_OCR"

	// Legacy environment variable names for the model endpoint. These
	// predate the config file and stay supported for .env compatibility.
	EnvAPIKey    = "OCR_MODEL_API_KEY"
	EnvBaseURL   = "OCR_MODEL_BASE_URL"
	EnvModelName = "OCR_MODEL_NAME"
)

// Loader handles loading configuration from files, env vars, and flags.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader on the global viper instance so cobra flag
// bindings are visible to it.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// Load loads configuration from the standard search paths, environment
// variables, and defaults, then validates it.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")
	l.addConfigPaths()
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		// Missing config file is fine; defaults and env vars apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return l.unmarshalAndValidate()
}

// LoadWithFile loads configuration from a specific file path.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}

	l.v.SetConfigFile(configFile)
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
	}

	return l.unmarshalAndValidate()
}

func (l *Loader) unmarshalAndValidate() (*Config, error) {
	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &config, nil
}

// GetConfigFileUsed returns the path of the config file used.
func (l *Loader) GetConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// GetViper exposes the underlying viper instance so callers can re-read
// settings after late flag bindings.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
	}
	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		l.v.AddConfigPath(filepath.Join(configDir, ConfigFileName))
	} else if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", ConfigFileName))
	}
}

func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// Endpoint credentials keep their historical unprefixed names.
	_ = l.v.BindEnv("vlm.api_key", EnvAPIKey)
	_ = l.v.BindEnv("vlm.base_url", EnvBaseURL)
	_ = l.v.BindEnv("vlm.model", EnvModelName)
}

func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	l.v.SetDefault("output_dir", defaults.OutputDir)
	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("verbose", defaults.Verbose)

	l.v.SetDefault("vlm.base_url", defaults.VLM.BaseURL)
	l.v.SetDefault("vlm.api_key", defaults.VLM.APIKey)
	l.v.SetDefault("vlm.model", defaults.VLM.Model)
	l.v.SetDefault("vlm.timeout_sec", defaults.VLM.TimeoutSec)
	l.v.SetDefault("vlm.max_retries", defaults.VLM.MaxRetries)
	l.v.SetDefault("vlm.backoff_init_sec", defaults.VLM.BackoffInitSec)
	l.v.SetDefault("vlm.backoff_max_sec", defaults.VLM.BackoffMaxSec)

	l.v.SetDefault("canvas.target_size", defaults.Canvas.TargetSize)

	l.v.SetDefault("detect.max_tokens", defaults.Detect.MaxTokens)
	l.v.SetDefault("detect.temperature", defaults.Detect.Temperature)

	l.v.SetDefault("extract.workers", defaults.Extract.Workers)
	l.v.SetDefault("extract.max_tokens", defaults.Extract.MaxTokens)
	l.v.SetDefault("extract.temperature", defaults.Extract.Temperature)

	l.v.SetDefault("reconstruct.enabled", defaults.Reconstruct.Enabled)
	l.v.SetDefault("reconstruct.max_tokens", defaults.Reconstruct.MaxTokens)
	l.v.SetDefault("reconstruct.temperature", defaults.Reconstruct.Temperature)

	l.v.SetDefault("output.format", defaults.Output.Format)
	l.v.SetDefault("output.file", defaults.Output.File)
	l.v.SetDefault("output.overlay_enabled", defaults.Output.OverlayEnabled)
}
