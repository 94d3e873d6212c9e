package config

import (
	"fmt"
	"strings"
)

const (
	infoLevel = "info"

	// DefaultCanvasSize is the square canvas side the detector sees.
	DefaultCanvasSize = 1001

	// DefaultWorkers bounds concurrent per-region OCR calls.
	DefaultWorkers = 5
)

// DefaultConfig returns the default application configuration.
func DefaultConfig() *Config {
	return &Config{
		OutputDir: "extractions",
		LogLevel:  infoLevel,
		Verbose:   false,
		VLM: VLMConfig{
			TimeoutSec:     120,
			MaxRetries:     3,
			BackoffInitSec: 1,
			BackoffMaxSec:  30,
		},
		Canvas: CanvasConfig{TargetSize: DefaultCanvasSize},
		Detect: DetectConfig{
			MaxTokens:   4096,
			Temperature: 0.1,
		},
		Extract: ExtractConfig{
			Workers:     DefaultWorkers,
			MaxTokens:   4096,
			Temperature: 0.0,
		},
		Reconstruct: ReconstructConfig{
			Enabled:     false,
			MaxTokens:   8192,
			Temperature: 0.2,
		},
		Output: OutputConfig{
			Format:         "text",
			OverlayEnabled: true,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", infoLevel, "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q (expected debug, info, warn, error)", c.LogLevel)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if c.Canvas.TargetSize <= 0 {
		return fmt.Errorf("canvas.target_size must be > 0, got %d", c.Canvas.TargetSize)
	}
	if c.Extract.Workers < 1 {
		return fmt.Errorf("extract.workers must be >= 1, got %d", c.Extract.Workers)
	}
	if c.VLM.MaxRetries < 0 {
		return fmt.Errorf("vlm.max_retries must be >= 0, got %d", c.VLM.MaxRetries)
	}
	switch strings.ToLower(c.Output.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid output.format %q (expected text or json)", c.Output.Format)
	}
	return nil
}

// ValidateVLM checks that the model endpoint is fully specified. Kept
// separate from Validate so commands that never call the model (history)
// work without credentials.
func (c *Config) ValidateVLM() error {
	if c.VLM.APIKey == "" {
		return fmt.Errorf("vlm.api_key not set (set %s or vlm.api_key in the config file)", EnvAPIKey)
	}
	if c.VLM.BaseURL == "" {
		return fmt.Errorf("vlm.base_url not set (set %s or vlm.base_url in the config file)", EnvBaseURL)
	}
	if c.VLM.Model == "" {
		return fmt.Errorf("vlm.model not set (set %s or vlm.model in the config file)", EnvModelName)
	}
	return nil
}
