//nolint:lll
package config

// Config represents the complete configuration for the simple-ocr application.
// It covers all commands (extract, history, reconstruct) and supports loading
// from configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose   bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// VLM endpoint settings shared by all stages
	VLM VLMConfig `mapstructure:"vlm" yaml:"vlm" json:"vlm"`

	// Canvas geometry for detection input
	Canvas CanvasConfig `mapstructure:"canvas" yaml:"canvas" json:"canvas"`

	// Region detection stage
	Detect DetectConfig `mapstructure:"detect" yaml:"detect" json:"detect"`

	// Per-region text extraction stage
	Extract ExtractConfig `mapstructure:"extract" yaml:"extract" json:"extract"`

	// Document reconstruction stage
	Reconstruct ReconstructConfig `mapstructure:"reconstruct" yaml:"reconstruct" json:"reconstruct"`

	// Output formatting
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`
}

// VLMConfig contains connection settings for the vision model endpoint.
type VLMConfig struct {
	BaseURL        string  `mapstructure:"base_url" yaml:"base_url" json:"base_url"`
	APIKey         string  `mapstructure:"api_key" yaml:"api_key" json:"-"`
	Model          string  `mapstructure:"model" yaml:"model" json:"model"`
	TimeoutSec     int     `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	MaxRetries     int     `mapstructure:"max_retries" yaml:"max_retries" json:"max_retries"`
	BackoffInitSec float64 `mapstructure:"backoff_init_sec" yaml:"backoff_init_sec" json:"backoff_init_sec"`
	BackoffMaxSec  float64 `mapstructure:"backoff_max_sec" yaml:"backoff_max_sec" json:"backoff_max_sec"`
}

// CanvasConfig contains geometry settings for the detection canvas.
type CanvasConfig struct {
	TargetSize int `mapstructure:"target_size" yaml:"target_size" json:"target_size"`
}

// DetectConfig contains region detection settings.
type DetectConfig struct {
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens" json:"max_tokens"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature" json:"temperature"`
}

// ExtractConfig contains per-region OCR extraction settings.
type ExtractConfig struct {
	Workers     int     `mapstructure:"workers" yaml:"workers" json:"workers"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens" json:"max_tokens"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature" json:"temperature"`
}

// ReconstructConfig contains document reconstruction settings.
type ReconstructConfig struct {
	Enabled     bool    `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens" json:"max_tokens"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature" json:"temperature"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format         string `mapstructure:"format" yaml:"format" json:"format"`
	File           string `mapstructure:"file" yaml:"file" json:"file"`
	OverlayEnabled bool   `mapstructure:"overlay_enabled" yaml:"overlay_enabled" json:"overlay_enabled"`
}
