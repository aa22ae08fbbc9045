// Package config provides configuration loading and management for papertok.
//
// Configuration is loaded using Viper, supporting YAML config files and
// environment variable overrides. The defaults work out of the box: state
// under .papertok/, the shipped workflow document, ffmpeg from PATH.
//
// Key types:
//   - [Config] is the root configuration container
//   - [Loader] handles Viper-based configuration loading
//
// Configuration priority (highest to lowest):
//  1. Environment variables (PAPERTOK_ prefix)
//  2. Config file specified by PAPERTOK_CONFIG_PATH
//  3. User config directory (e.g. ~/.config/papertok/config.yaml on Linux)
//  4. ./papertok.yaml
//  5. [DefaultConfig] defaults
package config

// Config represents the root configuration structure.
//
// This is the main configuration container loaded by [Loader]. Use
// [DefaultConfig] to get sensible defaults.
type Config struct {
	// StatePath is the session state file location.
	// Empty means .papertok/state.json under the working directory.
	// Can be overridden with the PAPERTOK_STATE_PATH environment variable.
	StatePath string `mapstructure:"state_path"`

	// WorkflowPath is the workflow YAML document location.
	// Can be overridden with the PAPERTOK_WORKFLOW_PATH environment variable.
	WorkflowPath string `mapstructure:"workflow_path"`

	// Tools contains the environment for local tool implementations.
	Tools ToolsConfig `mapstructure:"tools"`
}

// ToolsConfig contains settings consumed by the tool implementations.
type ToolsConfig struct {
	// ResourcesRoot is the directory holding per-session resource folders.
	// Default: .papertok/resources
	ResourcesRoot string `mapstructure:"resources_root"`

	// FFmpegPath is the ffmpeg binary location. Empty means look it up
	// on PATH. Can be overridden with PAPERTOK_FFMPEG_PATH.
	FFmpegPath string `mapstructure:"ffmpeg_path"`

	// WordsPerSecond is the narration pace used to budget script length.
	// Default: 2
	WordsPerSecond int `mapstructure:"words_per_second"`

	// ImageAPIURL is the endpoint of the image generation service.
	// The generate_images tool reports a binding error when unset.
	ImageAPIURL string `mapstructure:"image_api_url"`

	// ImageAPIKey authenticates against the image generation service.
	// Usually supplied via PAPERTOK_IMAGE_API_KEY rather than the file.
	ImageAPIKey string `mapstructure:"image_api_key"`

	// HTTPTimeoutSeconds is the default timeout for download tools when
	// a call does not override it. Default: 30
	HTTPTimeoutSeconds int `mapstructure:"http_timeout_seconds"`
}

// DefaultConfig returns a new [Config] with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		WorkflowPath: "workflows/paper_video.yaml",
		Tools: ToolsConfig{
			ResourcesRoot:      ".papertok/resources",
			WordsPerSecond:     2,
			HTTPTimeoutSeconds: 30,
		},
	}
}
