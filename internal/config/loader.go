package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader loads configuration from files and the environment.
//
// Create with [NewLoader]. [Loader.Load] applies the documented precedence;
// [Loader.LoadFromFile] reads one explicit file over the defaults (used by
// tests and the PAPERTOK_CONFIG_PATH override).
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new [Loader].
func NewLoader() *Loader {
	return &Loader{v: viper.New()}
}

// Load reads configuration using the standard precedence: defaults, then the
// first config file found, then PAPERTOK_* environment variables.
//
// A missing config file is fine; a present but malformed one is an error.
func (l *Loader) Load() (*Config, error) {
	l.applyDefaults()
	l.bindEnv()

	if explicit := os.Getenv("PAPERTOK_CONFIG_PATH"); explicit != "" {
		l.v.SetConfigFile(explicit)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", explicit, err)
		}
		return l.unmarshal()
	}

	l.v.SetConfigName("config")
	l.v.SetConfigType("yaml")
	if userDir, err := os.UserConfigDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(userDir, "papertok"))
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Fall back to a project-local papertok.yaml if present.
		if _, statErr := os.Stat("papertok.yaml"); statErr == nil {
			l.v.SetConfigFile("papertok.yaml")
			if err := l.v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file papertok.yaml: %w", err)
			}
		}
	}

	return l.unmarshal()
}

// LoadFromFile reads configuration from an explicit file over the defaults.
func (l *Loader) LoadFromFile(path string) (*Config, error) {
	l.applyDefaults()
	l.bindEnv()

	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return l.unmarshal()
}

func (l *Loader) applyDefaults() {
	defaults := DefaultConfig()
	l.v.SetDefault("state_path", defaults.StatePath)
	l.v.SetDefault("workflow_path", defaults.WorkflowPath)
	l.v.SetDefault("tools.resources_root", defaults.Tools.ResourcesRoot)
	l.v.SetDefault("tools.ffmpeg_path", defaults.Tools.FFmpegPath)
	l.v.SetDefault("tools.words_per_second", defaults.Tools.WordsPerSecond)
	l.v.SetDefault("tools.image_api_url", defaults.Tools.ImageAPIURL)
	l.v.SetDefault("tools.image_api_key", defaults.Tools.ImageAPIKey)
	l.v.SetDefault("tools.http_timeout_seconds", defaults.Tools.HTTPTimeoutSeconds)
}

func (l *Loader) bindEnv() {
	l.v.SetEnvPrefix("PAPERTOK")
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	// Short env names for the settings people override most.
	l.v.BindEnv("state_path", "PAPERTOK_STATE_PATH")
	l.v.BindEnv("workflow_path", "PAPERTOK_WORKFLOW_PATH")
	l.v.BindEnv("tools.ffmpeg_path", "PAPERTOK_FFMPEG_PATH")
	l.v.BindEnv("tools.image_api_url", "PAPERTOK_IMAGE_API_URL")
	l.v.BindEnv("tools.image_api_key", "PAPERTOK_IMAGE_API_KEY")
}

func (l *Loader) unmarshal() (*Config, error) {
	cfg := DefaultConfig()
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	return cfg, nil
}
