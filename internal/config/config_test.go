package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "", cfg.StatePath)
	assert.Equal(t, "workflows/paper_video.yaml", cfg.WorkflowPath)
	assert.Equal(t, ".papertok/resources", cfg.Tools.ResourcesRoot)
	assert.Equal(t, "", cfg.Tools.FFmpegPath)
	assert.Equal(t, 2, cfg.Tools.WordsPerSecond)
	assert.Equal(t, 30, cfg.Tools.HTTPTimeoutSeconds)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
state_path: /sessions/state.json
workflow_path: custom/flow.yaml
tools:
  resources_root: /sessions/resources
  words_per_second: 3
  image_api_url: https://images.example.com/v1/generate
`)

	cfg, err := NewLoader().LoadFromFile(path)

	require.NoError(t, err)
	assert.Equal(t, "/sessions/state.json", cfg.StatePath)
	assert.Equal(t, "custom/flow.yaml", cfg.WorkflowPath)
	assert.Equal(t, "/sessions/resources", cfg.Tools.ResourcesRoot)
	assert.Equal(t, 3, cfg.Tools.WordsPerSecond)
	assert.Equal(t, "https://images.example.com/v1/generate", cfg.Tools.ImageAPIURL)

	// Unset keys keep their defaults.
	assert.Equal(t, 30, cfg.Tools.HTTPTimeoutSeconds)
}

func TestLoadFromFile_NotFound(t *testing.T) {
	cfg, err := NewLoader().LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadFromFile_Malformed(t *testing.T) {
	path := writeConfig(t, "state_path: [unterminated")

	cfg, err := NewLoader().LoadFromFile(path)

	assert.Nil(t, cfg)
	assert.Error(t, err)
}

func TestLoad_ExplicitConfigPath(t *testing.T) {
	path := writeConfig(t, "workflow_path: from_env_file.yaml\n")
	t.Setenv("PAPERTOK_CONFIG_PATH", path)

	cfg, err := NewLoader().Load()

	require.NoError(t, err)
	assert.Equal(t, "from_env_file.yaml", cfg.WorkflowPath)
}

func TestLoad_ExplicitConfigPathMissing(t *testing.T) {
	t.Setenv("PAPERTOK_CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))

	cfg, err := NewLoader().Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PAPERTOK_CONFIG_PATH", writeConfig(t, "workflow_path: base.yaml\n"))
	t.Setenv("PAPERTOK_STATE_PATH", "/env/state.json")
	t.Setenv("PAPERTOK_FFMPEG_PATH", "/opt/bin/ffmpeg")
	t.Setenv("PAPERTOK_IMAGE_API_KEY", "secret")

	cfg, err := NewLoader().Load()

	require.NoError(t, err)
	assert.Equal(t, "/env/state.json", cfg.StatePath)
	assert.Equal(t, "base.yaml", cfg.WorkflowPath)
	assert.Equal(t, "/opt/bin/ffmpeg", cfg.Tools.FFmpegPath)
	assert.Equal(t, "secret", cfg.Tools.ImageAPIKey)
}
