package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe_TableOrder(t *testing.T) {
	r := NewRegistry(Options{})

	infos := r.Describe()

	require.Len(t, infos, 10)
	assert.Equal(t, "download_paper", infos[0].Name)
	assert.Equal(t, "validate_video_resources", infos[9].Name)

	require.Len(t, infos[0].Params, 3)
	assert.Equal(t, "url", infos[0].Params[0].Name)
	assert.True(t, infos[0].Params[0].Required)
	assert.Equal(t, "timeout", infos[0].Params[2].Name)
	assert.False(t, infos[0].Params[2].Required)
	assert.Equal(t, 30, infos[0].Params[2].Default)
}

func TestExecute_UnknownTool(t *testing.T) {
	r := NewRegistry(Options{})

	result := r.Execute(context.Background(), "teleport", map[string]any{})

	assert.Equal(t, false, result["success"])
	assert.Equal(t, "Unknown tool: teleport", result["error"])
}

func TestExecute_MissingRequiredParameter(t *testing.T) {
	r := NewRegistry(Options{ResourcesRoot: t.TempDir()})

	result := r.Execute(context.Background(), "save_script", map[string]any{
		"script_content": "hello",
	})

	assert.Equal(t, false, result["success"])
	assert.Contains(t, result["error"], `Missing required parameter "video_uuid"`)
}

func TestExecute_FillsOptionalDefaults(t *testing.T) {
	r := NewRegistry(Options{WordsPerSecond: 3})

	result := r.Execute(context.Background(), "calculate_script_word_amount", map[string]any{
		"duration": float64(60),
	})

	require.Equal(t, true, result["success"])
	assert.Equal(t, 180, result["words_amount"])
	assert.Equal(t, 3, result["words_per_second"])
	assert.Equal(t, 60, result["duration"])
}

func TestExecute_WordAmountDefaultsPace(t *testing.T) {
	r := NewRegistry(Options{})

	result := r.Execute(context.Background(), "calculate_script_word_amount", map[string]any{
		"duration": 45,
	})

	require.Equal(t, true, result["success"])
	assert.Equal(t, 90, result["words_amount"])
	assert.Equal(t, 2, result["words_per_second"])
}

func TestExecute_WordAmountRejectsNonPositiveDuration(t *testing.T) {
	r := NewRegistry(Options{})

	result := r.Execute(context.Background(), "calculate_script_word_amount", map[string]any{
		"duration": 0,
	})

	assert.Equal(t, false, result["success"])
	assert.Contains(t, result["error"], "positive number of seconds")
}

func TestExecute_BindFailureReportedAndRetried(t *testing.T) {
	// generate_images binds only when an image API endpoint is configured.
	r := NewRegistry(Options{})

	result := r.Execute(context.Background(), "generate_images", map[string]any{
		"video_uuid": "abc",
	})

	assert.Equal(t, false, result["success"])
	assert.Contains(t, result["error"], `Failed to bind tool "generate_images"`)

	// Failed bindings are not cached; the same call fails the same way
	// instead of panicking on a nil callable.
	again := r.Execute(context.Background(), "generate_images", map[string]any{
		"video_uuid": "abc",
	})
	assert.Equal(t, false, again["success"])
}

func TestAutoStateUpdates_SuccessOnly(t *testing.T) {
	r := NewRegistry(Options{})

	updates := r.AutoStateUpdates("download_paper", map[string]any{
		"success":   false,
		"file_path": "/x/paper.pdf",
	})

	assert.Empty(t, updates)
}

func TestAutoStateUpdates_MapsKnownKeys(t *testing.T) {
	r := NewRegistry(Options{})

	updates := r.AutoStateUpdates("download_paper", map[string]any{
		"success":     true,
		"file_path":   "/x/paper.pdf",
		"folder_path": "/x",
		"unrelated":   "ignored",
	})

	assert.Equal(t, map[string]any{
		"paper_path":       "/x/paper.pdf",
		"resources_folder": "/x",
	}, updates)
}

func TestAutoStateUpdates_SkipsAbsentKeys(t *testing.T) {
	r := NewRegistry(Options{})

	updates := r.AutoStateUpdates("extract_pdf_text", map[string]any{
		"success": true,
	})

	assert.Empty(t, updates)
}

func TestAutoStateUpdates_UnmappedTool(t *testing.T) {
	r := NewRegistry(Options{})

	updates := r.AutoStateUpdates("calculate_script_word_amount", map[string]any{
		"success":      true,
		"words_amount": 90,
	})

	assert.Empty(t, updates)
}
