package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// bindSaveScript resolves the narration script saver.
//
// The script is pure text for voice generation; it lands in script.txt
// inside the session folder, which must already exist.
func bindSaveScript(opts Options) (Func, error) {
	return saveTextTool(opts, "script_content", "script.txt"), nil
}

// bindSaveTimeScript resolves the timeline script saver. The time script
// maps narration time ranges to image ids, one "start-end: image_id" line
// per entry, and lands in time_script.txt.
func bindSaveTimeScript(opts Options) (Func, error) {
	return saveTextTool(opts, "time_script_content", "time_script.txt"), nil
}

// saveTextTool builds a tool that writes one named text parameter into a
// fixed file inside the session folder.
func saveTextTool(opts Options, contentParam, filename string) Func {
	return func(_ context.Context, params map[string]any) map[string]any {
		content := stringParam(params, contentParam)
		videoUUID := stringParam(params, "video_uuid")

		folder := opts.resourcesFolder(videoUUID)
		if !folderExists(folder) {
			return errorResultDetails(
				fmt.Sprintf("Video resources folder does not exist: %s", folder),
				map[string]any{"solution": "Run download_paper first to create the folder"})
		}

		outputFile := filepath.Join(folder, filename)
		if err := os.WriteFile(outputFile, []byte(content), 0644); err != nil {
			return errorResult(fmt.Sprintf("Failed to save %s: %v", filename, err))
		}

		return successResult(map[string]any{"file_path": outputFile})
	}
}

// bindSaveImagePrompt resolves the image prompt saver. Each prompt lands in
// image_prompts/<image_id>.txt for the generation step to pick up.
func bindSaveImagePrompt(opts Options) (Func, error) {
	return func(_ context.Context, params map[string]any) map[string]any {
		promptText := stringParam(params, "prompt_text")
		imageID := stringParam(params, "image_id")
		videoUUID := stringParam(params, "video_uuid")

		if !folderExists(opts.resourcesFolder(videoUUID)) {
			return errorResultDetails(
				fmt.Sprintf("Video resources folder does not exist: %s", opts.resourcesFolder(videoUUID)),
				map[string]any{"solution": "Run download_paper first to create the folder"})
		}

		promptsFolder := opts.imagePromptsFolder(videoUUID)
		if err := os.MkdirAll(promptsFolder, 0755); err != nil {
			return errorResult(fmt.Sprintf("Failed to create prompts folder: %v", err))
		}

		outputFile := filepath.Join(promptsFolder, imageID+".txt")
		if err := os.WriteFile(outputFile, []byte(promptText), 0644); err != nil {
			return errorResult(fmt.Sprintf("Failed to save image prompt: %v", err))
		}

		return successResult(map[string]any{
			"file_path": outputFile,
			"image_id":  imageID,
		})
	}, nil
}
