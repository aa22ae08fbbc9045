package tools

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// timeEntry is one parsed line of time_script.txt: the narration time range
// an image stays on screen.
type timeEntry struct {
	Start   float64
	End     float64
	ImageID string
}

// parseTimeScript parses "start-end: image_id" lines. Blank lines and lines
// starting with '#' are skipped.
func parseTimeScript(path string) ([]timeEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []timeEntry
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		rangePart, imageID, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("line %d: expected 'start-end: image_id'", lineNum)
		}
		startStr, endStr, ok := strings.Cut(strings.TrimSpace(rangePart), "-")
		if !ok {
			return nil, fmt.Errorf("line %d: expected 'start-end' time range", lineNum)
		}

		start, err := strconv.ParseFloat(strings.TrimSpace(startStr), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid start time: %w", lineNum, err)
		}
		end, err := strconv.ParseFloat(strings.TrimSpace(endStr), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid end time: %w", lineNum, err)
		}
		if end <= start {
			return nil, fmt.Errorf("line %d: end time must be after start time", lineNum)
		}

		entries = append(entries, timeEntry{
			Start:   start,
			End:     end,
			ImageID: strings.TrimSpace(imageID),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// findImage locates the asset for an image id inside the images folder.
// Generated images take the canonical generated_<id>.png name; downloaded
// ones match on the id appearing in the file name.
func findImage(imagesFolder, imageID string) (string, bool) {
	canonical := filepath.Join(imagesFolder, "generated_"+imageID+".png")
	if fileExists(canonical) {
		return canonical, true
	}

	entries, err := os.ReadDir(imagesFolder)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if !e.IsDir() && strings.Contains(e.Name(), imageID) {
			return filepath.Join(imagesFolder, e.Name()), true
		}
	}
	return "", false
}

// bindGenerateVideoFFmpeg resolves the video muxing tool.
//
// Binding fails when no ffmpeg binary can be found, which surfaces as a
// retryable error result instead of a crash. The tool builds an ffmpeg
// concat list from time_script.txt and renders video.mp4 in the session
// folder.
func bindGenerateVideoFFmpeg(opts Options) (Func, error) {
	defaultBinary := opts.FFmpegPath
	if defaultBinary == "" {
		defaultBinary = "ffmpeg"
	}
	resolved, err := exec.LookPath(defaultBinary)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg binary not found: %w", err)
	}

	return func(ctx context.Context, params map[string]any) map[string]any {
		videoUUID := stringParam(params, "video_uuid")
		binary := stringParam(params, "ffmpeg_path")
		if binary == "" {
			binary = resolved
		}

		folder := opts.resourcesFolder(videoUUID)
		timeScriptPath := filepath.Join(folder, "time_script.txt")
		entries, err := parseTimeScript(timeScriptPath)
		if err != nil {
			return errorResultDetails("Failed to read time script",
				map[string]any{"path": timeScriptPath, "error": err.Error()})
		}
		if len(entries) == 0 {
			return errorResult("Time script contains no entries")
		}

		imagesFolder := opts.imagesFolder(videoUUID)
		var concat strings.Builder
		for _, entry := range entries {
			imagePath, ok := findImage(imagesFolder, entry.ImageID)
			if !ok {
				return errorResultDetails("Image referenced by time script is missing",
					map[string]any{"image_id": entry.ImageID})
			}
			fmt.Fprintf(&concat, "file '%s'\n", imagePath)
			fmt.Fprintf(&concat, "duration %.3f\n", entry.End-entry.Start)
		}

		concatPath := filepath.Join(folder, "concat.txt")
		if err := os.WriteFile(concatPath, []byte(concat.String()), 0644); err != nil {
			return errorResult(fmt.Sprintf("Failed to write concat list: %v", err))
		}

		videoPath := filepath.Join(folder, "video.mp4")
		cmd := exec.CommandContext(ctx, binary,
			"-y",
			"-f", "concat",
			"-safe", "0",
			"-i", concatPath,
			"-vsync", "vfr",
			"-pix_fmt", "yuv420p",
			videoPath,
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			return errorResultDetails("ffmpeg failed",
				map[string]any{"error": err.Error(), "output": tail(string(out), 2000)})
		}

		return successResult(map[string]any{
			"video_path":  videoPath,
			"image_count": len(entries),
		})
	}, nil
}

// bindValidateVideoResources resolves the resource validation tool, which
// verifies every artifact the render step needs actually exists.
func bindValidateVideoResources(opts Options) (Func, error) {
	return func(_ context.Context, params map[string]any) map[string]any {
		videoUUID := stringParam(params, "video_uuid")
		folder := opts.resourcesFolder(videoUUID)

		var missing []any
		for _, name := range []string{"script.txt", "time_script.txt"} {
			if !fileExists(filepath.Join(folder, name)) {
				missing = append(missing, name)
			}
		}

		timeScriptPath := filepath.Join(folder, "time_script.txt")
		if fileExists(timeScriptPath) {
			entries, err := parseTimeScript(timeScriptPath)
			if err != nil {
				return errorResultDetails("Failed to read time script",
					map[string]any{"path": timeScriptPath, "error": err.Error()})
			}
			imagesFolder := opts.imagesFolder(videoUUID)
			for _, entry := range entries {
				if _, ok := findImage(imagesFolder, entry.ImageID); !ok {
					missing = append(missing, "images/"+entry.ImageID)
				}
			}
		}

		if len(missing) > 0 {
			return errorResultDetails("Video resources are incomplete",
				map[string]any{"missing": missing})
		}
		return successResult(map[string]any{"validated": true})
	}, nil
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
