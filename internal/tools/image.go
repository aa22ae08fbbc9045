package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// bindDownloadImage resolves the image download tool.
//
// Images land in images/<image_type>_<basename> inside the session folder so
// found and generated assets stay distinguishable.
func bindDownloadImage(opts Options) (Func, error) {
	return func(ctx context.Context, params map[string]any) map[string]any {
		rawURL := stringParam(params, "url")
		videoUUID := stringParam(params, "video_uuid")
		imageType := stringParam(params, "image_type")
		timeout := intParam(params, "timeout", opts.httpTimeout())

		if !folderExists(opts.resourcesFolder(videoUUID)) {
			return errorResultDetails(
				fmt.Sprintf("Video resources folder does not exist: %s", opts.resourcesFolder(videoUUID)),
				map[string]any{"solution": "Run download_paper first to create the folder"})
		}

		imagesFolder := opts.imagesFolder(videoUUID)
		if err := os.MkdirAll(imagesFolder, 0755); err != nil {
			return errorResult(fmt.Sprintf("Failed to create images folder: %v", err))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return errorResultDetails("Failed to download image",
				map[string]any{"url": rawURL, "error": err.Error()})
		}
		client := &http.Client{Timeout: time.Duration(timeout) * time.Second}
		resp, err := client.Do(req)
		if err != nil {
			return errorResultDetails("Failed to download image",
				map[string]any{"url": rawURL, "error": err.Error()})
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return errorResultDetails("Failed to download image",
				map[string]any{"url": rawURL, "status": resp.StatusCode})
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return errorResultDetails("Failed to download image",
				map[string]any{"url": rawURL, "error": err.Error()})
		}

		outputFile := filepath.Join(imagesFolder, imageFileName(rawURL, imageType))
		if err := os.WriteFile(outputFile, body, 0644); err != nil {
			return errorResult(fmt.Sprintf("Failed to save image: %v", err))
		}

		return successResult(map[string]any{"file_path": outputFile})
	}, nil
}

// imageFileName derives a stable local name from the source URL. URLs
// without a usable path basename fall back to a timestamped name.
func imageFileName(rawURL, imageType string) string {
	base := "image"
	if u, err := url.Parse(rawURL); err == nil {
		if b := path.Base(u.Path); b != "" && b != "." && b != "/" {
			base = b
		}
	}
	if imageType == "" {
		imageType = "found"
	}
	return imageType + "_" + base
}

// imageGenRequest is the payload sent per prompt to the image service.
type imageGenRequest struct {
	Prompt string `json:"prompt"`
}

// imageGenResponse is the expected service reply: a direct URL for the
// rendered image.
type imageGenResponse struct {
	URL   string `json:"url"`
	Error string `json:"error,omitempty"`
}

// bindGenerateImages resolves the batch image generation tool.
//
// For every saved prompt in image_prompts/ it posts the prompt text to the
// configured image service and downloads the rendered result into images/.
// Prompts that fail are collected rather than aborting the batch.
func bindGenerateImages(opts Options) (Func, error) {
	if opts.ImageAPIURL == "" {
		return nil, fmt.Errorf("image API URL is not configured")
	}

	return func(ctx context.Context, params map[string]any) map[string]any {
		videoUUID := stringParam(params, "video_uuid")
		timeoutPerImage := intParam(params, "timeout_per_image", 30)

		promptsFolder := opts.imagePromptsFolder(videoUUID)
		entries, err := os.ReadDir(promptsFolder)
		if err != nil {
			return errorResultDetails("No image prompts found",
				map[string]any{"path": promptsFolder, "solution": "Run save_image_prompt first"})
		}

		imagesFolder := opts.imagesFolder(videoUUID)
		if err := os.MkdirAll(imagesFolder, 0755); err != nil {
			return errorResult(fmt.Sprintf("Failed to create images folder: %v", err))
		}

		client := &http.Client{Timeout: time.Duration(timeoutPerImage) * time.Second}

		var generated []any
		var failed []any
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".txt") {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)

		for _, name := range names {
			imageID := strings.TrimSuffix(name, ".txt")
			prompt, err := os.ReadFile(filepath.Join(promptsFolder, name))
			if err != nil {
				failed = append(failed, imageID)
				continue
			}

			outputFile := filepath.Join(imagesFolder, "generated_"+imageID+".png")
			if err := generateOne(ctx, client, opts, string(prompt), outputFile); err != nil {
				failed = append(failed, imageID)
				continue
			}
			generated = append(generated, outputFile)
		}

		if len(names) == 0 {
			return errorResultDetails("No image prompts found",
				map[string]any{"path": promptsFolder, "solution": "Run save_image_prompt first"})
		}

		return successResult(map[string]any{
			"generated_images": generated,
			"failed_prompts":   failed,
		})
	}, nil
}

func generateOne(ctx context.Context, client *http.Client, opts Options, prompt, outputFile string) error {
	payload, err := json.Marshal(imageGenRequest{Prompt: prompt})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.ImageAPIURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if opts.ImageAPIKey != "" {
		req.Header.Set("Authorization", "Bearer "+opts.ImageAPIKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("image service returned status %d", resp.StatusCode)
	}

	var genResp imageGenResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return err
	}
	if genResp.Error != "" {
		return fmt.Errorf("image service error: %s", genResp.Error)
	}
	if genResp.URL == "" {
		return fmt.Errorf("image service returned no URL")
	}

	imgReq, err := http.NewRequestWithContext(ctx, http.MethodGet, genResp.URL, nil)
	if err != nil {
		return err
	}
	imgResp, err := client.Do(imgReq)
	if err != nil {
		return err
	}
	defer imgResp.Body.Close()
	if imgResp.StatusCode != http.StatusOK {
		return fmt.Errorf("image download returned status %d", imgResp.StatusCode)
	}

	data, err := io.ReadAll(imgResp.Body)
	if err != nil {
		return err
	}
	return os.WriteFile(outputFile, data, 0644)
}
