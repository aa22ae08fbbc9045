package tools

import (
	"os"
	"path/filepath"
)

// Per-session resource layout under Options.ResourcesRoot:
//
//	<root>/<video_uuid>/paper.pdf
//	<root>/<video_uuid>/paper.txt
//	<root>/<video_uuid>/script.txt
//	<root>/<video_uuid>/time_script.txt
//	<root>/<video_uuid>/image_prompts/<image_id>.txt
//	<root>/<video_uuid>/images/<name>
//	<root>/<video_uuid>/video.mp4

func (o Options) resourcesFolder(videoUUID string) string {
	root := o.ResourcesRoot
	if root == "" {
		root = ".papertok/resources"
	}
	return filepath.Join(root, videoUUID)
}

func (o Options) imagePromptsFolder(videoUUID string) string {
	return filepath.Join(o.resourcesFolder(videoUUID), "image_prompts")
}

func (o Options) imagesFolder(videoUUID string) string {
	return filepath.Join(o.resourcesFolder(videoUUID), "images")
}

func folderExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
