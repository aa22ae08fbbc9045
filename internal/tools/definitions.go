package tools

// definitions returns the static tool table. Order here is the order tools
// appear in context messages.
func definitions() []Definition {
	return []Definition{
		{
			Name: "download_paper",
			Params: []ParamSpec{
				{Name: "url", Type: "string", Required: true},
				{Name: "video_uuid", Type: "string", Required: true},
				{Name: "timeout", Type: "int", Required: false, Default: 30},
			},
			Bind: bindDownloadPaper,
		},
		{
			Name: "extract_pdf_text",
			Params: []ParamSpec{
				{Name: "video_uuid", Type: "string", Required: true},
				{Name: "max_pages", Type: "int", Required: false, Default: 0},
			},
			Bind: bindExtractPDFText,
		},
		{
			Name: "save_script",
			Params: []ParamSpec{
				{Name: "script_content", Type: "string", Required: true},
				{Name: "video_uuid", Type: "string", Required: true},
			},
			Bind: bindSaveScript,
		},
		{
			Name: "save_time_script",
			Params: []ParamSpec{
				{Name: "time_script_content", Type: "string", Required: true},
				{Name: "video_uuid", Type: "string", Required: true},
			},
			Bind: bindSaveTimeScript,
		},
		{
			Name: "save_image_prompt",
			Params: []ParamSpec{
				{Name: "prompt_text", Type: "string", Required: true},
				{Name: "image_id", Type: "string", Required: true},
				{Name: "video_uuid", Type: "string", Required: true},
			},
			Bind: bindSaveImagePrompt,
		},
		{
			Name: "download_image",
			Params: []ParamSpec{
				{Name: "url", Type: "string", Required: true},
				{Name: "video_uuid", Type: "string", Required: true},
				{Name: "image_type", Type: "string", Required: false, Default: "found"},
				{Name: "timeout", Type: "int", Required: false, Default: 30},
			},
			Bind: bindDownloadImage,
		},
		{
			Name: "generate_images",
			Params: []ParamSpec{
				{Name: "video_uuid", Type: "string", Required: true},
				{Name: "timeout_per_image", Type: "int", Required: false, Default: 30},
			},
			Bind: bindGenerateImages,
		},
		{
			Name: "generate_video_ffmpeg",
			Params: []ParamSpec{
				{Name: "video_uuid", Type: "string", Required: true},
				{Name: "ffmpeg_path", Type: "string", Required: false, Default: ""},
			},
			Bind: bindGenerateVideoFFmpeg,
		},
		{
			Name: "calculate_script_word_amount",
			Params: []ParamSpec{
				{Name: "duration", Type: "int", Required: true},
			},
			Bind: bindCalculateScriptWordAmount,
		},
		{
			Name: "validate_video_resources",
			Params: []ParamSpec{
				{Name: "video_uuid", Type: "string", Required: true},
			},
			Bind: bindValidateVideoResources,
		},
	}
}

// autoStateKeys maps successful tool results to state keys for automatic
// extraction after a tool call. Only keys actually present in a successful
// result are propagated.
var autoStateKeys = map[string]map[string]string{
	"download_paper": {
		"file_path":   "paper_path",
		"folder_path": "resources_folder",
	},
	"extract_pdf_text": {
		"text_path": "paper_text_path",
	},
	"save_script": {
		"file_path": "script_path",
	},
	"save_time_script": {
		"file_path": "time_script_path",
	},
	"generate_images": {
		"generated_images": "generated_images",
		"failed_prompts":   "failed_prompts",
	},
}
