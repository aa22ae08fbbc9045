package tools

import "context"

// defaultWordsPerSecond matches a typical short-video narration pace.
const defaultWordsPerSecond = 2

// bindCalculateScriptWordAmount resolves the word budget calculator, which
// converts a target video duration into the word count the script should
// aim for.
func bindCalculateScriptWordAmount(opts Options) (Func, error) {
	wps := opts.WordsPerSecond
	if wps <= 0 {
		wps = defaultWordsPerSecond
	}

	return func(_ context.Context, params map[string]any) map[string]any {
		duration := intParam(params, "duration", 0)
		if duration <= 0 {
			return errorResult("'duration' must be a positive number of seconds")
		}

		return successResult(map[string]any{
			"words_amount":     duration * wps,
			"words_per_second": wps,
			"duration":         duration,
		})
	}, nil
}
