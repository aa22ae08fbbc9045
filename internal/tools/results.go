package tools

// errorResult builds the uniform failure result map.
func errorResult(msg string) map[string]any {
	return map[string]any{"success": false, "error": msg}
}

// errorResultDetails builds a failure result with extra context fields.
func errorResultDetails(msg string, details map[string]any) map[string]any {
	result := errorResult(msg)
	if len(details) > 0 {
		result["details"] = details
	}
	return result
}

// successResult builds the uniform success result map with tool-specific
// fields merged in.
func successResult(fields map[string]any) map[string]any {
	result := map[string]any{"success": true}
	for k, v := range fields {
		result[k] = v
	}
	return result
}

// intParam reads an int parameter that may arrive as a JSON number
// (float64), a YAML int, or a declared int default.
func intParam(params map[string]any, key string, fallback int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

// stringParam reads a string parameter, returning "" for absent or
// mistyped values.
func stringParam(params map[string]any, key string) string {
	s, _ := params[key].(string)
	return s
}
