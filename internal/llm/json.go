package llm

import "strings"

// CleanJSON strips Markdown code fences that models wrap around JSON replies.
func CleanJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag line, e.g. ```json
		if tag := strings.TrimSpace(s[:nl]); !strings.ContainsAny(tag, "{[") {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ExtractJSONObject returns the text between the first '{' and the last '}'.
// ok is false when no such span exists.
func ExtractJSONObject(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// JSONPayload applies CleanJSON and then ExtractJSONObject, returning the best
// candidate for decoding.
func JSONPayload(raw string) string {
	cleaned := CleanJSON(raw)
	if obj, ok := ExtractJSONObject(cleaned); ok {
		return obj
	}
	return cleaned
}
