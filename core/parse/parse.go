// Package parse turns text produced by a language model into typed Go values.
// Models routinely wrap JSON in markdown fences, add commentary around it, or
// emit almost-JSON (single quotes, trailing commas, unquoted keys); this
// package strips the wrapping and repairs the payload before unmarshaling,
// so callers only deal with a value or a single error.
package parse

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// StringAs parses model output into T, a struct or map type expected as a
// JSON object. The content is first reduced to its JSON-object core via
// [ExtractObject]; if standard unmarshaling fails, the payload is repaired
// with jsonrepair and retried once.
//
// Example:
//
//	type located struct {
//	    Location *string `json:"location"`
//	}
//
//	// Plain JSON, fenced JSON and almost-JSON all parse:
//	v, err := parse.StringAs[located](`{"location": "Paris"}`)
//	v, err = parse.StringAs[located]("```json\n{\"location\": \"Paris\"}\n```")
//	v, err = parse.StringAs[located](`{location: 'Paris'}`)
func StringAs[T any](content string) (T, error) {
	var result T

	payload := ExtractObject(content)
	if payload == "" {
		return result, fmt.Errorf("no JSON object found in content %q", content)
	}

	err := json.Unmarshal([]byte(payload), &result)
	if err == nil {
		return result, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(payload)
	if repairErr != nil {
		return result, fmt.Errorf("failed to unmarshal content as %T and failed to repair JSON: unmarshal error: %w, repair error: %v", result, err, repairErr)
	}

	if err = json.Unmarshal([]byte(repaired), &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal repaired JSON as %T: %w (repaired: %s)", result, err, repaired)
	}

	return result, nil
}

// ExtractObject returns the outermost JSON object embedded in content, or ""
// when content contains no braces at all. Markdown code fences and any
// leading or trailing prose are discarded. The result is not guaranteed to be
// valid JSON; it is the best candidate substring for [StringAs] to work on.
func ExtractObject(content string) string {
	content = stripFences(strings.TrimSpace(content))

	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return content[start : end+1]
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag.
func stripFences(content string) string {
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	if idx := strings.IndexByte(content, '\n'); idx != -1 {
		// Drop the language tag line ("json", "JSON", ...).
		firstLine := strings.TrimSpace(content[:idx])
		if len(firstLine) <= 10 && !strings.ContainsAny(firstLine, "{}") {
			content = content[idx+1:]
		}
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}
